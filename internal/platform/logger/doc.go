// Package logger provides the application's logging pipeline: a
// multi-producer, single-consumer queue that delivers records to registered
// sinks (console, file, UI callbacks) in enqueue order without ever blocking
// a producer on sink I/O, plus a log/slog bridge so the rest of the
// application logs through the standard structured API.
package logger
