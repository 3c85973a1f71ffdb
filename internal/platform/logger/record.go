package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Record is one log event. It is immutable once constructed: enqueued once,
// consumed once, delivered to every sink in enqueue order.
type Record struct {
	Level   slog.Level
	Message string
	Time    time.Time
	// Source names the producing component ("executor", "janitor", ...).
	Source string
	Attrs  []slog.Attr
}

// Format renders the record in the pipeline's canonical single-line form:
// timestamp - source - LEVEL - message, followed by any key=value attrs.
func (r Record) Format() string {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" - ")
	if r.Source != "" {
		b.WriteString(r.Source)
	} else {
		b.WriteString("app")
	}
	b.WriteString(" - ")
	b.WriteString(r.Level.String())
	b.WriteString(" - ")
	b.WriteString(r.Message)
	for _, a := range r.Attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
	}
	return b.String()
}
