// Package events provides task lifecycle notifications for surrounding
// application code.
//
// The executor emits an event whenever a task reaches a terminal state;
// components such as a status bar or UI layer register handlers for them
// without the executor knowing which handlers exist, enabling better
// separation of concerns and reducing circular dependencies.
//
// The primary components are:
// - TaskLifecycleEvent: one task's terminal transition
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
package events
