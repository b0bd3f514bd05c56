// Package events carries requests for background work from the service layer
// to the task pipeline without coupling the two. A service emits a
// TaskRequestEvent (for example "topic.generation.requested") through an
// EventEmitter; registered EventHandlers turn it into queued work. The
// in-memory emitter is the only implementation; the seam exists so the
// transport could change without touching the services.
package events
