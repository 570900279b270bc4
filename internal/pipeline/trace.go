package pipeline

import "sync"

// EventKind discriminates trace events.
type EventKind string

const (
	EventStageEntered       EventKind = "StageEntered"
	EventArtifactExplicit   EventKind = "ArtifactExplicit"
	EventArtifactReused     EventKind = "ArtifactReused"
	EventArtifactPending    EventKind = "ArtifactPending"
	EventArtifactGenerated  EventKind = "ArtifactGenerated"
	EventGeneDropped        EventKind = "GeneDropped"
	EventConcatenateDropped EventKind = "ConcatenateDropped"
	EventRunFailed          EventKind = "RunFailed"
)

// Event is one logical decision of a run. Events carry no timestamps and no
// error text.
type Event struct {
	Kind  EventKind
	Stage Stage

	// Subject is the artifact argument, contig or gene the event refers to.
	Subject string

	// Detail is a short stable qualifier, e.g. the contig of a dropped gene.
	Detail string
}

// Sink receives trace events.
//
// Record must be inert: it must not panic and has no way to report errors.
// Callers assume Record may be a no-op.
type Sink interface {
	Record(event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(Event) {}

// SafeRecord records an event and swallows a panicking sink.
func SafeRecord(s Sink, event Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(event)
}

// Recorder is a concurrency-safe in-memory Sink.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Snapshot returns a copy of the events recorded so far.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the event kinds recorded so far, in order.
func (r *Recorder) Kinds() []EventKind {
	events := r.Snapshot()
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
