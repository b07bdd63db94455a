// Package event defines the session event stream emitted by the controller.
package event

import "time"

// Kind discriminates the event union.
type Kind string

const (
	KindProgress    Kind = "progress"
	KindWarning     Kind = "warning"
	KindError       Kind = "error"
	KindStateChange Kind = "state_change"
)

// Event is one session event. Exactly the fields relevant to its Kind are set.
// Events are immutable and timestamped at emission.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Progress fields.
	StepIndex  int    `json:"step_index,omitempty"`
	TotalSteps int    `json:"total_steps,omitempty"` // 0 means unbounded
	ImagePath  string `json:"image_path,omitempty"`
	Message    string `json:"message,omitempty"`

	// Error fields.
	Recoverable bool `json:"recoverable,omitempty"`

	// StateChange fields.
	State string `json:"state,omitempty"`
}

// Sink consumes events synchronously, one at a time, in the emitting
// goroutine. Implementations must not block indefinitely.
type Sink func(Event)

// Progress builds a progress event.
func Progress(now time.Time, stepIndex, totalSteps int, imagePath, message string) Event {
	return Event{
		Kind:       KindProgress,
		Timestamp:  now,
		StepIndex:  stepIndex,
		TotalSteps: totalSteps,
		ImagePath:  imagePath,
		Message:    message,
	}
}

// Warning builds a warning event.
func Warning(now time.Time, message string) Event {
	return Event{Kind: KindWarning, Timestamp: now, Message: message}
}

// Error builds an error event.
func Error(now time.Time, message string, recoverable bool) Event {
	return Event{Kind: KindError, Timestamp: now, Message: message, Recoverable: recoverable}
}

// StateChange builds a state-change event.
func StateChange(now time.Time, state string) Event {
	return Event{Kind: KindStateChange, Timestamp: now, State: state}
}
