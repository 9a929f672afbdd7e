package domain

import "fmt"

// UsageError marks a programming error in how the container is composed.
// It is raised by panic and is not meant to be recovered and retried.
type UsageError struct {
	Msg string
}

func (e UsageError) Error() string { return e.Msg }

var (
	// ErrNoContainer is raised when the accessor is requested outside a container scope.
	ErrNoContainer = UsageError{Msg: "havenlist: accessor used outside of a container scope"}
	// ErrContainerClosed is raised when a closed container is used.
	ErrContainerClosed = UsageError{Msg: "havenlist: container used after close"}
)

// SlotCorruptError reports durable content that does not decode into the
// expected collection shape.
type SlotCorruptError struct {
	Slot Slot
	Err  error
}

func (e *SlotCorruptError) Error() string {
	return fmt.Sprintf("slot %s is corrupt: %v", e.Slot, e.Err)
}

func (e *SlotCorruptError) Unwrap() error { return e.Err }
