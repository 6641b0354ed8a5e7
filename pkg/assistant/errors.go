package assistant

import (
	"errors"
	"fmt"

	"github.com/robotalks/banscii.go/pkg/ipc"
)

var (
	// ErrInvalidSubject indicates the collected line is not valid UTF-8.
	// It is the only recoverable error of a cycle.
	ErrInvalidSubject = errors.New("input is not valid utf-8")
	// ErrMalformedReply indicates a reply that cannot be decoded or whose
	// pixel payload does not cover its dimensions.
	ErrMalformedReply = errors.New("malformed reply")
)

// ProtocolError reports a reply whose status is not ok.
type ProtocolError struct {
	Status ipc.Label
}

// Error implements error.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("talent replied with status %s", e.Status)
}

// ContractError reports a notification on a channel nothing is bound to.
type ContractError struct {
	Channel ipc.Channel
}

// Error implements error.
func (e *ContractError) Error() string {
	return fmt.Sprintf("notification on unexpected channel %d", e.Channel)
}

// IsFatal tells whether an error must halt the component.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalidSubject)
}
