package ipc

import "fmt"

// Channel identifies the endpoint bound to one fixed peer component.
type Channel uint

// Label tags a message. On replies it carries the status.
type Label uint64

// NoLabel is used on requests that carry no label.
const NoLabel Label = 0

// Status labels carried by replies.
const (
	StatusOK Label = iota
	StatusError
	StatusInvalidRequest
	StatusOutOfBounds
)

// String implements fmt.Stringer for status labels.
func (l Label) String() string {
	switch l {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusInvalidRequest:
		return "invalid-request"
	case StatusOutOfBounds:
		return "out-of-bounds"
	default:
		return fmt.Sprintf("label(%d)", uint64(l))
	}
}

// MessageInfo is a labelled message exchanged by a call.
type MessageInfo struct {
	Label   Label
	Payload []byte
}

// Send creates a MessageInfo for sending.
func Send(label Label, payload []byte) MessageInfo {
	return MessageInfo{Label: label, Payload: payload}
}

// Reply creates a reply MessageInfo with a status label.
func Reply(status Label, payload []byte) MessageInfo {
	return MessageInfo{Label: status, Payload: payload}
}
