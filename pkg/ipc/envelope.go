package ipc

import (
	"github.com/golang/protobuf/proto"
)

// Envelope frames a call or a reply on packet transports.
type Envelope struct {
	Channel uint32 `protobuf:"varint,1,opt,name=channel,proto3" json:"channel,omitempty"`
	Seq     uint32 `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	Label   uint64 `protobuf:"varint,3,opt,name=label,proto3" json:"label,omitempty"`
	Payload []byte `protobuf:"bytes,4,opt,name=payload,proto3" json:"payload,omitempty"`
}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Envelope) ProtoMessage() {}

// Message extracts the MessageInfo.
func (m *Envelope) Message() MessageInfo {
	return MessageInfo{Label: Label(m.Label), Payload: m.Payload}
}

// NewEnvelope wraps a message for the channel.
func NewEnvelope(ch Channel, seq uint32, msg MessageInfo) *Envelope {
	return &Envelope{Channel: uint32(ch), Seq: seq, Label: uint64(msg.Label), Payload: msg.Payload}
}

// Encode encodes the Envelope to bytes.
func (m *Envelope) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeEnvelope decodes bytes into an Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
