package ipc

import (
	"context"
	"sync"
)

// Caller performs a synchronous call on a fixed channel. The caller is
// suspended until the peer replies.
type Caller interface {
	Call(context.Context, MessageInfo) (MessageInfo, error)
}

// Handler serves protected procedure calls arriving on a channel.
type Handler interface {
	Protected(context.Context, Channel, MessageInfo) MessageInfo
}

// HandlerFunc is func form of Handler.
type HandlerFunc func(context.Context, Channel, MessageInfo) MessageInfo

// Protected implements Handler.
func (f HandlerFunc) Protected(ctx context.Context, ch Channel, msg MessageInfo) MessageInfo {
	return f(ctx, ch, msg)
}

// Local calls a Handler living in the same process.
type Local struct {
	Channel Channel
	Handler Handler

	lock sync.Mutex
}

// NewLocal creates a Local caller bound to a channel.
func NewLocal(ch Channel, h Handler) *Local {
	return &Local{Channel: ch, Handler: h}
}

// Call implements Caller.
func (l *Local) Call(ctx context.Context, msg MessageInfo) (MessageInfo, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if err := ctx.Err(); err != nil {
		return MessageInfo{}, err
	}
	return l.Handler.Protected(ctx, l.Channel, msg), nil
}
