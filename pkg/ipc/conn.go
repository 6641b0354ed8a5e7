package ipc

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"
)

type runnable interface {
	Run(context.Context) error
}

// Conn is the caller side of a channel carried over a packet transport.
// At most one call is outstanding; there is no call timeout.
type Conn struct {
	Channel    Channel
	ReadWriter PacketReadWriter

	seq  uint32
	lock sync.Mutex
}

// NewConn creates a Conn on a packet transport.
func NewConn(ch Channel, rw PacketReadWriter) *Conn {
	return &Conn{Channel: ch, ReadWriter: rw}
}

// Call implements Caller. Replies to earlier, abandoned calls are skipped.
// Canceling ctx closes the transport.
func (c *Conn) Call(ctx context.Context, msg MessageInfo) (MessageInfo, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	pkt, err := NewEnvelope(c.Channel, c.seq, msg).Encode()
	if err != nil {
		return MessageInfo{}, err
	}
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()
	if err := c.ReadWriter.WritePacket(pkt); err != nil {
		return MessageInfo{}, c.failure(ctx, err)
	}
	for {
		pkt, err := c.ReadWriter.ReadPacket()
		if err != nil {
			return MessageInfo{}, c.failure(ctx, err)
		}
		reply, err := DecodeEnvelope(pkt)
		if err != nil {
			return MessageInfo{}, err
		}
		if reply.Seq != c.seq || Channel(reply.Channel) != c.Channel {
			glog.Warningf("channel %d: skip stale reply seq=%d", c.Channel, reply.Seq)
			continue
		}
		return reply.Message(), nil
	}
}

func (c *Conn) failure(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == io.EOF {
		return ErrClosed
	}
	return err
}

// Run runs the transport when it needs a background runner,
// otherwise it waits for ctx.
func (c *Conn) Run(ctx context.Context) error {
	if r, ok := c.ReadWriter.(runnable); ok {
		return r.Run(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	if closer, ok := c.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Server is the callee side of a packet transport.
type Server struct {
	ReadWriter PacketReadWriter
	Handler    Handler
}

// NewServer creates a Server.
func NewServer(rw PacketReadWriter, h Handler) *Server {
	return &Server{ReadWriter: rw, Handler: h}
}

// Run serves calls until the transport fails or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()
	for {
		pkt, err := s.ReadWriter.ReadPacket()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		call, err := DecodeEnvelope(pkt)
		if err != nil {
			// A malformed envelope carries no seq to answer to.
			glog.Warningf("drop malformed envelope: %v", err)
			continue
		}
		reply := s.Handler.Protected(ctx, Channel(call.Channel), call.Message())
		out, err := NewEnvelope(Channel(call.Channel), call.Seq, reply).Encode()
		if err != nil {
			return err
		}
		if err = s.ReadWriter.WritePacket(out); err != nil {
			return err
		}
	}
}

// Close implements io.Closer.
func (s *Server) Close() error {
	if closer, ok := s.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
