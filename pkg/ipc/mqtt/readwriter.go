package mqtt

import (
	"context"
	"io"
)

// ReadWriter implements ipc.PacketReadWriter on a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	readyCh  chan struct{}
	doneCh   chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 1),
		readyCh:  make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForCaller sets topics using default convention for the calling side:
// SubTopic = name/reply
// PubTopic = name/call
func (p *ReadWriter) ForCaller(name string) *ReadWriter {
	return p.WithTopics(name+"/reply", name+"/call")
}

// ForCallee sets topics using default convention for the serving side:
// SubTopic = name/call
// PubTopic = name/reply
func (p *ReadWriter) ForCallee(name string) *ReadWriter {
	return p.WithTopics(name+"/call", name+"/reply")
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.doneCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter. It waits until Run subscribed,
// otherwise a fast reply could be lost.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	select {
	case <-p.readyCh:
	case <-p.doneCh:
		return io.EOF
	}
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	token := p.Queue.Connect()
	if token.Wait(); token.Error() != nil {
		close(p.doneCh)
		return token.Error()
	}
	defer p.Queue.Close()
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	// handlers blocked on packetCh must be released before unsubscribing.
	defer close(p.doneCh)
	if sub.Token.Wait(); sub.Token.Error() != nil {
		return sub.Token.Error()
	}
	close(p.readyCh)
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.doneCh:
	}
}
