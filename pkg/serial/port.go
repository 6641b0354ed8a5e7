// Package serial provides the byte-granularity serial line capability.
package serial

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/banscii.go/pkg/framework"
	"github.com/robotalks/banscii.go/pkg/ipc"
)

// ErrWouldBlock indicates no byte is available right now.
var ErrWouldBlock = errors.New("would block")

// Driver is the serial line as seen by a component: non-blocking byte
// reads, byte writes, and notifications on Channel when input arrives.
type Driver interface {
	Channel() ipc.Channel
	Read() (byte, error)
	Write(byte) error
}

// Port implements Driver over an io.ReadWriter. Received bytes are
// buffered in arrival order by a background read loop.
type Port struct {
	ReadWriter io.ReadWriter
	Notifier   fx.Notifier

	channel ipc.Channel
	rx      []byte
	rxLock  sync.Mutex
	txLock  sync.Mutex
}

// NewPort creates a Port bound to a channel.
func NewPort(ch ipc.Channel, rw io.ReadWriter) *Port {
	return &Port{ReadWriter: rw, channel: ch}
}

// Channel implements Driver.
func (p *Port) Channel() ipc.Channel {
	return p.channel
}

// Read implements Driver.
func (p *Port) Read() (byte, error) {
	p.rxLock.Lock()
	defer p.rxLock.Unlock()
	if len(p.rx) == 0 {
		return 0, ErrWouldBlock
	}
	b := p.rx[0]
	p.rx = p.rx[1:]
	return b, nil
}

// Write implements Driver.
func (p *Port) Write(b byte) error {
	p.txLock.Lock()
	defer p.txLock.Unlock()
	_, err := p.ReadWriter.Write([]byte{b})
	return err
}

// Name implements Named.
func (p *Port) Name() string {
	return "serial"
}

// Run implements Runnable. It returns io.EOF when the line is closed.
func (p *Port) Run(ctx context.Context) error {
	byteCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case data := <-byteCh:
			glog.V(3).Infof("serial rx % x", data)
			p.rxLock.Lock()
			p.rx = append(p.rx, data...)
			p.rxLock.Unlock()
			if n := p.Notifier; n != nil {
				n.Notify(p.channel)
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Port) readLoop(ctx context.Context, byteCh chan<- []byte, errCh chan<- error) {
	buf := make([]byte, 64)
	for {
		n, err := p.ReadWriter.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case byteCh <- data:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

// AddToLoop implements LoopAdder.
func (p *Port) AddToLoop(l *fx.Loop) {
	p.Notifier = l
	l.AddRunnable(p)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
