package framework

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/ipc"
)

// Loop dispatches channel notifications to a Handler, one at a time.
// Background Runnables (device readers, transports) feed it via Notify.
type Loop struct {
	Handler Handler

	runners []Runnable

	pending []ipc.Channel
	lock    sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// NewLoop creates a Loop.
func NewLoop(h Handler) *Loop {
	return &Loop{Handler: h, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Notify implements Notifier. Notifications on a channel already pending
// are coalesced.
func (l *Loop) Notify(ch ipc.Channel) {
	l.lock.Lock()
	for _, p := range l.pending {
		if p == ch {
			l.lock.Unlock()
			return
		}
	}
	l.pending = append(l.pending, ch)
	l.lock.Unlock()
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable. It returns the first error from the Handler or
// from a Runnable, which is the fatal path of the component.
func (l *Loop) Run(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	failCh := make(chan error, 1)
	runner := NewRunnerWith(subCtx)
	for _, r := range l.runners {
		runner.Go(l.watch(r, failCh))
	}
	defer func() {
		cancel()
		if err := runner.Wait(); err != nil {
			glog.V(2).Infof("runners stopped: %v", err)
		}
	}()

	if initializer, ok := l.Handler.(Initializer); ok {
		if err := initializer.Init(ctx); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-failCh:
			return err
		case <-l.wakeUpCh:
			if err := l.dispatch(ctx); err != nil {
				return err
			}
		}
	}
}

// RunOrFail is intended to be used in main to run the loop and halt the
// process on a fatal error. An io.EOF from a Runnable means its input has
// ended, which stops the loop without failure. Closers are closed before
// returning or halting so devices get restored.
func (l *Loop) RunOrFail(ctx context.Context, closers ...io.Closer) {
	err := l.Run(ctx)
	for _, closer := range closers {
		closer.Close()
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		glog.Fatalf("halted: %v", err)
	}
	glog.Infof("stopped: %v", err)
}

func (l *Loop) dispatch(ctx context.Context) error {
	for {
		l.lock.Lock()
		if len(l.pending) == 0 {
			l.lock.Unlock()
			return nil
		}
		ch := l.pending[0]
		l.pending = l.pending[1:]
		l.lock.Unlock()
		glog.V(4).Infof("notified on channel %d", ch)
		if err := l.Handler.Notified(ctx, ch); err != nil {
			return err
		}
	}
}

func (l *Loop) watch(r Runnable, failCh chan<- error) Runnable {
	watched := RunnableFunc(func(ctx context.Context) error {
		err := r.Run(ctx)
		if err != nil && ctx.Err() == nil {
			select {
			case failCh <- err:
			default:
			}
		}
		return err
	})
	if named, ok := r.(Named); ok {
		return NamedRun(named.Name(), watched)
	}
	return watched
}
