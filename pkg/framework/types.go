// Package framework runs a component as a single logical thread of
// control driven by channel notifications.
package framework

import (
	"context"

	"github.com/robotalks/banscii.go/pkg/ipc"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Handler reacts to notifications delivered on channels.
// A non-nil error is fatal and stops the Loop.
type Handler interface {
	Notified(context.Context, ipc.Channel) error
}

// NotifiedFunc is the func form of Handler.
type NotifiedFunc func(context.Context, ipc.Channel) error

// Notified implements Handler.
func (f NotifiedFunc) Notified(ctx context.Context, ch ipc.Channel) error {
	return f(ctx, ch)
}

// Initializer is optionally implemented by a Handler to run once before
// the first notification is dispatched.
type Initializer interface {
	Init(context.Context) error
}

// Notifier accepts notifications from any goroutine.
type Notifier interface {
	Notify(ipc.Channel)
}
