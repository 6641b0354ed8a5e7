// Package assistant is the human-facing front end: it collects a subject
// from the serial line, has the talent render it and prints the result.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/ipc"
	"github.com/robotalks/banscii.go/pkg/serial"
)

// Fixed wiring of the component.
const (
	UARTDriver ipc.Channel = 0
	Talent     ipc.Channel = 1

	RegionSize    = 0x4000
	MaxSubjectLen = 16

	Prompt = "banscii> "
)

// Assistant handles notifications from the serial driver. Each completed
// line runs one full cycle before the next byte is looked at.
type Assistant struct {
	Serial    serial.Driver
	Client    *Client
	Assembler *Assembler

	out io.Writer
}

// New creates an Assistant.
func New(driver serial.Driver, client *Client) *Assistant {
	return &Assistant{
		Serial:    driver,
		Client:    client,
		Assembler: NewAssembler(MaxSubjectLen),
		out:       serial.NewWriter(driver),
	}
}

// Init implements framework.Initializer.
func (a *Assistant) Init(ctx context.Context) error {
	return a.prompt()
}

// Notified implements framework.Handler.
func (a *Assistant) Notified(ctx context.Context, ch ipc.Channel) error {
	switch ch {
	case a.Serial.Channel():
		return a.drain(ctx)
	default:
		return &ContractError{Channel: ch}
	}
}

func (a *Assistant) drain(ctx context.Context) error {
	for {
		b, err := a.Serial.Read()
		if errors.Is(err, serial.ErrWouldBlock) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("serial read: %w", err)
		}
		if err = a.consume(ctx, b); err != nil {
			return err
		}
	}
}

func (a *Assistant) consume(ctx context.Context, b byte) error {
	action, line := a.Assembler.Push(b)
	switch action {
	case Echo:
		return a.echo(b)
	case LineEnd:
		if err := a.newline(); err != nil {
			return err
		}
		if len(line) > 0 {
			if err := a.cycle(ctx, line); err != nil {
				return err
			}
		}
		return a.prompt()
	case Overflow:
		if _, err := io.WriteString(a.out, "\n(char limit reached)\n"); err != nil {
			return err
		}
		if err := a.cycle(ctx, line); err != nil {
			return err
		}
		if err := a.prompt(); err != nil {
			return err
		}
		return a.echo(b)
	}
	return nil
}

// cycle runs one request-response exchange. Only fatal errors are returned.
func (a *Assistant) cycle(ctx context.Context, line []byte) error {
	art, err := a.Client.Submit(ctx, line)
	if IsFatal(err) {
		glog.Errorf("cycle for %q: %v", line, err)
		return err
	}
	if err != nil {
		glog.Warningf("cycle for %q: %v", line, err)
		_, err = fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	return Render(a.out, art)
}

// echo drops the byte when the line is busy, as a terminal would.
func (a *Assistant) echo(b byte) error {
	if err := a.Serial.Write(b); err != nil && !errors.Is(err, serial.ErrWouldBlock) {
		return err
	}
	return nil
}

func (a *Assistant) newline() error {
	return a.Serial.Write('\n')
}

func (a *Assistant) prompt() error {
	_, err := io.WriteString(a.out, Prompt)
	return err
}
