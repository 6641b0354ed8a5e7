// Package sh provides an operator console driving the talent without a
// serial line.
package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/assistant"
	"github.com/robotalks/banscii.go/pkg/env"
	fx "github.com/robotalks/banscii.go/pkg/framework"
	"github.com/robotalks/banscii.go/pkg/ipc"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell  *ishell.Shell
	Config *env.Config
	Talent *env.Talent
	Client *assistant.Client

	ctx    context.Context
	cancel func()
	loop   *fx.Loop
}

const (
	shellKey = "$shell"
	prompt   = "banscii> "
)

// Subjects the assistant would never submit from the serial line.
var (
	ErrSubjectTooLong = fmt.Errorf("subject exceeds %d chars", assistant.MaxSubjectLen)
	ErrNonPrintable   = errors.New("subject contains non-printable chars")
)

var (
	// flags

	evalOnly bool

	// commands
	commands = []*ishell.Cmd{
		&RenderCmd,
		&LimitCmd,
		&TalentCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Connect connects the talent and runs its transport in the background.
func (s *Shell) Connect() error {
	talent, err := s.Config.ConnectTalent()
	if err != nil {
		return err
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Talent, s.Client = talent, talent.Client()
	// nothing notifies the console, the loop only runs the transport.
	s.loop = fx.NewLoop(fx.NotifiedFunc(func(_ context.Context, ch ipc.Channel) error {
		return &assistant.ContractError{Channel: ch}
	})).Add(talent)
	go func() {
		if err := s.loop.Run(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			glog.Errorf("talent stopped: %v", err)
		}
	}()
	return nil
}

// Disconnect releases the talent.
func (s *Shell) Disconnect() {
	if s.cancel != nil {
		s.cancel()
		s.Talent.Close()
		s.cancel, s.Talent, s.Client = nil, nil, nil
	}
}

// Render submits the words joined by spaces as one subject and renders
// the reply into w.
func Render(ctx context.Context, client *assistant.Client, w io.Writer, words ...string) error {
	subject := strings.Join(words, " ")
	if len(subject) > assistant.MaxSubjectLen {
		return ErrSubjectTooLong
	}
	for n := 0; n < len(subject); n++ {
		if subject[n] < 0x20 || subject[n] > 0x7e {
			return ErrNonPrintable
		}
	}
	art, err := client.Submit(ctx, []byte(subject))
	if err != nil {
		return err
	}
	return assistant.Render(w, art)
}

func rejected(err error) bool {
	return errors.Is(err, ErrSubjectTooLong) || errors.Is(err, ErrNonPrintable)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.Connect(); err != nil {
		glog.Fatalf("connect talent %q failed: %v", s.Config.TalentURL, err)
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Fatalln("command expected")
}

type printer struct {
	c *ishell.Context
}

func (p printer) Write(data []byte) (int, error) {
	p.c.Print(string(data))
	return len(data), nil
}

var (
	// RenderCmd renders a subject.
	RenderCmd = ishell.Cmd{
		Name:    "render",
		Aliases: []string{"r"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) == 0 {
				c.Err(errors.New("subject expected"))
				return
			}
			err := Render(s.ctx, s.Client, printer{c: c}, c.Args...)
			// unlike the assistant, the console outlives a fatal cycle.
			if assistant.IsFatal(err) && !rejected(err) {
				glog.Errorf("render: %v", err)
			}
			if err != nil {
				c.Err(err)
			}
		},
	}

	// LimitCmd prints the subject length limit.
	LimitCmd = ishell.Cmd{
		Name: "limit",
		Help: "",
		Func: func(c *ishell.Context) {
			c.Println(assistant.MaxSubjectLen)
		},
	}

	// TalentCmd prints where the talent lives.
	TalentCmd = ishell.Cmd{
		Name: "talent",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			c.Println(s.Config.TalentURL)
			if !s.Config.IsLocal() {
				c.Printf("out: %s\nin: %s\n", s.Config.RegionOutPath, s.Config.RegionInPath)
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	env.SetupFlags()
	flag.Parse()
	New(env.MustLoad()).Run(flag.Args()...)
}
