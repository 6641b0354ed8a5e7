package assistant

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/banscii.go/pkg/artist"
	"github.com/robotalks/banscii.go/pkg/draft"
	"github.com/robotalks/banscii.go/pkg/ipc"
	"github.com/robotalks/banscii.go/pkg/serial"
)

type memDriver struct {
	rx []byte
	tx bytes.Buffer
}

func (d *memDriver) Channel() ipc.Channel { return UARTDriver }

func (d *memDriver) Read() (byte, error) {
	if len(d.rx) == 0 {
		return 0, serial.ErrWouldBlock
	}
	b := d.rx[0]
	d.rx = d.rx[1:]
	return b, nil
}

func (d *memDriver) Write(b byte) error {
	return d.tx.WriteByte(b)
}

var testSeed = bytes.Repeat([]byte{7}, ed25519.SeedSize)

type assistantTestEnv struct {
	t         *testing.T
	driver    *memDriver
	talent    ipc.Handler
	calls     int
	assistant *Assistant
}

// newAssistantTestEnv wires an Assistant to the reference artist through
// two regions, the way the platform does at startup.
func newAssistantTestEnv(t *testing.T) *assistantTestEnv {
	out := ipc.NewRegion("out", RegionSize)
	in := ipc.NewRegion("in", RegionSize)
	a, err := artist.New(out.ReadOnly(), in.ReadWrite(), testSeed)
	require.NoError(t, err)
	env := &assistantTestEnv{t: t, driver: &memDriver{}, talent: a}
	talent := ipc.NewLocal(Talent, ipc.HandlerFunc(func(ctx context.Context, ch ipc.Channel, msg ipc.MessageInfo) ipc.MessageInfo {
		env.calls++
		return env.talent.Protected(ctx, ch, msg)
	}))
	env.assistant = New(env.driver, NewClient(out.ReadWrite(), in.ReadOnly(), talent))
	require.NoError(t, env.assistant.Init(context.TODO()))
	return env
}

func (e *assistantTestEnv) input(s string) error {
	e.driver.rx = append(e.driver.rx, s...)
	return e.assistant.Notified(context.TODO(), UARTDriver)
}

func (e *assistantTestEnv) output() string {
	return e.driver.tx.String()
}

func expectedArt(t *testing.T, subject string) string {
	d := draft.New(subject)
	pixels := artist.Paint(d.PixelData)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &Artwork{
		Width:     d.Width,
		Height:    d.Height,
		Pixels:    pixels,
		Signature: ed25519.Sign(ed25519.NewKeyFromSeed(testSeed), pixels),
	}))
	return buf.String()
}

func TestAssistantStartup(t *testing.T) {
	env := newAssistantTestEnv(t)
	require.Equal(t, Prompt, env.output())
}

func TestAssistantScenarios(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		calls  int
		remain int
		expect func(*testing.T) string
	}{
		{
			name:  "line completes a cycle",
			input: "hi\n",
			calls: 1,
			expect: func(t *testing.T) string {
				return Prompt + "hi\n" + expectedArt(t, "hi") + Prompt
			},
		},
		{
			name:   "char limit flushes the line",
			input:  "abcdefghijklmnopq",
			calls:  1,
			remain: 1,
			expect: func(t *testing.T) string {
				return Prompt + "abcdefghijklmnop" + "\n(char limit reached)\n" +
					expectedArt(t, "abcdefghijklmnop") + Prompt + "q"
			},
		},
		{
			name:  "terminator right after limit",
			input: "abcdefghijklmnop\r",
			calls: 1,
			expect: func(t *testing.T) string {
				return Prompt + "abcdefghijklmnop\n" + expectedArt(t, "abcdefghijklmnop") + Prompt
			},
		},
		{
			name:  "empty line reprompts",
			input: "\n\r",
			expect: func(t *testing.T) string {
				return Prompt + "\n" + Prompt + "\n" + Prompt
			},
		},
		{
			name:  "lone continuation byte is never buffered",
			input: "\x80\n",
			expect: func(t *testing.T) string {
				return Prompt + "\n" + Prompt
			},
		},
		{
			name:   "no terminator no request",
			input:  "a\x1bb\x00c",
			remain: 3,
			expect: func(t *testing.T) string {
				return Prompt + "abc"
			},
		},
		{
			name:  "two lines in one notification",
			input: "a\nb\n",
			calls: 2,
			expect: func(t *testing.T) string {
				return Prompt + "a\n" + expectedArt(t, "a") + Prompt + "b\n" + expectedArt(t, "b") + Prompt
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newAssistantTestEnv(t)
			require.NoError(t, env.input(tc.input))
			require.Equal(t, tc.expect(t), env.output())
			require.Equal(t, tc.calls, env.calls)
			require.Equal(t, tc.remain, env.assistant.Assembler.Len())
			require.Empty(t, env.driver.rx)
		})
	}
}

func TestAssistantInvalidSubject(t *testing.T) {
	env := newAssistantTestEnv(t)
	require.NoError(t, env.assistant.cycle(context.TODO(), []byte{0xbf}))
	require.Equal(t, Prompt+"error: input is not valid utf-8\n", env.output())
	require.Zero(t, env.calls)

	require.NoError(t, env.input("ok\n"))
	require.Equal(t, 1, env.calls)
	require.True(t, strings.HasSuffix(env.output(), Prompt))
}

func TestAssistantOutOfBoundsReply(t *testing.T) {
	env := newAssistantTestEnv(t)
	env.talent = ipc.HandlerFunc(func(context.Context, ipc.Channel, ipc.MessageInfo) ipc.MessageInfo {
		return ipc.Reply(ipc.StatusOK, artist.Response{
			Height:           1,
			Width:            16,
			MasterpieceStart: RegionSize - 8,
			MasterpieceSize:  16,
		}.Encode())
	})

	err := env.input("hi\n")
	var berr *ipc.BoundsError
	require.True(t, errors.As(err, &berr))
	require.True(t, IsFatal(err))
	require.Equal(t, 1, env.calls)
	require.Equal(t, Prompt+"hi\n", env.output())
}

func TestAssistantRejectedCall(t *testing.T) {
	env := newAssistantTestEnv(t)
	env.talent = ipc.HandlerFunc(func(context.Context, ipc.Channel, ipc.MessageInfo) ipc.MessageInfo {
		return ipc.Reply(ipc.StatusError, nil)
	})

	err := env.input("hi\nmore\n")
	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, ipc.StatusError, perr.Status)
	require.Equal(t, 1, env.calls)
	require.Equal(t, "more\n", string(env.driver.rx))
}

func TestAssistantUnexpectedChannel(t *testing.T) {
	env := newAssistantTestEnv(t)
	err := env.assistant.Notified(context.TODO(), Talent)
	var cerr *ContractError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, Talent, cerr.Channel)
	require.True(t, IsFatal(err))
}
