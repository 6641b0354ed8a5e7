package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/banscii.go/pkg/artist"
	"github.com/robotalks/banscii.go/pkg/draft"
	"github.com/robotalks/banscii.go/pkg/ipc"
)

// talentTestEnv wires a Client to a fake talent sharing its regions.
type talentTestEnv struct {
	t        *testing.T
	out      *ipc.Region
	in       *ipc.Region
	client   *Client
	calls    int
	requests []artist.Request
	drafts   [][]byte
	reply    func(artist.Request) ipc.MessageInfo
}

func newTalentTestEnv(t *testing.T) *talentTestEnv {
	env := &talentTestEnv{
		t:   t,
		out: ipc.NewRegion("out", RegionSize),
		in:  ipc.NewRegion("in", RegionSize),
	}
	talent := ipc.NewLocal(Talent, ipc.HandlerFunc(env.protected))
	env.client = NewClient(env.out.ReadWrite(), env.in.ReadOnly(), talent)
	return env
}

func (e *talentTestEnv) protected(ctx context.Context, ch ipc.Channel, msg ipc.MessageInfo) ipc.MessageInfo {
	e.calls++
	require.Equal(e.t, Talent, ch)
	require.Equal(e.t, ipc.NoLabel, msg.Label)
	req, err := artist.DecodeRequest(msg.Payload)
	require.NoError(e.t, err)
	e.requests = append(e.requests, req)
	d, err := e.out.ReadOnly().CopyOut(req.DraftStart, req.DraftSize)
	require.NoError(e.t, err)
	e.drafts = append(e.drafts, d)
	if e.reply != nil {
		return e.reply(req)
	}
	return e.paint(req, d, []byte{1, 2, 3})
}

// paint answers with the draft itself as masterpiece followed by signature.
func (e *talentTestEnv) paint(req artist.Request, d, signature []byte) ipc.MessageInfo {
	canvas := e.in.ReadWrite()
	require.NoError(e.t, canvas.CopyIn(0, d))
	require.NoError(e.t, canvas.CopyIn(uint64(len(d)), signature))
	return ipc.Reply(ipc.StatusOK, artist.Response{
		Height:           req.Height,
		Width:            req.Width,
		MasterpieceStart: 0,
		MasterpieceSize:  uint64(len(d)),
		SignatureStart:   uint64(len(d)),
		SignatureSize:    uint64(len(signature)),
	}.Encode())
}

func TestClientSubmit(t *testing.T) {
	env := newTalentTestEnv(t)
	expected := draft.New("hi")

	art, err := env.client.Submit(context.TODO(), []byte("hi"))
	require.NoError(t, err)
	require.Equal(t, 1, env.calls)
	require.Equal(t, artist.Request{
		Width:      expected.Width,
		Height:     expected.Height,
		DraftStart: 0,
		DraftSize:  uint64(len(expected.PixelData)),
	}, env.requests[0])
	require.Equal(t, expected.PixelData, env.drafts[0])

	require.Equal(t, expected.Width, art.Width)
	require.Equal(t, expected.Height, art.Height)
	require.Equal(t, expected.PixelData, art.Pixels)
	require.Equal(t, []byte{1, 2, 3}, art.Signature)
}

func TestClientCopiesExactSizes(t *testing.T) {
	env := newTalentTestEnv(t)
	env.reply = func(req artist.Request) ipc.MessageInfo {
		canvas := env.in.ReadWrite()
		require.NoError(t, canvas.CopyIn(0, []byte("xxABCDyyEFzz")))
		return ipc.Reply(ipc.StatusOK, artist.Response{
			Height:           2,
			Width:            2,
			MasterpieceStart: 2,
			MasterpieceSize:  4,
			SignatureStart:   8,
			SignatureSize:    2,
		}.Encode())
	}

	art, err := env.client.Submit(context.TODO(), []byte("x"))
	require.NoError(t, err)
	require.Equal(t, []byte("ABCD"), art.Pixels)
	require.Equal(t, []byte("EF"), art.Signature)
}

func TestClientInvalidSubject(t *testing.T) {
	env := newTalentTestEnv(t)
	_, err := env.client.Submit(context.TODO(), []byte{'a', 0x80})
	require.Equal(t, ErrInvalidSubject, err)
	require.False(t, IsFatal(err))
	require.Zero(t, env.calls)
}

func TestClientFatal(t *testing.T) {
	okReply := func(resp artist.Response) func(artist.Request) ipc.MessageInfo {
		return func(artist.Request) ipc.MessageInfo {
			return ipc.Reply(ipc.StatusOK, resp.Encode())
		}
	}
	testCases := []struct {
		name   string
		reply  func(artist.Request) ipc.MessageInfo
		expect func(*testing.T, error)
	}{
		{
			name: "status not ok",
			reply: func(artist.Request) ipc.MessageInfo {
				return ipc.Reply(ipc.StatusInvalidRequest, nil)
			},
			expect: func(t *testing.T, err error) {
				var perr *ProtocolError
				require.True(t, errors.As(err, &perr))
				require.Equal(t, ipc.StatusInvalidRequest, perr.Status)
			},
		},
		{
			name: "truncated payload",
			reply: func(artist.Request) ipc.MessageInfo {
				return ipc.Reply(ipc.StatusOK, make([]byte, 40))
			},
			expect: func(t *testing.T, err error) {
				require.True(t, errors.Is(err, ErrMalformedReply))
			},
		},
		{
			name: "masterpiece beyond region",
			reply: okReply(artist.Response{
				Height: 1, Width: 2,
				MasterpieceStart: RegionSize - 1, MasterpieceSize: 2,
			}),
			expect: func(t *testing.T, err error) {
				var berr *ipc.BoundsError
				require.True(t, errors.As(err, &berr))
				require.Equal(t, uint64(RegionSize-1), berr.Start)
				require.Equal(t, uint64(2), berr.Size)
			},
		},
		{
			name: "signature offset wraps",
			reply: okReply(artist.Response{
				Height: 1, Width: 1, MasterpieceSize: 1,
				SignatureStart: 1, SignatureSize: ^uint64(0),
			}),
			expect: func(t *testing.T, err error) {
				var berr *ipc.BoundsError
				require.True(t, errors.As(err, &berr))
			},
		},
		{
			name: "pixels do not cover dimensions",
			reply: okReply(artist.Response{
				Height: 4, Width: 4, MasterpieceSize: 15,
			}),
			expect: func(t *testing.T, err error) {
				require.True(t, errors.Is(err, ErrMalformedReply))
			},
		},
		{
			name: "dimensions overflow",
			reply: okReply(artist.Response{
				Height: 1 << 32, Width: 1 << 32, MasterpieceSize: 16,
			}),
			expect: func(t *testing.T, err error) {
				require.True(t, errors.Is(err, ErrMalformedReply))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTalentTestEnv(t)
			env.reply = tc.reply
			art, err := env.client.Submit(context.TODO(), []byte("hi"))
			require.Nil(t, art)
			require.Error(t, err)
			require.True(t, IsFatal(err))
			tc.expect(t, err)
		})
	}
}

func TestClientDraftTooLarge(t *testing.T) {
	env := newTalentTestEnv(t)
	env.client.Drafter = DraftFunc(func(string) *draft.Draft {
		return &draft.Draft{PixelData: make([]byte, RegionSize+1), Width: RegionSize + 1, Height: 1}
	})
	_, err := env.client.Submit(context.TODO(), []byte("hi"))
	var berr *ipc.BoundsError
	require.True(t, errors.As(err, &berr))
	require.True(t, IsFatal(err))
	require.Zero(t, env.calls)
}
