package assistant

import (
	"context"
	"fmt"
	"math/bits"
	"unicode/utf8"

	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/artist"
	"github.com/robotalks/banscii.go/pkg/draft"
	"github.com/robotalks/banscii.go/pkg/ipc"
)

// Drafter builds the Draft of a subject.
type Drafter interface {
	NewDraft(subject string) *draft.Draft
}

// DraftFunc is the func form of Drafter.
type DraftFunc func(string) *draft.Draft

// NewDraft implements Drafter.
func (f DraftFunc) NewDraft(subject string) *draft.Draft {
	return f(subject)
}

// Artwork is a reply copied out of the in region.
type Artwork struct {
	Width     uint64
	Height    uint64
	Pixels    []byte
	Signature []byte
}

// Client drives one request-response exchange with the talent per subject.
type Client struct {
	Drafter Drafter
	Out     ipc.ReadWrite
	In      ipc.ReadOnly
	Talent  ipc.Caller
}

// NewClient creates a Client drawing subjects with draft.New.
func NewClient(out ipc.ReadWrite, in ipc.ReadOnly, talent ipc.Caller) *Client {
	return &Client{
		Drafter: DraftFunc(draft.New),
		Out:     out,
		In:      in,
		Talent:  talent,
	}
}

// Submit validates the raw line, places its draft in the out region,
// calls the talent and copies the reply out of the in region.
// Only ErrInvalidSubject is recoverable, see IsFatal.
func (c *Client) Submit(ctx context.Context, raw []byte) (*Artwork, error) {
	if !utf8.Valid(raw) {
		return nil, ErrInvalidSubject
	}
	d := c.Drafter.NewDraft(string(raw))

	const draftStart = 0
	if err := c.Out.CopyIn(draftStart, d.PixelData); err != nil {
		return nil, err
	}
	req := artist.Request{
		Width:      d.Width,
		Height:     d.Height,
		DraftStart: draftStart,
		DraftSize:  uint64(len(d.PixelData)),
	}
	glog.V(2).Infof("call talent: %+v", req)

	reply, err := c.Talent.Call(ctx, ipc.Send(ipc.NoLabel, req.Encode()))
	if err != nil {
		return nil, fmt.Errorf("call talent: %w", err)
	}
	if reply.Label != ipc.StatusOK {
		return nil, &ProtocolError{Status: reply.Label}
	}
	resp, err := artist.DecodeResponse(reply.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	glog.V(2).Infof("talent replied: %+v", resp)

	hi, area := bits.Mul64(resp.Width, resp.Height)
	if hi != 0 || area > resp.MasterpieceSize {
		return nil, fmt.Errorf("%w: %dx%d pixels in %d bytes", ErrMalformedReply, resp.Width, resp.Height, resp.MasterpieceSize)
	}
	pixels, err := c.In.CopyOut(resp.MasterpieceStart, resp.MasterpieceSize)
	if err != nil {
		return nil, err
	}
	signature, err := c.In.CopyOut(resp.SignatureStart, resp.SignatureSize)
	if err != nil {
		return nil, err
	}
	return &Artwork{
		Width:     resp.Width,
		Height:    resp.Height,
		Pixels:    pixels,
		Signature: signature,
	}, nil
}
