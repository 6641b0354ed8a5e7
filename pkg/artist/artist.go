package artist

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/ipc"
)

// Palette maps intensities to glyphs, darkest first.
const Palette = " .:-=+*#%@"

// Artist turns drafts into masterpieces and signs them. It reads drafts
// from the region its caller writes and answers in the region it owns.
type Artist struct {
	In  ipc.ReadOnly
	Out ipc.ReadWrite

	key ed25519.PrivateKey
}

// New creates an Artist. A nil seed generates a fresh key.
func New(in ipc.ReadOnly, out ipc.ReadWrite, seed []byte) (*Artist, error) {
	var key ed25519.PrivateKey
	if seed == nil {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		key = priv
	} else {
		if len(seed) != ed25519.SeedSize {
			return nil, ErrMalformed
		}
		key = ed25519.NewKeyFromSeed(seed)
	}
	return &Artist{In: in, Out: out, key: key}, nil
}

// PublicKey returns the key signatures verify against.
func (a *Artist) PublicKey() ed25519.PublicKey {
	return a.key.Public().(ed25519.PublicKey)
}

// Verify checks a masterpiece signature.
func (a *Artist) Verify(masterpiece, signature []byte) bool {
	return ed25519.Verify(a.PublicKey(), masterpiece, signature)
}

// Paint maps each intensity to a glyph of the Palette.
func Paint(draft []byte) []byte {
	out := make([]byte, len(draft))
	for n, v := range draft {
		out[n] = Palette[int(v)*len(Palette)/256]
	}
	return out
}

// Protected implements ipc.Handler.
func (a *Artist) Protected(ctx context.Context, ch ipc.Channel, msg ipc.MessageInfo) ipc.MessageInfo {
	req, err := DecodeRequest(msg.Payload)
	if err != nil {
		glog.Warningf("channel %d: %v", ch, err)
		return ipc.Reply(ipc.StatusInvalidRequest, nil)
	}
	if req.Width == 0 || req.Height == 0 || req.Width*req.Height != req.DraftSize || req.DraftSize/req.Width != req.Height {
		glog.Warningf("channel %d: draft %dx%d does not fit %d bytes", ch, req.Width, req.Height, req.DraftSize)
		return ipc.Reply(ipc.StatusInvalidRequest, nil)
	}
	draft, err := a.In.CopyOut(req.DraftStart, req.DraftSize)
	if err != nil {
		glog.Warningf("channel %d: %v", ch, err)
		return ipc.Reply(ipc.StatusOutOfBounds, nil)
	}

	masterpiece := Paint(draft)
	signature := ed25519.Sign(a.key, masterpiece)
	resp := Response{
		Height:           req.Height,
		Width:            req.Width,
		MasterpieceStart: 0,
		MasterpieceSize:  uint64(len(masterpiece)),
		SignatureStart:   uint64(len(masterpiece)),
		SignatureSize:    uint64(len(signature)),
	}
	if err := a.Out.CopyIn(resp.MasterpieceStart, masterpiece); err != nil {
		glog.Warningf("channel %d: %v", ch, err)
		return ipc.Reply(ipc.StatusOutOfBounds, nil)
	}
	if err := a.Out.CopyIn(resp.SignatureStart, signature); err != nil {
		glog.Warningf("channel %d: %v", ch, err)
		return ipc.Reply(ipc.StatusOutOfBounds, nil)
	}
	glog.V(2).Infof("channel %d: painted %dx%d", ch, req.Width, req.Height)
	return ipc.Reply(ipc.StatusOK, resp.Encode())
}
