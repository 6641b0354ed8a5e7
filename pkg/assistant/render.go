package assistant

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"
)

// SignatureChunk is the number of signature bytes per hex line.
const SignatureChunk = 32

// Render prints the pixel grid row by row, each pixel as its raw byte,
// then the signature as lowercase hex, SignatureChunk bytes per line.
// Nothing is written when the pixels do not cover Width*Height.
func Render(w io.Writer, art *Artwork) error {
	if hi, area := bits.Mul64(art.Width, art.Height); hi != 0 || area > uint64(len(art.Pixels)) {
		return fmt.Errorf("%w: %dx%d pixels in %d bytes", ErrMalformedReply, art.Width, art.Height, len(art.Pixels))
	}
	out := bufio.NewWriter(w)
	out.WriteByte('\n')
	for row := uint64(0); row < art.Height; row++ {
		out.Write(art.Pixels[row*art.Width : (row+1)*art.Width])
		out.WriteByte('\n')
	}
	out.WriteByte('\n')

	out.WriteString("Signature:\n")
	for sig := art.Signature; len(sig) > 0; {
		n := len(sig)
		if n > SignatureChunk {
			n = SignatureChunk
		}
		out.WriteString(hex.EncodeToString(sig[:n]))
		out.WriteByte('\n')
		sig = sig[n:]
	}
	out.WriteByte('\n')
	return out.Flush()
}
