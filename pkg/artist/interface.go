// Package artist defines the call interface of the rendering component
// and provides a reference implementation of it.
package artist

import (
	"encoding/binary"
	"errors"
)

// WordSize is the size of every field on the wire: 64-bit little-endian.
const WordSize = 8

// ErrMalformed indicates a payload that does not match the layout.
var ErrMalformed = errors.New("malformed payload")

// Request describes where the draft lives in the caller's out region.
// Layout: width, height, draft_start, draft_size.
type Request struct {
	Width      uint64
	Height     uint64
	DraftStart uint64
	DraftSize  uint64
}

// Response describes where the masterpiece and its signature live in the
// caller's in region. Layout: height, width, masterpiece_start,
// masterpiece_size, signature_start, signature_size.
type Response struct {
	Height           uint64
	Width            uint64
	MasterpieceStart uint64
	MasterpieceSize  uint64
	SignatureStart   uint64
	SignatureSize    uint64
}

// Encode encodes the Request.
func (r Request) Encode() []byte {
	return encodeWords(r.Width, r.Height, r.DraftStart, r.DraftSize)
}

// DecodeRequest decodes a Request payload.
func DecodeRequest(payload []byte) (r Request, err error) {
	w, err := decodeWords(payload, 4)
	if err != nil {
		return r, err
	}
	return Request{Width: w[0], Height: w[1], DraftStart: w[2], DraftSize: w[3]}, nil
}

// Encode encodes the Response.
func (r Response) Encode() []byte {
	return encodeWords(r.Height, r.Width,
		r.MasterpieceStart, r.MasterpieceSize,
		r.SignatureStart, r.SignatureSize)
}

// DecodeResponse decodes a Response payload.
func DecodeResponse(payload []byte) (r Response, err error) {
	w, err := decodeWords(payload, 6)
	if err != nil {
		return r, err
	}
	return Response{
		Height:           w[0],
		Width:            w[1],
		MasterpieceStart: w[2],
		MasterpieceSize:  w[3],
		SignatureStart:   w[4],
		SignatureSize:    w[5],
	}, nil
}

func encodeWords(words ...uint64) []byte {
	b := make([]byte, len(words)*WordSize)
	for n, w := range words {
		binary.LittleEndian.PutUint64(b[n*WordSize:], w)
	}
	return b
}

func decodeWords(b []byte, count int) ([]uint64, error) {
	if len(b) != count*WordSize {
		return nil, ErrMalformed
	}
	words := make([]uint64, count)
	for n := range words {
		words[n] = binary.LittleEndian.Uint64(b[n*WordSize:])
	}
	return words, nil
}
