// Package chunkio implements the small framing format used by the stream
// package to break a bulk export of engine draws into recoverable chunks.
package chunkio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// FrameHeaderSize is the number of bytes in every frame header.
	FrameHeaderSize = 11

	frameVersion1   = 1
	flagFinalFrame  = 1 << 0
	maxFrameCounter = ^uint32(0)

	// WordBits32 and WordBits64 are the only values chunkio expects to see
	// in Header.WordBits; any engine draw stream carries one or the other.
	WordBits32 uint8 = 32
	WordBits64 uint8 = 64
)

// Header models the metadata prefix for every chunk of an exported draw
// stream. Counter is an i/o-level chunk index; it has no relationship to an
// engine's sequence counter and must not be conflated with it. WordBits
// self-describes the bit width of the words packed into the chunk's
// payload (32 or 64), so a Reader instantiated for the wrong word type
// fails on the first frame instead of silently reinterpreting the byte
// stream at the wrong stride.
type Header struct {
	Version  uint8
	Flags    uint8
	WordBits uint8
	Counter  uint32
	Payload  uint32
}

// ErrVersionMismatch indicates that the frame version is unsupported.
var ErrVersionMismatch = errors.New("cbrng/chunkio: unsupported frame version")

// ErrCounterMismatch indicates out-of-order or duplicated frames.
var ErrCounterMismatch = errors.New("cbrng/chunkio: frame counter mismatch")

// ErrWordWidthMismatch indicates a frame's WordBits does not match the word
// width the reader was instantiated for.
var ErrWordWidthMismatch = errors.New("cbrng/chunkio: word width mismatch")

// EncodeHeader serialises the header into buf. buf must be at least
// FrameHeaderSize bytes long.
func EncodeHeader(buf []byte, h Header) {
	if len(buf) < FrameHeaderSize {
		panic("cbrng/chunkio: header buffer too small")
	}
	buf[0] = h.Version
	buf[1] = h.Flags
	buf[2] = h.WordBits
	binary.BigEndian.PutUint32(buf[3:7], h.Counter)
	binary.BigEndian.PutUint32(buf[7:11], h.Payload)
}

// DecodeHeader parses buf into a Header. The payload length is returned in
// bytes.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < FrameHeaderSize {
		return Header{}, fmt.Errorf("decode header: need %d bytes, got %d", FrameHeaderSize, len(buf))
	}
	h := Header{
		Version:  buf[0],
		Flags:    buf[1],
		WordBits: buf[2],
		Counter:  binary.BigEndian.Uint32(buf[3:7]),
		Payload:  binary.BigEndian.Uint32(buf[7:11]),
	}
	if h.Version != frameVersion1 {
		return Header{}, ErrVersionMismatch
	}
	return h, nil
}

// CheckWordBits reports ErrWordWidthMismatch if h's WordBits does not match
// want (the caller's own word width, WordBits32 or WordBits64).
func CheckWordBits(h Header, want uint8) error {
	if h.WordBits != want {
		return fmt.Errorf("%w: frame carries %d-bit words, reader wants %d", ErrWordWidthMismatch, h.WordBits, want)
	}
	return nil
}

// NextCounter validates and increments the counter, returning an error if
// the counter space is exhausted.
func NextCounter(current uint32) (uint32, error) {
	if current == maxFrameCounter {
		return 0, fmt.Errorf("cbrng/chunkio: frame counter exhausted")
	}
	return current + 1, nil
}

// FinalFlag reports whether the header marks the final frame in the stream.
func FinalFlag(h Header) bool {
	return h.Flags&flagFinalFrame == flagFinalFrame
}

// MarkFinal sets the final-frame flag on the header.
func MarkFinal(h *Header) {
	h.Flags |= flagFinalFrame
}

// FrameVersion returns the currently supported frame version.
func FrameVersion() uint8 {
	return frameVersion1
}
