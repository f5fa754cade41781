// Package compression wraps the byte stream stream.Writer/Reader frame
// around engine-drawn words with an optional compression stage. Draw words
// are close to uniformly random by construction, so compression buys little
// on the words themselves; the adapters here exist for the case where a
// caller writes structured metadata through stream.Writer alongside the
// draws. Compression runs before framing, so chunkio headers are never
// compressed.
package compression

import "io"

// Adapter wraps a chunkio byte stream with a compression/decompression
// stage. WrapWriter/WrapReader are called once per stream.Writer/Reader,
// so an Adapter implementation is free to pool the concrete
// reader/writer values it hands out.
type Adapter interface {
	WrapWriter(io.Writer) (io.WriteCloser, error)
	WrapReader(io.Reader) (io.ReadCloser, error)
}
