package stream

import (
	"fmt"
	"io"

	"pkt.systems/cbrng/engine"
	"pkt.systems/cbrng/internal/chunkio"
	"pkt.systems/cbrng/wordutil"
)

// Writer bulk-exports the words an engine draws, optionally compressing
// their bytes and then framing the result with internal/chunkio.
type Writer[W wordutil.Word] struct {
	dst        io.Writer
	counter    uint32
	chunkWords int
	stride     int
	wordBits   uint8
	headerBuf  []byte
	plain      []byte
	closer     io.Closer
	closed     bool

	compressor io.WriteCloser
}

// NewWriter constructs a Writer over dst.
func NewWriter[W wordutil.Word](dst io.Writer, opts ...Option) (*Writer[W], error) {
	cfg := applyOptions(opts)
	stride := wordutil.BitsOf[W]() / 8
	w := &Writer[W]{
		dst:        dst,
		chunkWords: cfg.chunkWords,
		stride:     stride,
		wordBits:   uint8(wordutil.BitsOf[W]()),
		headerBuf:  make([]byte, chunkio.FrameHeaderSize),
		plain:      make([]byte, 0, cfg.chunkWords*stride),
		closer:     toCloser(dst),
	}
	if cfg.compressor != nil {
		comp, err := cfg.compressor.WrapWriter(&plainSink[W]{w: w})
		if err != nil {
			return nil, fmt.Errorf("cbrng/stream: writer: %w", err)
		}
		w.compressor = comp
	}
	return w, nil
}

// WriteWord appends one word's big-endian bytes to the pending chunk.
func (w *Writer[W]) WriteWord(word W) error {
	buf := make([]byte, w.stride)
	v := uint64(word)
	for i := w.stride - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	_, err := w.Write(buf)
	return err
}

// Write implements io.Writer over the raw byte encoding of drawn words.
func (w *Writer[W]) Write(p []byte) (int, error) {
	if w.compressor != nil {
		return w.compressor.Write(p)
	}
	return w.writePlain(p)
}

func (w *Writer[W]) writePlain(p []byte) (int, error) {
	if w.closed {
		return 0, errWriterClosed
	}
	written := 0
	chunkBytes := w.chunkWords * w.stride

	if len(w.plain) > 0 {
		space := chunkBytes - len(w.plain)
		if space > len(p) {
			w.plain = append(w.plain, p...)
			return len(p), nil
		}
		w.plain = append(w.plain, p[:space]...)
		if err := w.emitChunk(w.plain, false); err != nil {
			return written, err
		}
		written += space
		w.plain = w.plain[:0]
		p = p[space:]
	}

	for len(p) >= chunkBytes {
		if err := w.emitChunk(p[:chunkBytes], false); err != nil {
			return written, err
		}
		p = p[chunkBytes:]
		written += chunkBytes
	}

	if len(p) > 0 {
		w.plain = append(w.plain, p...)
		written += len(p)
	}
	return written, nil
}

// Close flushes any buffered bytes, emits the final frame, and closes dst
// if it implements io.Closer.
func (w *Writer[W]) Close() error {
	if w.closed {
		return nil
	}
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			return fmt.Errorf("cbrng/stream: close compressor: %w", err)
		}
		w.compressor = nil
	}
	if len(w.plain) > 0 {
		if err := w.emitChunk(w.plain, false); err != nil {
			return err
		}
		w.plain = w.plain[:0]
	}
	if err := w.emitChunk(nil, true); err != nil {
		return err
	}
	w.closed = true
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("cbrng/stream: close destination: %w", err)
		}
	}
	return nil
}

func (w *Writer[W]) emitChunk(payload []byte, final bool) error {
	if final {
		payload = payload[:0]
	}
	if !final && len(payload) == 0 {
		return nil
	}

	var header chunkio.Header
	header.Version = chunkio.FrameVersion()
	header.WordBits = w.wordBits
	header.Counter = w.counter
	header.Payload = uint32(len(payload))
	if final {
		chunkio.MarkFinal(&header)
	}
	chunkio.EncodeHeader(w.headerBuf, header)

	if err := writeFull(w.dst, w.headerBuf); err != nil {
		return err
	}
	if err := writeFull(w.dst, payload); err != nil {
		return err
	}
	if final {
		return nil
	}
	next, err := chunkio.NextCounter(w.counter)
	if err != nil {
		return err
	}
	w.counter = next
	return nil
}

type plainSink[W wordutil.Word] struct {
	w *Writer[W]
}

func (p *plainSink[W]) Write(b []byte) (int, error) {
	return p.w.writePlain(b)
}

// WriteDraws draws n words from e and writes them to w, stopping early and
// returning the underlying error (e.g. ErrExhausted) if a draw fails.
func WriteDraws[W wordutil.Word](w *Writer[W], e *engine.Engine[W], n uint64) (uint64, error) {
	var i uint64
	for ; i < n; i++ {
		word, err := e.Next()
		if err != nil {
			return i, err
		}
		if err := w.WriteWord(word); err != nil {
			return i, err
		}
	}
	return i, nil
}
