package stream

import (
	"errors"
	"fmt"
	"io"

	"pkt.systems/cbrng/internal/chunkio"
	"pkt.systems/cbrng/wordutil"
)

// frameReader decodes chunkio frames from src into a flat byte stream,
// terminating at the final frame.
type frameReader struct {
	src       io.Reader
	headerBuf []byte
	payload   []byte
	offset    int
	counter   uint32
	wordBits  uint8
	finalSeen bool
}

func (f *frameReader) Read(p []byte) (int, error) {
	for f.offset == len(f.payload) {
		if f.finalSeen {
			return 0, io.EOF
		}
		if err := f.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, err
		}
	}
	n := copy(p, f.payload[f.offset:])
	f.offset += n
	return n, nil
}

func (f *frameReader) fill() error {
	if _, err := io.ReadFull(f.src, f.headerBuf); err != nil {
		return err
	}
	header, err := chunkio.DecodeHeader(f.headerBuf)
	if err != nil {
		return err
	}
	if header.Counter != f.counter {
		return chunkio.ErrCounterMismatch
	}
	if err := chunkio.CheckWordBits(header, f.wordBits); err != nil {
		return err
	}
	payloadLen := int(header.Payload)
	if cap(f.payload) < payloadLen {
		f.payload = make([]byte, payloadLen)
	} else {
		f.payload = f.payload[:payloadLen]
	}
	if _, err := io.ReadFull(f.src, f.payload); err != nil {
		return err
	}
	if chunkio.FinalFlag(header) {
		if payloadLen != 0 {
			return errUnexpectedFinalFrame
		}
		f.finalSeen = true
		f.payload = f.payload[:0]
		f.offset = 0
		return io.EOF
	}
	f.offset = 0
	next, err := chunkio.NextCounter(f.counter)
	if err != nil {
		return err
	}
	f.counter = next
	return nil
}

// Reader bulk-imports words framed by a Writer, decompressing first if the
// same compression option was used to produce the stream.
type Reader[W wordutil.Word] struct {
	stride  int
	src     io.Reader
	closer  io.Closer
	scratch []byte
}

// NewReader constructs a Reader over src.
func NewReader[W wordutil.Word](src io.Reader, opts ...Option) (*Reader[W], error) {
	cfg := applyOptions(opts)
	stride := wordutil.BitsOf[W]() / 8
	fr := &frameReader{
		src:       src,
		headerBuf: make([]byte, chunkio.FrameHeaderSize),
		payload:   make([]byte, 0, cfg.chunkWords*stride),
		wordBits:  uint8(wordutil.BitsOf[W]()),
	}
	r := &Reader[W]{
		stride:  stride,
		closer:  toCloser(src),
		scratch: make([]byte, stride),
	}
	if cfg.compressor != nil {
		rc, err := cfg.compressor.WrapReader(fr)
		if err != nil {
			return nil, fmt.Errorf("cbrng/stream: reader: %w", err)
		}
		r.src = rc
	} else {
		r.src = fr
	}
	return r, nil
}

// ReadWord decodes the next big-endian word from the stream.
func (r *Reader[W]) ReadWord() (W, error) {
	if _, err := io.ReadFull(r.src, r.scratch); err != nil {
		var zero W
		return zero, err
	}
	var v uint64
	for _, b := range r.scratch {
		v = v<<8 | uint64(b)
	}
	return W(v), nil
}

// Close releases any decompression resources and closes the source if it
// implements io.Closer.
func (r *Reader[W]) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		_ = c.Close()
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ReadDraws reads exactly n words from r.
func ReadDraws[W wordutil.Word](r *Reader[W], n uint64) ([]W, error) {
	out := make([]W, 0, n)
	for i := uint64(0); i < n; i++ {
		w, err := r.ReadWord()
		if err != nil {
			return out, err
		}
		out = append(out, w)
	}
	return out, nil
}
