package stream

import (
	"errors"
	"io"
)

var (
	errWriterClosed         = errors.New("cbrng/stream: writer already closed")
	errUnexpectedFinalFrame = errors.New("cbrng/stream: unexpected final frame payload")
)

func toCloser(v any) io.Closer {
	if c, ok := v.(io.Closer); ok {
		return c
	}
	return nil
}

func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
