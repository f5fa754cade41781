package compression

import (
	"compress/gzip"
	"io"
	"sync"
)

// gzipDefault is the only gzip adapter this package exposes: draw streams
// are already framed in fixed-size chunkWords chunks (see
// stream.WithChunkWords), so there is no long-lived writer whose
// compression/speed tradeoff would benefit from a caller-tunable level.
var gzipDefault = newGzipAdapter(gzip.BestSpeed)

// GzipDefault returns a gzip adapter, pooled across the writers it hands
// out, using gzip.BestSpeed.
func GzipDefault() Adapter { return gzipDefault }

func newGzipAdapter(level int) *gzipAdapter {
	adapter := &gzipAdapter{level: level}
	adapter.writerPool.New = func() any {
		w, err := gzip.NewWriterLevel(io.Discard, level)
		if err != nil {
			panic(err)
		}
		return w
	}
	return adapter
}

type gzipAdapter struct {
	level      int
	writerPool sync.Pool
}

func (a *gzipAdapter) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	gw := a.writerPool.Get().(*gzip.Writer)
	gw.Reset(w)
	return &pooledGzipWriter{Writer: gw, pool: &a.writerPool}, nil
}

func (a *gzipAdapter) WrapReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

type pooledGzipWriter struct {
	*gzip.Writer
	pool *sync.Pool
}

func (w *pooledGzipWriter) Close() error {
	err := w.Writer.Close()
	w.Writer.Reset(io.Discard)
	w.pool.Put(w.Writer)
	return err
}
