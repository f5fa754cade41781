// Package stream bulk-exports and imports the words a counter-based engine
// draws, framing them with internal/chunkio and optionally compressing the
// framed payload. There is no cipher stage: the specification this package
// serves explicitly excludes cryptographic security from the engine's
// concerns, so unlike the chunked stream this package is modeled on, frames
// here carry plain bytes, not sealed ciphertext.
package stream

import (
	"fmt"
	"sync"

	"pkt.systems/cbrng/compression"
)

type config struct {
	chunkWords int
	compressor compression.Adapter
	bufferPool *sync.Pool
}

const (
	defaultChunkWords = 4096
	minChunkWords     = 16
)

// Option configures a Writer or Reader.
type Option func(*config)

func applyOptions(opts []Option) config {
	cfg := config{chunkWords: defaultChunkWords}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithChunkWords controls how many words are buffered into a single
// chunkio frame before it is flushed. Larger chunks reduce framing overhead
// but increase buffering.
func WithChunkWords(n int) Option {
	if n < minChunkWords {
		panic(fmt.Sprintf("cbrng/stream: chunk words must be >= %d", minChunkWords))
	}
	return func(cfg *config) {
		cfg.chunkWords = n
	}
}

// WithBufferPool records pool in the option set. Neither Writer nor Reader
// takes chunk buffers from it, so it does not change how they allocate.
func WithBufferPool(pool *sync.Pool) Option {
	return func(cfg *config) {
		cfg.bufferPool = pool
	}
}

// WithCompression selects the compression adapter applied to the word byte
// stream before it is cut into chunkio frames.
func WithCompression(adapter compression.Adapter) Option {
	return func(cfg *config) {
		cfg.compressor = adapter
	}
}

// WithGzip enables gzip compression using a pooled writer.
func WithGzip() Option {
	return WithCompression(compression.GzipDefault())
}

// WithSnappy enables Snappy compression using pooled readers/writers.
func WithSnappy() Option {
	return WithCompression(compression.Snappy())
}

// WithLZ4 enables LZ4 compression using pooled readers/writers.
func WithLZ4() Option {
	return WithCompression(compression.LZ4())
}
