package stream

import (
	"bytes"
	"testing"

	"pkt.systems/cbrng/engine"
	"pkt.systems/cbrng/threefry"
)

func newTestEngine(t *testing.T) *engine.Engine[uint64] {
	t.Helper()
	p, err := threefry.New4[uint64]([]uint64{1, 2, 3, 4}, threefry.DefaultRounds)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}
	e, err := engine.New[uint64](p, engine.WithCounterBits[uint64](64))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func TestWriteReadDrawsRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	want := make([]uint64, 200)
	for i := range want {
		v, err := e.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		want[i] = v
	}

	e2 := newTestEngine(t)
	var buf bytes.Buffer
	w, err := NewWriter[uint64](&buf, WithChunkWords(32))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	n, err := WriteDraws(w, e2, uint64(len(want)))
	if err != nil {
		t.Fatalf("WriteDraws: %v", err)
	}
	if n != uint64(len(want)) {
		t.Fatalf("WriteDraws wrote %d, want %d", n, len(want))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader[uint64](&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := ReadDraws(r, uint64(len(want)))
	if err != nil {
		t.Fatalf("ReadDraws: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestWriteReadDrawsWithGzip(t *testing.T) {
	e := newTestEngine(t)
	var buf bytes.Buffer
	w, err := NewWriter[uint64](&buf, WithChunkWords(64), WithGzip())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := WriteDraws(w, e, 500); err != nil {
		t.Fatalf("WriteDraws: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2 := newTestEngine(t)
	r, err := NewReader[uint64](&buf, WithGzip())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := ReadDraws(r, 500)
	if err != nil {
		t.Fatalf("ReadDraws: %v", err)
	}
	for i := range got {
		want, err := e2.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got[i] != want {
			t.Fatalf("draw %d = %#x, want %#x", i, got[i], want)
		}
	}
}

func TestWriteReadDrawsWithLZ4AndSnappy(t *testing.T) {
	for _, tc := range []struct {
		name string
		opt  Option
	}{
		{"lz4", WithLZ4()},
		{"snappy", WithSnappy()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			var buf bytes.Buffer
			w, err := NewWriter[uint64](&buf, WithChunkWords(48), tc.opt)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			if _, err := WriteDraws(w, e, 300); err != nil {
				t.Fatalf("WriteDraws: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			e2 := newTestEngine(t)
			r, err := NewReader[uint64](&buf, tc.opt)
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			got, err := ReadDraws(r, 300)
			if err != nil {
				t.Fatalf("ReadDraws: %v", err)
			}
			for i := range got {
				want, err := e2.Next()
				if err != nil {
					t.Fatalf("Next: %v", err)
				}
				if got[i] != want {
					t.Fatalf("draw %d = %#x, want %#x", i, got[i], want)
				}
			}
		})
	}
}

func TestChunkWordsTooSmallPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for too-small chunk size")
		}
	}()
	WithChunkWords(1)
}

func TestReadPastFinalFrameReturnsEOF(t *testing.T) {
	e := newTestEngine(t)
	var buf bytes.Buffer
	w, err := NewWriter[uint64](&buf, WithChunkWords(16))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := WriteDraws(w, e, 10); err != nil {
		t.Fatalf("WriteDraws: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := NewReader[uint64](&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := ReadDraws(r, 11); err == nil {
		t.Fatalf("expected error reading past final frame")
	}
}
