package engine

import "errors"

// ErrOutOfRange is raised by construction, seed and restart when a key or
// base counter has nonzero bits in a position the engine reserves for the
// sequence counter (or, for keys, for the PRF's own key-schedule tweak).
var ErrOutOfRange = errors.New("engine: value out of range")

// ErrExhausted is raised by Next when the sequence counter has reached its
// maximum and the output buffer is empty. Recovery requires Restart or Seed.
var ErrExhausted = errors.New("engine: exhausted")

// ErrFormat is raised by ReadFrom when the textual stream is malformed.
var ErrFormat = errors.New("engine: malformed stream")

// ErrCounterBits is raised when CounterBits falls outside [1, N*bits(W)].
var ErrCounterBits = errors.New("engine: counter bits out of range")
