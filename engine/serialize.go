package engine

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"pkt.systems/cbrng/wordutil"
)

// WriteTo writes e's textual representation: key words, base-counter
// words, the sequence counter, and the buffer index,
// each an unsigned decimal separated by a single space. Buffer contents are
// not written; ReadFrom regenerates them lazily.
func (e *Engine[W]) WriteTo(w io.Writer) (int64, error) {
	fields := make([]string, 0, e.prf.KeyLen()+e.n+2)
	for _, k := range e.prf.Key() {
		fields = append(fields, strconv.FormatUint(uint64(k), 10))
	}
	for _, b := range e.baseCounter {
		fields = append(fields, strconv.FormatUint(uint64(b), 10))
	}
	fields = append(fields, e.seq.String())
	fields = append(fields, strconv.Itoa(e.index))
	n, err := io.WriteString(w, strings.Join(fields, " "))
	return int64(n), err
}

// ReadFrom parses a stream written by WriteTo and, on success, replaces
// e's key, base counter, sequence counter, and buffer index. On any format
// or range error e is left unchanged and the error wraps ErrFormat or
// ErrOutOfRange.
func (e *Engine[W]) ReadFrom(r io.Reader) (int64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	keyLen := e.prf.KeyLen()
	total := keyLen + e.n + 2
	tokens := make([]string, 0, total)
	var consumed int64
	for sc.Scan() && len(tokens) < total {
		tok := sc.Text()
		consumed += int64(len(tok)) + 1
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return consumed, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(tokens) != total {
		return consumed, fmt.Errorf("%w: expected %d fields, got %d", ErrFormat, total, len(tokens))
	}

	bitSize := e.bitWidth
	key := make([]W, keyLen)
	for i := 0; i < keyLen; i++ {
		v, err := strconv.ParseUint(tokens[i], 10, bitSize)
		if err != nil {
			return consumed, fmt.Errorf("%w: key word %d: %v", ErrFormat, i, err)
		}
		key[i] = W(v)
	}
	base := make([]W, e.n)
	for i := 0; i < e.n; i++ {
		v, err := strconv.ParseUint(tokens[keyLen+i], 10, bitSize)
		if err != nil {
			return consumed, fmt.Errorf("%w: base counter word %d: %v", ErrFormat, i, err)
		}
		base[i] = W(v)
	}
	seq, ok := new(big.Int).SetString(tokens[keyLen+e.n], 10)
	if !ok || seq.Sign() < 0 {
		return consumed, fmt.Errorf("%w: sequence counter %q", ErrFormat, tokens[keyLen+e.n])
	}
	index, err := strconv.Atoi(tokens[keyLen+e.n+1])
	if err != nil || index < 0 || index > e.n {
		return consumed, fmt.Errorf("%w: buffer index %q", ErrFormat, tokens[keyLen+e.n+1])
	}

	rekeyed, err := e.prf.WithKey(key)
	if err != nil {
		return consumed, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	if err := checkBaseCounterReservedBits(base, e.n, e.bitWidth, e.counterBits); err != nil {
		return consumed, err
	}
	if seq.Cmp(e.maxSeq) > 0 {
		return consumed, fmt.Errorf("%w: sequence counter exceeds 2^CounterBits", ErrOutOfRange)
	}

	e.prf = rekeyed
	e.baseCounter = base
	e.seq = seq
	e.index = index
	e.dirty = true
	return consumed, nil
}

// Snapshot field numbers for the binary format below.
const (
	fieldKeyWords   = 1
	fieldBaseWords  = 2
	fieldSeqCounter = 3
	fieldBufIndex   = 4
)

// MarshalBinary encodes the same state as WriteTo as protobuf wire fields,
// without depending on a generated message type: key and base-counter words
// as length-delimited fixed-width big-endian bytes, the sequence counter as
// length-delimited big-endian magnitude bytes, and the buffer index as a
// varint.
func (e *Engine[W]) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldKeyWords, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packWords(e.prf.Key()))
	buf = protowire.AppendTag(buf, fieldBaseWords, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packWords(e.baseCounter))
	buf = protowire.AppendTag(buf, fieldSeqCounter, protowire.BytesType)
	buf = protowire.AppendBytes(buf, e.seq.Bytes())
	buf = protowire.AppendTag(buf, fieldBufIndex, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.index))
	return buf, nil
}

// UnmarshalBinary decodes a buffer produced by MarshalBinary. On any
// format or range error e is left unchanged.
func (e *Engine[W]) UnmarshalBinary(data []byte) error {
	var keyBytes, baseBytes, seqBytes []byte
	var index int
	haveIndex := false
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: bad tag", ErrFormat)
		}
		data = data[n:]
		switch num {
		case fieldKeyWords, fieldBaseWords, fieldSeqCounter:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("%w: bad bytes field %d", ErrFormat, num)
			}
			data = data[n:]
			switch num {
			case fieldKeyWords:
				keyBytes = v
			case fieldBaseWords:
				baseBytes = v
			case fieldSeqCounter:
				seqBytes = v
			}
		case fieldBufIndex:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("%w: bad varint field", ErrFormat)
			}
			data = data[n:]
			index = int(v)
			haveIndex = true
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("%w: bad unknown field", ErrFormat)
			}
			data = data[n:]
		}
	}
	if keyBytes == nil || baseBytes == nil || !haveIndex {
		return fmt.Errorf("%w: missing field", ErrFormat)
	}
	key := unpackWords[W](keyBytes, e.prf.KeyLen(), e.bitWidth)
	if key == nil {
		return fmt.Errorf("%w: key word count", ErrFormat)
	}
	base := unpackWords[W](baseBytes, e.n, e.bitWidth)
	if base == nil {
		return fmt.Errorf("%w: base counter word count", ErrFormat)
	}
	seq := new(big.Int).SetBytes(seqBytes)
	if index < 0 || index > e.n {
		return fmt.Errorf("%w: buffer index %d", ErrFormat, index)
	}

	rekeyed, err := e.prf.WithKey(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	if err := checkBaseCounterReservedBits(base, e.n, e.bitWidth, e.counterBits); err != nil {
		return err
	}
	if seq.Cmp(e.maxSeq) > 0 {
		return fmt.Errorf("%w: sequence counter exceeds 2^CounterBits", ErrOutOfRange)
	}

	e.prf = rekeyed
	e.baseCounter = base
	e.seq = seq
	e.index = index
	e.dirty = true
	return nil
}

// packWords encodes each word as a fixed-width big-endian field so the
// wire format is independent of the host's native endianness.
func packWords[W wordutil.Word](words []W) []byte {
	bitWidth := wordutil.BitsOf[W]()
	out := make([]byte, 0, len(words)*bitWidth/8)
	for _, w := range words {
		switch bitWidth {
		case 32:
			v := uint32(w)
			out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		case 64:
			v := uint64(w)
			out = append(out, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		}
	}
	return out
}

func unpackWords[W wordutil.Word](data []byte, n, bitWidth int) []W {
	stride := bitWidth / 8
	if len(data) != n*stride {
		return nil
	}
	out := make([]W, n)
	for i := 0; i < n; i++ {
		chunk := data[i*stride : (i+1)*stride]
		var v uint64
		for _, b := range chunk {
			v = v<<8 | uint64(b)
		}
		out[i] = W(v)
	}
	return out
}
