package types

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bftledger/ledger/crypto"
)

// Messages are encoded as a flat sequence of protobuf fields numbered from 1
// in declaration order. Every scalar field is always present so an encoding
// is canonical: decoding rejects missing, reordered, duplicated or trailing
// fields. A repeated field may occur zero or more times in a row.

var errTrailingBytes = errors.New("trailing bytes after last field")

type encoder struct {
	buf   []byte
	field protowire.Number
}

func (e *encoder) next() protowire.Number {
	e.field++
	return e.field
}

func (e *encoder) uint(v uint64) {
	e.buf = protowire.AppendTag(e.buf, e.next(), protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

func (e *encoder) int(v int64) {
	e.uint(protowire.EncodeZigZag(v))
}

func (e *encoder) time(t time.Time) {
	e.int(t.UnixNano())
}

func (e *encoder) bytes(bz []byte) {
	e.buf = protowire.AppendTag(e.buf, e.next(), protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, bz)
}

func (e *encoder) string(s string) {
	e.buf = protowire.AppendTag(e.buf, e.next(), protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, s)
}

func (e *encoder) hash(h crypto.Hash) {
	e.bytes(h[:])
}

func (e *encoder) hashes(hs []crypto.Hash) {
	num := e.next()
	for _, h := range hs {
		e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
		e.buf = protowire.AppendBytes(e.buf, h[:])
	}
}

// decoder reads fields in the order they were written. The first error is
// sticky; all later reads return zero values and finish reports it.
type decoder struct {
	buf   []byte
	field protowire.Number
	err   error
}

func newDecoder(bz []byte) *decoder {
	return &decoder{buf: bz}
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = fmt.Errorf("field %d: %w", d.field, err)
	}
}

func (d *decoder) tag(want protowire.Type) bool {
	if d.err != nil {
		return false
	}
	d.field++
	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return false
	}
	if num != d.field || typ != want {
		d.fail(fmt.Errorf("unexpected field %d of wire type %d", num, typ))
		return false
	}
	d.buf = d.buf[n:]
	return true
}

func (d *decoder) uint() uint64 {
	if !d.tag(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) uint32() uint32 {
	v := d.uint()
	if v > 1<<32-1 {
		d.fail(fmt.Errorf("value %d overflows uint32", v))
		return 0
	}
	return uint32(v)
}

func (d *decoder) int() int64 {
	return protowire.DecodeZigZag(d.uint())
}

func (d *decoder) time() time.Time {
	return time.Unix(0, d.int()).UTC()
}

func (d *decoder) bytes() []byte {
	if !d.tag(protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return nil
	}
	d.buf = d.buf[n:]
	return append([]byte(nil), v...)
}

func (d *decoder) string() string {
	return string(d.bytes())
}

func (d *decoder) hash() crypto.Hash {
	bz := d.bytes()
	if d.err != nil {
		return crypto.ZeroHash
	}
	h, err := crypto.HashFromBytes(bz)
	if err != nil {
		d.fail(err)
	}
	return h
}

func (d *decoder) hashes() []crypto.Hash {
	if d.err != nil {
		return nil
	}
	d.field++
	var hs []crypto.Hash
	for len(d.buf) > 0 {
		num, typ, n := protowire.ConsumeTag(d.buf)
		if n < 0 {
			d.fail(protowire.ParseError(n))
			return nil
		}
		if num != d.field {
			break
		}
		if typ != protowire.BytesType {
			d.fail(fmt.Errorf("unexpected wire type %d", typ))
			return nil
		}
		v, m := protowire.ConsumeBytes(d.buf[n:])
		if m < 0 {
			d.fail(protowire.ParseError(m))
			return nil
		}
		h, err := crypto.HashFromBytes(v)
		if err != nil {
			d.fail(err)
			return nil
		}
		hs = append(hs, h)
		d.buf = d.buf[n+m:]
	}
	return hs
}

func (d *decoder) finish() error {
	if d.err == nil && len(d.buf) != 0 {
		d.err = errTrailingBytes
	}
	return d.err
}
