/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package protocol

import (
	"encoding/binary"
	"unicode/utf8"

	liberr "github.com/svxreflector/goreflector/errors"
)

// Writer accumulates a message payload (type code excluded) in big-endian,
// length-prefixed-string wire format.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{buf: make([]byte, 0, 64)} }

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) U8(v uint8) *Writer { w.buf = append(w.buf, v); return w }

func (w *Writer) U16(v uint16) *Writer {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) Raw(b []byte) *Writer { w.buf = append(w.buf, b...); return w }

// String writes a u16-length-prefixed UTF-8 string.
func (w *Writer) String(s string) *Writer {
	w.U16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

// Bytes16 writes a u16-length-prefixed opaque byte slice.
func (w *Writer) Blob16(b []byte) *Writer {
	w.U16(uint16(len(b)))
	w.buf = append(w.buf, b...)
	return w
}

// Bytes32 writes a u32-length-prefixed opaque byte slice (used for audio
// payloads, which can exceed 64KiB of jitter-buffered samples in theory).
func (w *Writer) Blob32(b []byte) *Writer {
	w.U32(uint32(len(b)))
	w.buf = append(w.buf, b...)
	return w
}

func (w *Writer) StringVec(v []string) *Writer {
	w.U16(uint16(len(v)))
	for _, s := range v {
		w.String(s)
	}
	return w
}

func (w *Writer) U32Set(v []uint32) *Writer {
	w.U16(uint16(len(v)))
	for _, x := range v {
		w.U32(x)
	}
	return w
}

// Reader consumes a message payload with bounds checking; every accessor
// returns protocol.ErrorTruncated (wrapped) instead of panicking on a short
// buffer, since a peer-controlled byte stream must never crash the reactor.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) liberr.Error {
	if r.Remaining() < n {
		return ErrorTruncated.Error(nil)
	}
	return nil
}

func (r *Reader) U8() (uint8, liberr.Error) {
	if e := r.need(1); e != nil {
		return 0, e
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) U16() (uint16, liberr.Error) {
	if e := r.need(2); e != nil {
		return 0, e
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) U32() (uint32, liberr.Error) {
	if e := r.need(4); e != nil {
		return 0, e
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) Raw(n int) ([]byte, liberr.Error) {
	if e := r.need(n); e != nil {
		return nil, e
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

func (r *Reader) String() (string, liberr.Error) {
	n, e := r.U16()
	if e != nil {
		return "", e
	}
	if e = r.need(int(n)); e != nil {
		return "", ErrorBadString.Error(nil)
	}
	v := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	if !utf8.Valid(v) {
		return "", ErrorBadUTF8.Error(nil)
	}
	return string(v), nil
}

func (r *Reader) Blob16() ([]byte, liberr.Error) {
	n, e := r.U16()
	if e != nil {
		return nil, e
	}
	return r.Raw(int(n))
}

func (r *Reader) Blob32() ([]byte, liberr.Error) {
	n, e := r.U32()
	if e != nil {
		return nil, e
	}
	return r.Raw(int(n))
}

func (r *Reader) StringVec() ([]string, liberr.Error) {
	n, e := r.U16()
	if e != nil {
		return nil, e
	}
	out := make([]string, 0, n)
	for i := uint16(0); i < n; i++ {
		s, e := r.String()
		if e != nil {
			return nil, e
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Reader) U32Set() ([]uint32, liberr.Error) {
	n, e := r.U16()
	if e != nil {
		return nil, e
	}
	out := make([]uint32, 0, n)
	for i := uint16(0); i < n; i++ {
		v, e := r.U32()
		if e != nil {
			return nil, e
		}
		out = append(out, v)
	}
	return out, nil
}
