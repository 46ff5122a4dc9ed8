package catman

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrOutOfBounds = errors.New("read past end of buffer")
)

// Cursor walks a catman byte buffer sequentially. All multi-byte values in
// the format are little-endian. The buffer is never modified.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

func (c *Cursor) Tell() int {
	return c.off
}

func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// Seek moves the read position to an absolute offset. Seeking backward is
// legal; seeking past the end of the buffer is not.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.buf) {
		return fmt.Errorf("seek to %d in %d-byte buffer: %w", off, len(c.buf), ErrOutOfBounds)
	}
	c.off = off
	return nil
}

// take returns the next n bytes and advances the cursor, or fails without
// advancing if fewer than n bytes remain.
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, fmt.Errorf("read %d bytes at offset %d of %d: %w", n, c.off, len(c.buf), ErrOutOfBounds)
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadI32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (c *Cursor) ReadF32() (float32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (c *Cursor) ReadF64() (float64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadString reads exactly n bytes and strips trailing NUL, pad and control
// bytes. Fixed-width text fields in the format are padded with zeros or
// spaces.
func (c *Cursor) ReadString(n int) (string, error) {
	b, err := c.take(n)
	if err != nil {
		return "", err
	}
	return strings.TrimRightFunc(string(b), func(r rune) bool {
		return r <= ' ' || r == 0x7f
	}), nil
}

// ReadShortString reads an int16 length prefix followed by that many bytes
// of text.
func (c *Cursor) ReadShortString() (string, error) {
	n, err := c.ReadI16()
	if err != nil {
		return "", err
	}
	return c.ReadString(int(n))
}

// ReadLongString is ReadShortString with an int32 length prefix.
func (c *Cursor) ReadLongString() (string, error) {
	n, err := c.ReadI32()
	if err != nil {
		return "", err
	}
	return c.ReadString(int(n))
}

// Skip advances the cursor by n bytes without interpreting them.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}
