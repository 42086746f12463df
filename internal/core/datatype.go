package core

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// SampleKind tags the sample representation and sender byte order encoded
// in the first character of a tracebuf2 data type code.
type SampleKind uint8

const (
	IntLE   SampleKind = iota // "i" — integer, little-endian
	FloatLE                   // "f" — IEEE float, little-endian
	IntBE                     // "s" — integer, big-endian
	FloatBE                   // "t" — IEEE float, big-endian
)

// DataType is the decoded two-character data type code, e.g. "i4" or "t8".
type DataType struct {
	Kind  SampleKind
	Width int // bytes per sample: 2, 4 or 8
}

// ParseDataType decodes a data type code. Float samples narrower than four
// bytes have no wire representation and are rejected.
func ParseDataType(code string) (DataType, error) {
	if len(code) < 2 {
		return DataType{}, errors.Wrapf(ErrUnsupportedDataType, "code %q", code)
	}
	var kind SampleKind
	switch code[0] {
	case 'i':
		kind = IntLE
	case 'f':
		kind = FloatLE
	case 's':
		kind = IntBE
	case 't':
		kind = FloatBE
	default:
		return DataType{}, errors.Wrapf(ErrUnsupportedDataType, "code %q", code)
	}
	var width int
	switch code[1] {
	case '2':
		width = 2
	case '4':
		width = 4
	case '8':
		width = 8
	default:
		return DataType{}, errors.Wrapf(ErrUnsupportedDataType, "code %q", code)
	}
	if width == 2 && (kind == FloatLE || kind == FloatBE) {
		return DataType{}, errors.Wrapf(ErrUnsupportedDataType, "float16 code %q", code)
	}
	return DataType{Kind: kind, Width: width}, nil
}

// ByteOrder is the byte order the sender used for both the header fields
// and the sample payload.
func (d DataType) ByteOrder() binary.ByteOrder {
	if d.Kind == IntBE || d.Kind == FloatBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Integer reports whether the samples are integers rather than IEEE floats.
func (d DataType) Integer() bool {
	return d.Kind == IntLE || d.Kind == IntBE
}

func (d DataType) String() string {
	var c byte
	switch d.Kind {
	case IntLE:
		c = 'i'
	case FloatLE:
		c = 'f'
	case IntBE:
		c = 's'
	case FloatBE:
		c = 't'
	}
	return fmt.Sprintf("%c%d", c, d.Width)
}
