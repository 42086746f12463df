package core

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		code    string
		kind    SampleKind
		width   int
		order   binary.ByteOrder
		integer bool
	}{
		{"i2", IntLE, 2, binary.LittleEndian, true},
		{"i4", IntLE, 4, binary.LittleEndian, true},
		{"i8", IntLE, 8, binary.LittleEndian, true},
		{"f4", FloatLE, 4, binary.LittleEndian, false},
		{"f8", FloatLE, 8, binary.LittleEndian, false},
		{"s2", IntBE, 2, binary.BigEndian, true},
		{"s4", IntBE, 4, binary.BigEndian, true},
		{"s8", IntBE, 8, binary.BigEndian, true},
		{"t4", FloatBE, 4, binary.BigEndian, false},
		{"t8", FloatBE, 8, binary.BigEndian, false},
	}
	for _, tc := range tests {
		dt, err := ParseDataType(tc.code)
		if err != nil {
			t.Errorf("ParseDataType(%q): %v", tc.code, err)
			continue
		}
		if dt.Kind != tc.kind || dt.Width != tc.width {
			t.Errorf("ParseDataType(%q): got %v/%d", tc.code, dt.Kind, dt.Width)
		}
		if dt.ByteOrder() != tc.order {
			t.Errorf("ParseDataType(%q): wrong byte order", tc.code)
		}
		if dt.Integer() != tc.integer {
			t.Errorf("ParseDataType(%q): Integer() = %v", tc.code, dt.Integer())
		}
		if dt.String() != tc.code {
			t.Errorf("ParseDataType(%q): String() = %q", tc.code, dt.String())
		}
	}
}

func TestParseDataType_Rejected(t *testing.T) {
	for _, code := range []string{"f2", "t2", "x4", "i3", "i", ""} {
		if _, err := ParseDataType(code); !errors.Is(err, ErrUnsupportedDataType) {
			t.Errorf("ParseDataType(%q): got %v, want ErrUnsupportedDataType", code, err)
		}
	}
}
