// Package chario writes single characters to an io.Writer the way a
// Tastier program's WriteS produces them: printable ASCII and the tab,
// newline and carriage-return controls pass through untouched, anything
// else is hex-escaped so a malformed program's string data can never
// smuggle other raw control bytes into a terminal.
package chario

import (
	"fmt"
	"io"
)

// WriteByte writes one WriteS-decoded byte value to w.
//
// Values in the printable ASCII range (0x20..0x7e) and the common
// whitespace controls (tab, newline, carriage return) are written
// directly. Anything else is written as a "\xHH" escape.
func WriteByte(w io.Writer, v int16) (n int, err error) {
	switch {
	case v == '\t' || v == '\n' || v == '\r':
		return writeRaw(w, byte(v))
	case v >= 0x20 && v < 0x7f:
		return writeRaw(w, byte(v))
	default:
		return fmt.Fprintf(w, "\\x%02x", uint8(v))
	}
}

func writeRaw(w io.Writer, b byte) (int, error) {
	if bw, ok := w.(io.ByteWriter); ok {
		if err := bw.WriteByte(b); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return w.Write([]byte{b})
}

// WriteString writes each byte of s, which has already been decoded from
// WriteS word values, using WriteByte.
func WriteString(w io.Writer, s string) (n int, err error) {
	for i := 0; i < len(s); i++ {
		m, err := WriteByte(w, int16(s[i]))
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
