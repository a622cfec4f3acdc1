// Package render turns raw payload bytes into operator-readable text.
//
// Two views are produced:
//
//   - Plain: one character per byte, graphic ASCII and spaces as-is, everything else as '.'
//   - HexDump: lowercase hex digits with a mid-row "- " marker and an ASCII gutter
//
// The hex dump keeps an 8-slot lookback ring that is written cyclically while
// rows are 16 bytes wide, so each gutter shows only the most recent 8 bytes.
// Rows are also closed on every index divisible by 16 (including index 0)
// and on the final byte. The output layout is stable byte for byte.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codefionn/tcpresponder/internal/consts"
)

var (
	// ErrPayloadTooLarge is returned when the valid length exceeds consts.MaxPayloadSize
	ErrPayloadTooLarge = errors.New("payload exceeds maximum renderable size")
	// ErrInvalidLength is returned when the valid length does not fit the buffer
	ErrInvalidLength = errors.New("invalid payload length")
)

const hexDigits = "0123456789abcdef"

// PrintableChar maps a byte to its display character.
// Graphic ASCII (0x21..0x7e) is shown as itself, anything else as '.'.
func PrintableChar(c byte) byte {
	if c > 0x20 && c < 0x7f {
		return c
	}
	return '.'
}

func checkLength(buf []byte, n int) error {
	if n > consts.MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrPayloadTooLarge, n, consts.MaxPayloadSize)
	}
	if n < 0 || n > len(buf) {
		return fmt.Errorf("%w: %d for buffer of %d bytes", ErrInvalidLength, n, len(buf))
	}
	return nil
}

// Plain renders buf[:n] in nearly readable form: exactly n characters,
// with spaces preserved and non-graphic bytes replaced by '.'.
func Plain(buf []byte, n int) (string, error) {
	if err := checkLength(buf, n); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(n)
	for _, c := range buf[:n] {
		if c == ' ' {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteByte(PrintableChar(c))
	}
	return sb.String(), nil
}

// HexDump renders buf[:n] as rows of hex digits followed by an ASCII gutter.
func HexDump(buf []byte, n int) (string, error) {
	if err := checkLength(buf, n); err != nil {
		return "", err
	}

	var ring [consts.HexGutterWidth]byte
	var sb strings.Builder
	sb.Grow(n*4 + (n/consts.HexRowWidth+2)*(consts.HexGutterWidth+4))

	for i, c := range buf[:n] {
		ring[i%consts.HexGutterWidth] = c
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
		sb.WriteByte(' ')

		switch {
		case i%consts.HexRowWidth == 0 || i+1 == n:
			sb.WriteString(" | ")
			for _, g := range ring {
				sb.WriteByte(PrintableChar(g))
			}
			sb.WriteByte('\n')
		case i%consts.HexGutterWidth == 0:
			sb.WriteString("- ")
		}
	}
	return sb.String(), nil
}

// Rows returns how many lines HexDump produces for a payload of n bytes.
func Rows(n int) int {
	if n <= 0 {
		return 0
	}
	rows := (n-1)/consts.HexRowWidth + 1
	if (n-1)%consts.HexRowWidth != 0 {
		rows++
	}
	return rows
}
