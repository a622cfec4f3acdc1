package render

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/tcpresponder/internal/consts"
)

func TestPrintableChar(t *testing.T) {
	tests := []struct {
		input    byte
		expected byte
	}{
		{'A', 'A'},
		{'~', '~'},
		{'!', '!'},
		{' ', '.'},
		{0x00, '.'},
		{'\n', '.'},
		{0x7f, '.'},
		{0x80, '.'},
		{0xff, '.'},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PrintableChar(tt.input), "PrintableChar(%#x)", tt.input)
	}
}

func TestPlain(t *testing.T) {
	buf := []byte("GET / HTTP/1.1\r\nHost: x\x7f\x00")
	out, err := Plain(buf, len(buf))
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1..Host: x..", out)
}

func TestPlainRespectsValidLength(t *testing.T) {
	buf := make([]byte, 64)
	copy(buf, "hello world")

	out, err := Plain(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = Plain(buf, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPlainLengthProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		buf := make([]byte, rng.Intn(512)+1)
		rng.Read(buf)
		n := rng.Intn(len(buf) + 1)

		out, err := Plain(buf, n)
		require.NoError(t, err)
		require.Len(t, out, n)

		for i := 0; i < n; i++ {
			c := out[i]
			switch {
			case c == buf[i]:
				assert.True(t, buf[i] == ' ' || (buf[i] > 0x20 && buf[i] < 0x7f), "byte %#x rendered as itself", buf[i])
			case c == '.':
			default:
				t.Fatalf("byte %#x rendered as %q", buf[i], c)
			}
		}
	}
}

func TestHexDumpHTTPRequestLine(t *testing.T) {
	buf := []byte("GET / HTTP/1.1\r\n")
	out, err := HexDump(buf, len(buf))
	require.NoError(t, err)

	expected := "47  | G.......\n" +
		"45 54 20 2f 20 48 54 54 - 50 2f 31 2e 31 0d 0a  | TP/1.1..\n"
	assert.Equal(t, expected, out)
}

func TestHexDumpZeroRow(t *testing.T) {
	buf := make([]byte, 16)
	out, err := HexDump(buf, len(buf))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "00  | ........", lines[0])
	assert.Equal(t, strings.Repeat("00 ", 8)+"- "+strings.Repeat("00 ", 7)+" | ........", lines[1])
}

func TestHexDumpGutterShowsLastEightBytes(t *testing.T) {
	buf := []byte("ABCDEFGHIJKLMNOPQ")
	out, err := HexDump(buf, len(buf))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " | A......."), lines[0])
	// index 16 closes the second row; the ring then holds Q,J..P
	assert.True(t, strings.HasSuffix(lines[1], " | QJKLMNOP"), lines[1])
	assert.Contains(t, lines[1], "49 - 4a")
}

func TestHexDumpSingleByte(t *testing.T) {
	out, err := HexDump([]byte{0x41}, 1)
	require.NoError(t, err)
	assert.Equal(t, "41  | A.......\n", out)
}

func TestHexDumpEmpty(t *testing.T) {
	out, err := HexDump([]byte{1, 2, 3}, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestHexDumpMaxPayload(t *testing.T) {
	buf := bytes.Repeat([]byte{'x'}, consts.MaxPayloadSize)
	out, err := HexDump(buf, len(buf))
	require.NoError(t, err)
	assert.Equal(t, Rows(len(buf)), strings.Count(out, "\n"))
	assert.Equal(t, 4097, Rows(len(buf)))
}

func TestHexDumpTooLarge(t *testing.T) {
	buf := make([]byte, consts.MaxPayloadSize+1)

	_, err := HexDump(buf, len(buf))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = Plain(buf, len(buf))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestInvalidLength(t *testing.T) {
	buf := make([]byte, 4)

	_, err := HexDump(buf, 5)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = Plain(buf, -1)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestRows(t *testing.T) {
	tests := []struct {
		n    int
		rows int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{16, 2},
		{17, 2},
		{18, 3},
		{33, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.rows, Rows(tt.n), "Rows(%d)", tt.n)

		out, err := HexDump(make([]byte, tt.n), tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.rows, strings.Count(out, "\n"), "newlines for n=%d", tt.n)
	}
}
