package consts

import "time"

// Payload limits
const (
	// MaxPayloadSize is the largest payload the renderer accepts (one read into a 64KB-1 buffer)
	MaxPayloadSize = 65535
	// DefaultReadBufferSize is the size of the per-session read buffer
	DefaultReadBufferSize = MaxPayloadSize
)

// Hex dump layout
const (
	// HexRowWidth is the number of bytes after which a hex row is closed
	HexRowWidth = 16
	// HexGutterWidth is the size of the lookback ring shown in the ASCII gutter
	HexGutterWidth = 8
)

// Control tokens recognized on a line by themselves while composing a reply
const (
	// TokenEnd finishes composition and sends the reply
	TokenEnd = "?END?"
	// TokenRevert removes the last line of the draft
	TokenRevert = "?REVERT?"
)

// Listener defaults
const (
	// DefaultHost is the address the listener binds to
	DefaultHost = "localhost"
	// DefaultPort is used when no valid port is given
	DefaultPort = 30000
)

// Timeouts for the listener
const (
	// AcceptPollInterval bounds each Accept call so the loop can notice a stop request
	AcceptPollInterval = 1 * time.Second
	// ShutdownGrace is how long Stop waits for sessions to unwind after closing them
	ShutdownGrace = 100 * time.Millisecond
)
