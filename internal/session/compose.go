package session

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/codefionn/tcpresponder/internal/consts"
)

// LineSource supplies operator input. ReadLine returns io.EOF when no more
// input is available.
type LineSource interface {
	ReadLine() (string, error)
}

// Operator is the operator-facing output a session writes to.
type Operator interface {
	ShowPayload(sessionID, plain, hexDump string, hexMode bool)
	ShowComposeHelp()
	ShowReverted(lines []string)
	ShowSent()
}

// Compose reads lines from src until the end token or end of input and
// returns the accumulated draft. Lines are trimmed before they are compared
// with the control tokens and before they are stored.
func Compose(src LineSource, op Operator) (*Draft, error) {
	draft := NewDraft()
	for {
		line, err := src.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return draft, nil
			}
			return draft, fmt.Errorf("failed to read operator input: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case consts.TokenEnd:
			return draft, nil
		case consts.TokenRevert:
			draft.Revert()
			op.ShowReverted(draft.Lines())
		default:
			draft.Append(trimmed)
		}
	}
}
