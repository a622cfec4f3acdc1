// Package console implements the operator-facing side of tcpresponder:
// rendered payload banners, compose instructions and confirmations on the
// output side, and a line reader shared by all sessions on the input side.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/codefionn/tcpresponder/internal/consts"
)

const separator = "====="

// Console writes operator messages. Each message is written with a single
// Write call, so concurrent sessions interleave per message, not per byte.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	separatorStyle lipgloss.Style
	headingStyle   lipgloss.Style
	hintStyle      lipgloss.Style
	successStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	peerStyle      lipgloss.Style
}

// New creates a console writing to out. When styled is false every style
// renders as plain text.
func New(out io.Writer, styled bool) *Console {
	r := lipgloss.NewRenderer(out)
	if !styled {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Console{
		out:            out,
		separatorStyle: r.NewStyle().Faint(true),
		headingStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		hintStyle:      r.NewStyle().Foreground(lipgloss.Color("245")),
		successStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		errorStyle:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		peerStyle:      r.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func (c *Console) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, s)
}

// Printf writes an unstyled formatted message.
func (c *Console) Printf(format string, args ...interface{}) {
	c.write(fmt.Sprintf(format, args...))
}

// Listening announces the bound listener address.
func (c *Console) Listening(addr string) {
	c.write(fmt.Sprintf("Listening at %s\n", c.headingStyle.Render(addr)))
}

// Connected announces an accepted connection.
func (c *Console) Connected(sessionID, remote string) {
	c.write(fmt.Sprintf("[DEBUG] Socket address: %s (session %s)\n", c.peerStyle.Render(remote), sessionID))
}

// ShowPayload prints the received payload. hexDump is empty when hex mode is off.
func (c *Console) ShowPayload(sessionID, plain, hexDump string, hexMode bool) {
	sep := c.separatorStyle.Render(separator)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n\n%s\n\n", sep, c.headingStyle.Render("Socket Input:"))
	if hexMode {
		sb.WriteString(hexDump)
		fmt.Fprintf(&sb, "\n%s\n\n", sep)
	}
	sb.WriteString(plain)
	fmt.Fprintf(&sb, "\n\n%s\n\n", sep)
	c.write(sb.String())
}

// ShowComposeHelp prints the reply instructions and the control tokens.
func (c *Console) ShowComposeHelp() {
	var sb strings.Builder
	sb.WriteString("Please send the HTTP response back:\n")
	sb.WriteString(c.hintStyle.Render(fmt.Sprintf("Type '%s' at new line to undo the last line.", consts.TokenRevert)))
	sb.WriteString("\n")
	sb.WriteString(c.hintStyle.Render(fmt.Sprintf("Type '%s' at new line to send.", consts.TokenEnd)))
	sb.WriteString("\n\n")
	c.write(sb.String())
}

// ShowReverted echoes the draft after a revert.
func (c *Console) ShowReverted(lines []string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", c.hintStyle.Render("Line reverted. Now:"))
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	c.write(sb.String())
}

// ShowSent confirms that a reply was written to the peer.
func (c *Console) ShowSent() {
	c.write(fmt.Sprintf("\n%s\n", c.successStyle.Render("Response sent!")))
}

// ShowClosed reports a clean session end.
func (c *Console) ShowClosed(sessionID string) {
	c.write(fmt.Sprintf("\n%s\n", c.hintStyle.Render(fmt.Sprintf("Session %s closed by peer.", sessionID))))
}

// ShowError reports a session-ending failure.
func (c *Console) ShowError(sessionID string, err error) {
	c.write(fmt.Sprintf("\n%s %v\n", c.errorStyle.Render(fmt.Sprintf("Session %s failed:", sessionID)), err))
}
