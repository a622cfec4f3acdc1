package session

import "bytes"

// Draft is the operator's in-progress reply: an ordered list of lines that
// only grows, except for Revert.
type Draft struct {
	lines []string
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

// Append adds a line to the end of the draft.
func (d *Draft) Append(line string) {
	d.lines = append(d.lines, line)
}

// Revert removes the most recent line. It reports false when the draft was
// already empty, in which case nothing changes.
func (d *Draft) Revert() bool {
	if len(d.lines) == 0 {
		return false
	}
	d.lines[len(d.lines)-1] = ""
	d.lines = d.lines[:len(d.lines)-1]
	return true
}

// Len returns the number of lines.
func (d *Draft) Len() int {
	return len(d.lines)
}

// Lines returns a copy of the current lines.
func (d *Draft) Lines() []string {
	return append([]string(nil), d.lines...)
}

// Bytes assembles the reply buffer: each line terminated by '\n', followed
// by one blank line.
func (d *Draft) Bytes() []byte {
	size := 1
	for _, line := range d.lines {
		size += len(line) + 1
	}

	var buf bytes.Buffer
	buf.Grow(size)
	for _, line := range d.lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
