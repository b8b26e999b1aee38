// Package util provides low-level helpers shared by the printers of the
// xlib-go packages.
package util

import (
	"fmt"
	"strings"
)

// StrBuf is an append-only string buffer with indentation support, in the spirit
// of the C kstring/strbuf helpers.
type StrBuf struct {
	builder strings.Builder
	indent  string
	depth   int
}

// NewStrBuf returns an empty buffer. indent is the unit written by Newline for
// each nesting level; an empty indent makes Newline a no-op.
func NewStrBuf(indent string) *StrBuf {
	return &StrBuf{indent: indent}
}

func (sb *StrBuf) Write(s string) {
	sb.builder.WriteString(s)
}

func (sb *StrBuf) WriteByte(c byte) error {
	return sb.builder.WriteByte(c)
}

// Writef appends a formatted string to the buffer.
func (sb *StrBuf) Writef(format string, args ...any) {
	fmt.Fprintf(&sb.builder, format, args...)
}

// Push and Pop change the nesting level used by Newline.
func (sb *StrBuf) Push() { sb.depth++ }
func (sb *StrBuf) Pop() {
	if sb.depth > 0 {
		sb.depth--
	}
}

// Newline starts a new line at the current nesting level.
func (sb *StrBuf) Newline() {
	if sb.indent == "" {
		return
	}
	sb.builder.WriteByte('\n')
	for i := 0; i < sb.depth; i++ {
		sb.builder.WriteString(sb.indent)
	}
}

// Pretty reports whether Newline emits anything.
func (sb *StrBuf) Pretty() bool { return sb.indent != "" }

func (sb *StrBuf) Len() int { return sb.builder.Len() }

func (sb *StrBuf) String() string {
	return sb.builder.String()
}

func (sb *StrBuf) Reset() {
	sb.builder.Reset()
	sb.depth = 0
}
