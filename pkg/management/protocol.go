package management

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Replies are one or more text lines closed by a line holding a single dot.
// Reply lines that start with a dot get a second one, removed on receipt.
const (
	terminator    = "."
	pongString    = "OK: pong"
	okAuthString  = "OK: authenticated"
	nokAuthString = "NOK: authentication failed"
)

func sendMessage(w *bufio.Writer, msg string) error {
	for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		if strings.HasPrefix(line, ".") {
			line = "." + line
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if _, err := w.WriteString(terminator + "\n"); err != nil {
		return err
	}
	return w.Flush()
}

func recvMessage(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("connection closed before end of reply")
			}
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == terminator {
			return strings.TrimSuffix(sb.String(), "\n"), nil
		}
		if strings.HasPrefix(line, "..") {
			line = line[1:]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
