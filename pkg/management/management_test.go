package management

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func socketPath(t *testing.T) string {
	// keep under the sun_path limit
	dir, err := os.MkdirTemp("", "mg")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "x.sock")
}

func startServer(t *testing.T, password string) *Server {
	s := NewServer(socketPath(t), password)
	s.authDelay = 0
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestPingAndCustomHandler(t *testing.T) {
	s := startServer(t, "")
	s.RegisterHandler("echo", "Echo arguments", func(args []string) (string, error) {
		return strings.Join(args, " "), nil
	})
	s.RegisterHandler("fail", "Always fails", func(args []string) (string, error) {
		return "", errors.New("boom")
	})

	c := NewClient(s.SocketPath(), "")
	if !c.Ping() {
		t.Fatal("expected ping to succeed")
	}
	if res, err := c.SendCommand("ECHO a b"); err != nil || res != "a b" {
		t.Errorf("echo = %q, %v", res, err)
	}
	if res, _ := c.SendCommand("fail"); !strings.Contains(res, "boom") {
		t.Errorf("fail = %q", res)
	}
	if res, _ := c.SendCommand("nope"); !strings.HasPrefix(res, "Error: Unknown command") {
		t.Errorf("unknown = %q", res)
	}
	res, err := c.SendCommand("")
	if err != nil || !strings.Contains(res, "echo") || !strings.Contains(res, "ping") {
		t.Errorf("help = %q, %v", res, err)
	}
}

func TestPassword(t *testing.T) {
	s := startServer(t, "secret")
	if !NewClient(s.SocketPath(), "secret").Ping() {
		t.Error("correct password should be accepted")
	}
	if _, err := NewClient(s.SocketPath(), "wrong").SendCommand("ping"); !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}

func TestStopRemovesSocket(t *testing.T) {
	s := NewServer(socketPath(t), "")
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.Stop()
	s.Stop()
	if _, err := os.Stat(s.SocketPath()); !os.IsNotExist(err) {
		t.Errorf("socket file still present: %v", err)
	}
	if NewClient(s.SocketPath(), "").Ping() {
		t.Error("ping should fail after Stop")
	}
}

func TestMessageFraming(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	msg := "first\n.dotted\n..double\nlast"
	if err := sendMessage(w, msg); err != nil {
		t.Fatal(err)
	}
	got, err := recvMessage(bufio.NewReader(&buf))
	if err != nil || got != msg {
		t.Errorf("recvMessage = %q, %v", got, err)
	}
	if _, err := recvMessage(bufio.NewReader(strings.NewReader("no end\n"))); err == nil {
		t.Error("expected error for unterminated reply")
	}
}
