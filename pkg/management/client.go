package management

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	connectTimeout   = 1 * time.Second
	readWriteTimeout = 8 * time.Second
	authTimeout      = 3 * time.Second
)

var ErrAuth = errors.New("mgmt: authentication failed")

type Client struct {
	socketPath string
	password   string
}

func NewClient(socketPath, password string) *Client {
	return &Client{socketPath: socketPath, password: password}
}

// Ping reports whether a server answers on the socket.
func (c *Client) Ping() bool {
	res, err := c.SendCommand("ping")
	return err == nil && res == pongString
}

// SendCommand opens a connection, authenticates if a password is set, runs
// one command and returns the reply. An empty command asks for help.
func (c *Client) SendCommand(command string) (string, error) {
	if command == "" {
		command = "help"
	}

	conn, err := net.DialTimeout("unix", c.socketPath, connectTimeout)
	if err != nil {
		return "", fmt.Errorf("mgmt: connect to %s: %w (is the server running?)", c.socketPath, err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	if c.password != "" {
		conn.SetDeadline(time.Now().Add(authTimeout + 2*time.Second))
		if _, err := fmt.Fprintf(writer, "%s\n", c.password); err != nil {
			return "", fmt.Errorf("mgmt: send password: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return "", fmt.Errorf("mgmt: send password: %w", err)
		}
		res, err := recvMessage(reader)
		if err != nil {
			return "", fmt.Errorf("mgmt: read auth reply: %w", err)
		}
		if res != okAuthString {
			return "", ErrAuth
		}
	}

	conn.SetDeadline(time.Now().Add(readWriteTimeout))
	if _, err := fmt.Fprintf(writer, "%s\n", command); err != nil {
		return "", fmt.Errorf("mgmt: send command: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("mgmt: send command: %w", err)
	}
	res, err := recvMessage(reader)
	if err != nil {
		return "", fmt.Errorf("mgmt: read reply: %w", err)
	}
	return strings.TrimSpace(res), nil
}
