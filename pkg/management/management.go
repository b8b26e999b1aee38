// Package management serves line-oriented control commands on a Unix socket
// so a running xlib server can be inspected and driven from the command line.
package management

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"xlib-go/pkg/appdir"
	"xlib-go/pkg/log"

	"github.com/rs/zerolog"
)

// DefaultSocketPath returns the socket path of app in the application
// directory.
func DefaultSocketPath(app string) string {
	return appdir.Path(app + ".sock")
}

// CommandHandler runs one command. The returned text is sent as the reply.
type CommandHandler func(args []string) (string, error)

type CommandInfo struct {
	Handler     CommandHandler
	Description string
}

// Server accepts control connections on a Unix socket.
type Server struct {
	socketPath string
	listener   net.Listener
	handlers   map[string]CommandInfo
	mu         sync.RWMutex
	quit       chan struct{}
	wg         sync.WaitGroup
	startTime  time.Time
	password   string
	authDelay  time.Duration
}

func NewServer(socketPath, password string) *Server {
	s := &Server{
		socketPath: socketPath,
		handlers:   make(map[string]CommandInfo),
		startTime:  time.Now(),
		password:   password,
		authDelay:  2 * time.Second,
	}
	s.RegisterHandler("status", "Show server status and uptime", s.handleStatusCommand)
	s.RegisterHandler("ping", "Check that the control socket is responsive", s.handlePingCommand)
	s.RegisterHandler("logs", "Show recent log records. Usage: logs [N] [pretty]", s.handleLogsCommand)
	s.RegisterHandler("help", "Show help for commands. Usage: help [command]", s.handleHelpCommand)
	return s
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// RegisterHandler adds or replaces a command. Command names are case
// insensitive.
func (s *Server) RegisterHandler(command, description string, handler CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	command = strings.ToLower(command)
	if _, exists := s.handlers[command]; exists {
		log.Warn().Str("component", "mgmt").Str("command", command).Msg("overwriting handler")
	}
	s.handlers[command] = CommandInfo{Handler: handler, Description: description}
	log.Debug().Str("component", "mgmt").Str("command", command).Msg("registered handler")
}

// Start listens on the socket, replacing a stale socket file.
func (s *Server) Start() error {
	s.quit = make(chan struct{})

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("mgmt: create socket dir: %w", err)
	}
	if _, err := os.Stat(s.socketPath); err == nil {
		log.Info().Str("component", "mgmt").Str("path", s.socketPath).Msg("removing stale socket file")
		if err := os.Remove(s.socketPath); err != nil {
			log.Warn().Str("component", "mgmt").Err(err).Msg("failed to remove stale socket file")
		}
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("mgmt: listen on %s: %w", s.socketPath, err)
	}
	s.listener = listener
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		log.Warn().Str("component", "mgmt").Err(err).Msg("could not set socket permissions")
	}
	log.Info().Str("component", "mgmt").Str("path", s.socketPath).Msg("management server listening")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener, waits for open connections and removes the
// socket file.
func (s *Server) Stop() {
	if s.listener == nil {
		return
	}
	close(s.quit)
	s.listener.Close()
	s.wg.Wait()
	s.listener = nil
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("component", "mgmt").Err(err).Msg("failed to remove socket file")
	}
	log.Info().Str("component", "mgmt").Msg("management server stopped")
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			log.Error().Str("component", "mgmt").Err(err).Msg("accept failed")
			time.Sleep(100 * time.Millisecond)
			continue
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) authenticate(conn net.Conn, reader *bufio.Reader, writer *bufio.Writer) bool {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	pass, err := reader.ReadString('\n')
	conn.SetReadDeadline(time.Time{})
	if err != nil || strings.TrimSpace(pass) != s.password {
		log.Warn().Str("component", "mgmt").Err(err).Msg("authentication failed")
		time.Sleep(s.authDelay)
		sendMessage(writer, nokAuthString)
		return false
	}
	return sendMessage(writer, okAuthString) == nil
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// unblock reads when the server stops
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.quit:
			conn.Close()
		case <-done:
		}
	}()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	if s.password != "" && !s.authenticate(conn, reader, writer) {
		return
	}

	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		cmdLine, err := reader.ReadString('\n')
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				sendMessage(writer, "error: read timeout")
			}
			return
		}
		conn.SetReadDeadline(time.Time{})

		cmdLine = strings.TrimSpace(cmdLine)
		if cmdLine == "" {
			continue
		}
		if cmdLine == "quit" {
			sendMessage(writer, "OK: Bye!")
			return
		}
		if err := sendMessage(writer, s.Execute(cmdLine)); err != nil {
			log.Warn().Str("component", "mgmt").Err(err).Msg("write reply failed")
			return
		}
	}
}

// Execute runs one command line and returns the reply text.
func (s *Server) Execute(cmdLine string) string {
	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return "Error: empty command. Try 'help'."
	}
	command := strings.ToLower(parts[0])

	s.mu.RLock()
	info, ok := s.handlers[command]
	s.mu.RUnlock()
	if !ok {
		log.Debug().Str("component", "mgmt").Str("command", command).Msg("unknown command")
		return fmt.Sprintf("Error: Unknown command '%s'. Try 'help'.", command)
	}
	res, err := info.Handler(parts[1:])
	if err != nil {
		log.Warn().Str("component", "mgmt").Str("command", command).Err(err).Msg("handler failed")
		return fmt.Sprintf("Error: %s: %v", command, err)
	}
	return res
}

func (s *Server) handleStatusCommand(args []string) (string, error) {
	uptime := time.Since(s.startTime).Round(time.Second)
	return fmt.Sprintf("OK: running. Uptime: %s", uptime), nil
}

func (s *Server) handlePingCommand(args []string) (string, error) {
	return pongString, nil
}

func (s *Server) handleLogsCommand(args []string) (string, error) {
	n, pretty := 20, false
	for _, a := range args {
		if a == "pretty" {
			pretty = true
		} else if v, err := strconv.Atoi(a); err == nil && v > 0 {
			n = v
		} else {
			return "", fmt.Errorf("bad argument %q", a)
		}
	}
	entries, err := log.GetLastNLogs(n)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	w := zerolog.ConsoleWriter{Out: &b, TimeFormat: time.RFC3339, NoColor: true}
	for _, e := range entries {
		if pretty {
			w.Write([]byte(e.LogData))
		} else {
			b.WriteString(e.LogData)
			if !strings.HasSuffix(e.LogData, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Server) handleHelpCommand(args []string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(args) > 0 {
		name := strings.ToLower(args[0])
		info, ok := s.handlers[name]
		if !ok {
			return fmt.Sprintf("Error: Unknown command '%s'. Try 'help' for a list.", name), nil
		}
		return fmt.Sprintf("OK: Help for '%s':\n  %s", name, info.Description), nil
	}

	cmds := make([]string, 0, len(s.handlers))
	width := 0
	for cmd := range s.handlers {
		cmds = append(cmds, cmd)
		width = max(width, len(cmd))
	}
	slices.Sort(cmds)

	var sb strings.Builder
	sb.WriteString("OK: Available commands:\n")
	for _, cmd := range cmds {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, cmd, s.handlers[cmd].Description)
	}
	sb.WriteString("\nUse 'help <command>' for more details on a specific command.")
	return sb.String(), nil
}
