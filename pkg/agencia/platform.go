package agencia

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Navigator is the current location of the visitor
type Navigator interface {
	// Path returns the current location path, e.g. "/pacotes.html"
	Path() string

	// Navigate moves to path
	Navigate(path string)
}

// Notifier shows blocking messages to the visitor
type Notifier interface {
	Alert(msg string)
	Confirm(msg string) bool
}

// MemoryNavigator is an in-memory Navigator that records every navigation
type MemoryNavigator struct {
	mu      sync.Mutex
	path    string
	history []string
}

// NewMemoryNavigator creates a navigator positioned at path
func NewMemoryNavigator(path string) *MemoryNavigator {
	return &MemoryNavigator{path: path}
}

// Path returns the current path
func (n *MemoryNavigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// Navigate moves to path
func (n *MemoryNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
	n.history = append(n.history, path)
}

// History returns the navigations performed so far
func (n *MemoryNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

// TerminalNotifier prints alerts and asks y/N questions on a terminal
type TerminalNotifier struct {
	out         io.Writer
	in          *bufio.Reader
	autoConfirm bool
}

// NewTerminalNotifier creates a notifier on in/out. With autoConfirm every
// confirmation is accepted without reading input.
func NewTerminalNotifier(in io.Reader, out io.Writer, autoConfirm bool) *TerminalNotifier {
	return &TerminalNotifier{
		out:         out,
		in:          bufio.NewReader(in),
		autoConfirm: autoConfirm,
	}
}

// Alert prints msg
func (n *TerminalNotifier) Alert(msg string) {
	fmt.Fprintf(n.out, "! %s\n", msg)
}

// Confirm prints msg and reads the answer
func (n *TerminalNotifier) Confirm(msg string) bool {
	if n.autoConfirm {
		fmt.Fprintf(n.out, "%s [y/N]: y\n", msg)
		return true
	}
	fmt.Fprintf(n.out, "%s [y/N]: ", msg)
	line, err := n.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// logNotifier is the default Notifier: alerts are logged and confirmations
// declined.
type logNotifier struct {
	logger Logger
}

func (n *logNotifier) Alert(msg string) {
	n.logger.Warn("Alert", "message", msg)
}

func (n *logNotifier) Confirm(msg string) bool {
	n.logger.Info("Confirmation declined", "message", msg)
	return false
}
