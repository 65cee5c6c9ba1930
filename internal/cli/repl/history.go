package repl

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHistorySize is the number of lines kept.
const DefaultHistorySize = 1000

// History manages command history for the REPL.
// Lines that carry a password are never recorded.
type History struct {
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a History persisted to file. An empty file keeps
// history in memory only.
func NewHistory(file string, maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	return &History{
		entries: make([]string, 0),
		maxSize: maxSize,
		file:    file,
	}
}

// Add adds a command to history. Repeats of the previous line are dropped.
func (h *History) Add(cmd string) {
	if hasSecret(cmd) {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[1:]
	}
}

// Get returns the history entry at index (0 = most recent).
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Entries returns the history, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Load loads history from file. A missing file is not an error.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	file, err := os.Open(h.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		h.Add(scanner.Text())
	}
	return scanner.Err()
}

// Save writes history to file with owner-only permissions.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0700); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	var b strings.Builder
	for _, entry := range h.entries {
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(h.file, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func hasSecret(line string) bool {
	for _, field := range strings.Fields(line) {
		if field == "-p" || strings.HasPrefix(field, "--password") || strings.HasPrefix(field, "-p=") {
			return true
		}
	}
	return false
}
