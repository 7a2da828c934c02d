package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const defaultHistorySize = 1000

// History is the list of lines entered at the prompt, oldest first, capped
// at a maximum size. Empty lines and immediate repeats are not recorded.
type History struct {
	entries []string
	maxSize int
	file    string
}

// NewHistory returns a History stored in ~/.respkv/history.
func NewHistory() *History {
	home, _ := os.UserHomeDir()
	return NewHistoryAt(filepath.Join(home, ".respkv", "history"), defaultHistorySize)
}

// NewHistoryAt returns a History stored at path keeping at most maxSize
// lines. A maxSize below one selects the default.
func NewHistoryAt(path string, maxSize int) *History {
	if maxSize < 1 {
		maxSize = defaultHistorySize
	}
	return &History{maxSize: maxSize, file: path}
}

// Add records line.
func (h *History) Add(line string) {
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	h.trim()
}

func (h *History) trim() {
	if over := len(h.entries) - h.maxSize; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Get returns the entry at index, 0 being the most recent, or "" when out
// of range.
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Entries returns the history oldest first.
func (h *History) Entries() []string {
	return h.entries
}

// Load appends the lines of the history file. A missing file is not an
// error.
func (h *History) Load() error {
	f, err := os.Open(h.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		h.Add(scanner.Text())
	}
	return scanner.Err()
}

// Save replaces the history file. It writes a temporary file in the same
// directory and renames it, so a failed save leaves the old file intact.
func (h *History) Save() error {
	dir := filepath.Dir(h.file)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range h.entries {
		if _, err := w.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), h.file)
}
