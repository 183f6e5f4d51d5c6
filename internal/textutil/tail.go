package textutil

import (
	"strings"
	"sync"
)

// LineTail is an io.Writer that keeps only the last N complete lines written
// to it, plus any trailing partial line. It is safe for concurrent use.
type LineTail struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial strings.Builder
}

// NewLineTail returns a tail holding at most limit lines (minimum one).
func NewLineTail(limit int) *LineTail {
	return &LineTail{limit: max(limit, 1)}
}

// Write splits p into lines and keeps the newest ones.
func (t *LineTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rest := string(p)
	for {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			t.partial.WriteString(rest)
			break
		}
		t.partial.WriteString(rest[:idx])
		t.push(strings.TrimRight(t.partial.String(), "\r"))
		t.partial.Reset()
		rest = rest[idx+1:]
	}
	return len(p), nil
}

func (t *LineTail) push(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if over := len(t.lines) - t.limit; over > 0 {
		t.lines = append(t.lines[:0], t.lines[over:]...)
	}
}

// Lines returns the retained lines, oldest first.
func (t *LineTail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := append([]string(nil), t.lines...)
	if p := strings.TrimSpace(t.partial.String()); p != "" {
		out = append(out, p)
		if len(out) > t.limit {
			out = out[len(out)-t.limit:]
		}
	}
	return out
}

// String joins the retained lines with newlines.
func (t *LineTail) String() string {
	return strings.Join(t.Lines(), "\n")
}

// Last returns the newest retained line, or "".
func (t *LineTail) Last() string {
	lines := t.Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
