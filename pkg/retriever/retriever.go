// Package retriever selects topic-relevant sections from preloaded course text.
package retriever

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	// SectionDelimiter separates sections of a course document
	SectionDelimiter = "##"
	// MaxContentLength bounds the retrieved text, in runes
	MaxContentLength = 1000
)

// Retriever maps course identifiers to raw course text
type Retriever struct {
	mu      sync.RWMutex
	courses map[string]string
	logger  *zap.Logger
}

func New(courses map[string]string, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Retriever{
		courses: make(map[string]string, len(courses)),
		logger:  logger,
	}
	for k, v := range courses {
		r.courses[k] = v
	}
	return r
}

// RetrieveRelevantContent returns the sections of course that mention topic,
// case-insensitively, joined by SectionDelimiter and truncated to
// MaxContentLength. An unknown course yields "".
func (r *Retriever) RetrieveRelevantContent(topic, course string) string {
	r.mu.RLock()
	text, ok := r.courses[course]
	r.mu.RUnlock()
	if !ok {
		return ""
	}

	needle := strings.ToLower(topic)
	var kept []string
	for _, section := range strings.Split(text, SectionDelimiter) {
		if strings.Contains(strings.ToLower(section), needle) {
			kept = append(kept, section)
		}
	}

	return truncate(strings.Join(kept, SectionDelimiter), MaxContentLength)
}

// Excerpt returns the head of a course text, bounded like retrieved content
func (r *Retriever) Excerpt(course string) string {
	text, ok := r.Content(course)
	if !ok {
		return ""
	}
	return truncate(text, MaxContentLength)
}

// Set adds or replaces a course
func (r *Retriever) Set(course, text string) {
	r.mu.Lock()
	r.courses[course] = text
	r.mu.Unlock()
}

// Content returns the full text of a course
func (r *Retriever) Content(course string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	text, ok := r.courses[course]
	return text, ok
}

// Courses lists course identifiers in sorted order
func (r *Retriever) Courses() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.courses))
	for name := range r.courses {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Snapshot copies the course mapping
func (r *Retriever) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.courses))
	for k, v := range r.courses {
		out[k] = v
	}
	return out
}

// LoadDirectory reads every *.md file in dir as a course keyed by its base
// name without extension. A missing directory leaves the mapping untouched.
func (r *Retriever) LoadDirectory(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("course directory not found", zap.String("dir", dir))
			return 0, nil
		}
		return 0, err
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return loaded, err
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		r.Set(name, string(data))
		loaded++
	}

	r.logger.Info("courses loaded", zap.String("dir", dir), zap.Int("count", loaded))
	return loaded, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
