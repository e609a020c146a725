package retriever

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsCourse = `# JavaScript
## Variables
Use let and const to declare variables.
## Loops
A for loop repeats a block. While loops check a condition.
## Functions
Functions can contain loops too.`

func TestRetrieveRelevantContent(t *testing.T) {
	r := New(map[string]string{"javascript": jsCourse}, nil)

	tests := []struct {
		name   string
		topic  string
		course string
		want   string
	}{
		{
			name:   "unknown course",
			topic:  "loops",
			course: "unknown-course",
			want:   "",
		},
		{
			name:   "single section",
			topic:  "VARIABLES",
			course: "javascript",
			want:   " Variables\nUse let and const to declare variables.\n",
		},
		{
			name:   "several sections rejoined",
			topic:  "loop",
			course: "javascript",
			want:   " Loops\nA for loop repeats a block. While loops check a condition.\n## Functions\nFunctions can contain loops too.",
		},
		{
			name:   "no match",
			topic:  "generators",
			course: "javascript",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.RetrieveRelevantContent(tt.topic, tt.course))
		})
	}
}

func TestRetrieveRelevantContent_Truncates(t *testing.T) {
	long := "## loops " + strings.Repeat("é", 2000)
	r := New(map[string]string{"c": long}, nil)

	got := r.RetrieveRelevantContent("loops", "c")
	assert.Equal(t, MaxContentLength, len([]rune(got)))
	assert.True(t, strings.HasPrefix(long[len(SectionDelimiter):], got[:6]))
}

func TestRetriever_SetAndCourses(t *testing.T) {
	r := New(nil, nil)
	assert.Empty(t, r.Courses())

	r.Set("python", "## Lists\nlists")
	r.Set("arrays", "## Push")

	assert.Equal(t, []string{"arrays", "python"}, r.Courses())

	text, ok := r.Content("python")
	require.True(t, ok)
	assert.Contains(t, text, "Lists")

	_, ok = r.Content("rust")
	assert.False(t, ok)

	assert.Equal(t, "## Push", r.Excerpt("arrays"))
	assert.Equal(t, "", r.Excerpt("rust"))
}

func TestRetriever_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loops.md"), []byte("## For\nfor loops"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0o755))

	r := New(nil, nil)
	n, err := r.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"loops"}, r.Courses())

	n, err = r.LoadDirectory(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{"loops"}, r.Courses())
}
