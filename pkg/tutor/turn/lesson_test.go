package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLesson_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantShape string
		want      []LessonBlock
	}{
		{
			name:      "titled list",
			payload:   `{"lesson_content":[{"title":"Let","content":"block scoped"},{"title":"Var","content":"function scoped"}]}`,
			wantShape: "titled_list",
			want: []LessonBlock{
				{Title: "Let", Content: "block scoped"},
				{Title: "Var", Content: "function scoped"},
			},
		},
		{
			name:      "typed list",
			payload:   `{"lesson_content":[{"type":"example","content":["x := 1","y := 2"]},{"type":"tip","content":"prefer const"}]}`,
			wantShape: "typed_list",
			want: []LessonBlock{
				{Title: "EXAMPLE", Content: "x := 1\ny := 2"},
				{Title: "TIP", Content: "prefer const"},
			},
		},
		{
			name:      "titled items",
			payload:   `{"lesson_content":{"title":"Arrays","content":[{"type":"text","content":"Arrays are ordered."},{"title":"push","description":"adds to the end"}]}}`,
			wantShape: "titled_items",
			want: []LessonBlock{
				{Title: "Arrays"},
				{Content: "Arrays are ordered."},
				{Title: "push", Content: "adds to the end"},
			},
		},
		{
			name:      "topic items",
			payload:   `{"lesson_content":{"topic":"Loops","content":[{"title":"For","description":"counted"},{"title":"While","description":"conditional"}]}}`,
			wantShape: "topic_items",
			want: []LessonBlock{
				{Title: "Loops"},
				{Title: "For", Content: "counted"},
				{Title: "While", Content: "conditional"},
			},
		},
		{
			name:      "advanced topic items",
			payload:   `{"lesson_content":{"advanced_topic":"Generators","content":[{"title":"yield","description":"pauses"}]}}`,
			wantShape: "topic_items",
			want: []LessonBlock{
				{Title: "Generators"},
				{Title: "yield", Content: "pauses"},
			},
		},
		{
			name:      "single with title",
			payload:   `{"lesson_content":{"title":"Closures","content":"Functions capture scope."}}`,
			wantShape: "single",
			want:      []LessonBlock{{Title: "Closures", Content: "Functions capture scope."}},
		},
		{
			name:      "single without title",
			payload:   `{"lesson_content":{"content":"Functions capture scope."}}`,
			wantShape: "single",
			want:      []LessonBlock{{Title: "Lesson", Content: "Functions capture scope."}},
		},
		{
			name:      "unrecognized object",
			payload:   `{"lesson_content":{"body":"?"},"feedback":"still shown"}`,
			wantShape: "",
			want:      nil,
		},
		{
			name:      "scalar",
			payload:   `{"lesson_content":"loose text","feedback":"still shown"}`,
			wantShape: "",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := decode(t, tt.payload)
			assert.Equal(t, tt.wantShape, LessonShapeName(payload["lesson_content"]))

			got := NormalizePayload(payload)
			assert.Equal(t, StatusCanonical, got.Status)
			assert.Equal(t, tt.want, got.LessonBlocks)
		})
	}
}

func TestResolveLesson_DropsUnmatchedEntries(t *testing.T) {
	got := NormalizePayload(decode(t, `{"lesson_content":[{"title":"A","content":"ok"},{"title":"B","content":{"nested":true}},"junk"]}`))

	assert.Equal(t, []LessonBlock{{Title: "A", Content: "ok"}}, got.LessonBlocks)
}
