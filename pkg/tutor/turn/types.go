package turn

import "math"

// Status tells the session how to treat a normalized turn
type Status string

const (
	// StatusInProgress marks an async-start acknowledgement; the real result arrives later
	StatusInProgress Status = "IN_PROGRESS"
	// StatusCanonical marks a turn built from recognized fields
	StatusCanonical Status = "CANONICAL"
	// StatusUnparseable marks a best-effort textual turn
	StatusUnparseable Status = "UNPARSEABLE"
)

// LessonKind is the kind of lesson attached to a turn
type LessonKind string

const (
	LessonKindReview   LessonKind = "review"
	LessonKindAdvanced LessonKind = "advanced"
)

// Bucket is the coarse retention band that drives sound and color cues
type Bucket string

const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
)

// LessonBlock is one flattened piece of lesson material
type LessonBlock struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Question is a multiple choice follow-up question
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// TutorTurn is the canonical form of one evaluation response
type TutorTurn struct {
	Retention    *float64      `json:"retention,omitempty"`
	Feedback     string        `json:"feedback,omitempty"`
	Language     string        `json:"language,omitempty"`
	LessonKind   LessonKind    `json:"lesson_kind,omitempty"`
	LessonBlocks []LessonBlock `json:"lesson_content,omitempty"`
	Questions    []Question    `json:"questions,omitempty"`
	Status       Status        `json:"-"`
}

// Bucket returns the retention band when the turn carries a retention score
func (t TutorTurn) Bucket() (Bucket, bool) {
	if t.Retention == nil {
		return "", false
	}
	return BucketFor(*t.Retention), true
}

// Percent returns the retention score as a rounded percentage
func (t TutorTurn) Percent() (int, bool) {
	if t.Retention == nil {
		return 0, false
	}
	return int(math.Round(*t.Retention * 100)), true
}

// Terminal reports whether the session may present this turn
func (t TutorTurn) Terminal() bool {
	return t.Status != StatusInProgress
}

// hasContent reports whether a canonical field survived normalization.
// Language and lesson kind alone do not make a turn presentable.
func (t TutorTurn) hasContent() bool {
	return t.Retention != nil || t.Feedback != "" || len(t.LessonBlocks) > 0 || len(t.Questions) > 0
}

// Payload renders the turn back into the canonical upstream shape
func (t TutorTurn) Payload() map[string]any {
	payload := map[string]any{}
	if t.Retention != nil {
		payload[fieldRetention] = *t.Retention
	}
	if t.Feedback != "" {
		payload[fieldFeedback] = t.Feedback
	}
	if t.Language != "" {
		payload[fieldLanguage] = t.Language
	}
	if t.LessonKind != "" {
		payload[fieldLessonKind] = string(t.LessonKind)
	}
	if len(t.LessonBlocks) > 0 {
		blocks := make([]any, 0, len(t.LessonBlocks))
		for _, b := range t.LessonBlocks {
			blocks = append(blocks, map[string]any{"title": b.Title, "content": b.Content})
		}
		payload[fieldLessonContent] = blocks
	}
	if len(t.Questions) > 0 {
		questions := make([]any, 0, len(t.Questions))
		for _, q := range t.Questions {
			options := make([]any, 0, len(q.Options))
			for _, o := range q.Options {
				options = append(options, o)
			}
			questions = append(questions, map[string]any{
				"question":       q.Question,
				"options":        options,
				"correct_answer": q.CorrectAnswer,
			})
		}
		payload[fieldQuestions] = questions
	}
	return payload
}
