// Package turn turns loosely structured workflow output into a TutorTurn.
//
// The upstream workflow answers the same lesson endpoint with several payload
// shapes: an async-start acknowledgement, a canonical object, or a raw model
// completion wrapped in a "response" string. Normalization never fails; every
// unrecognized input degrades to an Unparseable turn that still carries text
// the learner can read.
package turn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	fieldMessage       = "message"
	fieldResponse      = "response"
	fieldRetention     = "retention"
	fieldFeedback      = "feedback"
	fieldLanguage      = "language"
	fieldLessonKind    = "lesson_kind"
	fieldLessonContent = "lesson_content"
	fieldQuestions     = "questions"
)

// canonicalFields are the top-level keys that mark a payload as already structured.
// language and lesson_kind are carried along but never mark a payload on their own.
var canonicalFields = []string{
	fieldRetention,
	fieldFeedback,
	fieldLessonContent,
	fieldQuestions,
}

var (
	thinkPattern     = regexp.MustCompile(`(?is)<think>.*?</think>`)
	jsonFencePattern = regexp.MustCompile("(?is)```json\\s*(.*?)```")
)

// payloadShape is the closed set of upstream payload shapes
type payloadShape interface {
	normalize() TutorTurn
}

type asyncStartShape struct{}

type canonicalShape struct {
	fields map[string]any
}

type rawTextShape struct {
	text       string
	language   any
	lessonKind any
}

type unknownShape struct {
	dump string
}

// shapeMatchers is evaluated in order; the first match wins.
var shapeMatchers = []func(map[string]any) (payloadShape, bool){
	matchAsyncStart,
	matchCanonical,
	matchRawText,
}

// Normalize decodes a raw upstream body and normalizes it.
func Normalize(body []byte) TutorTurn {
	trimmed := bytes.TrimSpace(body)
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil || payload == nil {
		return TutorTurn{
			Status:   StatusUnparseable,
			Feedback: string(trimmed),
		}
	}
	return NormalizePayload(payload)
}

// NormalizePayload classifies an already decoded payload and normalizes it.
func NormalizePayload(payload map[string]any) TutorTurn {
	return classify(payload).normalize()
}

func classify(payload map[string]any) payloadShape {
	for _, match := range shapeMatchers {
		if shape, ok := match(payload); ok {
			return shape
		}
	}
	return unknownShape{dump: dump(payload)}
}

func matchAsyncStart(payload map[string]any) (payloadShape, bool) {
	if _, ok := payload[fieldMessage]; !ok {
		return nil, false
	}
	if hasAny(payload, canonicalFields...) {
		return nil, false
	}
	return asyncStartShape{}, true
}

func matchCanonical(payload map[string]any) (payloadShape, bool) {
	if !hasAny(payload, canonicalFields...) {
		return nil, false
	}
	return canonicalShape{fields: payload}, true
}

func matchRawText(payload map[string]any) (payloadShape, bool) {
	text, ok := payload[fieldResponse].(string)
	if !ok {
		return nil, false
	}
	return rawTextShape{
		text:       text,
		language:   payload[fieldLanguage],
		lessonKind: payload[fieldLessonKind],
	}, true
}

func (asyncStartShape) normalize() TutorTurn {
	return TutorTurn{Status: StatusInProgress}
}

func (s canonicalShape) normalize() TutorTurn {
	t := TutorTurn{Status: StatusCanonical}

	if raw, ok := s.fields[fieldRetention]; ok {
		if r, ok := NormalizeRetention(raw); ok {
			t.Retention = &r
		}
	}
	t.Feedback = stringOf(s.fields[fieldFeedback])
	t.Language = strings.ToLower(strings.TrimSpace(stringOf(s.fields[fieldLanguage])))
	t.LessonKind = LessonKind(strings.ToLower(strings.TrimSpace(stringOf(s.fields[fieldLessonKind]))))

	if raw, ok := s.fields[fieldLessonContent]; ok {
		t.LessonBlocks = resolveLesson(raw)
	}
	if raw, ok := s.fields[fieldQuestions]; ok {
		t.Questions = parseQuestions(raw)
	}
	if !t.hasContent() {
		return unknownShape{dump: dump(s.fields)}.normalize()
	}
	return t
}

func (s rawTextShape) normalize() TutorTurn {
	text := ExtractResponseText(s.text)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil || !hasAny(parsed, canonicalFields...) {
		return TutorTurn{
			Status:   StatusUnparseable,
			Feedback: text,
		}
	}

	if _, ok := parsed[fieldLanguage]; !ok && s.language != nil {
		parsed[fieldLanguage] = s.language
	}
	if _, ok := parsed[fieldLessonKind]; !ok && s.lessonKind != nil {
		parsed[fieldLessonKind] = s.lessonKind
	}
	t := canonicalShape{fields: parsed}.normalize()
	if t.Status == StatusUnparseable {
		t.Feedback = text
	}
	return t
}

func (s unknownShape) normalize() TutorTurn {
	return TutorTurn{
		Status:   StatusUnparseable,
		Feedback: s.dump,
	}
}

// ExtractResponseText strips reasoning spans and code fences from a raw model completion.
func ExtractResponseText(raw string) string {
	text := thinkPattern.ReplaceAllString(raw, "")
	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return stripFence(strings.TrimSpace(text))
}

// stripFence removes a bare or unterminated ``` fence around the text.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func hasAny(payload map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := payload[k]; ok {
			return true
		}
	}
	return false
}

func dump(payload map[string]any) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(b)
}

func parseQuestions(raw any) []Question {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil
	}

	questions := make([]Question, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text := stringOf(obj["question"])
		if strings.TrimSpace(text) == "" {
			continue
		}
		q := Question{
			Question:      text,
			Options:       []string{},
			CorrectAnswer: stringOf(obj["correct_answer"]),
		}
		if opts, ok := obj["options"].([]any); ok {
			for _, o := range opts {
				q.Options = append(q.Options, stringOf(o))
			}
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil
	}
	return questions
}

// stringOf renders scalar JSON values as text; objects and nil yield "".
func stringOf(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
