// Package course holds helpers for uploaded course material: naming,
// structuring, PDF text extraction and the course/topic knowledge graph.
package course

import (
	"fmt"
	"strings"
)

const (
	courseLinePrefix = "Course:"
	topicLinePrefix  = "Topic:"
)

// ExtractCourseName returns the lowercased value of the first line that
// starts with "Course:", or "" when there is none.
func ExtractCourseName(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, courseLinePrefix) {
			return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, courseLinePrefix)))
		}
	}
	return ""
}

// ExtractTopic returns the value of the first "Topic:" line
func ExtractTopic(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, topicLinePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, topicLinePrefix))
		}
	}
	return ""
}

// StructureContent prefixes raw material with its course and topic header
func StructureContent(course, topic, content string) string {
	return fmt.Sprintf("%s %s\n%s %s\n\n%s", courseLinePrefix, course, topicLinePrefix, topic, content)
}
