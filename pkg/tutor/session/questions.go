package session

import "strings"

const (
	DefaultTopic = "General Programming"

	openQuestion    = "What would you like to learn about?"
	genericQuestion = "What would you like to learn about this topic?"
)

// initialQuestions seeds the first question of a course session
var initialQuestions = map[string]string{
	"variables": "What is the difference between let and const in JavaScript?",
	"functions": "How do you define a function in JavaScript?",
	"arrays":    "How do you create an array and add elements to it?",
	"objects":   "What is the syntax for creating an object in JavaScript?",
	"python":    "How do you create a list in Python?",
	"loops":     "What is the difference between for and while loops?",
	"classes":   "How do you define a class in programming?",
	"async":     "What is asynchronous programming and why is it useful?",
}

// InitialQuestion returns the opening question for a course, or a generic one
func InitialQuestion(course string) string {
	if q, ok := initialQuestions[strings.ToLower(strings.TrimSpace(course))]; ok {
		return q
	}
	return genericQuestion
}
