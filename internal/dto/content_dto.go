package dto

import "ai-tutor-be/pkg/course"

// IngestContentRequest accepts either pre-structured content ("Course: X" header)
// or a course/topic pair that is turned into one.
type IngestContentRequest struct {
	Course  string `json:"course" validate:"max=100"`
	Topic   string `json:"topic" validate:"max=200"`
	Content string `json:"content" validate:"required"`
}

type IngestContentResponse struct {
	Status string `json:"status"`
	Course string `json:"course,omitempty"`
}

// IngestionMessage is published on the ingestion topic for the indexing consumer
type IngestionMessage struct {
	Course  string `json:"course"`
	Topic   string `json:"topic,omitempty"`
	Content string `json:"content"`
}

type PDFUploadResponse struct {
	Course string `json:"course"`
	Pages  int    `json:"pages"`
}

type CoursesResponse struct {
	Courses []string `json:"courses"`
}

type GraphResponse = course.Graph
