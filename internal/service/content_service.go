package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/pkg/course"
	"ai-tutor-be/pkg/retriever"
)

const moduleContent = "ContentService"

type IContentService interface {
	Ingest(ctx context.Context, req *dto.IngestContentRequest) (*dto.IngestContentResponse, error)
	IngestPDF(ctx context.Context, filename string, data []byte, courseName string) (*dto.PDFUploadResponse, error)
	Courses(ctx context.Context) (*dto.CoursesResponse, error)
	Graph(ctx context.Context) (*dto.GraphResponse, error)
}

type contentService struct {
	retriever        *retriever.Retriever
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewContentService(r *retriever.Retriever, publisherService IPublisherService, log logger.ILogger) IContentService {
	return &contentService{
		retriever:        r,
		publisherService: publisherService,
		logger:           log,
	}
}

// Ingest registers the material with the retriever and queues it for
// semantic indexing. Content without a "Course:" header is only indexed.
func (s *contentService) Ingest(ctx context.Context, req *dto.IngestContentRequest) (*dto.IngestContentResponse, error) {
	content := req.Content
	if req.Course != "" {
		content = course.StructureContent(req.Course, req.Topic, req.Content)
	}

	name := course.ExtractCourseName(content)
	if name != "" {
		s.retriever.Set(name, content)
	} else {
		s.logger.Warn(moduleContent, "Content has no course header, indexing only", map[string]interface{}{"length": len(content)})
	}

	msg, err := json.Marshal(dto.IngestionMessage{
		Course:  name,
		Topic:   course.ExtractTopic(content),
		Content: content,
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info(moduleContent, "Content queued for indexing", map[string]interface{}{"course": name, "length": len(content)})
	return &dto.IngestContentResponse{Status: "inserted", Course: name}, nil
}

// IngestPDF extracts the document text and ingests it under courseName,
// or under the file's base name when courseName is empty.
func (s *contentService) IngestPDF(ctx context.Context, filename string, data []byte, courseName string) (*dto.PDFUploadResponse, error) {
	text, pages, err := course.ExtractPDF(data)
	if err != nil {
		return nil, err
	}

	if courseName == "" {
		courseName = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	courseName = strings.ToLower(strings.TrimSpace(courseName))

	res, err := s.Ingest(ctx, &dto.IngestContentRequest{
		Course:  courseName,
		Topic:   courseName,
		Content: text,
	})
	if err != nil {
		return nil, err
	}

	return &dto.PDFUploadResponse{Course: res.Course, Pages: pages}, nil
}

func (s *contentService) Courses(ctx context.Context) (*dto.CoursesResponse, error) {
	return &dto.CoursesResponse{Courses: s.retriever.Courses()}, nil
}

func (s *contentService) Graph(ctx context.Context) (*dto.GraphResponse, error) {
	g := course.BuildGraph(s.retriever.Snapshot())
	return &g, nil
}
