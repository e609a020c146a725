package service

import (
	"context"
	"strings"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/pkg/retriever"
	"ai-tutor-be/pkg/vectorstore"
)

const (
	moduleRetrieval = "RetrievalService"

	// minimum cosine similarity for a semantic hit to answer a query
	minQuerySimilarity = 0.3
	fallbackContent    = "General JavaScript programming concepts and best practices."
)

type IRetrievalService interface {
	Context(ctx context.Context, topic, course string) (*dto.ContextResponse, error)
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
	Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)
}

type retrievalService struct {
	retriever   *retriever.Retriever
	store       *vectorstore.Store
	defaultTopK int
	logger      logger.ILogger
}

func NewRetrievalService(r *retriever.Retriever, store *vectorstore.Store, defaultTopK int, log logger.ILogger) IRetrievalService {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	return &retrievalService{
		retriever:   r,
		store:       store,
		defaultTopK: defaultTopK,
		logger:      log,
	}
}

func (s *retrievalService) Context(ctx context.Context, topic, course string) (*dto.ContextResponse, error) {
	return &dto.ContextResponse{
		Topic:   topic,
		Course:  course,
		Content: s.retriever.RetrieveRelevantContent(topic, course),
	}, nil
}

func (s *retrievalService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	topK := req.TopK
	if topK == 0 {
		topK = s.defaultTopK
	}

	matches, err := s.store.SearchScored(ctx, req.Query, topK)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = dto.SearchResult{
			Text:       m.Text,
			Similarity: m.Similarity,
			Metadata:   m.Metadata,
		}
	}
	return &dto.SearchResponse{Results: results}, nil
}

// Query finds course content for a workflow question: the best semantic
// match first, then a course whose name appears in the question, then a
// generic description.
func (s *retrievalService) Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	res := &dto.QueryResponse{
		Topic:    req.OriginalData.Topic,
		Question: req.OriginalData.Question,
		Answer:   req.OriginalData.Answer,
	}

	if s.store.Len() > 0 {
		matches, err := s.store.SearchScored(ctx, req.Question, 1)
		if err != nil {
			s.logger.Warn(moduleRetrieval, "Semantic search failed, using keyword match", map[string]interface{}{"error": err.Error()})
		} else if len(matches) > 0 && matches[0].Similarity >= minQuerySimilarity {
			res.CourseContent = matches[0].Text
			return res, nil
		}
	}

	question := strings.ToLower(req.Question)
	for _, name := range s.retriever.Courses() {
		if strings.Contains(question, name) {
			res.CourseContent = s.retriever.Excerpt(name)
			return res, nil
		}
	}

	res.CourseContent = fallbackContent
	return res, nil
}
