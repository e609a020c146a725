package dto

type ContextResponse struct {
	Topic   string `json:"topic"`
	Course  string `json:"course"`
	Content string `json:"content"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"gte=0,lte=50"`
}

type SearchResult struct {
	Text       string                 `json:"text"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type OriginalData struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QueryRequest is the retrieval call made by the tutoring workflow
type QueryRequest struct {
	Question     string       `json:"question" validate:"required"`
	OriginalData OriginalData `json:"originalData"`
}

type QueryResponse struct {
	CourseContent string `json:"courseContent"`
	Topic         string `json:"topic"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}
