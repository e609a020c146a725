package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/internal/pkg/serverutils"
	"ai-tutor-be/internal/repository/memory"
	"ai-tutor-be/internal/service"
	"ai-tutor-be/pkg/retriever"
	"ai-tutor-be/pkg/tutor/session"
	"ai-tutor-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

const lessonPayload = `{
	"retention": 0.82,
	"feedback": "Good job",
	"language": "en",
	"lesson_kind": "advanced",
	"lesson_content": {"topic": "Loops", "content": [{"title": "For", "description": "counted"}, {"title": "While", "description": "conditional"}]},
	"questions": [{"question": "What does break do?", "options": ["exit", "skip"], "correct_answer": "exit"}]
}`

type testApp struct {
	app      *fiber.App
	store    *vectorstore.Store
	progress *service.ProgressService
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	log := logger.NewNopLogger()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	r := retriever.New(map[string]string{"javascript": "## Loops\nfor and while\n## Variables\nlet and const"}, nil)
	store := vectorstore.New(letterEmbedder{}, nil)
	progress := service.NewProgressService(nil, log)

	evaluator := session.EvaluatorFunc(func(ctx context.Context, req session.EvaluationRequest) ([]byte, error) {
		return []byte(lessonPayload), nil
	})
	sessions := service.NewSessionService(memory.NewSessionRepository(time.Hour, time.Hour), evaluator, nil, nil, progress, nil)

	consumer := service.NewConsumerService(pubSub, "ingest", store, service.ChunkConfig{Size: 200, Overlap: 20}, nil, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, consumer.Consume(ctx))

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware(service.ErrorStatus)})
	api := app.Group("/api")
	NewSessionController(sessions).RegisterRoutes(api)
	NewContentController(service.NewContentService(r, service.NewPublisherService("ingest", pubSub), log), 1024).RegisterRoutes(api)
	NewRetrievalController(service.NewRetrievalService(r, store, 3, log)).RegisterRoutes(api)
	NewProgressController(progress, sessions.Summary).RegisterRoutes(api)

	return testApp{app: app, store: store, progress: progress}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestSessionController_Flow(t *testing.T) {
	ta := newTestApp(t)

	status, body := doJSON(t, ta.app, "POST", "/api/session/v1", dto.StartSessionRequest{Course: "loops"})
	require.Equal(t, fiber.StatusCreated, status)

	var started serverutils.BaseResponse[dto.SessionResponse]
	require.NoError(t, json.Unmarshal(body, &started))
	id := started.Data.Session.ID
	require.NotEmpty(t, id)
	assert.Equal(t, "What is the difference between for and while loops?", started.Data.Session.CurrentQuestion)

	status, body = doJSON(t, ta.app, "POST", "/api/session/v1/"+id+"/answer", dto.SubmitAnswerRequest{Answer: "for counts, while checks"})
	require.Equal(t, fiber.StatusOK, status)

	var answered serverutils.BaseResponse[dto.SubmitAnswerResponse]
	require.NoError(t, json.Unmarshal(body, &answered))
	assert.True(t, answered.Data.Accepted)

	kinds := make([]session.EventKind, 0, len(answered.Data.Events))
	for _, ev := range answered.Data.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []session.EventKind{
		session.KindText,     // learner answer
		session.KindStatus,   // language, lesson kind, retention
		session.KindFeedback, // Good job
		session.KindLesson,   // Loops header
		session.KindLesson,   // For
		session.KindLesson,   // While
	}, kinds)
	assert.Equal(t, "Language: EN | Lesson: advanced | Retention Score: 82% (average 82%)", answered.Data.Events[1].Text)
	assert.Equal(t, "What does break do?", answered.Data.Session.CurrentQuestion)

	zero := 0
	status, _ = doJSON(t, ta.app, "PUT", "/api/session/v1/"+id+"/question", dto.SelectQuestionRequest{Index: &zero})
	assert.Equal(t, fiber.StatusOK, status)

	three := 3
	status, _ = doJSON(t, ta.app, "PUT", "/api/session/v1/"+id+"/question", dto.SelectQuestionRequest{Index: &three})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, body = doJSON(t, ta.app, "GET", "/api/progress/v1", nil)
	require.Equal(t, fiber.StatusOK, status)
	var progress serverutils.BaseResponse[dto.ProgressResponse]
	require.NoError(t, json.Unmarshal(body, &progress))
	require.Len(t, progress.Data.Courses, 1)
	assert.Equal(t, "loops", progress.Data.Courses[0].Course)

	status, body = doJSON(t, ta.app, "GET", "/api/progress/v1/sessions", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"active":1`)

	status, _ = doJSON(t, ta.app, "DELETE", "/api/session/v1/"+id, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, ta.app, "GET", "/api/session/v1/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(body), "session not found")
}

func TestSessionController_BlankAnswerIgnored(t *testing.T) {
	ta := newTestApp(t)

	status, body := doJSON(t, ta.app, "POST", "/api/session/v1", dto.StartSessionRequest{Course: "loops"})
	require.Equal(t, fiber.StatusCreated, status)
	var started serverutils.BaseResponse[dto.SessionResponse]
	require.NoError(t, json.Unmarshal(body, &started))
	id := started.Data.Session.ID

	status, body = doJSON(t, ta.app, "POST", "/api/session/v1/"+id+"/answer", dto.SubmitAnswerRequest{Answer: "  \n\t "})
	require.Equal(t, fiber.StatusOK, status)

	var ignored serverutils.BaseResponse[dto.SubmitAnswerResponse]
	require.NoError(t, json.Unmarshal(body, &ignored))
	assert.Equal(t, "Answer ignored", ignored.Message)
	assert.False(t, ignored.Data.Accepted)
	assert.Empty(t, ignored.Data.Events)
	assert.Equal(t, session.StateAwaitingAnswer, ignored.Data.Session.MachineState)
	assert.Len(t, ignored.Data.Session.Messages, len(started.Data.Session.Messages))
}

func TestSessionController_Validation(t *testing.T) {
	ta := newTestApp(t)

	status, body := doJSON(t, ta.app, "POST", "/api/session/v1", nil)
	require.Equal(t, fiber.StatusCreated, status)
	var started serverutils.BaseResponse[dto.SessionResponse]
	require.NoError(t, json.Unmarshal(body, &started))
	assert.Equal(t, session.DefaultTopic, started.Data.Session.Topic)

	status, body = doJSON(t, ta.app, "POST", "/api/session/v1/"+started.Data.Session.ID+"/answer", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), `"answer":"is required"`)

	status, _ = doJSON(t, ta.app, "PUT", "/api/session/v1/"+started.Data.Session.ID+"/question", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, ta.app, "POST", "/api/session/v1/unknown/answer", dto.SubmitAnswerRequest{Answer: "x"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestContentController(t *testing.T) {
	ta := newTestApp(t)

	status, body := doJSON(t, ta.app, "POST", "/api/content/v1", dto.IngestContentRequest{
		Course:  "Async",
		Topic:   "Promises",
		Content: "## Promises\nA promise represents a future value.",
	})
	require.Equal(t, fiber.StatusAccepted, status)
	assert.Contains(t, string(body), `"course":"async"`)

	status, body = doJSON(t, ta.app, "GET", "/api/content/v1/courses", nil)
	require.Equal(t, fiber.StatusOK, status)
	var courses serverutils.BaseResponse[dto.CoursesResponse]
	require.NoError(t, json.Unmarshal(body, &courses))
	assert.Equal(t, []string{"async", "javascript"}, courses.Data.Courses)

	status, body = doJSON(t, ta.app, "GET", "/api/content/v1/graph", nil)
	require.Equal(t, fiber.StatusOK, status)
	var graph serverutils.BaseResponse[dto.GraphResponse]
	require.NoError(t, json.Unmarshal(body, &graph))
	// async, Promises, javascript, Loops, Variables
	assert.Len(t, graph.Data.Nodes, 5)
	assert.Len(t, graph.Data.Edges, 3)

	require.Eventually(t, func() bool { return ta.store.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	status, _ = doJSON(t, ta.app, "POST", "/api/content/v1", map[string]string{"course": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestContentController_UploadPDF(t *testing.T) {
	ta := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("plain text"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/content/v1/pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/content/v1/pdf", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp, err = ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRetrievalController(t *testing.T) {
	ta := newTestApp(t)

	status, body := doJSON(t, ta.app, "GET", "/api/retrieval/v1/context?topic=loops&course=javascript", nil)
	require.Equal(t, fiber.StatusOK, status)
	var ctxRes serverutils.BaseResponse[dto.ContextResponse]
	require.NoError(t, json.Unmarshal(body, &ctxRes))
	assert.Equal(t, " Loops\nfor and while\n", ctxRes.Data.Content)

	status, body = doJSON(t, ta.app, "GET", "/api/retrieval/v1/context?topic=loops&course=unknown-course", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &ctxRes))
	assert.Equal(t, "", ctxRes.Data.Content)

	status, _ = doJSON(t, ta.app, "GET", "/api/retrieval/v1/context?topic=loops", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = doJSON(t, ta.app, "POST", "/api/retrieval/v1/query", dto.QueryRequest{
		Question:     "explain javascript loops",
		OriginalData: dto.OriginalData{Topic: "loops", Question: "q", Answer: "a"},
	})
	require.Equal(t, fiber.StatusOK, status)
	var q dto.QueryResponse
	require.NoError(t, json.Unmarshal(body, &q))
	assert.True(t, strings.HasPrefix(q.CourseContent, "## Loops"))
	assert.Equal(t, "loops", q.Topic)

	require.NoError(t, ta.store.AddDocument(context.Background(), "closures capture scope", nil))
	status, body = doJSON(t, ta.app, "POST", "/api/retrieval/v1/search", dto.SearchRequest{Query: "closures capture scope", TopK: 1})
	require.Equal(t, fiber.StatusOK, status)
	var search serverutils.BaseResponse[dto.SearchResponse]
	require.NoError(t, json.Unmarshal(body, &search))
	require.Len(t, search.Data.Results, 1)
	assert.Equal(t, "closures capture scope", search.Data.Results[0].Text)

	status, _ = doJSON(t, ta.app, "POST", "/api/retrieval/v1/search", dto.SearchRequest{Query: "x", TopK: 99})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
