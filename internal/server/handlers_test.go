package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

func newTestServer(t *testing.T, responses ...llm.MockResponse) (*Server, *llm.MockProvider) {
	t.Helper()
	provider := llm.NewMockProvider(responses...)
	service := quizgen.NewService(provider, quizgen.DefaultConfig(), nil, nil)
	return New(DefaultConfig(), service, provider, nil, nil), provider
}

func quizJSONResponse(count int) llm.MockResponse {
	questions := make([]map[string]any, count)
	for i := range questions {
		questions[i] = map[string]any{
			"question_number": i + 1,
			"question":        "Generated question?",
			"options": []map[string]string{
				{"key": "A", "value": "first"},
				{"key": "B", "value": "second"},
				{"key": "C", "value": "third"},
				{"key": "D", "value": "fourth"},
			},
			"answer":           []string{"A"},
			"confidence_score": 0.9,
		}
	}
	content, _ := json.Marshal(map[string]any{"questions": questions})
	return llm.MockResponse{Content: content}
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestHandleGenerate_Success(t *testing.T) {
	srv, _ := newTestServer(t, quizJSONResponse(3))

	w := doRequest(srv, http.MethodPost, "/generate-questions",
		`{"teaching_point": "Radar coverage depends on elevation", "question_type": "SINGLE_CHOICE", "distractor_count": 3}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result quizgen.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Questions, quizgen.QuestionCount)
	assert.Equal(t, "multiple_choice", result.Metadata.StrategyUsed)
	assert.Equal(t, quizgen.SingleChoice, result.QuestionType)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandleGenerate_ValidationError(t *testing.T) {
	srv, provider := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/generate-questions",
		`{"teaching_point": "tp", "question_type": "MULTI_SELECT", "distractor_count": 3}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_CORRECT_COUNT", body["code"])
	assert.Zero(t, provider.CallCount(), "invalid request must not reach the provider")
}

func TestHandleGenerate_EmptyTeachingPoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/generate-questions",
		`{"teaching_point": "   ", "question_type": "BOOLEAN"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerate_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/generate-questions", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerate_InferenceFailure(t *testing.T) {
	srv, _ := newTestServer(t, llm.MockResponse{
		Err: &llm.Error{Kind: llm.KindUnreachable},
	})

	w := doRequest(srv, http.MethodPost, "/generate-questions",
		`{"teaching_point": "tp", "question_type": "BOOLEAN"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleGenerate_GarbageOutputStillSucceeds(t *testing.T) {
	srv, _ := newTestServer(t, llm.MockResponse{
		Content: json.RawMessage(`not parseable at all`),
	})

	w := doRequest(srv, http.MethodPost, "/generate-questions",
		`{"teaching_point": "tp", "question_type": "SINGLE_CHOICE", "distractor_count": 3}`)

	require.Equal(t, http.StatusOK, w.Code)

	var result quizgen.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Questions, quizgen.QuestionCount)
	for _, q := range result.Questions {
		assert.Zero(t, q.Confidence)
	}
}

func TestHandleGenerate_EchoesCallerRequestID(t *testing.T) {
	srv, _ := newTestServer(t, quizJSONResponse(3))

	req := httptest.NewRequest(http.MethodPost, "/generate-questions",
		strings.NewReader(`{"teaching_point": "tp", "question_type": "BOOLEAN"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, "caller-supplied-id")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, "caller-supplied-id", w.Header().Get(requestIDHeader))
}

func TestHandleRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "operational", body["status"])
	assert.Len(t, body["features"], 4)
}

func TestHandleHealth(t *testing.T) {
	srv, provider := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// MockProvider has no ping probe, so the connection is assumed up.
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["llm_connection"])
	assert.Equal(t, provider.ModelID(), body["model"])
	assert.Equal(t, Version, body["version"])
}

func TestHandleQuestionTypes(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/question-types", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		QuestionTypes   map[string]json.RawMessage `json:"question_types"`
		Languages       []string                   `json:"languages"`
		CognitiveLevels []string                   `json:"cognitive_levels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.QuestionTypes, 4)
	for _, qt := range quizgen.QuestionTypes {
		assert.Contains(t, body.QuestionTypes, string(qt))
	}
	assert.Equal(t, []string{"en", "ar"}, body.Languages)
	assert.Len(t, body.CognitiveLevels, 6)
}
