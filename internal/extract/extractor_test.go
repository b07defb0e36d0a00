package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func completionReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newTestExtractor(t *testing.T, handler http.HandlerFunc) *OpenAIExtractor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e, err := NewOpenAIExtractor(OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}, zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestExtractOK(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	e := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(completionReply(
			"Sure, here is the data:\n" + `{"kind":"activity","volunteer_name":"Jane Roe","email":null,"phone":null,"organization":null,"position_title":null,"activities":[{"activity_date":"2026-04-18","activity":"Tutoring","organization":null,"location":null,"hours":4,"description":null}]}`,
		)))
	})

	payload, raw, err := e.Extract(context.Background(), []byte("%PDF-1.4 test"), "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "/chat/completions", gotPath)
	require.Equal(t, KindActivity, payload.Kind)
	require.Equal(t, "Jane Roe", *payload.VolunteerName)
	require.Contains(t, string(raw), `"kind":"activity"`)

	// one request carrying the prompt and the encoded document
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	imagePart := parts[1].(map[string]any)
	url := imagePart["image_url"].(map[string]any)["url"].(string)
	require.Contains(t, url, "data:application/pdf;base64,")
}

func TestExtractNoJSONInReply(t *testing.T) {
	e := newTestExtractor(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionReply("The document is blank, nothing to extract.")))
	})

	_, _, err := e.Extract(context.Background(), []byte("data"), "image/png")
	require.ErrorIs(t, err, ErrNoData)
}

func TestExtractShapeMismatchIsNoData(t *testing.T) {
	e := newTestExtractor(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionReply(`{"kind":"receipt","total":"12.00"}`)))
	})

	_, _, err := e.Extract(context.Background(), []byte("data"), "image/png")
	require.ErrorIs(t, err, ErrNoData)
}

func TestExtractServiceErrorIsNotNoData(t *testing.T) {
	e := newTestExtractor(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	})

	_, _, err := e.Extract(context.Background(), []byte("data"), "image/jpeg")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoData)
}

func TestExtractEmptyChoices(t *testing.T) {
	e := newTestExtractor(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, _, err := e.Extract(context.Background(), []byte("data"), "image/png")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoData)
}
