package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNoData means the service answered but nothing usable could be scraped
// out of the reply: no JSON object, unparseable JSON, or JSON that matches
// neither form schema. It is a content judgment, not a transport fault, and
// is never retried.
var ErrNoData = errors.New("no structured data extracted")

// Extractor turns raw document bytes into a structured payload. The raw
// JSON is returned alongside so it can be stored on the row for audit.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (*Payload, []byte, error)
}

// OpenAIConfig configures the vision extraction client. BaseURL may point
// at any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type OpenAIExtractor struct {
	cfg    OpenAIConfig
	schema *jsonschema.Schema
	http   *http.Client
	log    zerolog.Logger
}

func NewOpenAIExtractor(cfg OpenAIConfig, log zerolog.Logger) (*OpenAIExtractor, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	schema, err := compilePayloadSchema()
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}

	return &OpenAIExtractor{
		cfg:    cfg,
		schema: schema,
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "extractor").Logger(),
	}, nil
}

// Extract sends one request carrying the instruction prompt and the encoded
// document, then scrapes and validates a payload from the reply text.
func (e *OpenAIExtractor) Extract(ctx context.Context, data []byte, contentType string) (*Payload, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	e.log.Info().
		Str("req_id", rid).
		Str("model", e.cfg.Model).
		Str("content_type", contentType).
		Int("bytes", len(data)).
		Msg("extraction request")

	body := map[string]any{
		"model":       e.cfg.Model,
		"temperature": 0,
		"messages": []map[string]any{
			{"role": "system", "content": buildSystemPrompt()},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": "Extract the structured data from this volunteer form."},
				{"type": "image_url", "image_url": map[string]any{"url": dataURL(data, contentType)}},
			}},
		},
	}

	raw, err := e.post(ctx, strings.TrimRight(e.cfg.BaseURL, "/")+"/chat/completions", body)
	if err != nil {
		e.log.Error().
			Str("req_id", rid).
			Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("extraction call failed")
		return nil, nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, nil, fmt.Errorf("decode extraction response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, nil, fmt.Errorf("no choices in extraction response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	span, ok := firstJSONObject(content)
	if !ok {
		e.log.Warn().
			Str("req_id", rid).
			Int("reply_len", len(content)).
			Msg("no JSON object in extraction reply")
		return nil, nil, ErrNoData
	}

	payload, perr := parsePayload(e.schema, span)
	if perr != nil {
		e.log.Warn().
			Str("req_id", rid).
			Err(perr).
			Msg("extraction reply unusable")
		return nil, nil, fmt.Errorf("%w: %s", ErrNoData, perr)
	}

	e.log.Info().
		Str("req_id", rid).
		Str("kind", payload.Kind).
		Dur("elapsed", time.Since(start)).
		Msg("extraction ok")
	return payload, span, nil
}

func (e *OpenAIExtractor) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			e.log.Warn().Err(cerr).Msg("response body close error")
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extraction status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func dataURL(data []byte, contentType string) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
