package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

// Static errors for client operations.
var (
	// ErrAPIKeyNotSet is returned when no API key is provided and the
	// GEMINI_API_KEY environment variable is not set.
	ErrAPIKeyNotSet = errors.New("gemini: GEMINI_API_KEY environment variable is not set")
	// ErrEmptyResponse is returned when the model returns no candidates.
	ErrEmptyResponse = errors.New("gemini: empty model response")
	// ErrNoAudioReturned is returned when speech synthesis returns no audio part.
	ErrNoAudioReturned = errors.New("gemini: no audio returned")
	// ErrInvalidEffectSelection is returned when the effect-selection
	// response is not a JSON array of strings.
	ErrInvalidEffectSelection = errors.New("gemini: effect selection is not a JSON array of strings")
	// ErrSafetyBlocked is returned when generation stops for safety reasons.
	ErrSafetyBlocked = errors.New("gemini: response blocked by safety filters")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("gemini: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("gemini: rate limited")
	// ErrRequestFailed is returned when the request fails with another
	// non-2xx status code.
	ErrRequestFailed = errors.New("gemini: request failed")
)

// Client defines the interface for the AI collaborator.
type Client interface {
	// DescribeVideo returns a free-text description of the sounds that
	// fit the video.
	DescribeVideo(ctx context.Context, videoB64, mimeType string) (string, error)

	// SelectEffects asks the model to pick effect IDs for the video from
	// the given catalog descriptions. The model must answer with a JSON
	// array of strings; any other shape is ErrInvalidEffectSelection.
	SelectEffects(ctx context.Context, videoB64, mimeType string, options map[string]string) ([]string, error)

	// TranscribeDialogue returns a timed dialogue script inferred from
	// the video's lip movement.
	TranscribeDialogue(ctx context.Context, videoB64, mimeType string) (string, error)

	// SynthesizeSpeech converts text to raw 24 kHz mono 16-bit PCM.
	SynthesizeSpeech(ctx context.Context, text string, opts SpeechOptions) ([]byte, error)
}

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	apiKey      string
	model       string
	ttsModel    string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ClientOption {
	return func(c *HTTPClient) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) ClientOption {
	return func(c *HTTPClient) { c.baseURL = url }
}

// WithTTSModel sets the model used for speech synthesis.
func WithTTSModel(model string) ClientOption {
	return func(c *HTTPClient) { c.ttsModel = model }
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) { c.maxRetries = n }
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(c *HTTPClient) { c.baseBackoff = d }
}

// NewClient creates a new HTTP client for the collaborator API.
// The API key can be set via WithAPIKey; if not provided it is read from
// the GEMINI_API_KEY environment variable.
func NewClient(model string, opts ...ClientOption) (*HTTPClient, error) {
	c := &HTTPClient{
		model:       model,
		ttsModel:    "gemini-2.5-flash-preview-tts",
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}
	if c.model == "" {
		c.model = "gemini-2.5-flash"
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	return c, nil
}

const describePrompt = "Watch this video and describe the sounds that would " +
	"naturally accompany it. Answer with a short plain-text description only."

const transcribePrompt = "Watch this video and transcribe what each person " +
	"appears to be saying, one line per utterance, in the exact format:\n" +
	"[<seconds>] DIALOGUE: <speaker>: (<age>, <gender>) [<performance cue>] <text>\n" +
	"Use the video timeline for the timestamps. Output nothing else."

// DescribeVideo returns a free-text sound description for the video.
func (c *HTTPClient) DescribeVideo(ctx context.Context, videoB64, mimeType string) (string, error) {
	text, err := c.generateText(ctx, videoB64, mimeType, describePrompt)
	if err != nil {
		return "", fmt.Errorf("gemini: describe video: %w", err)
	}
	return text, nil
}

// TranscribeDialogue returns the raw dialogue script text for the video.
func (c *HTTPClient) TranscribeDialogue(ctx context.Context, videoB64, mimeType string) (string, error) {
	text, err := c.generateText(ctx, videoB64, mimeType, transcribePrompt)
	if err != nil {
		return "", fmt.Errorf("gemini: transcribe dialogue: %w", err)
	}
	return text, nil
}

// SelectEffects asks the model to choose effect IDs from the catalog.
// options maps effect ID to its human-readable description.
func (c *HTTPClient) SelectEffects(ctx context.Context, videoB64, mimeType string, options map[string]string) ([]string, error) {
	optIDs := make([]string, 0, len(options))
	for id := range options {
		optIDs = append(optIDs, id)
	}
	sort.Strings(optIDs)

	var sb strings.Builder
	sb.WriteString("Watch this video and pick the sound effects that fit it " +
		"from the catalog below. Answer with a JSON array of effect ID strings " +
		"and nothing else.\n")
	for _, id := range optIDs {
		fmt.Fprintf(&sb, "- %q: %s\n", id, options[id])
	}

	text, err := c.generateText(ctx, videoB64, mimeType, sb.String())
	if err != nil {
		return nil, fmt.Errorf("gemini: select effects: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &ids); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEffectSelection, text)
	}
	return ids, nil
}

// SynthesizeSpeech converts text to raw PCM via the TTS model.
func (c *HTTPClient) SynthesizeSpeech(ctx context.Context, text string, opts SpeechOptions) ([]byte, error) {
	if opts.Voice == "" {
		opts.Voice = VoiceMasculine
	}
	prompt := text
	if opts.StyleInstruction != "" {
		prompt = opts.StyleInstruction + " " + text
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: opts.Voice},
				},
			},
		},
	}

	resp, err := c.generate(ctx, c.ttsModel, reqBody)
	if err != nil {
		return nil, fmt.Errorf("gemini: synthesize speech: %w", err)
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			raw, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("gemini: decode audio payload: %w", err)
			}
			return raw, nil
		}
	}
	return nil, ErrNoAudioReturned
}

// generateText runs one video+prompt generation and returns the first
// text part of the first candidate.
func (c *HTTPClient) generateText(ctx context.Context, videoB64, mimeType, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MimeType: mimeType, Data: videoB64}},
			{Text: prompt},
		}}},
	}

	resp, err := c.generate(ctx, c.model, reqBody)
	if err != nil {
		return "", err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			return strings.TrimSpace(p.Text), nil
		}
	}
	return "", ErrEmptyResponse
}

// generate posts a generateContent request and validates the response
// envelope.
func (c *HTTPClient) generate(ctx context.Context, model string, reqBody generateRequest) (*generateResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

	var resp generateResponse
	if err := c.doRequestWithRetry(ctx, url, bodyBytes, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	if resp.Candidates[0].FinishReason == "SAFETY" {
		return nil, ErrSafetyBlocked
	}
	return &resp, nil
}

// doRequestWithRetry performs a POST with exponential backoff retry on
// transient failures.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, url string, body []byte, result any) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := c.doRequest(ctx, url, body, result)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, url string, body []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models emit around JSON answers.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
