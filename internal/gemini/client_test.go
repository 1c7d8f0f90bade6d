package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-model",
		WithAPIKey("test-key"),
		WithBaseURL(srv.URL),
		WithMaxRetries(2),
		WithBaseBackoff(time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func textResponse(text string) generateResponse {
	return generateResponse{
		Candidates: []candidate{{
			Content: content{Parts: []part{{Text: text}}},
		}},
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewClient("test-model")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestNewClient_APIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	c, err := NewClient("test-model")
	require.NoError(t, err)
	assert.Equal(t, "env-key", c.apiKey)
}

func TestNewClient_DefaultModel(t *testing.T) {
	c, err := NewClient("", WithAPIKey("k"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", c.model)
}

func TestDescribeVideo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Equal(t, "video/mp4", req.Contents[0].Parts[0].InlineData.MimeType)
		assert.Equal(t, "dmlkZW8=", req.Contents[0].Parts[0].InlineData.Data)

		_ = json.NewEncoder(w).Encode(textResponse("  Gentle rain with distant thunder.\n"))
	})

	text, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "Gentle rain with distant thunder.", text)
}

func TestSelectEffects(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []string
		wantErr error
	}{
		{"plain array", `["beep-low", "hum"]`, []string{"beep-low", "hum"}, nil},
		{"fenced array", "```json\n[\"whistle\"]\n```", []string{"whistle"}, nil},
		{"empty array", `[]`, []string{}, nil},
		{"prose answer", `I would pick beep-low and hum.`, nil, ErrInvalidEffectSelection},
		{"object answer", `{"effects": ["hum"]}`, nil, ErrInvalidEffectSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(textResponse(tt.reply))
			})

			ids, err := c.SelectEffects(context.Background(), "dmlkZW8=", "video/mp4",
				map[string]string{"beep-low": "a low beep", "hum": "a hum"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSynthesizeSpeech(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash-preview-tts:generateContent", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, []string{"AUDIO"}, req.GenerationConfig.ResponseModalities)
		assert.Equal(t, VoiceFeminine,
			req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
		assert.Equal(t, "Say warmly: Hello there.", req.Contents[0].Parts[0].Text)

		resp := generateResponse{
			Candidates: []candidate{{
				Content: content{Parts: []part{{
					InlineData: &inlineData{
						MimeType: "audio/L16;codec=pcm;rate=24000",
						Data:     base64.StdEncoding.EncodeToString(pcm),
					},
				}}},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	got, err := c.SynthesizeSpeech(context.Background(), "Hello there.", SpeechOptions{
		Voice:            VoiceFeminine,
		StyleInstruction: "Say warmly:",
	})
	require.NoError(t, err)
	assert.Equal(t, pcm, got)
}

func TestSynthesizeSpeech_DefaultVoice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, VoiceMasculine,
			req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)

		resp := generateResponse{
			Candidates: []candidate{{
				Content: content{Parts: []part{{
					InlineData: &inlineData{Data: base64.StdEncoding.EncodeToString([]byte{0, 0})},
				}}},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := c.SynthesizeSpeech(context.Background(), "Hi.", SpeechOptions{})
	require.NoError(t, err)
}

func TestSynthesizeSpeech_NoAudioPart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse("sorry, text only"))
	})

	_, err := c.SynthesizeSpeech(context.Background(), "Hi.", SpeechOptions{})
	assert.ErrorIs(t, err, ErrNoAudioReturned)
}

func TestGenerate_RetriesOnServerError(t *testing.T) {
	var attempts int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(textResponse("ok"))
	})

	text, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, attempts)
}

func TestGenerate_RetriesOnRateLimit(t *testing.T) {
	var attempts int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(textResponse("ok"))
	})

	_, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestGenerate_NoRetryOnBadRequest(t *testing.T) {
	var attempts int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 1, attempts)
}

func TestGenerate_MaxRetriesExceeded(t *testing.T) {
	var attempts int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, 3, attempts) // initial attempt plus two retries
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{})
	})

	_, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerate_SafetyBlocked(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := generateResponse{
			Candidates: []candidate{{FinishReason: "SAFETY"}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	assert.ErrorIs(t, err, ErrSafetyBlocked)
}

func TestGenerate_APIErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := generateResponse{
			Error: &apiError{Code: 400, Message: "invalid argument", Status: "INVALID_ARGUMENT"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := c.DescribeVideo(context.Background(), "dmlkZW8=", "video/mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `["a"]`, `["a"]`},
		{"json fence", "```json\n[\"a\"]\n```", `["a"]`},
		{"bare fence", "```\n[\"a\"]\n```", `["a"]`},
		{"surrounding whitespace", "  [\"a\"]  ", `["a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.input))
		})
	}
}
