// Package gemini provides an HTTP client for the generative-AI
// collaborator used for video sound description, dialogue transcription,
// effect selection, and speech synthesis.
package gemini

// Prebuilt voice names accepted by the speech synthesis endpoint.
const (
	VoiceMasculine = "Puck"
	VoiceFeminine  = "Kore"
)

// SpeechOptions contains optional parameters for speech synthesis.
type SpeechOptions struct {
	// Voice is the prebuilt voice name. Defaults to VoiceMasculine.
	Voice string
	// StyleInstruction is prepended to the text to steer delivery,
	// e.g. "Say curiously:".
	StyleInstruction string
}

// generateRequest is the request body for the generateContent endpoint.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

// generateResponse is the response body from the generateContent endpoint.
type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
