// Package server provides the HTTP server for the Video2Sound API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateJobRequest is the HTTP request body for creating a new job.
type CreateJobRequest struct {
	// VideoBase64 is the base64-encoded source video.
	VideoBase64 string `json:"video_base64" validate:"required,base64"`
	// MimeType is the video's MIME type, e.g. "video/mp4".
	MimeType string `json:"mime_type" validate:"required,startswith=video/"`
	// Mode selects effects mixing or dialogue stitching.
	Mode string `json:"mode" validate:"required,oneof=effects dialogue"`
	// DurationSec is the desired output timeline duration in seconds.
	// Zero lets the service derive it from the video.
	DurationSec float64 `json:"duration_sec" validate:"gte=0"`
	// Voice optionally overrides the synthesis voice for all lines.
	Voice string `json:"voice,omitempty"`
	// PushToS3 indicates whether to upload the artifact to S3.
	PushToS3 bool `json:"push_to_s3"`
}

// CreateJobResponse is the HTTP response after creating a job.
type CreateJobResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// LineResponse reports the synthesis outcome of one dialogue line.
type LineResponse struct {
	// Index is the position of the line in the parsed script.
	Index int `json:"index"`
	// Time is the line's timeline position in seconds.
	Time float64 `json:"time"`
	// Speaker is the speaker label from the script.
	Speaker string `json:"speaker"`
	// Text is the dialogue content.
	Text string `json:"text"`
	// Status is PENDING, SYNTHESIZED, or DROPPED.
	Status string `json:"status"`
	// Error holds the synthesis error for dropped lines.
	Error string `json:"error,omitempty"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Mode is the generation mode.
	Mode string `json:"mode"`
	// Status is the current job status.
	Status string `json:"status"`
	// Progress is the percentage of completion (0-100).
	Progress int `json:"progress"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// Description is the collaborator's sound description, when available.
	Description string `json:"description,omitempty"`
	// Lines reports per-line synthesis outcomes in dialogue mode.
	Lines []LineResponse `json:"lines,omitempty"`
	// DroppedLines counts dialogue lines omitted from the output.
	// Non-zero values are a warning, not a failure.
	DroppedLines int `json:"dropped_lines,omitempty"`
	// ArtifactName is the suggested download filename.
	ArtifactName string `json:"artifact_name,omitempty"`
	// AudioBase64 is the base64-encoded WAV (if push_to_s3=false and completed).
	AudioBase64 string `json:"audio_base64,omitempty"`
	// AudioURL is the S3 URL of the artifact (if push_to_s3=true and completed).
	AudioURL string `json:"audio_url,omitempty"`
}

// EffectResponse is one catalog entry in the effects listing.
type EffectResponse struct {
	// ID is the stable effect identifier.
	ID string `json:"id"`
	// Name is the short display name.
	Name string `json:"name"`
	// Description is the human-readable description.
	Description string `json:"description"`
	// Data is the base64-encoded PCM payload.
	Data string `json:"data"`
}

// EffectsResponse is the HTTP response for the effects listing.
type EffectsResponse struct {
	// Effects is the full built-in catalog.
	Effects []EffectResponse `json:"effects"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
