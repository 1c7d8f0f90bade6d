// Package job provides the Job aggregate for audio generation requests
// and the ProcessAudioService use case that orchestrates them.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/francohuller-ux/Video2Sound/internal/job/id"
)

// Mode selects the generation strategy for a job.
type Mode string

const (
	// ModeEffects asks the collaborator to pick built-in sound effects
	// for the video and mixes them into one track.
	ModeEffects Mode = "effects"
	// ModeDialogue transcribes lip-synced dialogue, synthesizes each
	// line, and stitches the clips onto the video timeline.
	ModeDialogue Mode = "dialogue"
)

// IsValid returns true if the mode is recognized.
func (m Mode) IsValid() bool {
	return m == ModeEffects || m == ModeDialogue
}

// Status represents the current state of a Job.
type Status string

const (
	// StatusInQueue indicates the job is waiting to start.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the job is being processed.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the job encountered a fatal error.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was cancelled by the caller.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// LineStatus is the synthesis status of one dialogue line.
type LineStatus string

const (
	// LineStatusPending indicates the line has not been synthesized yet.
	LineStatusPending LineStatus = "PENDING"
	// LineStatusSynthesized indicates the line produced a clip.
	LineStatusSynthesized LineStatus = "SYNTHESIZED"
	// LineStatusDropped indicates synthesis failed; the clip is omitted
	// from the stitched output.
	LineStatusDropped LineStatus = "DROPPED"
)

// Line records the outcome of one dialogue line's synthesis.
type Line struct {
	// Index is the position of the line in the parsed script.
	Index int
	// Time is the line's timeline position in seconds.
	Time float64
	// Speaker is the speaker label from the script.
	Speaker string
	// Text is the dialogue content.
	Text string
	// Status is the synthesis outcome.
	Status LineStatus
	// Error holds the synthesis error message for dropped lines.
	Error string
}

// Job represents one audio generation request. It contains all state
// related to turning an uploaded video into a WAV artifact.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Mode selects effects mixing or dialogue stitching.
	Mode Mode
	// Status is the current job state.
	Status Status
	// Progress is the percentage of completion (0-100).
	Progress int
	// Error contains any error message if the job failed.
	Error string
	// Description is the collaborator's sound description, when available.
	Description string
	// Lines records per-line synthesis outcomes in dialogue mode.
	Lines []Line
	// DroppedLines counts dialogue lines whose synthesis failed.
	DroppedLines int
	// InputVideoPath is the temp path of the uploaded video.
	InputVideoPath string
	// OutputAudioPath is the path of the final WAV artifact.
	OutputAudioPath string
	// ArtifactName is the suggested download filename.
	ArtifactName string
	// PushToS3 indicates whether to upload the result to S3.
	PushToS3 bool
	// AudioURL is the S3 URL if PushToS3 was true.
	AudioURL string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial IN_QUEUE status.
func New(mode Mode) *Job {
	now := time.Now()
	return &Job{
		ID:        id.Generate(),
		Mode:      mode,
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWithID creates a new Job with the specified ID. Useful for testing.
func NewWithID(jobID string, mode Mode) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Mode:      mode,
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}
	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED state.
func (j *Job) Complete() error {
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetLines sets the per-line synthesis records for this job.
func (j *Job) SetLines(lines []Line) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Lines = lines
	j.UpdatedAt = time.Now()
}

// UpdateLine updates a specific line record by index.
func (j *Job) UpdateLine(index int, line Line) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if index >= 0 && index < len(j.Lines) {
		j.Lines[index] = line
		j.UpdatedAt = time.Now()
	}
}

// SetDroppedLines records how many dialogue lines failed to synthesize.
func (j *Job) SetDroppedLines(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DroppedLines = n
	j.UpdatedAt = time.Now()
}

// SetDescription records the collaborator's sound description.
func (j *Job) SetDescription(desc string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Description = desc
	j.UpdatedAt = time.Now()
}

// SetInputVideoPath records where the uploaded video was stored.
func (j *Job) SetInputVideoPath(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.InputVideoPath = path
	j.UpdatedAt = time.Now()
}

// UpdateProgress sets the progress percentage (0-100).
func (j *Job) UpdateProgress(progress int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
	j.UpdatedAt = time.Now()
}

// SetOutput sets the output artifact path, download name, and optional S3 URL.
func (j *Job) SetOutput(audioPath, artifactName, audioURL string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutputAudioPath = audioPath
	j.ArtifactName = artifactName
	j.AudioURL = audioURL
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	lines := make([]Line, len(j.Lines))
	copy(lines, j.Lines)

	return &Job{
		ID:              j.ID,
		Mode:            j.Mode,
		Status:          j.Status,
		Progress:        j.Progress,
		Error:           j.Error,
		Description:     j.Description,
		Lines:           lines,
		DroppedLines:    j.DroppedLines,
		InputVideoPath:  j.InputVideoPath,
		OutputAudioPath: j.OutputAudioPath,
		ArtifactName:    j.ArtifactName,
		PushToS3:        j.PushToS3,
		AudioURL:        j.AudioURL,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
		StartedAt:       j.StartedAt,
		CompletedAt:     j.CompletedAt,
	}
}
