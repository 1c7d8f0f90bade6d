package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/francohuller-ux/Video2Sound/internal/audio"
	"github.com/francohuller-ux/Video2Sound/internal/gemini"
	"github.com/francohuller-ux/Video2Sound/internal/media"
	"github.com/francohuller-ux/Video2Sound/internal/script"
	"github.com/francohuller-ux/Video2Sound/internal/sfx"
	"github.com/francohuller-ux/Video2Sound/internal/storage"
	"github.com/francohuller-ux/Video2Sound/internal/wav"
)

// Static errors for audio processing.
var (
	// ErrNoDialogueDetected is returned when the collaborator's script
	// contains no parseable dialogue lines. This is an empty-result
	// condition, not a parser failure.
	ErrNoDialogueDetected = errors.New("job: no dialogue detected in video")
	// ErrNoAudioProduced is returned when every dialogue line failed to
	// synthesize or no selected effect could be decoded.
	ErrNoAudioProduced = errors.New("job: no audio produced")
	// ErrInvalidVideoPayload is returned when the uploaded video cannot
	// be base64-decoded.
	ErrInvalidVideoPayload = errors.New("job: invalid video payload")
	// ErrUnknownMode is returned for an unrecognized generation mode.
	ErrUnknownMode = errors.New("job: unknown generation mode")
)

// Artifact filenames offered for download.
const (
	ArtifactNameEffects  = "generated-sound.wav"
	ArtifactNameDialogue = "generated-dialogue.wav"
)

// ProcessAudioInput contains the input parameters for audio generation.
type ProcessAudioInput struct {
	// VideoBase64 is the base64-encoded source video.
	VideoBase64 string
	// MimeType is the video's MIME type, e.g. "video/mp4".
	MimeType string
	// Mode selects effects mixing or dialogue stitching.
	Mode Mode
	// DurationSec is the timeline duration of the output in seconds.
	// Zero means derive it from the video (ffprobe) or, failing that,
	// from the last clip's end.
	DurationSec float64
	// Voice optionally overrides the synthesis voice for all lines.
	Voice string
	// PushToS3 indicates whether to upload the artifact to S3.
	PushToS3 bool
}

// ProcessAudioService orchestrates the audio generation workflow. It
// coordinates the AI collaborator, the effect catalog, the PCM assembly
// core, and storage to produce a WAV artifact. All audio math is
// delegated to the pure functions in internal/audio and internal/wav.
type ProcessAudioService struct {
	repo    Repository
	ai      gemini.Client
	catalog *sfx.Catalog
	store   storage.Storage
	prober  media.Prober
	logger  *slog.Logger

	// maxConcurrentLines bounds parallel speech synthesis calls.
	maxConcurrentLines int
}

// ServiceOption is a function that configures a ProcessAudioService.
type ServiceOption func(*ProcessAudioService)

// WithMaxConcurrentLines bounds how many dialogue lines are synthesized
// in parallel. Values < 1 are ignored.
func WithMaxConcurrentLines(n int) ServiceOption {
	return func(s *ProcessAudioService) {
		if n > 0 {
			s.maxConcurrentLines = n
		}
	}
}

// WithProber sets the media prober used to derive timeline duration
// from the uploaded video.
func WithProber(p media.Prober) ServiceOption {
	return func(s *ProcessAudioService) {
		s.prober = p
	}
}

// NewProcessAudioService creates a new ProcessAudioService.
func NewProcessAudioService(
	repo Repository,
	ai gemini.Client,
	catalog *sfx.Catalog,
	store storage.Storage,
	logger *slog.Logger,
	opts ...ServiceOption,
) *ProcessAudioService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ProcessAudioService{
		repo:               repo,
		ai:                 ai,
		catalog:            catalog,
		store:              store,
		logger:             logger,
		maxConcurrentLines: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJob creates a new job in IN_QUEUE status and persists it.
func (s *ProcessAudioService) CreateJob(ctx context.Context, input ProcessAudioInput) (*Job, error) {
	if !input.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, input.Mode)
	}

	j := New(input.Mode)
	j.PushToS3 = input.PushToS3

	s.logger.Info("creating new job",
		slog.String("job_id", j.ID),
		slog.String("mode", string(input.Mode)),
		slog.Bool("push_to_s3", input.PushToS3),
	)

	if err := s.repo.Save(ctx, j); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return j, nil
}

// GetJob retrieves a job by ID.
func (s *ProcessAudioService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ProcessExistingJob runs the full generation workflow for a previously
// created job. On any fatal error the job transitions to FAILED with
// the error message; partial synthesis failures degrade the output by
// omission instead of failing the batch.
func (s *ProcessAudioService) ProcessExistingJob(ctx context.Context, jobID string, input ProcessAudioInput) (*Job, error) {
	j, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := j.Start(); err != nil {
		return nil, fmt.Errorf("start job %s: %w", jobID, err)
	}
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, err
	}

	if err := s.process(ctx, j, input); err != nil {
		s.logger.Error("job failed",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		_ = j.Fail(err.Error())
		_ = s.repo.Save(ctx, j)
		return j, err
	}

	_ = j.Complete()
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info("job completed",
		slog.String("job_id", j.ID),
		slog.String("artifact", j.ArtifactName),
		slog.Int("dropped_lines", j.DroppedLines),
	)
	return j, nil
}

// process runs the mode-specific pipeline and records the artifact.
func (s *ProcessAudioService) process(ctx context.Context, j *Job, input ProcessAudioInput) error {
	videoBytes, err := audio.DecodeBase64(input.VideoBase64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVideoPayload, err)
	}

	videoPath, err := s.store.SaveTemp(ctx, "input_video", bytes.NewReader(videoBytes))
	if err != nil {
		return fmt.Errorf("save input video: %w", err)
	}
	j.SetInputVideoPath(videoPath)
	j.UpdateProgress(10)
	_ = s.repo.Save(ctx, j)
	defer func() {
		if err := s.store.CleanupTemp(context.WithoutCancel(ctx), []string{videoPath}); err != nil {
			s.logger.Warn("cleanup temp video failed",
				slog.String("job_id", j.ID),
				slog.String("error", err.Error()),
			)
		}
	}()

	var (
		samples      audio.Samples
		artifactName string
	)
	switch input.Mode {
	case ModeEffects:
		samples, err = s.processEffects(ctx, j, input)
		artifactName = ArtifactNameEffects
	case ModeDialogue:
		samples, err = s.processDialogue(ctx, j, input, videoPath)
		artifactName = ArtifactNameDialogue
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMode, input.Mode)
	}
	if err != nil {
		return err
	}

	wavBytes := wav.Encode(samples.Bytes(), audio.SampleRate, audio.NumChannels, audio.BitsPerSample)

	outPath, err := s.store.SaveTemp(ctx, strings.TrimSuffix(artifactName, ".wav"), bytes.NewReader(wavBytes))
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	var audioURL string
	if input.PushToS3 {
		key := fmt.Sprintf("%s/%s", j.ID, artifactName)
		audioURL, err = s.store.UploadToS3(ctx, key, bytes.NewReader(wavBytes))
		if err != nil {
			return fmt.Errorf("upload artifact to S3: %w", err)
		}
	}

	j.SetOutput(outPath, artifactName, audioURL)
	j.UpdateProgress(100)
	return nil
}

// processEffects asks the collaborator to select catalog effects and
// mixes them into a single track.
func (s *ProcessAudioService) processEffects(ctx context.Context, j *Job, input ProcessAudioInput) (audio.Samples, error) {
	// The description is presentation metadata; failing to obtain it
	// never fails the job.
	if desc, err := s.ai.DescribeVideo(ctx, input.VideoBase64, input.MimeType); err != nil {
		s.logger.Warn("describe video failed",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	} else {
		j.SetDescription(desc)
	}
	j.UpdateProgress(30)
	_ = s.repo.Save(ctx, j)

	options := make(map[string]string)
	for _, e := range s.catalog.Effects() {
		options[e.ID] = e.Description
	}

	ids, err := s.ai.SelectEffects(ctx, input.VideoBase64, input.MimeType, options)
	if err != nil {
		return nil, fmt.Errorf("select effects: %w", err)
	}
	j.UpdateProgress(60)
	_ = s.repo.Save(ctx, j)

	var tracks []audio.Samples
	for _, effectID := range ids {
		t, err := s.catalog.Samples(effectID)
		if err != nil {
			s.logger.Warn("skipping unknown effect",
				slog.String("job_id", j.ID),
				slog.String("effect_id", effectID),
			)
			continue
		}
		tracks = append(tracks, t)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no usable effects selected", ErrNoAudioProduced)
	}

	s.logger.Info("mixing effects",
		slog.String("job_id", j.ID),
		slog.Int("tracks", len(tracks)),
	)
	return audio.Mix(tracks), nil
}

// processDialogue transcribes the video, synthesizes each line
// concurrently, and stitches the surviving clips onto the timeline.
func (s *ProcessAudioService) processDialogue(ctx context.Context, j *Job, input ProcessAudioInput, videoPath string) (audio.Samples, error) {
	scriptText, err := s.ai.TranscribeDialogue(ctx, input.VideoBase64, input.MimeType)
	if err != nil {
		return nil, fmt.Errorf("transcribe dialogue: %w", err)
	}
	j.UpdateProgress(30)
	_ = s.repo.Save(ctx, j)

	lines := script.Parse(scriptText)
	if len(lines) == 0 {
		return nil, ErrNoDialogueDetected
	}

	records := make([]Line, len(lines))
	for i, l := range lines {
		records[i] = Line{
			Index:   i,
			Time:    l.Time,
			Speaker: l.Speaker,
			Text:    l.Text,
			Status:  LineStatusPending,
		}
	}
	j.SetLines(records)
	_ = s.repo.Save(ctx, j)

	clips, dropped := s.synthesizeLines(ctx, j, lines, input.Voice)
	j.SetDroppedLines(dropped)
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: all %d dialogue lines failed", ErrNoAudioProduced, len(lines))
	}
	if dropped > 0 {
		s.logger.Warn("partial synthesis failure",
			slog.String("job_id", j.ID),
			slog.Int("dropped", dropped),
			slog.Int("total", len(lines)),
		)
	}
	j.UpdateProgress(85)
	_ = s.repo.Save(ctx, j)

	duration := s.timelineDuration(ctx, j, input, videoPath, clips)
	return audio.Stitch(clips, duration, audio.SampleRate)
}

// synthesizeLines fans out one speech synthesis call per dialogue line,
// bounded by maxConcurrentLines, and fans the results back in. A failed
// line is dropped and counted; it never aborts the batch. Each clip
// carries its own timestamp, so completion order cannot affect the
// stitched output.
func (s *ProcessAudioService) synthesizeLines(ctx context.Context, j *Job, lines []script.DialogueLine, voiceOverride string) ([]audio.Clip, int) {
	type result struct {
		clip audio.Clip
		err  error
	}
	results := make([]result, len(lines))

	sem := make(chan struct{}, s.maxConcurrentLines)
	var wg sync.WaitGroup
	for i, line := range lines {
		wg.Add(1)
		go func(i int, line script.DialogueLine) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pcmBytes, err := s.ai.SynthesizeSpeech(ctx, line.Text, speechOptions(line, voiceOverride))
			if err != nil {
				results[i] = result{err: err}
				return
			}
			samples, err := audio.SamplesFromBytes(pcmBytes)
			if err != nil {
				results[i] = result{err: err}
				return
			}
			results[i] = result{clip: audio.Clip{Time: line.Time, Samples: samples}}
		}(i, line)
	}
	wg.Wait()

	var clips []audio.Clip
	dropped := 0
	for i, r := range results {
		if r.err != nil {
			dropped++
			j.UpdateLine(i, Line{
				Index:   i,
				Time:    lines[i].Time,
				Speaker: lines[i].Speaker,
				Text:    lines[i].Text,
				Status:  LineStatusDropped,
				Error:   r.err.Error(),
			})
			s.logger.Warn("dialogue line dropped",
				slog.String("job_id", j.ID),
				slog.Int("line", i),
				slog.String("error", r.err.Error()),
			)
			continue
		}
		clips = append(clips, r.clip)
		j.UpdateLine(i, Line{
			Index:   i,
			Time:    lines[i].Time,
			Speaker: lines[i].Speaker,
			Text:    lines[i].Text,
			Status:  LineStatusSynthesized,
		})
	}
	return clips, dropped
}

// timelineDuration resolves the output duration: explicit request value,
// then probed video duration, then the end of the last clip.
func (s *ProcessAudioService) timelineDuration(ctx context.Context, j *Job, input ProcessAudioInput, videoPath string, clips []audio.Clip) float64 {
	if input.DurationSec > 0 {
		return input.DurationSec
	}

	if s.prober != nil {
		d, err := s.prober.Duration(ctx, videoPath)
		if err == nil {
			return d
		}
		s.logger.Warn("probe video duration failed",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}

	var end float64
	for _, c := range clips {
		if e := c.Time + c.Samples.Duration(audio.SampleRate); e > end {
			end = e
		}
	}
	return end
}

// speechOptions maps a dialogue line's metadata to synthesis options.
func speechOptions(line script.DialogueLine, voiceOverride string) gemini.SpeechOptions {
	opts := gemini.SpeechOptions{Voice: voiceOverride}
	if opts.Voice == "" {
		if strings.EqualFold(line.Gender, "female") {
			opts.Voice = gemini.VoiceFeminine
		} else {
			opts.Voice = gemini.VoiceMasculine
		}
	}
	if line.PerformanceCue != "" {
		opts.StyleInstruction = fmt.Sprintf("Say %s:", line.PerformanceCue)
	}
	return opts
}
