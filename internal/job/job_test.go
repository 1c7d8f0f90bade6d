package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeIsValid(t *testing.T) {
	assert.True(t, ModeEffects.IsValid())
	assert.True(t, ModeDialogue.IsValid())
	assert.False(t, Mode("").IsValid())
	assert.False(t, Mode("remix").IsValid())
}

func TestNew(t *testing.T) {
	j := New(ModeEffects)

	assert.NotEmpty(t, j.ID)
	assert.Equal(t, ModeEffects, j.Mode)
	assert.Equal(t, StatusInQueue, j.Status)
	assert.False(t, j.CreatedAt.IsZero())
	assert.False(t, j.IsTerminal())
}

func TestJobLifecycle(t *testing.T) {
	j := NewWithID("job-test", ModeDialogue)

	require.NoError(t, j.Start())
	assert.Equal(t, StatusRunning, j.GetStatus())
	assert.False(t, j.StartedAt.IsZero())

	require.NoError(t, j.Complete())
	assert.Equal(t, StatusCompleted, j.GetStatus())
	assert.False(t, j.CompletedAt.IsZero())
	assert.True(t, j.IsTerminal())
}

func TestJobFail(t *testing.T) {
	j := NewWithID("job-test", ModeEffects)
	require.NoError(t, j.Start())

	require.NoError(t, j.Fail("synthesis exploded"))
	assert.Equal(t, StatusFailed, j.GetStatus())
	assert.Equal(t, "synthesis exploded", j.Error)
	assert.True(t, j.IsTerminal())
}

func TestJobCancel(t *testing.T) {
	j := NewWithID("job-test", ModeEffects)
	require.NoError(t, j.Cancel())
	assert.Equal(t, StatusCancelled, j.GetStatus())
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
	}{
		{"queue to completed", StatusInQueue, StatusCompleted},
		{"queue to failed", StatusInQueue, StatusFailed},
		{"completed to running", StatusCompleted, StatusRunning},
		{"failed to running", StatusFailed, StatusRunning},
		{"cancelled to running", StatusCancelled, StatusRunning},
		{"completed to failed", StatusCompleted, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewWithID("job-test", ModeEffects)
			j.Status = tt.from
			assert.ErrorIs(t, j.TransitionTo(tt.to), ErrInvalidTransition)
		})
	}
}

func TestUpdateProgress_Clamps(t *testing.T) {
	j := NewWithID("job-test", ModeEffects)

	j.UpdateProgress(-5)
	assert.Equal(t, 0, j.Progress)

	j.UpdateProgress(42)
	assert.Equal(t, 42, j.Progress)

	j.UpdateProgress(150)
	assert.Equal(t, 100, j.Progress)
}

func TestUpdateLine(t *testing.T) {
	j := NewWithID("job-test", ModeDialogue)
	j.SetLines([]Line{
		{Index: 0, Status: LineStatusPending},
		{Index: 1, Status: LineStatusPending},
	})

	j.UpdateLine(1, Line{Index: 1, Status: LineStatusDropped, Error: "boom"})
	assert.Equal(t, LineStatusPending, j.Lines[0].Status)
	assert.Equal(t, LineStatusDropped, j.Lines[1].Status)
	assert.Equal(t, "boom", j.Lines[1].Error)

	// Out-of-range indices are ignored.
	j.UpdateLine(5, Line{Index: 5})
	j.UpdateLine(-1, Line{})
	assert.Len(t, j.Lines, 2)
}

func TestClone(t *testing.T) {
	j := NewWithID("job-test", ModeDialogue)
	j.SetDescription("rain sounds")
	j.SetLines([]Line{{Index: 0, Speaker: "Speaker 1", Status: LineStatusSynthesized}})
	j.SetOutput("/tmp/out.wav", "generated-dialogue.wav", "")

	clone := j.Clone()
	assert.Equal(t, j.ID, clone.ID)
	assert.Equal(t, j.Description, clone.Description)
	assert.Equal(t, j.Lines, clone.Lines)
	assert.Equal(t, j.OutputAudioPath, clone.OutputAudioPath)

	// Mutating the clone's lines must not touch the original.
	clone.Lines[0].Status = LineStatusDropped
	assert.Equal(t, LineStatusSynthesized, j.Lines[0].Status)
}
