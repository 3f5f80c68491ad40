package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in      string
		want    scheduledEvent
		wantErr bool
	}{
		{in: "ShowDialogue@3", want: scheduledEvent{Frame: 3, Subject: "ShowDialogue"}},
		{in: "Switch=on@12", want: scheduledEvent{Frame: 12, Subject: "Switch", Body: "on"}},
		{in: "Mail=a@b@7", want: scheduledEvent{Frame: 7, Subject: "Mail", Body: "a@b"}},
		{in: "Switch", wantErr: true},
		{in: "@4", wantErr: true},
		{in: "Switch@", wantErr: true},
		{in: "Switch@soon", wantErr: true},
		{in: "Switch@-1", wantErr: true},
		{in: "=on@2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseEvent(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--story-dir", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunLampSwitchedOn(t *testing.T) {
	out, err := execute(t, "run", "lamp", "--frames", "10", "--event", "Switch=on@5")
	require.NoError(t, err)

	assert.Contains(t, out, "lamp starts in dark")
	assert.Contains(t, out, "frame    5  event Switch on")
	assert.Contains(t, out, "frame    5  lamp: dark -> lit")
	assert.Contains(t, out, "frame    5  sound sfx/click.wav volume=0.50")
	assert.Contains(t, out, "frame    5  sound sfx/hum.wav volume=0.30")
	assert.Contains(t, out, "end         lamp in lit")
}

func TestRunWithoutEventsStaysDark(t *testing.T) {
	out, err := execute(t, "run", "lamp", "--frames", "30")
	require.NoError(t, err)
	assert.NotContains(t, out, "-> lit")
	assert.Contains(t, out, "end         lamp in dark")
}

func TestRunRejectsBadEvent(t *testing.T) {
	_, err := execute(t, "run", "lamp", "--event", "Switch")
	assert.Error(t, err)
}

func TestValidateAllPrefabs(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok    lamp")
	assert.Contains(t, out, "ok    bird_intro")
}

func TestValidateUnknownStory(t *testing.T) {
	out, err := execute(t, "validate", "no_such_story")
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL  no_such_story")
}

func TestDumpPrintsGraph(t *testing.T) {
	out, err := execute(t, "dump", "lamp")
	require.NoError(t, err)
	assert.Contains(t, out, "State(dark)")
	assert.Contains(t, out, "-> State(lit)")
}
