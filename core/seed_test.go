package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeedEvents(t *testing.T) {
	t.Parallel()

	doc := `
events:
  - id: "a"
    title: Dentist
    start: 2025-06-16T14:00:00Z
    end: 2025-06-16T15:00:00Z
    background_color: "#ff0000"
  - id: "b"
    title: Holiday
    start: 2025-06-17T00:00:00Z
    end: 2025-06-18T00:00:00Z
    all_day: true
`

	events, err := ReadSeedEvents(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, EventId("a"), events[0].Id)
	assert.Equal(t, "Dentist", events[0].Title)
	assert.True(t, events[0].Start.Equal(time.Date(2025, time.June, 16, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, "#ff0000", events[0].BackgroundColor)
	assert.True(t, events[1].AllDay)
}

func TestReadSeedEvents_Empty(t *testing.T) {
	t.Parallel()

	events, err := ReadSeedEvents(strings.NewReader("events: []\n"))
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestReadSeedEvents_Invalid(t *testing.T) {
	t.Parallel()

	doc := `
events:
  - id: "a"
    title: Backwards
    start: 2025-06-16T15:00:00Z
    end: 2025-06-16T14:00:00Z
`

	_, err := ReadSeedEvents(strings.NewReader(doc))
	require.ErrorIs(t, err, ErrInvalidSchedule)
	assert.Contains(t, err.Error(), "start must be before end")

	_, err = ReadSeedEvents(strings.NewReader("events: [unclosed"))
	assert.ErrorContains(t, err, "parse seed events")
}

func TestLoadSeedEvents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("events:\n  - id: \"1\"\n    title: Korean Study\n    start: 2025-06-16T06:30:00Z\n    end: 2025-06-16T07:30:00Z\n"), 0o600))

	events, err := LoadSeedEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Korean Study", events[0].Title)

	_, err = LoadSeedEvents(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open seed events")
}
