package telemetry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wordiz/internal/store"
)

func TestRecorder_ReportEvent(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "t.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	r := NewRecorder(s.Events(), nil)
	ctx := context.Background()

	require.NoError(t, r.ReportEvent(ctx, "spell_check", `{"word":"cat","correct":true}`, "spell"))
	require.NoError(t, r.ReportEvent(ctx, "spell_enter", "", "spell"))
	assert.Error(t, r.ReportEvent(ctx, "broken", "{", "spell"))

	events, err := s.Events().Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "spell_enter", events[0].Name)
	assert.Equal(t, "{}", events[0].Payload)
	assert.Equal(t, "spell", events[1].Group)
	_, err = uuid.Parse(events[1].ID)
	assert.NoError(t, err)
}
