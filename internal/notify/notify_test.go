package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_ShowReplaceDismiss(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	id := Loading(term, "Loading profile…")
	require.NotEmpty(t, id)
	require.Len(t, term.Active(), 1)

	// replace in place
	same := term.Show(Notification{ID: id, Severity: SeveritySuccess, Message: "Loaded"})
	assert.Equal(t, id, same)
	active := term.Active()
	require.Len(t, active, 1)
	assert.Equal(t, SeveritySuccess, active[0].Severity)

	term.Dismiss(id)
	term.Dismiss(id) // no-op
	assert.Empty(t, term.Active())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Loading profile…")
	assert.Contains(t, lines[1], "✓ Loaded")
}

func TestHelpers_SetSeverity(t *testing.T) {
	rec := NewRecorder()

	Success(rec, "a")
	Info(rec, "b")
	Warning(rec, "c")
	Error(rec, "d")

	var got []Severity
	for _, n := range rec.Shown() {
		got = append(got, n.Severity)
	}
	assert.Equal(t, []Severity{SeveritySuccess, SeverityInfo, SeverityWarning, SeverityError}, got)
}

func TestRecorder_DismissOnlyCountsActive(t *testing.T) {
	rec := NewRecorder()
	id := Loading(rec, "x")

	rec.Dismiss("unknown")
	rec.Dismiss(id)
	rec.Dismiss(id)

	assert.Equal(t, []ID{id}, rec.Dismissed())
	assert.Empty(t, rec.Active())

	rec.Reset()
	assert.Empty(t, rec.Shown())
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for range 100 {
		id := NewID()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestSuppress(t *testing.T) {
	ctx := context.Background()
	assert.False(t, Suppressed(ctx))
	assert.True(t, Suppressed(Suppress(ctx)))
}

func TestDiscard(t *testing.T) {
	id := Discard.Show(Notification{Severity: SeverityError, Message: "gone"})
	assert.NotEmpty(t, id)
	Discard.Dismiss(id)
}
