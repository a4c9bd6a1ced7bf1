package mailbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDirSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"message_ref":"<b>","from":"a@linkedin.com","subject":"alerts","date":"2026-08-12T09:00:00Z"}`)
	writeFile(t, dir, "a.json", `{"message_ref":"<a>","from":"a@linkedin.com","subject":"alerts","date":"2026-08-10T09:00:00Z"}`)
	writeFile(t, dir, "old.json", `{"message_ref":"<old>","date":"2026-01-01T09:00:00Z"}`)
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "notes.txt", `ignored`)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	emails, err := NewDirSource(dir).Fetch(context.Background(), since)
	require.NoError(t, err)

	// Old and broken files skipped; remaining sorted oldest first.
	require.Len(t, emails, 2)
	assert.Equal(t, "<a>", emails[0].MessageRef)
	assert.Equal(t, "<b>", emails[1].MessageRef)
}

func TestDirSource_MissingRefDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "msg1.json", `{"from":"x@y.com","date":"2026-08-10T09:00:00Z"}`)

	emails, err := NewDirSource(dir).Fetch(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "msg1.json", emails[0].MessageRef)
}

func TestDirSource_MissingDir(t *testing.T) {
	_, err := NewDirSource("/nonexistent/path").Fetch(context.Background(), time.Time{})
	require.Error(t, err)
}
