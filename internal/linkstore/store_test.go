package linkstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtrack/internal/model"
)

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linked_sheet.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, path := newTestStore(t)

	linkedAt := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	err := store.Save(&model.SheetLink{
		SpreadsheetID: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		LinkedAt:      linkedAt,
	})
	require.NoError(t, err)

	// The pointer file is a single JSON line.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"spreadsheet_id":"1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms","linked_at":"2026-08-24T10:30:00Z"}`,
		string(b))

	link, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", link.SpreadsheetID)
	assert.True(t, link.LinkedAt.Equal(linkedAt))
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	link, err := store.Load()
	assert.ErrorIs(t, err, ErrNotLinked)
	assert.Nil(t, link)
}

func TestFileStore_LoadEmptyID(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"spreadsheet_id":""}`), 0644))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := store.Load()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotLinked)
}

func TestFileStore_SaveValidation(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Error(t, store.Save(nil))
	assert.Error(t, store.Save(&model.SheetLink{}))
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Save(&model.SheetLink{SpreadsheetID: "first-spreadsheet-id-000000"}))
	require.NoError(t, store.Save(&model.SheetLink{SpreadsheetID: "second-spreadsheet-id-11111"}))

	link, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second-spreadsheet-id-11111", link.SpreadsheetID)
}

func TestFileStore_Clear(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Save(&model.SheetLink{SpreadsheetID: "some-spreadsheet-id-000000"}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotLinked)

	// Clearing an unlinked store is idempotent.
	assert.NoError(t, store.Clear())
}
