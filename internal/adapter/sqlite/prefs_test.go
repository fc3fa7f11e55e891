package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/clockface/internal/domain"
)

func openTemp(t *testing.T) (*PreferenceStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestPreferenceStore_LoadMissing(t *testing.T) {
	s, _ := openTemp(t)

	mode, ok, err := s.Load(context.Background(), "clockPrefs")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, domain.DisplayMode{}, mode)
}

func TestPreferenceStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	want := domain.DisplayMode{Use24Hour: true, DarkMode: false}
	require.NoError(t, s.Save(ctx, "clockPrefs", want))

	got, ok, err := s.Load(ctx, "clockPrefs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	// Overwrite replaces the record.
	want = domain.DisplayMode{Use24Hour: false, DarkMode: true}
	require.NoError(t, s.Save(ctx, "clockPrefs", want))
	got, _, err = s.Load(ctx, "clockPrefs")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPreferenceStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	require.NoError(t, s.Save(ctx, "kitchen", domain.DisplayMode{DarkMode: true}))

	_, ok, err := s.Load(ctx, "hallway")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreferenceStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	require.NoError(t, s.Save(ctx, "clockPrefs", domain.DisplayMode{Use24Hour: true, DarkMode: true}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Load(ctx, "clockPrefs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.DisplayMode{Use24Hour: true, DarkMode: true}, got)
}

func TestPreferenceStore_UpdatedAtUsesDomainClock(t *testing.T) {
	ts := time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(ts))
	t.Cleanup(func() { domain.SetClock(nil) })

	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(context.Background(), "clockPrefs", domain.DisplayMode{}))

	var updated int64
	require.NoError(t, s.db.QueryRow(`SELECT updated_at FROM preferences WHERE key = ?`, "clockPrefs").Scan(&updated))
	assert.Equal(t, ts.UnixMilli(), updated)
}

func TestPreferenceStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Save(ctx, "clockPrefs", domain.DisplayMode{DarkMode: true}))

	require.NoError(t, s.Delete(ctx, "clockPrefs"))
	require.NoError(t, s.Delete(ctx, "clockPrefs"))

	_, ok, err := s.Load(ctx, "clockPrefs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreferenceStore_SaveRejectsEmptyKey(t *testing.T) {
	s, _ := openTemp(t)
	require.Error(t, s.Save(context.Background(), "", domain.DisplayMode{}))
}

func TestPreferenceStore_Readiness(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)

	require.NoError(t, s.CheckReadiness(context.Background()))
	require.NoError(t, s.Close())
	assert.Error(t, s.CheckReadiness(context.Background()))
}

func TestPreferenceStore_ClosedLoadFails(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Load(context.Background(), "clockPrefs")
	assert.Error(t, err)
}
