package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	return clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 14, 15, 2, 0, time.UTC))
}

func writeEnv(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCreate_NoFile(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, ".env"), "", testClock(t))

	_, err := m.Create()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no backup file may appear")
}

func TestCreate_NameEmbedsTimestamp(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "KEY=value\n")
	m := NewManager(path, "", testClock(t))

	b, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, ".env.backup.20260830_141502", b.Name)

	data, err := os.ReadFile(b.Path)
	require.NoError(t, err)
	assert.Equal(t, "KEY=value\n", string(data), "backup content matches the prior file")
}

func TestCreate_SameSecondCollision(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "A=1\n")
	m := NewManager(path, "", testClock(t))

	first, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("A=2\n"), 0o600))
	second, err := m.Create()
	require.NoError(t, err)

	assert.NotEqual(t, first.Name, second.Name)
	assert.Equal(t, first.Name+".1", second.Name)

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", string(data), "earlier backup untouched")
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "A=1\n")
	clock := testClock(t)
	m := NewManager(path, "", clock)

	older, err := m.Create()
	require.NoError(t, err)
	clock.Advance(90 * time.Second)
	newer, err := m.Create()
	require.NoError(t, err)

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, newer.Name, backups[0].Name)
	assert.Equal(t, older.Name, backups[1].Name)
}

func TestList_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "A=1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	m := NewManager(path, "", testClock(t))
	backups, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "STATE=good\n")
	clock := testClock(t)
	m := NewManager(path, "", clock)

	b, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("STATE=broken\n"), 0o600))
	clock.Advance(time.Minute)
	require.NoError(t, m.Restore(b.Name))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "STATE=good\n", string(data))

	// The broken state was itself backed up before the restore.
	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 2)
}

func TestRestore_RejectsForeignNames(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(writeEnv(t, dir, "A=1\n"), "", testClock(t))

	assert.Error(t, m.Restore("../../etc/passwd"))
	assert.Error(t, m.Restore("other.backup.20260830_141502"))
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "A=1\n")
	clock := testClock(t)
	m := NewManager(path, "", clock)

	for i := 0; i < 4; i++ {
		_, err := m.Create()
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	removed, err := m.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	backups, err := m.List()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestPrune_KeepNegative(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".env"), "", testClock(t))
	_, err := m.Prune(-1)
	require.Error(t, err)
}

func TestBackupDir_Separate(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	path := writeEnv(t, dir, "A=1\n")
	m := NewManager(path, backups, testClock(t))

	b, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, backups, filepath.Dir(b.Path))
}
