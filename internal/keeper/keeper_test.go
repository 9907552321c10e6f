package keeper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsakani-green/envkeep/internal/backup"
	"github.com/tsakani-green/envkeep/internal/envfile"
	"github.com/tsakani-green/envkeep/internal/sse"
	"github.com/tsakani-green/envkeep/internal/store"
	"github.com/tsakani-green/envkeep/internal/template"
)

// memStore records revisions in memory.
type memStore struct {
	revs []store.Revision
}

func (m *memStore) RecordRevision(rev *store.Revision) error {
	if rev.ID == "" {
		rev.ID = "test"
	}
	m.revs = append(m.revs, *rev)
	return nil
}

func (m *memStore) ListRevisions(limit int) ([]store.Revision, error) { return m.revs, nil }
func (m *memStore) GetRevision(id string) (*store.Revision, error)    { return nil, nil }
func (m *memStore) Close() error                                      { return nil }

func testRegistry() *template.Registry {
	return template.NewRegistry([]template.Key{
		{Name: "ENVIRONMENT", Section: "General", Required: true, Default: "production"},
		{Name: "SECRET_KEY", Section: "Auth", Required: true, Secret: true, Default: "CHANGE_ME"},
		{Name: "EMAIL_PORT", Section: "Email", Kind: template.KindInt, Default: "587"},
	})
}

func newTestKeeper(t *testing.T, opts ...Option) (*Keeper, string, *memStore) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	ms := &memStore{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	backups := backup.NewManager(file, "", clock)
	opts = append([]Option{WithStore(ms)}, opts...)
	return New(file, testRegistry(), backups, opts...), file, ms
}

func TestUpdate_FreshFile(t *testing.T) {
	k, file, ms := newTestKeeper(t)

	res, err := k.Update(false, false)
	require.NoError(t, err)
	assert.Nil(t, res.Backup, "no backup when there was no file")

	f, err := envfile.Load(file)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ENVIRONMENT", "SECRET_KEY", "EMAIL_PORT"}, f.Keys())

	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no backup file may appear")

	require.Len(t, ms.revs, 1)
	assert.Equal(t, store.ActionUpdate, ms.revs[0].Action)
	assert.NotEmpty(t, ms.revs[0].Checksum)
}

func TestUpdate_ExistingFileBackedUp(t *testing.T) {
	k, file, _ := newTestKeeper(t)
	prior := "ENVIRONMENT=staging\nEXTRA=1\n"
	require.NoError(t, os.WriteFile(file, []byte(prior), 0o600))

	res, err := k.Update(false, false)
	require.NoError(t, err)
	require.NotNil(t, res.Backup)
	assert.Contains(t, res.Backup.Name, "20260830_")

	data, err := os.ReadFile(res.Backup.Path)
	require.NoError(t, err)
	assert.Equal(t, prior, string(data), "backup preserves the prior content")

	// The rewrite is wholesale: EXTRA is gone, defaults are back.
	f, err := envfile.Load(file)
	require.NoError(t, err)
	_, ok := f.Get("EXTRA")
	assert.False(t, ok)
	v, _ := f.Get("ENVIRONMENT")
	assert.Equal(t, "production", v)

	assert.NotEmpty(t, res.Changes)
}

func TestUpdate_NoBackupFlag(t *testing.T) {
	k, file, _ := newTestKeeper(t)
	require.NoError(t, os.WriteFile(file, []byte("ENVIRONMENT=staging\n"), 0o600))

	res, err := k.Update(true, false)
	require.NoError(t, err)
	assert.Nil(t, res.Backup)

	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdate_KeepPreservesFilledValues(t *testing.T) {
	k, file, _ := newTestKeeper(t)
	require.NoError(t, os.WriteFile(file,
		[]byte("ENVIRONMENT=staging\nSECRET_KEY=CHANGE_ME\nEMAIL_PORT=2525\n"), 0o600))

	res, err := k.Update(false, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.KeptValues, "placeholder SECRET_KEY must not count as kept")

	f, err := envfile.Load(file)
	require.NoError(t, err)
	v, _ := f.Get("ENVIRONMENT")
	assert.Equal(t, "staging", v)
	v, _ = f.Get("EMAIL_PORT")
	assert.Equal(t, "2525", v)
	v, _ = f.Get("SECRET_KEY")
	assert.Equal(t, "CHANGE_ME", v)
}

func TestSet_BacksUpAndRecords(t *testing.T) {
	k, file, ms := newTestKeeper(t)
	require.NoError(t, os.WriteFile(file, []byte("A=1\n"), 0o600))

	require.NoError(t, k.Set("B", "2"))

	f, err := envfile.Load(file)
	require.NoError(t, err)
	v, _ := f.Get("B")
	assert.Equal(t, "2", v)

	backups, err := k.Backups().List()
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	require.Len(t, ms.revs, 1)
	assert.Equal(t, store.ActionSet, ms.revs[0].Action)
	assert.Equal(t, []string{"B"}, ms.revs[0].KeysChanged)
}

func TestSet_CreatesMissingFile(t *testing.T) {
	k, file, _ := newTestKeeper(t)

	require.NoError(t, k.Set("ONLY", "one"))

	f, err := envfile.Load(file)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}

func TestUnset(t *testing.T) {
	k, file, _ := newTestKeeper(t)
	require.NoError(t, os.WriteFile(file, []byte("A=1\nB=2\n"), 0o600))

	require.NoError(t, k.Unset("A"))
	assert.Error(t, k.Unset("A"), "second unset fails")

	f, err := envfile.Load(file)
	require.NoError(t, err)
	_, ok := f.Get("A")
	assert.False(t, ok)
}

func TestUnset_MissingKeyLeavesNoBackup(t *testing.T) {
	k, file, ms := newTestKeeper(t)
	require.NoError(t, os.WriteFile(file, []byte("A=1\n"), 0o600))

	require.Error(t, k.Unset("NOPE"))

	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed unset must not leave a backup")
	assert.Empty(t, ms.revs)
}

func TestRestore_RoundTrip(t *testing.T) {
	k, file, ms := newTestKeeper(t)
	require.NoError(t, os.WriteFile(file, []byte("STATE=good\n"), 0o600))

	b, err := k.CreateBackup()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(file, []byte("STATE=bad\n"), 0o600))
	require.NoError(t, k.Restore(b.Name))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "STATE=good\n", string(data))

	actions := []store.Action{ms.revs[0].Action, ms.revs[1].Action}
	assert.Equal(t, []store.Action{store.ActionBackup, store.ActionRestore}, actions)
}

func TestEventsPublished(t *testing.T) {
	b := sse.NewBroadcaster()
	defer b.Close()
	events, unsub := b.Subscribe()
	defer unsub()

	k, _, _ := newTestKeeper(t, WithBroadcaster(b))
	_, err := k.Update(false, false)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventEnvUpdated, ev.Type)
	default:
		t.Fatal("expected an env_updated event")
	}
}
