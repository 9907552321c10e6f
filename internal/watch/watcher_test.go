package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tsakani-green/envkeep/internal/sse"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startWatcher runs w in the background and stops it on test cleanup.
func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Let the watcher settle before the test writes anything.
	time.Sleep(50 * time.Millisecond)
}

func TestRun_PublishesOnWrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("A=1\n"), 0o600))

	b := sse.NewBroadcaster()
	defer b.Close()
	events, unsub := b.Subscribe()
	defer unsub()

	w, err := New(file, b)
	require.NoError(t, err)
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(file, []byte("A=2\n"), 0o600))

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventEnvChanged, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no event after writing the file")
	}
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("A=1\n"), 0o600))

	b := sse.NewBroadcaster()
	defer b.Close()
	events, unsub := b.Subscribe()
	defer unsub()

	w, err := New(file, b)
	require.NoError(t, err)
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %q", ev.Type)
	case <-time.After(300 * time.Millisecond):
	}
}
