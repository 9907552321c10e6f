package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// stamp layout used in backup file names, e.g. .env.backup.20260830_141502
const stampLayout = "20060102_150405"

// Backup describes one backup file on disk.
type Backup struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager creates and restores timestamped copies of a single env file.
type Manager struct {
	file  string // the env file being protected
	dir   string // where backups live; defaults to the file's directory
	clock clockwork.Clock
}

// NewManager returns a manager for file. If dir is empty, backups are
// written next to the file.
func NewManager(file, dir string, clock clockwork.Clock) *Manager {
	if dir == "" {
		dir = filepath.Dir(file)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{file: file, dir: dir, clock: clock}
}

func (m *Manager) prefix() string {
	return filepath.Base(m.file) + ".backup."
}

// Create copies the current env file into a timestamped backup and returns
// it. If the env file does not exist there is nothing to protect and Create
// reports os.ErrNotExist.
func (m *Manager) Create() (*Backup, error) {
	data, err := os.ReadFile(m.file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.file, err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	name := m.prefix() + m.clock.Now().Format(stampLayout)
	path := filepath.Join(m.dir, name)

	// Same-second collisions get a numeric suffix rather than clobbering
	// the earlier backup.
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s.%d", name, i))
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	return &Backup{
		Name:      filepath.Base(path),
		Path:      path,
		Size:      info.Size(),
		CreatedAt: m.clock.Now(),
	}, nil
}

// List returns all backups of the managed file, newest first.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []Backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), m.prefix()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		b := Backup{
			Name:      e.Name(),
			Path:      filepath.Join(m.dir, e.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		}
		// Prefer the embedded stamp over mtime when it parses.
		stamp := strings.TrimPrefix(e.Name(), m.prefix())
		if i := strings.IndexByte(stamp, '.'); i >= 0 {
			stamp = stamp[:i]
		}
		if t, err := time.Parse(stampLayout, stamp); err == nil {
			b.CreatedAt = t
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore replaces the env file with the named backup. The current file, if
// any, is backed up first so a restore is itself reversible.
func (m *Manager) Restore(name string) error {
	if name != filepath.Base(name) || !strings.HasPrefix(name, m.prefix()) {
		return fmt.Errorf("not a backup of %s: %q", filepath.Base(m.file), name)
	}
	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	if _, err := os.Stat(m.file); err == nil {
		if _, err := m.Create(); err != nil {
			return fmt.Errorf("backup before restore: %w", err)
		}
	}

	if err := os.WriteFile(m.file, data, 0o600); err != nil {
		return fmt.Errorf("restore %s: %w", m.file, err)
	}
	return nil
}

// Prune deletes all but the keep newest backups and returns how many were
// removed.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, b := range backups[min(keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", b.Name, err)
		}
		removed++
	}
	return removed, nil
}
