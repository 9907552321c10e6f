// Package keeper orchestrates env-file operations: regeneration with
// backups, key edits, restores, and the revision trail behind them. The CLI
// and the daemon both go through it.
package keeper

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tsakani-green/envkeep/internal/backup"
	"github.com/tsakani-green/envkeep/internal/envfile"
	"github.com/tsakani-green/envkeep/internal/metrics"
	"github.com/tsakani-green/envkeep/internal/sse"
	"github.com/tsakani-green/envkeep/internal/store"
	"github.com/tsakani-green/envkeep/internal/template"
	"github.com/tsakani-green/envkeep/internal/validate"
)

// Keeper owns one env file. Store and Broadcaster are optional; CLI runs
// without a daemon attach them only when configured.
type Keeper struct {
	file        string
	registry    *template.Registry
	backups     *backup.Manager
	store       store.Store
	broadcaster *sse.Broadcaster
}

// Option configures a Keeper.
type Option func(*Keeper)

// WithStore records revisions in s.
func WithStore(s store.Store) Option {
	return func(k *Keeper) { k.store = s }
}

// WithBroadcaster publishes events to b.
func WithBroadcaster(b *sse.Broadcaster) Option {
	return func(k *Keeper) { k.broadcaster = b }
}

// New returns a keeper for file using the given registry and backup manager.
func New(file string, registry *template.Registry, backups *backup.Manager, opts ...Option) *Keeper {
	k := &Keeper{file: file, registry: registry, backups: backups}
	for _, o := range opts {
		o(k)
	}
	return k
}

// File returns the path of the managed env file.
func (k *Keeper) File() string { return k.file }

// Registry returns the key surface the keeper validates against.
func (k *Keeper) Registry() *template.Registry { return k.registry }

// Backups returns the backup manager.
func (k *Keeper) Backups() *backup.Manager { return k.backups }

// Load reads the managed file.
func (k *Keeper) Load() (*envfile.File, error) {
	return envfile.Load(k.file)
}

// UpdateResult describes what an Update did.
type UpdateResult struct {
	Backup     *backup.Backup   `json:"backup,omitempty"`
	KeptValues int              `json:"kept_values"`
	Changes    []envfile.Change `json:"changes,omitempty"`
	RevisionID string           `json:"revision_id,omitempty"`
}

// Update regenerates the env file from the template, backing up any
// existing file first. With keep set, non-placeholder values already in the
// file survive regeneration. This is the whole job the old shell scripts
// did, plus the paper trail.
func (k *Keeper) Update(noBackup, keep bool) (*UpdateResult, error) {
	res := &UpdateResult{}

	prev, err := k.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	exists := err == nil

	if exists && !noBackup {
		b, err := k.backups.Create()
		if err != nil {
			return nil, fmt.Errorf("backup before update: %w", err)
		}
		res.Backup = b
		slog.Info("backed up env file", "file", k.file, "backup", b.Name)
	}

	next := k.registry.Render()
	if keep && exists {
		for key, val := range prev.Values() {
			if _, known := next.Get(key); !known {
				continue
			}
			if validate.IsPlaceholder(val) {
				continue
			}
			next.Set(key, val)
			res.KeptValues++
		}
	}

	if exists {
		res.Changes = prev.Diff(next)
	}

	if err := next.WriteFile(k.file); err != nil {
		return nil, err
	}
	slog.Info("wrote env file", "file", k.file, "keys", next.Len(), "kept", res.KeptValues)

	backupName := ""
	if res.Backup != nil {
		backupName = res.Backup.Name
	}
	res.RevisionID = k.record(store.ActionUpdate, backupName, changedKeys(res.Changes))
	k.publish(sse.EventEnvUpdated, res)
	metrics.Operations.WithLabelValues(string(store.ActionUpdate)).Inc()
	return res, nil
}

// Set writes one key, backing the file up first. Missing files are created.
func (k *Keeper) Set(key, value string) error {
	f, err := k.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		f = envfile.New()
	} else {
		if _, err := k.backups.Create(); err != nil {
			return fmt.Errorf("backup before set: %w", err)
		}
	}

	f.Set(key, value)
	if err := f.WriteFile(k.file); err != nil {
		return err
	}
	slog.Info("set key", "file", k.file, "key", key)

	k.record(store.ActionSet, "", []string{key})
	k.publish(sse.EventKeySet, map[string]string{"key": key})
	metrics.Operations.WithLabelValues(string(store.ActionSet)).Inc()
	return nil
}

// Unset removes a key, backing the file up first.
func (k *Keeper) Unset(key string) error {
	f, err := k.Load()
	if err != nil {
		return err
	}
	if !f.Unset(key) {
		return fmt.Errorf("key %q not set in %s", key, k.file)
	}
	if _, err := k.backups.Create(); err != nil {
		return fmt.Errorf("backup before unset: %w", err)
	}
	if err := f.WriteFile(k.file); err != nil {
		return err
	}
	slog.Info("unset key", "file", k.file, "key", key)

	k.record(store.ActionUnset, "", []string{key})
	k.publish(sse.EventKeyUnset, map[string]string{"key": key})
	metrics.Operations.WithLabelValues(string(store.ActionUnset)).Inc()
	return nil
}

// CreateBackup snapshots the current file.
func (k *Keeper) CreateBackup() (*backup.Backup, error) {
	b, err := k.backups.Create()
	if err != nil {
		return nil, err
	}
	slog.Info("created backup", "file", k.file, "backup", b.Name)

	k.record(store.ActionBackup, b.Name, nil)
	k.publish(sse.EventBackupCreated, b)
	metrics.Operations.WithLabelValues(string(store.ActionBackup)).Inc()
	return b, nil
}

// Restore replaces the managed file with the named backup.
func (k *Keeper) Restore(name string) error {
	if err := k.backups.Restore(name); err != nil {
		return err
	}
	slog.Info("restored backup", "file", k.file, "backup", name)

	k.record(store.ActionRestore, name, nil)
	k.publish(sse.EventRestored, map[string]string{"backup": name})
	metrics.Operations.WithLabelValues(string(store.ActionRestore)).Inc()
	return nil
}

func (k *Keeper) record(action store.Action, backupName string, keys []string) string {
	if k.store == nil {
		return ""
	}
	rev := &store.Revision{
		Action:      action,
		FilePath:    k.file,
		BackupName:  backupName,
		KeysChanged: keys,
		Checksum:    k.checksum(),
	}
	if err := k.store.RecordRevision(rev); err != nil {
		slog.Error("failed to record revision", "action", action, "error", err)
		return ""
	}
	return rev.ID
}

func (k *Keeper) publish(eventType string, data any) {
	if k.broadcaster == nil {
		return
	}
	k.broadcaster.Publish(sse.Event{Type: eventType, Data: data})
}

func (k *Keeper) checksum() string {
	data, err := os.ReadFile(k.file)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func changedKeys(changes []envfile.Change) []string {
	var keys []string
	for _, c := range changes {
		keys = append(keys, c.Key)
	}
	return keys
}
