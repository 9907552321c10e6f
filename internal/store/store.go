package store

import "time"

// Action is the kind of env-file operation a revision records.
type Action string

const (
	ActionUpdate  Action = "update"
	ActionSet     Action = "set"
	ActionUnset   Action = "unset"
	ActionBackup  Action = "backup"
	ActionRestore Action = "restore"
)

// Revision is one recorded env-file operation.
type Revision struct {
	ID          string    `json:"id"`
	Action      Action    `json:"action"`
	FilePath    string    `json:"file_path"`
	BackupName  string    `json:"backup_name,omitempty"`
	KeysChanged []string  `json:"keys_changed,omitempty"`
	Checksum    string    `json:"checksum,omitempty"` // sha256 of the resulting file
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists the revision history.
type Store interface {
	RecordRevision(rev *Revision) error
	ListRevisions(limit int) ([]Revision, error)
	GetRevision(id string) (*Revision, error)

	Close() error
}
