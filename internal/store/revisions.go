package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) RecordRevision(rev *Revision) error {
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO revisions (id, action, file_path, backup_name, keys_changed, checksum, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.Action, rev.FilePath, rev.BackupName,
		strings.Join(rev.KeysChanged, ","), rev.Checksum, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record revision: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRevisions(limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, action, file_path, backup_name, keys_changed, checksum, created_at
		 FROM revisions ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		rev, err := scanRevision(rows.Scan)
		if err != nil {
			return nil, err
		}
		revs = append(revs, *rev)
	}
	return revs, rows.Err()
}

func (s *SQLiteStore) GetRevision(id string) (*Revision, error) {
	row := s.db.QueryRow(
		`SELECT id, action, file_path, backup_name, keys_changed, checksum, created_at
		 FROM revisions WHERE id = ?`, id)
	rev, err := scanRevision(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rev, err
}

func scanRevision(scan func(...any) error) (*Revision, error) {
	rev := &Revision{}
	var keys string
	if err := scan(&rev.ID, &rev.Action, &rev.FilePath, &rev.BackupName,
		&keys, &rev.Checksum, &rev.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan revision: %w", err)
	}
	if keys != "" {
		rev.KeysChanged = strings.Split(keys, ",")
	}
	return rev, nil
}
