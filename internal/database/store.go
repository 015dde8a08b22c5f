package database

import (
	"context"
	"time"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/snapshot"
)

// SnapshotStore implements snapshot.Store on any DB, one row per table.
type SnapshotStore struct {
	db     DB
	stmts  Statements
	format snapshot.Format
}

// NewSnapshotStore creates the snapshot table if needed and returns a
// store over db. The store owns db and closes it on Close.
func NewSnapshotStore(ctx context.Context, db DB, d Dialect) (*SnapshotStore, error) {
	s := &SnapshotStore{
		db:     db,
		stmts:  BuildStatements(d, SnapshotTable),
		format: snapshot.FormatJSON,
	}
	if err := db.Exec(ctx, s.stmts.CreateTable); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	body, err := snapshot.Encode(snap, s.format)
	if err != nil {
		return err
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	return s.db.Exec(ctx, s.stmts.Upsert, snap.Name(), string(body), savedAt)
}

func (s *SnapshotStore) Load(ctx context.Context, name string) (*snapshot.Snapshot, bool, error) {
	var body string
	err := s.db.QueryRow(ctx, s.stmts.Select, name).Scan(&body)
	if errs.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	snap, err := snapshot.Decode([]byte(body), s.format)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	return s.db.Exec(ctx, s.stmts.Delete, name)
}

func (s *SnapshotStore) ListAll(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, s.stmts.ListNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SnapshotStore) Close() error {
	s.db.Close()
	return nil
}

var _ snapshot.Store = (*SnapshotStore)(nil)
