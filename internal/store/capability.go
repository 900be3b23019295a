package store

import (
	"context"
	"fmt"
)

// Capabilities records optional schema features detected at startup.
// Older deployments may lack columns added after their first migration;
// repositories consult these flags instead of retrying failed writes.
type Capabilities struct {
	JadwalJam bool `json:"jadwal_jam"`
}

// HasColumn reports whether table has column. An undefined-column error is
// a negative answer; any other error is returned.
func (s *Store) HasColumn(ctx context.Context, table, column string) (bool, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE 1 = 0", column, table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if IsUndefinedColumn(err) {
			return false, nil
		}
		return false, fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	rows.Close()
	return true, nil
}

// Capabilities checks optional columns once and caches the result. Call it
// after migrations have run.
func (s *Store) Capabilities(ctx context.Context) (Capabilities, error) {
	s.capsOnce.Do(func() {
		s.caps.JadwalJam, s.capsErr = s.HasColumn(ctx, "kesehatan_jadwal", "jam")
	})
	return s.caps, s.capsErr
}
