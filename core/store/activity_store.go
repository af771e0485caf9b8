package store

import "context"

// ActivityEntry is one audit trail row. UserID is zero for anonymous
// actions such as public report submissions.
type ActivityEntry struct {
	UserID    int64
	Action    string
	Details   string
	IPAddress string
	UserAgent string
}

type ActivityStore interface {
	Record(ctx context.Context, e *ActivityEntry) error
}

type activityStore struct {
	db *DB
}

func NewActivityStore(db *DB) ActivityStore {
	return &activityStore{db: db}
}

func (s *activityStore) Record(ctx context.Context, e *ActivityEntry) error {
	var userID any
	if e.UserID != 0 {
		userID = e.UserID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (user_id, action, details, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?)`,
		userID, e.Action, nullable(e.Details), nullable(e.IPAddress), nullable(e.UserAgent))
	return err
}
