package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReportDraft carries the sanitized, validated fields of a submission
// on their way into the incident_reports table.
type ReportDraft struct {
	ReporterName  string
	ReporterEmail string
	ReporterPhone string
	CrimeType     string
	Description   string
	EstimatedLoss float64
	Currency      string
	IPAddress     string
	UserAgent     string
	Source        string
}

// BuildReportNumber formats the public reference for a report:
// a CG- prefix, the year and month of submission, then the
// zero-padded per-month sequence.
func BuildReportNumber(year int, month time.Month, seq int64) string {
	return fmt.Sprintf("CG-%04d%02d-%04d", year, int(month), seq)
}

type ReportsStore interface {
	// NextReportSeqTx atomically advances and returns the per-month
	// report counter.
	NextReportSeqTx(ctx context.Context, tx *sql.Tx, year int, month time.Month) (int64, error)
	// InsertReportTx writes the report row inside the caller's
	// transaction.
	InsertReportTx(ctx context.Context, tx *sql.Tx, draft *ReportDraft, categoryID, locationID int64, number string) (int64, error)
	// CountByIPSince counts submissions from one address after the
	// cutoff, for rate limiting.
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	// SubmissionStats summarizes submission volume for the public
	// stats endpoint.
	SubmissionStats(ctx context.Context, now time.Time) (*SubmissionStats, error)
}

// SubmissionStats is the payload of the public stats endpoint.
type SubmissionStats struct {
	TotalReports int64 `json:"total_reports"`
	ReportsToday int64 `json:"reports_today"`
	ReportsWeek  int64 `json:"reports_this_week"`
}

type reportsStore struct {
	db *DB
}

func NewReportsStore(db *DB) ReportsStore {
	return &reportsStore{db: db}
}

func (s *reportsStore) NextReportSeqTx(ctx context.Context, tx *sql.Tx, year int, month time.Month) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO report_number_counters (year, month, seq)
		VALUES (?, ?, 1)
		ON CONFLICT (year, month) DO UPDATE SET seq = report_number_counters.seq + 1
		RETURNING seq`,
		year, int(month)).Scan(&seq)
	if err != nil {
		return 0, &QueryError{Query: "advance report counter", Err: err}
	}
	return seq, nil
}

func (s *reportsStore) InsertReportTx(ctx context.Context, tx *sql.Tx, draft *ReportDraft, categoryID, locationID int64, number string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO incident_reports (
			report_number, reporter_name, reporter_email, reporter_phone,
			crime_category_id, incident_description, location_id,
			estimated_loss, currency, ip_address, user_agent, submission_source,
			status, priority, is_public
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', 'medium', 1)`,
		number, draft.ReporterName, nullable(draft.ReporterEmail), nullable(draft.ReporterPhone),
		categoryID, draft.Description, locationID,
		draft.EstimatedLoss, draft.Currency, nullable(draft.IPAddress), nullable(draft.UserAgent), draft.Source)
	if err != nil {
		return 0, &QueryError{Query: "insert incident report", Err: err}
	}
	return res.LastInsertId()
}

func (s *reportsStore) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	row, err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM incident_reports WHERE ip_address = ? AND created_at >= ?`,
		ip, sqlUTC(since))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, &QueryError{Query: "count submissions by ip", Err: err}
	}
	return n, nil
}

func (s *reportsStore) SubmissionStats(ctx context.Context, now time.Time) (*SubmissionStats, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := now.AddDate(0, 0, -7)

	row, err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END)
		FROM incident_reports`,
		sqlUTC(dayStart), sqlUTC(weekStart))
	if err != nil {
		return nil, err
	}
	var stats SubmissionStats
	var today, week sql.NullInt64
	if err := row.Scan(&stats.TotalReports, &today, &week); err != nil {
		return nil, &QueryError{Query: "submission stats", Err: err}
	}
	stats.ReportsToday = today.Int64
	stats.ReportsWeek = week.Int64
	return &stats, nil
}

// nullable turns an empty string into SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
