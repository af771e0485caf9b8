package store

import (
	"context"
	"database/sql"
	"time"
)

// DashboardStats is the headline summary block of the dashboard.
type DashboardStats struct {
	TotalReports         int64   `json:"total_reports"`
	PendingReports       int64   `json:"pending_reports"`
	UnderReviewReports   int64   `json:"under_review_reports"`
	InvestigatingReports int64   `json:"investigating_reports"`
	ResolvedReports      int64   `json:"resolved_reports"`
	ClosedReports        int64   `json:"closed_reports"`
	TotalLoss            float64 `json:"total_loss"`
	AvgLoss              float64 `json:"avg_loss"`
	AvgResolutionHours   float64 `json:"avg_resolution_hours"`
}

// RecentReport is one row of the dashboard's latest-submissions table.
type RecentReport struct {
	ReportNumber string  `json:"report_number"`
	ReporterName string  `json:"reporter_name"`
	CrimeType    string  `json:"crime_type"`
	Icon         string  `json:"category_icon"`
	Color        string  `json:"category_color"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	AssignedTo   string  `json:"assigned_to"`
	City         string  `json:"city"`
	Region       string  `json:"region"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Loss         float64 `json:"estimated_loss"`
	CreatedAt    string  `json:"created_at"`
}

// MapReport is one marker on the public incident map.
type MapReport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CrimeType string  `json:"crime_type"`
	Icon      string  `json:"category_icon"`
	Color     string  `json:"category_color"`
	Status    string  `json:"status"`
	City      string  `json:"city"`
	CreatedAt string  `json:"created_at"`
}

// TrendPoint is a per-category monthly count, keyed by "YYYY-MM".
type TrendPoint struct {
	Month    string
	Category string
	Color    string
	Count    int64
}

// DistributionEntry is one slice of the crime-type breakdown chart.
type DistributionEntry struct {
	CrimeType  string  `json:"crime_type"`
	Icon       string  `json:"category_icon"`
	Color      string  `json:"category_color"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type DashboardStore interface {
	Stats(ctx context.Context, since time.Time) (*DashboardStats, error)
	RecentReports(ctx context.Context, limit int) ([]RecentReport, error)
	MapReports(ctx context.Context) ([]MapReport, error)
	CrimeTrends(ctx context.Context, since time.Time) ([]TrendPoint, error)
	CrimeDistribution(ctx context.Context, since time.Time) ([]DistributionEntry, error)
	PendingCount(ctx context.Context) (int64, error)
}

type dashboardStore struct {
	db *DB
}

func NewDashboardStore(db *DB) DashboardStore {
	return &dashboardStore{db: db}
}

const displayTimeLayout = "2006-01-02 15:04:05"

// sqlUTC renders a cutoff the way sqlite's CURRENT_TIMESTAMP stores
// timestamps, so string comparison in WHERE clauses is well defined.
func sqlUTC(t time.Time) string {
	return t.UTC().Format(displayTimeLayout)
}

func (s *dashboardStore) Stats(ctx context.Context, since time.Time) (*DashboardStats, error) {
	row, err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'under_review' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'investigating' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'closed' THEN 1 ELSE 0 END),
			COALESCE(SUM(estimated_loss), 0),
			AVG(estimated_loss),
			AVG(CASE WHEN resolution_date IS NOT NULL
				THEN (julianday(resolution_date) - julianday(created_at)) * 24 END)
		FROM incident_reports
		WHERE created_at >= ?`,
		sqlUTC(since))
	if err != nil {
		return nil, err
	}
	var stats DashboardStats
	var pending, underReview, investigating, resolved, closed sql.NullInt64
	var avgLoss, avgHours sql.NullFloat64
	if err := row.Scan(&stats.TotalReports, &pending, &underReview, &investigating, &resolved, &closed,
		&stats.TotalLoss, &avgLoss, &avgHours); err != nil {
		return nil, &QueryError{Query: "dashboard stats", Err: err}
	}
	stats.PendingReports = pending.Int64
	stats.UnderReviewReports = underReview.Int64
	stats.InvestigatingReports = investigating.Int64
	stats.ResolvedReports = resolved.Int64
	stats.ClosedReports = closed.Int64
	stats.AvgLoss = avgLoss.Float64
	stats.AvgResolutionHours = avgHours.Float64
	return &stats, nil
}

func (s *dashboardStore) RecentReports(ctx context.Context, limit int) ([]RecentReport, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.report_number, r.reporter_name, c.category_name, c.category_icon, c.category_color,
			r.status, r.priority, COALESCE(u.full_name, ''),
			l.city, l.region, l.latitude, l.longitude, r.estimated_loss, r.created_at
		FROM incident_reports r
		JOIN crime_categories c ON c.id = r.crime_category_id
		JOIN locations l ON l.id = r.location_id
		LEFT JOIN users u ON u.id = r.assigned_to
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]RecentReport, 0, limit)
	for rows.Next() {
		var rep RecentReport
		if err := rows.Scan(&rep.ReportNumber, &rep.ReporterName, &rep.CrimeType, &rep.Icon, &rep.Color,
			&rep.Status, &rep.Priority, &rep.AssignedTo,
			&rep.City, &rep.Region, &rep.Latitude, &rep.Longitude, &rep.Loss, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (s *dashboardStore) MapReports(ctx context.Context) ([]MapReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.latitude, l.longitude, c.category_name, c.category_icon, c.category_color,
			r.status, l.city, r.created_at
		FROM incident_reports r
		JOIN crime_categories c ON c.id = r.crime_category_id
		JOIN locations l ON l.id = r.location_id
		WHERE r.is_public = 1
		ORDER BY r.created_at DESC
		LIMIT 50`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markers []MapReport
	for rows.Next() {
		var m MapReport
		if err := rows.Scan(&m.Latitude, &m.Longitude, &m.CrimeType, &m.Icon, &m.Color,
			&m.Status, &m.City, &m.CreatedAt); err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

func (s *dashboardStore) CrimeTrends(ctx context.Context, since time.Time) ([]TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', r.created_at), c.category_name, c.category_color, COUNT(*)
		FROM incident_reports r
		JOIN crime_categories c ON c.id = r.crime_category_id
		WHERE r.created_at >= ?
		GROUP BY strftime('%Y-%m', r.created_at), c.category_name, c.category_color
		ORDER BY strftime('%Y-%m', r.created_at)`,
		sqlUTC(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Month, &p.Category, &p.Color, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *dashboardStore) CrimeDistribution(ctx context.Context, since time.Time) ([]DistributionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.category_name, c.category_icon, c.category_color, COUNT(*),
			ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM incident_reports), 1)
		FROM incident_reports r
		JOIN crime_categories c ON c.id = r.crime_category_id
		WHERE r.created_at >= ?
		GROUP BY c.id, c.category_name, c.category_icon, c.category_color
		ORDER BY COUNT(*) DESC`,
		sqlUTC(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DistributionEntry
	for rows.Next() {
		var e DistributionEntry
		if err := rows.Scan(&e.CrimeType, &e.Icon, &e.Color, &e.Count, &e.Percentage); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *dashboardStore) PendingCount(ctx context.Context) (int64, error) {
	row, err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM incident_reports WHERE status = 'pending'`)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, &QueryError{Query: "pending count", Err: err}
	}
	return n, nil
}
