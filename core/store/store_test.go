package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cyberguard-portal/config"
	"cyberguard-portal/core/utils"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := &config.AppConfig{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "test.db"),
	}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, logger); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := SeedReferenceData(ctx, db, logger); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	row, err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	var n int
	if err := row.Scan(&n); err != nil {
		t.Fatalf("scan count %s: %v", table, err)
	}
	return n
}

// createReport inserts one full report through the transactional
// store methods and returns its report number.
func createReport(t *testing.T, db *DB, ip, crimeType string) string {
	t.Helper()
	ctx := context.Background()
	reports := NewReportsStore(db)
	categories := NewCategoriesStore(db)
	locations := NewLocationsStore(db)

	tx, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	categoryID, err := categories.ResolveTx(ctx, tx, crimeType)
	if err != nil {
		t.Fatalf("resolve category: %v", err)
	}
	locationID, err := locations.InsertTx(ctx, tx, &Location{
		Latitude: -6.8, Longitude: 39.2,
		City: "Dar es Salaam", Region: "Dar es Salaam",
		Country: "Tanzania", LocationType: "exact",
	})
	if err != nil {
		t.Fatalf("insert location: %v", err)
	}
	now := time.Now().UTC()
	seq, err := reports.NextReportSeqTx(ctx, tx, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("next seq: %v", err)
	}
	number := BuildReportNumber(now.Year(), now.Month(), seq)
	if _, err := reports.InsertReportTx(ctx, tx, &ReportDraft{
		ReporterName: "Jane Citizen",
		CrimeType:    crimeType,
		Description:  "test incident",
		Currency:     "TZS",
		IPAddress:    ip,
		Source:       "web_form",
	}, categoryID, locationID, number); err != nil {
		t.Fatalf("insert report: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return number
}

func TestSeedReferenceDataIdempotent(t *testing.T) {
	db := newTestDB(t)
	logger := utils.NewLogger()
	if err := SeedReferenceData(context.Background(), db, logger); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n := countRows(t, db, "crime_categories"); n != len(seedCategories) {
		t.Fatalf("categories = %d, want %d", n, len(seedCategories))
	}
	if n := countRows(t, db, "reference_places"); n != len(seedPlaces) {
		t.Fatalf("reference places = %d, want %d", n, len(seedPlaces))
	}
	if n := countRows(t, db, "users"); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
}

func TestResolveCategoryExisting(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoriesStore(db)

	tx, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	first, err := categories.ResolveTx(ctx, tx, "Phishing")
	if err != nil {
		t.Fatalf("resolve existing: %v", err)
	}
	second, err := categories.ResolveTx(ctx, tx, "Phishing")
	if err != nil {
		t.Fatalf("resolve existing again: %v", err)
	}
	if first != second || first == 0 {
		t.Fatalf("ids differ: %d vs %d", first, second)
	}
	before := countRows(t, db, "crime_categories")
	if before != len(seedCategories) {
		t.Fatalf("categories = %d, want %d", before, len(seedCategories))
	}
}

func TestResolveCategoryAutoCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoriesStore(db)

	tx, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	id, err := categories.ResolveTx(ctx, tx, "Crypto Scam")
	if err != nil {
		t.Fatalf("auto-create: %v", err)
	}
	if id == 0 {
		t.Fatal("expected new category id")
	}
	again, err := categories.ResolveTx(ctx, tx, "Crypto Scam")
	if err != nil {
		t.Fatalf("resolve created: %v", err)
	}
	if again != id {
		t.Fatalf("repeated resolve gave %d, want %d", again, id)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var icon, color, description string
	row, err := db.QueryRowContext(ctx, `
		SELECT category_icon, category_color, description FROM crime_categories WHERE id = ?`, id)
	if err != nil {
		t.Fatalf("select created: %v", err)
	}
	if err := row.Scan(&icon, &color, &description); err != nil {
		t.Fatalf("scan created: %v", err)
	}
	if icon != "🔍" || color != "#718096" {
		t.Fatalf("defaults = %q/%q", icon, color)
	}
	if description != "Auto-created category for: Crypto Scam" {
		t.Fatalf("description = %q", description)
	}
}

func TestNextReportSeq(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	reports := NewReportsStore(db)

	for want := int64(1); want <= 3; want++ {
		tx, err := db.BeginTx(ctx)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		seq, err := reports.NextReportSeqTx(ctx, tx, 2026, time.August)
		if err != nil {
			t.Fatalf("next seq: %v", err)
		}
		if seq != want {
			t.Fatalf("seq = %d, want %d", seq, want)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()
	seq, err := reports.NextReportSeqTx(ctx, tx, 2026, time.September)
	if err != nil {
		t.Fatalf("next seq other month: %v", err)
	}
	if seq != 1 {
		t.Fatalf("new month seq = %d, want 1", seq)
	}
}

func TestBuildReportNumber(t *testing.T) {
	got := BuildReportNumber(2026, time.August, 7)
	if got != "CG-202608-0007" {
		t.Fatalf("report number = %q", got)
	}
	if got := BuildReportNumber(2027, time.January, 1234); got != "CG-202701-1234" {
		t.Fatalf("report number = %q", got)
	}
}

func TestCountByIPSince(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportsStore(db)
	ctx := context.Background()

	createReport(t, db, "203.0.113.7", "Phishing")
	createReport(t, db, "203.0.113.7", "Phishing")
	createReport(t, db, "198.51.100.1", "Phishing")

	n, err := reports.CountByIPSince(ctx, "203.0.113.7", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	n, err = reports.CountByIPSince(ctx, "203.0.113.7", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("count future cutoff: %v", err)
	}
	if n != 0 {
		t.Fatalf("count after future cutoff = %d, want 0", n)
	}
}

func TestSubmissionStats(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportsStore(db)
	ctx := context.Background()

	createReport(t, db, "203.0.113.7", "Phishing")
	createReport(t, db, "203.0.113.8", "Online Fraud")
	old := createReport(t, db, "203.0.113.9", "Phishing")

	// Push one report past the trailing week so only the total counts it.
	backdated := time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02 15:04:05")
	if _, err := db.ExecContext(ctx, `
		UPDATE incident_reports SET created_at = ? WHERE report_number = ?`,
		backdated, old); err != nil {
		t.Fatalf("backdate report: %v", err)
	}

	stats, err := reports.SubmissionStats(ctx, time.Now())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalReports != 3 || stats.ReportsToday != 2 || stats.ReportsWeek != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestUsersStoreFindByEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUsersStore(db)
	ctx := context.Background()

	admin, err := users.FindByEmail(ctx, "admin@cyberguard.co.tz")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if admin.UserType != "admin" || !admin.IsActive {
		t.Fatalf("admin = %+v", admin)
	}

	if _, err := users.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}

	u, err := users.Create(ctx, &User{
		FullName: "Jane Citizen",
		Email:    "jane@example.com",
		UserType: "reporter",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	dup, err := users.Create(ctx, &User{FullName: "Other", Email: "jane@example.com", UserType: "reporter"})
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if dup.ID != u.ID || dup.FullName != "Jane Citizen" {
		t.Fatalf("duplicate create returned %+v, want original row", dup)
	}
}

func TestFetchOneNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.FetchOne(context.Background(), `SELECT id FROM users WHERE email = ?`, "nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHealthHealthy(t *testing.T) {
	db := newTestDB(t)
	health := db.Health(context.Background())
	if health["status"] != "healthy" {
		t.Fatalf("health = %v", health)
	}
}

func TestHealthCriticalWhenUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection retry test in short mode")
	}
	db := &DB{driver: "pgx", dsn: "postgres://127.0.0.1:1/nodb?connect_timeout=1", logger: utils.NewLogger()}
	health := db.Health(context.Background())
	if health["status"] != "critical" {
		t.Fatalf("health = %v", health)
	}
}

func TestNewDBRetriesBeforeFailing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection retry test in short mode")
	}
	cfg := &config.AppConfig{
		DBDriver: "postgres",
		DBURL:    "postgres://127.0.0.1:1/nodb?connect_timeout=1",
	}
	_, err := NewDB(cfg, utils.NewLogger())
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want *ConnectionError", err)
	}
	if connErr.Attempts != maxConnectAttempts {
		t.Fatalf("attempts = %d, want %d", connErr.Attempts, maxConnectAttempts)
	}
}
