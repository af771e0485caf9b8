package submission

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cyberguard-portal/config"
	"cyberguard-portal/core/geo"
	"cyberguard-portal/core/store"
	"cyberguard-portal/core/utils"
)

// Result is what a successful submission hands back to the caller.
type Result struct {
	ReportID     int64
	ReportNumber string
	SubmittedAt  time.Time
}

// Service runs the report submission workflow: validate, sanitize,
// resolve the location, then persist category, location and report in
// a single transaction.
type Service struct {
	db         *store.DB
	reports    store.ReportsStore
	categories store.CategoriesStore
	locations  store.LocationsStore
	activity   store.ActivityStore
	cfg        config.SubmissionsConfig
	logger     *utils.Logger

	mu       sync.Mutex
	resolver *geo.Resolver

	now func() time.Time
}

func NewService(db *store.DB, reports store.ReportsStore, categories store.CategoriesStore,
	locations store.LocationsStore, activity store.ActivityStore,
	cfg config.SubmissionsConfig, logger *utils.Logger) *Service {
	return &Service{
		db:         db,
		reports:    reports,
		categories: categories,
		locations:  locations,
		activity:   activity,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit runs the full workflow for one report. It returns a
// *ValidationError for bad input, a *RateLimitError when the client
// address is over its allowance, and a *SubmissionError wrapping the
// failed step for anything that went wrong while persisting.
func (s *Service) Submit(ctx context.Context, req *Request, clientIP, userAgent string) (*Result, error) {
	v, err := Validate(req)
	if err != nil {
		return nil, err
	}

	allowed, err := s.AllowSubmission(ctx, clientIP)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	if !allowed {
		return nil, &RateLimitError{Limit: s.cfg.RateLimit}
	}

	email, phone := ClassifyContact(Sanitize(v.ContactInfo))
	resolver, err := s.placeResolver(ctx)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	city, region := resolver.Resolve(v.Latitude, v.Longitude)

	draft := &store.ReportDraft{
		ReporterName:  Sanitize(v.ReporterName),
		ReporterEmail: email,
		ReporterPhone: phone,
		CrimeType:     Sanitize(v.CrimeType),
		Description:   Sanitize(v.Description),
		EstimatedLoss: v.Loss,
		Currency:      s.cfg.DefaultCurrency,
		IPAddress:     clientIP,
		UserAgent:     userAgent,
		Source:        s.cfg.SourceTag,
	}

	now := s.now().UTC()
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	defer tx.Rollback()

	categoryID, err := s.categories.ResolveTx(ctx, tx, draft.CrimeType)
	if err != nil {
		return nil, &SubmissionError{Err: &PersistenceError{Op: "failed to process crime type", Err: err}}
	}

	locationID, err := s.locations.InsertTx(ctx, tx, &store.Location{
		Latitude:     v.Latitude,
		Longitude:    v.Longitude,
		Address:      Sanitize(v.Address),
		City:         city,
		Region:       region,
		Country:      s.cfg.DefaultCountry,
		LocationType: "exact",
	})
	if err != nil {
		return nil, &SubmissionError{Err: &PersistenceError{Op: "failed to save location", Err: err}}
	}

	seq, err := s.reports.NextReportSeqTx(ctx, tx, now.Year(), now.Month())
	if err != nil {
		return nil, &SubmissionError{Err: &PersistenceError{Op: "failed to allocate report number", Err: err}}
	}
	number := store.BuildReportNumber(now.Year(), now.Month(), seq)

	reportID, err := s.reports.InsertReportTx(ctx, tx, draft, categoryID, locationID, number)
	if err != nil {
		return nil, &SubmissionError{Err: &PersistenceError{Op: "failed to save incident report", Err: err}}
	}

	if err := tx.Commit(); err != nil {
		return nil, &SubmissionError{Err: err}
	}

	s.recordActivity(ctx, reportID, number, draft)
	s.logger.Infof("submission: report %s stored (id=%d, category=%d)", number, reportID, categoryID)

	return &Result{ReportID: reportID, ReportNumber: number, SubmittedAt: now}, nil
}

// AllowSubmission reports whether the address is still under the
// hourly submission allowance.
func (s *Service) AllowSubmission(ctx context.Context, ip string) (bool, error) {
	if ip == "" || s.cfg.RateLimit <= 0 {
		return true, nil
	}
	since := s.now().Add(-s.cfg.RateWindow())
	n, err := s.reports.CountByIPSince(ctx, ip, since)
	if err != nil {
		return false, err
	}
	return n < s.cfg.RateLimit, nil
}

// placeResolver lazily loads the reference place table once and keeps
// the resolver for all later submissions.
func (s *Service) placeResolver(ctx context.Context) (*geo.Resolver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolver != nil {
		return s.resolver, nil
	}
	places, err := s.locations.References(ctx)
	if err != nil {
		return nil, err
	}
	s.resolver = geo.NewResolver(places)
	return s.resolver, nil
}

// recordActivity writes the audit trail entry. A failure here never
// fails the submission, the report is already committed.
func (s *Service) recordActivity(ctx context.Context, reportID int64, number string, draft *store.ReportDraft) {
	details, _ := json.Marshal(map[string]any{
		"report_id":     reportID,
		"report_number": number,
		"crime_type":    draft.CrimeType,
	})
	err := s.activity.Record(ctx, &store.ActivityEntry{
		Action:    "incident_report_submitted",
		Details:   string(details),
		IPAddress: draft.IPAddress,
		UserAgent: draft.UserAgent,
	})
	if err != nil {
		s.logger.Errorf("submission: activity log write failed: %v", err)
	}
}
