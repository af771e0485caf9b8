package appbootstrap

import (
	"cyberguard-portal/api"
	"cyberguard-portal/config"
	"cyberguard-portal/core/store"
	"cyberguard-portal/core/submission"
	"cyberguard-portal/core/utils"
)

// ComposeRuntime builds the store layer and the submission service on
// top of an open database and returns the server dependency set.
func ComposeRuntime(cfg *config.AppConfig, db *store.DB, logger *utils.Logger) api.ServerDeps {
	reports := store.NewReportsStore(db)
	categories := store.NewCategoriesStore(db)
	locations := store.NewLocationsStore(db)
	activity := store.NewActivityStore(db)
	dashboard := store.NewDashboardStore(db)

	submissionSvc := submission.NewService(db, reports, categories, locations, activity, cfg.Submissions, logger)

	return api.ServerDeps{
		Config:     cfg,
		DB:         db,
		Submission: submissionSvc,
		Reports:    reports,
		Dashboard:  dashboard,
		Logger:     logger,
	}
}
