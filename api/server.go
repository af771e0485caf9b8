package api

import (
	"cyberguard-portal/config"
	"cyberguard-portal/core/store"
	"cyberguard-portal/core/submission"
	"cyberguard-portal/core/utils"
)

// Server wires the HTTP surface to the submission workflow and the
// dashboard queries.
type Server struct {
	cfg        *config.AppConfig
	db         *store.DB
	submission *submission.Service
	reports    store.ReportsStore
	dashboard  store.DashboardStore
	logger     *utils.Logger
}

type ServerDeps struct {
	Config     *config.AppConfig
	DB         *store.DB
	Submission *submission.Service
	Reports    store.ReportsStore
	Dashboard  store.DashboardStore
	Logger     *utils.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		cfg:        deps.Config,
		db:         deps.DB,
		submission: deps.Submission,
		reports:    deps.Reports,
		dashboard:  deps.Dashboard,
		logger:     deps.Logger,
	}
}

