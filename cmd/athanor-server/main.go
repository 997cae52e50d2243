package main

import (
	"net/http"
	"time"

	"athanor/internal/engine"
	"athanor/internal/notify"
	"athanor/internal/objective"
	"athanor/pkg/athanor"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	if _, err := objective.Get(cfg.Objective); err != nil {
		logger.Fatalf("cannot start with objective %q: %v", cfg.Objective, err)
	}

	target := engine.DefaultTarget()
	target.Objective = cfg.Objective

	eng := athanor.NewEngine(athanor.EngineOptions{
		Target:       &target,
		Seed:         cfg.Seed,
		StepInterval: time.Duration(cfg.StepIntervalMS) * time.Millisecond,
		Logger:       logger,
	})
	srv := NewServer(eng, notify.NewHub(), logger)

	logger.Infof("athanor-server listening on %s objective=%s step_interval=%dms", cfg.Addr, cfg.Objective, cfg.StepIntervalMS)
	logger.Fatalf("server stopped: %v", http.ListenAndServe(cfg.Addr, srv.Routes()))
}
