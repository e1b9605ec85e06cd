// Package jobs provides scheduled background tasks for the order service.
//
// Jobs are built on github.com/robfig/cron/v3 with seconds precision.
//
// # Available Jobs
//
// LedgerAuditJob re-checks the allocation invariants over the latest snapshot of
// every order. It is read-only: violations are logged and exported as a gauge,
// never repaired.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(logger, jobs.NewLedgerAuditJob(handler, recorder, schedule, logger))
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// A job that fails to start stops every job started before it.
package jobs
