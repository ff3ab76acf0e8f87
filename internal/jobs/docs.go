// Package jobs provides scheduled background tasks for the replenishment
// service.
//
// Jobs are built on github.com/robfig/cron/v3 with a seconds field, so
// schedules have six fields.
//
// # Available Jobs
//
// 1. KPIRecomputeJob recomputes the previous ISO week and the previous month
// for every configured metric class. Keys run concurrently through an
// errgroup with a bounded limit; recomputation of a single key is serialized
// by the KPI lock inside the command handler.
//
// 2. ProactiveReplenishmentJob raises orders for low-stock sites without an
// open order. Sites at the emergency level get emergency orders, which are
// urgent and wait for approval.
//
// # Usage
//
//	manager := jobs.NewJobManager(kpiJob, proactiveJob)
//	if err := manager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer manager.StopAll()
//
// Both jobs expose RunOnce so the operator CLI can trigger a run by hand.
package jobs
