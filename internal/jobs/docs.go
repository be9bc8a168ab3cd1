// Package jobs provides scheduled background tasks for the delivery tracker.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the service.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Runs every five seconds to re-publish staged outbox
// messages whose inline dispatch failed, keeping the broker eventually
// consistent with committed state
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with the outbox dispatcher
//	jobManager := jobs.NewJobManager(dispatcher, relayBatchSize, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed relay run is logged and retried on the next tick; messages stay
// staged until a publish succeeds, and deterministic event identifiers keep
// duplicate publishes idempotent for consumers.
package jobs
