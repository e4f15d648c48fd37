// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/bankdash/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs registers all background jobs with the scheduler
// Returns JobInstances for manual triggering
func RegisterJobs(container *Container, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		SessionReaper: scheduler.NewSessionReaperJob(container.Sessions, container.Config.Session.IdleTimeout, log),
	}

	schedule := container.Config.Session.ReapSchedule
	if err := container.Scheduler.AddJob(schedule, instances.SessionReaper); err != nil {
		return nil, fmt.Errorf("invalid session reap schedule %q: %w", schedule, err)
	}

	log.Info().Int("jobs", container.Scheduler.Entries()).Msg("Jobs registered")
	return instances, nil
}
