/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds the long-lived dependencies shared by every dashboard
 * session: the banking API client, the record normalizer, the session registry
 * and the scheduler.
 */
package di

import (
	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/config"
	"github.com/aristath/bankdash/internal/normalizer"
	"github.com/aristath/bankdash/internal/scheduler"
	"github.com/aristath/bankdash/internal/server"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Client     *bankapi.Client
	Normalizer *normalizer.Normalizer
	Sessions   *server.SessionRegistry
	Scheduler  *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering.
type JobInstances struct {
	SessionReaper *scheduler.SessionReaperJob
}
