package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SessionReaper removes idle sessions.
type SessionReaper interface {
	Reap(idle time.Duration) int
	Len() int
}

// SessionReaperJob drops dashboard sessions that have been idle for longer
// than the configured timeout.
type SessionReaperJob struct {
	sessions SessionReaper
	idle     time.Duration
	log      zerolog.Logger
}

// NewSessionReaperJob creates the reaper job.
func NewSessionReaperJob(sessions SessionReaper, idle time.Duration, log zerolog.Logger) *SessionReaperJob {
	return &SessionReaperJob{
		sessions: sessions,
		idle:     idle,
		log:      log.With().Str("job", "session_reaper").Logger(),
	}
}

// Name returns the job name
func (j *SessionReaperJob) Name() string {
	return "session_reaper"
}

// Run executes the job
func (j *SessionReaperJob) Run() error {
	if j.idle <= 0 {
		return fmt.Errorf("session idle timeout must be positive, got %s", j.idle)
	}

	removed := j.sessions.Reap(j.idle)
	if removed > 0 {
		j.log.Info().
			Int("removed", removed).
			Int("remaining", j.sessions.Len()).
			Dur("idle_timeout", j.idle).
			Msg("Reaped idle sessions")
	}
	return nil
}
