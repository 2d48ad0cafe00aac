package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RevocationCleaner deletes expired revocation records and reports how many
// were removed. Implemented by revocation.Registry.
type RevocationCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron        *cron.Cron
	revocations RevocationCleaner
	log         zerolog.Logger
}

func NewScheduler(revocations RevocationCleaner, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:        c,
		revocations: revocations,
		log:         log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.cleanupRevokedTokens); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits up to five seconds for a running
// sweep to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

// cleanupRevokedTokens is safe to skip or overlap: deleting an already
// deleted row is not an error, and permanent revocations are untouched.
func (s *Scheduler) cleanupRevokedTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.revocations.CleanupExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("revoked token cleanup failed")
		return
	}
	s.log.Info().Int64("removed", removed).Msg("revoked token cleanup finished")
}
