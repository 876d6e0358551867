package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const cleanupTimeout = 30 * time.Second

// PurgeFunc removes expired records and reports how many went away.
type PurgeFunc func(ctx context.Context) (int64, error)

// CleanupTask is one named purge run on every tick.
type CleanupTask struct {
	Name  string
	Purge PurgeFunc
}

type CleanupJob struct {
	tasks    []CleanupTask
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

func NewCleanupJob(interval time.Duration, tasks ...CleanupTask) *CleanupJob {
	return &CleanupJob{
		tasks:    tasks,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Int("tasks", len(j.tasks)).Msg("cleanup job started")
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (j *CleanupJob) Stop() {
	close(j.done)
	<-j.stopped
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	defer close(j.stopped)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	for _, task := range j.tasks {
		j.runCleanup(ctx, task.Name, task.Purge)
	}
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn PurgeFunc) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
