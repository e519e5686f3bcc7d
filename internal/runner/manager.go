package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Error variables for runner manager
var (
	ErrRunnerCreate  = errors.New("failed to create runner")
	ErrTaskRegister  = errors.New("failed to register tasks")
	ErrRunnerNotInit = errors.New("runner not initialized")
)

var (
	globalRunner *Runner
	initOnce     sync.Once
	initError    error
)

// InitializeRunner creates and starts the global runner, then registers tasks
// on cronSchedule.
func InitializeRunner(ctx context.Context, tasks []Task, cronSchedule string) (*Runner, error) {
	initOnce.Do(func() {
		_globalRunner, err := NewRunner(ctx)
		if err != nil {
			log.Err(err).Msg("Failed to create runner")
			initError = errors.Join(ErrRunnerCreate, err)
			return
		}

		_globalRunner.Start()
		if err := registerAllTasks(_globalRunner, tasks, cronSchedule); err != nil {
			log.Err(err).Msg("Failed to register tasks")
			_ = _globalRunner.Stop()
			initError = err
			return
		}

		globalRunner = _globalRunner
		log.Info().Msg("Global scheduler runner initialized and started")
	})

	return globalRunner, initError
}

func registerAllTasks(runner *Runner, tasks []Task, cronSchedule string) error {
	for _, t := range tasks {
		if err := runner.RegisterTask(t, cronSchedule); err != nil {
			log.Err(err).Str("task", t.Name()).Msg("Failed to register task")
			return errors.Join(ErrTaskRegister, err)
		}
	}

	return nil
}

// GetRunner returns the global runner instance
func GetRunner() (*Runner, error) {
	if globalRunner == nil {
		log.Error().Msg("Runner not initialized")
		return nil, ErrRunnerNotInit
	}
	return globalRunner, nil
}

// ShutdownRunner stops the global runner
func ShutdownRunner() error {
	if globalRunner == nil {
		return nil
	}
	return globalRunner.Stop()
}
