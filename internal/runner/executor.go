package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExecuteTask runs a single task with timing and logging around it
func ExecuteTask(ctx context.Context, task Task) error {
	startedAt := time.Now()
	executionID := uuid.New().String()
	name := task.Name()

	taskLogger := log.With().
		Str("execution_id", executionID).
		Str("task", name).
		Logger()

	taskLogger.Info().
		Time("starts", startedAt).
		Msg("Start execution of task")

	if err := ctx.Err(); err != nil {
		taskLogger.Warn().Err(err).Msg("Context done, skipping task")
		return err
	}

	if err := task.Execute(taskLogger.WithContext(ctx)); err != nil {
		taskLogger.Error().
			Err(err).
			Dur("duration", time.Since(startedAt)).
			Msg("Task failed")
		return fmt.Errorf("task %s failed: %w", name, err)
	}

	taskLogger.Info().
		Dur("duration", time.Since(startedAt)).
		Msg("Completed execution of task")

	return nil
}
