package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrFailedToCreateScheduler = errors.New("failed to create scheduler")
	ErrTaskAlreadyExists       = errors.New("task already registered")
	ErrTaskNotFound            = errors.New("task not found")
	ErrFailedToCreateJob       = errors.New("failed to create job")
	ErrFailedToGetNextRun      = errors.New("failed to get next run time")
)

// Task is a unit of scheduled work.
type Task interface {
	Name() string
	Execute(ctx context.Context) error
}

// Runner manages scheduled task executions
type Runner struct {
	ctx       context.Context
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job
	tasks     map[string]Task
	mu        sync.RWMutex
}

// NewRunner creates a new scheduler runner. Scheduled executions inherit ctx.
func NewRunner(ctx context.Context) (*Runner, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		),
	)

	if err != nil {
		log.Error().Err(err).Msg("Failed to create scheduler")
		return nil, ErrFailedToCreateScheduler
	}

	return &Runner{
		ctx:       ctx,
		scheduler: scheduler,
		jobs:      make(map[string]gocron.Job),
		tasks:     make(map[string]Task),
	}, nil
}

// RegisterTask adds a task to the runner. An empty cron schedule registers
// the task for manual runs only.
func (r *Runner) RegisterTask(task Task, cronSchedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	taskName := task.Name()

	if _, exists := r.tasks[taskName]; exists {
		log.Error().Str("task", taskName).Msg("Task already registered")
		return ErrTaskAlreadyExists
	}

	r.tasks[taskName] = task

	if cronSchedule == "" {
		log.Warn().Str("task", taskName).Msg("No cron schedule provided, task runs only on demand")
		return nil
	}

	job, err := r.scheduler.NewJob(
		gocron.CronJob(
			cronSchedule,
			false,
		),
		gocron.NewTask(
			r.executeTask,
			taskName,
		),
		gocron.WithName(strings.Join([]string{"task", taskName}, "_")),
		gocron.WithTags([]string{"task", taskName}...),
	)

	if err != nil {
		log.Error().Err(err).Str("task", taskName).Msg("Failed to schedule job for task")
		return errors.Join(ErrFailedToCreateJob, err)
	}

	r.jobs[taskName] = job
	nextRun, e := job.NextRun()

	if e != nil {
		log.Error().Err(e).Str("task", taskName).Msg("Failed to get next run time")
		return ErrFailedToGetNextRun
	}

	log.Info().
		Str("task", taskName).
		Str("cron", cronSchedule).
		Time("next_run", nextRun).
		Msg("Task registered with scheduler")

	return nil
}

// executeTask is the function that gets called on schedule
func (r *Runner) executeTask(taskName string) {
	r.mu.RLock()
	task, exists := r.tasks[taskName]
	r.mu.RUnlock()

	if !exists {
		log.Error().Str("task", taskName).Msg("Task not found in registry")
		return
	}

	log.Info().
		Str("task", taskName).
		Msg("Starting scheduled execution of task")

	if err := ExecuteTask(r.ctx, task); err != nil {
		log.Error().
			Err(err).
			Str("task", taskName).
			Msg("Error executing task")
	}
}

// Start begins the scheduler
func (r *Runner) Start() {
	r.scheduler.Start()
	log.Info().Int("jobs", len(r.jobs)).Msg("Scheduler started")
}

// Stop halts the scheduler and waits for running jobs
func (r *Runner) Stop() error {
	return r.scheduler.Shutdown()
}

// RunTaskImmediately executes a task right now without waiting for schedule
func (r *Runner) RunTaskImmediately(taskName string) error {
	r.mu.RLock()
	task, exists := r.tasks[taskName]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskName)
	}

	err := ExecuteTask(r.ctx, task)
	if err != nil {
		log.Error().
			Err(err).
			Str("task", taskName).
			Msg("Error executing task immediately")
	}

	return err
}

// GetNextRunTime returns the next scheduled run for a task
func (r *Runner) GetNextRunTime(taskName string) (time.Time, error) {
	r.mu.RLock()
	job, exists := r.jobs[taskName]
	r.mu.RUnlock()

	if !exists {
		return time.Time{}, fmt.Errorf("%w: no job for %s", ErrTaskNotFound, taskName)
	}

	return job.NextRun()
}

// GetAllNextRunTimes returns all scheduled run times by task
func (r *Runner) GetAllNextRunTimes() map[string]time.Time {
	result := make(map[string]time.Time)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, job := range r.jobs {
		nr, err := job.NextRun()
		if err != nil {
			log.Error().Err(err).Str("task", name).Msg("Error getting next run time")
			result[name] = time.Time{}
			continue
		}
		result[name] = nr
	}

	return result
}
