package scheduler

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// JobStatus represents the status of a job.
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobFunc is the work of a job.
type JobFunc func(ctx context.Context) error

// Job describes a job to register.
type Job struct {
	ID          string
	Name        string
	Description string
	// Schedule is a human readable form of Definition.
	Schedule   string
	Definition gocron.JobDefinition
	Func       JobFunc
	// Singleton prevents overlapping runs.
	Singleton bool
	// RunOnStart triggers the job once when the scheduler starts.
	RunOnStart bool
}

// JobInfo is a snapshot of a job's state.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	Status      JobStatus `json:"status"`
	LastRun     time.Time `json:"lastRun"`
	NextRun     time.Time `json:"nextRun"`
	RunCount    int       `json:"runCount"`
	ErrorCount  int       `json:"errorCount"`
	LastError   string    `json:"lastError,omitempty"`
}

type job struct {
	spec   Job
	info   JobInfo
	gocron gocron.Job
}

// Scheduler runs background jobs.
type Scheduler struct {
	gocron gocron.Scheduler
	log    *logger
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a new scheduler.
func New() (*Scheduler, error) {
	l := newLogger()
	s, err := gocron.NewScheduler(gocron.WithLogger(l))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gocron: s,
		log:    l,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*job),
	}, nil
}

// AddJob registers j. IDs must be unique.
func (s *Scheduler) AddJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[j.ID]; exists {
		return fmt.Errorf("job %s already exists", j.ID)
	}

	var opts []gocron.JobOption
	if j.Singleton {
		opts = append(opts, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	}

	entry := &job{
		spec: j,
		info: JobInfo{
			ID:          j.ID,
			Name:        j.Name,
			Description: j.Description,
			Schedule:    j.Schedule,
			Status:      JobStatusScheduled,
		},
	}
	gj, err := s.gocron.NewJob(j.Definition, gocron.NewTask(s.wrap(entry)), opts...)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", j.ID, err)
	}
	entry.gocron = gj
	s.jobs[j.ID] = entry

	s.log.Info("Added job", "id", j.ID, "schedule", j.Schedule, "singleton", j.Singleton)
	return nil
}

// Start starts the scheduler and triggers jobs marked RunOnStart.
func (s *Scheduler) Start() {
	s.log.Info("Starting job scheduler")
	s.gocron.Start()

	s.mu.Lock()
	var instant []string
	for id, j := range s.jobs {
		if next, err := j.gocron.NextRun(); err == nil {
			j.info.NextRun = next
		}
		if j.spec.RunOnStart {
			instant = append(instant, id)
		}
	}
	s.mu.Unlock()

	for _, id := range instant {
		if err := s.RunJobNow(id); err != nil {
			s.log.Error("Failed to run job after start", "id", id, "error", err)
		}
	}
}

// Stop cancels running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// RunJobNow triggers a job outside its schedule.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.Lock()
	j, exists := s.jobs[id]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	s.log.Debug("Triggering job", "id", id)
	if err := j.gocron.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}
	return nil
}

// Jobs returns a snapshot of all jobs ordered by ID.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, id := range slices.Sorted(maps.Keys(s.jobs)) {
		infos = append(infos, s.jobs[id].info)
	}
	return infos
}

// wrap records run statistics around the job function.
func (s *Scheduler) wrap(j *job) func() {
	return func() {
		s.mu.Lock()
		j.info.Status = JobStatusRunning
		j.info.LastRun = time.Now()
		j.info.RunCount++
		s.mu.Unlock()

		s.log.Debug("Starting job", "id", j.spec.ID)
		err := j.spec.Func(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if next, nextErr := j.gocron.NextRun(); nextErr == nil {
			j.info.NextRun = next
		}
		if err != nil {
			s.log.Error("Job failed", "id", j.spec.ID, "error", err)
			j.info.Status = JobStatusFailed
			j.info.ErrorCount++
			j.info.LastError = err.Error()
			return
		}
		s.log.Debug("Job completed", "id", j.spec.ID)
		j.info.Status = JobStatusCompleted
		j.info.LastError = ""
	}
}
