package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wallfetch/api/internal/model"
)

// Progress is what a running job reports through
type Progress interface {
	SetMessage(msg string)
	SetOutputDirectory(dir string)
	Advance(completed int, msg string)
}

// JobRunner executes one download job and returns the number of saved wallpapers
type JobRunner func(ctx context.Context, jobID string, cfg *model.JobConfig, progress Progress) (int, error)

// DownloadService owns the single download job of the process
type DownloadService struct {
	run    JobRunner
	status *statusHolder
	now    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewDownloadService(run JobRunner, publishers ...StatusPublisher) *DownloadService {
	return &DownloadService{
		run:    run,
		status: newStatusHolder(publishers),
		now:    time.Now,
	}
}

// StartJob resets the status and launches the job in the background.
// It returns ErrAlreadyRunning without touching the status when a job is active.
func (s *DownloadService) StartJob(cfg *model.JobConfig) (*model.JobStatus, error) {
	startedAt := s.now()
	initial := model.JobStatus{
		JobID:     uuid.New().String(),
		IsRunning: true,
		Target:    cfg.TargetCount,
		Completed: 0,
		Message:   "Initializing download...",
		StartedAt: &startedAt,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// running flag and job handles change together
	s.mu.Lock()
	if !s.status.tryStart(initial) {
		s.mu.Unlock()
		cancel()
		return nil, ErrAlreadyRunning
	}
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.status.publishCurrent()
	go s.execute(ctx, cancel, done, initial.JobID, cfg)

	return &initial, nil
}

// Status returns a snapshot of the job status
func (s *DownloadService) Status() model.JobStatus {
	return s.status.snapshot()
}

// Cancel stops the running job at its next page or item boundary.
// It reports whether a job was running.
func (s *DownloadService) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil || !s.status.snapshot().IsRunning {
		return false
	}
	s.cancel()
	return true
}

// Wait blocks until the current job goroutine has returned
func (s *DownloadService) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Shutdown cancels the running job and waits for it or for ctx.
func (s *DownloadService) Shutdown(ctx context.Context) error {
	s.Cancel()

	finished := make(chan struct{})
	go func() {
		s.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RestoreStatus seeds the status after a restart. A job that was running
// when the process stopped is reported as interrupted.
func (s *DownloadService) RestoreStatus(st model.JobStatus) {
	s.status.update(func(cur *model.JobStatus) {
		if cur.IsRunning {
			return
		}
		if st.IsRunning {
			st.IsRunning = false
			st.Message = fmt.Sprintf("Interrupted by restart. Downloaded %d wallpapers.", st.Completed)
		}
		*cur = st
	})
}

func (s *DownloadService) execute(ctx context.Context, cancel context.CancelFunc, done chan struct{}, jobID string, cfg *model.JobConfig) {
	defer close(done)
	defer cancel()

	log.Printf("[JOB %s] started: source=%s target=%d pages=%d-%d", jobID, cfg.Source, cfg.TargetCount, cfg.StartPage, cfg.MaxPage)

	var (
		downloaded int
		err        error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		downloaded, err = s.run(ctx, jobID, cfg, &jobProgress{status: s.status})
	}()

	msg := TerminalMessage(downloaded, err)
	if err != nil {
		log.Printf("[JOB %s] finished: %v", jobID, err)
	} else {
		log.Printf("[JOB %s] finished: %d wallpapers", jobID, downloaded)
	}

	finishedAt := s.now()
	s.status.update(func(st *model.JobStatus) {
		st.IsRunning = false
		st.Message = msg
		st.FinishedAt = &finishedAt
	})
}

// TerminalMessage renders the final status message of a job
func TerminalMessage(downloaded int, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("Download complete. Downloaded %d wallpapers.", downloaded)
	case errors.Is(err, ErrNoMoreResults):
		return fmt.Sprintf("No more wallpapers found. Downloaded %d wallpapers.", downloaded)
	case errors.Is(err, context.Canceled):
		return fmt.Sprintf("Download cancelled. Downloaded %d wallpapers.", downloaded)
	default:
		return "Error: " + err.Error()
	}
}

type jobProgress struct {
	status *statusHolder
}

func (p *jobProgress) SetMessage(msg string) {
	p.status.setMessage(msg)
}

func (p *jobProgress) SetOutputDirectory(dir string) {
	p.status.update(func(st *model.JobStatus) {
		st.OutputDirectory = &dir
	})
}

func (p *jobProgress) Advance(completed int, msg string) {
	p.status.update(func(st *model.JobStatus) {
		st.Completed = completed
		st.Message = msg
	})
}
