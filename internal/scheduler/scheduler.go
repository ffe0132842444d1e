package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is a single delayed follow-up send. Jobs live in memory only: a
// restart before FireAt silently drops every pending job. That is an
// accepted limitation of this bot, not something the scheduler guards
// against.
type Job struct {
	FireAt   time.Time
	UserID   int64
	Username string
}

// SendFunc delivers a due job. Delivery failures are the func's problem
// to log; the scheduler never retries.
type SendFunc func(ctx context.Context, job Job)

// FollowUpScheduler queues single-shot delayed jobs and fires each one
// once its FireAt passes. A job that is discovered more than the misfire
// grace window past its FireAt (for example after a long suspension) is
// dropped with a log line instead of firing late.
type FollowUpScheduler struct {
	mu      sync.Mutex
	jobs    jobHeap
	wake    chan struct{}
	started bool
	grace   time.Duration
	send    SendFunc
}

func NewFollowUpScheduler(send SendFunc) *FollowUpScheduler {
	return &FollowUpScheduler{
		wake:  make(chan struct{}, 1),
		grace: time.Hour,
		send:  send,
	}
}

// Start launches the scheduler goroutine. Starting an already-running
// scheduler is a no-op.
func (s *FollowUpScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked(ctx)
}

func (s *FollowUpScheduler) startLocked(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true
	go s.run(ctx)
}

// Schedule enqueues one future send, starting the scheduler first if
// nobody has yet.
func (s *FollowUpScheduler) Schedule(job Job) {
	s.mu.Lock()
	s.startLocked(context.Background())
	heap.Push(&s.jobs, job)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many jobs are waiting to fire.
func (s *FollowUpScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Len()
}

func (s *FollowUpScheduler) run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		s.mu.Lock()
		wait := time.Hour
		if s.jobs.Len() > 0 {
			wait = time.Until(s.jobs[0].FireAt)
			if wait < 0 {
				wait = 0
			}
		}
		s.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-timer.C:
			s.fireDue(ctx)
		}
	}
}

// fireDue pops and delivers every job whose FireAt has passed.
func (s *FollowUpScheduler) fireDue(ctx context.Context) {
	now := time.Now()
	for {
		s.mu.Lock()
		if s.jobs.Len() == 0 || s.jobs[0].FireAt.After(now) {
			s.mu.Unlock()
			return
		}
		job := heap.Pop(&s.jobs).(Job)
		s.mu.Unlock()

		if now.Sub(job.FireAt) > s.grace {
			log.Warn().Int64("user_id", job.UserID).Time("fire_at", job.FireAt).
				Msg("follow-up missed its grace window, dropping")
			continue
		}
		s.send(ctx, job)
	}
}

type jobHeap []Job

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].FireAt.Before(h[j].FireAt) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)         { *h = append(*h, x.(Job)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	*h = old[:n-1]
	return job
}
