package service

import (
	"sync"

	"github.com/wallfetch/api/internal/model"
)

// StatusPublisher receives every status change of the download job
type StatusPublisher interface {
	PublishStatus(status model.JobStatus)
}

// statusHolder owns the single job status record. The job goroutine is the
// only writer; pollers read snapshots.
type statusHolder struct {
	mu         sync.RWMutex
	status     model.JobStatus
	publishers []StatusPublisher

	// publishMu keeps publishers seeing changes in the order they were made
	publishMu sync.Mutex
}

func newStatusHolder(publishers []StatusPublisher) *statusHolder {
	return &statusHolder{
		status:     model.JobStatus{Message: "Idle"},
		publishers: publishers,
	}
}

func (h *statusHolder) snapshot() model.JobStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// tryStart replaces the record wholesale unless a job is running. The caller
// publishes the new record with publishCurrent.
func (h *statusHolder) tryStart(initial model.JobStatus) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.IsRunning {
		return false
	}
	h.status = initial
	return true
}

func (h *statusHolder) update(fn func(st *model.JobStatus)) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	fn(&h.status)
	if h.status.Completed > h.status.Target {
		h.status.Completed = h.status.Target
	}
	snap := h.status
	h.mu.Unlock()

	h.publish(snap)
}

// publishCurrent sends the current record to every publisher
func (h *statusHolder) publishCurrent() {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()
	h.publish(h.snapshot())
}

func (h *statusHolder) setMessage(msg string) {
	h.update(func(st *model.JobStatus) {
		st.Message = msg
	})
}

func (h *statusHolder) publish(st model.JobStatus) {
	for _, p := range h.publishers {
		p.PublishStatus(st)
	}
}
