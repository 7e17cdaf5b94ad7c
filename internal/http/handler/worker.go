package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CycleReporter is satisfied by *worker.Worker.
type CycleReporter interface {
	LastCycle() time.Time
}

// ProfileTrigger is satisfied by *worker.Scheduler.
type ProfileTrigger interface {
	TriggerProfiles()
}

// ClassifierCaches is satisfied by *classify.Pipeline.
type ClassifierCaches interface {
	Reload()
	CacheErrors() map[string]string
}

// WorkerHandler exposes the worker's health and manual job triggers.
type WorkerHandler struct {
	cycles     CycleReporter
	profiles   ProfileTrigger
	caches     ClassifierCaches
	staleAfter time.Duration
	now        func() time.Time
}

// NewWorkerHandler builds the handler. caches may be nil.
func NewWorkerHandler(cycles CycleReporter, profiles ProfileTrigger, caches ClassifierCaches, staleAfter time.Duration) *WorkerHandler {
	if staleAfter <= 0 {
		staleAfter = time.Minute
	}
	return &WorkerHandler{
		cycles:     cycles,
		profiles:   profiles,
		caches:     caches,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (h *WorkerHandler) Health(c *gin.Context) {
	last := h.cycles.LastCycle()
	if last.IsZero() {
		c.JSON(http.StatusOK, gin.H{"status": "starting", "service": "worker"})
		return
	}

	age := h.now().Sub(last)
	body := gin.H{
		"service":         "worker",
		"last_cycle_at":   last.UTC().Format(time.RFC3339),
		"last_cycle_secs": int(age.Seconds()),
	}
	if age > h.staleAfter {
		body["status"] = "stalled"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "healthy"
	// Stale caches still serve their last good value, so they only degrade.
	if h.caches != nil {
		if errs := h.caches.CacheErrors(); len(errs) > 0 {
			body["status"] = "degraded"
			body["cache_errors"] = errs
		}
	}
	c.JSON(http.StatusOK, body)
}

// RunLearning reloads the classifier's learned rules and starts a profile
// recompute in the background.
func (h *WorkerHandler) RunLearning(c *gin.Context) {
	if h.caches != nil {
		h.caches.Reload()
	}
	h.profiles.TriggerProfiles()
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "status": "started"})
}
