package api

import (
	"sync"
	"time"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
	"golang.org/x/sync/singleflight"
)

// DashboardStats holds counts reduced live from the task and bug tables.
// Nothing here is persisted; stored counters would drift from the source
// rows, so every figure is recomputed from them.
type DashboardStats struct {
	TotalTasks      int `json:"total_tasks"`
	TasksTodo       int `json:"tasks_todo"`
	TasksInProgress int `json:"tasks_in_progress"`
	TasksDone       int `json:"tasks_done"`

	TotalBugs    int `json:"total_bugs"`
	OpenBugs     int `json:"open_bugs"`
	ResolvedBugs int `json:"resolved_bugs"`
	CriticalBugs int `json:"critical_bugs"`
	MediumBugs   int `json:"medium_bugs"`
	LowBugs      int `json:"low_bugs"`

	ComputedAt time.Time `json:"computed_at"`
}

// statsCache provides a TTL-based cache for dashboard stats, with
// singleflight coalescing to prevent redundant concurrent reductions.
type statsCache struct {
	mu       sync.RWMutex
	stats    *DashboardStats
	loadedAt time.Time
	ttl      time.Duration
	group    singleflight.Group
	store    *db.Store
}

// newStatsCache creates a stats cache over the store with the given TTL.
func newStatsCache(store *db.Store, ttl time.Duration) *statsCache {
	return &statsCache{
		store: store,
		ttl:   ttl,
	}
}

// Stats returns cached dashboard stats or recomputes them. Concurrent
// callers share a single reduction via singleflight.
func (c *statsCache) Stats() (*DashboardStats, error) {
	// Fast path: check if cache is valid
	c.mu.RLock()
	if c.stats != nil && time.Since(c.loadedAt) < c.ttl {
		stats := c.stats
		c.mu.RUnlock()
		return stats, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do("load", func() (any, error) {
		// Double-check cache after acquiring singleflight slot
		c.mu.RLock()
		if c.stats != nil && time.Since(c.loadedAt) < c.ttl {
			stats := c.stats
			c.mu.RUnlock()
			return stats, nil
		}
		c.mu.RUnlock()

		stats, err := c.compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.stats = stats
		c.loadedAt = time.Now()
		c.mu.Unlock()

		return stats, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*DashboardStats), nil
}

func (c *statsCache) compute() (*DashboardStats, error) {
	tasks, err := c.store.ListTasks()
	if err != nil {
		return nil, err
	}
	bugs, err := c.store.ListBugs()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{ComputedAt: time.Now()}
	stats.TotalTasks = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case tracker.TaskTodo:
			stats.TasksTodo++
		case tracker.TaskInProgress:
			stats.TasksInProgress++
		case tracker.TaskDone:
			stats.TasksDone++
		}
	}

	stats.TotalBugs = len(bugs)
	for _, b := range bugs {
		if b.Status != tracker.BugResolved {
			stats.OpenBugs++
		} else {
			stats.ResolvedBugs++
		}
		switch b.Severity {
		case tracker.SeverityCritical:
			stats.CriticalBugs++
		case tracker.SeverityMedium:
			stats.MediumBugs++
		case tracker.SeverityLow:
			stats.LowBugs++
		}
	}

	return stats, nil
}

// Invalidate clears the cache, forcing the next Stats() call to recompute.
func (c *statsCache) Invalidate() {
	c.mu.Lock()
	c.stats = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}
