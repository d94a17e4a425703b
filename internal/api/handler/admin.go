package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/models"
	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/scheduler"
	"github.com/pubzy/giveaways/internal/storage"
	"github.com/pubzy/giveaways/internal/version"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 5 * time.Second

// AdminHandler serves the operational admin endpoints.
type AdminHandler struct {
	storage   *storage.Storage
	cache     *cache.Store
	scheduler *scheduler.Scheduler
	startedAt time.Time
}

// NewAdmin creates the admin handler. cache and sched may be nil.
func NewAdmin(st *storage.Storage, cacheStore *cache.Store, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{
		storage:   st,
		cache:     cacheStore,
		scheduler: sched,
		startedAt: time.Now(),
	}
}

// Healthz answers liveness probes.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Health reports backend reachability, cache usage, host memory and job state.
func (h *AdminHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Version:   version.Version,
		CheckedAt: time.Now().UTC().Format(storage.TimeFormat),
		Jobs:      []models.JobHealth{},
	}

	var g errgroup.Group
	g.Go(func() error {
		resp.Backend = componentHealth(h.storage.Ping(ctx))
		return nil
	})
	g.Go(func() error {
		resp.Cache = h.cacheHealth(ctx)
		return nil
	})
	g.Go(func() error {
		resp.Host = hostHealth(ctx)
		return nil
	})
	_ = g.Wait()

	if h.scheduler != nil {
		for _, job := range h.scheduler.Jobs() {
			resp.Jobs = append(resp.Jobs, models.JobHealth{
				ID:        job.ID,
				Status:    string(job.Status),
				LastRun:   formatTime(job.LastRun),
				NextRun:   formatTime(job.NextRun),
				RunCount:  job.RunCount,
				LastError: job.LastError,
			})
		}
	}

	status := http.StatusOK
	if !resp.Backend.OK {
		logError(c, "backend health check failed", "error", resp.Backend.Error)
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (h *AdminHandler) cacheHealth(ctx context.Context) models.CacheHealth {
	if h.cache == nil {
		return models.CacheHealth{
			ComponentHealth: models.ComponentHealth{OK: true},
			Type:            "disabled",
		}
	}
	return models.CacheHealth{
		ComponentHealth: componentHealth(h.cache.Ping(ctx)),
		Type:            string(h.cache.Type()),
		Entries:         h.cache.Len(),
		Stats:           h.cache.GetStats(),
	}
}

func hostHealth(ctx context.Context) models.HostHealth {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.HostHealth{Error: err.Error()}
	}
	return models.HostHealth{
		MemoryUsedPercent: vm.UsedPercent,
		MemoryTotal:       humanize.Bytes(vm.Total),
		MemoryAvailable:   humanize.Bytes(vm.Available),
	}
}

func componentHealth(err error) models.ComponentHealth {
	if err != nil {
		return models.ComponentHealth{Error: err.Error()}
	}
	return models.ComponentHealth{OK: true}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storage.TimeFormat)
}

// Jobs lists the background jobs.
func (h *AdminHandler) Jobs(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusOK, []scheduler.JobInfo{})
		return
	}
	c.JSON(http.StatusOK, h.scheduler.Jobs())
}

// RunJob triggers a background job immediately.
func (h *AdminHandler) RunJob(c *gin.Context) {
	id := c.Param("id")
	if h.scheduler == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Job not found"})
		return
	}
	if err := h.scheduler.RunJobNow(id); err != nil {
		logError(c, "failed to run job", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Failed to run job"})
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Job triggered successfully"})
}

// ClearCache drops every cached lookup.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	if h.cache != nil {
		if err := h.cache.Clear(c.Request.Context()); err != nil {
			logError(c, "failed to clear cache", "error", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to clear cache"})
			return
		}
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Cache cleared successfully"})
}
