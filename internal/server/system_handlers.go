package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/aristath/etfcast/internal/database"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	cacheDB     *database.DB
	simCache    *projection.Cache
	scheduler   *scheduler.Scheduler

	mu   sync.RWMutex
	jobs map[string]scheduler.Job
}

// SystemStatusResponse represents the system status snapshot
type SystemStatusResponse struct {
	Status          string                `json:"status"`
	UptimeSeconds   int64                 `json:"uptime_seconds"`
	CPUPercent      float64               `json:"cpu_percent"`
	RAMPercent      float64               `json:"ram_percent"`
	Goroutines      int                   `json:"goroutines"`
	CacheDatabase   string                `json:"cache_database"`
	SimulationCache projection.CacheStats `json:"simulation_cache"`
	Jobs            []scheduler.JobStatus `json:"jobs"`
}

// DiskUsageResponse represents data directory usage
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	cacheDB *database.DB,
	simCache *projection.Cache,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		cacheDB:     cacheDB,
		simCache:    simCache,
		scheduler:   sched,
		jobs:        make(map[string]scheduler.Job),
	}
}

// SetJobs registers job references for manual triggering
func (h *SystemHandlers) SetJobs(jobs ...scheduler.Job) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, job := range jobs {
		h.jobs[job.Name()] = job
	}
}

// HandleSystemStatus returns uptime, host load and cache state
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, ramPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:          "healthy",
		UptimeSeconds:   int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:      cpuPercent,
		RAMPercent:      ramPercent,
		Goroutines:      runtime.NumGoroutine(),
		CacheDatabase:   "disabled",
		SimulationCache: h.simCache.Stats(),
		Jobs:            []scheduler.JobStatus{},
	}

	if h.cacheDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.cacheDB.QuickCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Cache database check failed")
			response.Status = "degraded"
			response.CacheDatabase = "error: " + err.Error()
		} else {
			response.CacheDatabase = "ok"
		}
	}

	if h.scheduler != nil {
		response.Jobs = h.scheduler.Jobs()
	}

	h.writeJSON(w, http.StatusOK, envelope(response))
}

// HandleDiskUsage returns disk usage statistics
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	h.writeJSON(w, http.StatusOK, envelope(DiskUsageResponse{
		DataDirMB: h.getDirSize(h.dataDir),
	}))
}

// HandleSimulationCache lists cached simulation keys, oldest first
func (h *SystemHandlers) HandleSimulationCache(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"stats": h.simCache.Stats(),
		"keys":  h.simCache.Keys(),
	}))
}

// HandleJobsStatus lists scheduled jobs and their last outcome
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting jobs status")

	jobs := []scheduler.JobStatus{}
	if h.scheduler != nil {
		jobs = h.scheduler.Jobs()
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"total_jobs": len(jobs),
		"jobs":       jobs,
	}))
}

// HandleTriggerJob runs a registered job immediately
// POST /api/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	h.mu.RLock()
	job, ok := h.jobs[name]
	h.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown job "+name, http.StatusNotFound)
		return
	}

	var err error
	if h.scheduler != nil {
		err = h.scheduler.RunNow(job)
	} else {
		err = job.Run()
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.writeJSON(w, status, envelope(map[string]interface{}{
			"job":    name,
			"status": "failed",
			"error":  err.Error(),
		}))
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"job":    name,
		"status": "completed",
	}))
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}

	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages over a short window
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
