package observability

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is the snapshot served on /stats.
type ProcessStats struct {
	RSSMb      uint64  `json:"rss_mb"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	AllocMb    uint64  `json:"alloc_mb"`
	NumGC      uint32  `json:"num_gc"`
	UptimeSec  int64   `json:"uptime_sec"`
}

var startedAt = time.Now()

// Snapshot gathers process-level stats. Failures from the OS probe degrade
// to zero values instead of failing the endpoint.
func Snapshot() ProcessStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := ProcessStats{
		Goroutines: runtime.NumGoroutine(),
		AllocMb:    memStats.Alloc / 1024 / 1024,
		NumGC:      memStats.NumGC,
		UptimeSec:  int64(time.Since(startedAt).Seconds()),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats
	}
	if memInfo, err := proc.MemoryInfo(); err == nil {
		stats.RSSMb = memInfo.RSS / 1024 / 1024
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats
}
