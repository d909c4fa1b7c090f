//go:build linux || darwin

package handler

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// cpuSampler remembers the previous sample so each call reports the
// usage since the last one.
var cpuSampler struct {
	mu       sync.Mutex
	cpu      time.Duration
	wall     time.Time
	hasPrior bool
}

// getCPUUsage returns this process's CPU usage since the previous call as a
// percentage of one core, capped at 100. The first call returns 0.
func getCPUUsage() float64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	used := time.Duration(ru.Utime.Nano()) + time.Duration(ru.Stime.Nano())
	now := time.Now()

	cpuSampler.mu.Lock()
	defer cpuSampler.mu.Unlock()

	prevCPU, prevWall, ok := cpuSampler.cpu, cpuSampler.wall, cpuSampler.hasPrior
	cpuSampler.cpu, cpuSampler.wall, cpuSampler.hasPrior = used, now, true
	if !ok {
		return 0
	}

	elapsed := now.Sub(prevWall)
	if elapsed <= 0 {
		return 0
	}
	pct := float64(used-prevCPU) / float64(elapsed) * 100
	switch {
	case pct > 100:
		return 100
	case pct < 0:
		return 0
	}
	return pct
}

// getFreeDiskSpace returns the bytes available to this process under path,
// or 0 when path is not a readable directory.
func getFreeDiskSpace(path string) int64 {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return 0
	}
	return int64(fs.Bavail) * int64(fs.Bsize)
}
