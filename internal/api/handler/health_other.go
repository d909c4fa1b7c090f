//go:build !linux && !darwin && !windows

package handler

func getCPUUsage() float64 {
	return 0
}

func getFreeDiskSpace(path string) int64 {
	return 0
}
