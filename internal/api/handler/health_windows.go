//go:build windows

package handler

import "golang.org/x/sys/windows"

// getCPUUsage is not sampled on Windows.
func getCPUUsage() float64 {
	return 0
}

func getFreeDiskSpace(path string) int64 {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0
	}

	var freeBytes, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &freeBytes, &totalBytes, &totalFreeBytes); err != nil {
		return 0
	}
	return int64(freeBytes)
}
