package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	minWorkers = 2
	maxWorkers = 8
)

// DefaultWorkers sizes the preview pool from the logical CPU count. Preview
// rendering is cheap, so more than a handful of workers only adds contention.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	// leave one core to the interactive loop
	n--
	if n < minWorkers {
		n = minWorkers
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

// MemoryReport is a one-line summary of system memory for the stats output.
func MemoryReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("memory: unavailable (%v)", err)
	}
	return fmt.Sprintf("memory: %.1f%% used, %d MiB available of %d MiB",
		vm.UsedPercent, vm.Available>>20, vm.Total>>20)
}

// FindLatestScript returns the most recently modified .funscript in dir.
func FindLatestScript(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".funscript") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no .funscript files found in %s", dir)
	}

	return latestFile, nil
}
