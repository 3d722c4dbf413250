package metrics

import (
	"os"
	"runtime"
	"strings"
	"time"
)

var startTime = time.Now()

// RuntimeStats is a point-in-time snapshot of the running process
type RuntimeStats struct {
	Hostname         string `json:"hostname"`
	OS               string `json:"os"`
	Arch             string `json:"arch"`
	GoVersion        string `json:"go_version"`
	CPULogical       int    `json:"cpu_logical"`
	InContainer      bool   `json:"in_container"`
	ContainerRuntime string `json:"container_runtime,omitempty"`

	Goroutines     int    `json:"goroutines"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes   uint64 `json:"heap_sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

// Capture gathers runtime statistics for the current process
func Capture() *RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := &RuntimeStats{
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		GoVersion:      runtime.Version(),
		CPULogical:     runtime.NumCPU(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		NumGC:          mem.NumGC,
		UptimeSeconds:  int64(time.Since(startTime).Seconds()),
	}

	if hostname, err := os.Hostname(); err == nil {
		stats.Hostname = hostname
	} else {
		stats.Hostname = "unknown"
	}

	stats.InContainer, stats.ContainerRuntime = detectContainer()
	return stats
}

// detectContainer checks if running in a container
func detectContainer() (bool, string) {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "docker"
	}

	if _, err := os.Stat("/var/run/secrets/kubernetes.io"); err == nil {
		return true, "kubernetes"
	}

	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		content := string(data)
		if strings.Contains(content, "docker") {
			return true, "docker"
		}
		if strings.Contains(content, "kubepods") {
			return true, "kubernetes"
		}
		if strings.Contains(content, "containerd") {
			return true, "containerd"
		}
	}

	return false, ""
}
