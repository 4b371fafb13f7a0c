package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// MonitorResources takes a fresh snapshot of the process's CPU, memory, disk
// and status figures. The process table is consulted on every call, never
// cached, so readings are point-in-time. Fails when the OS no longer reports
// the pid (the record itself is left in place; there is no automatic reaping).
func (m *ProcessManager) MonitorResources(ctx context.Context, id string) (map[string]any, error) {
	m.mu.RLock()
	record, exists := m.processes[id]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unknown process: %s", id)
	}

	proc, err := process.NewProcessWithContext(ctx, int32(record.PID))
	if err != nil {
		return nil, fmt.Errorf("process %d is no longer visible: %w", record.PID, err)
	}

	cpu, err := proc.CPUPercentWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sample cpu for pid %d: %w", record.PID, err)
	}

	var rss, vms uint64
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		rss = mem.RSS
		vms = mem.VMS
	}

	// Disk counters are unsupported on some platforms; report zeros there.
	var readBytes, writtenBytes uint64
	if io, err := proc.IOCountersWithContext(ctx); err == nil && io != nil {
		readBytes = io.ReadBytes
		writtenBytes = io.WriteBytes
	}

	status := "unknown"
	if st, err := proc.StatusWithContext(ctx); err == nil && len(st) > 0 {
		status = strings.Join(st, ",")
	}

	var startTime, runTime int64
	if createMs, err := proc.CreateTimeWithContext(ctx); err == nil {
		startTime = createMs / 1000
		runTime = time.Now().Unix() - startTime
		if runTime < 0 {
			runTime = 0
		}
	}

	return map[string]any{
		"cpu_usage":      cpu,
		"memory_usage":   rss,
		"virtual_memory": vms,
		"disk_usage": map[string]any{
			"read_bytes":    readBytes,
			"written_bytes": writtenBytes,
		},
		"status":     status,
		"start_time": startTime,
		"run_time":   runTime,
	}, nil
}

// FindRunningApps scans the OS process table for processes that look like
// desktop applications. Best-effort discovery: the name/command-line
// heuristic can produce false positives and misses apps it has no signal
// for.
func (m *ProcessManager) FindRunningApps(ctx context.Context) ([]map[string]any, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan process table: %w", err)
	}

	apps := make([]map[string]any, 0)
	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cmdline, _ := proc.CmdlineWithContext(ctx)
		exe, _ := proc.ExeWithContext(ctx)

		if !looksLikeApp(name, cmdline, exe) {
			continue
		}
		apps = append(apps, map[string]any{
			"pid":     proc.Pid,
			"name":    name,
			"cmdline": cmdline,
			"path":    exe,
		})
	}
	return apps, nil
}

// looksLikeApp is the discovery heuristic: a "tauri" marker anywhere in the
// name or command line, or an executable path shaped like a bundled desktop
// app.
func looksLikeApp(name, cmdline, exe string) bool {
	if strings.Contains(strings.ToLower(name), "tauri") ||
		strings.Contains(strings.ToLower(cmdline), "tauri") {
		return true
	}
	lower := strings.ToLower(exe)
	if strings.HasSuffix(lower, ".exe") || strings.HasSuffix(lower, ".appimage") {
		return true
	}
	// macOS bundles: /Applications/Foo.app/Contents/MacOS/Foo
	for _, part := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if strings.HasSuffix(part, ".app") {
			return true
		}
	}
	return false
}
