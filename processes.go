package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessRecord tracks one launched or attached application process. Handle
// is nil for attached records: they can be monitored, but the server owns
// neither their streams nor their lifetime, so their log queue stays empty
// and stop_app refuses to signal them.
type ProcessRecord struct {
	ID        string
	PID       int
	Path      string
	Args      []string
	StartTime time.Time
	Attached  bool
	Handle    *exec.Cmd // nil when attached

	Logs *LogQueue

	cancelLogs context.CancelFunc
	logsDone   chan struct{}
}

// ProcessManager owns the registry of tracked processes. All mutation goes
// through its lock: queries take the read side, launch/attach/stop take the
// write side. Session ids are fresh UUIDs and are never reused.
type ProcessManager struct {
	mu        sync.RWMutex
	processes map[string]*ProcessRecord
}

func NewProcessManager() *ProcessManager {
	return &ProcessManager{
		processes: make(map[string]*ProcessRecord),
	}
}

// Launch starts appPath with the given arguments, stdout/stderr piped into
// the log multiplexer and stdin suppressed. Each launch is atomic with
// respect to id generation and registry insertion.
func (m *ProcessManager) Launch(ctx context.Context, appPath string, args []string) (string, error) {
	if _, err := os.Stat(appPath); err != nil {
		return "", fmt.Errorf("app path does not exist: %s", appPath)
	}

	cmd := exec.Command(appPath, args...)
	configureProcessGroup(cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to capture stdout: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to capture stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to launch app: %w", err)
	}

	record := &ProcessRecord{
		ID:        uuid.New().String(),
		PID:       cmd.Process.Pid,
		Path:      appPath,
		Args:      args,
		StartTime: time.Now(),
		Handle:    cmd,
		Logs:      NewLogQueue(DefaultLogQueueCapacity),
		logsDone:  make(chan struct{}),
	}

	logCtx, cancel := context.WithCancel(context.Background())
	record.cancelLogs = cancel
	go multiplexLogs(logCtx, cmd, stdoutPipe, stderrPipe, record.Logs, record.logsDone)

	m.mu.Lock()
	m.processes[record.ID] = record
	m.mu.Unlock()

	LogInfo("Process", "App launched",
		fmt.Sprintf("ID: %s, PID: %d, Path: %s", record.ID, record.PID, appPath))
	return record.ID, nil
}

// Attach registers an externally-started pid for monitoring. The record has
// no handle and no piped streams; its log queue stays empty for its whole
// tracked lifetime.
func (m *ProcessManager) Attach(ctx context.Context, pid int) (string, error) {
	exists, err := process.PidExistsWithContext(ctx, int32(pid))
	if err != nil {
		return "", fmt.Errorf("failed to inspect pid %d: %w", pid, err)
	}
	if !exists {
		return "", fmt.Errorf("no running process with pid %d", pid)
	}

	record := &ProcessRecord{
		ID:        uuid.New().String(),
		PID:       pid,
		StartTime: time.Now(),
		Attached:  true,
		Logs:      NewLogQueue(DefaultLogQueueCapacity),
		logsDone:  make(chan struct{}),
	}

	// Permanently idle log task: there are no streams to drain, but the
	// cancel-once-at-removal contract is the same as for launched records.
	logCtx, cancel := context.WithCancel(context.Background())
	record.cancelLogs = cancel
	go func() {
		<-logCtx.Done()
		close(record.logsDone)
	}()

	m.mu.Lock()
	m.processes[record.ID] = record
	m.mu.Unlock()

	LogInfo("Process", "Attached to app", fmt.Sprintf("ID: %s, PID: %d", record.ID, pid))
	return record.ID, nil
}

// Stop terminates a launched process and removes its record. Attached
// records fail before removal: the server never signals a process it does
// not own, and a failed stop must not drop tracking.
func (m *ProcessManager) Stop(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.processes[id]
	if !exists {
		return fmt.Errorf("unknown process: %s", id)
	}
	if record.Handle == nil {
		return fmt.Errorf("cannot stop externally-owned process %s (attached, not launched)", id)
	}

	// SIGTERM the whole group, fall back to a direct kill. Errors here mean
	// the process is already gone, which still counts as a successful stop.
	if err := terminateProcessGroup(record.PID); err != nil {
		if killErr := record.Handle.Process.Kill(); killErr != nil {
			LogDebug("Process", "Kill after failed terminate",
				fmt.Sprintf("ID: %s, err: %v", id, killErr))
		}
	}

	// Await exit: the log task finishes after both streams hit EOF and the
	// child has been reaped. Escalate to SIGKILL if SIGTERM is ignored.
	select {
	case <-record.logsDone:
	case <-time.After(5 * time.Second):
		if err := forceKillProcessGroup(record.PID); err != nil {
			if killErr := record.Handle.Process.Kill(); killErr != nil {
				LogDebug("Process", "Force kill fallback failed",
					fmt.Sprintf("ID: %s, err: %v", id, killErr))
			}
		}
		<-record.logsDone
	}

	record.cancelLogs()
	delete(m.processes, id)

	LogInfo("Process", "App stopped", fmt.Sprintf("ID: %s, PID: %d", id, record.PID))
	return nil
}

// Logs drains everything currently buffered for the process. The read is
// destructive; with limit > 0 only the most recently appended lines are
// returned (the rest of the drained batch is discarded).
func (m *ProcessManager) Logs(id string, limit int) ([]string, int64, error) {
	m.mu.RLock()
	record, exists := m.processes[id]
	m.mu.RUnlock()
	if !exists {
		return nil, 0, fmt.Errorf("unknown process: %s", id)
	}

	lines, dropped := record.Logs.Drain()
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, dropped, nil
}

// Record returns the tracked record for a session id.
func (m *ProcessManager) Record(id string) (*ProcessRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, exists := m.processes[id]
	return record, exists
}

// Count returns the number of tracked processes.
func (m *ProcessManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.processes)
}

// StopAll sweeps every launched process at shutdown: SIGTERM first, a grace
// period, then SIGKILL for anything still running. Attached records are left
// alone, the server does not own them.
func (m *ProcessManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var owned []*ProcessRecord
	for _, record := range m.processes {
		if record.Handle != nil {
			owned = append(owned, record)
		}
	}
	if len(owned) == 0 {
		return
	}

	LogInfo("Process", "Stopping tracked processes", fmt.Sprintf("Count: %d", len(owned)))

	for _, record := range owned {
		if err := terminateProcessGroup(record.PID); err != nil {
			if killErr := record.Handle.Process.Kill(); killErr != nil {
				LogDebug("Process", "Terminate during shutdown failed",
					fmt.Sprintf("ID: %s, err: %v", record.ID, killErr))
			}
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for _, record := range owned {
		select {
		case <-record.logsDone:
			continue
		case <-time.After(time.Until(deadline)):
		}
		if err := forceKillProcessGroup(record.PID); err != nil {
			if killErr := record.Handle.Process.Kill(); killErr != nil {
				LogDebug("Process", "Force kill during shutdown failed",
					fmt.Sprintf("ID: %s, err: %v", record.ID, killErr))
			}
		}
		<-record.logsDone
	}

	for _, record := range owned {
		record.cancelLogs()
		delete(m.processes, record.ID)
	}
}

// multiplexLogs drains both child streams concurrently, tagging each line
// with its origin. Per-stream ordering is preserved; interleaving between
// the two streams is not. The child is reaped once both streams hit EOF.
func multiplexLogs(ctx context.Context, cmd *exec.Cmd, stdout, stderr io.ReadCloser, queue *LogQueue, done chan struct{}) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		drainStream(ctx, stdout, "[stdout] ", queue)
	}()
	go func() {
		defer wg.Done()
		drainStream(ctx, stderr, "[stderr] ", queue)
	}()
	wg.Wait()

	// Reap after the pipes are fully drained; Wait closes them otherwise.
	if err := cmd.Wait(); err != nil {
		LogDebug("Process", "Child exited", fmt.Sprintf("PID: %d, err: %v", cmd.Process.Pid, err))
	}
	close(done)
}

func drainStream(ctx context.Context, reader io.ReadCloser, tag string, queue *LogQueue) {
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		queue.Push(tag + scanner.Text())
	}
	// A line over the scanner's max buffer ends capture for this stream;
	// leave a trace instead of vanishing silently.
	if err := scanner.Err(); err != nil {
		LogDebug("Process", "Log stream ended with error", tag+err.Error())
	}
}
