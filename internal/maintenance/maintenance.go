// Package maintenance runs the periodic credential hygiene sweeps
package maintenance

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Task names used by the standard sweeps
const (
	TaskSessions    = "expired_sessions"
	TaskResetTokens = "expired_reset_tokens"
	TaskAuditLogs   = "old_audit_logs"
)

// Task is a single maintenance sweep. Run returns how many rows it touched.
type Task interface {
	// Name returns the unique name of the task
	Name() string
	// Run executes one sweep
	Run(ctx context.Context) (int, error)
}

// TaskFunc adapts a plain function to the Task interface
type TaskFunc struct {
	TaskName string
	Func     func(ctx context.Context) (int, error)
}

func (t TaskFunc) Name() string { return t.TaskName }

func (t TaskFunc) Run(ctx context.Context) (int, error) { return t.Func(ctx) }

// Manager handles the scheduling and execution of maintenance tasks.
// Every task shares one cron schedule; the sweeps are cheap enough that
// splitting schedules buys nothing.
type Manager struct {
	tasks    []Task
	schedule string
	cron     *cron.Cron
}

// NewManager creates a new maintenance manager
func NewManager(schedule string) *Manager {
	// Create a new cron scheduler with seconds disabled
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	return &Manager{
		tasks:    make([]Task, 0),
		schedule: schedule,
		cron:     c,
	}
}

// RegisterTask adds a task to the manager
func (m *Manager) RegisterTask(t Task) {
	m.tasks = append(m.tasks, t)
}

// RunAll executes every registered task once, immediately. Used by the
// on-demand admin endpoint. Returns per-task row counts by task name.
func (m *Manager) RunAll(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(m.tasks))
	for _, t := range m.tasks {
		n, err := t.Run(ctx)
		if err != nil {
			return counts, fmt.Errorf("task %s failed: %w", t.Name(), err)
		}
		counts[t.Name()] = n
	}
	return counts, nil
}

// StartScheduler runs every registered task on the configured schedule
// until the context is cancelled
func (m *Manager) StartScheduler(ctx context.Context) error {
	if m.schedule == "" {
		return fmt.Errorf("no maintenance schedule configured")
	}

	for _, t := range m.tasks {
		// Create a closure to capture the task
		task := t
		_, err := m.cron.AddFunc(m.schedule, func() {
			n, err := task.Run(ctx)
			if err != nil {
				log.Printf("Error running maintenance task %s: %v", task.Name(), err)
				return
			}
			if n > 0 {
				log.Printf("Maintenance task %s touched %d rows", task.Name(), n)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", t.Name(), err)
		}

		log.Printf("Scheduled maintenance task %s with schedule %s", t.Name(), m.schedule)
	}

	m.cron.Start()
	log.Println("Maintenance scheduler started")

	// Wait for context cancellation
	<-ctx.Done()
	log.Println("Stopping maintenance scheduler...")
	m.cron.Stop()

	return nil
}
