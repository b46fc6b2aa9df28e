package plugin

import (
	"fmt"

	"github.com/hupe1980/pluginmesh/core"
)

// AddScheduledTask registers task with the shared scheduler under a
// plugin-local name. The binding tracks the returned handle so the task can
// be removed by name and so all of a plugin's tasks are bulk-cancelled during
// unload.
func (b *Base) AddScheduledTask(name, spec string, task func()) error {
	b.mu.Lock()
	if _, ok := b.tasks[name]; ok {
		b.mu.Unlock()
		return &DuplicateNameError{Plugin: b.identity.Name, Kind: "task", Name: name}
	}
	b.mu.Unlock()

	handle, err := b.scheduler.Schedule(spec, task)
	if err != nil {
		return fmt.Errorf("plugin %s: schedule task %q: %w", b.identity.Name, name, err)
	}

	b.mu.Lock()
	b.tasks[name] = handle
	b.mu.Unlock()
	return nil
}

// RemoveScheduledTask cancels the named task. Unknown names are a no-op.
func (b *Base) RemoveScheduledTask(name string) error {
	b.mu.Lock()
	handle, ok := b.tasks[name]
	delete(b.tasks, name)
	b.mu.Unlock()
	if !ok {
		return nil
	}
	if err := b.scheduler.Cancel(handle); err != nil {
		return fmt.Errorf("plugin %s: cancel task %q: %w", b.identity.Name, name, err)
	}
	return nil
}

// ScheduledTasks returns the names of the live scheduled tasks.
func (b *Base) ScheduledTasks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.tasks))
	for name := range b.tasks {
		names = append(names, name)
	}
	return names
}

// cancelScheduledTasks bulk-cancels everything this plugin registered with
// the scheduler. Called during unload before teardown hooks run.
func (b *Base) cancelScheduledTasks() {
	b.mu.Lock()
	tasks := b.tasks
	b.tasks = map[string]core.TaskHandle{}
	b.mu.Unlock()

	for name, handle := range tasks {
		if err := b.scheduler.Cancel(handle); err != nil {
			b.logger.Warn("failed to cancel scheduled task",
				"plugin", b.identity.Name, "task", name, "error", err)
		}
	}
}
