// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*TaskRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TaskRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes the registry back with stable indentation so diffs
// stay reviewable.
func SaveRegistry(reg *TaskRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the structural invariants ops tooling relies on: unique
// ids, and every task naming its type and stage.
func (r *TaskRegistry) Validate() error {
	if len(r.Tasks) == 0 {
		return fmt.Errorf("registry contains no tasks")
	}
	ids := make(map[string]bool)
	for _, task := range r.Tasks {
		if task.ID == "" {
			return fmt.Errorf("task missing required field: id")
		}
		if ids[task.ID] {
			return fmt.Errorf("duplicate task id: %s", task.ID)
		}
		ids[task.ID] = true
		if task.TaskType == "" {
			return fmt.Errorf("task %s missing required field: taskType", task.ID)
		}
		if task.Stage == "" {
			return fmt.Errorf("task %s missing required field: stage", task.ID)
		}
	}
	return nil
}

// Find returns the task with the given task type, or nil.
func (r *TaskRegistry) Find(taskType string) *Task {
	for i := range r.Tasks {
		if r.Tasks[i].TaskType == taskType {
			return &r.Tasks[i]
		}
	}
	return nil
}
