// cmd/tools/worker-generator/main.go
//
// Scaffolds a new pipeline worker package from a registry entry so every
// worker starts from the same handler/models/config/test layout.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"lead-capture-workers/pkg/registry"
)

// WorkerData holds the values the templates interpolate.
type WorkerData struct {
	Name        string
	PackageName string
	TaskType    string
	Description string
	Stage       string
	Timeout     string
	ErrorCodes  []string
}

// packageNameFrom turns a task id like "normalize-lead" into "normalizelead".
func packageNameFrom(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

const handlerTemplate = `// internal/workers/leadpipeline/{{.Name}}/handler.go
package {{.PackageName}}

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/common/metrics"
)

const (
	TaskType = "{{.TaskType}}"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       workerLog,
		errorHandler: commonerrors.NewErrorHandler(workerLog),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, fmt.Errorf("unmarshal job variables: %w", err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO({{.Name}}): implement per the registry description: {{.Description}}
	return &Output{CorrelationID: input.CorrelationID}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*commonerrors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// Execute runs the worker logic directly. Tests only.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const modelsTemplate = `// internal/workers/leadpipeline/{{.Name}}/models.go
package {{.PackageName}}

type Input struct {
	CorrelationID string ` + "`json:\"correlationId\"`" + `
}

type Output struct {
	CorrelationID string ` + "`json:\"correlationId\"`" + `
}
`

const configTemplate = `// internal/workers/leadpipeline/{{.Name}}/config.go
package {{.PackageName}}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{.Timeout}},
	}
}
`

const testTemplate = `// internal/workers/leadpipeline/{{.Name}}/handler_test.go
package {{.PackageName}}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-capture-workers/internal/common/logger"
)

func TestExecute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger())

	output, err := h.Execute(context.Background(), &Input{CorrelationID: "gw_test"})
	require.NoError(t, err)
	assert.Equal(t, "gw_test", output.CorrelationID)
}
`

func main() {
	taskID := flag.String("id", "", "Task ID from the registry (e.g., normalize-lead)")
	registryPath := flag.String("registry", "configs/registry.json", "Path to registry file")
	outputDir := flag.String("output", "internal/workers/leadpipeline", "Directory to generate the worker package in")
	force := flag.Bool("force", false, "Overwrite an existing package")
	flag.Parse()

	if *taskID == "" {
		fmt.Println("Error: -id is required")
		flag.Usage()
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry: %v\n", err)
		os.Exit(1)
	}

	var task *registry.Task
	for i := range reg.Tasks {
		if reg.Tasks[i].ID == *taskID {
			task = &reg.Tasks[i]
			break
		}
	}
	if task == nil {
		fmt.Printf("Error: task %s not found in registry\n", *taskID)
		os.Exit(1)
	}

	timeout := task.Timeout
	if timeout == "" {
		timeout = "30s"
	}
	data := WorkerData{
		Name:        task.ID,
		PackageName: packageNameFrom(task.ID),
		TaskType:    task.TaskType,
		Description: task.Description,
		Stage:       task.Stage,
		Timeout:     goDuration(timeout),
		ErrorCodes:  task.ErrorCodes,
	}

	pkgDir := filepath.Join(*outputDir, task.ID)
	if _, err := os.Stat(pkgDir); err == nil && !*force {
		fmt.Printf("Error: %s already exists (use -force to overwrite)\n", pkgDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	files := map[string]string{
		"handler.go":      handlerTemplate,
		"models.go":       modelsTemplate,
		"config.go":       configTemplate,
		"handler_test.go": testTemplate,
	}

	for name, tmpl := range files {
		if err := renderFile(filepath.Join(pkgDir, name), name, tmpl, data); err != nil {
			fmt.Printf("Error generating %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generated worker package %s for task type %s\n", pkgDir, task.TaskType)
	fmt.Println("Next steps: fill in models.go and execute(), then register the worker in cmd/worker-manager.")
}

func renderFile(path, name, tmplText string, data WorkerData) error {
	tmpl, err := template.New(name).Parse(tmplText)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// goDuration converts a registry timeout like "30s" or "2m" into a Go
// duration expression for the generated config.
func goDuration(timeout string) string {
	switch {
	case strings.HasSuffix(timeout, "ms"):
		return strings.TrimSuffix(timeout, "ms") + " * time.Millisecond"
	case strings.HasSuffix(timeout, "s"):
		return strings.TrimSuffix(timeout, "s") + " * time.Second"
	case strings.HasSuffix(timeout, "m"):
		return strings.TrimSuffix(timeout, "m") + " * time.Minute"
	default:
		return "30 * time.Second"
	}
}
