// Package mcp provides an MCP (Model Context Protocol) server that exposes
// a taskboard session as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// Server exposes one board session as MCP tools. Tool handlers may run
// concurrently, so every access to the session holds mu.
type Server struct {
	server      *gomcp.Server
	mu          sync.Mutex
	session     *core.Session
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server around session. metricsCalc may be nil
// when the event log is disabled.
func NewServer(session *core.Session, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		session:     session,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "taskboard", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task identifier"`
}

type listTasksInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter tasks by status (today, pending, overdue); all tasks when empty"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type createTaskInput struct {
	Title       string `json:"title" jsonschema:"required,the task title"`
	Description string `json:"description,omitempty" jsonschema:"free text description"`
	Priority    string `json:"priority,omitempty" jsonschema:"low, medium or high. Defaults to low."`
}

type updateTaskInput struct {
	TaskID      string  `json:"task_id" jsonschema:"required,the task identifier"`
	Title       *string `json:"title,omitempty" jsonschema:"new title; unchanged when omitted"`
	Description *string `json:"description,omitempty" jsonschema:"new description; unchanged when omitted"`
	Priority    string  `json:"priority,omitempty" jsonschema:"new priority (low, medium, high); unchanged when omitted"`
}

type deleteTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task identifier"`
}

type moveTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task identifier"`
	Status string `json:"status" jsonschema:"required,the target bucket (pending or overdue)"`
}

type resultOutput struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated int            `json:"tasks_created"`
	TasksUpdated int            `json:"tasks_updated"`
	TasksDeleted int            `json:"tasks_deleted"`
	TasksMoved   int            `json:"tasks_moved"`
	MovesTo      map[string]int `json:"moves_to"`
	Sessions     int            `json:"sessions"`
	EventCount   int            `json:"event_count"`
	OldestEvent  string         `json:"oldest_event,omitempty"`
	NewestEvent  string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks on the board in creation order, optionally filtered by status.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a single task by ID.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a task. New tasks always start in the today bucket.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Edit the title, description or priority of a task. Status is not changed.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task by ID.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "move_task",
		Description: "Move a task to the pending or overdue bucket. Tasks cannot be moved back to today.",
	}, s.handleMoveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get board activity counters derived from the event log.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []models.Task
	if input.Status == "" {
		tasks = s.session.Store().All()
	} else {
		status, err := models.ParseStatus(input.Status)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{Tasks: []taskOutput{}}, nil
		}
		tasks = s.session.Store().FilterByStatus(status)
	}

	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.session.Store().Get(input.TaskID)
	if !ok {
		return errorResult(notFound(input.TaskID)), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	priority := models.PriorityLow
	if input.Priority != "" {
		p, err := models.ParsePriority(input.Priority)
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		priority = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.CancelEdit()
	s.session.SetTitle(input.Title)
	s.session.SetDescription(input.Description)
	s.session.SetPriority(priority)
	res, err := s.session.Commit()
	if err != nil {
		return errorResult(fmt.Sprintf("creating task: %s", err)), taskOutput{}, nil
	}
	return nil, taskToOutput(res.Task), nil
}

func (s *Server) handleUpdateTask(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}
	var priority models.Priority
	if input.Priority != "" {
		p, err := models.ParsePriority(input.Priority)
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		priority = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.session.Store().Get(input.TaskID)
	if !ok {
		return errorResult(notFound(input.TaskID)), taskOutput{}, nil
	}

	s.session.BeginEdit(task)
	if input.Title != nil {
		s.session.SetTitle(*input.Title)
	}
	if input.Description != nil {
		s.session.SetDescription(*input.Description)
	}
	if priority != "" {
		s.session.SetPriority(priority)
	}
	res, err := s.session.Commit()
	if err != nil {
		return errorResult(fmt.Sprintf("updating task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	if res.Result == storage.NotFound {
		return errorResult(notFound(input.TaskID)), taskOutput{}, nil
	}
	return nil, taskToOutput(res.Task), nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input deleteTaskInput) (*gomcp.CallToolResult, resultOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), resultOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.session.Delete(input.TaskID)
	if res == storage.NotFound {
		return errorResult(notFound(input.TaskID)), resultOutput{Result: res.String()}, nil
	}
	return nil, resultOutput{
		Result:  res.String(),
		Message: fmt.Sprintf("Task %s deleted", input.TaskID),
	}, nil
}

func (s *Server) handleMoveTask(_ context.Context, _ *gomcp.CallToolRequest, input moveTaskInput) (*gomcp.CallToolResult, resultOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), resultOutput{}, nil
	}
	if input.Status == "" {
		return errorResult("status is required"), resultOutput{}, nil
	}
	status, err := models.ParseStatus(input.Status)
	if err != nil {
		return errorResult(err.Error()), resultOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.session.Store().Get(input.TaskID)
	if !ok {
		return errorResult(notFound(input.TaskID)), resultOutput{Result: storage.NotFound.String()}, nil
	}

	s.session.BeginMove(task)
	res, err := s.session.Move(status)
	if err != nil {
		s.session.CancelMove()
		return errorResult(err.Error()), resultOutput{}, nil
	}
	return nil, resultOutput{
		Result:  res.String(),
		Message: fmt.Sprintf("Task %s moved from %s to %s", input.TaskID, task.Status, status),
	}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := observability.ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(observability.EventFilter{Since: &sinceTime})
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated: metrics.TasksCreated,
		TasksUpdated: metrics.TasksUpdated,
		TasksDeleted: metrics.TasksDeleted,
		TasksMoved:   metrics.TasksMoved,
		MovesTo:      metrics.MovesTo,
		Sessions:     metrics.Sessions,
		EventCount:   metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t models.Task) taskOutput {
	return taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
	}
}

func notFound(id string) string {
	return fmt.Sprintf("task %s not found", id)
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{MovesTo: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
