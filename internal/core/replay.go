package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/valter-silva-au/taskboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// Replay script actions. Each maps to one Session operation.
const (
	ActionSet        = "set"
	ActionCommit     = "commit"
	ActionEdit       = "edit"
	ActionCancelEdit = "cancel_edit"
	ActionMoveStart  = "move_start"
	ActionMove       = "move"
	ActionCancelMove = "cancel_move"
	ActionDelete     = "delete"
	ActionTab        = "tab"
)

const scriptSchemaURL = "replay-script.schema.json"

// scriptSchema describes the shape of a replay script. Enum values for
// priority and status are checked by the models parsers so that case is
// handled the same way as interactive input.
const scriptSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["steps"],
  "additionalProperties": false,
  "properties": {
    "tab": {"type": "string"},
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["action"],
        "additionalProperties": false,
        "properties": {
          "action": {
            "enum": ["set", "commit", "edit", "cancel_edit", "move_start", "move", "cancel_move", "delete", "tab"]
          },
          "title": {"type": "string"},
          "description": {"type": "string"},
          "priority": {"type": "string"},
          "as": {"type": "string", "minLength": 1},
          "task": {"type": "string", "minLength": 1},
          "status": {"type": "string"}
        },
        "allOf": [
          {
            "if": {"properties": {"action": {"enum": ["edit", "move_start", "delete"]}}},
            "then": {"required": ["task"]}
          },
          {
            "if": {"properties": {"action": {"enum": ["move", "tab"]}}},
            "then": {"required": ["status"]}
          }
        ]
      }
    }
  }
}`

// Script is a recorded sequence of user actions.
type Script struct {
	Tab   string       `yaml:"tab,omitempty"`
	Steps []ScriptStep `yaml:"steps"`
}

// ScriptStep is one action. Title and Description are pointers so that a
// set step can stage an explicit empty string.
type ScriptStep struct {
	Action      string  `yaml:"action"`
	Title       *string `yaml:"title,omitempty"`
	Description *string `yaml:"description,omitempty"`
	Priority    string  `yaml:"priority,omitempty"`
	As          string  `yaml:"as,omitempty"`
	Task        string  `yaml:"task,omitempty"`
	Status      string  `yaml:"status,omitempty"`
}

// ScriptValidationError reports a schema violation at a document path.
type ScriptValidationError struct {
	Path    string
	Message string
}

func (e *ScriptValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ScriptStepError reports a failure while applying a step.
type ScriptStepError struct {
	Step   int // 1-based
	Action string
	Err    error
}

func (e *ScriptStepError) Error() string {
	return fmt.Sprintf("step %d (%s): %s", e.Step, e.Action, e.Err)
}

func (e *ScriptStepError) Unwrap() error {
	return e.Err
}

// Snapshot is the state of every bucket after a replay.
type Snapshot struct {
	ActiveTab models.TaskStatus `yaml:"active_tab" json:"active_tab"`
	Today     []models.Task     `yaml:"today" json:"today"`
	Pending   []models.Task     `yaml:"pending" json:"pending"`
	Overdue   []models.Task     `yaml:"overdue" json:"overdue"`
}

// SnapshotOf captures the current buckets of s.
func SnapshotOf(s *Session) Snapshot {
	b := s.Buckets()
	return Snapshot{
		ActiveTab: s.ActiveTab(),
		Today:     b[models.StatusToday],
		Pending:   b[models.StatusPending],
		Overdue:   b[models.StatusOverdue],
	}
}

// ParseScript validates data against the replay schema and decodes it.
func ParseScript(data []byte) (*Script, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing script YAML: %w", err)
	}

	if err := validateScript(raw); err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	return &script, nil
}

func validateScript(raw any) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(scriptSchemaURL, strings.NewReader(scriptSchema)); err != nil {
		return fmt.Errorf("loading script schema: %w", err)
	}
	schema, err := compiler.Compile(scriptSchemaURL)
	if err != nil {
		return fmt.Errorf("compiling script schema: %w", err)
	}

	// Round-trip through JSON so the validator sees plain JSON types.
	doc, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting script for validation: %w", err)
	}
	var obj any
	if err := json.Unmarshal(doc, &obj); err != nil {
		return fmt.Errorf("converting script for validation: %w", err)
	}

	if err := schema.Validate(obj); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return firstLeafError(ve)
		}
		return &ScriptValidationError{Message: err.Error()}
	}
	return nil
}

// firstLeafError walks to the deepest cause, which carries the useful message.
func firstLeafError(ve *jsonschema.ValidationError) error {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ScriptValidationError{
		Path:    jsonPointerToPath(ve.InstanceLocation),
		Message: ve.Message,
	}
}

// jsonPointerToPath turns "/steps/2/action" into "steps[2].action".
func jsonPointerToPath(ptr string) string {
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if part == "" {
			continue
		}
		if isDigits(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// RunScript applies every step of script to s and returns the final
// snapshot. Execution stops at the first failing step.
func RunScript(s *Session, script *Script) (Snapshot, error) {
	if script.Tab != "" {
		tab, err := models.ParseStatus(script.Tab)
		if err != nil {
			return Snapshot{}, fmt.Errorf("script tab: %w", err)
		}
		if err := s.SetActiveTab(tab); err != nil {
			return Snapshot{}, err
		}
	}

	labels := make(map[string]string)
	for i, step := range script.Steps {
		if err := applyStep(s, labels, step); err != nil {
			return SnapshotOf(s), &ScriptStepError{Step: i + 1, Action: step.Action, Err: err}
		}
	}
	return SnapshotOf(s), nil
}

func applyStep(s *Session, labels map[string]string, step ScriptStep) error {
	switch step.Action {
	case ActionSet:
		if step.Title != nil {
			s.SetTitle(*step.Title)
		}
		if step.Description != nil {
			s.SetDescription(*step.Description)
		}
		if step.Priority != "" {
			if err := s.SetPriorityText(step.Priority); err != nil {
				return err
			}
		}
		return nil

	case ActionCommit:
		res, err := s.Commit()
		if err != nil {
			return err
		}
		if step.As != "" && res.Task.ID != "" {
			labels[step.As] = res.Task.ID
		}
		return nil

	case ActionEdit:
		task, err := resolveTask(s, labels, step.Task)
		if err != nil {
			return err
		}
		s.BeginEdit(task)
		return nil

	case ActionCancelEdit:
		s.CancelEdit()
		return nil

	case ActionMoveStart:
		task, err := resolveTask(s, labels, step.Task)
		if err != nil {
			return err
		}
		s.BeginMove(task)
		return nil

	case ActionMove:
		status, err := models.ParseStatus(step.Status)
		if err != nil {
			return err
		}
		_, err = s.Move(status)
		return err

	case ActionCancelMove:
		s.CancelMove()
		return nil

	case ActionDelete:
		id, ok := labels[step.Task]
		if !ok {
			if _, found := s.Store().Get(step.Task); !found {
				return fmt.Errorf("task %q not found", step.Task)
			}
			id = step.Task
		}
		s.Delete(id)
		return nil

	case ActionTab:
		status, err := models.ParseStatus(step.Status)
		if err != nil {
			return err
		}
		return s.SetActiveTab(status)
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

// resolveTask looks ref up as a label first, then as a literal task ID.
func resolveTask(s *Session, labels map[string]string, ref string) (models.Task, error) {
	id, ok := labels[ref]
	if !ok {
		id = ref
	}
	task, found := s.Store().Get(id)
	if !found {
		return models.Task{}, fmt.Errorf("task %q not found", ref)
	}
	return task, nil
}
