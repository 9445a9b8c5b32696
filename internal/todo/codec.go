package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed todo.schema.json
var schemaJSON string

const schemaURL = "todo.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
	Tasks      []Task
}

// Err joins the validation errors, or returns nil for a valid result.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

func (r *ValidationResult) fail(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// Encode serializes the list with 2-space indentation and a trailing newline.
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal todo list: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a serialized list.
func Decode(data []byte) ([]Task, error) {
	result := Validate(data)
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

// Validate parses data and checks it against the embedded JSON Schema and
// the list invariants the schema cannot express. Unknown fields are
// accepted and dropped by the Task type.
func Validate(data []byte) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.fail(&ValidationError{Err: errors.New("empty value")})
		return result
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.fail(&ValidationError{Err: fmt.Errorf("parse todo list: %w", err)})
		return result
	}

	if s, err := compiledSchema(); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("JSON Schema validation not available, using minimal checks: %v", err))
	} else {
		result.UsedSchema = true
		if err := s.Validate(doc); err != nil {
			appendSchemaErrors(result, err)
			return result
		}
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		result.fail(&ValidationError{Err: fmt.Errorf("parse todo list: %w", err)})
		return result
	}
	if tasks == nil {
		result.fail(&ValidationError{Err: errors.New("expected a list of tasks")})
		return result
	}

	validateMinimal(tasks, result)
	if result.Valid {
		result.Tasks = tasks
	}
	return result
}

// validateMinimal enforces non-empty ids and text. Repeated ids are
// reported as warnings; DuplicateIDs finds them for repair.
func validateMinimal(tasks []Task, result *ValidationResult) {
	for i, task := range tasks {
		path := fmt.Sprintf("[%d]", i)
		if task.ID == "" {
			result.fail(&ValidationError{Path: path + ".id", Err: errors.New("missing required field")})
			continue
		}
		if NormalizeText(task.Text) == "" {
			result.fail(&ValidationError{Path: path + ".text", Err: errors.New("must not be blank")})
		}
	}
	for _, i := range DuplicateIDs(tasks) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("[%d].id: duplicate id %q", i, tasks[i].ID))
	}
}

// DuplicateIDs returns the indexes of tasks whose id already appeared
// earlier in the list. The first occurrence is never included.
func DuplicateIDs(tasks []Task) []int {
	seen := make(map[string]bool, len(tasks))
	var dups []int
	for i, task := range tasks {
		if seen[task.ID] {
			dups = append(dups, i)
			continue
		}
		seen[task.ID] = true
	}
	return dups
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.fail(err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.fail(&ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/0/text" into "[0].text".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
