package reference

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/schema"
	"github.com/roach88/graphomotor/internal/validator"
)

//go:embed tasks.yaml
var builtin []byte

// Default returns the built-in reference table.
func Default() (validator.Table, error) {
	return Parse("tasks.yaml", builtin)
}

// Load reads a reference table from path. An empty path selects the
// built-in table.
func Load(path string) (validator.Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return validator.Table{}, fmt.Errorf("failed to read reference file: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates a reference table document.
func Parse(name string, data []byte) (validator.Table, error) {
	var table validator.Table
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&table); err != nil && !errors.Is(err, io.EOF) {
		return validator.Table{}, ir.NewMalformedReference("", "", "failed to parse YAML: %v", err)
	}

	if err := schema.ValidateYAML(schema.References, name, data); err != nil {
		return validator.Table{}, schemaError(err)
	}

	for id, ref := range table.Tasks {
		ref.ID = id
		table.Tasks[id] = ref
	}
	if err := table.Check(); err != nil {
		return validator.Table{}, err
	}
	return table, nil
}

func schemaError(err error) error {
	var se *schema.Error
	if !errors.As(err, &se) {
		return ir.NewMalformedReference("", "", "%v", err)
	}
	ae := ir.NewMalformedReference(taskOf(se.Field), se.Field, "%s", se.Message)
	if se.Pos.IsValid() {
		ae.Details = map[string]string{"pos": se.Pos.String()}
	}
	return ae
}

// taskOf extracts the task identifier from a schema path like
// "tasks.word_recall.tokens".
func taskOf(field string) string {
	rest, ok := strings.CutPrefix(field, "tasks.")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, ".")
	return id
}
