package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var source string

// Definition names a top-level definition in the embedded schema.
type Definition string

const (
	Config     Definition = "#Config"
	References Definition = "#References"
)

// Error is a schema violation with its source position.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Schema holds the compiled definitions. It is safe for concurrent use.
type Schema struct {
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
}

// New compiles the embedded schema.
func New() (*Schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(source, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", formatCUEError(err, ""))
	}
	return &Schema{ctx: ctx, root: root}, nil
}

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
	defaultErr    error
)

// Default returns a process-wide compiled schema.
func Default() (*Schema, error) {
	defaultOnce.Do(func() {
		defaultSchema, defaultErr = New()
	})
	return defaultSchema, defaultErr
}

// ValidateYAML checks a YAML document against def. filename is used for
// error positions only.
func (s *Schema) ValidateYAML(def Definition, filename string, data []byte) error {
	// cue.Context is not safe for concurrent use.
	s.mu.Lock()
	defer s.mu.Unlock()

	schema := s.root.LookupPath(cue.ParsePath(string(def)))
	if !schema.Exists() {
		return fmt.Errorf("schema: unknown definition %s", def)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return formatCUEError(err, filename)
	}
	doc := s.ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return formatCUEError(err, filename)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err, filename)
	}
	return nil
}

// ValidateYAML checks data against def using the default schema.
func ValidateYAML(def Definition, filename string, data []byte) error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.ValidateYAML(def, filename, data)
}

// formatCUEError extracts the first error with its path and position.
// Positions inside the data file are preferred over schema positions.
func formatCUEError(err error, filename string) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	out := &Error{
		Field:   strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}

	positions := errors.Positions(first)
	for _, p := range positions {
		if filename != "" && p.Filename() == filename {
			out.Pos = p
			return out
		}
	}
	if len(positions) > 0 {
		out.Pos = positions[0]
	}
	return out
}
