// Package schema validates decoded snapshot documents against the
// embedded CUE schema. The codec guarantees a document parses; this
// package guarantees it makes sense, catching range violations and
// unknown enum values that survive a structurally clean decode. Import
// runs it before accepting foreign artifacts, verify runs it as the
// deep check behind the checksum.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed snapshot.cue
var schemaSource string

// Validation error codes (V100-V109)
const (
	ErrDocumentParse = "V101" // document is not valid JSON
	ErrConstraint    = "V102" // document violates a schema constraint
)

// ValidationError represents one schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validator checks snapshot documents against the #Snapshot definition.
// Safe for concurrent use.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded schema. Fails only if the schema
// itself is broken, which is a build defect, not an input problem.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	compiled := ctx.CompileString(schemaSource)
	if err := compiled.Err(); err != nil {
		return nil, fmt.Errorf("compiling snapshot schema: %w", err)
	}

	def := compiled.LookupPath(cue.ParsePath("#Snapshot"))
	if !def.Exists() {
		return nil, fmt.Errorf("snapshot schema has no #Snapshot definition")
	}

	return &Validator{ctx: ctx, schema: def}, nil
}

// Validate checks a canonical JSON document against the schema.
// Returns all violations found (does not fail-fast). A nil return
// means the document is valid.
func (v *Validator) Validate(data []byte) []ValidationError {
	// JSON is a subset of CUE, so the document compiles directly
	doc := v.ctx.CompileBytes(data)
	if err := doc.Err(); err != nil {
		return []ValidationError{{
			Field:   "document",
			Message: fmt.Sprintf("parsing document: %v", err),
			Code:    ErrDocumentParse,
		}}
	}

	unified := v.schema.Unify(doc)
	err := unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, ce := range cueerrors.Errors(err) {
		format, args := ce.Msg()
		errs = append(errs, ValidationError{
			Field:   strings.Join(ce.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrConstraint,
		})
	}
	return errs
}
