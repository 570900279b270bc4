// Package failure defines the fatal error taxonomy of a codon census run.
//
// Every failure is terminal: there is no retry and no partial-result mode.
// Each class has a sentinel usable with errors.Is and a typed error carrying
// the details, usable with errors.As.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration       = errors.New("configuration error")
	ErrAmbiguousArtifact   = errors.New("ambiguous artifact")
	ErrMissingTool         = errors.New("missing tool")
	ErrGeneratorFailure    = errors.New("generator failure")
	ErrMalformedAnnotation = errors.New("malformed annotation")
)

// ConfigurationError reports an invalid option value or an inconsistent
// configuration. Field is empty when the problem is not tied to one option.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Message)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
func (e *ConfigurationError) Unwrap() error        { return e.Cause }

// Configf builds a ConfigurationError for field.
func Configf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AmbiguousArtifactError reports a filename pattern matching more than one
// file in the working directory.
type AmbiguousArtifactError struct {
	Argument string
	Pattern  string
	Matches  []string
}

func (e *AmbiguousArtifactError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q matches %d files for pattern %q: %s",
		ErrAmbiguousArtifact, e.Argument, len(e.Matches), e.Pattern, strings.Join(e.Matches, ", "))
}

func (e *AmbiguousArtifactError) Is(target error) bool { return target == ErrAmbiguousArtifact }

// MissingToolError reports an external tool that cannot be invoked although
// an artifact depending on it has to be generated.
type MissingToolError struct {
	Tool     string
	Artifact string
	Cause    error
}

func (e *MissingToolError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q is required to generate %q but is not invocable", ErrMissingTool, e.Tool, e.Artifact)
}

func (e *MissingToolError) Is(target error) bool { return target == ErrMissingTool }
func (e *MissingToolError) Unwrap() error        { return e.Cause }

// GeneratorFailureError reports a failed tool invocation, or one that exited
// cleanly without producing its declared output.
type GeneratorFailureError struct {
	Tool     string
	Artifact string
	Output   string
	Message  string
	Cause    error
}

func (e *GeneratorFailureError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s generating %q (%s)", ErrGeneratorFailure, e.Tool, e.Artifact, e.Output)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GeneratorFailureError) Is(target error) bool { return target == ErrGeneratorFailure }
func (e *GeneratorFailureError) Unwrap() error        { return e.Cause }

// MalformedAnnotationError reports an annotation row that cannot be turned
// into an exon fragment. Line is 1-based; 0 means the row is unknown.
type MalformedAnnotationError struct {
	Path    string
	Line    int
	Message string
}

func (e *MalformedAnnotationError) Error() string {
	if e == nil {
		return ""
	}
	var loc string
	switch {
	case e.Path != "" && e.Line > 0:
		loc = fmt.Sprintf("%s:%d: ", e.Path, e.Line)
	case e.Line > 0:
		loc = fmt.Sprintf("line %d: ", e.Line)
	case e.Path != "":
		loc = e.Path + ": "
	}
	return fmt.Sprintf("%s: %s%s", ErrMalformedAnnotation, loc, e.Message)
}

func (e *MalformedAnnotationError) Is(target error) bool { return target == ErrMalformedAnnotation }
