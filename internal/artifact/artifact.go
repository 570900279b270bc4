// Package artifact decides, for every intermediate file a run needs, whether
// it is supplied by the caller, reusable from the working directory, or has
// to be produced by an external tool.
//
// Discovery is a filename contract: each Spec carries a regular expression
// matched against the basenames of the working directory. Exactly one match
// is reused, zero matches queue the artifact for generation, and more than
// one match is fatal because the run could not tell which file is meant.
package artifact

import (
	"context"
	"fmt"
	"regexp"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// Generator produces one artifact by running an external tool.
//
// Implementations carry their own tool parameters; the manager only supplies
// the output path. Generate must block until the tool has finished.
type Generator interface {
	// Tool names the executable the generator invokes.
	Tool() string

	// Generate runs the tool so that it writes output.
	Generate(ctx context.Context, output string) error
}

// Validator is implemented by generators that can check their parameters
// without running the tool.
type Validator interface {
	Validate() error
}

// Spec declares one expected artifact. A Spec is immutable once registered.
type Spec struct {
	// Argument is the configuration option bound to the artifact path.
	Argument string

	// Pattern is matched against basenames in the working directory.
	Pattern *regexp.Regexp

	// Output is where Generator writes the artifact when none is found.
	Output string

	Generator Generator
}

// NewSpec compiles pattern and assembles a Spec.
func NewSpec(argument, pattern, output string, gen Generator) (Spec, error) {
	if argument == "" {
		return Spec{}, failure.Configf("artifact", "argument name is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Spec{}, &failure.ConfigurationError{
			Field:   argument,
			Message: fmt.Sprintf("invalid filename pattern %q", pattern),
			Cause:   err,
		}
	}
	if gen == nil {
		return Spec{}, failure.Configf(argument, "no generator")
	}
	return Spec{Argument: argument, Pattern: re, Output: output, Generator: gen}, nil
}

// Status is the resolution outcome of one artifact.
type Status string

const (
	// StatusExplicit: the caller supplied the path; no scan, no generation.
	StatusExplicit Status = "EXPLICIT"
	// StatusReused: exactly one file in the working directory matched.
	StatusReused Status = "REUSED"
	// StatusPending: nothing matched; the artifact is queued for generation.
	StatusPending Status = "PENDING"
	// StatusGenerated: the generator ran and produced the output.
	StatusGenerated Status = "GENERATED"
)

// Outcome records how an artifact argument was satisfied.
type Outcome struct {
	Argument string `json:"argument" yaml:"argument"`
	Status   Status `json:"status" yaml:"status"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Binder is the slice of the run configuration the manager mutates.
type Binder interface {
	Explicit(arg string) bool
	Path(arg string) (string, bool)
	Bind(arg, path string) error
}
