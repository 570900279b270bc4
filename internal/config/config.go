// Package config holds the explicit configuration object of a codon census
// run.
//
// A Config is built once at startup (defaults, then an optional HCL file,
// then command-line flags), validated, and passed by reference to every
// component. The only mutation after construction is Bind, used by the
// artifact manager to record discovered or generated paths. Freeze ends that
// window; a frozen Config is read-only.
package config

import (
	"path/filepath"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// Argument names of path-valued options. Artifact specs and dependencies
// refer to options by these names.
const (
	ArgNucl        = "nucl"
	ArgProt        = "prot"
	ArgGFF3        = "gff3"
	ArgBlastOut    = "blastout"
	ArgSwissProtDB = "spdb"
)

const (
	DefaultPrefix = "scgid"
	DefaultMinLen = 3000
	DefaultEValue = "1e-5"
	DefaultCPUs   = 1
)

// Config is the resolved option set consumed by the pipeline.
type Config struct {
	// Nucl is the contig FASTA of the metagenome.
	Nucl string `json:"nucl" validate:"required"`

	// Prot is the protein FASTA used as blastp query.
	Prot string `json:"prot,omitempty"`

	// GFF3 is the gene-model annotation. Empty means "discover or generate".
	GFF3 string `json:"gff3,omitempty"`

	// BlastOut is the alignment result. Empty means "discover or generate".
	BlastOut string `json:"blastout,omitempty"`

	// SwissProtDB is the protein database searched in blastp mode.
	SwissProtDB string `json:"spdb,omitempty"`

	// Prefix namespaces generated artifact filenames.
	Prefix string `json:"prefix" validate:"required,excludesall=/\\"`

	// WorkDir is scanned for reusable artifacts and receives generated ones.
	WorkDir string `json:"workdir" validate:"required"`

	MinLen          int    `json:"minlen" validate:"gte=0"`
	Mode            Mode   `json:"mode"`
	EValue          string `json:"evalue" validate:"required"`
	CPUs            int    `json:"cpus" validate:"gte=1"`
	AugustusSpecies string `json:"augustus_sp,omitempty"`

	frozen bool
}

// Default returns a Config carrying the documented defaults.
func Default() *Config {
	return &Config{
		Prefix:  DefaultPrefix,
		WorkDir: ".",
		MinLen:  DefaultMinLen,
		Mode:    ModeBlastP,
		EValue:  DefaultEValue,
		CPUs:    DefaultCPUs,
	}
}

// Path returns the value of a path-valued option. ok is false for names that
// are not path-valued options.
func (c *Config) Path(arg string) (path string, ok bool) {
	p := c.pathField(arg)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Explicit reports whether the path-valued option arg already holds a value.
// Explicitly supplied paths always take precedence over discovery and
// generation.
func (c *Config) Explicit(arg string) bool {
	p, ok := c.Path(arg)
	return ok && p != ""
}

// Bind records path for arg. It fails once the Config is frozen or when arg
// is not a path-valued option.
func (c *Config) Bind(arg, path string) error {
	if c.frozen {
		return failure.Configf(arg, "cannot bind %q: configuration is frozen", path)
	}
	p := c.pathField(arg)
	if p == nil {
		return failure.Configf(arg, "not a path-valued option")
	}
	*p = path
	return nil
}

// Freeze ends the binding window.
func (c *Config) Freeze() { c.frozen = true }

// Frozen reports whether Freeze has been called.
func (c *Config) Frozen() bool { return c.frozen }

// OutputPath returns the path of a generated artifact named
// <prefix>.<suffix> inside WorkDir.
func (c *Config) OutputPath(suffix string) string {
	return filepath.Join(c.WorkDir, c.Prefix+"."+suffix)
}

func (c *Config) pathField(arg string) *string {
	switch arg {
	case ArgNucl:
		return &c.Nucl
	case ArgProt:
		return &c.Prot
	case ArgGFF3:
		return &c.GFF3
	case ArgBlastOut:
		return &c.BlastOut
	case ArgSwissProtDB:
		return &c.SwissProtDB
	default:
		return nil
	}
}
