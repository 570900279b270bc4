package config

import "github.com/p-salazarhamm/SCGid/internal/failure"

// Mode selects which alignment results annotate the codon census.
//
// The set is closed: every Mode determines the full artifact and dependency
// set of a run (see package plan).
type Mode int

const (
	ModeBlastP Mode = iota + 1
	ModeBlastN
)

// ParseMode maps the user-facing mode names to a Mode. Anything other than
// "blastp" or "blastn", compared exactly, is a configuration error.
func ParseMode(raw string) (Mode, error) {
	switch raw {
	case "blastp":
		return ModeBlastP, nil
	case "blastn":
		return ModeBlastN, nil
	case "":
		return 0, failure.Configf("mode", "mode is required (expected blastp|blastn)")
	default:
		return 0, failure.Configf("mode", "invalid mode %q (expected blastp|blastn)", raw)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeBlastP:
		return "blastp"
	case ModeBlastN:
		return "blastn"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool { return m == ModeBlastP || m == ModeBlastN }

// MarshalText lets modes render by name in YAML and JSON output.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
