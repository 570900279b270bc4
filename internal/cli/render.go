package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-salazarhamm/SCGid/internal/pipeline"
)

// Output formats accepted by --format.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTSV  = "tsv"
)

func parseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case FormatYAML, FormatJSON, FormatTSV:
		return f, nil
	default:
		return "", invalidInvocationf("invalid --format %q (expected yaml|json|tsv)", raw)
	}
}

// Render writes res to w in the given format. YAML and JSON carry the whole
// result; TSV carries only the codon tables, one row per contig and codon.
func Render(w io.Writer, format string, res *pipeline.Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatTSV:
		return renderTSV(w, res)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTSV(w io.Writer, res *pipeline.Result) error {
	var b strings.Builder
	b.WriteString("contig\tcodon\tcount\n")
	for _, c := range res.Censuses {
		for _, codon := range c.Table.Codons() {
			b.WriteString(c.Contig)
			b.WriteByte('\t')
			b.WriteString(codon)
			b.WriteByte('\t')
			b.WriteString(strconv.Itoa(c.Table[codon]))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
