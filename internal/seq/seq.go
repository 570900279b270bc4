// Package seq holds contig sequences keyed by shortname and the coding
// sequence concatenates derived from them.
package seq

import (
	"fmt"
	"strings"

	"github.com/bebop/poly/io/fasta"
	"github.com/bebop/poly/transform"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// Shortname normalizes a sequence identifier to its first two
// underscore-delimited tokens ("NODE_1_length_5000_cov_3.2" -> "NODE_1").
// The gene predictor shortens contig names the same way, so this is the key
// shared by contigs and annotation rows. Identifiers with fewer than three
// tokens are returned unchanged.
func Shortname(id string) string {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) < 3 {
		return id
	}
	return parts[0] + "_" + parts[1]
}

// ReverseComplement returns the reverse complement of a nucleotide string.
func ReverseComplement(s string) string {
	return transform.ReverseComplement(s)
}

// Contig is one nucleotide record.
type Contig struct {
	ID       string
	Sequence string
}

// Contigs is a collection of contigs keyed by shortname.
type Contigs struct {
	byName map[string]*Contig
	order  []string
}

// NewContigs indexes records by shortname. Two records sharing a shortname
// would make annotation lookups ambiguous and are rejected.
func NewContigs(records []Contig) (*Contigs, error) {
	c := &Contigs{byName: make(map[string]*Contig, len(records))}
	for i := range records {
		rec := records[i]
		key := Shortname(rec.ID)
		if prev, dup := c.byName[key]; dup {
			return nil, failure.Configf("nucl", "contigs %q and %q share the shortname %q", prev.ID, rec.ID, key)
		}
		c.byName[key] = &rec
		c.order = append(c.order, key)
	}
	return c, nil
}

// ReadFASTA loads a contig FASTA and indexes it by shortname.
func ReadFASTA(path string) (*Contigs, error) {
	records, err := fasta.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading contigs %q: %w", path, err)
	}
	contigs := make([]Contig, 0, len(records))
	for _, r := range records {
		contigs = append(contigs, Contig{ID: r.Name, Sequence: r.Sequence})
	}
	return NewContigs(contigs)
}

// Get returns the contig with the given shortname.
func (c *Contigs) Get(shortname string) (*Contig, bool) {
	ct, ok := c.byName[shortname]
	return ct, ok
}

// Len returns the number of contigs.
func (c *Contigs) Len() int { return len(c.order) }

// Names returns the shortnames in input order.
func (c *Contigs) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
