// Package codon tabulates codon usage of coding concatenates.
package codon

import (
	"sort"

	"github.com/bebop/poly/checks"
)

// Table maps a three-letter codon to its count.
type Table map[string]int

// Count reads seq in non-overlapping three-base windows starting at
// position 0. A trailing partial window is ignored. Symbols are counted
// verbatim, so codons containing N or lowercase bases get their own keys.
func Count(seq string) Table {
	t := make(Table)
	for i := 0; i+3 <= len(seq); i += 3 {
		t[seq[i:i+3]]++
	}
	return t
}

// Total returns the number of codons counted.
func (t Table) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// Codons returns the codons present in t, sorted.
func (t Table) Codons() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Census is the codon usage of one contig.
type Census struct {
	Contig    string  `json:"contig" yaml:"contig"`
	Length    int     `json:"length" yaml:"length"`
	Genes     int     `json:"genes" yaml:"genes"`
	Codons    int     `json:"codons" yaml:"codons"`
	GCContent float64 `json:"gc_content" yaml:"gc_content"`
	Table     Table   `json:"table" yaml:"table"`
}

// Summarize counts the codons of one concatenate.
func Summarize(contig string, genes int, seq string) Census {
	t := Count(seq)
	c := Census{
		Contig: contig,
		Length: len(seq),
		Genes:  genes,
		Codons: t.Total(),
		Table:  t,
	}
	if len(seq) > 0 {
		c.GCContent = checks.GcContent(seq)
	}
	return c
}
