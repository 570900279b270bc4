// Package gff reads the coding-sequence rows of a gene-model annotation and
// groups them by contig and gene.
//
// Only the columns the reconstruction needs are interpreted:
//
//	1 seqid       contig identifier, reduced to its shortname
//	3 type        rows other than "CDS" are ignored
//	4 start       1-based, inclusive
//	5 end         1-based, inclusive
//	7 strand      "+" or "-"
//	9 attributes  must contain the gene token ".g<digits>."
//
// Grouping preserves file order at every level: contigs and genes in order
// of first appearance, fragments in row order.
package gff

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/p-salazarhamm/SCGid/internal/failure"
	"github.com/p-salazarhamm/SCGid/internal/seq"
)

// geneToken extracts the gene id the predictor embeds in CDS attributes,
// e.g. "ID=NODE_1.g12.t1.cds;Parent=NODE_1.g12.t1" -> "g12".
var geneToken = regexp.MustCompile(`[.](g[0-9]+)[.]`)

const featureCDS = "CDS"

// Strand is the orientation of a fragment on its contig.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

func (s Strand) String() string { return string(rune(s)) }

// Fragment is one contiguous coding region.
type Fragment struct {
	Start  int // 1-based, inclusive
	End    int // 1-based, inclusive
	Strand Strand
}

// Gene is the ordered fragments of one predicted gene.
type Gene struct {
	ID        string
	Fragments []Fragment
}

// ContigGenes is the genes predicted on one contig, in file order.
type ContigGenes struct {
	Contig string
	Genes  []*Gene

	byID map[string]*Gene
}

// Annotation is the grouped coding rows of an annotation file.
type Annotation struct {
	Contigs []*ContigGenes

	byContig map[string]*ContigGenes
}

// NewAnnotation returns an empty Annotation.
func NewAnnotation() *Annotation {
	return &Annotation{byContig: make(map[string]*ContigGenes)}
}

// Add appends a fragment to gene geneID on contig, creating either on first
// use.
func (a *Annotation) Add(contig, geneID string, f Fragment) {
	cg, ok := a.byContig[contig]
	if !ok {
		cg = &ContigGenes{Contig: contig, byID: make(map[string]*Gene)}
		a.byContig[contig] = cg
		a.Contigs = append(a.Contigs, cg)
	}
	g, ok := cg.byID[geneID]
	if !ok {
		g = &Gene{ID: geneID}
		cg.byID[geneID] = g
		cg.Genes = append(cg.Genes, g)
	}
	g.Fragments = append(g.Fragments, f)
}

// Contig returns the genes of one contig.
func (a *Annotation) Contig(shortname string) (*ContigGenes, bool) {
	cg, ok := a.byContig[shortname]
	return cg, ok
}

// ParseFile reads the annotation at path.
func ParseFile(path string) (*Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening annotation: %w", err)
	}
	defer f.Close()

	return parse(f, path)
}

// Parse reads an annotation from r.
func Parse(r io.Reader) (*Annotation, error) {
	return parse(r, "")
}

func parse(r io.Reader, path string) (*Annotation, error) {
	a := NewAnnotation()
	sc := bufio.NewScanner(r)
	// Attribute columns of long gene models can exceed the default token size.
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || line[0] == '#' {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			return nil, malformed(path, lineNo, "expected a feature type column, got %d columns", len(cols))
		}
		if cols[2] != featureCDS {
			continue
		}
		if len(cols) < 9 {
			return nil, malformed(path, lineNo, "expected 9 tab-separated columns, got %d", len(cols))
		}

		m := geneToken.FindStringSubmatch(cols[8])
		if m == nil {
			return nil, malformed(path, lineNo, "no gene id (.g<digits>.) in attributes %q", cols[8])
		}

		frag, err := parseFragment(cols)
		if err != nil {
			return nil, malformed(path, lineNo, "%v", err)
		}
		a.Add(seq.Shortname(cols[0]), m[1], frag)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading annotation: %w", err)
	}
	return a, nil
}

func parseFragment(cols []string) (Fragment, error) {
	start, err := strconv.Atoi(strings.TrimSpace(cols[3]))
	if err != nil {
		return Fragment{}, fmt.Errorf("invalid start %q", cols[3])
	}
	end, err := strconv.Atoi(strings.TrimSpace(cols[4]))
	if err != nil {
		return Fragment{}, fmt.Errorf("invalid end %q", cols[4])
	}
	if start < 1 || end < start {
		return Fragment{}, fmt.Errorf("invalid interval %d-%d", start, end)
	}

	var strand Strand
	switch cols[6] {
	case "+":
		strand = Forward
	case "-":
		strand = Reverse
	default:
		return Fragment{}, fmt.Errorf("invalid strand %q", cols[6])
	}
	return Fragment{Start: start, End: end, Strand: strand}, nil
}

func malformed(path string, line int, format string, args ...any) error {
	return &failure.MalformedAnnotationError{Path: path, Line: line, Message: fmt.Sprintf(format, args...)}
}
