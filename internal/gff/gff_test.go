package gff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// row builds one tab-separated annotation line.
func row(seqid, typ string, start, end, strand, attrs string) string {
	return strings.Join([]string{seqid, "AUGUSTUS", typ, start, end, "0.9", strand, "0", attrs}, "\t")
}

func TestParse_GroupsInFileOrder(t *testing.T) {
	input := strings.Join([]string{
		"##gff-version 3",
		"# start gene g2",
		row("NODE_2_length_900_cov_3", "gene", "1", "90", "+", "ID=g2;"),
		row("NODE_2_length_900_cov_3", "CDS", "10", "30", "+", "ID=NODE_2.g2.t1.cds;Parent=NODE_2.g2.t1"),
		row("NODE_1_length_500_cov_8", "CDS", "1", "6", "+", "ID=NODE_1.g1.t1.cds;Parent=NODE_1.g1.t1"),
		row("NODE_2_length_900_cov_3", "CDS", "40", "60", "+", "ID=NODE_2.g2.t1.cds;Parent=NODE_2.g2.t1"),
		row("NODE_2_length_900_cov_3", "CDS", "100", "120", "-", "ID=NODE_2.g3.t1.cds;Parent=NODE_2.g3.t1"),
		row("NODE_1_length_500_cov_8", "CDS", "10", "15", "+", "ID=NODE_1.g1.t1.cds;Parent=NODE_1.g1.t1"),
		row("NODE_1_length_500_cov_8", "exon", "10", "15", "+", "no gene token here"),
		"",
	}, "\n")

	a, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, a.Contigs, 2)

	assert.Equal(t, "NODE_2", a.Contigs[0].Contig, "contigs keep first-appearance order")
	assert.Equal(t, "NODE_1", a.Contigs[1].Contig)

	node2 := a.Contigs[0]
	require.Len(t, node2.Genes, 2)
	assert.Equal(t, "g2", node2.Genes[0].ID)
	assert.Equal(t, []Fragment{{10, 30, Forward}, {40, 60, Forward}}, node2.Genes[0].Fragments)
	assert.Equal(t, "g3", node2.Genes[1].ID)
	assert.Equal(t, []Fragment{{100, 120, Reverse}}, node2.Genes[1].Fragments)

	node1, ok := a.Contig("NODE_1")
	require.True(t, ok)
	require.Len(t, node1.Genes, 1)
	assert.Equal(t, []Fragment{{1, 6, Forward}, {10, 15, Forward}}, node1.Genes[0].Fragments)
}

func TestParse_MissingGeneTokenIsMalformed(t *testing.T) {
	input := "# header\n" + row("NODE_1", "CDS", "1", "6", "+", "ID=cds1;Parent=tx1") + "\n"

	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrMalformedAnnotation)

	var ma *failure.MalformedAnnotationError
	require.ErrorAs(t, err, &ma)
	assert.Equal(t, 2, ma.Line)
}

func TestParse_RejectsBadRows(t *testing.T) {
	tests := map[string]string{
		"short row":      "NODE_1\tAUGUSTUS\tCDS\t1\t6",
		"no type column": "NODE_1\tAUGUSTUS",
		"bad start":      row("NODE_1", "CDS", "x", "6", "+", "ID=a.g1.t1"),
		"bad end":        row("NODE_1", "CDS", "1", "", "+", "ID=a.g1.t1"),
		"reversed":       row("NODE_1", "CDS", "9", "6", "+", "ID=a.g1.t1"),
		"zero start":     row("NODE_1", "CDS", "0", "6", "+", "ID=a.g1.t1"),
		"unknown strand": row("NODE_1", "CDS", "1", "6", ".", "ID=a.g1.t1"),
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(line + "\n"))
			assert.ErrorIs(t, err, failure.ErrMalformedAnnotation)
		})
	}
}

func TestParse_NonCDSRowsNeedNoGeneToken(t *testing.T) {
	input := row("NODE_1", "transcript", "1", "60", "+", "ID=tx") + "\n"
	a, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, a.Contigs)
}

func TestParse_ShortNonCDSRowsAreSkipped(t *testing.T) {
	input := strings.Join([]string{
		"NODE_1\tAUGUSTUS\tgene\t1",
		"NODE_1\tAUGUSTUS\ttranscript\t1\t60\t.\t+\t.",
		row("NODE_1", "CDS", "1", "6", "+", "ID=NODE_1.g1.t1.cds"),
		"",
	}, "\n")

	a, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, a.Contigs, 1)
	assert.Equal(t, "g1", a.Contigs[0].Genes[0].ID)
}

func TestParseFile_ReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.aug.out.gff3")
	require.NoError(t, os.WriteFile(path, []byte(row("NODE_1", "CDS", "1", "6", "+", "ID=x")+"\n"), 0o644))

	_, err := ParseFile(path)
	var ma *failure.MalformedAnnotationError
	require.ErrorAs(t, err, &ma)
	assert.Equal(t, path, ma.Path)
	assert.Equal(t, 1, ma.Line)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.gff3"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, failure.ErrMalformedAnnotation)
}
