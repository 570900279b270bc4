package cds

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-salazarhamm/SCGid/internal/failure"
	"github.com/p-salazarhamm/SCGid/internal/gff"
	"github.com/p-salazarhamm/SCGid/internal/seq"
)

func contigs(t *testing.T, cs ...seq.Contig) *seq.Contigs {
	t.Helper()
	c, err := seq.NewContigs(cs)
	require.NoError(t, err)
	return c
}

func TestReconstruct_SplicesAndFiltersFrame(t *testing.T) {
	// 1-6 AAAAAA, 7-9 CCC, 10-15 GGGGGG, 16-18 TTT
	cs := contigs(t, seq.Contig{ID: "contigA_1", Sequence: "AAAAAACCCGGGGGGTTT"})

	ann := gff.NewAnnotation()
	ann.Add("contigA_1", "g1", gff.Fragment{Start: 1, End: 6, Strand: gff.Forward})
	ann.Add("contigA_1", "g1", gff.Fragment{Start: 10, End: 15, Strand: gff.Forward})
	// length 7: dropped whole
	ann.Add("contigA_1", "g2", gff.Fragment{Start: 1, End: 4, Strand: gff.Forward})
	ann.Add("contigA_1", "g2", gff.Fragment{Start: 16, End: 18, Strand: gff.Forward})

	res, err := Reconstruct(context.Background(), ann, cs, 1)
	require.NoError(t, err)
	require.Len(t, res.Concatenates, 1)

	cat := res.Concatenates[0]
	assert.Equal(t, "contigA_1", cat.Contig)
	assert.Equal(t, "AAAAAAGGGGGG", cat.Sequence)
	assert.Equal(t, 1, cat.Genes)

	assert.Equal(t, Stats{GenesKept: 1, GenesDropped: 1}, res.Stats)
	assert.Equal(t, []DroppedGene{{Contig: "contigA_1", Gene: "g2", Length: 7}}, res.Dropped)
}

func TestReconstruct_ContigWithNoRetainedGenesIsOmitted(t *testing.T) {
	cs := contigs(t,
		seq.Contig{ID: "NODE_1_length_9", Sequence: "ATGATGATG"},
		seq.Contig{ID: "NODE_2_length_9", Sequence: "ATGATGATG"},
	)
	ann := gff.NewAnnotation()
	ann.Add("NODE_1", "g1", gff.Fragment{Start: 1, End: 5, Strand: gff.Forward})
	ann.Add("NODE_2", "g2", gff.Fragment{Start: 1, End: 9, Strand: gff.Forward})

	res, err := Reconstruct(context.Background(), ann, cs, 2)
	require.NoError(t, err)
	require.Len(t, res.Concatenates, 1)
	assert.Equal(t, "NODE_2", res.Concatenates[0].Contig)
}

func TestReconstruct_GeneOfZeroLengthFragmentsIsEmpty(t *testing.T) {
	cs := contigs(t, seq.Contig{ID: "NODE_1_length_9", Sequence: "ATGCCCTAA"})
	ann := gff.NewAnnotation()
	ann.Add("NODE_1", "g1", gff.Fragment{Start: 1, End: 9, Strand: gff.Forward})
	ann.Add("NODE_1", "g2", gff.Fragment{Start: 4, End: 4, Strand: gff.Forward})
	ann.Add("NODE_1", "g2", gff.Fragment{Start: 7, End: 7, Strand: gff.Reverse})

	res, err := Reconstruct(context.Background(), ann, cs, 1)
	require.NoError(t, err)
	require.Len(t, res.Concatenates, 1)
	assert.Equal(t, 1, res.Concatenates[0].Genes)
	assert.Equal(t, "ATGCCCTAA", res.Concatenates[0].Sequence)
	assert.Equal(t, Stats{GenesKept: 1, GenesEmpty: 1, FragmentsSkipped: 2}, res.Stats)
	assert.Empty(t, res.Dropped)
}

func TestGeneCDS_ReverseStrand(t *testing.T) {
	contig := &seq.Contig{ID: "c_1", Sequence: "ACGT"}
	g := &gff.Gene{ID: "g1", Fragments: []gff.Fragment{{Start: 1, End: 4, Strand: gff.Reverse}}}

	out, skipped, err := GeneCDS(g, contig)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", out)
	assert.Zero(t, skipped)

	contig.Sequence = "GCCAAA"
	g.Fragments[0].End = 6
	out, _, err = GeneCDS(g, contig)
	require.NoError(t, err)
	assert.Equal(t, "TTTGGC", out)
}

func TestGeneCDS_ZeroLengthFragmentSkipped(t *testing.T) {
	contig := &seq.Contig{ID: "c_1", Sequence: "ATGCCCTAA"}
	g := &gff.Gene{ID: "g1", Fragments: []gff.Fragment{
		{Start: 1, End: 3, Strand: gff.Forward},
		{Start: 5, End: 5, Strand: gff.Forward},
		{Start: 7, End: 9, Strand: gff.Forward},
	}}

	out, skipped, err := GeneCDS(g, contig)
	require.NoError(t, err)
	assert.Equal(t, "ATGTAA", out)
	assert.Equal(t, 1, skipped)
}

func TestGeneCDS_FragmentPastContigEnd(t *testing.T) {
	contig := &seq.Contig{ID: "c_1", Sequence: "ATG"}
	g := &gff.Gene{ID: "g1", Fragments: []gff.Fragment{{Start: 1, End: 6, Strand: gff.Forward}}}

	_, _, err := GeneCDS(g, contig)
	assert.ErrorIs(t, err, failure.ErrMalformedAnnotation)
}

func TestReconstruct_UnknownContig(t *testing.T) {
	cs := contigs(t, seq.Contig{ID: "NODE_1_length_3", Sequence: "ATG"})
	ann := gff.NewAnnotation()
	ann.Add("NODE_9", "g1", gff.Fragment{Start: 1, End: 3, Strand: gff.Forward})

	_, err := Reconstruct(context.Background(), ann, cs, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrMalformedAnnotation)
	assert.Contains(t, err.Error(), "NODE_9")
}

func TestReconstruct_ParallelKeepsOrder(t *testing.T) {
	var (
		list []seq.Contig
		ann  = gff.NewAnnotation()
	)
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("NODE_%d", i)
		body := strings.Repeat("ATG", i+1)
		list = append(list, seq.Contig{ID: name + "_length_x", Sequence: body})
		ann.Add(name, "g1", gff.Fragment{Start: 1, End: len(body), Strand: gff.Forward})
	}
	cs := contigs(t, list...)

	res, err := Reconstruct(context.Background(), ann, cs, 8)
	require.NoError(t, err)
	require.Len(t, res.Concatenates, 50)
	for i, cat := range res.Concatenates {
		assert.Equal(t, fmt.Sprintf("NODE_%d", i), cat.Contig)
		assert.Equal(t, 3*(i+1), cat.Len())
	}
	assert.Equal(t, 50, res.Stats.GenesKept)
}

func TestReconstruct_CanceledContext(t *testing.T) {
	cs := contigs(t, seq.Contig{ID: "NODE_1_length_3", Sequence: "ATG"})
	ann := gff.NewAnnotation()
	ann.Add("NODE_1", "g1", gff.Fragment{Start: 1, End: 3, Strand: gff.Forward})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Reconstruct(ctx, ann, cs, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
