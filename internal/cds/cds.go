// Package cds reconstructs spliced coding sequences from annotation
// fragments and joins them into one coding concatenate per contig.
//
// A gene whose stitched length is not a multiple of three is dropped whole;
// the frame is never repaired. A gene made only of zero-length fragments
// contributes nothing and is counted as empty.
package cds

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/p-salazarhamm/SCGid/internal/failure"
	"github.com/p-salazarhamm/SCGid/internal/gff"
	"github.com/p-salazarhamm/SCGid/internal/seq"
)

// DroppedGene records a gene removed by the frame filter.
type DroppedGene struct {
	Contig string
	Gene   string
	Length int
}

// Stats summarizes one reconstruction.
type Stats struct {
	GenesKept        int
	GenesDropped     int
	GenesEmpty       int
	FragmentsSkipped int
}

// Result is the outcome of Reconstruct.
type Result struct {
	// Concatenates holds one entry per contig with at least one retained
	// gene, in annotation contig order.
	Concatenates []seq.Concatenate
	Dropped      []DroppedGene
	Stats        Stats
}

// GeneCDS stitches the fragments of g out of the contig sequence.
//
// Fragments are taken in file order. A fragment with Start == End
// contributes nothing and is counted in skipped. Reverse-strand fragments
// are reverse-complemented before being appended.
func GeneCDS(g *gff.Gene, contig *seq.Contig) (cds string, skipped int, err error) {
	var b strings.Builder
	for _, f := range g.Fragments {
		if f.Start == f.End {
			skipped++
			continue
		}
		if f.Start < 1 || f.End > len(contig.Sequence) || f.Start > f.End {
			return "", skipped, &failure.MalformedAnnotationError{
				Message: fmt.Sprintf("gene %s fragment %d-%d lies outside contig %s (length %d)",
					g.ID, f.Start, f.End, contig.ID, len(contig.Sequence)),
			}
		}

		chunk := contig.Sequence[f.Start-1 : f.End]
		if f.Strand == gff.Reverse {
			chunk = seq.ReverseComplement(chunk)
		}
		b.WriteString(chunk)
	}
	return b.String(), skipped, nil
}

type contigResult struct {
	cat     seq.Concatenate
	dropped []DroppedGene
	stats   Stats
}

// reconstructContig builds the concatenate of one contig. The returned
// concatenate is empty when every gene failed the frame filter.
func reconstructContig(cg *gff.ContigGenes, contig *seq.Contig) (contigResult, error) {
	var (
		res contigResult
		b   strings.Builder
	)
	res.cat.Contig = cg.Contig

	for _, g := range cg.Genes {
		geneCDS, skipped, err := GeneCDS(g, contig)
		res.stats.FragmentsSkipped += skipped
		if err != nil {
			return contigResult{}, err
		}
		if geneCDS == "" {
			res.stats.GenesEmpty++
			continue
		}
		if len(geneCDS)%3 != 0 {
			res.stats.GenesDropped++
			res.dropped = append(res.dropped, DroppedGene{Contig: cg.Contig, Gene: g.ID, Length: len(geneCDS)})
			continue
		}
		res.stats.GenesKept++
		res.cat.Genes++
		b.WriteString(geneCDS)
	}

	res.cat.Sequence = b.String()
	return res, nil
}

// Reconstruct builds the coding concatenates of every annotated contig.
//
// Up to workers contigs are processed concurrently. The result keeps the
// annotation's contig order.
// An annotated contig missing from contigs, or a fragment outside its
// contig, fails with *failure.MalformedAnnotationError.
func Reconstruct(ctx context.Context, ann *gff.Annotation, contigs *seq.Contigs, workers int) (*Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]contigResult, len(ann.Contigs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cg := range ann.Contigs {
		contig, ok := contigs.Get(cg.Contig)
		if !ok {
			// Stop scheduling; already running contigs finish first.
			g.Go(func() error {
				return &failure.MalformedAnnotationError{
					Message: fmt.Sprintf("annotation references contig %q absent from the contig FASTA", cg.Contig),
				}
			})
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := reconstructContig(cg, contig)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{}
	for _, r := range results {
		out.Stats.GenesKept += r.stats.GenesKept
		out.Stats.GenesDropped += r.stats.GenesDropped
		out.Stats.GenesEmpty += r.stats.GenesEmpty
		out.Stats.FragmentsSkipped += r.stats.FragmentsSkipped
		out.Dropped = append(out.Dropped, r.dropped...)
		if r.cat.Len() > 0 {
			out.Concatenates = append(out.Concatenates, r.cat)
		}
	}
	return out, nil
}
