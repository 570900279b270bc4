package seq

// Concatenate is the coding content of one contig: the reconstructed coding
// sequences of its retained genes, joined in gene order.
type Concatenate struct {
	Contig   string
	Sequence string

	// Genes is the number of genes contributing to Sequence.
	Genes int
}

// Len returns the concatenate length in bases.
func (c Concatenate) Len() int { return len(c.Sequence) }

// RemoveSmall returns the concatenates at least minLen bases long, keeping
// their order, and the ones that were dropped. A concatenate of exactly
// minLen is kept.
func RemoveSmall(cats []Concatenate, minLen int) (kept, dropped []Concatenate) {
	kept = make([]Concatenate, 0, len(cats))
	for _, c := range cats {
		if c.Len() >= minLen {
			kept = append(kept, c)
			continue
		}
		dropped = append(dropped, c)
	}
	return kept, dropped
}
