package plan

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-salazarhamm/SCGid/internal/config"
	"github.com/p-salazarhamm/SCGid/internal/failure"
	"github.com/p-salazarhamm/SCGid/internal/tools"
)

func TestBuild_BlastP(t *testing.T) {
	cfg := config.Default()
	cfg.Nucl = "contigs.fasta"
	cfg.Prot = "prot.faa"
	cfg.SwissProtDB = "/db/sprot"
	cfg.WorkDir = "/runs/a"
	cfg.Prefix = "sample"

	p, err := Build(cfg, nil)
	require.NoError(t, err)
	require.Len(t, p.Specs, 2)

	assert.Equal(t, config.ArgGFF3, p.Specs[0].Argument)
	assert.Equal(t, filepath.Join("/runs/a", "sample.aug.out.gff3"), p.Specs[0].Output)
	assert.Equal(t, "augustus", p.Specs[0].Generator.Tool())

	assert.Equal(t, config.ArgBlastOut, p.Specs[1].Argument)
	assert.Equal(t, filepath.Join("/runs/a", "sample.spdb.blast.out"), p.Specs[1].Output)
	blast, ok := p.Specs[1].Generator.(*tools.BlastSearch)
	require.True(t, ok)
	assert.Equal(t, "prot.faa", blast.Query)
	assert.Equal(t, "/db/sprot", blast.DB)

	assert.Equal(t, "augustus", p.Dependencies[0].Tool)
	assert.Equal(t, "blastp", p.Dependencies[1].Tool)
	assert.Equal(t, config.ArgBlastOut, p.Dependencies[1].Artifact)
}

func TestBuild_BlastN(t *testing.T) {
	cfg := config.Default()
	cfg.Nucl = "contigs.fasta"
	cfg.Mode = config.ModeBlastN

	p, err := Build(cfg, nil)
	require.NoError(t, err)
	require.Len(t, p.Specs, 2)
	assert.Equal(t, "blastn", p.Specs[1].Generator.Tool())
	assert.Equal(t, "scgid.nt.blast.out", filepath.Base(p.Specs[1].Output))

	blast := p.Specs[1].Generator.(*tools.BlastSearch)
	assert.Equal(t, "contigs.fasta", blast.Query)
	assert.Equal(t, tools.NucleotideDB, blast.DB)
}

func TestBuild_InvalidMode(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = 0
	_, err := Build(cfg, nil)
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}

func TestContracts_PatternsMatchOwnOutputs(t *testing.T) {
	for _, c := range []Contract{GeneModels, ProteinHits, NucleotideHits} {
		re := regexp.MustCompile(c.Pattern)
		assert.True(t, re.MatchString("anyprefix."+c.Suffix), c.Suffix)
		assert.False(t, re.MatchString("anyprefix."+c.Suffix+".tmp.123"), c.Suffix)
	}
	// The two alignment contracts must not discover each other's files.
	assert.False(t, regexp.MustCompile(ProteinHits.Pattern).MatchString("x."+NucleotideHits.Suffix))
	assert.False(t, regexp.MustCompile(NucleotideHits.Pattern).MatchString("x."+ProteinHits.Suffix))
}
