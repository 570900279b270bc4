package tools

import (
	"context"
	"os"
	"strconv"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// BlastOutFormat is the tabular layout requested from BLAST. The first three
// columns (query, subject taxids, bitscore) are what the taxonomy stages read.
const BlastOutFormat = "6 qseqid staxids bitscore std sscinames sskingdoms stitle"

// NucleotideDB is the database searched in blastn mode.
const NucleotideDB = "nt"

const stderrTail = 512

// Augustus predicts gene models on the contigs and writes GFF3.
type Augustus struct {
	Runner  Runner
	Nucl    string
	Species string
}

func (a *Augustus) Tool() string { return "augustus" }

// Validate reports a missing species or contig FASTA.
func (a *Augustus) Validate() error {
	if a.Species == "" {
		return failure.Configf("augustus_sp", "an Augustus species is required to predict gene models (see `augustus --species=help`)")
	}
	if a.Nucl == "" {
		return failure.Configf("nucl", "contig FASTA is required to predict gene models")
	}
	return nil
}

// Generate runs `augustus --species=<sp> --gff3=on <nucl>` with stdout
// captured into output.
func (a *Augustus) Generate(ctx context.Context, output string) error {
	if err := a.Validate(); err != nil {
		return err
	}

	cmd := Command{
		Name:       a.Tool(),
		Args:       []string{"--species=" + a.Species, "--gff3=on", a.Nucl},
		StdoutPath: output,
	}
	return run(ctx, a.Runner, cmd, "gff3", output)
}

// BlastSearch aligns a query FASTA against a BLAST database.
type BlastSearch struct {
	Runner Runner

	// Program is "blastp" or "blastn".
	Program string

	Query  string
	DB     string
	EValue string
	CPUs   int

	// QueryOption and DBOption name the configuration options that
	// supplied Query and DB, for error reporting.
	QueryOption string
	DBOption    string
}

// NewProteinBlast searches predicted proteins against a Swiss-Prot style database.
func NewProteinBlast(r Runner, prot, db, evalue string, cpus int) *BlastSearch {
	return &BlastSearch{Runner: r, Program: "blastp", Query: prot, DB: db, EValue: evalue, CPUs: cpus,
		QueryOption: "prot", DBOption: "spdb"}
}

// NewNucleotideBlast searches contigs against NCBI nt.
func NewNucleotideBlast(r Runner, nucl, evalue string, cpus int) *BlastSearch {
	return &BlastSearch{Runner: r, Program: "blastn", Query: nucl, DB: NucleotideDB, EValue: evalue, CPUs: cpus,
		QueryOption: "nucl", DBOption: "db"}
}

func (b *BlastSearch) Tool() string { return b.Program }

// Args returns the command line for a search writing to output.
func (b *BlastSearch) Args(output string) []string {
	return []string{
		"-query", b.Query,
		"-db", b.DB,
		"-outfmt", BlastOutFormat,
		"-evalue", b.EValue,
		"-num_threads", strconv.Itoa(b.CPUs),
		"-max_target_seqs", "1",
		"-out", output,
	}
}

func (b *BlastSearch) Validate() error {
	if b.Query == "" {
		return failure.Configf(b.QueryOption, "a query FASTA is required to run %s", b.Program)
	}
	if b.DB == "" {
		return failure.Configf(b.DBOption, "a database is required to run %s", b.Program)
	}
	return nil
}

func (b *BlastSearch) Generate(ctx context.Context, output string) error {
	if err := b.Validate(); err != nil {
		return err
	}

	cmd := Command{Name: b.Program, Args: b.Args(output)}
	err := run(ctx, b.Runner, cmd, "blastout", output)
	if err != nil {
		// BLAST writes -out incrementally; never leave a partial file that
		// a later run would pick up as reusable.
		_ = os.Remove(output)
	}
	return err
}

func run(ctx context.Context, r Runner, cmd Command, artifact, output string) error {
	if r == nil {
		r = NewExecutor()
	}
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return &failure.GeneratorFailureError{Tool: cmd.Name, Artifact: artifact, Output: output, Cause: err}
	}
	if res.ExitCode != 0 {
		return &failure.GeneratorFailureError{
			Tool:     cmd.Name,
			Artifact: artifact,
			Output:   output,
			Message:  "exit status " + strconv.Itoa(res.ExitCode) + ": " + tail(res.Stderr, stderrTail),
		}
	}
	return nil
}
