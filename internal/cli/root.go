// Package cli is the command-line boundary of the codon census stage: it
// assembles the run configuration, runs the pipeline, renders the result,
// and maps failures to exit codes.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/p-salazarhamm/SCGid/internal/config"
	"github.com/p-salazarhamm/SCGid/internal/ctxlog"
	"github.com/p-salazarhamm/SCGid/internal/deps"
	"github.com/p-salazarhamm/SCGid/internal/metrics"
	"github.com/p-salazarhamm/SCGid/internal/pipeline"
	"github.com/p-salazarhamm/SCGid/internal/tools"
)

// Env is what a command invocation talks to. Zero values use the process
// streams, real child processes, and PATH lookup.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	Tools   tools.Runner
	Locator deps.Locator
	Sink    pipeline.Sink
}

// CLIResult is the outcome of one invocation.
type CLIResult struct {
	ExitCode int
	Result   *pipeline.Result
}

// options are the raw flag values. Flags left unset on the command line do
// not override the configuration file.
type options struct {
	configPath      string
	format          string
	logLevel        string
	logFormat       string
	metricsTextfile string

	nucl, prot, gff3, blastout, spdb string
	prefix, workdir, mode, evalue    string
	augustusSpecies                  string
	minlen, cpus                     int
}

func (o *options) bind(fs *pflag.FlagSet) {
	def := config.Default()

	fs.StringVarP(&o.nucl, "nucl", "n", "", "contig FASTA of the metagenome (required)")
	fs.StringVarP(&o.prot, "prot", "p", "", "protein FASTA used as blastp query")
	fs.StringVarP(&o.gff3, "gff3", "m", "", "gene-model annotation (GFF3); discovered or predicted when omitted")
	fs.StringVarP(&o.blastout, "blastout", "b", "", "BLAST tabular output; discovered or searched when omitted")
	fs.StringVar(&o.spdb, "spdb", "", "Swiss-Prot style BLAST database for blastp mode")
	fs.StringVarP(&o.prefix, "prefix", "f", def.Prefix, "filename prefix of generated artifacts")
	fs.StringVar(&o.workdir, "workdir", def.WorkDir, "directory scanned for and receiving artifacts")
	fs.StringVar(&o.mode, "mode", def.Mode.String(), "alignment mode: blastp|blastn")
	fs.StringVarP(&o.evalue, "evalue", "e", def.EValue, "BLAST e-value cutoff")
	fs.StringVar(&o.augustusSpecies, "augustus_sp", "", "Augustus species model used to predict genes")
	fs.IntVar(&o.minlen, "minlen", def.MinLen, "minimum coding concatenate length in bases")
	fs.IntVar(&o.cpus, "cpus", def.CPUs, "threads for BLAST and parallel reconstruction")

	fs.StringVar(&o.configPath, "config", "", "HCL run configuration; flags override its attributes")
	fs.StringVar(&o.format, "format", FormatYAML, "output format: yaml|json|tsv")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	fs.StringVar(&o.logFormat, "log-format", "text", "log format: text|json")
	fs.StringVar(&o.metricsTextfile, "metrics-textfile", "", "write run metrics in Prometheus text format to this path")
}

// buildConfig layers defaults, the optional configuration file, and the
// flags explicitly set on the command line.
func (o *options) buildConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		if err := config.LoadFile(o.configPath, cfg); err != nil {
			return nil, err
		}
	}

	strs := map[string]struct {
		dst *string
		val string
	}{
		"nucl":        {&cfg.Nucl, o.nucl},
		"prot":        {&cfg.Prot, o.prot},
		"gff3":        {&cfg.GFF3, o.gff3},
		"blastout":    {&cfg.BlastOut, o.blastout},
		"spdb":        {&cfg.SwissProtDB, o.spdb},
		"prefix":      {&cfg.Prefix, o.prefix},
		"workdir":     {&cfg.WorkDir, o.workdir},
		"evalue":      {&cfg.EValue, o.evalue},
		"augustus_sp": {&cfg.AugustusSpecies, o.augustusSpecies},
	}
	for name, f := range strs {
		if fs.Changed(name) {
			*f.dst = f.val
		}
	}
	if fs.Changed("minlen") {
		cfg.MinLen = o.minlen
	}
	if fs.Changed("cpus") {
		cfg.CPUs = o.cpus
	}
	if fs.Changed("mode") {
		m, err := config.ParseMode(o.mode)
		if err != nil {
			return nil, err
		}
		cfg.Mode = m
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRootCommand(env Env, out *CLIResult) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "scgid-codons",
		Short: "Per-contig codon usage of reconstructed coding sequences",
		Long: `scgid-codons reconstructs spliced coding sequences from gene-model
annotation and counts codon usage per contig.

Gene models and BLAST results are reused from the working directory when a
matching file exists and are generated with augustus / blastp / blastn
otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return invalidInvocationf("unexpected positional arguments: %q", args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(o.format)
			if err != nil {
				return err
			}
			cfg, err := o.buildConfig(cmd.Flags())
			if err != nil {
				return err
			}

			logger := ctxlog.New(o.logLevel, o.logFormat, env.Stderr)
			ctx := ctxlog.WithLogger(cmd.Context(), logger)

			m := metrics.New()
			res, runErr := (&pipeline.Runner{
				Config:  cfg,
				Tools:   env.Tools,
				Locator: env.Locator,
				Sink:    env.Sink,
				Metrics: m,
			}).Run(ctx)

			if o.metricsTextfile != "" {
				if err := m.WriteTextfile(o.metricsTextfile); err != nil {
					logger.Warn("Could not write metrics textfile.", "path", o.metricsTextfile, "error", err)
				}
			}
			if runErr != nil {
				return runErr
			}

			out.Result = res
			return Render(env.Stdout, format, res)
		},
	}

	o.bind(cmd.Flags())
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})
	return cmd
}

// Run parses args (without argv[0]), runs the pipeline, and writes the
// rendered result to env.Stdout. The returned error is also reflected in
// CLIResult.ExitCode.
func Run(ctx context.Context, args []string, env Env) (res CLIResult, err error) {
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}

	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Value: r}
			res = CLIResult{ExitCode: ExitInternalError}
		}
	}()

	cmd := newRootCommand(env, &res)
	cmd.SetArgs(args)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		res.ExitCode = ExitCode(err)
		return res, err
	}
	res.ExitCode = ExitSuccess
	return res, nil
}

// Main runs the command with the process arguments and returns the exit code.
func Main() int {
	res, err := Run(context.Background(), os.Args[1:], Env{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "scgid-codons:", err)
	}
	return res.ExitCode
}
