// Package pipeline drives one codon census run: artifact resolution, tool
// checks and generation, then coding-sequence reconstruction and codon
// counting.
//
// Stages run strictly in order. A failing stage moves the run to FAILED and
// Run returns only the error; no partial census is ever returned.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/p-salazarhamm/SCGid/internal/artifact"
	"github.com/p-salazarhamm/SCGid/internal/cds"
	"github.com/p-salazarhamm/SCGid/internal/codon"
	"github.com/p-salazarhamm/SCGid/internal/config"
	"github.com/p-salazarhamm/SCGid/internal/ctxlog"
	"github.com/p-salazarhamm/SCGid/internal/deps"
	"github.com/p-salazarhamm/SCGid/internal/gff"
	"github.com/p-salazarhamm/SCGid/internal/metrics"
	"github.com/p-salazarhamm/SCGid/internal/plan"
	"github.com/p-salazarhamm/SCGid/internal/seq"
	"github.com/p-salazarhamm/SCGid/internal/tools"
)

// Runner holds the collaborators of a run. Only Config is required.
type Runner struct {
	Config *config.Config

	// Tools runs external generators. Nil uses tools.NewExecutor.
	Tools tools.Runner

	// Locator finds tool executables. Nil searches PATH.
	Locator deps.Locator

	// Sink receives trace events. Nil discards them.
	Sink Sink

	// Metrics receives run counters. Nil allocates a private set.
	Metrics *metrics.Metrics
}

// Stats summarizes the filtering decisions of a run.
type Stats struct {
	Contigs             int `json:"contigs" yaml:"contigs"`
	GenesKept           int `json:"genes_kept" yaml:"genes_kept"`
	GenesDropped        int `json:"genes_dropped" yaml:"genes_dropped"`
	GenesEmpty          int `json:"genes_empty" yaml:"genes_empty"`
	FragmentsSkipped    int `json:"fragments_skipped" yaml:"fragments_skipped"`
	ConcatenatesKept    int `json:"concatenates_kept" yaml:"concatenates_kept"`
	ConcatenatesDropped int `json:"concatenates_dropped" yaml:"concatenates_dropped"`
}

// Result is the output of a successful run.
type Result struct {
	RunID           string             `json:"run_id" yaml:"run_id"`
	Mode            config.Mode        `json:"mode" yaml:"mode"`
	ContractVersion int                `json:"contract_version" yaml:"contract_version"`
	Artifacts       []artifact.Outcome `json:"artifacts" yaml:"artifacts"`
	Stats           Stats              `json:"stats" yaml:"stats"`

	// Censuses holds one entry per retained contig, in annotation order.
	Censuses []codon.Census `json:"censuses" yaml:"censuses"`
}

// run is the mutable state threaded through the stages.
type run struct {
	*Runner
	id string

	manager *artifact.Manager
	graph   *deps.Graph

	contigs    *seq.Contigs
	annotation *gff.Annotation
	recon      *cds.Result
	kept       []seq.Concatenate
	censuses   []codon.Census
	stats      Stats
}

// Run executes every stage and returns the census of the retained contigs.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.Config == nil {
		return nil, errors.New("pipeline: nil config")
	}
	if r.Metrics == nil {
		r.Metrics = metrics.New()
	}
	if r.Sink == nil {
		r.Sink = NopSink{}
	}

	st := &run{Runner: r, id: uuid.NewString()}
	logger := ctxlog.FromContext(ctx).With("run_id", st.id)
	ctx = ctxlog.WithLogger(ctx, logger)

	steps := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageInit, st.resolve},
		{StageDependencyCheck, st.checkDependencies},
		{StageGenerateMissing, st.generateMissing},
		{StageLoadContigs, st.loadContigs},
		{StageAnnotationParse, st.parseAnnotation},
		{StageCDSReconstruct, st.reconstruct},
		{StageSizeFilter, st.sizeFilter},
		{StageCodonCensus, st.census},
		{StageOutput, func(context.Context) error { return nil }},
	}

	m := NewMachine()
	prev := StageInit
	for _, step := range steps {
		if step.stage != StageInit {
			if err := m.Transition(prev, step.stage); err != nil {
				return nil, err
			}
			prev = step.stage
		}
		SafeRecord(r.Sink, Event{Kind: EventStageEntered, Stage: step.stage})
		logger.Info("Entering stage.", "stage", step.stage)

		start := time.Now()
		err := step.fn(ctx)
		r.Metrics.StageDuration.WithLabelValues(string(step.stage)).Observe(time.Since(start).Seconds())

		if err != nil {
			failed, _ := m.Fail()
			r.Metrics.Failures.WithLabelValues(string(failed)).Inc()
			SafeRecord(r.Sink, Event{Kind: EventRunFailed, Stage: failed})
			logger.Error("Run failed.", "stage", failed, "error", err)
			return nil, fmt.Errorf("%s: %w", failed, err)
		}
	}

	logger.Info("Run complete.",
		"contigs", len(st.censuses),
		"genes_kept", st.stats.GenesKept,
		"genes_dropped", st.stats.GenesDropped)

	return &Result{
		RunID:           st.id,
		Mode:            r.Config.Mode,
		ContractVersion: plan.ContractVersion,
		Artifacts:       st.manager.Outcomes(),
		Stats:           st.stats,
		Censuses:        st.censuses,
	}, nil
}

// resolve builds the mode plan, registers its artifacts and dependencies, and
// resolves every artifact against the working directory.
func (st *run) resolve(ctx context.Context) error {
	p, err := plan.Build(st.Config, st.Tools)
	if err != nil {
		return err
	}

	st.manager = artifact.NewManager(st.Config.WorkDir, st.Config)
	if err := st.manager.Register(p.Specs...); err != nil {
		return err
	}

	st.graph = deps.NewGraph(st.Locator)
	if err := st.graph.Add(p.Dependencies...); err != nil {
		return err
	}
	if err := st.graph.Validate(func(arg string) bool {
		_, ok := st.manager.Spec(arg)
		return ok
	}); err != nil {
		return err
	}

	if err := st.manager.Resolve(ctx); err != nil {
		return err
	}
	for _, o := range st.manager.Outcomes() {
		st.recordArtifact(StageInit, o)
	}
	return nil
}

func (st *run) checkDependencies(context.Context) error {
	if err := st.graph.Check(st.Config, st.manager.Pending()); err != nil {
		return err
	}
	return st.manager.ValidatePending()
}

func (st *run) generateMissing(ctx context.Context) error {
	pending := st.manager.Pending()
	if err := st.manager.GenerateMissing(ctx); err != nil {
		return err
	}
	st.Config.Freeze()

	for _, arg := range pending {
		path, _ := st.Config.Path(arg)
		st.recordArtifact(StageGenerateMissing, artifact.Outcome{Argument: arg, Status: artifact.StatusGenerated, Path: path})
	}
	return nil
}

func (st *run) loadContigs(ctx context.Context) error {
	contigs, err := seq.ReadFASTA(st.Config.Nucl)
	if err != nil {
		return err
	}
	st.contigs = contigs
	ctxlog.FromContext(ctx).Info("Loaded contigs.", "count", contigs.Len(), "path", st.Config.Nucl)
	return nil
}

func (st *run) parseAnnotation(ctx context.Context) error {
	path, ok := st.Config.Path(config.ArgGFF3)
	if !ok {
		return fmt.Errorf("no annotation bound to %q", config.ArgGFF3)
	}
	ann, err := gff.ParseFile(path)
	if err != nil {
		return err
	}
	st.annotation = ann
	ctxlog.FromContext(ctx).Info("Parsed annotation.", "contigs", len(ann.Contigs), "path", path)
	return nil
}

func (st *run) reconstruct(ctx context.Context) error {
	res, err := cds.Reconstruct(ctx, st.annotation, st.contigs, st.Config.CPUs)
	if err != nil {
		return err
	}
	st.recon = res

	logger := ctxlog.FromContext(ctx)
	for _, d := range res.Dropped {
		logger.Debug("Dropped gene out of frame.", "contig", d.Contig, "gene", d.Gene, "length", d.Length)
		SafeRecord(st.Sink, Event{Kind: EventGeneDropped, Stage: StageCDSReconstruct, Subject: d.Gene, Detail: d.Contig})
	}

	st.stats.GenesKept = res.Stats.GenesKept
	st.stats.GenesDropped = res.Stats.GenesDropped
	st.stats.GenesEmpty = res.Stats.GenesEmpty
	st.stats.FragmentsSkipped = res.Stats.FragmentsSkipped
	st.Metrics.Genes.WithLabelValues("kept").Add(float64(res.Stats.GenesKept))
	st.Metrics.Genes.WithLabelValues("dropped").Add(float64(res.Stats.GenesDropped))
	st.Metrics.Genes.WithLabelValues("empty").Add(float64(res.Stats.GenesEmpty))
	st.Metrics.Fragments.Add(float64(res.Stats.FragmentsSkipped))
	return nil
}

func (st *run) sizeFilter(ctx context.Context) error {
	kept, dropped := seq.RemoveSmall(st.recon.Concatenates, st.Config.MinLen)
	st.kept = kept

	logger := ctxlog.FromContext(ctx)
	for _, c := range dropped {
		logger.Debug("Dropped short concatenate.", "contig", c.Contig, "length", c.Len(), "min", st.Config.MinLen)
		SafeRecord(st.Sink, Event{Kind: EventConcatenateDropped, Stage: StageSizeFilter, Subject: c.Contig})
	}
	logger.Info("Filtered concatenates by length.", "kept", len(kept), "dropped", len(dropped), "min", st.Config.MinLen)

	st.stats.ConcatenatesKept = len(kept)
	st.stats.ConcatenatesDropped = len(dropped)
	st.Metrics.Concatenates.WithLabelValues("kept").Add(float64(len(kept)))
	st.Metrics.Concatenates.WithLabelValues("dropped").Add(float64(len(dropped)))
	return nil
}

func (st *run) census(context.Context) error {
	st.censuses = make([]codon.Census, 0, len(st.kept))
	for _, c := range st.kept {
		cen := codon.Summarize(c.Contig, c.Genes, c.Sequence)
		st.Metrics.Codons.Add(float64(cen.Codons))
		st.censuses = append(st.censuses, cen)
	}
	st.stats.Contigs = len(st.censuses)
	return nil
}

func (st *run) recordArtifact(stage Stage, o artifact.Outcome) {
	var kind EventKind
	switch o.Status {
	case artifact.StatusExplicit:
		kind = EventArtifactExplicit
	case artifact.StatusReused:
		kind = EventArtifactReused
	case artifact.StatusPending:
		kind = EventArtifactPending
	case artifact.StatusGenerated:
		kind = EventArtifactGenerated
	default:
		return
	}
	SafeRecord(st.Sink, Event{Kind: kind, Stage: stage, Subject: o.Argument})
	if o.Status != artifact.StatusPending {
		st.Metrics.Artifacts.WithLabelValues(o.Argument, string(o.Status)).Inc()
	}
}
