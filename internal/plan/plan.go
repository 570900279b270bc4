// Package plan turns the run Mode into the complete set of artifacts and
// tool dependencies of a run. The set is decided once, at startup.
package plan

import (
	"github.com/p-salazarhamm/SCGid/internal/artifact"
	"github.com/p-salazarhamm/SCGid/internal/config"
	"github.com/p-salazarhamm/SCGid/internal/deps"
	"github.com/p-salazarhamm/SCGid/internal/failure"
	"github.com/p-salazarhamm/SCGid/internal/tools"
)

// ContractVersion identifies the filename contract below. Working
// directories written by earlier runs are reused only because these patterns
// stay stable; changing one is a new version.
const ContractVersion = 1

// Contract binds a configuration argument to the filename pattern used to
// discover it and the suffix used to name it when generated.
type Contract struct {
	Argument string
	Pattern  string
	Suffix   string
	Tool     string
}

var (
	GeneModels = Contract{
		Argument: config.ArgGFF3,
		Pattern:  `.*[.]aug[.]out[.]gff3$`,
		Suffix:   "aug.out.gff3",
		Tool:     "augustus",
	}
	ProteinHits = Contract{
		Argument: config.ArgBlastOut,
		Pattern:  `.*[.]spdb[.]blast[.]out$`,
		Suffix:   "spdb.blast.out",
		Tool:     "blastp",
	}
	NucleotideHits = Contract{
		Argument: config.ArgBlastOut,
		Pattern:  `.*[.]nt[.]blast[.]out$`,
		Suffix:   "nt.blast.out",
		Tool:     "blastn",
	}
)

// Contracts lists the artifacts a mode requires, in resolution order.
func Contracts(m config.Mode) ([]Contract, error) {
	switch m {
	case config.ModeBlastP:
		return []Contract{GeneModels, ProteinHits}, nil
	case config.ModeBlastN:
		return []Contract{GeneModels, NucleotideHits}, nil
	default:
		return nil, failure.Configf("mode", "invalid mode %d (expected blastp|blastn)", int(m))
	}
}

// Plan is the resolved artifact and dependency set of a run.
type Plan struct {
	Mode         config.Mode
	Specs        []artifact.Spec
	Dependencies []deps.Dependency
}

// Build resolves the plan for cfg. Generators are bound to the tool
// parameters in cfg and run their commands through runner.
func Build(cfg *config.Config, runner tools.Runner) (*Plan, error) {
	contracts, err := Contracts(cfg.Mode)
	if err != nil {
		return nil, err
	}

	p := &Plan{Mode: cfg.Mode}
	for _, c := range contracts {
		spec, err := artifact.NewSpec(c.Argument, c.Pattern, cfg.OutputPath(c.Suffix), generator(c, cfg, runner))
		if err != nil {
			return nil, err
		}
		p.Specs = append(p.Specs, spec)
		p.Dependencies = append(p.Dependencies, deps.Dependency{Tool: c.Tool, Artifact: c.Argument})
	}
	return p, nil
}

func generator(c Contract, cfg *config.Config, runner tools.Runner) artifact.Generator {
	switch c {
	case ProteinHits:
		return tools.NewProteinBlast(runner, cfg.Prot, cfg.SwissProtDB, cfg.EValue, cfg.CPUs)
	case NucleotideHits:
		return tools.NewNucleotideBlast(runner, cfg.Nucl, cfg.EValue, cfg.CPUs)
	default:
		return &tools.Augustus{Runner: runner, Nucl: cfg.Nucl, Species: cfg.AugustusSpecies}
	}
}
