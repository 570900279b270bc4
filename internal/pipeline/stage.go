package pipeline

import "fmt"

// Stage is one step of a run.
//
//	INIT -> DEPENDENCY_CHECK -> GENERATE_MISSING_ARTIFACTS -> LOAD_CONTIGS ->
//	ANNOTATION_PARSE -> CDS_RECONSTRUCT -> SIZE_FILTER -> CODON_CENSUS -> OUTPUT
//
// Any non-terminal stage may move to FAILED.
type Stage string

const (
	StageInit            Stage = "INIT"
	StageDependencyCheck Stage = "DEPENDENCY_CHECK"
	StageGenerateMissing Stage = "GENERATE_MISSING_ARTIFACTS"
	StageLoadContigs     Stage = "LOAD_CONTIGS"
	StageAnnotationParse Stage = "ANNOTATION_PARSE"
	StageCDSReconstruct  Stage = "CDS_RECONSTRUCT"
	StageSizeFilter      Stage = "SIZE_FILTER"
	StageCodonCensus     Stage = "CODON_CENSUS"
	StageOutput          Stage = "OUTPUT"
	StageFailed          Stage = "FAILED"
)

// Stages lists the stages of a successful run in order.
var Stages = []Stage{
	StageInit,
	StageDependencyCheck,
	StageGenerateMissing,
	StageLoadContigs,
	StageAnnotationParse,
	StageCDSReconstruct,
	StageSizeFilter,
	StageCodonCensus,
	StageOutput,
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Stage) bool {
	return s == StageOutput || s == StageFailed
}

// Machine tracks the current stage of one run. It is not safe for concurrent
// use.
type Machine struct {
	current Stage
	history []Stage
}

// NewMachine returns a machine positioned at INIT.
func NewMachine() *Machine {
	return &Machine{current: StageInit, history: []Stage{StageInit}}
}

// Current returns the current stage.
func (m *Machine) Current() Stage { return m.current }

// History returns every stage entered, in order.
func (m *Machine) History() []Stage {
	out := make([]Stage, len(m.history))
	copy(out, m.history)
	return out
}

// Transition moves from -> to. The caller supplies the expected prior stage;
// a mismatch is an error.
func (m *Machine) Transition(from, to Stage) error {
	if m.current != from {
		return fmt.Errorf("invalid transition: expected %s, got %s", from, m.current)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}

// Fail moves the machine to FAILED from any non-terminal stage and returns
// the stage that failed.
func (m *Machine) Fail() (Stage, error) {
	from := m.current
	if err := m.Transition(from, StageFailed); err != nil {
		return from, err
	}
	return from, nil
}

func isAllowedTransition(from, to Stage) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StageFailed {
		return true
	}
	for i, s := range Stages[:len(Stages)-1] {
		if s == from {
			return Stages[i+1] == to
		}
	}
	return false
}
