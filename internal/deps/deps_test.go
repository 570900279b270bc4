package deps

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-salazarhamm/SCGid/internal/config"
	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// fakeLocator knows a fixed set of tools and records every lookup.
type fakeLocator struct {
	installed map[string]bool
	looked    []string
}

func (l *fakeLocator) LookPath(tool string) (string, error) {
	l.looked = append(l.looked, tool)
	if l.installed[tool] {
		return "/usr/bin/" + tool, nil
	}
	return "", exec.ErrNotFound
}

func newGraph(t *testing.T, loc Locator) *Graph {
	t.Helper()
	g := NewGraph(loc)
	require.NoError(t, g.Add(
		Dependency{Tool: "augustus", Artifact: config.ArgGFF3},
		Dependency{Tool: "blastn", Artifact: config.ArgBlastOut},
	))
	return g
}

func TestCheck_AllToolsPresent(t *testing.T) {
	loc := &fakeLocator{installed: map[string]bool{"augustus": true, "blastn": true}}
	g := newGraph(t, loc)

	require.NoError(t, g.Check(config.Default(), []string{config.ArgGFF3, config.ArgBlastOut}))
	assert.Equal(t, []string{"augustus", "blastn"}, loc.looked)
}

func TestCheck_OnlyPendingArtifactsNeedTools(t *testing.T) {
	loc := &fakeLocator{installed: map[string]bool{}}
	g := newGraph(t, loc)

	require.NoError(t, g.Check(config.Default(), nil))
	assert.Empty(t, loc.looked)
}

func TestCheck_MissingToolNamesToolAndArtifact(t *testing.T) {
	loc := &fakeLocator{installed: map[string]bool{"blastn": true}}
	g := newGraph(t, loc)

	err := g.Check(config.Default(), []string{config.ArgGFF3, config.ArgBlastOut})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrMissingTool)
	assert.ErrorIs(t, err, exec.ErrNotFound)

	var mt *failure.MissingToolError
	require.ErrorAs(t, err, &mt)
	assert.Equal(t, "augustus", mt.Tool)
	assert.Equal(t, config.ArgGFF3, mt.Artifact)
}

func TestCheck_ReportsEveryMissingTool(t *testing.T) {
	g := newGraph(t, &fakeLocator{})

	err := g.Check(config.Default(), []string{config.ArgGFF3, config.ArgBlastOut})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"augustus"`)
	assert.Contains(t, err.Error(), `"blastn"`)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)
}

func TestCheck_ConditionGatesDependency(t *testing.T) {
	loc := &fakeLocator{}
	g := NewGraph(loc)
	onlyBlastP := func(c *config.Config) bool { return c.Mode == config.ModeBlastP }
	require.NoError(t, g.Add(Dependency{Tool: "blastp", Artifact: config.ArgBlastOut, When: onlyBlastP}))

	cfg := config.Default()
	cfg.Mode = config.ModeBlastN
	require.NoError(t, g.Check(cfg, []string{config.ArgBlastOut}))
	assert.Empty(t, loc.looked)

	cfg.Mode = config.ModeBlastP
	assert.ErrorIs(t, g.Check(cfg, []string{config.ArgBlastOut}), failure.ErrMissingTool)
}

func TestAdd_Rejects(t *testing.T) {
	g := NewGraph(nil)
	assert.ErrorIs(t, g.Add(Dependency{Tool: "augustus"}), failure.ErrConfiguration)

	require.NoError(t, g.Add(Dependency{Tool: "augustus", Artifact: config.ArgGFF3}))
	assert.ErrorIs(t, g.Add(Dependency{Tool: "augustus", Artifact: config.ArgGFF3}), failure.ErrConfiguration)
}

func TestValidate_UnknownArtifact(t *testing.T) {
	g := newGraph(t, &fakeLocator{})
	known := func(a string) bool { return a == config.ArgGFF3 }
	assert.ErrorIs(t, g.Validate(known), failure.ErrConfiguration)

	all := func(string) bool { return true }
	assert.NoError(t, g.Validate(all))
}
