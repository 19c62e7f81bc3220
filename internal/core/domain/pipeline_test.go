package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func buildStage(name string, trigger TriggerKind, needs ...string) Stage {
	return Stage{
		Name:    name,
		Trigger: trigger,
		Needs:   needs,
		Steps:   []Step{{Name: "step", Kind: StepCommand, Command: []string{"true"}}},
	}
}

func TestNewPipeline(t *testing.T) {
	stages := []Stage{buildStage("build", TriggerPush)}
	p, err := NewPipeline(uuid.New(), "svc", "desc", "https://git.example.com/org/svc", "", stages)
	assert.NoError(t, err)
	assert.Equal(t, "main", p.DefaultBranch)
	assert.NotEqual(t, uuid.Nil, p.ID)
}

func TestNewPipeline_Invalid(t *testing.T) {
	stages := []Stage{buildStage("build", TriggerPush)}

	_, err := NewPipeline(uuid.New(), "", "", "https://git.example.com/org/svc", "main", stages)
	assert.ErrorIs(t, err, ErrInvalidPipelineName)

	_, err = NewPipeline(uuid.New(), "svc", "", "", "main", stages)
	assert.ErrorIs(t, err, ErrInvalidRepoURL)

	_, err = NewPipeline(uuid.Nil, "svc", "", "https://git.example.com/org/svc", "main", stages)
	assert.ErrorIs(t, err, ErrMissingProjectID)
}

func TestValidateStages_Empty(t *testing.T) {
	assert.ErrorIs(t, ValidateStages(nil), ErrNoStages)
}

func TestValidateStages_DuplicateName(t *testing.T) {
	stages := []Stage{buildStage("build", TriggerPush), buildStage("build", TriggerPush)}
	assert.ErrorIs(t, ValidateStages(stages), ErrDuplicateStageName)
}

func TestValidateStages_UnknownDependency(t *testing.T) {
	stages := []Stage{buildStage("deploy", TriggerPush, "build")}
	assert.ErrorIs(t, ValidateStages(stages), ErrUnknownStageDependency)
}

func TestValidateStages_Cycle(t *testing.T) {
	stages := []Stage{
		buildStage("a", TriggerPush, "c"),
		buildStage("b", TriggerPush, "a"),
		buildStage("c", TriggerPush, "b"),
	}
	assert.ErrorIs(t, ValidateStages(stages), ErrStageCycle)
}

func TestValidateStages_NoSteps(t *testing.T) {
	stages := []Stage{{Name: "build", Trigger: TriggerPush}}
	assert.ErrorIs(t, ValidateStages(stages), ErrStageWithoutSteps)
}

func TestValidateStages_InvalidStepCommand(t *testing.T) {
	stages := []Stage{{
		Name:    "build",
		Trigger: TriggerPush,
		Steps:   []Step{{Name: "s", Kind: StepCommand}},
	}}
	assert.ErrorIs(t, ValidateStages(stages), ErrInvalidStepCommand)
}

func TestValidateStages_ProdRequiresTagTrigger(t *testing.T) {
	prod := buildStage("release", TriggerPush)
	prod.TargetEnv = EnvProduction
	assert.ErrorIs(t, ValidateStages([]Stage{prod}), ErrProdStageNotTagTriggered)

	prod.Trigger = TriggerTag
	assert.NoError(t, ValidateStages([]Stage{prod}))
}

func TestExecutionLevels(t *testing.T) {
	p := &Pipeline{Stages: []Stage{
		buildStage("lint", TriggerPush),
		buildStage("test", TriggerPush),
		buildStage("build", TriggerPush, "lint", "test"),
		buildStage("deploy", TriggerPush, "build"),
	}}

	levels, err := p.ExecutionLevels()
	assert.NoError(t, err)
	assert.Len(t, levels, 3)
	assert.ElementsMatch(t, []string{"lint", "test"}, levels[0])
	assert.Equal(t, []string{"build"}, levels[1])
	assert.Equal(t, []string{"deploy"}, levels[2])
}

func TestDependents(t *testing.T) {
	p := &Pipeline{Stages: []Stage{
		buildStage("build", TriggerPush),
		buildStage("scan", TriggerPush, "build"),
		buildStage("deploy", TriggerPush, "scan"),
		buildStage("docs", TriggerPush),
	}}

	assert.ElementsMatch(t, []string{"scan", "deploy"}, p.Dependents("build"))
	assert.Empty(t, p.Dependents("docs"))
}

func TestTriggerKind_Matches(t *testing.T) {
	// Manual runs match every stage.
	assert.True(t, TriggerPullRequest.Matches(TriggerManual))
	assert.True(t, TriggerTag.Matches(TriggerManual))

	// A tag event includes a pushed commit.
	assert.True(t, TriggerPush.Matches(TriggerPush))
	assert.True(t, TriggerPush.Matches(TriggerTag))
	assert.False(t, TriggerPush.Matches(TriggerPullRequest))

	assert.True(t, TriggerTag.Matches(TriggerTag))
	assert.False(t, TriggerTag.Matches(TriggerPush))
	assert.False(t, TriggerPullRequest.Matches(TriggerPush))
}

func TestPipelineUpdate_RevalidatesStages(t *testing.T) {
	p, err := NewPipeline(uuid.New(), "svc", "", "https://git.example.com/org/svc", "main",
		[]Stage{buildStage("build", TriggerPush)})
	assert.NoError(t, err)

	bad := []Stage{buildStage("a", TriggerPush, "b"), buildStage("b", TriggerPush, "a")}
	assert.ErrorIs(t, p.Update(nil, nil, nil, bad), ErrStageCycle)

	name := "renamed"
	assert.NoError(t, p.Update(&name, nil, nil, nil))
	assert.Equal(t, "renamed", p.Name)
}
