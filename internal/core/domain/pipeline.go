package domain

import (
	"errors"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
)

// TriggerKind classifies the source-control event a stage reacts to.
type TriggerKind string

const (
	TriggerPullRequest TriggerKind = "pull_request"
	TriggerPush        TriggerKind = "push"
	TriggerTag         TriggerKind = "tag"
	TriggerManual      TriggerKind = "manual"
)

// IsValid checks if the trigger kind is valid
func (k TriggerKind) IsValid() bool {
	switch k {
	case TriggerPullRequest, TriggerPush, TriggerTag, TriggerManual:
		return true
	}
	return false
}

// Matches reports whether a stage with this trigger kind should run for the
// given event kind. A tag event includes a pushed commit, so push stages also
// match tag events. Manual runs match every stage.
func (k TriggerKind) Matches(event TriggerKind) bool {
	if event == TriggerManual {
		return true
	}
	switch k {
	case TriggerPush:
		return event == TriggerPush || event == TriggerTag
	default:
		return k == event
	}
}

// StepKind classifies what tool invocation a step represents.
type StepKind string

const (
	StepLint           StepKind = "lint"
	StepUnitTest       StepKind = "unit_test"
	StepStaticAnalysis StepKind = "static_analysis"
	StepDependencyScan StepKind = "dependency_scan"
	StepBuildImage     StepKind = "build_image"
	StepImageScan      StepKind = "image_scan"
	StepPushImage      StepKind = "push_image"
	StepUpdateManifest StepKind = "update_manifest"
	StepDynamicScan    StepKind = "dynamic_scan"
	StepSmokeTest      StepKind = "smoke_test"
	StepCommand        StepKind = "command"
)

// IsValid checks if the step kind is valid
func (k StepKind) IsValid() bool {
	switch k {
	case StepLint, StepUnitTest, StepStaticAnalysis, StepDependencyScan,
		StepBuildImage, StepImageScan, StepPushImage, StepUpdateManifest,
		StepDynamicScan, StepSmokeTest, StepCommand:
		return true
	}
	return false
}

// IsScan reports whether the step is expected to emit a findings summary.
func (k StepKind) IsScan() bool {
	switch k {
	case StepStaticAnalysis, StepDependencyScan, StepImageScan, StepDynamicScan:
		return true
	}
	return false
}

// Step is a single external tool invocation within a stage.
type Step struct {
	Name           string   `json:"name"`
	Kind           StepKind `json:"kind"`
	Command        []string `json:"command"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
}

// Stage is a node of the pipeline graph. Needs lists the names of stages that
// must succeed before this stage may run (the gating edges).
type Stage struct {
	Name            string      `json:"name"`
	Trigger         TriggerKind `json:"trigger"`
	Needs           []string    `json:"needs,omitempty"`
	Steps           []Step      `json:"steps"`
	TargetEnv       string      `json:"target_env,omitempty"`
	MaxScanSeverity Severity    `json:"max_scan_severity,omitempty"`
}

// Pipeline is the stage DAG registered for one source repository.
type Pipeline struct {
	ID            uuid.UUID         `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ProjectID     uuid.UUID         `json:"project_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	RepoURL       string            `json:"repo_url"`
	DefaultBranch string            `json:"default_branch"`
	Stages        []Stage           `json:"stages"`
	Labels        map[string]string `json:"labels"`
}

// NewPipeline creates a new Pipeline with validation
func NewPipeline(projectID uuid.UUID, name, description, repoURL, defaultBranch string, stages []Stage) (*Pipeline, error) {
	if name == "" {
		return nil, ErrInvalidPipelineName
	}
	if repoURL == "" {
		return nil, ErrInvalidRepoURL
	}
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if err := ValidateStages(stages); err != nil {
		return nil, err
	}
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	now := time.Now()
	return &Pipeline{
		ID:            uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
		ProjectID:     projectID,
		Name:          name,
		Description:   description,
		RepoURL:       repoURL,
		DefaultBranch: defaultBranch,
		Stages:        stages,
		Labels:        make(map[string]string),
	}, nil
}

// Update updates the mutable pipeline fields. A non-nil stages slice replaces
// the stage graph and is re-validated.
func (p *Pipeline) Update(name, description, defaultBranch *string, stages []Stage) error {
	if stages != nil {
		if err := ValidateStages(stages); err != nil {
			return err
		}
		p.Stages = stages
	}
	if name != nil {
		if *name == "" {
			return ErrInvalidPipelineName
		}
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	if defaultBranch != nil && *defaultBranch != "" {
		p.DefaultBranch = *defaultBranch
	}
	p.UpdatedAt = time.Now()
	return nil
}

// Stage returns the stage with the given name.
func (p *Pipeline) Stage(name string) (*Stage, bool) {
	for i := range p.Stages {
		if p.Stages[i].Name == name {
			return &p.Stages[i], true
		}
	}
	return nil, false
}

// ValidateStages checks the stage list and its dependency graph: unique
// non-empty names, valid trigger and step kinds, at least one step per stage,
// known Needs references and no cycles.
func ValidateStages(stages []Stage) error {
	if len(stages) == 0 {
		return ErrNoStages
	}

	byName := make(map[string]bool, len(stages))
	for _, st := range stages {
		if st.Name == "" {
			return ErrInvalidStageName
		}
		if byName[st.Name] {
			return ErrDuplicateStageName
		}
		byName[st.Name] = true

		if !st.Trigger.IsValid() {
			return ErrInvalidTriggerKind
		}
		if len(st.Steps) == 0 {
			return ErrStageWithoutSteps
		}
		for _, step := range st.Steps {
			if !step.Kind.IsValid() {
				return ErrInvalidStepKind
			}
			if len(step.Command) == 0 {
				return ErrInvalidStepCommand
			}
		}
		if st.TargetEnv == EnvProduction && st.Trigger != TriggerTag {
			return ErrProdStageNotTagTriggered
		}
	}

	_, err := StageGraph(stages)
	return err
}

// StageGraph builds the directed acyclic dependency graph of the stages.
// Cycle detection is delegated to the graph library: with PreventCycles an
// edge that would close a cycle is rejected at insertion time.
func StageGraph(stages []Stage) (graph.Graph[string, string], error) {
	byName := make(map[string]bool, len(stages))
	for _, st := range stages {
		byName[st.Name] = true
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())
	for _, st := range stages {
		if err := g.AddVertex(st.Name); err != nil {
			return nil, err
		}
	}
	for _, st := range stages {
		for _, need := range st.Needs {
			if !byName[need] {
				return nil, ErrUnknownStageDependency
			}
			if err := g.AddEdge(need, st.Name); err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					return nil, ErrStageCycle
				}
				return nil, err
			}
		}
	}
	return g, nil
}

// ExecutionLevels groups stage names by dependency depth. Stages within a
// level have no edges between them and may run concurrently; level i+1 only
// contains stages whose Needs all resolved in levels <= i.
func (p *Pipeline) ExecutionLevels() ([][]string, error) {
	if _, err := StageGraph(p.Stages); err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(p.Stages))
	var depthOf func(name string) int
	depthOf = func(name string) int {
		if d, ok := depth[name]; ok {
			return d
		}
		st, _ := p.Stage(name)
		d := 0
		for _, need := range st.Needs {
			if nd := depthOf(need) + 1; nd > d {
				d = nd
			}
		}
		depth[name] = d
		return d
	}

	maxDepth := 0
	for _, st := range p.Stages {
		if d := depthOf(st.Name); d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, st := range p.Stages {
		d := depth[st.Name]
		levels[d] = append(levels[d], st.Name)
	}
	return levels, nil
}

// Dependents returns the names of all stages that transitively depend on the
// given stage.
func (p *Pipeline) Dependents(name string) []string {
	direct := make(map[string][]string, len(p.Stages))
	for _, st := range p.Stages {
		for _, need := range st.Needs {
			direct[need] = append(direct[need], st.Name)
		}
	}

	seen := make(map[string]bool)
	queue := append([]string(nil), direct[name]...)
	var out []string
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, direct[next]...)
	}
	return out
}
