// Package decompose maps operation names onto subtask templates and
// computes the dependency layering that drives generation-based concurrent
// execution. Recognized operations expand into a fixed pipeline of stages;
// everything else becomes a single atomic subtask with no dependencies.
package decompose

import (
	"github.com/agenthive/hive/core"
)

// Stage is one named step of an operation template.
type Stage struct {
	// Name becomes the suffix of the subtask id.
	Name string
	// Type is the capability an executing agent must declare.
	Type core.Capability
	// DependsOn lists the names of prerequisite stages.
	DependsOn []string
}

// Template is the fixed subtask pipeline for one operation.
type Template struct {
	Operation string
	Stages    []Stage
}

// Graph maps subtask id to the ids of its prerequisites.
type Graph map[string][]string

// Options configures a Decomposer.
type Options struct {
	// Templates replaces the built-in template set when non-nil.
	Templates []Template
}

// Decomposer turns a named operation and its parameters into a subtask
// list and an explicit dependency graph.
type Decomposer struct {
	templates map[string]Template
}

// New creates a decomposer with the built-in operation templates, unless
// the options supply a replacement set.
func New(optFns ...func(o *Options)) *Decomposer {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	templates := opts.Templates
	if templates == nil {
		templates = builtinTemplates()
	}

	d := &Decomposer{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		d.templates[t.Operation] = t
	}
	return d
}

// RegisterTemplate adds or replaces the template for an operation.
func (d *Decomposer) RegisterTemplate(t Template) {
	d.templates[t.Operation] = t
}

// Operations lists the operation names with a registered template.
func (d *Decomposer) Operations() []string {
	ops := make([]string, 0, len(d.templates))
	for op := range d.templates {
		ops = append(ops, op)
	}
	return ops
}

// Decompose expands the task into subtasks plus their dependency graph.
// Unrecognized operations yield a single atomic subtask with an empty
// dependency set; its capability is the operation name itself when that is
// a known capability, or "general" otherwise.
func (d *Decomposer) Decompose(task core.Task) ([]core.Subtask, Graph) {
	tmpl, ok := d.templates[task.Operation]
	if !ok {
		capability := core.CapabilityGeneral
		if c, known := core.ParseCapability(task.Operation); known {
			capability = c
		}
		id := task.ID + "-0"
		return []core.Subtask{{
				ID:    id,
				Type:  capability,
				Input: cloneParams(task.Parameters),
			}}, Graph{
				id: nil,
			}
	}

	subtasks := make([]core.Subtask, 0, len(tmpl.Stages))
	graph := make(Graph, len(tmpl.Stages))
	stageID := func(name string) string { return task.ID + "-" + name }

	for _, stage := range tmpl.Stages {
		id := stageID(stage.Name)
		input := cloneParams(task.Parameters)
		deps := make([]string, 0, len(stage.DependsOn))
		for _, dep := range stage.DependsOn {
			depID := stageID(dep)
			deps = append(deps, depID)
			// Each prerequisite's whole result payload is wired into the
			// input under the prerequisite's stage name; the coordinator
			// resolves the reference once the prerequisite has finished.
			input[dep] = core.DependencyRef{SubtaskID: depID}
		}
		subtasks = append(subtasks, core.Subtask{
			ID:    id,
			Type:  stage.Type,
			Input: input,
		})
		graph[id] = deps
	}

	return subtasks, graph
}

func cloneParams(params map[string]any) map[string]any {
	clone := make(map[string]any, len(params))
	for k, v := range params {
		clone[k] = v
	}
	return clone
}

// builtinTemplates returns the fixed operation templates the runtime ships
// with: a linear ETL pipeline, a linear compression pipeline, a
// partially-parallel debate round and a fan-in synthetic-data flow.
func builtinTemplates() []Template {
	return []Template{
		{
			Operation: "etl_pipeline",
			Stages: []Stage{
				{Name: "extract", Type: core.CapabilityExtract},
				{Name: "transform", Type: core.CapabilityTransform, DependsOn: []string{"extract"}},
				{Name: "load", Type: core.CapabilityLoad, DependsOn: []string{"transform"}},
				{Name: "validate", Type: core.CapabilityValidate, DependsOn: []string{"load"}},
			},
		},
		{
			Operation: "compress_corpus",
			Stages: []Stage{
				{Name: "analyze", Type: core.CapabilityAnalyze},
				{Name: "compress", Type: core.CapabilityCompress, DependsOn: []string{"analyze"}},
				{Name: "verify", Type: core.CapabilityVerify, DependsOn: []string{"compress"}},
			},
		},
		{
			Operation: "debate_round",
			Stages: []Stage{
				{Name: "research_pro", Type: core.CapabilityResearch},
				{Name: "research_con", Type: core.CapabilityResearch},
				{Name: "argue_pro", Type: core.CapabilityArgue, DependsOn: []string{"research_pro"}},
				{Name: "argue_con", Type: core.CapabilityArgue, DependsOn: []string{"research_con"}},
				{Name: "judge", Type: core.CapabilityJudge, DependsOn: []string{"argue_pro", "argue_con"}},
			},
		},
		{
			Operation: "synthesize_dataset",
			Stages: []Stage{
				{Name: "generate", Type: core.CapabilityGenerate},
				{Name: "profile", Type: core.CapabilityProfile},
				{Name: "validate", Type: core.CapabilityValidate, DependsOn: []string{"generate", "profile"}},
			},
		},
	}
}
