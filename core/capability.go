package core

// Capability is a declared skill tag used to match agents to subtasks.
// Capabilities are a fixed enumeration rather than free-form strings so
// that matching stays typo-proof across decomposition templates, agent
// declarations and registry lookups.
type Capability string

const (
	// CapabilityExtract pulls raw data from a source.
	CapabilityExtract Capability = "extract"
	// CapabilityTransform reshapes data between pipeline stages.
	CapabilityTransform Capability = "transform"
	// CapabilityLoad writes processed data to a destination.
	CapabilityLoad Capability = "load"
	// CapabilityValidate checks processed data against expectations.
	CapabilityValidate Capability = "validate"
	// CapabilityAnalyze computes statistics or structure over data.
	CapabilityAnalyze Capability = "analyze"
	// CapabilityCompress reduces a corpus to a compact representation.
	CapabilityCompress Capability = "compress"
	// CapabilityVerify confirms a compressed artifact round-trips.
	CapabilityVerify Capability = "verify"
	// CapabilityResearch gathers supporting material for a position.
	CapabilityResearch Capability = "research"
	// CapabilityArgue produces a debate argument for a stance.
	CapabilityArgue Capability = "argue"
	// CapabilityJudge scores competing debate arguments.
	CapabilityJudge Capability = "judge"
	// CapabilityGenerate produces synthetic data.
	CapabilityGenerate Capability = "generate"
	// CapabilityProfile characterizes a dataset's distribution.
	CapabilityProfile Capability = "profile"
	// CapabilityOrchestrate coordinates composite tasks.
	CapabilityOrchestrate Capability = "orchestrate"
	// CapabilityGeneral marks an agent that accepts unclassified work.
	CapabilityGeneral Capability = "general"
)

var knownCapabilities = map[Capability]struct{}{
	CapabilityExtract:     {},
	CapabilityTransform:   {},
	CapabilityLoad:        {},
	CapabilityValidate:    {},
	CapabilityAnalyze:     {},
	CapabilityCompress:    {},
	CapabilityVerify:      {},
	CapabilityResearch:    {},
	CapabilityArgue:       {},
	CapabilityJudge:       {},
	CapabilityGenerate:    {},
	CapabilityProfile:     {},
	CapabilityOrchestrate: {},
	CapabilityGeneral:     {},
}

// ParseCapability maps a string onto a known capability tag. The boolean
// is false for strings outside the fixed enumeration.
func ParseCapability(s string) (Capability, bool) {
	c := Capability(s)
	_, ok := knownCapabilities[c]
	return c, ok
}

// Requirements narrows agent selection beyond the bare capability match.
// The zero value imposes no additional constraints.
type Requirements struct {
	// Capability overrides the subtask type as the capability to match.
	// Zero means "use the subtask type".
	Capability Capability

	// MinSuccessRate excludes agents whose historical success rate falls
	// below the threshold. Agents with no history are not excluded.
	MinSuccessRate float64
}
