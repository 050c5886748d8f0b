package core

// BootstrapResult accumulates the named validation checks an agent runs
// before becoming operational. Success is the strict logical AND over all
// recorded checks.
type BootstrapResult struct {
	Checks   map[string]bool
	Errors   []string
	Warnings []string
}

// NewBootstrapResult returns an empty result ready for Record calls.
func NewBootstrapResult() *BootstrapResult {
	return &BootstrapResult{Checks: make(map[string]bool)}
}

// Record stores the outcome of one named validation check.
func (r *BootstrapResult) Record(name string, passed bool) {
	r.Checks[name] = passed
}

// AddError appends a validation error message.
func (r *BootstrapResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddWarning appends a non-fatal validation message.
func (r *BootstrapResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Success reports whether every recorded check passed.
func (r *BootstrapResult) Success() bool {
	for _, passed := range r.Checks {
		if !passed {
			return false
		}
	}
	return true
}
