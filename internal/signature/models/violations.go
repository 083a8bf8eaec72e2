package models

// Violations maps a field name to the human-readable reasons it failed. An
// empty map means the record is valid. All checks run; failures are collected,
// never reported one at a time.
type Violations map[string][]string

// Add records a failure reason for a field.
func (v Violations) Add(field, reason string) {
	v[field] = append(v[field], reason)
}

// Merge folds other's reasons into v.
func (v Violations) Merge(other Violations) {
	for field, reasons := range other {
		v[field] = append(v[field], reasons...)
	}
}

// Any reports whether at least one violation was recorded.
func (v Violations) Any() bool {
	return len(v) > 0
}
