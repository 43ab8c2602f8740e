// Package issues holds the structured "something is missing" records the
// preview engine reports instead of failing.
package issues

import "sort"

// Type tags the kind of issue.
type Type string

const (
	// MissingValue marks a required control value with no value or default.
	MissingValue Type = "MISSING_VALUE"
	// MissingVariableInPayload marks a variable referenced by a control that
	// the example payload does not provide.
	MissingVariableInPayload Type = "MISSING_VARIABLE_IN_PAYLOAD"
)

// Issue describes one missing value.
type Issue struct {
	IssueType    Type   `json:"issueType"`
	Message      string `json:"message"`
	VariableName string `json:"variableName,omitempty"`
}

// Record maps a control key or schema path to its issues in report order.
type Record map[string][]Issue

// Add appends an issue under key, allocating the record entry when needed.
func (r Record) Add(key string, issue Issue) {
	r[key] = append(r[key], issue)
}

// Len returns the total number of issues across all keys.
func (r Record) Len() int {
	total := 0
	for _, list := range r {
		total += len(list)
	}
	return total
}

// Keys returns the record keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key carries at least one issue of type t.
func (r Record) Has(key string, t Type) bool {
	for _, issue := range r[key] {
		if issue.IssueType == t {
			return true
		}
	}
	return false
}

// Merge combines records into a new one. Issues under the same key are
// concatenated in argument order; inputs are left untouched.
func Merge(records ...Record) Record {
	out := make(Record)
	for _, record := range records {
		for _, key := range record.Keys() {
			out[key] = append(out[key], record[key]...)
		}
	}
	return out
}

// MissingValueIssue builds the issue reported for a required control without
// a value.
func MissingValueIssue() Issue {
	return Issue{
		IssueType: MissingValue,
		Message:   "Value is missing on a required control",
	}
}

// MissingVariableIssue builds the issue reported for a payload variable the
// example payload does not provide.
func MissingVariableIssue(path string) Issue {
	return Issue{
		IssueType:    MissingVariableInPayload,
		Message:      "Variable " + path + " is missing in payload",
		VariableName: path,
	}
}
