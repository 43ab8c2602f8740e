package prompt

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-preview/pkg/issues"
	"github.com/goliatone/go-preview/pkg/paths"
)

// MissingVariables lists the distinct payload variables named by the
// missing-variable issues of record, sorted.
func MissingVariables(record issues.Record) []string {
	seen := make(map[string]struct{})
	for _, list := range record {
		for _, issue := range list {
			if issue.IssueType != issues.MissingVariableInPayload || issue.VariableName == "" {
				continue
			}
			seen[issue.VariableName] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Collect asks for a value for every missing payload variable in record and
// returns a copy of payload with the answers set. Blank answers leave the
// variable missing. Answers that parse as numbers or booleans are stored as
// such.
func Collect(ctx context.Context, driver Driver, record issues.Record, payload map[string]any) (map[string]any, int, error) {
	out := paths.CloneMap(payload)
	if out == nil {
		out = make(map[string]any)
	}

	names := MissingVariables(record)
	if len(names) == 0 {
		return out, 0, nil
	}
	if err := driver.Info(ctx, fmt.Sprintf("%d payload variable(s) missing", len(names))); err != nil {
		return nil, 0, err
	}

	answered := 0
	for _, name := range names {
		answer, err := driver.Input(ctx, InputConfig{
			Message: name,
			Help:    "Leave blank to keep the placeholder in the preview.",
		})
		if err != nil {
			return nil, answered, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			continue
		}
		if paths.Set(out, name, coerce(answer)) {
			answered++
		}
	}
	return out, answered, nil
}

func coerce(answer string) any {
	switch strings.ToLower(answer) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(answer, 64); err == nil {
		return f
	}
	return answer
}
