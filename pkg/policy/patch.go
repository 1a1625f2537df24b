package policy

import (
	"sort"
	"strings"
)

// PatchResult records what a patch actually changed, so callers can skip the
// CreatePolicyVersion round-trip when nothing did.
type PatchResult struct {
	Added            []string
	Removed          []string
	AlreadyPresent   []string
	NotPresent       []string
	CreatedStatement bool
}

func (r PatchResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

func servicePrefix(action string) string {
	if i := strings.Index(action, ":"); i > 0 {
		return action[:i]
	}
	return action
}

// AddActions appends the given actions to the first Allow statement that
// already grants actions of the same service prefix. When no statement
// matches, a new one is appended covering resources. Actions already present
// are reported, not duplicated, so re-applying a patch is a no-op.
func AddActions(doc *Document, actions []string, resources []string) PatchResult {
	var result PatchResult

	for _, action := range actions {
		target := findStatementForService(doc, servicePrefix(action))
		if target != nil && target.Action.Contains(action) {
			result.AlreadyPresent = append(result.AlreadyPresent, action)
			continue
		}
		if target == nil {
			doc.Statement = append(doc.Statement, Statement{
				Effect:   "Allow",
				Action:   StringOrSlice{},
				Resource: resources,
			})
			target = &doc.Statement[len(doc.Statement)-1]
			result.CreatedStatement = true
		}
		target.Action = append(target.Action, action)
		sort.Strings(target.Action)
		result.Added = append(result.Added, action)
	}
	return result
}

// RemoveActions deletes the given actions wherever they appear. Statements
// left without actions are dropped.
func RemoveActions(doc *Document, actions []string) PatchResult {
	var result PatchResult

	for _, action := range actions {
		found := false
		for i := range doc.Statement {
			stmt := &doc.Statement[i]
			if !stmt.Action.Contains(action) {
				continue
			}
			found = true
			kept := stmt.Action[:0]
			for _, a := range stmt.Action {
				if a != action {
					kept = append(kept, a)
				}
			}
			stmt.Action = kept
		}
		if found {
			result.Removed = append(result.Removed, action)
		} else {
			result.NotPresent = append(result.NotPresent, action)
		}
	}

	pruned := doc.Statement[:0]
	for _, stmt := range doc.Statement {
		if len(stmt.Action) > 0 {
			pruned = append(pruned, stmt)
		}
	}
	doc.Statement = pruned
	return result
}

func findStatementForService(doc *Document, prefix string) *Statement {
	for i := range doc.Statement {
		stmt := &doc.Statement[i]
		if stmt.Effect != "Allow" || len(stmt.Principal) > 0 {
			continue
		}
		for _, action := range stmt.Action {
			if servicePrefix(action) == prefix {
				return stmt
			}
		}
	}
	return nil
}
