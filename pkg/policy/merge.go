package policy

import (
	"fmt"
	"sort"
)

// UnifiedPolicyName is the inline policy a merged document is stored under.
const UnifiedPolicyName = "unified-permissions-policy"

// Merge combines the CI/CD policies of several projects into one document.
// Statement Sids are prefixed with the owning project so they stay unique,
// and a shared CrossProjectAccess statement is appended. Output is
// deterministic for a given project order: actions are deduplicated and
// sorted inside every statement.
func Merge(accountID, region string, projects []string, enableWAF bool) *Document {
	unified := NewDocument()

	for _, project := range projects {
		gen := Generator{Project: project, Region: region, EnableWAF: enableWAF}
		doc := gen.CICDPolicy(accountID)
		for _, stmt := range doc.Statement {
			if stmt.Sid != "" {
				stmt.Sid = fmt.Sprintf("%s_%s", project, stmt.Sid)
			}
			stmt.Action = dedupeSorted(stmt.Action)
			unified.Statement = append(unified.Statement, stmt)
		}
	}

	unified.Statement = append(unified.Statement, CrossProjectStatement())
	return unified
}

// CrossProjectStatement grants the identity lookups every project's tooling
// needs regardless of which project it is operating on.
func CrossProjectStatement() Statement {
	return Statement{
		Sid:    "CrossProjectAccess",
		Effect: "Allow",
		Action: StringOrSlice{
			"iam:GetUser",
			"iam:ListAccessKeys",
			"sts:GetCallerIdentity",
		},
		Resource: StringOrSlice{"*"},
	}
}

func dedupeSorted(actions StringOrSlice) StringOrSlice {
	seen := make(map[string]struct{}, len(actions))
	out := make(StringOrSlice, 0, len(actions))
	for _, a := range actions {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// ProjectsOf extracts the project prefixes represented in a merged document
// by splitting prefixed Sids back apart.
func ProjectsOf(doc *Document) []string {
	seen := make(map[string]struct{})
	var projects []string
	for _, stmt := range doc.Statement {
		for i := 1; i < len(stmt.Sid); i++ {
			if stmt.Sid[i] == '_' {
				p := stmt.Sid[:i]
				if _, ok := seen[p]; !ok {
					seen[p] = struct{}{}
					projects = append(projects, p)
				}
				break
			}
		}
	}
	sort.Strings(projects)
	return projects
}
