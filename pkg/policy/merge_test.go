package policy

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePrefixesSids(t *testing.T) {
	doc := Merge("123456789012", "us-east-1", []string{"fraud-or-not", "people-cards"}, false)

	assert.NotNil(t, doc.FindBySid("fraud-or-not_S3Access"))
	assert.NotNil(t, doc.FindBySid("people-cards_S3Access"))
	assert.NotNil(t, doc.FindBySid("fraud-or-not_S3ListBuckets"))
	assert.Nil(t, doc.FindBySid("S3Access"))

	cross := doc.FindBySid("CrossProjectAccess")
	require.NotNil(t, cross)
	assert.Contains(t, cross.Action, "sts:GetCallerIdentity")
}

func TestMergeActionsSortedAndDeduplicated(t *testing.T) {
	doc := Merge("1", "us-east-1", []string{"p"}, false)
	for _, stmt := range doc.Statement {
		assert.True(t, sort.StringsAreSorted(stmt.Action), stmt.Sid)
		seen := map[string]bool{}
		for _, a := range stmt.Action {
			assert.False(t, seen[a], "duplicate action %s in %s", a, stmt.Sid)
			seen[a] = true
		}
	}
}

func TestMergeDeterministic(t *testing.T) {
	a := Merge("1", "us-east-1", []string{"x", "y"}, true)
	b := Merge("1", "us-east-1", []string{"x", "y"}, true)

	aj, err := a.Compact()
	require.NoError(t, err)
	bj, err := b.Compact()
	require.NoError(t, err)
	assert.Equal(t, string(aj), string(bj))
}

func TestProjectsOf(t *testing.T) {
	doc := Merge("1", "us-east-1", []string{"beta", "alpha"}, false)
	assert.Equal(t, []string{"alpha", "beta"}, ProjectsOf(doc))
}
