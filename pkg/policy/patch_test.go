package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDocument() *Document {
	return NewDocument(Statement{
		Sid:      "CloudWatchAccess",
		Effect:   "Allow",
		Action:   StringOrSlice{"logs:CreateLogGroup", "logs:DescribeLogGroups"},
		Resource: StringOrSlice{"*"},
	})
}

func TestAddActionsAppendsToMatchingStatement(t *testing.T) {
	doc := baseDocument()
	result := AddActions(doc, []string{"logs:TagResource"}, nil)

	assert.Equal(t, []string{"logs:TagResource"}, result.Added)
	assert.False(t, result.CreatedStatement)
	require.Len(t, doc.Statement, 1)
	assert.Equal(t, StringOrSlice{"logs:CreateLogGroup", "logs:DescribeLogGroups", "logs:TagResource"}, doc.Statement[0].Action)
}

func TestAddActionsIsIdempotent(t *testing.T) {
	doc := baseDocument()
	AddActions(doc, []string{"logs:TagResource"}, nil)

	second := AddActions(doc, []string{"logs:TagResource"}, nil)
	assert.Empty(t, second.Added)
	assert.Equal(t, []string{"logs:TagResource"}, second.AlreadyPresent)
	assert.False(t, second.Changed())
	require.Len(t, doc.Statement, 1)
	assert.Len(t, doc.Statement[0].Action, 3)
}

func TestAddActionsCreatesStatementForNewService(t *testing.T) {
	doc := baseDocument()
	result := AddActions(doc, []string{"ssm:GetParameter"}, []string{"arn:aws:ssm:::parameter/p/*"})

	assert.True(t, result.CreatedStatement)
	require.Len(t, doc.Statement, 2)
	assert.Equal(t, StringOrSlice{"ssm:GetParameter"}, doc.Statement[1].Action)
	assert.Equal(t, StringOrSlice{"arn:aws:ssm:::parameter/p/*"}, doc.Statement[1].Resource)
}

func TestAddActionsSkipsPrincipalStatements(t *testing.T) {
	doc := NewDocument(Statement{
		Effect:    "Allow",
		Principal: map[string]StringOrSlice{"Service": {"lambda.amazonaws.com"}},
		Action:    StringOrSlice{"sts:AssumeRole"},
	})
	result := AddActions(doc, []string{"sts:GetCallerIdentity"}, []string{"*"})

	// trust statements must not be patched
	assert.True(t, result.CreatedStatement)
	require.Len(t, doc.Statement, 2)
}

func TestRemoveActions(t *testing.T) {
	doc := baseDocument()
	result := RemoveActions(doc, []string{"logs:DescribeLogGroups", "logs:NeverGranted"})

	assert.Equal(t, []string{"logs:DescribeLogGroups"}, result.Removed)
	assert.Equal(t, []string{"logs:NeverGranted"}, result.NotPresent)
	require.Len(t, doc.Statement, 1)
	assert.Equal(t, StringOrSlice{"logs:CreateLogGroup"}, doc.Statement[0].Action)
}

func TestRemoveActionsDropsEmptyStatements(t *testing.T) {
	doc := baseDocument()
	RemoveActions(doc, []string{"logs:CreateLogGroup", "logs:DescribeLogGroups"})
	assert.Empty(t, doc.Statement)
}
