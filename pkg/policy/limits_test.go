package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckManagedSizeSmallDocument(t *testing.T) {
	doc := NewDocument(Statement{Effect: "Allow", Action: StringOrSlice{"s3:GetObject"}, Resource: StringOrSlice{"*"}})
	check, err := CheckManagedSize(doc)
	require.NoError(t, err)
	assert.False(t, check.Exceeded)
	assert.Equal(t, ManagedPolicyMaxChars, check.Limit)
	assert.Greater(t, check.Chars, 0)
}

func TestCheckInlineSizeExceeded(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 60; i++ {
		doc.Statement = append(doc.Statement, Statement{
			Sid:      fmt.Sprintf("Filler%d", i),
			Effect:   "Allow",
			Action:   StringOrSlice{"dynamodb:GetItem", "dynamodb:PutItem"},
			Resource: StringOrSlice{"arn:aws:dynamodb:us-east-1:123456789012:table/padding-*"},
		})
	}
	check, err := CheckInlineSize(doc)
	require.NoError(t, err)
	assert.True(t, check.Exceeded)
	assert.Greater(t, check.Chars, InlinePolicyMaxChars)
}

func TestMergedPolicyAgainstManagedLimit(t *testing.T) {
	// three projects worth of statements always overflow the managed limit,
	// which is exactly why the unified policy is stored inline per user and
	// size is reported instead of enforced
	doc := Merge("123456789012", "us-east-1", []string{"fraud-or-not", "people-cards", "media-register"}, true)
	check, err := CheckManagedSize(doc)
	require.NoError(t, err)
	assert.True(t, check.Exceeded)
}
