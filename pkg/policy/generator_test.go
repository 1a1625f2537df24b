package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCICDPolicyScopesResourcesToProject(t *testing.T) {
	gen := Generator{Project: "fraud-or-not", Region: "us-east-1"}
	doc := gen.CICDPolicy("123456789012")

	cfn := doc.FindBySid("CloudFormationAccess")
	require.NotNil(t, cfn)
	assert.Contains(t, cfn.Resource, "arn:aws:cloudformation:us-east-1:123456789012:stack/fraud-or-not-*/*")
	assert.Contains(t, cfn.Resource, "arn:aws:cloudformation:us-east-1:123456789012:stack/CDKToolkit/*")

	s3 := doc.FindBySid("S3Access")
	require.NotNil(t, s3)
	assert.Contains(t, s3.Resource, "arn:aws:s3:::fraud-or-not-*")
	assert.Contains(t, s3.Resource, "arn:aws:s3:::cdk-*-us-east-1-123456789012")

	cdk := doc.FindBySid("CDKBootstrapAccess")
	require.NotNil(t, cdk)
	assert.Equal(t, StringOrSlice{"sts:AssumeRole"}, cdk.Action)
}

func TestCICDPolicyGrantsListAllMyBuckets(t *testing.T) {
	gen := Generator{Project: "fraud-or-not", Region: "us-east-1"}
	doc := gen.CICDPolicy("123456789012")

	list := doc.FindBySid("S3ListBuckets")
	require.NotNil(t, list)
	assert.Equal(t, StringOrSlice{"s3:ListAllMyBuckets"}, list.Action)
	assert.Equal(t, StringOrSlice{"*"}, list.Resource)

	// bucket listing is account-wide, it must not ride on the scoped statement
	s3 := doc.FindBySid("S3Access")
	require.NotNil(t, s3)
	assert.False(t, s3.Action.Contains("s3:ListAllMyBuckets"))
}

func TestCICDPolicyWAFConditional(t *testing.T) {
	gen := Generator{Project: "p", Region: "eu-west-1"}
	assert.Nil(t, gen.CICDPolicy("1").FindBySid("WAFAccess"))

	gen.EnableWAF = true
	waf := gen.CICDPolicy("1").FindBySid("WAFAccess")
	require.NotNil(t, waf)
	// CloudFront WAF is always global
	assert.Contains(t, waf.Resource[0], "us-east-1")
}

func TestLambdaExecutionPolicy(t *testing.T) {
	gen := Generator{Project: "people-cards", Region: "us-east-1"}
	doc := gen.LambdaExecutionPolicy()
	require.Len(t, doc.Statement, 3)
	assert.Contains(t, doc.Statement[0].Action, "logs:PutLogEvents")
	assert.Contains(t, doc.Statement[1].Resource[0], "table/people-cards-*")

	gen.LambdaInVPC = true
	doc = gen.LambdaExecutionPolicy()
	require.Len(t, doc.Statement, 4)
	assert.Contains(t, doc.Statement[1].Action, "ec2:CreateNetworkInterface")
}

func TestGitHubTrustPolicy(t *testing.T) {
	doc := GitHubTrustPolicy("acme", "fraud-or-not")
	require.Len(t, doc.Statement, 1)
	stmt := doc.Statement[0]
	assert.Equal(t, StringOrSlice{"sts:AssumeRoleWithWebIdentity"}, stmt.Action)
	assert.Equal(t, "sts.amazonaws.com", stmt.Condition["StringEquals"]["token.actions.githubusercontent.com:aud"])
	assert.Equal(t, "repo:acme/fraud-or-not:*", stmt.Condition["StringLike"]["token.actions.githubusercontent.com:sub"])
}
