package cloudformation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureRecommendationsBucketNotEmpty(t *testing.T) {
	recs := failureRecommendations("AWS::S3::Bucket", "The bucket you tried to delete is not empty (Service: S3, Status Code: 409, Error Code: BucketNotEmpty)")
	assert.Contains(t, recs, "Empty the S3 bucket before deleting the stack")
	assert.Contains(t, recs, "Use: stackctl stack delete --force")
}

func TestFailureRecommendationsBucketExists(t *testing.T) {
	recs := failureRecommendations("AWS::S3::Bucket", "fraud-or-not-media already exists")
	assert.Equal(t, []string{"S3 bucket name already exists. Choose a different name."}, recs)
}

func TestFailureRecommendationsLambdaENI(t *testing.T) {
	recs := failureRecommendations("AWS::EC2::Subnet", "resource has a dependent object AWS::EC2::NetworkInterface created by Lambda")
	assert.Contains(t, recs, "Lambda ENIs can take time to delete. Wait 10-15 minutes.")
}

func TestFailureRecommendationsAccessDenied(t *testing.T) {
	recs := failureRecommendations("AWS::IAM::Role", "User is not authorized to perform iam:CreateRole (AccessDenied)")
	assert.Contains(t, recs, "Check IAM permissions for CloudFormation")
}

func TestFailureRecommendationsDependencyViolation(t *testing.T) {
	recs := failureRecommendations("AWS::EC2::SecurityGroup", "DependencyViolation: resource sg-123 has a dependent object")
	assert.Equal(t, []string{"VPC resources have dependencies. Check security groups and ENIs."}, recs)
}

func TestFailureRecommendationsTimeoutOnLambda(t *testing.T) {
	recs := failureRecommendations("AWS::Lambda::Function", "Resource timed out waiting for completion (timeout)")
	assert.Contains(t, recs, "Operation timed out. Check resource logs for details.")
	assert.Contains(t, recs, "Check Lambda function logs in CloudWatch")
}

func TestFailureRecommendationsCleanReason(t *testing.T) {
	assert.Empty(t, failureRecommendations("AWS::SNS::Topic", "Resource creation cancelled"))
}

func TestStatusRecommendations(t *testing.T) {
	assert.Equal(t,
		[]string{"Stack rolled back. Delete it and deploy again from scratch."},
		statusRecommendations("ROLLBACK_COMPLETE"))
	assert.Equal(t,
		[]string{"Deletion blocked. Inspect DELETE_FAILED resources and retry with force."},
		statusRecommendations("DELETE_FAILED"))
	assert.Nil(t, statusRecommendations("CREATE_COMPLETE"))
}

func TestIsFailedStatus(t *testing.T) {
	assert.True(t, isFailedStatus("CREATE_FAILED"))
	assert.True(t, isFailedStatus("DELETE_FAILED"))
	assert.False(t, isFailedStatus("CREATE_COMPLETE"))
	assert.False(t, isFailedStatus("UPDATE_ROLLBACK_FAILED"))
}

func TestMatchesAPIHint(t *testing.T) {
	assert.True(t, matchesAPIHint("RestApiEndpoint"))
	assert.True(t, matchesAPIHint("GraphQLEndpoint"))
	assert.False(t, matchesAPIHint("DeploymentBucketName"))
}
