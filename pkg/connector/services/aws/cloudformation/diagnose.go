package cloudformation

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

type FailedResource struct {
	LogicalID string `json:"logical_id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

type Diagnosis struct {
	StackName       string           `json:"stack_name"`
	Status          string           `json:"status"`
	FailedResources []FailedResource `json:"failed_resources"`
	Recommendations []string         `json:"recommendations"`
}

var failedSuffixes = []string{"CREATE_FAILED", "UPDATE_FAILED", "DELETE_FAILED"}

// Diagnose scans the stack's event history for failed resources and turns
// the failure reasons into actionable recommendations.
func (cc *CFNClient) Diagnose(stackName string) (*Diagnosis, error) {
	status, err := cc.StackStatus(stackName)
	if err != nil {
		return nil, err
	}
	diagnosis := &Diagnosis{StackName: stackName, Status: status}
	if status == "" {
		diagnosis.Recommendations = []string{"Stack does not exist"}
		return diagnosis, nil
	}

	seen := map[string]bool{}
	paginator := cloudformation.NewDescribeStackEventsPaginator(cc.client, &cloudformation.DescribeStackEventsInput{
		StackName: &stackName,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("DescribeStackEvents %s: %w", stackName, err)
		}
		for _, event := range page.StackEvents {
			eventStatus := string(event.ResourceStatus)
			if !isFailedStatus(eventStatus) {
				continue
			}
			resourceType := aws.ToString(event.ResourceType)
			reason := aws.ToString(event.ResourceStatusReason)
			diagnosis.FailedResources = append(diagnosis.FailedResources, FailedResource{
				LogicalID: aws.ToString(event.LogicalResourceId),
				Type:      resourceType,
				Status:    eventStatus,
				Reason:    reason,
				Timestamp: aws.ToTime(event.Timestamp).String(),
			})
			for _, rec := range failureRecommendations(resourceType, reason) {
				if !seen[rec] {
					seen[rec] = true
					diagnosis.Recommendations = append(diagnosis.Recommendations, rec)
				}
			}
		}
	}

	for _, rec := range statusRecommendations(status) {
		if !seen[rec] {
			seen[rec] = true
			diagnosis.Recommendations = append(diagnosis.Recommendations, rec)
		}
	}
	return diagnosis, nil
}

func isFailedStatus(status string) bool {
	for _, suffix := range failedSuffixes {
		if status == suffix {
			return true
		}
	}
	return false
}

func failureRecommendations(resourceType, reason string) []string {
	var recs []string
	lowered := strings.ToLower(reason)

	if resourceType == "AWS::S3::Bucket" {
		if strings.Contains(reason, "BucketNotEmpty") || strings.Contains(lowered, "bucket is not empty") {
			recs = append(recs,
				"Empty the S3 bucket before deleting the stack",
				"Use: stackctl stack delete --force")
		} else if strings.Contains(lowered, "already exists") {
			recs = append(recs, "S3 bucket name already exists. Choose a different name.")
		}
	}

	if strings.Contains(reason, "AWS::EC2::NetworkInterface") && strings.Contains(reason, "Lambda") {
		recs = append(recs,
			"Lambda ENIs can take time to delete. Wait 10-15 minutes.",
			"If stuck, manually delete ENIs in EC2 console.")
	}

	if strings.Contains(reason, "AccessDenied") || strings.Contains(reason, "is not authorized") {
		recs = append(recs,
			"Check IAM permissions for CloudFormation",
			"Ensure the deployment role has necessary permissions")
	}

	if strings.HasPrefix(resourceType, "AWS::EC2::") && strings.Contains(reason, "DependencyViolation") {
		recs = append(recs, "VPC resources have dependencies. Check security groups and ENIs.")
	}

	if strings.Contains(lowered, "timeout") {
		recs = append(recs, "Operation timed out. Check resource logs for details.")
		if strings.Contains(resourceType, "Lambda") {
			recs = append(recs, "Check Lambda function logs in CloudWatch")
		}
	}
	return recs
}

func statusRecommendations(status string) []string {
	switch status {
	case "ROLLBACK_COMPLETE", "ROLLBACK_FAILED":
		return []string{"Stack rolled back. Delete it and deploy again from scratch."}
	case "DELETE_FAILED":
		return []string{"Deletion blocked. Inspect DELETE_FAILED resources and retry with force."}
	default:
		return nil
	}
}
