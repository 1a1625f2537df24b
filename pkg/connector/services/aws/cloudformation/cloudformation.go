package cloudformation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

type CFNClient struct {
	Config aws.Config
	client *cloudformation.Client
	logger logging.LogManager
}

func NewClient(cfg aws.Config) *CFNClient {
	return &CFNClient{
		Config: cfg,
		client: cloudformation.NewFromConfig(cfg),
		logger: logging.GetLogManager(),
	}
}

// StackStatus returns the stack status, or "" when the stack does not exist.
func (cc *CFNClient) StackStatus(stackName string) (string, error) {
	output, err := cc.client.DescribeStacks(context.TODO(), &cloudformation.DescribeStacksInput{
		StackName: &stackName,
	})
	if err != nil {
		if isStackMissing(err) {
			return "", nil
		}
		return "", fmt.Errorf("DescribeStacks %s: %w", stackName, err)
	}
	if len(output.Stacks) == 0 {
		return "", nil
	}
	return string(output.Stacks[0].StackStatus), nil
}

// Outputs returns the stack outputs as a flat map. A missing stack yields an
// empty map, matching how callers probe optional stacks.
func (cc *CFNClient) Outputs(stackName string) (map[string]string, error) {
	output, err := cc.client.DescribeStacks(context.TODO(), &cloudformation.DescribeStacksInput{
		StackName: &stackName,
	})
	if err != nil {
		if isStackMissing(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("DescribeStacks %s: %w", stackName, err)
	}

	outputs := map[string]string{}
	if len(output.Stacks) > 0 {
		for _, o := range output.Stacks[0].Outputs {
			outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
		}
	}
	return outputs, nil
}

type StackSummary struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

// activeStatuses excludes DELETE_COMPLETE so deleted stacks stay hidden.
var activeStatuses = []types.StackStatus{
	types.StackStatusCreateInProgress,
	types.StackStatusCreateFailed,
	types.StackStatusCreateComplete,
	types.StackStatusRollbackInProgress,
	types.StackStatusRollbackFailed,
	types.StackStatusRollbackComplete,
	types.StackStatusDeleteInProgress,
	types.StackStatusDeleteFailed,
	types.StackStatusUpdateInProgress,
	types.StackStatusUpdateCompleteCleanupInProgress,
	types.StackStatusUpdateComplete,
	types.StackStatusUpdateRollbackInProgress,
	types.StackStatusUpdateRollbackFailed,
	types.StackStatusUpdateRollbackCompleteCleanupInProgress,
	types.StackStatusUpdateRollbackComplete,
	types.StackStatusReviewInProgress,
}

// ListStacks lists live stacks, optionally keeping only those whose name
// starts with the project prefix.
func (cc *CFNClient) ListStacks(projectPrefix string) ([]StackSummary, error) {
	var stacks []StackSummary

	paginator := cloudformation.NewListStacksPaginator(cc.client, &cloudformation.ListStacksInput{
		StackStatusFilter: activeStatuses,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("ListStacks: %w", err)
		}
		for _, s := range page.StackSummaries {
			name := aws.ToString(s.StackName)
			if projectPrefix != "" && !strings.HasPrefix(name, projectPrefix) {
				continue
			}
			updated := s.CreationTime
			if s.LastUpdatedTime != nil {
				updated = s.LastUpdatedTime
			}
			stacks = append(stacks, StackSummary{
				Name:    name,
				Status:  string(s.StackStatus),
				Created: aws.ToTime(s.CreationTime).Format(time.RFC3339),
				Updated: aws.ToTime(updated).Format(time.RFC3339),
			})
		}
	}
	return stacks, nil
}

// ValidateTemplate runs the template body through the CloudFormation
// validator.
func (cc *CFNClient) ValidateTemplate(body string) error {
	_, err := cc.client.ValidateTemplate(context.TODO(), &cloudformation.ValidateTemplateInput{
		TemplateBody: &body,
	})
	return err
}

// StackResources returns the physical resources of a stack.
func (cc *CFNClient) StackResources(stackName string) ([]types.StackResource, error) {
	output, err := cc.client.DescribeStackResources(context.TODO(), &cloudformation.DescribeStackResourcesInput{
		StackName: &stackName,
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeStackResources %s: %w", stackName, err)
	}
	return output.StackResources, nil
}

// BucketEmptier is satisfied by the s3 connector; force deletes need it to
// clear blocking buckets.
type BucketEmptier interface {
	Empty(bucket string) error
}

// DeleteStack deletes a stack and waits for completion. With force, a stack
// stuck in DELETE_FAILED first has its blocking S3 buckets emptied.
func (cc *CFNClient) DeleteStack(stackName string, force bool, emptier BucketEmptier) error {
	status, err := cc.StackStatus(stackName)
	if err != nil {
		return err
	}
	if status == "" {
		cc.logger.Info("Stack does not exist, nothing to delete", "stack", stackName)
		return nil
	}

	if status == string(types.StackStatusDeleteFailed) {
		if !force {
			return fmt.Errorf("stack %s is in DELETE_FAILED state, retry with force", stackName)
		}
		if err := cc.emptyBlockingBuckets(stackName, emptier); err != nil {
			return err
		}
	}

	cc.logger.Info("Deleting stack", "stack", stackName)
	_, err = cc.client.DeleteStack(context.TODO(), &cloudformation.DeleteStackInput{
		StackName: &stackName,
	})
	if err != nil {
		return fmt.Errorf("DeleteStack %s: %w", stackName, err)
	}

	waiter := cloudformation.NewStackDeleteCompleteWaiter(cc.client)
	err = waiter.Wait(context.TODO(), &cloudformation.DescribeStacksInput{
		StackName: &stackName,
	}, 30*time.Minute)
	if err != nil {
		return fmt.Errorf("waiting for deletion of %s: %w", stackName, err)
	}
	return nil
}

func (cc *CFNClient) emptyBlockingBuckets(stackName string, emptier BucketEmptier) error {
	if emptier == nil {
		return fmt.Errorf("force delete of %s needs an S3 client to empty buckets", stackName)
	}
	resources, err := cc.StackResources(stackName)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if aws.ToString(r.ResourceType) != "AWS::S3::Bucket" {
			continue
		}
		if r.ResourceStatus != types.ResourceStatusDeleteFailed {
			continue
		}
		bucket := aws.ToString(r.PhysicalResourceId)
		cc.logger.Info("Emptying blocking bucket", "bucket", bucket)
		if err := emptier.Empty(bucket); err != nil {
			cc.logger.Warn("Could not empty bucket", "bucket", bucket, "err", err)
		}
	}
	return nil
}

func isStackMissing(err error) bool {
	return strings.Contains(err.Error(), "does not exist")
}
