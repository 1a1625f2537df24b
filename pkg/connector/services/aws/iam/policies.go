package iam

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/stackctl/stackctl/pkg/policy"
)

// maxPolicyVersions is the AWS hard limit on managed policy versions.
const maxPolicyVersions = 5

// FindPolicyARN resolves a customer-managed policy name to its ARN.
// Returns "" when no policy with that name exists.
func (ic *IAMClient) FindPolicyARN(name string) (string, error) {
	paginator := iam.NewListPoliciesPaginator(ic.client, &iam.ListPoliciesInput{
		Scope: types.PolicyScopeTypeLocal,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			return "", err
		}
		for _, p := range page.Policies {
			if aws.ToString(p.PolicyName) == name {
				return aws.ToString(p.Arn), nil
			}
		}
	}
	return "", nil
}

// GetPolicyDocument fetches the default version of a managed policy. The SDK
// returns the document URL-encoded.
func (ic *IAMClient) GetPolicyDocument(policyARN string) (*policy.Document, error) {
	pol, err := ic.client.GetPolicy(context.TODO(), &iam.GetPolicyInput{
		PolicyArn: &policyARN,
	})
	if err != nil {
		return nil, fmt.Errorf("GetPolicy %s: %w", policyARN, err)
	}

	version, err := ic.client.GetPolicyVersion(context.TODO(), &iam.GetPolicyVersionInput{
		PolicyArn: &policyARN,
		VersionId: pol.Policy.DefaultVersionId,
	})
	if err != nil {
		return nil, fmt.Errorf("GetPolicyVersion %s: %w", policyARN, err)
	}

	decoded, err := url.QueryUnescape(aws.ToString(version.PolicyVersion.Document))
	if err != nil {
		return nil, fmt.Errorf("decoding policy document: %w", err)
	}
	return policy.Parse([]byte(decoded))
}

// PushPolicyVersion uploads a new default version, pruning the oldest
// non-default version first when the policy sits at the version limit.
func (ic *IAMClient) PushPolicyVersion(policyARN string, doc *policy.Document) error {
	if err := ic.PrunePolicyVersions(policyARN); err != nil {
		return err
	}

	data, err := doc.Compact()
	if err != nil {
		return err
	}
	check, err := policy.CheckManagedSize(doc)
	if err != nil {
		return err
	}
	if check.Exceeded {
		ic.logger.Warn("Policy exceeds the managed policy size limit, AWS may reject it",
			"chars", check.Chars, "limit", check.Limit)
	}

	_, err = ic.client.CreatePolicyVersion(context.TODO(), &iam.CreatePolicyVersionInput{
		PolicyArn:      &policyARN,
		PolicyDocument: aws.String(string(data)),
		SetAsDefault:   true,
	})
	if err != nil {
		return fmt.Errorf("CreatePolicyVersion %s: %w", policyARN, err)
	}
	return nil
}

// PrunePolicyVersions deletes the oldest non-default version when the policy
// is at the version limit, making room for the next upload.
func (ic *IAMClient) PrunePolicyVersions(policyARN string) error {
	output, err := ic.client.ListPolicyVersions(context.TODO(), &iam.ListPolicyVersionsInput{
		PolicyArn: &policyARN,
	})
	if err != nil {
		return fmt.Errorf("ListPolicyVersions %s: %w", policyARN, err)
	}
	if len(output.Versions) < maxPolicyVersions {
		return nil
	}

	versions := output.Versions
	sort.Slice(versions, func(i, j int) bool {
		return aws.ToTime(versions[i].CreateDate).Before(aws.ToTime(versions[j].CreateDate))
	})
	for _, v := range versions {
		if v.IsDefaultVersion {
			continue
		}
		ic.logger.Debug("Pruning old policy version", "policy", policyARN, "version", aws.ToString(v.VersionId))
		_, err := ic.client.DeletePolicyVersion(context.TODO(), &iam.DeletePolicyVersionInput{
			PolicyArn: &policyARN,
			VersionId: v.VersionId,
		})
		if err != nil {
			return fmt.Errorf("DeletePolicyVersion %s: %w", policyARN, err)
		}
		return nil
	}
	return nil
}

// CreateOrUpdatePolicy creates a managed policy, or pushes a new default
// version when it already exists. Returns the policy ARN.
func (ic *IAMClient) CreateOrUpdatePolicy(name string, doc *policy.Document) (string, error) {
	data, err := doc.Compact()
	if err != nil {
		return "", err
	}

	created, err := ic.client.CreatePolicy(context.TODO(), &iam.CreatePolicyInput{
		PolicyName:     &name,
		PolicyDocument: aws.String(string(data)),
	})
	if err == nil {
		return aws.ToString(created.Policy.Arn), nil
	}

	var exists *types.EntityAlreadyExistsException
	if !errors.As(err, &exists) {
		return "", fmt.Errorf("CreatePolicy %s: %w", name, err)
	}

	arn, err := ic.FindPolicyARN(name)
	if err != nil {
		return "", err
	}
	if arn == "" {
		return "", fmt.Errorf("policy %s exists but was not found in the account", name)
	}
	if err := ic.PushPolicyVersion(arn, doc); err != nil {
		return "", err
	}
	return arn, nil
}

// AttachUserPolicy is idempotent on the AWS side.
func (ic *IAMClient) AttachUserPolicy(userName, policyARN string) error {
	_, err := ic.client.AttachUserPolicy(context.TODO(), &iam.AttachUserPolicyInput{
		UserName:  &userName,
		PolicyArn: &policyARN,
	})
	return err
}

// AddActionsToPolicy patches a named policy in place: fetch the default
// document, add the actions, push only when something changed.
func (ic *IAMClient) AddActionsToPolicy(policyName string, actions, resources []string) (policy.PatchResult, error) {
	arn, err := ic.FindPolicyARN(policyName)
	if err != nil {
		return policy.PatchResult{}, err
	}
	if arn == "" {
		return policy.PatchResult{}, fmt.Errorf("policy %s not found", policyName)
	}

	doc, err := ic.GetPolicyDocument(arn)
	if err != nil {
		return policy.PatchResult{}, err
	}

	result := policy.AddActions(doc, actions, resources)
	for _, a := range result.AlreadyPresent {
		ic.logger.Info("Action already exists in policy", "policy", policyName, "action", a)
	}
	if !result.Changed() {
		ic.logger.Info("Policy unchanged, skipping version upload", "policy", policyName)
		return result, nil
	}

	if err := ic.PushPolicyVersion(arn, doc); err != nil {
		return policy.PatchResult{}, err
	}
	return result, nil
}

// RemoveActionsFromPolicy is the inverse of AddActionsToPolicy.
func (ic *IAMClient) RemoveActionsFromPolicy(policyName string, actions []string) (policy.PatchResult, error) {
	arn, err := ic.FindPolicyARN(policyName)
	if err != nil {
		return policy.PatchResult{}, err
	}
	if arn == "" {
		return policy.PatchResult{}, fmt.Errorf("policy %s not found", policyName)
	}

	doc, err := ic.GetPolicyDocument(arn)
	if err != nil {
		return policy.PatchResult{}, err
	}

	result := policy.RemoveActions(doc, actions)
	if !result.Changed() {
		ic.logger.Info("Policy unchanged, skipping version upload", "policy", policyName)
		return result, nil
	}

	if err := ic.PushPolicyVersion(arn, doc); err != nil {
		return policy.PatchResult{}, err
	}
	return result, nil
}
