package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/stackctl/stackctl/pkg/policy"
)

const (
	githubOIDCURL = "https://token.actions.githubusercontent.com"

	// GitHub's OIDC root CA thumbprint
	githubOIDCThumbprint = "6938fd4d98bab03faadb97b34396831e3780aea1"
)

// EnsureGitHubOIDCProvider returns the ARN of the GitHub Actions OIDC
// provider, creating it when the account has none.
func (ic *IAMClient) EnsureGitHubOIDCProvider() (string, error) {
	providers, err := ic.client.ListOpenIDConnectProviders(context.TODO(), &iam.ListOpenIDConnectProvidersInput{})
	if err != nil {
		return "", fmt.Errorf("ListOpenIDConnectProviders: %w", err)
	}
	for _, p := range providers.OpenIDConnectProviderList {
		if strings.Contains(aws.ToString(p.Arn), "token.actions.githubusercontent.com") {
			return aws.ToString(p.Arn), nil
		}
	}

	ic.logger.Info("Creating GitHub Actions OIDC provider")
	created, err := ic.client.CreateOpenIDConnectProvider(context.TODO(), &iam.CreateOpenIDConnectProviderInput{
		Url:            aws.String(githubOIDCURL),
		ClientIDList:   []string{"sts.amazonaws.com"},
		ThumbprintList: []string{githubOIDCThumbprint},
	})
	if err != nil {
		return "", fmt.Errorf("CreateOpenIDConnectProvider: %w", err)
	}
	return aws.ToString(created.OpenIDConnectProviderArn), nil
}

// EnsureDeployRole creates or updates the CI/CD deploy role: GitHub OIDC
// trust policy plus the project's managed policy attached. Returns the role
// ARN.
func (ic *IAMClient) EnsureDeployRole(roleName, githubOrg, githubRepo, policyARN string) (string, error) {
	trust := policy.GitHubTrustPolicy(githubOrg, githubRepo)
	trustJSON, err := trust.Compact()
	if err != nil {
		return "", err
	}

	var roleARN string
	existing, err := ic.client.GetRole(context.TODO(), &iam.GetRoleInput{RoleName: &roleName})
	if err == nil {
		roleARN = aws.ToString(existing.Role.Arn)
		ic.logger.Info("Updating trust policy on existing role", "role", roleName)
		_, err = ic.client.UpdateAssumeRolePolicy(context.TODO(), &iam.UpdateAssumeRolePolicyInput{
			RoleName:       &roleName,
			PolicyDocument: aws.String(string(trustJSON)),
		})
		if err != nil {
			return "", fmt.Errorf("UpdateAssumeRolePolicy %s: %w", roleName, err)
		}
	} else {
		var missing *types.NoSuchEntityException
		if !errors.As(err, &missing) {
			return "", fmt.Errorf("GetRole %s: %w", roleName, err)
		}
		ic.logger.Info("Creating deploy role", "role", roleName)
		created, err := ic.client.CreateRole(context.TODO(), &iam.CreateRoleInput{
			RoleName:                 &roleName,
			AssumeRolePolicyDocument: aws.String(string(trustJSON)),
			Description:              aws.String("GitHub Actions deploy role"),
		})
		if err != nil {
			return "", fmt.Errorf("CreateRole %s: %w", roleName, err)
		}
		roleARN = aws.ToString(created.Role.Arn)
	}

	_, err = ic.client.AttachRolePolicy(context.TODO(), &iam.AttachRolePolicyInput{
		RoleName:  &roleName,
		PolicyArn: &policyARN,
	})
	if err != nil {
		return "", fmt.Errorf("AttachRolePolicy %s: %w", roleName, err)
	}
	return roleARN, nil
}
