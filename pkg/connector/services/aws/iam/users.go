package iam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/gocarina/gocsv"

	"github.com/stackctl/stackctl/pkg/io/logging"
	"github.com/stackctl/stackctl/pkg/policy"
)

// EnsureUser returns the user, creating it when missing.
func (ic *IAMClient) EnsureUser(userName string) (*types.User, error) {
	output, err := ic.client.GetUser(context.TODO(), &iam.GetUserInput{UserName: &userName})
	if err == nil {
		return output.User, nil
	}

	var missing *types.NoSuchEntityException
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("GetUser %s: %w", userName, err)
	}

	ic.logger.Info("Creating IAM user", "user", userName)
	created, err := ic.client.CreateUser(context.TODO(), &iam.CreateUserInput{UserName: &userName})
	if err != nil {
		return nil, fmt.Errorf("CreateUser %s: %w", userName, err)
	}
	return created.User, nil
}

// RotateAccessKeys creates a fresh access key before deleting the existing
// ones, so the caller can hand over the new credentials without a gap.
func (ic *IAMClient) RotateAccessKeys(userName string) (*types.AccessKey, error) {
	existing, err := ic.client.ListAccessKeys(context.TODO(), &iam.ListAccessKeysInput{
		UserName: &userName,
	})
	if err != nil {
		return nil, fmt.Errorf("ListAccessKeys %s: %w", userName, err)
	}

	// an IAM user can hold two keys at most, make room if needed
	if len(existing.AccessKeyMetadata) >= 2 {
		oldest := existing.AccessKeyMetadata[0]
		for _, k := range existing.AccessKeyMetadata[1:] {
			if aws.ToTime(k.CreateDate).Before(aws.ToTime(oldest.CreateDate)) {
				oldest = k
			}
		}
		ic.logger.Info("Deleting oldest access key to make room", "user", userName, "key", aws.ToString(oldest.AccessKeyId))
		_, err = ic.client.DeleteAccessKey(context.TODO(), &iam.DeleteAccessKeyInput{
			UserName:    &userName,
			AccessKeyId: oldest.AccessKeyId,
		})
		if err != nil {
			return nil, fmt.Errorf("DeleteAccessKey: %w", err)
		}
	}

	created, err := ic.client.CreateAccessKey(context.TODO(), &iam.CreateAccessKeyInput{
		UserName: &userName,
	})
	if err != nil {
		return nil, fmt.Errorf("CreateAccessKey %s: %w", userName, err)
	}
	newKeyID := aws.ToString(created.AccessKey.AccessKeyId)

	for _, k := range existing.AccessKeyMetadata {
		keyID := aws.ToString(k.AccessKeyId)
		if keyID == newKeyID {
			continue
		}
		ic.logger.Info("Deleting previous access key", "user", userName, "key", keyID)
		_, err = ic.client.DeleteAccessKey(context.TODO(), &iam.DeleteAccessKeyInput{
			UserName:    &userName,
			AccessKeyId: k.AccessKeyId,
		})
		if err != nil {
			ic.logger.Warn("Could not delete old access key", "key", keyID, "err", err)
		}
	}

	return created.AccessKey, nil
}

// PutInlinePolicy writes a user inline policy, warning when the document is
// over the inline size limit.
func (ic *IAMClient) PutInlinePolicy(userName, policyName string, doc *policy.Document) error {
	check, err := policy.CheckInlineSize(doc)
	if err != nil {
		return err
	}
	if check.Exceeded {
		ic.logger.Warn("Policy exceeds the inline policy size limit, AWS may reject it",
			"chars", check.Chars, "limit", check.Limit)
	}

	data, err := doc.Compact()
	if err != nil {
		return err
	}
	_, err = ic.client.PutUserPolicy(context.TODO(), &iam.PutUserPolicyInput{
		UserName:       &userName,
		PolicyName:     &policyName,
		PolicyDocument: aws.String(string(data)),
	})
	if err != nil {
		return fmt.Errorf("PutUserPolicy %s/%s: %w", userName, policyName, err)
	}
	return nil
}

func (ic *IAMClient) GetInlinePolicy(userName, policyName string) (*policy.Document, error) {
	output, err := ic.client.GetUserPolicy(context.TODO(), &iam.GetUserPolicyInput{
		UserName:   &userName,
		PolicyName: &policyName,
	})
	if err != nil {
		return nil, fmt.Errorf("GetUserPolicy %s/%s: %w", userName, policyName, err)
	}
	decoded, err := url.QueryUnescape(aws.ToString(output.PolicyDocument))
	if err != nil {
		return nil, err
	}
	return policy.Parse([]byte(decoded))
}

func (ic *IAMClient) ListInlinePolicies(userName string) ([]string, error) {
	output, err := ic.client.ListUserPolicies(context.TODO(), &iam.ListUserPoliciesInput{
		UserName: &userName,
	})
	if err != nil {
		return nil, fmt.Errorf("ListUserPolicies %s: %w", userName, err)
	}
	return output.PolicyNames, nil
}

// CleanupInlinePolicies deletes the user's old per-project inline policies
// once the unified policy is in place.
func (ic *IAMClient) CleanupInlinePolicies(userName, keep string) ([]string, error) {
	names, err := ic.ListInlinePolicies(userName)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, name := range names {
		if name == keep {
			continue
		}
		if !strings.HasSuffix(name, "-policy") && !strings.HasSuffix(name, "-permissions") {
			continue
		}
		ic.logger.Info("Removing superseded inline policy", "user", userName, "policy", name)
		_, err := ic.client.DeleteUserPolicy(context.TODO(), &iam.DeleteUserPolicyInput{
			UserName:   &userName,
			PolicyName: &name,
		})
		if err != nil {
			ic.logger.Warn("Could not delete inline policy", "policy", name, "err", err)
			continue
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}

// aws iam get-credential-report
func GetCredentialReport(cfg aws.Config) (credentialReport map[string]*CredentialReport) {
	var (
		countRetries = 0
		maxRetries   = 5
		logger       = logging.GetLogManager()
	)

	iamClient := iam.NewFromConfig(cfg)
	output, err := iamClient.GetCredentialReport(context.TODO(), &iam.GetCredentialReportInput{})
	if err != nil {
		if !errors.As(err, &re) || re.HTTPStatusCode() != 410 {
			logger.Warn("Error on GetCredentialReport", "err", err)
			return nil
		}

		// Gone: the report expired or never ran
		logger.Info("Credential Report generation requested")
		for {
			checkGen, err := iamClient.GenerateCredentialReport(context.TODO(), &iam.GenerateCredentialReportInput{})
			if err == nil && checkGen.State == "COMPLETE" {
				break
			}
			if err != nil {
				logger.Warn("Error on GenerateCredentialReport", "err", err)
			}
			if countRetries >= maxRetries {
				logger.Warn("Credential report generation did not complete", "retries", countRetries)
				return nil
			}
			countRetries++
			time.Sleep(5 * time.Second)
		}
		return GetCredentialReport(cfg)
	}

	credentialReportCSV := []*CredentialReport{}
	if err := gocsv.Unmarshal(bytes.NewReader(output.Content), &credentialReportCSV); err != nil {
		logger.Warn("Error unmarshalling credentialReportCSV", "err", err)
	}

	credentialReport = make(map[string]*CredentialReport)
	for i := range credentialReportCSV {
		credentialReport[credentialReportCSV[i].User] = credentialReportCSV[i]
	}
	return
}
