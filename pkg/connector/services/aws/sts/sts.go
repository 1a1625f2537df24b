package sts

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

// aws sts get-caller-identity
func Whoami(cfg aws.Config) *sts.GetCallerIdentityOutput {
	var re *http.ResponseError

	logger := logging.GetLogManager()
	output, err := sts.NewFromConfig(cfg).GetCallerIdentity(context.TODO(), &sts.GetCallerIdentityInput{})
	if errors.As(err, &re) {
		logging.HandleAWSError(re, "STS", "GetCallerIdentity")
	} else if err != nil {
		logger.Error("Error on GetCallerIdentity", "err", err)
	}

	logger.Debug("sts get-caller-identity", "account", aws.ToString(output.Account), "arn", aws.ToString(output.Arn))
	return output
}

// AccountID returns the account the current credentials belong to. Every
// mutating command resolves this before building ARNs.
func AccountID(cfg aws.Config) string {
	return aws.ToString(Whoami(cfg).Account)
}
