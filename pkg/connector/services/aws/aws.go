// Package awsconnector initializes the shared AWS SDK configuration every
// service client is built from.
package awsconnector

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

var countRetries = 100

type AWSConfig struct {
	Profile string
	aws.Config
	logger logging.LogManager
}

// InitAWSConfiguration loads the shared AWS configuration (~/.aws/config) for
// a profile. A non-empty endpoint pins every service client to that URL,
// which is how the integration tests point the tool at localstack.
func InitAWSConfiguration(profile, awsEndpoint, region string) (awsc AWSConfig) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if awsEndpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           awsEndpoint,
				SigningRegion: os.Getenv("AWS_DEFAULT_REGION"),
			}, nil
		}

		// fall back to the SDK's own resolution
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	cfg, _ := config.LoadDefaultConfig(context.TODO(), config.WithSharedConfigProfile(profile),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), countRetries)
		}),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	cfg.RetryMode = aws.RetryModeStandard
	if region != "" {
		cfg.Region = region
	}
	awsc = AWSConfig{Profile: profile, Config: cfg, logger: logging.GetLogManager()}
	return
}

func (ac *AWSConfig) TestConnection() bool {
	_, err := ac.Credentials.Retrieve(context.TODO())
	return err == nil
}
