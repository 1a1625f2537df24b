package iam

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

type IAMClient struct {
	Config aws.Config
	client *iam.Client
	logger logging.LogManager
}

func NewClient(cfg aws.Config) *IAMClient {
	return &IAMClient{
		Config: cfg,
		client: iam.NewFromConfig(cfg),
		logger: logging.GetLogManager(),
	}
}

// Struct to the credential report CSV output
type CredentialReport struct {
	User                  string `csv:"user"`
	Arn                   string `csv:"arn"`
	UserCreation          string `csv:"user_creation_time"`
	PasswordEnabled       string `csv:"password_enabled"` // The value for the AWS account root user is always not_supported.
	PasswordLastUsed      string `csv:"password_last_used"`
	PasswordLastChanged   string `csv:"password_last_changed"`
	PasswordNextRotation  string `csv:"password_next_rotation"`
	MfaActive             string `csv:"mfa_active"`
	AccessKey1Active      string `csv:"access_key_1_active"`
	AccessKey1LastRotated string `csv:"access_key_1_last_rotated"`
	AccessKey2Active      string `csv:"access_key_2_active"`
	AccessKey2LastRotated string `csv:"access_key_2_last_rotated"`
	Cert1Active           string `csv:"cert_1_active"`
	Cert2Active           string `csv:"cert_2_active"`
}

var re *awshttp.ResponseError
