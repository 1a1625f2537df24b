package iam

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
)

type failingHTTPClient struct{}

func (failingHTTPClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp 127.0.0.1:443: connect: connection refused")
}

// A transport failure is not an AWS response, so there is no report content to
// parse. The lookup has to come back empty instead of crashing.
func TestGetCredentialReportTransportFailure(t *testing.T) {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.AnonymousCredentials{},
		HTTPClient:  failingHTTPClient{},
	}

	var report map[string]*CredentialReport
	assert.NotPanics(t, func() {
		report = GetCredentialReport(cfg)
	})
	assert.Nil(t, report)
}
