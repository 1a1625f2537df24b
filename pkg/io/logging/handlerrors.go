package logging

import (
	"errors"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

// HandleAWSError reports a failed AWS call. 400 and 403 responses are fatal.
func HandleAWSError(err *awshttp.ResponseError, service string, operation string) {
	lm := GetLogManager()
	switch err.HTTPStatusCode() {
	case 400:
		lm.Error("AWS request rejected", "service", service, "operation", operation, "err", err.Unwrap())
	case 403:
		lm.Error("Permission denied", "service", service, "operation", operation)
	default:
		lm.Error("AWS call failed", "service", service, "operation", operation, "status", err.HTTPStatusCode(), "err", err.Unwrap())
	}
}

func HandleError(err error, service string, operation string, exitOnError ...bool) {
	lm := GetLogManager()
	if len(exitOnError) >= 1 && !exitOnError[0] {
		lm.Warn("Operation failed", "service", service, "operation", operation, "err", err)
		return
	}
	lm.Error("Operation failed", "service", service, "operation", operation, "err", err)
}

// IsNotFound reports whether err is an AWS response with a 404 status.
// Several lookups in this tool treat absence as a normal answer.
func IsNotFound(err error) bool {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode() == 404
	}
	return false
}
