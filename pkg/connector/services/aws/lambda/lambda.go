package lambda

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/sourcegraph/conc/iter"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

type LambdaClient struct {
	Config aws.Config
	client *lambda.Client
	logger logging.LogManager
}

const waiterTimeout = 5 * time.Minute

func NewClient(cfg aws.Config) *LambdaClient {
	return &LambdaClient{
		Config: cfg,
		client: lambda.NewFromConfig(cfg),
		logger: logging.GetLogManager(),
	}
}

// DeployFromBucket points a function at a fresh artifact in the deployment
// bucket and waits until the update lands.
func (lc *LambdaClient) DeployFromBucket(functionName, bucket, key string) error {
	lc.logger.Info("Updating function code", "function", functionName, "bucket", bucket, "key", key)
	_, err := lc.client.UpdateFunctionCode(context.TODO(), &lambda.UpdateFunctionCodeInput{
		FunctionName: &functionName,
		S3Bucket:     &bucket,
		S3Key:        &key,
	})
	if err != nil {
		return fmt.Errorf("UpdateFunctionCode %s: %w", functionName, err)
	}

	waiter := lambda.NewFunctionUpdatedV2Waiter(lc.client)
	err = waiter.Wait(context.TODO(), &lambda.GetFunctionInput{
		FunctionName: &functionName,
	}, waiterTimeout)
	if err != nil {
		return fmt.Errorf("waiting for %s update: %w", functionName, err)
	}
	return nil
}

type FunctionSummary struct {
	Name         string `json:"name"`
	Runtime      string `json:"runtime"`
	Handler      string `json:"handler"`
	MemorySize   int32  `json:"memory_size"`
	Timeout      int32  `json:"timeout"`
	LastModified string `json:"last_modified"`
	CodeSize     int64  `json:"code_size"`
}

// ListFunctions returns summaries of the functions whose name carries the
// project prefix, sorted by name.
func (lc *LambdaClient) ListFunctions(projectPrefix string) ([]FunctionSummary, error) {
	var collected []types.FunctionConfiguration

	paginator := lambda.NewListFunctionsPaginator(lc.client, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("ListFunctions: %w", err)
		}
		for _, fn := range page.Functions {
			if projectPrefix != "" && !strings.HasPrefix(aws.ToString(fn.FunctionName), projectPrefix) {
				continue
			}
			collected = append(collected, fn)
		}
	}

	summaries := iter.Map(collected, func(fn *types.FunctionConfiguration) FunctionSummary {
		return FunctionSummary{
			Name:         aws.ToString(fn.FunctionName),
			Runtime:      string(fn.Runtime),
			Handler:      aws.ToString(fn.Handler),
			MemorySize:   aws.ToInt32(fn.MemorySize),
			Timeout:      aws.ToInt32(fn.Timeout),
			LastModified: aws.ToString(fn.LastModified),
			CodeSize:     fn.CodeSize,
		}
	})

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}
