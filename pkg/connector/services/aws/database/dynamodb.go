package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

type DynamoDBClient struct {
	Config aws.Config
	client *dynamodb.Client
	logger logging.LogManager
}

func NewClient(cfg aws.Config) *DynamoDBClient {
	return &DynamoDBClient{
		Config: cfg,
		client: dynamodb.NewFromConfig(cfg),
		logger: logging.GetLogManager(),
	}
}

// TableExists reports whether the table is present and active enough to use.
func (dc *DynamoDBClient) TableExists(tableName string) (bool, error) {
	output, err := dc.client.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: &tableName,
	})
	if err != nil {
		var missing *types.ResourceNotFoundException
		if errors.As(err, &missing) {
			return false, nil
		}
		return false, fmt.Errorf("DescribeTable %s: %w", tableName, err)
	}
	status := output.Table.TableStatus
	return status == types.TableStatusActive || status == types.TableStatusUpdating, nil
}

// VerifyTables checks a deployment's expected tables and returns the missing
// ones.
func (dc *DynamoDBClient) VerifyTables(tableNames []string) ([]string, error) {
	var missing []string
	for _, name := range tableNames {
		exists, err := dc.TableExists(name)
		if err != nil {
			return nil, err
		}
		if !exists {
			dc.logger.Warn("Expected table not found", "table", name)
			missing = append(missing, name)
		}
	}
	return missing, nil
}
