package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrinsicMarshal(t *testing.T) {
	data, err := json.Marshal(Ref("MyBucket"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref":"MyBucket"}`, string(data))

	data, err = json.Marshal(Sub("${AWS::StackName}-media"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Sub":"${AWS::StackName}-media"}`, string(data))

	data, err = json.Marshal(GetAtt{"MyTable", "Arn"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::GetAtt":["MyTable","Arn"]}`, string(data))

	data, err = json.Marshal(Join{",", []any{"a", Ref("B")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Join":[",",["a",{"Ref":"B"}]]}`, string(data))
}

func TestLogicalID(t *testing.T) {
	assert.Equal(t, "DynamoDBMediaItems", LogicalID("DynamoDB", "media-items"))
	assert.Equal(t, "S3Frontend", LogicalID("S3", "frontend"))
}

func TestAddResourceRejectsDuplicates(t *testing.T) {
	tpl := New("test")
	require.NoError(t, tpl.AddResource("A", Resource{Type: "AWS::S3::Bucket"}))
	assert.Error(t, tpl.AddResource("A", Resource{Type: "AWS::S3::Bucket"}))
}

const sampleConfig = `
description: people-cards dev stack
storage:
  dynamodb:
    tables:
      - name: cards
        partition_key: {name: id, type: S}
        sort_key: {name: created_at, type: S}
        ttl_attribute: expires_at
        global_secondary_indexes:
          - name: by-owner
            partition_key: {name: owner, type: S}
  s3:
    buckets:
      - name: frontend
        versioning: true
        website_hosting: true
compute:
  lambda:
    functions:
      - name: api-handler
        runtime: python3.12
        environment:
          TABLE_NAME: cards
  api:
    name: cards-api
    stage_name: v1
distribution:
  cloudfront:
    origin_bucket: frontend
`

func TestBuildFullStack(t *testing.T) {
	cfg, err := ParseStackConfig([]byte(sampleConfig))
	require.NoError(t, err)

	tpl, err := Build(cfg, "people-cards", "dev", "us-east-1")
	require.NoError(t, err)

	table, ok := tpl.Resources["DynamoDBCardsTable"]
	require.True(t, ok)
	assert.Equal(t, "AWS::DynamoDB::Table", table.Type)
	assert.Equal(t, "PAY_PER_REQUEST", table.Properties["BillingMode"])
	assert.NotNil(t, table.Properties["TimeToLiveSpecification"])
	assert.NotNil(t, table.Properties["GlobalSecondaryIndexes"])

	bucket, ok := tpl.Resources["S3FrontendBucket"]
	require.True(t, ok)
	assert.NotNil(t, bucket.Properties["VersioningConfiguration"])
	assert.NotNil(t, bucket.Properties["WebsiteConfiguration"])

	_, ok = tpl.Resources["LambdaApiHandlerFunction"]
	assert.True(t, ok)
	_, ok = tpl.Resources["LambdaExecutionRole"]
	assert.True(t, ok)
	_, ok = tpl.Resources["RestApi"]
	assert.True(t, ok)
	_, ok = tpl.Resources["Distribution"]
	assert.True(t, ok)

	assert.Contains(t, tpl.Parameters, "DeploymentBucket")
}

func TestBuildOutputsExported(t *testing.T) {
	cfg, err := ParseStackConfig([]byte(sampleConfig))
	require.NoError(t, err)
	tpl, err := Build(cfg, "people-cards", "dev", "us-east-1")
	require.NoError(t, err)

	out, ok := tpl.Outputs["DynamoDBCardsTableArn"]
	require.True(t, ok)
	require.NotNil(t, out.Export)
	assert.Equal(t, StackExport("cards-table-arn"), out.Export.Name)

	_, ok = tpl.Outputs["ApiEndpoint"]
	assert.True(t, ok)
}

func TestBuildRendersJSONAndYAML(t *testing.T) {
	cfg, err := ParseStackConfig([]byte(sampleConfig))
	require.NoError(t, err)
	tpl, err := Build(cfg, "people-cards", "dev", "us-east-1")
	require.NoError(t, err)

	data, err := tpl.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2010-09-09", decoded["AWSTemplateFormatVersion"])

	yml, err := tpl.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(yml), "AWS::DynamoDB::Table")
	assert.Contains(t, string(yml), "Fn::GetAtt")
}

func TestBuildEmptyConfigFails(t *testing.T) {
	_, err := Build(&StackConfig{}, "p", "dev", "us-east-1")
	assert.Error(t, err)
}
