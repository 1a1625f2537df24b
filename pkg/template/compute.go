package template

import (
	"github.com/stackctl/stackctl/pkg/policy"
)

// AddCompute renders the compute construct: one shared execution role, the
// configured Lambda functions and optionally an API Gateway REST API. Function
// code is pulled from the deployment bucket parameter so a rotation bucket
// switch is a parameter change, not a template change.
func AddCompute(t *Template, cfg *ComputeConfig, project, environment, region string) error {
	if t.Parameters == nil {
		t.Parameters = map[string]any{}
	}
	t.Parameters["DeploymentBucket"] = map[string]any{
		"Type":        "String",
		"Description": "S3 bucket holding the Lambda deployment artifacts",
	}

	gen := policy.Generator{Project: project, Region: region, LambdaInVPC: cfg.Lambda.InVPC}
	execPolicy := gen.LambdaExecutionPolicy()

	roleID := "LambdaExecutionRole"
	err := t.AddResource(roleID, Resource{
		Type: "AWS::IAM::Role",
		Properties: map[string]any{
			"RoleName": Sub("${AWS::StackName}-lambda-role"),
			"AssumeRolePolicyDocument": map[string]any{
				"Version": policy.Version,
				"Statement": []any{
					map[string]any{
						"Effect":    "Allow",
						"Principal": map[string]any{"Service": "lambda.amazonaws.com"},
						"Action":    "sts:AssumeRole",
					},
				},
			},
			"Policies": []any{
				map[string]any{
					"PolicyName":     Sub("${AWS::StackName}-lambda-policy"),
					"PolicyDocument": execPolicy,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	for _, fn := range cfg.Lambda.Functions {
		logicalID := LogicalID("Lambda", fn.Name) + "Function"
		props := map[string]any{
			"FunctionName": Sub("${AWS::StackName}-" + fn.Name),
			"Handler":      stringOr(fn.Handler, "index.handler"),
			"Runtime":      stringOr(fn.Runtime, "python3.12"),
			"MemorySize":   intOr(fn.MemorySize, 128),
			"Timeout":      intOr(fn.Timeout, 30),
			"Role":         GetAtt{roleID, "Arn"},
			"Code": map[string]any{
				"S3Bucket": Ref("DeploymentBucket"),
				"S3Key":    stringOr(fn.CodeKey, fn.Name+".zip"),
			},
			"Tags": []any{
				map[string]any{"Key": "Environment", "Value": environment},
			},
		}
		if len(fn.Environment) > 0 {
			vars := map[string]any{}
			for _, k := range sortedKeys(fn.Environment) {
				vars[k] = fn.Environment[k]
			}
			props["Environment"] = map[string]any{"Variables": vars}
		}
		if err := t.AddResource(logicalID, Resource{Type: "AWS::Lambda::Function", Properties: props}); err != nil {
			return err
		}
		t.ExportOutput(logicalID+"Name", fn.Name+" Lambda function name", Ref(logicalID), fn.Name+"-function")
		t.ExportOutput(logicalID+"Arn", fn.Name+" Lambda function ARN", GetAtt{logicalID, "Arn"}, fn.Name+"-function-arn")
	}

	if cfg.API != nil {
		if err := addRESTAPI(t, cfg); err != nil {
			return err
		}
	}
	return nil
}

func addRESTAPI(t *Template, cfg *ComputeConfig) error {
	stage := stringOr(cfg.API.StageName, "api")

	err := t.AddResource("RestApi", Resource{
		Type: "AWS::ApiGateway::RestApi",
		Properties: map[string]any{
			"Name":        Sub("${AWS::StackName}-" + stringOr(cfg.API.Name, "api")),
			"Description": "REST API",
			"EndpointConfiguration": map[string]any{
				"Types": []any{"REGIONAL"},
			},
		},
	})
	if err != nil {
		return err
	}

	deps := []string{}
	for _, fn := range cfg.Lambda.Functions {
		deps = append(deps, LogicalID("Lambda", fn.Name)+"Function")
	}
	err = t.AddResource("RestApiDeployment", Resource{
		Type: "AWS::ApiGateway::Deployment",
		Properties: map[string]any{
			"RestApiId": Ref("RestApi"),
			"StageName": stage,
		},
		DependsOn: deps,
	})
	if err != nil {
		return err
	}

	t.ExportOutput("RestApiId", "REST API id", Ref("RestApi"), "api-id")
	t.ExportOutput("ApiEndpoint", "REST API invoke URL",
		Sub("https://${RestApi}.execute-api.${AWS::Region}.amazonaws.com/"+stage), "api-endpoint")
	return nil
}
