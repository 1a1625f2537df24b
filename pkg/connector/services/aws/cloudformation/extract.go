package cloudformation

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Output key aliases seen across the project stacks. The first matching
// alias wins.
var cognitoKeyAliases = []struct {
	Standard string
	Aliases  []string
}{
	{"UserPoolId", []string{"UserPoolId", "CognitoUserPoolId", "UserPool"}},
	{"UserPoolClientId", []string{"UserPoolClientId", "CognitoClientId", "AppClientId", "ClientId"}},
	{"IdentityPoolId", []string{"IdentityPoolId", "CognitoIdentityPoolId"}},
	{"UserPoolDomain", []string{"UserPoolDomain", "CognitoDomain"}},
	{"Region", []string{"Region", "AWSRegion"}},
}

// CognitoConfig extracts the Cognito settings a frontend build needs from
// the stack outputs, normalized to standard key names.
func (cc *CFNClient) CognitoConfig(stackName string) (map[string]string, error) {
	outputs, err := cc.Outputs(stackName)
	if err != nil {
		return nil, err
	}

	config := map[string]string{}
	for _, entry := range cognitoKeyAliases {
		for _, alias := range entry.Aliases {
			if value, ok := outputs[alias]; ok {
				config[entry.Standard] = value
				break
			}
		}
	}
	if _, ok := config["Region"]; !ok {
		config["Region"] = cc.Config.Region
	}
	return config, nil
}

var apiKeyHints = []string{
	"ApiEndpoint",
	"ApiUrl",
	"RestApiEndpoint",
	"ApiGatewayUrl",
	"GraphQLEndpoint",
	"WebSocketEndpoint",
	"HttpApiEndpoint",
}

// APIEndpoints collects every output that looks like a service endpoint:
// known key names plus anything whose value is a URL.
func (cc *CFNClient) APIEndpoints(stackName string) (map[string]string, error) {
	outputs, err := cc.Outputs(stackName)
	if err != nil {
		return nil, err
	}

	endpoints := map[string]string{}
	for key, value := range outputs {
		if matchesAPIHint(key) ||
			strings.HasPrefix(value, "https://") ||
			strings.HasPrefix(value, "http://") ||
			strings.HasPrefix(value, "wss://") {
			endpoints[key] = value
		}
	}
	return endpoints, nil
}

func matchesAPIHint(key string) bool {
	for _, hint := range apiKeyHints {
		if strings.Contains(key, hint) {
			return true
		}
	}
	return false
}

// Buckets returns the outputs that name S3 buckets.
func (cc *CFNClient) Buckets(stackName string) (map[string]string, error) {
	outputs, err := cc.Outputs(stackName)
	if err != nil {
		return nil, err
	}

	buckets := map[string]string{}
	for key, value := range outputs {
		if strings.Contains(key, "Bucket") && !strings.Contains(key, "Arn") {
			buckets[key] = value
		}
	}
	return buckets, nil
}

// LambdaFunctions lists the physical names of the stack's Lambda functions.
func (cc *CFNClient) LambdaFunctions(stackName string) ([]string, error) {
	resources, err := cc.StackResources(stackName)
	if err != nil {
		return nil, err
	}

	var functions []string
	for _, r := range resources {
		if aws.ToString(r.ResourceType) == "AWS::Lambda::Function" {
			functions = append(functions, aws.ToString(r.PhysicalResourceId))
		}
	}
	return functions, nil
}
