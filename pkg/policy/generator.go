package policy

import "fmt"

// Generator builds the standard policy documents for one project. All ARNs
// are scoped to resources whose names start with the project name.
type Generator struct {
	Project     string
	Region      string
	EnableWAF   bool
	LambdaInVPC bool
}

// CICDPolicy returns the managed policy granted to the project's CI/CD
// principal. It covers everything a full stack deploy touches, plus the CDK
// bootstrap roles and buckets.
func (g *Generator) CICDPolicy(accountID string) *Document {
	doc := NewDocument(
		Statement{
			Sid:    "CloudFormationAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"cloudformation:CreateStack",
				"cloudformation:UpdateStack",
				"cloudformation:DeleteStack",
				"cloudformation:DescribeStacks",
				"cloudformation:DescribeStackEvents",
				"cloudformation:GetTemplate",
				"cloudformation:ValidateTemplate",
				"cloudformation:CreateChangeSet",
				"cloudformation:DeleteChangeSet",
				"cloudformation:DescribeChangeSet",
				"cloudformation:ExecuteChangeSet",
				"cloudformation:ListStacks",
				"cloudformation:ListStackResources",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:cloudformation:%s:%s:stack/%s-*/*", g.Region, accountID, g.Project),
				fmt.Sprintf("arn:aws:cloudformation:%s:%s:stack/CDKToolkit/*", g.Region, accountID),
			},
		},
		Statement{
			Sid:    "S3Access",
			Effect: "Allow",
			Action: StringOrSlice{
				"s3:CreateBucket",
				"s3:DeleteBucket",
				"s3:PutObject",
				"s3:GetObject",
				"s3:DeleteObject",
				"s3:ListBucket",
				"s3:GetBucketLocation",
				"s3:GetBucketPolicy",
				"s3:PutBucketPolicy",
				"s3:DeleteBucketPolicy",
				"s3:PutBucketVersioning",
				"s3:PutBucketPublicAccessBlock",
				"s3:GetBucketPublicAccessBlock",
				"s3:PutBucketEncryption",
				"s3:GetBucketEncryption",
				"s3:PutBucketCORS",
				"s3:GetBucketCORS",
				"s3:PutBucketWebsite",
				"s3:GetBucketWebsite",
				"s3:DeleteBucketWebsite",
				"s3:PutBucketTagging",
				"s3:GetBucketTagging",
				"s3:PutLifecycleConfiguration",
				"s3:GetLifecycleConfiguration",
				"s3:PutBucketOwnershipControls",
				"s3:GetBucketOwnershipControls",
				"s3:ListBucketVersions",
				"s3:DeleteObjectVersion",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:s3:::%s-*", g.Project),
				fmt.Sprintf("arn:aws:s3:::%s-*/*", g.Project),
				fmt.Sprintf("arn:aws:s3:::cdk-*-%s-%s", g.Region, accountID),
				fmt.Sprintf("arn:aws:s3:::cdk-*-%s-%s/*", g.Region, accountID),
			},
		},
		// ListAllMyBuckets only works against "*", so it cannot join the
		// project-scoped S3Access statement.
		Statement{
			Sid:      "S3ListBuckets",
			Effect:   "Allow",
			Action:   StringOrSlice{"s3:ListAllMyBuckets"},
			Resource: StringOrSlice{"*"},
		},
		Statement{
			Sid:    "LambdaAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"lambda:CreateFunction",
				"lambda:UpdateFunctionCode",
				"lambda:UpdateFunctionConfiguration",
				"lambda:DeleteFunction",
				"lambda:GetFunction",
				"lambda:GetFunctionConfiguration",
				"lambda:ListFunctions",
				"lambda:AddPermission",
				"lambda:RemovePermission",
				"lambda:InvokeFunction",
				"lambda:TagResource",
				"lambda:UntagResource",
				"lambda:ListTags",
				"lambda:PutFunctionConcurrency",
				"lambda:DeleteFunctionConcurrency",
				"lambda:CreateAlias",
				"lambda:UpdateAlias",
				"lambda:DeleteAlias",
				"lambda:GetAlias",
				"lambda:ListAliases",
				"lambda:PublishVersion",
				"lambda:ListVersionsByFunction",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s-*", g.Region, accountID, g.Project),
			},
		},
		Statement{
			Sid:    "IAMAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"iam:CreateRole",
				"iam:DeleteRole",
				"iam:AttachRolePolicy",
				"iam:DetachRolePolicy",
				"iam:PutRolePolicy",
				"iam:DeleteRolePolicy",
				"iam:GetRole",
				"iam:GetRolePolicy",
				"iam:PassRole",
				"iam:TagRole",
				"iam:UntagRole",
				"iam:CreatePolicy",
				"iam:DeletePolicy",
				"iam:CreatePolicyVersion",
				"iam:DeletePolicyVersion",
				"iam:GetPolicy",
				"iam:GetPolicyVersion",
				"iam:ListPolicyVersions",
				"iam:UpdateAssumeRolePolicy",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:iam::%s:role/%s-*", accountID, g.Project),
				fmt.Sprintf("arn:aws:iam::%s:policy/%s-*", accountID, g.Project),
				fmt.Sprintf("arn:aws:iam::%s:role/cdk-*", accountID),
			},
		},
		Statement{
			Sid:    "DynamoDBAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"dynamodb:CreateTable",
				"dynamodb:DeleteTable",
				"dynamodb:DescribeTable",
				"dynamodb:UpdateTable",
				"dynamodb:TagResource",
				"dynamodb:UntagResource",
				"dynamodb:ListTagsOfResource",
				"dynamodb:UpdateTimeToLive",
				"dynamodb:DescribeTimeToLive",
				"dynamodb:UpdateContinuousBackups",
				"dynamodb:DescribeContinuousBackups",
				"dynamodb:CreateBackup",
				"dynamodb:DeleteBackup",
				"dynamodb:ListBackups",
				"dynamodb:DescribeBackup",
				"dynamodb:RestoreTableFromBackup",
				"dynamodb:CreateGlobalSecondaryIndex",
				"dynamodb:DeleteGlobalSecondaryIndex",
				"dynamodb:DescribeGlobalSecondaryIndex",
				"dynamodb:UpdateGlobalSecondaryIndex",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s-*", g.Region, accountID, g.Project),
				fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s-*/backup/*", g.Region, accountID, g.Project),
			},
		},
		Statement{
			Sid:    "APIGatewayAccess",
			Effect: "Allow",
			Action: StringOrSlice{"apigateway:*"},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:apigateway:%s::/restapis", g.Region),
				fmt.Sprintf("arn:aws:apigateway:%s::/restapis/*", g.Region),
			},
		},
		Statement{
			Sid:    "CloudFrontAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"cloudfront:CreateDistribution",
				"cloudfront:UpdateDistribution",
				"cloudfront:DeleteDistribution",
				"cloudfront:GetDistribution",
				"cloudfront:GetDistributionConfig",
				"cloudfront:ListDistributions",
				"cloudfront:TagResource",
				"cloudfront:UntagResource",
				"cloudfront:ListTagsForResource",
				"cloudfront:CreateInvalidation",
				"cloudfront:GetInvalidation",
				"cloudfront:ListInvalidations",
				"cloudfront:CreateOriginAccessControl",
				"cloudfront:GetOriginAccessControl",
				"cloudfront:UpdateOriginAccessControl",
				"cloudfront:DeleteOriginAccessControl",
				"cloudfront:ListOriginAccessControls",
			},
			Resource: StringOrSlice{"*"},
		},
		Statement{
			Sid:    "CognitoAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"cognito-idp:CreateUserPool",
				"cognito-idp:DeleteUserPool",
				"cognito-idp:UpdateUserPool",
				"cognito-idp:DescribeUserPool",
				"cognito-idp:CreateUserPoolClient",
				"cognito-idp:DeleteUserPoolClient",
				"cognito-idp:UpdateUserPoolClient",
				"cognito-idp:DescribeUserPoolClient",
				"cognito-idp:CreateUserPoolDomain",
				"cognito-idp:DeleteUserPoolDomain",
				"cognito-idp:DescribeUserPoolDomain",
				"cognito-idp:UpdateUserPoolDomain",
				"cognito-idp:SetUserPoolMfaConfig",
				"cognito-idp:GetUserPoolMfaConfig",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:cognito-idp:%s:%s:userpool/*", g.Region, accountID),
			},
		},
		Statement{
			Sid:    "EC2VPCAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"ec2:CreateVpc",
				"ec2:DeleteVpc",
				"ec2:ModifyVpcAttribute",
				"ec2:DescribeVpcs",
				"ec2:CreateSubnet",
				"ec2:DeleteSubnet",
				"ec2:ModifySubnetAttribute",
				"ec2:DescribeSubnets",
				"ec2:CreateInternetGateway",
				"ec2:DeleteInternetGateway",
				"ec2:AttachInternetGateway",
				"ec2:DetachInternetGateway",
				"ec2:DescribeInternetGateways",
				"ec2:CreateNatGateway",
				"ec2:DeleteNatGateway",
				"ec2:DescribeNatGateways",
				"ec2:AllocateAddress",
				"ec2:ReleaseAddress",
				"ec2:DescribeAddresses",
				"ec2:CreateRoute",
				"ec2:DeleteRoute",
				"ec2:CreateRouteTable",
				"ec2:DeleteRouteTable",
				"ec2:AssociateRouteTable",
				"ec2:DisassociateRouteTable",
				"ec2:DescribeRouteTables",
				"ec2:CreateSecurityGroup",
				"ec2:DeleteSecurityGroup",
				"ec2:AuthorizeSecurityGroupIngress",
				"ec2:AuthorizeSecurityGroupEgress",
				"ec2:RevokeSecurityGroupIngress",
				"ec2:RevokeSecurityGroupEgress",
				"ec2:DescribeSecurityGroups",
				"ec2:CreateTags",
				"ec2:DeleteTags",
				"ec2:DescribeTags",
				"ec2:CreateVpcEndpoint",
				"ec2:DeleteVpcEndpoints",
				"ec2:DescribeVpcEndpoints",
				"ec2:ModifyVpcEndpoint",
				"ec2:DescribeAvailabilityZones",
				"ec2:DescribeAccountAttributes",
				"ec2:AssociateAddress",
				"ec2:DisassociateAddress",
				"ec2:CreateFlowLogs",
				"ec2:DeleteFlowLogs",
				"ec2:DescribeFlowLogs",
				"ec2:CreateVpcPeeringConnection",
				"ec2:AcceptVpcPeeringConnection",
				"ec2:DeleteVpcPeeringConnection",
				"ec2:DescribeVpcPeeringConnections",
				"ec2:ModifyVpcPeeringConnectionOptions",
				"ec2:CreateNetworkAcl",
				"ec2:DeleteNetworkAcl",
				"ec2:ReplaceNetworkAclAssociation",
				"ec2:ReplaceNetworkAclEntry",
				"ec2:CreateNetworkAclEntry",
				"ec2:DeleteNetworkAclEntry",
				"ec2:DescribeNetworkAcls",
			},
			Resource: StringOrSlice{"*"},
		},
	)

	if g.EnableWAF {
		// WAF for CloudFront is global and lives in us-east-1 regardless of
		// the stack region.
		doc.Statement = append(doc.Statement, Statement{
			Sid:    "WAFAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"wafv2:CreateWebACL",
				"wafv2:DeleteWebACL",
				"wafv2:UpdateWebACL",
				"wafv2:GetWebACL",
				"wafv2:ListWebACLs",
				"wafv2:AssociateWebACL",
				"wafv2:DisassociateWebACL",
				"wafv2:TagResource",
				"wafv2:UntagResource",
				"wafv2:ListTagsForResource",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:wafv2:us-east-1:%s:global/webacl/*", accountID),
			},
		})
	}

	doc.Statement = append(doc.Statement,
		Statement{
			Sid:    "CloudWatchAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"logs:CreateLogGroup",
				"logs:DeleteLogGroup",
				"logs:PutRetentionPolicy",
				"logs:TagLogGroup",
				"logs:UntagLogGroup",
				"logs:DescribeLogGroups",
				"logs:TagResource",
				"cloudwatch:PutMetricAlarm",
				"cloudwatch:DeleteAlarms",
				"cloudwatch:DescribeAlarms",
			},
			Resource: StringOrSlice{"*"},
		},
		Statement{
			Sid:    "SSMAccess",
			Effect: "Allow",
			Action: StringOrSlice{
				"ssm:GetParameter",
				"ssm:GetParameters",
				"ssm:PutParameter",
				"ssm:DeleteParameter",
				"ssm:DescribeParameters",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:ssm:%s:%s:parameter/%s/*", g.Region, accountID, g.Project),
				fmt.Sprintf("arn:aws:ssm:%s:%s:parameter/cdk-bootstrap/*", g.Region, accountID),
			},
		},
		Statement{
			Sid:    "CDKBootstrapAccess",
			Effect: "Allow",
			Action: StringOrSlice{"sts:AssumeRole"},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:iam::%s:role/cdk-*", accountID),
			},
		},
	)

	return doc
}

// LambdaExecutionPolicy returns the policy attached to the project's Lambda
// execution role.
func (g *Generator) LambdaExecutionPolicy() *Document {
	doc := NewDocument(Statement{
		Effect: "Allow",
		Action: StringOrSlice{
			"logs:CreateLogGroup",
			"logs:CreateLogStream",
			"logs:PutLogEvents",
		},
		Resource: StringOrSlice{
			fmt.Sprintf("arn:aws:logs:%s:*:*", g.Region),
		},
	})

	if g.LambdaInVPC {
		doc.Statement = append(doc.Statement, Statement{
			Effect: "Allow",
			Action: StringOrSlice{
				"ec2:CreateNetworkInterface",
				"ec2:DescribeNetworkInterfaces",
				"ec2:DeleteNetworkInterface",
				"ec2:AssignPrivateIpAddresses",
				"ec2:UnassignPrivateIpAddresses",
			},
			Resource: StringOrSlice{"*"},
		})
	}

	doc.Statement = append(doc.Statement,
		Statement{
			Effect: "Allow",
			Action: StringOrSlice{
				"dynamodb:GetItem",
				"dynamodb:PutItem",
				"dynamodb:UpdateItem",
				"dynamodb:DeleteItem",
				"dynamodb:Query",
				"dynamodb:Scan",
				"dynamodb:BatchGetItem",
				"dynamodb:BatchWriteItem",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:dynamodb:%s:*:table/%s-*", g.Region, g.Project),
			},
		},
		Statement{
			Effect: "Allow",
			Action: StringOrSlice{
				"s3:GetObject",
				"s3:PutObject",
				"s3:DeleteObject",
				"s3:ListBucket",
			},
			Resource: StringOrSlice{
				fmt.Sprintf("arn:aws:s3:::%s-*", g.Project),
				fmt.Sprintf("arn:aws:s3:::%s-*/*", g.Project),
			},
		},
	)

	return doc
}

// GitHubTrustPolicy returns the assume-role trust policy for GitHub Actions
// OIDC federation, scoped to one repository.
func GitHubTrustPolicy(githubOrg, githubRepo string) *Document {
	return NewDocument(Statement{
		Effect: "Allow",
		Principal: map[string]StringOrSlice{
			"Federated": {"arn:aws:iam::*:oidc-provider/token.actions.githubusercontent.com"},
		},
		Action: StringOrSlice{"sts:AssumeRoleWithWebIdentity"},
		Condition: map[string]map[string]string{
			"StringEquals": {
				"token.actions.githubusercontent.com:aud": "sts.amazonaws.com",
			},
			"StringLike": {
				"token.actions.githubusercontent.com:sub": fmt.Sprintf("repo:%s/%s:*", githubOrg, githubRepo),
			},
		},
	})
}
