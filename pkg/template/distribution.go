package template

// AddDistribution renders the distribution construct: a CloudFront
// distribution in front of the named origin bucket, using an origin access
// control so the bucket can stay private.
func AddDistribution(t *Template, cfg *DistributionConfig, environment string) error {
	originBucketID := LogicalID("S3", cfg.CloudFront.OriginBucket) + "Bucket"

	err := t.AddResource("OriginAccessControl", Resource{
		Type: "AWS::CloudFront::OriginAccessControl",
		Properties: map[string]any{
			"OriginAccessControlConfig": map[string]any{
				"Name":                          Sub("${AWS::StackName}-oac"),
				"OriginAccessControlOriginType": "s3",
				"SigningBehavior":               "always",
				"SigningProtocol":               "sigv4",
			},
		},
	})
	if err != nil {
		return err
	}

	distProps := map[string]any{
		"DistributionConfig": map[string]any{
			"Enabled":           true,
			"DefaultRootObject": "index.html",
			"PriceClass":        stringOr(cfg.CloudFront.PriceClass, "PriceClass_100"),
			"HttpVersion":       "http2",
			"Origins": []any{
				map[string]any{
					"Id":                    "s3-origin",
					"DomainName":            GetAtt{originBucketID, "RegionalDomainName"},
					"OriginAccessControlId": Ref("OriginAccessControl"),
					"S3OriginConfig":        map[string]any{"OriginAccessIdentity": ""},
				},
			},
			"DefaultCacheBehavior": map[string]any{
				"TargetOriginId":       "s3-origin",
				"ViewerProtocolPolicy": "redirect-to-https",
				"AllowedMethods":       []any{"GET", "HEAD", "OPTIONS"},
				"CachedMethods":        []any{"GET", "HEAD"},
				"Compress":             true,
				// CachingOptimized managed policy
				"CachePolicyId": "658327ea-f89d-4fab-a63d-7e88639e58f6",
			},
			"ViewerCertificate": map[string]any{
				"CloudFrontDefaultCertificate": true,
			},
		},
		"Tags": []any{
			map[string]any{"Key": "Environment", "Value": environment},
		},
	}
	if len(cfg.CloudFront.Aliases) > 0 {
		distConfig := distProps["DistributionConfig"].(map[string]any)
		aliases := make([]any, 0, len(cfg.CloudFront.Aliases))
		for _, a := range cfg.CloudFront.Aliases {
			aliases = append(aliases, a)
		}
		distConfig["Aliases"] = aliases
	}

	if err := t.AddResource("Distribution", Resource{Type: "AWS::CloudFront::Distribution", Properties: distProps}); err != nil {
		return err
	}

	t.ExportOutput("DistributionId", "CloudFront distribution id", Ref("Distribution"), "distribution-id")
	t.ExportOutput("DistributionDomainName", "CloudFront distribution domain",
		GetAtt{"Distribution", "DomainName"}, "distribution-domain")
	return nil
}
