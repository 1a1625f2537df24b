package template

// AddStorage renders the storage construct: DynamoDB tables and S3 buckets
// with the outputs other stacks import.
func AddStorage(t *Template, cfg *StorageConfig, environment string) error {
	for _, table := range cfg.DynamoDB.Tables {
		if err := addTable(t, table, environment); err != nil {
			return err
		}
	}
	for _, bucket := range cfg.S3.Buckets {
		if err := addBucket(t, bucket, environment); err != nil {
			return err
		}
	}
	return nil
}

func addTable(t *Template, cfg TableConfig, environment string) error {
	logicalID := LogicalID("DynamoDB", cfg.Name) + "Table"
	tableName := Sub(stringOr(cfg.NamePattern, "${AWS::StackName}-"+cfg.Name+"-"+environment))

	partition := cfg.PartitionKey
	if partition == nil {
		partition = &KeyConfig{Name: "id", Type: "S"}
	}

	keySchema := []any{
		map[string]any{"AttributeName": partition.Name, "KeyType": "HASH"},
	}
	attributes := map[string]string{partition.Name: partition.Type}
	if cfg.SortKey != nil {
		keySchema = append(keySchema, map[string]any{"AttributeName": cfg.SortKey.Name, "KeyType": "RANGE"})
		attributes[cfg.SortKey.Name] = cfg.SortKey.Type
	}

	billingMode := stringOr(cfg.BillingMode, "PAY_PER_REQUEST")

	var gsis []any
	for _, gsi := range cfg.GSIs {
		attributes[gsi.PartitionKey.Name] = gsi.PartitionKey.Type
		gsiKeys := []any{
			map[string]any{"AttributeName": gsi.PartitionKey.Name, "KeyType": "HASH"},
		}
		if gsi.SortKey != nil {
			attributes[gsi.SortKey.Name] = gsi.SortKey.Type
			gsiKeys = append(gsiKeys, map[string]any{"AttributeName": gsi.SortKey.Name, "KeyType": "RANGE"})
		}
		index := map[string]any{
			"IndexName": gsi.Name,
			"KeySchema": gsiKeys,
			"Projection": map[string]any{
				"ProjectionType": stringOr(gsi.ProjectionType, "ALL"),
			},
		}
		if billingMode != "PAY_PER_REQUEST" {
			index["ProvisionedThroughput"] = map[string]any{
				"ReadCapacityUnits":  intOr(gsi.ReadCapacity, 5),
				"WriteCapacityUnits": intOr(gsi.WriteCapacity, 5),
			}
		}
		gsis = append(gsis, index)
	}

	var attributeDefinitions []any
	for _, name := range sortedKeys(attributes) {
		attributeDefinitions = append(attributeDefinitions, map[string]any{
			"AttributeName": name,
			"AttributeType": attributes[name],
		})
	}

	props := map[string]any{
		"TableName":            tableName,
		"AttributeDefinitions": attributeDefinitions,
		"KeySchema":            keySchema,
		"BillingMode":          billingMode,
		"Tags": []any{
			map[string]any{"Key": "Name", "Value": tableName},
			map[string]any{"Key": "Environment", "Value": environment},
			map[string]any{"Key": "Type", "Value": "dynamodb"},
		},
	}
	if len(gsis) > 0 {
		props["GlobalSecondaryIndexes"] = gsis
	}
	if billingMode == "PROVISIONED" {
		props["ProvisionedThroughput"] = map[string]any{
			"ReadCapacityUnits":  intOr(cfg.ReadCapacity, 5),
			"WriteCapacityUnits": intOr(cfg.WriteCapacity, 5),
		}
	}
	if boolOr(cfg.PointInTimeRecovery, true) {
		props["PointInTimeRecoverySpecification"] = map[string]any{
			"PointInTimeRecoveryEnabled": true,
		}
	}
	if boolOr(cfg.Encryption, true) {
		props["SSESpecification"] = map[string]any{"SSEEnabled": true}
	}
	if cfg.StreamViewType != "" {
		props["StreamSpecification"] = map[string]any{"StreamViewType": cfg.StreamViewType}
	}
	if cfg.TTLAttribute != "" {
		props["TimeToLiveSpecification"] = map[string]any{
			"AttributeName": cfg.TTLAttribute,
			"Enabled":       true,
		}
	}

	if err := t.AddResource(logicalID, Resource{Type: "AWS::DynamoDB::Table", Properties: props}); err != nil {
		return err
	}

	t.ExportOutput(logicalID+"Name", cfg.Name+" DynamoDB table name", Ref(logicalID), cfg.Name+"-table")
	t.ExportOutput(logicalID+"Arn", cfg.Name+" DynamoDB table ARN", GetAtt{logicalID, "Arn"}, cfg.Name+"-table-arn")
	return nil
}

func addBucket(t *Template, cfg BucketConfig, environment string) error {
	logicalID := LogicalID("S3", cfg.Name) + "Bucket"
	bucketName := Sub(stringOr(cfg.NamePattern, "${AWS::StackName}-"+cfg.Name+"-"+environment))

	props := map[string]any{
		"BucketName": bucketName,
		"Tags": []any{
			map[string]any{"Key": "Name", "Value": bucketName},
			map[string]any{"Key": "Environment", "Value": environment},
			map[string]any{"Key": "Type", "Value": "s3"},
		},
	}

	if cfg.Versioning {
		props["VersioningConfiguration"] = map[string]any{"Status": "Enabled"}
	}
	if boolOr(cfg.Encryption, true) {
		props["BucketEncryption"] = map[string]any{
			"ServerSideEncryptionConfiguration": []any{
				map[string]any{
					"ServerSideEncryptionByDefault": map[string]any{"SSEAlgorithm": "AES256"},
				},
			},
		}
	}
	if boolOr(cfg.BlockPublicAccess, true) {
		props["PublicAccessBlockConfiguration"] = map[string]any{
			"BlockPublicAcls":       true,
			"BlockPublicPolicy":     true,
			"IgnorePublicAcls":      true,
			"RestrictPublicBuckets": true,
		}
	}
	if len(cfg.CORSRules) > 0 {
		var rules []any
		for _, rule := range cfg.CORSRules {
			rules = append(rules, map[string]any{
				"AllowedHeaders": defaultSlice(rule.AllowedHeaders, []string{"*"}),
				"AllowedMethods": defaultSlice(rule.AllowedMethods, []string{"GET", "PUT", "POST"}),
				"AllowedOrigins": defaultSlice(rule.AllowedOrigins, []string{"*"}),
				"MaxAge":         intOr(rule.MaxAge, 3600),
			})
		}
		props["CorsConfiguration"] = map[string]any{"CorsRules": rules}
	}
	if len(cfg.LifecycleRules) > 0 {
		var rules []any
		for _, rule := range cfg.LifecycleRules {
			r := map[string]any{"Id": rule.ID, "Status": "Enabled"}
			if rule.ExpirationDays > 0 {
				r["ExpirationInDays"] = rule.ExpirationDays
			}
			if rule.TransitionDays > 0 {
				r["Transitions"] = []any{
					map[string]any{
						"TransitionInDays": rule.TransitionDays,
						"StorageClass":     stringOr(rule.StorageClass, "GLACIER"),
					},
				}
			}
			rules = append(rules, r)
		}
		props["LifecycleConfiguration"] = map[string]any{"Rules": rules}
	}
	if cfg.WebsiteHosting {
		props["WebsiteConfiguration"] = map[string]any{
			"IndexDocument": stringOr(cfg.IndexDocument, "index.html"),
			"ErrorDocument": stringOr(cfg.ErrorDocument, "error.html"),
		}
	}

	if err := t.AddResource(logicalID, Resource{Type: "AWS::S3::Bucket", Properties: props}); err != nil {
		return err
	}

	t.ExportOutput(logicalID+"Name", cfg.Name+" S3 bucket name", Ref(logicalID), cfg.Name+"-bucket")
	t.ExportOutput(logicalID+"Arn", cfg.Name+" S3 bucket ARN", GetAtt{logicalID, "Arn"}, cfg.Name+"-bucket-arn")
	return nil
}

func defaultSlice(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
