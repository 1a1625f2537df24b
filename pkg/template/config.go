package template

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StackConfig is the declarative description of one project stack, read from
// the project's stack.yaml.
type StackConfig struct {
	Description  string              `yaml:"description"`
	Storage      *StorageConfig      `yaml:"storage"`
	Compute      *ComputeConfig      `yaml:"compute"`
	Network      *NetworkConfig      `yaml:"network"`
	Distribution *DistributionConfig `yaml:"distribution"`
}

type StorageConfig struct {
	DynamoDB struct {
		Tables []TableConfig `yaml:"tables"`
	} `yaml:"dynamodb"`
	S3 struct {
		Buckets []BucketConfig `yaml:"buckets"`
	} `yaml:"s3"`
}

type KeyConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type GSIConfig struct {
	Name           string     `yaml:"name"`
	PartitionKey   KeyConfig  `yaml:"partition_key"`
	SortKey        *KeyConfig `yaml:"sort_key"`
	ProjectionType string     `yaml:"projection_type"`
	ReadCapacity   int        `yaml:"read_capacity"`
	WriteCapacity  int        `yaml:"write_capacity"`
}

type TableConfig struct {
	Name                string      `yaml:"name"`
	NamePattern         string      `yaml:"name_pattern"`
	PartitionKey        *KeyConfig  `yaml:"partition_key"`
	SortKey             *KeyConfig  `yaml:"sort_key"`
	BillingMode         string      `yaml:"billing_mode"`
	ReadCapacity        int         `yaml:"read_capacity"`
	WriteCapacity       int         `yaml:"write_capacity"`
	PointInTimeRecovery *bool       `yaml:"point_in_time_recovery"`
	Encryption          *bool       `yaml:"encryption"`
	StreamViewType      string      `yaml:"stream_view_type"`
	TTLAttribute        string      `yaml:"ttl_attribute"`
	GSIs                []GSIConfig `yaml:"global_secondary_indexes"`
}

type CORSRuleConfig struct {
	AllowedHeaders []string `yaml:"allowed_headers"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

type LifecycleRuleConfig struct {
	ID             string `yaml:"id"`
	ExpirationDays int    `yaml:"expiration_days"`
	TransitionDays int    `yaml:"transition_days"`
	StorageClass   string `yaml:"storage_class"`
}

type BucketConfig struct {
	Name              string                `yaml:"name"`
	NamePattern       string                `yaml:"name_pattern"`
	Versioning        bool                  `yaml:"versioning"`
	Encryption        *bool                 `yaml:"encryption"`
	BlockPublicAccess *bool                 `yaml:"block_public_access"`
	WebsiteHosting    bool                  `yaml:"website_hosting"`
	IndexDocument     string                `yaml:"index_document"`
	ErrorDocument     string                `yaml:"error_document"`
	CORSRules         []CORSRuleConfig      `yaml:"cors_rules"`
	LifecycleRules    []LifecycleRuleConfig `yaml:"lifecycle_rules"`
}

type FunctionConfig struct {
	Name        string            `yaml:"name"`
	Handler     string            `yaml:"handler"`
	Runtime     string            `yaml:"runtime"`
	MemorySize  int               `yaml:"memory_size"`
	Timeout     int               `yaml:"timeout"`
	Environment map[string]string `yaml:"environment"`
	CodeKey     string            `yaml:"code_key"`
}

type ComputeConfig struct {
	Lambda struct {
		Functions []FunctionConfig `yaml:"functions"`
		InVPC     bool             `yaml:"in_vpc"`
	} `yaml:"lambda"`
	API *struct {
		Name      string `yaml:"name"`
		StageName string `yaml:"stage_name"`
	} `yaml:"api"`
}

type NetworkConfig struct {
	VPC struct {
		CIDR          string   `yaml:"cidr"`
		PublicSubnets []string `yaml:"public_subnets"`
	} `yaml:"vpc"`
}

type DistributionConfig struct {
	CloudFront struct {
		OriginBucket string   `yaml:"origin_bucket"`
		PriceClass   string   `yaml:"price_class"`
		Aliases      []string `yaml:"aliases"`
	} `yaml:"cloudfront"`
}

func ParseStackConfig(data []byte) (*StackConfig, error) {
	var cfg StackConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing stack config: %w", err)
	}
	return &cfg, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
