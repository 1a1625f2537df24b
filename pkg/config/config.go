// Package config loads per-project settings from the stackctl config file
// and environment, with baked-in defaults for the three known projects.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/stackctl/stackctl/pkg/naming"
)

// ProjectConfig holds everything the deployment tooling needs to know about
// one project. Naming patterns use {project}, {environment} and {account_id}
// placeholders.
type ProjectConfig struct {
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"display_name"`
	Region      string `mapstructure:"aws_region"`
	AccountID   string `mapstructure:"aws_account_id"`

	Environments       []string `mapstructure:"environments"`
	DefaultEnvironment string   `mapstructure:"default_environment"`

	StackNamePattern  string `mapstructure:"stack_name_pattern"`
	CICDUserPattern   string `mapstructure:"cicd_user_pattern"`
	CICDPolicyPattern string `mapstructure:"cicd_policy_pattern"`

	EnableWAF   bool `mapstructure:"enable_waf"`
	LambdaInVPC bool `mapstructure:"lambda_in_vpc"`
}

var knownProjects = map[string]ProjectConfig{
	"fraud-or-not":   {Name: "fraud-or-not", DisplayName: "Fraud or Not", Region: "us-west-1"},
	"people-cards":   {Name: "people-cards", DisplayName: "People Cards", Region: "us-west-1", EnableWAF: true},
	"media-register": {Name: "media-register", DisplayName: "Media Register", Region: "us-west-1"},
}

// KnownProjects returns the project names with baked-in defaults, sorted by
// how they appear in the unified policy.
func KnownProjects() []string {
	return []string{"fraud-or-not", "media-register", "people-cards"}
}

// Load resolves the config for a project: baked-in defaults, overridden by a
// `projects.<name>` section of the viper config file, overridden again by any
// explicitly bound flags.
func Load(v *viper.Viper, project string) (ProjectConfig, error) {
	if project == "" {
		return ProjectConfig{}, fmt.Errorf("no project selected, use --project or the config file")
	}

	cfg, ok := knownProjects[project]
	if !ok {
		cfg = ProjectConfig{Name: project, DisplayName: project, Region: "us-west-1"}
	}
	applyDefaults(&cfg)

	if sub := v.Sub("projects." + project); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return ProjectConfig{}, fmt.Errorf("config for project %s: %w", project, err)
		}
	}
	if region := v.GetString("region"); region != "" {
		cfg.Region = region
	}
	return cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if len(cfg.Environments) == 0 {
		cfg.Environments = []string{"dev", "staging", "prod"}
	}
	if cfg.DefaultEnvironment == "" {
		cfg.DefaultEnvironment = "dev"
	}
	if cfg.StackNamePattern == "" {
		cfg.StackNamePattern = "{project}-{environment}"
	}
	if cfg.CICDUserPattern == "" {
		cfg.CICDUserPattern = "{project}-cicd-user"
	}
	if cfg.CICDPolicyPattern == "" {
		cfg.CICDPolicyPattern = "{project}-cicd-policy"
	}
}

// FormatName expands a naming pattern's placeholders.
func (c ProjectConfig) FormatName(pattern, environment string) string {
	r := strings.NewReplacer(
		"{project}", c.Name,
		"{environment}", environment,
		"{account_id}", c.AccountID,
	)
	return r.Replace(pattern)
}

func (c ProjectConfig) StackName(environment string) string {
	return c.FormatName(c.StackNamePattern, environment)
}

func (c ProjectConfig) CICDUserName() string {
	return c.FormatName(c.CICDUserPattern, "")
}

func (c ProjectConfig) CICDPolicyName() string {
	return c.FormatName(c.CICDPolicyPattern, "")
}

// ResourceName builds a conventional short resource name for the project.
func (c ProjectConfig) ResourceName(environment, resource string) (string, error) {
	return naming.FormatResourceName(c.Name, environment, resource)
}

// ValidEnvironment reports whether the environment is one the project
// deploys to.
func (c ProjectConfig) ValidEnvironment(environment string) bool {
	for _, e := range c.Environments {
		if e == environment {
			return true
		}
	}
	return false
}
