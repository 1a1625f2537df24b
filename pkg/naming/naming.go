// Package naming implements the 3-letter resource naming convention shared by
// every deployment script: {project-code}-{env-code}-{resource}.
package naming

import (
	"fmt"
	"regexp"
	"strings"
)

var ProjectCodes = map[string]string{
	"fraud-or-not":   "fon",
	"people-cards":   "pec",
	"media-register": "mer",
}

var EnvironmentCodes = map[string]string{
	"development": "dev",
	"dev":         "dev",
	"staging":     "stg",
	"stage":       "stg",
	"production":  "prd",
	"prod":        "prd",
}

var (
	resourceNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	conventionPattern   = regexp.MustCompile(`^(fon|pec|mer)-(dev|stg|prd)-[a-z0-9-]+$`)
	parsePattern        = regexp.MustCompile(`^([a-z]{3})-([a-z]{3})-(.+)$`)

	// legacy name shapes still seen in old accounts
	legacyRedundantEnv = regexp.MustCompile(`^(fraud-or-not|people-cards|media-register)-(dev|development|staging|stage|prod|production)-(.+)-(dev|development|staging|stage|prod|production)$`)
	legacyEnvSuffix    = regexp.MustCompile(`^(fraud-or-not|people-cards|media-register)-(.+)-(dev|development|staging|stage|prod|production)$`)

	legacyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^fraud-or-not-.*-dev$`),
		regexp.MustCompile(`^people-cards-.*-prod$`),
		regexp.MustCompile(`^media-register-.*-staging$`),
		regexp.MustCompile(`.*-development-.*`),
		regexp.MustCompile(`.*-production-.*`),
		regexp.MustCompile(`.*-staging-.*`),
	}
)

// ProjectCode returns the 3-letter code for a project name. Unknown projects
// fall back to the first three letters with hyphens stripped.
func ProjectCode(project string) (string, error) {
	if code, ok := ProjectCodes[project]; ok {
		return code, nil
	}
	fallback := strings.ToLower(strings.ReplaceAll(project, "-", ""))
	if len(fallback) >= 3 {
		return fallback[:3], nil
	}
	return "", fmt.Errorf("unknown project: %s", project)
}

func EnvironmentCode(environment string) (string, error) {
	env := strings.ToLower(environment)
	if code, ok := EnvironmentCodes[env]; ok {
		return code, nil
	}
	if len(env) >= 3 {
		return env[:3], nil
	}
	return "", fmt.Errorf("unknown environment: %s", environment)
}

// FormatResourceName builds [PROJ]-[ENV]-[resource-name], e.g. "fon-dev-frontend".
// Full names and bare codes are both accepted for project and environment.
func FormatResourceName(project, environment, resource string) (string, error) {
	projectCode := project
	if len(project) > 3 {
		code, err := ProjectCode(project)
		if err != nil {
			return "", err
		}
		projectCode = code
	}

	envCode := environment
	if len(environment) > 3 {
		code, err := EnvironmentCode(environment)
		if err != nil {
			return "", err
		}
		envCode = code
	}

	if !resourceNamePattern.MatchString(resource) {
		return "", fmt.Errorf("invalid resource name %q: must contain only lowercase letters, numbers and hyphens", resource)
	}

	return fmt.Sprintf("%s-%s-%s", projectCode, envCode, resource), nil
}

func ValidateResourceName(name string) bool {
	return conventionPattern.MatchString(name)
}

type ParsedName struct {
	Project     string
	Environment string
	Resource    string
}

// ParseResourceName splits a conventional name into its components, or returns
// false when the name does not follow the convention.
func ParseResourceName(name string) (ParsedName, bool) {
	m := parsePattern.FindStringSubmatch(name)
	if m == nil {
		return ParsedName{}, false
	}
	return ParsedName{Project: m[1], Environment: m[2], Resource: m[3]}, true
}

func IsLegacyName(name string) bool {
	for _, p := range legacyPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// ConvertLegacyName rewrites a legacy resource name into the 3-letter
// convention. The redundant-environment shape is tried first because the
// env-suffix pattern would swallow its trailing environment.
func ConvertLegacyName(legacy string) (string, bool) {
	if m := legacyRedundantEnv.FindStringSubmatch(legacy); m != nil {
		name, err := FormatResourceName(m[1], m[2], m[3])
		if err != nil {
			return "", false
		}
		return name, true
	}
	if m := legacyEnvSuffix.FindStringSubmatch(legacy); m != nil {
		name, err := FormatResourceName(m[1], m[3], m[2])
		if err != nil {
			return "", false
		}
		return name, true
	}
	return "", false
}
