package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCode(t *testing.T) {
	for project, want := range map[string]string{
		"fraud-or-not":   "fon",
		"people-cards":   "pec",
		"media-register": "mer",
	} {
		code, err := ProjectCode(project)
		require.NoError(t, err)
		assert.Equal(t, want, code)
	}
}

func TestProjectCodeFallback(t *testing.T) {
	code, err := ProjectCode("my-new-app")
	require.NoError(t, err)
	assert.Equal(t, "myn", code)

	_, err = ProjectCode("x")
	assert.Error(t, err)
}

func TestEnvironmentCode(t *testing.T) {
	for env, want := range map[string]string{
		"development": "dev",
		"dev":         "dev",
		"staging":     "stg",
		"stage":       "stg",
		"production":  "prd",
		"prod":        "prd",
		"qa-sandbox":  "qa-",
	} {
		code, err := EnvironmentCode(env)
		require.NoError(t, err)
		assert.Equal(t, want, code)
	}
}

func TestFormatResourceName(t *testing.T) {
	name, err := FormatResourceName("fraud-or-not", "development", "frontend")
	require.NoError(t, err)
	assert.Equal(t, "fon-dev-frontend", name)

	// bare codes pass through untouched
	name, err = FormatResourceName("pec", "stg", "api")
	require.NoError(t, err)
	assert.Equal(t, "pec-stg-api", name)
}

func TestFormatResourceNameRejectsBadResource(t *testing.T) {
	_, err := FormatResourceName("people-cards", "prod", "Has_Caps")
	assert.Error(t, err)
}

func TestValidateResourceName(t *testing.T) {
	assert.True(t, ValidateResourceName("fon-dev-frontend"))
	assert.True(t, ValidateResourceName("mer-prd-media-store"))
	assert.False(t, ValidateResourceName("fon-qa-frontend"))
	assert.False(t, ValidateResourceName("unknown-dev-frontend"))
}

func TestParseResourceName(t *testing.T) {
	parsed, ok := ParseResourceName("fon-dev-frontend")
	require.True(t, ok)
	assert.Equal(t, "fon", parsed.Project)
	assert.Equal(t, "dev", parsed.Environment)
	assert.Equal(t, "frontend", parsed.Resource)

	_, ok = ParseResourceName("not-a-conventional")
	assert.True(t, ok) // three-letter groups still parse

	_, ok = ParseResourceName("tooshort")
	assert.False(t, ok)
}

func TestConvertLegacyName(t *testing.T) {
	// {project}-{env}-{resource}-{env}: redundant suffix dropped
	name, ok := ConvertLegacyName("fraud-or-not-dev-frontend-dev")
	require.True(t, ok)
	assert.Equal(t, "fon-dev-frontend", name)

	// {project}-{resource}-{env}
	name, ok = ConvertLegacyName("people-cards-api-production")
	require.True(t, ok)
	assert.Equal(t, "pec-prd-api", name)

	_, ok = ConvertLegacyName("something-else-entirely")
	assert.False(t, ok)
}

func TestIsLegacyName(t *testing.T) {
	assert.True(t, IsLegacyName("fraud-or-not-frontend-dev"))
	assert.True(t, IsLegacyName("people-cards-production-api"))
	assert.False(t, IsLegacyName("fon-dev-frontend"))
}
