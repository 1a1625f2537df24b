package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKnownProjectDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "people-cards")
	require.NoError(t, err)
	assert.Equal(t, "People Cards", cfg.DisplayName)
	assert.True(t, cfg.EnableWAF)
	assert.Equal(t, "us-west-1", cfg.Region)
	assert.Equal(t, []string{"dev", "staging", "prod"}, cfg.Environments)
	assert.Equal(t, "people-cards-dev", cfg.StackName("dev"))
	assert.Equal(t, "people-cards-cicd-user", cfg.CICDUserName())
}

func TestLoadUnknownProjectGetsDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "new-thing")
	require.NoError(t, err)
	assert.Equal(t, "new-thing", cfg.Name)
	assert.Equal(t, "new-thing-cicd-policy", cfg.CICDPolicyName())
}

func TestLoadRequiresProject(t *testing.T) {
	_, err := Load(viper.New(), "")
	assert.Error(t, err)
}

func TestLoadConfigFileOverride(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
projects:
  fraud-or-not:
    aws_region: eu-west-1
    aws_account_id: "123456789012"
`)))

	cfg, err := Load(v, "fraud-or-not")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "123456789012", cfg.AccountID)
	// defaults survive partial override
	assert.Equal(t, "Fraud or Not", cfg.DisplayName)
}

func TestRegionFlagWins(t *testing.T) {
	v := viper.New()
	v.Set("region", "ap-southeast-2")
	cfg, err := Load(v, "media-register")
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", cfg.Region)
}

func TestValidEnvironment(t *testing.T) {
	cfg, err := Load(viper.New(), "media-register")
	require.NoError(t, err)
	assert.True(t, cfg.ValidEnvironment("staging"))
	assert.False(t, cfg.ValidEnvironment("qa"))
}

func TestResourceName(t *testing.T) {
	cfg, err := Load(viper.New(), "media-register")
	require.NoError(t, err)
	name, err := cfg.ResourceName("prod", "media-store")
	require.NoError(t, err)
	assert.Equal(t, "mer-prd-media-store", name)
}
