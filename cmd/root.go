package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stackctl/stackctl/pkg/config"
	awsconnector "github.com/stackctl/stackctl/pkg/connector/services/aws"
	"github.com/stackctl/stackctl/pkg/io/logging"
)

const (
	flagVerbose        = "verbose"
	flagDebug          = "debug"
	flagAWSProfile     = "aws-profile"
	flagAWSEndpointUrl = "aws-endpoint-url"
	flagRegion         = "region"
	flagProject        = "project"
	flagEnvironment    = "environment"
	flagConfigFile     = "config"
)

var (
	logger         logging.LogManager
	vp             *viper.Viper
	awsProfile     string
	awsEndpointUrl string
	region         string
	project        string
	environment    string
	configFile     string
	rootCmd        = &cobra.Command{
		Use:   "stackctl",
		Short: "Deployment tooling for the project stacks on AWS",
	}
)

func init() {
	logger = logging.GetLogManager()
	vp = viper.New()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolP(flagDebug, "d", false, "Debug output")
	rootCmd.PersistentFlags().StringVarP(&awsProfile, flagAWSProfile, "p", "default", "AWS Profile to use")
	rootCmd.PersistentFlags().StringVarP(&awsEndpointUrl, flagAWSEndpointUrl, "", "", "Custom AWS endpoint (LocalStack)")
	rootCmd.PersistentFlags().StringVarP(&region, flagRegion, "r", "", "AWS region override")
	rootCmd.PersistentFlags().StringVarP(&project, flagProject, "P", "", "Project to operate on")
	rootCmd.PersistentFlags().StringVarP(&environment, flagEnvironment, "e", "", "Deployment environment (default: the project's default)")
	rootCmd.PersistentFlags().StringVarP(&configFile, flagConfigFile, "c", "", "Config file (default: ./stackctl.yaml)")
}

func initConfig() {
	if configFile != "" {
		vp.SetConfigFile(configFile)
	} else {
		vp.SetConfigName("stackctl")
		vp.SetConfigType("yaml")
		vp.AddConfigPath(".")
		vp.AddConfigPath("$HOME/.config/stackctl")
	}
	vp.SetEnvPrefix("STACKCTL")
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	vp.AutomaticEnv()

	if err := vp.BindPFlag("region", rootCmd.PersistentFlags().Lookup(flagRegion)); err != nil {
		logger.Error("Error binding region flag", "err", err)
	}

	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger.Error("Error reading config file", "err", err)
		}
	}
	if project == "" {
		project = vp.GetString("project")
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Error executing command", "err", err)
	}
}

func markAsRequired(cmd *cobra.Command, flag string) {
	if err := cmd.MarkFlagRequired(flag); err != nil {
		logger.Error("Required flags not provided", "err", err, "flag", flag)
	}
}

func applyLogFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed(flagVerbose) {
		logger.SetVerboseLevel()
	}
	if cmd.Flags().Changed(flagDebug) {
		logger.SetDebugLevel()
	}
}

// loadProject resolves the project config and the target environment.
func loadProject() (config.ProjectConfig, string) {
	cfg, err := config.Load(vp, project)
	if err != nil {
		logger.Error("Could not load project config", "err", err)
	}
	env := environment
	if env == "" {
		env = cfg.DefaultEnvironment
	}
	if !cfg.ValidEnvironment(env) {
		logger.Error("Invalid environment for project", "project", cfg.Name, "environment", env, "valid", cfg.Environments)
	}
	return cfg, env
}

func awsConfig(cfg config.ProjectConfig) awsconnector.AWSConfig {
	return awsconnector.InitAWSConfiguration(awsProfile, awsEndpointUrl, cfg.Region)
}
