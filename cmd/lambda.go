package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	lambdaconnector "github.com/stackctl/stackctl/pkg/connector/services/aws/lambda"
	s3connector "github.com/stackctl/stackctl/pkg/connector/services/aws/s3"
	"github.com/stackctl/stackctl/pkg/io/logging"
	"github.com/stackctl/stackctl/pkg/rotation"
)

var (
	deployFunction string
	deployBucket   string
	deployKey      string

	lambdaCmd = &cobra.Command{
		Use:   "lambda",
		Short: "Deploy and inspect the project's Lambda functions",
	}
)

var lambdaDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Point a function at an artifact in the deployment bucket",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		markAsRequired(cmd, "function")
		markAsRequired(cmd, "key")
		if err := cmd.ValidateRequiredFlags(); err != nil {
			logger.Error("Required flags not provided", "err", err)
		}
		cfg, env := loadProject()
		awsc := awsConfig(cfg)

		bucket := deployBucket
		if bucket == "" {
			store := s3connector.NewClient(awsc.Config)
			latest, ok, err := rotation.NewManager(store, cfg.Name, env).Latest()
			if err != nil {
				logger.Error("Could not find deployment bucket", "err", err)
			}
			if !ok {
				logger.Error("No deployment bucket, run: stackctl bucket rotate")
			}
			bucket = latest.String()
		}

		client := lambdaconnector.NewClient(awsc.Config)
		if err := client.DeployFromBucket(deployFunction, bucket, deployKey); err != nil {
			logger.Error("Deploy failed", "function", deployFunction, "err", err)
		}
		logging.PrintGreen(deployFunction + ": deployed from s3://" + bucket + "/" + deployKey)
	},
}

var lambdaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the project's Lambda functions",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := lambdaconnector.NewClient(awsConfig(cfg).Config)

		functions, err := client.ListFunctions(cfg.Name)
		if err != nil {
			logger.Error("Could not list functions", "err", err)
		}
		if len(functions) == 0 {
			logging.PrintYellow("no functions for " + cfg.Name)
			return
		}
		for _, fn := range functions {
			fmt.Printf("%-60s %-12s %5d MB %4ds %s\n",
				fn.Name, fn.Runtime, fn.MemorySize, fn.Timeout, fn.LastModified)
		}
	},
}

func init() {
	lambdaDeployCmd.Flags().StringVarP(&deployFunction, "function", "", "", "Function name to update")
	lambdaDeployCmd.Flags().StringVarP(&deployBucket, "bucket", "", "", "Deployment bucket (default: the newest rotation bucket)")
	lambdaDeployCmd.Flags().StringVarP(&deployKey, "key", "", "", "Object key of the artifact")

	lambdaCmd.AddCommand(lambdaDeployCmd, lambdaListCmd)
	rootCmd.AddCommand(lambdaCmd)
}
