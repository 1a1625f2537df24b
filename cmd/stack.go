package cmd

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	cfnconnector "github.com/stackctl/stackctl/pkg/connector/services/aws/cloudformation"
	"github.com/stackctl/stackctl/pkg/connector/services/aws/database"
	s3connector "github.com/stackctl/stackctl/pkg/connector/services/aws/s3"
	"github.com/stackctl/stackctl/pkg/io/logging"
)

var (
	outputQuery string
	forceDelete bool

	stackCmd = &cobra.Command{
		Use:   "stack",
		Short: "Inspect and manage the project's CloudFormation stacks",
	}
)

// stackTarget resolves the stack to operate on: an explicit argument wins,
// otherwise the project's conventional stack name for the environment.
func stackTarget(cmd *cobra.Command, args []string) (*cfnconnector.CFNClient, string) {
	applyLogFlags(cmd)
	cfg, env := loadProject()
	client := cfnconnector.NewClient(awsConfig(cfg).Config)
	if len(args) > 0 {
		return client, args[0]
	}
	return client, cfg.StackName(env)
}

var stackStatusCmd = &cobra.Command{
	Use:   "status [stack-name]",
	Short: "Show the stack status",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, name := stackTarget(cmd, args)
		status, err := client.StackStatus(name)
		if err != nil {
			logger.Error("Could not describe stack", "stack", name, "err", err)
		}
		if status == "" {
			logging.PrintYellow(name + ": does not exist")
			return
		}
		fmt.Printf("%s: %s\n", name, status)
	},
}

var stackOutputsCmd = &cobra.Command{
	Use:   "outputs [stack-name]",
	Short: "Show the stack outputs, optionally filtered with a jq expression",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, name := stackTarget(cmd, args)
		outputs, err := client.Outputs(name)
		if err != nil {
			logger.Error("Could not fetch outputs", "stack", name, "err", err)
		}

		if outputQuery == "" {
			fmt.Println(string(logging.PrettyJSON(outputs)))
			return
		}

		query, err := gojq.Parse(outputQuery)
		if err != nil {
			logger.Error("Invalid query", "query", outputQuery, "err", err)
		}
		input := map[string]any{}
		for k, v := range outputs {
			input[k] = v
		}
		iter := query.Run(input)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				logger.Error("Query failed", "err", err)
			}
			if s, isStr := v.(string); isStr {
				fmt.Println(s)
				continue
			}
			fmt.Println(string(logging.PrettyJSON(v)))
		}
	},
}

var stackDiagnoseCmd = &cobra.Command{
	Use:   "diagnose [stack-name]",
	Short: "Explain why a stack operation failed",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, name := stackTarget(cmd, args)
		diagnosis, err := client.Diagnose(name)
		if err != nil {
			logger.Error("Could not diagnose stack", "stack", name, "err", err)
		}
		fmt.Printf("%s: %s\n", diagnosis.StackName, diagnosis.Status)
		for _, r := range diagnosis.FailedResources {
			logging.PrintRed(fmt.Sprintf("%s (%s) %s: %s", r.LogicalID, r.Type, r.Status, r.Reason))
		}
		for _, rec := range diagnosis.Recommendations {
			logging.PrintYellow("-> " + rec)
		}
	},
}

var stackDeleteCmd = &cobra.Command{
	Use:   "delete [stack-name]",
	Short: "Delete the stack, emptying blocking S3 buckets when forced",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, env := loadProject()
		awsc := awsConfig(cfg)
		client := cfnconnector.NewClient(awsc.Config)
		name := cfg.StackName(env)
		if len(args) > 0 {
			name = args[0]
		}

		var emptier cfnconnector.BucketEmptier
		if forceDelete {
			emptier = s3connector.NewClient(awsc.Config)
		}
		if err := client.DeleteStack(name, forceDelete, emptier); err != nil {
			logger.Error("Could not delete stack", "stack", name, "err", err)
		}
		logging.PrintGreen(name + ": deleted")
	},
}

var stackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the project's live stacks",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := cfnconnector.NewClient(awsConfig(cfg).Config)

		stacks, err := client.ListStacks(cfg.Name)
		if err != nil {
			logger.Error("Could not list stacks", "err", err)
		}
		if len(stacks) == 0 {
			logging.PrintYellow("no live stacks for " + cfg.Name)
			return
		}
		for _, s := range stacks {
			fmt.Printf("%-50s %-30s %s\n", s.Name, s.Status, s.Updated)
		}
	},
}

var stackCognitoCmd = &cobra.Command{
	Use:   "cognito [stack-name]",
	Short: "Extract the Cognito settings a frontend build needs",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, name := stackTarget(cmd, args)
		config, err := client.CognitoConfig(name)
		if err != nil {
			logger.Error("Could not extract Cognito config", "stack", name, "err", err)
		}
		fmt.Println(string(logging.PrettyJSON(config)))
	},
}

var stackEndpointsCmd = &cobra.Command{
	Use:   "endpoints [stack-name]",
	Short: "Show the stack's service endpoints",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, name := stackTarget(cmd, args)
		endpoints, err := client.APIEndpoints(name)
		if err != nil {
			logger.Error("Could not extract endpoints", "stack", name, "err", err)
		}
		fmt.Println(string(logging.PrettyJSON(endpoints)))
	},
}

var stackVerifyCmd = &cobra.Command{
	Use:   "verify [stack-name]",
	Short: "Check that the stack's DynamoDB tables are live",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, env := loadProject()
		awsc := awsConfig(cfg)
		client := cfnconnector.NewClient(awsc.Config)
		name := cfg.StackName(env)
		if len(args) > 0 {
			name = args[0]
		}

		resources, err := client.StackResources(name)
		if err != nil {
			logger.Error("Could not list stack resources", "stack", name, "err", err)
		}
		var tables []string
		for _, r := range resources {
			if aws.ToString(r.ResourceType) == "AWS::DynamoDB::Table" {
				tables = append(tables, aws.ToString(r.PhysicalResourceId))
			}
		}
		if len(tables) == 0 {
			logging.PrintYellow(name + ": no DynamoDB tables")
			return
		}

		db := database.NewClient(awsc.Config)
		missing, err := db.VerifyTables(tables)
		if err != nil {
			logger.Error("Could not verify tables", "err", err)
		}
		if len(missing) > 0 {
			logger.Error("Tables missing or not active", "tables", missing)
		}
		logging.PrintGreen(fmt.Sprintf("%s: %d tables live", name, len(tables)))
	},
}

func init() {
	stackOutputsCmd.Flags().StringVarP(&outputQuery, "query", "q", "", "jq expression applied to the outputs map")
	stackDeleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Empty blocking S3 buckets and retry a DELETE_FAILED stack")

	stackCmd.AddCommand(stackStatusCmd, stackOutputsCmd, stackDiagnoseCmd,
		stackDeleteCmd, stackListCmd, stackCognitoCmd, stackEndpointsCmd, stackVerifyCmd)
	rootCmd.AddCommand(stackCmd)
}
