package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfnconnector "github.com/stackctl/stackctl/pkg/connector/services/aws/cloudformation"
	"github.com/stackctl/stackctl/pkg/io/logging"
	"github.com/stackctl/stackctl/pkg/template"
)

var (
	templateFormat string
	templateOut    string

	templateCmd = &cobra.Command{
		Use:   "template",
		Short: "Generate and validate CloudFormation templates",
	}
)

var templateBuildCmd = &cobra.Command{
	Use:   "build <stack-config.yaml>",
	Short: "Render a CloudFormation template from a stack config",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, env := loadProject()

		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Error("Could not read stack config", "file", args[0], "err", err)
		}
		stackCfg, err := template.ParseStackConfig(data)
		if err != nil {
			logger.Error("Invalid stack config", "file", args[0], "err", err)
		}

		tpl, err := template.Build(stackCfg, cfg.Name, env, cfg.Region)
		if err != nil {
			logger.Error("Could not build template", "err", err)
		}

		var rendered []byte
		switch templateFormat {
		case "json":
			rendered, err = tpl.JSON()
		case "yaml":
			rendered, err = tpl.YAML()
		default:
			logger.Error("Unknown format, use json or yaml", "format", templateFormat)
		}
		if err != nil {
			logger.Error("Could not render template", "err", err)
		}

		if templateOut == "" {
			fmt.Println(string(rendered))
			return
		}
		if err := os.WriteFile(templateOut, rendered, 0o644); err != nil {
			logger.Error("Could not write template", "file", templateOut, "err", err)
		}
		logger.Info("Template written", "file", templateOut)
	},
}

var templateValidateCmd = &cobra.Command{
	Use:   "validate <template-file>",
	Short: "Validate a template with the CloudFormation API",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := cfnconnector.NewClient(awsConfig(cfg).Config)

		body, err := os.ReadFile(args[0])
		if err != nil {
			logger.Error("Could not read template", "file", args[0], "err", err)
		}
		if err := client.ValidateTemplate(string(body)); err != nil {
			logger.Error("Template is invalid", "file", args[0], "err", err)
		}
		logging.PrintGreen(args[0] + ": valid")
	},
}

func init() {
	templateBuildCmd.Flags().StringVarP(&templateFormat, "format", "f", "yaml", "Output format: yaml or json")
	templateBuildCmd.Flags().StringVarP(&templateOut, "output", "o", "", "Write the template to a file instead of stdout")

	templateCmd.AddCommand(templateBuildCmd, templateValidateCmd)
	rootCmd.AddCommand(templateCmd)
}
