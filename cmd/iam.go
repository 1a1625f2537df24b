package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stackctl/stackctl/pkg/config"
	iamconnector "github.com/stackctl/stackctl/pkg/connector/services/aws/iam"
	"github.com/stackctl/stackctl/pkg/connector/services/aws/sts"
	"github.com/stackctl/stackctl/pkg/io/logging"
	"github.com/stackctl/stackctl/pkg/policy"
)

var (
	unifiedPolicy  bool
	managedPolicy  bool
	mergeProjects  []string
	grantActions   []string
	grantResources []string
	policyName     string
	githubOrg      string
	githubRepo     string

	iamCmd = &cobra.Command{
		Use:   "iam",
		Short: "Manage CI/CD users, policies and deploy roles",
	}
)

var iamGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print the CI/CD policy document for the project",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		awsc := awsConfig(cfg)

		accountID := cfg.AccountID
		if accountID == "" {
			accountID = sts.AccountID(awsc.Config)
		}

		var doc *policy.Document
		if unifiedPolicy {
			projects := mergeProjects
			if len(projects) == 0 {
				projects = config.KnownProjects()
			}
			doc = policy.Merge(accountID, cfg.Region, projects, cfg.EnableWAF)
		} else {
			gen := policy.Generator{
				Project:     cfg.Name,
				Region:      cfg.Region,
				EnableWAF:   cfg.EnableWAF,
				LambdaInVPC: cfg.LambdaInVPC,
			}
			doc = gen.CICDPolicy(accountID)
		}

		pretty, err := doc.Pretty()
		if err != nil {
			logger.Error("Could not render policy", "err", err)
		}
		fmt.Println(string(pretty))
	},
}

var iamGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Add actions to the project's CI/CD managed policy",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := iamconnector.NewClient(awsConfig(cfg).Config)

		name := policyName
		if name == "" {
			name = cfg.CICDPolicyName()
		}
		result, err := client.AddActionsToPolicy(name, grantActions, grantResources)
		if err != nil {
			logger.Error("Could not update policy", "policy", name, "err", err)
		}
		for _, a := range result.Added {
			logging.PrintGreen("added: " + a)
		}
		for _, a := range result.AlreadyPresent {
			logging.PrintYellow("already present: " + a)
		}
		if result.CreatedStatement {
			logger.Info("Created a new statement for the actions", "policy", name)
		}
	},
}

var iamRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Remove actions from the project's CI/CD managed policy",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := iamconnector.NewClient(awsConfig(cfg).Config)

		name := policyName
		if name == "" {
			name = cfg.CICDPolicyName()
		}
		result, err := client.RemoveActionsFromPolicy(name, grantActions)
		if err != nil {
			logger.Error("Could not update policy", "policy", name, "err", err)
		}
		for _, a := range result.Removed {
			logging.PrintGreen("removed: " + a)
		}
		for _, a := range result.NotPresent {
			logging.PrintYellow("not present: " + a)
		}
	},
}

var iamUpdateUserCmd = &cobra.Command{
	Use:   "update-user",
	Short: "Ensure the CI/CD user exists and carries its policy (unified inline by default, managed with --managed)",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		awsc := awsConfig(cfg)
		client := iamconnector.NewClient(awsc.Config)

		accountID := cfg.AccountID
		if accountID == "" {
			accountID = sts.AccountID(awsc.Config)
		}

		userName := cfg.CICDUserName()
		if _, err := client.EnsureUser(userName); err != nil {
			logger.Error("Could not ensure user", "user", userName, "err", err)
		}

		if managedPolicy {
			gen := policy.Generator{
				Project:     cfg.Name,
				Region:      cfg.Region,
				EnableWAF:   cfg.EnableWAF,
				LambdaInVPC: cfg.LambdaInVPC,
			}
			arn, err := client.CreateOrUpdatePolicy(cfg.CICDPolicyName(), gen.CICDPolicy(accountID))
			if err != nil {
				logger.Error("Could not create CI/CD policy", "err", err)
			}
			if err := client.AttachUserPolicy(userName, arn); err != nil {
				logger.Error("Could not attach policy", "user", userName, "policy", arn, "err", err)
			}
			logger.Info("Managed policy attached", "user", userName, "policy", arn)
			return
		}

		projects := mergeProjects
		if len(projects) == 0 {
			projects = config.KnownProjects()
		}
		doc := policy.Merge(accountID, cfg.Region, projects, cfg.EnableWAF)
		if err := client.PutInlinePolicy(userName, policy.UnifiedPolicyName, doc); err != nil {
			logger.Error("Could not put inline policy", "user", userName, "err", err)
		}

		deleted, err := client.CleanupInlinePolicies(userName, policy.UnifiedPolicyName)
		if err != nil {
			logger.Error("Could not clean up inline policies", "user", userName, "err", err)
		}
		logger.Info("Unified policy in place", "user", userName, "superseded", len(deleted))
	},
}

var iamShowUserCmd = &cobra.Command{
	Use:   "show-user",
	Short: "Show the CI/CD user's inline policies",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := iamconnector.NewClient(awsConfig(cfg).Config)

		userName := cfg.CICDUserName()
		names, err := client.ListInlinePolicies(userName)
		if err != nil {
			logger.Error("Could not list inline policies", "user", userName, "err", err)
		}
		if len(names) == 0 {
			logging.PrintYellow("no inline policies on " + userName)
			return
		}
		for _, name := range names {
			doc, err := client.GetInlinePolicy(userName, name)
			if err != nil {
				logger.Warn("Could not fetch inline policy", "policy", name, "err", err)
				continue
			}
			pretty, err := doc.Pretty()
			if err != nil {
				logger.Warn("Could not render policy", "policy", name, "err", err)
				continue
			}
			logging.PrintGreen(name)
			fmt.Println(string(pretty))
			if name == policy.UnifiedPolicyName {
				logger.Info("Unified policy covers", "projects", policy.ProjectsOf(doc))
			}
		}
	},
}

var iamRotateKeysCmd = &cobra.Command{
	Use:   "rotate-keys",
	Short: "Rotate the CI/CD user's access keys",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := iamconnector.NewClient(awsConfig(cfg).Config)

		userName := cfg.CICDUserName()
		key, err := client.RotateAccessKeys(userName)
		if err != nil {
			logger.Error("Could not rotate access keys", "user", userName, "err", err)
		}
		// the secret is only available at creation time
		logging.PrintGreen("AWS_ACCESS_KEY_ID=" + *key.AccessKeyId)
		logging.PrintGreen("AWS_SECRET_ACCESS_KEY=" + *key.SecretAccessKey)
	},
}

var iamSetupCICDCmd = &cobra.Command{
	Use:   "setup-cicd",
	Short: "Provision the GitHub Actions OIDC provider, deploy role and CI/CD policy",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		markAsRequired(cmd, "github-org")
		markAsRequired(cmd, "github-repo")
		if err := cmd.ValidateRequiredFlags(); err != nil {
			logger.Error("Required flags not provided", "err", err)
		}
		cfg, _ := loadProject()
		awsc := awsConfig(cfg)
		client := iamconnector.NewClient(awsc.Config)

		accountID := cfg.AccountID
		if accountID == "" {
			accountID = sts.AccountID(awsc.Config)
		}

		gen := policy.Generator{
			Project:     cfg.Name,
			Region:      cfg.Region,
			EnableWAF:   cfg.EnableWAF,
			LambdaInVPC: cfg.LambdaInVPC,
		}
		policyARN, err := client.CreateOrUpdatePolicy(cfg.CICDPolicyName(), gen.CICDPolicy(accountID))
		if err != nil {
			logger.Error("Could not create CI/CD policy", "err", err)
		}

		providerARN, err := client.EnsureGitHubOIDCProvider()
		if err != nil {
			logger.Error("Could not ensure OIDC provider", "err", err)
		}
		logger.Info("OIDC provider ready", "arn", providerARN)

		roleARN, err := client.EnsureDeployRole(cfg.Name+"-deploy-role", githubOrg, githubRepo, policyARN)
		if err != nil {
			logger.Error("Could not ensure deploy role", "err", err)
		}
		logging.PrintGreen("deploy role: " + roleARN)
	},
}

var iamAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show credential report entries for the CI/CD users",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		awsc := awsConfig(cfg)

		report := iamconnector.GetCredentialReport(awsc.Config)
		if report == nil {
			logger.Error("Credential report unavailable")
		}
		for user, entry := range report {
			if !strings.HasSuffix(user, "-cicd-user") {
				continue
			}
			fmt.Println(string(logging.PrettyJSON(entry)))
		}
	},
}

var iamPruneVersionsCmd = &cobra.Command{
	Use:   "prune-versions",
	Short: "Prune old versions of the project's CI/CD managed policy",
	Run: func(cmd *cobra.Command, args []string) {
		applyLogFlags(cmd)
		cfg, _ := loadProject()
		client := iamconnector.NewClient(awsConfig(cfg).Config)

		name := policyName
		if name == "" {
			name = cfg.CICDPolicyName()
		}
		arn, err := client.FindPolicyARN(name)
		if err != nil {
			logger.Error("Could not look up policy", "policy", name, "err", err)
		}
		if arn == "" {
			logger.Error("Policy not found", "policy", name)
		}
		if err := client.PrunePolicyVersions(arn); err != nil {
			logger.Error("Could not prune policy versions", "policy", name, "err", err)
		}
		logger.Info("Policy versions pruned", "policy", name)
	},
}

func init() {
	iamGenerateCmd.Flags().BoolVarP(&unifiedPolicy, "unified", "u", false, "Generate the unified multi-project policy")
	iamGenerateCmd.Flags().StringSliceVarP(&mergeProjects, "projects", "", nil, "Projects to merge into the unified policy")
	iamUpdateUserCmd.Flags().StringSliceVarP(&mergeProjects, "projects", "", nil, "Projects to merge into the unified policy")
	iamUpdateUserCmd.Flags().BoolVarP(&managedPolicy, "managed", "m", false, "Attach the project's managed CI/CD policy instead of the unified inline policy")
	iamGrantCmd.Flags().StringSliceVarP(&grantActions, "actions", "a", nil, "Actions to add (e.g. s3:GetObject)")
	iamGrantCmd.Flags().StringSliceVarP(&grantResources, "resources", "", []string{"*"}, "Resources for a newly created statement")
	iamGrantCmd.Flags().StringVarP(&policyName, "policy", "", "", "Managed policy name (default: the project's CI/CD policy)")
	iamRevokeCmd.Flags().StringSliceVarP(&grantActions, "actions", "a", nil, "Actions to remove")
	iamRevokeCmd.Flags().StringVarP(&policyName, "policy", "", "", "Managed policy name (default: the project's CI/CD policy)")
	iamPruneVersionsCmd.Flags().StringVarP(&policyName, "policy", "", "", "Managed policy name (default: the project's CI/CD policy)")
	iamSetupCICDCmd.Flags().StringVarP(&githubOrg, "github-org", "", "", "GitHub organization the deploy role trusts")
	iamSetupCICDCmd.Flags().StringVarP(&githubRepo, "github-repo", "", "", "GitHub repository the deploy role trusts")

	iamCmd.AddCommand(iamGenerateCmd, iamGrantCmd, iamRevokeCmd, iamUpdateUserCmd,
		iamShowUserCmd, iamRotateKeysCmd, iamSetupCICDCmd, iamAuditCmd, iamPruneVersionsCmd)
	rootCmd.AddCommand(iamCmd)
}
