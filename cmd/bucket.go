package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	s3connector "github.com/stackctl/stackctl/pkg/connector/services/aws/s3"
	"github.com/stackctl/stackctl/pkg/io/logging"
	"github.com/stackctl/stackctl/pkg/rotation"
)

var (
	retention int

	bucketCmd = &cobra.Command{
		Use:   "bucket",
		Short: "Rotate the lambda deployment buckets",
	}
)

func bucketManager(cmd *cobra.Command) *rotation.Manager {
	applyLogFlags(cmd)
	cfg, env := loadProject()
	store := s3connector.NewClient(awsConfig(cfg).Config)
	m := rotation.NewManager(store, cfg.Name, env)
	if retention > 0 {
		m.Retention = retention
	}
	return m
}

var bucketLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the newest deployment bucket",
	Run: func(cmd *cobra.Command, args []string) {
		m := bucketManager(cmd)
		latest, ok, err := m.Latest()
		if err != nil {
			logger.Error("Could not list buckets", "err", err)
		}
		if !ok {
			logging.PrintYellow("no deployment buckets yet, run: stackctl bucket rotate")
			return
		}
		fmt.Println(latest.String())
	},
}

var bucketNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the bucket name the next rotation would create",
	Run: func(cmd *cobra.Command, args []string) {
		m := bucketManager(cmd)
		next, err := m.Next()
		if err != nil {
			logger.Error("Could not propose next bucket", "err", err)
		}
		fmt.Println(next.String())
	},
}

var bucketRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Create the next deployment bucket and delete expired ones",
	Run: func(cmd *cobra.Command, args []string) {
		m := bucketManager(cmd)
		created, deleted, err := m.RotateAndCreate()
		if err != nil {
			logger.Error("Rotation failed", "err", err)
		}
		logging.PrintGreen(created.String())
		for _, name := range deleted {
			logging.PrintYellow("deleted: " + name)
		}
	},
}

var bucketCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete deployment buckets beyond the retention window",
	Run: func(cmd *cobra.Command, args []string) {
		m := bucketManager(cmd)
		deleted, err := m.Cleanup()
		if err != nil {
			logger.Error("Cleanup failed", "err", err)
		}
		for _, name := range deleted {
			logging.PrintYellow("deleted: " + name)
		}
	},
}

func init() {
	bucketCmd.PersistentFlags().IntVarP(&retention, "retention", "", 0, "Buckets to keep (default: 10)")
	bucketCmd.AddCommand(bucketLatestCmd, bucketNextCmd, bucketRotateCmd, bucketCleanupCmd)
	rootCmd.AddCommand(bucketCmd)
}
