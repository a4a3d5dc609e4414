package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// runCmd exercises the whole task lifecycle against a running server:
// create a task, wait for it to reach a terminal state, then issue the
// read-only follow-up queries. Any failure along the way exits non-zero.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Creates a task and follows it to completion",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := buildTaskSpec()
		if err != nil {
			logrus.Fatal(err)
		}
		c := newClient()
		ctx := context.Background()

		uuid, err := c.CreateTask(ctx, spec)
		if err != nil {
			logrus.Fatal(err)
		}
		logrus.WithField("uuid", uuid).WithField("name", spec.Name).Info("created task")

		if err := waitForTask(uuid); err != nil {
			logrus.Fatal(err)
		}
		logrus.WithField("uuid", uuid).Info("task finished")

		list, err := c.ListTasks(ctx)
		if err != nil {
			logrus.Fatal(err)
		}
		printBody(list)

		info, err := c.TaskInfo(ctx, uuid)
		if err != nil {
			logrus.Fatal(err)
		}
		printBody(info)
	},
}

func init() {
	runCmd.Flags().StringVar(&taskName, "name", "", "task name (generated when empty)")
	runCmd.Flags().StringVar(&readS3Path, "read-s3-path", "", "s3://bucket/path holding the input imagery")
	runCmd.Flags().StringVar(&writeS3Path, "write-s3-path", "", "s3://bucket/path for final products (optional)")
	runCmd.Flags().StringVar(&webhook, "webhook", "", "webhook URL to notify on completion (optional)")
	runCmd.Flags().StringArrayVar(&rawOptions, "option", nil, "processing option, name or name=value (repeatable)")
	runCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "how long to wait before giving up (default from SCALEODM_POLL_TIMEOUT)")
	runCmd.Flags().DurationVar(&waitInterval, "interval", 0, "time between status checks (default from SCALEODM_POLL_INTERVAL)")
	runCmd.MarkFlagRequired("read-s3-path")

	rootCmd.AddCommand(runCmd)
}
