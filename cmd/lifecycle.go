package cmd

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hotosm/scaleodm-go/client"
	"github.com/hotosm/scaleodm-go/poller"
)

var (
	waitTimeout  time.Duration
	waitInterval time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait <uuid>",
	Short: "Waits until a task reaches a terminal state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := waitForTask(args[0]); err != nil {
			logrus.Fatal(err)
		}
		logrus.WithField("uuid", args[0]).Info("task finished")
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <uuid>",
	Short: "Cancels a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := newClient().CancelTask(context.Background(), args[0]); err != nil {
			logrus.Fatal(err)
		}
		logrus.WithField("uuid", args[0]).Info("task canceled")
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <uuid>",
	Short: "Removes a task and deletes its assets",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := newClient().RemoveTask(context.Background(), args[0]); err != nil {
			logrus.Fatal(err)
		}
		logrus.WithField("uuid", args[0]).Info("task removed")
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart <uuid>",
	Short: "Restarts a task, optionally with new options",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		options, err := parseRestartOptions()
		if err != nil {
			logrus.Fatal(err)
		}
		if err := newClient().RestartTask(context.Background(), args[0], options); err != nil {
			logrus.Fatal(err)
		}
		logrus.WithField("uuid", args[0]).Info("task restarted")
	},
}

func init() {
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "how long to wait before giving up (default from SCALEODM_POLL_TIMEOUT)")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", 0, "time between status checks (default from SCALEODM_POLL_INTERVAL)")

	restartCmd.Flags().StringArrayVar(&rawOptions, "option", nil, "replacement processing option, name or name=value (repeatable)")

	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(restartCmd)
}

// waitForTask polls the info endpoint until the task reaches a terminal state
// or the deadline elapses.
func waitForTask(uuid string) error {
	timeout := waitTimeout
	if timeout == 0 {
		timeout = cfg.PollTimeout
	}
	interval := waitInterval
	if interval == 0 {
		interval = cfg.PollInterval
	}
	w := poller.New(newClient(), timeout, interval)
	return w.Wait(context.Background(), uuid)
}

// parseRestartOptions returns nil when no options were given so the server
// reuses the originals, unlike task creation which applies a default.
func parseRestartOptions() ([]client.TaskOption, error) {
	if len(rawOptions) == 0 {
		return nil, nil
	}
	return parseOptions(rawOptions)
}
