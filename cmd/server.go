package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverInfoCmd = &cobra.Command{
	Use:   "server-info",
	Short: "Shows server identification and queue state",
	Run: func(cmd *cobra.Command, args []string) {
		info, err := newClient().ServerInfo(context.Background())
		if err != nil {
			logrus.Fatal(err)
		}
		printValue(info)
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Lists the processing options the server supports",
	Run: func(cmd *cobra.Command, args []string) {
		options, err := newClient().ServerOptions(context.Background())
		if err != nil {
			logrus.Fatal(err)
		}
		printValue(options)
	},
}

func init() {
	rootCmd.AddCommand(serverInfoCmd)
	rootCmd.AddCommand(optionsCmd)
}
