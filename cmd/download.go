package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hotosm/scaleodm-go/download"
)

var downloadDir string

var downloadCmd = &cobra.Command{
	Use:   "download <uuid> [asset]",
	Short: "Downloads a task output asset (default all.zip)",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		asset := "all.zip"
		if len(args) > 1 {
			asset = args[1]
		}
		dir := downloadDir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				logrus.Fatal(err)
			}
			dir = wd
		}
		d := download.New(newClient(), dir)
		path, err := d.Fetch(context.Background(), args[0], asset)
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Println(path)
	},
}

func init() {
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "", "directory to download into (default working directory)")
	rootCmd.AddCommand(downloadCmd)
}
