// Package cmd implements the scaleodm command line client.
package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/ghodss/yaml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hotosm/scaleodm-go/client"
	"github.com/hotosm/scaleodm-go/config"
)

var (
	baseURL        string
	requestTimeout time.Duration
	format         string
	verbose        bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scaleodm",
	Short: "Drives the task lifecycle on a ScaleODM server",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			logrus.Fatal(err)
		}
		// flags win over the environment
		if cmd.Flags().Changed("base-url") {
			cfg.BaseURL = baseURL
		}
		if cmd.Flags().Changed("request-timeout") {
			cfg.RequestTimeout = requestTimeout
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:31100", "base URL of the ScaleODM server")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "request-timeout", 30*time.Second, "timeout for each individual HTTP call")
	rootCmd.PersistentFlags().StringVar(&format, "format", "json", "output format, 'json' or 'yaml'")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newClient builds the task client from the merged configuration.
func newClient() client.Client {
	return client.New(client.Config{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
	})
}

// printBody writes a response body to stdout honoring --format.
func printBody(raw []byte) {
	if format == "yaml" {
		out, err := yaml.JSONToYAML(raw)
		if err != nil {
			logrus.Fatal(err)
		}
		os.Stdout.Write(out)
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		// not json, print as-is
		os.Stdout.Write(raw)
		os.Stdout.WriteString("\n")
		return
	}
	buf.WriteString("\n")
	os.Stdout.Write(buf.Bytes())
}

// printValue marshals a value and prints it honoring --format.
func printValue(v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		logrus.Fatal(err)
	}
	printBody(raw)
}
