package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hotosm/scaleodm-go/client"
)

var (
	taskName    string
	readS3Path  string
	writeS3Path string
	webhook     string
	rawOptions  []string
	outputLine  int
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Creates a new task",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := buildTaskSpec()
		if err != nil {
			logrus.Fatal(err)
		}
		uuid, err := newClient().CreateTask(context.Background(), spec)
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Println(uuid)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists tasks known to the server",
	Run: func(cmd *cobra.Command, args []string) {
		body, err := newClient().ListTasks(context.Background())
		if err != nil {
			logrus.Fatal(err)
		}
		printBody(body)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <uuid>",
	Short: "Shows task information",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body, err := newClient().TaskInfo(context.Background(), args[0])
		if err != nil {
			logrus.Fatal(err)
		}
		printBody(body)
	},
}

var outputCmd = &cobra.Command{
	Use:   "output <uuid>",
	Short: "Shows task console output",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, err := newClient().TaskOutput(context.Background(), args[0], outputLine)
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Println(out)
	},
}

func init() {
	newCmd.Flags().StringVar(&taskName, "name", "", "task name (generated when empty)")
	newCmd.Flags().StringVar(&readS3Path, "read-s3-path", "", "s3://bucket/path holding the input imagery")
	newCmd.Flags().StringVar(&writeS3Path, "write-s3-path", "", "s3://bucket/path for final products (optional)")
	newCmd.Flags().StringVar(&webhook, "webhook", "", "webhook URL to notify on completion (optional)")
	newCmd.Flags().StringArrayVar(&rawOptions, "option", nil, "processing option, name or name=value (repeatable)")
	newCmd.MarkFlagRequired("read-s3-path")

	outputCmd.Flags().IntVar(&outputLine, "line", 0, "line number to start output from")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(outputCmd)
}

// buildTaskSpec assembles a TaskSpec from the create flags and the
// environment configuration.
func buildTaskSpec() (*client.TaskSpec, error) {
	name := taskName
	if name == "" {
		name = "scaleodm-" + shortuuid.New()
	}
	options, err := parseOptions(rawOptions)
	if err != nil {
		return nil, err
	}
	return &client.TaskSpec{
		Name:        name,
		ReadS3Path:  readS3Path,
		WriteS3Path: writeS3Path,
		Webhook:     webhook,
		Options:     options,
		Credentials: client.S3Credentials{
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			SessionToken:    cfg.S3SessionToken,
		},
		Endpoint: cfg.S3Endpoint,
		Region:   cfg.S3Region,
	}, nil
}

// parseOptions converts name=value flags into task options. A bare name is a
// boolean flag; values are decoded as bool or number where they parse as one.
func parseOptions(raw []string) ([]client.TaskOption, error) {
	if len(raw) == 0 {
		// the reference flow processes a fast orthophoto
		return []client.TaskOption{{Name: "fast-orthophoto", Value: true}}, nil
	}
	options := make([]client.TaskOption, 0, len(raw))
	for _, r := range raw {
		name, value, found := strings.Cut(r, "=")
		if name == "" {
			return nil, fmt.Errorf("invalid option %q", r)
		}
		if !found {
			options = append(options, client.TaskOption{Name: name, Value: true})
			continue
		}
		options = append(options, client.TaskOption{Name: name, Value: coerce(value)})
	}
	return options, nil
}

func coerce(s string) interface{} {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
