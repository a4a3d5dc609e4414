package client

import (
	"context"
	"encoding/json"
	"io"
)

// Task status strings reported by ScaleODM. FINISHED, ERROR and CANCELED are
// terminal; every other value (QUEUED, RUNNING, values added by future server
// versions) means the task is still in flight.
const (
	StatusFinished = "FINISHED"
	StatusError    = "ERROR"
	StatusCanceled = "CANCELED"
)

type (
	// TaskOption is a single processing option, e.g. {fast-orthophoto true}.
	TaskOption struct {
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	}

	// S3Credentials are the optional credentials for authenticated buckets.
	// They are only ever sent as a complete pair; see TaskSpec.
	S3Credentials struct {
		AccessKeyID     string
		SecretAccessKey string
		SessionToken    string
	}

	// TaskSpec describes a task to be created on the server.
	TaskSpec struct {
		// Name of the project. The server substitutes a default when empty.
		Name string

		// ReadS3Path is the s3://bucket/path holding the input imagery.
		ReadS3Path string

		// WriteS3Path is where final products are written. The server
		// defaults it to ReadS3Path + "output/" when empty.
		WriteS3Path string

		// Options is the ordered list of processing options. It is sent to
		// the server as a JSON-encoded string, not as a nested array.
		Options []TaskOption

		// Webhook URL to notify when processing completes.
		Webhook string

		// Outputs is a JSON array of output paths to include.
		Outputs string

		// ZipURL points at a zip of input images (legacy, prefer ReadS3Path).
		ZipURL string

		SkipPostProcessing bool

		// Credentials for the bucket. Attached to the request only when both
		// the access key and the secret are non-empty; a partial pair is
		// never sent and the server falls back to its own configuration.
		Credentials S3Credentials

		// Endpoint overrides the server's S3 endpoint. Omitted when empty.
		Endpoint string

		// Region of the bucket. The server defaults to us-east-1.
		Region string
	}

	// newTaskRequest is the wire form of POST /task/new.
	newTaskRequest struct {
		Name       string `json:"name,omitempty"`
		ReadS3Path string `json:"readS3Path"`

		// The server expects options as a JSON-encoded string.
		Options string `json:"options,omitempty"`

		WriteS3Path        string `json:"writeS3Path,omitempty"`
		Webhook            string `json:"webhook,omitempty"`
		Outputs            string `json:"outputs,omitempty"`
		ZipURL             string `json:"zipurl,omitempty"`
		SkipPostProcessing bool   `json:"skipPostProcessing,omitempty"`
		S3AccessKeyID      string `json:"s3AccessKeyID,omitempty"`
		S3SecretAccessKey  string `json:"s3SecretAccessKey,omitempty"`
		S3SessionToken     string `json:"s3SessionToken,omitempty"`
		S3Endpoint         string `json:"s3Endpoint,omitempty"`
		S3Region           string `json:"s3Region,omitempty"`
	}

	// commandResponse is the wire form of the POST /task/{cancel,remove,restart}
	// responses.
	commandResponse struct {
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}

	// restartRequest is the wire form of POST /task/restart.
	restartRequest struct {
		UUID    string `json:"uuid"`
		Options string `json:"options,omitempty"`
	}

	// uuidRequest is the wire form of POST /task/{cancel,remove}.
	uuidRequest struct {
		UUID string `json:"uuid"`
	}

	// ServerInfo is the response of GET /info.
	ServerInfo struct {
		Version          string `json:"version"`
		TaskQueueCount   int    `json:"taskQueueCount"`
		MaxImages        *int   `json:"maxImages"`
		MaxParallelTasks int    `json:"maxParallelTasks,omitempty"`
		Engine           string `json:"engine"`
		EngineVersion    string `json:"engineVersion"`
	}

	// OptionInfo describes one processing option advertised by GET /options.
	OptionInfo struct {
		Name   string `json:"name"`
		Type   string `json:"type"`
		Value  string `json:"value"`
		Domain string `json:"domain"`
		Help   string `json:"help"`
	}
)

// Client is an interface which defines methods for driving the task lifecycle
// on a ScaleODM server.
type Client interface {
	// CreateTask submits a new task and returns its handle. The handle is an
	// opaque string; its format is not validated.
	CreateTask(ctx context.Context, spec *TaskSpec) (string, error)

	// ListTasks returns the raw /task/list response. The body is passed
	// through uninterpreted.
	ListTasks(ctx context.Context) (json.RawMessage, error)

	// TaskInfo returns the raw /task/{uuid}/info response. The body is passed
	// through uninterpreted.
	TaskInfo(ctx context.Context, uuid string) (json.RawMessage, error)

	// TaskOutput returns console output starting at the given line.
	TaskOutput(ctx context.Context, uuid string, line int) (string, error)

	// CancelTask cancels a running task.
	CancelTask(ctx context.Context, uuid string) error

	// RemoveTask removes a task and deletes its assets.
	RemoveTask(ctx context.Context, uuid string) error

	// RestartTask restarts a task, optionally with new options. A nil options
	// slice reuses the options the task was created with.
	RestartTask(ctx context.Context, uuid string, options []TaskOption) error

	// DownloadAsset streams a task output asset (e.g. all.zip). The caller
	// must close the returned reader.
	DownloadAsset(ctx context.Context, uuid, asset string) (io.ReadCloser, error)

	// ServerInfo returns server identification and queue state.
	ServerInfo(ctx context.Context) (*ServerInfo, error)

	// ServerOptions returns the processing options the server supports.
	ServerOptions(ctx context.Context) ([]OptionInfo, error)
}

// EncodeOptions serializes options into the string-encoded array form the
// /task/new and /task/restart endpoints expect.
func EncodeOptions(options []TaskOption) (string, error) {
	if options == nil {
		return "", nil
	}
	b, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
