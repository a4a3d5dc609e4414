package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	newTaskEndpoint       = "/task/new"
	listTasksEndpoint     = "/task/list"
	taskInfoEndpoint      = "/task/%s/info"
	taskOutputEndpoint    = "/task/%s/output?line=%d"
	cancelTaskEndpoint    = "/task/cancel"
	removeTaskEndpoint    = "/task/remove"
	restartTaskEndpoint   = "/task/restart"
	downloadAssetEndpoint = "/task/%s/download/%s"
	serverInfoEndpoint    = "/info"
	serverOptionsEndpoint = "/options"
)

// defaultRequestTimeout bounds each individual HTTP call. It is independent
// of any polling deadline: a stalled call cannot hang forever, it can only
// consume up to this much of the caller's patience.
const defaultRequestTimeout = 30 * time.Second

// defaultClient is the default http.Client.
var defaultClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// Config holds the values an HTTPClient needs. There is no ambient state;
// everything the client uses is passed in here.
type Config struct {
	// BaseURL of the ScaleODM server, e.g. http://localhost:31100.
	BaseURL string

	// RequestTimeout bounds each HTTP call. Defaults to 30s when zero.
	RequestTimeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

// An HTTPClient manages communication with the ScaleODM NodeODM-compatible
// API.
type HTTPClient struct {
	Client         *http.Client
	Endpoint       string
	RequestTimeout time.Duration
}

// New returns a new client for the server at the configured base URL.
func New(cfg Config) *HTTPClient {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		Client:         defaultClient,
		Endpoint:       cfg.BaseURL,
		RequestTimeout: timeout,
	}
}

// CreateTask submits a new task via POST /task/new and returns its handle.
func (p *HTTPClient) CreateTask(ctx context.Context, spec *TaskSpec) (string, error) {
	if spec.Name == "" {
		return "", errors.New("task name is required")
	}
	if spec.ReadS3Path == "" && spec.ZipURL == "" {
		return "", errors.New("a source data location (readS3Path or zipurl) is required")
	}
	options, err := EncodeOptions(spec.Options)
	if err != nil {
		return "", err
	}
	req := &newTaskRequest{
		Name:               spec.Name,
		ReadS3Path:         spec.ReadS3Path,
		WriteS3Path:        spec.WriteS3Path,
		Options:            options,
		Webhook:            spec.Webhook,
		Outputs:            spec.Outputs,
		ZipURL:             spec.ZipURL,
		SkipPostProcessing: spec.SkipPostProcessing,
		S3Region:           spec.Region,
	}
	// Credentials ride along only as a complete pair. A lone access key or a
	// lone secret is dropped so the server falls back to its own config.
	if creds := spec.Credentials; creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		req.S3AccessKeyID = creds.AccessKeyID
		req.S3SecretAccessKey = creds.SecretAccessKey
		req.S3SessionToken = creds.SessionToken
	}
	if spec.Endpoint != "" {
		req.S3Endpoint = spec.Endpoint
	}

	_, body, err := p.doJSON(ctx, newTaskEndpoint, http.MethodPost, req)
	if err != nil {
		return "", err
	}
	uuid, err := extractUUID(body)
	if err != nil {
		return "", err
	}
	logrus.WithField("uuid", uuid).Debug("created task")
	return uuid, nil
}

// ListTasks returns the raw /task/list response body.
func (p *HTTPClient) ListTasks(ctx context.Context) (json.RawMessage, error) {
	_, body, err := p.doJSON(ctx, listTasksEndpoint, http.MethodGet, nil)
	return body, err
}

// TaskInfo returns the raw /task/{uuid}/info response body.
func (p *HTTPClient) TaskInfo(ctx context.Context, uuid string) (json.RawMessage, error) {
	path := fmt.Sprintf(taskInfoEndpoint, uuid)
	_, body, err := p.doJSON(ctx, path, http.MethodGet, nil)
	return body, err
}

// TaskOutput returns task console output starting at the given line.
func (p *HTTPClient) TaskOutput(ctx context.Context, uuid string, line int) (string, error) {
	path := fmt.Sprintf(taskOutputEndpoint, uuid, line)
	_, body, err := p.doJSON(ctx, path, http.MethodGet, nil)
	if err != nil {
		return "", err
	}
	// The output endpoint wraps the text in a JSON string.
	var out string
	if err := json.Unmarshal(body, &out); err != nil {
		return string(body), nil
	}
	return out, nil
}

// CancelTask cancels a running task via POST /task/cancel.
func (p *HTTPClient) CancelTask(ctx context.Context, uuid string) error {
	return p.command(ctx, cancelTaskEndpoint, &uuidRequest{UUID: uuid})
}

// RemoveTask removes a task and its assets via POST /task/remove.
func (p *HTTPClient) RemoveTask(ctx context.Context, uuid string) error {
	return p.command(ctx, removeTaskEndpoint, &uuidRequest{UUID: uuid})
}

// RestartTask restarts a task via POST /task/restart. When options is nil the
// server reuses the options the task was created with.
func (p *HTTPClient) RestartTask(ctx context.Context, uuid string, options []TaskOption) error {
	encoded, err := EncodeOptions(options)
	if err != nil {
		return err
	}
	return p.command(ctx, restartTaskEndpoint, &restartRequest{UUID: uuid, Options: encoded})
}

// DownloadAsset streams a task output asset. The caller must close the
// returned reader. The download is not subject to the per-call timeout since
// assets can be arbitrarily large; cancel via ctx instead.
func (p *HTTPClient) DownloadAsset(ctx context.Context, uuid, asset string) (io.ReadCloser, error) {
	path := fmt.Sprintf(downloadAssetEndpoint, uuid, asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+path, nil)
	if err != nil {
		return nil, err
	}
	res, err := p.Client.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	if res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		res.Body.Close()
		return nil, &RequestError{Status: res.StatusCode, Body: string(body)}
	}
	return res.Body, nil
}

// ServerInfo returns server identification and queue state from GET /info.
func (p *HTTPClient) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	_, body, err := p.doJSON(ctx, serverInfoEndpoint, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	info := &ServerInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		return nil, &ProtocolError{Message: "malformed server info response: " + err.Error()}
	}
	return info, nil
}

// ServerOptions returns the processing options the server supports.
func (p *HTTPClient) ServerOptions(ctx context.Context) ([]OptionInfo, error) {
	_, body, err := p.doJSON(ctx, serverOptionsEndpoint, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	var options []OptionInfo
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, &ProtocolError{Message: "malformed options response: " + err.Error()}
	}
	return options, nil
}

// command posts a uuid-addressed command and checks the {success,error}
// response the task command endpoints share.
func (p *HTTPClient) command(ctx context.Context, path string, in interface{}) error {
	_, body, err := p.doJSON(ctx, path, http.MethodPost, in)
	if err != nil {
		return err
	}
	resp := &commandResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return &ProtocolError{Message: "malformed command response: " + err.Error()}
	}
	if !resp.Success {
		return &ProtocolError{Message: "server rejected command: " + resp.Error}
	}
	return nil
}

// doJSON marshals the input payload (when present), performs the request and
// returns the raw response body.
func (p *HTTPClient) doJSON(ctx context.Context, path, method string, in interface{}) (*http.Response, []byte, error) {
	var buf = &bytes.Buffer{}
	if in != nil {
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return nil, nil, err
		}
	}
	return p.do(ctx, path, method, buf)
}

// do performs a bounded-duration http request with the response body read
// into a byte slice. Non-2xx responses surface as *RequestError carrying the
// status code and body text.
func (p *HTTPClient) do(ctx context.Context, path, method string, in *bytes.Buffer) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.RequestTimeout)
	defer cancel()

	endpoint := p.Endpoint + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, in)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if res != nil {
		defer func() {
			// drain the response body so we can reuse this connection.
			if _, err := io.Copy(io.Discard, io.LimitReader(res.Body, 4096)); err != nil {
				logrus.WithError(err).Error("could not drain response body")
			}
			res.Body.Close()
		}()
	}
	if err != nil {
		return res, nil, &RequestError{Err: err}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, &RequestError{Status: res.StatusCode, Err: err}
	}

	if res.StatusCode > 299 {
		return res, body, &RequestError{Status: res.StatusCode, Body: string(body)}
	}
	return res, body, nil
}
