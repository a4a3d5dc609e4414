package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotosm/scaleodm-go/client"
)

var noContext = context.Background()

// scriptedClient feeds the waiter a fixed status sequence. The last status
// repeats if the waiter keeps asking.
type scriptedClient struct {
	statuses []string
	err      error
	calls    int
}

func (s *scriptedClient) TaskInfo(_ context.Context, uuid string) (json.RawMessage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls - 1
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	body := fmt.Sprintf(`{"uuid":%q,"status":%q,"progress":50}`, uuid, s.statuses[i])
	return json.RawMessage(body), nil
}

// newTestWaiter wires a fake clock: sleep advances simulated time, nothing
// actually blocks.
func newTestWaiter(c InfoClient, timeout, interval time.Duration) *Waiter {
	w := New(c, timeout, interval)
	now := time.Unix(1700000000, 0)
	w.now = func() time.Time { return now }
	w.sleep = func(d time.Duration) { now = now.Add(d) }
	return w
}

func TestWait_FinishedAfterRunning(t *testing.T) {
	c := &scriptedClient{statuses: []string{"RUNNING", "RUNNING", "FINISHED"}}
	w := newTestWaiter(c, time.Hour, time.Minute)

	err := w.Wait(noContext, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 3, c.calls, "want exactly 3 fetches")
}

func TestWait_Timeout(t *testing.T) {
	c := &scriptedClient{statuses: []string{"RUNNING"}}
	w := newTestWaiter(c, 5*time.Minute, time.Minute)

	err := w.Wait(noContext, "abc")
	terr := &TimeoutError{}
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "abc", terr.UUID)
	assert.Equal(t, 5*time.Minute, terr.Timeout)

	// never misreported as a task failure
	ferr := &TaskFailedError{}
	assert.False(t, errors.As(err, &ferr))
	assert.Equal(t, 5, c.calls)
}

func TestWait_ErrorIsImmediate(t *testing.T) {
	c := &scriptedClient{statuses: []string{"ERROR"}}
	w := newTestWaiter(c, time.Hour, time.Minute)

	err := w.Wait(noContext, "abc")
	ferr := &TaskFailedError{}
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, client.StatusError, ferr.Status)
	assert.Equal(t, 1, c.calls, "no polling after a terminal state")
}

func TestWait_Canceled(t *testing.T) {
	c := &scriptedClient{statuses: []string{"QUEUED", "CANCELED"}}
	w := newTestWaiter(c, time.Hour, time.Minute)

	err := w.Wait(noContext, "abc")
	ferr := &TaskFailedError{}
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, client.StatusCanceled, ferr.Status)
	assert.Equal(t, 2, c.calls)
}

// A transport failure aborts the wait instead of counting as "still running".
func TestWait_FetchFailureAborts(t *testing.T) {
	fetchErr := &client.RequestError{Status: 503, Body: "unavailable"}
	c := &scriptedClient{err: fetchErr}
	w := newTestWaiter(c, time.Hour, time.Minute)

	err := w.Wait(noContext, "abc")
	rerr := &client.RequestError{}
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 503, rerr.Status)
	assert.Equal(t, 1, c.calls)
}

// Status values this client has never heard of mean "still running".
func TestWait_UnknownStatusKeepsPolling(t *testing.T) {
	c := &scriptedClient{statuses: []string{"SPLITTING", "MERGE_PENDING", "FINISHED"}}
	w := newTestWaiter(c, time.Hour, time.Minute)

	err := w.Wait(noContext, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, c.calls)
}

func TestWait_MalformedInfo(t *testing.T) {
	c := &malformedClient{}
	w := newTestWaiter(c, time.Hour, time.Minute)

	err := w.Wait(noContext, "abc")
	require.Error(t, err)
	assert.Equal(t, 1, c.calls)
}

type malformedClient struct{ calls int }

func (m *malformedClient) TaskInfo(context.Context, string) (json.RawMessage, error) {
	m.calls++
	return json.RawMessage(`not json`), nil
}
