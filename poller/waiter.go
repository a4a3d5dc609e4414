// Package poller waits for tasks to reach a terminal state.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hotosm/scaleodm-go/client"
)

// InfoClient is the narrow slice of the task client the waiter needs.
type InfoClient interface {
	TaskInfo(ctx context.Context, uuid string) (json.RawMessage, error)
}

// TimeoutError indicates the deadline elapsed before the task reached a
// terminal state. The task may well still be running on the server.
type TimeoutError struct {
	UUID    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s did not reach a terminal state within %s", e.UUID, e.Timeout)
}

// TaskFailedError indicates the task reached a terminal state other than
// FINISHED. Status carries which one.
type TaskFailedError struct {
	UUID   string
	Status string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s did not finish successfully: %s", e.UUID, e.Status)
}

// Waiter polls a task's info endpoint until the task reaches a terminal state
// or the timeout elapses. It is strictly sequential and blocks the calling
// goroutine for the full interval between checks. Once started, a wait runs
// to a terminal state or to its deadline; there is no cancellation path of
// its own, the context is only propagated to the individual fetches.
type Waiter struct {
	Client   InfoClient
	Timeout  time.Duration
	Interval time.Duration

	// now and sleep exist so tests can simulate elapsed time.
	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a waiter which polls every interval and gives up after timeout.
func New(c InfoClient, timeout, interval time.Duration) *Waiter {
	return &Waiter{
		Client:   c,
		Timeout:  timeout,
		Interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Wait blocks until the task reaches a terminal state or the deadline
// elapses. It returns nil on FINISHED, *TaskFailedError on ERROR or CANCELED,
// *TimeoutError when the deadline passes first, and the fetch error verbatim
// if any info call fails. A transport failure aborts the wait immediately
// rather than being treated as "still running".
func (w *Waiter) Wait(ctx context.Context, uuid string) error {
	deadline := w.now().Add(w.Timeout)
	log := logrus.WithField("uuid", uuid)

	// The deadline is checked once per iteration, before starting the next
	// fetch+sleep; a poll already in flight is allowed to complete.
	for w.now().Before(deadline) {
		raw, err := w.Client.TaskInfo(ctx, uuid)
		if err != nil {
			return err
		}

		status, err := statusOf(raw)
		if err != nil {
			return err
		}
		log.WithField("status", status).Info("task status")

		switch status {
		case client.StatusFinished:
			return nil
		case client.StatusError, client.StatusCanceled:
			return &TaskFailedError{UUID: uuid, Status: status}
		}
		// Any other status value, including ones this client has never heard
		// of, means the task is still in flight.

		w.sleep(w.Interval)
	}
	return &TimeoutError{UUID: uuid, Timeout: w.Timeout}
}

// statusOf extracts the status string from a raw info payload.
func statusOf(raw json.RawMessage) (string, error) {
	var info struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return "", errors.Wrap(err, "could not decode task info")
	}
	return info.Status, nil
}
