package beststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

// Progress stages reported by FetchTransactions.
const (
	progressConnect  = 10
	progressRequest  = 20
	progressPolling  = 30
	progressPollSpan = 50
	progressReady    = 85
	progressDownload = 90
	progressParse    = 95
)

// Progress receives a stage description and a percentage in [0,100].
type Progress func(stage string, percent float64)

// ExportRequest selects the transactions to export.
type ExportRequest struct {
	From     time.Time
	To       time.Time
	Stores   []string
	DocTypes []string
}

type exportParams struct {
	FromDate string   `json:"FromDate"`
	ToDate   string   `json:"ToDate"`
	Store    []string `json:"Store,omitempty"`
	DocType  []string `json:"DocType,omitempty"`
}

type taskStatus struct {
	TaskStatus  *int   `json:"TaskStatus"`
	DownloadURL string `json:"DownloadUrl"`
}

// RequestExport submits an async transaction export and returns its task id.
func (c *Client) RequestExport(ctx context.Context, req ExportRequest) (string, error) {
	to := req.To
	if to.IsZero() {
		to = req.From
	}
	docTypes := req.DocTypes
	if len(docTypes) == 0 {
		docTypes = c.docTypes
	}
	params := exportParams{
		FromDate: req.From.Format(c.dateLayout),
		ToDate:   to.Format(c.dateLayout),
		Store:    req.Stores,
		DocType:  docTypes,
	}

	env, err := c.post(ctx, exportEndpoint, params)
	if err != nil {
		return "", err
	}
	id := resultString(env.Result)
	if id == "" {
		return "", &model.RemoteError{Op: "beststore " + exportEndpoint, Message: ErrNoTaskID.Error()}
	}
	c.log.Info(ctx, "export requested",
		logger.String("export.task", id),
		logger.String("from", params.FromDate),
		logger.String("to", params.ToDate))
	return id, nil
}

// PollTask waits for the export task to become ready. Each attempt sleeps
// for the poll interval first. Exhausting the attempts yields
// ErrExportTimeout.
func (c *Client) PollTask(ctx context.Context, taskID string, progress Progress) (model.AsyncExportTask, error) {
	task := model.AsyncExportTask{TaskID: taskID, Status: model.TaskPending}
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := sleep(ctx, c.pollInterval); err != nil {
			return task, fmt.Errorf("beststore poll %s: %w", taskID, err)
		}

		env, err := c.post(ctx, taskStatusEndpoint, taskID)
		if err != nil {
			return task, err
		}
		var st taskStatus
		if len(env.Result) > 0 && string(env.Result) != "null" {
			if err := json.Unmarshal(env.Result, &st); err != nil {
				return task, fmt.Errorf("%w: beststore task status: %w", model.ErrParse, err)
			}
		}

		if st.TaskStatus != nil {
			task.Status = *st.TaskStatus
		}
		c.log.Debug(ctx, "export poll",
			logger.String("export.task", taskID),
			logger.Int("attempt", attempt),
			logger.Int("status", task.Status))

		if failed(st.TaskStatus, env.ErrMessage) {
			task.Status = model.TaskFailed
			msg := env.ErrMessage
			if msg == "" {
				msg = "task " + taskID + " failed"
			}
			metrics.RecordGatewayError(gatewayName, "task_failed")
			return task, &model.RemoteError{Op: "beststore export", Message: msg}
		}
		if st.TaskStatus != nil && *st.TaskStatus == model.TaskReady {
			if st.DownloadURL == "" {
				metrics.RecordGatewayError(gatewayName, "task_failed")
				return task, &model.RemoteError{Op: "beststore export", Message: ErrNoDownloadURL.Error()}
			}
			task.DownloadURL = st.DownloadURL
			return task, nil
		}

		if progress != nil {
			progress(fmt.Sprintf("processing export (%s)", time.Duration(attempt)*c.pollInterval),
				progressPolling+float64(attempt)/float64(c.maxAttempts)*progressPollSpan)
		}
	}
	metrics.RecordGatewayError(gatewayName, "timeout")
	return task, fmt.Errorf("%w: task %s not ready after %d attempts", model.ErrExportTimeout, taskID, c.maxAttempts)
}

// failed reports a terminal failure: the failed status, or an error message
// on a status that is neither ready nor in progress.
func failed(status *int, errMessage string) bool {
	if status != nil && *status == model.TaskFailed {
		return true
	}
	if errMessage == "" {
		return false
	}
	if status == nil {
		return true
	}
	switch *status {
	case model.TaskReady, model.TaskPending, model.TaskRunning:
		return false
	}
	return true
}

// Download fetches the export file. The download URL is pre-signed and does
// not take the session id.
func (c *Client) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordGatewayError(gatewayName, "transport")
		return nil, fmt.Errorf("beststore download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordGatewayError(gatewayName, "http")
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &model.RemoteError{Op: "beststore download", Message: "http " + strconv.Itoa(resp.StatusCode) + ": " + string(snippet)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("beststore download: %w", err)
	}
	return data, nil
}

// FetchTransactions runs login, export request, polling, download and
// parsing. progress may be nil.
func (c *Client) FetchTransactions(ctx context.Context, req ExportRequest, progress Progress) ([]model.TransactionRecord, error) {
	report := func(stage string, pct float64) {
		if progress != nil {
			progress(stage, pct)
		}
	}
	start := time.Now()

	report("connecting to beststore", progressConnect)
	if _, err := c.Session(ctx); err != nil {
		return nil, err
	}

	report("requesting transaction export", progressRequest)
	taskID, err := c.RequestExport(ctx, req)
	if err != nil {
		return nil, err
	}

	report("processing export", progressPolling)
	attempts := 0
	task, err := c.PollTask(ctx, taskID, func(stage string, pct float64) {
		attempts++
		report(stage, pct)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordExport(attempts+1, time.Since(start))

	report("export ready", progressReady)
	report("downloading export", progressDownload)
	data, err := c.Download(ctx, task.DownloadURL)
	if err != nil {
		return nil, err
	}
	c.log.Info(ctx, "export downloaded",
		logger.String("export.task", taskID),
		logger.Int("bytes", len(data)))

	report("processing data", progressParse)
	return ParseExport(bytes.NewReader(data))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
