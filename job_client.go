package gosearchgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var strJobStateMap = map[string]JobState{
	"RUNNING":   JobRunning,
	"SCHEDULED": JobRunning,
	"WAITING":   JobRunning,
	"SUCCESS":   JobSucceeded,
	"FAILED":    JobFailed,
	"CANCELLED": JobCancelled,
}

func strToJobState(in string) (JobState, bool) {
	state, ok := strJobStateMap[strings.ToUpper(in)]
	return state, ok
}

// jobClient translates coordinator intents into backend REST calls and
// backend responses into typed results. It is the only component aware of
// the wire format and holds no mutable state of its own.
type jobClient struct {
	conn      *ConnectionInfo
	transport Transport
}

func newJobClient(conn *ConnectionInfo, transport Transport) *jobClient {
	return &jobClient{conn: conn, transport: transport}
}

// createdJob is the typed outcome of a job creation call.
type createdJob struct {
	jobID     string
	sessionID string
	// status is non-nil when the submit response was already terminal,
	// which the backend does for small or cached queries.
	status *JobStatus
}

// createJob submits a query. The query text must have been validated
// non-empty by the caller.
func (jc *jobClient) createJob(ctx context.Context, query *QueryRequest, sessionID string) (*createdJob, error) {
	body, err := json.Marshal(&createJobRequest{
		Query:      query.QueryText,
		Lang:       string(query.Language),
		Datasource: jc.conn.Datasource,
		SessionID:  sessionID,
	})
	if err != nil {
		return nil, err
	}
	res, err := jc.transport.Request(ctx, http.MethodPost, jobsEndpointBase, body,
		RequestOptions{Timeout: jc.conn.SubmitTimeout})
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return nil, classifyHTTPFailure(res, "")
	}
	var respd createJobResponse
	if err = json.Unmarshal(res.Body, &respd); err != nil {
		logger.WithContext(ctx).Errorf("failed to decode JSON. err: %v", err)
		return nil, &GatewayError{
			Number:  ErrCodeUnexpectedResponse,
			Message: "failed to decode job creation response",
		}
	}
	if respd.QueryID == "" {
		return nil, &GatewayError{
			Number:  ErrCodeUnexpectedResponse,
			Message: "job creation response carried no query id",
		}
	}
	created := &createdJob{jobID: respd.QueryID, sessionID: respd.SessionID}
	if respd.Status != "" {
		if state, known := strToJobState(respd.Status); known && state.isTerminal() {
			status, err := jc.statusFromWire(&respd.jobStatusResponse, res.Body, respd.QueryID)
			if err != nil {
				return nil, err
			}
			created.status = status
		}
	}
	return created, nil
}

// getStatus checks the job's current state. Idempotent; safe to call
// repeatedly; reports JobRunning while incomplete.
func (jc *jobClient) getStatus(ctx context.Context, jobID string) (*JobStatus, string, error) {
	res, err := jc.transport.Request(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s", jobsEndpointBase, jobID), nil, RequestOptions{})
	if err != nil {
		return nil, "", classifyTransportError(err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, "", classifyHTTPFailure(res, jobID)
	}
	var respd jobStatusResponse
	if err = json.Unmarshal(res.Body, &respd); err != nil {
		logger.WithContext(ctx).Errorf("failed to decode JSON. err: %v", err)
		return nil, "", &GatewayError{
			Number:  ErrCodeUnexpectedResponse,
			JobID:   jobID,
			Message: "failed to decode job status response",
		}
	}
	status, err := jc.statusFromWire(&respd, res.Body, jobID)
	if err != nil {
		return nil, "", err
	}
	return status, respd.SessionID, nil
}

// cancel asks the backend to abort the job. Best effort; cancelling a job
// that already reached a terminal state is a no-op success.
func (jc *jobClient) cancel(ctx context.Context, jobID string) error {
	res, err := jc.transport.Request(ctx, http.MethodDelete,
		fmt.Sprintf("%s/%s", jobsEndpointBase, jobID), nil, RequestOptions{})
	if err != nil {
		return classifyTransportError(err)
	}
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusConflict:
		// already finished or already gone
		return nil
	default:
		return classifyHTTPFailure(res, jobID)
	}
}

func (jc *jobClient) statusFromWire(respd *jobStatusResponse, raw []byte, jobID string) (*JobStatus, error) {
	state, known := strToJobState(respd.Status)
	if !known {
		return nil, &GatewayError{
			Number:      ErrCodeUnexpectedResponse,
			JobID:       jobID,
			Message:     "backend reported an unknown job state: %v",
			MessageArgs: []interface{}{respd.Status},
		}
	}
	status := &JobStatus{State: state}
	switch state {
	case JobSucceeded:
		// size is the returned row count; older backends report it as total
		declared := respd.Size
		if declared == 0 {
			declared = respd.Total
		}
		if declared > 0 && declared != int64(len(respd.Datarows)) {
			return nil, &GatewayError{
				Number:      ErrCodeUnexpectedResponse,
				JobID:       jobID,
				Message:     "backend declared %v rows but returned %v",
				MessageArgs: []interface{}{declared, len(respd.Datarows)},
			}
		}
		schema := make([]Column, len(respd.Schema))
		for i, col := range respd.Schema {
			schema[i] = Column{Name: col.Name, Type: col.Type}
		}
		status.Result = &ResultSet{
			Schema:    schema,
			Rows:      respd.Datarows,
			ElapsedMs: respd.TookMs,
			Raw:       json.RawMessage(raw),
		}
	case JobFailed:
		status.Err = classifyBackendFailure(respd.Error, jobID)
	}
	return status, nil
}

// classifyBackendFailure maps the error text of a FAILED status to the
// gateway taxonomy. Guardrail aborts are reported distinctly so callers can
// present an actionable message; the backend detail is preserved verbatim.
func classifyBackendFailure(detail, jobID string) *GatewayError {
	if strings.Contains(strings.ToLower(detail), guardrailMarker) {
		return &GatewayError{
			Number:  ErrCodeGuardrailTriggered,
			JobID:   jobID,
			Message: detail,
		}
	}
	return &GatewayError{
		Number:      ErrCodeQueryFailed,
		JobID:       jobID,
		Message:     errMsgQueryFailed,
		MessageArgs: []interface{}{detail},
	}
}

func classifyHTTPFailure(res *Response, jobID string) *GatewayError {
	detail := strings.TrimSpace(string(res.Body))
	if res.StatusCode >= 400 && res.StatusCode < 500 {
		if strings.Contains(strings.ToLower(detail), guardrailMarker) {
			return &GatewayError{
				Number:  ErrCodeGuardrailTriggered,
				JobID:   jobID,
				Message: detail,
			}
		}
		return &GatewayError{
			Number:      ErrCodeRejected,
			JobID:       jobID,
			Message:     errMsgRejected,
			MessageArgs: []interface{}{fmt.Sprintf("HTTP %d: %s", res.StatusCode, detail)},
		}
	}
	return &GatewayError{
		Number:      ErrCodeUnavailable,
		JobID:       jobID,
		Message:     errMsgUnavailable,
		MessageArgs: []interface{}{fmt.Sprintf("HTTP %d", res.StatusCode)},
	}
}

// classifyTransportError keeps raw transport errors from crossing the
// client boundary. Everything at this level is retryable by the caller.
func classifyTransportError(err error) *GatewayError {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge
	}
	return &GatewayError{
		Number:      ErrCodeUnavailable,
		Message:     errMsgUnavailable,
		MessageArgs: []interface{}{err},
	}
}

// isSessionInvalid reports whether a failure detail indicates the backend
// session expired, in which case the sticky session entry must be dropped.
func isSessionInvalid(detail string) bool {
	lowered := strings.ToLower(detail)
	return strings.Contains(lowered, "session is not available") ||
		strings.Contains(lowered, "session expired") ||
		strings.Contains(lowered, "invalid session")
}
