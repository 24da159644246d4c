package gosearchgate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultConcurrencyLimit bounds in-flight async jobs when the caller does
// not choose a limit.
const DefaultConcurrencyLimit = 10

// Config configures a Coordinator.
type Config struct {
	// Resolver maps connection ids to backend endpoints. Required.
	Resolver ConnectionResolver
	// ConcurrencyLimit bounds concurrently outstanding jobs. Defaults to
	// DefaultConcurrencyLimit.
	ConcurrencyLimit int64
	// CacheMaxEntries and CacheTTL bound the result cache. Zero values take
	// the defaults (100 entries, 20 hours).
	CacheMaxEntries int
	CacheTTL        time.Duration
	// Transport overrides how backend endpoints are reached. Defaults to
	// the retrying HTTP transport.
	Transport TransportFactory
}

// SubmitResult is the outcome of Submit. Exactly one of Handle and Result
// is set: Handle when the job is running and must be polled, Result when
// the answer was served from cache or the backend completed the query
// inline on creation.
type SubmitResult struct {
	Handle *JobHandle
	Result *ResultSet
	// Cached reports that Result came from the local result cache.
	Cached bool
}

type inflightJob struct {
	fingerprint  string
	connectionID string
	language     QueryLanguage
	client       *jobClient
	releaseOnce  sync.Once
}

// Coordinator orchestrates asynchronous query execution: it gates
// submissions on a concurrency slot, attaches the sticky backend session,
// submits the job, and tracks it until a terminal status releases the slot.
// Polling cadence is caller driven; the coordinator imposes none of its own
// except inside RunToCompletion.
type Coordinator struct {
	resolver     ConnectionResolver
	transportFor TransportFactory
	sem          *jobSemaphore
	sessions     *SessionRegistry
	cache        *resultCache

	mu       sync.Mutex
	inflight map[string]*inflightJob
}

// NewCoordinator constructs a coordinator. Construct one per process and
// share it across query paths.
func NewCoordinator(cfg *Config) *Coordinator {
	limit := cfg.ConcurrencyLimit
	if limit <= 0 {
		limit = DefaultConcurrencyLimit
	}
	transportFor := cfg.Transport
	if transportFor == nil {
		transportFor = newRestTransport
	}
	return &Coordinator{
		resolver:     cfg.Resolver,
		transportFor: transportFor,
		sem:          newJobSemaphore(limit),
		sessions:     NewSessionRegistry(),
		cache:        newResultCache(cfg.CacheMaxEntries, cfg.CacheTTL),
		inflight:     make(map[string]*inflightJob),
	}
}

// Submit validates the request, serves it from cache when possible, and
// otherwise acquires a concurrency slot and creates a backend job. It
// returns as soon as the job handle is known; it does not wait for
// completion. Submit may block while the concurrency limit is saturated;
// callers needing bounded wait pass a context with a deadline.
func (c *Coordinator) Submit(ctx context.Context, query *QueryRequest) (*SubmitResult, error) {
	if query.QueryText == "" {
		return nil, ErrEmptyQueryText
	}
	fingerprint := query.fingerprint()
	if result, ok := c.cache.get(fingerprint); ok {
		logger.WithContext(ctx).Debugf("cache hit for connection %v", query.ConnectionID)
		return &SubmitResult{Result: result, Cached: true}, nil
	}

	conn, err := c.resolver.Resolve(query.ConnectionID)
	if err != nil {
		return nil, err
	}
	if err = c.sem.acquire(ctx); err != nil {
		return nil, err
	}

	client := newJobClient(conn, c.transportFor(conn))
	sessionID, _ := c.sessions.Resolve(query.ConnectionID, query.Language)
	created, err := client.createJob(ctx, query, sessionID)
	if err != nil {
		// a rejected submission never occupied a backend job, so it must
		// not hold a concurrency slot
		c.sem.release()
		c.noteSessionFailure(query.ConnectionID, query.Language, err)
		return nil, err
	}
	if created.sessionID != "" {
		c.sessions.Update(query.ConnectionID, query.Language, created.sessionID)
	}

	if created.status != nil {
		return c.finishInline(query, fingerprint, created)
	}

	handle := &JobHandle{
		JobID:        created.jobID,
		ConnectionID: query.ConnectionID,
		SubmittedAt:  time.Now(),
	}
	c.mu.Lock()
	c.inflight[handle.JobID] = &inflightJob{
		fingerprint:  fingerprint,
		connectionID: query.ConnectionID,
		language:     query.Language,
		client:       client,
	}
	c.mu.Unlock()
	logger.WithContext(ctx).Infof("submitted job %v on connection %v", handle.JobID, query.ConnectionID)
	return &SubmitResult{Handle: handle}, nil
}

// finishInline completes a job whose creation response was already
// terminal. The slot is released before returning.
func (c *Coordinator) finishInline(query *QueryRequest, fingerprint string, created *createdJob) (*SubmitResult, error) {
	c.sem.release()
	status := created.status
	switch status.State {
	case JobSucceeded:
		c.cache.set(fingerprint, status.Result)
		return &SubmitResult{Result: status.Result}, nil
	case JobCancelled:
		return nil, &GatewayError{
			Number:  ErrCodeCancelled,
			JobID:   created.jobID,
			Message: ErrQueryCancelled.Message,
		}
	default:
		c.noteSessionFailure(query.ConnectionID, query.Language, status.Err)
		return nil, status.Err
	}
}

// Poll performs one non-blocking status check of the job. It returns the
// current JobStatus; on a terminal state it also updates the session
// registry, writes a successful result into the cache, and releases the
// concurrency slot. A transport failure during polling is terminal for the
// tracked job: the slot is released and the typed error returned.
func (c *Coordinator) Poll(ctx context.Context, handle *JobHandle) (*JobStatus, error) {
	job := c.lookupInflight(handle.JobID)
	client := job.clientOrNew(c, handle)
	if client == nil {
		return nil, &GatewayError{
			Number:       ErrCodeUnknownConnection,
			ConnectionID: handle.ConnectionID,
			Message:      errMsgUnknownConnection,
			MessageArgs:  []interface{}{handle.ConnectionID},
		}
	}

	status, wireSession, err := client.getStatus(ctx, handle.JobID)
	if err != nil {
		c.settle(job, handle.JobID)
		return nil, err
	}
	if job != nil && wireSession != "" {
		c.sessions.Update(job.connectionID, job.language, wireSession)
	}
	if !status.State.isTerminal() {
		return status, nil
	}

	if job != nil {
		switch status.State {
		case JobSucceeded:
			c.cache.set(job.fingerprint, status.Result)
		case JobFailed:
			c.noteSessionFailure(job.connectionID, job.language, status.Err)
		}
	}
	c.settle(job, handle.JobID)
	logger.WithContext(ctx).Infof("job %v reached %v", handle.JobID, status.State)
	return status, nil
}

// Cancel forwards a best-effort cancellation to the backend and releases
// the job's concurrency slot regardless of the cancel call's own outcome,
// so a failed roundtrip cannot leak the slot. Cancelling an unknown or
// already terminal job is not an error.
func (c *Coordinator) Cancel(ctx context.Context, handle *JobHandle) error {
	job := c.lookupInflight(handle.JobID)
	client := job.clientOrNew(c, handle)
	c.settle(job, handle.JobID)
	if client == nil {
		return nil
	}
	if err := client.cancel(ctx, handle.JobID); err != nil {
		logger.WithContext(ctx).Errorf("failed to cancel job %v: %v", handle.JobID, err)
		return err
	}
	logger.WithContext(ctx).Infof("cancelled job %v", handle.JobID)
	return nil
}

// RunToCompletion is a blocking convenience wrapper composing Submit and a
// poll loop. It sleeps pollInterval between polls and gives up at deadline,
// issuing a best-effort cancel before returning a timeout error.
func (c *Coordinator) RunToCompletion(ctx context.Context, query *QueryRequest, pollInterval time.Duration, deadline time.Time) (*ResultSet, error) {
	dctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	submitted, err := c.Submit(dctx, query)
	if err != nil {
		// the deadline can expire while Submit is still waiting for a
		// slot; no job exists yet, so there is nothing to cancel
		if errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return nil, ErrRunDeadlineExceeded
		}
		return nil, err
	}
	if submitted.Result != nil {
		return submitted.Result, nil
	}
	handle := submitted.Handle

	for {
		await := time.NewTimer(pollInterval)
		select {
		case <-await.C:
		case <-dctx.Done():
			await.Stop()
			return nil, c.abandon(handle)
		}

		status, err := c.Poll(dctx, handle)
		if err != nil {
			if dctx.Err() != nil {
				return nil, c.abandon(handle)
			}
			return nil, err
		}
		switch status.State {
		case JobSucceeded:
			return status.Result, nil
		case JobFailed:
			return nil, status.Err
		case JobCancelled:
			return nil, &GatewayError{
				Number:  ErrCodeCancelled,
				JobID:   handle.JobID,
				Message: ErrQueryCancelled.Message,
			}
		}
	}
}

// abandon cancels a timed-out job best-effort and returns the timeout
// error. The cancel uses its own short-lived context since the caller's is
// already done.
func (c *Coordinator) abandon(handle *JobHandle) error {
	cctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Cancel(cctx, handle); err != nil {
		logger.Errorf("best-effort cancel of timed out job %v failed: %v", handle.JobID, err)
	}
	return &GatewayError{
		Number:  ErrCodeTimeout,
		JobID:   handle.JobID,
		Message: ErrRunDeadlineExceeded.Message,
	}
}

// NewSession drops the sticky session for the pair so the next query
// starts a fresh backend session.
func (c *Coordinator) NewSession(connectionID string, language QueryLanguage) {
	c.sessions.Clear(connectionID, language)
}

// InvalidateCachedResult drops the memoized result for the request, for
// callers that know the underlying data changed.
func (c *Coordinator) InvalidateCachedResult(query *QueryRequest) {
	c.cache.invalidate(query.fingerprint())
}

// ClearCachedResults empties the result cache.
func (c *Coordinator) ClearCachedResults() {
	c.cache.clear()
}

func (c *Coordinator) lookupInflight(jobID string) *inflightJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[jobID]
}

// settle releases the job's slot exactly once and forgets the handle.
// Safe to call with a nil job or repeatedly for the same id.
func (c *Coordinator) settle(job *inflightJob, jobID string) {
	if job == nil {
		return
	}
	job.releaseOnce.Do(c.sem.release)
	c.mu.Lock()
	delete(c.inflight, jobID)
	c.mu.Unlock()
}

func (c *Coordinator) noteSessionFailure(connectionID string, language QueryLanguage, err error) {
	if err == nil {
		return
	}
	if isSessionInvalid(err.Error()) {
		logger.Debugf("backend session for %v/%v is gone, clearing", connectionID, language)
		c.sessions.Clear(connectionID, language)
	}
}

// clientOrNew returns the tracked job's client, or builds one for a handle
// the coordinator no longer tracks (poll or cancel after a terminal state
// was observed). Returns nil when the handle's connection cannot be
// resolved.
func (ij *inflightJob) clientOrNew(c *Coordinator, handle *JobHandle) *jobClient {
	if ij != nil {
		return ij.client
	}
	conn, err := c.resolver.Resolve(handle.ConnectionID)
	if err != nil {
		return nil
	}
	return newJobClient(conn, c.transportFor(conn))
}
