// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

var random *rand.Rand

func init() {
	random = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// replaceRequestGUID swaps the request_guid query parameter for a fresh one
// so every retry is distinguishable on the backend.
func replaceRequestGUID(targetURL *url.URL) *url.URL {
	vs, err := url.ParseQuery(targetURL.RawQuery)
	if err != nil {
		return targetURL
	}
	if len(vs.Get(requestGUIDKey)) == 0 {
		return targetURL
	}
	vs.Del(requestGUIDKey)
	vs.Add(requestGUIDKey, uuid.New().String())
	targetURL.RawQuery = vs.Encode()
	return targetURL
}

type waitAlgo struct {
	mutex *sync.Mutex   // guards random
	base  time.Duration // base wait time
	cap   time.Duration // maximum wait time
}

func randMilliDuration(n time.Duration) time.Duration {
	if n < time.Millisecond {
		return 0
	}
	return time.Duration(random.Int63n(int64(n/time.Millisecond))) * time.Millisecond
}

// decorrelated jitter backoff
func (w *waitAlgo) decorr(attempt int, sleep time.Duration) time.Duration {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	t := 3*sleep - w.base
	switch {
	case t > 0:
		return durationMin(w.cap, randMilliDuration(t)+w.base)
	case t < 0:
		return durationMin(w.cap, randMilliDuration(-t)+3*sleep)
	}
	return w.base
}

var defaultWaitAlgo = &waitAlgo{
	mutex: &sync.Mutex{},
	base:  time.Second,
	cap:   30 * time.Second,
}

type requestFunc func(method, urlStr string, body io.Reader) (*http.Request, error)

type clientInterface interface {
	Do(req *http.Request) (*http.Response, error)
}

type retryHTTP struct {
	ctx     context.Context
	client  clientInterface
	req     requestFunc
	method  string
	fullURL *url.URL
	headers map[string]string
	body    []byte
	timeout time.Duration
}

func newRetryHTTP(ctx context.Context,
	client clientInterface,
	req requestFunc,
	fullURL *url.URL,
	headers map[string]string,
	timeout time.Duration) *retryHTTP {
	instance := retryHTTP{}
	instance.ctx = ctx
	instance.client = client
	instance.req = req
	instance.method = "GET"
	instance.fullURL = fullURL
	instance.headers = headers
	instance.timeout = timeout
	return &instance
}

func (r *retryHTTP) doMethod(method string) *retryHTTP {
	r.method = method
	return r
}

func (r *retryHTTP) setBody(body []byte) *retryHTTP {
	r.body = body
	return r
}

func (r *retryHTTP) execute() (res *http.Response, err error) {
	totalTimeout := r.timeout
	retryCounter := 0
	sleepTime := time.Duration(0)

	for {
		req, err := r.req(r.method, r.fullURL.String(), bytes.NewReader(r.body))
		if err != nil {
			return nil, err
		}
		req = req.WithContext(r.ctx)
		for k, v := range r.headers {
			req.Header.Set(k, v)
		}
		res, err = r.client.Do(req)
		if err == nil && res.StatusCode < 500 {
			// 4xx carries a backend verdict and must not be retried here
			break
		}

		if err != nil {
			if urlError, isURLError := err.(*url.Error); isURLError &&
				(urlError.Err == context.DeadlineExceeded || urlError.Err == context.Canceled) {
				return res, urlError.Err
			}
			logger.WithContext(r.ctx).Debugf(
				"failed http connection. no response is returned. err: %v. retrying...", err)
		} else {
			_ = res.Body.Close()
			logger.WithContext(r.ctx).Debugf(
				"failed http connection. HTTP Status: %v. retrying...", res.StatusCode)
		}

		sleepTime = defaultWaitAlgo.decorr(retryCounter, sleepTime)
		if totalTimeout > 0 {
			totalTimeout -= sleepTime
			if totalTimeout <= 0 {
				if err == nil {
					err = &GatewayError{
						Number:      ErrCodeUnavailable,
						Message:     errMsgUnavailable,
						MessageArgs: []interface{}{res.Status},
					}
				}
				return nil, err
			}
		}
		retryCounter++
		r.fullURL = replaceRequestGUID(r.fullURL)
		logger.WithContext(r.ctx).Debugf("sleeping %v. to timeout: %v. retrying", sleepTime, totalTimeout)

		await := time.NewTimer(sleepTime)
		select {
		case <-await.C:
			// retry the request
		case <-r.ctx.Done():
			await.Stop()
			return res, r.ctx.Err()
		}
	}
	return res, err
}
