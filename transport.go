// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Response is the transport-level result of one backend call.
type Response struct {
	StatusCode int
	Body       []byte
}

// RequestOptions carries per-call knobs. A zero Timeout means the
// connection's default request timeout.
type RequestOptions struct {
	Timeout time.Duration
}

// Transport issues one HTTP-ish call against the backend a connection
// points at. Implementations must not retry 4xx responses.
type Transport interface {
	Request(ctx context.Context, method, path string, body []byte, opts RequestOptions) (*Response, error)
}

// TransportFactory builds the transport used to reach one connection's
// endpoint. The default factory returns a retrying HTTP transport; tests
// and embedders may inject their own.
type TransportFactory func(conn *ConnectionInfo) Transport

var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Minute,
	},
}

// restTransport reaches one backend endpoint over HTTP with retry on
// transport failures and 5xx responses.
type restTransport struct {
	conn   *ConnectionInfo
	client clientInterface
}

func newRestTransport(conn *ConnectionInfo) Transport {
	return &restTransport{conn: conn, client: defaultHTTPClient}
}

func (rt *restTransport) Request(ctx context.Context, method, path string, body []byte, opts RequestOptions) (*Response, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = rt.conn.RequestTimeout
	}
	fullURL, err := rt.fullURL(path)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		headerContentTypeKey: contentTypeApplicationJSON,
		headerAcceptKey:      contentTypeApplicationJSON,
		headerUserAgentKey:   userAgent,
	}
	if rt.conn.User != "" {
		credentials := base64.StdEncoding.EncodeToString(
			[]byte(rt.conn.User + ":" + rt.conn.Password))
		headers[headerAuthorizationKey] = "Basic " + credentials
	}
	res, err := newRetryHTTP(ctx, rt.client, http.NewRequest, fullURL, headers, timeout).
		doMethod(method).setBody(body).execute()
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		logger.WithContext(ctx).Errorf("failed to read response body. err: %v", err)
		return nil, err
	}
	return &Response{StatusCode: res.StatusCode, Body: b}, nil
}

func (rt *restTransport) fullURL(path string) (*url.URL, error) {
	params := make(url.Values)
	params.Add(requestGUIDKey, uuid.New().String())
	return url.Parse(fmt.Sprintf("%s://%s:%d%s?%s",
		rt.conn.Protocol, rt.conn.Host, rt.conn.Port, path, params.Encode()))
}
