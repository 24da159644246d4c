// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// QueryLanguage is the source language of a query.
type QueryLanguage string

// Supported query languages.
const (
	LanguageSQL QueryLanguage = "sql"
	LanguagePPL QueryLanguage = "ppl"
)

// ResultFormat is the response shape requested from the backend.
type ResultFormat string

// Supported result formats.
const (
	FormatJDBC ResultFormat = "jdbc"
	FormatJSON ResultFormat = "json"
	FormatCSV  ResultFormat = "csv"
)

// QueryRequest describes one query to run against a backend connection.
type QueryRequest struct {
	QueryText    string
	Language     QueryLanguage
	ConnectionID string
	Format       ResultFormat
}

// fingerprint derives the cache key from the request's defining fields. The
// query text is hashed exactly as given; two textually different but
// semantically identical queries produce distinct keys.
func (q *QueryRequest) fingerprint() string {
	h := sha256.New()
	for _, part := range []string{q.QueryText, string(q.Language), q.ConnectionID, string(q.Format)} {
		h.Write([]byte(part))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// JobHandle refers to a submitted async job. It is immutable and remains
// valid for polling until a terminal status is observed.
type JobHandle struct {
	JobID        string
	ConnectionID string
	SubmittedAt  time.Time
}

// JobState is the lifecycle state of an async job.
type JobState int

// Job states. Terminal states are JobSucceeded, JobFailed and JobCancelled.
const (
	JobRunning JobState = iota
	JobSucceeded
	JobFailed
	JobCancelled
)

func (js JobState) String() string {
	return [...]string{"RUNNING", "SUCCESS", "FAILED", "CANCELLED"}[js]
}

func (js JobState) isTerminal() bool {
	return js != JobRunning
}

// JobStatus is one observation of a job's state. Result is set only when
// State is JobSucceeded and Err only when it is JobFailed.
type JobStatus struct {
	State  JobState
	Result *ResultSet
	Err    *GatewayError
}

// Column describes one column of a result set.
type Column struct {
	Name string
	Type string
}

// ResultSet is a fully materialized query result.
type ResultSet struct {
	Schema    []Column
	Rows      [][]interface{}
	ElapsedMs int64
	// Raw carries backend fields not modeled above so they are not silently
	// dropped.
	Raw json.RawMessage
}

// wire types for the async query REST surface

type createJobRequest struct {
	Query      string `json:"query"`
	Lang       string `json:"lang"`
	Datasource string `json:"datasource"`
	SessionID  string `json:"sessionId,omitempty"`
}

type createJobResponse struct {
	QueryID string `json:"queryId"`
	// small or cached queries may come back already terminal
	jobStatusResponse
}

type jobStatusResponse struct {
	Status    string          `json:"status"`
	Schema    []wireColumn    `json:"schema,omitempty"`
	Datarows  [][]interface{} `json:"datarows,omitempty"`
	Total     int64           `json:"total,omitempty"`
	Size      int64           `json:"size,omitempty"`
	TookMs    int64           `json:"took,omitempty"`
	Error     string          `json:"error,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

type wireColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
