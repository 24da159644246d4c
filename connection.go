// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import "time"

// ConnectionInfo holds the backend endpoint details for one connection id.
type ConnectionInfo struct {
	ConnectionID string
	Protocol     string
	Host         string
	Port         int
	User         string
	Password     string
	// Datasource is the backend-side data source name queries run against.
	// Defaults to the connection id.
	Datasource string
	// SubmitTimeout covers job creation, which may involve query planning
	// and can legitimately take longer than a status poll.
	SubmitTimeout  time.Duration
	RequestTimeout time.Duration
}

// ConnectionResolver resolves a connection identifier into backend endpoint
// details. It is consulted once at submission time.
type ConnectionResolver interface {
	Resolve(connectionID string) (*ConnectionInfo, error)
}

// StaticConnectionResolver resolves connections from a fixed in-memory set.
type StaticConnectionResolver struct {
	connections map[string]*ConnectionInfo
}

// NewStaticConnectionResolver builds a resolver over the given connections.
func NewStaticConnectionResolver(connections ...*ConnectionInfo) *StaticConnectionResolver {
	m := make(map[string]*ConnectionInfo, len(connections))
	for _, conn := range connections {
		m[conn.ConnectionID] = conn
	}
	return &StaticConnectionResolver{connections: m}
}

// Resolve implements ConnectionResolver.
func (scr *StaticConnectionResolver) Resolve(connectionID string) (*ConnectionInfo, error) {
	conn, ok := scr.connections[connectionID]
	if !ok {
		return nil, &GatewayError{
			Number:       ErrCodeUnknownConnection,
			ConnectionID: connectionID,
			Message:      errMsgUnknownConnection,
			MessageArgs:  []interface{}{connectionID},
		}
	}
	return conn, nil
}
