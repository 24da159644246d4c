// Package gosearchgate is a Go client for a search engine's asynchronous
// query API.
package gosearchgate

import "fmt"

const (
	jobsEndpointBase = "/_plugins/_async_query"

	headerAuthorizationKey = "Authorization"
	headerContentTypeKey   = "Content-Type"
	headerAcceptKey        = "Accept"
	headerUserAgentKey     = "User-Agent"

	contentTypeApplicationJSON = "application/json"

	// marker the backend embeds in the error text of a query aborted by a
	// safety limit
	guardrailMarker = "guardrails triggered"

	requestGUIDKey = "request_guid"
)

var userAgent = fmt.Sprintf("SearchGate Go %v", SearchGateVersion)
