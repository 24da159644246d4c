// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import "regexp"

const (
	basicAuthPattern = `(?i)(Basic )([a-z0-9/+=]{8,})`
	passwordPattern  = `(?i)(password|pwd)([\'\"\s:=]+)([^\s&\'\",]{4,})`
	sessionIDPattern = `(?i)(sessionId)([\'\"\s:=]+)([a-z0-9=/_\-\+]{8,})`
)

var (
	basicAuthRegexp = regexp.MustCompile(basicAuthPattern)
	passwordRegexp  = regexp.MustCompile(passwordPattern)
	sessionIDRegexp = regexp.MustCompile(sessionIDPattern)
)

// maskSecrets hides credentials and backend session tokens before text is
// written to logs or test failures.
func maskSecrets(text string) string {
	masked := basicAuthRegexp.ReplaceAllString(text, "$1****")
	masked = passwordRegexp.ReplaceAllString(masked, "$1${2}****")
	masked = sessionIDRegexp.ReplaceAllString(masked, "$1${2}****")
	return masked
}
