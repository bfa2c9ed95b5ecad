package commerce

import (
	"fmt"
	"strings"
)

// TransportError reports an HTTP-level failure against the commerce endpoint:
// the request completed but the response status was not 2xx.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("commerce endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("commerce endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// RemoteQueryError reports a GraphQL-level failure: the HTTP call succeeded
// but the response envelope carried an errors list. The message is the
// concatenation of all remote error messages.
type RemoteQueryError struct {
	Messages []string
}

func (e *RemoteQueryError) Error() string {
	return strings.Join(e.Messages, "; ")
}
