package session

import (
	"strings"

	"github.com/cardhouse/storefront/internal/domain"
)

// LineMutationError reports a business-rule rejection of a line mutation by
// the commerce API (e.g. sold out, invalid variant). The message is the
// concatenation of the remote user-error messages.
type LineMutationError struct {
	UserErrors []domain.UserError
}

func (e *LineMutationError) Error() string {
	msgs := make([]string, len(e.UserErrors))
	for i, ue := range e.UserErrors {
		msgs[i] = ue.Message
	}
	return strings.Join(msgs, "; ")
}

// CartUnavailableError reports that cart creation itself failed: the commerce
// API returned user errors or no cart. This is fatal for the current
// operation; there is no automatic retry.
type CartUnavailableError struct {
	Reason string
}

func (e *CartUnavailableError) Error() string {
	if e.Reason == "" {
		return "failed to create cart"
	}
	return "failed to create cart: " + e.Reason
}
