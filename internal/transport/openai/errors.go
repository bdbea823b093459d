package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/storyline/internal/domain"
)

// Failure kinds, used as the error_type metric label.
const (
	kindRateLimited    = "rate_limited"
	kindAuth           = "auth"
	kindInvalidRequest = "invalid_request"
	kindServerError    = "server_error"
	kindTimeout        = "timeout"
	kindNetwork        = "network"
	kindEmptyResponse  = "empty_response"
	kindDimensions     = "dimension_mismatch"
)

// classifyError maps a client failure to the domain taxonomy. Only 429 is retryable;
// everything else, timeouts included, is ErrProviderUnavailable.
func classifyError(err error) (kind string, wrapped error) {
	status, detail, ok := apiFailure(err)
	if ok {
		kind = statusKind(status)
		sentinel := domain.ErrProviderUnavailable
		if kind == kindRateLimited {
			sentinel = domain.ErrRateLimited
		}
		return kind, fmt.Errorf("embedding API returned %d: %s: %w", status, detail, sentinel)
	}

	kind = kindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = kindTimeout
	}
	return kind, fmt.Errorf("embedding request failed (%s): %w: %w", kind, domain.ErrProviderUnavailable, err)
}

// apiFailure extracts the HTTP status and the most useful message from an API error.
func apiFailure(err error) (status int, detail string, ok bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, apiErr.Message, true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail = bodyMessage(reqErr.Body)
		if detail == "" {
			detail = http.StatusText(reqErr.HTTPStatusCode)
		}
		return reqErr.HTTPStatusCode, detail, true
	}
	return 0, "", false
}

func statusKind(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return kindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return kindAuth
	case status >= 500:
		return kindServerError
	default:
		return kindInvalidRequest
	}
}

// bodyMessage reads an error message from a non-standard JSON error body.
// Compatible gateways use either {"detail": "..."} or {"error": "..."}.
func bodyMessage(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  any    `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	if s, ok := parsed.Error.(string); ok {
		return s
	}
	return ""
}
