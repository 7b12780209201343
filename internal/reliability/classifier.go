package reliability

// IsRetryableHTTPStatus classifies retryable HTTP status codes. The gateway
// sets a retryable flag on upstream error responses from it; nothing retries
// automatically.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// UpstreamStatusCode maps an upstream provider status onto the gateway
// response: client errors pass through untouched, everything else is
// reported as a bad gateway.
func UpstreamStatusCode(code int) int {
	if code >= 400 && code < 500 {
		return code
	}
	return 502
}
