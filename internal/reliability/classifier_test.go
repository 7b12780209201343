package reliability

import "testing"

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = false, want true", code)
		}
	}
	for _, code := range []int{200, 201, 400, 401, 404, 418} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = true, want false", code)
		}
	}
}

func TestUpstreamStatusCode(t *testing.T) {
	if got := UpstreamStatusCode(401); got != 401 {
		t.Fatalf("UpstreamStatusCode(401) = %d, want passthrough", got)
	}
	if got := UpstreamStatusCode(422); got != 422 {
		t.Fatalf("UpstreamStatusCode(422) = %d, want passthrough", got)
	}
	if got := UpstreamStatusCode(500); got != 502 {
		t.Fatalf("UpstreamStatusCode(500) = %d, want 502", got)
	}
	if got := UpstreamStatusCode(200); got != 502 {
		t.Fatalf("UpstreamStatusCode(200) = %d, want 502", got)
	}
}
