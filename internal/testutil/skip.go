package testutil

import (
	"os"
	"testing"
)

// SkipIfNoNetwork skips the test if JWTLENS_TEST_SKIP_NETWORK is set.
// Use this for tests that bind a local listener (httptest servers), which
// may not be available in sandboxed environments.
func SkipIfNoNetwork(t *testing.T) {
	t.Helper()
	if os.Getenv("JWTLENS_TEST_SKIP_NETWORK") != "" {
		t.Skip("skipping network test: JWTLENS_TEST_SKIP_NETWORK is set")
	}
}
