// Package testing switches the process into test mode when a test file imports it
// for side effects: binaries skip startup and config loading has a usable JWT secret.
package testing

import "os"

func init() {
	_ = os.Setenv("STOREFRONT_TEST_MODE", "1")
	if os.Getenv("JWT_SECRET") == "" {
		_ = os.Setenv("JWT_SECRET", "storefront-test-secret-value")
	}
}
