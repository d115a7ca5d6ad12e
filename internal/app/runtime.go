package app

import "os"

// TestModeEnv names the variable that keeps binaries from dialing PostgreSQL, Redis or S3.
const TestModeEnv = "STOREFRONT_TEST_MODE"

// InTestMode reports whether TestModeEnv is set to "1".
func InTestMode() bool {
	return os.Getenv(TestModeEnv) == "1"
}
