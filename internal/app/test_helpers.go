package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/vk/assetgraph/internal/registry"
	"github.com/vk/assetgraph/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. It returns the
// app, its captured log and its result output.
func SetupAppTest(t *testing.T, appConfig *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer, *bytes.Buffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	out := &bytes.Buffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(out, logBuffer, appConfig, modules...)

	t.Cleanup(func() {
		if os.Getenv("ASSETGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer, out
}
