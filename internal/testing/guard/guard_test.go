package guard

import (
	"os"
	"testing"

	"github.com/greenloop/greenloop/internal/app"
)

func TestEnsureEngagesTestModeLatch(t *testing.T) {
	Ensure()

	if got := os.Getenv("GREENLOOP_TEST_MODE"); got != "1" {
		t.Fatalf("expected GREENLOOP_TEST_MODE=1, got %q", got)
	}
	if !app.InTestMode() {
		t.Fatal("expected test mode to be active")
	}
}
