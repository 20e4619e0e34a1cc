// Package guard flips the test-mode latch on for any binary that links it,
// so test runs never reach live infrastructure. Import it for side effects
// from test packages only.
package guard

import (
	"os"
	"sync"

	"github.com/greenloop/greenloop/internal/app"
)

var once sync.Once

// Ensure sets GREENLOOP_TEST_MODE for the current process unless the
// environment already pins it, then refreshes the cached flag.
func Ensure() {
	once.Do(func() {
		if os.Getenv("GREENLOOP_TEST_MODE") == "" {
			_ = os.Setenv("GREENLOOP_TEST_MODE", "1")
		}
		app.RefreshTestMode()
	})
}

func init() {
	Ensure()
}
