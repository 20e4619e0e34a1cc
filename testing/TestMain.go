package testing

import (
	"os"
	stdtesting "testing"

	"github.com/greenloop/greenloop/internal/testing/guard"
)

func init() {
	guard.Ensure()
}

func TestMain(m *stdtesting.M) {
	guard.Ensure()
	os.Exit(m.Run())
}
