package log

import (
	"fmt"
	stdlog "log"
)

// MustInit opens the SQLite sink "<app>.db" in the application directory and
// exits the process if it cannot.
func MustInit(app string) {
	if err := Init(fmt.Sprintf("%s.db", app)); err != nil {
		stdlog.Fatalf("FATAL: failed to initialize logger: %v\n", err)
	}
}
