package rollbar

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"testing"
	"time"

	rollbar "github.com/rollbar/rollbar-go"
)

var (
	withPanic   = false
	logDisabled = false
	// accept every 3rd message on average, at most one every 500ms
	accepted = newRollbarLimiter(3, 500*time.Millisecond)
)

func init() {
	// Without a token reporting is a no-op, which is the default while
	// developing.
	rollbar.SetToken(os.Getenv("ROLLBAR_TOKEN"))

	env := os.Getenv("ROLLBAR_ENV")
	if env == "" {
		env = "development"
	}
	rollbar.SetEnvironment(env)
}

// SetCodeVersion sets the version reported alongside every event
func SetCodeVersion(ver string) {
	rollbar.SetCodeVersion(ver)
}

// Disable rollbar messages
func Disable() {
	rollbar.SetToken("")
	rollbar.SetEnvironment("")
	rollbar.SetEnabled(false)
}

// WithPanic causes all subsequent rollbar calls to panic. The returned function reverts the behavior.
// Intended for use as: defer rollbar.WithPanic(t)() within a test function.
// Note that this should be called within the main goroutine, and isn't thread-safe.
func WithPanic(testing.TB) func() {
	withPanic = true
	return func() {
		withPanic = false
	}
}

// SetPanic manually sets the panic mode, e.g. for development builds of the CLI
func SetPanic(enabled bool) {
	withPanic = enabled
}

// SetLogDisabled sets the status of logging to Golang's log.
func SetLogDisabled(disabled bool) {
	logDisabled = disabled
}

// Wait will block until the queue of errors / messages is empty.
func Wait() {
	rollbar.Wait()
}

// Critical sends a critical error report to Rollbar.
func Critical(err error, data ...interface{}) {
	send(rollbar.CRIT, err, data...)
}

// Error sends an error report to Rollbar.
func Error(err error, data ...interface{}) {
	send(rollbar.ERR, err, data...)
}

// Warning sends a warning report to Rollbar.
func Warning(err error, data ...interface{}) {
	send(rollbar.WARN, err, data...)
}

// PanicRecovery sends a panic report to rollbar
func PanicRecovery(r interface{}, data ...interface{}) {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, false)
	logPrintf("panic: %v\n%s", r, buf[:n])
	send(rollbar.ERR, fmt.Errorf("panic: %v", r), data...)
}

func send(level string, err error, data ...interface{}) {
	logPrintln("ROLLBAR", level, err, data)
	if withPanic {
		panic(fmt.Sprintf("rollbar [%s]: %v %v", level, err, data))
	}
	if rollbar.Token() == "" {
		return
	}

	if !accepted() {
		logPrintln("dropping rollbar event due to filtering")
		return
	}

	extras := make(map[string]interface{})
	for idx, d := range data {
		extras[fmt.Sprintf("data%d", idx)] = d
	}
	skip := 2 // Go up two stack frames to report where the error came from
	rollbar.ErrorWithStackSkipWithExtras(level, err, skip, extras)
}

func logPrintf(format string, v ...interface{}) {
	if !logDisabled {
		log.Printf(format, v...)
	}
}

func logPrintln(v ...interface{}) {
	if !logDisabled {
		log.Println(v...)
	}
}
