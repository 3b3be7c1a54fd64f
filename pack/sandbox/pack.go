// Package sandbox provides in-process code execution for math, logic,
// and data transformation. Scripts run in an embedded JavaScript
// interpreter with no host access.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// DefaultTimeout bounds a single script execution.
const DefaultTimeout = 5 * time.Second

// errTimeout is the interrupt value raised when a script overruns.
var errTimeout = errors.New("execution timed out")

// Config configures the sandbox capability.
type Config struct {
	// Timeout bounds script execution. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// New creates the sandbox capability.
func New(cfg Config) capability.Capability {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return capability.NewBuilder("sandbox").
		WithDescription(
			"Executes JavaScript code for math, logic, and data processing. "+
				"Returns console output and the final expression value. "+
				"Use for calculations, data transformation, and programmatic operations.").
		WithParameter("code", "string", "Valid JavaScript code to execute", true).
		WithEstimatedLatency(100 * time.Millisecond).
		Local().
		WithHandler(func(ctx context.Context, params map[string]any) (capability.Result, error) {
			return run(ctx, cfg.Timeout, params), nil
		}).
		MustBuild()
}

func run(ctx context.Context, timeout time.Duration, params map[string]any) capability.Result {
	code, _ := params["code"].(string)

	vm := goja.New()
	var stdout strings.Builder
	if err := installConsole(vm, &stdout); err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Sandbox setup failed: %v", err))
	}

	// Interrupt on timeout or caller cancellation. goja checks the
	// interrupt flag between instructions, so runaway loops still stop.
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-execCtx.Done():
			vm.Interrupt(errTimeout)
		case <-watchDone:
		}
	}()

	value, err := vm.RunString(code)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return capability.NewErrorResult(
				fmt.Sprintf("Execution timed out after %s", timeout))
		}
		result := capability.NewErrorResult(fmt.Sprintf("Execution failed: %v", err))
		result.Metadata = map[string]any{"stdout": stdout.String()}
		return result
	}

	captured := stdout.String()
	final := strings.TrimSpace(captured)
	if final == "" {
		if value != nil && !goja.IsUndefined(value) && !goja.IsNull(value) {
			final = value.String()
		} else {
			final = "(No output)"
		}
	}

	result := capability.NewResult(map[string]any{
		"status": "success",
		"stdout": captured,
		"result": final,
	})
	result.Metadata = map[string]any{"code_length": len(code)}
	return result
}

// installConsole wires console.log/info/warn/error into the capture
// buffer. Arguments are space-separated, one line per call.
func installConsole(vm *goja.Runtime, out *strings.Builder) error {
	console := vm.NewObject()
	log := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		out.WriteString(strings.Join(parts, " "))
		out.WriteByte('\n')
		return goja.Undefined()
	}
	for _, name := range []string{"log", "info", "warn", "error"} {
		if err := console.Set(name, log); err != nil {
			return err
		}
	}
	return vm.Set("console", console)
}
