package replay

import (
	"context"
	"fmt"

	"github.com/crytic/stylus-replay/trace"
	"github.com/tetratelabs/wazero/api"
)

// ConsoleModule is the import module of the Stylus debug console.
const ConsoleModule = "console"

// consoleHooks returns the console imports. Logged values are printed as recorded by the tracer; text is checked
// against the recording.
func consoleHooks(s *Session) []hostFunction {
	logValue := func(m api.Module, live any) {
		c := s.enter(m, "console_log")
		text := c.hostio.Kind.(*trace.ConsoleLog).Text
		s.logger.Debug("console log of ", live, " recorded as ", text)
		fmt.Fprintln(s.Console, text)
	}

	return []hostFunction{
		{"log_txt", func(ctx context.Context, m api.Module, text uint32, length uint32) {
			c := s.enter(m, "console_log_text")
			k := c.hostio.Kind.(*trace.ConsoleLogText)
			fmt.Fprintln(s.Console, string(c.expectBytes("text", k.Text, text, length)))
		}},
		{"log_i32", func(ctx context.Context, m api.Module, value int32) {
			logValue(m, value)
		}},
		{"log_i64", func(ctx context.Context, m api.Module, value int64) {
			logValue(m, value)
		}},
		{"log_f32", func(ctx context.Context, m api.Module, value float32) {
			logValue(m, value)
		}},
		{"log_f64", func(ctx context.Context, m api.Module, value float64) {
			logValue(m, value)
		}},
	}
}
