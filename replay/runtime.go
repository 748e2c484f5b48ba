package replay

import (
	"context"
	"fmt"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/stylus-replay/trace"
	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
	"golang.org/x/exp/slices"
)

// EntrypointName is the export every Stylus program is invoked through.
const EntrypointName = "user_entrypoint"

// Outcome classifies the status returned by a program.
type Outcome int

const (
	// OutcomeSuccess is a zero status.
	OutcomeSuccess Outcome = iota
	// OutcomeRevert is a status of one.
	OutcomeRevert
	// OutcomeUnknown is any other status.
	OutcomeUnknown
)

// OutcomeOf classifies a program status.
func OutcomeOf(status uint32) Outcome {
	switch status {
	case 0:
		return OutcomeSuccess
	case 1:
		return OutcomeRevert
	default:
		return OutcomeUnknown
	}
}

// Result is the outcome of a completed replay.
type Result struct {
	// Status is the status returned by user_entrypoint or passed to exit_early.
	Status uint32
	// Outcome classifies Status.
	Outcome Outcome
	// ExitedEarly is true when the program ended through exit_early.
	ExitedEarly bool
	// ReturnData is the data passed to write_result, if any.
	ReturnData []byte
	// RecordedStatus is the status recorded by user_returned, if the frame has one.
	RecordedStatus *uint32
}

// String describes the result the way the call would be reported onchain.
func (r *Result) String() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return "call completed successfully"
	case OutcomeRevert:
		return "call reverted"
	default:
		return fmt.Sprintf("call exited with unknown status code: %d", r.Status)
	}
}

// StatusMatchesRecording reports whether the live status equals the recorded one. It is true when nothing was
// recorded.
func (r *Result) StatusMatchesRecording() bool {
	return r.RecordedStatus == nil || *r.RecordedStatus == r.Status
}

// Target is the frame to replay along with the argument length to pass to its entrypoint.
type Target struct {
	Frame   *trace.TraceFrame
	ArgsLen uint32
}

/*
ResolveTarget selects the frame to replay. Without an address, the top-level frame is replayed. With one, the first
frame executed at that address is replayed, which allows replaying a program reached through a nested call. The
argument length comes from the frame's recorded user_entrypoint, falling back to the transaction input or the call
data of the nested call.
*/
func ResolveTarget(t *trace.Trace, address *common.Address) (*Target, error) {
	if address == nil {
		argsLen, ok := t.TopFrame.EntrypointArgsLen()
		if !ok {
			argsLen = uint32(len(t.Input()))
		}
		return &Target{Frame: t.TopFrame, ArgsLen: argsLen}, nil
	}

	if t.TopFrame.Address != nil && *t.TopFrame.Address == *address {
		return ResolveTarget(t, nil)
	}

	var target *Target
	t.TopFrame.Walk(func(h trace.Hostio, _ *trace.TraceFrame, _ int) bool {
		nested := trace.NestedFrame(h.Kind)
		if nested == nil || nested.Address == nil || *nested.Address != *address {
			return true
		}
		argsLen, ok := nested.EntrypointArgsLen()
		if !ok {
			argsLen = uint32(len(callData(h.Kind)))
		}
		target = &Target{Frame: nested, ArgsLen: argsLen}
		return false
	})
	if target == nil {
		return nil, errors.Errorf("no frame of the trace is executed at %s", address.Hex())
	}
	return target, nil
}

func callData(kind trace.Kind) []byte {
	switch k := kind.(type) {
	case *trace.CallContract:
		return k.Data
	case *trace.DelegateCallContract:
		return k.Data
	case *trace.StaticCallContract:
		return k.Data
	case *trace.EvmCall:
		return k.Args
	default:
		return nil
	}
}

// SupportedImports returns the "module.name" of every host function the replay runtime provides, sorted.
func SupportedImports() []string {
	var names []string
	for _, f := range vmHooks(nil) {
		names = append(names, VMHooksModule+"."+f.name)
	}
	for _, f := range consoleHooks(nil) {
		names = append(names, ConsoleModule+"."+f.name)
	}
	slices.Sort(names)
	return names
}

// instantiateHostModules registers the vm_hooks and console modules of s with the runtime.
func instantiateHostModules(ctx context.Context, runtime wazero.Runtime, s *Session) error {
	modules := []struct {
		name      string
		functions []hostFunction
	}{
		{VMHooksModule, vmHooks(s)},
		{ConsoleModule, consoleHooks(s)},
	}
	for _, module := range modules {
		builder := runtime.NewHostModuleBuilder(module.name)
		for _, f := range module.functions {
			builder = builder.NewFunctionBuilder().WithFunc(f.fn).Export(f.name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Wrapf(err, "failed to instantiate host module %s", module.name)
		}
	}
	return nil
}

/*
Run executes the program in wasm against the session's recording. Every host call the program makes is matched
against the next recorded call: its inputs must equal the recorded inputs and its outputs are the recorded outputs.
Once user_entrypoint returns, every recorded call must have been consumed.
Divergences are returned as *trace.DivergenceError, input differences as *MismatchError and bad guest pointers as
*MemoryAccessError.
*/
func Run(ctx context.Context, s *Session, wasm []byte, argsLen uint32) (*Result, error) {
	s.logger.Info("Replaying ", s.frame.Summary(), " with args length ", argsLen)

	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	if err := instantiateHostModules(ctx, runtime, s); err != nil {
		return nil, err
	}

	compiled, err := runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile program")
	}
	program, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("user"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to instantiate program")
	}

	entrypoint := program.ExportedFunction(EntrypointName)
	if entrypoint == nil {
		return nil, errors.Errorf("program does not export %s", EntrypointName)
	}

	result := &Result{}
	results, err := entrypoint.Call(ctx, uint64(argsLen))
	if err != nil {
		// A failed host call records its typed error on the session before aborting the program
		if failure := s.Failure(); failure != nil {
			return nil, failure
		}
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Wrap(err, "program trapped")
		}
		result.Status = exitErr.ExitCode()
		result.ExitedEarly = true
	} else if len(results) > 0 {
		result.Status = uint32(results[0])
	}

	if err = s.finish(); err != nil {
		return nil, err
	}
	result.Outcome = OutcomeOf(result.Status)
	result.ReturnData = s.ReturnData()
	result.RecordedStatus = recordedStatus(s.frame)
	if !result.StatusMatchesRecording() {
		s.logger.Warn("Replay returned status ", result.Status, " but the recorded status is ", *result.RecordedStatus)
	}
	return result, nil
}

// recordedStatus returns the status of the frame's own user_returned call.
func recordedStatus(frame *trace.TraceFrame) *uint32 {
	for _, h := range frame.Steps {
		if k, ok := h.Kind.(*trace.UserReturned); ok {
			status := k.Status
			return &status
		}
	}
	return nil
}
