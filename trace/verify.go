package trace

import (
	"fmt"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/crypto"
	"github.com/holiman/uint256"
)

// Inconsistency is a recorded hostio whose outputs disagree with what its inputs imply.
type Inconsistency struct {
	// Path locates the step, e.g. "steps[3].steps[0]".
	Path string
	// Hostio is the offending host call.
	Hostio Hostio
	// Reason describes the disagreement.
	Reason string
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Path, i.Hostio.Name(), i.Reason)
}

// Verify recomputes the outputs of deterministic host calls (256-bit math and keccak) from their recorded inputs and
// checks that every ink bracket decreases. It returns every inconsistency found in the frame and its nested frames.
func Verify(frame *TraceFrame) []Inconsistency {
	var found []Inconsistency
	verifyFrame(frame, "", &found)
	return found
}

func verifyFrame(frame *TraceFrame, prefix string, found *[]Inconsistency) {
	for i, h := range frame.Steps {
		path := fmt.Sprintf("%ssteps[%d]", prefix, i)
		if h.EndInk > h.StartInk {
			*found = append(*found, Inconsistency{Path: path, Hostio: h, Reason: fmt.Sprintf("ink went up from %d to %d", h.StartInk, h.EndInk)})
		}
		if reason := verifyKind(h.Kind); reason != "" {
			*found = append(*found, Inconsistency{Path: path, Hostio: h, Reason: reason})
		}
		if nested := NestedFrame(h.Kind); nested != nil {
			verifyFrame(nested, path+".", found)
		}
	}
}

// verifyKind returns a non-empty reason if the recorded outputs of kind disagree with its inputs.
func verifyKind(kind Kind) string {
	var want uint256.Int
	var got *uint256.Int
	switch k := kind.(type) {
	case *MathDiv:
		want.Div(&k.A, &k.B)
		got = &k.Result
	case *MathMod:
		want.Mod(&k.A, &k.B)
		got = &k.Result
	case *MathPow:
		want.Exp(&k.A, &k.B)
		got = &k.Result
	case *MathAddMod:
		want.AddMod(&k.A, &k.B, &k.C)
		got = &k.Result
	case *MathMulMod:
		want.MulMod(&k.A, &k.B, &k.C)
		got = &k.Result
	case *NativeKeccak256:
		digest := crypto.Keccak256Hash(k.Preimage)
		if digest != k.Digest {
			return fmt.Sprintf("digest %s does not match keccak256 of the preimage %s", k.Digest.Hex(), digest.Hex())
		}
		return ""
	case *StorageFlushCache:
		if k.Clear > 1 {
			return fmt.Sprintf("clear flag %d is not a boolean", k.Clear)
		}
		return ""
	case *AccountCode:
		if uint32(len(k.Code)) > k.Size {
			return fmt.Sprintf("returned %d bytes of code but only %d were requested", len(k.Code), k.Size)
		}
		return ""
	case *ReadReturnData:
		if uint32(len(k.Data)) > k.Size {
			return fmt.Sprintf("returned %d bytes of return data but only %d were requested", len(k.Data), k.Size)
		}
		return ""
	case *CallContract:
		return verifyCallAddress(k.Address, k.Frame.Address)
	case *DelegateCallContract:
		return verifyCallAddress(k.Address, k.Frame.Address)
	case *StaticCallContract:
		return verifyCallAddress(k.Address, k.Frame.Address)
	default:
		return ""
	}

	if !want.Eq(got) {
		return fmt.Sprintf("recorded result %s but the inputs give %s", got.Dec(), want.Dec())
	}
	return ""
}

// verifyCallAddress checks that a call's callee matches the address of its nested frame.
func verifyCallAddress(callee common.Address, frameAddress *common.Address) string {
	if frameAddress == nil || *frameAddress != callee {
		return fmt.Sprintf("nested frame is not executed at the callee %s", callee.Hex())
	}
	return ""
}
