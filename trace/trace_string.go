package trace

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// tagFor returns the bracketed category tag shown in front of a hostio in the rendered tree.
func tagFor(kind Kind) string {
	switch kind.(type) {
	case *CallContract:
		return "[call]"
	case *DelegateCallContract:
		return "[delegate call]"
	case *StaticCallContract:
		return "[static call]"
	case *EvmCall:
		return "[evm call]"
	case *Create1:
		return "[create1]"
	case *Create2:
		return "[create2]"
	case *UnknownHostio:
		return "[unknown]"
	case *StorageLoadBytes32, *StorageCacheBytes32, *StorageFlushCache, *StorageStoreBytes32:
		return "[storage]"
	case *TransientLoadBytes32, *TransientStoreBytes32:
		return "[transient]"
	case *EmitLog, *ConsoleLog, *ConsoleLogText:
		return "[log]"
	default:
		return ""
	}
}

// Label renders a hostio on one line: its tag, its name with the args fields, the outs fields after "=>" and the
// ink it used.
func (h Hostio) Label() string {
	var args, outs []string
	for _, f := range h.Fields() {
		switch f.Buffer {
		case BufferArgs:
			args = append(args, fmt.Sprintf("%s: %s", f.Name, f.Value))
		case BufferOuts:
			outs = append(outs, fmt.Sprintf("%s: %s", f.Name, f.Value))
		}
	}

	var b strings.Builder
	if tag := tagFor(h.Kind); tag != "" {
		b.WriteString(tag)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%s(%s)", h.Name(), strings.Join(args, ", "))
	if len(outs) > 0 {
		fmt.Fprintf(&b, " => %s", strings.Join(outs, ", "))
	}
	fmt.Fprintf(&b, " (ink %d)", h.InkUsed())
	return b.String()
}

// addToTree appends the frame's hostios to tree, opening a branch for every nested frame.
func (f *TraceFrame) addToTree(tree treeprint.Tree) {
	for _, h := range f.Steps {
		nested := NestedFrame(h.Kind)
		if nested == nil {
			tree.AddNode(h.Label())
			continue
		}
		branch := tree.AddBranch(h.Label())
		if len(nested.Steps) == 0 {
			branch.AddNode("(no hostios)")
			continue
		}
		nested.addToTree(branch)
	}
}

// Tree renders the frame and its nested frames as a tree under the given root label.
func (f *TraceFrame) Tree(root string) string {
	tree := treeprint.NewWithRoot(root)
	f.addToTree(tree)
	return tree.String()
}

// String renders the trace as a tree rooted at the traced transaction or simulated call.
func (t *Trace) String() string {
	var root string
	switch {
	case t.Tx != nil && t.Tx.To != nil:
		root = fmt.Sprintf("[trace] tx %s to %s", t.Tx.Hash.Hex(), t.Tx.To.Hex())
	case t.Tx != nil:
		root = fmt.Sprintf("[trace] tx %s (contract creation)", t.Tx.Hash.Hex())
	default:
		root = "[simulation]"
	}
	return t.TopFrame.Tree(root)
}
