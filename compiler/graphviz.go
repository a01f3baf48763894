package compiler

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// WriteGraphviz renders a CompiledGraph as a Graphviz DOT file at path on
// fs, for debugging graph structure outside the client GUI. Adapted from
// the teacher's pgraph.Graphviz/ExecGraphviz, routed through afero so the
// compiler's own tests exercise it against an in-memory filesystem. lumend
// exposes no flag that calls it.
func WriteGraphviz(fs afero.Fs, path string, c *CompiledGraph) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", c.GraphID)
	for i, id := range c.EvaluationOrder {
		fmt.Fprintf(&b, "\t%q [label=%q];\n", id, fmt.Sprintf("%d: %s (%s)", i, id, c.Nodes[id].Type))
	}
	for key, edge := range c.edgesByInput {
		_ = key
		fmt.Fprintf(&b, "\t%q -> %q [label=%q];\n", edge.From.NodeID, edge.To.NodeID, edge.From.Port+" -> "+edge.To.Port)
	}
	b.WriteString("}\n")

	return afero.WriteFile(fs, path, []byte(b.String()), 0o644)
}
