// Package render turns the relationship graph into Graphviz DOT text. The
// engine only produces the diagram's input; actual rendering is the
// consumer's concern.
package render

import (
	"fmt"
	"strings"

	"github.com/wolfdata/schemascan/pkg/models"
)

// DOT renders the analysis result as a Graphviz digraph: one box node per
// surviving dataset labelled with its role and columns, one edge per
// relationship candidate labelled with the linked columns and match
// strength. Edges with an undetermined direction render without an
// arrowhead.
func DOT(result *models.AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString("digraph model {\n")
	sb.WriteString("\trankdir=LR;\n")
	sb.WriteString("\tnode [shape=box];\n")

	for _, name := range result.OKDatasetNames() {
		sb.WriteString(fmt.Sprintf("\t%s [label=%s];\n",
			quote(name), quote(nodeLabel(result, name))))
	}

	for _, rel := range result.Relationships {
		label := fmt.Sprintf("%s -> %s (%.2f)", rel.SourceColumn, rel.TargetColumn, rel.MatchStrength)
		attrs := fmt.Sprintf("label=%s", quote(label))
		if rel.Direction == models.DirectionUndetermined {
			attrs += ", dir=none"
		}
		sb.WriteString(fmt.Sprintf("\t%s -> %s [%s];\n",
			quote(rel.SourceDataset), quote(rel.TargetDataset), attrs))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func nodeLabel(result *models.AnalysisResult, name string) string {
	var sb strings.Builder
	sb.WriteString(name)
	if role, ok := result.Roles[name]; ok {
		sb.WriteString(fmt.Sprintf("\n(%s)", role.Role))
	}
	if dataset, ok := result.Datasets[name]; ok {
		sb.WriteString("\n")
		for _, col := range dataset.Columns {
			sb.WriteString("\n")
			sb.WriteString(col)
		}
	}
	return sb.String()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
