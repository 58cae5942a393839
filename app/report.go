package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// formatRank prints a belief value with infinities spelled out.
func formatRank(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%g", v)
	}
}

// Markdown renders the report as a Markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	title := r.Title
	if title == "" {
		title = "Causal analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- run: `%s`\n- backend: `%s`\n- duration: %s\n\n", r.RunID, r.Backend, r.Duration)

	if len(r.Causes) > 0 {
		fmt.Fprintf(&b, "## Causes of %s\n\n", r.Effect)
		b.WriteString("| variable | cause | strength | contexts | total effect |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range r.Causes {
			fmt.Fprintf(&b, "| %s | %t | %s | %d | %s |\n",
				c.Variable, c.Result.IsCause, formatRank(c.Result.Strength),
				c.Result.TestedContexts, formatRank(c.TotalEffect))
		}
		s := r.Summary
		fmt.Fprintf(&b, "\n%d of %d candidates are causes; %d infinite strengths",
			s.Causes, len(r.Causes), s.InfiniteStrengths)
		if s.FiniteStrengths > 0 {
			fmt.Fprintf(&b, ", finite strength mean %g max %g", s.StrengthMean, s.StrengthMax)
		}
		if s.FiniteEffects > 0 {
			fmt.Fprintf(&b, ", finite effect median %g max %g", s.EffectMedian, s.EffectMax)
		}
		b.WriteString(".\n\n")
	}

	if len(r.Chains) > 0 {
		b.WriteString("## Root-cause chains\n\n")
		for _, c := range r.Chains {
			if len(c.Path) == 0 {
				fmt.Fprintf(&b, "- %s: no directed path\n", c.From)
				continue
			}
			fmt.Fprintf(&b, "- %s\n", strings.Join(c.Path, " → "))
		}
		b.WriteString("\n")
	}

	if d := r.Discovery; d != nil {
		fmt.Fprintf(&b, "## Discovered structure\n\n%d CI tests over %s.\n\n", d.CITests, strings.Join(d.Nodes, ", "))
		for _, e := range d.Oriented {
			fmt.Fprintf(&b, "- %s → %s\n", e.From, e.To)
		}
		for _, e := range d.Edges {
			fmt.Fprintf(&b, "- %s -- %s\n", e.From, e.To)
		}
		b.WriteString("\n")
	}

	if len(r.Separations) > 0 {
		b.WriteString("## Separating sets\n\n")
		for _, sep := range r.Separations {
			if sep.Found {
				fmt.Fprintf(&b, "- %s, %s: {%s}\n", sep.X, sep.Y, strings.Join(sep.Set, ", "))
			} else {
				fmt.Fprintf(&b, "- %s, %s: none with at most %d variables\n", sep.X, sep.Y, sep.KMax)
			}
		}
		b.WriteString("\n")
	}

	if r.RepairTarget != "" {
		fmt.Fprintf(&b, "## Minimal repairs of %s\n\n", r.RepairTarget)
		if len(r.Repairs) == 0 {
			b.WriteString("No repair found.\n\n")
		}
		for _, set := range r.Repairs {
			fmt.Fprintf(&b, "- {%s}\n", strings.Join(set, ", "))
		}
		if len(r.Repairs) > 0 {
			b.WriteString("\n")
		}
	}

	if len(r.Counterexamples) > 0 {
		b.WriteString("## Invariants\n\n")
		for _, c := range r.Counterexamples {
			if c.Found {
				fmt.Fprintf(&b, "- %s: violated in %s\n", c.Invariant, c.World)
			} else {
				fmt.Fprintf(&b, "- %s: holds\n", c.Invariant)
			}
		}
	}
	return b.String()
}

// HTML renders the Markdown report to an HTML fragment.
func (r *Report) HTML() string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(r.Markdown()), p, renderer))
}

// DOT renders the root-cause chains as a Graphviz digraph. Detected causes
// are highlighted and each edge appears once.
func (r *Report) DOT() string {
	var b strings.Builder
	b.WriteString("digraph rootcause {\n  rankdir=LR;\n")
	for _, c := range r.Chains {
		fmt.Fprintf(&b, "  %q [color=red];\n", c.From)
	}
	seen := make(map[[2]string]struct{})
	for _, c := range r.Chains {
		for i := 0; i+1 < len(c.Path); i++ {
			edge := [2]string{c.Path[i], c.Path[i+1]}
			if _, ok := seen[edge]; ok {
				continue
			}
			seen[edge] = struct{}{}
			fmt.Fprintf(&b, "  %q -> %q;\n", edge[0], edge[1])
		}
	}
	b.WriteString("}\n")
	return b.String()
}
