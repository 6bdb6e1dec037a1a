package analysis

import (
	"fmt"
	"strings"

	"github.com/npillmayer/llk"
	"github.com/npillmayer/llk/grammar"
	"github.com/npillmayer/llk/lookahead"
)

// warnAltAmbiguity reports a conflict between alternatives i and j of blk.
// For the lexer's nextToken rule the conflict is between token rules.
func (a *Analyzer) warnAltAmbiguity(blk *grammar.Block, depth int, sets []*lookahead.Lookahead,
	i, j int) {
	//
	var line string
	if a.lexical && blk.Rule != nil && blk.Rule.Name == grammar.NextTokenRuleName {
		line = fmt.Sprintf("lexical nondeterminism between rules %s and %s upon",
			ruleRefTarget(blk.Alt(i)), ruleRefTarget(blk.Alt(j)))
	} else {
		where := "block"
		if blk.Kind == grammar.RuleBody {
			where = "rule " + blk.EnclosingRule
		}
		line = fmt.Sprintf("%snondeterminism between alts %d and %d of %s upon",
			a.lexicalPrefix(), i+1, j+1, where)
	}
	lines := append([]string{line}, a.dumpSets(depth, sets)...)
	amb := &grammar.Ambiguity{
		Rule:    blk.EnclosingRule,
		Block:   blk.Serial,
		Lexical: a.lexical,
		Alt1:    i + 1,
		Alt2:    j + 1,
		Sets:    ambiguitySets(depth, sets),
	}
	a.g.ReportAmbiguity(blk.Pos, amb, strings.Join(lines, "\n"))
}

// warnAltExitAmbiguity reports a conflict between alternative i of a loop
// and the loop's exit branch.
func (a *Analyzer) warnAltExitAmbiguity(blk *grammar.Block, depth int, sets []*lookahead.Lookahead,
	i int) {
	//
	lines := []string{a.lexicalPrefix() + "nondeterminism upon"}
	lines = append(lines, a.dumpSets(depth, sets)...)
	lines = append(lines, fmt.Sprintf("between alt %d and exit branch of block", i+1))
	amb := &grammar.Ambiguity{
		Rule:       blk.EnclosingRule,
		Block:      blk.Serial,
		Lexical:    a.lexical,
		Alt1:       i + 1,
		ExitBranch: true,
		Sets:       ambiguitySets(depth, sets),
	}
	a.g.ReportAmbiguity(blk.Pos, amb, strings.Join(lines, "\n"))
}

func (a *Analyzer) lexicalPrefix() string {
	if a.lexical {
		return "lexical "
	}
	return ""
}

// dumpSets prints one line per depth, "k==d:set". Lexer sets are printed
// with character ranges and an end-of-token marker for epsilon.
func (a *Analyzer) dumpSets(depth int, sets []*lookahead.Lookahead) []string {
	lines := make([]string, 0, depth)
	for d := 1; d <= depth && d < len(sets); d++ {
		var sb strings.Builder
		fmt.Fprintf(&sb, "k==%d:", d)
		if la := sets[d]; la != nil {
			if a.lexical {
				chars := formatWithRanges(la, llk.CharFormatter)
				if la.ContainsEpsilon() {
					sb.WriteString("<end-of-token>")
					if chars != "" {
						sb.WriteByte(',')
					}
				}
				sb.WriteString(chars)
			} else {
				sb.WriteString(la.Set.Format(",", a.g.SymbolFormatter()))
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// formatWithRanges prints runs of more than two consecutive symbols as
// ranges lo..hi.
func formatWithRanges(la *lookahead.Lookahead, f llk.SymbolFormatter) string {
	var parts []string
	for _, run := range la.Set.Ranges() {
		switch {
		case run[1]-run[0] >= 2:
			parts = append(parts, f(run[0])+".."+f(run[1]))
		case run[1] > run[0]:
			parts = append(parts, f(run[0]), f(run[1]))
		default:
			parts = append(parts, f(run[0]))
		}
	}
	return strings.Join(parts, ",")
}

func ambiguitySets(depth int, sets []*lookahead.Lookahead) [][]int {
	r := make([][]int, 0, depth)
	for d := 1; d <= depth && d < len(sets); d++ {
		if sets[d] == nil {
			r = append(r, []int{})
			continue
		}
		r = append(r, sets[d].Set.ToArray())
	}
	return r
}

func ruleRefTarget(alt *grammar.Alternative) string {
	if rr, ok := alt.Head().(*grammar.RuleRef); ok {
		return rr.Target
	}
	return alt.String()
}
