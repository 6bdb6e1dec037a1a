package analysis

import (
	"text/scanner"

	"github.com/npillmayer/llk"
	"github.com/npillmayer/llk/bitset"
	"github.com/npillmayer/llk/grammar"
	"github.com/npillmayer/llk/lookahead"
	"github.com/npillmayer/schuko/gconf"
)

// Analyzer computes lookahead sets and decides the determinism of blocks
// for a single grammar.
type Analyzer struct {
	g            *grammar.Grammar
	lexical      bool                   // analyzing a lexer
	debug        bool                   // trace every step
	currentBlock *grammar.Block         // block under analysis
	analysisAlt  map[*grammar.Block]int // alternative under analysis, per block
}

// NewAnalyzer creates an analyzer for g. Step-by-step tracing is switched
// on by the grammar option analyzerDebug or by the global configuration
// key "analyzer-debug".
func NewAnalyzer(g *grammar.Grammar) *Analyzer {
	return &Analyzer{
		g:           g,
		lexical:     g.IsLexer(),
		debug:       g.AnalyzerDebug || gconf.GetBool("analyzer-debug"),
		analysisAlt: make(map[*grammar.Block]int),
	}
}

// Grammar returns the grammar under analysis.
func (a *Analyzer) Grammar() *grammar.Grammar {
	return a.g
}

func (a *Analyzer) debugf(format string, args ...interface{}) {
	if a.debug {
		tracer().Debugf(format, args...)
	}
}

func (a *Analyzer) maxK() int {
	if a.g.MaxK < 1 {
		return 1
	}
	return a.g.MaxK
}

func (a *Analyzer) format(la *lookahead.Lookahead) string {
	return "{" + la.Format(",", a.g.SymbolFormatter()) + "}"
}

// === Look ==================================================================

// Look computes the lookahead at depth k for the path starting at e. The
// path continues past the end of e's alternative: at the end of a subrule
// into what follows the subrule, and at the end of a rule into FOLLOW of
// the rule.
func (a *Analyzer) Look(k int, e grammar.Element) *lookahead.Lookahead {
	if e == nil {
		a.g.Panic(scanner.Position{}, "lookahead requested for missing element at depth %d", k)
	}
	a.debugf("look(%d, %s)", k, e)
	switch x := e.(type) {
	case *grammar.Action:
		return a.Look(k, x.Next())
	case *grammar.CharLiteral:
		return a.lookCharLiteral(k, x)
	case *grammar.CharRange:
		if k > 1 {
			return a.Look(k-1, x.Next())
		}
		return lookahead.FromSet(bitset.Range(x.Begin, x.End))
	case *grammar.TokenRange:
		if k > 1 {
			return a.Look(k-1, x.Next())
		}
		return lookahead.FromSet(bitset.Range(x.Begin, x.End))
	case *grammar.StringLiteral:
		return a.lookStringLiteral(k, x)
	case *grammar.TokenRef:
		return a.lookTokenRef(k, x)
	case *grammar.Wildcard:
		return a.lookWildcard(k, x)
	case *grammar.RuleRef:
		return a.lookRuleRef(k, x)
	case *grammar.Block:
		return a.lookBlock(k, x)
	case *grammar.BlockEnd:
		return a.lookBlockEnd(k, x)
	case *grammar.RuleEnd:
		return a.lookRuleEnd(k, x)
	}
	a.g.Panic(e.Attrs().Pos, "unknown grammar element %T", e)
	return nil
}

// --- Atoms -----------------------------------------------------------------

// lookCharLiteral returns the character at k=1. An inverted character
// matches every character of the vocabulary, except itself and whatever
// preceding alternatives of the current block predict.
func (a *Analyzer) lookCharLiteral(k int, c *grammar.CharLiteral) *lookahead.Lookahead {
	if k > 1 {
		return a.Look(k-1, c.Next())
	}
	if !a.lexical {
		a.g.Panic(c.Pos, "character literal %s found in %s", c, a.g.Kind)
	}
	if c.Not {
		b := a.g.CharVocabulary.Clone()
		a.removeCompetingPredictionSets(b, c)
		b.Clear(c.Char)
		return lookahead.FromSet(b)
	}
	return lookahead.Of(c.Char)
}

// lookStringLiteral: a lexer literal is a sequence of characters, a parser
// literal is a single token.
func (a *Analyzer) lookStringLiteral(k int, s *grammar.StringLiteral) *lookahead.Lookahead {
	if a.lexical {
		if n := len(s.Processed); k > n {
			return a.Look(k-n, s.Next())
		}
		return lookahead.Of(int(s.Processed[k-1]))
	}
	if k > 1 {
		return a.Look(k-1, s.Next())
	}
	l := lookahead.Of(s.TokenType)
	if s.Not {
		l.Set.NotInPlace(llk.MinUserType, a.g.MaxTokenType())
	}
	return l
}

func (a *Analyzer) lookTokenRef(k int, t *grammar.TokenRef) *lookahead.Lookahead {
	if a.lexical {
		a.g.Panic(t.Pos, "token reference %s found in lexer", t.Name)
	}
	if k > 1 {
		return a.Look(k-1, t.Next())
	}
	l := lookahead.Of(t.TokenType)
	if t.Not {
		l.Set.NotInPlace(llk.MinUserType, a.g.MaxTokenType())
		a.removeCompetingPredictionSets(l.Set, t)
	}
	return l
}

func (a *Analyzer) lookWildcard(k int, w *grammar.Wildcard) *lookahead.Lookahead {
	if k > 1 {
		return a.Look(k-1, w.Next())
	}
	var b *bitset.BitSet
	if a.lexical {
		b = a.g.CharVocabulary.Clone()
	} else {
		b = bitset.New()
		b.NotInPlace(llk.MinUserType, a.g.MaxTokenType())
	}
	return lookahead.FromSet(b)
}

// lookTree: at k=1 a tree is predicted by its root. Deeper lookahead skips
// the children and continues with the tree's siblings.
func (a *Analyzer) lookTree(k int, t *grammar.Block) *lookahead.Lookahead {
	if k > 1 {
		return a.Look(k-1, t.Next())
	}
	var l *lookahead.Lookahead
	switch root := t.Root.(type) {
	case *grammar.Wildcard:
		return a.Look(1, root)
	case *grammar.TokenRef:
		l = lookahead.Of(root.TokenType)
	case *grammar.StringLiteral:
		l = lookahead.Of(root.TokenType)
	case *grammar.TokenRange:
		l = lookahead.FromSet(bitset.Range(root.Begin, root.End))
	default:
		a.g.Panic(t.Pos, "tree %s has no valid root", t)
	}
	if t.Root.Attrs().Not {
		l.Set.NotInPlace(llk.MinUserType, a.g.MaxTokenType())
	}
	return l
}

// --- Blocks ----------------------------------------------------------------

func (a *Analyzer) lookBlock(k int, blk *grammar.Block) *lookahead.Lookahead {
	switch blk.Kind {
	case grammar.ZeroOrMore:
		p := a.lookAlts(k, blk)
		p.CombineWith(a.Look(k, blk.Next()))
		return p
	case grammar.SynPred:
		return a.Look(k, blk.Next())
	case grammar.Tree:
		return a.lookTree(k, blk)
	}
	return a.lookAlts(k, blk)
}

// lookAlts combines the lookahead of all alternatives of blk. An inverted
// subrule is complemented against the vocabulary at k=1.
func (a *Analyzer) lookAlts(k int, blk *grammar.Block) *lookahead.Lookahead {
	save := a.currentBlock
	a.currentBlock = blk
	defer func() { a.currentBlock = save }()
	p := lookahead.New()
	for i, alt := range blk.Alternatives {
		a.analysisAlt[blk] = i
		p.CombineWith(a.Look(k, alt.Head()))
	}
	if k == 1 && blk.Not && grammar.CanBeInverted(blk, a.lexical) {
		if a.lexical {
			p.Set = a.g.CharVocabulary.Subtract(p.Set)
		} else {
			p.Set.NotInPlace(llk.MinUserType, a.g.MaxTokenType())
		}
	}
	return p
}

// lookBlockEnd: reaching the end of a loop, the loop may be entered again.
// The end node is locked while the loop's alternatives are visited, so an
// empty path through the loop terminates.
func (a *Analyzer) lookBlockEnd(k int, end *grammar.BlockEnd) *lookahead.Lookahead {
	if end.Lock.Locked(k) {
		return lookahead.New()
	}
	blk := end.Block
	var p *lookahead.Lookahead
	if blk.IsLoop() {
		p = a.reenterLoop(k, end)
	} else {
		p = lookahead.New()
	}
	switch blk.Kind {
	case grammar.Tree:
		p.CombineWith(lookahead.Of(llk.NullTreeLookahead))
	case grammar.SynPred:
		p.SetEpsilon()
	default:
		p.CombineWith(a.Look(k, blk.Next()))
	}
	return p
}

func (a *Analyzer) reenterLoop(k int, end *grammar.BlockEnd) *lookahead.Lookahead {
	release := end.Lock.Acquire(k)
	defer release()
	return a.lookAlts(k, end.Block)
}

// --- Rules -----------------------------------------------------------------

// lookRuleEnd: when called from a rule reference, the end of the rule
// yields epsilon, tagged with the depth at which it was hit. Otherwise the
// path continues into FOLLOW of the rule.
func (a *Analyzer) lookRuleEnd(k int, end *grammar.RuleEnd) *lookahead.Lookahead {
	if end.NoFollow {
		p := lookahead.New()
		p.SetEpsilon()
		p.EpsilonDepth = bitset.Of(k)
		return p
	}
	return a.Follow(k, end)
}

// lookRuleRef computes FIRST of the target rule, restricted to the local
// FOLLOW of this call site: for every depth at which the target rule may
// end, the lookahead continues with the elements after the reference.
func (a *Analyzer) lookRuleRef(k int, rr *grammar.RuleRef) *lookahead.Lookahead {
	rs := a.g.Rule(rr.Target)
	if rs == nil || !rs.Defined || rs.Block == nil {
		a.g.Error(rr.Pos, "no definition of rule %s", rr.Target)
		return lookahead.New()
	}
	end := rs.Block.End
	saveNoFollow := end.NoFollow
	end.NoFollow = true
	p := a.lookRule(k, rs.Block)
	end.NoFollow = saveNoFollow
	if p.Cycle != "" {
		a.g.Error(rr.Pos, "infinite recursion to rule %s from rule %s", p.Cycle, rr.EnclosingRule)
	}
	if p.ContainsEpsilon() {
		p.ResetEpsilon()
		depths := p.EpsilonDepth.ToArray()
		p.EpsilonDepth = nil
		for _, d := range depths {
			p.CombineWith(a.Look(d, rr.Next()))
		}
	}
	return p
}

// LookRule computes FIRST at depth k of the rule with the given name. Where
// the rule may end before depth k, the result contains epsilon and the
// depths at which the end was hit. FOLLOW of the rule is not included, as
// the result is cached for call sites.
func (a *Analyzer) LookRule(k int, name string) *lookahead.Lookahead {
	rs := a.g.Rule(name)
	if rs == nil || !rs.Defined || rs.Block == nil {
		a.g.Error(scanner.Position{}, "no definition of rule %s", name)
		return lookahead.New()
	}
	end := rs.Block.End
	saveNoFollow := end.NoFollow
	end.NoFollow = true
	defer func() { end.NoFollow = saveNoFollow }()
	return a.lookRule(k, rs.Block)
}

// lookRule returns FIRST of a rule at depth k, either from the rule's cache
// or computed with the rule locked at depth k. Hitting a locked rule means
// left recursion; the result then carries a cycle to the rule.
func (a *Analyzer) lookRule(k int, rb *grammar.RuleBlock) *lookahead.Lookahead {
	if rb.Lock.Locked(k) {
		a.debugf("look(%d, %s): cycle", k, rb.Name)
		return lookahead.CycleOf(rb.Name)
	}
	if c := cached(rb.Cache, k); c != nil {
		a.debugf("look(%d, %s) from cache: %s", k, rb.Name, a.format(c))
		return c.Clone()
	}
	p := a.lockedLookRule(k, rb)
	store(&rb.Cache, k, p.Clone())
	a.debugf("look(%d, %s) = %s", k, rb.Name, a.format(p))
	return p
}

func (a *Analyzer) lockedLookRule(k int, rb *grammar.RuleBlock) *lookahead.Lookahead {
	release := rb.Lock.Acquire(k)
	defer release()
	return a.lookAlts(k, rb.Body)
}

// --- Competing alternatives ------------------------------------------------

// removeCompetingPredictionSets removes from b whatever the alternatives
// preceding the one under analysis predict at k=1. It applies only if el
// is the head of that alternative, or the root of a tree at its head.
func (a *Analyzer) removeCompetingPredictionSets(b *bitset.BitSet, el grammar.Element) {
	blk := a.currentBlock
	if blk == nil {
		return
	}
	alt := a.analysisAlt[blk]
	if alt >= blk.Len() {
		return
	}
	head := blk.Alt(alt).Head()
	if tree, ok := head.(*grammar.Block); ok && tree.Kind == grammar.Tree {
		if tree.Root != el {
			return
		}
	} else if head != el {
		return
	}
	for i := 0; i < alt; i++ {
		b.SubtractInPlace(a.Look(1, blk.Alt(i).Head()).Set)
	}
}

// --- Caches ----------------------------------------------------------------

// cached returns the cache entry for depth k, or nil.
func cached(cache []*lookahead.Lookahead, k int) *lookahead.Lookahead {
	if k < len(cache) {
		return cache[k]
	}
	return nil
}

// store sets the cache entry for depth k, growing the cache if necessary.
func store(cache *[]*lookahead.Lookahead, k int, la *lookahead.Lookahead) {
	if k >= len(*cache) {
		grown := make([]*lookahead.Lookahead, k+1)
		copy(grown, *cache)
		*cache = grown
	}
	(*cache)[k] = la
}
