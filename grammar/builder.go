package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"
	"unicode/utf8"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/llk/bitset"
)

// Token is a piece of grammar source handed to the builder: a name, a
// literal including its quotes, or action text.
type Token struct {
	Text string
	Pos  scanner.Position
}

// MakeToken creates a token without position.
func MakeToken(text string) Token {
	return Token{Text: text}
}

// At returns a copy of t located at line and column.
func (t Token) At(line, col int) Token {
	t.Pos.Line, t.Pos.Column = line, col
	return t
}

// Ref holds the optional decorations of an element reference.
type Ref struct {
	Label      *Token  // label:element
	Args       *Token  // rule arguments, lexer token references only otherwise
	IDAssign   *Token  // id=RULE
	Inverted   bool    // ~element
	AutoGen    AutoGen // ! or ^
	LastInRule bool    // no ignore rule is inserted after the last element
}

// Option configures a builder.
type Option func(*Grammar)

// WithTokenManager shares a token vocabulary between grammars.
func WithTokenManager(tm *TokenManager) Option {
	return func(g *Grammar) {
		g.Tokens = tm
	}
}

// WithFilename sets the name of the grammar source, used in diagnostics.
func WithFilename(filename string) Option {
	return func(g *Grammar) {
		g.Filename = filename
	}
}

// WithReporter forwards diagnostics to r.
func WithReporter(r Reporter) Option {
	return func(g *Grammar) {
		g.reporter = r
	}
}

// blockContext is an open block on the builder's stack.
type blockContext struct {
	block             *Block
	altNum            int       // index of the alternative under construction
	blockEnd          *BlockEnd // nil for rule bodies
	nextElementIsRoot bool      // trees: next element is the root
}

func (ctx *blockContext) currentAlt() *Alternative {
	if ctx.altNum >= len(ctx.block.Alternatives) {
		return nil
	}
	return ctx.block.Alternatives[ctx.altNum]
}

// Builder constructs a grammar from a sequence of construction events. The
// order of events has to mirror a well formed grammar source. A builder is
// used for a single grammar.
type Builder struct {
	g             *Grammar
	blocks        *arraystack.Stack // of *blockContext
	ruleBlock     *RuleBlock
	lastRuleRef   *RuleRef
	nested        int // nesting level of subrules within the current rule
	exceptionSpec *ExceptionSpec
	detached      bool // building the body of a redefined rule
}

// NewBuilder creates a builder for a grammar of the given kind.
func NewBuilder(name string, kind Kind, opts ...Option) *Builder {
	g := NewGrammar(name, kind, nil)
	for _, opt := range opts {
		opt(g)
	}
	tracer().Debugf("start %s grammar %s", kind, name)
	return &Builder{
		g:      g,
		blocks: arraystack.New(),
	}
}

// Grammar finishes construction. The grammar is returned even if errors
// have been reported, together with an error wrapping ErrGrammarFailed.
func (b *Builder) Grammar() (*Grammar, error) {
	if !b.blocks.Empty() {
		b.g.Panic(scanner.Position{}, "grammar ended with %d open blocks", b.blocks.Size())
	}
	if b.g.IsLexer() && b.g.FilterRule != "" {
		rs := b.g.Rule(b.g.FilterRule)
		if rs == nil || !rs.Defined {
			b.g.Error(scanner.Position{}, "Filter rule %s does not exist in this lexer", b.g.FilterRule)
		} else if rs.Access != "protected" {
			b.g.Error(rs.Block.Body.Pos, "Filter rule %s must be protected", b.g.FilterRule)
		}
	}
	if b.g.Failed() {
		return b.g, fmt.Errorf("%s: %w", b.g.Name, ErrGrammarFailed)
	}
	return b.g, nil
}

// HasError tells the builder that the front end found a syntax error.
func (b *Builder) HasError() {
	b.g.failed = true
}

func (b *Builder) context() *blockContext {
	ctx, ok := b.blocks.Peek()
	if !ok {
		b.g.Panic(scanner.Position{}, "no open block")
	}
	return ctx.(*blockContext)
}

func (b *Builder) push(ctx *blockContext) {
	b.blocks.Push(ctx)
}

func (b *Builder) pop() *blockContext {
	ctx, ok := b.blocks.Pop()
	if !ok {
		b.g.Panic(scanner.Position{}, "block stack underflow")
	}
	return ctx.(*blockContext)
}

func (b *Builder) addElementToCurrentAlt(e Element) {
	ctx := b.context()
	if b.ruleBlock != nil {
		e.Attrs().EnclosingRule = b.ruleBlock.Name
	}
	if ctx.nextElementIsRoot {
		ctx.block.Root = e
		ctx.nextElementIsRoot = false
		return
	}
	alt := ctx.currentAlt()
	if alt == nil {
		b.g.Panic(e.Attrs().Pos, "element %s outside of alternative", e)
	}
	alt.Add(e)
}

func (b *Builder) labelElement(e Element, label *Token) {
	if label == nil {
		return
	}
	for _, le := range b.ruleBlock.labeled {
		if le.Attrs().Label == label.Text {
			b.g.Error(label.Pos, "Label '%s' has already been defined", label.Text)
			return
		}
	}
	e.Attrs().Label = label.Text
	b.ruleBlock.labeled = append(b.ruleBlock.labeled, e)
}

// === Grammar level =========================================================

// SetCharVocabulary sets the characters a lexer works on.
func (b *Builder) SetCharVocabulary(vocab *bitset.BitSet) {
	if !b.g.IsLexer() {
		b.g.Error(scanner.Position{}, "charVocabulary is only valid in lexers")
		return
	}
	b.g.CharVocabulary = vocab.Clone()
}

// DefineToken defines a token in the tokens {...} section. Either name or
// literal may be nil; a name together with a literal labels the literal.
func (b *Builder) DefineToken(name, literal *Token) {
	tm := b.g.Tokens
	if literal == nil {
		if name == nil {
			return
		}
		if tm.TokenDefined(name.Text) {
			b.g.Warning(name.Pos, "Redefinition of token in tokens {...}: %s", name.Text)
			return
		}
		ts := NewTokenSymbol(name.Text)
		ts.Type = tm.NextTokenType()
		tm.Define(ts)
		return
	}
	if sl := tm.TokenSymbol(literal.Text); sl != nil {
		if name == nil || sl.Label != "" {
			b.g.Warning(literal.Pos, "Redefinition of literal in tokens {...}: %s", literal.Text)
			return
		}
		sl.Label = name.Text
		tm.MapToTokenSymbol(name.Text, sl)
		return
	}
	if name != nil {
		if ts := tm.TokenSymbol(name.Text); ts != nil {
			if ts.Literal {
				b.g.Warning(name.Pos, "Redefinition of token in tokens {...}: %s", name.Text)
				return
			}
			// plain token gets a literal: keep its type
			sl := NewLiteralSymbol(literal.Text)
			sl.Type = ts.Type
			sl.Label = name.Text
			tm.Define(sl)
			tm.MapToTokenSymbol(name.Text, sl)
			return
		}
	}
	sl := NewLiteralSymbol(literal.Text)
	sl.Type = tm.NextTokenType()
	tm.Define(sl)
	if name != nil {
		sl.Label = name.Text
		tm.MapToTokenSymbol(name.Text, sl)
	}
}

// RefTokensSpecElementOption sets an option for an entry of the
// tokens {...} section.
func (b *Builder) RefTokensSpecElementOption(tok, option, value Token) {
	ts := b.g.Tokens.TokenSymbol(tok.Text)
	if ts == nil {
		b.g.Error(tok.Pos, "cannot find %s in tokens {...}", tok.Text)
		return
	}
	if option.Text != "AST" {
		b.g.Error(option.Pos, "invalid tokens {...} element option: %s", option.Text)
		return
	}
	ts.ASTNodeType = value.Text
}

// === Rules =================================================================

// DefineRuleName opens a rule. Rule names starting with an upper case
// letter denote lexer rules.
func (b *Builder) DefineRuleName(r Token, access string, autoGen bool, doc string) {
	name := r.Text
	if name == "" {
		b.g.Panic(r.Pos, "rule without name")
	}
	if isTokenName(name) {
		if !b.g.IsLexer() {
			b.g.Error(r.Pos, "Lexical rule %s defined outside of lexer", name)
			name = strings.ToLower(name[:1]) + name[1:]
		}
	} else if b.g.IsLexer() {
		b.g.Error(r.Pos, "Lexical rule names must be upper case, '%s' is not", name)
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	if access == "" {
		access = "public"
	}
	if b.g.IsLexer() && !b.g.Tokens.TokenDefined(name) {
		ts := NewTokenSymbol(name)
		ts.Type = b.g.Tokens.NextTokenType()
		b.g.Tokens.Define(ts)
	}
	rs := b.g.resolveOrDefineRule(name)
	rb := newRuleBlock(b.g, name)
	rb.Access = access
	if !autoGen {
		rb.Body.AutoGen = AutoGenBang
	}
	rb.Body.Pos = r.Pos
	rb.End.Pos = r.Pos
	b.detached = rs.Defined
	if rs.Defined {
		// keep the first definition; the new body is built but not attached
		b.g.Error(r.Pos, "redefinition of rule %s", name)
	} else {
		rs.Defined = true
		rs.Access = access
		rs.Comment = doc
		rs.Block = rb
	}
	b.ruleBlock = rb
	b.nested = 0
	b.push(&blockContext{block: rb.Body})
	tracer().Debugf("rule %s", name)
}

// SetRuleOption sets an option of the current rule.
func (b *Builder) SetRuleOption(key, value Token) {
	rb := b.ruleBlock
	switch key.Text {
	case "defaultErrorHandler":
		if v, ok := b.boolOption(key, value); ok {
			rb.DefaultErrorHandler = v
		}
	case "generateAmbigWarnings":
		if v, ok := b.boolOption(key, value); ok {
			rb.Body.GenerateAmbigWarnings = v
		}
	case "warnWhenFollowAmbig":
		if v, ok := b.boolOption(key, value); ok {
			rb.Body.WarnWhenFollowAmbig = v
		}
	case "testLiterals":
		if b.lexerOnly(key) {
			if v, ok := b.boolOption(key, value); ok {
				rb.TestLiterals = v
			}
		}
	case "ignore":
		if b.lexerOnly(key) {
			rb.IgnoreRule = value.Text
		}
	case "paraphrase":
		if b.lexerOnly(key) {
			ts := b.g.Tokens.TokenSymbol(rb.Name)
			if ts == nil {
				b.g.Panic(key.Pos, "cannot find token associated with rule %s", rb.Name)
			}
			ts.Paraphrase = value.Text
		}
	default:
		b.g.Error(key.Pos, "Invalid rule option: %s", key.Text)
	}
}

// RefArgAction sets the argument declaration of the current rule.
func (b *Builder) RefArgAction(action Token) {
	b.ruleBlock.ArgAction = action.Text
}

// RefReturnAction sets the return declaration of the current rule.
func (b *Builder) RefReturnAction(returnAction Token) {
	if b.g.IsLexer() && b.ruleBlock.Access == "public" {
		b.g.Warning(returnAction.Pos, "public Lexical rules cannot specify return type")
		return
	}
	b.ruleBlock.ReturnAction = returnAction.Text
}

// SetUserExceptions sets the throws clause of the current rule.
func (b *Builder) SetUserExceptions(throws string) {
	b.ruleBlock.ThrowsSpec = throws
}

// EndRule closes the current rule.
func (b *Builder) EndRule(name string) {
	ctx := b.pop()
	if ctx.block.Kind != RuleBody {
		b.g.Panic(ctx.block.Pos, "end of rule %s with open subrule", name)
	}
	b.ruleBlock.prepareForAnalysis(b.g.MaxK)
	tracer().Debugf("end of rule %s with %d alternatives", name, ctx.block.Len())
}

// === Alternatives ==========================================================

// BeginAlt opens a new alternative in the current block.
func (b *Builder) BeginAlt(autoGen bool) {
	alt := NewAlternative()
	alt.AutoGen = autoGen
	b.context().block.AddAlternative(alt)
}

// EndAlt closes the current alternative with the appropriate sentinel.
func (b *Builder) EndAlt() {
	ctx := b.context()
	if b.nested == 0 {
		b.addElementToCurrentAlt(b.ruleBlock.End)
	} else {
		b.addElementToCurrentAlt(ctx.blockEnd)
	}
	ctx.altNum++
}

// RefTreeSpecifier sets the tree construction action of the current
// alternative.
func (b *Builder) RefTreeSpecifier(treeSpec Token) {
	b.context().currentAlt().TreeSpecifier = treeSpec.Text
}

// === Subrules ==============================================================

// BeginSubRule opens a subrule. Its kind is decided later by one of
// OneOrMoreSubRule, ZeroOrMoreSubRule, OptionalSubRule or SynPred.
func (b *Builder) BeginSubRule(label *Token, start Token, not bool) {
	blk := newBlock(b.g, Subrule)
	blk.Pos = start.Pos
	blk.Not = not
	end := &BlockEnd{Block: blk}
	end.Pos = start.Pos
	blk.End = end
	b.push(&blockContext{block: blk, blockEnd: end})
	b.nested++
	b.labelElement(blk, label)
}

// OneOrMoreSubRule turns the open subrule into a (...)+ loop.
func (b *Builder) OneOrMoreSubRule() {
	b.convertBlock(OneOrMore, "(...)+")
}

// ZeroOrMoreSubRule turns the open subrule into a (...)* loop.
func (b *Builder) ZeroOrMoreSubRule() {
	b.convertBlock(ZeroOrMore, "(...)*")
}

// SynPred turns the open subrule into a syntactic predicate.
func (b *Builder) SynPred() {
	b.convertBlock(SynPred, "syntactic predicate")
}

// OptionalSubRule makes the open subrule optional by adding an empty
// alternative.
func (b *Builder) OptionalSubRule() {
	if b.context().block.Not {
		b.g.Error(b.context().block.Pos, "'~' cannot be applied to (...)? subrule")
	}
	b.BeginAlt(false)
	b.EndAlt()
}

// NoAutoGenSubRule switches off AST generation for the open subrule.
func (b *Builder) NoAutoGenSubRule() {
	b.context().block.AutoGen = AutoGenBang
}

func (b *Builder) convertBlock(kind BlockKind, what string) {
	blk := b.context().block
	if blk.Not {
		b.g.Error(blk.Pos, "'~' cannot be applied to %s subrule", what)
	}
	blk.Kind = kind
}

// SetSubruleOption sets an option of the open subrule.
func (b *Builder) SetSubruleOption(key, value Token) {
	blk := b.context().block
	switch key.Text {
	case "greedy":
		if v, ok := b.boolOption(key, value); ok {
			blk.Greedy = v
			blk.GreedySet = true
		}
	case "generateAmbigWarnings":
		if v, ok := b.boolOption(key, value); ok {
			blk.GenerateAmbigWarnings = v
		}
	case "warnWhenFollowAmbig":
		if v, ok := b.boolOption(key, value); ok {
			blk.WarnWhenFollowAmbig = v
		}
	default:
		b.g.Error(key.Pos, "Invalid subrule option: %s", key.Text)
	}
}

// RefInitAction sets the init action of the open block.
func (b *Builder) RefInitAction(action Token) {
	b.context().block.InitAction = action.Text
}

// EndSubRule closes the open subrule. Syntactic predicates are attached to
// the enclosing alternative, all other subrules become elements of it.
func (b *Builder) EndSubRule() {
	b.nested--
	ctx := b.pop()
	blk := ctx.block
	if blk.Not && blk.Kind == Subrule && !CanBeInverted(blk, b.g.IsLexer()) {
		b.g.Error(blk.Pos, "This subrule cannot be inverted.  Only subrules of the form:\n"+
			"    (T1|T2|T3...) or\n    ('c1'|'c2'|'c3'...)\n"+
			"may be inverted (ranges are also allowed).")
	}
	if blk.Kind == SynPred {
		outer := b.context()
		outer.block.HasASynPred = true
		outer.currentAlt().SynPred = blk
		blk.EnclosingRule = b.ruleBlock.Name
		b.g.HasSyntacticPredicate = true
		b.untrackRuleRefs(blk)
	} else {
		b.addElementToCurrentAlt(blk)
	}
	blk.prepareForAnalysis(b.g.MaxK)
}

// untrackRuleRefs removes the rule references within a syntactic predicate
// from the call site lists, as they do not contribute to FOLLOW sets.
func (b *Builder) untrackRuleRefs(blk *Block) {
	for _, alt := range blk.Alternatives {
		for _, e := range alt.Elements() {
			switch x := e.(type) {
			case *RuleRef:
				if rs := b.g.Rule(x.Target); rs != nil {
					rs.RemoveReference(x)
				} else {
					b.g.Error(x.Pos, "rule %s referenced in (...)=>, but not defined", x.Target)
				}
			case *Block:
				b.untrackRuleRefs(x)
			}
		}
	}
}

// === Trees =================================================================

// BeginTree opens a tree #( … ). The next element referenced will be the
// root. Trees are only allowed in tree walkers.
func (b *Builder) BeginTree(tok Token) error {
	if b.g.Kind != TreeWalker {
		b.g.Error(tok.Pos, "Trees only allowed in TreeParser")
		return fmt.Errorf("%s: trees only allowed in tree walkers", tok.Pos)
	}
	tree := newBlock(b.g, Tree)
	tree.Pos = tok.Pos
	b.push(&blockContext{block: tree, nextElementIsRoot: true})
	return nil
}

// BeginChildList opens the list of children of the open tree.
func (b *Builder) BeginChildList() {
	b.context().block.AddAlternative(NewAlternative())
}

// EndChildList closes the list of children of the open tree.
func (b *Builder) EndChildList() {
	ctx := b.context()
	end := &BlockEnd{Block: ctx.block}
	end.Pos = ctx.block.Pos
	ctx.block.End = end
	b.addElementToCurrentAlt(end)
}

// EndTree closes the open tree and adds it to the enclosing alternative.
func (b *Builder) EndTree() {
	ctx := b.pop()
	ctx.block.prepareForAnalysis(b.g.MaxK)
	b.addElementToCurrentAlt(ctx.block)
}

// === Element references ====================================================

// RefAction adds a user action.
func (b *Builder) RefAction(action Token) {
	a := &Action{Text: action.Text}
	a.Pos = action.Pos
	b.context().block.HasAnAction = true
	b.addElementToCurrentAlt(a)
}

// RefSemPred adds a semantic predicate. At the start of an alternative it
// guards the alternative; elsewhere it is a predicate action.
func (b *Builder) RefSemPred(pred Token) {
	alt := b.context().currentAlt()
	if alt != nil && alt.AtStart() {
		alt.SemPred = pred.Text
		return
	}
	a := &Action{Text: pred.Text, IsSemPred: true}
	a.Pos = pred.Pos
	b.addElementToCurrentAlt(a)
}

// RefCharLiteral references a character literal. Lexers only.
func (b *Builder) RefCharLiteral(lit Token, ref Ref) {
	if !b.g.IsLexer() {
		b.g.Error(lit.Pos, "Character literal only valid in lexer")
		return
	}
	c, ok := charLiteralValue(lit.Text)
	if !ok {
		b.g.Error(lit.Pos, "invalid character literal %s", lit.Text)
		return
	}
	if !b.g.CaseSensitive && c < 128 && unicode.ToLower(rune(c)) != rune(c) {
		b.g.Warning(lit.Pos, "Character literal must be lowercase when caseSensitive=false")
	}
	cl := &CharLiteral{Text: lit.Text, Char: c}
	cl.Pos, cl.Not, cl.AutoGen = lit.Pos, ref.Inverted, ref.AutoGen
	b.addElementToCurrentAlt(cl)
	b.labelElement(cl, ref.Label)
	b.insertIgnore(lit, ref)
}

// RefCharRange references a character range. Lexers only.
func (b *Builder) RefCharRange(t1, t2 Token, ref Ref) {
	if !b.g.IsLexer() {
		b.g.Error(t1.Pos, "Character range only valid in lexer")
		return
	}
	lo, ok1 := charLiteralValue(t1.Text)
	hi, ok2 := charLiteralValue(t2.Text)
	if !ok1 || !ok2 {
		b.g.Error(t1.Pos, "invalid character range %s..%s", t1.Text, t2.Text)
		return
	}
	if hi < lo {
		b.g.Error(t1.Pos, "Malformed range.")
		return
	}
	if !b.g.CaseSensitive {
		if lo < 128 && unicode.ToLower(rune(lo)) != rune(lo) {
			b.g.Warning(t1.Pos, "Character literal must be lowercase when caseSensitive=false")
		}
		if hi < 128 && unicode.ToLower(rune(hi)) != rune(hi) {
			b.g.Warning(t2.Pos, "Character literal must be lowercase when caseSensitive=false")
		}
	}
	if ref.Inverted {
		b.g.Error(t1.Pos, "'~' cannot be applied to a range, use ~( %s..%s )", t1.Text, t2.Text)
	}
	cr := &CharRange{BeginText: t1.Text, EndText: t2.Text, Begin: lo, End: hi}
	cr.Pos, cr.AutoGen = t1.Pos, ref.AutoGen
	b.addElementToCurrentAlt(cr)
	b.labelElement(cr, ref.Label)
	b.insertIgnore(t1, ref)
}

// RefStringLiteral references a string literal. Outside of lexers the
// literal is a token type of its own, assigned on first reference.
func (b *Builder) RefStringLiteral(lit Token, ref Ref) {
	if !b.g.IsLexer() && !b.g.Tokens.TokenDefined(lit.Text) {
		sl := NewLiteralSymbol(lit.Text)
		sl.Type = b.g.Tokens.NextTokenType()
		b.g.Tokens.Define(sl)
	}
	if b.g.Kind == TreeWalker && ref.AutoGen == AutoGenCaret {
		b.g.Error(lit.Pos, "^ not allowed in here for tree-walker")
	}
	sl := &StringLiteral{Text: lit.Text, Processed: stringLiteralValue(lit.Text)}
	sl.Pos, sl.Not, sl.AutoGen = lit.Pos, ref.Inverted, ref.AutoGen
	if ts := b.g.Tokens.TokenSymbol(lit.Text); ts != nil {
		sl.TokenType = ts.Type
		sl.ASTNodeType = ts.ASTNodeType
	}
	if b.g.IsLexer() && !b.g.CaseSensitive {
		for _, c := range sl.Processed {
			if c < 128 && unicode.ToLower(c) != c {
				b.g.Warning(lit.Pos, "Characters of string literal must be lowercase when caseSensitive=false")
				break
			}
		}
	}
	b.addElementToCurrentAlt(sl)
	b.labelElement(sl, ref.Label)
	b.insertIgnore(lit, ref)
}

// RefToken references a token. In lexers, token references are calls of
// lexer rules.
func (b *Builder) RefToken(t Token, ref Ref) {
	if b.g.IsLexer() {
		if ref.AutoGen == AutoGenCaret {
			b.g.Error(t.Pos, "AST specification ^ not allowed in lexer")
		}
		if ref.Inverted {
			b.g.Error(t.Pos, "~TOKEN is not allowed in lexer")
		}
		b.RefRule(t, ref)
		b.insertIgnore(t, ref)
		return
	}
	if ref.IDAssign != nil {
		b.g.Error(ref.IDAssign.Pos, "Assignment from token reference only allowed in lexer")
	}
	if ref.Args != nil {
		b.g.Error(ref.Args.Pos, "Token reference arguments only allowed in lexer")
	}
	ts := b.defineTokenRef(t.Text)
	tr := &TokenRef{Name: t.Text, TokenType: ts.Type, ASTNodeType: ts.ASTNodeType}
	tr.Pos, tr.Not, tr.AutoGen = t.Pos, ref.Inverted, ref.AutoGen
	b.addElementToCurrentAlt(tr)
	b.labelElement(tr, ref.Label)
}

// RefTokenRange references a range of token types. Not allowed in lexers.
func (b *Builder) RefTokenRange(t1, t2 Token, ref Ref) {
	if b.g.IsLexer() {
		b.g.Error(t1.Pos, "Token range not allowed in lexer")
		return
	}
	lo := b.defineTokenOrLiteral(t1.Text)
	hi := b.defineTokenOrLiteral(t2.Text)
	if hi.Type < lo.Type {
		b.g.Error(t1.Pos, "Malformed range.")
		return
	}
	if ref.Inverted {
		b.g.Error(t1.Pos, "'~' cannot be applied to a range, use ~( %s..%s )", t1.Text, t2.Text)
	}
	tr := &TokenRange{BeginText: t1.Text, EndText: t2.Text, Begin: lo.Type, End: hi.Type}
	tr.Pos, tr.AutoGen = t1.Pos, ref.AutoGen
	b.addElementToCurrentAlt(tr)
	b.labelElement(tr, ref.Label)
}

// RefRule references a rule. The rule need not be defined yet.
func (b *Builder) RefRule(r Token, ref Ref) {
	if b.g.IsLexer() {
		if !isTokenName(r.Text) {
			b.g.Error(r.Pos, "Parser rule %s referenced in lexer", r.Text)
			return
		}
		if ref.AutoGen == AutoGenCaret {
			b.g.Error(r.Pos, "AST specification ^ not allowed in lexer")
		}
	}
	rs := b.g.resolveOrDefineRule(r.Text)
	rr := &RuleRef{Target: r.Text}
	rr.Pos, rr.AutoGen = r.Pos, ref.AutoGen
	if ref.Args != nil {
		rr.Args = ref.Args.Text
	}
	if ref.IDAssign != nil {
		rr.IDAssign = ref.IDAssign.Text
	}
	b.lastRuleRef = rr
	b.addElementToCurrentAlt(rr)
	b.trackReference(rs, rr)
	b.labelElement(rr, ref.Label)
}

// trackReference records rr as a call site of rs, unless rr is part of a
// detached rule body.
func (b *Builder) trackReference(rs *RuleSymbol, rr *RuleRef) {
	if b.detached {
		return
	}
	rs.AddReference(rr)
}

// SetArgOfRuleRef sets the arguments of the most recent rule reference.
func (b *Builder) SetArgOfRuleRef(args Token) {
	if b.lastRuleRef != nil {
		b.lastRuleRef.Args = args.Text
	}
}

// RefWildcard references the wildcard '.'.
func (b *Builder) RefWildcard(t Token, ref Ref) {
	wc := &Wildcard{}
	wc.Pos, wc.AutoGen = t.Pos, ref.AutoGen
	b.addElementToCurrentAlt(wc)
	b.labelElement(wc, ref.Label)
}

// RefElementOption sets an option of the most recent element.
func (b *Builder) RefElementOption(option, value Token) {
	alt := b.context().currentAlt()
	var e Element
	if alt != nil {
		e = alt.Tail()
	}
	switch x := e.(type) {
	case *StringLiteral:
		b.setAtomOption(option, value, &x.ASTNodeType)
	case *TokenRef:
		b.setAtomOption(option, value, &x.ASTNodeType)
	case *Wildcard:
		b.setAtomOption(option, value, &x.ASTNodeType)
	default:
		b.g.Error(option.Pos, "cannot use element option (%s) for this kind of element", option.Text)
	}
}

func (b *Builder) setAtomOption(option, value Token, astNodeType *string) {
	if option.Text != "AST" {
		b.g.Error(option.Pos, "Invalid element option: %s", option.Text)
		return
	}
	*astNodeType = value.Text
}

// insertIgnore adds an optional reference of the current rule's ignore
// rule after an element, unless the element is the last one in its rule.
func (b *Builder) insertIgnore(start Token, ref Ref) {
	if ref.LastInRule || b.ruleBlock.IgnoreRule == "" || !b.g.IsLexer() {
		return
	}
	b.addElementToCurrentAlt(b.createOptionalRuleRef(b.ruleBlock.IgnoreRule, start))
}

// createOptionalRuleRef builds ( rule )? as a detached block.
func (b *Builder) createOptionalRuleRef(rule string, start Token) *Block {
	blk := newBlock(b.g, Subrule)
	blk.Pos = start.Pos
	blk.EnclosingRule = b.ruleBlock.Name
	end := &BlockEnd{Block: blk}
	end.Pos = start.Pos
	blk.End = end
	rs := b.g.resolveOrDefineRule(rule)
	rr := &RuleRef{Target: rule}
	rr.Pos = start.Pos
	rr.EnclosingRule = b.ruleBlock.Name
	b.trackReference(rs, rr)
	alt := NewAlternative()
	alt.Add(rr)
	alt.Add(end)
	blk.AddAlternative(alt)
	opt := NewAlternative()
	opt.Add(end)
	blk.AddAlternative(opt)
	blk.prepareForAnalysis(b.g.MaxK)
	return blk
}

// === Exception groups ======================================================

// BeginExceptionGroup opens a group of exception specs for the current rule.
func (b *Builder) BeginExceptionGroup() {
	if b.context().block.Kind != RuleBody {
		b.g.Panic(b.context().block.Pos, "beginExceptionGroup called outside of rule block")
	}
}

// BeginExceptionSpec opens an exception spec, optionally for a label.
func (b *Builder) BeginExceptionSpec(label *Token) {
	spec := &ExceptionSpec{}
	if label != nil {
		spec.Label = strings.TrimSpace(label.Text)
	}
	b.exceptionSpec = spec
}

// RefExceptionHandler adds a handler to the open exception spec.
func (b *Builder) RefExceptionHandler(exTypeAndName, action Token) {
	if b.exceptionSpec == nil {
		b.g.Panic(exTypeAndName.Pos, "exception handler processing internal error")
	}
	b.exceptionSpec.Handlers = append(b.exceptionSpec.Handlers,
		ExceptionHandler{TypeAndName: exTypeAndName.Text, Action: action.Text})
}

// EndExceptionSpec closes the open exception spec and attaches it to the
// current rule or alternative.
func (b *Builder) EndExceptionSpec() {
	spec := b.exceptionSpec
	if spec == nil {
		b.g.Panic(scanner.Position{}, "exception processing internal error -- no active exception spec")
	}
	b.exceptionSpec = nil
	ctx := b.context()
	if ctx.block.Kind == RuleBody {
		rb := b.ruleBlock
		if rb.ExceptionSpec(spec.Label) != nil {
			if spec.Label != "" {
				b.g.Error(rb.Body.Pos, "Rule '%s' already has an exception handler for label: %s", rb.Name, spec.Label)
			} else {
				b.g.Error(rb.Body.Pos, "Rule '%s' already has an exception handler", rb.Name)
			}
			return
		}
		rb.exceptionSpecs.Put(spec.Label, spec)
		return
	}
	alt := ctx.currentAlt()
	if alt.ExceptionSpec != nil {
		b.g.Error(ctx.block.Pos, "Alternative already has an exception specification")
		return
	}
	alt.ExceptionSpec = spec
}

// EndExceptionGroup closes a group of exception specs.
func (b *Builder) EndExceptionGroup() {}

// === Helpers ===============================================================

// defineTokenRef returns the token symbol for a token name, assigning a new
// token type on first reference.
func (b *Builder) defineTokenRef(name string) *TokenSymbol {
	tm := b.g.Tokens
	ts := tm.TokenSymbol(name)
	if ts == nil {
		ts = NewTokenSymbol(name)
		ts.Type = tm.NextTokenType()
		tm.Define(ts)
	}
	return ts
}

func (b *Builder) defineTokenOrLiteral(text string) *TokenSymbol {
	if strings.HasPrefix(text, `"`) {
		if ts := b.g.Tokens.TokenSymbol(text); ts != nil {
			return ts
		}
		sl := NewLiteralSymbol(text)
		sl.Type = b.g.Tokens.NextTokenType()
		b.g.Tokens.Define(sl)
		return sl
	}
	return b.defineTokenRef(text)
}

func (b *Builder) lexerOnly(key Token) bool {
	if !b.g.IsLexer() {
		b.g.Error(key.Pos, "%s option only valid for lexer", key.Text)
		return false
	}
	return true
}

func (b *Builder) boolOption(key, value Token) (bool, bool) {
	switch value.Text {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	b.g.Error(value.Pos, "Value for %s must be true or false", key.Text)
	return false, false
}

// isTokenName is a predicate: does name denote a token (or lexer rule)?
func isTokenName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// charLiteralValue decodes a character literal like 'a' or '\n'.
func charLiteralValue(text string) (int, bool) {
	if len(text) < 3 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return 0, false
	}
	body := text[1 : len(text)-1]
	r, _, tail, err := strconv.UnquoteChar(body, '\'')
	if err != nil || tail != "" {
		return 0, false
	}
	return int(r), true
}

// stringLiteralValue decodes a string literal like "abc" into characters.
// Malformed escapes are taken literally.
func stringLiteralValue(text string) []rune {
	if s, err := strconv.Unquote(text); err == nil {
		return []rune(s)
	}
	return []rune(strings.Trim(text, `"`))
}
