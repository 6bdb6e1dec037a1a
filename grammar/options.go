package grammar

import (
	"strconv"

	"github.com/npillmayer/schuko"
)

// GrammarOptions lists the grammar level options understood by
// SetGrammarOption.
var GrammarOptions = []string{
	"k",
	"analyzerDebug",
	"defaultErrorHandler",
	"buildAST",
	"generateAmbigWarnings",
	"warnWhenFollowAmbig",
	"testLiterals",
	"caseSensitive",
	"caseSensitiveLiterals",
	"filter",
}

// SetGrammarOption interprets an entry of the grammar's options block.
// Options have to be set before the first rule is defined.
func (b *Builder) SetGrammarOption(key, value Token) {
	g := b.g
	tracer().Debugf("option %s = %s", key.Text, value.Text)
	switch key.Text {
	case "k":
		k, err := strconv.Atoi(value.Text)
		if err != nil || k <= 0 {
			g.Error(value.Pos, "k must be an integer > 0, is %q", value.Text)
			return
		}
		g.MaxK = k
	case "analyzerDebug":
		if v, ok := b.boolOption(key, value); ok {
			g.AnalyzerDebug = v
		}
	case "defaultErrorHandler":
		if v, ok := b.boolOption(key, value); ok {
			g.DefaultErrorHandler = v
		}
	case "buildAST":
		if g.IsLexer() {
			g.Error(key.Pos, "buildAST option is not valid for lexer")
			return
		}
		if v, ok := b.boolOption(key, value); ok {
			g.BuildAST = v
		}
	case "generateAmbigWarnings":
		if v, ok := b.boolOption(key, value); ok {
			g.GenerateAmbigWarnings = v
		}
	case "warnWhenFollowAmbig":
		if v, ok := b.boolOption(key, value); ok {
			g.WarnWhenFollowAmbig = v
		}
	case "testLiterals":
		if b.lexerOnly(key) {
			if v, ok := b.boolOption(key, value); ok {
				g.TestLiterals = v
			}
		}
	case "caseSensitive":
		if b.lexerOnly(key) {
			if v, ok := b.boolOption(key, value); ok {
				g.CaseSensitive = v
			}
		}
	case "caseSensitiveLiterals":
		if b.lexerOnly(key) {
			if v, ok := b.boolOption(key, value); ok {
				g.CaseSensitiveLiterals = v
			}
		}
	case "filter":
		if !b.lexerOnly(key) {
			return
		}
		switch value.Text {
		case "true":
			g.Filter = true
		case "false":
			g.Filter = false
		default:
			g.Filter = true
			g.FilterRule = value.Text
		}
	default:
		g.Warning(key.Pos, "Invalid option: %s", key.Text)
	}
}

// ApplyOptions reads the grammar level options from a configuration and
// sets those present. This allows option blocks to be parsed by any
// configuration adapter.
func (b *Builder) ApplyOptions(conf schuko.Configuration) {
	for _, key := range GrammarOptions {
		if conf.IsSet(key) {
			b.SetGrammarOption(MakeToken(key), MakeToken(conf.GetString(key)))
		}
	}
}
