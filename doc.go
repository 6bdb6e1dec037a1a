/*
Package llk is a toolbox for linear approximate LL(k) grammar analysis.

LLK is the analytic core of a parser generator for LL(k) grammars.
Given a grammar made of rules, alternatives and nested subrules, it computes
for every decision point how many symbols of lookahead are needed to choose
an alternative, computes FIRST and FOLLOW sets per rule and lookahead depth,
and reports ambiguities. Package structure is as follows:

■ bitset: Package bitset implements dense sets of token types or characters.

■ lookahead: Package lookahead implements the per-depth lookahead descriptor.

■ grammar: Package grammar holds the grammar element graph, symbol tables and
a builder, driven by construction events from a grammar front end.

■ grammar/ebnfimport: Package ebnfimport builds grammars from EBNF productions.

■ analysis: Package analysis implements the LL(k) analyzer.

The base package contains predefined token types and formatting helpers used
throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package llk
