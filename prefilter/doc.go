// Package prefilter gates string patterns behind an Aho-Corasick literal
// automaton.
//
// Backtracking scans are expensive; most windows cannot match most
// patterns. A match of a pattern must contain the literals of its
// non-optional Value elements, so a single multi-literal search over the
// window names the patterns worth scanning. Patterns without a usable
// required literal (predicates, regexes, references) always pass; the
// prefilter never rules out a pattern that could match.
package prefilter
