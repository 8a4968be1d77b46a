package parser

import (
	"pushc/internal/ast"
	"pushc/internal/grammar"
	"pushc/internal/lexer"
)

// matchResult is one winning rule application: the rule, the matched
// window in forward (left-to-right) order, any static_statement nodes
// siphoned out of the matched region, how many raw top-of-stack
// elements it consumed (cutout), and the separable remainder: the
// prefix of a re-split node's original_list that did not fit into the
// window and must be re-pushed below the constructed node. rest is held nearest-to-top first (reverse stack order).
type matchResult struct {
	rule   *grammar.Rule
	window []*ast.Node
	stst   []*ast.Node
	cutout int
	rest   []*ast.Node
}

// findBest walks every rule in table order (pre-sorted by NewTable:
// bias descending, then precedence descending) and returns the
// lowest-precedence (or lowest-bias, when biases differ) rule whose
// reversed backtrace over stack matches, or nil if none does. Stack
// positions at depth < skip are excluded from re-splitting, so the
// just-pushed result of the previous application in this same round is
// not immediately torn apart again.
func findBest(stack []*ast.Node, rules []*grammar.Rule, skip int) *matchResult {
	var best *grammar.Rule
	var bestRev, bestStst, bestRest []*ast.Node
	var bestCutout int

	for _, rule := range rules {
		useBias := best != nil && rule.HasPrecBias && best.HasPrecBias && rule.PrecBias != best.PrecBias
		ok := best == nil ||
			(!useBias && rule.Precedence <= best.Precedence) ||
			(useBias && rule.PrecBias < best.PrecBias)
		if !ok {
			continue
		}

		ruleLen := len(rule.Pattern)
		if ruleLen == 0 {
			continue
		}
		rev := make([]*ast.Node, 0, ruleLen)
		stst := []*ast.Node{}
		rest := []*ast.Node{}
		cutout := 0
		for idx := len(stack) - 1; idx >= 0 && len(rev) < ruleLen; idx-- {
			e := stack[idx]
			switch {
			case e.Kind == ast.KindStaticStatement:
				stst = append(stst, e)
			case cutout >= skip && e.IsSeparable() && shouldSplit(e, rule):
				splitPrependRecursively(e, &rev, &stst, &rest, rule, ruleLen)
			default:
				rev = append(rev, e)
			}
			cutout++
		}

		if matchesReversed(rule, rev) {
			best = rule
			bestRev = rev
			bestStst = stst
			bestRest = rest
			bestCutout = cutout
		}
	}

	if best == nil {
		return nil
	}
	window := make([]*ast.Node, len(bestRev))
	copy(window, bestRev)
	reverseNodes(window)
	return &matchResult{rule: best, window: window, stst: bestStst, cutout: bestCutout, rest: bestRest}
}

// shouldSplit reports whether a separable stack element must give up
// its OriginalList to a lower (or, for right-to-left rules, equal)
// precedence rule instead of being matched whole.
func shouldSplit(e *ast.Node, rule *grammar.Rule) bool {
	return rule.Precedence < e.Precedence || (rule.Assoc == grammar.RightToLeft && rule.Precedence == e.Precedence)
}

// splitPrependRecursively walks node's OriginalList back-to-front,
// recursing into any nested separable element that itself must split,
// and siphoning static statements. Elements that fill the window go
// into rev; once rev reaches ruleLen entries, the remaining (earlier)
// elements are the separable remainder and accumulate in rest, which
// the caller re-pushes onto the stack below the constructed node.
func splitPrependRecursively(node *ast.Node, rev, stst, rest *[]*ast.Node, rule *grammar.Rule, ruleLen int) {
	for i := len(node.OriginalList) - 1; i >= 0; i-- {
		e := node.OriginalList[i]
		switch {
		case e.Kind == ast.KindStaticStatement:
			*stst = append(*stst, e)
		case len(*rev) >= ruleLen:
			*rest = append(*rest, e)
		case e.IsSeparable() && shouldSplit(e, rule):
			splitPrependRecursively(e, rev, stst, rest, rule, ruleLen)
		default:
			*rev = append(*rev, e)
		}
	}
}

// matchesReversed compares rev (deepest/most-recently-pushed first)
// against rule's pattern read back to front, i.e. rev[i] against
// pattern[len-1-i].
func matchesReversed(rule *grammar.Rule, rev []*ast.Node) bool {
	n := len(rule.Pattern)
	if len(rev) != n {
		return false
	}
	for i, node := range rev {
		if !slotPattern(rule.Pattern[n-1-i]).Matches(node) {
			return false
		}
	}
	return true
}

// slotPattern builds the synthetic ast.Node pattern a rule slot
// compares a candidate against, reusing ast.Node.Matches directly.
func slotPattern(slot grammar.Slot) *ast.Node {
	switch slot.Kind {
	case grammar.SlotLiteralToken:
		return &ast.Node{Kind: ast.KindToken, Token: lexer.Token{Content: slot.Literal}}
	case grammar.SlotProperty:
		return &ast.Node{Kind: ast.KindNone, Properties: slot.Props}
	default:
		return &ast.Node{Kind: slot.Node, Properties: slot.Props}
	}
}

func reverseNodes(nodes []*ast.Node) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}
