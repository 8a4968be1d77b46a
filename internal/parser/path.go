package parser

import (
	"pushc/internal/ast"
	"pushc/internal/grammar"
)

// path is one candidate parse branch. The history is a stack: ambiguous rule
// applications push one entry per fork, and path folding pops them
// back off once the ambiguity resolves.
type path struct {
	stack   []*ast.Node
	history []grammar.PrecedenceClass
}

// newPath returns the single starting path: an empty stack and a
// history containing the sentinel (MAX, MAX) class.
func newPath() *path {
	return &path{history: []grammar.PrecedenceClass{{From: grammar.MaxClass, To: grammar.MaxClass}}}
}

func (p *path) clone() *path {
	stack := make([]*ast.Node, len(p.stack))
	copy(stack, p.stack)
	history := make([]grammar.PrecedenceClass, len(p.history))
	copy(history, p.history)
	return &path{stack: stack, history: history}
}

func (p *path) top() *grammar.PrecedenceClass { return &p.history[len(p.history)-1] }
