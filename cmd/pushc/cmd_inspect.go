package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"pushc/internal/ast"
	"pushc/internal/diag"
	"pushc/internal/parser"
	"pushc/internal/prelude"
)

// inspectCmd parses one file and opens an interactive AST browser,
// which is the quickest way to see what a grammar change in a prelude
// actually does to the tree.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Browse the parsed AST of a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	sink := diag.NewSink(diag.DefaultCaps())

	var cfg *prelude.Config
	var err error
	if flagPrelude != "" {
		cfg, err = prelude.LoadFile(flagPrelude, sink)
	} else {
		cfg, err = prelude.Load("push", stdlibDir, sink)
	}
	if err != nil {
		return err
	}

	root, err := parser.ParseFile(args[0], cfg, sink)
	if err != nil {
		return err
	}

	items := flattenAST(root, 0, nil)
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New(items, delegate, 80, 30)
	l.Title = "AST of " + args[0]
	l.Styles.Title = lipgloss.NewStyle().Bold(true)

	m := inspectModel{list: l}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// astItem is one flattened AST row for the list widget.
type astItem struct {
	title string
	desc  string
}

func (i astItem) Title() string       { return i.title }
func (i astItem) Description() string { return i.desc }
func (i astItem) FilterValue() string { return i.title }

// flattenAST performs a pre-order walk, indenting titles by depth.
func flattenAST(n *ast.Node, depth int, items []list.Item) []list.Item {
	if n == nil {
		return items
	}
	title := strings.Repeat("  ", depth) + n.Kind.String()
	if n.Token.Content != "" {
		title += fmt.Sprintf(" %q", n.Token.Content)
	}
	desc := fmt.Sprintf("%d children", len(n.Children)+len(n.Named))
	if n.Pos.Line > 0 {
		desc = fmt.Sprintf("line %d, col %d, %s", n.Pos.Line, n.Pos.Column, desc)
	}
	items = append(items, astItem{title: title, desc: desc})

	for _, c := range n.Children {
		items = flattenAST(c, depth+1, items)
	}
	keys := make([]int, 0, len(n.Named))
	for k := range n.Named {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	for _, k := range keys {
		items = flattenAST(n.Named[ast.ChildKey(k)], depth+1, items)
	}
	return items
}

type inspectModel struct {
	list list.Model
}

func (m inspectModel) Init() tea.Cmd { return nil }

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m inspectModel) View() string { return m.list.View() }
