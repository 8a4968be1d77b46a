package prelude

import (
	"fmt"

	"pushc/internal/ast"
	"pushc/internal/grammar"
	"pushc/internal/lexer"
)

// applyMCI dispatches one define_mci_rule call's body (cursor positioned
// right after the MCI name identifier) and mutates c. Grounded directly
// on parse_mci_rule's per-MCI branches.
func applyMCI(c *Config, name string, r *reader) error {
	switch name {
	case "EXPRESSION_RULES":
		return applyExpressionRules(c, r)
	case "IDENTIFIER_RULES":
		return applyIdentifierRules(c, r)
	case "IDENTIFIER_CASE":
		return applyIdentifierCase(c, r)
	case "LITERAL_CHARACTER_ESCAPES":
		return applyLiteralCharacterEscapes(c, r)
	case "NEW_RANGE":
		return applyNewRange(c, r)
	case "NEW_LEVEL":
		return applyNewLevel(c, r)
	case "SYNTAX":
		return applySyntax(c, r)
	case "BASE_TYPE":
		return applyBaseType(c, r)
	case "TYPE_MEMORY_BLOB":
		return applyTypeMemoryBlob(c, r)
	case "NEW_LITERAL":
		return applyNewLiteral(c, r)
	default:
		return fmt.Errorf("unknown MCI %q", name)
	}
}

func applyExpressionRules(c *Config, r *reader) error {
	kind, err := r.getIdentifier()
	if err != nil {
		return err
	}
	switch kind {
	case "divide":
		if err := r.consumeComma(); err != nil {
			return err
		}
		s, err := r.getStringLiteral(c.Lexer.Escapes)
		if err != nil {
			return err
		}
		c.Lexer.StatDividers = append(c.Lexer.StatDividers, s)
	case "block", "term", "array":
		if err := r.consumeComma(); err != nil {
			return err
		}
		begin, err := r.getStringLiteral(c.Lexer.Escapes)
		if err != nil {
			return err
		}
		if err := r.consumeComma(); err != nil {
			return err
		}
		end, err := r.getStringLiteral(c.Lexer.Escapes)
		if err != nil {
			return err
		}
		replaceLevelDelimiters(c.Lexer, kind, begin, end)
	default:
		return fmt.Errorf("EXPRESSION_RULES: unknown kind %q", kind)
	}
	return nil
}

// replaceLevelDelimiters overrides the begin/end literals of the
// built-in block/term/array level.
func replaceLevelDelimiters(lc *lexer.Config, name, begin, end string) {
	for i := range lc.Levels {
		if lc.Levels[i].Name == name {
			lc.Levels[i].Begin = begin
			lc.Levels[i].End = end
			return
		}
	}
}

func applyIdentifierRules(c *Config, r *reader) error {
	mode, err := r.getIdentifier()
	if err != nil {
		return err
	}
	switch mode {
	case "no_spaces":
		c.SpaceBindsIdentifier = false
	case "spaces":
		c.SpaceBindsIdentifier = true
	case "unused":
		if err := r.consumeComma(); err != nil {
			return err
		}
		begin, err := r.getIdentifier()
		if err != nil {
			return err
		}
		if begin != "begin" {
			return fmt.Errorf("IDENTIFIER_RULES unused: expected %q, got %q", "begin", begin)
		}
		if err := r.consumeComma(); err != nil {
			return err
		}
		prefix, err := r.getStringLiteral(c.Lexer.Escapes)
		if err != nil {
			return err
		}
		c.UnusedPrefixes = append(c.UnusedPrefixes, prefix)
	default:
		return fmt.Errorf("IDENTIFIER_RULES: unknown mode %q", mode)
	}
	return nil
}

func applyIdentifierCase(c *Config, r *reader) error {
	category, err := r.getIdentifier()
	if err != nil {
		return err
	}
	if err := r.consumeComma(); err != nil {
		return err
	}
	caseName, err := r.getIdentifier()
	if err != nil {
		return err
	}
	switch caseName {
	case "snake", "pascal", "camel":
	default:
		return fmt.Errorf("IDENTIFIER_CASE: unknown case %q", caseName)
	}
	c.IdentifierCase[category] = caseName
	return nil
}

func applyLiteralCharacterEscapes(c *Config, r *reader) error {
	// The escape key is read untranslated: `"\n"` must register the
	// two-byte source text `\n`, not a newline byte.
	escape, err := r.getStringLiteral(nil)
	if err != nil {
		return err
	}
	if err := r.consumeComma(); err != nil {
		return err
	}
	value, err := r.getStringLiteral(c.Lexer.Escapes)
	if err != nil {
		return err
	}
	if len(value) == 0 {
		return fmt.Errorf("LITERAL_CHARACTER_ESCAPES: empty replacement for %q", escape)
	}
	c.Lexer.Escapes[escape] = []rune(value)[0]
	return nil
}

var rangeKindNames = map[string]lexer.RangeKind{
	"identifier":      lexer.RangeIdentifier,
	"operator":        lexer.RangeOp,
	"integer":         lexer.RangeInteger,
	"whitespace":      lexer.RangeWS,
	"opt_identifier":  lexer.RangeOptIdentifier,
}

func applyNewRange(c *Config, r *reader) error {
	rtName, err := r.getIdentifier()
	if err != nil {
		return err
	}
	rt, ok := rangeKindNames[rtName]
	if !ok {
		return fmt.Errorf("NEW_RANGE: unknown range type %q", rtName)
	}
	for r.peekIsComma() {
		if err := r.consumeComma(); err != nil {
			return err
		}
		from, err := r.getStringLiteral(c.Lexer.Escapes)
		if err != nil {
			return err
		}
		to := from
		// A pair's second literal immediately follows the first with no
		// intervening comma; a lone literal is followed directly by the
		// next pair's comma or the closing ')'.
		if !isCloseOrComma(r) {
			to, err = r.getStringLiteral(c.Lexer.Escapes)
			if err != nil {
				return err
			}
		}
		c.Lexer.AddRange(rt, []rune(from)[0], []rune(to)[0])
	}
	return nil
}

func isCloseOrComma(r *reader) bool {
	r.skipTrivia()
	return r.cur.Kind == lexer.KindTermEnd || (r.cur.Kind == lexer.KindOp && r.cur.Content == ",")
}

var levelKindNames = map[string]lexer.LevelKind{
	"NORMAL":       lexer.LevelNormal,
	"COMMENT":      lexer.LevelComment,
	"COMMENT_LINE": lexer.LevelCommentLine,
	"STRING":       lexer.LevelString,
}

func applyNewLevel(c *Config, r *reader) error {
	kindName, err := r.getIdentifier()
	if err != nil {
		return err
	}
	lk, ok := levelKindNames[kindName]
	if !ok {
		return fmt.Errorf("NEW_LEVEL: unknown level kind %q", kindName)
	}
	if err := r.consumeComma(); err != nil {
		return err
	}
	name, err := r.getIdentifier()
	if err != nil {
		return err
	}

	def := lexer.LevelDef{Name: name, Kind: lk, BeginKind: lexer.KindCommentBegin, EndKind: lexer.KindCommentEnd}
	switch lk {
	case lexer.LevelString:
		def.BeginKind, def.EndKind = lexer.KindStringBegin, lexer.KindStringEnd
	case lexer.LevelNormal:
		def.BeginKind, def.EndKind = lexer.KindBlockBegin, lexer.KindBlockEnd
	}
	var overlayTargets []string

	for r.peekIsComma() {
		if err := r.consumeComma(); err != nil {
			return err
		}
		switch r.peekContent() {
		case "overlay":
			if _, err := r.getIdentifier(); err != nil {
				return err
			}
			outer, err := r.getIdentifier()
			if err != nil {
				return err
			}
			overlayTargets = append(overlayTargets, outer)
		case "prefix":
			if lk != lexer.LevelString {
				return fmt.Errorf("NEW_LEVEL: prefix only valid for STRING levels")
			}
			if _, err := r.getIdentifier(); err != nil {
				return err
			}
			if _, err := r.getStringLiteral(c.Lexer.Escapes); err != nil {
				return err
			}
		case "rep_delimiter":
			if lk != lexer.LevelString {
				return fmt.Errorf("NEW_LEVEL: rep_delimiter only valid for STRING levels")
			}
			if _, err := r.getIdentifier(); err != nil {
				return err
			}
			if _, err := r.getStringLiteral(c.Lexer.Escapes); err != nil {
				return err
			}
			if _, err := r.getStringLiteral(c.Lexer.Escapes); err != nil {
				return err
			}
		default:
			begin, err := r.getStringLiteral(c.Lexer.Escapes)
			if err != nil {
				return err
			}
			if err := r.consumeComma(); err != nil {
				return err
			}
			end, err := r.getStringLiteral(c.Lexer.Escapes)
			if err != nil {
				return err
			}
			def.Begin, def.End = begin, end
		}
	}
	c.Lexer.AddLevel(def, overlayTargets...)
	return nil
}

var syntaxTypeNames = map[string]grammar.SyntaxType{
	"OPERATOR":       grammar.SyntaxOperator,
	"MEMBER_ACCESS":  grammar.SyntaxOperator,
	"TYPED":          grammar.SyntaxOperator,
	"ASSIGNMENT":     grammar.SyntaxAssignment,
	"IMPLICATION":    grammar.SyntaxImplication,
	"SCOPE_ACCESS":   grammar.SyntaxScopeAccess,
	"ARRAY_ACCESS":   grammar.SyntaxArrayAccess,
	"RANGE":          grammar.SyntaxRange,
	"COMMA_OPERATOR": grammar.SyntaxCommaList,
	"FUNC_HEAD":           grammar.SyntaxFunctionHead,
	"FUNCTION_DEFINITION": grammar.SyntaxFunctionDef,
	"SIMPLE_BINDING":      grammar.SyntaxBinding,
	"ALIAS_BINDING":       grammar.SyntaxBinding,
	"IF_EXPRESSION":       grammar.SyntaxIfCond,
	"IF_ELSE_EXPRESSION":  grammar.SyntaxIfElse,
	"STRUCTURE":           grammar.SyntaxStructure,
	"TRAIT":               grammar.SyntaxTrait,
	"IMPLEMENTATION":      grammar.SyntaxImplementation,
	"MODULE_SPEC":         grammar.SyntaxModule,
	"INFINITE_LOOP":       grammar.SyntaxLoop,
	"ITERATOR_LOOP":       grammar.SyntaxLoop,
	"PRE_CONDITION_LOOP_CONTINUE":  grammar.SyntaxLoop,
	"PRE_CONDITION_LOOP_ABORT":     grammar.SyntaxLoop,
	"POST_CONDITION_LOOP_CONTINUE": grammar.SyntaxLoop,
	"POST_CONDITION_LOOP_ABORT":    grammar.SyntaxLoop,
	"STATIC_STATEMENT":             grammar.SyntaxStaticStatement,
	"TEMPLATE_POSTFIX":             grammar.SyntaxTemplatePostfix,
}

// loopAbortTypes names the SYNTAX type keywords whose loop is
// abort-style (ContinueEval=false) rather than continue-style; the
// other four loop keywords default to continue-style.
var loopAbortTypes = map[string]bool{
	"PRE_CONDITION_LOOP_ABORT":  true,
	"POST_CONDITION_LOOP_ABORT": true,
}

func applySyntax(c *Config, r *reader) error {
	typeStr, err := r.getIdentifier()
	if err != nil {
		return err
	}
	st, ok := syntaxTypeNames[typeStr]
	if !ok {
		return fmt.Errorf("SYNTAX: unsupported syntax type %q", typeStr)
	}
	if err := r.consumeComma(); err != nil {
		return err
	}

	rule := &grammar.Rule{Name: typeStr, Type: st}
	if st == grammar.SyntaxLoop {
		rule.ContinueEval = !loopAbortTypes[typeStr]
	}

	switch typeStr {
	case "OPERATOR", "ASSIGNMENT", "IMPLICATION", "FUNCTION_DEFINITION":
		fn, err := r.getIdentifier()
		if err != nil {
			return err
		}
		rule.Fn = fn
		if err := r.consumeComma(); err != nil {
			return err
		}
	case "RANGE":
		rangeOp, err := r.getIdentifier()
		if err != nil {
			return err
		}
		switch rangeOp {
		case "INCLUDING", "TO_INCLUDING":
			rule.RangeKind = ast.RangeInclusive
		default:
			rule.RangeKind = ast.RangeExclusive
		}
		if err := r.consumeComma(); err != nil {
			return err
		}
	}

	if err := parseOperatorBody(rule, r); err != nil {
		return err
	}
	c.ruleList = append(c.ruleList, rule)
	return nil
}

// parseOperatorBody parses [AMBIGUOUS,] precedence [CLASS n] [FROM n]
// [BIAS n], assoc, list_size, syntax-pairs.
func parseOperatorBody(rule *grammar.Rule, r *reader) error {
	if r.peekContent() == "AMBIGUOUS" {
		if _, err := r.getIdentifier(); err != nil {
			return err
		}
		rule.Ambiguous = true
		if err := r.consumeComma(); err != nil {
			return err
		}
	}

	prec, err := r.getNumber()
	if err != nil {
		return err
	}
	rule.Precedence = uint32(prec)
	rule.Class = grammar.PrecedenceClass{From: grammar.MaxClass, To: grammar.MaxClass}

	if r.peekContent() == "CLASS" {
		if _, err := r.getIdentifier(); err != nil {
			return err
		}
		n, err := r.getNumber()
		if err != nil {
			return err
		}
		rule.Class.From = uint32(n)
	}
	if r.peekContent() == "FROM" {
		if _, err := r.getIdentifier(); err != nil {
			return err
		}
		n, err := r.getNumber()
		if err != nil {
			return err
		}
		rule.Class.To = uint32(n)
	}
	if r.peekContent() == "BIAS" {
		if _, err := r.getIdentifier(); err != nil {
			return err
		}
		n, err := r.getNumber()
		if err != nil {
			return err
		}
		rule.PrecBias = uint32(n)
		rule.HasPrecBias = true
	}
	if err := r.consumeComma(); err != nil {
		return err
	}

	assoc, err := r.getIdentifier()
	if err != nil {
		return err
	}
	if assoc == "rtl" {
		rule.Assoc = grammar.RightToLeft
	} else {
		rule.Assoc = grammar.LeftToRight
	}
	if err := r.consumeComma(); err != nil {
		return err
	}

	listName, err := r.getIdentifier()
	if err != nil {
		return err
	}
	n, err := listSize(listName)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if i > 0 {
			if err := r.consumeComma(); err != nil {
				return err
			}
		}
		slot, err := parseSyntaxPair(rule, r)
		if err != nil {
			return err
		}
		rule.Pattern = append(rule.Pattern, slot)
	}
	return nil
}

// slotTypes maps a syntax-pair's bare-identifier type keyword to the
// Kind/Property combination its pattern slot requires. A keyword absent
// from this map is a literal keyword token to match instead (e.g. `let`
// in a SIMPLE_BINDING pattern), mirroring parse_rule's fallthrough.
var slotTypes = map[string]grammar.Slot{
	"expr":        {Kind: grammar.SlotProperty, Node: ast.KindNone, Props: ast.Properties(0).With(ast.PropOperand)},
	"symbol":      {Kind: grammar.SlotProperty, Node: ast.KindNone, Props: ast.Properties(0).With(ast.PropSymbol)},
	"symbol_like": {Kind: grammar.SlotProperty, Node: ast.KindNone, Props: ast.Properties(0).With(ast.PropSymbolLike)},
	"completed":   {Kind: grammar.SlotProperty, Node: ast.KindNone, Props: ast.Properties(0).With(ast.PropCompleted)},
	"assignment":  {Kind: grammar.SlotProperty, Node: ast.KindNone, Props: ast.Properties(0).With(ast.PropAssignment)},
	"implication": {Kind: grammar.SlotProperty, Node: ast.KindNone, Props: ast.Properties(0).With(ast.PropImplication)},
	"fn_head":     {Kind: grammar.SlotNodeKind, Node: ast.KindFunctionHead},
	"comma_list":  {Kind: grammar.SlotNodeKind, Node: ast.KindCommaList},
	"unit":        {Kind: grammar.SlotNodeKind, Node: ast.KindUnit},
	"term":        {Kind: grammar.SlotNodeKind, Node: ast.KindTerm},
	"tuple":       {Kind: grammar.SlotNodeKind, Node: ast.KindTuple},
	"integer":     {Kind: grammar.SlotNodeKind, Node: ast.KindNumberLiteral},
	"array_spec":  {Kind: grammar.SlotNodeKind, Node: ast.KindArraySpecifier},
}

// parseSyntaxPair reads one "type[-> name]" syntax-list entry. A
// string-literal type is a literal token to match; a bare identifier is
// either one of the typed slot keywords above or, failing that, itself
// a literal keyword token. Literal tokens from rules are registered
// into the lexer's operator/keyword tables by Config.Finalize.
func parseSyntaxPair(rule *grammar.Rule, r *reader) (grammar.Slot, error) {
	r.skipTrivia()
	var slot grammar.Slot
	if r.cur.Kind == lexer.KindStringBegin {
		text, err := r.getStringLiteral(nil)
		if err != nil {
			return slot, err
		}
		slot = grammar.Slot{Kind: grammar.SlotLiteralToken, Literal: text}
	} else {
		ident, err := r.getIdentifier()
		if err != nil {
			return slot, err
		}
		if typed, ok := slotTypes[ident]; ok {
			slot = typed
		} else {
			slot = grammar.Slot{Kind: grammar.SlotLiteralToken, Literal: ident}
		}
	}
	if r.peekContent() == "->" {
		r.advance()
		name, err := r.getIdentifier()
		if err != nil {
			return slot, err
		}
		slot.Label = name
	}
	return slot, nil
}

func applyBaseType(c *Config, r *reader) error {
	slot, err := r.getIdentifier()
	if err != nil {
		return err
	}
	if err := r.consumeComma(); err != nil {
		return err
	}
	name, err := r.getIdentifier()
	if err != nil {
		return err
	}
	c.BaseTypes[slot] = name
	return nil
}

func applyTypeMemoryBlob(c *Config, r *reader) error {
	name, err := r.getStringLiteral(c.Lexer.Escapes)
	if err != nil {
		return err
	}
	if err := r.consumeComma(); err != nil {
		return err
	}
	size, err := r.getNumber()
	if err != nil {
		return err
	}
	c.MemBlobs[name] = int(size)
	return nil
}

func applyNewLiteral(c *Config, r *reader) error {
	name, err := r.getStringLiteral(c.Lexer.Escapes)
	if err != nil {
		return err
	}
	if err := r.consumeComma(); err != nil {
		return err
	}
	typeName, err := r.getStringLiteral(c.Lexer.Escapes)
	if err != nil {
		return err
	}
	if err := r.consumeComma(); err != nil {
		return err
	}
	value, err := r.getNumber()
	if err != nil {
		return err
	}
	c.Literals[name] = LiteralDef{TypeName: typeName, Value: value}
	return nil
}
