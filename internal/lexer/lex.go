package lexer

import (
	"strings"
	"unicode/utf8"

	"pushc/internal/strutil"
)

type nonStickyAction int

const (
	actionPlain nonStickyAction = iota
	actionOpen
	actionClose
)

type candidate struct {
	text    string
	kind    Kind
	action  nonStickyAction
	def     LevelDef
	priority int
}

// getTokenImpl produces one token. leadingWS carries whitespace
// accumulated by a previous recursive call.
func (s *streamInput) getTokenImpl(leadingWS string) Token {
	if !s.firstRead {
		s.firstRead = true
		trimmed := strutil.TrimBOM(s.content[s.pos:])
		s.pos = len(s.content) - len(trimmed)
	}

	if s.pos >= len(s.content) {
		return Token{Kind: KindEOF, File: s.file, Line: s.line, Column: s.col, LeadingWS: leadingWS, Level: s.topLevel().Def.Kind}
	}

	startLine, startCol := s.line, s.col

	windowEnd := s.pos + s.cfg.MaxOpSize()
	if windowEnd > len(s.content) {
		windowEnd = len(s.content)
	}
	buf := s.content[s.pos:windowEnd]

	if cand, ok := s.matchNonSticky(buf); ok {
		s.consume(cand.text)
		lvl := s.topLevel().Def.Kind
		switch cand.action {
		case actionClose:
			s.levels = s.levels[:len(s.levels)-1]
		case actionOpen:
			s.levels = append(s.levels, levelFrame{Def: cand.def})
		}
		return Token{
			Kind: cand.kind, Content: cand.text, File: s.file,
			Line: startLine, Column: startCol, LengthCP: strutil.CodePointLen(cand.text),
			LeadingWS: leadingWS, Level: lvl,
		}
	}

	// Sticky path: classify one rune at a time until the run's class
	// would change, then emit the run.
	content, kind := s.scanSticky()
	lvl := s.topLevel().Def.Kind
	tok := Token{
		Kind: kind, Content: content, File: s.file,
		Line: startLine, Column: startCol, LengthCP: strutil.CodePointLen(content),
		LeadingWS: leadingWS, Level: lvl,
	}

	if kind == KindIdentifier && s.cfg.IsKeyword(content) {
		tok.Kind = KindKeyword
	}

	if kind == KindWS {
		return s.getTokenImpl(leadingWS + strutil.NormalizeNewlines(content))
	}
	return tok
}

// matchNonSticky finds the longest fixed-literal match at buf's start
// among level closers/openers, statement dividers, operators, and (while
// inside a string level) escape sequences. Ties are broken by priority:
// close > open > stat divider > operator > escape.
func (s *streamInput) matchNonSticky(buf string) (candidate, bool) {
	top := s.topLevel()
	var candidates []candidate

	if top.Def.End != "" && strings.HasPrefix(buf, top.Def.End) {
		candidates = append(candidates, candidate{text: top.Def.End, kind: top.Def.EndKind, action: actionClose, priority: 0})
	}
	for _, def := range s.cfg.Levels {
		// Block/term/array pairs are plain token pairs, not stacked
		// levels: the parser tracks their nesting by recursing, so they
		// push no frame and bypass the overlay whitelist (which governs
		// comment/string levels only).
		if def.Kind == LevelNormal {
			if def.Begin != "" && strings.HasPrefix(buf, def.Begin) {
				candidates = append(candidates, candidate{text: def.Begin, kind: def.BeginKind, priority: 1})
			}
			if def.End != "" && strings.HasPrefix(buf, def.End) {
				candidates = append(candidates, candidate{text: def.End, kind: def.EndKind, priority: 1})
			}
			continue
		}
		if def.Begin == "" || !strings.HasPrefix(buf, def.Begin) {
			continue
		}
		if !s.cfg.AllowedUnder(top.Def.Name, def.Name) {
			continue
		}
		candidates = append(candidates, candidate{text: def.Begin, kind: def.BeginKind, action: actionOpen, def: def, priority: 1})
	}
	for _, sd := range s.cfg.StatDividers {
		if strings.HasPrefix(buf, sd) {
			candidates = append(candidates, candidate{text: sd, kind: KindStatDivider, priority: 2})
		}
	}
	for _, op := range s.cfg.Operators {
		if strings.HasPrefix(buf, op) {
			candidates = append(candidates, candidate{text: op, kind: KindOp, priority: 3})
		}
	}
	if top.Def.Kind == LevelString {
		for escText, escVal := range s.cfg.Escapes {
			if strings.HasPrefix(buf, escText) {
				_ = escVal // value resolution happens in the parser's string-join step
				candidates = append(candidates, candidate{text: escText, kind: KindEscapedChar, priority: 4})
			}
		}
	}

	if len(candidates) == 0 {
		return candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.text) > len(best.text) || (len(c.text) == len(best.text) && c.priority < best.priority) {
			best = c
		}
	}
	return best, true
}

type runeClass int

const (
	classNone runeClass = iota
	classWS
	classDigit
	classIdentStart
	classIdentCont
	classOp
)

func (s *streamInput) classify(r rune) runeClass {
	switch {
	case s.cfg.InRange(RangeWS, r):
		return classWS
	case s.cfg.InRange(RangeInteger, r):
		return classDigit
	case s.cfg.InRange(RangeIdentifier, r):
		return classIdentStart
	case s.cfg.InRange(RangeOptIdentifier, r):
		return classIdentCont
	case s.cfg.InRange(RangeOp, r):
		return classOp
	default:
		return classNone
	}
}

// scanSticky walks forward rune-by-rune, growing the run while the
// trailing token class stays consistent, and returns the consumed run
// plus its Kind. An operator-class rune never extends past one rune:
// each operator character stands alone.
func (s *streamInput) scanSticky() (string, Kind) {
	start := s.pos
	r, size := utf8.DecodeRuneInString(s.content[s.pos:])
	class := s.classify(r)
	s.advance(size)

	switch class {
	case classWS:
		for s.pos < len(s.content) {
			r2, size2 := utf8.DecodeRuneInString(s.content[s.pos:])
			if s.classify(r2) != classWS {
				break
			}
			s.advance(size2)
		}
		return s.content[start:s.pos], KindWS
	case classDigit:
		for s.pos < len(s.content) {
			r2, size2 := utf8.DecodeRuneInString(s.content[s.pos:])
			if s.classify(r2) != classDigit {
				break
			}
			s.advance(size2)
		}
		return s.content[start:s.pos], KindNumber
	case classIdentStart:
		for s.pos < len(s.content) {
			r2, size2 := utf8.DecodeRuneInString(s.content[s.pos:])
			c2 := s.classify(r2)
			if c2 != classIdentStart && c2 != classIdentCont && !s.cfg.InRange(RangeOptIdentifier, r2) {
				break
			}
			s.advance(size2)
		}
		return s.content[start:s.pos], KindIdentifier
	case classIdentCont:
		// An opt_identifier rune cannot start an identifier on its own;
		// it is only valid as a continuation. Standing alone, treat it
		// like an operator-class singleton so the stream still makes
		// forward progress.
		return s.content[start:s.pos], KindOp
	default: // classOp or unclassified: always a single rune
		return s.content[start:s.pos], KindOp
	}
}

// consume advances the cursor past literal text, updating line/column.
func (s *streamInput) consume(text string) {
	s.advance(len(text))
}

// advance moves the byte cursor forward n bytes, re-deriving the
// consumed substring to update line/column.
func (s *streamInput) advance(n int) {
	consumed := s.content[s.pos : s.pos+n]
	s.pos += n
	s.advancePosition(consumed)
}

func (s *streamInput) advancePosition(consumed string) {
	normalized := strutil.NormalizeNewlines(consumed)
	// Walk the normalized text: every '\n' resets column and bumps line;
	// runs between newlines advance column by their grapheme length.
	for {
		idx := strings.IndexByte(normalized, '\n')
		if idx < 0 {
			s.col += strutil.GraphemeLen(normalized, s.tabWidth)
			return
		}
		run := normalized[:idx]
		s.col += strutil.GraphemeLen(run, s.tabWidth)
		s.line++
		s.col = 1
		normalized = normalized[idx+1:]
	}
}
