package lexer

import (
	"fmt"
	"os"

	"pushc/internal/diag"
	"pushc/internal/strutil"
)

// Input is the abstract source-input interface: a
// streamed token source with single-token lookahead×2.
type Input interface {
	Configure(cfg *Config)
	GetToken() Token
	PreviewToken() Token
	PreviewNextToken() Token
	GetLines(begin, end int) []string
	File() *diag.File
}

// levelFrame is one entry on the token level stack.
type levelFrame struct {
	Def LevelDef
}

// streamInput is the concrete, fully-buffered Input implementation
// shared by string and file sources. Buffering the whole source in
// memory lets the pushback buffer collapse to a rewinding byte cursor,
// which is observationally identical for content that is never
// produced lazily.
type streamInput struct {
	file    *diag.File
	content string
	cfg     *Config

	pos       int // byte offset into content
	line, col int // 1-based, col measured in graphemes

	levels      []levelFrame
	firstRead   bool
	tabWidth    int
	previewBuf  []Token // at most 2 entries: [lookahead1, lookahead2]
}

// NewStringInput builds an in-memory Input over content, labelled name
// for diagnostics.
func NewStringInput(name, content string) Input {
	return &streamInput{
		file:     &diag.File{Path: name},
		content:  content,
		line:     1,
		col:      1,
		levels:   []levelFrame{{Def: LevelDef{Name: "", Kind: LevelNormal}}},
		tabWidth: strutil.DefaultTabWidth,
	}
}

// NewFileInput reads path fully into memory and returns an Input over it.
func NewFileInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewStringInput(path, string(data)), nil
}

func (s *streamInput) File() *diag.File { return s.file }

// Configure installs (or replaces) the token configuration. It is safe
// at any point the input sits between tokens: Configure never touches
// pos/line/col, only the table used by the next GetToken call.
func (s *streamInput) Configure(cfg *Config) {
	cfg.Finalize()
	s.cfg = cfg
	if cfg.TabWidth > 0 {
		s.tabWidth = cfg.TabWidth
	}
}

func (s *streamInput) topLevel() levelFrame {
	return s.levels[len(s.levels)-1]
}

// GetToken consumes and returns the next token, draining the preview
// buffer first so that a previewed token is only ever computed once.
func (s *streamInput) GetToken() Token {
	if len(s.previewBuf) > 0 {
		t := s.previewBuf[0]
		s.previewBuf = s.previewBuf[1:]
		return t
	}
	return s.getTokenImpl("")
}

// PreviewToken returns, without consuming, the next token to be
// returned by GetToken.
func (s *streamInput) PreviewToken() Token {
	s.fillPreview(1)
	return s.previewBuf[0]
}

// PreviewNextToken returns the token after the most recently previewed
// one. Chosen semantics: lookahead
// is capped at exactly two tokens — repeated calls without an
// intervening GetToken keep returning the same second token; they do not
// keep advancing the stream.
func (s *streamInput) PreviewNextToken() Token {
	s.fillPreview(2)
	return s.previewBuf[1]
}

func (s *streamInput) fillPreview(n int) {
	for len(s.previewBuf) < n {
		s.previewBuf = append(s.previewBuf, s.getTokenImpl(""))
	}
}

// GetLines returns lines [begin, end) (1-indexed, half-open), tabs
// expanded to the configured width.
func (s *streamInput) GetLines(begin, end int) []string {
	lines := strutil.SplitLines(s.content)
	if begin < 1 {
		begin = 1
	}
	if end > len(lines)+1 {
		end = len(lines) + 1
	}
	if begin >= end {
		return nil
	}
	out := make([]string, 0, end-begin)
	for i := begin; i < end; i++ {
		out = append(out, strutil.ExpandTabs(lines[i-1], s.tabWidth))
	}
	return out
}
