package extractor

import sitter "github.com/smacker/go-tree-sitter"

// LanguageExtractor describes how comments are found in one language.
type LanguageExtractor interface {
	Name() string
	GetLanguage() *sitter.Language
	// GetQuery returns a tree-sitter query capturing every comment node as @comment.
	GetQuery() string
}

// Block is a run of comment text that annotations are searched in: a single
// /* */ comment or adjacent // comments.
type Block struct {
	Lines []Line
}

// Line is one line of comment text with its comment markers removed.
type Line struct {
	Text   string
	Row    int // 1-based file line
	Column int // 0-based byte column where Text starts
}
