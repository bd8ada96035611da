package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// All three grammars name their comment node "comment".
const commentQuery = `(comment) @comment`

// GoExtractor implements LanguageExtractor for Go.
type GoExtractor struct{}

func (g *GoExtractor) Name() string { return "go" }

func (g *GoExtractor) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) GetQuery() string { return commentQuery }

// JavaScriptExtractor implements LanguageExtractor for JavaScript and JSX.
type JavaScriptExtractor struct{}

func (j *JavaScriptExtractor) Name() string { return "javascript" }

func (j *JavaScriptExtractor) GetLanguage() *sitter.Language {
	return javascript.GetLanguage()
}

func (j *JavaScriptExtractor) GetQuery() string { return commentQuery }

// TypeScriptExtractor implements LanguageExtractor for TypeScript. TSX
// selects the grammar that also accepts JSX.
type TypeScriptExtractor struct {
	TSX bool
}

func (t *TypeScriptExtractor) Name() string {
	if t.TSX {
		return "tsx"
	}
	return "typescript"
}

func (t *TypeScriptExtractor) GetLanguage() *sitter.Language {
	if t.TSX {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

func (t *TypeScriptExtractor) GetQuery() string { return commentQuery }
