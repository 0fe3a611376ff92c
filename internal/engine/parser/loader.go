package parser

import (
	"fmt"

	"gauge/internal/core/errors"
	"gauge/internal/engine/grammar"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Loader binds language identifiers to their statically linked tree-sitter
// grammars. One grammar instance is shared by every parser in that language's
// pool; grammars are immutable after load.
type Loader struct {
	languages map[string]*sitter.Language
}

func NewLoader(registry *grammar.Registry) (*Loader, error) {
	l := &Loader{languages: make(map[string]*sitter.Language)}

	for _, langID := range registry.IDs() {
		switch langID {
		case "css":
			l.languages["css"] = sitter.NewLanguage(tree_sitter_css.Language())
		case "go":
			l.languages["go"] = sitter.NewLanguage(tree_sitter_go.Language())
		case "html":
			l.languages["html"] = sitter.NewLanguage(tree_sitter_html.Language())
		case "java":
			l.languages["java"] = sitter.NewLanguage(tree_sitter_java.Language())
		case "javascript":
			l.languages["javascript"] = sitter.NewLanguage(tree_sitter_javascript.Language())
		case "python":
			l.languages["python"] = sitter.NewLanguage(tree_sitter_python.Language())
		case "rust":
			l.languages["rust"] = sitter.NewLanguage(tree_sitter_rust.Language())
		case "tsx":
			l.languages["tsx"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		case "typescript":
			l.languages["typescript"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		default:
			return nil, errors.New(errors.CodeConfig,
				fmt.Sprintf("language %q is enabled but no grammar binding is linked", langID))
		}
	}

	return l, nil
}

// Language returns the grammar for a language identifier.
func (l *Loader) Language(langID string) (*sitter.Language, bool) {
	lang, ok := l.languages[langID]
	return lang, ok
}
