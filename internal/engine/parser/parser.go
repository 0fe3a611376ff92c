package parser

import (
	"bytes"
	"fmt"
	"time"

	"gauge/internal/core/errors"
	"gauge/internal/engine/grammar"
	"gauge/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree owns one parsed file. Trees are exclusively owned by the analysis
// task that produced them, never shared across goroutines, and must be
// Closed once the file's report has been computed.
type Tree struct {
	Language *grammar.Descriptor
	Source   []byte
	// Partial marks trees containing tree-sitter error-recovery nodes.
	// Partial trees still yield metrics; they are never silently treated
	// as clean parses.
	Partial bool

	inner *sitter.Tree
}

// Root returns the root syntax node. Valid until Close.
func (t *Tree) Root() *sitter.Node {
	return t.inner.RootNode()
}

func (t *Tree) Close() {
	if t.inner != nil {
		t.inner.Close()
		t.inner = nil
	}
}

// Parser turns source bytes plus a language identifier into a Tree. It keeps
// one parser pool per enabled language; Parse is safe for concurrent use.
type Parser struct {
	registry *grammar.Registry
	loader   *Loader
	pools    map[string]*Pool
}

func New(registry *grammar.Registry) (*Parser, error) {
	loader, err := NewLoader(registry)
	if err != nil {
		return nil, err
	}

	pools := make(map[string]*Pool)
	for _, langID := range registry.IDs() {
		lang, ok := loader.Language(langID)
		if !ok {
			continue
		}
		pools[langID] = NewPool(lang)
	}

	return &Parser{
		registry: registry,
		loader:   loader,
		pools:    pools,
	}, nil
}

// Registry exposes the read-only language registry the parser was built with.
func (p *Parser) Registry() *grammar.Registry {
	return p.registry
}

// Parse parses source for the given language identifier. An empty buffer is
// a valid parse yielding a tree with no function units. An unknown language
// yields CodeUnsupportedLanguage; a parser-level failure yields
// CodeMalformedSource. Recoverable syntax errors produce a tree flagged
// Partial rather than an error.
func (p *Parser) Parse(source []byte, langID string) (*Tree, error) {
	desc, ok := p.registry.ForID(langID)
	if !ok {
		return nil, errors.New(errors.CodeUnsupportedLanguage,
			fmt.Sprintf("no grammar registered for language %q", langID))
	}

	pool, ok := p.pools[desc.ID]
	if !ok {
		return nil, errors.New(errors.CodeInternal,
			fmt.Sprintf("grammar not loaded for language %q", desc.ID))
	}

	start := time.Now()
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeMalformedSource,
			fmt.Sprintf("parser produced no tree for language %q", desc.ID))
	}
	observability.ParsingDuration.WithLabelValues(desc.ID).Observe(time.Since(start).Seconds())

	return &Tree{
		Language: desc,
		Source:   source,
		Partial:  tree.RootNode().HasError(),
		inner:    tree,
	}, nil
}

// ParsePath resolves the language from the path, then parses. An explicit
// non-empty hint overrides path-based detection.
func (p *Parser) ParsePath(path string, source []byte, langHint string) (*Tree, error) {
	if langHint != "" {
		return p.Parse(source, langHint)
	}
	desc, ok := p.registry.ForPath(path)
	if !ok {
		return nil, errors.New(errors.CodeUnsupportedLanguage,
			fmt.Sprintf("no language resolved for path %q", path))
	}
	return p.Parse(source, desc.ID)
}

var generatedMarkers = [][]byte{
	[]byte("Code generated"),
	[]byte("DO NOT EDIT"),
	[]byte("@generated"),
}

// IsGeneratedFile reports whether the content carries a conventional
// generated-code marker within its leading bytes.
func IsGeneratedFile(content []byte) bool {
	head := content
	if len(head) > 2048 {
		head = head[:2048]
	}
	for _, marker := range generatedMarkers {
		if bytes.Contains(head, marker) {
			return true
		}
	}
	return false
}
