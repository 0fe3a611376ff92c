package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewAndIsCode(t *testing.T) {
	err := New(CodeUnsupportedLanguage, "no grammar for extension")
	if !IsCode(err, CodeUnsupportedLanguage) {
		t.Fatal("expected CodeUnsupportedLanguage")
	}
	if IsCode(err, CodeMalformedSource) {
		t.Fatal("unexpected code match")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	root := stderrors.New("disk gone")
	err := Wrap(root, CodeIO, "read source file")
	if !stderrors.Is(err, root) {
		t.Fatal("wrapped error lost its cause")
	}
	if !IsCode(err, CodeIO) {
		t.Fatal("expected CodeIO")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if !IsCode(wrapped, CodeIO) {
		t.Fatal("IsCode should see through fmt wrapping")
	}
}

func TestErrorStringIncludesContext(t *testing.T) {
	err := New(CodeTraversal, "expected open function frame, stack empty")
	err = AddContext(err, CtxPath, "a.go")
	msg := err.Error()
	if !strings.Contains(msg, "TRAVERSAL_ERROR") || !strings.Contains(msg, "a.go") {
		t.Fatalf("unexpected error string: %s", msg)
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(stderrors.New("plain")) != CodeInternal {
		t.Fatal("foreign errors should map to CodeInternal")
	}
	if CodeOf(New(CodeMetric, "negative count")) != CodeMetric {
		t.Fatal("expected CodeMetric")
	}
}
