package grammar

// Static node-kind tables per supported language. The kind names follow the
// vocabulary of the official tree-sitter grammars pinned in go.mod; bumping a
// grammar major version means revisiting the affected table here.
//
// Adding a language means adding a table entry, not a new type hierarchy.

var cLogicalOps = map[string]bool{"&&": true, "||": true}
var pyLogicalOps = map[string]bool{"and": true, "or": true}

func defaultDescriptors() map[string]*Descriptor {
	return map[string]*Descriptor{
		"go": {
			ID:               "go",
			Name:             "Go",
			Extensions:       []string{".go"},
			TestFileSuffixes: []string{"_test.go"},
			Enabled:          true,
			FunctionKinds:    NewKindSet("function_declaration", "method_declaration", "func_literal"),
			BranchKinds:      NewKindSet("if_statement"),
			LoopKinds:        NewKindSet("for_statement"),
			SwitchKinds:      NewKindSet("expression_switch_statement", "type_switch_statement", "select_statement"),
			CaseKinds:        NewKindSet("expression_case", "type_case", "communication_case"),
			CatchKinds:       NewKindSet(),
			TernaryKinds:     NewKindSet(),
			ElseKinds:        NewKindSet(),
			BooleanKinds:     NewKindSet("binary_expression"),
			CallKinds:        NewKindSet("call_expression"),
			AssignKinds: NewKindSet(
				"assignment_statement", "assignment_expression",
				"short_var_declaration", "inc_statement", "dec_statement",
			),
			ExitKinds:        NewKindSet("return_statement", "goto_statement"),
			CommentKinds:     NewKindSet("comment"),
			LogicalOperators: cLogicalOps,
			ParamStyle:       ParamsGoStyle,
		},
		"python": {
			ID:               "python",
			Name:             "Python",
			Extensions:       []string{".py", ".pyi"},
			TestFileSuffixes: []string{"_test.py"},
			Enabled:          true,
			FunctionKinds:    NewKindSet("function_definition", "lambda"),
			BranchKinds:      NewKindSet("if_statement"),
			LoopKinds:        NewKindSet("for_statement", "while_statement"),
			SwitchKinds:      NewKindSet("match_statement"),
			CaseKinds:        NewKindSet("case_clause"),
			CatchKinds:       NewKindSet("except_clause"),
			TernaryKinds:     NewKindSet("conditional_expression"),
			ElseKinds:        NewKindSet("elif_clause", "else_clause"),
			BooleanKinds:     NewKindSet("boolean_operator"),
			CallKinds:        NewKindSet("call"),
			AssignKinds:      NewKindSet("assignment", "augmented_assignment"),
			ExitKinds:        NewKindSet("return_statement", "raise_statement"),
			CommentKinds:     NewKindSet("comment"),
			LogicalOperators: pyLogicalOps,
		},
		"javascript": {
			ID:               "javascript",
			Name:             "JavaScript",
			Extensions:       []string{".js", ".mjs", ".cjs", ".jsx"},
			TestFileSuffixes: []string{".test.js", ".spec.js"},
			Enabled:          true,
			FunctionKinds: NewKindSet(
				"function_declaration", "function_expression", "arrow_function",
				"method_definition", "generator_function_declaration", "generator_function",
			),
			BranchKinds:      NewKindSet("if_statement"),
			LoopKinds:        NewKindSet("for_statement", "for_in_statement", "while_statement", "do_statement"),
			SwitchKinds:      NewKindSet("switch_statement"),
			CaseKinds:        NewKindSet("switch_case"),
			CatchKinds:       NewKindSet("catch_clause"),
			TernaryKinds:     NewKindSet("ternary_expression"),
			ElseKinds:        NewKindSet("else_clause"),
			BooleanKinds:     NewKindSet("binary_expression"),
			CallKinds:        NewKindSet("call_expression", "new_expression"),
			AssignKinds: NewKindSet(
				"assignment_expression", "augmented_assignment_expression", "update_expression",
			),
			ExitKinds:        NewKindSet("return_statement", "throw_statement"),
			CommentKinds:     NewKindSet("comment", "html_comment"),
			LogicalOperators: cLogicalOps,
		},
		"typescript": {
			ID:               "typescript",
			Name:             "TypeScript",
			Extensions:       []string{".ts", ".mts", ".cts"},
			TestFileSuffixes: []string{".test.ts", ".spec.ts"},
			Enabled:          true,
			FunctionKinds: NewKindSet(
				"function_declaration", "function_expression", "arrow_function",
				"method_definition", "generator_function_declaration", "generator_function",
			),
			BranchKinds:      NewKindSet("if_statement"),
			LoopKinds:        NewKindSet("for_statement", "for_in_statement", "while_statement", "do_statement"),
			SwitchKinds:      NewKindSet("switch_statement"),
			CaseKinds:        NewKindSet("switch_case"),
			CatchKinds:       NewKindSet("catch_clause"),
			TernaryKinds:     NewKindSet("ternary_expression"),
			ElseKinds:        NewKindSet("else_clause"),
			BooleanKinds:     NewKindSet("binary_expression"),
			CallKinds:        NewKindSet("call_expression", "new_expression"),
			AssignKinds: NewKindSet(
				"assignment_expression", "augmented_assignment_expression", "update_expression",
			),
			ExitKinds:        NewKindSet("return_statement", "throw_statement"),
			CommentKinds:     NewKindSet("comment"),
			LogicalOperators: cLogicalOps,
		},
		"tsx": {
			ID:               "tsx",
			Name:             "TSX",
			Extensions:       []string{".tsx"},
			TestFileSuffixes: []string{".test.tsx", ".spec.tsx"},
			Enabled:          true,
			FunctionKinds: NewKindSet(
				"function_declaration", "function_expression", "arrow_function",
				"method_definition", "generator_function_declaration", "generator_function",
			),
			BranchKinds:      NewKindSet("if_statement"),
			LoopKinds:        NewKindSet("for_statement", "for_in_statement", "while_statement", "do_statement"),
			SwitchKinds:      NewKindSet("switch_statement"),
			CaseKinds:        NewKindSet("switch_case"),
			CatchKinds:       NewKindSet("catch_clause"),
			TernaryKinds:     NewKindSet("ternary_expression"),
			ElseKinds:        NewKindSet("else_clause"),
			BooleanKinds:     NewKindSet("binary_expression"),
			CallKinds:        NewKindSet("call_expression", "new_expression"),
			AssignKinds: NewKindSet(
				"assignment_expression", "augmented_assignment_expression", "update_expression",
			),
			ExitKinds:        NewKindSet("return_statement", "throw_statement"),
			CommentKinds:     NewKindSet("comment"),
			LogicalOperators: cLogicalOps,
		},
		"java": {
			ID:            "java",
			Name:          "Java",
			Extensions:    []string{".java"},
			Enabled:       true,
			FunctionKinds: NewKindSet("method_declaration", "constructor_declaration", "lambda_expression"),
			BranchKinds:   NewKindSet("if_statement"),
			LoopKinds:     NewKindSet("for_statement", "enhanced_for_statement", "while_statement", "do_statement"),
			SwitchKinds:   NewKindSet("switch_expression"),
			CaseKinds:     NewKindSet("switch_block_statement_group", "switch_rule"),
			CatchKinds:    NewKindSet("catch_clause"),
			TernaryKinds:  NewKindSet("ternary_expression"),
			ElseKinds:     NewKindSet(),
			BooleanKinds:  NewKindSet("binary_expression"),
			CallKinds:     NewKindSet("method_invocation", "object_creation_expression"),
			AssignKinds:   NewKindSet("assignment_expression", "update_expression"),
			ExitKinds:        NewKindSet("return_statement", "throw_statement"),
			CommentKinds:     NewKindSet("line_comment", "block_comment"),
			LogicalOperators: cLogicalOps,
		},
		"rust": {
			ID:            "rust",
			Name:          "Rust",
			Extensions:    []string{".rs"},
			Enabled:       true,
			FunctionKinds: NewKindSet("function_item", "closure_expression"),
			BranchKinds:   NewKindSet("if_expression"),
			LoopKinds:     NewKindSet("for_expression", "while_expression", "loop_expression"),
			SwitchKinds:   NewKindSet("match_expression"),
			CaseKinds:     NewKindSet("match_arm"),
			CatchKinds:    NewKindSet(),
			TernaryKinds:  NewKindSet(),
			ElseKinds:     NewKindSet("else_clause"),
			BooleanKinds:  NewKindSet("binary_expression"),
			CallKinds:     NewKindSet("call_expression", "macro_invocation"),
			AssignKinds: NewKindSet(
				"assignment_expression", "compound_assignment_expr", "let_declaration",
			),
			ExitKinds:        NewKindSet("return_expression"),
			CommentKinds:     NewKindSet("line_comment", "block_comment"),
			LogicalOperators: cLogicalOps,
		},
		// LOC-only languages: no function vocabulary, comments still classified.
		"css": {
			ID:           "css",
			Name:         "CSS",
			Extensions:   []string{".css"},
			Enabled:      true,
			CommentKinds: NewKindSet("comment"),
		},
		"html": {
			ID:           "html",
			Name:         "HTML",
			Extensions:   []string{".html", ".htm"},
			Enabled:      true,
			CommentKinds: NewKindSet("comment"),
		},
	}
}
