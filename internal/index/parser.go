// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"unicode"
)

// =============================================================================
// SYMBOL EXTRACTION
// =============================================================================

// Symbol is one code symbol extracted by a language parser.
type Symbol struct {
	Name      string
	Kind      string // func, method, type, struct, interface, const, var, class
	Line      int
	Signature string
	Exported  bool
}

// LanguageParser extracts symbols from one source file.
type LanguageParser interface {
	Parse(content, filePath string) ([]Symbol, error)
}

// =============================================================================
// GO PARSER
// =============================================================================

// GoParser extracts symbols from Go source using the standard AST.
type GoParser struct{}

// Parse implements LanguageParser for Go files.
func (p *GoParser) Parse(content, filePath string) ([]Symbol, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filePath, content, 0)
	if err != nil {
		return nil, err
	}

	var symbols []Symbol

	ast.Inspect(f, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncDecl:
			sym := Symbol{
				Name:      node.Name.Name,
				Kind:      "func",
				Line:      fset.Position(node.Pos()).Line,
				Signature: funcSignature(node),
				Exported:  ast.IsExported(node.Name.Name),
			}
			if node.Recv != nil && len(node.Recv.List) > 0 {
				sym.Kind = "method"
			}
			symbols = append(symbols, sym)

		case *ast.GenDecl:
			for _, spec := range node.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					kind := "type"
					switch s.Type.(type) {
					case *ast.StructType:
						kind = "struct"
					case *ast.InterfaceType:
						kind = "interface"
					}
					symbols = append(symbols, Symbol{
						Name:     s.Name.Name,
						Kind:     kind,
						Line:     fset.Position(s.Pos()).Line,
						Exported: ast.IsExported(s.Name.Name),
					})
				case *ast.ValueSpec:
					kind := "var"
					if node.Tok == token.CONST {
						kind = "const"
					}
					for _, name := range s.Names {
						if name.Name == "_" {
							continue
						}
						symbols = append(symbols, Symbol{
							Name:     name.Name,
							Kind:     kind,
							Line:     fset.Position(name.Pos()).Line,
							Exported: ast.IsExported(name.Name),
						})
					}
				}
			}
		}
		return true
	})

	return symbols, nil
}

// funcSignature renders a short signature for a function declaration.
func funcSignature(decl *ast.FuncDecl) string {
	var sb strings.Builder
	sb.WriteString("func ")
	sb.WriteString(decl.Name.Name)
	sb.WriteString("(")
	if decl.Type.Params != nil {
		for i, field := range decl.Type.Params.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			for j, name := range field.Names {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(name.Name)
			}
		}
	}
	sb.WriteString(")")
	return sb.String()
}

// =============================================================================
// PYTHON PARSER
// =============================================================================

var (
	pyDefPattern   = regexp.MustCompile(`^(\s*)def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)`)
	pyClassPattern = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// PythonParser extracts top-level defs and classes with line-based regex.
type PythonParser struct{}

// Parse implements LanguageParser for Python files.
func (p *PythonParser) Parse(content, filePath string) ([]Symbol, error) {
	var symbols []Symbol

	for i, line := range strings.Split(content, "\n") {
		if m := pyClassPattern.FindStringSubmatch(line); m != nil {
			kind := "class"
			if m[1] != "" {
				continue // nested class, skip
			}
			symbols = append(symbols, Symbol{
				Name:     m[2],
				Kind:     kind,
				Line:     i + 1,
				Exported: !strings.HasPrefix(m[2], "_"),
			})
			continue
		}
		if m := pyDefPattern.FindStringSubmatch(line); m != nil {
			kind := "func"
			if m[1] != "" {
				kind = "method"
			}
			symbols = append(symbols, Symbol{
				Name:      m[2],
				Kind:      kind,
				Line:      i + 1,
				Signature: "def " + m[2] + "(" + strings.TrimSpace(m[3]) + ")",
				Exported:  !strings.HasPrefix(m[2], "_"),
			})
		}
	}

	return symbols, nil
}

// =============================================================================
// JAVASCRIPT / TYPESCRIPT PARSER
// =============================================================================

var (
	jsFuncPattern  = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	jsClassPattern = regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	jsConstPattern = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s+)?(?:\(|function)`)
)

// JSParser extracts functions and classes from JavaScript/TypeScript with
// line-based regex. Approximate by design: good enough for search.
type JSParser struct{}

// Parse implements LanguageParser for JS/TS files.
func (p *JSParser) Parse(content, filePath string) ([]Symbol, error) {
	var symbols []Symbol

	for i, line := range strings.Split(content, "\n") {
		if m := jsClassPattern.FindStringSubmatch(line); m != nil {
			symbols = append(symbols, Symbol{
				Name:     m[1],
				Kind:     "class",
				Line:     i + 1,
				Exported: isJSExported(line, m[1]),
			})
			continue
		}
		if m := jsFuncPattern.FindStringSubmatch(line); m != nil {
			symbols = append(symbols, Symbol{
				Name:     m[1],
				Kind:     "func",
				Line:     i + 1,
				Exported: isJSExported(line, m[1]),
			})
			continue
		}
		if m := jsConstPattern.FindStringSubmatch(line); m != nil {
			symbols = append(symbols, Symbol{
				Name:     m[1],
				Kind:     "func",
				Line:     i + 1,
				Exported: isJSExported(line, m[1]),
			})
		}
	}

	return symbols, nil
}

// isJSExported treats explicit exports and capitalized names as public.
func isJSExported(line, name string) bool {
	if strings.Contains(line, "export ") {
		return true
	}
	r := []rune(name)
	return len(r) > 0 && unicode.IsUpper(r[0])
}
