package docgen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// GoOutline parses a Go source file and renders a markdown outline of
// its exported declarations. Returns an empty string when the file has
// nothing to outline.
func GoOutline(filename, content string) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, content, parser.ParseComments)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	var types, funcs []string
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || !ts.Name.IsExported() {
					continue
				}
				types = append(types, fmt.Sprintf("- `%s` %s", ts.Name.Name, typeKind(ts)))
			}
		case *ast.FuncDecl:
			if !d.Name.IsExported() {
				continue
			}
			funcs = append(funcs, "- `"+funcSignature(d)+"`")
		}
	}

	if len(types) == 0 && len(funcs) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Package `%s`\n\n", file.Name.Name)
	if len(types) > 0 {
		b.WriteString("### Types\n\n")
		b.WriteString(strings.Join(types, "\n"))
		b.WriteString("\n\n")
	}
	if len(funcs) > 0 {
		b.WriteString("### Functions\n\n")
		b.WriteString(strings.Join(funcs, "\n"))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func typeKind(ts *ast.TypeSpec) string {
	switch ts.Type.(type) {
	case *ast.StructType:
		return "(struct)"
	case *ast.InterfaceType:
		return "(interface)"
	default:
		return ""
	}
}

// funcSignature renders a compact "Recv.Name" or "Name" form; full
// parameter lists add noise to an overview page.
func funcSignature(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return d.Name.Name + "()"
	}
	return recvTypeName(d.Recv.List[0].Type) + "." + d.Name.Name + "()"
}

func recvTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return recvTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return recvTypeName(t.X)
	default:
		return ""
	}
}
