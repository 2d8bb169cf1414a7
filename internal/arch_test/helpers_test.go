// Package arch_test holds source-level checks on the internal packages:
// import layering, GoDoc coverage, interface placement and file sizes.
package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

const internalImportPrefix = "github.com/papapumpkin/pcs/internal/"

// internalDir returns the absolute path of internal/, found relative to this
// source file.
func internalDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Dir(filepath.Dir(thisFile))
}

// internalPackages lists the directories under internal/ that hold Go code,
// other than this one.
func internalPackages(t *testing.T) []string {
	t.Helper()
	root := internalDir(t)
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading %s: %v", root, err)
	}

	var pkgs []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		if len(sourceFiles(t, e.Name(), true)) > 0 {
			pkgs = append(pkgs, e.Name())
		}
	}
	return pkgs
}

// sourceFiles returns the .go files of an internal package, sorted. Test
// files are included only when withTests is set.
func sourceFiles(t *testing.T, pkg string, withTests bool) []string {
	t.Helper()
	dir := filepath.Join(internalDir(t), pkg)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if !withTests && strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files
}

func parseFile(t *testing.T, path string, mode parser.Mode) (*token.FileSet, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, mode)
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return fset, f
}

// internalImports returns the internal packages imported by pkg's non-test
// files, e.g. "cib" for relation.
func internalImports(t *testing.T, pkg string) []string {
	t.Helper()
	seen := make(map[string]bool)
	for _, path := range sourceFiles(t, pkg, false) {
		_, f := parseFile(t, path, parser.ImportsOnly)
		for _, imp := range f.Imports {
			rel, ok := strings.CutPrefix(strings.Trim(imp.Path.Value, `"`), internalImportPrefix)
			if !ok {
				continue
			}
			rel, _, _ = strings.Cut(rel, "/")
			seen[rel] = true
		}
	}

	imports := make([]string, 0, len(seen))
	for imp := range seen {
		imports = append(imports, imp)
	}
	sort.Strings(imports)
	return imports
}

// decl is one exported, package-level declaration.
type decl struct {
	Name string
	Kind string // "type", "interface", "func", "method", "var" or "const"
	Line int
	Doc  string

	// Documented by its const/var block rather than its own comment.
	BlockDoc bool

	// Method names, for interfaces.
	Methods []string
}

// exportedDecls returns the exported declarations of a file. Methods on
// unexported receivers are left out; they are not reachable API.
func exportedDecls(t *testing.T, path string) []decl {
	t.Helper()
	fset, f := parseFile(t, path, parser.ParseComments)

	var decls []decl
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if !d.Name.IsExported() || (d.Recv != nil && !exportedReceiver(d.Recv.List[0].Type)) {
				continue
			}
			kind := "func"
			if d.Recv != nil {
				kind = "method"
			}
			decls = append(decls, decl{
				Name: d.Name.Name,
				Kind: kind,
				Line: fset.Position(d.Pos()).Line,
				Doc:  commentText(d.Doc),
			})
		case *ast.GenDecl:
			decls = append(decls, genDecls(fset, d)...)
		}
	}
	return decls
}

func genDecls(fset *token.FileSet, d *ast.GenDecl) []decl {
	grouped := len(d.Specs) > 1
	var decls []decl
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if !s.Name.IsExported() {
				continue
			}
			td := decl{
				Name: s.Name.Name,
				Kind: "type",
				Line: fset.Position(s.Pos()).Line,
				Doc:  commentText(s.Doc, d.Doc),
			}
			if iface, ok := s.Type.(*ast.InterfaceType); ok {
				td.Kind = "interface"
				for _, m := range iface.Methods.List {
					for _, name := range m.Names {
						td.Methods = append(td.Methods, name.Name)
					}
				}
			}
			decls = append(decls, td)

		case *ast.ValueSpec:
			kind := "var"
			if d.Tok == token.CONST {
				kind = "const"
			}
			for _, name := range s.Names {
				if !name.IsExported() {
					continue
				}
				vd := decl{
					Name: name.Name,
					Kind: kind,
					Line: fset.Position(name.Pos()).Line,
					Doc:  commentText(s.Doc, d.Doc),
				}
				if grouped {
					vd.Doc = commentText(s.Doc, s.Comment, d.Doc)
					vd.BlockDoc = commentText(s.Doc) == ""
				}
				decls = append(decls, vd)
			}
		}
	}
	return decls
}

// commentText returns the trimmed text of the first non-empty group.
func commentText(groups ...*ast.CommentGroup) string {
	for _, g := range groups {
		if text := strings.TrimSpace(g.Text()); text != "" {
			return text
		}
	}
	return ""
}

func exportedReceiver(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.IsExported()
	case *ast.StarExpr:
		return exportedReceiver(e.X)
	case *ast.IndexExpr:
		return exportedReceiver(e.X)
	case *ast.IndexListExpr:
		return exportedReceiver(e.X)
	}
	return false
}

// relPath shortens path to start at internal/ for messages.
func relPath(path string) string {
	if i := strings.Index(path, "internal"+string(filepath.Separator)); i >= 0 {
		return path[i:]
	}
	return filepath.Base(path)
}
