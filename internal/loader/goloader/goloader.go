// Package goloader implements a Loader that introspects Go packages with
// go/parser and go/doc and emits their documentation into a Document
// subtree.
//
// A modspec names a package directory relative to the configured root
// (slash-separated, e.g. "internal/util"). A trailing `+` per nested level
// includes subpackages: "internal+" loads internal plus one level of its
// subdirectories that contain Go source.
package goloader

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

// Loader loads Go package documentation from a source tree on disk.
type Loader struct {
	opts plugin.Options
	root string
}

// New creates a Loader. Options:
//   - root: base directory modspecs resolve against (default ".").
func New(opts plugin.Options) (*Loader, error) {
	return &Loader{opts: opts, root: opts.String("root", ".")}, nil
}

// LoadDocument populates doc with the documentation of the package
// addressed by modspec, plus any nested packages requested via the `+`
// suffix.
func (l *Loader) LoadDocument(modspec string, doc *doctree.Node) error {
	spec := plugin.ParseModSpec(modspec)
	if spec.Name == "" {
		return errors.Resolution("empty module specifier")
	}

	rel := strings.TrimPrefix(spec.Name, "./")
	dir := filepath.Join(l.root, filepath.FromSlash(rel))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errors.Resolution(fmt.Sprintf("cannot resolve modspec %q: no package directory at %s", modspec, dir)).
			WithContext("modspec", modspec)
	}

	loaded, err := l.loadPackage(dir, rel, doc)
	if err != nil {
		return err
	}
	if !loaded {
		return errors.Resolution(fmt.Sprintf("cannot resolve modspec %q: no Go source files in %s", modspec, dir)).
			WithContext("modspec", modspec)
	}

	if spec.Depth > 0 {
		if err := l.loadNested(dir, rel, spec.Depth, doc); err != nil {
			return err
		}
	}
	return nil
}

// loadNested appends subpackage sections up to depth additional directory
// levels. Directories without Go source are traversed but emit nothing.
func (l *Loader) loadNested(dir, importPath string, depth int, doc *doctree.Node) error {
	if depth == 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.WrapFileSystem(err, "failed to list package directory")
	}
	for _, e := range entries {
		if !e.IsDir() || skipDir(e.Name()) {
			continue
		}
		subDir := filepath.Join(dir, e.Name())
		subImport := path.Join(importPath, e.Name())
		if _, err := l.loadPackage(subDir, subImport, doc); err != nil {
			return err
		}
		if err := l.loadNested(subDir, subImport, depth-1, doc); err != nil {
			return err
		}
	}
	return nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "testdata" || name == "vendor"
}

// loadPackage parses one directory and, when it contains Go source, appends
// a package Element to parent. Test files are excluded.
func (l *Loader) loadPackage(dir, importPath string, parent *doctree.Node) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, errors.WrapResolution(err, "failed to read package directory").
			WithContext("path", dir)
	}

	fset := token.NewFileSet()
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return false, errors.WrapResolution(err, "failed to parse Go source").
				WithContext("path", filepath.Join(dir, name))
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return false, nil
	}

	docPkg, err := doc.NewFromFiles(fset, files, importPath)
	if err != nil {
		return false, errors.WrapResolution(err, "failed to compute package documentation").
			WithContext("import", importPath)
	}

	pkgEl := doctree.NewElement(doctree.ElemPackage)
	pkgEl.SetAttr("name", docPkg.Name)
	pkgEl.SetAttr("import", importPath)
	if s := strings.TrimSpace(docPkg.Doc); s != "" {
		pkgEl.AppendChild(doctree.NewText(s))
	}

	for _, v := range docPkg.Consts {
		pkgEl.AppendChild(valueSection("const", v, fset))
	}
	for _, v := range docPkg.Vars {
		pkgEl.AppendChild(valueSection("var", v, fset))
	}
	for _, typ := range docPkg.Types {
		pkgEl.AppendChild(typeSection(typ, fset))
	}
	for _, fn := range docPkg.Funcs {
		pkgEl.AppendChild(funcSection(fn, fset))
	}

	parent.AppendChild(pkgEl)
	return true, nil
}

func valueSection(kind string, v *doc.Value, fset *token.FileSet) *doctree.Node {
	sec := doctree.NewElement(doctree.ElemSection)
	sec.SetAttr("kind", kind)
	sec.SetAttr("name", strings.Join(v.Names, ", "))
	sec.SetAttr("signature", renderGenDecl(v.Decl, fset))
	if s := strings.TrimSpace(v.Doc); s != "" {
		sec.AppendChild(doctree.NewText(s))
	}
	return sec
}

func typeSection(typ *doc.Type, fset *token.FileSet) *doctree.Node {
	sec := doctree.NewElement(doctree.ElemSection)
	sec.SetAttr("kind", "type")
	sec.SetAttr("name", typ.Name)
	sec.SetAttr("signature", renderGenDecl(typ.Decl, fset))
	if s := strings.TrimSpace(typ.Doc); s != "" {
		sec.AppendChild(doctree.NewText(s))
	}
	for _, v := range typ.Consts {
		sec.AppendChild(valueSection("const", v, fset))
	}
	for _, v := range typ.Vars {
		sec.AppendChild(valueSection("var", v, fset))
	}
	for _, fn := range typ.Funcs {
		sec.AppendChild(funcSection(fn, fset))
	}
	for _, m := range typ.Methods {
		sec.AppendChild(funcSection(m, fset))
	}
	return sec
}

func funcSection(fn *doc.Func, fset *token.FileSet) *doctree.Node {
	sec := doctree.NewElement(doctree.ElemSection)
	sec.SetAttr("kind", "func")
	name := fn.Name
	if fn.Recv != "" {
		name = fmt.Sprintf("(%s).%s", fn.Recv, fn.Name)
	}
	sec.SetAttr("name", name)
	sec.SetAttr("signature", renderFuncDecl(fn.Decl, fset))
	if s := strings.TrimSpace(fn.Doc); s != "" {
		sec.AppendChild(doctree.NewText(s))
	}
	return sec
}

// renderFuncDecl prints a function signature without its doc comment or
// body.
func renderFuncDecl(decl *ast.FuncDecl, fset *token.FileSet) string {
	stripped := *decl
	stripped.Doc = nil
	stripped.Body = nil
	return printDecl(&stripped, fset)
}

// renderGenDecl prints a const/var/type declaration without its doc
// comment.
func renderGenDecl(decl *ast.GenDecl, fset *token.FileSet) string {
	stripped := *decl
	stripped.Doc = nil
	return printDecl(&stripped, fset)
}

func printDecl(decl ast.Decl, fset *token.FileSet) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, decl); err != nil {
		return ""
	}
	return buf.String()
}
