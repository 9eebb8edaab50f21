package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

const redirectDirective = "//go:redirect-from"

// redirect maps a runtime symbol (src) to the kernel function (dst) that
// replaces it.
type redirect struct {
	src string
	dst string

	srcVMA uint64
	dstVMA uint64
}

// modulePath returns the module path declared by the go.mod file in root.
func modulePath(root string) (string, error) {
	goMod := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(goMod)
	if err != nil {
		return "", err
	}

	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("%s: missing module directive", goMod)
	}

	return path, nil
}

// scanRedirects collects the redirects declared by the non-test Go files
// under root/kernel.
func scanRedirects(root string) ([]*redirect, error) {
	prefix, err := modulePath(root)
	if err != nil {
		return nil, err
	}

	goFiles, err := collectGoFiles(filepath.Join(root, "kernel"))
	if err != nil {
		return nil, err
	}

	return findRedirects(root, prefix, goFiles)
}

func collectGoFiles(dir string) ([]string, error) {
	var goFiles []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		if filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go") {
			goFiles = append(goFiles, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return goFiles, nil
}

// findRedirects parses goFiles and returns a redirect for each function
// annotated with a go:redirect-from directive. Destination symbols are
// qualified with the import path of the package that declares them.
func findRedirects(root, prefix string, goFiles []string) ([]*redirect, error) {
	var redirects []*redirect

	for _, goFile := range goFiles {
		fset := token.NewFileSet()

		f, err := parser.ParseFile(fset, goFile, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", goFile, err)
		}

		relDir, err := filepath.Rel(root, filepath.Dir(goFile))
		if err != nil {
			return nil, err
		}
		pkgPath := prefix + "/" + filepath.ToSlash(relDir)

		for _, decl := range f.Decls {
			fnDecl, ok := decl.(*ast.FuncDecl)
			if !ok || fnDecl.Doc == nil {
				continue
			}

			for _, comment := range fnDecl.Doc.List {
				if !strings.HasPrefix(comment.Text, redirectDirective) {
					continue
				}

				fqName := fmt.Sprintf("%s.%s", pkgPath, fnDecl.Name)

				fields := strings.Fields(comment.Text)
				if len(fields) != 2 || fields[0] != redirectDirective {
					return nil, fmt.Errorf("%s: malformed go:redirect-from syntax for %q", fset.Position(comment.Pos()), fqName)
				}

				redirects = append(redirects, &redirect{
					src: fields[1],
					dst: fqName,
				})
			}
		}
	}

	// The table layout must not depend on the file walk order.
	sort.Slice(redirects, func(i, j int) bool {
		return redirects[i].src < redirects[j].src
	})

	return redirects, nil
}
