package module

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"

	"github.com/traefik/yaegi/interp"
	yaegistdlib "github.com/traefik/yaegi/stdlib"

	"github.com/dana-lang/dana/internal/values"
)

// stdlibAllowlist restricts host-module source to the same safe subset
// the teacher's YaegiExecutor sandboxes generated tools to
// (internal/autopoiesis/yaegi_executor.go): no os/exec, no net, no
// syscall. A host module bridging into Dana has no business doing
// anything a Dana program couldn't already do through a resource.
var stdlibAllowlist = map[string]bool{
	"strings": true, "strconv": true, "fmt": true, "math": true,
	"regexp": true, "encoding/json": true, "encoding/base64": true,
	"time": true, "sort": true, "bytes": true, "path": true, "path/filepath": true,
	"errors": true, "unicode": true, "unicode/utf8": true,
}

// loadYaegiModule interprets a host-language module's Go source with
// yaegi (spec §4.6 step 3, "host-language modules via a bridge") and
// wraps every exported top-level function into a NativeFunc, the way
// the teacher's YaegiExecutor turns interpreted source into a callable
// without a `go build` step.
func loadYaegiModule(file string) (map[string]*values.Function, map[string]*values.StructType, error) {
	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
	if err != nil {
		return nil, nil, fmt.Errorf("module: parse host module %s: %w", file, err)
	}
	if err := validateImports(astFile); err != nil {
		return nil, nil, fmt.Errorf("module: %s: %w", file, err)
	}
	pkgName := astFile.Name.Name
	exported := exportedFuncNames(astFile)

	i := interp.New(interp.Options{})
	if err := i.Use(yaegistdlib.Symbols); err != nil {
		return nil, nil, fmt.Errorf("module: load yaegi stdlib: %w", err)
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("module: read host module %s: %w", file, err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, nil, fmt.Errorf("module: interpret %s: %w", file, err)
	}

	funcs := map[string]*values.Function{}
	for _, name := range exported {
		v, err := i.Eval(pkgName + "." + name)
		if err != nil {
			return nil, nil, fmt.Errorf("module: %s: resolve %s: %w", file, name, err)
		}
		native, err := wrapGoFunc(name, v)
		if err != nil {
			return nil, nil, fmt.Errorf("module: %s: %w", file, err)
		}
		funcs[name] = &values.Function{Name: name, Native: native}
	}
	return funcs, nil, nil
}

// validateImports rejects anything outside stdlibAllowlist (spec §4.6's
// host bridge is sandboxed the same way the teacher's generated-tool
// execution is: no filesystem, network, or process access beyond what a
// Dana resource already grants through use()).
func validateImports(f *ast.File) error {
	var forbidden []string
	for _, imp := range f.Imports {
		path := trimQuotes(imp.Path.Value)
		if !stdlibAllowlist[path] {
			forbidden = append(forbidden, path)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports %v (only stdlib allowlist permitted)", forbidden)
	}
	return nil
}

func exportedFuncNames(f *ast.File) []string {
	var names []string
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		if fn.Name.IsExported() {
			names = append(names, fn.Name.Name)
		}
	}
	return names
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
