// Package module implements the Dana module loader (spec §4.6): resolving
// `import path.to.module [as ns]` against a search path, executing Dana
// source modules in a fresh scope, introspecting host modules, and
// caching by canonical path with circular-import detection.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/interp"
	"github.com/dana-lang/dana/internal/parser"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/stdlib"
	"github.com/dana-lang/dana/internal/values"
)

// state tracks one cached module's load progress, so a second `import`
// of the same canonical path is a no-op (spec §4.6 step 5) and an import
// cycle is caught rather than re-entered (spec §4.6 "Circular imports").
type state int

const (
	stateLoading state = iota
	stateReady
)

type cacheEntry struct {
	state state
	live  *interp.Interpreter // non-nil while state == stateLoading

	funcs   map[string]*values.Function // frozen once state == stateReady
	structs map[string]*values.StructType
}

// snapshot returns the entry's currently-visible symbols: the frozen
// result for a ready module, or whatever a loading module's own
// top-level statements have registered so far (spec §4.6: "the
// partially-initialized module's symbol table is exposed" on a
// circular import).
func (e *cacheEntry) snapshot() (map[string]*values.Function, map[string]*values.StructType) {
	if e.state == stateReady {
		return e.funcs, e.structs
	}
	if e.live == nil {
		return nil, nil
	}
	baseline := baselineNames()
	funcs := map[string]*values.Function{}
	for name, rec := range e.live.Registry.Namespace(registry.DefaultNamespace) {
		if baseline[name] {
			continue
		}
		funcs[name] = rec.Func
	}
	return funcs, e.live.Structs.All()
}

// HostModule is a host-language module a Go embedder registers ahead of
// time (spec §4.6 step 3: "introspect to gather callables"). Exports
// names each callable the way a `def` would, keyed by the name Dana code
// imports it under.
type HostModule interface {
	Exports() map[string]values.NativeFunc
}

// Loader resolves, loads, and caches modules. It implements
// interp.Importer.
type Loader struct {
	// SearchPaths is checked in order when resolving a dotted module
	// path to a file, e.g. the config's search_paths followed by $DANAPATH
	// entries (spec §4.6 step 1). Only these directories are searched; no
	// built-in stdlib directory is added.
	SearchPaths []string

	// HostModules maps a dotted import path directly to a pre-built
	// host module, bypassing file resolution entirely. Used for modules
	// compiled into the embedding host itself.
	HostModules map[string]HostModule

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

func New(searchPaths []string) *Loader {
	return &Loader{
		SearchPaths: searchPaths,
		HostModules: make(map[string]HostModule),
		cache:       make(map[string]*cacheEntry),
	}
}

// RegisterHostModule wires a compiled-in module under path, so
// `import path` finds it without touching the filesystem.
func (l *Loader) RegisterHostModule(path string, m HostModule) {
	l.HostModules[path] = m
}

// Invalidate evicts the cache entry for the module loaded from absPath, if
// any, so the next `import` of that path re-reads and re-executes the file
// instead of returning a stale snapshot. Used by Watcher. Returns whether an
// entry was actually evicted.
func (l *Loader) Invalidate(absPath string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cache[absPath]; !ok {
		return false
	}
	delete(l.cache, absPath)
	return true
}

// Import implements interp.Importer. It installs the module's exported
// def/struct symbols into ip's Registry and Structs under ns.
func (l *Loader) Import(ip *interp.Interpreter, path, ns string) error {
	canonical, entry, err := l.resolve(path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if existing, seen := l.cache[canonical]; seen {
		funcs, structs := existing.snapshot()
		l.mu.Unlock()
		// Either a completed module (cache hit) or one still executing
		// higher up the call stack (circular import): either way, spec
		// §4.6 says to expose the symbol table as it stands now. A name the
		// partially-initialized module has not defined yet is simply absent
		// from ns, so reading it later raises NameNotBound; no
		// CircularImport error is raised.
		installInto(ip, ns, funcs, structs)
		return nil
	}
	own := &cacheEntry{state: stateLoading}
	l.cache[canonical] = own
	l.mu.Unlock()

	funcs, structs, err := l.load(canonical, entry, own, ip)

	l.mu.Lock()
	if err != nil {
		delete(l.cache, canonical)
		l.mu.Unlock()
		return err
	}
	own.state, own.live, own.funcs, own.structs = stateReady, nil, funcs, structs
	l.mu.Unlock()

	installInto(ip, ns, funcs, structs)
	return nil
}

// resolvedModule is the result of turning a dotted import path into a
// concrete source to load.
type resolvedModule struct {
	file   string // non-"" for a .na or host-source file
	isHost bool   // true when file is a yaegi-interpreted Go source
	host   HostModule
}

func (l *Loader) resolve(path string) (canonical string, rm resolvedModule, err error) {
	if hm, ok := l.HostModules[path]; ok {
		return "host:" + path, resolvedModule{host: hm}, nil
	}

	rel := strings.ReplaceAll(path, ".", string(filepath.Separator))
	for _, dir := range l.SearchPaths {
		naPath := filepath.Join(dir, rel+".na")
		if fileExists(naPath) {
			abs, err := filepath.Abs(naPath)
			if err != nil {
				abs = naPath
			}
			return abs, resolvedModule{file: naPath}, nil
		}
		goPath := filepath.Join(dir, rel+".go")
		if fileExists(goPath) {
			abs, err := filepath.Abs(goPath)
			if err != nil {
				abs = goPath
			}
			return abs, resolvedModule{file: goPath, isHost: true}, nil
		}
	}
	return "", resolvedModule{}, danaerr.NewInternalError("import %q: no .na or host module found on search path", path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (l *Loader) load(canonical string, rm resolvedModule, own *cacheEntry, parent *interp.Interpreter) (map[string]*values.Function, map[string]*values.StructType, error) {
	if rm.host != nil {
		return hostExports(rm.host), nil, nil
	}
	if rm.isHost {
		return loadYaegiModule(rm.file)
	}
	return loadDanaModule(rm.file, own, parent)
}

func loadDanaModule(file string, own *cacheEntry, parent *interp.Interpreter) (map[string]*values.Function, map[string]*values.StructType, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("module: read %s: %w", file, err)
	}
	prog, errs := parser.Parse(file, string(src))
	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("module: parse %s: %w", file, errs[0])
	}

	modIP := interp.New(file)
	// A module's own top level can import, use(), and reason() just like
	// the program that imported it, so it inherits the same wiring
	// (spec §4.6 describes a module as executing "in a fresh module
	// scope", not a fresh capability set).
	modIP.Importer = parent.Importer
	modIP.Resources = parent.Resources
	modIP.Reasoner = parent.Reasoner
	modIP.Knowledge = parent.Knowledge
	own.live = modIP // visible to a circular re-import while Run executes below
	baseline := baselineNames()
	if err := modIP.Run(prog); err != nil {
		return nil, nil, fmt.Errorf("module: execute %s: %w", file, err)
	}

	funcs := map[string]*values.Function{}
	for name, rec := range modIP.Registry.Namespace(registry.DefaultNamespace) {
		if baseline[name] {
			continue
		}
		funcs[name] = rec.Func
	}
	return funcs, modIP.Structs.All(), nil
}

func hostExports(hm HostModule) map[string]*values.Function {
	out := map[string]*values.Function{}
	for name, fn := range hm.Exports() {
		out[name] = &values.Function{Name: name, Native: fn}
	}
	return out
}

func installInto(ip *interp.Interpreter, ns string, funcs map[string]*values.Function, structs map[string]*values.StructType) {
	for name, fn := range funcs {
		_ = ip.Registry.Register(ns, name, fn, false, true)
	}
	for _, st := range structs {
		ip.Structs.Define(st)
	}
}

var (
	baselineOnce       sync.Once
	baselineNamesCache map[string]bool
)

// baselineNames is the set of names stdlib.RegisterBuiltins installs into
// every fresh interpreter's default namespace, so loadDanaModule can tell
// a module's own top-level defs apart from the builtins a fresh
// interp.New(file) always carries.
func baselineNames() map[string]bool {
	baselineOnce.Do(func() {
		reg := registry.New()
		if err := stdlib.RegisterBuiltins(reg); err != nil {
			panic(err)
		}
		baselineNamesCache = make(map[string]bool)
		for name := range reg.Namespace(registry.DefaultNamespace) {
			baselineNamesCache[name] = true
		}
	})
	return baselineNamesCache
}
