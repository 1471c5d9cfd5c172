// Package dana is the host embedding API spec §6.2 describes: the surface
// a Go program uses to stand up one Dana interpreter, register host
// callables and modules, run source, and call back into Dana code. It is
// the wiring layer that turns the otherwise-decoupled internal packages
// (interp, context, registry, module, resource, reason, config, logging)
// into one running interpreter, the way a teacher's cmd/ entrypoint wires
// its kernel, stores, and clients together.
package dana

import (
	"fmt"
	"os"

	"github.com/dana-lang/dana/internal/config"
	dcontext "github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/interp"
	"github.com/dana-lang/dana/internal/logging"
	"github.com/dana-lang/dana/internal/module"
	"github.com/dana-lang/dana/internal/parser"
	"github.com/dana-lang/dana/internal/reason"
	"github.com/dana-lang/dana/internal/resource"
	"github.com/dana-lang/dana/internal/resource/audit"
	"github.com/dana-lang/dana/internal/resource/knowledge"
	"github.com/dana-lang/dana/internal/resource/llm"
	"github.com/dana-lang/dana/internal/values"
)

// Options configures a new Interpreter (spec §6.2's `Interpreter(config)`).
// Every field is optional. With the zero Options, New builds the LLM
// client from the default configuration and the environment; the default
// provider (gemini) needs an API key, so New returns an error unless a
// provider API key variable or DANA_MOCK_LLM is set. There are no search
// paths beyond $DANAPATH and no observer.
type Options struct {
	// ConfigPath, if set, is loaded via config.Load. Ignored if Config is
	// also set.
	ConfigPath string

	// Config overrides ConfigPath with an already-built configuration
	// (e.g. one a host assembled programmatically rather than from a
	// YAML file).
	Config *config.Config

	// SearchPaths is appended after Config's own search_paths and
	// $DANAPATH (spec §4.6 step 1: checked in order).
	SearchPaths []string

	// Observer receives statement/error/resource-event tracing (spec
	// §6.2 item 6). Nil means no tracing callback is wired.
	Observer interp.Observer
}

// Interpreter is one Dana program's runtime: an internal interpreter, its
// module loader, and the resource/reasoning subsystems wired into it.
// Mirrors spec §6.2's `Interpreter` host type.
type Interpreter struct {
	ip      *interp.Interpreter
	loader  *module.Loader
	cfg     *config.Config
	audit   *audit.Sink
	watcher *module.Watcher
}

// New builds an Interpreter per opts (spec §6.2: `Interpreter(config)`).
func New(opts Options) (*Interpreter, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("dana: load config: %w", err)
		}
		cfg = loaded
	}

	if err := logging.Configure(cfg.Logging); err != nil {
		return nil, fmt.Errorf("dana: configure logging: %w", err)
	}

	searchPaths := append(append([]string{}, cfg.SearchPaths...), opts.SearchPaths...)
	loader := module.New(searchPaths)

	ip := interp.New("<embedded>")
	ip.Importer = loader
	ip.Observer = opts.Observer

	llmCfg := llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Mock:        cfg.LLM.Mock,
	}
	llmClient, err := llm.New(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("dana: build llm client: %w", err)
	}

	ip.Reasoner = reason.New(llmClient, ip.Structs)
	ip.Resources = resource.New(llmCfg)

	d := &Interpreter{ip: ip, loader: loader, cfg: cfg}

	if kb := defaultKnowledgeStore(cfg); kb != nil {
		ip.Knowledge = kb
	}

	for name, v := range cfg.EnvBindings() {
		ip.Ctx.Set(dcontext.System, name, v)
	}

	ip.Ctx.OnRelease = func(kind, name string) {
		if opts.Observer != nil {
			// ResourceAcquired/Statement/Error share the interp.Observer
			// surface; release is delivered through context.Context
			// instead, since acquisition and release happen in different
			// packages. Adapted here into the same Observer, via the
			// ResourceReleased method below.
			if ro, ok := opts.Observer.(ResourceReleaseObserver); ok {
				ro.ResourceReleased(kind, name)
			}
		}
	}

	return d, nil
}

// defaultKnowledgeStore builds a *knowledge.Store from the first
// `resources.knowledge.*` entry in cfg, if any, so a bare `kb.<path>`
// identifier (spec §4.5.1) resolves without the program itself having to
// `use("knowledge.<name>")` first. Returns nil if no knowledge resource is
// configured.
func defaultKnowledgeStore(cfg *config.Config) *knowledge.Store {
	names, ok := cfg.Resources["knowledge"]
	if !ok || len(names) == 0 {
		return nil
	}
	for name := range names {
		rc := cfg.ResourceConfig("knowledge", name)
		var paths []string
		if v, ok := rc["paths"]; ok {
			if list, ok := v.(*values.List); ok {
				for _, e := range list.Elems {
					if s, ok := e.(values.Str); ok {
						paths = append(paths, string(s))
					}
				}
			}
		}
		facts := ""
		if v, ok := rc["facts"]; ok {
			facts = v.String()
		}
		store, err := knowledge.New(knowledge.Config{Paths: paths, Facts: facts})
		if err != nil {
			logging.Get(logging.CategoryBoot).Warnf("dana: default knowledge store %q: %v", name, err)
			continue
		}
		return store
	}
	return nil
}

// ResourceReleaseObserver is an optional extension to interp.Observer: an
// Options.Observer that also implements this interface additionally
// receives resource-release events, matching spec §6.2's "resource
// acquisition/release" in full (ResourceAcquired alone only covers half of
// that pair, since acquisition and release are observed at different
// layers of the runtime — see interp.Observer's own doc comment).
type ResourceReleaseObserver interface {
	ResourceReleased(kind, name string)
}

// EnableAudit opens a SQLite-backed sink at path recording every reason()
// call (spec's optional session-log, internal/resource/audit), and wires
// it into the reasoner built by New.
func (d *Interpreter) EnableAudit(path string) error {
	sink, err := audit.Open(path)
	if err != nil {
		return fmt.Errorf("dana: enable audit: %w", err)
	}
	d.audit = sink
	if r, ok := d.ip.Reasoner.(*reason.Reasoner); ok {
		r.Audit = sink
	}
	return nil
}

// EnableHotReload starts watching the interpreter's search paths for
// edited .na files, evicting the module loader's cache so a long-lived
// host picks up the change on the next `import` (internal/module's
// fsnotify-backed Watcher). Returns an error only if the underlying
// fsnotify watcher itself fails to start; an individual missing directory
// is skipped, not fatal.
func (d *Interpreter) EnableHotReload() error {
	w, err := module.NewWatcher(d.loader)
	if err != nil {
		return fmt.Errorf("dana: enable hot reload: %w", err)
	}
	w.Start()
	d.watcher = w
	return nil
}

// RegisterFunction installs fn as name in the given namespace (spec §6.2:
// `register_function(name, callable, namespace=None, is_context_aware=False)`).
// namespace == "" registers into the default (bare-name) namespace.
func (d *Interpreter) RegisterFunction(name string, fn values.NativeFunc, namespace string, isContextAware bool) error {
	return d.ip.Registry.Register(namespace, name, &values.Function{Name: name, Native: fn}, isContextAware, true)
}

// LoadModule registers a compiled-in host module under path, so `import
// path` resolves to it without touching the filesystem (spec §6.2:
// `load_module(path)`).
func (d *Interpreter) LoadModule(path string, m module.HostModule) {
	d.loader.RegisterHostModule(path, m)
}

// Run parses and executes source as a top-level Dana program (spec §6.2:
// `run(source_text)`), then shuts down any resources the program still
// owns at the module level (spec §4.5.4 trigger 4).
func (d *Interpreter) Run(source string) error {
	return d.run("<source>", source)
}

// RunFile reads, parses, and executes the Dana source file at path (spec
// §6.2: `run_file(path)`).
func (d *Interpreter) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dana: read %s: %w", path, err)
	}
	return d.run(path, string(src))
}

func (d *Interpreter) run(file, source string) error {
	prog, errs := parser.Parse(file, source)
	if len(errs) > 0 {
		return fmt.Errorf("dana: parse %s: %w", file, errs[0])
	}
	runErr := d.ip.Run(prog)
	shutdownErr := d.ip.Ctx.Shutdown()
	if runErr != nil {
		return runErr
	}
	return shutdownErr
}

// CallFunction invokes a registered function by qualified name with
// already-constructed Dana values (spec §6.2: `call_function(qualified_name,
// args, kwargs, context=None)`). The `context` parameter spec.md allows is
// the Execution Context itself, which this API never exposes to the host —
// every call runs against the Interpreter's own Context, matching every
// other entry point.
func (d *Interpreter) CallFunction(qualifiedName string, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	return d.ip.Call(qualifiedName, args, kwargs)
}

// Close releases any still-owned resources and closes the optional audit
// sink and hot-reload watcher. Safe to call even if EnableAudit/
// EnableHotReload were never called.
func (d *Interpreter) Close() error {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	shutdownErr := d.ip.Ctx.Shutdown()
	if err := d.audit.Close(); err != nil && shutdownErr == nil {
		return err
	}
	return shutdownErr
}
