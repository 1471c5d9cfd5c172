// Package knowledge backs the `knowledge` resource kind: a read-only
// fact lookup reached either through use("knowledge.<name>").get(key) or
// directly through a `kb.<dotted.path>` identifier (spec §4.5.1, §6.4).
// Grounded on the teacher's Mangle engine wrapper (internal/mangle/
// engine.go): facts are Datalog atoms kept in a google/mangle
// factstore, parsed from .facts source files with the same parse.Unit
// the teacher uses to load schema fragments. Unlike the teacher's
// Engine, this store never evaluates rules — it is a flat index of
// ground facts of the form kb(key, value), not a deduction engine, so
// there is no AnalyzeOneUnit/QueryContext/rule evaluation here.
package knowledge

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	mangleast "github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

// factPredicate is the single predicate every .facts file populates:
// kb("dotted.path", value). A flat key/value index keeps the resource's
// surface (get(key) -> any) simple without requiring callers to declare
// a schema first.
const factPredicate = "kb"

// Config is the acquisition config for use("knowledge.<name>"). Paths
// lists .facts source files to load at construction time; Facts allows
// inline fact source for tests.
type Config struct {
	Paths []string
	Facts string
}

// Store is a read-only index of kb(key, value) facts.
type Store struct {
	store factstore.FactStore
}

// New loads every configured .facts file (and any inline Facts source)
// into an in-memory fact store.
func New(cfg Config) (*Store, error) {
	base := factstore.NewSimpleInMemoryStore()
	s := &Store{store: base}

	for _, path := range cfg.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
		}
		if err := s.load(base, string(data), path); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(cfg.Facts) != "" {
		if err := s.load(base, cfg.Facts, "<inline>"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load(base *factstore.SimpleInMemoryStore, source, origin string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(source)))
	if err != nil {
		return fmt.Errorf("knowledge: parse %s: %w", origin, err)
	}
	for _, clause := range unit.Clauses {
		if len(clause.Premises) != 0 {
			return fmt.Errorf("knowledge: %s: rules are not supported, only ground facts (%s)", origin, clause.Head)
		}
		if clause.Head.Predicate.Symbol != factPredicate {
			return fmt.Errorf("knowledge: %s: unexpected predicate %q, only %q facts are loaded", origin, clause.Head.Predicate.Symbol, factPredicate)
		}
		base.Add(clause.Head)
	}
	return nil
}

// Get looks up the value stored under key, spec §6.4's get(key) -> any.
func (s *Store) Get(key string) (values.Value, bool) {
	var found values.Value
	ok := false
	sym := mangleast.PredicateSym{Symbol: factPredicate, Arity: 2}
	_ = s.store.GetFacts(mangleast.NewQuery(sym), func(atom mangleast.Atom) error {
		if ok || len(atom.Args) != 2 {
			return nil
		}
		k, isConst := atom.Args[0].(mangleast.Constant)
		if !isConst || k.Type != mangleast.StringType || k.Symbol != key {
			return nil
		}
		v, isConst := atom.Args[1].(mangleast.Constant)
		if !isConst {
			return nil
		}
		found = constantToValue(v)
		ok = true
		return nil
	})
	return found, ok
}

// Lookup implements interp.KnowledgeBase for `kb.<dotted.path>` use()
// identifiers (path has already had the leading "kb." stripped by the
// caller, spec §4.5.1).
func (s *Store) Lookup(path string) (values.Value, error) {
	v, ok := s.Get(path)
	if !ok {
		return nil, danaerr.NewNameNotBound("kb."+path, danaerr.Location{})
	}
	return v, nil
}

func constantToValue(c mangleast.Constant) values.Value {
	switch c.Type {
	case mangleast.StringType, mangleast.NameType, mangleast.BytesType:
		return values.Str(c.Symbol)
	case mangleast.NumberType:
		return values.Int(c.NumValue)
	case mangleast.Float64Type:
		return values.Float(math.Float64frombits(uint64(c.NumValue)))
	default:
		return values.Str(c.String())
	}
}

type hooks struct{}

func (hooks) InitializeResource(ctx any) error      { return nil }
func (hooks) CleanupResource(ctx any) error         { return nil }
func (hooks) EmergencyCleanup(ctx any, cause error) {}

// NewResource builds the `knowledge` resource kind's handle (spec §6.4:
// get(key) -> any, read-only).
func NewResource(name string, cfg Config) (*values.Resource, error) {
	store, err := New(cfg)
	if err != nil {
		return nil, err
	}
	r := values.NewResource("knowledge", name, hooks{})

	r.Ops["get"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		if len(args) < 1 {
			return nil, danaerr.NewArgumentError(danaerr.Location{}, "get(key): missing key")
		}
		key, ok := args[0].(values.Str)
		if !ok {
			return nil, danaerr.NewTypeError(danaerr.Location{}, "get: key must be a string, got %s", args[0].Type())
		}
		v, ok := store.Get(string(key))
		if !ok {
			return values.NullValue, nil
		}
		return v, nil
	}

	return r, nil
}
