// Package human backs the `human` resource kind: a blocking query() that
// prompts on stdout and reads one line from stdin. No TUI, no history, no
// autocomplete (spec Non-goals rule those out) — just the read-a-line
// idiom the teacher uses for its own cold-start prompts, grounded on
// internal/init/interactive.go's bufio.NewReader(os.Stdin)/readInput
// pattern.
package human

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

// Config is the acquisition config for use("human.<name>"). Both fields
// default to the process's own stdin/stdout when unset, which is the
// only mode the CLI actually wires up; the fields exist so tests can
// substitute a string reader and a discard writer.
type Config struct {
	In  io.Reader
	Out io.Writer
}

// Client prompts a single reader for input, one line at a time.
type Client struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

func New(cfg Config) *Client {
	in := cfg.In
	if in == nil {
		in = os.Stdin
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return &Client{reader: bufio.NewReader(in), out: out}
}

// Query writes prompt to Out (unless empty) and blocks for one line of
// input from In, trimming the trailing newline the way readInput does.
func (c *Client) Query(prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("human: read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

type hooks struct{}

func (hooks) InitializeResource(ctx any) error      { return nil }
func (hooks) CleanupResource(ctx any) error         { return nil }
func (hooks) EmergencyCleanup(ctx any, cause error) {}

// NewResource builds the `human` resource kind's handle (spec §6.4:
// query(prompt) -> string).
func NewResource(name string, cfg Config) (*values.Resource, error) {
	client := New(cfg)
	r := values.NewResource("human", name, hooks{})

	r.Ops["query"] = func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
		var prompt string
		if len(args) > 0 {
			p, ok := args[0].(values.Str)
			if !ok {
				return nil, danaerr.NewTypeError(danaerr.Location{}, "query: prompt must be a string, got %s", args[0].Type())
			}
			prompt = string(p)
		}
		answer, err := client.Query(prompt)
		if err != nil {
			return nil, danaerr.WrapHost(err)
		}
		return values.Str(answer), nil
	}

	return r, nil
}
