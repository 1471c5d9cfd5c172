package llm

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// mockClient returns a deterministic canned response derived from the
// prompt, for `llm.mock=true` / DANA_MOCK_LLM (spec §6.3): tests need a
// reproducible reason() without a live backend.
type mockClient struct{}

func newMock() Client { return mockClient{} }

func (mockClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	sum := sha1.Sum([]byte(prompt))
	return fmt.Sprintf("mock-response-%s", hex.EncodeToString(sum[:4])), nil
}
