package names

import (
	"context"
	"fmt"
	"sync"

	"github.com/hetulpatel/userseed/internal/logging"
)

const defaultLLMBatch = 50

// Lister is satisfied by *llm.Client.
type Lister interface {
	ListNames(ctx context.Context, n int) ([]string, error)
}

// LLMGenerator asks a chat model for batches of full names and hands them out one at a time.
type LLMGenerator struct {
	client    Lister
	batchSize int

	mu      sync.Mutex
	pending []Name
}

func NewLLMGenerator(client Lister, batchSize int) *LLMGenerator {
	if batchSize <= 0 {
		batchSize = defaultLLMBatch
	}
	return &LLMGenerator{client: client, batchSize: batchSize}
}

func (g *LLMGenerator) Name(ctx context.Context) (Name, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.pending) == 0 {
		batch, err := g.fetch(ctx)
		if err != nil {
			return Name{}, err
		}
		g.pending = batch
	}
	n := g.pending[0]
	g.pending = g.pending[1:]
	return n, nil
}

func (g *LLMGenerator) fetch(ctx context.Context) ([]Name, error) {
	if g.client == nil {
		return nil, fmt.Errorf("llm names: client is nil")
	}
	lines, err := g.client.ListNames(ctx, g.batchSize)
	if err != nil {
		return nil, fmt.Errorf("llm names: %w", err)
	}
	var out []Name
	for _, line := range lines {
		n, err := SplitFullName(line)
		if err != nil {
			logging.Debugf("[names] skipping %v", err)
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("llm names: reply contained no usable names")
	}
	logging.Debugf("[names] fetched %d names from llm", len(out))
	return out, nil
}
