package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aroyle/depthroute/src/config"
	"github.com/aroyle/depthroute/src/models"
	"github.com/aroyle/depthroute/src/router"
	"github.com/aroyle/depthroute/src/utils"
)

const scoringPromptFmt = `Rate the conceptual depth of the following message on a scale from 0 to 100, where 0 is trivial small talk and 100 demands deep multi-step reasoning. Reply with the number first, then a one-sentence justification.

Message: %s`

// Orchestrator turns a raw user message into a routed model call and keeps
// the session's usage statistics consistent with every call it makes.
//
// One instance is shared by concurrent HTTP handlers, so all mutable state
// sits behind the mutex. The generator and record store are injected and
// treated as opaque fallible services; neither is ever retried here.
type Orchestrator struct {
	gen      models.Generator
	store    models.RecordStore
	selector *router.Selector
	keywords []string

	mu          sync.Mutex
	blocks      []models.ContextBlock
	initialized bool
	stats       models.UsageStats
	window      *latencyWindow
}

func New(gen models.Generator, store models.RecordStore, cfg *config.RouterConfig) *Orchestrator {
	return &Orchestrator{
		gen:      gen,
		store:    store,
		selector: router.NewSelector(cfg),
		keywords: cfg.Keywords,
		window:   newLatencyWindow(cfg.LatencyWindow),
	}
}

// InitializeContext token-counts each block, stores them in order, and adds
// their counts to the cached-token tally. It must succeed before
// RouteAndRespond is usable. Re-initializing replaces the previous blocks
// and their statistics contribution.
func (o *Orchestrator) InitializeContext(ctx context.Context, blocks []string) error {
	if o.gen == nil {
		return ErrNotConfigured
	}
	if len(blocks) == 0 {
		return ErrNoBlocks
	}

	counted := make([]models.ContextBlock, 0, len(blocks))
	for i, text := range blocks {
		counted = append(counted, models.ContextBlock{
			Position: i,
			Text:     text,
			Tokens:   o.gen.CountTokens(o.selector.FastModel(), text),
		})
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.dropContextLocked()
	for _, block := range counted {
		o.stats.CachedTokens += block.Tokens
		o.stats.TotalTokens += block.Tokens
		o.stats.TierTokens = append(o.stats.TierTokens, block.Tokens)
	}
	o.blocks = counted
	o.initialized = true

	return nil
}

// ScoreComplexity rates a message on the 0-100 scale. With a generator
// available and context initialized it asks the fast model for a rating and
// folds that call's token usage into the statistics; on any failure it falls
// back to the deterministic keyword heuristic. It never returns an error.
func (o *Orchestrator) ScoreComplexity(ctx context.Context, message string) models.RequestScore {
	o.mu.Lock()
	ready := o.gen != nil && o.initialized
	o.mu.Unlock()

	if !ready {
		return router.HeuristicScore(message, o.keywords)
	}

	prompt := fmt.Sprintf(scoringPromptFmt, message)
	reply, usage, err := o.gen.Generate(ctx, o.selector.FastModel(), prompt, models.GenerateOptions{
		Temperature: 0.1,
		MaxTokens:   120,
	})
	if err != nil {
		log.Printf("complexity assessment failed, using heuristic: %v", err)
		return heuristicFallback(message, o.keywords)
	}

	score, err := router.ParseScoreReply(reply)
	if err != nil {
		log.Printf("unparseable assessment reply, using heuristic: %v", err)
		return heuristicFallback(message, o.keywords)
	}

	o.mu.Lock()
	o.stats.TotalTokens += usage.Total()
	o.stats.RequestCount++
	o.stats.CostEstimate += utils.RequestCost(usage.InputTokens, usage.OutputTokens)
	o.mu.Unlock()

	return score
}

func heuristicFallback(message string, keywords []string) models.RequestScore {
	score := router.HeuristicScore(message, keywords)
	score.Rationale = "assessment unavailable, " + score.Rationale
	return score
}

// RouteAndRespond scores the message, selects a model, issues the generation
// call with the cached context prepended, updates the usage statistics, and
// hands the finished record to the store. A store failure is logged and
// swallowed; only the generation call itself can fail the operation.
func (o *Orchestrator) RouteAndRespond(ctx context.Context, message, sessionID, userID string) (*models.RequestRecord, error) {
	o.mu.Lock()
	if !o.initialized {
		o.mu.Unlock()
		return nil, ErrNotInitialized
	}
	blocks := o.blocks
	o.mu.Unlock()

	score := o.ScoreComplexity(ctx, message)
	decision := o.selector.Decide(score.Score)
	payload := buildPayload(blocks, message, score)

	start := time.Now()
	response, usage, err := o.gen.Generate(ctx, decision.Model, payload, models.GenerateOptions{})
	if err != nil {
		return nil, &GenerationError{Model: decision.Model, Err: err}
	}
	latency := time.Since(start)

	cost := utils.RequestCost(usage.InputTokens, usage.OutputTokens)

	o.mu.Lock()
	o.stats.TotalTokens += usage.Total()
	o.stats.RequestCount++
	o.stats.CostEstimate += cost
	o.window.Add(latency)
	o.stats.AvgLatency = o.window.Average()
	o.mu.Unlock()

	record := &models.RequestRecord{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		UserID:       userID,
		Prompt:       message,
		Response:     response,
		Model:        decision.Model,
		Score:        score.Score,
		Rationale:    score.Rationale,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Latency:      latency,
		Cost:         cost,
		CreatedAt:    time.Now(),
	}

	if o.store != nil {
		if err := o.store.Insert(ctx, record); err != nil {
			log.Printf("memory insert failed for record %s: %v", record.ID, err)
		}
	}

	return record, nil
}

// Statistics returns an independent snapshot of the running totals.
func (o *Orchestrator) Statistics() models.UsageStats {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := o.stats
	snapshot.TierTokens = append([]int(nil), o.stats.TierTokens...)
	return snapshot
}

// Clear drops the cached context and its contribution to the token tallies,
// returning the instance to the uninitialized state. Request count, cost,
// and latency history are session-lifetime accounting and survive.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropContextLocked()
}

func (o *Orchestrator) dropContextLocked() {
	o.stats.TotalTokens -= o.stats.CachedTokens
	o.stats.CachedTokens = 0
	o.stats.TierTokens = nil
	o.blocks = nil
	o.initialized = false
}

// buildPayload concatenates the context tiers in initialization order with
// the score-annotated user message.
func buildPayload(blocks []models.ContextBlock, message string, score models.RequestScore) string {
	var b strings.Builder
	for _, block := range blocks {
		b.WriteString(block.Text)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "[complexity %d/100: %s]\n\nUser: %s", score.Score, score.Rationale, message)
	return b.String()
}
