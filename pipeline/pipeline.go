// Package pipeline turns a travel problem into ranked strategies by walking
// the provider chain, normalizing the answer and critiquing each result.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"tripwise/llm"
	"tripwise/models"
	"tripwise/normalize"
)

const (
	PlaceholderCritique = "Critique unavailable."
	DegradedWarning     = "Live strategy generation is unavailable right now; showing sample strategies instead."
)

type Stage string

const (
	StageGenerate Stage = "generate"
	StageCritique Stage = "critique"
)

// Outcome tags what happened when one provider was tried for one stage.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeEmpty       Outcome = "empty"
	OutcomeError       Outcome = "error"
	OutcomeParseFailed Outcome = "parse_failed"
)

type Attempt struct {
	Provider models.Provider `json:"provider"`
	Stage    Stage           `json:"stage"`
	Outcome  Outcome         `json:"outcome"`
	Err      error           `json:"-"`
}

// KeyResolver yields the plaintext key a user may spend on a provider.
type KeyResolver interface {
	ResolveKey(ctx context.Context, userID string, p models.Provider) (string, bool)
}

// Result is the pipeline's answer. Degraded means Strategies is the mock set.
type Result struct {
	Strategies []models.Strategy `json:"strategies"`
	Degraded   bool              `json:"degraded"`
	Warning    string            `json:"warning,omitempty"`
	Provider   models.Provider   `json:"provider,omitempty"`
	Attempts   []Attempt         `json:"-"`
}

type Pipeline struct {
	keys     KeyResolver
	adapters []llm.Adapter
	log      *zap.Logger
	budget   time.Duration
}

// keySet holds the keys resolved for one request, by provider. Providers
// without a usable key are absent.
type keySet map[models.Provider]string

// New builds a pipeline over adapters, tried in the order given.
func New(keys KeyResolver, log *zap.Logger, adapters ...llm.Adapter) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{keys: keys, adapters: adapters, log: log}
}

// WithBudget bounds a whole Run to d. Critiques that would start after the
// deadline get the placeholder without calling a provider. Zero means no bound.
func (p *Pipeline) WithBudget(d time.Duration) *Pipeline {
	p.budget = d
	return p
}

// resolveKeys looks up every adapter's key once.
func (p *Pipeline) resolveKeys(ctx context.Context, userID string) keySet {
	keys := make(keySet, len(p.adapters))
	for _, a := range p.adapters {
		if k, ok := p.keys.ResolveKey(ctx, userID, a.Name()); ok {
			keys[a.Name()] = k
		}
	}
	return keys
}

// Run generates, critiques and ranks strategies for problem. It never fails:
// any total failure yields the mock strategies with Degraded set.
func (p *Pipeline) Run(ctx context.Context, userID, problem, origin string) Result {
	if p.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.budget)
		defer cancel()
	}
	prompt := llm.GenerationPrompt(llm.ComposeProblem(problem, origin))
	keys := p.resolveKeys(ctx, userID)

	raw, provider, attempts := p.firstSuccess(ctx, keys, StageGenerate,
		func(ctx context.Context, a llm.Adapter, key string) (string, error) {
			return a.Generate(ctx, prompt, key)
		})
	res := Result{Attempts: attempts}
	if raw == "" {
		return p.degrade(res, "no provider returned content")
	}

	var strategies []models.Strategy
	for _, s := range normalize.Decode(normalize.Strategies(raw)) {
		if s.Valid() {
			strategies = append(strategies, s)
		}
	}
	if len(strategies) == 0 {
		res.Attempts = append(res.Attempts, Attempt{Provider: provider, Stage: StageGenerate, Outcome: OutcomeParseFailed})
		return p.degrade(res, "provider content could not be normalized")
	}

	for i := range strategies {
		if ctx.Err() != nil {
			strategies[i].Critique, strategies[i].Score = PlaceholderCritique, 0
			continue
		}
		c, cAttempts := p.critique(ctx, keys, strategies[i])
		res.Attempts = append(res.Attempts, cAttempts...)
		strategies[i].Critique, strategies[i].Score = c.Text, c.Score
	}
	Rank(strategies)

	res.Strategies = strategies
	res.Provider = provider
	p.log.Info("strategies generated",
		zap.String("provider", string(provider)),
		zap.Int("count", len(strategies)),
	)
	return res
}

// CritiqueStrategy scores one strategy through the provider chain, independently
// of whichever provider generated it. On failure the placeholder critique with
// score 0 is returned.
func (p *Pipeline) CritiqueStrategy(ctx context.Context, userID string, s models.Strategy) (normalize.Critique, []Attempt) {
	return p.critique(ctx, p.resolveKeys(ctx, userID), s)
}

func (p *Pipeline) critique(ctx context.Context, keys keySet, s models.Strategy) (normalize.Critique, []Attempt) {
	placeholder := normalize.Critique{Text: PlaceholderCritique}

	s.Critique, s.Score = "", 0
	body, err := json.Marshal(s)
	if err != nil {
		return placeholder, nil
	}

	raw, provider, attempts := p.firstSuccess(ctx, keys, StageCritique,
		func(ctx context.Context, a llm.Adapter, key string) (string, error) {
			return a.Critique(ctx, string(body), key)
		})
	if raw == "" {
		return placeholder, attempts
	}
	c, ok := normalize.ParseCritique(raw)
	if !ok {
		p.log.Warn("critique unparseable", zap.String("provider", string(provider)), zap.String("title", s.Title))
		return placeholder, append(attempts, Attempt{Provider: provider, Stage: StageCritique, Outcome: OutcomeParseFailed})
	}
	return c, attempts
}

// Rank sorts strategies by score, highest first. Equal scores keep their order.
func Rank(strategies []models.Strategy) {
	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].Score > strategies[j].Score
	})
}

type callFunc func(ctx context.Context, a llm.Adapter, key string) (string, error)

// firstSuccess tries adapters in order and stops at the first non-empty text.
func (p *Pipeline) firstSuccess(ctx context.Context, keys keySet, stage Stage, fn callFunc) (string, models.Provider, []Attempt) {
	var attempts []Attempt
	for _, a := range p.adapters {
		name := a.Name()
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Provider: name, Stage: stage, Outcome: OutcomeError, Err: err})
			continue
		}
		key, ok := keys[name]
		if !ok {
			attempts = append(attempts, Attempt{Provider: name, Stage: stage, Outcome: OutcomeUnavailable})
			continue
		}

		text, err := fn(ctx, a, key)
		switch {
		case err != nil && (errors.Is(err, llm.ErrEmptyResponse) || llm.KindOf(err) == llm.KindEmpty):
			attempts = append(attempts, Attempt{Provider: name, Stage: stage, Outcome: OutcomeEmpty, Err: err})
		case err != nil:
			p.log.Warn("provider call failed",
				zap.String("provider", string(name)),
				zap.String("stage", string(stage)),
				zap.String("kind", string(llm.KindOf(err))),
				zap.Error(err),
			)
			attempts = append(attempts, Attempt{Provider: name, Stage: stage, Outcome: OutcomeError, Err: err})
		case strings.TrimSpace(text) == "":
			attempts = append(attempts, Attempt{Provider: name, Stage: stage, Outcome: OutcomeEmpty})
		default:
			attempts = append(attempts, Attempt{Provider: name, Stage: stage, Outcome: OutcomeSuccess})
			return text, name, attempts
		}
	}
	return "", "", attempts
}

func (p *Pipeline) degrade(res Result, reason string) Result {
	p.log.Warn("serving mock strategies", zap.String("reason", reason), zap.Int("attempts", len(res.Attempts)))
	res.Strategies = MockStrategies()
	Rank(res.Strategies)
	res.Degraded = true
	res.Warning = DegradedWarning
	res.Provider = ""
	return res
}
