package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wjlee930501/motion-ai-cs/common/cache"
	"github.com/wjlee930501/motion-ai-cs/common/llm"
	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/common/metrics"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type Tier string

const (
	TierSkip      Tier = "skip"
	TierPrimary   Tier = "primary"
	TierEscalated Tier = "escalated"
)

const (
	correctionWindow = 30 * 24 * time.Hour
	correctionLimit  = 15

	fallbackConfidence       = 0.5
	transportErrorConfidence = 0.3
)

var (
	errTierNotConfigured = errors.New("classifier tier not configured")
	classificationSchema = llm.GenerateSchema[ClassificationResponse]()
)

// Input is one customer message plus the context the caller could gather.
// Context and Profile are optional.
type Input struct {
	ChatRoom   string
	SenderType model.SenderType
	Text       string
	Context    []model.ConversationTurn
	Profile    *model.ConversationProfile
}

// Outcome is the final classification plus how it was reached.
type Outcome struct {
	Result   model.Classification
	Tier     Tier
	LLMCalls int
	Skip     *SkipMatch
}

// GuidanceSource provides operator corrections and learned CS understanding.
type GuidanceSource interface {
	LatestUnderstanding(ctx context.Context) (string, error)
	ListCorrections(ctx context.Context, since time.Time, limit int) ([]model.CorrectionPattern, error)
}

type Config struct {
	// Primary results below this confidence are re-run on the escalated tier.
	EscalationConfidence float64
	GuidanceTTL          time.Duration
	MaxTokens            int
}

// Pipeline classifies customer messages. It never returns an error: every
// failure path produces a conservative classification that needs a reply.
type Pipeline struct {
	matcher   *Matcher
	primary   llm.Client
	escalated llm.Client
	guidance  *cache.TTL[model.Guidance]
	cfg       Config
	logger    *slog.Logger
}

func NewPipeline(matcher *Matcher, primary, escalated llm.Client, guidance GuidanceSource, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.EscalationConfidence <= 0 {
		cfg.EscalationConfidence = 0.65
	}
	if cfg.GuidanceTTL <= 0 {
		cfg.GuidanceTTL = 5 * time.Minute
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if matcher == nil {
		matcher = NewMatcher(nil, 0)
	}

	p := &Pipeline{
		matcher:   matcher,
		primary:   primary,
		escalated: escalated,
		cfg:       cfg,
		logger:    logger,
	}
	if guidance != nil {
		p.guidance = cache.NewTTL("classifier_guidance", cfg.GuidanceTTL, func(ctx context.Context) (model.Guidance, error) {
			return loadGuidance(ctx, guidance)
		})
	}
	return p
}

// Reload drops the cached learned patterns and guidance, so rules approved
// since the last load apply to the next message.
func (p *Pipeline) Reload() {
	p.matcher.Reload()
	if p.guidance != nil {
		p.guidance.Invalidate()
	}
}

// CacheErrors maps each cache whose last load failed to that error. Both
// caches keep serving their last good value meanwhile.
func (p *Pipeline) CacheErrors() map[string]string {
	out := map[string]string{}
	if err := p.matcher.LastError(); err != nil {
		out["learned_skip_patterns"] = err.Error()
	}
	if p.guidance != nil {
		if err := p.guidance.LastError(); err != nil {
			out["classifier_guidance"] = err.Error()
		}
	}
	return out
}

// Classify runs the skip table, then the primary tier, then escalates at
// most once. Messages with an escalation keyword start on the escalated tier.
func (p *Pipeline) Classify(ctx context.Context, in Input) Outcome {
	sc := logger.StartSpan(ctx, "classify.pipeline")
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	if match, ok := p.matcher.Match(ctx, in.Text); ok {
		metrics.RecordClassification(string(TierSkip), "matched", time.Since(start).Seconds())
		return Outcome{
			Result: skipClassification(in.Text, match.Intent),
			Tier:   TierSkip,
			Skip:   &match,
		}
	}

	tier := TierPrimary
	if HasEscalationKeyword(in.Text) && p.escalated != nil {
		tier = TierEscalated
	}

	system := buildSystemPrompt(p.currentGuidance(ctx))
	user := buildUserPrompt(in)

	result, err := p.classifyWithTier(ctx, tier, system, user, in.Text)
	calls := 1
	if err == nil && tier == TierPrimary && result.Confidence < p.cfg.EscalationConfidence && p.escalated != nil {
		p.logger.DebugContext(ctx, "escalating low-confidence classification",
			"confidence", result.Confidence,
			"threshold", p.cfg.EscalationConfidence)
		tier = TierEscalated
		result, err = p.classifyWithTier(ctx, tier, system, user, in.Text)
		calls++
	}
	if err != nil {
		sc.RecordError(err)
		p.logger.WarnContext(ctx, "classification failed, using safe default",
			"tier", tier, "error", err)
		result = errorClassification(in.Text, err)
	}

	return Outcome{Result: result, Tier: tier, LLMCalls: calls}
}

// classifyWithTier makes exactly one model call. A transport failure is
// returned as an error; malformed output is not an error and yields the
// missing-fields fallback.
func (p *Pipeline) classifyWithTier(ctx context.Context, tier Tier, system, user, text string) (model.Classification, error) {
	client := p.primary
	if tier == TierEscalated {
		client = p.escalated
	}
	if client == nil {
		return model.Classification{}, fmt.Errorf("%s: %w", tier, errTierNotConfigured)
	}

	start := time.Now()
	resp, err := client.Complete(ctx, llm.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		MaxTokens:    p.cfg.MaxTokens,
		Temperature:  llm.Temp(0),
		SchemaName:   "classification",
		Schema:       classificationSchema,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordClassification(string(tier), "error", elapsed)
		return model.Classification{}, fmt.Errorf("%s tier: %w", tier, err)
	}

	result, ok := decodeClassification(resp.Content, text)
	result.Model = client.Model()
	outcome := "ok"
	if !ok {
		outcome = "fallback"
		p.logger.WarnContext(ctx, "classifier returned unusable output",
			"tier", tier, "model", result.Model, "content", logger.Truncate(resp.Content, 200))
	}
	metrics.RecordClassification(string(tier), outcome, elapsed)
	return result, nil
}

func (p *Pipeline) currentGuidance(ctx context.Context) model.Guidance {
	if p.guidance == nil {
		return model.Guidance{}
	}
	return p.guidance.Get(ctx)
}

// decodeClassification parses model output. ok is false when the
// missing-fields fallback was used.
func decodeClassification(content, text string) (model.Classification, bool) {
	obj, raw, err := extractJSONObject(content)
	if err != nil || !hasKeys(obj, "topic", "urgency", "confidence") {
		return fallbackClassification(text), false
	}

	topic, _ := stringField(obj, "topic")
	urgency, _ := stringField(obj, "urgency")
	confidence, okConf := floatField(obj, "confidence")
	if topic == "" || !okConf {
		return fallbackClassification(text), false
	}

	c := model.Classification{
		Topic:       topic,
		Urgency:     normalizeUrgency(urgency),
		Sentiment:   model.SentimentNeutral,
		Intent:      IntentOther,
		Confidence:  clamp01(confidence),
		RawResponse: raw,
	}

	if s, ok := stringField(obj, "sentiment"); ok {
		c.Sentiment = normalizeSentiment(s)
	}

	intent, hasIntent := stringField(obj, "intent")
	if hasIntent && intent != "" {
		c.Intent = intent
	}

	if nr, ok := boolField(obj, "needs_reply"); ok {
		c.NeedsReply = nr
	} else if hasIntent && intent != "" {
		c.NeedsReply = NeedsReply(intent)
	} else {
		c.NeedsReply = true
	}

	if s, ok := stringField(obj, "summary"); ok && s != "" {
		c.Summary = s
	} else {
		c.Summary = firstRunes(text, summaryFallbackRunes)
	}

	return c, true
}

func skipClassification(text, intent string) model.Classification {
	sentiment := model.SentimentNeutral
	if intent == IntentAcknowledgment {
		sentiment = model.SentimentPositive
	}
	return model.Classification{
		Topic:      TopicGreetings,
		Urgency:    model.UrgencyLow,
		Sentiment:  sentiment,
		Intent:     intent,
		NeedsReply: NeedsReply(intent),
		Summary:    firstRunes(text, summaryFallbackRunes),
		Confidence: 1.0,
		Model:      model.ModelSkip,
	}
}

func fallbackClassification(text string) model.Classification {
	return model.Classification{
		Topic:      TopicOther,
		Urgency:    model.UrgencyMedium,
		Sentiment:  model.SentimentNeutral,
		Intent:     IntentOther,
		NeedsReply: true,
		Summary:    firstRunes(text, summaryFallbackRunes),
		Confidence: fallbackConfidence,
	}
}

func errorClassification(text string, err error) model.Classification {
	c := fallbackClassification(text)
	c.Confidence = transportErrorConfidence
	c.Model = model.ModelError
	c.Error = err.Error()
	return c
}

func loadGuidance(ctx context.Context, source GuidanceSource) (model.Guidance, error) {
	corrections, err := source.ListCorrections(ctx, time.Now().Add(-correctionWindow), correctionLimit)
	if err != nil {
		return model.Guidance{}, fmt.Errorf("listing corrections: %w", err)
	}
	understanding, err := source.LatestUnderstanding(ctx)
	if err != nil {
		return model.Guidance{}, fmt.Errorf("loading understanding: %w", err)
	}

	// Drop rows with a missing side and duplicate pairs.
	seen := make(map[[2]string]struct{}, len(corrections))
	kept := corrections[:0]
	for _, c := range corrections {
		key := [2]string{c.FromIntent, c.ToIntent}
		if c.FromIntent == "" || c.ToIntent == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, c)
	}

	return model.Guidance{Corrections: kept, Understanding: understanding}, nil
}

func normalizeUrgency(s string) model.Urgency {
	switch u := model.Urgency(s); u {
	case model.UrgencyLow, model.UrgencyMedium, model.UrgencyHigh, model.UrgencyCritical:
		return u
	}
	return model.UrgencyMedium
}

func normalizeSentiment(s string) model.Sentiment {
	switch v := model.Sentiment(s); v {
	case model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative, model.SentimentAngry:
		return v
	}
	return model.SentimentNeutral
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
