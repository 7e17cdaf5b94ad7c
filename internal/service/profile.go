package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

// Sentiment and urgency are mapped onto [0, 1] before averaging.
const (
	sentimentPositive = 1.0
	sentimentNeutral  = 0.5
	sentimentNegative = 0.2

	urgencyMedium   = 0.33
	urgencyHigh     = 0.66
	urgencyCritical = 1.0
)

var ErrProfileRunInProgress = errors.New("profile recompute already running")

type ProfileRunResult struct {
	Updated  int
	Failed   int
	Duration time.Duration
}

// ProfileService recomputes conversation profiles from recent annotations.
type ProfileService interface {
	Recompute(ctx context.Context) (*ProfileRunResult, error)
}

type profileService struct {
	profiles store.ProfileStore
	window   time.Duration
	now      func() time.Time
	logger   *slog.Logger

	// One run at a time; a scheduled run and a manual trigger may overlap.
	running sync.Mutex
}

func NewProfileService(profiles store.ProfileStore, window time.Duration, logger *slog.Logger) ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	if window <= 0 {
		window = 90 * 24 * time.Hour
	}
	return &profileService{
		profiles: profiles,
		window:   window,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *profileService) Recompute(ctx context.Context) (*ProfileRunResult, error) {
	if !s.running.TryLock() {
		return nil, ErrProfileRunInProgress
	}
	defer s.running.Unlock()

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "cs.profile"})
	start := s.now()

	aggregates, err := s.profiles.ListAggregates(ctx, start.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("listing profile aggregates: %w", err)
	}

	result := &ProfileRunResult{}
	for _, agg := range aggregates {
		if agg.Total == 0 {
			continue
		}
		p := BuildProfile(agg, start)
		if err := s.profiles.Upsert(ctx, &p); err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "failed to store conversation profile",
				"clinic_key", agg.ClinicKey, "error", err)
			continue
		}
		result.Updated++
	}

	result.Duration = s.now().Sub(start)
	s.logger.InfoContext(ctx, "conversation profiles recomputed",
		"updated", result.Updated, "failed", result.Failed, "duration", result.Duration)
	return result, nil
}

// BuildProfile derives averages, ratios and a label from raw counts. Values
// are rounded to two decimals.
func BuildProfile(agg model.ProfileAggregate, analyzedAt time.Time) model.ConversationProfile {
	total := float64(agg.Total)
	neutral := agg.Total - agg.PositiveCount - agg.NegativeCount - agg.AngryCount

	sentiment := (float64(agg.PositiveCount)*sentimentPositive +
		float64(neutral)*sentimentNeutral +
		float64(agg.NegativeCount)*sentimentNegative) / total
	urgency := (float64(agg.MediumCount)*urgencyMedium +
		float64(agg.HighCount)*urgencyHigh +
		float64(agg.CriticalCount)*urgencyCritical) / total
	complaint := float64(agg.ComplaintCount) / total
	escalation := float64(agg.EscalationCount) / total

	p := model.ConversationProfile{
		ClinicKey:          agg.ClinicKey,
		SentimentAvg:       round2(sentiment),
		ComplaintRatio:     round2(complaint),
		UrgencyAvg:         round2(urgency),
		EscalationTendency: round2(escalation),
		TotalInteractions:  agg.Total,
		TotalTickets:       agg.TicketCount,
		LastAnalyzedAt:     analyzedAt,
	}
	p.Label = ProfileLabel(p.SentimentAvg, p.ComplaintRatio, p.UrgencyAvg, p.EscalationTendency)
	return p
}

// ProfileLabel is demanding when at least two pressure signals fire, and
// friendly when sentiment is high with almost no complaints.
func ProfileLabel(sentiment, complaint, urgency, escalation float64) model.ProfileLabel {
	signals := 0
	for _, fired := range []bool{
		complaint >= 0.15,
		urgency >= 0.6,
		escalation >= 0.15,
		sentiment < 0.35,
	} {
		if fired {
			signals++
		}
	}
	if signals >= 2 {
		return model.ProfileLabelDemanding
	}
	if sentiment >= 0.7 && complaint < 0.05 {
		return model.ProfileLabelFriendly
	}
	return model.ProfileLabelNeutral
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
