package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wjlee930501/motion-ai-cs/common/llm"
	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

const (
	summaryMaxEvents   = 30
	summaryErrorRunes  = 50
	summaryLineRunes   = 200
	summaryManualCheck = "수동 확인 필요"
)

// TicketSummaryResponse is the JSON object the summarizer must return.
type TicketSummaryResponse struct {
	Summary        string `json:"summary" jsonschema_description:"Bullet point summary of the conversation"`
	NextAction     string `json:"next_action" jsonschema_description:"What staff should do next"`
	OverallUrgency string `json:"overall_urgency" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
}

var ticketSummarySchema = llm.GenerateSchema[TicketSummaryResponse]()

const summarySystemPrompt = `당신은 병원 CS 티켓 요약 전문가입니다.
고객과 직원의 카카오톡 대화를 읽고 JSON으로 요약합니다.

- summary: 대화의 핵심 내용을 "• "로 시작하는 글머리표 2~4줄로 요약
- next_action: 담당자가 다음에 해야 할 일 한 줄
- overall_urgency: 전체 긴급도 (critical/high/medium/low)

반드시 유효한 JSON만 출력하세요.`

type TicketSummary struct {
	Summary        string
	NextAction     string
	OverallUrgency model.Urgency
	Model          string
}

// Summarizer condenses a ticket's conversation with the escalated model.
type Summarizer struct {
	client llm.Client
	logger *slog.Logger
}

func NewSummarizer(client llm.Client, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{client: client, logger: logger}
}

// Summarize never fails; errors are folded into the summary text so the
// dashboard always has something to show.
func (s *Summarizer) Summarize(ctx context.Context, clinicKey string, events []model.MessageEvent) TicketSummary {
	if len(events) == 0 {
		return TicketSummary{
			Summary:        "• 메시지 없음",
			NextAction:     "추가 정보 필요",
			OverallUrgency: model.UrgencyLow,
			Model:          model.ModelSkip,
		}
	}
	if s.client == nil {
		return summaryError(errTierNotConfigured)
	}

	sc := logger.StartSpan(ctx, "classify.summarize")
	defer sc.End()
	ctx = sc.Context()

	if len(events) > summaryMaxEvents {
		events = events[len(events)-summaryMaxEvents:]
	}

	resp, err := s.client.Complete(ctx, llm.Request{
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   buildSummaryPrompt(clinicKey, events),
		Temperature:  llm.Temp(0),
		SchemaName:   "ticket_summary",
		Schema:       ticketSummarySchema,
	})
	if err != nil {
		sc.RecordError(err)
		s.logger.WarnContext(ctx, "ticket summary failed", "clinic_key", clinicKey, "error", err)
		return summaryError(err)
	}

	out := TicketSummary{
		Summary:        "• 요약 생성 실패",
		NextAction:     summaryManualCheck,
		OverallUrgency: model.UrgencyMedium,
		Model:          s.client.Model(),
	}
	obj, _, err := extractJSONObject(resp.Content)
	if err != nil || !hasKeys(obj, "summary", "next_action") {
		s.logger.WarnContext(ctx, "ticket summary unusable",
			"clinic_key", clinicKey, "content", logger.Truncate(resp.Content, 200))
		return out
	}

	if v, ok := stringField(obj, "summary"); ok && v != "" {
		out.Summary = v
	}
	if v, ok := stringField(obj, "next_action"); ok && v != "" {
		out.NextAction = v
	}
	if v, ok := stringField(obj, "overall_urgency"); ok {
		out.OverallUrgency = normalizeUrgency(v)
	}
	return out
}

func summaryError(err error) TicketSummary {
	return TicketSummary{
		Summary:        "• 요약 오류: " + firstRunes(err.Error(), summaryErrorRunes),
		NextAction:     summaryManualCheck,
		OverallUrgency: model.UrgencyMedium,
		Model:          model.ModelError,
	}
}

func buildSummaryPrompt(clinicKey string, events []model.MessageEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "병원: %s\n\n대화 내역:\n", clinicKey)
	for _, e := range events {
		who := "고객"
		if e.SenderType == model.SenderTypeStaff {
			who = "직원"
		}
		fmt.Fprintf(&b, "[%s %s] %s\n",
			e.ReceivedAt.Format("01-02 15:04"), who, logger.Truncate(e.Text, summaryLineRunes))
	}
	b.WriteString("\n위 대화를 요약하여 JSON으로 반환하세요.")
	return b.String()
}
