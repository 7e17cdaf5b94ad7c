package classify

import (
	"fmt"
	"strings"

	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

const (
	contextTurnRunes     = 100
	understandingRunes   = 2000
	summaryFallbackRunes = 20
)

// ClassificationResponse is the JSON object the classifier must return.
type ClassificationResponse struct {
	Topic      string  `json:"topic" jsonschema_description:"One of the listed topics"`
	Urgency    string  `json:"urgency" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
	Sentiment  string  `json:"sentiment" jsonschema:"enum=positive,enum=neutral,enum=negative,enum=angry"`
	Intent     string  `json:"intent" jsonschema_description:"One of the listed intents"`
	NeedsReply bool    `json:"needs_reply"`
	Summary    string  `json:"summary" jsonschema_description:"One line summary, 20 characters or fewer"`
	Confidence float64 `json:"confidence" jsonschema_description:"Classification confidence 0.0-1.0"`
}

var baseSystemPrompt = `당신은 병원 CS 메시지 분류 전문가입니다.
카카오톡 메시지를 분석하여 JSON 형식으로 분류 결과를 반환합니다.

분류 기준:
- topic: 메시지의 주제 (아래 목록 중 선택)
- urgency: 긴급도 (critical/high/medium/low)
- sentiment: 감정 (positive/neutral/negative/angry)
- intent: 의도 (아래 목록 중 선택)
- needs_reply: 답변이 필요한 메시지인지 (true/false)
- summary: 핵심 내용 1줄 요약 (20자 이내)
- confidence: 분류 확신도 (0.0~1.0)

` + intentPromptSection() + `

` + topicPromptSection() + `

` + needsReplyGuide() + `

반드시 유효한 JSON만 출력하세요. 설명 없이 JSON만 출력합니다.`

func topicPromptSection() string {
	var b strings.Builder
	b.WriteString("Topic 목록:")
	for _, t := range Topics {
		b.WriteString("\n- ")
		b.WriteString(t)
	}
	return b.String()
}

// buildSystemPrompt appends learned guidance to the base prompt. Operator
// corrections come before the general understanding text.
func buildSystemPrompt(g model.Guidance) string {
	if g.IsEmpty() {
		return baseSystemPrompt
	}

	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if len(g.Corrections) > 0 {
		b.WriteString("\n---\n[분류 수정 규칙 - 반드시 참고]\n다음은 운영자가 수정한 분류 패턴입니다:\n")
		for _, c := range g.Corrections {
			fmt.Fprintf(&b, "- %q → %q (수정 %d건)\n", c.FromIntent, c.ToIntent, c.Count)
		}
		b.WriteString("\n위 패턴에 해당하는 메시지는 수정된 intent로 분류하세요.\n---\n")
	}

	if g.Understanding != "" {
		b.WriteString("\n---\n[학습된 CS 패턴 - 분류 시 참고]\n")
		b.WriteString(logger.Truncate(g.Understanding, understandingRunes))
		b.WriteString("\n---\n\n위 학습된 패턴을 참고하여 메시지를 분류하세요. 특히 needs_reply 판단 시:\n" +
			"- 학습된 패턴에서 \"답변 불필요\" 또는 \"단순 응답\"으로 분류된 유형은 needs_reply=false\n" +
			"- 학습된 패턴에서 \"문의\", \"요청\", \"불만\"으로 분류된 유형은 needs_reply=true\n")
	}

	return b.String()
}

var profileLabels = map[model.ProfileLabel]string{
	model.ProfileLabelDemanding: "까다로운 편",
	model.ProfileLabelFriendly:  "우호적인 편",
	model.ProfileLabelNeutral:   "보통",
}

func buildUserPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "채팅방: %s\n발신자 유형: %s\n", in.ChatRoom, in.SenderType)

	if in.Profile != nil {
		if label, ok := profileLabels[in.Profile.Label]; ok {
			fmt.Fprintf(&b, "고객 성향: %s (불만비율 %.0f%%)\n", label, in.Profile.ComplaintRatio*100)
		}
	}

	if len(in.Context) > 0 {
		fmt.Fprintf(&b, "\n이전 대화 맥락 (최근 %d개):\n", len(in.Context))
		for _, turn := range in.Context {
			who := "고객"
			if turn.SenderType == model.SenderTypeStaff {
				who = "직원"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", who, logger.Truncate(turn.Text, contextTurnRunes))
		}
	}

	fmt.Fprintf(&b, "\n현재 메시지: %s\n\n", in.Text)
	b.WriteString("위 메시지를 분석하여 JSON으로 반환하세요. 이전 대화 맥락이 있다면 참고하여 의도와 긴급도를 판단하세요.")
	return b.String()
}
