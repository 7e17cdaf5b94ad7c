package alert

import (
	"fmt"
	"strings"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

// Slack Block Kit payload types, limited to what the alerts use.
type (
	message struct {
		Text   string  `json:"text"`
		Blocks []block `json:"blocks"`
	}

	block struct {
		Type     string    `json:"type"`
		Text     *text     `json:"text,omitempty"`
		Fields   []text    `json:"fields,omitempty"`
		Elements []element `json:"elements,omitempty"`
	}

	text struct {
		Type  string `json:"type"`
		Text  string `json:"text"`
		Emoji bool   `json:"emoji,omitempty"`
	}

	element struct {
		Type  string `json:"type"`
		Text  text   `json:"text"`
		URL   string `json:"url"`
		Style string `json:"style,omitempty"`
	}
)

func header(s string) block {
	return block{Type: "header", Text: &text{Type: "plain_text", Text: s, Emoji: true}}
}

func fields(kv ...string) block {
	b := block{Type: "section"}
	for i := 0; i+1 < len(kv); i += 2 {
		b.Fields = append(b.Fields, text{Type: "mrkdwn", Text: fmt.Sprintf("*%s:*\n%s", kv[i], kv[i+1])})
	}
	return b
}

func quote(label, body string) block {
	return block{Type: "section", Text: &text{Type: "mrkdwn", Text: fmt.Sprintf("*%s:*\n> %s", label, body)}}
}

func button(label, url, style string) block {
	return block{Type: "actions", Elements: []element{{
		Type:  "button",
		Text:  text{Type: "plain_text", Text: label, Emoji: true},
		URL:   url,
		Style: style,
	}}}
}

func slaBreachBlocks(a SLABreach, ticketURL string) message {
	customer := excerpt(a.CustomerText, slaExcerptRunes)
	if customer == "" {
		customer = "(메시지 없음)"
	}
	title := "🚨 SLA 초과 알림"
	return message{
		Text: fmt.Sprintf("%s: %s (%d분 경과)", title, a.ClinicKey, a.ElapsedMinutes),
		Blocks: []block{
			header(title),
			fields("채팅방", a.ClinicKey, "대기 시간", fmt.Sprintf("%d분 경과", a.ElapsedMinutes)),
			quote("고객 문의", customer),
			button("대시보드에서 확인", ticketURL, "primary"),
		},
	}
}

func urgentTicketBlocks(a UrgentTicket, ticketURL string) message {
	icon := "🟠"
	if a.Urgency == model.UrgencyCritical {
		icon = "🔴"
	}
	title := icon + " 긴급 문의 접수"
	return message{
		Text: fmt.Sprintf("%s: %s", title, a.ClinicKey),
		Blocks: []block{
			header(title),
			fields("채팅방", a.ClinicKey, "긴급도", strings.ToUpper(string(a.Urgency))),
			quote("문의 내용", excerpt(a.CustomerText, urgentExcerptRunes)),
			button("바로 확인하기", ticketURL, "danger"),
		},
	}
}
