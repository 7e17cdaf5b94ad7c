package classify_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/common/llm"
	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

var _ = Describe("Summarizer", func() {
	var (
		ctx    context.Context
		client *fakeLLM
		events []model.MessageEvent
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = newFakeLLM("escalated-model",
			`{"summary":"• 문자 발송 실패 문의","next_action":"발송 로그 확인","overall_urgency":"high"}`)
		now := time.Now()
		events = []model.MessageEvent{
			{SenderType: model.SenderTypeCustomer, Text: "문자가 안 나가요", ReceivedAt: now.Add(-time.Minute)},
			{SenderType: model.SenderTypeStaff, Text: "확인해보겠습니다", ReceivedAt: now},
		}
	})

	It("summarizes the conversation", func() {
		out := classify.NewSummarizer(client, nil).Summarize(ctx, "강남연세의원", events)

		Expect(out.Summary).To(Equal("• 문자 발송 실패 문의"))
		Expect(out.NextAction).To(Equal("발송 로그 확인"))
		Expect(out.OverallUrgency).To(Equal(model.UrgencyHigh))
		Expect(out.Model).To(Equal("escalated-model"))

		Expect(client.LastRequest().Temperature).To(HaveValue(BeZero()))
		prompt := client.LastRequest().UserPrompt
		Expect(prompt).To(ContainSubstring("고객] 문자가 안 나가요"))
		Expect(prompt).To(ContainSubstring("직원] 확인해보겠습니다"))
	})

	It("skips the model for an empty ticket", func() {
		out := classify.NewSummarizer(client, nil).Summarize(ctx, "강남연세의원", nil)

		Expect(client.Calls()).To(BeZero())
		Expect(out.Summary).To(Equal("• 메시지 없음"))
		Expect(out.NextAction).To(Equal("추가 정보 필요"))
		Expect(out.OverallUrgency).To(Equal(model.UrgencyLow))
		Expect(out.Model).To(Equal(model.ModelSkip))
	})

	It("falls back when fields are missing", func() {
		client = newFakeLLM("escalated-model", `{"overall_urgency":"low"}`)

		out := classify.NewSummarizer(client, nil).Summarize(ctx, "강남연세의원", events)
		Expect(out.Summary).To(Equal("• 요약 생성 실패"))
		Expect(out.NextAction).To(Equal("수동 확인 필요"))
		Expect(out.OverallUrgency).To(Equal(model.UrgencyMedium))
	})

	It("folds errors into the summary", func() {
		client.reply = func(llm.Request) (*llm.Response, error) {
			return nil, errors.New(strings.Repeat("x", 80))
		}

		out := classify.NewSummarizer(client, nil).Summarize(ctx, "강남연세의원", events)
		Expect(out.Summary).To(Equal("• 요약 오류: " + strings.Repeat("x", 50)))
		Expect(out.NextAction).To(Equal("수동 확인 필요"))
		Expect(out.Model).To(Equal(model.ModelError))
	})
})
