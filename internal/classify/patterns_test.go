package classify_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

var _ = Describe("ValidatePattern", func() {
	DescribeTable("rejects unsafe patterns",
		func(pattern, intent string, want error) {
			_, err := classify.ValidatePattern(pattern, intent)
			Expect(err).To(MatchError(want))
			Expect(errors.Is(err, classify.ErrUnsafePattern)).To(BeTrue())
		},
		Entry("nested plus", `(a+)+`, classify.IntentReaction, classify.ErrNestedQuantifier),
		Entry("nested star", `(.*)*`, classify.IntentReaction, classify.ErrNestedQuantifier),
		Entry("unbounded repeat of a plus", `(ㅋ+){2,}`, classify.IntentReaction, classify.ErrNestedQuantifier),
		Entry("numbered backreference", `(네)\1`, classify.IntentAcknowledgment, classify.ErrBackreference),
		Entry("named backreference", `(?P<a>네)(?P=a)`, classify.IntentAcknowledgment, classify.ErrBackreference),
		Entry("too long", strings.Repeat("a", 201), classify.IntentReaction, classify.ErrPatternTooLong),
		Entry("does not parse", `(네`, classify.IntentAcknowledgment, classify.ErrPatternInvalid),
		Entry("reply intent", `예약.*`, classify.IntentInquiryStatus, classify.ErrPatternNeedsReply),
		Entry("unknown intent", `예약`, "made_up", classify.ErrPatternNeedsReply),
	)

	It("compiles a full-match case-insensitive pattern", func() {
		re, err := classify.ValidatePattern(`ok+`, classify.IntentReaction)
		Expect(err).NotTo(HaveOccurred())
		Expect(re.MatchString("OKK")).To(BeTrue())
		Expect(re.MatchString("ok then")).To(BeFalse())
	})

	It("treats bounded inner repeats as nested but allows repeated literals", func() {
		_, err := classify.ValidatePattern(`(ㅎ{1,2})+`, classify.IntentReaction)
		Expect(err).To(MatchError(classify.ErrNestedQuantifier))

		_, err = classify.ValidatePattern(`(ㅎㅎ)+`, classify.IntentReaction)
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Matcher", func() {
	ctx := context.Background()

	It("matches the static table on trimmed text", func() {
		m := classify.NewMatcher(nil, 0)

		match, ok := m.Match(ctx, "  알겠습니다~  ")
		Expect(ok).To(BeTrue())
		Expect(match.Intent).To(Equal(classify.IntentAcknowledgment))

		_, ok = m.Match(ctx, "")
		Expect(ok).To(BeFalse())
	})

	It("uses learned patterns and drops unsafe ones", func() {
		source := &fakePatternSource{patterns: []model.LearnedPattern{
			{ID: 1, Pattern: `(a+)+`, Intent: classify.IntentReaction},
			{ID: 2, Pattern: `수고하세요[!~]*`, Intent: classify.IntentGreeting},
			{ID: 3, Pattern: `예약.*`, Intent: classify.IntentInquiryStatus},
		}}
		m := classify.NewMatcher(source, 0)

		match, ok := m.Match(ctx, "수고하세요~")
		Expect(ok).To(BeTrue())
		Expect(match.Learned).To(BeTrue())
		Expect(match.Intent).To(Equal(classify.IntentGreeting))

		_, ok = m.Match(ctx, "예약 언제 되나요")
		Expect(ok).To(BeFalse())
	})

	It("still serves the static table when learned patterns fail to load", func() {
		m := classify.NewMatcher(&fakePatternSource{err: errors.New("db down")}, 0)

		_, ok := m.Match(ctx, "네")
		Expect(ok).To(BeTrue())
		_, ok = m.Match(ctx, "수고하세요")
		Expect(ok).To(BeFalse())
		Expect(m.LastError()).To(MatchError(ContainSubstring("db down")))
	})

	It("picks up newly approved patterns after a reload", func() {
		source := &fakePatternSource{}
		m := classify.NewMatcher(source, time.Hour)

		_, ok := m.Match(ctx, "수고하세요")
		Expect(ok).To(BeFalse())

		source.patterns = []model.LearnedPattern{{ID: 1, Pattern: `수고하세요[!~]*`, Intent: classify.IntentGreeting}}
		_, ok = m.Match(ctx, "수고하세요")
		Expect(ok).To(BeFalse())

		m.Reload()
		_, ok = m.Match(ctx, "수고하세요")
		Expect(ok).To(BeTrue())
		Expect(m.LastError()).NotTo(HaveOccurred())
	})
})

var _ = Describe("Intents", func() {
	It("gives every skip intent a no-reply polarity", func() {
		for _, name := range []string{classify.IntentAcknowledgment, classify.IntentReaction} {
			Expect(classify.NeedsReply(name)).To(BeFalse(), name)
		}
	})

	It("needs a reply for unknown intents", func() {
		Expect(classify.NeedsReply("brand_new")).To(BeTrue())
	})

	It("keeps complaints and follow-ups as reply intents", func() {
		Expect(classify.NeedsReply(classify.IntentComplaint)).To(BeTrue())
		Expect(classify.NeedsReply(classify.IntentFollowUp)).To(BeTrue())
	})

	It("detects escalation keywords", func() {
		Expect(classify.HasEscalationKeyword("환불 요청드립니다")).To(BeTrue())
		Expect(classify.HasEscalationKeyword("예약 확인 부탁드려요")).To(BeFalse())
	})
})
