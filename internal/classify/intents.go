// Package classify turns a customer chat message into a model.Classification:
// skip patterns first, then a primary LLM tier, then at most one escalation.
package classify

import (
	"fmt"
	"strings"
)

// Intent is one entry of the intent taxonomy. NeedsReply is fixed per intent
// and is the only place reply polarity is defined.
type Intent struct {
	Name        string
	NeedsReply  bool
	Description string
	Examples    []string
}

const (
	IntentInquiryStatus        = "inquiry_status"
	IntentRequestAction        = "request_action"
	IntentRequestChange        = "request_change"
	IntentComplaint            = "complaint"
	IntentQuestionHow          = "question_how"
	IntentQuestionWhen         = "question_when"
	IntentFollowUp             = "follow_up"
	IntentProvideInfo          = "provide_info"
	IntentAcknowledgment       = "acknowledgment"
	IntentGreeting             = "greeting"
	IntentInternalDiscussion   = "internal_discussion"
	IntentReaction             = "reaction"
	IntentConfirmationReceived = "confirmation_received"
	IntentOther                = "other"
)

// Intents lists the taxonomy in prompt order.
var Intents = []Intent{
	{IntentInquiryStatus, true, "상태/진행 확인 문의", []string{"발송됐나요?", "처리됐나요?", "언제 되나요?"}},
	{IntentRequestAction, true, "작업 요청", []string{"해주세요", "부탁드립니다", "진행해주세요"}},
	{IntentRequestChange, true, "변경/수정 요청", []string{"수정해주세요", "변경 부탁드립니다", "취소해주세요"}},
	{IntentComplaint, true, "불만/클레임", []string{"왜 안 되는 거죠?", "문제가 있어요", "이게 뭐예요"}},
	{IntentQuestionHow, true, "방법/사용법 문의", []string{"어떻게 해요?", "방법이 뭐예요?"}},
	{IntentQuestionWhen, true, "일정/시간 문의", []string{"언제 가능해요?", "시간이 어떻게 되나요?"}},
	{IntentFollowUp, true, "이전 요청에 대한 추가 정보 제공", []string{"아까 말씀드린 건 이거예요", "추가로 보내드려요"}},
	{IntentProvideInfo, false, "정보/자료 제공", []string{"사진 보내드립니다", "자료입니다", "파일 전송"}},
	{IntentAcknowledgment, false, "확인/동의", []string{"네", "알겠습니다", "확인했습니다", "감사합니다"}},
	{IntentGreeting, false, "인사", []string{"안녕하세요", "수고하세요"}},
	{IntentInternalDiscussion, false, "병원 스태프끼리 대화", []string{"과장님 이거 확인해주세요", "내가 할게", "스태프 간 호칭 사용"}},
	{IntentReaction, false, "단순 리액션", []string{"ㅎㅎ", "ㅋㅋ", "👍", "ㅇㅇ"}},
	{IntentConfirmationReceived, false, "직원 안내 완료 후 고객 확인", []string{"직원이 '보내드렸습니다' 후 → '감사합니다!', '알겠습니다~'"}},
	{IntentOther, false, "위에 해당하지 않는 기타", nil},
}

var intentIndex = func() map[string]Intent {
	m := make(map[string]Intent, len(Intents))
	for _, in := range Intents {
		m[in.Name] = in
	}
	return m
}()

// LookupIntent returns the taxonomy entry for name.
func LookupIntent(name string) (Intent, bool) {
	in, ok := intentIndex[name]
	return in, ok
}

// NeedsReply returns the fixed reply polarity of intent. Unknown intents
// need a reply so a real inquiry is never dropped.
func NeedsReply(intent string) bool {
	if in, ok := intentIndex[intent]; ok {
		return in.NeedsReply
	}
	return true
}

// Topics the classifier chooses from.
const (
	TopicDelivery  = "발송/전송 문제"
	TopicBooking   = "예약 관련"
	TopicBilling   = "결제/정산"
	TopicFeature   = "기능 문의"
	TopicOutage    = "오류/장애"
	TopicAccount   = "계정/로그인"
	TopicReview    = "리뷰 관련"
	TopicOther     = "기타 문의"
	TopicGreetings = "인사/감사"
)

var Topics = []string{
	TopicDelivery, TopicBooking, TopicBilling, TopicFeature, TopicOutage,
	TopicAccount, TopicReview, TopicOther, TopicGreetings,
}

func intentPromptSection() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intent (의도) - %d가지 중 선택:\n\n", len(Intents))

	b.WriteString("[답변 필요 - needs_reply=true]\n")
	for _, in := range Intents {
		if in.NeedsReply {
			writeIntentLine(&b, in)
		}
	}

	b.WriteString("\n[답변 불필요 - needs_reply=false]\n")
	for _, in := range Intents {
		if !in.NeedsReply {
			writeIntentLine(&b, in)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeIntentLine(b *strings.Builder, in Intent) {
	examples := in.Examples
	if len(examples) > 3 {
		examples = examples[:3]
	}
	if len(examples) == 0 {
		fmt.Fprintf(b, "- %s: %s\n", in.Name, in.Description)
		return
	}
	quoted := make([]string, len(examples))
	for i, e := range examples {
		quoted[i] = `"` + e + `"`
	}
	fmt.Fprintf(b, "- %s: %s (예: %s)\n", in.Name, in.Description, strings.Join(quoted, ", "))
}

func needsReplyGuide() string {
	var yes, no []string
	for _, in := range Intents {
		if in.NeedsReply {
			yes = append(yes, in.Name)
		} else {
			no = append(no, in.Name)
		}
	}
	return "needs_reply 판단 기준:\n" +
		"- true: " + strings.Join(yes, ", ") + " (답변 필요)\n" +
		"- false: " + strings.Join(no, ", ") + " (답변 불필요)\n" +
		"- 맥락 고려: 이전 대화 흐름을 보고 판단. 특히:\n" +
		"  * 고객 메시지가 연속되고 스태프 간 호칭/업무 지시가 있으면 → internal_discussion\n" +
		"  * 직원이 안내 완료 후 고객의 \"감사\", \"알겠습니다\" → confirmation_received\n" +
		"  * 판단이 애매하면 needs_reply=true (응대 누락 방지 우선)"
}
