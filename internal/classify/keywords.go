package classify

import "strings"

// escalationKeywords send a message straight to the escalated tier.
var escalationKeywords = []string{
	"오류", "먹통", "전체", "안됨", "장애", "환불", "해지", "클레임",
	"긴급", "급해", "안되요", "작동", "고장", "문제",
}

// HasEscalationKeyword reports whether text contains any escalation keyword.
func HasEscalationKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
