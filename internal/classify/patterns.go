package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"regexp/syntax"
	"strings"
	"time"

	"github.com/wjlee930501/motion-ai-cs/common/cache"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

const maxPatternLength = 200

var (
	ErrUnsafePattern     = errors.New("unsafe skip pattern")
	ErrPatternTooLong    = fmt.Errorf("%w: longer than %d characters", ErrUnsafePattern, maxPatternLength)
	ErrNestedQuantifier  = fmt.Errorf("%w: nested quantifier", ErrUnsafePattern)
	ErrBackreference     = fmt.Errorf("%w: backreference", ErrUnsafePattern)
	ErrPatternInvalid    = fmt.Errorf("%w: does not compile", ErrUnsafePattern)
	ErrPatternNeedsReply = fmt.Errorf("%w: intent is not a no-reply intent", ErrUnsafePattern)
)

// staticSkipPatterns are full-match acknowledgment and reaction utterances.
var staticSkipPatterns = map[string][]string{
	IntentAcknowledgment: {
		`^(아\s*)?(네[,.]?\s*)?감사합니다[.!~]*$`,
		`^감사드려요[.!~]*$`,
		`^감사해요[.!~]*$`,
		`^고마워요[.!~]*$`,
		`^고맙습니다[.!~]*$`,
		`^(아\s*)?(네|넵|넹|네네)[.!~]*$`,
		`^알겠습니다[.!~]*$`,
		`^알겠어요[.!~]*$`,
		`^확인했습니다[.!~]*$`,
		`^확인했어요[.!~]*$`,
		`^확인됐습니다[.!~]*$`,
	},
	IntentReaction: {
		`^ㅇㅇ$`,
		`^ㅋㅋ+$`,
		`^ㅎㅎ+$`,
		`^ㅇㅋ$`,
		`^오키$`,
		`^오케이$`,
		`^ok$`,
	},
}

var backreferencePattern = regexp.MustCompile(`\\[1-9]|\\k<|\(\?P=`)

type skipPattern struct {
	source string
	intent string
	re     *regexp.Regexp
}

// SkipMatch describes the pattern that short-circuited classification.
type SkipMatch struct {
	Intent  string
	Pattern string
	Learned bool
}

// ValidatePattern checks a learned skip pattern before it may be used. It
// returns the compiled full-match, case-insensitive form.
func ValidatePattern(pattern, intent string) (*regexp.Regexp, error) {
	if len(pattern) > maxPatternLength {
		return nil, ErrPatternTooLong
	}
	if backreferencePattern.MatchString(pattern) {
		return nil, ErrBackreference
	}

	parsed, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPatternInvalid, err)
	}
	if hasNestedQuantifier(parsed, false) {
		return nil, ErrNestedQuantifier
	}

	if in, ok := LookupIntent(intent); !ok || in.NeedsReply {
		return nil, ErrPatternNeedsReply
	}

	re, err := compileFullMatch(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPatternInvalid, err)
	}
	return re, nil
}

// hasNestedQuantifier reports an unbounded repetition inside another
// repetition, e.g. (a+)+, (a*)*, (.*)+, (a+){2,}.
func hasNestedQuantifier(re *syntax.Regexp, insideRepeat bool) bool {
	repeats := isRepetition(re)
	if repeats && insideRepeat {
		return true
	}
	for _, sub := range re.Sub {
		if hasNestedQuantifier(sub, insideRepeat || repeats) {
			return true
		}
	}
	return false
}

func isRepetition(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus:
		return true
	case syntax.OpRepeat:
		return re.Max == -1 || re.Max > 1
	}
	return false
}

func compileFullMatch(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)^(?:` + pattern + `)$`)
}

func compileStatic() []skipPattern {
	var out []skipPattern
	// Fixed order keeps matching deterministic.
	for _, intent := range []string{IntentAcknowledgment, IntentReaction} {
		for _, p := range staticSkipPatterns[intent] {
			out = append(out, skipPattern{source: p, intent: intent, re: regexp.MustCompile(`(?i)` + p)})
		}
	}
	return out
}

// PatternSource provides operator-approved learned skip patterns.
type PatternSource interface {
	ListApprovedSkipPatterns(ctx context.Context) ([]model.LearnedPattern, error)
}

// Matcher matches text against the static skip table and the learned table.
// The learned table is cached; a failed refresh keeps the previous table.
type Matcher struct {
	static  []skipPattern
	learned *cache.TTL[[]skipPattern]
}

// NewMatcher builds a Matcher. source may be nil, in which case only the
// static table is used.
func NewMatcher(source PatternSource, ttl time.Duration) *Matcher {
	m := &Matcher{static: compileStatic()}
	if source != nil {
		m.learned = cache.NewTTL("learned_skip_patterns", ttl, func(ctx context.Context) ([]skipPattern, error) {
			return loadLearnedPatterns(ctx, source)
		})
	}
	return m
}

// Reload drops the cached learned table so the next Match reads it again.
func (m *Matcher) Reload() {
	if m.learned != nil {
		m.learned.Invalidate()
	}
}

// LastError is the error of the last learned table load, nil after a
// successful one.
func (m *Matcher) LastError() error {
	if m.learned == nil {
		return nil
	}
	return m.learned.LastError()
}

// Match full-matches the trimmed text, static patterns first.
func (m *Matcher) Match(ctx context.Context, text string) (SkipMatch, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return SkipMatch{}, false
	}

	for _, p := range m.static {
		if p.re.MatchString(trimmed) {
			return SkipMatch{Intent: p.intent, Pattern: p.source}, true
		}
	}

	if m.learned == nil {
		return SkipMatch{}, false
	}
	for _, p := range m.learned.Get(ctx) {
		if p.re.MatchString(trimmed) {
			return SkipMatch{Intent: p.intent, Pattern: p.source, Learned: true}, true
		}
	}
	return SkipMatch{}, false
}

func loadLearnedPatterns(ctx context.Context, source PatternSource) ([]skipPattern, error) {
	rows, err := source.ListApprovedSkipPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing learned patterns: %w", err)
	}

	out := make([]skipPattern, 0, len(rows))
	for _, row := range rows {
		re, err := ValidatePattern(row.Pattern, row.Intent)
		if err != nil {
			slog.WarnContext(ctx, "rejected learned skip pattern",
				"pattern_id", row.ID,
				"pattern", row.Pattern,
				"intent", row.Intent,
				"error", err)
			continue
		}
		out = append(out, skipPattern{source: row.Pattern, intent: row.Intent, re: re})
	}

	slog.DebugContext(ctx, "loaded learned skip patterns", "accepted", len(out), "total", len(rows))
	return out, nil
}
