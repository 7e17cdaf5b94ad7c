// Package sender decides whether a chat display name belongs to staff or a customer.
package sender

import (
	"regexp"
	"strings"

	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

// Rules identify staff names. Staff either appear in KnownStaff or carry
// StaffPrefix, optionally wrapped in square brackets ("[모션랩스_이우진]").
type Rules struct {
	StaffPrefix string
	KnownStaff  []string
}

// Result is the derived sender role. StaffMember is nil for customers.
type Result struct {
	Type        model.SenderType
	StaffMember *string
	Direction   model.Direction
}

// Classifier holds compiled Rules. The zero value classifies everyone as a customer.
type Classifier struct {
	prefix *regexp.Regexp
	known  map[string]struct{}
}

func New(rules Rules) *Classifier {
	c := &Classifier{known: make(map[string]struct{}, len(rules.KnownStaff))}
	if p := strings.TrimSpace(rules.StaffPrefix); p != "" {
		c.prefix = regexp.MustCompile(`^\[?` + regexp.QuoteMeta(p) + `([^\]]+)\]?$`)
	}
	for _, name := range rules.KnownStaff {
		if n := strings.TrimSpace(name); n != "" {
			c.known[n] = struct{}{}
		}
	}
	return c
}

// Classify never fails: any name that is not recognizably staff is a customer.
func (c *Classifier) Classify(name string) Result {
	trimmed := strings.TrimSpace(name)

	if _, ok := c.known[trimmed]; ok && trimmed != "" {
		return staff(trimmed)
	}

	if c.prefix != nil {
		if m := c.prefix.FindStringSubmatch(trimmed); m != nil {
			if member := strings.TrimSpace(m[1]); member != "" {
				return staff(member)
			}
		}
	}

	return Result{Type: model.SenderTypeCustomer, Direction: model.DirectionInbound}
}

func staff(member string) Result {
	return Result{
		Type:        model.SenderTypeStaff,
		StaffMember: &member,
		Direction:   model.DirectionOutbound,
	}
}
