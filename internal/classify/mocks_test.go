package classify_test

import (
	"context"
	"sync"
	"time"

	"github.com/wjlee930501/motion-ai-cs/common/llm"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

type fakeLLM struct {
	model string

	mu       sync.Mutex
	requests []llm.Request
	reply    func(req llm.Request) (*llm.Response, error)
}

func newFakeLLM(name, content string) *fakeLLM {
	return &fakeLLM{
		model: name,
		reply: func(llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: content, Model: name}, nil
		},
	}
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeLLM) Model() string { return f.model }

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeLLM) LastRequest() llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeGuidance struct {
	understanding    string
	corrections      []model.CorrectionPattern
	err              error
	correctionsCalls int
}

func (f *fakeGuidance) LatestUnderstanding(context.Context) (string, error) {
	return f.understanding, f.err
}

func (f *fakeGuidance) ListCorrections(context.Context, time.Time, int) ([]model.CorrectionPattern, error) {
	f.correctionsCalls++
	return f.corrections, f.err
}

type fakePatternSource struct {
	patterns []model.LearnedPattern
	err      error
}

func (f *fakePatternSource) ListApprovedSkipPatterns(context.Context) ([]model.LearnedPattern, error) {
	return f.patterns, f.err
}
