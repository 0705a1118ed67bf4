// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"
)

// FakeClient returns a canned reply and records every prompt it receives
type FakeClient struct {
	Reply     string
	Err       error
	ModelName string

	mu      sync.Mutex
	prompts []string
	closed  bool
}

// GenerateContent records the prompt and returns the canned reply
func (f *FakeClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// GenerateJSON behaves like GenerateContent
func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return f.GenerateContent(ctx, prompt)
}

// Model returns ModelName or "fake-model"
func (f *FakeClient) Model() string {
	if f.ModelName == "" {
		return "fake-model"
	}
	return f.ModelName
}

// Close marks the client closed
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Prompts returns the prompts received so far
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Calls returns how many times the model was called
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Closed reports whether Close was called
func (f *FakeClient) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// SampleReply is a complete, well-formed evaluation reply
const SampleReply = `{
  "JD Match": "85%",
  "Missing Keywords": ["Kubernetes", "Terraform"],
  "Profile Summary": "Backend engineer with six years of Go experience.",
  "Grammar Corrections": [
    {"Incorrect": "I has led teams", "Correct": "I have led teams"}
  ],
  "Job Recommendations": ["Site Reliability Engineer", "Platform Engineer"],
  "HR Insights": "Strong technical fit with clear ownership."
}`
