package insight

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"go.uber.org/zap"
)

type countingGenerator struct {
	calls  atomic.Int32
	text   string
	err    error
	model  string
	prompt string
	wait   time.Duration
}

func (g *countingGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	g.calls.Add(1)
	g.model = model
	g.prompt = prompt
	if g.wait > 0 {
		select {
		case <-time.After(g.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.text, g.err
}

func sampleRequest() Request {
	return Request{
		Context: "Appraisal Hike",
		Inputs: map[string]float64{
			"Old Salary": 50000,
			"New Salary": 55000,
		},
		Result: "10.00",
	}
}

func TestInsightMissingCredential(t *testing.T) {
	gen := &countingGenerator{text: "should not be used"}
	client := NewClientWithGenerator(Config{}, gen, zap.NewNop())

	got, err := client.Insight(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Insight() unexpected error: %v", err)
	}
	if got != constants.InsightMissingKeyMessage {
		t.Errorf("Insight() = %q, expected %q", got, constants.InsightMissingKeyMessage)
	}
	if calls := gen.calls.Load(); calls != 0 {
		t.Errorf("expected no generator calls, got %d", calls)
	}
}

func TestNewClientWithoutCredentialStaysOffline(t *testing.T) {
	client, err := NewClient(context.Background(), Config{APIKey: "  "}, nil)
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	if client.generator != nil {
		t.Fatal("expected no generator without a credential")
	}

	got, err := client.Insight(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Insight() unexpected error: %v", err)
	}
	if got != constants.InsightMissingKeyMessage {
		t.Errorf("Insight() = %q, expected %q", got, constants.InsightMissingKeyMessage)
	}
}

func TestInsightSuccess(t *testing.T) {
	gen := &countingGenerator{text: "  A 10% hike is a solid raise.  "}
	client := NewClientWithGenerator(Config{APIKey: "key"}, gen, zap.NewNop())

	got, err := client.Insight(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Insight() unexpected error: %v", err)
	}
	if got != "A 10% hike is a solid raise." {
		t.Errorf("Insight() = %q", got)
	}
	if gen.model != constants.DefaultInsightModel {
		t.Errorf("expected default model %q, got %q", constants.DefaultInsightModel, gen.model)
	}
	if gen.calls.Load() != 1 {
		t.Errorf("expected exactly one attempt, got %d", gen.calls.Load())
	}
}

func TestInsightEmptyText(t *testing.T) {
	client := NewClientWithGenerator(Config{APIKey: "key", Model: "custom"}, &countingGenerator{}, nil)

	got, err := client.Insight(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Insight() unexpected error: %v", err)
	}
	if got != constants.InsightEmptyMessage {
		t.Errorf("Insight() = %q, expected %q", got, constants.InsightEmptyMessage)
	}
}

func TestInsightFailureIsReturned(t *testing.T) {
	boom := errors.New("boom")
	gen := &countingGenerator{err: boom}
	client := NewClientWithGenerator(Config{APIKey: "key"}, gen, nil)

	_, err := client.Insight(context.Background(), sampleRequest())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom error, got %v", err)
	}
	if gen.calls.Load() != 1 {
		t.Errorf("expected no retry, got %d calls", gen.calls.Load())
	}
}

func TestInsightTimeout(t *testing.T) {
	gen := &countingGenerator{text: "late", wait: time.Second}
	client := NewClientWithGenerator(Config{APIKey: "key", Timeout: 10 * time.Millisecond}, gen, nil)

	_, err := client.Insight(context.Background(), sampleRequest())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleRequest())

	for _, want := range []string{
		`"Appraisal Hike"`,
		"- New Salary: 55000",
		"- Old Salary: 50000",
		"Calculated Result: 10.00",
		"under 30 words",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}

	if strings.Index(prompt, "New Salary") > strings.Index(prompt, "Old Salary") {
		t.Error("expected inputs to be listed in label order")
	}
	if BuildPrompt(sampleRequest()) != prompt {
		t.Error("expected identical requests to build identical prompts")
	}
}

func TestCollaboratorFunc(t *testing.T) {
	var f Collaborator = CollaboratorFunc(func(_ context.Context, req Request) (string, error) {
		return "ok " + req.Context, nil
	})
	got, err := f.Insight(context.Background(), Request{Context: "x"})
	if err != nil || got != "ok x" {
		t.Errorf("CollaboratorFunc.Insight() = %q, %v", got, err)
	}
}
