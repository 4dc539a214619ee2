// Package insight defines the contract with the external text-generation
// service that comments on a calculation result, and a Gemini-backed client
// implementing it.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Request carries everything the service needs to comment on one result.
type Request struct {
	// Context is the calculator title, e.g. "Appraisal Hike".
	Context string `json:"context"`
	// Inputs maps an input label to its parsed value.
	Inputs map[string]float64 `json:"inputs"`
	// Result is the already formatted result, without prefix or suffix.
	Result string `json:"result"`
}

// Collaborator produces a short insight for a calculation. Implementations
// return plain text or an error; callers decide how failures are shown.
type Collaborator interface {
	Insight(ctx context.Context, req Request) (string, error)
}

// CollaboratorFunc adapts a plain function to the Collaborator interface.
type CollaboratorFunc func(ctx context.Context, req Request) (string, error)

// Insight calls f(ctx, req).
func (f CollaboratorFunc) Insight(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// BuildPrompt renders the request as the instruction sent to the model.
// Inputs are listed in label order so identical requests give identical prompts.
func BuildPrompt(req Request) string {
	labels := make([]string, 0, len(req.Inputs))
	for label := range req.Inputs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("You are a helpful financial assistant.\n")
	fmt.Fprintf(&b, "Context: User is using a calculator for %q.\n\n", req.Context)
	b.WriteString("Input Data:\n")
	for _, label := range labels {
		fmt.Fprintf(&b, "- %s: %s\n", label, strconv.FormatFloat(req.Inputs[label], 'f', -1, 64))
	}
	fmt.Fprintf(&b, "\nCalculated Result: %s\n\n", req.Result)
	b.WriteString("Please provide a very brief, one-sentence insight or tip regarding these figures.\n")
	b.WriteString("For salary, mention if the hike is standard or good.\n")
	b.WriteString("For discounts, mention if it's a significant saving.\n")
	b.WriteString("Keep it professional, encouraging, and under 30 words.\n")
	return b.String()
}
