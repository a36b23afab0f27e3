// Package docgen turns a consultation transcript into derived clinical
// documents using a text-generation backend.
//
// Each document is a named operation with its own prompt template. The
// operations are independent: they share only the read-only transcript and
// may run concurrently.
package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/OptimalGrowthPartner/Chiro-backend/errors"
	"github.com/OptimalGrowthPartner/Chiro-backend/llm"
	"github.com/OptimalGrowthPartner/Chiro-backend/logger"
)

// Document names used in error details and log fields.
const (
	DocumentSOAPNote       = "soap_note"
	DocumentReferralLetter = "referral_letter"
	DocumentBillingCodes   = "codes"
)

const systemPrompt = "You are a clinical documentation assistant that helps chiropractors summarize patient visits."

// Completer issues a single text-generation call. *llm.Adapter satisfies it.
type Completer interface {
	Execute(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error)
}

// Generator produces clinical documents from a transcript.
type Generator struct {
	llm Completer
	log *logger.Logger
}

// New creates a document generator backed by the given completer.
func New(completer Completer, log *logger.Logger) *Generator {
	return &Generator{
		llm: completer,
		log: log.WithComponent("docgen"),
	}
}

// SOAPNote generates a SOAP note (Subjective, Objective, Assessment, Plan)
// from the transcript.
func (g *Generator) SOAPNote(ctx context.Context, transcript string) (string, error) {
	prompt := "Generate a SOAP note from this transcript. Structure the note with Subjective, Objective, Assessment, and Plan sections.\n\n" + transcript
	return g.complete(ctx, DocumentSOAPNote, prompt)
}

// ReferralLetter generates a professional referral letter from the
// transcript. Whether a referral is warranted is the model's call: when no
// referral is indicated the model answers with that sentinel sentence, and
// the caller receives it as the document body.
func (g *Generator) ReferralLetter(ctx context.Context, transcript string) (string, error) {
	prompt := "Write a professional referral letter from this patient visit transcript. " +
		"If the visit does not warrant a referral, respond with exactly: No referral indicated.\n\n" + transcript
	return g.complete(ctx, DocumentReferralLetter, prompt)
}

// BillingCodes suggests CPT and ICD-10 codes for the visit as structured
// data. A completion that cannot be parsed as the expected JSON shape does
// not fail the call: the result is a sentinel StructuredCodes describing
// the parse failure, so callers always receive a well-formed value.
func (g *Generator) BillingCodes(ctx context.Context, transcript string) (StructuredCodes, error) {
	prompt := "Suggest appropriate CPT and ICD-10 codes based on this conversation. " +
		`Respond with JSON only, in the shape {"cpt_codes": [{"code": "", "description": ""}], "icd10_codes": [{"code": "", "description": ""}]}.` +
		"\n\n" + transcript

	text, err := g.complete(ctx, DocumentBillingCodes, prompt)
	if err != nil {
		return StructuredCodes{}, err
	}

	var codes StructuredCodes
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &codes); err != nil {
		g.log.Warn("billing codes response is not valid JSON, returning fallback",
			logger.Fields(logger.FieldDocument, DocumentBillingCodes, "error", err.Error()))
		return fallbackCodes(err), nil
	}
	return codes, nil
}

// complete issues one generation call and returns the trimmed completion
// text. Remote errors and empty completions become GenerationErrors tagged
// with the document name.
func (g *Generator) complete(ctx context.Context, document, prompt string) (string, error) {
	resp, err := g.llm.Execute(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", apperrors.Generation(document, "completion request failed", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", apperrors.Generation(document, "model returned an empty completion", nil)
	}
	return text, nil
}

// stripCodeFences removes surrounding Markdown code-fence markup, which
// models frequently wrap JSON output in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// Drop the language tag on the opening fence line.
		if lang := strings.TrimSpace(s[:i]); lang == "" || !strings.ContainsAny(lang, "{}[]") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func fallbackCodes(parseErr error) StructuredCodes {
	return ErrorCodes(fmt.Sprintf("failed to parse billing codes from model output: %v", parseErr))
}
