package draft

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/lead-harvester/internal/extract"
	"github.com/jonathan/lead-harvester/internal/llm"
	"github.com/jonathan/lead-harvester/internal/prompts"
	"go.uber.org/zap"
)

// maxDraftLength bounds generated greetings; longer output falls back to the template.
const maxDraftLength = 600

// maxSectionChars trims long about/experience sections before they go into a prompt.
const maxSectionChars = 1500

// LLM drafts greetings with a language model. Results are memoised per record so the
// same record yields the same text within a run; any failure uses the fallback drafter.
type LLM struct {
	client   llm.Client
	tier     llm.ModelTier
	fallback Drafter
	log      *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewLLM creates an LLM drafter backed by client, falling back to Template.
func NewLLM(client llm.Client, logger *zap.Logger) *LLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLM{
		client:   client,
		tier:     llm.TierLite,
		fallback: Template{},
		log:      logger.Named("drafter"),
		cache:    make(map[string]string),
	}
}

// Draft implements Drafter.
func (d *LLM) Draft(ctx context.Context, rec extract.Record) string {
	if rec.LowConfidence() {
		return d.fallback.Draft(ctx, rec)
	}

	key := recordKey(rec)
	d.mu.Lock()
	if text, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return text
	}
	d.mu.Unlock()

	prompt, err := buildPrompt(rec)
	if err != nil {
		d.log.Error("drafting prompt unavailable, using template", zap.Error(err))
		return d.fallback.Draft(ctx, rec)
	}

	text, err := d.client.GenerateContent(ctx, prompt, d.tier)
	switch {
	case err != nil:
		d.log.Warn("LLM draft failed, using template", zap.String("identifier", rec.Identifier), zap.Error(err))
		text = d.fallback.Draft(ctx, rec)
	case text == "" || len(text) > maxDraftLength:
		d.log.Warn("LLM draft rejected, using template", zap.String("identifier", rec.Identifier), zap.Int("length", len(text)))
		text = d.fallback.Draft(ctx, rec)
	}

	d.mu.Lock()
	d.cache[key] = text
	d.mu.Unlock()
	return text
}

func buildPrompt(rec extract.Record) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", rec.FullName)
	if rec.Headline != "" {
		fmt.Fprintf(&sb, "Headline: %s\n", rec.Headline)
	}
	if rec.About != "" {
		fmt.Fprintf(&sb, "About:\n%s\n", truncate(rec.About, maxSectionChars))
	}
	if rec.Experience != "" {
		fmt.Fprintf(&sb, "Experience:\n%s\n", truncate(rec.Experience, maxSectionChars))
	}
	return prompts.Render("drafting.json", "outreach-greeting", map[string]string{
		"Profile": sb.String(),
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func recordKey(rec extract.Record) string {
	h := sha256.New()
	for _, f := range extract.AllFields {
		h.Write([]byte(rec.Get(f)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
