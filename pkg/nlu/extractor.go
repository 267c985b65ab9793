package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"phone-order-be/pkg/llm"
	"phone-order-be/pkg/ordering/merge"
	"phone-order-be/pkg/store"
)

// ErrExtractionFailed means the utterance could not be turned into a parse
// result. The turn goes on with no new information.
var ErrExtractionFailed = errors.New("extraction failed")

// Extractor reads one caller utterance into structured order fields.
type Extractor interface {
	Extract(ctx context.Context, utterance, catalogSummary string, history []store.Message) (*merge.ParseResult, error)
}

const systemPrompt = `You extract structured data from what a caller says to a restaurant's phone ordering line.
Reply with one JSON object and nothing else, using exactly these keys:
{
  "mode": "delivery" | "pickup" | "",
  "name": string,
  "phone": string,
  "address": string,
  "items": [{"name": string, "quantity": integer, "extras": [string]}],
  "extras": [string],
  "no_extras": boolean,
  "confirmation": "yes" | "no" | ""
}
Rules:
- Only fill what the LAST caller message says. Leave everything else empty.
- Item names must be copied exactly from the menu. Skip anything not on the menu.
- "extras" inside an item are toppings said together with that item. Top-level "extras" are toppings said on their own, answering a question about extras.
- Keep an extra as the caller said it when it is ambiguous (for example "olives"), do not guess a variant.
- "no_extras" is true when the caller declines extras.
- "confirmation" is set only when the caller accepts or rejects a read-back order summary.

%s`

// LLMExtractor asks a chat model for the parse.
type LLMExtractor struct {
	provider     llm.LLMProvider
	historyTurns int
}

// NewLLMExtractor sends at most historyTurns previous messages along with
// each utterance.
func NewLLMExtractor(provider llm.LLMProvider, historyTurns int) *LLMExtractor {
	return &LLMExtractor{provider: provider, historyTurns: historyTurns}
}

func (e *LLMExtractor) Extract(ctx context.Context, utterance, catalogSummary string, history []store.Message) (*merge.ParseResult, error) {
	messages := BuildMessages(utterance, catalogSummary, history, e.historyTurns)

	raw, err := e.provider.Chat(ctx, messages, llm.WithJSON(), llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return ParseReply(raw)
}

// BuildMessages assembles the chat sent to the model: instructions with the
// menu, the tail of the dialogue, then the new utterance.
func BuildMessages(utterance, catalogSummary string, history []store.Message, historyTurns int) []llm.Message {
	if historyTurns >= 0 && len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: fmt.Sprintf(systemPrompt, catalogSummary)})
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == store.RoleAgent {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Text})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: utterance})
}

// ParseReply decodes a model reply. Code fences and chatter around the JSON
// object are tolerated.
func ParseReply(raw string) (*merge.ParseResult, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrExtractionFailed)
	}

	var out merge.ParseResult
	if err := json.Unmarshal([]byte(body[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	out.Confirmation = normalizeConfirmation(out.Confirmation)
	return &out, nil
}

func normalizeConfirmation(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "confirm", "confirmed":
		return ConfirmYes
	case "no", "false", "reject", "rejected":
		return ConfirmNo
	}
	return ""
}
