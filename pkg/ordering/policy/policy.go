package policy

import (
	"fmt"
	"strings"

	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/ordering/pricing"
	"phone-order-be/pkg/store"
	"phone-order-be/pkg/utils"
)

// PreviewExtras bounds how many extras the extras question reads out.
const PreviewExtras = 5

// Kind tells the transport what sort of prompt it is speaking.
type Kind string

const (
	KindQuestion      Kind = "question"
	KindClarification Kind = "clarification"
	KindSummary       Kind = "summary"
)

// Prompt is the policy's decision for one turn.
type Prompt struct {
	Text    string
	State   store.State
	Kind    Kind
	Summary *pricing.Breakdown
}

// Policy decides the next question for a session and moves its state
// pointer forward.
type Policy struct {
	catalog *menu.Catalog
	phrases Phrases
	clarify map[string]string
}

func NewPolicy(catalog *menu.Catalog, phrases Phrases) *Policy {
	clarify := make(map[string]string, len(phrases.Clarify))
	for k, v := range phrases.Clarify {
		clarify[utils.Fold(k)] = v
	}
	return &Policy{catalog: catalog, phrases: phrases, clarify: clarify}
}

// Next evaluates the transition rules in priority order and returns what to
// say. The state pointer only ever moves forward.
func (p *Policy) Next(sess *store.Session) Prompt {
	if sess.Pending != nil {
		return Prompt{Text: p.clarification(sess.Pending), State: sess.State, Kind: KindClarification}
	}

	// A line that still needs extras after the EXTRAS step is asked about
	// without moving the pointer back.
	if sess.State > store.StateExtras {
		if idx := p.nextLineNeedingExtras(sess); idx >= 0 {
			sess.ActiveLine = idx
			return Prompt{Text: p.extrasQuestion(sess, idx), State: sess.State, Kind: KindClarification}
		}
	}

	var greeting string
	for {
		switch sess.State {
		case store.StateWelcome:
			greeting = fmt.Sprintf(p.phrases.Greeting, p.catalog.Store())
			sess.Advance(store.StateMode)

		case store.StateMode:
			if sess.Mode == "" {
				return p.ask(sess, greeting, p.phrases.AskMode)
			}
			sess.Advance(store.StateOrder)

		case store.StateOrder:
			if len(sess.Lines) == 0 {
				return p.ask(sess, greeting, p.phrases.AskOrder)
			}
			sess.Advance(store.StateExtras)

		case store.StateExtras:
			if idx := p.nextLineNeedingExtras(sess); idx >= 0 {
				sess.ActiveLine = idx
				return p.ask(sess, greeting, p.extrasQuestion(sess, idx))
			}
			sess.Advance(store.StateName)

		case store.StateName:
			if sess.CustomerName == "" {
				return p.ask(sess, greeting, p.phrases.AskName)
			}
			sess.Advance(store.StatePhone)

		case store.StatePhone:
			if sess.CustomerPhone == "" {
				return p.ask(sess, greeting, p.phrases.AskPhone)
			}
			if sess.Mode == store.ModeDelivery {
				sess.Advance(store.StateAddress)
			} else {
				sess.Advance(store.StateSummary)
			}

		case store.StateAddress:
			if sess.Mode == store.ModeDelivery && sess.CustomerAddress == "" {
				return p.ask(sess, greeting, p.phrases.AskAddress)
			}
			sess.Advance(store.StateSummary)

		default:
			// Switched to delivery after the address step was passed.
			if sess.Mode == store.ModeDelivery && sess.CustomerAddress == "" {
				return Prompt{Text: p.phrases.AskAddress, State: sess.State, Kind: KindClarification}
			}
			breakdown := pricing.ComputeTotal(p.catalog, sess)
			return Prompt{
				Text:    join(greeting, p.SummaryText(sess, breakdown)),
				State:   sess.State,
				Kind:    KindSummary,
				Summary: &breakdown,
			}
		}
	}
}

// SummaryText renders the priced order followed by the confirmation question.
func (p *Policy) SummaryText(sess *store.Session, breakdown pricing.Breakdown) string {
	parts := make([]string, 0, len(breakdown.Lines))
	for _, lt := range breakdown.Lines {
		label := lt.Item
		if len(lt.Extras) > 0 {
			label += " " + p.phrases.WithWord + " " + strings.Join(lt.Extras, ", ")
		}
		parts = append(parts, label+", "+lt.Subtotal.String())
	}

	var b strings.Builder
	b.WriteString(p.phrases.SummaryIntro)
	b.WriteString(" ")
	b.WriteString(strings.Join(parts, "; "))
	b.WriteString(". ")
	if sess.Mode == store.ModeDelivery {
		fmt.Fprintf(&b, p.phrases.SummaryDelivery, sess.CustomerName, sess.CustomerAddress)
	} else {
		fmt.Fprintf(&b, p.phrases.SummaryPickup, sess.CustomerName)
	}
	b.WriteString(" ")
	fmt.Fprintf(&b, p.phrases.SummaryTotal, breakdown.Total.String())
	b.WriteString(" ")
	b.WriteString(p.phrases.SummaryConfirm)
	return b.String()
}

// Farewell is spoken once the order is placed.
func (p *Policy) Farewell(sess *store.Session) string {
	return fmt.Sprintf(p.phrases.Farewell, sess.CustomerName)
}

// Amend answers a caller who turned the summary down.
func (p *Policy) Amend() string {
	return p.phrases.Amend
}

func (p *Policy) ask(sess *store.Session, greeting, question string) Prompt {
	return Prompt{Text: join(greeting, question), State: sess.State, Kind: KindQuestion}
}

// nextLineNeedingExtras returns the first eligible line whose extras are not
// final, starting from the active line. Non-eligible lines found on the way
// are settled.
func (p *Policy) nextLineNeedingExtras(sess *store.Session) int {
	n := len(sess.Lines)
	if n == 0 {
		return -1
	}
	start := sess.ActiveLine
	if start < 0 || start >= n {
		start = 0
	}
	for k := 0; k < n; k++ {
		i := (start + k) % n
		line := &sess.Lines[i]
		if line.ExtrasResolved {
			continue
		}
		if !p.catalog.IsEligible(line.Item) {
			line.ExtrasResolved = true
			continue
		}
		return i
	}
	return -1
}

func (p *Policy) extrasQuestion(sess *store.Session, idx int) string {
	item := sess.Lines[idx].Item
	legal := p.catalog.Extras(item)

	names := make([]string, 0, PreviewExtras)
	for i, ex := range legal {
		if i == PreviewExtras {
			break
		}
		names = append(names, ex.Name)
	}
	list := strings.Join(names, ", ")
	if len(legal) > PreviewExtras {
		list += " " + p.phrases.AskExtrasMore
	}
	return fmt.Sprintf(p.phrases.AskExtras, p.lineLabel(sess, idx), list)
}

// lineLabel names a line by its item, with an ordinal when the order holds
// several of the same item.
func (p *Policy) lineLabel(sess *store.Session, idx int) string {
	item := sess.Lines[idx].Item
	same, pos := 0, 0
	for i, l := range sess.Lines {
		if l.Item != item {
			continue
		}
		if i == idx {
			pos = same
		}
		same++
	}
	if same < 2 {
		return item
	}
	if pos < len(p.phrases.Ordinals) {
		return p.phrases.Ordinals[pos] + " " + item
	}
	return fmt.Sprintf("%s #%d", item, pos+1)
}

func (p *Policy) clarification(c *store.Clarification) string {
	if q, ok := p.clarify[utils.Fold(c.Keyword)]; ok {
		return q
	}
	return fmt.Sprintf(p.phrases.ClarifyGeneric, c.Keyword, p.orList(c.Options))
}

func (p *Policy) orList(options []string) string {
	switch len(options) {
	case 0:
		return ""
	case 1:
		return options[0]
	}
	return strings.Join(options[:len(options)-1], ", ") + " " + p.phrases.Or + " " + options[len(options)-1]
}

func join(greeting, text string) string {
	if greeting == "" {
		return text
	}
	return greeting + " " + text
}
