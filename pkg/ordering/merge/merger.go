package merge

import (
	"strings"

	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/ordering/extras"
	"phone-order-be/pkg/store"
	"phone-order-be/pkg/utils"
)

// MaxQuantity caps a single mention; "a thousand pizzas" is a recognition
// error more often than an order.
const MaxQuantity = 20

// ItemMention is one item the NLU heard, with the extras mentioned for it.
type ItemMention struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Extras   []string `json:"extras"`
}

// ParseResult is the structured reading of one utterance. Every field is
// untrusted and validated against the catalog before it touches a session.
type ParseResult struct {
	Mode         string        `json:"mode"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone"`
	Address      string        `json:"address"`
	Items        []ItemMention `json:"items"`
	Extras       []string      `json:"extras"`
	NoExtras     bool          `json:"no_extras"`
	Confirmation string        `json:"confirmation"`
}

// Outcome summarizes what a merge changed.
type Outcome struct {
	LinesAdded    int
	ExtrasApplied int
	ModeSet       bool
	NameSet       bool
	PhoneSet      bool
	AddressSet    bool
	Clarification bool
	DroppedItems  []string
	DroppedExtras []string
}

// Changed reports whether the merge touched the session.
func (o Outcome) Changed() bool {
	return o.LinesAdded > 0 || o.ExtrasApplied > 0 || o.ModeSet || o.NameSet ||
		o.PhoneSet || o.AddressSet || o.Clarification
}

// Option tunes a single Apply call.
type Option func(*options)

type options struct {
	skipLooseExtras bool
}

// WithoutLooseExtras ignores extras that are not tied to an item. Used on the
// turn that answered a clarification, where the same words would otherwise be
// read a second time.
func WithoutLooseExtras() Option {
	return func(o *options) {
		o.skipLooseExtras = true
	}
}

var modeAliases = map[string]string{
	"delivery":  store.ModeDelivery,
	"deliver":   store.ModeDelivery,
	"משלוח":     store.ModeDelivery,
	"pickup":    store.ModePickup,
	"pick up":   store.ModePickup,
	"pick-up":   store.ModePickup,
	"takeaway":  store.ModePickup,
	"take away": store.ModePickup,
	"איסוף":     store.ModePickup,
}

// Merger folds parse results into sessions under catalog constraints.
type Merger struct {
	catalog *menu.Catalog
}

func NewMerger(catalog *menu.Catalog) *Merger {
	return &Merger{catalog: catalog}
}

// Apply validates parse against the catalog and writes what survives into
// sess. Unknown items and extras are dropped, never reported as errors.
func (m *Merger) Apply(sess *store.Session, parse *ParseResult, opts ...Option) Outcome {
	var out Outcome
	if parse == nil {
		return out
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 1. Fulfillment mode, last one wins
	if mode, ok := modeAliases[utils.Fold(parse.Mode)]; ok {
		sess.Mode = mode
		out.ModeSet = true
	}

	// 2. Customer details override earlier values
	if name := strings.TrimSpace(parse.Name); name != "" {
		sess.CustomerName = name
		out.NameSet = true
	}
	if phone := utils.DigitsOnly(parse.Phone); phone != "" {
		sess.CustomerPhone = phone
		out.PhoneSet = true
	}
	if address := strings.TrimSpace(parse.Address); address != "" {
		sess.CustomerAddress = address
		out.AddressSet = true
	}

	// 3. Item mentions append new lines
	for _, mention := range parse.Items {
		m.applyMention(sess, mention, &out)
	}

	// 4. Extras said on their own belong to the line being asked about
	if !o.skipLooseExtras {
		m.applyLooseExtras(sess, parse, &out)
	}

	// 5. Point at the first line still missing its extras. The pointer only
	// jumps to EXTRAS from ORDER; earlier states are walked by the policy so
	// none is skipped, later ones are interrupted instead of regressed.
	if idx := sess.FirstUnresolved(); idx >= 0 {
		sess.ActiveLine = idx
		if sess.State >= store.StateOrder {
			sess.Advance(store.StateExtras)
		}
	}

	return out
}

func (m *Merger) applyMention(sess *store.Session, mention ItemMention, out *Outcome) {
	item, ok := m.catalog.Lookup(mention.Name)
	if !ok {
		out.DroppedItems = append(out.DroppedItems, mention.Name)
		return
	}

	qty := mention.Quantity
	if qty < 1 {
		qty = 1
	}
	if qty > MaxQuantity {
		qty = MaxQuantity
	}

	if !m.catalog.IsEligible(item) {
		out.DroppedExtras = append(out.DroppedExtras, mention.Extras...)
		for i := 0; i < qty; i++ {
			sess.Lines = append(sess.Lines, store.OrderLine{Item: item, ExtrasResolved: true})
		}
		out.LinesAdded += qty
		return
	}

	legal := m.catalog.Extras(item)
	var chosen []string
	var ambiguousKeyword string
	var ambiguousOptions []string
	for _, keyword := range mention.Extras {
		res := extras.ResolveKeyword(keyword, legal)
		switch res.Kind {
		case extras.Concrete:
			if !contains(chosen, res.Extra) {
				chosen = append(chosen, res.Extra)
			}
		case extras.Ambiguous:
			if ambiguousKeyword == "" && sess.Pending == nil {
				ambiguousKeyword = keyword
				ambiguousOptions = res.Options
			} else {
				// one open question at a time
				out.DroppedExtras = append(out.DroppedExtras, keyword)
			}
		default:
			out.DroppedExtras = append(out.DroppedExtras, keyword)
		}
	}

	first := len(sess.Lines)
	for i := 0; i < qty; i++ {
		line := store.OrderLine{Item: item, ExtrasResolved: len(chosen) > 0}
		if len(chosen) > 0 {
			line.Extras = append([]string(nil), chosen...)
		}
		sess.Lines = append(sess.Lines, line)
	}
	out.LinesAdded += qty

	if ambiguousKeyword != "" {
		sess.Pending = &store.Clarification{
			LineIndex: first,
			LineCount: qty,
			Keyword:   strings.TrimSpace(ambiguousKeyword),
			Options:   ambiguousOptions,
		}
		out.Clarification = true
	}
}

func (m *Merger) applyLooseExtras(sess *store.Session, parse *ParseResult, out *Outcome) {
	idx := sess.ActiveLine
	if idx < 0 || idx >= len(sess.Lines) || sess.Lines[idx].ExtrasResolved {
		idx = sess.FirstUnresolved()
	}
	if idx < 0 {
		out.DroppedExtras = append(out.DroppedExtras, parse.Extras...)
		return
	}
	line := &sess.Lines[idx]

	if !m.catalog.IsEligible(line.Item) {
		line.ExtrasResolved = true
		return
	}

	legal := m.catalog.Extras(line.Item)
	applied := 0
	for _, keyword := range parse.Extras {
		res := extras.ResolveKeyword(keyword, legal)
		switch res.Kind {
		case extras.Concrete:
			line.AddExtra(res.Extra)
			applied++
			if sess.Pending != nil && sess.Pending.LineIndex == idx && contains(sess.Pending.Options, res.Extra) {
				ResolvePending(sess, res.Extra)
			}
		case extras.Ambiguous:
			if sess.Pending == nil {
				sess.Pending = &store.Clarification{
					LineIndex: idx,
					LineCount: 1,
					Keyword:   strings.TrimSpace(keyword),
					Options:   res.Options,
				}
				out.Clarification = true
			} else {
				out.DroppedExtras = append(out.DroppedExtras, keyword)
			}
		default:
			out.DroppedExtras = append(out.DroppedExtras, keyword)
		}
	}

	if applied > 0 {
		line.ExtrasResolved = true
		out.ExtrasApplied += applied
		return
	}
	pendingHere := sess.Pending != nil && sess.Pending.LineIndex == idx
	if parse.NoExtras && !pendingHere {
		line.ExtrasResolved = true
	}
}

// ResolvePending answers the pending clarification with extra: every line it
// covers gets the extra and is settled.
func ResolvePending(sess *store.Session, extra string) {
	if sess.Pending == nil {
		return
	}
	for _, i := range sess.Pending.Covers(len(sess.Lines)) {
		sess.Lines[i].AddExtra(extra)
		sess.Lines[i].ExtrasResolved = true
	}
	sess.Pending = nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
