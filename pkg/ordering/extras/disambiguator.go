package extras

import (
	"strings"
	"unicode/utf8"

	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/store"
	"phone-order-be/pkg/utils"
)

// Kind classifies the outcome of matching a keyword against a line's extras.
type Kind int

const (
	None Kind = iota
	Concrete
	Ambiguous
)

// Resolution is the result of ResolveKeyword. Extra is set for Concrete,
// Options (catalog order) for Ambiguous.
type Resolution struct {
	Kind    Kind
	Extra   string
	Options []string
}

// ResolveKeyword matches a caller's extra mention against the legal extras of
// one item. A candidate is an extra whose folded name contains the keyword, or
// whose name tokens include every keyword token ("green olives" finds
// "olives-green"). An exact folded name always wins.
func ResolveKeyword(keyword string, legal []menu.Extra) Resolution {
	key := utils.Fold(keyword)
	if key == "" {
		return Resolution{Kind: None}
	}
	keyTokens := utils.Tokens(keyword)

	var candidates []string
	for _, ex := range legal {
		name := utils.Fold(ex.Name)
		if name == key {
			return Resolution{Kind: Concrete, Extra: ex.Name}
		}
		if strings.Contains(name, key) || containsAll(utils.Tokens(ex.Name), keyTokens) {
			candidates = append(candidates, ex.Name)
		}
	}

	switch len(candidates) {
	case 0:
		return Resolution{Kind: None}
	case 1:
		return Resolution{Kind: Concrete, Extra: candidates[0]}
	default:
		return Resolution{Kind: Ambiguous, Options: candidates}
	}
}

// ApplyAnswer picks one of the pending options from the caller's reply.
// Qualifier tokens (option tokens that tell the options apart, such as
// "green" in "olives-green") are tried first; a plain substring match is the
// fallback. Anything but exactly one match leaves the clarification open.
func ApplyAnswer(pending store.Clarification, answer string) (string, bool) {
	answerTokens := toSet(utils.Tokens(answer))
	if len(answerTokens) == 0 {
		return "", false
	}

	var matched []string
	for i, quals := range qualifiers(pending) {
		for _, tok := range quals {
			if answerTokens[tok] {
				matched = append(matched, pending.Options[i])
				break
			}
		}
	}
	if len(matched) == 1 {
		return matched[0], true
	}

	folded := utils.Fold(answer)
	matched = matched[:0]
	for _, opt := range pending.Options {
		name := utils.Fold(opt)
		if strings.Contains(folded, name) || strings.Contains(name, folded) {
			matched = append(matched, opt)
		}
	}
	if len(matched) == 1 {
		return matched[0], true
	}
	return "", false
}

// minStemLen keeps short tokens like "a" from counting as a keyword stem.
const minStemLen = 3

// qualifiers returns, per option, the tokens that are neither a form of the
// keyword ("olive" vs "olives") nor shared by every option.
func qualifiers(pending store.Clarification) [][]string {
	keywordTokens := utils.Tokens(pending.Keyword)
	optionTokens := make([][]string, len(pending.Options))
	seenIn := make(map[string]int)
	for i, opt := range pending.Options {
		optionTokens[i] = utils.Tokens(opt)
		for tok := range toSet(optionTokens[i]) {
			seenIn[tok]++
		}
	}

	out := make([][]string, len(pending.Options))
	for i, tokens := range optionTokens {
		for _, tok := range tokens {
			if isKeywordForm(tok, keywordTokens) {
				continue
			}
			if len(pending.Options) > 1 && seenIn[tok] == len(pending.Options) {
				continue
			}
			out[i] = append(out[i], tok)
		}
	}
	return out
}

func isKeywordForm(tok string, keywordTokens []string) bool {
	for _, kw := range keywordTokens {
		if tok == kw {
			return true
		}
		if utf8.RuneCountInString(kw) >= minStemLen && utf8.RuneCountInString(tok) >= minStemLen &&
			(strings.Contains(tok, kw) || strings.Contains(kw, tok)) {
			return true
		}
	}
	return false
}

var declineTokens = map[string]bool{
	"no":      true,
	"none":    true,
	"nothing": true,
	"without": true,
	"plain":   true,
	"nope":    true,
	"לא":      true,
	"בלי":     true,
	"כלום":    true,
}

// IsDecline reports whether the reply turns down extras ("no thanks",
// "plain", "without anything").
func IsDecline(text string) bool {
	for _, tok := range utils.Tokens(text) {
		if declineTokens[tok] {
			return true
		}
	}
	return false
}

func containsAll(have, want []string) bool {
	if len(want) == 0 {
		return false
	}
	set := toSet(have)
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
