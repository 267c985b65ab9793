package menu

import (
	"fmt"
	"sort"
	"strings"

	"phone-order-be/pkg/utils"
)

// CatalogError reports a malformed menu. It is fatal at startup.
type CatalogError struct {
	Item   string
	Reason string
}

func (e *CatalogError) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("catalog: %s", e.Reason)
	}
	return fmt.Sprintf("catalog: item %q: %s", e.Item, e.Reason)
}

// Extra is a priced add-on scoped to one menu item.
type Extra struct {
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// ItemSpec and ExtraSpec are the raw, unvalidated shapes produced by decoders.
type ItemSpec struct {
	Name     string
	Price    string
	Category string
}

type ExtraSpec struct {
	Name  string
	Price string
}

// Catalog is the restaurant menu. It is never mutated after New returns, so
// concurrent readers need no locking.
type Catalog struct {
	store    string
	items    []string
	category map[string]string
	prices   map[string]Money
	extras   map[string][]Extra
	eligible map[string]bool
	index    map[string]string // folded name -> canonical name
}

// New validates the raw menu and builds a Catalog.
func New(store string, items []ItemSpec, extras map[string][]ExtraSpec, eligible []string) (*Catalog, error) {
	c := &Catalog{
		store:    strings.TrimSpace(store),
		category: make(map[string]string),
		prices:   make(map[string]Money),
		extras:   make(map[string][]Extra),
		eligible: make(map[string]bool),
		index:    make(map[string]string),
	}

	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, &CatalogError{Reason: "item without a name"}
		}
		key := utils.Fold(name)
		if _, dup := c.index[key]; dup {
			return nil, &CatalogError{Item: name, Reason: "duplicate item"}
		}
		if strings.TrimSpace(it.Price) == "" {
			return nil, &CatalogError{Item: name, Reason: "missing price"}
		}
		price, err := ParseMoney(it.Price)
		if err != nil {
			return nil, &CatalogError{Item: name, Reason: err.Error()}
		}
		c.index[key] = name
		c.items = append(c.items, name)
		c.prices[name] = price
		c.category[name] = strings.TrimSpace(it.Category)
	}

	for _, raw := range eligible {
		name, ok := c.Lookup(raw)
		if !ok {
			return nil, &CatalogError{Item: raw, Reason: "extras-eligible item is not on the menu"}
		}
		c.eligible[name] = true
	}

	// Sorted for a deterministic first error.
	keys := make([]string, 0, len(extras))
	for k := range extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		name, ok := c.Lookup(raw)
		if !ok {
			return nil, &CatalogError{Item: raw, Reason: "extras reference an item that is not on the menu"}
		}
		if !c.eligible[name] {
			return nil, &CatalogError{Item: raw, Reason: "extras reference an item not marked extras-eligible"}
		}
		seen := make(map[string]bool)
		for _, ex := range extras[raw] {
			exName := strings.TrimSpace(ex.Name)
			if exName == "" {
				return nil, &CatalogError{Item: name, Reason: "extra without a name"}
			}
			if seen[utils.Fold(exName)] {
				return nil, &CatalogError{Item: name, Reason: fmt.Sprintf("duplicate extra %q", exName)}
			}
			seen[utils.Fold(exName)] = true
			price, err := ParseMoney(ex.Price)
			if err != nil {
				return nil, &CatalogError{Item: name, Reason: fmt.Sprintf("extra %q: %v", exName, err)}
			}
			c.extras[name] = append(c.extras[name], Extra{Name: exName, Price: price})
		}
	}

	return c, nil
}

func (c *Catalog) Store() string { return c.store }

// Items returns item names in display order.
func (c *Catalog) Items() []string {
	out := make([]string, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup matches a free-text item name against the menu. The whole name must
// match after folding; partial names are not accepted.
func (c *Catalog) Lookup(name string) (string, bool) {
	canonical, ok := c.index[utils.Fold(name)]
	return canonical, ok
}

func (c *Catalog) Price(item string) (Money, bool) {
	p, ok := c.prices[item]
	return p, ok
}

// Extras returns the legal extras for item in catalog order.
func (c *Catalog) Extras(item string) []Extra {
	src := c.extras[item]
	if len(src) == 0 {
		return nil
	}
	out := make([]Extra, len(src))
	copy(out, src)
	return out
}

// ExtraPrice returns the price of a named extra for item.
func (c *Catalog) ExtraPrice(item, extra string) (Money, bool) {
	for _, ex := range c.extras[item] {
		if ex.Name == extra {
			return ex.Price, true
		}
	}
	return 0, false
}

// IsEligible reports whether lines for item can carry extras at all. An item
// marked eligible but without any extras on the menu is treated as ineligible.
func (c *Catalog) IsEligible(item string) bool {
	return c.eligible[item] && len(c.extras[item]) > 0
}

// Summary renders the menu as plain text for the NLU prompt.
func (c *Catalog) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Menu for %s:\n", c.store)

	lastCategory := "\x00"
	for _, item := range c.items {
		if cat := c.category[item]; cat != lastCategory {
			if cat != "" {
				fmt.Fprintf(&b, "\nCategory: %s\n", cat)
			}
			lastCategory = cat
		}
		fmt.Fprintf(&b, "  %s - %s\n", item, c.prices[item])
		for _, ex := range c.extras[item] {
			fmt.Fprintf(&b, "    extra: %s - %s\n", ex.Name, ex.Price)
		}
	}
	return b.String()
}
