package pricing

import (
	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/store"
)

// LineTotal is the priced form of one order line.
type LineTotal struct {
	Index       int        `json:"index"`
	Item        string     `json:"item"`
	Extras      []string   `json:"extras"`
	Base        menu.Money `json:"base"`
	ExtrasTotal menu.Money `json:"extras_total"`
	Subtotal    menu.Money `json:"subtotal"`
}

// Breakdown is the priced order.
type Breakdown struct {
	Lines []LineTotal `json:"lines"`
	Total menu.Money  `json:"total"`
}

// ComputeTotal prices every line of the session: base price plus the price of
// each chosen extra.
func ComputeTotal(cat *menu.Catalog, sess *store.Session) Breakdown {
	return ComputeLines(cat, sess.Lines)
}

// ComputeLines prices a list of order lines.
func ComputeLines(cat *menu.Catalog, lines []store.OrderLine) Breakdown {
	out := Breakdown{Lines: make([]LineTotal, 0, len(lines))}
	for i, line := range lines {
		lt := LineTotal{
			Index:  i,
			Item:   line.Item,
			Extras: append([]string(nil), line.Extras...),
		}
		// Lines only ever hold catalog items and extras; anything else
		// prices at zero rather than failing the summary.
		lt.Base, _ = cat.Price(line.Item)
		for _, extra := range line.Extras {
			p, _ := cat.ExtraPrice(line.Item, extra)
			lt.ExtrasTotal += p
		}
		lt.Subtotal = lt.Base + lt.ExtrasTotal
		out.Total += lt.Subtotal
		out.Lines = append(out.Lines, lt)
	}
	return out
}
