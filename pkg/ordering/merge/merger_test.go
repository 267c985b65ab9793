package merge

import (
	"testing"
	"time"

	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *menu.Catalog {
	t.Helper()
	cat, err := menu.New("Pizza Shemesh",
		[]menu.ItemSpec{
			{Name: "family pizza", Price: "48"},
			{Name: "personal pizza", Price: "32"},
			{Name: "focaccia", Price: "18"},
			{Name: "cola", Price: "9"},
		},
		map[string][]menu.ExtraSpec{
			"family pizza": {
				{Name: "mushrooms", Price: "4"},
				{Name: "olives-green", Price: "4"},
				{Name: "olives-black", Price: "4"},
			},
			"personal pizza": {
				{Name: "olives-green", Price: "4"},
				{Name: "olives-black", Price: "4"},
			},
		},
		// focaccia is eligible on paper but has no extras on the menu
		[]string{"family pizza", "personal pizza", "focaccia"},
	)
	require.NoError(t, err)
	return cat
}

func newSession(state store.State) *store.Session {
	s := store.NewSession("CA100", time.Now())
	s.State = state
	return s
}

func TestApplyCustomerFields(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateMode)

	out := m.Apply(sess, &ParseResult{
		Mode:    " Pickup ",
		Name:    "  Dana ",
		Phone:   "050-123-4567",
		Address: " 12 Herzl St ",
	})

	assert.True(t, out.ModeSet)
	assert.True(t, out.NameSet)
	assert.True(t, out.PhoneSet)
	assert.True(t, out.AddressSet)
	assert.Equal(t, store.ModePickup, sess.Mode)
	assert.Equal(t, "Dana", sess.CustomerName)
	assert.Equal(t, "0501234567", sess.CustomerPhone)
	assert.Equal(t, "12 Herzl St", sess.CustomerAddress)

	// later values override, unknown modes and blank fields do not
	m.Apply(sess, &ParseResult{Mode: "delivery", Name: "Dana Levi"})
	m.Apply(sess, &ParseResult{Mode: "teleport", Phone: "call me"})
	assert.Equal(t, store.ModeDelivery, sess.Mode)
	assert.Equal(t, "Dana Levi", sess.CustomerName)
	assert.Equal(t, "0501234567", sess.CustomerPhone)
}

func TestApplyFamilyPizzaWithMushrooms(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateMode)

	out := m.Apply(sess, &ParseResult{
		Mode:  "pickup",
		Name:  "Dana",
		Items: []ItemMention{{Name: "family pizza", Quantity: 1, Extras: []string{"mushrooms"}}},
	})

	assert.Equal(t, 1, out.LinesAdded)
	require.Len(t, sess.Lines, 1)
	assert.Equal(t, store.OrderLine{Item: "family pizza", Extras: []string{"mushrooms"}, ExtrasResolved: true}, sess.Lines[0])
	assert.Equal(t, store.ModePickup, sess.Mode)
	assert.Equal(t, "Dana", sess.CustomerName)
	assert.Equal(t, store.StateMode, sess.State, "merge never skips MODE")
}

func TestApplyQuantity(t *testing.T) {
	m := NewMerger(testCatalog(t))

	tests := []struct {
		name string
		qty  int
		want int
	}{
		{"zero means one", 0, 1},
		{"negative means one", -4, 1},
		{"three", 3, 3},
		{"capped", 500, MaxQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newSession(store.StateOrder)
			out := m.Apply(sess, &ParseResult{Items: []ItemMention{{Name: "cola", Quantity: tt.qty}}})
			assert.Equal(t, tt.want, out.LinesAdded)
			assert.Len(t, sess.Lines, tt.want)
		})
	}
}

func TestApplyDropsUnknownItemsAndExtras(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateOrder)

	out := m.Apply(sess, &ParseResult{Items: []ItemMention{
		{Name: "calzone", Quantity: 2},
		{Name: "family pizza", Extras: []string{"pineapple", "mushrooms"}},
	}})

	assert.Equal(t, []string{"calzone"}, out.DroppedItems)
	assert.Equal(t, []string{"pineapple"}, out.DroppedExtras)
	require.Len(t, sess.Lines, 1)
	assert.Equal(t, []string{"mushrooms"}, sess.Lines[0].Extras)
}

func TestApplyEligibilityEnforcement(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateOrder)

	// The NLU attaches a family-pizza extra to a drink.
	m.Apply(sess, &ParseResult{Items: []ItemMention{{Name: "cola", Extras: []string{"mushrooms", "olives-green"}}}})

	require.Len(t, sess.Lines, 1)
	assert.Empty(t, sess.Lines[0].Extras)
	assert.True(t, sess.Lines[0].ExtrasResolved)

	// Loose extras cannot land on it either.
	m.Apply(sess, &ParseResult{Extras: []string{"mushrooms"}})
	assert.Empty(t, sess.Lines[0].Extras)
}

func TestApplyItemWithEmptyExtrasResolvesImmediately(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateOrder)

	m.Apply(sess, &ParseResult{Items: []ItemMention{{Name: "focaccia", Extras: []string{"mushrooms"}}}})

	require.Len(t, sess.Lines, 1)
	assert.Empty(t, sess.Lines[0].Extras)
	assert.True(t, sess.Lines[0].ExtrasResolved)
	assert.Equal(t, store.StateOrder, sess.State)
}

func TestApplyUnresolvedLineMovesToExtras(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateOrder)

	m.Apply(sess, &ParseResult{Items: []ItemMention{
		{Name: "cola"},
		{Name: "family pizza"},
	}})

	assert.Equal(t, store.StateExtras, sess.State)
	assert.Equal(t, 1, sess.ActiveLine)
	assert.False(t, sess.Lines[1].ExtrasResolved)
}

func TestApplyNeverRegressesState(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateName)

	m.Apply(sess, &ParseResult{Items: []ItemMention{{Name: "family pizza"}}})

	assert.Equal(t, store.StateName, sess.State)
	assert.Equal(t, 0, sess.ActiveLine)
}

func TestApplyAmbiguousExtraRaisesClarification(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateOrder)
	sess.Lines = []store.OrderLine{{Item: "cola", ExtrasResolved: true}}

	out := m.Apply(sess, &ParseResult{Items: []ItemMention{{Name: "personal pizza", Extras: []string{"olives"}}}})

	assert.True(t, out.Clarification)
	require.NotNil(t, sess.Pending)
	assert.Equal(t, store.Clarification{
		LineIndex: 1,
		LineCount: 1,
		Keyword:   "olives",
		Options:   []string{"olives-green", "olives-black"},
	}, *sess.Pending)
	assert.False(t, sess.Lines[1].ExtrasResolved)

	// a second ambiguity does not replace the pending one and is reported
	out = m.Apply(sess, &ParseResult{Items: []ItemMention{{Name: "family pizza", Extras: []string{"olives"}}}})
	assert.Equal(t, 1, sess.Pending.LineIndex)
	assert.False(t, out.Clarification)
	assert.Equal(t, []string{"olives"}, out.DroppedExtras)
}

func TestApplyAmbiguousLooseExtraWhilePendingIsReported(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateExtras)
	sess.Lines = []store.OrderLine{{Item: "personal pizza"}, {Item: "family pizza"}}
	sess.ActiveLine = 1
	sess.Pending = &store.Clarification{LineIndex: 0, Keyword: "olives", Options: []string{"olives-green", "olives-black"}}

	out := m.Apply(sess, &ParseResult{Extras: []string{"olives"}})

	assert.Equal(t, 0, sess.Pending.LineIndex)
	assert.Equal(t, []string{"olives"}, out.DroppedExtras)
}

func TestApplyClarificationSpansQuantity(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateOrder)

	m.Apply(sess, &ParseResult{Items: []ItemMention{{Name: "family pizza", Quantity: 2, Extras: []string{"mushrooms", "olive"}}}})

	require.NotNil(t, sess.Pending)
	assert.Equal(t, 0, sess.Pending.LineIndex)
	assert.Equal(t, 2, sess.Pending.LineCount)

	ResolvePending(sess, "olives-green")

	assert.Nil(t, sess.Pending)
	for _, line := range sess.Lines {
		assert.Equal(t, []string{"mushrooms", "olives-green"}, line.Extras)
		assert.True(t, line.ExtrasResolved)
	}
}

func TestApplyLooseExtras(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateExtras)
	sess.Lines = []store.OrderLine{{Item: "family pizza"}}

	out := m.Apply(sess, &ParseResult{Extras: []string{"mushrooms", "green olives"}})

	assert.Equal(t, 2, out.ExtrasApplied)
	assert.Equal(t, []string{"mushrooms", "olives-green"}, sess.Lines[0].Extras)
	assert.True(t, sess.Lines[0].ExtrasResolved)
}

func TestApplyLooseExtrasSkipped(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateExtras)
	sess.Lines = []store.OrderLine{{Item: "family pizza"}}

	m.Apply(sess, &ParseResult{Extras: []string{"olives"}}, WithoutLooseExtras())

	assert.Nil(t, sess.Pending)
	assert.Empty(t, sess.Lines[0].Extras)
}

func TestApplyNoExtras(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateExtras)
	sess.Lines = []store.OrderLine{{Item: "family pizza"}, {Item: "personal pizza"}}

	m.Apply(sess, &ParseResult{NoExtras: true})

	assert.True(t, sess.Lines[0].ExtrasResolved)
	assert.Empty(t, sess.Lines[0].Extras)
	assert.False(t, sess.Lines[1].ExtrasResolved)
	assert.Equal(t, 1, sess.ActiveLine)
}

func TestApplyNilParse(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateMode)
	before := sess.Clone()

	out := m.Apply(sess, nil)

	assert.False(t, out.Changed())
	assert.Equal(t, before, sess)
}

func TestApplyLooseExtraAnswersPendingClarification(t *testing.T) {
	m := NewMerger(testCatalog(t))
	sess := newSession(store.StateExtras)
	sess.Lines = []store.OrderLine{{Item: "personal pizza"}}
	sess.Pending = &store.Clarification{LineIndex: 0, Keyword: "olives", Options: []string{"olives-green", "olives-black"}}

	m.Apply(sess, &ParseResult{Extras: []string{"black olives"}})

	assert.Nil(t, sess.Pending)
	assert.Equal(t, []string{"olives-black"}, sess.Lines[0].Extras)
	assert.True(t, sess.Lines[0].ExtrasResolved)
}
