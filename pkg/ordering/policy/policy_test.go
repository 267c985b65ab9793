package policy

import (
	"testing"
	"time"

	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/ordering/merge"
	"phone-order-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *menu.Catalog {
	t.Helper()
	cat, err := menu.New("Pizza Shemesh",
		[]menu.ItemSpec{
			{Name: "family pizza", Price: "48"},
			{Name: "personal pizza", Price: "32.90"},
			{Name: "cola", Price: "9"},
		},
		map[string][]menu.ExtraSpec{
			"family pizza": {
				{Name: "mushrooms", Price: "4"},
				{Name: "olives-green", Price: "4"},
				{Name: "olives-black", Price: "4"},
				{Name: "onion", Price: "3.50"},
				{Name: "corn", Price: "3"},
				{Name: "tuna", Price: "6"},
			},
			"personal pizza": {
				{Name: "olives-green", Price: "4"},
				{Name: "olives-black", Price: "4"},
			},
		},
		[]string{"family pizza", "personal pizza"},
	)
	require.NoError(t, err)
	return cat
}

func newPolicy(t *testing.T) (*Policy, *menu.Catalog) {
	cat := testCatalog(t)
	return NewPolicy(cat, DefaultPhrases()), cat
}

func TestNextWelcomeFallsThroughToMode(t *testing.T) {
	p, _ := newPolicy(t)
	sess := store.NewSession("CA1", time.Now())

	prompt := p.Next(sess)

	assert.Equal(t, store.StateMode, sess.State)
	assert.Equal(t, KindQuestion, prompt.Kind)
	assert.Equal(t, "Hello and welcome to Pizza Shemesh! Would you like delivery or pickup?", prompt.Text)

	// asked again, no greeting
	prompt = p.Next(sess)
	assert.Equal(t, "Would you like delivery or pickup?", prompt.Text)
}

func TestNextFamilyPizzaScenarioReachesPhone(t *testing.T) {
	p, cat := newPolicy(t)
	m := merge.NewMerger(cat)
	sess := store.NewSession("CA1", time.Now())
	p.Next(sess)

	m.Apply(sess, &merge.ParseResult{
		Mode:  "pickup",
		Name:  "Dana",
		Items: []merge.ItemMention{{Name: "family pizza", Quantity: 1, Extras: []string{"mushrooms"}}},
	})
	prompt := p.Next(sess)

	require.Len(t, sess.Lines, 1)
	assert.Equal(t, store.OrderLine{Item: "family pizza", Extras: []string{"mushrooms"}, ExtrasResolved: true}, sess.Lines[0])
	assert.Equal(t, store.StatePhone, sess.State)
	assert.Equal(t, "What is your phone number?", prompt.Text)

	// pickup skips ADDRESS
	m.Apply(sess, &merge.ParseResult{Phone: "050 123 4567"})
	prompt = p.Next(sess)
	assert.Equal(t, store.StateSummary, sess.State)
	assert.Equal(t, KindSummary, prompt.Kind)
	require.NotNil(t, prompt.Summary)
	assert.Equal(t, menu.Money(5200), prompt.Summary.Total)
	assert.Equal(t,
		"Here is your order: family pizza with mushrooms, 52.00. Pickup for Dana. The total is 52.00. Shall I place the order?",
		prompt.Text)
}

func TestNextDeliveryAsksAddress(t *testing.T) {
	p, _ := newPolicy(t)
	sess := store.NewSession("CA1", time.Now())
	sess.State = store.StatePhone
	sess.Mode = store.ModeDelivery
	sess.Lines = []store.OrderLine{{Item: "cola", ExtrasResolved: true}}
	sess.CustomerName = "Dana"
	sess.CustomerPhone = "0501234567"

	prompt := p.Next(sess)
	assert.Equal(t, store.StateAddress, sess.State)
	assert.Equal(t, "What is the delivery address?", prompt.Text)

	sess.CustomerAddress = "12 Herzl St"
	prompt = p.Next(sess)
	assert.Equal(t, store.StateSummary, sess.State)
	assert.Contains(t, prompt.Text, "Delivery for Dana to 12 Herzl St.")
}

func TestNextSummaryAsksAddressAfterLateSwitchToDelivery(t *testing.T) {
	p, _ := newPolicy(t)
	sess := store.NewSession("CA1", time.Now())
	sess.State = store.StateSummary
	sess.Mode = store.ModeDelivery
	sess.Lines = []store.OrderLine{{Item: "cola", ExtrasResolved: true}}
	sess.CustomerName = "Dana"
	sess.CustomerPhone = "0501234567"

	prompt := p.Next(sess)

	assert.Equal(t, store.StateSummary, sess.State)
	assert.Equal(t, KindClarification, prompt.Kind)
	assert.Equal(t, "What is the delivery address?", prompt.Text)
}

func TestNextPendingClarification(t *testing.T) {
	p, _ := newPolicy(t)

	tests := []struct {
		name    string
		pending store.Clarification
		want    string
	}{
		{
			name:    "known keyword",
			pending: store.Clarification{Keyword: "Olives", Options: []string{"olives-green", "olives-black"}},
			want:    "Would you like green olives or black olives?",
		},
		{
			name:    "generic",
			pending: store.Clarification{Keyword: "cheese", Options: []string{"cheese-feta", "cheese-goat", "cheese-blue"}},
			want:    "Which cheese would you like: cheese-feta, cheese-goat or cheese-blue?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := store.NewSession("CA1", time.Now())
			sess.State = store.StateExtras
			pending := tt.pending
			sess.Pending = &pending

			prompt := p.Next(sess)

			assert.Equal(t, KindClarification, prompt.Kind)
			assert.Equal(t, tt.want, prompt.Text)
			assert.Equal(t, store.StateExtras, sess.State)
		})
	}
}

func TestNextExtrasQuestion(t *testing.T) {
	p, _ := newPolicy(t)
	sess := store.NewSession("CA1", time.Now())
	sess.State = store.StateExtras
	sess.Mode = store.ModePickup
	sess.Lines = []store.OrderLine{
		{Item: "cola", ExtrasResolved: true},
		{Item: "family pizza"},
		{Item: "family pizza"},
	}

	prompt := p.Next(sess)

	assert.Equal(t, 1, sess.ActiveLine)
	assert.Equal(t,
		"Would you like any extras on the first family pizza? We have mushrooms, olives-green, olives-black, onion, corn and more.",
		prompt.Text)

	sess.Lines[1].ExtrasResolved = true
	prompt = p.Next(sess)
	assert.Equal(t, 2, sess.ActiveLine)
	assert.Contains(t, prompt.Text, "second family pizza")

	sess.Lines[2].ExtrasResolved = true
	prompt = p.Next(sess)
	assert.Equal(t, store.StateName, sess.State)
	assert.Equal(t, "May I have your name, please?", prompt.Text)
}

func TestNextLateUnresolvedLineInterrupts(t *testing.T) {
	p, _ := newPolicy(t)
	sess := store.NewSession("CA1", time.Now())
	sess.State = store.StatePhone
	sess.Mode = store.ModePickup
	sess.CustomerName = "Dana"
	sess.Lines = []store.OrderLine{
		{Item: "cola", ExtrasResolved: true},
		{Item: "personal pizza"},
	}

	prompt := p.Next(sess)

	assert.Equal(t, store.StatePhone, sess.State)
	assert.Equal(t, KindClarification, prompt.Kind)
	assert.Equal(t, 1, sess.ActiveLine)
	assert.Equal(t, "Would you like any extras on the personal pizza? We have olives-green, olives-black.", prompt.Text)
}

func TestNextStateIsMonotonic(t *testing.T) {
	p, cat := newPolicy(t)
	m := merge.NewMerger(cat)
	sess := store.NewSession("CA1", time.Now())

	turns := []*merge.ParseResult{
		nil,
		{Items: []merge.ItemMention{{Name: "cola"}}},
		{Mode: "delivery"},
		{Items: []merge.ItemMention{{Name: "personal pizza", Extras: []string{"olives"}}}},
		{Extras: []string{"black olives"}},
		{Name: "Dana"},
		{Items: []merge.ItemMention{{Name: "family pizza"}}},
		{NoExtras: true},
		{Phone: "0501234567"},
		{Mode: "pickup"},
		{Mode: "delivery"},
		{Address: "12 Herzl St"},
		{Items: []merge.ItemMention{{Name: "cola", Quantity: 2}}},
	}

	prev := sess.State
	for i, parse := range turns {
		m.Apply(sess, parse)
		p.Next(sess)
		assert.GreaterOrEqual(t, int(sess.State), int(prev), "turn %d", i)
		prev = sess.State
	}
	assert.Equal(t, store.StateSummary, sess.State)
	assert.Len(t, sess.Lines, 5)
}

func TestFarewellAndAmend(t *testing.T) {
	p, _ := newPolicy(t)
	sess := store.NewSession("CA1", time.Now())
	sess.CustomerName = "Dana"

	assert.Equal(t, "Thank you Dana, your order has been placed. Goodbye!", p.Farewell(sess))
	assert.Equal(t, "No problem. What would you like to add or change?", p.Amend())
}
