package menu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw     string
		want    Money
		wantErr bool
	}{
		{raw: "48", want: 4800},
		{raw: "4.5", want: 450},
		{raw: "32.90", want: 3290},
		{raw: " 0 ", want: 0},
		{raw: ".5", want: 50},
		{raw: "-3", wantErr: true},
		{raw: "3.999", wantErr: true},
		{raw: "3.", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMoney(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "48.00", Money(4800).String())
	assert.Equal(t, "3.50", Money(350).String())
	assert.Equal(t, "0.05", Money(5).String())
}

func TestLoadXML(t *testing.T) {
	cat, err := Load("testdata/menu.xml")
	require.NoError(t, err)

	assert.Equal(t, "Pizza Shemesh", cat.Store())
	assert.Equal(t, []string{"family pizza", "personal pizza", "focaccia", "cola"}, cat.Items())

	price, ok := cat.Price("personal pizza")
	require.True(t, ok)
	assert.Equal(t, Money(3290), price)

	assert.True(t, cat.IsEligible("family pizza"))
	assert.False(t, cat.IsEligible("cola"))
	// <extras/> with no children does not make an item eligible.
	assert.False(t, cat.IsEligible("focaccia"))
	assert.Nil(t, cat.Extras("focaccia"))

	extras := cat.Extras("family pizza")
	require.Len(t, extras, 4)
	assert.Equal(t, Extra{Name: "onion", Price: 350}, extras[3])

	p, ok := cat.ExtraPrice("personal pizza", "olives-black")
	assert.True(t, ok)
	assert.Equal(t, Money(400), p)
	_, ok = cat.ExtraPrice("personal pizza", "mushrooms")
	assert.False(t, ok)
}

func TestLoadYAML(t *testing.T) {
	cat, err := Load("testdata/menu.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"family pizza", "personal pizza", "cola"}, cat.Items())
	assert.True(t, cat.IsEligible("family pizza"))
	// Marked eligible but no extras listed.
	assert.False(t, cat.IsEligible("personal pizza"))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("testdata/menu.json")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	cat, err := Load("testdata/menu.xml")
	require.NoError(t, err)

	name, ok := cat.Lookup("  FAMILY  Pizza")
	assert.True(t, ok)
	assert.Equal(t, "family pizza", name)

	_, ok = cat.Lookup("family")
	assert.False(t, ok, "partial names must not match")
	_, ok = cat.Lookup("calzone")
	assert.False(t, ok)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		items    []ItemSpec
		extras   map[string][]ExtraSpec
		eligible []string
		reason   string
	}{
		{
			name:   "missing price",
			items:  []ItemSpec{{Name: "family pizza"}},
			reason: "missing price",
		},
		{
			name:   "negative price",
			items:  []ItemSpec{{Name: "family pizza", Price: "-1"}},
			reason: "non-negative",
		},
		{
			name:   "duplicate item",
			items:  []ItemSpec{{Name: "cola", Price: "9"}, {Name: "Cola", Price: "9"}},
			reason: "duplicate item",
		},
		{
			name:   "extras on non eligible item",
			items:  []ItemSpec{{Name: "cola", Price: "9"}},
			extras: map[string][]ExtraSpec{"cola": {{Name: "ice", Price: "1"}}},
			reason: "not marked extras-eligible",
		},
		{
			name:   "extras on unknown item",
			items:  []ItemSpec{{Name: "cola", Price: "9"}},
			extras: map[string][]ExtraSpec{"calzone": {{Name: "ice", Price: "1"}}},
			reason: "not on the menu",
		},
		{
			name:     "extra with bad price",
			items:    []ItemSpec{{Name: "family pizza", Price: "48"}},
			extras:   map[string][]ExtraSpec{"family pizza": {{Name: "onion", Price: "x"}}},
			eligible: []string{"family pizza"},
			reason:   "onion",
		},
		{
			name:     "eligible unknown item",
			items:    []ItemSpec{{Name: "family pizza", Price: "48"}},
			eligible: []string{"calzone"},
			reason:   "not on the menu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("store", tt.items, tt.extras, tt.eligible)
			require.Error(t, err)

			var catErr *CatalogError
			require.True(t, errors.As(err, &catErr))
			assert.Contains(t, catErr.Error(), tt.reason)
		})
	}
}

func TestSummary(t *testing.T) {
	cat, err := Load("testdata/menu.xml")
	require.NoError(t, err)

	summary := cat.Summary()
	assert.True(t, strings.HasPrefix(summary, "Menu for Pizza Shemesh:"))
	assert.Contains(t, summary, "Category: Pizzas")
	assert.Contains(t, summary, "  family pizza - 48.00")
	assert.Contains(t, summary, "    extra: onion - 3.50")
	assert.Contains(t, summary, "Category: Drinks")
}
