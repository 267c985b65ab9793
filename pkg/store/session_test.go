package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOrdering(t *testing.T) {
	order := []State{StateWelcome, StateMode, StateOrder, StateExtras, StateName, StatePhone, StateAddress, StateSummary}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i])
	}
	assert.Equal(t, "EXTRAS", StateExtras.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		S State `json:"s"`
	}{S: StatePhone})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"PHONE"}`, string(data))

	var out struct {
		S State `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"ADDRESS"}`), &out))
	assert.Equal(t, StateAddress, out.S)

	assert.Error(t, json.Unmarshal([]byte(`{"s":"LOBBY"}`), &out))
}

func TestAdvanceNeverRegresses(t *testing.T) {
	s := NewSession("CA1", time.Now())
	s.Advance(StateName)
	s.Advance(StateExtras)
	assert.Equal(t, StateName, s.State)
	s.Advance(StateSummary)
	assert.Equal(t, StateSummary, s.State)
}

func TestAddExtraIsASet(t *testing.T) {
	l := OrderLine{Item: "family pizza"}
	l.AddExtra("mushrooms")
	l.AddExtra("mushrooms")
	l.AddExtra("onion")
	assert.Equal(t, []string{"mushrooms", "onion"}, l.Extras)
}

func TestFirstUnresolved(t *testing.T) {
	s := NewSession("CA1", time.Now())
	assert.Equal(t, -1, s.FirstUnresolved())

	s.Lines = []OrderLine{
		{Item: "cola", ExtrasResolved: true},
		{Item: "family pizza"},
	}
	assert.Equal(t, 1, s.FirstUnresolved())
}

func TestAppendHistoryCaps(t *testing.T) {
	s := NewSession("CA1", time.Now())
	for _, text := range []string{"a", "b", "", "c", "d"} {
		s.AppendHistory(RoleCaller, text, 3)
	}
	require.Len(t, s.History, 3)
	assert.Equal(t, "b", s.History[0].Text)
	assert.Equal(t, "d", s.History[2].Text)
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSession("CA1", time.Now())
	s.Lines = []OrderLine{{Item: "family pizza", Extras: []string{"mushrooms"}}}
	s.Pending = &Clarification{LineIndex: 0, Keyword: "olives", Options: []string{"olives-green", "olives-black"}}
	s.AppendHistory(RoleCaller, "hi", 10)

	cp := s.Clone()
	if diff := cmp.Diff(s, cp); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	cp.Lines[0].Extras[0] = "onion"
	cp.Lines = append(cp.Lines, OrderLine{Item: "cola"})
	cp.Pending.Options[0] = "x"
	cp.History[0].Text = "changed"

	assert.Equal(t, "mushrooms", s.Lines[0].Extras[0])
	assert.Len(t, s.Lines, 1)
	assert.Equal(t, "olives-green", s.Pending.Options[0])
	assert.Equal(t, "hi", s.History[0].Text)
}

func TestClarificationCovers(t *testing.T) {
	tests := []struct {
		name string
		c    Clarification
		n    int
		want []int
	}{
		{"single line", Clarification{LineIndex: 1}, 3, []int{1}},
		{"span", Clarification{LineIndex: 1, LineCount: 2}, 4, []int{1, 2}},
		{"clipped to lines", Clarification{LineIndex: 1, LineCount: 5}, 3, []int{1, 2}},
		{"out of range", Clarification{LineIndex: 3}, 3, nil},
		{"negative", Clarification{LineIndex: -1}, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Covers(tt.n))
		})
	}
}
