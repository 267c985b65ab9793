package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKitchenMessage(t *testing.T) {
	m := buildKitchenMessage("orders@pizza.test", "Phone Orders", "kitchen@pizza.test", KitchenOrder{
		OrderID:  "a1b2",
		Mode:     "delivery",
		Customer: "Dana",
		Phone:    "0501234567",
		Address:  "12 Herzl St <back door>",
		Lines:    []string{"family pizza with mushrooms - 52.00", "cola - 9.00"},
		Total:    "61.00",
	})

	assert.Equal(t, []string{"kitchen@pizza.test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"New delivery order for Dana (61.00)"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "DELIVERY")
	assert.Contains(t, raw, "12 Herzl St &lt;back door&gt;")
	assert.Contains(t, raw, "family pizza with mushrooms - 52.00")
}
