package nlu

import "phone-order-be/pkg/utils"

const (
	ConfirmYes = "yes"
	ConfirmNo  = "no"
)

var yesTokens = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "correct": true,
	"right": true, "ok": true, "okay": true, "confirm": true, "כן": true,
	"נכון": true, "בסדר": true, "מאשר": true, "מאשרת": true,
}

var noTokens = map[string]bool{
	"no": true, "nope": true, "wrong": true, "wait": true, "change": true,
	"לא": true, "רגע": true,
}

// DetectConfirmation is the keyword reading of a reply to the order summary.
// A "no" anywhere wins over a "yes".
func DetectConfirmation(text string) string {
	yes := false
	for _, tok := range utils.Tokens(text) {
		if noTokens[tok] {
			return ConfirmNo
		}
		if yesTokens[tok] {
			yes = true
		}
	}
	if yes {
		return ConfirmYes
	}
	return ""
}
