package policy

// Phrases holds the caller-facing wording. Fields containing %s are format
// strings; the comment on each names its arguments.
type Phrases struct {
	Greeting string // store name
	AskMode  string
	AskOrder string

	AskExtras      string // item label, extras list
	AskExtrasMore  string // appended when the preview was cut short
	ClarifyGeneric string // keyword, options list
	// Clarify maps a folded ambiguity keyword to a fixed question.
	Clarify map[string]string

	AskName    string
	AskPhone   string
	AskAddress string

	SummaryIntro    string
	SummaryPickup   string // customer name
	SummaryDelivery string // customer name, address
	SummaryTotal    string // total
	SummaryConfirm  string

	Farewell string // customer name
	Amend    string

	Or       string
	Ordinals []string
	WithWord string
}

// DefaultPhrases is the English wording used unless configuration supplies
// another set.
func DefaultPhrases() Phrases {
	return Phrases{
		Greeting: "Hello and welcome to %s!",
		AskMode:  "Would you like delivery or pickup?",
		AskOrder: "What would you like to order?",

		AskExtras:      "Would you like any extras on the %s? We have %s.",
		AskExtrasMore:  "and more",
		ClarifyGeneric: "Which %s would you like: %s?",
		Clarify: map[string]string{
			"olives":    "Would you like green olives or black olives?",
			"mushrooms": "Would you like fresh mushrooms or regular mushrooms?",
		},

		AskName:    "May I have your name, please?",
		AskPhone:   "What is your phone number?",
		AskAddress: "What is the delivery address?",

		SummaryIntro:    "Here is your order:",
		SummaryPickup:   "Pickup for %s.",
		SummaryDelivery: "Delivery for %s to %s.",
		SummaryTotal:    "The total is %s.",
		SummaryConfirm:  "Shall I place the order?",

		Farewell: "Thank you %s, your order has been placed. Goodbye!",
		Amend:    "No problem. What would you like to add or change?",

		Or:       "or",
		Ordinals: []string{"first", "second", "third", "fourth", "fifth", "sixth", "seventh", "eighth", "ninth", "tenth"},
		WithWord: "with",
	}
}
