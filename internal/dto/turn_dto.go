package dto

type TurnRequest struct {
	CallID    string `json:"call_id" validate:"required,max=128"`
	Utterance string `json:"utterance" validate:"max=2000"`
	// DeliveryKey identifies one delivery of the utterance. Redeliveries carry
	// the same key. Optional.
	DeliveryKey string `json:"delivery_key" validate:"max=256"`
	// TextReplay treats a repeat of the previous utterance inside the replay
	// window as a redelivery when no DeliveryKey is given. Set by transports
	// whose retries resend the same text; JSON clients send DeliveryKey.
	TextReplay bool `json:"-"`
}

type TurnResponse struct {
	Reply             string `json:"reply"`
	ContinueListening bool   `json:"continue_listening"`
	Discardable       bool   `json:"discardable"`
	State             string `json:"state"`
}
