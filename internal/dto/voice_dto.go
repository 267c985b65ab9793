package dto

// VoiceWebhookRequest is the subset of Twilio's voice webhook form we read.
type VoiceWebhookRequest struct {
	CallSid      string `form:"CallSid" validate:"required"`
	From         string `form:"From"`
	SpeechResult string `form:"SpeechResult"`
	Confidence   string `form:"Confidence"`
}

// CallStatusRequest is Twilio's status callback form.
type CallStatusRequest struct {
	CallSid    string `form:"CallSid" validate:"required"`
	CallStatus string `form:"CallStatus" validate:"required"`
}
