// Package twiml renders the subset of Twilio's voice markup the ordering
// line speaks.
package twiml

import (
	"encoding/xml"
)

const ContentType = "application/xml"

// Response is the <Response> root.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Language      string   `xml:"language,attr,omitempty"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Verbs         []any
}

type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Prompt is what the caller hears: a hosted clip when one was synthesized,
// otherwise Twilio's own text-to-speech.
type Prompt struct {
	AudioURL string
	Text     string
	Language string
}

func (p Prompt) verb() any {
	if p.AudioURL != "" {
		return Play{URL: p.AudioURL}
	}
	return Say{Language: p.Language, Text: p.Text}
}

// Listen speaks the prompt inside a speech Gather that posts back to action.
// When the caller stays silent the call is redirected to action again.
func Listen(p Prompt, action string) Response {
	return Response{Verbs: []any{
		Gather{
			Input:         "speech",
			Action:        action,
			Method:        "POST",
			Language:      p.Language,
			SpeechTimeout: "auto",
			Verbs:         []any{p.verb()},
		},
		Redirect{Method: "POST", URL: action},
	}}
}

// Goodbye speaks the prompt and ends the call.
func Goodbye(p Prompt) Response {
	return Response{Verbs: []any{p.verb(), Hangup{}}}
}

// Marshal renders the document with the XML header.
func (r Response) Marshal() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
