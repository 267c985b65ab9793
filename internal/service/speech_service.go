package service

import (
	"context"
	"strings"

	"phone-order-be/internal/metrics"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/pkg/speech"
	"phone-order-be/pkg/twiml"
)

// AudioPath is where synthesized clips are served from.
const AudioPath = "/api/voice/audio/"

type ISpeechService interface {
	// Prompt voices text for the caller. Synthesis failures fall back to the
	// telephony provider's own voice.
	Prompt(ctx context.Context, text string) twiml.Prompt
	Clip(id string) ([]byte, bool)
}

type speechService struct {
	synth    speech.Synthesizer
	clips    *speech.AudioStore
	baseURL  string
	language string
	logger   logger.ILogger
}

// NewSpeechService returns a speech service. A nil synthesizer always uses
// the fallback voice.
func NewSpeechService(synth speech.Synthesizer, clips *speech.AudioStore, baseURL, language string, log logger.ILogger) ISpeechService {
	return &speechService{
		synth:    synth,
		clips:    clips,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		logger:   log,
	}
}

func (s *speechService) Prompt(ctx context.Context, text string) twiml.Prompt {
	p := twiml.Prompt{Text: text, Language: s.language}
	if s.synth == nil {
		return p
	}
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		metrics.SynthesisFailuresTotal.Inc()
		s.logger.Warn("SpeechService", "Synthesis failed, using fallback voice", map[string]interface{}{"error": err.Error()})
		return p
	}
	p.AudioURL = s.baseURL + AudioPath + s.clips.Put(audio)
	return p
}

func (s *speechService) Clip(id string) ([]byte, bool) {
	return s.clips.Get(id)
}
