// Package tts turns guide replies into audio.
//
// A Provider returns a complete encoded clip (MP3 for OpenAI). Playback is a
// separate concern handled by speech.VoiceSpeaker.
//
//	provider, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithVoice(tts.VoiceNova),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Here we are!")
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to a complete audio clip.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult is a synthesized clip.
type AudioResult struct {
	Audio     []byte
	Encoding  Encoding
	CharCount int
	LatencyMs int64
}

// Encoding is an audio container/codec as accepted by the speech API.
type Encoding string

const (
	EncodingMP3  Encoding = "mp3"
	EncodingWAV  Encoding = "wav"
	EncodingOpus Encoding = "opus"
	EncodingAAC  Encoding = "aac"
	EncodingFLAC Encoding = "flac"
)

// Extension returns the file extension for the encoding, including the dot.
func (e Encoding) Extension() string {
	if e == "" {
		return ".mp3"
	}
	return "." + string(e)
}

// EstimateDuration guesses playback length from character count
// (roughly 15 characters per second of speech).
func EstimateDuration(chars int, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	secs := float64(chars) / 15.0 / speed
	return time.Duration(secs * float64(time.Second))
}
