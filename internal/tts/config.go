package tts

import "time"

// DefaultVoice is the Edge neural voice used when none is selected.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-JennyNeural"

// DefaultOutputFormat is the audio format requested from the service.
// The site player expects MP3.
const DefaultOutputFormat = "audio-24khz-48kbitrate-mono-mp3"

// DefaultTimeout bounds a single synthesis round trip.
const DefaultTimeout = 30 * time.Second

// EnvVoice overrides the default voice when the --voice flag is not given.
const EnvVoice = "ASKALOUD_VOICE"
