// Package preview plays a generated MP3 clip through the system audio
// device, so the selected voice can be checked without opening the site.
package preview

import (
	"fmt"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/selimbr/askaloud/internal/logger"
)

// Player decodes and plays MP3 files via oto. The audio context is created
// on the first clip, using that clip's sample rate; oto allows only one
// context per process.
type Player struct {
	ctx *oto.Context
	log *logger.Logger
}

// NewPlayer creates an MP3 preview player.
func NewPlayer(log *logger.Logger) *Player {
	return &Player{log: log}
}

// PlayFile plays one MP3 file synchronously. Returns an error if the file
// cannot be read or decoded, or the audio device is unavailable.
func (p *Player) PlayFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening clip: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	if p.ctx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   dec.SampleRate(),
			ChannelCount: 2, // go-mp3 always decodes to stereo
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("audio device: %w", err)
		}
		<-ready
		p.ctx = ctx
		p.log.Debug("preview: audio context ready (rate=%d)", dec.SampleRate())
	}

	player := p.ctx.NewPlayer(dec)
	player.Play()
	p.log.Debug("preview: playing %s", path)

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}
