// Package site turns questionnaires into a static, browsable website:
// one MP3 per question, one player page per questionnaire, and an index
// page listing everything that has been built.
//
// The generated files double as the synthesis cache: an MP3 whose name
// matches the question's derived filename is reused instead of calling the
// TTS service again. Filenames embed a hash of the voice and the text, so
// editing a question (or switching voices) changes the name and forces a
// fresh clip on the next build.
package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/selimbr/askaloud/internal/logger"
	"github.com/selimbr/askaloud/internal/questionnaire"
	"github.com/selimbr/askaloud/internal/tts"
)

// Progress is called once per question during a build, after the item's
// audio has been resolved. Used for terminal progress output.
type Progress func(index, total int, cached bool, text string)

// Option configures the Builder.
type Option func(*Builder)

// WithForce makes the builder re-synthesize audio even when the clip
// already exists on disk.
func WithForce(force bool) Option {
	return func(b *Builder) {
		b.force = force
	}
}

// WithProgress sets the per-item progress callback.
func WithProgress(fn Progress) Option {
	return func(b *Builder) {
		b.progress = fn
	}
}

// Builder renders questionnaires into outDir.
type Builder struct {
	synth    tts.Synthesizer
	outDir   string
	force    bool
	progress Progress
	log      *logger.Logger
}

// Result summarizes one questionnaire build.
type Result struct {
	Dir         string   // output directory for this questionnaire
	AudioFiles  []string // absolute clip paths, in question order
	Synthesized int      // clips freshly rendered this run
	Cached      int      // clips reused from a previous run
}

// NewBuilder creates a site builder writing to outDir.
func NewBuilder(synth tts.Synthesizer, outDir string, log *logger.Logger, opts ...Option) *Builder {
	b := &Builder{
		synth:  synth,
		outDir: outDir,
		log:    log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildQuestionnaire renders one questionnaire: synthesizes (or reuses)
// every clip, then writes the player page. Any synthesis or write failure
// aborts the build for this questionnaire.
func (b *Builder) BuildQuestionnaire(ctx context.Context, q *questionnaire.Questionnaire) (*Result, error) {
	dir := filepath.Join(b.outDir, q.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	res := &Result{Dir: dir}
	total := len(q.Questions)

	for _, item := range q.Questions {
		name := audioFileName(item.Index, b.synth.Voice(), item.Text)
		path := filepath.Join(dir, name)

		cached := false
		if !b.force {
			if _, err := os.Stat(path); err == nil {
				cached = true
			}
		}

		if cached {
			res.Cached++
			b.log.Debug("cached: %s/%s", q.Name, name)
		} else {
			audio, err := b.synth.Synthesize(ctx, item.Text)
			if err != nil {
				return nil, fmt.Errorf("synthesizing item %d of %s: %w", item.Index, q.Name, err)
			}
			if err := os.WriteFile(path, audio, 0o644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", path, err)
			}
			res.Synthesized++
			b.log.Debug("synthesized: %s/%s (%d bytes)", q.Name, name, len(audio))
		}

		res.AudioFiles = append(res.AudioFiles, path)
		if b.progress != nil {
			b.progress(item.Index, total, cached, item.Text)
		}
	}

	if err := writePlayerPage(dir, q, res.AudioFiles); err != nil {
		return nil, err
	}
	if err := writeMeta(dir, q); err != nil {
		return nil, err
	}

	b.log.Info("built %s: %d questions (%d synthesized, %d cached)",
		q.Name, total, res.Synthesized, res.Cached)
	return res, nil
}

// WriteIndex scans the output directory and writes the aggregate index
// page. Only subdirectories that contain a built player page are listed,
// so the index always matches what is actually present on disk.
func (b *Builder) WriteIndex() error {
	entries, err := os.ReadDir(b.outDir)
	if err != nil {
		return fmt.Errorf("scanning site directory: %w", err)
	}

	var cards []indexCard
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(b.outDir, e.Name())
		if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
			continue
		}

		// Question and word counts come from the metadata written at
		// build time. Sites built before metadata existed fall back to
		// counting clips; their cards just omit the word count.
		m, ok := readMeta(dir)
		if !ok {
			n, err := countQuestions(dir)
			if err != nil {
				return err
			}
			m = siteMeta{Questions: n}
		}
		cards = append(cards, indexCard{
			Link:      e.Name() + "/index.html",
			Title:     questionnaire.TitleFromName(e.Name()),
			Questions: m.Questions,
			Words:     m.Words,
			Duration:  questionnaire.FormatDuration(estimatedDuration(m.Questions)),
		})
	}

	if err := writeIndexPage(b.outDir, cards); err != nil {
		return err
	}
	b.log.Info("index page lists %d questionnaire(s)", len(cards))
	return nil
}

// countQuestions counts the questions in a built directory by the distinct
// index prefixes of its clips. Clips left behind by an earlier voice (the
// hash part of their name no longer matches) share a prefix with their
// replacement and are not double counted.
func countQuestions(dir string) (int, error) {
	clips, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(clips))
	for _, clip := range clips {
		base := filepath.Base(clip)
		if idx, _, ok := strings.Cut(base, "-"); ok {
			seen[idx] = struct{}{}
		}
	}
	return len(seen), nil
}

// audioFileName derives a question's clip filename. The index keeps the
// directory listing in question order; the hash ties the name to the voice
// and the exact text, which is what makes "file exists" a safe cache check.
func audioFileName(index int, voice, text string) string {
	sum := sha256.Sum256([]byte(voice + ":" + text))
	return fmt.Sprintf("%04d-%s.mp3", index, hex.EncodeToString(sum[:4]))
}

// estimatedDuration converts a clip count into the fixed per-item estimate
// shown on the index cards.
func estimatedDuration(questions int) time.Duration {
	return time.Duration(questions*questionnaire.SecondsPerQuestion) * time.Second
}
