package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/selimbr/askaloud/internal/logger"
	"github.com/selimbr/askaloud/internal/questionnaire"
)

// fakeSynth returns canned bytes and counts calls, so tests can assert the
// cache behaviour without touching the network.
type fakeSynth struct {
	voice string
	calls int
	fail  bool
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, os.ErrDeadlineExceeded
	}
	return []byte("mp3:" + text), nil
}

func (f *fakeSynth) Voice() string { return f.voice }

func newQuestionnaire(name string, texts ...string) *questionnaire.Questionnaire {
	q := &questionnaire.Questionnaire{Name: name}
	for i, t := range texts {
		q.Questions = append(q.Questions, questionnaire.Question{Index: i + 1, Text: t})
	}
	return q
}

func setupBuilder(t *testing.T, opts ...Option) (*Builder, *fakeSynth, string) {
	t.Helper()
	out := t.TempDir()
	synth := &fakeSynth{voice: "en-US-JennyNeural"}
	log := logger.New(logger.LevelOff, nil)
	return NewBuilder(synth, out, log, opts...), synth, out
}

func TestBuildThreeItems(t *testing.T) {
	b, synth, out := setupBuilder(t)
	q := newQuestionnaire("mood_check",
		"How are you feeling today?",
		"Did you sleep well?",
		"Any pain?",
	)

	res, err := b.BuildQuestionnaire(context.Background(), q)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if synth.calls != 3 {
		t.Fatalf("expected 3 synthesis calls, got %d", synth.calls)
	}
	if res.Synthesized != 3 || res.Cached != 0 {
		t.Fatalf("expected 3 synthesized / 0 cached, got %d/%d", res.Synthesized, res.Cached)
	}

	clips, err := filepath.Glob(filepath.Join(out, "mood_check", "*.mp3"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("expected 3 audio files, got %d", len(clips))
	}

	// The player page must reference every item, in source order.
	page, err := os.ReadFile(filepath.Join(out, "mood_check", "index.html"))
	if err != nil {
		t.Fatalf("reading player page: %v", err)
	}
	html := string(page)
	last := -1
	for i, item := range q.Questions {
		pos := strings.Index(html, item.Text)
		if pos < 0 {
			t.Fatalf("player page missing item %d: %q", i+1, item.Text)
		}
		if pos < last {
			t.Fatalf("item %d appears out of order", i+1)
		}
		last = pos
		if !strings.Contains(html, filepath.Base(res.AudioFiles[i])) {
			t.Fatalf("player page missing audio reference for item %d", i+1)
		}
	}
}

func TestBuildSkipsCached(t *testing.T) {
	b, synth, _ := setupBuilder(t)
	q := newQuestionnaire("daily", "one", "two", "three")
	ctx := context.Background()

	if _, err := b.BuildQuestionnaire(ctx, q); err != nil {
		t.Fatalf("first build: %v", err)
	}
	synth.calls = 0

	res, err := b.BuildQuestionnaire(ctx, q)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if synth.calls != 0 {
		t.Fatalf("expected 0 synthesis calls on rebuild, got %d", synth.calls)
	}
	if res.Cached != 3 || res.Synthesized != 0 {
		t.Fatalf("expected 3 cached / 0 synthesized, got %d/%d", res.Cached, res.Synthesized)
	}
}

func TestForceRebuilds(t *testing.T) {
	out := t.TempDir()
	log := logger.New(logger.LevelOff, nil)
	synth := &fakeSynth{voice: "en-US-JennyNeural"}
	q := newQuestionnaire("daily", "one", "two", "three")
	ctx := context.Background()

	if _, err := NewBuilder(synth, out, log).BuildQuestionnaire(ctx, q); err != nil {
		t.Fatalf("first build: %v", err)
	}
	synth.calls = 0

	forced := NewBuilder(synth, out, log, WithForce(true))
	res, err := forced.BuildQuestionnaire(ctx, q)
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if synth.calls != 3 {
		t.Fatalf("expected 3 synthesis calls with force, got %d", synth.calls)
	}
	if res.Synthesized != 3 {
		t.Fatalf("expected 3 synthesized with force, got %d", res.Synthesized)
	}
}

func TestBuildSynthesisFailureIsFatal(t *testing.T) {
	b, synth, _ := setupBuilder(t)
	synth.fail = true
	q := newQuestionnaire("daily", "one")

	if _, err := b.BuildQuestionnaire(context.Background(), q); err == nil {
		t.Fatal("expected synthesis failure to abort the build")
	}
}

func TestWriteIndexListsBuiltQuestionnaires(t *testing.T) {
	b, _, out := setupBuilder(t)
	ctx := context.Background()

	if _, err := b.BuildQuestionnaire(ctx, newQuestionnaire("mood_check", "a", "b")); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := b.BuildQuestionnaire(ctx, newQuestionnaire("sleep_diary", "c")); err != nil {
		t.Fatalf("build: %v", err)
	}

	// Directories without a player page must not be listed.
	if err := os.MkdirAll(filepath.Join(out, "leftover"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Stray files at the site root are ignored too.
	if err := os.WriteFile(filepath.Join(out, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := b.WriteIndex(); err != nil {
		t.Fatalf("write index: %v", err)
	}

	page, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	html := string(page)

	for _, want := range []string{"Mood Check", "Sleep Diary", "mood_check/index.html", "sleep_diary/index.html"} {
		if !strings.Contains(html, want) {
			t.Fatalf("index page missing %q", want)
		}
	}
	if strings.Contains(html, "leftover") {
		t.Fatal("index page lists a directory that was never built")
	}
	if !strings.Contains(html, "2 questions") {
		t.Fatal("index page missing question count for mood_check")
	}
	// 2 questions at 15s each.
	if !strings.Contains(html, "0:30") {
		t.Fatal("index page missing estimated duration")
	}
}

func TestWriteIndexShowsWordCount(t *testing.T) {
	b, _, out := setupBuilder(t)
	ctx := context.Background()

	q := newQuestionnaire("mood_check",
		"How are you feeling today?",
		"Any pain?",
	)
	if _, err := b.BuildQuestionnaire(ctx, q); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := b.WriteIndex(); err != nil {
		t.Fatalf("write index: %v", err)
	}

	page, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	// 5 + 2 words across the two questions.
	if !strings.Contains(string(page), "7 words") {
		t.Fatalf("index card missing word count:\n%s", page)
	}
}

func TestWriteIndexWithoutMetadata(t *testing.T) {
	b, _, out := setupBuilder(t)
	ctx := context.Background()

	if _, err := b.BuildQuestionnaire(ctx, newQuestionnaire("daily", "one two", "three")); err != nil {
		t.Fatalf("build: %v", err)
	}
	// Simulate a site built before metadata existed.
	if err := os.Remove(filepath.Join(out, "daily", metaFile)); err != nil {
		t.Fatalf("remove meta: %v", err)
	}

	if err := b.WriteIndex(); err != nil {
		t.Fatalf("write index: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	html := string(page)

	// Question count falls back to counting clips; the word count is
	// unknown, so the card omits it.
	if !strings.Contains(html, "2 questions") {
		t.Fatal("index card missing clip-derived question count")
	}
	if strings.Contains(html, "words") {
		t.Fatal("index card shows a word count it cannot know")
	}
}

func TestWriteIndexEmptySite(t *testing.T) {
	b, _, out := setupBuilder(t)
	if err := b.WriteIndex(); err != nil {
		t.Fatalf("write index: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	if !strings.Contains(string(page), "Nothing built yet") {
		t.Fatal("empty index page missing placeholder")
	}
}

func TestAudioFileName(t *testing.T) {
	a := audioFileName(1, "en-US-JennyNeural", "hello")
	b := audioFileName(1, "en-US-JennyNeural", "hello")
	if a != b {
		t.Fatalf("filename not stable: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "0001-") || !strings.HasSuffix(a, ".mp3") {
		t.Fatalf("unexpected filename shape: %s", a)
	}

	if audioFileName(1, "en-US-JennyNeural", "hello there") == a {
		t.Fatal("filename should change when text changes")
	}
	if audioFileName(1, "en-US-GuyNeural", "hello") == a {
		t.Fatal("filename should change when voice changes")
	}
	if audioFileName(2, "en-US-JennyNeural", "hello") == a {
		t.Fatal("filename should change when index changes")
	}
}

func TestCountQuestionsIgnoresStaleClips(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"0001-aaaaaaaa.mp3",
		"0001-bbbbbbbb.mp3", // same question, earlier voice
		"0002-cccccccc.mp3",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	n, err := countQuestions(dir)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 questions, got %d", n)
	}
}

func TestProgressCallback(t *testing.T) {
	var seen []int
	b, _, _ := setupBuilder(t, WithProgress(func(index, total int, cached bool, text string) {
		if total != 2 {
			t.Fatalf("expected total 2, got %d", total)
		}
		seen = append(seen, index)
	}))

	if _, err := b.BuildQuestionnaire(context.Background(), newQuestionnaire("daily", "one", "two")); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("unexpected progress sequence: %v", seen)
	}
}
