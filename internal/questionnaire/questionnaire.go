// Package questionnaire loads plain-text questionnaire files: one question
// per line, blank lines ignored. A questionnaire is identified by the stem
// of its source filename.
package questionnaire

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/selimbr/askaloud/internal/logger"
)

// SecondsPerQuestion is the fixed per-item estimate used when reporting a
// questionnaire's duration. Real clip lengths vary with the voice and the
// item text, so the site only ever shows an estimate.
const SecondsPerQuestion = 15

// Question is a single line of a questionnaire file.
type Question struct {
	Index int // 1-based position in the source file
	Text  string
}

// Questionnaire is an ordered set of questions read from one text file.
type Questionnaire struct {
	Name      string // source filename stem, used as the output directory name
	Path      string // source file path, empty for the built-in demo
	Questions []Question
}

// Load reads a questionnaire file. Lines are whitespace-trimmed and blank
// lines are dropped; everything else is taken verbatim, in file order.
func Load(path string) (*Questionnaire, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening questionnaire: %w", err)
	}
	defer f.Close()

	q := &Questionnaire{
		Name: stem(path),
		Path: path,
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		q.Questions = append(q.Questions, Question{
			Index: len(q.Questions) + 1,
			Text:  line,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(q.Questions) == 0 {
		return nil, fmt.Errorf("questionnaire %s has no questions", path)
	}
	return q, nil
}

// LoadDir loads every *.txt file in dir, sorted by filename. It is an error
// for the directory to be missing or to contain no questionnaire files.
func LoadDir(dir string, log *logger.Logger) ([]*Questionnaire, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(dir); statErr != nil {
		return nil, fmt.Errorf("questionnaire directory: %w", statErr)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no questionnaire files (*.txt) in %s", dir)
	}
	sort.Strings(paths)

	qs := make([]*Questionnaire, 0, len(paths))
	for _, p := range paths {
		q, err := Load(p)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded %s (%d questions)", p, len(q.Questions))
		qs = append(qs, q)
	}
	return qs, nil
}

// Demo returns the built-in sample questionnaire used when the tool is run
// without an input file.
func Demo() *Questionnaire {
	items := []string{
		"Please state your full name.",
		"On a scale from one to ten, how would you rate your current mood?",
		"Have you experienced any headaches in the past week?",
	}
	q := &Questionnaire{Name: "demo"}
	for i, text := range items {
		q.Questions = append(q.Questions, Question{Index: i + 1, Text: text})
	}
	return q
}

// Title returns a human-readable name: underscores become spaces and each
// word is capitalized, so "phq_9_screening" reads as "Phq 9 Screening".
func (q *Questionnaire) Title() string {
	return TitleFromName(q.Name)
}

// WordCount returns the total number of words across all questions.
func (q *Questionnaire) WordCount() int {
	n := 0
	for _, item := range q.Questions {
		n += len(strings.Fields(item.Text))
	}
	return n
}

// EstimatedDuration returns how long the narrated questionnaire is expected
// to take, at the fixed per-question estimate.
func (q *Questionnaire) EstimatedDuration() time.Duration {
	return time.Duration(len(q.Questions)*SecondsPerQuestion) * time.Second
}

// TitleFromName converts a filename stem into a display title.
func TitleFromName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// FormatDuration renders a duration as m:ss for the index page cards.
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// stem returns the filename without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
