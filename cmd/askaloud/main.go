// Askaloud builds a static, narrated questionnaire site: one MP3 clip per
// question (Microsoft Edge neural TTS), a keyboard-driven player page per
// questionnaire, an aggregate index page, and a local server for the result.
//
// Usage:
//
//	askaloud items.txt                        build one questionnaire, then serve
//	askaloud -build-all                       build every questionnaires/*.txt, then serve
//	askaloud -serve-only                      just re-serve the existing site
//	askaloud -force -voice en-US-GuyNeural items.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/selimbr/askaloud/internal/display"
	"github.com/selimbr/askaloud/internal/logger"
	"github.com/selimbr/askaloud/internal/preview"
	"github.com/selimbr/askaloud/internal/questionnaire"
	"github.com/selimbr/askaloud/internal/server"
	"github.com/selimbr/askaloud/internal/site"
	"github.com/selimbr/askaloud/internal/tts"
)

func main() {
	_ = godotenv.Load()

	buildAll := flag.Bool("build-all", false, "build every questionnaire in the questionnaires directory")
	serveOnly := flag.Bool("serve-only", false, "skip building and just serve the existing site")
	force := flag.Bool("force", false, "re-synthesize audio even if clips already exist")
	voice := flag.String("voice", tts.DefaultVoice, "Edge neural voice name")
	port := flag.Int("port", server.DefaultPort, "port for the local site server")
	outDir := flag.String("out", "tts_site", "site output directory")
	qDir := flag.String("questionnaires-dir", "questionnaires", "directory scanned by -build-all")
	noServe := flag.Bool("no-serve", false, "exit after building instead of serving the site")
	doPreview := flag.Bool("preview", false, "play the first clip of the last built questionnaire")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".askaloud/askaloud.log", "file to write logs to (use \"stderr\" to log to console)")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the terminal stays readable.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Third-party libs log through the default logger; keep that off the
	// terminal too.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// The env var only applies when the flag was left at its default.
	if *voice == tts.DefaultVoice {
		if v := os.Getenv(tts.EnvVoice); v != "" {
			*voice = v
		}
	}

	fmt.Println(display.RenderBanner())

	ctx := context.Background()
	synth := tts.NewClient(log, tts.WithVoice(*voice))
	builder := site.NewBuilder(synth, *outDir, log,
		site.WithForce(*force),
		site.WithProgress(display.Item),
	)

	var lastBuilt *site.Result

	switch {
	case *serveOnly:
		// Nothing to build.

	case *buildAll:
		qs, err := questionnaire.LoadDir(*qDir, log)
		if err != nil {
			fatalf(log, "%v", err)
		}
		for _, q := range qs {
			lastBuilt = build(ctx, builder, q, log)
		}
		writeIndex(builder, log)
		display.Hint("built %d questionnaire(s) into %s", len(qs), *outDir)

	default:
		var q *questionnaire.Questionnaire
		if flag.NArg() > 0 {
			var err error
			q, err = questionnaire.Load(flag.Arg(0))
			if err != nil {
				fatalf(log, "%v", err)
			}
		} else {
			display.Hint("no input file given — building the demo questionnaire")
			q = questionnaire.Demo()
		}
		lastBuilt = build(ctx, builder, q, log)
		writeIndex(builder, log)
	}

	if *doPreview {
		playPreview(lastBuilt, log)
	}

	if *noServe {
		return
	}

	if _, err := os.Stat(filepath.Join(*outDir, "index.html")); err != nil {
		fatalf(log, "no site built yet at %s; run without -serve-only first", *outDir)
	}
	display.Hint("Serving on http://localhost:%d (Ctrl+C to stop)", *port)
	if err := server.ListenAndServe(*outDir, *port, log); err != nil {
		fatalf(log, "server: %v", err)
	}
}

// build renders one questionnaire and aborts the program on failure —
// a failed item is fatal for the build, there is no partial recovery.
func build(ctx context.Context, builder *site.Builder, q *questionnaire.Questionnaire, log *logger.Logger) *site.Result {
	display.Step("Building %s (%d questions, ~%s)",
		q.Title(), len(q.Questions), questionnaire.FormatDuration(q.EstimatedDuration()))

	res, err := builder.BuildQuestionnaire(ctx, q)
	if err != nil {
		fatalf(log, "building %s: %v", q.Name, err)
	}
	return res
}

func writeIndex(builder *site.Builder, log *logger.Logger) {
	if err := builder.WriteIndex(); err != nil {
		fatalf(log, "writing index page: %v", err)
	}
}

// playPreview plays the first clip of the build through the speakers.
// A preview failure is reported but doesn't abort; the site is already on
// disk at this point.
func playPreview(res *site.Result, log *logger.Logger) {
	if res == nil || len(res.AudioFiles) == 0 {
		display.Hint("nothing to preview")
		return
	}
	display.Hint("previewing %s", res.AudioFiles[0])
	if err := preview.NewPlayer(log).PlayFile(res.AudioFiles[0]); err != nil {
		log.Error("preview: %v", err)
		display.Urgent("preview failed: %v", err)
	}
}

func fatalf(log *logger.Logger, format string, args ...any) {
	log.Error(format, args...)
	display.Urgent(format, args...)
	os.Exit(1)
}
