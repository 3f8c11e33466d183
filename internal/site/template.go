package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/selimbr/askaloud/internal/questionnaire"
)

// playerItem is one entry of the JSON array embedded in a player page.
type playerItem struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type playerPage struct {
	Title string
	Count int
	Items template.JS
}

type indexCard struct {
	Link      string
	Title     string
	Questions int
	Words     int // 0 when unknown (site predates metadata)
	Duration  string
}

// siteMeta is the per-questionnaire metadata written next to the player
// page. The index is rebuilt by rescanning the output directory, and word
// counts are only known at build time, so they are persisted here.
type siteMeta struct {
	Questions int `json:"questions"`
	Words     int `json:"words"`
}

const metaFile = "meta.json"

// writeMeta records a questionnaire's counts for later index rebuilds.
func writeMeta(dir string, q *questionnaire.Questionnaire) error {
	m := siteMeta{
		Questions: len(q.Questions),
		Words:     q.WordCount(),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	path := filepath.Join(dir, metaFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readMeta loads a questionnaire's metadata. Missing or unreadable
// metadata is not an error; the caller falls back to counting clips.
func readMeta(dir string) (siteMeta, bool) {
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return siteMeta{}, false
	}
	var m siteMeta
	if err := json.Unmarshal(data, &m); err != nil || m.Questions <= 0 {
		return siteMeta{}, false
	}
	return m, true
}

type indexPage struct {
	Cards []indexCard
}

var (
	playerTmpl = template.Must(template.New("player").Parse(playerHTML))
	indexTmpl  = template.Must(template.New("index").Parse(indexHTML))
)

// writePlayerPage renders a questionnaire's player page into dir. The audio
// paths must be in question order; only their base names end up in the page
// since clips live next to it.
func writePlayerPage(dir string, q *questionnaire.Questionnaire, audioFiles []string) error {
	items := make([]playerItem, len(q.Questions))
	for i, item := range q.Questions {
		items[i] = playerItem{
			Text:  item.Text,
			Audio: filepath.Base(audioFiles[i]),
		}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	path := filepath.Join(dir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	data := playerPage{
		Title: q.Title(),
		Count: len(items),
		Items: template.JS(itemsJSON),
	}
	if err := playerTmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering player page: %w", err)
	}
	return nil
}

// writeIndexPage renders the aggregate index page at the site root.
func writeIndexPage(outDir string, cards []indexCard) error {
	path := filepath.Join(outDir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := indexTmpl.Execute(f, indexPage{Cards: cards}); err != nil {
		return fmt.Errorf("rendering index page: %w", err)
	}
	return nil
}

const playerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>
    :root { color-scheme: light dark; }
    body { font-family: system-ui, sans-serif; display:flex; flex-direction:column; align-items:center; justify-content:center; height:100vh; margin:0; }
    #controls { display:flex; gap:2rem; margin-top:2rem; }
    button { font-size:2rem; padding:0.5rem 1rem; border:none; background:#222; color:#fff; border-radius:0.5rem; cursor:pointer; }
    button:disabled { opacity:0.4; cursor:auto; }
    #current { font-size:1.5rem; margin:1rem auto; max-width:80%; text-align:center; line-height:1.4; }
    #item-number { font-size:1rem; color:#888; margin-bottom:1rem; }
    #back { position:fixed; top:1rem; left:1rem; font-size:0.9rem; color:#888; text-decoration:none; }
  </style>
</head>
<body>
  <a id="back" href="../index.html">&larr; all questionnaires</a>
  <h1>{{.Title}}</h1>
  <div id="item-number">{{.Count}} items</div>
  <div id="current"></div>
  <div id="controls">
    <button id="prev">&#11013;</button>
    <button id="replay">&#128257;</button>
    <button id="next">&#10145;</button>
  </div>
  <script>
    const items = {{.Items}};
    let idx = 0;
    let isPlaying = false;
    const audio = new Audio();
    const currentDiv = document.getElementById('current');
    const itemNumberDiv = document.getElementById('item-number');
    const prevBtn = document.getElementById('prev');
    const nextBtn = document.getElementById('next');
    const replayBtn = document.getElementById('replay');

    function updateButtons(){
        prevBtn.disabled = idx === 0 || isPlaying;
        nextBtn.disabled = idx === items.length-1 || isPlaying;
    }
    function playItem(){
        itemNumberDiv.textContent = 'Item ' + (idx + 1) + ' of ' + items.length;
        currentDiv.textContent = items[idx].text;
        audio.src = items[idx].audio;
        updateButtons();
        audio.play();
    }
    prevBtn.addEventListener('click', ()=>{ if(idx>0 && !isPlaying){ idx--; playItem(); }});
    nextBtn.addEventListener('click', ()=>{ if(idx<items.length-1 && !isPlaying){ idx++; playItem(); }});
    replayBtn.addEventListener('click', ()=>{ if(!isPlaying){ audio.currentTime = 0; audio.play(); }});

    audio.addEventListener('play', () => { isPlaying = true; updateButtons(); });
    audio.addEventListener('ended', () => { isPlaying = false; updateButtons(); });
    audio.addEventListener('pause', () => { isPlaying = false; updateButtons(); });
    audio.addEventListener('error', () => {
        isPlaying = false;
        updateButtons();
        console.error('Audio failed to load');
    });

    document.addEventListener('keydown', e => {
      switch(e.key){
        case 'ArrowLeft':
          e.preventDefault(); if(!isPlaying) prevBtn.click(); break;
        case 'ArrowRight':
          e.preventDefault(); if(!isPlaying) nextBtn.click(); break;
        case ' ':
        case 'r':
        case 'R':
          e.preventDefault(); if(!isPlaying) replayBtn.click(); break;
      }
    });

    window.onload = playItem;
  </script>
</body>
</html>
`

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Questionnaires</title>
  <style>
    :root { color-scheme: light dark; }
    body { font-family: system-ui, sans-serif; max-width:48rem; margin:0 auto; padding:2rem; }
    h1 { text-align:center; }
    .card { display:block; border:1px solid #4444; border-radius:0.75rem; padding:1rem 1.5rem; margin:1rem 0; text-decoration:none; color:inherit; }
    .card:hover { border-color:#888; }
    .card .title { font-size:1.25rem; font-weight:600; }
    .card .stats { color:#888; margin-top:0.25rem; }
    .empty { text-align:center; color:#888; margin-top:3rem; }
  </style>
</head>
<body>
  <h1>Questionnaires</h1>
{{- if .Cards}}
{{- range .Cards}}
  <a class="card" href="{{.Link}}">
    <div class="title">{{.Title}}</div>
    <div class="stats">{{.Questions}} questions{{if .Words}} &bull; {{.Words}} words{{end}} &bull; estimated duration {{.Duration}}</div>
  </a>
{{- end}}
{{- else}}
  <p class="empty">Nothing built yet.</p>
{{- end}}
</body>
</html>
`
