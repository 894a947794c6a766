// Package webui serves the embedded single-page map client and the
// about page. The map page is rendered from a compiled-in template
// with the configured view, so the binary needs no asset directory.
package webui

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/terramesa/uplinkmap/internal/config"
)

//go:embed about.md
var aboutMD []byte

// UI renders the map page and the about page.
type UI struct {
	page  *template.Template
	data  pageData
	about []byte
}

// pageData feeds the map page template.
type pageData struct {
	Title           string
	CenterLat       float64
	CenterLng       float64
	Zoom            int
	TileURL         string
	TileAttribution string
	TileMaxZoom     int
}

// New prepares the UI for the given configuration. The about markdown
// is rendered once here.
func New(cfg *config.Config) (*UI, error) {
	page, err := template.New("map").Parse(mapTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing map template: %w", err)
	}

	about, err := renderAbout()
	if err != nil {
		return nil, err
	}

	tiles := cfg.TileSource()
	return &UI{
		page: page,
		data: pageData{
			Title:           "uplinkmap",
			CenterLat:       cfg.MapCenterLat,
			CenterLng:       cfg.MapCenterLng,
			Zoom:            cfg.MapZoom,
			TileURL:         tiles.URL,
			TileAttribution: tiles.Attribution,
			TileMaxZoom:     tiles.MaxZoom,
		},
		about: about,
	}, nil
}

// RegisterRoutes mounts the UI pages onto the given router.
func (u *UI) RegisterRoutes(r chi.Router) {
	r.Get("/", u.ServeIndex)
	r.Get("/about", u.ServeAbout)
}

// ServeIndex serves the map page.
func (u *UI) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := u.page.Execute(w, u.data); err != nil {
		log.Printf("webui: rendering map page: %v", err)
	}
}

// ServeAbout serves the rendered about page.
func (u *UI) ServeAbout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(u.about)
}

// renderAbout converts the embedded markdown into a full HTML page.
func renderAbout() ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)

	var body bytes.Buffer
	if err := md.Convert(aboutMD, &body); err != nil {
		return nil, fmt.Errorf("converting about markdown: %w", err)
	}

	tmpl, err := template.New("about").Parse(aboutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing about template: %w", err)
	}

	var page bytes.Buffer
	err = tmpl.Execute(&page, struct {
		Title   string
		Content template.HTML
	}{
		Title:   "About uplinkmap",
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering about page: %w", err)
	}
	return page.Bytes(), nil
}
