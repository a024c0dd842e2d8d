package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hpungsan/splg/internal/chart"
	"github.com/hpungsan/splg/internal/config"
	"github.com/hpungsan/splg/internal/errors"
	"github.com/hpungsan/splg/internal/ops"
	"github.com/hpungsan/splg/internal/palette"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	cfg      *config.Config
	renderer *Renderer
	session  *ops.Session
}

// HandleIndex handles GET / — the generator page with the current result.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	result := h.session.Current()
	h.renderer.renderPage(w, r, "index", h.indexData(inputFor(result, h.cfg), result))
}

// HandleGenerate handles POST /sets — validate, enumerate and replace the current result.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	input := r.FormValue("input")

	result, err := ops.Generate(h.cfg, ops.GenerateInput{Input: input})
	if err != nil {
		// A rejected input leaves the previous result in place.
		if errors.IsValidation(err) && !wantsJSON(r) && r.Header.Get("HX-Request") != "true" {
			data := h.indexData(input, h.session.Current())
			data.Error = asSplgError(err)
			h.renderer.renderPageStatus(w, r, data.Error.Status, "index", data)
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}

	h.session.Replace(result)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.renderer.renderPage(w, r, "index", h.indexData(input, result))
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleClear handles POST /sets/clear — drop the current result.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"cleared": true})
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.renderer.renderPage(w, r, "index", h.indexData(h.cfg.DefaultInput, nil))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleColors handles GET /sets/colors.css — one rule per set of the current result.
func (h *Handlers) HandleColors(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	result := h.session.Current()
	if result == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	var b strings.Builder
	for _, s := range result.Sets {
		if _, _, _, err := palette.ParseHex(s.Color); err != nil {
			continue
		}
		fmt.Fprintf(&b, ".set-%d { color: %s; }\n", s.Index, s.Color)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

// HandleChart handles GET /chart — the size graph of the current result.
// ?format=jpeg or ?format=pdf switches the encoding; ?download=1 serves it as an attachment.
func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	format, err := chart.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := ops.Chart(h.cfg, ops.ChartInput{Result: h.session.Current(), Format: format})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	if parseBoolParam(r, "download") {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sets.%s"`, out.Format.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// HandleSaveChart handles POST /chart/save — write the graph to a file on the server.
func (h *Handlers) HandleSaveChart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result := h.session.Current()
	out, err := ops.SaveChart(h.cfg, ops.SaveChartInput{
		Result: result,
		Path:   strings.TrimSpace(r.FormValue("path")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	data := h.indexData(inputFor(result, h.cfg), result)
	data.Notice = fmt.Sprintf("Graph saved to %s", out.Path)
	h.renderer.renderPage(w, r, "index", data)
}

func (h *Handlers) indexData(input string, result *ops.Result) IndexPageData {
	return IndexPageData{
		PageData: PageData{
			Title:   "Set Generator",
			Version: h.renderer.version,
		},
		Input:    input,
		Result:   result,
		Help:     h.renderer.help,
		MaxItems: h.cfg.MaxItems,
	}
}

// inputFor returns the text to prefill the input box with: the items of the
// current result, or the configured default.
func inputFor(result *ops.Result, cfg *config.Config) string {
	if result != nil {
		return strings.Join(result.Items, ", ")
	}
	return cfg.DefaultInput
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
