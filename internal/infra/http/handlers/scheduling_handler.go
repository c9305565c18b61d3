package handlers

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xavierca1/presale-funnel/internal/form"
	"github.com/xavierca1/presale-funnel/internal/scheduling"
)

var popupSchema = form.BookingSchema.Slice(form.FieldFirstName, form.FieldLastName, form.FieldEmail)

type SchedulingHandler struct {
	Widget scheduling.Widget
}

func NewSchedulingHandler(widget scheduling.Widget) *SchedulingHandler {
	return &SchedulingHandler{Widget: widget}
}

type popupErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Popup (GET /scheduling/popup?firstName=&lastName=&email=&phone=&buyerType=&timeline=&budget=&width=)
// returns the widget options for the record, or the inline script with format=script.
func (h *SchedulingHandler) Popup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := bookingRecord(q)
	if !res.Valid {
		writeJSON(w, http.StatusBadRequest, popupErrorResponse{Error: "Invalid record", Fields: res.Errors})
		return
	}

	opts := h.Widget.Options(res.Values, viewport(q))

	if q.Get("format") == "script" {
		script, err := scheduling.Script(opts)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "", "Failed to render widget")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(script))
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// bookingRecord validates the identity fields of a record passed in the query and keeps
// the optional classification fields, trimmed, alongside them.
func bookingRecord(q url.Values) form.Result {
	record := form.Record{}
	for _, key := range []string{
		form.FieldFirstName, form.FieldLastName, form.FieldEmail, form.FieldPhone,
		form.FieldBuyerType, form.FieldTimeline, form.FieldBudget,
	} {
		if v := q.Get(key); v != "" {
			record[key] = v
		}
	}

	res := form.Validate(popupSchema, record)
	if !res.Valid {
		return res
	}
	for k, v := range record {
		if _, ok := res.Values[k]; !ok {
			res.Values[k] = strings.TrimSpace(v)
		}
	}
	return res
}

func viewport(q url.Values) scheduling.Viewport {
	width, _ := strconv.Atoi(q.Get("width"))
	return scheduling.Viewport{Width: width}
}

// PageHandler serves the marketing site, adding the scheduling widget assets to every
// HTML page on the way out. When Widget is set and a page is requested with the booking
// record in its query (the funnel's post-submit redirect), the popup is opened on it.
type PageHandler struct {
	Pages  fs.FS
	Assets scheduling.AssetLoader
	Widget *scheduling.Widget
	files  http.Handler
	logger *zap.Logger
}

func NewPageHandler(pages fs.FS, assets scheduling.AssetLoader, widget *scheduling.Widget, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		Pages:  pages,
		Assets: assets,
		Widget: widget,
		files:  http.FileServer(http.FS(pages)),
		logger: logger,
	}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || strings.HasSuffix(r.URL.Path, "/") {
		name = path.Join(name, "index.html")
	}
	if path.Ext(name) == "" {
		if _, err := fs.Stat(h.Pages, name+".html"); err == nil {
			name += ".html"
		}
	}
	if path.Ext(name) != ".html" {
		h.files.ServeHTTP(w, r)
		return
	}

	f, err := h.Pages.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		h.logger.Error("parse page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.Assets.Inject(doc)
	h.openPopup(doc, r.URL.Query(), name)

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		h.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out.Bytes())
}

// openPopup never fails the page: without a valid record or loaded assets the visitor
// just sees the static page.
func (h *PageHandler) openPopup(doc *html.Node, q url.Values, page string) {
	if h.Widget == nil || !q.Has(form.FieldEmail) {
		return
	}
	res := bookingRecord(q)
	if !res.Valid {
		h.logger.Debug("booking record rejected", zap.String("page", page), zap.Any("fields", res.Errors))
		return
	}
	opened, err := h.Widget.Embed(doc, res.Values, viewport(q))
	if err != nil {
		h.logger.Warn("open scheduling popup", zap.String("page", page), zap.Error(err))
		return
	}
	if !opened {
		h.logger.Debug("scheduling assets not loaded, popup skipped", zap.String("page", page))
	}
}
