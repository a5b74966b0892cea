package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog"

	"github.com/pivolan/stay_dashboard/config"
	"github.com/pivolan/stay_dashboard/pipeline"
	"github.com/pivolan/stay_dashboard/plot"
)

const (
	previewRows   = 200
	maxUploadSize = 256 << 20
)

type webHandler struct {
	dash  *Dashboard
	cache *pipeline.Cache
	cfg   *config.Config
	log   zerolog.Logger
	tmpl  *template.Template
}

func newWebHandler(dash *Dashboard, cache *pipeline.Cache, cfg *config.Config, log zerolog.Logger) *webHandler {
	return &webHandler{
		dash:  dash,
		cache: cache,
		cfg:   cfg,
		log:   log.With().Str("component", "web").Logger(),
		tmpl:  template.Must(template.New("dashboard").Funcs(templateFuncs).Parse(dashboardTemplate)),
	}
}

// Routes returns the dashboard router.
func (h *webHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/", h.handleIndex)
	r.Route("/charts", func(r chi.Router) {
		r.Get("/stay", h.handleStayChart)
		r.Get("/admission", h.handleAdmissionChart)
		r.Get("/stay.png", h.handleStayPNG)
		r.Get("/admission.png", h.handleAdmissionPNG)
	})
	r.Get("/export.csv", h.handleExportCSV)
	r.Get("/export.xlsx", h.handleExportXLSX)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/upload", h.handleUpload)
	return r
}

func (h *webHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// parseDashboardRequest reads min, max, age and col from the query string.
// The form sends f=1; without it a missing age list means "all groups",
// with it an empty list means the user deselected everything.
func parseDashboardRequest(q url.Values) (DashboardRequest, error) {
	req := DashboardRequest{
		AgeGroups: q["age"],
		Columns:   q["col"],
	}
	req.AllAgeGroups = len(req.AgeGroups) == 0 && q.Get("f") == ""
	for _, p := range []struct {
		key string
		dst **float64
	}{{"min", &req.MinStay}, {"max", &req.MaxStay}} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be a number, got %q", errInvalidSelection, p.key, raw)
		}
		*p.dst = &v
	}
	return req, nil
}

type pageData struct {
	Title      string
	ThemeColor string
	Error      string
	State      *DashboardState
	Query      template.URL
	Preview    [][]string
	Headers    []string
	Source     string
}

func (h *webHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:      "Customized Patient Dashboard",
		ThemeColor: h.cfg.ThemeColor,
		Query:      template.URL(r.URL.RawQuery),
		Source:     filepath.Base(h.cache.Source()),
	}
	status := http.StatusOK

	// the sidebar is drawn from whatever state Build managed to fill,
	// even when the selection itself is rejected
	req, err := parseDashboardRequest(r.URL.Query())
	st, buildErr := h.dash.Build(req)
	if err == nil {
		err = buildErr
	}
	data.State = st
	if err != nil {
		status, data.Error = describeError(err)
		h.log.Warn().Err(err).Msg("dashboard pass failed")
	} else {
		preview := data.State.View
		if len(preview) > previewRows {
			preview = preview[:previewRows]
		}
		data.Headers = pipeline.Headers(data.State.Columns)
		data.Preview = pipeline.Rows(preview, data.State.Columns)
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.log.Error().Err(err).Msg("render dashboard")
		http.Error(w, "Error rendering dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// build runs a dashboard pass for chart/export endpoints and writes the
// error response itself when it fails.
func (h *webHandler) build(w http.ResponseWriter, r *http.Request) (*DashboardState, bool) {
	req, err := parseDashboardRequest(r.URL.Query())
	if err == nil {
		var st *DashboardState
		st, err = h.dash.Build(req)
		if err == nil {
			return st, true
		}
	}
	status, msg := describeError(err)
	h.log.Warn().Err(err).Str("path", r.URL.Path).Msg("dashboard pass failed")
	http.Error(w, msg, status)
	return nil, false
}

func (h *webHandler) handleStayChart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.build(w, r)
	if !ok {
		return
	}
	page := components.NewPage()
	page.PageTitle = "Stay Distribution"
	page.AddCharts(stayBoxChart(st, h.cfg.ThemeColor), stayHistogramChart(st, h.cfg.ThemeColor))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		h.log.Error().Err(err).Msg("render stay chart")
	}
}

func (h *webHandler) handleAdmissionChart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.build(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := admissionChart(st, h.cfg.ThemeColor).Render(w); err != nil {
		h.log.Error().Err(err).Msg("render admission chart")
	}
}

func (h *webHandler) handleStayPNG(w http.ResponseWriter, r *http.Request) {
	st, ok := h.build(w, r)
	if !ok {
		return
	}
	if st.Notice != "" {
		http.Error(w, st.Notice, http.StatusNotFound)
		return
	}
	img, err := plot.DrawStayHistogram(st.Dist, plot.ParseColor(h.cfg.ThemeColor))
	h.writePNG(w, img, err)
}

func (h *webHandler) handleAdmissionPNG(w http.ResponseWriter, r *http.Request) {
	st, ok := h.build(w, r)
	if !ok {
		return
	}
	if st.Notice != "" {
		http.Error(w, st.Notice, http.StatusNotFound)
		return
	}
	img, err := plot.DrawAdmissionBar(st.Groups, plot.ParseColor(h.cfg.ThemeColor))
	h.writePNG(w, img, err)
}

func (h *webHandler) writePNG(w http.ResponseWriter, img []byte, err error) {
	if err != nil {
		h.log.Error().Err(err).Msg("draw chart")
		http.Error(w, "Error rendering chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

func (h *webHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	st, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := pipeline.WriteCSV(&buf, st.View, st.Columns); err != nil {
		h.log.Error().Err(err).Msg("export csv")
		http.Error(w, "Error exporting data", http.StatusInternalServerError)
		return
	}
	h.attach(w, "text/csv", h.cfg.ExportName+".csv", &buf)
}

func (h *webHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	st, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := pipeline.WriteXLSX(&buf, st.View, st.Columns); err != nil {
		h.log.Error().Err(err).Msg("export xlsx")
		http.Error(w, "Error exporting data", http.StatusInternalServerError)
		return
	}
	h.attach(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.cfg.ExportName+".xlsx", &buf)
}

func (h *webHandler) attach(w http.ResponseWriter, contentType, name string, body io.Reader) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	io.Copy(w, body)
}

func (h *webHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.cache.Refresh(); err != nil {
		status, msg := describeError(err)
		http.Error(w, msg, status)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleUpload stores a new source file under UploadDir/<uuid>/ and switches
// the dashboard to it once it loads cleanly.
func (h *webHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error uploading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	loadOpts := pipeline.Options{Separator: h.cfg.Separator}
	if _, err := storeUpload(h.cfg.UploadDir, header.Filename, file, loadOpts, h.cache, h.log); err != nil {
		h.log.Warn().Err(err).Str("file", header.Filename).Msg("upload rejected")
		if errors.Is(err, pipeline.ErrSource) || errors.Is(err, pipeline.ErrNoRows) || errors.As(err, new(*pipeline.MissingColumnError)) {
			_, msg := describeError(err)
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func stayHistogramChart(st *DashboardState, color string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stay Distribution", Subtitle: fmt.Sprintf("%d records", len(st.View))}),
		charts.WithColorsOpts(opts.Colors{color}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Length of Stay"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	labels := make([]string, len(st.Dist.Bins))
	values := make([]opts.BarData, len(st.Dist.Bins))
	for i, b := range st.Dist.Bins {
		labels[i] = fmt.Sprintf("%s-%s", pipeline.FormatStay(b.RangeStart), pipeline.FormatStay(b.RangeEnd-1))
		values[i] = opts.BarData{Value: b.Count}
	}
	bar.SetXAxis(labels).AddSeries("Records", values)
	return bar
}

func stayBoxChart(st *DashboardState, color string) *charts.BoxPlot {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "160px"}),
		charts.WithColorsOpts(opts.Colors{color}),
	)
	b := st.Dist.Box
	data := []opts.BoxPlotData{}
	if len(st.View) > 0 {
		data = append(data, opts.BoxPlotData{Value: []float64{b.Min, b.Q1, b.Median, b.Q3, b.Max}})
	}
	box.SetXAxis([]string{"Length of Stay"}).AddSeries("Stay", data)
	return box
}

func admissionChart(st *DashboardState, color string) *charts.Bar {
	top := 0.0
	for _, g := range st.Groups {
		if g.Mean > top {
			top = g.Mean
		}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stay by Admission Type"}),
		charts.WithColorsOpts(opts.Colors{color}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     0,
			Max:     float32(top),
			InRange: &opts.VisualMapInRange{Color: []string{"#c6dbef", "#08306b"}},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Length of Stay"}),
	)
	labels := make([]string, len(st.Groups))
	values := make([]opts.BarData, len(st.Groups))
	for i, g := range st.Groups {
		labels[i] = g.Group
		values[i] = opts.BarData{Value: fmt.Sprintf("%.2f", g.Mean)}
	}
	bar.SetXAxis(labels).AddSeries("Length of Stay", values)
	return bar
}
