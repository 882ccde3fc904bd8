package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/reefnet/wholesale/internal/catalog"
	"github.com/reefnet/wholesale/internal/pricing"
	"github.com/reefnet/wholesale/internal/quote"
	"github.com/reefnet/wholesale/internal/settings"
)

type server struct {
	settings settings.Store
	catalog  *catalog.Catalog
	quotes   *quote.Service
	logger   *zap.Logger

	// exportXLSX renders the quote spreadsheet; nil means quote.ExportXLSX.
	exportXLSX func(io.Writer, []quote.Quote) error
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type calcResponse struct {
	Input  pricing.Input  `json:"input"`
	Result pricing.Result `json:"result"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/processing-options", s.handleProcessingOptions)
	r.Get("/settings", s.handleSettingsGet)
	r.Put("/settings", s.handleSettingsSave)
	r.Post("/settings/reset", s.handleSettingsReset)
	r.Post("/pricing/calc", s.handleCalc)
	r.Get("/quotes", s.handleQuotesList)
	r.Post("/quotes", s.handleQuoteCreate)
	r.Get("/quotes/export.xlsx", s.handleQuotesExport)
	r.Get("/quotes/{id}", s.handleQuoteDetail)
	r.Get("/quotes/{id}/text", s.handleQuoteText)
	r.Delete("/quotes/{id}", s.handleQuoteDelete)
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleProcessingOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Options())
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadSettings(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	st, err := parseSettingsForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settings.Save(r.Context(), st); err != nil {
		s.internalError(w, "failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleSettingsReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Reset())
}

func (s *server) loadSettings(w http.ResponseWriter, r *http.Request) (settings.Settings, bool) {
	st, err := s.settings.Get(r.Context())
	if err != nil {
		s.internalError(w, "failed to load settings", err)
		return settings.Settings{}, false
	}
	return st, true
}

// price runs the engine and writes the error response itself when it fails.
func (s *server) price(w http.ResponseWriter, in pricing.Input, st settings.Settings) (pricing.Result, bool) {
	result, err := pricing.Compute(in, s.catalog, st)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.internalError(w, "failed to compute price", err)
		}
		return pricing.Result{}, false
	}
	if result.ProcessingFallback {
		s.logger.Warn("unknown processing option, using catalog default",
			zap.String("requested", in.ProcessingOptionID),
			zap.String("applied", result.ProcessingOptionID))
	}
	return result, true
}

func (s *server) handleCalc(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	st, ok := s.loadSettings(w, r)
	if !ok {
		return
	}
	in := parsePricingForm(r).Input(st)
	result, ok := s.price(w, in, st)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calcResponse{Input: in, Result: result})
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	st, ok := s.loadSettings(w, r)
	if !ok {
		return
	}
	draft := parseQuoteDraft(r, parsePricingForm(r).Input(st))
	if err := draft.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	result, ok := s.price(w, draft.Input, st)
	if !ok {
		return
	}
	draft.Result = result

	q, err := s.quotes.Create(r.Context(), draft)
	if err != nil {
		if errors.Is(err, quote.ErrValidation) {
			writeValidationError(w, err)
			return
		}
		s.internalError(w, "failed to save quote", err)
		return
	}

	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.quotes.List(r.Context())
	if err != nil {
		s.internalError(w, "failed to load quotes", err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	doc := quote.RenderPrintable(q)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Text()))
}

func (s *server) handleQuoteDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.quotes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, "failed to delete quote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleQuotesExport(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.quotes.List(r.Context())
	if err != nil {
		s.internalError(w, "failed to load quotes", err)
		return
	}

	export := s.exportXLSX
	if export == nil {
		export = quote.ExportXLSX
	}

	var buf bytes.Buffer
	if err := export(&buf, quotes); err != nil {
		s.internalError(w, "failed to export quotes", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment("reefnet-quotes.xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (quote.Quote, bool) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return quote.Quote{}, false
		}
		s.internalError(w, "failed to load quote", err)
		return quote.Quote{}, false
	}
	return q, true
}

func (s *server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

// attachment formats a Content-Disposition value, switching to the RFC 2231
// encoded form when the filename is not plain ASCII.
func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var verr *quote.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
