package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iwvelando/smart-calc-suite/internal/calculator"
	"github.com/iwvelando/smart-calc-suite/internal/catalog"
	"github.com/iwvelando/smart-calc-suite/internal/page"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/theme"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	pages       *page.Registry
	maxBodySize int64
	version     string
}

type calculatorInfo struct {
	calculator.Definition
	Styles theme.Style `json:"styles"`
}

type calculateRequest struct {
	Calculator string            `json:"calculator"`
	Inputs     map[string]string `json:"inputs"`
}

type inputRequest struct {
	Value string `json:"value"`
}

type inputResponse struct {
	Accepted bool             `json:"accepted"`
	State    calculator.State `json:"state"`
}

type insightResponse struct {
	Insight string           `json:"insight"`
	Stale   bool             `json:"stale,omitempty"`
	State   calculator.State `json:"state"`
}

type visitorsResponse struct {
	Page  string `json:"page"`
	Count int64  `json:"count"`
}

// NewHandler constructs the HTTP handler serving the calculator API and the
// visitor WebSocket stream for pages mounted in pages.
func NewHandler(logger *zap.Logger, pages *page.Registry, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, pages: pages, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", h.handleVersion)
	mux.HandleFunc("GET /api/calculators", h.handleCalculators)
	mux.HandleFunc("POST /api/calculate", h.handleCalculate)

	// Page sessions
	mux.HandleFunc("POST /api/pages", h.handleMountPage)
	mux.HandleFunc("GET /api/pages/{page}", h.handlePageState)
	mux.HandleFunc("DELETE /api/pages/{page}", h.handleUnmountPage)
	mux.HandleFunc("PUT /api/pages/{page}/calculators/{calc}/inputs/{key}", h.handleSetInput)
	mux.HandleFunc("POST /api/pages/{page}/calculators/{calc}/insight", h.handleInsight)
	mux.HandleFunc("GET /api/pages/{page}/visitors", h.handleVisitors)

	// Visitor count stream
	mux.HandleFunc("GET /ws/pages/{page}/visitors", h.handleVisitorStream)

	return mux
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleCalculators(w http.ResponseWriter, r *http.Request) {
	defs := catalog.Definitions()
	infos := make([]calculatorInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, calculatorInfo{Definition: def, Styles: theme.Styles(def.Theme)})
	}
	h.writeJSON(w, http.StatusOK, infos)
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	var req calculateRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	def, err := catalog.Lookup(req.Calculator)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}

	state, err := calculator.Evaluate(def, req.Inputs)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.logger.Debug("calculation evaluated",
		zap.String("op", op),
		zap.String("calculator", def.ID),
		zap.String("phase", state.Phase.String()),
	)
	h.writeJSON(w, http.StatusOK, state)
}

func (h *handler) handleMountPage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMountPage"

	p, err := h.pages.Mount()
	if errors.Is(err, page.ErrTooManyPages) {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, err.Error(), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to mount page: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusCreated, p.Snapshot())
}

func (h *handler) handlePageState(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPage(w, r, "server.handlePageState")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, p.Snapshot())
}

func (h *handler) handleUnmountPage(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.Unmount(r.PathValue("page")); err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), "server.handleUnmountPage")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSetInput(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetInput"

	unit, ok := h.lookupUnit(w, r, op)
	if !ok {
		return
	}

	var req inputRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	accepted, err := unit.SetInput(r.PathValue("key"), req.Value)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, inputResponse{Accepted: accepted, State: unit.Snapshot()})
}

func (h *handler) handleInsight(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleInsight"

	unit, ok := h.lookupUnit(w, r, op)
	if !ok {
		return
	}

	text, err := unit.RequestInsight(r.Context())
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, insightResponse{Insight: text, State: unit.Snapshot()})
	case errors.Is(err, calculator.ErrStaleInsight):
		h.writeJSON(w, http.StatusConflict, insightResponse{Insight: text, Stale: true, State: unit.Snapshot()})
	case errors.Is(err, calculator.ErrInsightPending):
		h.respondErrorWithOp(w, http.StatusConflict, err.Error(), op)
	case errors.Is(err, calculator.ErrNoResult):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) handleVisitors(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPage(w, r, "server.handleVisitors")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, visitorsResponse{Page: p.ID, Count: p.Visitors().Value()})
}

func (h *handler) handleVisitorStream(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPage(w, r, "server.handleVisitorStream")
	if !ok {
		return
	}
	p.Hub().ServeHTTP(w, r)
}

func (h *handler) lookupPage(w http.ResponseWriter, r *http.Request, op string) (*page.Page, bool) {
	p, err := h.pages.Get(r.PathValue("page"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return nil, false
	}
	return p, true
}

func (h *handler) lookupUnit(w http.ResponseWriter, r *http.Request, op string) (*calculator.Unit, bool) {
	p, ok := h.lookupPage(w, r, op)
	if !ok {
		return nil, false
	}
	unit, err := p.Unit(r.PathValue("calc"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return nil, false
	}
	return unit, true
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Warn
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
