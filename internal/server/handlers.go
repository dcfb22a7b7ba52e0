package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jgoulah/gridsizer/pkg/bundle"
	"github.com/jgoulah/gridsizer/pkg/cost"
	"github.com/jgoulah/gridsizer/pkg/engine"
	"github.com/jgoulah/gridsizer/pkg/models"
	"github.com/jgoulah/gridsizer/pkg/sizing"
)

const maxBodyBytes = 1 << 20

// Error codes returned in the error envelope
const (
	CodeInvalidLoadPlan    = "invalid_load_plan"
	CodeInvalidGoalProfile = "invalid_goal_profile"
	CodeUnknownPreset      = "unknown_preset"
	CodeInvalidSizing      = "invalid_sizing"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type quoteRequest struct {
	engine.Request
	Contact string `json:"contact,omitempty"`
}

type componentsRequest struct {
	SystemType      string  `json:"systemType"`
	BatteryCapacity float64 `json:"batteryCapacity"`
	InverterSize    float64 `json:"inverterSize"`
	SolarPanels     float64 `json:"solarPanels"`
	Preset          string  `json:"preset"`
}

type quoteResponse struct {
	Quote          models.Quote           `json:"quote"`
	Recommendation *engine.Recommendation `json:"recommendation"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if !s.decode(w, r, &req) {
		return
	}

	rec, err := s.recommend(req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, rec)
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	var req componentsRequest
	if !s.decode(w, r, &req) {
		return
	}

	parts, err := s.engine.Components(bundle.ComponentsInput{
		SystemType:  req.SystemType,
		BatteryKWh:  req.BatteryCapacity,
		InverterKVA: req.InverterSize,
		SolarKW:     req.SolarPanels,
	}, req.Preset)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, parts)
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	var usage float64
	if v := r.URL.Query().Get("usage"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, "usage must be a non-negative number of kWh")
			return
		}
		usage = n
	}
	s.writeData(w, http.StatusOK, cost.LocationSavings(r.PathValue("location"), usage))
}

func (s *Server) handleBundles(w http.ResponseWriter, _ *http.Request) {
	bundles := []models.Product{}
	if s.opts.Catalog != nil {
		list, err := s.opts.Catalog.ListBundles()
		if err != nil {
			s.logger.Error("listing bundles", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, CodeInternal, "catalog unavailable")
			return
		}
		bundles = append(bundles, list...)
	}
	s.writeData(w, http.StatusOK, bundles)
}

func (s *Server) handleAppliances(w http.ResponseWriter, _ *http.Request) {
	s.writeData(w, http.StatusOK, s.engine.Appliances())
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	s.writeData(w, http.StatusOK, map[string]any{
		"default": s.engine.DefaultPreset(),
		"presets": s.engine.Presets(),
	})
}

func (s *Server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	rec, err := s.recommend(req.Request)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	q, err := rec.Quote(req.Contact)
	if err != nil {
		s.logger.Error("building quote", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, CodeInternal, "could not build quote")
		return
	}
	if err := s.opts.Quotes.SaveQuote(&q); err != nil {
		s.logger.Error("saving quote", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, CodeInternal, "could not save quote")
		return
	}

	if s.opts.Publisher != nil {
		// the quote is already saved; a failed announcement leaves it unpublished for `quotes publish`
		if err := s.opts.Publisher.PublishQuote(q); err != nil {
			s.logger.Warn("publishing quote", zap.String("id", q.ID), zap.Error(err))
		} else if err := s.opts.Quotes.MarkQuotePublished(q.ID); err != nil {
			s.logger.Warn("marking quote published", zap.String("id", q.ID), zap.Error(err))
		} else {
			q.Published = true
		}
	}

	s.writeData(w, http.StatusCreated, quoteResponse{Quote: q, Recommendation: rec})
}

func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	quotes, err := s.opts.Quotes.ListQuotes(limit)
	if err != nil {
		s.logger.Error("listing quotes", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, CodeInternal, "could not list quotes")
		return
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	s.writeData(w, http.StatusOK, quotes)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recommend runs the engine against the stored catalog. A catalog failure
// only drops the product matches.
func (s *Server) recommend(req engine.Request) (*engine.Recommendation, error) {
	var catalog []models.Product
	if s.opts.Catalog != nil {
		var err error
		catalog, err = s.opts.Catalog.ListBundles()
		if err != nil {
			s.logger.Warn("catalog unavailable, skipping matches", zap.Error(err))
		}
	}
	return s.engine.Recommend(req, catalog)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var code string
	switch {
	case errors.Is(err, sizing.ErrInvalidLoadPlan):
		code = CodeInvalidLoadPlan
	case errors.Is(err, sizing.ErrInvalidGoalProfile):
		code = CodeInvalidGoalProfile
	case errors.Is(err, engine.ErrUnknownPreset):
		code = CodeUnknownPreset
	case errors.Is(err, bundle.ErrInvalidSizing):
		code = CodeInvalidSizing
	default:
		s.logger.Error("engine request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, CodeInternal, "estimate failed")
		return
	}
	s.logger.Info("request rejected", zap.String("code", code), zap.Error(err))
	s.writeError(w, http.StatusBadRequest, code, err.Error())
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{Success: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, envelope{Error: &apiError{Code: code, Message: message}})
}

// writeJSON encodes v as the response. The status line is already out when
// encoding fails, so the failure can only be logged.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", zap.Int("status", status), zap.Error(err))
	}
}
