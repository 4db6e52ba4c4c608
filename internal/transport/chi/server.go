package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"perfume/internal/domain"
	"perfume/internal/metrics"
)

// Limits bounds the values accepted from clients.
type Limits struct {
	MinWeight     int
	MaxWeight     int
	DefaultWeight int
	ExactLimit    int // -1 = no limit
}

// Server exposes the recommender over HTTP.
type Server struct {
	rec     domain.Recommender
	limits  Limits
	summary string
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(rec domain.Recommender, limits Limits, summary string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{rec: rec, limits: limits, summary: summary, logger: logger}
}

// Router returns the chi router with all routes and middleware mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/options", s.Options)
		r.Get("/catalog", s.Catalog)
		r.Post("/search/exact", s.SearchExact)
		r.Post("/search/ranked", s.SearchRanked)
	})
	return r
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Options handles GET /v1/options: the selectable values per attribute.
func (s *Server) Options(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string][]string, domain.AttributeCount)
	for _, a := range domain.Attributes() {
		out[a.String()] = s.rec.Options(a)
	}
	writeJSON(w, http.StatusOK, out)
}

type catalogResponse struct {
	Size    int          `json:"size"`
	Summary string       `json:"summary"`
	Weights weightsRange `json:"weights"`
}

type weightsRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// Catalog handles GET /v1/catalog.
func (s *Server) Catalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Size:    s.rec.Size(),
		Summary: s.summary,
		Weights: weightsRange{Min: s.limits.MinWeight, Max: s.limits.MaxWeight, Default: s.limits.DefaultWeight},
	})
}

type exactResponse struct {
	Results []domain.PerfumeRecord `json:"results"`
	Total   int                    `json:"total"`
}

// SearchExact handles POST /v1/search/exact.
func (s *Server) SearchExact(w http.ResponseWriter, r *http.Request) {
	var q domain.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validateQuery(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	all := s.rec.FilterExact(q)
	shown := all
	if n := s.limits.ExactLimit; n >= 0 && len(shown) > n {
		shown = shown[:n]
	}
	writeJSON(w, http.StatusOK, exactResponse{Results: shown, Total: len(all)})
}

type rankedRequest struct {
	domain.Query
	Weights *weightsBody `json:"weights,omitempty"`
}

type weightsBody struct {
	Personality *int `json:"personality,omitempty"`
	Occasion    *int `json:"occasion,omitempty"`
	Notes       *int `json:"notes,omitempty"`
	Intensity   *int `json:"intensity,omitempty"`
}

type rankedResponse struct {
	Results []domain.Recommendation `json:"results"`
	Weights domain.QueryWeights     `json:"weights"`
}

// SearchRanked handles POST /v1/search/ranked.
func (s *Server) SearchRanked(w http.ResponseWriter, r *http.Request) {
	var req rankedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	weights := s.weightsFrom(req.Weights)
	if err := weights.Validate(s.limits.MinWeight, s.limits.MaxWeight); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rankedResponse{Results: s.rec.Rank(req.Query, weights), Weights: weights})
}

func (s *Server) weightsFrom(b *weightsBody) domain.QueryWeights {
	weights := domain.UniformWeights(s.limits.DefaultWeight)
	if b == nil {
		return weights
	}
	for a, v := range map[domain.Attribute]*int{
		domain.Personality: b.Personality,
		domain.Occasion:    b.Occasion,
		domain.Notes:       b.Notes,
		domain.Intensity:   b.Intensity,
	} {
		if v != nil {
			weights[a] = *v
		}
	}
	return weights
}

var errMissingAttribute = errors.New("attribute is required")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// queryValidator reports failing fields by their JSON names.
func queryValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func validateQuery(q domain.Query) error {
	err := queryValidator().Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%s: %w", fe.Field(), errMissingAttribute)
		}
		return fmt.Errorf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger emits one log line per request.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http_request",
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}
