package quote

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/noah-isme/staggered-pricing/internal/common"
	"github.com/noah-isme/staggered-pricing/internal/pricing"
)

// Handler exposes the pricing quote endpoints.
type Handler struct {
	service  *Service
	defaults pricing.Config
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	// Defaults fills the fields a GET quote leaves out.
	Defaults pricing.Config
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, defaults: cfg.Defaults}
}

// Create handles POST /api/v1/pricing/quote.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return
	}
	cfg, err := decodeConfig(r.Body)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.respond(w, r, cfg)
}

// Get handles GET /api/v1/pricing/quote with the config in the query string.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return
	}
	cfg, err := ParseQuery(r.URL.Query(), h.defaults)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.respond(w, r, cfg)
}

// Defaults handles GET /api/v1/pricing/defaults.
func (h *Handler) Defaults(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusOK, h.defaults)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, cfg pricing.Config) {
	q, err := h.service.Quote(r.Context(), cfg)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

func decodeConfig(body io.Reader) (pricing.Config, error) {
	var cfg pricing.Config
	if body == nil {
		return cfg, common.BadRequest("request body required", nil)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, common.BadRequest("request body required", err)
		}
		return cfg, common.BadRequest("invalid JSON body", err)
	}
	return cfg, nil
}

// ParseQuery reads a pricing config from query parameters named like the JSON
// fields. Missing parameters keep the value from defaults.
func ParseQuery(values url.Values, defaults pricing.Config) (pricing.Config, error) {
	cfg := defaults
	floats := []struct {
		name string
		dst  *float64
	}{
		{"basePrice", &cfg.BasePrice},
		{"targetDiscountPct", &cfg.TargetDiscountPct},
		{"minPriceFloor", &cfg.MinPriceFloor},
	}
	for _, f := range floats {
		v, err := common.FloatDefault(values.Get(f.name), *f.dst)
		if err != nil {
			return cfg, queryError(f.name, err)
		}
		*f.dst = v
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"totalSubjects", &cfg.TotalSubjects},
		{"initialFullPriceSubjects", &cfg.InitialFullPriceSubjects},
		{"numLevels", &cfg.NumLevels},
		{"engagementMonths", &cfg.EngagementMonths},
	}
	for _, f := range ints {
		v, err := common.AtoiDefault(values.Get(f.name), *f.dst)
		if err != nil {
			return cfg, queryError(f.name, err)
		}
		*f.dst = v
	}
	return cfg, nil
}

func queryError(name string, err error) error {
	appErr := common.BadRequest("invalid query parameter "+name, err)
	appErr.Details = map[string]any{"field": name}
	return appErr
}
