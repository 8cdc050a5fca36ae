// Package admin provides HTTP handlers for the operator API.
package admin

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crowelogic/tiergate/adapters/hasher"
	apihttp "github.com/crowelogic/tiergate/adapters/http"
	"github.com/crowelogic/tiergate/app"
	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/pkg/jsonapi"
	"github.com/crowelogic/tiergate/ports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// DefaultRetention is the number of monthly periods kept by a prune request
// that does not name one.
const DefaultRetention = 12

// Handler provides admin API endpoints.
type Handler struct {
	engine       *app.Engine
	hasher       ports.Hasher
	adminKeyHash []byte
	checks       map[string]apihttp.HealthChecker
	version      string
	logger       zerolog.Logger
}

// Deps contains dependencies for the admin handler.
type Deps struct {
	Engine       *app.Engine
	Hasher       ports.Hasher
	AdminKeyHash string // bcrypt hash of the operator key
	Checks       map[string]apihttp.HealthChecker
	Version      string
	Logger       zerolog.Logger
}

// NewHandler creates a new admin API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		engine:       deps.Engine,
		hasher:       deps.Hasher,
		adminKeyHash: []byte(deps.AdminKeyHash),
		checks:       deps.Checks,
		version:      deps.Version,
		logger:       deps.Logger,
	}
}

// Router returns the admin API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.AuthMiddleware)

	r.Get("/subscriptions", h.ListSubscriptions)
	r.Post("/subscriptions", h.CreateSubscription)
	r.Put("/subscriptions/{caller}/tier", h.SetTier)

	r.Get("/usage/{caller}", h.GetUsage)
	r.Post("/usage/prune", h.PruneUsage)

	r.Get("/doctor", h.Doctor)

	return r
}

// AuthMiddleware accepts the operator key via Authorization: Bearer or
// X-API-Key and compares it against the configured hash.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			key = strings.TrimPrefix(auth, "Bearer ")
		}

		if key == "" || len(h.adminKeyHash) == 0 || !h.hasher.Compare(h.adminKeyHash, key) {
			jsonapi.WriteError(w, jsonapi.ErrUnauthorized("Valid admin key required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SubscriptionResponse is one subscription record.
type SubscriptionResponse struct {
	CallerID      string    `json:"caller_id"`
	Tier          string    `json:"tier"`
	CustomerRef   string    `json:"customer_ref,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	NextBillingAt time.Time `json:"next_billing_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func subscriptionResponse(s subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		CallerID:      s.CallerID,
		Tier:          string(s.Tier),
		CustomerRef:   s.CustomerRef,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		NextBillingAt: s.NextBillingAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ListSubscriptions lists every subscription ordered by caller id.
//
//	@Summary		List subscriptions
//	@Tags			Admin - Subscriptions
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"subscriptions"
//	@Security		AdminAuth
//	@Router			/admin/subscriptions [get]
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.engine.ListSubscriptions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]SubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, subscriptionResponse(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": out,
		"total":         len(out),
	})
}

// CreateSubscriptionRequest names a caller by raw API key or by caller id.
type CreateSubscriptionRequest struct {
	APIKey      string `json:"api_key,omitempty"`
	CallerID    string `json:"caller_id,omitempty"`
	Tier        string `json:"tier"`
	CustomerRef string `json:"customer_ref,omitempty"`
}

// CreateSubscription creates or replaces a caller's subscription.
//
//	@Summary		Create subscription
//	@Tags			Admin - Subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateSubscriptionRequest	true	"Subscription"
//	@Success		201		{object}	SubscriptionResponse
//	@Failure		400		{object}	jsonapi.Document
//	@Security		AdminAuth
//	@Router			/admin/subscriptions [post]
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	callerID := req.CallerID
	if req.APIKey != "" {
		callerID = hasher.CallerID(req.APIKey)
	}
	if callerID == "" {
		jsonapi.WriteError(w, jsonapi.ErrValidation("caller_id", "api_key or caller_id is required"))
		return
	}

	t, err := tier.Parse(req.Tier)
	if err != nil {
		h.writeError(w, err)
		return
	}

	sub, err := h.engine.CreateSubscription(r.Context(), callerID, t, req.CustomerRef)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriptionResponse(sub))
}

// SetTierRequest is the body of PUT /admin/subscriptions/{caller}/tier.
type SetTierRequest struct {
	Tier string `json:"tier"`
}

// SetTier moves an existing subscription to another tier. This is how an
// accepted upgrade request is applied once payment clears.
//
//	@Summary		Change subscription tier
//	@Tags			Admin - Subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			caller	path		string			true	"Caller id"
//	@Param			request	body		SetTierRequest	true	"Tier"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		AdminAuth
//	@Router			/admin/subscriptions/{caller}/tier [put]
func (h *Handler) SetTier(w http.ResponseWriter, r *http.Request) {
	callerID := chi.URLParam(r, "caller")

	var req SetTierRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	t, err := tier.Parse(req.Tier)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.engine.ChangeTier(r.Context(), callerID, t); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"caller_id": callerID, "tier": string(t)})
}

// GetUsage returns a caller's current-period usage summary.
//
//	@Summary		Caller usage
//	@Tags			Admin - Usage
//	@Produce		json
//	@Param			caller	path		string	true	"Caller id"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		404		{object}	jsonapi.Document
//	@Security		AdminAuth
//	@Router			/admin/usage/{caller} [get]
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.UsageSummary(r.Context(), chi.URLParam(r, "caller"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"caller_id":     s.CallerID,
		"tier":          s.Tier,
		"status":        s.Status,
		"period":        s.Period,
		"calls_used":    s.CallsUsed,
		"quota":         s.Quota,
		"remaining":     s.Remaining,
		"percent_used":  s.PercentUsed,
		"warning_level": s.WarningLevel.String(),
		"models_used":   s.ModelsUsed,
	})
}

// PruneRequest is the body of POST /admin/usage/prune.
type PruneRequest struct {
	KeepPeriods int `json:"keep_periods,omitempty"`
}

// PruneUsage removes usage records older than the retention window.
//
//	@Summary		Prune usage
//	@Tags			Admin - Usage
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PruneRequest	false	"Retention"
//	@Success		200		{object}	map[string]interface{}
//	@Security		AdminAuth
//	@Router			/admin/usage/prune [post]
func (h *Handler) PruneUsage(w http.ResponseWriter, r *http.Request) {
	var req PruneRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}
	keep := req.KeepPeriods
	if keep <= 0 {
		keep = DefaultRetention
	}

	n, err := h.engine.PruneUsage(r.Context(), keep)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": n, "keep_periods": keep})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	e := apihttp.ErrorFor(err)
	if e.StatusCode() >= 500 {
		h.logger.Error().Err(err).Msg("admin request failed")
	}
	jsonapi.WriteError(w, e)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
