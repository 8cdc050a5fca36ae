// Package http provides the public HTTP surface of the tier enforcement
// engine.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crowelogic/tiergate/app"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/pkg/jsonapi"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// GenerateRequest is the body of POST /v1/generate.
type GenerateRequest struct {
	Prompt      string   `json:"prompt" example:"Summarize Q3 revenue drivers"`
	Model       string   `json:"model" example:"crowe-logic-analytics"`
	MaxTokens   int      `json:"max_tokens,omitempty" example:"1024"`
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
}

// TokenUsage reports backend token counts.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GenerateResponse is a branded generation result.
type GenerateResponse struct {
	ID           string     `json:"id" example:"gen_3f1c"`
	Model        string     `json:"model" example:"crowe-logic-analytics"`
	Text         string     `json:"text"`
	Tier         string     `json:"tier" example:"essentials"`
	Usage        TokenUsage `json:"usage"`
	Provider     string     `json:"provider" example:"Crowe Logic"`
	Tagline      string     `json:"tagline" example:"Logic. Applied."`
	UsageTracked bool       `json:"usage_tracked"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ModelResponse describes one served model.
type ModelResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	TierRequired string   `json:"tier_required"`
}

// ModelsResponse is the body of GET /v1/models.
type ModelsResponse struct {
	Platform    string          `json:"platform"`
	Tagline     string          `json:"tagline"`
	Models      []ModelResponse `json:"models"`
	TotalModels int             `json:"total_models"`
}

// SubscriptionResponse is the body of GET /v1/subscription.
type SubscriptionResponse struct {
	Platform      string           `json:"platform"`
	Tagline       string           `json:"tagline"`
	Tier          string           `json:"tier" example:"professional"`
	Status        string           `json:"status" example:"active"`
	Period        string           `json:"period" example:"2024-03"`
	CallsUsed     int64            `json:"calls_used"`
	Quota         tier.Quota       `json:"quota" swaggertype:"integer"`
	Remaining     int64            `json:"remaining"`
	PercentUsed   float64          `json:"percent_used"`
	WarningLevel  string           `json:"warning_level" example:"none"`
	ModelsUsed    map[string]int64 `json:"models_used"`
	SupportLevel  string           `json:"support_level"`
	SLAUptime     string           `json:"sla_uptime"`
	LastUpdated   *time.Time       `json:"last_updated,omitempty"`
	NextBillingAt time.Time        `json:"next_billing_at"`
}

// UpgradeRequest is the body of POST /v1/subscription/upgrade.
type UpgradeRequest struct {
	Tier string `json:"tier" example:"enterprise"`
}

// UpgradeResponse acknowledges an accepted upgrade request.
type UpgradeResponse struct {
	Platform          string  `json:"platform"`
	Tagline           string  `json:"tagline"`
	Message           string  `json:"message"`
	CurrentTier       string  `json:"current_tier"`
	RequestedTier     string  `json:"requested_tier"`
	Status            string  `json:"status" example:"pending_payment"`
	PriceMonthly      float64 `json:"price_monthly"`
	PriceMonthlyCents int64   `json:"price_monthly_cents"`
	Currency          string  `json:"currency"`
	NextSteps         string  `json:"next_steps"`
}

// TierFeatures is the entitlement block of one pricing row.
type TierFeatures struct {
	MonthlyAPICalls      tier.Quota `json:"monthly_api_calls" swaggertype:"integer"`
	AvailableModels      int        `json:"available_models"`
	ModelNames           []string   `json:"model_names"`
	SupportLevel         string     `json:"support_level"`
	SLAUptime            string     `json:"sla_uptime"`
	CustomModels         bool       `json:"custom_models"`
	PrioritySupport      bool       `json:"priority_support"`
	DedicatedSupport     bool       `json:"dedicated_support"`
	WhiteGloveOnboarding bool       `json:"white_glove_onboarding"`
}

// PricingTier is one row of GET /v1/pricing.
type PricingTier struct {
	Tier              string       `json:"tier"`
	Name              string       `json:"name"`
	PriceMonthly      float64      `json:"price_monthly"`
	PriceMonthlyCents int64        `json:"price_monthly_cents"`
	Features          TierFeatures `json:"features"`
}

// PricingResponse is the body of GET /v1/pricing.
type PricingResponse struct {
	Platform     string        `json:"platform"`
	Tagline      string        `json:"tagline"`
	PricingTiers []PricingTier `json:"pricing_tiers"`
	BillingCycle string        `json:"billing_cycle" example:"monthly"`
	Currency     string        `json:"currency" example:"USD"`
}

// Handler serves the caller-facing /v1 endpoints.
type Handler struct {
	engine   *app.Engine
	generate *app.GenerateService
	logger   zerolog.Logger
}

// NewHandler creates the /v1 handler.
func NewHandler(engine *app.Engine, generate *app.GenerateService, logger zerolog.Logger) *Handler {
	return &Handler{engine: engine, generate: generate, logger: logger}
}

// Generate runs one metered generation.
//
//	@Summary		Generate text
//	@Description	Checks model entitlement and monthly quota, calls the backend, then records one call
//	@Tags			Generation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GenerateRequest		true	"Generation request"
//	@Success		200		{object}	GenerateResponse
//	@Failure		401		{object}	jsonapi.Document	"Missing API key"
//	@Failure		403		{object}	jsonapi.Document	"Model not in tier"
//	@Failure		404		{object}	jsonapi.Document	"No subscription"
//	@Failure		422		{object}	jsonapi.Document	"Invalid request"
//	@Failure		429		{object}	jsonapi.Document	"Monthly quota exhausted"
//	@Failure		502		{object}	jsonapi.Document	"Backend failure"
//	@Security		ApiKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
		return
	}

	out, err := h.generate.Generate(r.Context(), CallerID(r.Context()), app.GenerateInput{
		Prompt:      req.Prompt,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		ID:           out.ID,
		Model:        out.Model,
		Text:         out.Text,
		Tier:         string(out.Tier),
		Usage:        TokenUsage{InputTokens: out.InputTokens, OutputTokens: out.OutputTokens},
		Provider:     out.Provider,
		Tagline:      out.Tagline,
		UsageTracked: out.UsageTracked,
		CreatedAt:    out.CreatedAt,
	})
}

// ListModels lists every served model with the lowest tier that grants it.
//
//	@Summary		List models
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	ModelsResponse
//	@Failure		401	{object}	jsonapi.Document	"Missing API key"
//	@Security		ApiKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/models [get]
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	listings := h.engine.ListModels()
	models := make([]ModelResponse, 0, len(listings))
	for _, m := range listings {
		models = append(models, ModelResponse{
			ID:           m.ID,
			Name:         m.Name,
			Description:  m.Description,
			Capabilities: m.Capabilities,
			TierRequired: string(m.TierRequired),
		})
	}

	writeJSON(w, http.StatusOK, ModelsResponse{
		Platform:    app.ProviderName,
		Tagline:     app.ProviderTagline,
		Models:      models,
		TotalModels: len(models),
	})
}

// GetSubscription returns the caller's current-period usage summary.
//
//	@Summary		Current subscription and usage
//	@Tags			Subscription
//	@Produce		json
//	@Success		200	{object}	SubscriptionResponse
//	@Failure		401	{object}	jsonapi.Document	"Missing API key"
//	@Failure		404	{object}	jsonapi.Document	"No subscription"
//	@Security		ApiKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/subscription [get]
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.UsageSummary(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse(s))
}

func subscriptionResponse(s app.Summary) SubscriptionResponse {
	resp := SubscriptionResponse{
		Platform:      app.ProviderName,
		Tagline:       app.ProviderTagline,
		Tier:          string(s.Tier),
		Status:        string(s.Status),
		Period:        string(s.Period),
		CallsUsed:     s.CallsUsed,
		Quota:         s.Quota,
		Remaining:     s.Remaining,
		PercentUsed:   s.PercentUsed,
		WarningLevel:  s.WarningLevel.String(),
		ModelsUsed:    s.ModelsUsed,
		SupportLevel:  s.SupportLevel,
		SLAUptime:     s.SLAUptime,
		NextBillingAt: s.NextBillingAt,
	}
	if resp.ModelsUsed == nil {
		resp.ModelsUsed = map[string]int64{}
	}
	if !s.LastUpdated.IsZero() {
		lu := s.LastUpdated
		resp.LastUpdated = &lu
	}
	return resp
}

// RequestUpgrade validates an upgrade and acknowledges it as pending payment.
// The tier is also accepted as the new_tier query parameter.
//
//	@Summary		Request a tier upgrade
//	@Tags			Subscription
//	@Accept			json
//	@Produce		json
//	@Param			request		body		UpgradeRequest	false	"Requested tier"
//	@Param			new_tier	query		string			false	"Requested tier"
//	@Success		202			{object}	UpgradeResponse
//	@Failure		400			{object}	jsonapi.Document	"Invalid tier or not an upgrade"
//	@Failure		401			{object}	jsonapi.Document	"Missing API key"
//	@Failure		404			{object}	jsonapi.Document	"No subscription"
//	@Security		ApiKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/subscription/upgrade [post]
func (h *Handler) RequestUpgrade(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("new_tier")
	if requested == "" {
		var req UpgradeRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()))
			return
		}
		requested = req.Tier
	}

	res, err := h.engine.RequestUpgrade(r.Context(), CallerID(r.Context()), requested)
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	if !res.Accepted {
		writeAppError(w, res.Denial, h.logger)
		return
	}

	writeJSON(w, http.StatusAccepted, UpgradeResponse{
		Platform:          app.ProviderName,
		Tagline:           app.ProviderTagline,
		Message:           fmt.Sprintf("Upgrade request from %s to %s received", res.CurrentTier, res.RequestedTier),
		CurrentTier:       string(res.CurrentTier),
		RequestedTier:     string(res.RequestedTier),
		Status:            res.Status,
		PriceMonthly:      dollars(res.PriceMonthly),
		PriceMonthlyCents: res.PriceMonthly,
		Currency:          tier.Currency,
		NextSteps:         "You will receive payment instructions; the new tier applies once payment is confirmed",
	})
}

// Pricing lists every tier with its price and entitlements.
//
//	@Summary		Pricing tiers
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	PricingResponse
//	@Router			/v1/pricing [get]
func (h *Handler) Pricing(w http.ResponseWriter, r *http.Request) {
	infos := h.engine.ListTiers()
	rows := make([]PricingTier, 0, len(infos))
	for _, ti := range infos {
		ent := ti.Entitlements
		rows = append(rows, PricingTier{
			Tier:              string(ti.Tier),
			Name:              ti.DisplayName,
			PriceMonthly:      dollars(ti.PriceMonthly),
			PriceMonthlyCents: ti.PriceMonthly,
			Features: TierFeatures{
				MonthlyAPICalls:      ent.MonthlyQuota,
				AvailableModels:      len(ent.AllowedModels),
				ModelNames:           ent.AllowedModels,
				SupportLevel:         ent.SupportLevel,
				SLAUptime:            ent.SLAUptime,
				CustomModels:         ent.CustomModels,
				PrioritySupport:      ent.PrioritySupport,
				DedicatedSupport:     ent.DedicatedSupport,
				WhiteGloveOnboarding: ent.WhiteGloveOnboarding,
			},
		})
	}

	writeJSON(w, http.StatusOK, PricingResponse{
		Platform:     app.ProviderName,
		Tagline:      app.ProviderTagline,
		PricingTiers: rows,
		BillingCycle: "monthly",
		Currency:     tier.Currency,
	})
}

func dollars(cents int64) float64 {
	return float64(cents) / 100
}

// decodeJSON reads a bounded JSON body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
