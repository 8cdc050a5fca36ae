package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/crowelogic/tiergate/app"
	"github.com/crowelogic/tiergate/domain/entitlement"
	"github.com/crowelogic/tiergate/domain/quota"
	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/pkg/jsonapi"
	"github.com/rs/zerolog"
)

// ErrorFor maps an engine error to its JSON:API error object.
// Unknown errors become 500 with a generic detail so store internals
// never reach callers.
func ErrorFor(err error) jsonapi.Error {
	var (
		noSub       *subscription.NoSubscriptionError
		notEntitled *entitlement.ModelNotEntitledError
		exceeded    *quota.QuotaExceededError
		invalid     *tier.InvalidTierError
		notUpgrade  *tier.NotAnUpgradeError
		validation  *app.ValidationError
		backendErr  *app.BackendError
	)

	switch {
	case errors.As(err, &noSub):
		return jsonapi.NewError(http.StatusNotFound, noSub.Code(), "Subscription Not Found").
			Detail(noSub.Error()).
			Meta("inactive", noSub.Inactive).
			Build()
	case errors.As(err, &notEntitled):
		b := jsonapi.NewError(http.StatusForbidden, notEntitled.Code(), "Model Not Entitled").
			Detail(notEntitled.Error()).
			Meta("model", notEntitled.Model).
			Meta("tier", string(notEntitled.Tier))
		if notEntitled.UpgradeResolves() {
			b.Meta("required_tier", string(notEntitled.RequiredTier))
		}
		return b.Build()
	case errors.As(err, &exceeded):
		return jsonapi.NewError(http.StatusTooManyRequests, exceeded.Code(), "Quota Exceeded").
			Detail(exceeded.Error()).
			Meta("tier", string(exceeded.Tier)).
			Meta("period", string(exceeded.Period)).
			Meta("used", exceeded.Used).
			Meta("quota", exceeded.Quota).
			Meta("resets_at", exceeded.Period.Shift(1).Start()).
			Build()
	case errors.As(err, &invalid):
		return jsonapi.NewError(http.StatusBadRequest, invalid.Code(), "Invalid Tier").
			Detail(invalid.Error()).
			Pointer("/tier").
			Build()
	case errors.As(err, &notUpgrade):
		return jsonapi.NewError(http.StatusBadRequest, notUpgrade.Code(), "Not An Upgrade").
			Detail(notUpgrade.Error()).
			Meta("current_tier", string(notUpgrade.Current)).
			Meta("requested_tier", string(notUpgrade.Requested)).
			Build()
	case errors.As(err, &validation):
		return jsonapi.ErrValidation(validation.Field, validation.Error())
	case errors.As(err, &backendErr):
		return jsonapi.ErrBadGateway("The generation backend failed to respond")
	default:
		return jsonapi.ErrInternal("")
	}
}

// writeAppError writes err as a JSON:API error and logs server-side failures.
func writeAppError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	e := ErrorFor(err)
	if e.StatusCode() >= 500 {
		logger.Error().Err(err).Str("status", e.Status).Msg("request failed")
	}

	var exceeded *quota.QuotaExceededError
	if errors.As(err, &exceeded) {
		w.Header().Set("X-Quota-Limit", exceeded.Quota.String())
		w.Header().Set("X-Quota-Remaining", "0")
		w.Header().Set("X-Quota-Reset", strconv.FormatInt(exceeded.Period.Shift(1).Start().Unix(), 10))
	}
	jsonapi.WriteError(w, e)
}
