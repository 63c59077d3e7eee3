package marketplace

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/showroom/handler"
	"github.com/dmitrymomot/showroom/pkg/auth"
	"github.com/dmitrymomot/showroom/pkg/binder"
	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/file"
	"github.com/dmitrymomot/showroom/pkg/gallery"
	"github.com/dmitrymomot/showroom/pkg/listing"
	"github.com/dmitrymomot/showroom/pkg/showroom"
	"github.com/dmitrymomot/showroom/pkg/subscription"
	"github.com/dmitrymomot/showroom/pkg/validator"
)

var (
	errCreationInProgress = handler.NewHTTPError(http.StatusConflict, "CREATION_IN_PROGRESS")
	errNotOwner           = handler.NewHTTPError(http.StatusForbidden, "NOT_LISTING_OWNER")
	errMissingFile        = handler.NewHTTPError(http.StatusBadRequest, "MISSING_FILE")
	errBillingRequired    = handler.NewHTTPError(http.StatusForbidden, "BILLING_REQUIRED")
)

// refusal is an entitlement denial rendered with its details.
type refusal struct {
	err    error
	status int
	body   map[string]any
}

func (r *refusal) Error() string           { return r.err.Error() }
func (r *refusal) Unwrap() error           { return r.err }
func (r *refusal) StatusCode() int         { return r.status }
func (r *refusal) Payload() map[string]any { return r.body }

// mapError translates domain errors into handler errors. Anything it does not
// recognise stays a 500.
func mapError(err error) error {
	var quotaErr *entitlement.QuotaExceededError
	if errors.As(err, &quotaErr) {
		return &refusal{err: err, status: http.StatusForbidden, body: map[string]any{
			"error":   quotaErr.Code(),
			"limit":   quotaErr.Limit,
			"current": quotaErr.Current,
		}}
	}

	var featureErr *entitlement.FeatureNotAvailableError
	if errors.As(err, &featureErr) {
		return &refusal{err: err, status: http.StatusForbidden, body: map[string]any{
			"error":   entitlement.CodeFeatureNotAvailable,
			"feature": featureErr.Feature,
			"tier":    featureErr.Tier,
		}}
	}

	if errs, ok := validator.Extract(err); ok {
		v := handler.NewValidationError()
		for _, e := range errs {
			v.Add(e.Field, e.Message)
		}
		return errors.Join(v, err)
	}

	switch {
	case errors.Is(err, entitlement.ErrSubscriptionUnavailable),
		errors.Is(err, entitlement.ErrListingCountUnavailable),
		errors.Is(err, entitlement.ErrInvalidResourceCount),
		errors.Is(err, entitlement.ErrEntitlementsNotInContext):
		return errors.Join(handler.ErrServiceUnavailable, err)

	case errors.Is(err, listing.ErrCreationInProgress), errors.Is(err, gallery.ErrUploadInProgress):
		return errors.Join(errCreationInProgress, err)

	case errors.Is(err, listing.ErrListingNotFound), errors.Is(err, gallery.ErrImageNotFound),
		errors.Is(err, entitlement.ErrSubscriptionNotFound):
		return errors.Join(handler.ErrNotFound, err)

	case errors.Is(err, listing.ErrNotOwner):
		return errors.Join(errNotOwner, err)
	case errors.Is(err, subscription.ErrBillingRequired):
		return errors.Join(errBillingRequired, err)

	case errors.Is(err, subscription.ErrInvalidListingLimit):
		return validation("listing_limit", err)
	case errors.Is(err, subscription.ErrInvalidStatus):
		return validation("status", err)
	case errors.Is(err, subscription.ErrInvalidTier), errors.Is(err, entitlement.ErrUnknownTier):
		return validation("tier", err)
	case errors.Is(err, showroom.ErrInvalidProfile):
		return validation("profile", err)

	case errors.Is(err, file.ErrMIMETypeNotAllowed):
		return errors.Join(handler.ErrUnsupportedMediaType, err)
	case errors.Is(err, file.ErrFileTooLarge), errors.Is(err, binder.ErrRequestTooLarge):
		return errors.Join(handler.ErrRequestEntityTooLarge, err)
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return errors.Join(handler.ErrUnsupportedMediaType, err)
	case errors.Is(err, binder.ErrMissingFile):
		return errors.Join(errMissingFile, err)
	case errors.Is(err, binder.ErrFailedToParseForm):
		return errors.Join(handler.ErrBadRequest, err)

	case errors.Is(err, auth.ErrForbidden):
		return errors.Join(handler.ErrForbidden, err)
	case errors.Is(err, auth.ErrUnauthenticated):
		return errors.Join(handler.ErrUnauthorized, err)
	}
	return err
}

func validation(field string, err error) error {
	v := handler.NewValidationError()
	v.Add(field, err.Error())
	return errors.Join(v, err)
}
