package marketplace

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/handler"
	"github.com/dmitrymomot/showroom/pkg/auth"
	"github.com/dmitrymomot/showroom/pkg/binder"
	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/listing"
	"github.com/dmitrymomot/showroom/pkg/showroom"
	"github.com/dmitrymomot/showroom/pkg/validator"
)

var errInvalidID = handler.NewHTTPError(http.StatusBadRequest, "INVALID_ID")

type entitlementsResponse struct {
	Tier         entitlement.Tier         `json:"tier"`
	Capabilities entitlement.Capabilities `json:"capabilities"`
	Features     []entitlement.Feature    `json:"features"`
}

type subscriptionResponse struct {
	Tier         string             `json:"tier"`
	Status       string             `json:"status"`
	ListingLimit *entitlement.Limit `json:"listing_limit"`
	StartDate    time.Time          `json:"start_date"`
	EndDate      *time.Time         `json:"end_date,omitempty"`
}

func newSubscriptionResponse(s *entitlement.Subscription) subscriptionResponse {
	return subscriptionResponse{
		Tier:         s.Tier,
		Status:       s.Status,
		ListingLimit: s.ListingLimit,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
	}
}

type upgradeRequest struct {
	Tier string `json:"tier"`
}

type adminSubscriptionRequest struct {
	Tier   *string `json:"tier"`
	Status *string `json:"status"`
}

type billingRequest struct {
	CustomerID             string `json:"customer_id"`
	ProviderSubscriptionID string `json:"provider_subscription_id"`
}

type listingLimitRequest struct {
	ListingLimit *entitlement.Limit `json:"listing_limit"`
}

// callerID returns the authenticated user. Routes using it sit behind
// RequireAuth, so a missing identity is a wiring fault.
func callerID(ctx handler.Context) (uuid.UUID, error) {
	id, ok := auth.UserID(ctx)
	if !ok {
		return uuid.Nil, auth.ErrUnauthenticated
	}
	return id, nil
}

func pathID(ctx handler.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

func (a *api) entitlementsFor(ctx handler.Context, userID uuid.UUID) (entitlement.Entitlements, error) {
	if ent, ok := entitlement.FromContext(ctx); ok {
		return ent, nil
	}
	return a.Gateway.GetEntitlements(ctx, userID)
}

func (a *api) getEntitlements(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	ent, err := a.entitlementsFor(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(entitlementsResponse{
		Tier:         ent.Tier,
		Capabilities: ent.Capabilities,
		Features:     ent.Features(),
	})
}

func (a *api) getListingQuota(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	d, err := a.Gateway.CanCreateListing(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(d, handler.WithJSONMeta(map[string]any{"remaining": d.Remaining()}))
}

func (a *api) getSubscription(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	sub, err := a.Subscriptions.Register(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionResponse(sub))
}

func (a *api) upgrade(ctx handler.Context, req upgradeRequest) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	tier, err := entitlement.ParseTier(req.Tier)
	if err != nil {
		return handler.Error(err)
	}
	sub, err := a.Subscriptions.Upgrade(ctx, userID, tier)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionResponse(sub))
}

func (a *api) cancel(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	sub, err := a.Subscriptions.Cancel(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionResponse(sub))
}

func (a *api) getShowroom(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	p, err := a.Showrooms.Get(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(p)
}

func (a *api) updateShowroom(ctx handler.Context, req showroom.Update) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	p, err := a.Showrooms.Update(ctx, userID, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(p)
}

func (a *api) createListing(ctx handler.Context, req listing.CreateInput) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	l, err := a.Listings.Create(ctx, userID, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(l, handler.WithJSONStatus(http.StatusCreated))
}

func (a *api) getListing(ctx handler.Context, _ struct{}) handler.Response {
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	l, err := a.Listings.Get(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(l)
}

func (a *api) featureListing(ctx handler.Context, _ struct{}) handler.Response {
	return a.setFeatured(ctx, true)
}

func (a *api) unfeatureListing(ctx handler.Context, _ struct{}) handler.Response {
	return a.setFeatured(ctx, false)
}

func (a *api) setFeatured(ctx handler.Context, featured bool) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	l, err := a.Listings.SetFeatured(ctx, userID, id, featured)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(l)
}

func (a *api) markSold(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	l, err := a.Listings.MarkSold(ctx, userID, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(l)
}

func (a *api) uploadImage(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	fh, err := binder.File(ctx.Request(), "image", a.MaxUploadSize)
	if err != nil {
		return handler.Error(err)
	}
	img, err := a.Gallery.Upload(ctx, userID, id, fh)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(img, handler.WithJSONStatus(http.StatusCreated))
}

func (a *api) listImages(ctx handler.Context, _ struct{}) handler.Response {
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	images, err := a.Gallery.List(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(images, handler.WithJSONMeta(map[string]any{"count": len(images)}))
}

func (a *api) deleteImage(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := a.Gallery.Delete(ctx, userID, id); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

func (a *api) analytics(ctx handler.Context, _ struct{}) handler.Response {
	userID, err := callerID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	stats, err := a.Listings.Stats(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(stats)
}

func (a *api) adminGetSubscription(ctx handler.Context, _ struct{}) handler.Response {
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	sub, err := a.Subscriptions.Get(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionResponse(sub))
}

func (a *api) adminUpdateSubscription(ctx handler.Context, req adminSubscriptionRequest) handler.Response {
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if req.Tier == nil && req.Status == nil {
		v := handler.NewValidationError()
		v.Add("tier", "tier or status is required")
		return handler.Error(v)
	}

	sub, err := a.Subscriptions.Register(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	if req.Tier != nil {
		tier, err := entitlement.ParseTier(*req.Tier)
		if err != nil {
			return handler.Error(err)
		}
		if sub, err = a.Subscriptions.ChangeTier(ctx, id, tier); err != nil {
			return handler.Error(err)
		}
	}
	if req.Status != nil {
		if sub, err = a.Subscriptions.SetStatus(ctx, id, *req.Status); err != nil {
			return handler.Error(err)
		}
	}
	return handler.JSON(newSubscriptionResponse(sub))
}

func (a *api) adminSetListingLimit(ctx handler.Context, req listingLimitRequest) handler.Response {
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	sub, err := a.Subscriptions.SetListingLimit(ctx, id, req.ListingLimit)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionResponse(sub))
}

// adminSetBilling records the payment provider references that unlock
// self-service upgrades to paid tiers.
func (a *api) adminSetBilling(ctx handler.Context, req billingRequest) handler.Response {
	id, err := pathID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Apply(
		validator.RequiredString("customer_id", req.CustomerID),
		validator.RequiredString("provider_subscription_id", req.ProviderSubscriptionID),
	); err != nil {
		return handler.Error(err)
	}
	sub, err := a.Subscriptions.SetBillingReferences(ctx, id, req.CustomerID, req.ProviderSubscriptionID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionResponse(sub))
}
