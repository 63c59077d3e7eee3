package gallery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/file"
	"github.com/dmitrymomot/showroom/pkg/listing"
	"github.com/dmitrymomot/showroom/pkg/logger"
)

// DefaultMaxImageSize caps a single gallery upload.
const DefaultMaxImageSize = 10 << 20

// Gate resolves entitlements and records quota decisions. *entitlement.Gateway implements it.
type Gate interface {
	GetEntitlements(ctx context.Context, userID uuid.UUID) (entitlement.Entitlements, error)
	Observe(d entitlement.QuotaDecision)
}

// Listings resolves listing ownership. *listing.Service implements it.
type Listings interface {
	Owned(ctx context.Context, sellerID, id uuid.UUID) (*listing.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
}

type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type Service struct {
	images   Store
	listings Listings
	gate     Gate
	storage  file.Storage
	locker   Locker
	maxSize  int64
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocker serialises uploads per listing so concurrent uploads cannot
// overshoot maxGalleryImages.
func WithLocker(l Locker) ServiceOption {
	return func(s *Service) {
		s.locker = l
	}
}

func WithMaxImageSize(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

func NewService(images Store, listings Listings, gate Gate, storage file.Storage, opts ...ServiceOption) *Service {
	if images == nil || listings == nil || gate == nil || storage == nil {
		panic("gallery: images, listings, gate and storage are required")
	}
	s := &Service{
		images:   images,
		listings: listings,
		gate:     gate,
		storage:  storage,
		maxSize:  DefaultMaxImageSize,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload adds an image to a listing the seller owns. The seller's tier must
// allow gallery uploads and the listing must be below maxGalleryImages.
func (s *Service) Upload(ctx context.Context, sellerID, listingID uuid.UUID, fh *multipart.FileHeader) (*Image, error) {
	if _, err := s.listings.Owned(ctx, sellerID, listingID); err != nil {
		return nil, err
	}

	ent, err := s.gate.GetEntitlements(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := ent.Require(entitlement.FeatureGallery); err != nil {
		return nil, err
	}

	contentType, err := file.ValidateImage(fh, s.maxSize)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.Lock(ctx, "gallery:upload:"+listingID.String())
		if err != nil {
			return nil, errors.Join(ErrUploadInProgress, err)
		}
		defer release()
	}

	count, err := s.images.CountImages(ctx, listingID)
	if err != nil {
		return nil, err
	}
	decision := entitlement.CheckGalleryQuota(ent, count)
	s.gate.Observe(decision)
	if !decision.CanAddMore {
		return nil, decision.Err()
	}

	id := uuid.New()
	key := "listings/" + listingID.String() + "/" + id.String() + file.Extension(contentType)
	obj, err := s.storage.Save(ctx, fh, key)
	if err != nil {
		return nil, err
	}

	img := &Image{
		ID:          id,
		ListingID:   listingID,
		ObjectKey:   obj.Key,
		URL:         s.storage.URL(obj.Key),
		ContentType: contentType,
		SizeBytes:   obj.Size,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.images.Add(ctx, img); err != nil {
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), obj.Key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned gallery object",
				logger.Error(delErr),
				slog.String("key", obj.Key),
			)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "gallery image uploaded",
		logger.UserID(sellerID),
		logger.ListingID(listingID),
		slog.Int64("current", count+1),
		slog.String("limit", decision.Limit.String()),
		logger.Event("gallery.uploaded"),
	)
	return img, nil
}

// List returns the images of any listing.
func (s *Service) List(ctx context.Context, listingID uuid.UUID) ([]Image, error) {
	if _, err := s.listings.Get(ctx, listingID); err != nil {
		return nil, err
	}
	images, err := s.images.List(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for i := range images {
		images[i].URL = s.storage.URL(images[i].ObjectKey)
	}
	return images, nil
}

// Delete removes an image from a listing the seller owns. Deleting is allowed
// on every tier so downgraded sellers can trim their galleries.
func (s *Service) Delete(ctx context.Context, sellerID, imageID uuid.UUID) error {
	img, err := s.images.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if _, err := s.listings.Owned(ctx, sellerID, img.ListingID); err != nil {
		return err
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, img.ObjectKey); err != nil && !errors.Is(err, file.ErrFileNotFound) {
		s.logger.WarnContext(ctx, "gallery object left behind after delete",
			logger.Error(err),
			slog.String("key", img.ObjectKey),
		)
	}
	return nil
}
