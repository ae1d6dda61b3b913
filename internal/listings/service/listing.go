package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	listingserrors "staybook/internal/listings/errors"
	"staybook/internal/listings/repository"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
	"staybook/pkg/validation"
)

type ListingService interface {
	GetByID(ctx context.Context, id uint64) (*model.Listing, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Listing, int64, error)
	Upsert(ctx context.Context, listing *model.Listing) error
}

// OwnerInvalidator drops cached owner lookups. Optional.
type OwnerInvalidator interface {
	Invalidate(ctx context.Context, id uint64)
}

type listingService struct {
	repo        repository.ListingRepository
	invalidator OwnerInvalidator
	validator   *validation.Validator
	cfg         *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	invalidator OwnerInvalidator,
	validator *validation.Validator,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:        repo,
		invalidator: invalidator,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *listingService) GetByID(ctx context.Context, id uint64) (*model.Listing, error) {
	if id == 0 {
		return nil, apperrors.InvalidInput("Listing ID must be positive")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", strconv.FormatUint(id, 10))
		}
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}

	decorate(listing)
	return listing, nil
}

func (s *listingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Listing, int64, error) {
	var count int64
	var listings []*model.Listing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Total(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count listings", "error", errCount)
			errCount = apperrors.Internal("Failed to count listings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		listings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list listings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve listings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for _, l := range listings {
		decorate(l)
	}
	return listings, count, nil
}

// Upsert records the current on-chain state of a listing. Hosts are stored
// lower-cased so owner comparisons are plain string equality.
func (s *listingService) Upsert(ctx context.Context, listing *model.Listing) error {
	listing.Host = sanitizer.NormalizeAddress(listing.Host)
	if listing.PayoutMode == "" {
		listing.PayoutMode = model.PayoutEscrow
	}

	if err := s.validator.Struct(listing); err != nil {
		s.cfg.Log.Warn("Listing validation failed", "listing_id", listing.ID, "error", err)
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Invalid listing", verrs.Details())
		}
		return apperrors.Validation("Invalid listing", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Upsert(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to upsert listing", "listing_id", listing.ID, "error", err)
		return apperrors.Internal("Failed to store listing", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, listing.ID)
	}

	s.cfg.Log.Info("Listing upserted",
		"listing_id", listing.ID,
		"host", listing.Host,
		"active", listing.Active,
		"payout_mode", listing.PayoutMode,
	)
	return nil
}

func decorate(listing *model.Listing) {
	listing.NightlyPriceDisplay = model.FormatUSDC(listing.NightlyPrice)
}
