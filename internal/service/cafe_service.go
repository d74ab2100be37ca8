package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/cafeapi/internal/domain"
)

// cafeRepository is the subset of store.CafeStore that CafeService requires.
type cafeRepository interface {
	Create(ctx context.Context, c domain.NewCafe) (*domain.Cafe, error)
	GetByID(ctx context.Context, id int64) (*domain.Cafe, error)
	List(ctx context.Context) ([]*domain.Cafe, error)
	ListByLocation(ctx context.Context, location string) ([]*domain.Cafe, error)
	Random(ctx context.Context) (*domain.Cafe, error)
	Count(ctx context.Context) (int, error)
	UpdatePrice(ctx context.Context, id int64, price *string) error
	Delete(ctx context.Context, id int64) error
}

type CafeService struct {
	cafeStore cafeRepository
	apiKey    string
	logger    *slog.Logger
}

// NewCafeService returns a service whose deletes are authorized by apiKey.
// An empty apiKey rejects every delete.
func NewCafeService(cafeStore cafeRepository, apiKey string, logger *slog.Logger) *CafeService {
	return &CafeService{
		cafeStore: cafeStore,
		apiKey:    apiKey,
		logger:    logger,
	}
}

// RandomCafe returns ErrEmpty when there are no cafes to pick from.
func (s *CafeService) RandomCafe(ctx context.Context) (*domain.Cafe, error) {
	cafe, err := s.cafeStore.Random(ctx)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, domain.ErrEmpty
	}
	return cafe, nil
}

func (s *CafeService) ListCafes(ctx context.Context) ([]*domain.Cafe, error) {
	return s.cafeStore.List(ctx)
}

func (s *CafeService) CountCafes(ctx context.Context) (int, error) {
	return s.cafeStore.Count(ctx)
}

// SearchByLocation returns the cafes at exactly location. An empty result is
// not an error.
func (s *CafeService) SearchByLocation(ctx context.Context, location string) ([]*domain.Cafe, error) {
	return s.cafeStore.ListByLocation(ctx, location)
}

func (s *CafeService) AddCafe(ctx context.Context, c domain.NewCafe) (*domain.Cafe, error) {
	cafe, err := s.cafeStore.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("cafe added", "cafe_id", cafe.ID, "name", cafe.Name, "location", cafe.Location)
	return cafe, nil
}

// UpdatePrice overwrites the coffee price of cafe id. A nil price clears it.
func (s *CafeService) UpdatePrice(ctx context.Context, id int64, price *string) error {
	if err := s.cafeStore.UpdatePrice(ctx, id, price); err != nil {
		return err
	}
	s.logger.Info("cafe price updated", "cafe_id", id)
	return nil
}

// DeleteCafe removes cafe id when apiKey matches the configured key. The
// existence check comes first, so an unknown id is ErrNotFound whatever the
// key.
func (s *CafeService) DeleteCafe(ctx context.Context, id int64, apiKey string) error {
	cafe, err := s.cafeStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get cafe: %w", err)
	}
	if cafe == nil {
		return domain.ErrNotFound
	}

	if !s.authorized(apiKey) {
		s.logger.Warn("cafe delete rejected", "cafe_id", id)
		return domain.ErrForbidden
	}

	if err := s.cafeStore.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete cafe: %w", err)
	}
	s.logger.Info("cafe deleted", "cafe_id", id, "name", cafe.Name)
	return nil
}

func (s *CafeService) authorized(apiKey string) bool {
	if s.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.apiKey)) == 1
}
