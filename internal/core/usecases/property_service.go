package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/ports"
)

// PropertyService handles listing-browsing business logic.
type PropertyService struct {
	properties ports.PropertyRepository
	cache      ports.CacheService
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(properties ports.PropertyRepository, cache ports.CacheService) *PropertyService {
	return &PropertyService{properties: properties, cache: cache}
}

// List returns a page of listings plus the total count.
func (s *PropertyService) List(ctx context.Context, offset, limit int) ([]domain.Property, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.properties.List(ctx, offset, limit)
}

// Search performs text search on listing titles and addresses.
func (s *PropertyService) Search(ctx context.Context, query string, limit int) ([]domain.Property, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("properties:search:%s:%d", query, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var properties []domain.Property
			if err := json.Unmarshal(data, &properties); err == nil {
				return properties, nil
			}
		}
	}

	properties, err := s.properties.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(properties); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return properties, nil
}

// FindNearby returns listings within radiusMeters of the given point.
func (s *PropertyService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Property, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("properties:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var properties []domain.Property
			if err := json.Unmarshal(data, &properties); err == nil {
				return properties, nil
			}
		}
	}

	properties, err := s.properties.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(properties); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return properties, nil
}

// GetByID returns a single listing.
func (s *PropertyService) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	cacheKey := "properties:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var property domain.Property
			if err := json.Unmarshal(data, &property); err == nil {
				return &property, nil
			}
		}
	}

	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(property); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return property, nil
}
