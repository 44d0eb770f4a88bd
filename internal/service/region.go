package service

import (
	"context"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// RegionService resolves geographic points to supported regions.
type RegionService struct {
	regionRepo repository.RegionRepository
}

// NewRegionService creates a new RegionService.
func NewRegionService(regionRepo repository.RegionRepository) *RegionService {
	return &RegionService{regionRepo: regionRepo}
}

// RegionWithPoint returns the first enabled region whose polygon contains
// the point, or ErrRegionUnsupported.
func (s *RegionService) RegionWithPoint(ctx context.Context, point domain.GeoPoint) (*domain.Region, error) {
	regions, err := s.regionRepo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	for _, region := range regions {
		if containsPoint(region.Polygon, point) {
			return region, nil
		}
	}

	return nil, ErrRegionUnsupported
}

// containsPoint runs a ray-casting test of the point against the polygon.
func containsPoint(polygon []domain.GeoPoint, p domain.GeoPoint) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		a, b := polygon[i], polygon[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) &&
			p.Lng < (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}
