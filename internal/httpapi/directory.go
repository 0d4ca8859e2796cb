package httpapi

import (
	"context"
	"strings"

	"github.com/yshirakawa/station-fit/internal/catalog"
	"github.com/yshirakawa/station-fit/internal/domain"
)

// StationDirectory backs the read-only station browsing endpoints.
type StationDirectory interface {
	List(ctx context.Context, limit, offset int, f catalog.StationFilter) ([]domain.Station, int, error)
	Get(ctx context.Context, id string) (domain.Station, bool, error)
}

// SQLiteDirectory serves the browsing API from the SQLite catalog, which
// supports filtered and sorted listings.
type SQLiteDirectory struct {
	Store *catalog.SQLiteStore
}

func (d *SQLiteDirectory) List(ctx context.Context, limit, offset int, f catalog.StationFilter) ([]domain.Station, int, error) {
	return d.Store.ListStations(limit, offset, f)
}

func (d *SQLiteDirectory) Get(ctx context.Context, id string) (domain.Station, bool, error) {
	return d.Store.GetStation(id)
}

// CatalogDirectory serves the browsing API straight from the in-memory
// station catalog. Used when SQLite is not configured, and in tests.
type CatalogDirectory struct {
	Catalog *catalog.StationCatalog
}

func (d *CatalogDirectory) List(ctx context.Context, limit, offset int, f catalog.StationFilter) ([]domain.Station, int, error) {
	matched := make([]domain.Station, 0, d.Catalog.Len())
	for _, st := range d.Catalog.Stations() {
		if !matchesFilter(st, f) {
			continue
		}
		matched = append(matched, st)
	}

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (d *CatalogDirectory) Get(ctx context.Context, id string) (domain.Station, bool, error) {
	st, ok := d.Catalog.Station(id)
	return st, ok, nil
}

func matchesFilter(st domain.Station, f catalog.StationFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.NameContains)); q != "" {
		if !strings.Contains(strings.ToLower(st.Name), q) &&
			!strings.Contains(strings.ToLower(st.NameKana), q) {
			return false
		}
	}
	if f.MaxRentLevel > 0 && st.Features.Housing.RentLevel > f.MaxRentLevel {
		return false
	}
	if f.MinConnections > 0 && st.Features.Transport.Connections < f.MinConnections {
		return false
	}
	return true
}
