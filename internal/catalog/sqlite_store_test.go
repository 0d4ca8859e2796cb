package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yshirakawa/station-fit/internal/domain"
)

func seedStation(id, name string, rent, connections int) domain.Station {
	return domain.Station{
		ID:   id,
		Name: name,
		Features: domain.StationFeatures{
			Housing:    domain.HousingFeatures{RentLevel: rent, FamilyFriendly: 3, Quietness: 3},
			Transport:  domain.TransportFeatures{Connections: connections, Frequency: 3, TerminalAccess: 3},
			Commercial: domain.CommercialFeatures{Shopping: 3, Dining: 3},
			Culture:    domain.CultureFeatures{Parks: 3, Entertainment: 3, Community: 3},
			Price:      domain.PriceFeatures{CostOfLiving: rent, DiningCost: rent},
		},
	}
}

func newSeededStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "stations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.EnsureSchema())
	require.NoError(t, store.UpsertMany([]domain.Station{
		seedStation("st-a", "Asagaya", 2, 1),
		seedStation("st-b", "Shinjuku", 5, 12),
		seedStation("st-c", "Koenji", 2, 2),
	}))
	return store
}

func TestSQLiteStore_SeedAndCount(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t)

	n, err := store.CountStations()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// Re-seeding the same ids is a no-op.
	require.NoError(t, store.UpsertMany([]domain.Station{seedStation("st-a", "Renamed", 1, 1)}))
	n, err = store.CountStations()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	st, ok, err := store.GetStation("st-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Asagaya", st.Name)
}

func TestSQLiteStore_GetStation_RoundTripsFeatures(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t)

	st, ok, err := store.GetStation("st-b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, st.Features.Housing.RentLevel)
	require.Equal(t, 12, st.Features.Transport.Connections)

	_, ok, err = store.GetStation("st-nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLiteStore_ListStations_Filters(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t)

	t.Run("no filter lists all by id", func(t *testing.T) {
		stations, total, err := store.ListStations(20, 0, StationFilter{})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, stations, 3)
		require.Equal(t, "st-a", stations[0].ID)
	})

	t.Run("name match is case-insensitive", func(t *testing.T) {
		stations, total, err := store.ListStations(20, 0, StationFilter{NameContains: "shin"})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Equal(t, "st-b", stations[0].ID)
	})

	t.Run("max rent", func(t *testing.T) {
		stations, total, err := store.ListStations(20, 0, StationFilter{MaxRentLevel: 2})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, stations, 2)
	})

	t.Run("min connections sorted by connections", func(t *testing.T) {
		stations, total, err := store.ListStations(20, 0, StationFilter{
			MinConnections: 2,
			Sort:           "connections_desc",
		})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Equal(t, "st-b", stations[0].ID)
		require.Equal(t, "st-c", stations[1].ID)
	})

	t.Run("pagination keeps full count", func(t *testing.T) {
		stations, total, err := store.ListStations(1, 1, StationFilter{Sort: "rent_asc"})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, stations, 1)
		require.Equal(t, "st-c", stations[0].ID)
	})
}
