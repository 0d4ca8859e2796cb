package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/yshirakawa/station-fit/internal/domain"
)

// SQLiteStore persists the station catalog. The quiz core never touches it;
// it backs the read-only station browsing API.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) EnsureSchema() error {
	const createTable = `
CREATE TABLE IF NOT EXISTS stations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  name_kana TEXT NOT NULL DEFAULT '',
  lat REAL NOT NULL,
  lon REAL NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  rent_level INTEGER NOT NULL,
  connections INTEGER NOT NULL,
  features_json TEXT NOT NULL DEFAULT '{}'
);
`
	if _, err := s.db.Exec(createTable); err != nil {
		return err
	}

	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_stations_name ON stations(name);`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_stations_rent ON stations(rent_level);`); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) CountStations() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM stations`).Scan(&n)
	return n, err
}

// UpsertMany inserts the seed dataset without duplicating by id.
func (s *SQLiteStore) UpsertMany(stations []domain.Station) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT OR IGNORE INTO stations
(id, name, name_kana, lat, lon, description, rent_level, connections, features_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range stations {
		ft, err := json.Marshal(st.Features)
		if err != nil {
			return fmt.Errorf("marshal features for %s: %w", st.ID, err)
		}
		if _, err := stmt.Exec(
			st.ID, st.Name, st.NameKana, st.Lat, st.Lon, st.Description,
			st.Features.Housing.RentLevel, st.Features.Transport.Connections, string(ft),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetStation(id string) (domain.Station, bool, error) {
	var st domain.Station
	var ftJSON string

	err := s.db.QueryRow(`
SELECT id, name, name_kana, lat, lon, description, features_json
FROM stations WHERE id = ?
`, id).Scan(&st.ID, &st.Name, &st.NameKana, &st.Lat, &st.Lon, &st.Description, &ftJSON)
	if err == sql.ErrNoRows {
		return domain.Station{}, false, nil
	}
	if err != nil {
		return domain.Station{}, false, err
	}

	if err := json.Unmarshal([]byte(ftJSON), &st.Features); err != nil {
		return domain.Station{}, false, fmt.Errorf("unmarshal features for %s: %w", id, err)
	}
	return st, true, nil
}

// StationFilter narrows and orders a station listing.
type StationFilter struct {
	NameContains   string
	MaxRentLevel   int
	MinConnections int
	// Sort is one of "", "rent_asc", "rent_desc", "connections_desc".
	Sort string
}

func (s *SQLiteStore) ListStations(limit, offset int, f StationFilter) ([]domain.Station, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if strings.TrimSpace(f.NameContains) != "" {
		where = append(where, "(LOWER(name) LIKE '%' || LOWER(?) || '%' OR LOWER(name_kana) LIKE '%' || LOWER(?) || '%')")
		args = append(args, f.NameContains, f.NameContains)
	}
	if f.MaxRentLevel > 0 {
		where = append(where, "rent_level <= ?")
		args = append(args, f.MaxRentLevel)
	}
	if f.MinConnections > 0 {
		where = append(where, "connections >= ?")
		args = append(args, f.MinConnections)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := "ORDER BY id"
	switch f.Sort {
	case "rent_asc":
		orderSQL = "ORDER BY rent_level ASC, id"
	case "rent_desc":
		orderSQL = "ORDER BY rent_level DESC, id"
	case "connections_desc":
		orderSQL = "ORDER BY connections DESC, id"
	}

	countSQL := "SELECT COUNT(*) FROM stations " + whereSQL
	var total int
	if err := s.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rowsSQL := `
SELECT id, name, name_kana, lat, lon, description, features_json
FROM stations
` + whereSQL + "\n" + orderSQL + "\nLIMIT ? OFFSET ?"

	rowsArgs := append(append([]any{}, args...), limit, offset)

	rows, err := s.db.Query(rowsSQL, rowsArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Station
	for rows.Next() {
		var st domain.Station
		var ftJSON string
		if err := rows.Scan(&st.ID, &st.Name, &st.NameKana, &st.Lat, &st.Lon, &st.Description, &ftJSON); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(ftJSON), &st.Features); err != nil {
			return nil, 0, fmt.Errorf("unmarshal features for %s: %w", st.ID, err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}
