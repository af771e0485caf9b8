package store

import (
	"context"
	"database/sql"

	"cyberguard-portal/core/geo"
)

// Location is a geocoded point attached to an incident report.
type Location struct {
	Latitude     float64
	Longitude    float64
	Address      string
	City         string
	Region       string
	Country      string
	LocationType string
}

type LocationsStore interface {
	// InsertTx writes the location inside the caller's transaction and
	// returns the new row id.
	InsertTx(ctx context.Context, tx *sql.Tx, loc *Location) (int64, error)
	// References loads the reference place table used for nearest-city
	// resolution.
	References(ctx context.Context) ([]geo.ReferencePlace, error)
}

type locationsStore struct {
	db *DB
}

func NewLocationsStore(db *DB) LocationsStore {
	return &locationsStore{db: db}
}

func (s *locationsStore) InsertTx(ctx context.Context, tx *sql.Tx, loc *Location) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO locations (latitude, longitude, address, city, region, country, location_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		loc.Latitude, loc.Longitude, loc.Address, loc.City, loc.Region, loc.Country, loc.LocationType)
	if err != nil {
		return 0, &QueryError{Query: "insert location", Err: err}
	}
	return res.LastInsertId()
}

func (s *locationsStore) References(ctx context.Context) ([]geo.ReferencePlace, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, region, latitude, longitude FROM reference_places ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []geo.ReferencePlace
	for rows.Next() {
		var p geo.ReferencePlace
		if err := rows.Scan(&p.Name, &p.Region, &p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
