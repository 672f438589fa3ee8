package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/catering-ops/pkg/db"
)

// GetLocations retrieves a provider's service locations, primary first
func (d *DB) GetLocations(ctx context.Context, providerID string) ([]db.ServiceLocation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, provider_id, province, city, barangay, street, postal_code, landmark,
		       service_radius_km::float8, is_primary
		FROM service_locations
		WHERE provider_id = $1
		ORDER BY is_primary DESC, city, id
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []db.ServiceLocation
	for rows.Next() {
		var l db.ServiceLocation
		var street, postalCode, landmark *string
		if err := rows.Scan(&l.ID, &l.ProviderID, &l.Province, &l.City, &l.Barangay,
			&street, &postalCode, &landmark, &l.ServiceRadiusKm, &l.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		l.Street = deref(street)
		l.PostalCode = deref(postalCode)
		l.Landmark = deref(landmark)
		locations = append(locations, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

// InsertLocation inserts a location. A primary location demotes the current
// primary in the same transaction.
func (d *DB) InsertLocation(ctx context.Context, location *db.ServiceLocation) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		if location.IsPrimary {
			if err := clearPrimary(ctx, tx, location.ProviderID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO service_locations (id, provider_id, province, city, barangay, street, postal_code,
			                               landmark, service_radius_km, is_primary)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, location.ID, location.ProviderID, location.Province, location.City, location.Barangay,
			nullable(location.Street), nullable(location.PostalCode), nullable(location.Landmark),
			location.ServiceRadiusKm, location.IsPrimary)
		if err != nil {
			return fmt.Errorf("failed to insert location: %w", err)
		}
		return nil
	})
}

// UpdateLocation replaces a location's address and radius; is_primary is left alone
func (d *DB) UpdateLocation(ctx context.Context, location *db.ServiceLocation) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE service_locations
		SET province = $3, city = $4, barangay = $5, street = $6, postal_code = $7,
		    landmark = $8, service_radius_km = $9
		WHERE provider_id = $1 AND id = $2
	`, location.ProviderID, location.ID, location.Province, location.City, location.Barangay,
		nullable(location.Street), nullable(location.PostalCode), nullable(location.Landmark),
		location.ServiceRadiusKm)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return requireAffected(tag, "location", location.ID)
}

// DeleteLocation removes a location
func (d *DB) DeleteLocation(ctx context.Context, providerID, locationID string) error {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM service_locations WHERE provider_id = $1 AND id = $2
	`, providerID, locationID)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return requireAffected(tag, "location", locationID)
}

// SetPrimaryLocation makes locationID the only primary location of the provider
func (d *DB) SetPrimaryLocation(ctx context.Context, providerID, locationID string) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		if err := clearPrimary(ctx, tx, providerID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE service_locations SET is_primary = TRUE
			WHERE provider_id = $1 AND id = $2
		`, providerID, locationID)
		if err != nil {
			return fmt.Errorf("failed to set primary location: %w", err)
		}
		return requireAffected(tag, "location", locationID)
	})
}

func clearPrimary(ctx context.Context, tx pgx.Tx, providerID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE service_locations SET is_primary = FALSE
		WHERE provider_id = $1 AND is_primary
	`, providerID)
	if err != nil {
		return fmt.Errorf("failed to clear primary location: %w", err)
	}
	return nil
}
