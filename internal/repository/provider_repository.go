package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carhive/api/internal/models"
)

var ErrProviderNotFound = errors.New("provider not found")

type ProviderRepository struct {
	pool *pgxpool.Pool
}

func NewProviderRepository(pool *pgxpool.Pool) *ProviderRepository {
	return &ProviderRepository{pool: pool}
}

// ProviderFilter narrows and pages the provider listing.
type ProviderFilter struct {
	City     string
	IsActive *bool
	SortBy   string // created_at | name | popularity_score
	Page     int
	Limit    int
}

const providerColumns = `id, name, telephone, street, city, state, postal_code, country,
	latitude, longitude, popularity_score, income, outcome, is_active, created_at`

func scanProvider(row pgx.Row) (models.Provider, error) {
	var p models.Provider
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Telephone,
		&p.Address.Street,
		&p.Address.City,
		&p.Address.State,
		&p.Address.PostalCode,
		&p.Address.Country,
		&p.Latitude,
		&p.Longitude,
		&p.PopularityScore,
		&p.Income,
		&p.Outcome,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Provider{}, ErrProviderNotFound
		}
		return models.Provider{}, err
	}
	return p, nil
}

func (r *ProviderRepository) Create(ctx context.Context, p models.Provider) error {
	const query = `
		INSERT INTO providers (
			id, name, telephone, street, city, state, postal_code, country,
			latitude, longitude, popularity_score, income, outcome, is_active, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Telephone,
		p.Address.Street,
		p.Address.City,
		p.Address.State,
		p.Address.PostalCode,
		p.Address.Country,
		p.Latitude,
		p.Longitude,
		p.PopularityScore,
		p.Income,
		p.Outcome,
		p.IsActive,
	)
	return err
}

func (r *ProviderRepository) GetByID(ctx context.Context, id string) (models.Provider, error) {
	const query = `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`
	return scanProvider(r.pool.QueryRow(ctx, query, id))
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "name ASC"
	case "popularity":
		return "popularity_score DESC"
	default:
		return "created_at DESC"
	}
}

// List applies the filter and returns one page plus the total match count for
// pagination markers.
func (r *ProviderRepository) List(ctx context.Context, filter ProviderFilter) ([]models.Provider, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit

	const where = `
		WHERE ($1 = '' OR city = $1)
		  AND ($2::boolean IS NULL OR is_active = $2)
	`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM providers `+where, filter.City, filter.IsActive).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM providers %s ORDER BY %s LIMIT $3 OFFSET $4`,
		providerColumns, where, sortColumn(filter.SortBy))

	rows, err := r.pool.Query(ctx, query, filter.City, filter.IsActive, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	providers := make([]models.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		providers = append(providers, p)
	}
	return providers, total, rows.Err()
}

func (r *ProviderRepository) Update(ctx context.Context, p models.Provider) error {
	const query = `
		UPDATE providers
		SET name = $2, telephone = $3, street = $4, city = $5, state = $6,
			postal_code = $7, country = $8, latitude = $9, longitude = $10,
			popularity_score = $11, income = $12, outcome = $13, is_active = $14
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Telephone,
		p.Address.Street,
		p.Address.City,
		p.Address.State,
		p.Address.PostalCode,
		p.Address.Country,
		p.Latitude,
		p.Longitude,
		p.PopularityScore,
		p.Income,
		p.Outcome,
		p.IsActive,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProviderNotFound
	}
	return nil
}

// Delete removes a provider, its cars and the bookings referencing either, in
// one transaction. A booking's car can belong to a different provider after a
// car reassignment, so bookings are matched on both columns.
func (r *ProviderRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const deleteBookings = `
		DELETE FROM bookings
		WHERE provider_id = $1
		   OR car_id IN (SELECT id FROM cars WHERE provider_id = $1)
	`
	if _, err := tx.Exec(ctx, deleteBookings, id); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cars WHERE provider_id = $1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProviderNotFound
	}

	return tx.Commit(ctx)
}

// ListLocations returns the map-pin projection of every provider.
func (r *ProviderRepository) ListLocations(ctx context.Context) ([]models.ProviderLocation, error) {
	const query = `
		SELECT id, name, telephone, street, city, state, postal_code, country, latitude, longitude
		FROM providers
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]models.ProviderLocation, 0)
	for rows.Next() {
		var loc models.ProviderLocation
		if err := rows.Scan(
			&loc.ID,
			&loc.Name,
			&loc.Telephone,
			&loc.Address.Street,
			&loc.Address.City,
			&loc.Address.State,
			&loc.Address.PostalCode,
			&loc.Address.Country,
			&loc.Latitude,
			&loc.Longitude,
		); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *ProviderRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
