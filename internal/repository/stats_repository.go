package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"carhive/api/internal/models"
)

// StatsRepository serves the admin dashboard aggregates.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) CountBookings(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StatsRepository) TopProviders(ctx context.Context, limit int) ([]models.ProviderBookingCount, error) {
	const query = `
		SELECT b.provider_id, p.name, COUNT(*) AS total
		FROM bookings b
		JOIN providers p ON p.id = b.provider_id
		GROUP BY b.provider_id, p.name
		ORDER BY total DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]models.ProviderBookingCount, 0, limit)
	for rows.Next() {
		var pc models.ProviderBookingCount
		if err := rows.Scan(&pc.ProviderID, &pc.ProviderName, &pc.Bookings); err != nil {
			return nil, err
		}
		top = append(top, pc)
	}
	return top, rows.Err()
}

func (r *StatsRepository) TopCarTypes(ctx context.Context, limit int) ([]models.CarTypeCount, error) {
	const query = `
		SELECT type, COUNT(*) AS total
		FROM cars
		GROUP BY type
		ORDER BY total DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]models.CarTypeCount, 0, limit)
	for rows.Next() {
		var tc models.CarTypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		top = append(top, tc)
	}
	return top, rows.Err()
}

func (r *StatsRepository) FinanceTotals(ctx context.Context) (income float64, outcome float64, err error) {
	const query = `SELECT COALESCE(SUM(income), 0), COALESCE(SUM(outcome), 0) FROM providers`
	if err := r.pool.QueryRow(ctx, query).Scan(&income, &outcome); err != nil {
		return 0, 0, err
	}
	return income, outcome, nil
}
