package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"carhive/api/internal/models"
)

var (
	ErrCarNotFound    = errors.New("car not found")
	ErrDuplicatePlate = errors.New("plate number already registered")
)

type CarRepository struct {
	pool *pgxpool.Pool
}

func NewCarRepository(pool *pgxpool.Pool) *CarRepository {
	return &CarRepository{pool: pool}
}

const carDetailQuery = `
	SELECT c.id, c.provider_id, c.name, c.type, c.plate_number, c.price_per_day,
		c.available, c.created_at, p.name, p.telephone
	FROM cars c
	JOIN providers p ON p.id = c.provider_id
`

func scanCarDetail(row pgx.Row) (models.CarDetail, error) {
	var d models.CarDetail
	err := row.Scan(
		&d.ID,
		&d.ProviderID,
		&d.Name,
		&d.Type,
		&d.PlateNumber,
		&d.PricePerDay,
		&d.Available,
		&d.CreatedAt,
		&d.ProviderName,
		&d.ProviderTelephone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CarDetail{}, ErrCarNotFound
		}
		return models.CarDetail{}, err
	}
	return d, nil
}

func (r *CarRepository) Create(ctx context.Context, car models.Car) error {
	const query = `
		INSERT INTO cars (
			id, provider_id, name, type, plate_number, price_per_day, available, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		car.ID,
		car.ProviderID,
		car.Name,
		car.Type,
		car.PlateNumber,
		car.PricePerDay,
		car.Available,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicatePlate
		}
		return err
	}
	return nil
}

func (r *CarRepository) GetByID(ctx context.Context, id string) (models.CarDetail, error) {
	const query = carDetailQuery + ` WHERE c.id = $1`
	return scanCarDetail(r.pool.QueryRow(ctx, query, id))
}

func (r *CarRepository) List(ctx context.Context) ([]models.CarDetail, error) {
	const query = carDetailQuery + ` ORDER BY c.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]models.CarDetail, 0)
	for rows.Next() {
		d, err := scanCarDetail(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, d)
	}
	return cars, rows.Err()
}

// ListByProvider returns a provider's cars, optionally only the available
// ones.
func (r *CarRepository) ListByProvider(ctx context.Context, providerID string, availableOnly bool) ([]models.Car, error) {
	const query = `
		SELECT id, provider_id, name, type, plate_number, price_per_day, available, created_at
		FROM cars
		WHERE provider_id = $1 AND ($2 = false OR available = true)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, providerID, availableOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]models.Car, 0)
	for rows.Next() {
		var c models.Car
		if err := rows.Scan(
			&c.ID,
			&c.ProviderID,
			&c.Name,
			&c.Type,
			&c.PlateNumber,
			&c.PricePerDay,
			&c.Available,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (r *CarRepository) Update(ctx context.Context, car models.Car) error {
	const query = `
		UPDATE cars
		SET provider_id = $2, name = $3, type = $4, plate_number = $5,
			price_per_day = $6, available = $7
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		car.ID,
		car.ProviderID,
		car.Name,
		car.Type,
		car.PlateNumber,
		car.PricePerDay,
		car.Available,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicatePlate
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCarNotFound
	}
	return nil
}

// Delete removes the car and any bookings referencing it in one transaction.
func (r *CarRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE car_id = $1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCarNotFound
	}

	return tx.Commit(ctx)
}

func (r *CarRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM cars WHERE id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
