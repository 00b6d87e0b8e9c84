package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carhive/api/internal/authz"
	"carhive/api/internal/models"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrQuotaExceeded   = errors.New("active booking quota exceeded")
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `b.id, b.user_id, b.car_id, b.provider_id, b.pickup_location, b.return_location,
	b.pickup_date, b.return_date, b.status, b.created_at`

const bookingDetailQuery = `
	SELECT ` + bookingColumns + `,
		p.name, p.street, p.city, p.telephone,
		c.name, c.type, c.plate_number, c.price_per_day,
		u.name, u.email
	FROM bookings b
	JOIN providers p ON p.id = b.provider_id
	JOIN cars c ON c.id = b.car_id
	JOIN users u ON u.id = b.user_id
`

func scanBookingDetail(row pgx.Row) (models.BookingDetail, error) {
	var (
		d      models.BookingDetail
		street string
		city   string
	)
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.CarID,
		&d.ProviderID,
		&d.PickupLocation,
		&d.ReturnLocation,
		&d.PickupDate,
		&d.ReturnDate,
		&d.Status,
		&d.CreatedAt,
		&d.ProviderName,
		&street,
		&city,
		&d.ProviderTelephone,
		&d.CarName,
		&d.CarType,
		&d.CarPlateNumber,
		&d.CarPricePerDay,
		&d.UserName,
		&d.UserEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.BookingDetail{}, ErrBookingNotFound
		}
		return models.BookingDetail{}, err
	}
	d.ProviderAddress = street
	if city != "" {
		if d.ProviderAddress != "" {
			d.ProviderAddress += ", "
		}
		d.ProviderAddress += city
	}
	return d, nil
}

// CreateWithinQuota counts the requester's active bookings and inserts in a
// single transaction. A per-user advisory lock serializes concurrent creates
// for the same account; row locks alone would not block a concurrent insert.
func (r *BookingRepository) CreateWithinQuota(ctx context.Context, booking models.Booking, maxActive int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, booking.UserID); err != nil {
		return err
	}

	const countQuery = `
		SELECT COUNT(*) FROM bookings
		WHERE user_id = $1 AND status IN ('pending', 'confirmed')
	`
	var active int
	if err := tx.QueryRow(ctx, countQuery, booking.UserID).Scan(&active); err != nil {
		return err
	}
	if active >= maxActive {
		return ErrQuotaExceeded
	}

	const insertQuery = `
		INSERT INTO bookings (
			id, user_id, car_id, provider_id, pickup_location, return_location,
			pickup_date, return_date, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()
		)
	`
	if _, err := tx.Exec(ctx, insertQuery,
		booking.ID,
		booking.UserID,
		booking.CarID,
		booking.ProviderID,
		booking.PickupLocation,
		booking.ReturnLocation,
		booking.PickupDate,
		booking.ReturnDate,
		booking.Status,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	const query = `
		SELECT id, user_id, car_id, provider_id, pickup_location, return_location,
			pickup_date, return_date, status, created_at
		FROM bookings WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var b models.Booking
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.CarID,
		&b.ProviderID,
		&b.PickupLocation,
		&b.ReturnLocation,
		&b.PickupDate,
		&b.ReturnDate,
		&b.Status,
		&b.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Booking{}, ErrBookingNotFound
		}
		return models.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepository) GetDetailByID(ctx context.Context, id string) (models.BookingDetail, error) {
	const query = bookingDetailQuery + ` WHERE b.id = $1`
	return scanBookingDetail(r.pool.QueryRow(ctx, query, id))
}

// List returns enriched bookings visible under scope, newest first. An empty
// scope means all bookings.
func (r *BookingRepository) List(ctx context.Context, scope authz.BookingScope) ([]models.BookingDetail, error) {
	const query = bookingDetailQuery + `
		WHERE ($1 = '' OR b.user_id = $1)
		ORDER BY b.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, scope.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]models.BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *BookingRepository) Update(ctx context.Context, booking models.Booking) error {
	const query = `
		UPDATE bookings
		SET pickup_location = $2, return_location = $3, pickup_date = $4,
			return_date = $5, status = $6
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.PickupLocation,
		booking.ReturnLocation,
		booking.PickupDate,
		booking.ReturnDate,
		booking.Status,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM bookings WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM bookings
		WHERE user_id = $1 AND status IN ('pending', 'confirmed')
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
