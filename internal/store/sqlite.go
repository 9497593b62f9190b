package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

// SQLite is a file-backed record store for the standalone deployment mode.
// It implements the same contract as the remote store, including server-side
// identity assignment.
type SQLite struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// NewSQLite opens (or creates) the database at path and ensures the schema.
func NewSQLite(path string, logger *zerolog.Logger) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLite{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("sqlite store initialized")
	return s, nil
}

func (s *SQLite) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS restaurants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			address TEXT,
			capacity INTEGER NOT NULL,
			owner_id TEXT,
			image TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			restaurant_id INTEGER NOT NULL,
			guest_name TEXT,
			guest_phone TEXT,
			user_id TEXT,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			party_size INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			confirmation_number TEXT NOT NULL,
			FOREIGN KEY(restaurant_id) REFERENCES restaurants(id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT,
			role TEXT NOT NULL,
			restaurant_id INTEGER,
			is_current BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_restaurant_date ON bookings(restaurant_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetAllRestaurants returns every restaurant.
func (s *SQLite) GetAllRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, capacity, owner_id, image FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		var address, ownerID, image sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &address, &r.Capacity, &ownerID, &image); err != nil {
			return nil, err
		}
		r.Address = address.String
		r.OwnerID = ownerID.String
		r.Image = image.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateRestaurant inserts the restaurant and returns it with its assigned ID.
func (s *SQLite) CreateRestaurant(ctx context.Context, r models.Restaurant) (models.Restaurant, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO restaurants (name, address, capacity, owner_id, image) VALUES (?, ?, ?, ?, ?)`,
		r.Name, r.Address, r.Capacity, r.OwnerID, r.Image)
	if err != nil {
		return models.Restaurant{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Restaurant{}, err
	}
	r.ID = id
	return r, nil
}

// UpdateRestaurant applies a partial update and returns the full record.
func (s *SQLite) UpdateRestaurant(ctx context.Context, id int64, updates RestaurantUpdate) (models.Restaurant, error) {
	var sets []string
	var args []any
	if updates.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *updates.Name)
	}
	if updates.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, *updates.Address)
	}
	if updates.Capacity != nil {
		sets = append(sets, "capacity = ?")
		args = append(args, *updates.Capacity)
	}
	if updates.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *updates.Image)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf("UPDATE restaurants SET %s WHERE id = ?", strings.Join(sets, ", "))
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return models.Restaurant{}, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return models.Restaurant{}, err
		}
		if affected == 0 {
			return models.Restaurant{}, fmt.Errorf("restaurant %d: %w", id, ErrNotFound)
		}
	}

	return s.getRestaurant(ctx, id)
}

func (s *SQLite) getRestaurant(ctx context.Context, id int64) (models.Restaurant, error) {
	var r models.Restaurant
	var address, ownerID, image sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, capacity, owner_id, image FROM restaurants WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &address, &r.Capacity, &ownerID, &image)
	if err == sql.ErrNoRows {
		return models.Restaurant{}, fmt.Errorf("restaurant %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Restaurant{}, err
	}
	r.Address = address.String
	r.OwnerID = ownerID.String
	r.Image = image.String
	return r, nil
}

// GetAllBookings returns every booking.
func (s *SQLite) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, restaurant_id, guest_name, guest_phone, user_id, date, time,
		        party_size, status, created_at, confirmation_number
		 FROM bookings ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	var guestName, guestPhone, userID sql.NullString
	err := row.Scan(&b.ID, &b.RestaurantID, &guestName, &guestPhone, &userID,
		&b.Date, &b.Time, &b.PartySize, &b.Status, &b.CreatedAt, &b.ConfirmationNumber)
	if err != nil {
		return models.Booking{}, err
	}
	b.GuestName = guestName.String
	b.GuestPhone = guestPhone.String
	b.UserID = userID.String
	return b, nil
}

// CreateBooking inserts the booking with server-assigned identity fields.
func (s *SQLite) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	if err := b.Validate(); err != nil {
		return models.Booking{}, err
	}
	b.ID = uuid.New().String()
	b.CreatedAt = time.Now()
	b.ConfirmationNumber = newConfirmationNumber()
	if b.Status == "" {
		b.Status = models.StatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, restaurant_id, guest_name, guest_phone, user_id,
		                       date, time, party_size, status, created_at, confirmation_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.RestaurantID, b.GuestName, b.GuestPhone, b.UserID,
		b.Date, b.Time, b.PartySize, b.Status, b.CreatedAt, b.ConfirmationNumber)
	if err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// DeleteBooking removes the record outright.
func (s *SQLite) DeleteBooking(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return nil
}

// RejectBooking sets the status to rejected and returns the updated record.
func (s *SQLite) RejectBooking(ctx context.Context, id string) (models.Booking, error) {
	return s.setStatus(ctx, id, models.StatusRejected)
}

// ConfirmBooking sets the status to confirmed and returns the updated record.
func (s *SQLite) ConfirmBooking(ctx context.Context, id string) (models.Booking, error) {
	return s.setStatus(ctx, id, models.StatusConfirmed)
}

func (s *SQLite) setStatus(ctx context.Context, id, status string) (models.Booking, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return models.Booking{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Booking{}, err
	}
	if affected == 0 {
		return models.Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, restaurant_id, guest_name, guest_phone, user_id, date, time,
		        party_size, status, created_at, confirmation_number
		 FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// CurrentUser returns the user flagged as the active session, or nil.
func (s *SQLite) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	var restaurantID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, restaurant_id FROM users WHERE is_current = 1 LIMIT 1`).
		Scan(&u.ID, &u.Name, &u.Role, &restaurantID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if restaurantID.Valid {
		id := restaurantID.Int64
		u.RestaurantID = &id
	}
	return &u, nil
}

// SetCurrentUser upserts the user and marks it as the active session.
func (s *SQLite) SetCurrentUser(ctx context.Context, u models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE users SET is_current = 0`); err != nil {
		return err
	}
	var restaurantID any
	if u.RestaurantID != nil {
		restaurantID = *u.RestaurantID
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, name, role, restaurant_id, is_current) VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, role = excluded.role,
		                               restaurant_id = excluded.restaurant_id, is_current = 1`,
		u.ID, u.Name, u.Role, restaurantID)
	if err != nil {
		return err
	}
	return tx.Commit()
}
