package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrUserExists   = errors.New("username already taken")
	ErrUserNotFound = errors.New("user not found")
	ErrCarNotFound  = errors.New("car not found")
)

// User is an account row. PasswordHash never leaves the store layer.
type User struct {
	ID           int64  `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
}

// Car is a registered vehicle.
type Car struct {
	ID       int64  `json:"car_id"`
	UserID   int64  `json:"user_id"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Odometer int    `json:"odometer"`
}

// FleetCar is a car joined with its owner, for the fleet monitoring view.
type FleetCar struct {
	Car
	OwnerName string `json:"owner_name"`
}

// ContactSubmission is one message from the contact form.
type ContactSubmission struct {
	ID             int64     `json:"submission_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Message        string    `json:"message"`
	SubmissionTime time.Time `json:"submission_time"`
}

// Store wraps the Postgres connection for account, car, and contact data.
type Store struct {
	db *sql.DB
}

// NewStore connects to Postgres, applies pending migrations, and returns the
// store.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

// CreateUser inserts a new account and returns its id.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, fullName, email, mobile string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, full_name, email, mobile)
		 VALUES ($1, $2, $3, $4, $5) RETURNING user_id`,
		username, passwordHash, fullName, email, mobile).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUserByUsername loads a full account row including the password hash.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, COALESCE(full_name, ''), COALESCE(email, ''), COALESCE(mobile, '')
		 FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdateProfile updates the mutable account fields.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, fullName, email, mobile string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET full_name = $1, email = $2, mobile = $3 WHERE user_id = $4`,
		fullName, email, mobile, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddCar registers a vehicle for a user.
func (s *Store) AddCar(ctx context.Context, userID int64, make, model string, year, odometer int) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO cars (user_id, make, model, year, odometer)
		 VALUES ($1, $2, $3, $4, $5) RETURNING car_id`,
		userID, make, model, year, odometer).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add car: %w", err)
	}
	return id, nil
}

// ListCars returns a user's vehicles ordered by make then model.
func (s *Store) ListCars(ctx context.Context, userID int64) ([]Car, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT car_id, user_id, make, model, COALESCE(year, 0), COALESCE(odometer, 0)
		 FROM cars WHERE user_id = $1 ORDER BY make, model`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	cars := []Car{}
	for rows.Next() {
		var c Car
		if err := rows.Scan(&c.ID, &c.UserID, &c.Make, &c.Model, &c.Year, &c.Odometer); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// GetCar loads one car, scoped to its owner.
func (s *Store) GetCar(ctx context.Context, userID, carID int64) (*Car, error) {
	var c Car
	err := s.db.QueryRowContext(ctx,
		`SELECT car_id, user_id, make, model, COALESCE(year, 0), COALESCE(odometer, 0)
		 FROM cars WHERE car_id = $1 AND user_id = $2`, carID, userID).
		Scan(&c.ID, &c.UserID, &c.Make, &c.Model, &c.Year, &c.Odometer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}
	return &c, nil
}

// UpdateCar rewrites a car's details, scoped to its owner.
func (s *Store) UpdateCar(ctx context.Context, userID, carID int64, make, model string, year, odometer int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cars SET make = $1, model = $2, year = $3, odometer = $4
		 WHERE car_id = $5 AND user_id = $6`,
		make, model, year, odometer, carID, userID)
	if err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCarNotFound
	}
	return nil
}

// DeleteCar removes a car, scoped to its owner.
func (s *Store) DeleteCar(ctx context.Context, userID, carID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cars WHERE car_id = $1 AND user_id = $2`, carID, userID)
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCarNotFound
	}
	return nil
}

// ListFleet returns every registered car joined with its owner's name.
func (s *Store) ListFleet(ctx context.Context) ([]FleetCar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cars.car_id, cars.user_id, cars.make, cars.model,
		        COALESCE(cars.year, 0), COALESCE(cars.odometer, 0),
		        COALESCE(users.full_name, users.username)
		 FROM cars
		 JOIN users ON cars.user_id = users.user_id
		 ORDER BY users.full_name, cars.make, cars.model`)
	if err != nil {
		return nil, fmt.Errorf("list fleet: %w", err)
	}
	defer rows.Close()

	fleet := []FleetCar{}
	for rows.Next() {
		var fc FleetCar
		if err := rows.Scan(&fc.ID, &fc.UserID, &fc.Make, &fc.Model, &fc.Year, &fc.Odometer, &fc.OwnerName); err != nil {
			return nil, fmt.Errorf("scan fleet car: %w", err)
		}
		fleet = append(fleet, fc)
	}
	return fleet, rows.Err()
}

// SaveContactSubmission records a contact form message.
func (s *Store) SaveContactSubmission(ctx context.Context, name, email, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_submissions (name, email, message) VALUES ($1, $2, $3)`,
		name, email, message)
	if err != nil {
		return fmt.Errorf("save contact submission: %w", err)
	}
	return nil
}

// ListContactSubmissions returns all contact messages, newest first.
func (s *Store) ListContactSubmissions(ctx context.Context) ([]ContactSubmission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT submission_id, name, email, message, submission_time
		 FROM contact_submissions ORDER BY submission_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	subs := []ContactSubmission{}
	for rows.Next() {
		var cs ContactSubmission
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Email, &cs.Message, &cs.SubmissionTime); err != nil {
			return nil, fmt.Errorf("scan contact submission: %w", err)
		}
		subs = append(subs, cs)
	}
	return subs, rows.Err()
}

func isUniqueViolation(err error) bool {
	// lib/pq unique_violation is SQLSTATE 23505.
	type sqlState interface{ SQLState() string }
	var st sqlState
	if errors.As(err, &st) {
		return st.SQLState() == "23505"
	}
	return false
}
