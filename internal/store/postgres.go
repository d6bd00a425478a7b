package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"cartelera/internal/event"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore implements EventStore and BlacklistStore on Postgres.
type PostgresStore struct {
	db *sql.DB
}

var (
	_ EventStore     = (*PostgresStore)(nil)
	_ BlacklistStore = (*PostgresStore)(nil)
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const eventColumns = `id, title, description, date, end_date, venue_name, city, country,
	category, genre, price, price_max, currency, image_url, external_url,
	venue_capacity, source, external_id, created_at, updated_at`

// FindByFilters returns events matching the filters, ordered by date.
func (s *PostgresStore) FindByFilters(ctx context.Context, f Filters) ([]event.Event, error) {
	builder := psql.Select(eventColumns).From("events").OrderBy("date ASC")

	if !f.DateFrom.IsZero() {
		builder = builder.Where(sq.GtOrEq{"date": f.DateFrom})
	}
	if !f.DateTo.IsZero() {
		builder = builder.Where(sq.LtOrEq{"date": f.DateTo})
	}
	if f.City != "" {
		builder = builder.Where(sq.Eq{"city": f.City})
	}
	if f.Country != "" {
		builder = builder.Where(sq.Eq{"country": f.Country})
	}
	if f.Category != "" {
		builder = builder.Where(sq.Eq{"category": string(f.Category)})
	}
	if f.Source != "" {
		builder = builder.Where(sq.Eq{"source": f.Source})
	}
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0)
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// UpsertMany writes events in one batch, keyed on (source, external_id).
// Returns the number of rows written; row failures abort the remainder.
func (s *PostgresStore) UpsertMany(ctx context.Context, events []event.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	query := `INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (source, external_id) DO UPDATE
		SET title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    date = EXCLUDED.date,
		    end_date = EXCLUDED.end_date,
		    venue_name = EXCLUDED.venue_name,
		    city = EXCLUDED.city,
		    country = EXCLUDED.country,
		    category = EXCLUDED.category,
		    genre = EXCLUDED.genre,
		    price = EXCLUDED.price,
		    price_max = EXCLUDED.price_max,
		    currency = EXCLUDED.currency,
		    image_url = EXCLUDED.image_url,
		    external_url = EXCLUDED.external_url,
		    venue_capacity = EXCLUDED.venue_capacity,
		    updated_at = NOW()`

	written := 0
	for _, evt := range events {
		_, err := s.db.ExecContext(ctx, query,
			evt.ID, evt.Title, nullString(evt.Description), evt.Date, nullTime(evt.EndDate),
			nullString(evt.VenueName), evt.City, evt.Country, string(evt.Category),
			nullString(evt.Genre), nullInt(evt.Price), nullInt(evt.PriceMax), evt.Currency,
			nullString(evt.ImageURL), nullString(evt.ExternalURL), evt.VenueCapacity,
			evt.Source, nullString(evt.ExternalID), evt.CreatedAt, evt.UpdatedAt,
		)
		if err != nil {
			return written, fmt.Errorf("upserting event %q: %w", evt.Title, err)
		}
		written++
	}
	return written, nil
}

// FindByID returns the event with the given ID or ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (event.Event, error) {
	query, args, err := psql.Select(eventColumns).From("events").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return event.Event{}, fmt.Errorf("building query: %w", err)
	}
	row := s.db.QueryRowContext(ctx, query, args...)
	evt, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, ErrNotFound
	}
	return evt, err
}

// DeleteByID removes a single event.
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every event and returns the count.
func (s *PostgresStore) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events`)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored events.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// IsBlacklisted reports whether (source, externalID) is excluded.
func (s *PostgresStore) IsBlacklisted(ctx context.Context, source, externalID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blacklist WHERE source = $1 AND external_id = $2)`,
		source, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking blacklist: %w", err)
	}
	return exists, nil
}

// AddToBlacklist records a (source, externalID) exclusion.
func (s *PostgresStore) AddToBlacklist(ctx context.Context, source, externalID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blacklist (source, external_id, reason)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (source, external_id) DO NOTHING`,
		source, externalID, reason)
	if err != nil {
		return fmt.Errorf("adding to blacklist: %w", err)
	}
	return nil
}

// ClearAll empties the blacklist and returns the count removed.
func (s *PostgresStore) ClearAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blacklist`)
	if err != nil {
		return 0, fmt.Errorf("clearing blacklist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared rows: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		evt         event.Event
		description sql.NullString
		endDate     sql.NullTime
		venueName   sql.NullString
		genre       sql.NullString
		price       sql.NullInt64
		priceMax    sql.NullInt64
		imageURL    sql.NullString
		externalURL sql.NullString
		externalID  sql.NullString
		category    string
	)
	err := row.Scan(
		&evt.ID, &evt.Title, &description, &evt.Date, &endDate, &venueName,
		&evt.City, &evt.Country, &category, &genre, &price, &priceMax,
		&evt.Currency, &imageURL, &externalURL, &evt.VenueCapacity,
		&evt.Source, &externalID, &evt.CreatedAt, &evt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, err
		}
		return event.Event{}, fmt.Errorf("scanning event: %w", err)
	}

	evt.Description = description.String
	evt.VenueName = venueName.String
	evt.Genre = genre.String
	evt.ImageURL = imageURL.String
	evt.ExternalURL = externalURL.String
	evt.ExternalID = externalID.String
	evt.Category = event.Category(category)
	if endDate.Valid {
		t := endDate.Time
		evt.EndDate = &t
	}
	if price.Valid {
		n := int(price.Int64)
		evt.Price = &n
	}
	if priceMax.Valid {
		n := int(priceMax.Int64)
		evt.PriceMax = &n
	}
	return evt, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
