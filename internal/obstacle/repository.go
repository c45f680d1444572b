package obstacle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for obstacle persistence: the
// classification catalog, the sensor report history, and operator-placed
// manual obstacles.
type Repository interface {
	// ListCatalog retrieves the obstacle classification catalog.
	ListCatalog(ctx context.Context) ([]CatalogEntry, error)

	// SaveReport appends a sensor report to the history and returns the
	// new row's event ID.
	SaveReport(ctx context.Context, r *Report, at time.Time) (int64, error)

	// GetReport retrieves a report by event ID, joined with its catalog
	// text and device name. Returns ErrReportNotFound if absent.
	GetReport(ctx context.Context, eventID int64) (*Report, error)

	// ListRecentReports retrieves the most recent reports, newest first.
	// A deviceID of 0 means all devices.
	ListRecentReports(ctx context.Context, deviceID int64, limit int) ([]Report, error)

	// CreateManual inserts a manual obstacle and returns its assigned ID.
	CreateManual(ctx context.Context, m *ManualObstacle) (int64, error)

	// GetManual retrieves a manual obstacle by ID.
	// Returns ErrManualNotFound if absent.
	GetManual(ctx context.Context, id int64) (*ManualObstacle, error)

	// ListManual retrieves manual obstacles. A deviceID of 0 means all devices.
	ListManual(ctx context.Context, deviceID int64) ([]ManualObstacle, error)

	// DeleteManual removes a manual obstacle by ID.
	// Returns ErrManualNotFound if absent.
	DeleteManual(ctx context.Context, id int64) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ListCatalog retrieves the obstacle classification catalog.
func (r *SQLiteRepository) ListCatalog(ctx context.Context) ([]CatalogEntry, error) {
	query := `
		SELECT status_obstaculo, status_texto
		FROM obstaculos
		ORDER BY status_obstaculo`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying obstacle catalog: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.Code, &e.Text); err != nil {
			return nil, fmt.Errorf("scanning catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog: %w", err)
	}
	return entries, nil
}

// SaveReport appends a sensor report to the history. A report without
// a measured distance is stored as 0, matching the column default.
func (r *SQLiteRepository) SaveReport(ctx context.Context, report *Report, at time.Time) (int64, error) {
	query := `
		INSERT INTO historial_obstaculos (id_dispositivo, status_obstaculo, distancia, ubicacion, fecha_hora)
		VALUES (?, ?, ?, ?, ?)`

	distance := 0.0
	if report.Distance != nil {
		distance = *report.Distance
	}
	result, err := r.db.ExecContext(ctx, query,
		report.DeviceID,
		report.Code,
		distance,
		nullableString(report.Location),
		at.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting obstacle report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading report insert id: %w", err)
	}
	return id, nil
}

// GetReport retrieves a report by event ID with its joined catalog text.
func (r *SQLiteRepository) GetReport(ctx context.Context, eventID int64) (*Report, error) {
	query := `
		SELECT h.id_evento, h.id_dispositivo, h.status_obstaculo, o.status_texto,
			h.distancia, h.ubicacion, d.nombre_dispositivo, h.fecha_hora
		FROM historial_obstaculos h
		JOIN obstaculos o ON o.status_obstaculo = h.status_obstaculo
		JOIN dispositivos d ON d.id_dispositivo = h.id_dispositivo
		WHERE h.id_evento = ?`

	row := r.db.QueryRowContext(ctx, query, eventID)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("querying report by id: %w", err)
	}
	return report, nil
}

// ListRecentReports retrieves the most recent reports, newest first.
func (r *SQLiteRepository) ListRecentReports(ctx context.Context, deviceID int64, limit int) ([]Report, error) {
	query := `
		SELECT h.id_evento, h.id_dispositivo, h.status_obstaculo, o.status_texto,
			h.distancia, h.ubicacion, d.nombre_dispositivo, h.fecha_hora
		FROM historial_obstaculos h
		JOIN obstaculos o ON o.status_obstaculo = h.status_obstaculo
		JOIN dispositivos d ON d.id_dispositivo = h.id_dispositivo`

	args := []any{}
	if deviceID != 0 {
		query += " WHERE h.id_dispositivo = ?"
		args = append(args, deviceID)
	}
	query += " ORDER BY h.id_evento DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

// CreateManual inserts a manual obstacle.
func (r *SQLiteRepository) CreateManual(ctx context.Context, m *ManualObstacle) (int64, error) {
	query := `
		INSERT INTO obstaculos_manuales (id_dispositivo, nombre, ubicacion, descripcion, fecha_creacion)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		m.DeviceID,
		m.Name,
		nullableString(m.Location),
		nullableString(m.Description),
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting manual obstacle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading manual obstacle insert id: %w", err)
	}
	return id, nil
}

// GetManual retrieves a manual obstacle by ID.
func (r *SQLiteRepository) GetManual(ctx context.Context, id int64) (*ManualObstacle, error) {
	query := `
		SELECT id_obstaculo, id_dispositivo, nombre, ubicacion, descripcion, fecha_creacion
		FROM obstaculos_manuales
		WHERE id_obstaculo = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	m, err := scanManual(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrManualNotFound
		}
		return nil, fmt.Errorf("querying manual obstacle by id: %w", err)
	}
	return m, nil
}

// ListManual retrieves manual obstacles, newest first.
func (r *SQLiteRepository) ListManual(ctx context.Context, deviceID int64) ([]ManualObstacle, error) {
	query := `
		SELECT id_obstaculo, id_dispositivo, nombre, ubicacion, descripcion, fecha_creacion
		FROM obstaculos_manuales`

	args := []any{}
	if deviceID != 0 {
		query += " WHERE id_dispositivo = ?"
		args = append(args, deviceID)
	}
	query += " ORDER BY id_obstaculo DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying manual obstacles: %w", err)
	}
	defer rows.Close()

	var obstacles []ManualObstacle
	for rows.Next() {
		m, err := scanManual(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning manual obstacle: %w", err)
		}
		obstacles = append(obstacles, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manual obstacles: %w", err)
	}
	return obstacles, nil
}

// DeleteManual removes a manual obstacle by ID.
func (r *SQLiteRepository) DeleteManual(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM obstaculos_manuales WHERE id_obstaculo = ?", id)
	if err != nil {
		return fmt.Errorf("deleting manual obstacle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrManualNotFound
	}
	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(scanner rowScanner) (*Report, error) {
	var r Report
	var distance sql.NullFloat64
	var location sql.NullString

	err := scanner.Scan(&r.EventID, &r.DeviceID, &r.Code, &r.Text,
		&distance, &location, &r.DeviceName, &r.Timestamp)
	if err != nil {
		return nil, err
	}

	if distance.Valid {
		r.Distance = &distance.Float64
	}
	if location.Valid {
		r.Location = &location.String
	}
	return &r, nil
}

func scanManual(scanner rowScanner) (*ManualObstacle, error) {
	var m ManualObstacle
	var location, description sql.NullString

	err := scanner.Scan(&m.ID, &m.DeviceID, &m.Name, &location, &description, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if location.Valid {
		m.Location = &location.String
	}
	if description.Valid {
		m.Description = &description.String
	}
	return &m, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
