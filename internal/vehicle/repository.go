package vehicle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device and command persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetDevice retrieves a device by its identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetDevice(ctx context.Context, id int64) (*Device, error)

	// ListDevices retrieves all registered devices.
	ListDevices(ctx context.Context) ([]Device, error)

	// CreateDevice inserts a new device and returns its assigned ID.
	// Returns ErrDeviceExists if a device with the same name already exists.
	CreateDevice(ctx context.Context, d *Device) (int64, error)

	// UpdateDevice modifies an existing device.
	// Returns ErrDeviceNotFound if the device does not exist.
	UpdateDevice(ctx context.Context, d *Device) error

	// DeleteDevice removes a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	DeleteDevice(ctx context.Context, id int64) error

	// DeviceExists reports whether a device with the given ID exists.
	DeviceExists(ctx context.Context, id int64) (bool, error)

	// ListOperations retrieves the movement operations catalog.
	ListOperations(ctx context.Context) ([]Operation, error)

	// SaveCommand appends a movement command to the history and returns
	// the new row's event ID.
	SaveCommand(ctx context.Context, deviceID int64, operation int, at time.Time) (int64, error)

	// GetCommand retrieves a command by event ID, joined with its catalog
	// text and device name. Returns ErrCommandNotFound if absent.
	GetCommand(ctx context.Context, eventID int64) (*Command, error)

	// ListRecentCommands retrieves the most recent commands, newest first.
	// A deviceID of 0 means all devices.
	ListRecentCommands(ctx context.Context, deviceID int64, limit int) ([]Command, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetDevice retrieves a device by its identifier.
func (r *SQLiteRepository) GetDevice(ctx context.Context, id int64) (*Device, error) {
	query := `
		SELECT id_dispositivo, cliente, nombre_dispositivo, descripcion, created_at, updated_at
		FROM dispositivos
		WHERE id_dispositivo = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return d, nil
}

// ListDevices retrieves all registered devices.
func (r *SQLiteRepository) ListDevices(ctx context.Context) ([]Device, error) {
	query := `
		SELECT id_dispositivo, cliente, nombre_dispositivo, descripcion, created_at, updated_at
		FROM dispositivos
		ORDER BY id_dispositivo`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// CreateDevice inserts a new device and returns its assigned ID.
func (r *SQLiteRepository) CreateDevice(ctx context.Context, d *Device) (int64, error) {
	now := time.Now().UTC().Format(TimeFormat)
	query := `
		INSERT INTO dispositivos (cliente, nombre_dispositivo, descripcion, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		nullableString(d.Client),
		d.Name,
		nullableString(d.Description),
		now,
		now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, ErrDeviceExists
		}
		return 0, fmt.Errorf("inserting device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading device insert id: %w", err)
	}
	return id, nil
}

// UpdateDevice modifies an existing device.
func (r *SQLiteRepository) UpdateDevice(ctx context.Context, d *Device) error {
	query := `
		UPDATE dispositivos
		SET cliente = ?, nombre_dispositivo = ?, descripcion = ?, updated_at = ?
		WHERE id_dispositivo = ?`

	result, err := r.db.ExecContext(ctx, query,
		nullableString(d.Client),
		d.Name,
		nullableString(d.Description),
		time.Now().UTC().Format(TimeFormat),
		d.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDeviceExists
		}
		return fmt.Errorf("updating device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// DeleteDevice removes a device by ID.
func (r *SQLiteRepository) DeleteDevice(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM dispositivos WHERE id_dispositivo = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// DeviceExists reports whether a device with the given ID exists.
func (r *SQLiteRepository) DeviceExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dispositivos WHERE id_dispositivo = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking device exists: %w", err)
	}
	return count > 0, nil
}

// ListOperations retrieves the movement operations catalog.
func (r *SQLiteRepository) ListOperations(ctx context.Context) ([]Operation, error) {
	query := `
		SELECT status_operacion, status_texto
		FROM operaciones
		ORDER BY status_operacion`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		if err := rows.Scan(&op.Code, &op.Text); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return ops, nil
}

// SaveCommand appends a movement command to the history.
func (r *SQLiteRepository) SaveCommand(ctx context.Context, deviceID int64, operation int, at time.Time) (int64, error) {
	query := `
		INSERT INTO historial_operaciones (id_dispositivo, status_operacion, fecha_hora)
		VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		deviceID,
		operation,
		at.UTC().Format(TimeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting command: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading command insert id: %w", err)
	}
	return id, nil
}

// GetCommand retrieves a command by event ID with its joined catalog text.
func (r *SQLiteRepository) GetCommand(ctx context.Context, eventID int64) (*Command, error) {
	query := `
		SELECT h.id_evento, h.id_dispositivo, h.status_operacion, o.status_texto,
			d.nombre_dispositivo, h.fecha_hora
		FROM historial_operaciones h
		JOIN operaciones o ON o.status_operacion = h.status_operacion
		JOIN dispositivos d ON d.id_dispositivo = h.id_dispositivo
		WHERE h.id_evento = ?`

	row := r.db.QueryRowContext(ctx, query, eventID)
	cmd, err := scanCommand(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommandNotFound
		}
		return nil, fmt.Errorf("querying command by id: %w", err)
	}
	return cmd, nil
}

// ListRecentCommands retrieves the most recent commands, newest first.
func (r *SQLiteRepository) ListRecentCommands(ctx context.Context, deviceID int64, limit int) ([]Command, error) {
	query := `
		SELECT h.id_evento, h.id_dispositivo, h.status_operacion, o.status_texto,
			d.nombre_dispositivo, h.fecha_hora
		FROM historial_operaciones h
		JOIN operaciones o ON o.status_operacion = h.status_operacion
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
		return nil, fmt.Errorf("querying commands: %w", err)
	}
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning command: %w", err)
		}
		commands = append(commands, *cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating commands: %w", err)
	}
	return commands, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var client, description sql.NullString
	var createdAt, updatedAt sql.NullString

	err := scanner.Scan(&d.ID, &client, &d.Name, &description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if client.Valid {
		d.Client = &client.String
	}
	if description.Valid {
		d.Description = &description.String
	}
	d.CreatedAt = createdAt.String
	d.UpdatedAt = updatedAt.String

	return &d, nil
}

func scanCommand(scanner rowScanner) (*Command, error) {
	var c Command
	err := scanner.Scan(&c.EventID, &c.DeviceID, &c.Operation, &c.OperationText,
		&c.DeviceName, &c.Timestamp)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
