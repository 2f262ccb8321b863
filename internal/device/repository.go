package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

// Registration is a persisted node provisioned at runtime.
//
// Config holds the node type configuration as a JSON object; it is decoded
// over the type's default configuration when the node is built.
type Registration struct {
	DeviceID  string          `json:"device_id"`
	NodeID    string          `json:"node_id"`
	Kind      smarthome.Kind  `json:"kind"`
	Name      string          `json:"name,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Identity returns the node identity the registration describes.
func (reg Registration) Identity() node.Identity {
	return node.Identity{Device: reg.DeviceID, Node: reg.NodeID}
}

// Validate checks ids, kind and that Config is a JSON object.
func (reg Registration) Validate() error {
	if !schema.ValidID(reg.DeviceID) || !schema.ValidID(reg.NodeID) {
		return fmt.Errorf("%w: node id %s/%s", ErrInvalidRegistration, reg.DeviceID, reg.NodeID)
	}
	if !reg.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRegistration, reg.Kind)
	}
	if len(reg.Config) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(reg.Config, &obj); err != nil {
			return fmt.Errorf("%w: config must be a JSON object: %w", ErrInvalidRegistration, err)
		}
	}
	return nil
}

// Build instantiates the registered node through the smarthome catalogue.
func (reg Registration) Build() (node.Node, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return smarthome.NewNodeFromDocument(reg.Kind, reg.Identity(), reg.Name, reg.Config)
}

// Repository defines the interface for node registration persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Get retrieves one registration.
	// Returns ErrRegistrationNotFound if it does not exist.
	Get(ctx context.Context, deviceID, nodeID string) (*Registration, error)

	// List retrieves the registrations of a device in creation order.
	List(ctx context.Context, deviceID string) ([]Registration, error)

	// Create inserts a registration.
	// Returns ErrNodeExists if the node id is taken.
	Create(ctx context.Context, reg *Registration) error

	// Update replaces the kind, name and config of a registration.
	// Returns ErrRegistrationNotFound if it does not exist.
	Update(ctx context.Context, reg *Registration) error

	// Delete removes a registration.
	// Returns ErrRegistrationNotFound if it does not exist.
	Delete(ctx context.Context, deviceID, nodeID string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with migrations applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const registrationColumns = `device_id, node_id, kind, name, config, created_at, updated_at`

// Get retrieves one registration.
func (r *SQLiteRepository) Get(ctx context.Context, deviceID, nodeID string) (*Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM node_registrations
		WHERE device_id = ? AND node_id = ?`

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, deviceID, nodeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrRegistrationNotFound, deviceID, nodeID)
		}
		return nil, fmt.Errorf("querying registration: %w", err)
	}
	return reg, nil
}

// List retrieves the registrations of a device.
func (r *SQLiteRepository) List(ctx context.Context, deviceID string) ([]Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM node_registrations
		WHERE device_id = ?
		ORDER BY created_at, node_id`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("querying registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating registrations: %w", err)
	}
	return regs, nil
}

// Create inserts a registration.
func (r *SQLiteRepository) Create(ctx context.Context, reg *Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}

	// Set timestamps if not set
	now := time.Now().UTC()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.UpdatedAt = now

	query := `INSERT INTO node_registrations (` + registrationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		reg.DeviceID,
		reg.NodeID,
		string(reg.Kind),
		reg.Name,
		configText(reg.Config),
		reg.CreatedAt.Format(time.RFC3339Nano),
		reg.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s/%s", ErrNodeExists, reg.DeviceID, reg.NodeID)
		}
		return fmt.Errorf("inserting registration: %w", err)
	}
	return nil
}

// Update replaces the kind, name and config of a registration.
func (r *SQLiteRepository) Update(ctx context.Context, reg *Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE node_registrations
		SET kind = ?, name = ?, config = ?, updated_at = ?
		WHERE device_id = ? AND node_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		string(reg.Kind),
		reg.Name,
		configText(reg.Config),
		reg.UpdatedAt.Format(time.RFC3339Nano),
		reg.DeviceID,
		reg.NodeID,
	)
	if err != nil {
		return fmt.Errorf("updating registration: %w", err)
	}
	return requireAffected(result, reg.DeviceID, reg.NodeID)
}

// Delete removes a registration.
func (r *SQLiteRepository) Delete(ctx context.Context, deviceID, nodeID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM node_registrations WHERE device_id = ? AND node_id = ?", deviceID, nodeID)
	if err != nil {
		return fmt.Errorf("deleting registration: %w", err)
	}
	return requireAffected(result, deviceID, nodeID)
}

func requireAffected(result sql.Result, deviceID, nodeID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRegistrationNotFound, deviceID, nodeID)
	}
	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRegistration scans a row or rows result into a Registration.
func scanRegistration(scanner rowScanner) (*Registration, error) {
	var reg Registration
	var kind, config, createdAt, updatedAt string

	if err := scanner.Scan(
		&reg.DeviceID,
		&reg.NodeID,
		&kind,
		&reg.Name,
		&config,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	reg.Kind = smarthome.Kind(kind)
	if config != "" && config != "{}" {
		reg.Config = json.RawMessage(config)
	}

	var err error
	if reg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if reg.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &reg, nil
}

// configText stores an absent config as an empty JSON object.
func configText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
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
