/*
Package sqlite provides a SQLite-backed implementation of payslip.Store.

PURPOSE:
  Persists the payroll reference data (policies, employees, tax
  declarations) and the append-only payslip history the fiscal
  aggregator reads. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  policies:     Company statutory policies, JSON config form
  employees:    Employee records
  declarations: Tax declarations, one per employee per financial year
  payslips:     Finalized payslips (append-only, full JSON payload)

APPEND-ONLY PAYSLIPS:
  Finalized payslips are never updated or deleted. A correction run
  inserts a new payslip for the same period; readers take the latest.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payslip/store.go: Interface definition
  - payslip/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opspay/payroll-engine/factory"
	"github.com/opspay/payroll-engine/fiscal"
	"github.com/opspay/payroll-engine/payslip"
	"github.com/opspay/payroll-engine/tax"
)

// Store implements payslip.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Company statutory policies (JSON config form)
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		city TEXT,
		date_of_birth TEXT NOT NULL,
		join_date TEXT NOT NULL,
		tds_override TEXT,
		created_at TEXT NOT NULL
	);

	-- Tax declarations, one per employee per financial year
	CREATE TABLE IF NOT EXISTS declarations (
		employee_id TEXT NOT NULL,
		fiscal_year TEXT NOT NULL,
		declaration_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, fiscal_year)
	);

	-- Finalized payslips (append-only)
	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period_from TEXT NOT NULL,
		period_to TEXT NOT NULL,
		fiscal_year TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- History queries per employee and year (hot path for TDS projection)
	CREATE INDEX IF NOT EXISTS idx_payslips_employee_period
		ON payslips(employee_id, period_from);
	CREATE INDEX IF NOT EXISTS idx_payslips_employee_year
		ON payslips(employee_id, fiscal_year);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// POLICIES
// =============================================================================

func (s *Store) SavePolicy(ctx context.Context, record payslip.PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(factory.FromPolicy(record.ID, record.Name, record.Policy))
	if err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}

	query := `
		INSERT INTO policies (id, name, config_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.Name, string(configJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetPolicy(ctx context.Context, id string) (*payslip.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		record     payslip.PolicyRecord
		configJSON string
		createdAt  string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, created_at FROM policies WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Name, &configJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, payslip.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var config factory.PolicyJSON
	if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
		return nil, fmt.Errorf("failed to decode policy %s: %w", id, err)
	}
	record.Policy = config.Policy()
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &record, nil
}

func (s *Store) ListPolicies(ctx context.Context) ([]payslip.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, config_json, created_at FROM policies ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []payslip.PolicyRecord
	for rows.Next() {
		var (
			record     payslip.PolicyRecord
			configJSON string
			createdAt  string
		)
		if err := rows.Scan(&record.ID, &record.Name, &configJSON, &createdAt); err != nil {
			return nil, err
		}
		var config factory.PolicyJSON
		if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
			return nil, fmt.Errorf("failed to decode policy %s: %w", record.ID, err)
		}
		record.Policy = config.Policy()
		record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp payslip.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, city, date_of_birth, join_date, tds_override, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			city = excluded.city,
			date_of_birth = excluded.date_of_birth,
			join_date = excluded.join_date,
			tds_override = excluded.tds_override
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.City,
		emp.DateOfBirth.Format(time.RFC3339),
		emp.JoinDate.Format(time.RFC3339),
		emp.TDSOverridePercent,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*payslip.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		emp      payslip.Employee
		dob      string
		joinDate string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, city, date_of_birth, join_date, tds_override FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &emp.Email, &emp.City, &dob, &joinDate, &emp.TDSOverridePercent)

	if err == sql.ErrNoRows {
		return nil, payslip.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	emp.DateOfBirth, _ = time.Parse(time.RFC3339, dob)
	emp.JoinDate, _ = time.Parse(time.RFC3339, joinDate)
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]payslip.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, city, date_of_birth, join_date, tds_override FROM employees ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payslip.Employee
	for rows.Next() {
		var (
			emp      payslip.Employee
			dob      string
			joinDate string
		)
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.City, &dob, &joinDate, &emp.TDSOverridePercent); err != nil {
			return nil, err
		}
		emp.DateOfBirth, _ = time.Parse(time.RFC3339, dob)
		emp.JoinDate, _ = time.Parse(time.RFC3339, joinDate)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// =============================================================================
// DECLARATIONS
// =============================================================================

func (s *Store) SaveDeclaration(ctx context.Context, employeeID, fiscalYear string, dec tax.ITDeclaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(dec)
	if err != nil {
		return fmt.Errorf("failed to encode declaration: %w", err)
	}

	query := `
		INSERT INTO declarations (employee_id, fiscal_year, declaration_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, fiscal_year) DO UPDATE SET
			declaration_json = excluded.declaration_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		employeeID, fiscalYear, string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetDeclaration(ctx context.Context, employeeID, fiscalYear string) (*tax.ITDeclaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT declaration_json FROM declarations WHERE employee_id = ? AND fiscal_year = ?",
		employeeID, fiscalYear,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, payslip.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var dec tax.ITDeclaration
	if err := json.Unmarshal([]byte(payload), &dec); err != nil {
		return nil, fmt.Errorf("failed to decode declaration: %w", err)
	}
	return &dec, nil
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func (s *Store) SavePayslip(ctx context.Context, slip *payslip.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(slip)
	if err != nil {
		return fmt.Errorf("failed to encode payslip: %w", err)
	}

	query := `
		INSERT INTO payslips (id, employee_id, period_from, period_to, fiscal_year, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		slip.ID, slip.EmployeeID,
		slip.PeriodFrom.Format(time.RFC3339),
		slip.PeriodTo.Format(time.RFC3339),
		slip.FiscalYear,
		string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetPayslip(ctx context.Context, id string) (*payslip.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload_json FROM payslips WHERE id = ?", id,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, payslip.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return decodePayslip(payload)
}

func (s *Store) ListPayslips(ctx context.Context, employeeID string) ([]*payslip.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT payload_json FROM payslips
		WHERE employee_id = ?
		ORDER BY period_from ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slips []*payslip.Payslip
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		slip, err := decodePayslip(payload)
		if err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}
	return slips, rows.Err()
}

// History returns the employee's finalized payslips inside the financial
// year, in the fiscal aggregator's record shape.
func (s *Store) History(ctx context.Context, employeeID string, period fiscal.Period) ([]fiscal.PayRecord, error) {
	slips, err := s.ListPayslips(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	var records []fiscal.PayRecord
	for _, slip := range slips {
		record := slip.Record()
		if record.InPeriod(period) {
			records = append(records, record)
		}
	}
	return records, nil
}

func decodePayslip(payload string) (*payslip.Payslip, error) {
	var slip payslip.Payslip
	if err := json.Unmarshal([]byte(payload), &slip); err != nil {
		return nil, fmt.Errorf("failed to decode payslip: %w", err)
	}
	return &slip, nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payslips", "declarations", "employees", "policies"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
