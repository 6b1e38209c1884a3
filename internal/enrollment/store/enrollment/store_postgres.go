package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"benefits-bff/internal/enrollment/models"
	"benefits-bff/internal/platform/postgres"
	id "benefits-bff/pkg/domain"
	"benefits-bff/pkg/platform/sentinel"
	txcontext "benefits-bff/pkg/platform/tx"
)

// PostgresStore persists enrollments in Postgres. Status changes lock the row
// with SELECT ... FOR UPDATE, so writes to one id serialize while other ids
// proceed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const enrollmentColumns = `
	enrollment_id, customer_id, plan_id, plan_name, selected_benefits, status,
	enrollment_date, updated_at, organization_id, department_id, employee_id`

func (s *PostgresStore) Insert(ctx context.Context, e *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (` + enrollmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		e.ID.String(),
		e.CustomerID.String(),
		e.PlanID.String(),
		e.PlanName,
		pq.Array(e.SelectedBenefits),
		e.Status.String(),
		e.EnrollmentDate,
		e.UpdatedAt,
		nullString(e.OrganizationID.String()),
		nullString(e.DepartmentID.String()),
		nullString(e.EmployeeID.String()),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("enrollment %s: %w", e.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE enrollment_id = $1`
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, enrollmentID.String())
	return scanEnrollment(row)
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*models.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE customer_id = $1
		ORDER BY enrollment_date ASC, enrollment_id ASC
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, customerID.String())
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return out, nil
}

// FindByHierarchy is a filtered read on the primary key.
func (s *PostgresStore) FindByHierarchy(ctx context.Context, key models.HierarchyKey) (*models.Enrollment, error) {
	e, err := s.Get(ctx, key.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if !e.Matches(key) {
		return nil, sentinel.ErrNotFound
	}
	return e, nil
}

// Execute locks the row, runs validate then mutate on the loaded record, and
// writes the result back in the same transaction.
func (s *PostgresStore) Execute(ctx context.Context, enrollmentID id.EnrollmentID, validate func(*models.Enrollment) error, mutate func(*models.Enrollment)) (*models.Enrollment, error) {
	var result *models.Enrollment
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		e, err := s.lockForUpdate(ctx, tx, enrollmentID)
		if err != nil {
			return err
		}
		if err := validate(e); err != nil {
			return err
		}
		mutate(e)
		if err := s.writeStatus(ctx, tx, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, enrollmentID id.EnrollmentID, to models.Status, now time.Time) (*models.Enrollment, error) {
	return s.Execute(ctx, enrollmentID,
		func(e *models.Enrollment) error { return e.CanTransitionTo(to) },
		func(e *models.Enrollment) { e.ApplyTransition(to, now) },
	)
}

// Delete marks the enrollment deleted and returns its previous status.
// Deleting a deleted enrollment is a no-op.
func (s *PostgresStore) Delete(ctx context.Context, enrollmentID id.EnrollmentID, now time.Time) (models.Status, error) {
	var previous models.Status
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		e, err := s.lockForUpdate(ctx, tx, enrollmentID)
		if err != nil {
			return err
		}
		previous = e.Status
		if previous == models.StatusDeleted {
			return nil
		}
		e.ApplyTransition(models.StatusDeleted, now)
		return s.writeStatus(ctx, tx, e)
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// inTx runs fn in a new transaction, or in the caller's when ctx carries one.
func (s *PostgresStore) inTx(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	if tx, ok := txcontext.From(ctx); ok {
		return fn(ctx, tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(txcontext.WithTx(ctx, tx), tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) lockForUpdate(ctx context.Context, tx *sql.Tx, enrollmentID id.EnrollmentID) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE enrollment_id = $1 FOR UPDATE`
	return scanEnrollment(tx.QueryRowContext(ctx, query, enrollmentID.String()))
}

func (s *PostgresStore) writeStatus(ctx context.Context, tx *sql.Tx, e *models.Enrollment) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE enrollments SET status = $2, updated_at = $3 WHERE enrollment_id = $1`,
		e.ID.String(), e.Status.String(), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var (
		e                    models.Enrollment
		enrollmentID         string
		customerID           string
		planID               string
		status               string
		benefits             []string
		orgID, deptID, empID sql.NullString
	)
	err := row.Scan(
		&enrollmentID, &customerID, &planID, &e.PlanName, pq.Array(&benefits), &status,
		&e.EnrollmentDate, &e.UpdatedAt, &orgID, &deptID, &empID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan enrollment: %w", err)
	}
	e.ID = id.EnrollmentID(enrollmentID)
	e.CustomerID = id.CustomerID(customerID)
	e.PlanID = id.PlanID(planID)
	e.Status = models.Status(status)
	if !e.Status.IsValid() {
		return nil, fmt.Errorf("enrollment %s: unknown status %q", enrollmentID, status)
	}
	e.SelectedBenefits = benefits
	if e.SelectedBenefits == nil {
		e.SelectedBenefits = []string{}
	}
	e.OrganizationID = id.OrganizationID(orgID.String)
	e.DepartmentID = id.DepartmentID(deptID.String)
	e.EmployeeID = id.EmployeeID(empID.String)
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
