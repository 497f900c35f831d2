package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// EmployeeRepository reads the company directory and the HOD mapping.
type EmployeeRepository interface {
	FindActiveByEmail(ctx context.Context, email string) (*domain.Employee, error)
	FindActiveByID(ctx context.Context, empID string) (*domain.Employee, error)
	// HODFor returns the hod id for dept/subdept, or an invalid String when unmapped.
	HODFor(ctx context.Context, dept, subdept string) (null.String, error)
	// UpsertMany writes employees keyed on empid in a single transaction.
	UpsertMany(ctx context.Context, employees []domain.Employee) error
}

const employeeColumns = `empid, empemail, empname, dept, subdept, emplocation, designation, activeflag, managerid`

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository builds a Postgres-backed directory.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM emp WHERE lower(empemail)=$1 AND activeflag LIMIT 1`
	return scanEmployee(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *employeeRepository) FindActiveByID(ctx context.Context, empID string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM emp WHERE empid=$1 AND activeflag`
	return scanEmployee(r.pool.QueryRow(ctx, query, strings.TrimSpace(empID)))
}

func (r *employeeRepository) HODFor(ctx context.Context, dept, subdept string) (null.String, error) {
	const query = `SELECT hodid FROM hod WHERE dept=$1 AND subdept=$2 ORDER BY id LIMIT 1`
	var hodID string
	err := r.pool.QueryRow(ctx, query, dept, subdept).Scan(&hodID)
	if errors.Is(err, pgx.ErrNoRows) {
		return null.String{}, nil
	}
	if err != nil {
		return null.String{}, err
	}
	return null.StringFrom(hodID), nil
}

func (r *employeeRepository) UpsertMany(ctx context.Context, employees []domain.Employee) error {
	const query = `
        INSERT INTO emp (empid, empemail, empname, dept, subdept, emplocation, designation, activeflag, managerid)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (empid) DO UPDATE SET
            empemail=EXCLUDED.empemail,
            empname=EXCLUDED.empname,
            dept=EXCLUDED.dept,
            subdept=EXCLUDED.subdept,
            emplocation=EXCLUDED.emplocation,
            designation=EXCLUDED.designation,
            activeflag=EXCLUDED.activeflag,
            managerid=EXCLUDED.managerid`
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range employees {
			batch.Queue(query,
				e.EmpID,
				e.Email,
				e.Name,
				e.Dept,
				e.Subdept,
				e.Location,
				e.Designation,
				e.Active,
				e.ManagerID,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	if err := row.Scan(
		&e.EmpID,
		&e.Email,
		&e.Name,
		&e.Dept,
		&e.Subdept,
		&e.Location,
		&e.Designation,
		&e.Active,
		&e.ManagerID,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
