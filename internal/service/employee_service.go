package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// employeeColumns is the column order of a directory workbook when its header row is not recognised.
var employeeColumns = []string{
	"empid", "empemail", "empname", "dept", "subdept", "emplocation", "designation", "activeflag", "managerid",
}

// ImportReport summarises a directory import.
type ImportReport struct {
	Rows        int
	Imported    int
	Skipped     int
	SkippedRows []int
}

// EmployeeService exposes the company directory.
type EmployeeService struct {
	employees repository.EmployeeRepository
}

// NewEmployeeService creates the service.
func NewEmployeeService(employees repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{employees: employees}
}

// Me returns the caller's active directory entry.
func (s *EmployeeService) Me(ctx context.Context, email string) (*domain.Employee, error) {
	emp, err := s.employees.FindActiveByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("employee", map[string]any{"email": email})
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("look up employee", err)
	}
	return emp, nil
}

// ImportWorkbook reads an .xlsx directory export and upserts every valid row.
// An empty sheet name selects the first sheet. With dryRun nothing is written.
func (s *EmployeeService) ImportWorkbook(ctx context.Context, r io.Reader, sheet string, dryRun bool) (ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportReport{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return ImportReport{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ImportReport{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	employees, report := ParseEmployeeRows(rows)
	if dryRun || len(employees) == 0 {
		return report, nil
	}
	if err := s.employees.UpsertMany(ctx, employees); err != nil {
		return report, apperrors.NewPersistenceError("import employees", err)
	}
	return report, nil
}

// ParseEmployeeRows converts sheet rows to employees. The first row is the header.
// Rows without an id or email are skipped and reported by their 1-based sheet row.
func ParseEmployeeRows(rows [][]string) ([]domain.Employee, ImportReport) {
	report := ImportReport{}
	if len(rows) == 0 {
		return nil, report
	}
	index := headerIndex(rows[0])

	out := []domain.Employee{}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		report.Rows++
		cell := func(col string) string {
			pos, ok := index[col]
			if !ok || pos >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[pos])
		}

		emp := domain.Employee{
			EmpID:       cell("empid"),
			Email:       strings.ToLower(cell("empemail")),
			Name:        optional(cell("empname")),
			Dept:        optional(cell("dept")),
			Subdept:     optional(cell("subdept")),
			Location:    optional(cell("emplocation")),
			Designation: optional(cell("designation")),
			Active:      parseActive(cell("activeflag")),
			ManagerID:   optional(cell("managerid")),
		}
		if emp.EmpID == "" || emp.Email == "" {
			report.Skipped++
			report.SkippedRows = append(report.SkippedRows, i+2)
			continue
		}
		out = append(out, emp)
	}
	report.Imported = len(out)
	return out, report
}

func headerIndex(header []string) map[string]int {
	index := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, col := range employeeColumns {
			if h == col {
				index[col] = i
			}
		}
	}
	if len(index) == 0 {
		for i, col := range employeeColumns {
			index[col] = i
		}
	}
	return index
}

func parseActive(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "no", "n":
		return false
	default:
		return true
	}
}

func optional(v string) null.String {
	if v == "" {
		return null.String{}
	}
	return null.StringFrom(v)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
