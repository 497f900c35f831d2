package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// DashboardService serves the HOD views and ticket analytics.
type DashboardService struct {
	mep       repository.MEPRepository
	vr        repository.VRRepository
	analytics repository.AnalyticsRepository
}

// DashboardDependencies bundles repositories.
type DashboardDependencies struct {
	MEPRepo       repository.MEPRepository
	VRRepo        repository.VRRepository
	AnalyticsRepo repository.AnalyticsRepository
}

// NewDashboardService creates the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	return &DashboardService{mep: deps.MEPRepo, vr: deps.VRRepo, analytics: deps.AnalyticsRepo}
}

// AllMEP lists every MEP ticket, newest first.
func (s *DashboardService) AllMEP(ctx context.Context) ([]domain.MEPTicket, error) {
	tickets, err := s.mep.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.NewPersistenceError("list MEP tickets", err)
	}
	return tickets, nil
}

// AllVR lists every vehicle request, newest first.
func (s *DashboardService) AllVR(ctx context.Context) ([]domain.VRTicket, error) {
	tickets, err := s.vr.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.NewPersistenceError("list vehicle requests", err)
	}
	return tickets, nil
}

// Analytics counts tickets by kind and status, and MEP tickets by location and category.
func (s *DashboardService) Analytics(ctx context.Context) (*domain.AnalyticsSummary, error) {
	var (
		out domain.AnalyticsSummary
		err error
	)
	if out.TypeCounts, err = s.analytics.CountByTable(ctx); err != nil {
		return nil, apperrors.NewPersistenceError("count tickets by type", err)
	}
	if out.StatusCounts, err = s.analytics.CountByStatus(ctx); err != nil {
		return nil, apperrors.NewPersistenceError("count tickets by status", err)
	}
	if out.MEPByLocation, err = s.analytics.CountMEPBy(ctx, "location"); err != nil {
		return nil, apperrors.NewPersistenceError("count MEP tickets by location", err)
	}
	if out.MEPByCategory, err = s.analytics.CountMEPBy(ctx, "category"); err != nil {
		return nil, apperrors.NewPersistenceError("count MEP tickets by category", err)
	}
	return &out, nil
}

var (
	mepExportHeader = []any{
		"Ticket", "Created", "Requester", "Dept", "Subdept", "Emp Location", "Location",
		"Category", "Area of Work", "Status", "Assignee", "Feedback",
	}
	vrExportHeader = []any{
		"Ticket", "Created", "Requester", "HOD", "People", "Employee/Guest", "Names", "Pickup",
		"Drop", "Contact", "Purpose", "Driver", "Driver Number", "Status", "Assignee", "Feedback",
	}
)

const exportTimeLayout = "2006-01-02 15:04"

// ExportWorkbook writes both ticket lists as an .xlsx workbook with one sheet per kind.
func (s *DashboardService) ExportWorkbook(ctx context.Context, w io.Writer) error {
	mep, err := s.AllMEP(ctx)
	if err != nil {
		return err
	}
	vr, err := s.AllVR(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "MEP"); err != nil {
		return apperrors.NewInternalError(err)
	}
	if _, err := f.NewSheet("VR"); err != nil {
		return apperrors.NewInternalError(err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	mepRows := make([][]any, 0, len(mep))
	for _, t := range mep {
		mepRows = append(mepRows, []any{
			t.TicketNumber, t.CreatedAt.Format(exportTimeLayout), t.RequesterEmail, t.Dept.String,
			t.Subdept.String, t.EmpLocation.String, t.Location, t.Category, t.AreaOfWork.String,
			string(t.Status), t.AssigneeEmail, t.Feedback.String,
		})
	}
	vrRows := make([][]any, 0, len(vr))
	for _, t := range vr {
		vrRows = append(vrRows, []any{
			t.TicketNumber, t.CreatedAt.Format(exportTimeLayout), t.RequesterEmail, t.HOD.String,
			t.NumberOfPeople, string(t.EmployeeOrGuest), strings.Join(t.Names, ", "),
			t.PickupAt.Format(exportTimeLayout), t.DropAt.Format(exportTimeLayout), t.ContactNumber,
			t.PurposeOfVisit.String, t.DriverName.String, t.DriverNumber.String, string(t.Status),
			t.AssigneeEmail, t.Feedback.String,
		})
	}

	if err := writeSheet(f, "MEP", mepExportHeader, mepRows, bold); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := writeSheet(f, "VR", vrExportHeader, vrRows, bold); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
