package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/lifecycle"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// MEPRouter resolves the maintenance mailbox for a ticket location.
type MEPRouter interface {
	MEPMailbox(location string) string
}

// RequesterProfile is what the directory knows about a requester when a ticket is raised.
// Employee is nil for callers missing from the directory.
type RequesterProfile struct {
	Employee *domain.Employee
	HOD      null.String
}

// AssignmentService resolves who a new ticket is assigned to.
type AssignmentService struct {
	employees repository.EmployeeRepository
	router    MEPRouter
	machine   *lifecycle.Machine
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	Router       MEPRouter
	Machine      *lifecycle.Machine
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		employees: deps.EmployeeRepo,
		router:    deps.Router,
		machine:   deps.Machine,
	}
}

// MEPAssignee maps a location to its maintenance mailbox.
func (s *AssignmentService) MEPAssignee(location string) string {
	return s.router.MEPMailbox(location)
}

// Profile loads the requester's directory entry and the HOD of their department.
func (s *AssignmentService) Profile(ctx context.Context, email string) (RequesterProfile, error) {
	emp, err := s.employees.FindActiveByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return RequesterProfile{}, nil
	}
	if err != nil {
		return RequesterProfile{}, apperrors.NewPersistenceError("look up requester", err)
	}

	profile := RequesterProfile{Employee: emp}
	if present(emp.Dept) && present(emp.Subdept) {
		hod, err := s.employees.HODFor(ctx, emp.Dept.String, emp.Subdept.String)
		if err != nil {
			return RequesterProfile{}, apperrors.NewPersistenceError("look up hod", err)
		}
		profile.HOD = hod
	}
	return profile, nil
}

// VRInitial picks the first status and assignee of a vehicle request from the
// requester's manager, falling back to transport.
func (s *AssignmentService) VRInitial(ctx context.Context, profile RequesterProfile) (domain.TicketStatus, string, error) {
	manager, err := s.managerEmail(ctx, profile.Employee)
	if err != nil {
		return "", "", err
	}
	status, assignee := s.machine.InitialVR(manager)
	return status, assignee, nil
}

func (s *AssignmentService) managerEmail(ctx context.Context, emp *domain.Employee) (string, error) {
	if emp == nil || !present(emp.ManagerID) {
		return "", nil
	}
	mgr, err := s.employees.FindActiveByID(ctx, strings.TrimSpace(emp.ManagerID.String))
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewPersistenceError("look up manager", err)
	}
	return strings.ToLower(strings.TrimSpace(mgr.Email)), nil
}

func present(s null.String) bool {
	return s.Valid && strings.TrimSpace(s.String) != ""
}
