package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/lifecycle"
	"github.com/aarnav1729/premier-support-hub/internal/numbering"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// TicketService coordinates MEP and VR ticket workflows.
type TicketService struct {
	mep        repository.MEPRepository
	vr         repository.VRRepository
	history    repository.TicketHistoryRepository
	assignment *AssignmentService
	machine    *lifecycle.Machine
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	MEPRepo     repository.MEPRepository
	VRRepo      repository.VRRepository
	HistoryRepo repository.TicketHistoryRepository
	Assignment  *AssignmentService
	Machine     *lifecycle.Machine
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// MEPCreateInput describes MEP ticket creation payload.
type MEPCreateInput struct {
	Location    string
	Category    string
	AreaOfWork  null.String
	Description null.String
	Attachments []domain.Attachment
}

// VRCreateInput describes vehicle request creation payload.
type VRCreateInput struct {
	NumberOfPeople  int
	EmployeeOrGuest domain.GuestType
	Names           []string
	PickupAt        time.Time
	DropAt          time.Time
	ContactNumber   string
	PurposeOfVisit  null.String
	Description     null.String
	Attachments     []domain.Attachment
}

// ListInput selects tickets for the caller.
type ListInput struct {
	Scope  domain.TicketScope
	Status string
}

// TicketRef is a kind-agnostic view of a stored ticket.
type TicketRef struct {
	Ticket   domain.Ticket
	Snapshot events.TicketSnapshot
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		mep:        deps.MEPRepo,
		vr:         deps.VRRepo,
		history:    deps.HistoryRepo,
		assignment: deps.Assignment,
		machine:    deps.Machine,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateMEP raises a maintenance ticket routed by location.
func (s *TicketService) CreateMEP(ctx context.Context, actor string, in MEPCreateInput) (*domain.MEPTicket, error) {
	in.Location = strings.TrimSpace(in.Location)
	in.Category = strings.TrimSpace(in.Category)
	details := map[string]any{}
	if in.Location == "" {
		details["location"] = "required"
	}
	if in.Category == "" {
		details["category"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid MEP ticket", details)
	}

	profile, err := s.assignment.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}

	ticket := &domain.MEPTicket{
		Ticket: domain.Ticket{
			Status:         lifecycle.InitialMEP(),
			RequesterEmail: actor,
			AssigneeEmail:  s.assignment.MEPAssignee(in.Location),
			HOD:            profile.HOD,
			Description:    in.Description,
			Attachments:    in.Attachments,
		},
		Location:   in.Location,
		Category:   in.Category,
		AreaOfWork: in.AreaOfWork,
	}
	if emp := profile.Employee; emp != nil {
		ticket.EmpID = null.StringFrom(emp.EmpID)
		ticket.Dept = emp.Dept
		ticket.Subdept = emp.Subdept
		ticket.EmpLocation = emp.Location
		ticket.Designation = emp.Designation
	}

	if err := s.mep.Create(ctx, ticket); err != nil {
		return nil, persistenceError("create MEP ticket", err)
	}

	s.recordHistory(ctx, domain.HistoryEntry{
		TicketNumber: ticket.TicketNumber,
		ActorEmail:   actor,
		Action:       domain.ActionCreateMEP,
		Comment:      null.StringFrom("MEP ticket created"),
		AfterState: map[string]any{
			"status":         ticket.Status,
			"assignee_email": ticket.AssigneeEmail,
			"location":       ticket.Location,
			"category":       ticket.Category,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketNumber: ticket.TicketNumber,
		ActorEmail:   actor,
		Payload:      events.TicketCreatedPayload{Ticket: events.SnapshotMEP(ticket)},
	})
	return ticket, nil
}

// CreateVR raises a vehicle request, routed to the requester's manager when one exists.
func (s *TicketService) CreateVR(ctx context.Context, actor string, in VRCreateInput) (*domain.VRTicket, error) {
	if err := validateVR(&in); err != nil {
		return nil, err
	}

	profile, err := s.assignment.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}
	status, assignee, err := s.assignment.VRInitial(ctx, profile)
	if err != nil {
		return nil, err
	}

	ticket := &domain.VRTicket{
		Ticket: domain.Ticket{
			Status:         status,
			RequesterEmail: actor,
			AssigneeEmail:  assignee,
			HOD:            profile.HOD,
			Description:    in.Description,
			Attachments:    in.Attachments,
		},
		NumberOfPeople:  in.NumberOfPeople,
		EmployeeOrGuest: in.EmployeeOrGuest,
		Names:           in.Names,
		PickupAt:        in.PickupAt,
		DropAt:          in.DropAt,
		ContactNumber:   in.ContactNumber,
		PurposeOfVisit:  in.PurposeOfVisit,
	}
	if err := s.vr.Create(ctx, ticket); err != nil {
		return nil, persistenceError("create vehicle request", err)
	}

	s.recordHistory(ctx, domain.HistoryEntry{
		TicketNumber: ticket.TicketNumber,
		ActorEmail:   actor,
		Action:       domain.ActionCreateVR,
		Comment:      null.StringFrom("VR ticket created"),
		AfterState: map[string]any{
			"status":         ticket.Status,
			"assignee_email": ticket.AssigneeEmail,
			"pickup":         ticket.PickupAt,
			"drop":           ticket.DropAt,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketNumber: ticket.TicketNumber,
		ActorEmail:   actor,
		Payload:      events.TicketCreatedPayload{Ticket: events.SnapshotVR(ticket)},
	})
	return ticket, nil
}

func validateVR(in *VRCreateInput) error {
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	names := make([]string, 0, len(in.Names))
	for _, n := range in.Names {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	in.Names = names

	details := map[string]any{}
	if in.NumberOfPeople < 1 {
		details["number_of_people"] = "min"
	}
	if in.EmployeeOrGuest != domain.GuestTypeEmployee && in.EmployeeOrGuest != domain.GuestTypeGuest {
		details["employee_or_guest"] = "oneof"
	}
	if len(in.Names) != in.NumberOfPeople {
		details["names"] = "names array length must match number_of_people"
	}
	if in.PickupAt.IsZero() {
		details["pickup_datetime"] = "required"
	}
	if in.DropAt.IsZero() {
		details["drop_datetime"] = "required"
	} else if in.DropAt.Before(in.PickupAt) {
		details["drop_datetime"] = "must not precede pickup_datetime"
	}
	if in.ContactNumber == "" {
		details["contact_number"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid vehicle request", details)
	}
	return nil
}

// ListMEP returns the caller's MEP tickets, newest first.
func (s *TicketService) ListMEP(ctx context.Context, actor string, in ListInput) ([]domain.MEPTicket, error) {
	filter, err := s.listFilter(domain.KindMEP, actor, in)
	if err != nil {
		return nil, err
	}
	tickets, err := s.mep.List(ctx, filter)
	if err != nil {
		return nil, persistenceError("list MEP tickets", err)
	}
	return tickets, nil
}

// ListVR returns the caller's vehicle requests, newest first.
func (s *TicketService) ListVR(ctx context.Context, actor string, in ListInput) ([]domain.VRTicket, error) {
	filter, err := s.listFilter(domain.KindVR, actor, in)
	if err != nil {
		return nil, err
	}
	tickets, err := s.vr.List(ctx, filter)
	if err != nil {
		return nil, persistenceError("list vehicle requests", err)
	}
	return tickets, nil
}

func (s *TicketService) listFilter(kind domain.Kind, actor string, in ListInput) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{Scope: in.Scope, Email: actor}
	switch in.Scope {
	case "":
		filter.Scope = domain.ScopeMine
	case domain.ScopeMine, domain.ScopeAssigned:
	default:
		return filter, apperrors.NewValidationError("invalid scope", map[string]any{"scope": "oneof=mine assigned"})
	}
	if in.Status != "" {
		table, err := lifecycle.TableFor(kind)
		if err != nil {
			return filter, apperrors.NewInternalError(err)
		}
		status := domain.TicketStatus(in.Status)
		if !table.Knows(status) {
			known := []string{}
			for _, st := range table.Statuses() {
				known = append(known, string(st))
			}
			return filter, apperrors.NewValidationError("invalid status", map[string]any{
				"status": "oneof=" + strings.Join(known, " "),
			})
		}
		filter.Status = &status
	}
	return filter, nil
}

// GetMEP returns one MEP ticket visible to p.
func (s *TicketService) GetMEP(ctx context.Context, p domain.Principal, number string) (*domain.MEPTicket, error) {
	t, err := s.loadMEP(ctx, number)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanView(t.Ticket, p) {
		return nil, apperrors.NewForbidden("you cannot view this ticket")
	}
	return t, nil
}

// GetVR returns one vehicle request visible to p.
func (s *TicketService) GetVR(ctx context.Context, p domain.Principal, number string) (*domain.VRTicket, error) {
	t, err := s.loadVR(ctx, number)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanView(t.Ticket, p) {
		return nil, apperrors.NewForbidden("you cannot view this ticket")
	}
	return t, nil
}

// UpdateMEPStatus moves an MEP ticket along its lifecycle.
func (s *TicketService) UpdateMEPStatus(ctx context.Context, actor, number string, to domain.TicketStatus) (*domain.MEPTicket, error) {
	current, err := s.loadMEP(ctx, number)
	if err != nil {
		return nil, err
	}
	number = current.TicketNumber
	if err := lifecycle.CanChangeStatus(current.Ticket, actor); err != nil {
		return nil, err
	}
	tr, err := s.machine.Plan(domain.KindMEP, current.Status, to)
	if err != nil {
		return nil, err
	}

	updated, err := s.mep.UpdateStatus(ctx, number, tr.From, tr.To)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, s.staleTransition(ctx, number, to)
	}
	if err != nil {
		return nil, persistenceError("update MEP status", err)
	}

	s.recordTransition(ctx, actor, number, tr, current.AssigneeEmail)
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketNumber: number,
		ActorEmail:   actor,
		Payload: events.TicketStatusChangedPayload{
			Ticket:      events.SnapshotMEP(updated),
			OldStatus:   tr.From,
			NewStatus:   tr.To,
			OldAssignee: current.AssigneeEmail,
		},
	})
	return updated, nil
}

// UpdateVRStatus moves a vehicle request along its lifecycle. Manager approval
// hands the request to transport in the same write.
func (s *TicketService) UpdateVRStatus(ctx context.Context, actor, number string, to domain.TicketStatus) (*domain.VRTicket, error) {
	current, err := s.loadVR(ctx, number)
	if err != nil {
		return nil, err
	}
	number = current.TicketNumber
	if err := lifecycle.CanChangeStatus(current.Ticket, actor); err != nil {
		return nil, err
	}
	tr, err := s.machine.Plan(domain.KindVR, current.Status, to)
	if err != nil {
		return nil, err
	}

	updated, err := s.vr.UpdateStatus(ctx, number, tr.From, tr.To, tr.NewAssignee)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, s.staleTransition(ctx, number, to)
	}
	if err != nil {
		return nil, persistenceError("update vehicle request status", err)
	}

	s.recordTransition(ctx, actor, number, tr, current.AssigneeEmail)
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketNumber: number,
		ActorEmail:   actor,
		Payload: events.TicketStatusChangedPayload{
			Ticket:          events.SnapshotVR(updated),
			OldStatus:       tr.From,
			NewStatus:       tr.To,
			OldAssignee:     current.AssigneeEmail,
			ManagerApproval: tr.Approval,
		},
	})
	return updated, nil
}

// staleTransition explains a conditional write that matched no row because the status moved underneath it.
func (s *TicketService) staleTransition(ctx context.Context, number string, to domain.TicketStatus) error {
	ref, err := s.Lookup(ctx, number)
	if err != nil {
		return err
	}
	if _, err := s.machine.Plan(ref.Ticket.Kind, ref.Ticket.Status, to); err != nil {
		return err
	}
	return apperrors.NewConflict("ticket status changed, reload and retry", map[string]any{
		"status": ref.Ticket.Status,
	})
}

func (s *TicketService) recordTransition(ctx context.Context, actor, number string, tr lifecycle.Transition, oldAssignee string) {
	before := map[string]any{"status": tr.From}
	after := map[string]any{"status": tr.To}
	if tr.ChangesAssignee() {
		before["assignee_email"] = oldAssignee
		after["assignee_email"] = tr.NewAssignee
	}
	s.recordHistory(ctx, domain.HistoryEntry{
		TicketNumber: number,
		ActorEmail:   actor,
		Action:       tr.Action,
		Comment:      null.StringFrom("Status changed to " + string(tr.To)),
		BeforeState:  before,
		AfterState:   after,
	})
}

// UpdateMEPFeedback stores the requester's feedback on a completed MEP ticket.
func (s *TicketService) UpdateMEPFeedback(ctx context.Context, actor, number, feedback string) (*domain.MEPTicket, error) {
	feedback, err := cleanFeedback(feedback)
	if err != nil {
		return nil, err
	}
	current, err := s.loadMEP(ctx, number)
	if err != nil {
		return nil, err
	}
	number = current.TicketNumber
	if err := lifecycle.CanSubmitFeedback(current.Ticket, actor); err != nil {
		return nil, err
	}
	updated, err := s.mep.UpdateFeedback(ctx, number, feedback)
	if err != nil {
		return nil, persistenceError("update MEP feedback", err)
	}
	s.recordFeedback(ctx, actor, number, domain.ActionUpdateMEPFeedback, current.Feedback, feedback)
	return updated, nil
}

// UpdateVRFeedback stores the requester's feedback on a completed vehicle request.
func (s *TicketService) UpdateVRFeedback(ctx context.Context, actor, number, feedback string) (*domain.VRTicket, error) {
	feedback, err := cleanFeedback(feedback)
	if err != nil {
		return nil, err
	}
	current, err := s.loadVR(ctx, number)
	if err != nil {
		return nil, err
	}
	number = current.TicketNumber
	if err := lifecycle.CanSubmitFeedback(current.Ticket, actor); err != nil {
		return nil, err
	}
	updated, err := s.vr.UpdateFeedback(ctx, number, feedback)
	if err != nil {
		return nil, persistenceError("update vehicle request feedback", err)
	}
	s.recordFeedback(ctx, actor, number, domain.ActionUpdateVRFeedback, current.Feedback, feedback)
	return updated, nil
}

func cleanFeedback(feedback string) (string, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return "", apperrors.NewValidationError("feedback is required", map[string]any{"feedback": "required"})
	}
	return feedback, nil
}

func (s *TicketService) recordFeedback(ctx context.Context, actor, number string, action domain.HistoryAction, prev null.String, feedback string) {
	comment := "Feedback added"
	if prev.Valid {
		comment = "Feedback updated"
	}
	s.recordHistory(ctx, domain.HistoryEntry{
		TicketNumber: number,
		ActorEmail:   actor,
		Action:       action,
		Comment:      null.StringFrom(comment),
		BeforeState:  map[string]any{"feedback": prev.Ptr()},
		AfterState:   map[string]any{"feedback": feedback},
	})
}

// UpdateDriver records the driver transport assigned to a vehicle request.
func (s *TicketService) UpdateDriver(ctx context.Context, actor, number, name, phone string) (*domain.VRTicket, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	details := map[string]any{}
	if name == "" {
		details["driver_name"] = "required"
	}
	if phone == "" {
		details["driver_number"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid driver details", details)
	}

	current, err := s.loadVR(ctx, number)
	if err != nil {
		return nil, err
	}
	number = current.TicketNumber
	if err := s.machine.CanAssignDriver(*current, actor); err != nil {
		return nil, err
	}
	updated, err := s.vr.UpdateDriver(ctx, number, name, phone)
	if err != nil {
		return nil, persistenceError("update driver", err)
	}

	s.recordHistory(ctx, domain.HistoryEntry{
		TicketNumber: number,
		ActorEmail:   actor,
		Action:       domain.ActionUpdateVRDriver,
		Comment:      null.StringFrom("Driver details updated"),
		BeforeState: map[string]any{
			"driver_name":   current.DriverName.Ptr(),
			"driver_number": current.DriverNumber.Ptr(),
		},
		AfterState: map[string]any{
			"driver_name":   name,
			"driver_number": phone,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:         events.EventDriverAssigned,
		TicketNumber: number,
		ActorEmail:   actor,
		Payload: events.DriverAssignedPayload{
			Ticket:       events.SnapshotVR(updated),
			DriverName:   name,
			DriverNumber: phone,
		},
	})
	return updated, nil
}

// ListHistory returns the audit trail of a ticket visible to p, oldest first.
func (s *TicketService) ListHistory(ctx context.Context, p domain.Principal, number string) ([]domain.HistoryEntry, error) {
	ref, err := s.Lookup(ctx, number)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanView(ref.Ticket, p) {
		return nil, apperrors.NewForbidden("you cannot view this ticket")
	}
	entries, err := s.history.ListByTicket(ctx, number)
	if err != nil {
		return nil, persistenceError("list history", err)
	}
	return entries, nil
}

// Lookup loads a ticket of either kind by number.
func (s *TicketService) Lookup(ctx context.Context, number string) (*TicketRef, error) {
	kind, err := kindOf(number)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindVR {
		t, err := s.loadVR(ctx, number)
		if err != nil {
			return nil, err
		}
		return &TicketRef{Ticket: t.Ticket, Snapshot: events.SnapshotVR(t)}, nil
	}
	t, err := s.loadMEP(ctx, number)
	if err != nil {
		return nil, err
	}
	return &TicketRef{Ticket: t.Ticket, Snapshot: events.SnapshotMEP(t)}, nil
}

// loadMEP and loadVR return the stored row. Callers continue with its TicketNumber:
// the number argument may alias a request buffer that is reused once the handler returns.
func (s *TicketService) loadMEP(ctx context.Context, number string) (*domain.MEPTicket, error) {
	if err := expectKind(number, domain.KindMEP); err != nil {
		return nil, err
	}
	t, err := s.mep.GetByNumber(ctx, number)
	if err != nil {
		return nil, persistenceError("load MEP ticket", err)
	}
	return t, nil
}

func (s *TicketService) loadVR(ctx context.Context, number string) (*domain.VRTicket, error) {
	if err := expectKind(number, domain.KindVR); err != nil {
		return nil, err
	}
	t, err := s.vr.GetByNumber(ctx, number)
	if err != nil {
		return nil, persistenceError("load vehicle request", err)
	}
	return t, nil
}

func kindOf(number string) (domain.Kind, error) {
	if !numbering.Valid(number) {
		return "", apperrors.NewValidationError("invalid ticket number", map[string]any{"ticket_number": number})
	}
	kind, _ := domain.KindFromTicketNumber(number)
	return kind, nil
}

// expectKind rejects malformed numbers and reports numbers of the other kind as missing.
func expectKind(number string, want domain.Kind) error {
	kind, err := kindOf(number)
	if err != nil {
		return err
	}
	if kind != want {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_number": number})
	}
	return nil
}

// recordHistory appends an audit entry. Failures are logged and never fail the caller.
func (s *TicketService) recordHistory(ctx context.Context, entry domain.HistoryEntry) {
	appendHistory(ctx, s.history, s.logger, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

func appendHistory(ctx context.Context, repo repository.TicketHistoryRepository, logger *zap.Logger, entry domain.HistoryEntry) {
	if repo == nil {
		return
	}
	if err := repo.Append(ctx, &entry); err != nil {
		logger.Warn("history append failed",
			zap.String("ticket_number", entry.TicketNumber),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event not published",
			zap.String("event", string(event.Type)),
			zap.String("ticket_number", event.TicketNumber),
			zap.Error(err),
		)
	}
}

// persistenceError maps store failures onto the error taxonomy. Missing rows become NotFound.
func persistenceError(op string, err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return apperrors.NewPersistenceError(op, err)
}
