package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// HODTicketsResponse bundles every ticket of both kinds.
type HODTicketsResponse struct {
	MEPTickets []MEPTicketResponse `json:"mep_tickets"`
	VRTickets  []VRTicketResponse  `json:"vr_tickets"`
}

// MEPSummaryRow is the HOD table view of an MEP ticket.
type MEPSummaryRow struct {
	TicketNumber     string              `json:"ticket_number"`
	CreationDatetime time.Time           `json:"creation_datetime"`
	EmpEmail         string              `json:"empemail"`
	Dept             null.String         `json:"dept"`
	Subdept          null.String         `json:"subdept"`
	EmpLocation      null.String         `json:"emplocation"`
	Location         string              `json:"location"`
	Category         string              `json:"category"`
	AreaOfWork       null.String         `json:"area_of_work"`
	Status           domain.TicketStatus `json:"status"`
	AssigneeEmail    string              `json:"assignee_email"`
}

// VRSummaryRow is the HOD table view of a vehicle request.
type VRSummaryRow struct {
	TicketNumber     string              `json:"ticket_number"`
	CreationDatetime time.Time           `json:"creation_datetime"`
	UserEmail        string              `json:"user_email"`
	HOD              null.String         `json:"hod"`
	NumberOfPeople   int                 `json:"number_of_people"`
	EmployeeOrGuest  domain.GuestType    `json:"employee_or_guest"`
	PickupDatetime   time.Time           `json:"pickup_datetime"`
	DropDatetime     time.Time           `json:"drop_datetime"`
	ContactNumber    string              `json:"contact_number"`
	PurposeOfVisit   null.String         `json:"purpose_of_visit"`
	Status           domain.TicketStatus `json:"status"`
	AssigneeEmail    string              `json:"assignee_email"`
}

// MEPSummaryRows maps tickets to summary rows.
func MEPSummaryRows(in []domain.MEPTicket) []MEPSummaryRow {
	out := make([]MEPSummaryRow, 0, len(in))
	for _, t := range in {
		out = append(out, MEPSummaryRow{
			TicketNumber:     t.TicketNumber,
			CreationDatetime: t.CreatedAt,
			EmpEmail:         t.RequesterEmail,
			Dept:             t.Dept,
			Subdept:          t.Subdept,
			EmpLocation:      t.EmpLocation,
			Location:         t.Location,
			Category:         t.Category,
			AreaOfWork:       t.AreaOfWork,
			Status:           t.Status,
			AssigneeEmail:    t.AssigneeEmail,
		})
	}
	return out
}

// VRSummaryRows maps vehicle requests to summary rows.
func VRSummaryRows(in []domain.VRTicket) []VRSummaryRow {
	out := make([]VRSummaryRow, 0, len(in))
	for _, t := range in {
		out = append(out, VRSummaryRow{
			TicketNumber:     t.TicketNumber,
			CreationDatetime: t.CreatedAt,
			UserEmail:        t.RequesterEmail,
			HOD:              t.HOD,
			NumberOfPeople:   t.NumberOfPeople,
			EmployeeOrGuest:  t.EmployeeOrGuest,
			PickupDatetime:   t.PickupAt,
			DropDatetime:     t.DropAt,
			ContactNumber:    t.ContactNumber,
			PurposeOfVisit:   t.PurposeOfVisit,
			Status:           t.Status,
			AssigneeEmail:    t.AssigneeEmail,
		})
	}
	return out
}

// TypeCount buckets tickets by kind.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// StatusCount buckets tickets by status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// LocationCount buckets MEP tickets by location.
type LocationCount struct {
	Location string `json:"location"`
	Count    int64  `json:"count"`
}

// CategoryCount buckets MEP tickets by category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// AnalyticsResponse is the dashboard summary.
type AnalyticsResponse struct {
	TypeCounts    []TypeCount     `json:"type_counts"`
	StatusCounts  []StatusCount   `json:"status_counts"`
	MEPByLocation []LocationCount `json:"mep_by_location"`
	MEPByCategory []CategoryCount `json:"mep_by_category"`
}

// NewAnalyticsResponse maps grouped counts onto their JSON keys.
func NewAnalyticsResponse(s *domain.AnalyticsSummary) AnalyticsResponse {
	out := AnalyticsResponse{
		TypeCounts:    make([]TypeCount, 0, len(s.TypeCounts)),
		StatusCounts:  make([]StatusCount, 0, len(s.StatusCounts)),
		MEPByLocation: make([]LocationCount, 0, len(s.MEPByLocation)),
		MEPByCategory: make([]CategoryCount, 0, len(s.MEPByCategory)),
	}
	for _, r := range s.TypeCounts {
		out.TypeCounts = append(out.TypeCounts, TypeCount{Type: r.Key, Count: r.Count})
	}
	for _, r := range s.StatusCounts {
		out.StatusCounts = append(out.StatusCounts, StatusCount{Status: r.Key, Count: r.Count})
	}
	for _, r := range s.MEPByLocation {
		out.MEPByLocation = append(out.MEPByLocation, LocationCount{Location: r.Key, Count: r.Count})
	}
	for _, r := range s.MEPByCategory {
		out.MEPByCategory = append(out.MEPByCategory, CategoryCount{Category: r.Key, Count: r.Count})
	}
	return out
}
