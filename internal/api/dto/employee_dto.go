package dto

import (
	"github.com/aarondl/null/v8"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// EmployeeResponse is a directory entry in its column naming.
type EmployeeResponse struct {
	EmpID       string      `json:"empid"`
	EmpEmail    string      `json:"empemail"`
	EmpName     null.String `json:"empname"`
	Dept        null.String `json:"dept"`
	Subdept     null.String `json:"subdept"`
	EmpLocation null.String `json:"emplocation"`
	Designation null.String `json:"designation"`
	ActiveFlag  bool        `json:"activeflag"`
	ManagerID   null.String `json:"managerid"`
}

// NewEmployeeResponse maps a directory entry.
func NewEmployeeResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		EmpID:       e.EmpID,
		EmpEmail:    e.Email,
		EmpName:     e.Name,
		Dept:        e.Dept,
		Subdept:     e.Subdept,
		EmpLocation: e.Location,
		Designation: e.Designation,
		ActiveFlag:  e.Active,
		ManagerID:   e.ManagerID,
	}
}
