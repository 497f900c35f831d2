package domain

import "github.com/aarondl/null/v8"

// Employee is a row of the company directory.
type Employee struct {
	EmpID       string
	Email       string
	Name        null.String
	Dept        null.String
	Subdept     null.String
	Location    null.String
	Designation null.String
	Active      bool
	ManagerID   null.String
}

// HODMapping links a department/sub-department pair to its head.
type HODMapping struct {
	Dept    string
	Subdept string
	HODID   string
}
