package domain

// Principal is the authenticated caller.
type Principal struct {
	Email string
	IsHOD bool
}
