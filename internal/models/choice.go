package models

// Choice is one entry offered by an interactive selection.
type Choice struct {
	ID          string
	Label       string
	Description string
}
