package models

// Author is one entry of the directory built by the historical scanner,
// used to drive the interactive author picker. The directory lives only
// for the duration of the picking phase.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}
