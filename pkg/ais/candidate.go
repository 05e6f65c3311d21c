package ais

import "time"

// Candidate is a provider vessel record in canonical form.
type Candidate struct {
	TrackingID   string
	IMO          string
	Name         string
	Latitude     *float64
	Longitude    *float64
	Speed        *float64
	Course       *float64
	Heading      *float64
	Flag         string
	CallSign     string
	VesselType   string
	Status       string
	Area         string
	Length       *float64
	Beam         *float64
	Draught      *float64
	PreviousPort string
	CurrentPort  string
	NextPort     string
	UpdatedAt    *time.Time
	// Raw is the provider record the candidate was read from.
	Raw map[string]any
}

func (c Candidate) HasPosition() bool {
	return c.Latitude != nil && c.Longitude != nil
}
