package models

// Plan is a catalogue entry. Schedule fields are display strings.
type Plan struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Category    string  `json:"category" db:"category"`
	Distance    float64 `json:"distance" db:"distance"`
	Attendees   int     `json:"attendees" db:"attendees"`
	Price       float64 `json:"price" db:"price"`
	Time        string  `json:"time" db:"time"`
	Date        string  `json:"date" db:"date"`
	Location    string  `json:"location" db:"location"`
	Address     string  `json:"address" db:"address"`
	Description string  `json:"description" db:"description"`
	Image       string  `json:"image" db:"image"`
	Organizer   string  `json:"organizer" db:"organizer"`
	Capacity    int     `json:"capacity" db:"capacity"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
}

// PlanFilter narrows a catalogue listing. Zero values mean "no filter".
type PlanFilter struct {
	Categories  []string
	Search      string
	MaxDistance *float64
}
