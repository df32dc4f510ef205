package models

// ActivityType classifies an itinerary activity.
type ActivityType string

const (
	ActivityFood    ActivityType = "food"
	ActivityHistory ActivityType = "history"
	ActivityOther   ActivityType = "other"
)

// Activity is one stop within a day of a strategy itinerary.
type Activity struct {
	Name        string       `json:"name"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
}

// Day is one day-entry of a strategy itinerary.
type Day struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Activities []Activity `json:"activities"`
}

// Location is a city visited by a strategy, used for map pins.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
