package models

// FAQItem is one accordion entry.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type EventDetail struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Rule struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NavItem points at a section anchor on the page.
type NavItem struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

type RegistrationStep struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type InfoItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PlayerStatus of a demo registration row.
type PlayerStatus string

const (
	StatusConfirmed PlayerStatus = "Confirmed"
	StatusPending   PlayerStatus = "Pending"
)

// RegisteredPlayer is a row of the (static, demo) recent registrations table.
type RegisteredPlayer struct {
	ID             int          `json:"id"`
	GamerTag       string       `json:"gamerTag"`
	Name           string       `json:"name"`
	FavoriteGame   string       `json:"favoriteGame"`
	RegisteredDate string       `json:"registeredDate"`
	Status         PlayerStatus `json:"status"`
}

// Countdown is the time left until the event starts, zeroed once it passed.
type Countdown struct {
	Days     int  `json:"days"`
	Hours    int  `json:"hours"`
	Minutes  int  `json:"minutes"`
	Seconds  int  `json:"seconds"`
	Finished bool `json:"finished"`
}

// SiteContent bundles every static section of the page.
type SiteContent struct {
	Title             string             `json:"title"`
	Tagline           string             `json:"tagline"`
	Nav               []NavItem          `json:"nav"`
	EventDetails      []EventDetail      `json:"eventDetails"`
	Rules             []Rule             `json:"rules"`
	FAQ               []FAQItem          `json:"faq"`
	RegistrationSteps []RegistrationStep `json:"registrationSteps"`
	RegistrationInfo  []InfoItem         `json:"registrationInfo"`
	RecentPlayers     []RegisteredPlayer `json:"recentPlayers"`
}
