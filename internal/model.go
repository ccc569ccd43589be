package internal

import "time"

// User is the authenticated identity shared by every view.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Credential is the stored account behind a User.
type Credential struct {
	User         User      `json:"user"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Provider     string    `json:"provider"` // password, federated
	Subject      string    `json:"subject,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Observation struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Date        string    `json:"date"`           // YYYY-MM-DD
	Time        string    `json:"time,omitempty"` // HH:MM
	Coordinates string    `json:"coordinates,omitempty"`
	RA          string    `json:"ra,omitempty"`
	Dec         string    `json:"dec,omitempty"`
	Location    string    `json:"location,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	ObjectType  string    `json:"object_type,omitempty"`
	Equipment   string    `json:"equipment,omitempty"`
	Conditions  string    `json:"conditions,omitempty"`
	Seeing      string    `json:"seeing,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Coordinates struct {
	RA  string `json:"ra"`
	Dec string `json:"dec"`
}

type CelestialObject struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Type          string      `json:"type"` // Galaxy, Nebula, Planet, Star Cluster, Star
	Distance      string      `json:"distance"`
	Magnitude     float64     `json:"magnitude"`
	Constellation string      `json:"constellation"`
	Description   string      `json:"description"`
	Coordinates   Coordinates `json:"coordinates"`
	BestViewing   string      `json:"best_viewing"`
}

type SkyEvent struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"` // Meteor Shower, Eclipse, Planetary, ...
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	Rating      string `json:"rating"`
}

// Day returns the event date at midnight UTC, or the zero time when
// the date is malformed.
func (e SkyEvent) Day() time.Time {
	d, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return time.Time{}
	}
	return d
}

// DaysUntil counts whole days from now's calendar day to the event.
// Past events return a negative count.
func (e SkyEvent) DaysUntil(now time.Time) int {
	day := e.Day()
	if day.IsZero() {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today).Hours() / 24)
}
