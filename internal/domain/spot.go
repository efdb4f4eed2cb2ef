package domain

import (
	"fmt"
	"time"
)

// Source identifies which skimmer report a spot came from.
type Source int

const (
	SourceRBN Source = iota
	SourceSked
)

func (s Source) String() string {
	switch s {
	case SourceRBN:
		return "RBN"
	case SourceSked:
		return "SKED"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// MarshalText encodes the source as "RBN" or "SKED" for JSON payloads.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Source) UnmarshalText(text []byte) error {
	switch string(text) {
	case "RBN":
		*s = SourceRBN
	case "SKED":
		*s = SourceSked
	default:
		return fmt.Errorf("unknown spot source %q", text)
	}
	return nil
}

// ZuluTime is a UTC clock time without a date.
type ZuluTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// String formats the time the way the skimmer prints it, e.g. "1612Z".
func (z ZuluTime) String() string {
	return fmt.Sprintf("%02d%02dZ", z.Hour, z.Minute)
}

// Spot is one reported sighting of a callsign. Spots are values; a newer
// report for the same callsign replaces the old one rather than updating it.
type Spot struct {
	Source     Source   `json:"source"`
	Time       ZuluTime `json:"time"`
	Call       string   `json:"call"`
	SKCCNumber string   `json:"skcc_number"`
	SKCCLevel  string   `json:"skcc_level"`
	Name       string   `json:"name,omitempty"`
	Location   string   `json:"location,omitempty"`
	Frequency  string   `json:"frequency,omitempty"` // kHz, RBN only
	WPM        string   `json:"wpm,omitempty"`
	Need       string   `json:"need,omitempty"`
	Status     string   `json:"status,omitempty"` // sked page comment

	Raw        string    `json:"-"`
	ReceivedAt time.Time `json:"received_at"`
}

// SKCC returns the membership column as "<number> <level>".
func (s Spot) SKCC() string {
	return s.SKCCNumber + " " + s.SKCCLevel
}

// Detail is the variable presentation column: the frequency (with WPM when
// known) for spots heard on the air, otherwise the sked page status comment.
func (s Spot) Detail() string {
	if s.Frequency == "" {
		return s.Status
	}
	if s.WPM != "" {
		return fmt.Sprintf("%14s (%s WPM)", s.Frequency, s.WPM)
	}
	return s.Frequency
}

func (s Spot) String() string {
	return fmt.Sprintf("%s %s %s %s %s %s %s %s %s",
		s.Source, s.Time, s.Call, s.SKCC(), s.Name, s.Location, s.Frequency, s.Need, s.Status)
}

// SpotView is a spot paired with its age at the moment a snapshot was taken.
type SpotView struct {
	Spot
	AgeMinutes int `json:"age_minutes"`
}

// Snapshot is everything the presentation layer shows after a change.
type Snapshot struct {
	RBN       []SpotView `json:"rbn"`
	Sked      []SpotView `json:"sked"`
	Feedback  string     `json:"feedback"`
	UpdatedAt time.Time  `json:"updated_at"`
}
