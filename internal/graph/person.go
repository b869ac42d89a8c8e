package graph

import (
	"strings"
	"time"
)

// PersonID is an opaque, stable identifier for a person.
type PersonID string

// Sex is used only for kinship phrasing, never for eligibility checks.
type Sex string

const (
	SexUnknown Sex = ""
	SexFemale  Sex = "female"
	SexMale    Sex = "male"
)

// ParseSex normalizes free-form input ("F", "female", "m", ...) to a Sex.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "u", "unknown":
		return SexUnknown, nil
	case "f", "female":
		return SexFemale, nil
	case "m", "male":
		return SexMale, nil
	}
	return SexUnknown, invalidAttrs("unknown sex %q", s)
}

// DateLayout is the day-precision layout used for all person and edge dates.
const DateLayout = "2006-01-02"

// Person is an identity node in the family graph.
type Person struct {
	ID         PersonID
	Name       string
	Sex        Sex
	Born       *time.Time
	Died       *time.Time
	BirthPlace string
	Occupation string
	Notes      string
}

// Living reports whether no death date is recorded.
func (p Person) Living() bool {
	return p.Died == nil
}

// PersonAttrs carries the mutable attributes of a person.
type PersonAttrs struct {
	Name       string
	Sex        Sex
	Born       *time.Time
	Died       *time.Time
	BirthPlace string
	Occupation string
	Notes      string
}

// Attrs returns the mutable attributes of p.
func (p Person) Attrs() PersonAttrs {
	return PersonAttrs{
		Name:       p.Name,
		Sex:        p.Sex,
		Born:       p.Born,
		Died:       p.Died,
		BirthPlace: p.BirthPlace,
		Occupation: p.Occupation,
		Notes:      p.Notes,
	}
}

// Validate checks that the attributes are well-formed.
func (a PersonAttrs) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return invalidAttrs("name required")
	}
	switch a.Sex {
	case SexUnknown, SexFemale, SexMale:
	default:
		return invalidAttrs("unknown sex %q", a.Sex)
	}
	if a.Born != nil && a.Died != nil && a.Died.Before(*a.Born) {
		return invalidAttrs("death %s precedes birth %s", FormatDate(a.Died), FormatDate(a.Born))
	}
	return nil
}

func (a PersonAttrs) apply(p *Person) {
	p.Name = strings.TrimSpace(a.Name)
	p.Sex = a.Sex
	p.Born = copyDate(a.Born)
	p.Died = copyDate(a.Died)
	p.BirthPlace = strings.TrimSpace(a.BirthPlace)
	p.Occupation = strings.TrimSpace(a.Occupation)
	p.Notes = a.Notes
}

// ParseDate parses a day-precision date. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, invalidAttrs("date %q: want YYYY-MM-DD", s)
	}
	return &t, nil
}

// FormatDate formats a date, or returns "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (p Person) clone() Person {
	p.Born = copyDate(p.Born)
	p.Died = copyDate(p.Died)
	return p
}
