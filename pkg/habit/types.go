package habit

import (
	"strings"
	"time"
)

// DateFormat is the layout for log entry dates. Logs are tracked at
// calendar-day granularity, so the wire and storage format is a plain date
// with no time or zone component.
const DateFormat = "2006-01-02"

// Type classifies how a habit's log values are interpreted.
type Type string

const (
	// TypeBoolean habits are done-or-not: any value >= 1 counts as done.
	TypeBoolean Type = "boolean"
	// TypeNumeric habits track a quantity against an optional goal.
	TypeNumeric Type = "numeric"
)

// Valid reports whether t is a known habit type.
func (t Type) Valid() bool {
	return t == TypeBoolean || t == TypeNumeric
}

// Validation limits for habit fields.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 1000
	MaxCategoryLength    = 100
)

// Habit is a single tracked habit.
type Habit struct {
	ID          int64     `json:"id"`           // Backend-assigned, immutable, never reused
	Name        string    `json:"name"`         // Required, 1..200 chars
	Description string    `json:"description"`  // Optional free text
	Category    string    `json:"category"`     // Optional grouping label
	Type        Type      `json:"type"`         // boolean or numeric
	Goal        *float64  `json:"goal"`         // Target value for numeric habits
	ParentID    *int64    `json:"parent_id"`    // Set when this habit is a sub-habit
	SubhabitIDs []int64   `json:"subhabit_ids"` // Derived from ParentID links at read time
	CreatedAt   time.Time `json:"created_at"`   // Assigned by the backend on create
}

// Clone returns a deep copy of h. Backends hand out clones so callers can
// never mutate stored state through a returned pointer.
func (h *Habit) Clone() *Habit {
	c := *h
	if h.Goal != nil {
		g := *h.Goal
		c.Goal = &g
	}
	if h.ParentID != nil {
		p := *h.ParentID
		c.ParentID = &p
	}
	if h.SubhabitIDs != nil {
		c.SubhabitIDs = append([]int64(nil), h.SubhabitIDs...)
	}
	return &c
}

// LogEntry is one recorded observation for a habit on a calendar day.
type LogEntry struct {
	ID        int64     `json:"id"`         // Backend-assigned, immutable
	HabitID   int64     `json:"habit_id"`   // Owning habit
	Date      string    `json:"date"`       // DateFormat day the entry applies to
	Value     *float64  `json:"value"`      // Recorded value; nil means unset
	CreatedAt time.Time `json:"created_at"` // Assigned by the backend on create
}

// Clone returns a deep copy of e.
func (e *LogEntry) Clone() *LogEntry {
	c := *e
	if e.Value != nil {
		v := *e.Value
		c.Value = &v
	}
	return &c
}

// NewHabit carries the attributes for creating a habit. The zero value is
// invalid; Name must be set. Type defaults to boolean when empty.
type NewHabit struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        Type     `json:"type"`
	Goal        *float64 `json:"goal"`
	ParentID    *int64   `json:"parent_id"`
}

// Normalize trims the name and fills in the default type. It is called by
// Validate and again by backends so both see the same canonical input.
func (n *NewHabit) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	if n.Type == "" {
		n.Type = TypeBoolean
	}
}

// Validate normalizes n and checks it against the field limits. It returns
// a *ValidationError describing the first violation, or nil.
func (n *NewHabit) Validate() error {
	n.Normalize()
	if n.Name == "" {
		return NewValidationError("name", "name is required")
	}
	if len(n.Name) > MaxNameLength {
		return NewValidationError("name", "name must be at most 200 characters")
	}
	if len(n.Description) > MaxDescriptionLength {
		return NewValidationError("description", "description must be at most 1000 characters")
	}
	if len(n.Category) > MaxCategoryLength {
		return NewValidationError("category", "category must be at most 100 characters")
	}
	if !n.Type.Valid() {
		return NewValidationError("type", "type must be \"boolean\" or \"numeric\"")
	}
	if n.Goal != nil && *n.Goal <= 0 {
		return NewValidationError("goal", "goal must be greater than zero")
	}
	return nil
}

// HabitUpdate carries a partial update. Nil fields are left unchanged.
// ID, CreatedAt, Type, and ParentID are immutable and have no update field.
type HabitUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Goal        *float64 `json:"goal"`
}

// IsZero reports whether the update changes nothing.
func (u *HabitUpdate) IsZero() bool {
	return u.Name == nil && u.Description == nil && u.Category == nil && u.Goal == nil
}

// Validate checks the set fields against the same limits as creation.
func (u *HabitUpdate) Validate() error {
	if u.Name != nil {
		trimmed := strings.TrimSpace(*u.Name)
		if trimmed == "" {
			return NewValidationError("name", "name is required")
		}
		if len(trimmed) > MaxNameLength {
			return NewValidationError("name", "name must be at most 200 characters")
		}
		*u.Name = trimmed
	}
	if u.Description != nil && len(*u.Description) > MaxDescriptionLength {
		return NewValidationError("description", "description must be at most 1000 characters")
	}
	if u.Category != nil && len(*u.Category) > MaxCategoryLength {
		return NewValidationError("category", "category must be at most 100 characters")
	}
	if u.Goal != nil && *u.Goal <= 0 {
		return NewValidationError("goal", "goal must be greater than zero")
	}
	return nil
}

// Apply merges the update into h in place.
func (u *HabitUpdate) Apply(h *Habit) {
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Description != nil {
		h.Description = *u.Description
	}
	if u.Category != nil {
		h.Category = *u.Category
	}
	if u.Goal != nil {
		g := *u.Goal
		h.Goal = &g
	}
}

// NewLog carries the attributes for recording a log entry.
type NewLog struct {
	HabitID int64    `json:"habit_id"`
	Date    string   `json:"date"`
	Value   *float64 `json:"value"`
}

// Validate checks the date format and value. A missing date is rejected; an
// unparseable one reports the expected layout.
func (n *NewLog) Validate() error {
	if n.Date == "" {
		return NewValidationError("date", "date is required")
	}
	if _, err := time.Parse(DateFormat, n.Date); err != nil {
		return NewValidationError("date", "date must be formatted as YYYY-MM-DD")
	}
	if n.Value != nil && *n.Value < 0 {
		return NewValidationError("value", "value must not be negative")
	}
	return nil
}
