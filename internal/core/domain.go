package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

const (
	LangEnglish Language = "en"
	LangBengali Language = "bn"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type (
	CategoryType string

	Language string

	// Date is a calendar date without time of day, stored as YYYY-MM-DD.
	Date struct {
		time.Time
	}

	// Month is a YYYY-MM key.
	Month string

	Category struct {
		ID    string       `json:"id"`
		Name  string       `json:"name"`
		Type  CategoryType `json:"type"`
		Icon  string       `json:"icon,omitempty"`
		Color string       `json:"color,omitempty"`
	}

	Income struct {
		ID         string `json:"id"`
		Date       Date   `json:"date"`
		Source     string `json:"source"`
		CategoryID string `json:"categoryId"`
		Amount     Money  `json:"amount"`
		Note       string `json:"note"`
	}

	Expense struct {
		ID              string `json:"id"`
		Date            Date   `json:"date"`
		Title           string `json:"title"`
		CategoryID      string `json:"categoryId"`
		PaymentMethodID string `json:"paymentMethodId"`
		Amount          Money  `json:"amount"`
		Note            string `json:"note"`
	}

	Budget struct {
		ID         string `json:"id"`
		CategoryID string `json:"categoryId"`
		Amount     Money  `json:"amount"`
		Month      Month  `json:"month"`
	}

	AppSettings struct {
		Language Language `json:"language"`
		Currency string   `json:"currency"`
		DarkMode bool     `json:"darkMode"`
		PIN      *string  `json:"pin"`
	}

	PaymentMethod struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingAmount    = errors.New("amount is required")
	ErrMissingLabel     = errors.New("source or title is required")
	ErrMissingCategory  = errors.New("category is required")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidType      = errors.New("invalid category type")
	ErrInvalidLanguage  = errors.New("invalid language")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidPIN       = errors.New("pin must be 4 digits")
	ErrInvalidColorCode = errors.New("invalid color")
)

// ValidationError reports a rejected user input together with the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Month returns the YYYY-MM bucket the date belongs to.
func (d Date) Month() Month {
	return Month(d.Format(monthLayout))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Some stored records carry a full timestamp; only the calendar part matters.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// ParseMonth validates a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", ErrInvalidMonth
	}
	return Month(s), nil
}

// MonthOf returns the month key for t in t's location.
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

// Time returns the first instant of the month in UTC.
func (m Month) Time() (time.Time, error) {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

func (m Month) Validate() error {
	_, err := m.Time()
	return err
}

func (t CategoryType) Validate() error {
	switch t {
	case CategoryIncome, CategoryExpense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (l Language) Validate() error {
	switch l {
	case LangEnglish, LangBengali:
		return nil
	default:
		return ErrInvalidLanguage
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if len(c.Name) > 60 {
		return invalid("name", errors.New("name too long (max 60 characters)"))
	}
	if err := c.Type.Validate(); err != nil {
		return invalid("type", err)
	}
	if c.Color != "" && !isHexColor(c.Color) {
		return invalid("color", ErrInvalidColorCode)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 && len(s) != 4 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if strings.TrimSpace(i.Source) == "" {
		return invalid("source", ErrMissingLabel)
	}
	if err := i.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if strings.TrimSpace(e.Title) == "" {
		return invalid("title", ErrMissingLabel)
	}
	if err := e.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return invalid("categoryId", ErrMissingCategory)
	}
	if err := b.Month.Validate(); err != nil {
		return invalid("month", err)
	}
	if err := b.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	return nil
}

// Locked reports whether the settings carry a PIN.
func (s AppSettings) Locked() bool {
	return s.PIN != nil && *s.PIN != ""
}

// ValidatePIN accepts exactly four ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}
