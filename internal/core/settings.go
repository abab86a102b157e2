package core

import (
	"strings"
)

// SettingsPatch carries a partial settings update. Nil fields keep their
// current value. An empty PIN removes the PIN.
type SettingsPatch struct {
	Language *Language `json:"language,omitempty"`
	Currency *string   `json:"currency,omitempty"`
	DarkMode *bool     `json:"darkMode,omitempty"`
	PIN      *string   `json:"pin,omitempty"`
}

func (p SettingsPatch) IsEmpty() bool {
	return p.Language == nil && p.Currency == nil && p.DarkMode == nil && p.PIN == nil
}

// Validate checks the fields that are set. Currency is only checked for
// shape here; format.ValidateCurrency knows the ISO table.
func (p SettingsPatch) Validate() error {
	if p.Language != nil {
		if err := p.Language.Validate(); err != nil {
			return invalid("language", err)
		}
	}
	if p.Currency != nil {
		c := strings.TrimSpace(*p.Currency)
		if len(c) != 3 {
			return invalid("currency", ErrInvalidCurrency)
		}
	}
	if p.PIN != nil && *p.PIN != "" {
		if err := ValidatePIN(*p.PIN); err != nil {
			return invalid("pin", err)
		}
	}
	return nil
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s AppSettings) AppSettings {
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Currency != nil {
		s.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.PIN != nil {
		if *p.PIN == "" {
			s.PIN = nil
		} else {
			pin := *p.PIN
			s.PIN = &pin
		}
	}
	return s
}

// WithDefaults fills fields an older or partial record left empty.
func (s AppSettings) WithDefaults() AppSettings {
	def := DefaultSettings()
	if s.Language == "" {
		s.Language = def.Language
	}
	if s.Currency == "" {
		s.Currency = def.Currency
	}
	return s
}
