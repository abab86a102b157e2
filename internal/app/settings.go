package app

import (
	"context"
	"fmt"

	"arthasync/internal/amqp"
	"arthasync/internal/core"
	"arthasync/internal/format"
)

// SettingsView is the settings record as shown to clients. The PIN itself
// is never returned.
type SettingsView struct {
	Language   core.Language `json:"language"`
	Currency   string        `json:"currency"`
	DarkMode   bool          `json:"darkMode"`
	PINEnabled bool          `json:"pinEnabled"`
}

func viewSettings(s core.AppSettings) SettingsView {
	return SettingsView{
		Language:   s.Language,
		Currency:   s.Currency,
		DarkMode:   s.DarkMode,
		PINEnabled: s.Locked(),
	}
}

// Settings returns the current settings.
func (c *Controller) Settings() (SettingsView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkLoaded(); err != nil {
		return SettingsView{}, err
	}
	return viewSettings(c.settings), nil
}

// UpdateSettings validates and merges patch, then re-reads the stored
// settings. Changing the PIN does not re-lock the running session.
func (c *Controller) UpdateSettings(ctx context.Context, patch core.SettingsPatch) (SettingsView, error) {
	if err := patch.Validate(); err != nil {
		return SettingsView{}, err
	}
	if patch.Currency != nil {
		if err := format.ValidateCurrency(*patch.Currency); err != nil {
			return SettingsView{}, fieldError("currency", err)
		}
	}

	c.mu.Lock()
	if err := c.checkLoaded(); err != nil {
		c.mu.Unlock()
		return SettingsView{}, err
	}
	if patch.IsEmpty() {
		view := viewSettings(c.settings)
		c.mu.Unlock()
		return view, nil
	}
	if _, err := c.store.UpdateSettings(ctx, patch); err != nil {
		c.mu.Unlock()
		return SettingsView{}, fmt.Errorf("update settings: %w", err)
	}
	settings, err := c.store.Settings(ctx)
	if err != nil {
		c.mu.Unlock()
		return SettingsView{}, fmt.Errorf("reload settings: %w", err)
	}
	c.settings = settings
	rev := c.changed()
	view := viewSettings(settings)
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Settings updated",
		"language", string(settings.Language),
		"currency", settings.Currency,
		"pin_enabled", view.PINEnabled)
	c.publish(ctx, KindSettings, amqp.OpUpdated, "", "", rev)
	return view, nil
}

// Categories returns all categories.
func (c *Controller) Categories() ([]core.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkLoaded(); err != nil {
		return nil, err
	}
	return append([]core.Category(nil), c.categories...), nil
}

// AddCategory persists a new category and appends it to the cache.
func (c *Controller) AddCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	c.mu.Lock()
	if err := c.checkLoaded(); err != nil {
		c.mu.Unlock()
		return core.Category{}, err
	}
	saved, err := c.store.AddCategory(ctx, cat)
	if err != nil {
		c.mu.Unlock()
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	c.categories = append(c.categories, saved)
	rev := c.changed()
	c.mu.Unlock()

	c.publish(ctx, KindCategory, amqp.OpCreated, saved.ID, "", rev)
	return saved, nil
}

// DeleteCategory removes a category. Transactions and budgets that point
// at it are kept and show the category as "Unknown".
func (c *Controller) DeleteCategory(ctx context.Context, id string) error {
	c.mu.Lock()
	if err := c.checkLoaded(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.store.DeleteCategory(ctx, id); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("delete category: %w", err)
	}
	c.categories = filterOut(c.categories, id, func(cat core.Category) string { return cat.ID }, nil)
	rev := c.changed()
	c.mu.Unlock()

	c.publish(ctx, KindCategory, amqp.OpDeleted, id, "", rev)
	return nil
}

// PaymentMethods returns the fixed payment method list.
func (c *Controller) PaymentMethods() []core.PaymentMethod {
	return core.PaymentMethods()
}
