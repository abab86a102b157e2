package app

import (
	"context"
	"errors"

	"arthasync/internal/log"
)

// GateState is the PIN gate state for this process.
type GateState string

const (
	Locked   GateState = "LOCKED"
	Unlocked GateState = "UNLOCKED"
)

// ErrIncorrectPIN is returned by Unlock on a mismatch. The gate stays locked.
var ErrIncorrectPIN = errors.New("incorrect PIN")

// Gate returns the current gate state.
func (c *Controller) Gate() GateState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return Locked
	}
	return c.gate
}

// IsLocked reports whether data access is currently blocked.
func (c *Controller) IsLocked() bool {
	return c.Gate() == Locked
}

// Unlock opens the gate when pin equals the stored PIN exactly. Once
// unlocked the gate stays open until the next Load.
func (c *Controller) Unlock(ctx context.Context, pin string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLoaded(); err != nil {
		return err
	}
	if c.gate == Unlocked {
		return nil
	}
	if c.settings.PIN == nil || pin != *c.settings.PIN {
		c.logger.WithComponent(log.ComponentPINGate).WarnContext(ctx, "Unlock rejected",
			log.FieldOperation, log.OpUnlock,
			"error_type", log.ErrorTypeAuth)
		return ErrIncorrectPIN
	}
	c.gate = Unlocked
	c.logger.WithComponent(log.ComponentPINGate).InfoContext(ctx, "Unlocked", log.FieldOperation, log.OpUnlock)
	return nil
}
