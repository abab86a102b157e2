package app

import (
	"context"

	"arthasync/internal/advisor"
	"arthasync/internal/core"
	"arthasync/internal/log"
)

type adviceState struct {
	text     string
	revision int64
	language core.Language
}

// Advice is the latest advice and the data revision it was computed for.
type Advice struct {
	Text     string `json:"text"`
	Revision int64  `json:"revision"`
	// Stale is set when the data changed after the advice was produced.
	Stale bool `json:"stale"`
}

// RefreshAdvice requests advice for the current data. The call runs without
// holding the controller lock. A result is stored only if no newer revision
// has been stored in the meantime, so a slow response for old data never
// replaces advice for newer data.
func (c *Controller) RefreshAdvice(ctx context.Context) (Advice, error) {
	c.mu.RLock()
	if err := c.checkLoaded(); err != nil {
		c.mu.RUnlock()
		return Advice{}, err
	}
	snap := c.snapshotLocked()
	cached := c.advice
	c.mu.RUnlock()

	lang := snap.Settings.Language
	if cached.text != "" && cached.revision == snap.Revision && cached.language == lang {
		return Advice{Text: cached.text, Revision: cached.revision}, nil
	}

	in := advisor.Input{
		Incomes:    snap.Incomes,
		Expenses:   snap.Expenses,
		Categories: snap.Categories,
		Language:   lang,
	}
	var text string
	switch {
	case c.adviser == nil:
		text = advisor.DisabledMessage(lang)
	case !in.HasTransactions():
		text = advisor.PlaceholderMessage(lang)
	default:
		text = c.adviser.Advise(ctx, in)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if snap.Revision >= c.advice.revision {
		c.advice = adviceState{text: text, revision: snap.Revision, language: lang}
	} else {
		c.logger.DebugContext(ctx, "Discarding advice for an older revision",
			log.FieldRevision, snap.Revision,
			"current_advice_revision", c.advice.revision)
		text = c.advice.text
		return Advice{Text: text, Revision: c.advice.revision, Stale: c.advice.revision < c.revision}, nil
	}
	return Advice{Text: text, Revision: snap.Revision, Stale: snap.Revision < c.revision}, nil
}

// LatestAdvice returns the stored advice without calling the provider.
func (c *Controller) LatestAdvice() Advice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Advice{
		Text:     c.advice.text,
		Revision: c.advice.revision,
		Stale:    c.advice.revision < c.revision,
	}
}
