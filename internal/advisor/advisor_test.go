package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthasync/internal/core"
	"arthasync/internal/log"
)

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int32
	text     string
	err      error
	delay    time.Duration
	requests []Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req Request) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func sampleInput(lang core.Language) Input {
	return Input{
		Incomes: []core.Income{{ID: "i1", Date: core.NewDate(2024, 5, 1), Source: "Salary", CategoryID: "inc1", Amount: core.Cents(500000)}},
		Expenses: []core.Expense{
			{ID: "e1", Date: core.NewDate(2024, 5, 15), Title: "Groceries", CategoryID: "exp1", Amount: core.Cents(120000)},
			{ID: "e2", Date: core.NewDate(2024, 5, 16), Title: "Rent", CategoryID: "exp2", Amount: core.Cents(200000)},
		},
		Categories: core.DefaultCategories(),
		Language:   lang,
	}
}

func TestAdviseDisabled(t *testing.T) {
	a := New(nil, Options{Logger: log.Discard()})

	assert.False(t, a.Enabled())
	assert.Equal(t, "AI insights disabled (API key missing).", a.Advise(context.Background(), sampleInput(core.LangEnglish)))
	assert.Equal(t, "AI অন্তর্দৃষ্টি নিষ্ক্রিয় (API কী নেই)।", a.Advise(context.Background(), sampleInput(core.LangBengali)))
}

func TestAdviseSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "  Spend less on rent.  "}
	a := New(gen, Options{Logger: log.Discard()})

	got := a.Advise(context.Background(), sampleInput(core.LangEnglish))
	assert.Equal(t, "Spend less on rent.", got)
	require.Len(t, gen.requests, 1)
	assert.Equal(t, Persona, gen.requests[0].SystemPersona)
	assert.Equal(t, core.LangEnglish, gen.requests[0].Language)
}

func TestAdviseProviderError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	a := New(gen, Options{Logger: log.Discard()})

	assert.Equal(t, "Financial insights unavailable right now.", a.Advise(context.Background(), sampleInput(core.LangEnglish)))
	assert.Equal(t, "আর্থিক অন্তর্দৃষ্টি এই মুহূর্তে উপলব্ধ নয়।", a.Advise(context.Background(), sampleInput(core.LangBengali)))
}

func TestAdviseEmptyResponse(t *testing.T) {
	a := New(&fakeGenerator{}, Options{Logger: log.Discard()})
	assert.Equal(t, "Could not generate advice.", a.Advise(context.Background(), sampleInput(core.LangEnglish)))
	assert.Equal(t, "উপদেশ তৈরি করা যায়নি।", a.Advise(context.Background(), sampleInput(core.LangBengali)))
}

func TestAdviseTimeout(t *testing.T) {
	gen := &fakeGenerator{text: "late", delay: time.Second}
	a := New(gen, Options{Timeout: 20 * time.Millisecond, Logger: log.Discard()})

	start := time.Now()
	got := a.Advise(context.Background(), sampleInput(core.LangEnglish))
	assert.Equal(t, UnavailableMessage(core.LangEnglish), got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAdviseCache(t *testing.T) {
	gen := &fakeGenerator{text: "cached advice"}
	a := New(gen, Options{CacheTTL: time.Minute, Logger: log.Discard()})
	require.NotNil(t, a.Cache())

	for i := 0; i < 3; i++ {
		assert.Equal(t, "cached advice", a.Advise(context.Background(), sampleInput(core.LangEnglish)))
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&gen.calls))

	// A different language is a different prompt.
	a.Advise(context.Background(), sampleInput(core.LangBengali))
	assert.EqualValues(t, 2, atomic.LoadInt32(&gen.calls))

	stats := a.CacheStats()
	assert.EqualValues(t, 2, stats.Hits)
	assert.EqualValues(t, 2, stats.Misses)
	assert.Equal(t, 2, stats.Size)
}

func TestAdviseNoCacheByDefault(t *testing.T) {
	gen := &fakeGenerator{text: "fresh"}
	a := New(gen, Options{Logger: log.Discard()})
	assert.Nil(t, a.Cache())
	assert.Zero(t, a.CacheStats())

	a.Advise(context.Background(), sampleInput(core.LangEnglish))
	a.Advise(context.Background(), sampleInput(core.LangEnglish))
	assert.EqualValues(t, 2, atomic.LoadInt32(&gen.calls))
}

func TestAdviseCollapsesConcurrentCalls(t *testing.T) {
	gen := &fakeGenerator{text: "shared", delay: 100 * time.Millisecond}
	a := New(gen, Options{Logger: log.Discard()})

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Advise(context.Background(), sampleInput(core.LangEnglish))
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
	assert.Less(t, atomic.LoadInt32(&gen.calls), int32(5))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleInput(core.LangBengali))

	assert.Contains(t, prompt, "Language: Bengali.")
	assert.Contains(t, prompt, "Total Income: 5000")
	assert.Contains(t, prompt, "Total Expense: 3200")
	assert.Contains(t, prompt, "Top Expenses: Rent: 2000, Food: 1200")
	assert.True(t, strings.HasSuffix(prompt, "Be friendly and concise."))
}

func TestBuildPromptNoExpenses(t *testing.T) {
	in := Input{Incomes: sampleInput(core.LangEnglish).Incomes, Categories: core.DefaultCategories()}
	prompt := BuildPrompt(in)
	assert.Contains(t, prompt, "Language: English.")
	assert.Contains(t, prompt, "Top Expenses: \n")
	assert.True(t, in.HasTransactions())
	assert.False(t, Input{}.HasTransactions())
}

func TestNewGeneratorNotConfigured(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{Provider: ProviderGemini})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewGenerator(context.Background(), Config{Provider: "bogus", APIKey: "k"})
	assert.Error(t, err)
}
