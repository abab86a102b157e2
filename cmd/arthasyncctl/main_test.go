package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthasync/internal/app"
	"arthasync/internal/core"
	"arthasync/internal/storage"
)

// setupLedger points the CLI at a fresh SQLite file.
func setupLedger(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("AMQP_URL", "")
	t.Setenv("ADVICE_API_KEY", "")
	t.Setenv("API_KEY", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLedgerFlow(t *testing.T) {
	setupLedger(t)

	out, err := run(t, "add", "income", "5000", "March salary", "--date", "2024-05-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded income")
	assert.Contains(t, out, "৳5,000")

	out, err = run(t, "add", "expense", "1200", "Groceries", "--date", "2024-05-03", "-c", "exp1", "-p", "pm2", "-n", "weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded expense")

	out, err = run(t, "transactions")
	require.NoError(t, err)
	assert.Contains(t, out, "March salary")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "2 transaction(s)")

	out, err = run(t, "transactions", "--type", "expense", "-q", "weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.NotContains(t, out, "March salary")

	out, err = run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "৳3,800")
	assert.Contains(t, out, "Food")
}

func TestTransactionsQueryFields(t *testing.T) {
	setupLedger(t)

	_, err := run(t, "add", "expense", "1200", "Groceries", "--date", "2024-05-03", "-c", "exp1", "-n", "weekly")
	require.NoError(t, err)

	out, err := run(t, "transactions", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "label, note and amount")

	out, err = run(t, "transactions", "-q", "1200")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")

	out, err = run(t, "transactions", "-q", "food")
	require.NoError(t, err)
	assert.NotContains(t, out, "Groceries")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	setupLedger(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad amount", []string{"add", "expense", "abc", "Tea"}, "invalid amount"},
		{"bad date", []string{"add", "income", "10", "Gift", "--date", "2024-13-01"}, "invalid date"},
		{"wrong category type", []string{"add", "income", "10", "Gift", "-c", "exp1"}, "invalid categoryId"},
		{"unknown payment method", []string{"add", "expense", "10", "Tea", "-p", "pm9"}, "invalid paymentMethodId"},
		{"missing args", []string{"add", "expense", "10"}, "accepts 2 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	setupLedger(t)

	_, err := run(t, "delete", "expense", "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such record")

	_, err = run(t, "delete", "all", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")
}

func TestBudgetSetAndShow(t *testing.T) {
	setupLedger(t)

	_, err := run(t, "add", "expense", "800", "Rice", "--date", "2024-05-03", "-c", "exp1")
	require.NoError(t, err)

	out, err := run(t, "budget", "set", "exp1", "1000", "--month", "2024-05")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget set")

	out, err = run(t, "budget", "show", "--month", "2024-05")
	require.NoError(t, err)
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "80%")
	assert.Contains(t, out, "Within Budget")

	_, err = run(t, "budget", "set", "inc1", "1000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid categoryId")
}

func TestSettingsAndPIN(t *testing.T) {
	setupLedger(t)

	_, err := run(t, "settings", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	out, err := run(t, "settings", "set", "--currency", "usd", "--dark-mode", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "USD")

	_, err = run(t, "settings", "set", "--new-pin", "12a4")
	require.Error(t, err)

	_, err = run(t, "settings", "set", "--new-pin", "1234")
	require.NoError(t, err)

	_, err = run(t, "summary")
	assert.ErrorIs(t, err, errLocked)

	_, err = run(t, "--pin", "9999", "summary")
	assert.ErrorIs(t, err, app.ErrIncorrectPIN)

	_, err = run(t, "--pin", "1234", "settings", "set", "--clear-pin")
	require.NoError(t, err)

	_, err = run(t, "summary")
	require.NoError(t, err)
}

func TestAdviceDisabled(t *testing.T) {
	setupLedger(t)

	out, err := run(t, "advice")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestCategories(t *testing.T) {
	setupLedger(t)

	out, err := run(t, "categories", "add", "Medicine", "--color", "#22c55e")
	require.NoError(t, err)
	assert.Contains(t, out, "Added category")

	out, err = run(t, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Medicine")
	assert.Contains(t, out, "Salary")

	_, err = run(t, "categories", "add", "Bad", "--type", "savings")
	require.Error(t, err)

	out, err = run(t, "categories", "payment-methods")
	require.NoError(t, err)
	assert.Contains(t, out, "bKash/Mobile Pay")
}

func TestExport(t *testing.T) {
	setupLedger(t)

	_, err := run(t, "add", "income", "5000", "Salary", "--date", "2024-05-01")
	require.NoError(t, err)
	_, err = run(t, "add", "expense", "250", "Bus", "--date", "2024-05-02", "-c", "exp3")
	require.NoError(t, err)

	out, err := run(t, "export")
	require.NoError(t, err)
	var snap app.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Len(t, snap.Incomes, 1)
	require.Len(t, snap.Expenses, 1)
	assert.Equal(t, "Bus", snap.Expenses[0].Title)
	assert.Len(t, snap.Categories, 7)
	assert.Positive(t, snap.Revision)

	path := filepath.Join(t.TempDir(), "backup.json")
	out, err = run(t, "export", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 income(s) and 1 expense(s)")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Salary"`)
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{150, "██████████"},
		{-5, "░░░░░░░░░░"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, progressBar(tt.percent, 10))
	}
}

func TestDescribe(t *testing.T) {
	err := describe(&core.ValidationError{Field: "amount", Err: core.ErrMissingAmount})
	assert.EqualError(t, err, "invalid amount: amount is required")
	assert.ErrorIs(t, err, core.ErrMissingAmount)

	err = describe(storage.ErrNotFound)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	plain := errors.New("boom")
	assert.Equal(t, plain, describe(plain))
}
