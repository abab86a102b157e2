package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"arthasync/internal/amqp"
	"arthasync/internal/app"
	"arthasync/internal/core"
	"arthasync/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports whether the data is loaded and the backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if _, err := s.ctrl.Settings(); err != nil {
		checks["data"] = "not_loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["data"] = "ok"
	}

	if s.ready == nil {
		checks["storage"] = "not_configured"
	} else if err := s.ready(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["rate_limiter"] = "ok"
	if !s.limiter.Enabled() {
		checks["rate_limiter"] = "disabled"
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

type lockState struct {
	State  app.GateState `json:"state"`
	Locked bool          `json:"locked"`
}

func (s *Server) handleLockState(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.Gate()
	NewResponse().JSON(lockState{State: state, Locked: state == app.Locked}).Write(w)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	if err := s.ctrl.Unlock(r.Context(), p.Raw("pin")); err != nil {
		s.fail(w, r, "unlock", err)
		return
	}
	NewResponse().
		TriggerDataRefresh(s.ctrl.Revision()).
		JSON(lockState{State: app.Unlocked}).
		Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.ctrl.Dashboard()
	if err != nil {
		s.fail(w, r, "dashboard", err)
		return
	}
	NewResponse().JSON(d).Write(w)
}

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, err := core.ParseKind(q.Get("type"))
	if err != nil {
		s.fail(w, r, "list transactions", &core.ValidationError{Field: "type", Err: err})
		return
	}
	list, err := s.ctrl.Transactions(app.TransactionFilter{Query: sanitizeInput(q.Get("q")), Kind: kind})
	if err != nil {
		s.fail(w, r, "list transactions", err)
		return
	}
	if list == nil {
		list = []core.Transaction{}
	}
	NewResponse().JSON(transactionList{Transactions: list, Count: len(list)}).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	s.createTransaction(w, r, core.KindIncome)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	s.createTransaction(w, r, core.KindExpense)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request, kind core.TransactionKind) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	in := app.TransactionInput{
		Kind:       kind,
		Date:       p.Get("date"),
		Label:      firstNonEmpty(p.Get("source"), p.Get("title"), p.Get("label")),
		CategoryID: p.Get("categoryId"),
		Amount:     p.Get("amount"),
		Note:       p.Get("note"),
	}
	if kind == core.KindExpense {
		in.PaymentMethodID = p.Get("paymentMethodId")
	}

	tx, err := s.ctrl.AddTransaction(r.Context(), in)
	if err != nil {
		s.fail(w, r, "create transaction", err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		TriggerRecordChanged(eventKind(kind), amqp.OpCreated, tx.Date.Month()).
		TriggerDataRefresh(s.ctrl.Revision()).
		JSON(tx).
		Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.deleteTransaction(w, r, core.KindIncome)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteTransaction(w, r, core.KindExpense)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, kind core.TransactionKind) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.ctrl.DeleteTransaction(r.Context(), kind, id); err != nil {
		s.fail(w, r, "delete transaction", err)
		return
	}
	NewResponse().
		Status(http.StatusNoContent).
		TriggerRecordChanged(eventKind(kind), amqp.OpDeleted, "").
		TriggerDataRefresh(s.ctrl.Revision()).
		Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ctrl.Categories()
	if err != nil {
		s.fail(w, r, "list categories", err)
		return
	}
	NewResponse().JSON(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	cat, err := s.ctrl.AddCategory(r.Context(), core.Category{
		Name:  p.Get("name"),
		Type:  core.CategoryType(strings.ToUpper(p.Get("type"))),
		Icon:  p.Get("icon"),
		Color: p.Get("color"),
	})
	if err != nil {
		s.fail(w, r, "create category", err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		TriggerRecordChanged(app.KindCategory, amqp.OpCreated, "").
		TriggerDataRefresh(s.ctrl.Revision()).
		JSON(cat).
		Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, "delete category", err)
		return
	}
	NewResponse().
		Status(http.StatusNoContent).
		TriggerRecordChanged(app.KindCategory, amqp.OpDeleted, "").
		TriggerDataRefresh(s.ctrl.Revision()).
		Write(w)
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.ctrl.PaymentMethods()).Write(w)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		s.fail(w, r, "budgets", err)
		return
	}
	view, err := s.ctrl.Budgets(month)
	if err != nil {
		s.fail(w, r, "budgets", err)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	b, err := s.ctrl.SetBudget(r.Context(), app.BudgetInput{
		CategoryID: p.Get("categoryId"),
		Month:      p.Get("month"),
		Amount:     p.Get("amount"),
	})
	if err != nil {
		s.fail(w, r, "set budget", err)
		return
	}
	NewResponse().
		TriggerRecordChanged(app.KindBudget, amqp.OpUpdated, b.Month).
		TriggerDataRefresh(s.ctrl.Revision()).
		JSON(b).
		Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := s.ctrl.Settings()
	if err != nil {
		s.fail(w, r, "settings", err)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	var patch core.SettingsPatch
	if v := p.Optional("language"); v != nil {
		lang := core.Language(strings.ToLower(*v))
		patch.Language = &lang
	}
	patch.Currency = p.Optional("currency")
	patch.PIN = p.OptionalRaw("pin")
	dark, err := p.OptionalBool("darkMode")
	if err != nil {
		s.fail(w, r, "update settings", &core.ValidationError{Field: "darkMode", Err: err})
		return
	}
	patch.DarkMode = dark

	view, err := s.ctrl.UpdateSettings(r.Context(), patch)
	if err != nil {
		s.fail(w, r, "update settings", err)
		return
	}
	NewResponse().
		TriggerRecordChanged(app.KindSettings, amqp.OpUpdated, "").
		TriggerDataRefresh(s.ctrl.Revision()).
		JSON(view).
		Write(w)
}

// handleAdvice refreshes advice. With ?cached=1 it returns the stored advice
// without calling the provider.
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	if cached, _ := strconv.ParseBool(r.URL.Query().Get("cached")); cached {
		NewResponse().JSON(s.ctrl.LatestAdvice()).Write(w)
		return
	}
	advice, err := s.ctrl.RefreshAdvice(r.Context())
	if err != nil {
		s.fail(w, r, "advice", err)
		return
	}
	NewResponse().JSON(advice).Write(w)
}

// parseBody reads the request body. On failure it writes a 400 and returns false.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Malformed request body",
			log.FieldPath, r.URL.Path,
			log.FieldError, err.Error())
		BadRequestError("malformed request body").Write(w)
		return nil, false
	}
	return p, true
}

// fail writes the mapped error response. Unexpected errors are logged with
// the request context; user errors only at debug level.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorFromDomain(err)
	if resp.statusCode >= http.StatusInternalServerError && !errors.Is(err, app.ErrNotLoaded) {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, op, log.LogFields{"error_type": log.ErrorTypeInternal})
	} else {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op,
			log.FieldError, err.Error())
	}
	resp.Write(w)
}

func eventKind(kind core.TransactionKind) string {
	if kind == core.KindIncome {
		return app.KindIncome
	}
	return app.KindExpense
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
