package format

import "arthasync/internal/core"

type phrase struct{ en, bn string }

var translations = map[string]phrase{
	"dashboard":          {"Dashboard", "ড্যাশবোর্ড"},
	"income":             {"Income", "আয়"},
	"expenses":           {"Expenses", "ব্যয়"},
	"categories":         {"Categories", "ক্যাটাগরি"},
	"reports":            {"Reports", "রিপোর্ট"},
	"budgets":            {"Budgets", "বাজেট"},
	"settings":           {"Settings", "সেটিংস"},
	"totalBalance":       {"Total Balance", "মোট ব্যালেন্স"},
	"totalIncome":        {"Total Income", "মোট আয়"},
	"totalExpenses":      {"Total Expense", "মোট ব্যয়"},
	"netProfit":          {"Net Profit", "নিট মুনাফা"},
	"netLoss":            {"Net Loss", "নিট লোকসান"},
	"addTransaction":     {"Add Transaction", "লেনদেন যোগ করুন"},
	"recentTransactions": {"Recent Transactions", "সাম্প্রতিক লেনদেন"},
	"monthlyTrend":       {"Monthly Trend", "মাসিক প্রবণতা"},
	"expenseBreakdown":   {"Expense Breakdown", "ব্যয় বিশ্লেষণ"},
	"language":           {"Language", "ভাষা"},
	"currency":           {"Currency", "মুদ্রা"},
	"darkMode":           {"Dark Mode", "ডার্ক মোড"},
	"amount":             {"Amount", "পরিমাণ"},
	"date":               {"Date", "তারিখ"},
	"note":               {"Note", "নোট"},
	"save":               {"Save", "সংরক্ষণ করুন"},
	"cancel":             {"Cancel", "বাতিল করুন"},
	"source":             {"Source", "উৎস"},
	"title":              {"Title", "শিরোনাম"},
	"category":           {"Category", "ক্যাটাগরি"},
	"paymentMethod":      {"Payment Method", "পেমেন্ট পদ্ধতি"},
	"search":             {"Search", "অনুসন্ধান"},
	"noData":             {"No data found", "কোনো তথ্য পাওয়া যায়নি"},
	"overBudget":         {"Over Budget!", "বাজেট ছাড়িয়েছে!"},
	"underBudget":        {"Within Budget", "বাজেটের মধ্যে"},
	"pinRequired":        {"Enter PIN to Unlock", "আনলক করতে পিন লিখুন"},
	"security":           {"Security", "নিরাপত্তা"},
}

// T returns the label for key in lang. Unknown keys come back unchanged.
func T(key string, lang core.Language) string {
	p, ok := translations[key]
	if !ok {
		return key
	}
	if lang == core.LangBengali {
		return p.bn
	}
	return p.en
}

// BudgetLabel returns the localized status label for a budget state.
func BudgetLabel(state core.BudgetState, lang core.Language) string {
	if state == core.OverBudget {
		return T("overBudget", lang)
	}
	return T("underBudget", lang)
}

// BalanceLabel reads "Net Profit" for a non-negative balance, "Net Loss" otherwise.
func BalanceLabel(balance core.Money, lang core.Language) string {
	if balance.Cents < 0 {
		return T("netLoss", lang)
	}
	return T("netProfit", lang)
}
