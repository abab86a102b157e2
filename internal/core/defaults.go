package core

// DefaultCurrency is used until the user picks another one.
const DefaultCurrency = "BDT"

// DefaultCategories seeds an empty category collection.
func DefaultCategories() []Category {
	return []Category{
		{ID: "inc1", Name: "Salary", Type: CategoryIncome, Color: "#10b981"},
		{ID: "inc2", Name: "Business", Type: CategoryIncome, Color: "#3b82f6"},
		{ID: "inc3", Name: "Farm Sales", Type: CategoryIncome, Color: "#f59e0b"},
		{ID: "exp1", Name: "Food", Type: CategoryExpense, Color: "#ef4444"},
		{ID: "exp2", Name: "Rent", Type: CategoryExpense, Color: "#8b5cf6"},
		{ID: "exp3", Name: "Transport", Type: CategoryExpense, Color: "#ec4899"},
		{ID: "exp4", Name: "Farm Supplies", Type: CategoryExpense, Color: "#d97706"},
	}
}

// PaymentMethods is the fixed list offered on expense entry.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "pm1", Name: "Cash"},
		{ID: "pm2", Name: "Bank Transfer"},
		{ID: "pm3", Name: "bKash/Mobile Pay"},
		{ID: "pm4", Name: "Credit Card"},
	}
}

func IsPaymentMethod(id string) bool {
	for _, pm := range PaymentMethods() {
		if pm.ID == id {
			return true
		}
	}
	return false
}

func DefaultSettings() AppSettings {
	return AppSettings{
		Language: LangEnglish,
		Currency: DefaultCurrency,
		DarkMode: false,
		PIN:      nil,
	}
}
