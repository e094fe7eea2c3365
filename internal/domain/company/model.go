package company

import (
	"time"
)

// Account numbers sort numerically when parseable, so the all-zeros number
// keeps the default category first in every chart-of-accounts listing.
const (
	UncategorizedNumber = "00000"
	UncategorizedName   = "Uncategorized"
	UncategorizedType   = "Other"
)

// Company represents one business entity owned by a user.
type Company struct {
	CompanyID      string    `json:"companyId"`
	OwnerID        string    `json:"ownerId"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	BankAccountIDs []string  `json:"bankAccountIds,omitempty"`
}

// Data is the full accounting dataset for one company. It is stored as a
// single document and always replaced wholesale on the read side.
type Data struct {
	CompanyID      string           `json:"companyId"`
	Transactions   []Transaction    `json:"transactions"`
	Accounts       []ChartOfAccount `json:"accounts"`
	CategoryRules  []CategoryRule   `json:"categoryRules"`
	Customers      []Customer       `json:"customers"`
	Vendors        []Vendor         `json:"vendors"`
	Invoices       []Invoice        `json:"invoices"`
	BankAccounts   []BankAccount    `json:"bankAccounts"`
	Payroll        Payroll          `json:"payroll"`
	WorkManagement WorkManagement   `json:"workManagement"`
	Tools          Tools            `json:"tools"`
}

// Transaction is a single bank or journal line in a company's books.
type Transaction struct {
	TransactionID string            `json:"transactionId"`
	Date          string            `json:"date"` // YYYY-MM-DD
	Description   string            `json:"description"`
	Amount        int64             `json:"amount"` // Amount in smallest currency unit (e.g., cents)
	Category      string            `json:"category,omitempty"`
	Excluded      bool              `json:"excluded,omitempty"`
	Origin        string            `json:"origin,omitempty"` // e.g. "reconciliation"
	JournalEntry  bool              `json:"journalEntry,omitempty"`
	Edits         []TransactionEdit `json:"edits,omitempty"`
}

// TransactionEdit records one revision of a transaction as a field-level diff.
type TransactionEdit struct {
	EditID    string                 `json:"editId"`
	Timestamp time.Time              `json:"timestamp"`
	Changes   map[string]FieldChange `json:"changes"`
}

// FieldChange captures the before/after values of a single edited field.
type FieldChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CategoryRule maps free-text patterns to a chart-of-accounts category.
// Patterns match case-insensitively as substrings of the description.
type CategoryRule struct {
	RuleID   string   `json:"ruleId"`
	Category string   `json:"category"` // account number
	Patterns []string `json:"patterns"`
}

// ChartOfAccount is one entry of a company's chart of accounts, keyed by its
// unique account number.
type ChartOfAccount struct {
	AccountID string `json:"accountId"`
	Number    string `json:"number"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Active    bool   `json:"active"`
}

// Customer represents a customer the company invoices.
type Customer struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address,omitempty"`
}

// Vendor represents a supplier the company pays.
type Vendor struct {
	VendorID string `json:"vendorId"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Invoice is an issued invoice. Amounts are in the smallest currency unit.
type Invoice struct {
	InvoiceID  string `json:"invoiceId"`
	CustomerID string `json:"customerId"`
	Number     string `json:"number"`
	Date       string `json:"date"`
	DueDate    string `json:"dueDate,omitempty"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status,omitempty"`
}

// BankAccount is a linked bank account feeding transactions.
type BankAccount struct {
	BankAccountID string `json:"bankAccountId"`
	Name          string `json:"name"`
	Institution   string `json:"institution,omitempty"`
	Mask          string `json:"mask,omitempty"`
}

// Payroll is the payroll sub-aggregate. Its computations are out of core
// scope; the shape is carried so documents round-trip losslessly.
type Payroll struct {
	Employees []Employee `json:"employees"`
	PayRuns   []PayRun   `json:"payRuns"`
}

// Employee is one payroll employee record.
type Employee struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Rate       int64  `json:"rate,omitempty"`
	Active     bool   `json:"active,omitempty"`
}

// PayRun is one executed payroll run.
type PayRun struct {
	PayRunID string `json:"payRunId"`
	Date     string `json:"date"`
	Total    int64  `json:"total"`
}

// WorkManagement is the work-tracking sub-aggregate, outside core scope.
type WorkManagement struct {
	Projects []Project `json:"projects"`
}

// Project is one tracked project.
type Project struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
}

// Tools holds miscellaneous per-company tool settings.
type Tools struct {
	Settings map[string]string `json:"settings"`
}

// UncategorizedAccount returns the canonical default chart-of-accounts entry.
func UncategorizedAccount() ChartOfAccount {
	return ChartOfAccount{
		AccountID: "default-uncategorized",
		Number:    UncategorizedNumber,
		Name:      UncategorizedName,
		Type:      UncategorizedType,
		Active:    true,
	}
}

// DefaultData returns the initial dataset for a company: empty collections
// and the single Uncategorized account.
func DefaultData(companyID string) Data {
	return Data{
		CompanyID:      companyID,
		Transactions:   []Transaction{},
		Accounts:       []ChartOfAccount{UncategorizedAccount()},
		CategoryRules:  []CategoryRule{},
		Customers:      []Customer{},
		Vendors:        []Vendor{},
		Invoices:       []Invoice{},
		BankAccounts:   []BankAccount{},
		Payroll:        Payroll{Employees: []Employee{}, PayRuns: []PayRun{}},
		WorkManagement: WorkManagement{Projects: []Project{}},
		Tools:          Tools{Settings: map[string]string{}},
	}
}
