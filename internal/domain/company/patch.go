package company

// DataPatch is a partial update of a company's Data document. A nil field is
// left untouched; a non-nil slice replaces the stored collection wholesale
// (never concatenated). The patch deliberately carries no identifier: the
// canonical CompanyID always comes from the document being merged into.
type DataPatch struct {
	Transactions   []Transaction    `json:"transactions,omitempty"`
	Accounts       []ChartOfAccount `json:"accounts,omitempty"`
	CategoryRules  []CategoryRule   `json:"categoryRules,omitempty"`
	Customers      []Customer       `json:"customers,omitempty"`
	Vendors        []Vendor         `json:"vendors,omitempty"`
	Invoices       []Invoice        `json:"invoices,omitempty"`
	BankAccounts   []BankAccount    `json:"bankAccounts,omitempty"`
	Payroll        *Payroll         `json:"payroll,omitempty"`
	WorkManagement *WorkManagement  `json:"workManagement,omitempty"`
	Tools          *Tools           `json:"tools,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p DataPatch) IsZero() bool {
	return p.Transactions == nil && p.Accounts == nil && p.CategoryRules == nil &&
		p.Customers == nil && p.Vendors == nil && p.Invoices == nil &&
		p.BankAccounts == nil && p.Payroll == nil && p.WorkManagement == nil &&
		p.Tools == nil
}

// Merge applies the patch over base with shallow field overwrite and
// re-applies the default-Uncategorized invariant when the accounts field is
// touched. The base's CompanyID is preserved.
func Merge(base Data, patch DataPatch) Data {
	if patch.Transactions != nil {
		base.Transactions = patch.Transactions
	}
	if patch.Accounts != nil {
		base.Accounts = EnsureUncategorized(patch.Accounts)
	}
	if patch.CategoryRules != nil {
		base.CategoryRules = patch.CategoryRules
	}
	if patch.Customers != nil {
		base.Customers = patch.Customers
	}
	if patch.Vendors != nil {
		base.Vendors = patch.Vendors
	}
	if patch.Invoices != nil {
		base.Invoices = patch.Invoices
	}
	if patch.BankAccounts != nil {
		base.BankAccounts = patch.BankAccounts
	}
	if patch.Payroll != nil {
		base.Payroll = *patch.Payroll
	}
	if patch.WorkManagement != nil {
		base.WorkManagement = *patch.WorkManagement
	}
	if patch.Tools != nil {
		base.Tools = *patch.Tools
	}
	return base
}
