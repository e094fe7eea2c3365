package company

// Clone returns a copy of the data with all top-level collections duplicated,
// so a held snapshot is not aliased by later wholesale replacements. Nested
// slices (transaction edits) are shared; callers treat snapshots as read-only.
func (d Data) Clone() Data {
	out := d
	out.Transactions = append([]Transaction{}, d.Transactions...)
	out.Accounts = append([]ChartOfAccount{}, d.Accounts...)
	out.CategoryRules = append([]CategoryRule{}, d.CategoryRules...)
	out.Customers = append([]Customer{}, d.Customers...)
	out.Vendors = append([]Vendor{}, d.Vendors...)
	out.Invoices = append([]Invoice{}, d.Invoices...)
	out.BankAccounts = append([]BankAccount{}, d.BankAccounts...)
	out.Payroll.Employees = append([]Employee{}, d.Payroll.Employees...)
	out.Payroll.PayRuns = append([]PayRun{}, d.Payroll.PayRuns...)
	out.WorkManagement.Projects = append([]Project{}, d.WorkManagement.Projects...)
	settings := make(map[string]string, len(d.Tools.Settings))
	for k, v := range d.Tools.Settings {
		settings[k] = v
	}
	out.Tools.Settings = settings
	return out
}
