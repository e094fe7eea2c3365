package company

import (
	"sort"
	"strconv"
)

// Normalize repairs a decoded Data document into the canonical shape: every
// collection field is a non-nil slice and the Accounts list satisfies the
// default-Uncategorized invariant. It is applied at every ingestion boundary
// (watch callback, one-shot fetch) and to every merged write, so nothing
// downstream ever sees a nil collection or a chart without the default
// category.
func Normalize(data Data) Data {
	if data.Transactions == nil {
		data.Transactions = []Transaction{}
	}
	if data.CategoryRules == nil {
		data.CategoryRules = []CategoryRule{}
	}
	if data.Customers == nil {
		data.Customers = []Customer{}
	}
	if data.Vendors == nil {
		data.Vendors = []Vendor{}
	}
	if data.Invoices == nil {
		data.Invoices = []Invoice{}
	}
	if data.BankAccounts == nil {
		data.BankAccounts = []BankAccount{}
	}
	if data.Payroll.Employees == nil {
		data.Payroll.Employees = []Employee{}
	}
	if data.Payroll.PayRuns == nil {
		data.Payroll.PayRuns = []PayRun{}
	}
	if data.WorkManagement.Projects == nil {
		data.WorkManagement.Projects = []Project{}
	}
	if data.Tools.Settings == nil {
		data.Tools.Settings = map[string]string{}
	}
	data.Accounts = EnsureUncategorized(data.Accounts)
	return data
}

// EnsureUncategorized returns the accounts list with exactly one record
// numbered "00000". When absent, the canonical default is synthesized and
// prepended; duplicates collapse to the first occurrence.
func EnsureUncategorized(accounts []ChartOfAccount) []ChartOfAccount {
	out := make([]ChartOfAccount, 0, len(accounts)+1)
	found := false
	for _, acc := range accounts {
		if acc.Number == UncategorizedNumber {
			if found {
				continue
			}
			found = true
		}
		out = append(out, acc)
	}
	if !found {
		out = append([]ChartOfAccount{UncategorizedAccount()}, out...)
	}
	return out
}

// SortAccounts orders a chart of accounts by account number: numerically when
// both numbers parse as integers, lexicographically otherwise.
func SortAccounts(accounts []ChartOfAccount) {
	sort.SliceStable(accounts, func(i, j int) bool {
		a, errA := strconv.Atoi(accounts[i].Number)
		b, errB := strconv.Atoi(accounts[j].Number)
		if errA == nil && errB == nil {
			return a < b
		}
		return accounts[i].Number < accounts[j].Number
	})
}
