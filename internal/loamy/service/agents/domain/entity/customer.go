package entity

import "strings"

// Customer is a loan applicant known to the lending store.
type Customer struct {
	Name        string         `json:"name"`
	Status      CustomerStatus `json:"status"`
	CreditScore int            `json:"credit_score"`
	LoanLimit   float64        `json:"loan_limit"`
}

// CustomerKey normalizes a customer name for lookups.
func CustomerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
