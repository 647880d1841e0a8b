package models

// OperationKind tags a balance mutation as a credit or a debit.
type OperationKind string

const (
	OperationCredit OperationKind = "CREDIT"
	OperationDebit  OperationKind = "DEBIT"
)

// Valid reports whether the kind is one of the two known operations.
func (k OperationKind) Valid() bool {
	return k == OperationCredit || k == OperationDebit
}
