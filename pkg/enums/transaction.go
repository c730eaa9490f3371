package enums

// TransactionType classifies a recorded deal.
type TransactionType string

const (
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypeRent       TransactionType = "rent"
	TransactionTypeCommission TransactionType = "commission"
)

var validTransactionTypes = []TransactionType{TransactionTypeSale, TransactionTypeRent, TransactionTypeCommission}

func (t TransactionType) IsValid() bool {
	return isValid(validTransactionTypes, t)
}

func ParseTransactionType(value string) (TransactionType, error) {
	return parse(validTransactionTypes, "transaction type", value)
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusCompleted,
	TransactionStatusPending,
	TransactionStatusCancelled,
}

func (s TransactionStatus) IsValid() bool {
	return isValid(validTransactionStatuses, s)
}

func ParseTransactionStatus(value string) (TransactionStatus, error) {
	return parse(validTransactionStatuses, "transaction status", value)
}
