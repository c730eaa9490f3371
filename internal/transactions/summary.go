package transactions

import (
	"encoding/json"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/shopspring/decimal"
)

// Totals is a count and amount for one bucket.
type Totals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

func (t Totals) add(amount decimal.Decimal) Totals {
	return Totals{Count: t.Count + 1, Amount: t.Amount.Add(amount)}
}

// Summary totals a set of transactions. Revenue counts completed sale and
// rent deals only; commissions are reported under their own type.
type Summary struct {
	All      Totals                             `json:"all"`
	Revenue  decimal.Decimal                    `json:"revenue"`
	ByType   map[enums.TransactionType]Totals   `json:"byType"`
	ByStatus map[enums.TransactionStatus]Totals `json:"byStatus"`
}

func Summarize(items []backend.Transaction) Summary {
	out := Summary{
		Revenue:  decimal.Zero,
		ByType:   map[enums.TransactionType]Totals{},
		ByStatus: map[enums.TransactionStatus]Totals{},
	}
	out.All.Amount = decimal.Zero
	for _, tx := range items {
		out.All = out.All.add(tx.Amount)
		out.ByType[tx.Type] = out.ByType[tx.Type].add(tx.Amount)
		out.ByStatus[tx.Status] = out.ByStatus[tx.Status].add(tx.Amount)
		if tx.Status == enums.TransactionStatusCompleted && tx.Type != enums.TransactionTypeCommission {
			out.Revenue = out.Revenue.Add(tx.Amount)
		}
	}
	return out
}

// Decode converts raw list items into typed transactions.
func Decode(items []map[string]any) ([]backend.Transaction, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode transactions")
	}
	out := []backend.Transaction{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to load transactions")
	}
	return out, nil
}
