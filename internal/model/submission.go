package model

import "time"

// SubmittedItem is an immutable copy of a cart item taken at submission.
type SubmittedItem struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	ItemName     string    `json:"itemName" db:"item_name"`
	PurchaseLink string    `json:"purchaseLink" db:"purchase_link"`
	OptionName   *string   `json:"optionName,omitempty" db:"option_name"`
	Quantity     int64     `json:"quantity" db:"quantity"`
	UnitPrice    int64     `json:"unitPrice" db:"unit_price"`
	TotalPrice   int64     `json:"totalPrice" db:"total_price"`
	BatchID      string    `json:"batchId" db:"batch_id"`
	Status       string    `json:"status" db:"status"`
	SubmittedAt  time.Time `json:"submittedAt" db:"submitted_date"`
}

// Option returns the option name, or "" when none was given.
func (s SubmittedItem) Option() string {
	if s.OptionName == nil {
		return ""
	}
	return *s.OptionName
}

// SubmissionSummary is the per-batch aggregate row. ItemCount and
// TotalAmount are fixed at submission time.
type SubmissionSummary struct {
	ID             int64     `json:"-" db:"id"`
	Username       string    `json:"username" db:"username"`
	ItemCount      int       `json:"itemCount" db:"item_count"`
	TotalAmount    int64     `json:"totalAmount" db:"total_amount"`
	BatchID        string    `json:"batchId" db:"batch_id"`
	SubmittedAt    time.Time `json:"submittedAt" db:"submitted_date"`
	IdempotencyKey *string   `json:"-" db:"idempotency_key"`
}

// Batch is a submission summary joined with its items.
type Batch struct {
	SubmissionSummary
	Items []SubmittedItem `json:"items"`
}

// Consistent reports whether the stored aggregates match the items.
func (b Batch) Consistent() bool {
	if b.ItemCount != len(b.Items) {
		return false
	}
	var total int64
	for _, item := range b.Items {
		if item.TotalPrice != item.Quantity*item.UnitPrice {
			return false
		}
		total += item.TotalPrice
	}
	return total == b.TotalAmount
}

// HistoryResponse is the rendered submission history.
type HistoryResponse struct {
	Batches []Batch `json:"batches"`
	Warning string  `json:"warning,omitempty"`
}

// ExportRequest selects batches for an export archive.
type ExportRequest struct {
	BatchIDs []string `json:"batchIds"`
}
