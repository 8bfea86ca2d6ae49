package finance

import (
	"fmt"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account identifies a general ledger account
type Account struct {
	Code string
	Name string
}

// LedgerEntry is one debit or credit row of a journal
type LedgerEntry struct {
	ID            uuid.UUID
	JournalID     uuid.UUID
	AccountCode   string
	AccountName   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	ReferenceType string
	ReferenceID   uuid.UUID
	Description   string
}

// Journal is a set of ledger rows posted together. A journal must balance
// before it is persisted.
type Journal struct {
	ID            uuid.UUID
	ReferenceType string
	ReferenceID   uuid.UUID
	Description   string
	Entries       []LedgerEntry
}

// NewJournal starts an empty journal for a source document
func NewJournal(refType string, refID uuid.UUID, description string) *Journal {
	return &Journal{
		ID:            uuid.New(),
		ReferenceType: refType,
		ReferenceID:   refID,
		Description:   description,
	}
}

// Debit appends a debit row. Non-positive amounts are ignored.
func (j *Journal) Debit(account Account, amount decimal.Decimal) {
	j.add(account, amount, decimal.Zero)
}

// Credit appends a credit row. Non-positive amounts are ignored.
func (j *Journal) Credit(account Account, amount decimal.Decimal) {
	j.add(account, decimal.Zero, amount)
}

func (j *Journal) add(account Account, debit, credit decimal.Decimal) {
	if !debit.IsPositive() && !credit.IsPositive() {
		return
	}
	j.Entries = append(j.Entries, LedgerEntry{
		ID:            uuid.New(),
		JournalID:     j.ID,
		AccountCode:   account.Code,
		AccountName:   account.Name,
		Debit:         debit,
		Credit:        credit,
		ReferenceType: j.ReferenceType,
		ReferenceID:   j.ReferenceID,
		Description:   j.Description,
	})
}

// Totals returns the debit and credit sums
func (j *Journal) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range j.Entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits
}

// Validate rejects empty or unbalanced journals
func (j *Journal) Validate() error {
	if len(j.Entries) == 0 {
		return shared.NewDomainError("EMPTY_JOURNAL", "Journal has no entries")
	}
	debits, credits := j.Totals()
	if !debits.Equal(credits) {
		return &shared.DomainError{
			Code:    shared.ErrUnbalancedJournal.Code,
			Message: fmt.Sprintf("journal %s unbalanced: debits %s, credits %s", j.ID, debits, credits),
		}
	}
	return nil
}
