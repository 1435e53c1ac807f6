package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validRecord(kind TransactionKind) TransactionRecord {
	rec := TransactionRecord{
		TransactionID: "txn-1",
		Kind:          kind,
		Amount:        decimal.NewFromInt(100),
	}
	if kind == Transfer {
		rec.SourceAccountID = "acc-a"
		rec.TargetAccountID = "acc-b"
	} else {
		rec.TargetAccountID = "acc-a"
	}
	return rec
}

func TestTransactionRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TransactionRecord)
		wantErr string
	}{
		{"valid credit", func(r *TransactionRecord) {}, ""},
		{"unknown kind", func(r *TransactionRecord) { r.Kind = "WIRE" }, "unknown transaction kind"},
		{"zero amount", func(r *TransactionRecord) { r.Amount = decimal.Zero }, "amount must be positive"},
		{"negative amount", func(r *TransactionRecord) { r.Amount = decimal.NewFromInt(-5) }, "amount must be positive"},
		{"negative fee", func(r *TransactionRecord) { r.Fee = decimal.NewFromInt(-1) }, "fee must not be negative"},
		{"missing target", func(r *TransactionRecord) { r.TargetAccountID = "" }, "target account is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord(Credit)
			tc.mutate(&rec)
			err := rec.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestTransferValidate(t *testing.T) {
	rec := validRecord(Transfer)
	assert.NoError(t, rec.Validate())

	missing := rec
	missing.SourceAccountID = ""
	assert.EqualError(t, missing.Validate(), "transfer requires both source and target accounts")

	same := rec
	same.TargetAccountID = same.SourceAccountID
	assert.EqualError(t, same.Validate(), "transfer requires two distinct accounts")
}

func TestPartyRecalcTotalDueClampsAtZero(t *testing.T) {
	p := Party{
		TotalAmount: decimal.NewFromInt(100),
		PaidAmount:  decimal.NewFromInt(250),
	}
	p.RecalcTotalDue()
	assert.True(t, p.TotalDue.IsZero())

	p.PaidAmount = decimal.NewFromInt(40)
	p.RecalcTotalDue()
	assert.True(t, p.TotalDue.Equal(decimal.NewFromInt(60)))
}

func TestCategoryDueSelectsField(t *testing.T) {
	p := Party{}
	assert.Equal(t, &p.HajjDue, p.CategoryDue(CategoryHajj))
	assert.Equal(t, &p.UmrahDue, p.CategoryDue(CategoryUmrah))
	assert.Equal(t, &p.TicketDue, p.CategoryDue(CategoryTicket))
	assert.Nil(t, p.CategoryDue(CategoryGeneral))
	assert.Nil(t, p.CategoryDue(CategoryLoan))
}

func TestHistoryEntrySignedDelta(t *testing.T) {
	in := AccountHistoryEntry{Direction: EntryIn, Amount: decimal.NewFromInt(75)}
	assert.True(t, in.SignedDelta().Equal(decimal.NewFromInt(75)))

	out := AccountHistoryEntry{Direction: EntryOut, Amount: decimal.NewFromInt(75)}
	assert.True(t, out.SignedDelta().Equal(decimal.NewFromInt(-75)))
}
