package ofx

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>POS
<DTPOSTED>20240122120000[0:GMT]
<TRNAMT>-9.99
<FITID>2024012201
<NAME>POS PURCHASE SPOTIFY USA
</STMTTRN>
<STMTTRN>
<TRNTYPE>DIRECTDEP
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024013101
<NAME>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>PAYMENT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>200.00
<FITID>CC2024012501
<NAME>PAYMENT THANK YOU
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func parse(t *testing.T, content string) *Result {
	t.Helper()
	result, err := NewParser().Parse(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	return result
}

func TestParse_BankStatement(t *testing.T) {
	result := parse(t, sampleBankOFX)
	require.Len(t, result.Statements, 1)

	stmt := result.Statements[0]
	assert.Equal(t, "1234567890", stmt.AccountID)
	assert.Equal(t, KindBank, stmt.Kind)
	assert.True(t, stmt.HasBalance)
	assert.Equal(t, 1000.0, stmt.Balance)
	assert.True(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC).Equal(stmt.BalanceAsOf))

	require.Len(t, stmt.Transactions, 5)
	tests := []struct {
		id       string
		merchant string
		wantType model.TransactionType
		amount   float64
	}{
		{id: "2024011501", merchant: "STARBUCKS STORE #1234", wantType: model.TypeDebit, amount: -25.50},
		{id: "2024012001", merchant: "Whole Foods Market", wantType: model.TypeDebit, amount: -125},
		{id: "2024012201", merchant: "SPOTIFY USA", wantType: model.TypePurchase, amount: -9.99},
		{id: "2024013101", merchant: "ACME PAYROLL", wantType: model.TypeCredit, amount: 2500},
		{id: "2024012501", merchant: "CHECK #1234", wantType: model.TypeDebit, amount: -500},
	}
	for i, tt := range tests {
		txn := stmt.Transactions[i]
		assert.Equal(t, tt.id, txn.ID)
		assert.Equal(t, tt.merchant, txn.MerchantName)
		assert.Equal(t, tt.wantType, txn.Type, tt.id)
		assert.InDelta(t, tt.amount, txn.Amount, 1e-9)
		assert.Equal(t, model.StatusCompleted, txn.Status)
		assert.Equal(t, "1234567890", txn.AccountID)
		assert.Equal(t, txn.GenerateHash(), txn.Hash)
	}
	assert.True(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC).Equal(stmt.Transactions[0].Date))
}

func TestParse_CreditCardStatement(t *testing.T) {
	result := parse(t, sampleCreditCardOFX)
	require.Len(t, result.Statements, 1)

	stmt := result.Statements[0]
	assert.Equal(t, KindCreditCard, stmt.Kind)
	assert.Equal(t, -500.0, stmt.Balance)

	txns := result.Transactions()
	require.Len(t, txns, 3)
	assert.Equal(t, model.TypePurchase, txns[0].Type)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", txns[0].MerchantName)
	assert.Equal(t, model.TypePurchase, txns[1].Type)
	assert.Equal(t, "NETFLIX.COM", txns[1].MerchantName)
	assert.Equal(t, model.TypePayment, txns[2].Type)
	assert.InDelta(t, 200.0, txns[2].Amount, 1e-9)
}

func TestResult_Accounts(t *testing.T) {
	result := parse(t, sampleCreditCardOFX)

	accounts := result.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "4111111111111111", accounts[0].ID)
	assert.Equal(t, -500.0, accounts[0].Balance)
	assert.True(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC).Equal(accounts[0].UpdatedAt))

	noBalance := &Result{Statements: []Statement{{AccountID: "x"}}}
	assert.Empty(t, noBalance.Accounts())
}

func TestConvert_MissingFITIDGetsGeneratedID(t *testing.T) {
	p := NewParser()
	p.newID = func() string { return "generated" }

	var tx ofxgo.Transaction
	tx.TrnType = ofxgo.TrnTypeDebit
	tx.Name = "Corner Deli"
	tx.DtPosted = ofxgo.Date{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	tx.TrnAmt.SetFloat64(-8.25)

	txn := p.convert(tx, "acct", KindCreditCard)
	assert.Equal(t, "generated", txn.ID)
	assert.Equal(t, model.TypePurchase, txn.Type)
	assert.InDelta(t, -8.25, txn.Amount, 1e-9)

	tx.FiTID = "bank-id"
	assert.Equal(t, "bank-id", p.convert(tx, "acct", KindCreditCard).ID)
}

func TestParse_Errors(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), strings.NewReader("not ofx at all"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewParser().Parse(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_NoStatements(t *testing.T) {
	start := strings.Index(sampleBankOFX, "<BANKMSGSRSV1>")
	end := strings.Index(sampleBankOFX, "</BANKMSGSRSV1>") + len("</BANKMSGSRSV1>")
	content := sampleBankOFX[:start] + sampleBankOFX[end:]

	_, err := NewParser().Parse(context.Background(), strings.NewReader(content))
	assert.ErrorIs(t, err, common.ErrEmptyStatement)
}

func TestParse_Deduplication(t *testing.T) {
	first := parse(t, sampleBankOFX).Transactions()
	second := parse(t, sampleBankOFX).Transactions()

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Hash, second[i].Hash)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		trnType fmt.Stringer
		kind    AccountKind
		want    model.TransactionType
		amount  float64
	}{
		{name: "card charge", trnType: ofxgo.TrnTypeDebit, amount: -10, kind: KindCreditCard, want: model.TypePurchase},
		{name: "card refund", trnType: ofxgo.TrnTypeCredit, amount: 10, kind: KindCreditCard, want: model.TypeCredit},
		{name: "card payment", trnType: ofxgo.TrnTypePayment, amount: 100, kind: KindCreditCard, want: model.TypePayment},
		{name: "card fee", trnType: ofxgo.TrnTypeFee, amount: -39, kind: KindCreditCard, want: model.TypeDebit},
		{name: "card interest", trnType: ofxgo.TrnTypeInt, amount: -12, kind: KindCreditCard, want: model.TypeDebit},
		{name: "bank point of sale", trnType: ofxgo.TrnTypePOS, amount: -5, kind: KindBank, want: model.TypePurchase},
		{name: "bank bill pay", trnType: ofxgo.TrnTypePayment, amount: -80, kind: KindBank, want: model.TypePayment},
		{name: "bank withdrawal", trnType: ofxgo.TrnTypeATM, amount: -60, kind: KindBank, want: model.TypeDebit},
		{name: "bank deposit", trnType: ofxgo.TrnTypeDirectDep, amount: 1000, kind: KindBank, want: model.TypeCredit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.trnType, tt.amount, tt.kind))
		})
	}
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{name: "payee wins", tx: ofxgo.Transaction{Name: "ACH 123", Payee: &ofxgo.Payee{Name: "City Power"}}, want: "City Power"},
		{name: "plain name", tx: ofxgo.Transaction{Name: "  Netflix  "}, want: "Netflix"},
		{name: "descriptor prefix", tx: ofxgo.Transaction{Name: "CHECK CARD Blue Bottle"}, want: "Blue Bottle"},
		{name: "prefix then date", tx: ofxgo.Transaction{Name: "PURCHASE AUTHORIZED ON 03/14 Gym Co"}, want: "Gym Co"},
		{name: "generic name uses memo", tx: ofxgo.Transaction{Name: "PURCHASE", Memo: "Corner Deli"}, want: "Corner Deli"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, merchantName(tt.tx))
		})
	}
}

func TestPreprocess(t *testing.T) {
	in := "\n\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<CODE>\n", preprocess(in))
}
