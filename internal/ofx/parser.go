// Package ofx reads OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML-style files sometimes end a line with an unterminated opening tag.
	unterminatedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	leadingDateRegex     = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

// Descriptor prefixes that banks put in front of the merchant.
var descriptorPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// AccountKind distinguishes deposit statements from card statements.
type AccountKind string

// Statement kinds.
const (
	KindBank       AccountKind = "bank"
	KindCreditCard AccountKind = "credit_card"
)

// Statement is one account's transactions and closing ledger balance.
type Statement struct {
	BalanceAsOf  time.Time
	AccountID    string
	Kind         AccountKind
	Transactions []model.Transaction
	Balance      float64
	HasBalance   bool
}

// Result holds every statement found in a file.
type Result struct {
	Statements []Statement
}

// Transactions flattens all statements.
func (r *Result) Transactions() []model.Transaction {
	var out []model.Transaction
	for _, s := range r.Statements {
		out = append(out, s.Transactions...)
	}
	return out
}

// Accounts returns one account per statement that reported a ledger balance.
func (r *Result) Accounts() []model.Account {
	var out []model.Account
	for _, s := range r.Statements {
		if !s.HasBalance || s.AccountID == "" {
			continue
		}
		out = append(out, model.Account{
			ID:        s.AccountID,
			Balance:   s.Balance,
			UpdatedAt: s.BalanceAsOf,
		})
	}
	return out
}

// Parser converts OFX documents into model records.
type Parser struct {
	logger *slog.Logger
	newID  func() string
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{
		logger: slog.Default().With("component", "ofx"),
		newID:  uuid.NewString,
	}
}

// Parse reads a whole OFX/QFX document.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Result, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	result := &Result{}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			s := Statement{AccountID: string(stmt.BankAcctFrom.AcctID), Kind: KindBank}
			p.fill(&s, stmt.BankTranList, stmt.BalAmt, stmt.DtAsOf)
			result.Statements = append(result.Statements, s)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			s := Statement{AccountID: string(stmt.CCAcctFrom.AcctID), Kind: KindCreditCard}
			p.fill(&s, stmt.BankTranList, stmt.BalAmt, stmt.DtAsOf)
			result.Statements = append(result.Statements, s)
		}
	}

	if len(result.Statements) == 0 {
		return nil, fmt.Errorf("%w: no bank or credit card statements in file", common.ErrEmptyStatement)
	}

	p.logger.Info("Parsed OFX file",
		"statements", len(result.Statements),
		"transactions", len(result.Transactions()))
	return result, nil
}

func (p *Parser) fill(s *Statement, list *ofxgo.TransactionList, balance ofxgo.Amount, asOf ofxgo.Date) {
	if bal, _ := balance.Float64(); !asOf.IsZero() {
		s.Balance = bal
		s.BalanceAsOf = asOf.UTC()
		s.HasBalance = true
	}
	if list == nil {
		return
	}
	for _, ofxTx := range list.Transactions {
		s.Transactions = append(s.Transactions, p.convert(ofxTx, s.AccountID, s.Kind))
	}
}

func (p *Parser) convert(ofxTx ofxgo.Transaction, accountID string, kind AccountKind) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()

	id := string(ofxTx.FiTID)
	if id == "" {
		id = p.newID()
	}

	txn := model.Transaction{
		ID:           id,
		Date:         ofxTx.DtPosted.UTC(),
		Name:         strings.TrimSpace(string(ofxTx.Name)),
		MerchantName: merchantName(ofxTx),
		Amount:       amount,
		AccountID:    accountID,
		Type:         classify(ofxTx.TrnType, amount, kind),
		Status:       model.StatusCompleted,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

// classify maps an OFX transaction type onto the four model types.
func classify(trnType fmt.Stringer, amount float64, kind AccountKind) model.TransactionType {
	if amount >= 0 {
		if kind == KindCreditCard && trnType == ofxgo.TrnTypePayment {
			return model.TypePayment
		}
		return model.TypeCredit
	}

	switch trnType {
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg, ofxgo.TrnTypeInt:
		return model.TypeDebit
	case ofxgo.TrnTypePOS:
		return model.TypePurchase
	case ofxgo.TrnTypePayment:
		if kind == KindBank {
			return model.TypePayment
		}
	}

	if kind == KindCreditCard {
		return model.TypePurchase
	}
	return model.TypeDebit
}

// merchantName prefers PAYEE, then NAME with bank descriptor noise removed.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptorPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(leadingDateRegex.ReplaceAllString(name, ""))
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// preprocess fixes formatting problems that ofxgo rejects.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unterminatedTagRegex.ReplaceAllString(content, "$1>")
}
