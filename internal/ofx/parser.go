// Package ofx turns OFX/QFX bank statements into candidate ledger
// postings. Like any upstream producer, its output is a best-effort
// structured guess: every candidate still passes the model validation
// path before it reaches storage.
package ofx

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/finanza/finanza/internal/model"
)

// Parser reads OFX/QFX statement files.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocess fixes common formatting issues in OFX files before handing
// them to ofxgo.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values (must be INFO, WARN, or ERROR).
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing angle bracket on a
	// bare opening tag.
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseStatement parses an OFX/QFX file and returns candidate postings
// against the given ledger account. Positive statement amounts become
// income, negative become expense; every candidate carries the supplied
// category until the user refiles it. Transfers cannot be inferred from
// a single institution's statement and are never produced here.
func (p *Parser) ParseStatement(ctx context.Context, reader io.Reader, accountID, categoryID string) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convert(ofxTx, accountID, categoryID))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, p.convert(ofxTx, accountID, categoryID))
			}
		}
	}

	return transactions, nil
}

// convert maps one OFX transaction into a candidate posting. OFX amounts
// are signed; the ledger stores unsigned magnitudes plus a kind.
func (p *Parser) convert(ofxTx ofxgo.Transaction, accountID, categoryID string) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	transactionType := model.TypeIncome
	if amount < 0 {
		transactionType = model.TypeExpense
		amount = -amount
	}

	return model.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     amount,
		Type:       transactionType,
		Date:       model.DateOf(ofxTx.DtPosted.Time),
		Note:       strings.TrimSpace(string(ofxTx.Memo)),
		Payee:      p.extractPayee(ofxTx),
		Status:     model.StatusCleared,
	}
}

// extractPayee tries to get a clean counterparty name from OFX data.
func (p *Parser) extractPayee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))

	// Processor boilerplate in front of the actual merchant.
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " date stamps.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}
