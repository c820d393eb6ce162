package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Merchant is the M-Pesa paybill customers pay into.
type Merchant struct {
	Paybill     string `json:"paybill" yaml:"paybill"`
	AccountName string `json:"account_name" yaml:"account_name"`
}

// PaymentInstructions is what the checkout page shows before the customer
// pastes the M-Pesa confirmation message.
type PaymentInstructions struct {
	Paybill     string          `json:"paybill"`
	AccountName string          `json:"account_name"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Steps       []string        `json:"steps"`
}

// Instructions builds the manual paybill steps for amount, using reference
// as the account number.
func (m Merchant) Instructions(reference string, amount decimal.Decimal) PaymentInstructions {
	return PaymentInstructions{
		Paybill:     m.Paybill,
		AccountName: m.AccountName,
		Reference:   reference,
		Amount:      amount,
		Steps: []string{
			"Go to M-Pesa on your phone and select Lipa na M-Pesa",
			"Select Pay Bill and enter business number " + m.Paybill,
			"Enter account number " + reference,
			"Enter amount KSh " + amount.String(),
			"Enter your M-Pesa PIN and confirm",
			"Paste the confirmation SMS you receive below",
		},
	}
}

// NormalizeConfirmation trims the pasted confirmation text. The text itself
// is stored verbatim for an operator to verify.
func NormalizeConfirmation(text string) string {
	return strings.TrimSpace(text)
}
