package domain

import "fmt"

// Metadata is a discriminated union over per-type transaction details.
// Exactly one variant is set, matching the transaction type, so handlers
// and notification templates can switch exhaustively instead of digging
// through an untyped bag.
type Metadata struct {
	Airtime     *AirtimeMetadata     `json:"airtime,omitempty"`
	DataPlan    *DataMetadata        `json:"data,omitempty"`
	Cable       *CableMetadata       `json:"cable,omitempty"`
	Electricity *ElectricityMetadata `json:"electricity,omitempty"`
	Funding     *FundingMetadata     `json:"funding,omitempty"`
	Transfer    *TransferMetadata    `json:"transfer,omitempty"`
}

// AirtimeMetadata describes an airtime purchase.
type AirtimeMetadata struct {
	Network string `json:"network"` // mtn, glo, airtel, 9mobile
	Phone   string `json:"phone"`
}

// DataMetadata describes a data bundle purchase.
type DataMetadata struct {
	Network  string `json:"network"`
	Phone    string `json:"phone"`
	PlanCode string `json:"plan_code"`
	PlanName string `json:"plan_name"`
}

// CableMetadata describes a cable TV subscription purchase.
type CableMetadata struct {
	Provider  string `json:"provider"` // dstv, gotv, startimes
	Smartcard string `json:"smartcard"`
	PlanCode  string `json:"plan_code"`
	PlanName  string `json:"plan_name"`
}

// ElectricityMetadata describes an electricity token purchase.
type ElectricityMetadata struct {
	Disco     string  `json:"disco"`
	Meter     string  `json:"meter"`
	MeterType string  `json:"meter_type"` // prepaid, postpaid
	Token     *string `json:"token,omitempty"` // Set by the provider callback for prepaid meters
}

// FundingMetadata describes a wallet funding attempt.
type FundingMetadata struct {
	Gateway          string  `json:"gateway"` // paystack, flutterwave
	Channel          string  `json:"channel,omitempty"`
	AuthorizationURL *string `json:"authorization_url,omitempty"`
}

// TransferMetadata describes a wallet-to-bank transfer.
type TransferMetadata struct {
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// Validate checks that exactly the variant matching the transaction type
// is set.
func (m Metadata) Validate(tt TransactionType) error {
	variants := 0
	if m.Airtime != nil {
		variants++
	}
	if m.DataPlan != nil {
		variants++
	}
	if m.Cable != nil {
		variants++
	}
	if m.Electricity != nil {
		variants++
	}
	if m.Funding != nil {
		variants++
	}
	if m.Transfer != nil {
		variants++
	}
	if variants != 1 {
		return fmt.Errorf("metadata must carry exactly one variant, has %d", variants)
	}

	ok := false
	switch tt {
	case TransactionTypeAirtime:
		ok = m.Airtime != nil
	case TransactionTypeData:
		ok = m.DataPlan != nil
	case TransactionTypeCable:
		ok = m.Cable != nil
	case TransactionTypeElectricity:
		ok = m.Electricity != nil
	case TransactionTypeFunding:
		ok = m.Funding != nil
	case TransactionTypeTransfer:
		ok = m.Transfer != nil
	}
	if !ok {
		return fmt.Errorf("metadata variant does not match transaction type %s", tt)
	}
	return nil
}

// Recipient returns the user-facing destination of the transaction:
// phone number, smartcard, meter or account number.
func (m Metadata) Recipient() string {
	switch {
	case m.Airtime != nil:
		return m.Airtime.Phone
	case m.DataPlan != nil:
		return m.DataPlan.Phone
	case m.Cable != nil:
		return m.Cable.Smartcard
	case m.Electricity != nil:
		return m.Electricity.Meter
	case m.Transfer != nil:
		return m.Transfer.AccountNumber
	}
	return ""
}
