package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"topup-pro/internal/core/domain"
)

var referencePrefixes = map[domain.TransactionType]string{
	domain.TransactionTypeAirtime:     "AIR",
	domain.TransactionTypeData:        "DAT",
	domain.TransactionTypeCable:       "CAB",
	domain.TransactionTypeElectricity: "ELE",
	domain.TransactionTypeFunding:     "FND",
	domain.TransactionTypeTransfer:    "TRF",
}

// NewReference generates a globally unique external-facing reference:
// typed prefix + millisecond timestamp + random suffix.
func NewReference(tt domain.TransactionType) string {
	prefix, ok := referencePrefixes[tt]
	if !ok {
		prefix = "TXN"
	}

	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)

	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(suffix))
}
