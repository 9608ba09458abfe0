package models

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "DRAFT"
	QuoteSent     QuoteStatus = "SENT"
	QuoteAccepted QuoteStatus = "ACCEPTED"
	QuoteDeclined QuoteStatus = "DECLINED"
	QuoteExpired  QuoteStatus = "EXPIRED"
)

var QuoteStatuses = []QuoteStatus{QuoteDraft, QuoteSent, QuoteAccepted, QuoteDeclined, QuoteExpired}

func (s QuoteStatus) Valid() bool {
	for _, v := range QuoteStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Quote struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	QuoteNumber string      `gorm:"size:50;uniqueIndex;not null" json:"quote_number"`
	Subject     string      `gorm:"size:255;not null" json:"subject"`
	Total       float64     `gorm:"type:decimal(15,2);not null" json:"total"`
	Status      QuoteStatus `gorm:"size:20;not null;default:DRAFT" json:"status"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	User        *User       `json:"user,omitempty"`
	LeadID      *uint       `gorm:"index" json:"lead_id"`
	Lead        *Lead       `gorm:"constraint:OnDelete:SET NULL" json:"lead,omitempty"`
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateQuoteNumber builds QT-<base36 millis>-<4 random base36 chars>, upper-cased.
// Uniqueness is probabilistic; the unique index catches the rare collision.
func GenerateQuoteNumber(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			suffix[i] = '0'
			continue
		}
		suffix[i] = base36[n.Int64()]
	}
	return "QT-" + strings.ToUpper(ts) + "-" + strings.ToUpper(string(suffix))
}
