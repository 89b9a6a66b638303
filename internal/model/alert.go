package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertRule matches newly ingested trades and delivers a webhook
// notification. Tickers and Chambers are semicolon-delimited match lists; an
// empty list matches everything.
type AlertRule struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Tickers    string           `json:"tickers"`
	Chambers   string           `json:"chambers"`
	MinAmount  *decimal.Decimal `json:"min_amount"`
	WebhookURL string           `json:"webhook_url"`
	Active     bool             `json:"active"`
	CreatedAt  time.Time        `json:"created_at"`
}
