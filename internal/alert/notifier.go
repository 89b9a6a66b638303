// Package alert matches newly ingested trades against user-defined rules and
// delivers webhook notifications.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/store"
)

// ruleLister is the slice of the store the notifier needs.
type ruleLister interface {
	ListAlertRules(ctx context.Context, activeOnly bool) ([]model.AlertRule, error)
}

// Notifier evaluates active alert rules against a run's added trades.
type Notifier struct {
	store  ruleLister
	client *http.Client
	log    *zap.Logger
}

// NewNotifier builds a Notifier. A nil client gets a 10s-timeout default.
func NewNotifier(st ruleLister, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{
		store:  st,
		client: client,
		log:    zap.L().With(zap.String("component", "alert")),
	}
}

// notification is the JSON body POSTed to a rule's webhook.
type notification struct {
	RuleID   int64          `json:"rule_id"`
	RuleName string         `json:"rule_name"`
	Email    string         `json:"email,omitempty"`
	Trade    store.TradeRow `json:"trade"`
}

// EvaluateRun matches every active rule against every added trade and
// delivers one webhook POST per match. Delivery failures are logged, never
// propagated.
func (n *Notifier) EvaluateRun(ctx context.Context, trades []store.TradeRow) {
	if len(trades) == 0 {
		return
	}

	rules, err := n.store.ListAlertRules(ctx, true)
	if err != nil {
		n.log.Error("load alert rules", zap.Error(err))
		return
	}
	if len(rules) == 0 {
		return
	}

	matched, delivered := 0, 0
	for _, rule := range rules {
		for _, trade := range trades {
			if !Matches(rule, trade) {
				continue
			}
			matched++
			if rule.WebhookURL == "" {
				continue
			}
			if n.deliver(ctx, rule, trade) {
				delivered++
			}
		}
	}

	n.log.Info("alert evaluation complete",
		zap.Int("trades", len(trades)),
		zap.Int("rules", len(rules)),
		zap.Int("matched", matched),
		zap.Int("delivered", delivered))
}

// Matches reports whether a trade satisfies a rule. Empty ticker/chamber
// lists match everything; MinAmount compares against the trade's upper bound,
// falling back to the lower one.
func Matches(rule model.AlertRule, trade store.TradeRow) bool {
	if !matchList(rule.Tickers, trade.Ticker) {
		return false
	}
	if !matchList(rule.Chambers, string(trade.OfficialChamber)) {
		return false
	}
	if rule.MinAmount != nil {
		amount := trade.AmountMax
		if amount == nil {
			amount = trade.AmountMin
		}
		if amount == nil || amount.LessThan(*rule.MinAmount) {
			return false
		}
	}
	return true
}

// matchList checks a semicolon-delimited, case-insensitive match list.
func matchList(list, value string) bool {
	list = strings.TrimSpace(list)
	if list == "" {
		return true
	}
	value = strings.ToLower(strings.TrimSpace(value))
	for _, item := range strings.Split(list, ";") {
		if strings.ToLower(strings.TrimSpace(item)) == value {
			return true
		}
	}
	return false
}

func (n *Notifier) deliver(ctx context.Context, rule model.AlertRule, trade store.TradeRow) bool {
	body, err := json.Marshal(notification{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Email:    rule.Email,
		Trade:    trade,
	})
	if err != nil {
		n.log.Error("marshal notification", zap.Int64("rule_id", rule.ID), zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rule.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.log.Error("build webhook request", zap.Int64("rule_id", rule.ID), zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("webhook delivery failed", zap.Int64("rule_id", rule.ID), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Warn("webhook rejected",
			zap.Int64("rule_id", rule.ID), zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}
