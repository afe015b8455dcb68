package service

import (
	"context"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/stock"
)

// StockAlert is pushed to an organisation's websocket channel when a ledger
// write leaves a blood group below its minimum.
type StockAlert struct {
	Type        string            `json:"type"`
	BloodGroup  models.BloodGroup `json:"bloodGroup"`
	AvailableML int64             `json:"available"`
	MinimumML   int64             `json:"min"`
}

// LowStockNotifier re-checks a group after a ledger write and pushes an alert
// when the group is low. Strictly best-effort: every failure is logged and
// swallowed.
type LowStockNotifier struct {
	agg   *stock.Aggregator
	users UserStore
	hub   Alerter
	log   *zap.SugaredLogger
}

func NewLowStockNotifier(agg *stock.Aggregator, users UserStore, hub Alerter, log *zap.SugaredLogger) *LowStockNotifier {
	return &LowStockNotifier{agg: agg, users: users, hub: hub, log: log}
}

// Notify checks the (organisation, group) pair and sends an alert if low.
func (n *LowStockNotifier) Notify(ctx context.Context, orgID primitive.ObjectID, group models.BloodGroup) {
	if n == nil || n.hub == nil {
		return
	}
	org, err := n.users.FindByID(ctx, orgID)
	if err != nil {
		n.log.Warnw("low-stock check: organisation lookup failed", "org", orgID.Hex(), "err", err)
		return
	}
	available, err := n.agg.Available(ctx, orgID, group)
	if err != nil {
		n.log.Warnw("low-stock check: aggregation failed", "org", orgID.Hex(), "group", group, "err", err)
		return
	}
	thresholds := stock.ResolveThresholds(org.MinStockByGroup)
	if !thresholds.IsLow(group, available) {
		return
	}

	alert := StockAlert{
		Type:        "low_stock",
		BloodGroup:  group,
		AvailableML: available,
		MinimumML:   thresholds.Min(group),
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		n.log.Warnw("low-stock alert: marshal failed", "err", err)
		return
	}
	if err := n.hub.Send(orgID.Hex(), payload); err != nil {
		n.log.Warnw("low-stock alert: push failed", "org", orgID.Hex(), "err", err)
	}
}
