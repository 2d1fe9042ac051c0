package portfolio

import "sort"

// AssetSummary aggregates all open lots of a single coin.
type AssetSummary struct {
	CoinID   string `json:"coin_id"`
	Symbol   string `json:"symbol"`
	CoinName string `json:"coin_name"`

	// Priced is false when the coin had no quote; such assets still count
	// toward total invested but carry no current value or P&L.
	Priced bool `json:"priced"`

	Quantity          float64 `json:"quantity"`
	InvestedAmount    float64 `json:"invested_amount"`
	CurrentValueLocal float64 `json:"current_value_local"`
	CurrentValueUSD   float64 `json:"current_value_usd"`

	// AveragePurchasePrice is the blended cost basis: summed invested over
	// summed quantity, not an average of per-lot prices.
	AveragePurchasePrice float64 `json:"average_purchase_price"`

	ProfitLossLocal      float64 `json:"profit_loss_local"`
	ProfitLossPercentage float64 `json:"profit_loss_percentage"`
	Allocation           float64 `json:"allocation"`
}

// Snapshot is the portfolio-level view, recomputed per request and never
// persisted. An empty portfolio yields a zeroed snapshot with no best or
// worst performer; that is a valid state, not an error.
type Snapshot struct {
	TotalInvested             float64 `json:"total_invested"`
	TotalCurrentValue         float64 `json:"total_current_value"`
	TotalProfitLoss           float64 `json:"total_profit_loss"`
	TotalProfitLossPercentage float64 `json:"total_profit_loss_percentage"`

	Assets     []AssetSummary     `json:"assets"`
	Allocation map[string]float64 `json:"allocation"`

	// Coin ids; empty string when the portfolio has no priced assets.
	BestPerformer  string `json:"best_performer"`
	WorstPerformer string `json:"worst_performer"`
}

// Aggregate folds per-investment valuations into a portfolio snapshot.
// Sold investments (present as unvalued pass-throughs) are skipped.
//
// Ties for best/worst performer resolve to the lexicographically first coin
// id: assets are walked in ascending id order and only a strictly better
// percentage displaces the current champion.
func Aggregate(valuations []Valuation) Snapshot {
	snapshot := Snapshot{
		Assets:     []AssetSummary{},
		Allocation: map[string]float64{},
	}

	byCoin := make(map[string]*AssetSummary)
	for i := range valuations {
		v := &valuations[i]
		inv := &v.Investment
		if !inv.Open() {
			continue
		}

		asset, ok := byCoin[inv.CoinID]
		if !ok {
			asset = &AssetSummary{
				CoinID:   inv.CoinID,
				Symbol:   inv.Symbol,
				CoinName: inv.CoinName,
				Priced:   v.HasQuote,
			}
			byCoin[inv.CoinID] = asset
		}

		asset.Quantity += inv.Quantity
		asset.InvestedAmount += inv.InvestedAmount
		snapshot.TotalInvested += inv.InvestedAmount

		if v.HasQuote {
			asset.CurrentValueLocal += v.CurrentValueLocal
			asset.CurrentValueUSD += v.CurrentValueUSD
			snapshot.TotalCurrentValue += v.CurrentValueLocal
		} else {
			asset.Priced = false
		}
	}

	ids := make([]string, 0, len(byCoin))
	for id := range byCoin {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best, worst := "", ""
	var bestPct, worstPct float64
	for _, id := range ids {
		asset := byCoin[id]
		if asset.Quantity > 0 {
			asset.AveragePurchasePrice = asset.InvestedAmount / asset.Quantity
		}
		if asset.Priced {
			asset.ProfitLossLocal = asset.CurrentValueLocal - asset.InvestedAmount
			if asset.InvestedAmount != 0 {
				asset.ProfitLossPercentage = asset.ProfitLossLocal / asset.InvestedAmount * 100
			}
			if snapshot.TotalCurrentValue > 0 {
				asset.Allocation = asset.CurrentValueLocal / snapshot.TotalCurrentValue * 100
			}

			if best == "" || asset.ProfitLossPercentage > bestPct {
				best, bestPct = id, asset.ProfitLossPercentage
			}
			if worst == "" || asset.ProfitLossPercentage < worstPct {
				worst, worstPct = id, asset.ProfitLossPercentage
			}
		}

		snapshot.Allocation[id] = asset.Allocation
		snapshot.Assets = append(snapshot.Assets, *asset)
	}

	snapshot.BestPerformer = best
	snapshot.WorstPerformer = worst
	snapshot.TotalProfitLoss = snapshot.TotalCurrentValue - snapshot.TotalInvested
	if snapshot.TotalInvested != 0 {
		snapshot.TotalProfitLossPercentage = snapshot.TotalProfitLoss / snapshot.TotalInvested * 100
	}

	return snapshot
}
