package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
)

// FundamentalRepository implements contracts.FundamentalRepository over the
// raw fundamental table.
type FundamentalRepository struct {
	pool *pgxpool.Pool
}

// NewFundamentalRepository creates a new fundamental repository.
func NewFundamentalRepository(pool *pgxpool.Pool) *FundamentalRepository {
	return &FundamentalRepository{pool: pool}
}

// GetAnnual returns up to limit annual rows with period_end_date <=
// onOrBefore, newest first.
func (r *FundamentalRepository) GetAnnual(ctx context.Context, ticker string, onOrBefore time.Time, limit int) ([]*contracts.Fundamental, error) {
	query := `
		SELECT ticker, period_end_date, period_type,
		       COALESCE(revenue, 0), COALESCE(net_income, 0), COALESCE(ebitda, 0),
		       COALESCE(total_assets, 0), COALESCE(total_debt, 0),
		       COALESCE(shareholders_equity, 0), COALESCE(operating_cash_flow, 0),
		       COALESCE(free_cash_flow, 0), COALESCE(market_cap, 0),
		       COALESCE(enterprise_value, 0)
		FROM raw.fundamental
		WHERE ticker = $1 AND period_type = 'annual' AND period_end_date <= $2
		ORDER BY period_end_date DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, ticker, onOrBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("query fundamentals: %w", err)
	}
	defer rows.Close()

	var fundamentals []*contracts.Fundamental
	for rows.Next() {
		var f contracts.Fundamental
		if err := rows.Scan(
			&f.Ticker, &f.PeriodEnd, &f.PeriodType,
			&f.Revenue, &f.NetIncome, &f.EBITDA,
			&f.TotalAssets, &f.TotalDebt,
			&f.ShareholdersEquity, &f.OperatingCashFlow,
			&f.FreeCashFlow, &f.MarketCap,
			&f.EnterpriseValue,
		); err != nil {
			return nil, fmt.Errorf("scan fundamental: %w", err)
		}
		fundamentals = append(fundamentals, &f)
	}
	return fundamentals, rows.Err()
}
