package pipeline

import (
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/factors"
)

// Daily factor column names.
const (
	colReturn1M        = "return_1m"
	colMomentum6MEx1M  = "momentum_6m_ex_1m"
	colMomentum12MEx1M = "momentum_12m_ex_1m"
	colRSI14           = "rsi_14"
	colVolatility90D   = "volatility_90d"
	colRecentDrawdown  = "recent_drawdown"
)

// normalizeDaily normalizes each daily factor column cross-sectionally
// across all tickers with a value on this date.
func normalizeDaily(universe []*tickerData) map[string]map[string]contracts.Float {
	columns := map[string]map[string]contracts.Float{
		colReturn1M:        {},
		colMomentum6MEx1M:  {},
		colMomentum12MEx1M: {},
		colRSI14:           {},
		colVolatility90D:   {},
		colRecentDrawdown:  {},
	}

	for _, td := range universe {
		columns[colReturn1M][td.ticker] = td.momentum.Return1M
		columns[colMomentum6MEx1M][td.ticker] = td.momentum.Momentum6MEx1M
		columns[colMomentum12MEx1M][td.ticker] = td.momentum.Momentum12MEx1M
		columns[colRSI14][td.ticker] = td.momentum.RSI14
		columns[colVolatility90D][td.ticker] = td.momentum.Volatility90D
		columns[colRecentDrawdown][td.ticker] = td.momentum.RecentDrawdown
	}

	for name, col := range columns {
		columns[name] = factors.Normalize(col)
	}
	return columns
}

// normalizeMonthly normalizes each monthly factor column cross-sectionally.
func normalizeMonthly(universe []*tickerData) map[string]map[string]contracts.Float {
	columns := map[string]map[string]contracts.Float{
		factors.FactorROE:             {},
		factors.FactorROEMean3Y:       {},
		factors.FactorNetMargin:       {},
		factors.FactorRevenueGrowth3Y: {},
		factors.FactorDebtToEBITDA:    {},
		factors.FactorPERatio:         {},
		factors.FactorEVEBITDA:        {},
		factors.FactorPriceToBook:     {},
		factors.FactorFCFYield:        {},
		factors.FactorSizeFactor:      {},
	}

	for _, td := range universe {
		columns[factors.FactorROE][td.ticker] = td.fund.ROE
		columns[factors.FactorROEMean3Y][td.ticker] = td.fund.ROEMean3Y
		columns[factors.FactorNetMargin][td.ticker] = td.fund.NetMargin
		columns[factors.FactorRevenueGrowth3Y][td.ticker] = td.fund.RevenueGrowth3Y
		columns[factors.FactorDebtToEBITDA][td.ticker] = td.fund.DebtToEBITDA
		columns[factors.FactorPERatio][td.ticker] = td.fund.PERatio
		columns[factors.FactorEVEBITDA][td.ticker] = td.fund.EVEBITDA
		columns[factors.FactorPriceToBook][td.ticker] = td.fund.PriceToBook
		columns[factors.FactorFCFYield][td.ticker] = td.fund.FCFYield
		columns[factors.FactorSizeFactor][td.ticker] = td.fund.SizeFactor
	}

	for name, col := range columns {
		columns[name] = factors.Normalize(col)
	}
	return columns
}

// applyNormalized copies normalized daily values onto the feature rows.
func applyNormalized(daily []*contracts.FeatureDaily, norm map[string]map[string]contracts.Float) {
	for _, row := range daily {
		row.Return1M = norm[colReturn1M][row.Ticker]
		row.Momentum6MEx1M = norm[colMomentum6MEx1M][row.Ticker]
		row.Momentum12MEx1M = norm[colMomentum12MEx1M][row.Ticker]
		row.RSI14 = norm[colRSI14][row.Ticker]
		row.Volatility90D = norm[colVolatility90D][row.Ticker]
		row.RecentDrawdown = norm[colRecentDrawdown][row.Ticker]
	}
}

// applyNormalizedMonthly copies normalized monthly values onto the rows.
func applyNormalizedMonthly(monthly []*contracts.FeatureMonthly, norm map[string]map[string]contracts.Float) {
	for _, row := range monthly {
		row.ROE = norm[factors.FactorROE][row.Ticker]
		row.ROEMean3Y = norm[factors.FactorROEMean3Y][row.Ticker]
		row.NetMargin = norm[factors.FactorNetMargin][row.Ticker]
		row.RevenueGrowth3Y = norm[factors.FactorRevenueGrowth3Y][row.Ticker]
		row.DebtToEBITDA = norm[factors.FactorDebtToEBITDA][row.Ticker]
		row.PERatio = norm[factors.FactorPERatio][row.Ticker]
		row.EVEBITDA = norm[factors.FactorEVEBITDA][row.Ticker]
		row.PriceToBook = norm[factors.FactorPriceToBook][row.Ticker]
		row.FCFYield = norm[factors.FactorFCFYield][row.Ticker]
		row.SizeFactor = norm[factors.FactorSizeFactor][row.Ticker]
	}
}
