package store

import "github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"

// floatArg converts an optional float to a nullable query argument.
func floatArg(f contracts.Float) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

// floatFromPtr converts a scanned nullable column to an optional float.
func floatFromPtr(p *float64) contracts.Float {
	if p == nil {
		return contracts.Missing()
	}
	return contracts.FloatFrom(*p)
}
