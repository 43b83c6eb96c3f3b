package score

import "github.com/sableview/uivet/internal/model"

// Config carries the scoring constants. The impact multipliers are an
// empirically tuned table, shipped as configuration so deployments can
// re-tune them without a code change.
type Config struct {
	// BasePenalty is the per-finding score penalty by severity.
	BasePenalty map[model.Severity]float64

	// CodeCap ceilings the accumulated penalty of one code.
	CodeCap map[model.Severity]float64

	// TotalCap ceilings the summed penalty across all codes, so accumulated
	// minor noise alone cannot drive a page score below 100-TotalCap.
	TotalCap float64

	// DiminishFactor discounts repeated findings of one code:
	// penalty_i = base / (1 + i*DiminishFactor).
	DiminishFactor float64

	// PriorityBase is the per-severity base of the 0-100 priority number.
	PriorityBase map[model.Severity]float64

	// ImpactMultipliers elevates codes known to block functionality or
	// affect many users. Codes absent from the map multiply by 1.0.
	ImpactMultipliers map[string]float64

	// DedupPrefixLen is how many characters of the normalized message
	// participate in the dedup key.
	DedupPrefixLen int
}

// DefaultConfig returns the tuned constants.
func DefaultConfig() Config {
	return Config{
		BasePenalty: map[model.Severity]float64{
			model.SeverityCritical:     12,
			model.SeverityMajor:        6,
			model.SeverityMinor:        2,
			model.SeverityOptimization: 1,
		},
		CodeCap: map[model.Severity]float64{
			model.SeverityCritical:     30,
			model.SeverityMajor:        20,
			model.SeverityMinor:        10,
			model.SeverityOptimization: 5,
		},
		TotalCap:       70,
		DiminishFactor: 0.3,
		PriorityBase: map[model.Severity]float64{
			model.SeverityCritical:     40,
			model.SeverityMajor:        25,
			model.SeverityMinor:        10,
			model.SeverityOptimization: 5,
		},
		ImpactMultipliers: map[string]float64{
			"nav/broken-link":          1.8,
			"nav/broken-fragment":      1.5,
			"interaction/unclickable":  2.0,
			"interaction/dead-link":    1.6,
			"interaction/unsafe-blank": 1.2,
			"forms/missing-submit":     1.5,
			"content/console-error":    1.4,
		},
		DedupPrefixLen: 80,
	}
}
