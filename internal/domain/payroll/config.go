package payroll

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

func defaultConfig() Config {
	return Config{
		Allowances: []Rule{{Name: "Standard Allowance", Type: RulePercentage, Value: decimal.NewFromInt(10)}},
		Deductions: []Rule{{Name: "Tax", Type: RulePercentage, Value: decimal.NewFromInt(5)}},
	}
}

type rawRule struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Value *float64 `json:"value"`
}

type rawConfigDoc struct {
	Payroll struct {
		Allowances []rawRule `json:"allowances"`
		Deductions []rawRule `json:"deductions"`
	} `json:"payroll"`
}

// ResolveConfig normalizes a tenant's raw settings JSON into a payroll
// config. Rules need a name, a fixed or percentage type, and a non-negative
// finite value; anything else is dropped. Lists that end up empty fall back
// to the standard 10% allowance and 5% tax.
func ResolveConfig(raw []byte) Config {
	var doc rawConfigDoc
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return defaultConfig()
	}
	return normalizeRules(doc.Payroll.Allowances, doc.Payroll.Deductions)
}

// ResolveOverride parses a per-employee override document of the same rule
// shape. An override with zero valid rules yields ok=false so the caller
// falls back to the tenant config.
func ResolveOverride(raw []byte) (Config, bool) {
	var doc struct {
		Allowances []rawRule `json:"allowances"`
		Deductions []rawRule `json:"deductions"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return Config{}, false
	}
	allowances := validRules(doc.Allowances)
	deductions := validRules(doc.Deductions)
	if len(allowances) == 0 && len(deductions) == 0 {
		return Config{}, false
	}
	return Config{Allowances: allowances, Deductions: deductions}, true
}

func normalizeRules(allowances, deductions []rawRule) Config {
	config := Config{
		Allowances: validRules(allowances),
		Deductions: validRules(deductions),
	}
	defaults := defaultConfig()
	if len(config.Allowances) == 0 {
		config.Allowances = defaults.Allowances
	}
	if len(config.Deductions) == 0 {
		config.Deductions = defaults.Deductions
	}
	return config
}

func validRules(raw []rawRule) []Rule {
	var rules []Rule
	for _, candidate := range raw {
		if candidate.Name == "" || candidate.Value == nil || *candidate.Value < 0 {
			continue
		}
		if candidate.Type != RuleFixed && candidate.Type != RulePercentage {
			continue
		}
		rules = append(rules, Rule{
			Name:  candidate.Name,
			Type:  candidate.Type,
			Value: decimal.NewFromFloat(*candidate.Value),
		})
	}
	return rules
}
