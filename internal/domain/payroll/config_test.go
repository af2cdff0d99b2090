package payroll

import "testing"

func TestResolveConfigDefaults(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(``), []byte(`broken`), []byte(`{"payroll": {"allowances": []}}`)} {
		config := ResolveConfig(raw)

		if len(config.Allowances) != 1 || config.Allowances[0].Name != "Standard Allowance" {
			t.Fatalf("allowance default wrong for %q: %+v", raw, config.Allowances)
		}
		if !config.Allowances[0].Value.Equal(dec("10")) || config.Allowances[0].Type != RulePercentage {
			t.Fatalf("allowance default rule wrong: %+v", config.Allowances[0])
		}
		if len(config.Deductions) != 1 || config.Deductions[0].Name != "Tax" {
			t.Fatalf("deduction default wrong: %+v", config.Deductions)
		}
		if !config.Deductions[0].Value.Equal(dec("5")) {
			t.Fatalf("deduction default rule wrong: %+v", config.Deductions[0])
		}
	}
}

func TestResolveConfigDropsInvalidRules(t *testing.T) {
	raw := []byte(`{"payroll": {
		"allowances": [
			{"name": "Transport", "type": "fixed", "value": 100},
			{"name": "", "type": "fixed", "value": 5},
			{"name": "Bad Type", "type": "multiplier", "value": 2},
			{"name": "Negative", "type": "fixed", "value": -3},
			{"name": "No Value", "type": "fixed"}
		],
		"deductions": [
			{"name": "Pension", "type": "percentage", "value": 8}
		]
	}}`)

	config := ResolveConfig(raw)
	if len(config.Allowances) != 1 || config.Allowances[0].Name != "Transport" {
		t.Fatalf("expected only Transport to survive: %+v", config.Allowances)
	}
	if len(config.Deductions) != 1 || config.Deductions[0].Name != "Pension" {
		t.Fatalf("expected Pension deduction: %+v", config.Deductions)
	}
}

func TestResolveOverride(t *testing.T) {
	override, ok := ResolveOverride([]byte(`{"allowances": [{"name": "Bonus", "type": "fixed", "value": 500}]}`))
	if !ok {
		t.Fatal("valid override should resolve")
	}
	if len(override.Allowances) != 1 || override.Allowances[0].Name != "Bonus" {
		t.Fatalf("override allowances wrong: %+v", override.Allowances)
	}
	if len(override.Deductions) != 0 {
		t.Fatalf("override deductions should be empty, got %+v", override.Deductions)
	}

	// An override with zero valid rules falls back to the tenant config.
	for _, raw := range [][]byte{nil, []byte(`{}`), []byte(`{"allowances": [{"name": "", "value": 1}]}`), []byte(`junk`)} {
		if _, ok := ResolveOverride(raw); ok {
			t.Fatalf("override %q should not resolve", raw)
		}
	}
}

func TestValidPayPeriod(t *testing.T) {
	valid := []string{"2024-01", "2024-12", "1999-06"}
	invalid := []string{"2024-13", "2024-00", "2024-1", "24-01", "2024/01", "2024-01-01", ""}

	for _, period := range valid {
		if !ValidPayPeriod(period) {
			t.Fatalf("%q should be valid", period)
		}
	}
	for _, period := range invalid {
		if ValidPayPeriod(period) {
			t.Fatalf("%q should be invalid", period)
		}
	}
}

func TestPeriodBounds(t *testing.T) {
	from, to, err := PeriodBounds("2024-02")
	if err != nil {
		t.Fatalf("PeriodBounds: %v", err)
	}
	if from.Format("2006-01-02") != "2024-02-01" {
		t.Fatalf("from = %s", from)
	}
	if to.Format("2006-01-02") != "2024-02-29" {
		t.Fatalf("to = %s, want leap-year end", to)
	}

	if _, _, err := PeriodBounds("2024-1"); err == nil {
		t.Fatal("malformed period should error")
	}
}
