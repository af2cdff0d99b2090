package leave

import "encoding/json"

type TypePolicy struct {
	AnnualEntitlementDays int  `json:"annualEntitlementDays"`
	CarryForwardMaxDays   int  `json:"carryForwardMaxDays"`
	AccrualEnabled        bool `json:"accrualEnabled"`
}

// PolicySettings is the fully-defaulted leave policy for one tenant.
type PolicySettings struct {
	Types    map[string]TypePolicy `json:"types"`
	Holidays map[string]struct{}   `json:"-"`
}

func defaultPolicies() map[string]TypePolicy {
	return map[string]TypePolicy{
		TypeAnnual:    {AnnualEntitlementDays: 20, CarryForwardMaxDays: 5, AccrualEnabled: true},
		TypeSick:      {AnnualEntitlementDays: 10},
		TypePersonal:  {AnnualEntitlementDays: 5},
		TypeMaternity: {AnnualEntitlementDays: 90},
		TypePaternity: {AnnualEntitlementDays: 14},
		TypeUnpaid:    {AnnualEntitlementDays: 0},
	}
}

// rawPolicyDoc mirrors the admin-editable settings shape. Every field is
// loosely typed so a malformed document degrades to defaults instead of
// failing the calling operation.
type rawPolicyDoc struct {
	Leave struct {
		Policies map[string]json.RawMessage `json:"policies"`
		Holidays []any                      `json:"holidays"`
	} `json:"leave"`
}

type rawTypePolicy struct {
	AnnualEntitlementDays *float64 `json:"annualEntitlementDays"`
	CarryForwardMaxDays   *float64 `json:"carryForwardMaxDays"`
	AccrualEnabled        *bool    `json:"accrualEnabled"`
}

// ResolvePolicySettings normalizes a tenant's raw settings JSON into a
// complete policy. A candidate per-type policy is accepted only when its
// annualEntitlementDays parses as a number; everything else falls back to the
// hardcoded default for that type. Holiday entries must be strings and are
// truncated to the ISO date prefix.
func ResolvePolicySettings(raw []byte) PolicySettings {
	settings := PolicySettings{
		Types:    defaultPolicies(),
		Holidays: map[string]struct{}{},
	}

	var doc rawPolicyDoc
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return settings
	}

	for _, leaveType := range Types {
		candidate, ok := doc.Leave.Policies[leaveType]
		if !ok {
			continue
		}
		var parsed rawTypePolicy
		if json.Unmarshal(candidate, &parsed) != nil || parsed.AnnualEntitlementDays == nil {
			continue
		}
		policy := settings.Types[leaveType]
		policy.AnnualEntitlementDays = int(*parsed.AnnualEntitlementDays)
		if parsed.CarryForwardMaxDays != nil && *parsed.CarryForwardMaxDays >= 0 {
			policy.CarryForwardMaxDays = int(*parsed.CarryForwardMaxDays)
		}
		if parsed.AccrualEnabled != nil {
			policy.AccrualEnabled = *parsed.AccrualEnabled
		}
		settings.Types[leaveType] = policy
	}

	for _, entry := range doc.Leave.Holidays {
		date, ok := entry.(string)
		if !ok {
			continue
		}
		if len(date) > 10 {
			date = date[:10]
		}
		if date != "" {
			settings.Holidays[date] = struct{}{}
		}
	}
	return settings
}
