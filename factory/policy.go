/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON company-policy definitions into statutory.CompanyPolicy
  values. This enables policy configuration without code changes - HR
  can define statutory settings in JSON, store them in the database, and
  the factory creates validated Go structs.

JSON SCHEMA:
  {
    "id": "policy-default",
    "name": "Standard Statutory Policy",
    "basic_percentage": 50,
    "min_basic": 15000,
    "max_basic": 30000,
    "gratuity_percentage": 4.81,
    "gratuity_multiplier": 15,
    "esic_ee_percentage": 0.75,
    "esic_er_percentage": 3.25,
    "esic_wage_limit": 21000,
    "esic_wage_limit_disabled": false,
    "pf_percentage": 12,
    "pf_ceiling_amount": 15000,
    "professional_tax": 200,
    "min_annual_wage": 10000
  }

  Percentages are whole numbers, exactly as they appear in the HR
  configuration screens.

SEE ALSO:
  - statutory/policy.go: CompanyPolicy and validation rules
  - store/sqlite: persists the JSON form
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opspay/payroll-engine/statutory"
)

// PolicyJSON is the JSON representation of a company policy.
type PolicyJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	BasicPercentage decimal.Decimal `json:"basic_percentage"`
	MinBasic        decimal.Decimal `json:"min_basic"`
	MaxBasic        decimal.Decimal `json:"max_basic"`

	GratuityPercentage decimal.Decimal `json:"gratuity_percentage"`
	GratuityMultiplier decimal.Decimal `json:"gratuity_multiplier"`

	ESICEmployeePercentage decimal.Decimal `json:"esic_ee_percentage"`
	ESICEmployerPercentage decimal.Decimal `json:"esic_er_percentage"`
	ESICWageLimit          decimal.Decimal `json:"esic_wage_limit"`
	ESICWageLimitDisabled  bool            `json:"esic_wage_limit_disabled"`

	PFPercentage    decimal.Decimal `json:"pf_percentage"`
	PFCeilingAmount decimal.Decimal `json:"pf_ceiling_amount"`

	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	MinAnnualWage   decimal.Decimal `json:"min_annual_wage,omitempty"`
}

// PolicyFactory parses and validates policy JSON.
type PolicyFactory struct{}

func NewPolicyFactory() *PolicyFactory { return &PolicyFactory{} }

// ParsePolicy converts a JSON document into a validated CompanyPolicy.
func (f *PolicyFactory) ParsePolicy(data []byte) (id, name string, policy statutory.CompanyPolicy, err error) {
	var raw PolicyJSON
	if err = json.Unmarshal(data, &raw); err != nil {
		return "", "", statutory.CompanyPolicy{}, fmt.Errorf("parse policy json: %w", err)
	}
	if raw.ID == "" {
		return "", "", statutory.CompanyPolicy{}, fmt.Errorf("parse policy json: missing id")
	}

	policy = raw.Policy()
	if err = policy.Validate(); err != nil {
		return "", "", statutory.CompanyPolicy{}, err
	}
	return raw.ID, raw.Name, policy, nil
}

// Policy maps the JSON fields onto the calculator's policy struct.
func (p PolicyJSON) Policy() statutory.CompanyPolicy {
	return statutory.CompanyPolicy{
		BasicPercentage:        p.BasicPercentage,
		MinBasic:               p.MinBasic,
		MaxBasic:               p.MaxBasic,
		GratuityPercentage:     p.GratuityPercentage,
		GratuityMultiplier:     p.GratuityMultiplier,
		ESICEmployeePercentage: p.ESICEmployeePercentage,
		ESICEmployerPercentage: p.ESICEmployerPercentage,
		ESICWageLimit:          p.ESICWageLimit,
		ESICWageLimitDisabled:  p.ESICWageLimitDisabled,
		PFPercentage:           p.PFPercentage,
		PFCeilingAmount:        p.PFCeilingAmount,
		ProfessionalTax:        p.ProfessionalTax,
		MinAnnualWage:          p.MinAnnualWage,
	}
}

// FromPolicy converts a CompanyPolicy back into its JSON form.
func FromPolicy(id, name string, policy statutory.CompanyPolicy) PolicyJSON {
	return PolicyJSON{
		ID:                     id,
		Name:                   name,
		BasicPercentage:        policy.BasicPercentage,
		MinBasic:               policy.MinBasic,
		MaxBasic:               policy.MaxBasic,
		GratuityPercentage:     policy.GratuityPercentage,
		GratuityMultiplier:     policy.GratuityMultiplier,
		ESICEmployeePercentage: policy.ESICEmployeePercentage,
		ESICEmployerPercentage: policy.ESICEmployerPercentage,
		ESICWageLimit:          policy.ESICWageLimit,
		ESICWageLimitDisabled:  policy.ESICWageLimitDisabled,
		PFPercentage:           policy.PFPercentage,
		PFCeilingAmount:        policy.PFCeilingAmount,
		ProfessionalTax:        policy.ProfessionalTax,
		MinAnnualWage:          policy.MinAnnualWage,
	}
}
