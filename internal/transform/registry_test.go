package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRegistry_List(t *testing.T) {
	names := NewTransformRegistry().List()
	assert.Equal(t, []string{
		"add_allowance", "add_bonus", "add_overtime", "raise",
		"set_company", "set_deductions", "set_gross", "set_period",
	}, names)
}

func TestTransformRegistry_ParseTransformSpec(t *testing.T) {
	r := NewTransformRegistry()

	tests := []struct {
		spec string
		want InputTransform
	}{
		{"raise:percent=5", &RaiseSalary{Percent: dec("5")}},
		{"raise: amount = 750.50", &RaiseSalary{Amount: dec("750.5")}},
		{"set_gross:gross=12000", &SetGross{Gross: dec("12000")}},
		{"add_overtime:hours=10,rate=2", &AddOvertime{Hours: dec("10"), Rate: dec("2")}},
		{"add_overtime:hours=4", &AddOvertime{Hours: dec("4")}},
		{"add_bonus:amount=1000", &AddBonus{Amount: dec("1000")}},
		{"add_allowance:amount=250", &AddAllowance{Amount: dec("250")}},
		{"set_deductions:amount=0", &SetDeductions{Amount: dec("0")}},
		{"set_period:month=1,year=2024", &SetPayPeriod{Month: 1, Year: 2024}},
		{"set_company:company=globex", &SetCompany{CompanyID: "globex"}},
		{"set_company:company=", &SetCompany{}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := r.ParseTransformSpec(tt.spec)
			require.NoError(t, err)
			require.IsType(t, tt.want, got)
			assert.Equal(t, tt.want.Description(), got.Description())
		})
	}
}

func TestTransformRegistry_ParseTransformSpec_Errors(t *testing.T) {
	r := NewTransformRegistry()

	tests := []struct {
		spec   string
		errMsg string
	}{
		{"", "invalid transform spec format"},
		{":percent=5", "invalid transform spec format"},
		{"promote:level=2", "unknown transform: promote"},
		{"raise:percent", "expected 'key=value'"},
		{"raise", "requires 'percent' or 'amount'"},
		{"raise:percent=abc", "invalid percent value"},
		{"set_gross:", "requires 'gross' parameter"},
		{"add_overtime:rate=2", "requires 'hours' parameter"},
		{"add_bonus:", "requires 'amount' parameter"},
		{"set_period:month=march", "invalid month value"},
		{"set_period:", "requires 'month' or 'year'"},
		{"set_company:", "requires 'company' parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := r.ParseTransformSpec(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
