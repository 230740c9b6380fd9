package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"opnlend/models"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestIncomeStatementRecomputeSubtotals(t *testing.T) {
	service := NewIncomeStatementService(nil, nil)

	st := &models.IncomeStatement{
		FinancialStatementQuality:   models.QualityTaxReturns,
		Revenue:                     decimal.NewFromInt(100000),
		ReturnsAndAllowances:        decimal.NewFromInt(5000),
		CostOfGoodsSoldGeneral:      decimal.NewFromInt(40000),
		CostOfGoodsSoldDepreciation: decimal.NewFromInt(2000),
	}
	service.Recompute(st)

	cases := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"net_revenue", st.NetRevenue, 95000},
		{"cost_of_goods_sold_subtotal", st.CostOfGoodsSoldSubtotal, 42000},
		{"total_gross_profit", st.TotalGrossProfit, 53000},
		{"net_operating_income", st.NetOperatingIncome, 53000},
		{"net_profit_loss", st.NetProfitLoss, 53000},
		{"net_profit_loss_after_taxes", st.NetProfitLossAfterTaxes, 53000},
	}
	for _, c := range cases {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}
}

func TestIncomeStatementRecomputeIsIdempotent(t *testing.T) {
	service := NewIncomeStatementService(nil, nil)

	st := &models.IncomeStatement{
		Revenue:          decimal.NewFromInt(100000),
		SalariesAndWages: decimal.NewFromInt(30000),
		InterestExpense:  decimal.NewFromInt(4000),
	}
	service.Recompute(st)
	first := st.NetProfitLossAfterTaxes

	service.Recompute(st)
	if !st.NetProfitLossAfterTaxes.Equal(first) {
		t.Errorf("repeated recompute changed result: %s != %s",
			st.NetProfitLossAfterTaxes, first)
	}
}

func TestIncomeStatementEbitAddsBackAbsoluteValues(t *testing.T) {
	service := NewIncomeStatementService(nil, nil)

	// Налоги и проценты введены отрицательными: возврат к EBIT
	// прибавляет их по модулю
	st := &models.IncomeStatement{
		Revenue:                  decimal.NewFromInt(100000),
		InterestExpense:          decimal.NewFromInt(-4000),
		CCorporationTaxes:        decimal.NewFromInt(-6000),
		DepreciationAndDepletion: decimal.NewFromInt(3000),
		Amortization:             decimal.NewFromInt(1000),
	}
	service.Recompute(st)

	// NOI = 100000 - (3000 + 1000) = 96000
	// other_income_and_expenses = -(-4000) = 4000, net_profit_loss = 100000
	// net_profit_loss_after_taxes = 100000 - (-6000) = 106000
	if !st.NetProfitLossAfterTaxes.Equal(decimal.NewFromInt(106000)) {
		t.Errorf("net_profit_loss_after_taxes = %s, want 106000", st.NetProfitLossAfterTaxes)
	}

	// EBIT = 106000 + |−6000| + |−4000| = 116000
	if !st.TotalAdjustedEbit.Equal(decimal.NewFromInt(116000)) {
		t.Errorf("total_adjusted_ebit = %s, want 116000", st.TotalAdjustedEbit)
	}

	// EBITDA = EBIT + амортизация и износ
	if !st.TotalAdjustedEbitda.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("total_adjusted_ebitda = %s, want 120000", st.TotalAdjustedEbitda)
	}
}

func TestIncomeStatementEbitdarIncludesDistributions(t *testing.T) {
	service := NewIncomeStatementService(nil, nil)

	st := &models.IncomeStatement{
		Revenue:                      decimal.NewFromInt(50000),
		RealEstateRentEffectsEbitdar: decimal.NewFromInt(12000),
		DistributionsToShareholders:  decimal.NewFromInt(8000),
	}
	service.Recompute(st)

	// Аренда входит в операционные расходы и прибавляется обратно в EBITDAR
	if !st.TotalAdjustedEbitdar.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("total_adjusted_ebitdar = %s, want 50000", st.TotalAdjustedEbitdar)
	}
	if !st.TotalAdjustedEbitdarIncludesDistributions.Equal(decimal.NewFromInt(42000)) {
		t.Errorf("total_adjusted_ebitdar_includes_distributions = %s, want 42000",
			st.TotalAdjustedEbitdarIncludesDistributions)
	}
}

func TestMonthsInPeriod(t *testing.T) {
	cases := []struct {
		name         string
		fiscalYearEnd *time.Time
		periodEnding *time.Time
		want         *int
	}{
		{"обе даты отсутствуют", nil, nil, nil},
		{"нет даты окончания периода", date(2023, time.December, 31), nil, nil},
		{"финансовый год до декабря", date(2023, time.December, 31), date(2023, time.June, 30), intPtr(6)},
		{"полный календарный год", date(2023, time.December, 31), date(2023, time.December, 31), intPtr(12)},
		{"период после конца финансового года", date(2023, time.March, 31), date(2023, time.June, 30), intPtr(3)},
		{"переход через границу года", date(2023, time.June, 30), date(2024, time.March, 31), intPtr(9)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st := &models.IncomeStatement{
				LegalEntityFiscalYearEnd: c.fiscalYearEnd,
				PeriodEndingDate:         c.periodEnding,
			}
			got := monthsInPeriod(st)
			if (got == nil) != (c.want == nil) {
				t.Fatalf("months_in_period = %v, want %v", got, c.want)
			}
			if got != nil && *got != *c.want {
				t.Errorf("months_in_period = %d, want %d", *got, *c.want)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}

func TestCoverageRatio(t *testing.T) {
	// Нулевой знаменатель: коэффициент не определен
	ratio := coverageRatio(decimal.NewFromInt(50000), decimal.Zero)
	if ratio.Valid {
		t.Errorf("coverage ratio with zero obligations should be undefined, got %s", ratio.Decimal)
	}

	ratio = coverageRatio(decimal.NewFromInt(50000), decimal.NewFromInt(40000))
	if !ratio.Valid {
		t.Fatal("coverage ratio should be defined")
	}
	if !ratio.Decimal.Equal(decimal.NewFromFloat(1.25)) {
		t.Errorf("coverage ratio = %s, want 1.25", ratio.Decimal)
	}
}

func TestIncomeStatementQualityValidation(t *testing.T) {
	service := NewIncomeStatementService(nil, nil)

	st := &models.IncomeStatement{FinancialStatementQuality: "BAD"}
	err := service.validateIncomeStatement(st)
	if err == nil {
		t.Fatal("expected validation error for unknown quality")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if validationErr.Fields[0].Code != ValidationInvalidEnumValue {
		t.Errorf("code = %s, want %s", validationErr.Fields[0].Code, ValidationInvalidEnumValue)
	}

	st.FinancialStatementQuality = models.QualityTaxReturns
	if err := service.validateIncomeStatement(st); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}
