package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialStatementQuality представляет качество источника финансовой отчетности
type FinancialStatementQuality string

const (
	QualityProjections           FinancialStatementQuality = "PR"
	QualityCompanyPrepared       FinancialStatementQuality = "CP"
	QualityTaxReturns            FinancialStatementQuality = "TR"
	QualityCPAReviewedQualified  FinancialStatementQuality = "CRQ"
	QualityCPAReviewedUnqualified FinancialStatementQuality = "CRU"
	QualityCPAAuditedQualified   FinancialStatementQuality = "CAQ"
	QualityCPAAuditedUnqualified FinancialStatementQuality = "CAU"
	QualityOther                 FinancialStatementQuality = "OTH"
)

// IncomeStatement представляет отчет о прибылях и убытках за один период
type IncomeStatement struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	GlobalStatementID *uint     `gorm:"column:global_statement_id;index"`
	BusinessUUID      uuid.UUID `gorm:"column:business_uuid;type:uuid;not null;index"`
	Business          Business  `gorm:"foreignKey:BusinessUUID;constraint:OnDelete:CASCADE"`

	LegalEntityFiscalYearEnd  *time.Time                `gorm:"column:legal_entity_fiscal_year_end"`
	PeriodEndingDate          *time.Time                `gorm:"column:period_ending_date;index"`
	FinancialStatementQuality FinancialStatementQuality `gorm:"column:financial_statement_quality;type:varchar(3);not null"`

	// Выручка
	Revenue              decimal.Decimal `gorm:"column:revenue;type:decimal(15,2);not null;default:0"`
	ReturnsAndAllowances decimal.Decimal `gorm:"column:returns_and_allowances;type:decimal(15,2);not null;default:0"`

	// Себестоимость
	CostOfGoodsSoldGeneral      decimal.Decimal `gorm:"column:cost_of_goods_sold_general;type:decimal(15,2);not null;default:0"`
	CostOfGoodsSoldDepreciation decimal.Decimal `gorm:"column:cost_of_goods_sold_depreciation;type:decimal(15,2);not null;default:0"`

	// Операционные расходы
	SalariesAndWages      decimal.Decimal `gorm:"column:salaries_and_wages;type:decimal(15,2);not null;default:0"`
	OfficersCompensation  decimal.Decimal `gorm:"column:officers_compensation;type:decimal(15,2);not null;default:0"`
	RepairsAndMaintenance decimal.Decimal `gorm:"column:repairs_and_maintenance;type:decimal(15,2);not null;default:0"`
	BadDebt               decimal.Decimal `gorm:"column:bad_debt;type:decimal(15,2);not null;default:0"`

	// Аренда и лизинг
	RealEstateRentEffectsEbitdar       decimal.Decimal `gorm:"column:real_estate_rent_effects_ebitdar;type:decimal(15,2);not null;default:0"`
	RealEstateRentNoRefinanceScenario  decimal.Decimal `gorm:"column:real_estate_rent_no_refinance_scenario;type:decimal(15,2);not null;default:0"`
	OperatingLeases                    decimal.Decimal `gorm:"column:operating_leases;type:decimal(15,2);not null;default:0"`

	// Налоги, лицензии и страхование
	RealEstateTaxes        decimal.Decimal `gorm:"column:real_estate_taxes;type:decimal(15,2);not null;default:0"`
	PayrollTaxes           decimal.Decimal `gorm:"column:payroll_taxes;type:decimal(15,2);not null;default:0"`
	LiabilityInsurance     decimal.Decimal `gorm:"column:liability_insurance;type:decimal(15,2);not null;default:0"`
	OtherTaxesAndLicenses  decimal.Decimal `gorm:"column:other_taxes_and_licenses;type:decimal(15,2);not null;default:0"`

	// Прочие операционные статьи
	DepreciationAndDepletion      decimal.Decimal `gorm:"column:depreciation_and_depletion;type:decimal(15,2);not null;default:0"`
	Amortization                  decimal.Decimal `gorm:"column:amortization;type:decimal(15,2);not null;default:0"`
	LegalAndProfessionalExpenses  decimal.Decimal `gorm:"column:legal_and_professional_expenses;type:decimal(15,2);not null;default:0"`
	EmployeeBenefitPrograms       decimal.Decimal `gorm:"column:employee_benefit_programs;type:decimal(15,2);not null;default:0"`
	Advertising                   decimal.Decimal `gorm:"column:advertising;type:decimal(15,2);not null;default:0"`
	OtherOperatingExpensesGeneral decimal.Decimal `gorm:"column:other_operating_expenses_general;type:decimal(15,2);not null;default:0"`

	// Прочие доходы и расходы
	GainOnSaleOfAsset            decimal.Decimal `gorm:"column:gain_on_sale_of_asset;type:decimal(15,2);not null;default:0"`
	LossOnSaleOfAsset            decimal.Decimal `gorm:"column:loss_on_sale_of_asset;type:decimal(15,2);not null;default:0"`
	InterestIncome               decimal.Decimal `gorm:"column:interest_income;type:decimal(15,2);not null;default:0"`
	InterestExpense              decimal.Decimal `gorm:"column:interest_expense;type:decimal(15,2);not null;default:0"`
	OtherIncomeOrExpenseGeneral  decimal.Decimal `gorm:"column:other_income_or_expense_general;type:decimal(15,2);not null;default:0"`

	// Налоги на прибыль
	CCorporationTaxes     decimal.Decimal `gorm:"column:c_corporation_taxes;type:decimal(15,2);not null;default:0"`
	CCorporationTaxRefund decimal.Decimal `gorm:"column:c_corporation_tax_refund;type:decimal(15,2);not null;default:0"`

	// Прочие корректировки денежного потока и капитала
	OtherCashFlowAdjustmentGeneral decimal.Decimal `gorm:"column:other_cash_flow_adjustment_general;type:decimal(15,2);not null;default:0"`

	// Анализ покрытия долговых обязательств
	DebtServiceObligations                    decimal.Decimal `gorm:"column:debt_service_obligations;type:decimal(15,2);not null;default:0"`
	AdjustedMonthlyDebtServiceObligations     decimal.Decimal `gorm:"column:adjusted_monthly_debt_service_obligations;type:decimal(15,2);not null;default:0"`
	AdjustedObligationsForMonthsInPeriod      decimal.Decimal `gorm:"column:adjusted_obligations_for_months_in_current_period;type:decimal(15,2);not null;default:0"`
	HistoricalInterestExpenses                decimal.Decimal `gorm:"column:historical_interest_expenses;type:decimal(15,2);not null;default:0"`
	AdjustedDebtServiceObligations            decimal.Decimal `gorm:"column:adjusted_debt_service_obligations;type:decimal(15,2);not null;default:0"`
	DistributionsToShareholders               decimal.Decimal `gorm:"column:distributions_to_shareholders;type:decimal(15,2);not null;default:0"`

	// Расчетные поля; заполняются движком при каждой записи
	MonthsInPeriod                           *int            `gorm:"column:months_in_period"`
	NetRevenue                               decimal.Decimal `gorm:"column:net_revenue;type:decimal(15,2);not null;default:0"`
	CostOfGoodsSoldSubtotal                  decimal.Decimal `gorm:"column:cost_of_goods_sold_subtotal;type:decimal(15,2);not null;default:0"`
	TotalGrossProfit                         decimal.Decimal `gorm:"column:total_gross_profit;type:decimal(15,2);not null;default:0"`
	RentAndLeaseExpensesSubtotal             decimal.Decimal `gorm:"column:rent_and_lease_expenses_subtotal;type:decimal(15,2);not null;default:0"`
	TaxesLicensesAndInsuranceSubtotal        decimal.Decimal `gorm:"column:taxes_licenses_and_insurance_subtotal;type:decimal(15,2);not null;default:0"`
	OtherOperatingExpensesSubtotal           decimal.Decimal `gorm:"column:other_operating_expenses_subtotal;type:decimal(15,2);not null;default:0"`
	TotalOperatingExpenses                   decimal.Decimal `gorm:"column:total_operating_expenses;type:decimal(15,2);not null;default:0"`
	NetOperatingIncome                       decimal.Decimal `gorm:"column:net_operating_income;type:decimal(15,2);not null;default:0"`
	OtherIncomeAndExpenses                   decimal.Decimal `gorm:"column:other_income_and_expenses;type:decimal(15,2);not null;default:0"`
	OtherIncomeOrExpensesSubtotal            decimal.Decimal `gorm:"column:other_income_or_expenses_subtotal;type:decimal(15,2);not null;default:0"`
	TotalOtherIncomeAndExpenses              decimal.Decimal `gorm:"column:total_other_income_and_expenses;type:decimal(15,2);not null;default:0"`
	NetProfitLoss                            decimal.Decimal `gorm:"column:net_profit_loss;type:decimal(15,2);not null;default:0"`
	NetProfitLossAfterTaxes                  decimal.Decimal `gorm:"column:net_profit_loss_after_taxes;type:decimal(15,2);not null;default:0"`
	OtherCashFlowAdjustmentsSubtotal         decimal.Decimal `gorm:"column:other_cash_flow_adjustments_subtotal;type:decimal(15,2);not null;default:0"`
	TotalAdjustedEbit                        decimal.Decimal `gorm:"column:total_adjusted_ebit;type:decimal(15,2);not null;default:0"`
	TotalAdjustedEbitda                      decimal.Decimal `gorm:"column:total_adjusted_ebitda;type:decimal(15,2);not null;default:0"`
	TotalAdjustedEbitdar                     decimal.Decimal `gorm:"column:total_adjusted_ebitdar;type:decimal(15,2);not null;default:0"`
	TotalAdjustedEbitdarIncludesDistributions decimal.Decimal `gorm:"column:total_adjusted_ebitdar_includes_distributions;type:decimal(15,2);not null;default:0"`
	EbitdaCoverageRatio                      decimal.NullDecimal `gorm:"column:ebitda_coverage_ratio;type:decimal(15,4)"`
	EbitdarCoverageRatio                     decimal.NullDecimal `gorm:"column:ebitdar_coverage_ratio;type:decimal(15,4)"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (IncomeStatement) TableName() string {
	return "income_statements"
}
