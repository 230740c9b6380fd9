package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceSheet представляет балансовый отчет за один период
type BalanceSheet struct {
	UUID uuid.UUID `gorm:"column:uuid;type:uuid;primaryKey"`

	GlobalStatementID *uint `gorm:"column:global_statement_id;index"`

	// Связанный отчет о прибылях и убытках; при его удалении ссылка обнуляется
	IncomeStatementID *uint            `gorm:"column:income_statement_id"`
	IncomeStatement   *IncomeStatement `gorm:"foreignKey:IncomeStatementID;constraint:OnDelete:SET NULL"`

	EntityName       string     `gorm:"column:entity_name;size:100"`
	PeriodEndingDate *time.Time `gorm:"column:period_ending_date;index"`

	// Денежные средства
	CashAtFinancialInstitution      decimal.Decimal `gorm:"column:cash_at_financial_institution;type:decimal(15,2);not null;default:0"`
	CashAtOtherFinancialInstitution decimal.Decimal `gorm:"column:cash_at_other_financial_institution;type:decimal(15,2);not null;default:0"`
	UnclassifiedCashAccount         decimal.Decimal `gorm:"column:unclassified_cash_account;type:decimal(15,2);not null;default:0"`

	// Дебиторская задолженность; резерв хранится отрицательной величиной
	AccountsReceivable decimal.Decimal `gorm:"column:accounts_receivable;type:decimal(15,2);not null;default:0"`
	BadDebtAllowance   decimal.Decimal `gorm:"column:bad_debt_allowance;type:decimal(15,2);not null;default:0"`

	// Запасы
	RawMaterial           decimal.Decimal `gorm:"column:raw_material;type:decimal(15,2);not null;default:0"`
	WorkInProgress        decimal.Decimal `gorm:"column:work_in_progress;type:decimal(15,2);not null;default:0"`
	FinishedGoods         decimal.Decimal `gorm:"column:finished_goods;type:decimal(15,2);not null;default:0"`
	UnclassifiedInventory decimal.Decimal `gorm:"column:unclassified_inventory;type:decimal(15,2);not null;default:0"`

	PrepaidExpensesGeneric    decimal.Decimal `gorm:"column:prepaid_expenses_generic;type:decimal(15,2);not null;default:0"`
	OtherCurrentAssetsGeneric decimal.Decimal `gorm:"column:other_current_assets_generic;type:decimal(15,2);not null;default:0"`

	// Основные средства; накопленная амортизация хранится отрицательной величиной
	MachineryAndEquipment       decimal.Decimal `gorm:"column:machinery_and_equipment;type:decimal(15,2);not null;default:0"`
	ComputersAndOfficeEquipment decimal.Decimal `gorm:"column:computers_and_office_equipment;type:decimal(15,2);not null;default:0"`
	FurnitureAndFixtures        decimal.Decimal `gorm:"column:furniture_and_fixtures;type:decimal(15,2);not null;default:0"`
	LeaseholdImprovements       decimal.Decimal `gorm:"column:leasehold_improvements;type:decimal(15,2);not null;default:0"`
	ConstructionInProgress      decimal.Decimal `gorm:"column:construction_in_progress;type:decimal(15,2);not null;default:0"`
	Building                    decimal.Decimal `gorm:"column:building;type:decimal(15,2);not null;default:0"`
	OtherFixedAsset             decimal.Decimal `gorm:"column:other_fixed_asset;type:decimal(15,2);not null;default:0"`
	AccumulatedDepreciation     decimal.Decimal `gorm:"column:accumulated_depreciation;type:decimal(15,2);not null;default:0"`
	Land                        decimal.Decimal `gorm:"column:land;type:decimal(15,2);not null;default:0"`

	// Нематериальные активы; накопленная амортизация хранится отрицательной величиной
	Goodwill               decimal.Decimal `gorm:"column:goodwill;type:decimal(15,2);not null;default:0"`
	TrademarksAndLicenses  decimal.Decimal `gorm:"column:trademarks_and_licenses;type:decimal(15,2);not null;default:0"`
	FinancingCosts         decimal.Decimal `gorm:"column:financing_costs;type:decimal(15,2);not null;default:0"`
	OtherIntangibleAssets  decimal.Decimal `gorm:"column:other_intangible_assets;type:decimal(15,2);not null;default:0"`
	AccumulatedAmortization decimal.Decimal `gorm:"column:accumulated_amortization;type:decimal(15,2);not null;default:0"`

	DueFromRelatedPartiesGeneric decimal.Decimal `gorm:"column:due_from_related_parties_generic;type:decimal(15,2);not null;default:0"`
	DueFromShareholdersGeneric   decimal.Decimal `gorm:"column:due_from_shareholders_generic;type:decimal(15,2);not null;default:0"`
	OtherLongTermAssetsGeneric   decimal.Decimal `gorm:"column:other_long_term_assets_generic;type:decimal(15,2);not null;default:0"`

	// Текущие обязательства
	TradeAccounts                         decimal.Decimal `gorm:"column:trade_accounts;type:decimal(15,2);not null;default:0"`
	OtherAccounts                         decimal.Decimal `gorm:"column:other_accounts;type:decimal(15,2);not null;default:0"`
	CurrentPortionOfLongTermDebtGeneric   decimal.Decimal `gorm:"column:current_portion_of_long_term_debt_generic;type:decimal(15,2);not null;default:0"`
	RevolvingLinesOfCreditGeneric         decimal.Decimal `gorm:"column:revolving_lines_of_credit_generic;type:decimal(15,2);not null;default:0"`
	CustomerAdvances                      decimal.Decimal `gorm:"column:customer_advances;type:decimal(15,2);not null;default:0"`
	OtherAccruals                         decimal.Decimal `gorm:"column:other_accruals;type:decimal(15,2);not null;default:0"`
	PayrollLiabilities                    decimal.Decimal `gorm:"column:payroll_liabilities;type:decimal(15,2);not null;default:0"`
	TaxesPayable                          decimal.Decimal `gorm:"column:taxes_payable;type:decimal(15,2);not null;default:0"`

	// Долгосрочные обязательства
	LongTermNotesPayableGeneric     decimal.Decimal `gorm:"column:long_term_notes_payable_generic;type:decimal(15,2);not null;default:0"`
	NotesToBeRefinancedGeneric      decimal.Decimal `gorm:"column:notes_to_be_refinanced_generic;type:decimal(15,2);not null;default:0"`
	DueToRelatedPartiesGeneric      decimal.Decimal `gorm:"column:due_to_related_parties_generic;type:decimal(15,2);not null;default:0"`
	DueToShareholdersGeneric        decimal.Decimal `gorm:"column:due_to_shareholders_generic;type:decimal(15,2);not null;default:0"`
	OtherLongTermLiabilitiesGeneric decimal.Decimal `gorm:"column:other_long_term_liabilities_generic;type:decimal(15,2);not null;default:0"`

	// Собственный капитал
	PaidInCapital decimal.Decimal `gorm:"column:paid_in_capital;type:decimal(15,2);not null;default:0"`

	// Цепочечные поля; заполняются из связанного отчета о прибылях и убытках
	// и предыдущего баланса той же линии отчетности
	BeginningRetainedEarnings       decimal.Decimal `gorm:"column:beginning_retained_earnings;type:decimal(15,2);not null;default:0"`
	CurrentPeriodsNetIncomeAfterTax decimal.Decimal `gorm:"column:current_periods_net_income_after_tax;type:decimal(15,2);not null;default:0"`
	CurrentPeriodsDistributions     decimal.Decimal `gorm:"column:current_periods_distributions;type:decimal(15,2);not null;default:0"`

	// Пользовательские статьи; вливаются в указанные ими строки отчета
	UserDefinedFields []UserDefinedField `gorm:"foreignKey:BalanceSheetUUID;constraint:OnDelete:CASCADE"`

	// Расчетные поля; заполняются движком при каждой записи
	CashSubtotal                      decimal.Decimal `gorm:"column:cash_subtotal;type:decimal(15,2);not null;default:0"`
	AccountsReceivableNet             decimal.Decimal `gorm:"column:accounts_receivable_net;type:decimal(15,2);not null;default:0"`
	InventorySubtotal                 decimal.Decimal `gorm:"column:inventory_subtotal;type:decimal(15,2);not null;default:0"`
	TotalCurrentAssets                decimal.Decimal `gorm:"column:total_current_assets;type:decimal(15,2);not null;default:0"`
	GrossPlantAndEquipment            decimal.Decimal `gorm:"column:gross_plant_and_equipment;type:decimal(15,2);not null;default:0"`
	NetPlantAndEquipment              decimal.Decimal `gorm:"column:net_plant_and_equipment;type:decimal(15,2);not null;default:0"`
	NetFixedAssets                    decimal.Decimal `gorm:"column:net_fixed_assets;type:decimal(15,2);not null;default:0"`
	NetIntangibleAssets               decimal.Decimal `gorm:"column:net_intangible_assets;type:decimal(15,2);not null;default:0"`
	OtherLongTermAssetsSubtotal       decimal.Decimal `gorm:"column:other_long_term_assets_subtotal;type:decimal(15,2);not null;default:0"`
	TotalLongTermAssets               decimal.Decimal `gorm:"column:total_long_term_assets;type:decimal(15,2);not null;default:0"`
	TotalAssets                       decimal.Decimal `gorm:"column:total_assets;type:decimal(15,2);not null;default:0"`
	AccountsPayableSubtotal           decimal.Decimal `gorm:"column:accounts_payable_subtotal;type:decimal(15,2);not null;default:0"`
	CurrentPortionOfLongTermDebtSubtotal decimal.Decimal `gorm:"column:current_portion_of_long_term_debt_subtotal;type:decimal(15,2);not null;default:0"`
	CreditCardsAndOtherLinesSubtotal  decimal.Decimal `gorm:"column:credit_cards_and_other_lines_of_credit_subtotal;type:decimal(15,2);not null;default:0"`
	AccrualsSubtotal                  decimal.Decimal `gorm:"column:accruals_subtotal;type:decimal(15,2);not null;default:0"`
	OtherCurrentLiabilitiesSubtotal   decimal.Decimal `gorm:"column:other_current_liabilities_subtotal;type:decimal(15,2);not null;default:0"`
	TotalCurrentLiabilities           decimal.Decimal `gorm:"column:total_current_liabilities;type:decimal(15,2);not null;default:0"`
	NotesToBeRefinancedSubtotal       decimal.Decimal `gorm:"column:notes_to_be_refinanced_subtotal;type:decimal(15,2);not null;default:0"`
	OtherLongTermNotesPayableSubtotal decimal.Decimal `gorm:"column:other_long_term_notes_payable_subtotal;type:decimal(15,2);not null;default:0"`
	DueToRelatedPartySubtotal         decimal.Decimal `gorm:"column:due_to_related_party_subtotal;type:decimal(15,2);not null;default:0"`
	DueToShareholdersSubtotal         decimal.Decimal `gorm:"column:due_to_shareholders_subtotal;type:decimal(15,2);not null;default:0"`
	OtherLongTermLiabilitiesSubtotal  decimal.Decimal `gorm:"column:other_long_term_liabilities_subtotal;type:decimal(15,2);not null;default:0"`
	TotalLongTermLiabilities          decimal.Decimal `gorm:"column:total_long_term_liabilities;type:decimal(15,2);not null;default:0"`
	TotalLiabilities                  decimal.Decimal `gorm:"column:total_liabilities;type:decimal(15,2);not null;default:0"`
	RetainedEarningsSubtotal          decimal.Decimal `gorm:"column:retained_earnings_subtotal;type:decimal(15,2);not null;default:0"`
	OtherAdjustmentsToEquitySubtotal  decimal.Decimal `gorm:"column:other_adjustments_to_equity_subtotal;type:decimal(15,2);not null;default:0"`
	TotalShareholdersEquity           decimal.Decimal `gorm:"column:total_shareholders_equity;type:decimal(15,2);not null;default:0"`
	UnbalancedAmount                  decimal.Decimal `gorm:"column:unbalanced_amount;type:decimal(15,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (BalanceSheet) TableName() string {
	return "balance_sheets"
}

// NormalizeContraAccounts приводит контрарные счета к неположительным значениям.
// Положительный ввод трактуется как величина резерва и инвертируется;
// в родительские промежуточные итоги такие счета складываются, а не вычитаются.
func (b *BalanceSheet) NormalizeContraAccounts() {
	if b.BadDebtAllowance.IsPositive() {
		b.BadDebtAllowance = b.BadDebtAllowance.Neg()
	}
	if b.AccumulatedDepreciation.IsPositive() {
		b.AccumulatedDepreciation = b.AccumulatedDepreciation.Neg()
	}
	if b.AccumulatedAmortization.IsPositive() {
		b.AccumulatedAmortization = b.AccumulatedAmortization.Neg()
	}
}

// BeforeSave хук, гарантирующий инвариант контрарных счетов при любой записи
func (b *BalanceSheet) BeforeSave(tx *gorm.DB) error {
	b.NormalizeContraAccounts()
	return nil
}

// BeforeCreate хук, который присваивает UUID, если он не задан
func (b *BalanceSheet) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	return nil
}
