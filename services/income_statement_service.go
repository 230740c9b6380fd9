package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"opnlend/models"
	"opnlend/utils"
)

// incomeStatementGraph определяет расчетную цепочку отчета о прибылях
// и убытках: от промежуточных итогов нижнего уровня до скорректированных
// EBIT/EBITDA/EBITDAR. Порядок вычисления определяется зависимостями,
// а не порядком записи.
var incomeStatementGraph = mustSpreadGraph([]SpreadNode{
	{
		Name:   "net_revenue",
		Inputs: []string{"revenue", "returns_and_allowances"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("revenue").Sub(v.Get("returns_and_allowances"))
		},
	},
	sumNode("cost_of_goods_sold_subtotal",
		"cost_of_goods_sold_general", "cost_of_goods_sold_depreciation"),
	{
		Name:   "total_gross_profit",
		Inputs: []string{"net_revenue", "cost_of_goods_sold_subtotal"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("net_revenue").Sub(v.Get("cost_of_goods_sold_subtotal"))
		},
	},
	sumNode("rent_and_lease_expenses_subtotal",
		"real_estate_rent_effects_ebitdar", "real_estate_rent_no_refinance_scenario", "operating_leases"),
	sumNode("taxes_licenses_and_insurance_subtotal",
		"real_estate_taxes", "payroll_taxes", "liability_insurance", "other_taxes_and_licenses"),
	sumNode("other_operating_expenses_subtotal",
		"other_operating_expenses_general"),
	sumNode("total_operating_expenses",
		"salaries_and_wages", "officers_compensation", "repairs_and_maintenance", "bad_debt",
		"rent_and_lease_expenses_subtotal", "taxes_licenses_and_insurance_subtotal",
		"depreciation_and_depletion", "amortization", "legal_and_professional_expenses",
		"employee_benefit_programs", "advertising", "other_operating_expenses_subtotal"),
	{
		Name:   "net_operating_income",
		Inputs: []string{"total_gross_profit", "total_operating_expenses"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("total_gross_profit").Sub(v.Get("total_operating_expenses"))
		},
	},
	{
		Name:   "other_income_and_expenses",
		Inputs: []string{"gain_on_sale_of_asset", "loss_on_sale_of_asset", "interest_income", "interest_expense"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("gain_on_sale_of_asset").
				Sub(v.Get("loss_on_sale_of_asset")).
				Add(v.Get("interest_income")).
				Sub(v.Get("interest_expense"))
		},
	},
	sumNode("other_income_or_expenses_subtotal",
		"other_income_or_expense_general"),
	sumNode("total_other_income_and_expenses",
		"other_income_and_expenses", "other_income_or_expenses_subtotal"),
	sumNode("net_profit_loss",
		"net_operating_income", "total_other_income_and_expenses"),
	{
		Name:   "net_profit_loss_after_taxes",
		Inputs: []string{"net_profit_loss", "c_corporation_taxes", "c_corporation_tax_refund"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("net_profit_loss").
				Sub(v.Get("c_corporation_taxes")).
				Add(v.Get("c_corporation_tax_refund"))
		},
	},
	sumNode("other_cash_flow_adjustments_subtotal",
		"other_cash_flow_adjustment_general"),
	{
		// Возврат к EBIT: налоги C-корпорации и процентные расходы
		// прибавляются по модулю, возврат налога прибавляется как есть
		Name: "total_adjusted_ebit",
		Inputs: []string{
			"net_profit_loss_after_taxes", "other_cash_flow_adjustments_subtotal",
			"c_corporation_taxes", "c_corporation_tax_refund", "interest_expense",
		},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("net_profit_loss_after_taxes").
				Add(v.Get("other_cash_flow_adjustments_subtotal")).
				Add(v.Get("c_corporation_taxes").Abs()).
				Add(v.Get("c_corporation_tax_refund")).
				Add(v.Get("interest_expense").Abs())
		},
	},
	sumNode("total_adjusted_ebitda",
		"total_adjusted_ebit", "depreciation_and_depletion", "amortization"),
	sumNode("total_adjusted_ebitdar",
		"total_adjusted_ebitda", "real_estate_rent_effects_ebitdar"),
	{
		Name:   "total_adjusted_ebitdar_includes_distributions",
		Inputs: []string{"total_adjusted_ebitdar", "distributions_to_shareholders"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("total_adjusted_ebitdar").Sub(v.Get("distributions_to_shareholders"))
		},
	},
})

// IncomeStatementService предоставляет методы для работы с отчетами
// о прибылях и убытках
type IncomeStatementService struct {
	db            *gorm.DB
	validator     *validator.Validate
	balanceSheets *BalanceSheetService
}

// NewIncomeStatementService создает новый экземпляр IncomeStatementService
func NewIncomeStatementService(db *gorm.DB, balanceSheets *BalanceSheetService) *IncomeStatementService {
	return &IncomeStatementService{
		db:            db,
		validator:     validator.New(),
		balanceSheets: balanceSheets,
	}
}

// rawIncomeStatementValues собирает сырые статьи отчета для расчетного графа
func rawIncomeStatementValues(st *models.IncomeStatement) LineValues {
	return LineValues{
		"revenue":                                st.Revenue,
		"returns_and_allowances":                 st.ReturnsAndAllowances,
		"cost_of_goods_sold_general":             st.CostOfGoodsSoldGeneral,
		"cost_of_goods_sold_depreciation":        st.CostOfGoodsSoldDepreciation,
		"salaries_and_wages":                     st.SalariesAndWages,
		"officers_compensation":                  st.OfficersCompensation,
		"repairs_and_maintenance":                st.RepairsAndMaintenance,
		"bad_debt":                               st.BadDebt,
		"real_estate_rent_effects_ebitdar":       st.RealEstateRentEffectsEbitdar,
		"real_estate_rent_no_refinance_scenario": st.RealEstateRentNoRefinanceScenario,
		"operating_leases":                       st.OperatingLeases,
		"real_estate_taxes":                      st.RealEstateTaxes,
		"payroll_taxes":                          st.PayrollTaxes,
		"liability_insurance":                    st.LiabilityInsurance,
		"other_taxes_and_licenses":               st.OtherTaxesAndLicenses,
		"depreciation_and_depletion":             st.DepreciationAndDepletion,
		"amortization":                           st.Amortization,
		"legal_and_professional_expenses":        st.LegalAndProfessionalExpenses,
		"employee_benefit_programs":              st.EmployeeBenefitPrograms,
		"advertising":                            st.Advertising,
		"other_operating_expenses_general":       st.OtherOperatingExpensesGeneral,
		"gain_on_sale_of_asset":                  st.GainOnSaleOfAsset,
		"loss_on_sale_of_asset":                  st.LossOnSaleOfAsset,
		"interest_income":                        st.InterestIncome,
		"interest_expense":                       st.InterestExpense,
		"other_income_or_expense_general":        st.OtherIncomeOrExpenseGeneral,
		"c_corporation_taxes":                    st.CCorporationTaxes,
		"c_corporation_tax_refund":               st.CCorporationTaxRefund,
		"other_cash_flow_adjustment_general":     st.OtherCashFlowAdjustmentGeneral,
		"distributions_to_shareholders":          st.DistributionsToShareholders,
	}
}

// Recompute детерминированно пересчитывает все расчетные поля отчета
// по текущим сырым значениям. Функция чистая: состояние берется только
// из самого отчета, повторный вызов дает тот же результат.
func (s *IncomeStatementService) Recompute(st *models.IncomeStatement) {
	result := incomeStatementGraph.Evaluate(rawIncomeStatementValues(st))

	st.NetRevenue = result.Get("net_revenue")
	st.CostOfGoodsSoldSubtotal = result.Get("cost_of_goods_sold_subtotal")
	st.TotalGrossProfit = result.Get("total_gross_profit")
	st.RentAndLeaseExpensesSubtotal = result.Get("rent_and_lease_expenses_subtotal")
	st.TaxesLicensesAndInsuranceSubtotal = result.Get("taxes_licenses_and_insurance_subtotal")
	st.OtherOperatingExpensesSubtotal = result.Get("other_operating_expenses_subtotal")
	st.TotalOperatingExpenses = result.Get("total_operating_expenses")
	st.NetOperatingIncome = result.Get("net_operating_income")
	st.OtherIncomeAndExpenses = result.Get("other_income_and_expenses")
	st.OtherIncomeOrExpensesSubtotal = result.Get("other_income_or_expenses_subtotal")
	st.TotalOtherIncomeAndExpenses = result.Get("total_other_income_and_expenses")
	st.NetProfitLoss = result.Get("net_profit_loss")
	st.NetProfitLossAfterTaxes = result.Get("net_profit_loss_after_taxes")
	st.OtherCashFlowAdjustmentsSubtotal = result.Get("other_cash_flow_adjustments_subtotal")
	st.TotalAdjustedEbit = result.Get("total_adjusted_ebit")
	st.TotalAdjustedEbitda = result.Get("total_adjusted_ebitda")
	st.TotalAdjustedEbitdar = result.Get("total_adjusted_ebitdar")
	st.TotalAdjustedEbitdarIncludesDistributions = result.Get("total_adjusted_ebitdar_includes_distributions")

	st.MonthsInPeriod = monthsInPeriod(st)
	st.EbitdaCoverageRatio = coverageRatio(st.TotalAdjustedEbitda, st.AdjustedDebtServiceObligations)
	st.EbitdarCoverageRatio = coverageRatio(st.TotalAdjustedEbitdar, st.AdjustedDebtServiceObligations)
}

// monthsInPeriod вычисляет число месяцев в периоде по дате окончания
// финансового года и дате окончания периода. Если любая из дат не задана,
// результат не определен. Переход через границу года учитывается по модулю 12.
func monthsInPeriod(st *models.IncomeStatement) *int {
	if st.PeriodEndingDate == nil || st.LegalEntityFiscalYearEnd == nil {
		return nil
	}

	fyEndMonth := int(st.LegalEntityFiscalYearEnd.Month())
	periodEndMonth := int(st.PeriodEndingDate.Month())

	var months int
	switch {
	case fyEndMonth == 12:
		months = periodEndMonth
	case periodEndMonth > fyEndMonth:
		months = periodEndMonth - fyEndMonth
	default:
		months = (12 - fyEndMonth) + periodEndMonth
	}
	return &months
}

// coverageRatio вычисляет коэффициент покрытия долговых обязательств.
// При нулевом знаменателе коэффициент не определен.
func coverageRatio(cashFlow, obligations decimal.Decimal) decimal.NullDecimal {
	if obligations.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: cashFlow.DivRound(obligations, 4),
		Valid:   true,
	}
}

// validateIncomeStatement проверяет значения перечислений до сохранения
func (s *IncomeStatementService) validateIncomeStatement(st *models.IncomeStatement) error {
	if err := s.validator.Var(string(st.FinancialStatementQuality), "required,oneof=PR CP TR CRQ CRU CAQ CAU OTH"); err != nil {
		return invalidEnum("financial_statement_quality",
			"недопустимое значение качества финансовой отчетности")
	}
	return nil
}

// Save валидирует отчет, пересчитывает расчетные поля и сохраняет его.
// После сохранения перестраивается цепочка балансов той же линии отчетности,
// так как изменение прибыли текущего периода влияет на все последующие балансы.
func (s *IncomeStatementService) Save(st *models.IncomeStatement) error {
	if err := s.validateIncomeStatement(st); err != nil {
		return err
	}

	// Пересчитываем расчетные поля до записи
	s.Recompute(st)

	// Сохранение и перестройка цепочки выполняются в одной транзакции
	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.New("ошибка при начале транзакции")
	}

	if err := tx.Save(st).Error; err != nil {
		tx.Rollback()
		return errors.New("ошибка при сохранении отчета о прибылях и убытках")
	}

	if st.GlobalStatementID != nil {
		if err := s.balanceSheets.rechainLineage(tx, *st.GlobalStatementID); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return errors.New("ошибка при подтверждении транзакции")
	}

	utils.GetMetrics().RecordRecompute()
	return nil
}

// GetByID возвращает отчет по идентификатору
func (s *IncomeStatementService) GetByID(id uint) (*models.IncomeStatement, error) {
	var st models.IncomeStatement
	if err := s.db.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("отчет о прибылях и убытках не найден")
		}
		return nil, errors.New("ошибка при поиске отчета о прибылях и убытках")
	}
	return &st, nil
}

// GetAllByGlobalStatement возвращает отчеты линии отчетности,
// упорядоченные по дате окончания периода
func (s *IncomeStatementService) GetAllByGlobalStatement(globalStatementID uint) ([]models.IncomeStatement, error) {
	var statements []models.IncomeStatement
	if err := s.db.
		Where("global_statement_id = ?", globalStatementID).
		Order("period_ending_date").
		Find(&statements).Error; err != nil {
		return nil, errors.New("ошибка при поиске отчетов линии отчетности")
	}
	return statements, nil
}

// Delete удаляет отчет; ссылки связанных балансов обнуляются,
// после чего цепочка линии отчетности перестраивается
func (s *IncomeStatementService) Delete(id uint) error {
	st, err := s.GetByID(id)
	if err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.New("ошибка при начале транзакции")
	}

	// Обнуляем ссылки балансов вручную: на уровне приложения это
	// гарантирует перестройку цепочки в той же транзакции
	if err := tx.Model(&models.BalanceSheet{}).
		Where("income_statement_id = ?", id).
		Update("income_statement_id", nil).Error; err != nil {
		tx.Rollback()
		return errors.New("ошибка при отвязке балансов")
	}

	if err := tx.Delete(&models.IncomeStatement{}, id).Error; err != nil {
		tx.Rollback()
		return errors.New("ошибка при удалении отчета о прибылях и убытках")
	}

	if st.GlobalStatementID != nil {
		if err := s.balanceSheets.rechainLineage(tx, *st.GlobalStatementID); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return errors.New("ошибка при подтверждении транзакции")
	}
	return nil
}
