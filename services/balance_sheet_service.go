package services

import (
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"opnlend/models"
	"opnlend/utils"
)

// balanceSheetGraph определяет расчетную цепочку баланса: промежуточные
// итоги по категориям, итоги активов и обязательств, собственный капитал
// и величина расбалансировки. Контрарные счета (резервы и накопленная
// амортизация) хранятся отрицательными и складываются, а не вычитаются.
var balanceSheetGraph = mustSpreadGraph([]SpreadNode{
	// Активы
	sumNode("cash_subtotal",
		"cash_at_financial_institution", "cash_at_other_financial_institution", "unclassified_cash_account"),
	sumNode("accounts_receivable_net",
		"accounts_receivable", "bad_debt_allowance"),
	sumNode("inventory_subtotal",
		"raw_material", "work_in_progress", "finished_goods", "unclassified_inventory"),
	sumNode("total_current_assets",
		"cash_subtotal", "accounts_receivable_net", "inventory_subtotal",
		"prepaid_expenses_generic", "other_current_assets_generic"),
	sumNode("gross_plant_and_equipment",
		"machinery_and_equipment", "computers_and_office_equipment", "furniture_and_fixtures",
		"leasehold_improvements", "construction_in_progress", "building", "other_fixed_asset"),
	sumNode("net_plant_and_equipment",
		"gross_plant_and_equipment", "accumulated_depreciation"),
	sumNode("net_fixed_assets",
		"net_plant_and_equipment", "land"),
	sumNode("net_intangible_assets",
		"goodwill", "trademarks_and_licenses", "financing_costs",
		"other_intangible_assets", "accumulated_amortization"),
	sumNode("other_long_term_assets_subtotal",
		"due_from_related_parties_generic", "due_from_shareholders_generic", "other_long_term_assets_generic"),
	sumNode("total_long_term_assets",
		"net_fixed_assets", "net_intangible_assets", "other_long_term_assets_subtotal"),
	sumNode("total_assets",
		"total_current_assets", "total_long_term_assets"),

	// Обязательства
	sumNode("accounts_payable_subtotal",
		"trade_accounts", "other_accounts"),
	sumNode("current_portion_of_long_term_debt_subtotal",
		"current_portion_of_long_term_debt_generic"),
	sumNode("credit_cards_and_other_lines_of_credit_subtotal",
		"revolving_lines_of_credit_generic"),
	sumNode("accruals_subtotal",
		"customer_advances", "other_accruals"),
	sumNode("other_current_liabilities_subtotal",
		"payroll_liabilities", "taxes_payable"),
	sumNode("total_current_liabilities",
		"accounts_payable_subtotal", "current_portion_of_long_term_debt_subtotal",
		"credit_cards_and_other_lines_of_credit_subtotal", "accruals_subtotal",
		"other_current_liabilities_subtotal"),
	sumNode("notes_to_be_refinanced_subtotal",
		"notes_to_be_refinanced_generic"),
	sumNode("other_long_term_notes_payable_subtotal",
		"long_term_notes_payable_generic"),
	sumNode("due_to_related_party_subtotal",
		"due_to_related_parties_generic"),
	sumNode("due_to_shareholders_subtotal",
		"due_to_shareholders_generic"),
	sumNode("other_long_term_liabilities_subtotal",
		"other_long_term_liabilities_generic"),
	sumNode("total_long_term_liabilities",
		"notes_to_be_refinanced_subtotal", "other_long_term_notes_payable_subtotal",
		"due_to_related_party_subtotal", "due_to_shareholders_subtotal",
		"other_long_term_liabilities_subtotal"),
	sumNode("total_liabilities",
		"total_current_liabilities", "total_long_term_liabilities"),

	// Собственный капитал
	{
		Name:   "retained_earnings_subtotal",
		Inputs: []string{"beginning_retained_earnings", "current_periods_net_income_after_tax", "current_periods_distributions"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("beginning_retained_earnings").
				Add(v.Get("current_periods_net_income_after_tax")).
				Sub(v.Get("current_periods_distributions"))
		},
	},
	sumNode("other_adjustments_to_equity_subtotal",
		"other_adjustments_to_equity_generic"),
	sumNode("total_shareholders_equity",
		"paid_in_capital", "retained_earnings_subtotal", "other_adjustments_to_equity_subtotal"),

	// Величина расбалансировки: всегда вычисляется и сохраняется,
	// ненулевое значение является сигналом качества данных, а не ошибкой
	{
		Name:   "unbalanced_amount",
		Inputs: []string{"total_assets", "total_liabilities", "total_shareholders_equity"},
		Compute: func(v LineValues) decimal.Decimal {
			return v.Get("total_assets").
				Sub(v.Get("total_liabilities")).
				Sub(v.Get("total_shareholders_equity"))
		},
	},
})

// BalanceSheetService предоставляет методы для работы с балансами
type BalanceSheetService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
}

// NewBalanceSheetService создает новый экземпляр BalanceSheetService
func NewBalanceSheetService(db *gorm.DB, email *EmailService) *BalanceSheetService {
	return &BalanceSheetService{
		db:        db,
		validator: validator.New(),
		email:     email,
	}
}

// rawBalanceSheetValues собирает сырые статьи баланса для расчетного графа.
// Пользовательские статьи прибавляются к строкам, которые они указывают,
// и через них участвуют в промежуточных итогах.
func rawBalanceSheetValues(bs *models.BalanceSheet) LineValues {
	values := LineValues{
		"cash_at_financial_institution":             bs.CashAtFinancialInstitution,
		"cash_at_other_financial_institution":       bs.CashAtOtherFinancialInstitution,
		"unclassified_cash_account":                 bs.UnclassifiedCashAccount,
		"accounts_receivable":                       bs.AccountsReceivable,
		"bad_debt_allowance":                        bs.BadDebtAllowance,
		"raw_material":                              bs.RawMaterial,
		"work_in_progress":                          bs.WorkInProgress,
		"finished_goods":                            bs.FinishedGoods,
		"unclassified_inventory":                    bs.UnclassifiedInventory,
		"prepaid_expenses_generic":                  bs.PrepaidExpensesGeneric,
		"other_current_assets_generic":              bs.OtherCurrentAssetsGeneric,
		"machinery_and_equipment":                   bs.MachineryAndEquipment,
		"computers_and_office_equipment":            bs.ComputersAndOfficeEquipment,
		"furniture_and_fixtures":                    bs.FurnitureAndFixtures,
		"leasehold_improvements":                    bs.LeaseholdImprovements,
		"construction_in_progress":                  bs.ConstructionInProgress,
		"building":                                  bs.Building,
		"other_fixed_asset":                         bs.OtherFixedAsset,
		"accumulated_depreciation":                  bs.AccumulatedDepreciation,
		"land":                                      bs.Land,
		"goodwill":                                  bs.Goodwill,
		"trademarks_and_licenses":                   bs.TrademarksAndLicenses,
		"financing_costs":                           bs.FinancingCosts,
		"other_intangible_assets":                   bs.OtherIntangibleAssets,
		"accumulated_amortization":                  bs.AccumulatedAmortization,
		"due_from_related_parties_generic":          bs.DueFromRelatedPartiesGeneric,
		"due_from_shareholders_generic":             bs.DueFromShareholdersGeneric,
		"other_long_term_assets_generic":            bs.OtherLongTermAssetsGeneric,
		"trade_accounts":                            bs.TradeAccounts,
		"other_accounts":                            bs.OtherAccounts,
		"current_portion_of_long_term_debt_generic": bs.CurrentPortionOfLongTermDebtGeneric,
		"revolving_lines_of_credit_generic":         bs.RevolvingLinesOfCreditGeneric,
		"customer_advances":                         bs.CustomerAdvances,
		"other_accruals":                            bs.OtherAccruals,
		"payroll_liabilities":                       bs.PayrollLiabilities,
		"taxes_payable":                             bs.TaxesPayable,
		"long_term_notes_payable_generic":           bs.LongTermNotesPayableGeneric,
		"notes_to_be_refinanced_generic":            bs.NotesToBeRefinancedGeneric,
		"due_to_related_parties_generic":            bs.DueToRelatedPartiesGeneric,
		"due_to_shareholders_generic":               bs.DueToShareholdersGeneric,
		"other_long_term_liabilities_generic":       bs.OtherLongTermLiabilitiesGeneric,
		"paid_in_capital":                           bs.PaidInCapital,
		"beginning_retained_earnings":               bs.BeginningRetainedEarnings,
		"current_periods_net_income_after_tax":      bs.CurrentPeriodsNetIncomeAfterTax,
		"current_periods_distributions":             bs.CurrentPeriodsDistributions,
		"other_adjustments_to_equity_generic":       decimal.Zero,
	}

	for _, field := range bs.UserDefinedFields {
		values[field.StatementLine] = values.Get(field.StatementLine).Add(field.Value)
	}

	return values
}

// Recompute пересчитывает все расчетные поля баланса снизу вверх.
// Отсутствующие числовые поля трактуются как ноль: частично введенный
// баланс считается без ошибок. Цепочечные поля не трогаются.
func (s *BalanceSheetService) Recompute(bs *models.BalanceSheet) {
	bs.NormalizeContraAccounts()
	result := balanceSheetGraph.Evaluate(rawBalanceSheetValues(bs))

	bs.CashSubtotal = result.Get("cash_subtotal")
	bs.AccountsReceivableNet = result.Get("accounts_receivable_net")
	bs.InventorySubtotal = result.Get("inventory_subtotal")
	bs.TotalCurrentAssets = result.Get("total_current_assets")
	bs.GrossPlantAndEquipment = result.Get("gross_plant_and_equipment")
	bs.NetPlantAndEquipment = result.Get("net_plant_and_equipment")
	bs.NetFixedAssets = result.Get("net_fixed_assets")
	bs.NetIntangibleAssets = result.Get("net_intangible_assets")
	bs.OtherLongTermAssetsSubtotal = result.Get("other_long_term_assets_subtotal")
	bs.TotalLongTermAssets = result.Get("total_long_term_assets")
	bs.TotalAssets = result.Get("total_assets")
	bs.AccountsPayableSubtotal = result.Get("accounts_payable_subtotal")
	bs.CurrentPortionOfLongTermDebtSubtotal = result.Get("current_portion_of_long_term_debt_subtotal")
	bs.CreditCardsAndOtherLinesSubtotal = result.Get("credit_cards_and_other_lines_of_credit_subtotal")
	bs.AccrualsSubtotal = result.Get("accruals_subtotal")
	bs.OtherCurrentLiabilitiesSubtotal = result.Get("other_current_liabilities_subtotal")
	bs.TotalCurrentLiabilities = result.Get("total_current_liabilities")
	bs.NotesToBeRefinancedSubtotal = result.Get("notes_to_be_refinanced_subtotal")
	bs.OtherLongTermNotesPayableSubtotal = result.Get("other_long_term_notes_payable_subtotal")
	bs.DueToRelatedPartySubtotal = result.Get("due_to_related_party_subtotal")
	bs.DueToShareholdersSubtotal = result.Get("due_to_shareholders_subtotal")
	bs.OtherLongTermLiabilitiesSubtotal = result.Get("other_long_term_liabilities_subtotal")
	bs.TotalLongTermLiabilities = result.Get("total_long_term_liabilities")
	bs.TotalLiabilities = result.Get("total_liabilities")
	bs.RetainedEarningsSubtotal = result.Get("retained_earnings_subtotal")
	bs.OtherAdjustmentsToEquitySubtotal = result.Get("other_adjustments_to_equity_subtotal")
	bs.TotalShareholdersEquity = result.Get("total_shareholders_equity")
	bs.UnbalancedAmount = result.Get("unbalanced_amount")
}

// chainFromIncomeStatement выполняет первую фазу протокола: переносит
// в баланс прибыль текущего периода, распределения и дату окончания
// периода из связанного отчета о прибылях и убытках. Без связанного
// отчета цепочечные поля обнуляются, дата периода не определена.
func (s *BalanceSheetService) chainFromIncomeStatement(tx *gorm.DB, bs *models.BalanceSheet) error {
	if bs.IncomeStatementID == nil {
		bs.CurrentPeriodsNetIncomeAfterTax = decimal.Zero
		bs.CurrentPeriodsDistributions = decimal.Zero
		bs.PeriodEndingDate = nil
		return nil
	}

	var st models.IncomeStatement
	if err := tx.First(&st, *bs.IncomeStatementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Ссылка на удаленный отчет: трактуем как отсутствие связи
			bs.IncomeStatementID = nil
			bs.CurrentPeriodsNetIncomeAfterTax = decimal.Zero
			bs.CurrentPeriodsDistributions = decimal.Zero
			bs.PeriodEndingDate = nil
			return nil
		}
		return errors.New("ошибка при чтении связанного отчета о прибылях и убытках")
	}

	bs.CurrentPeriodsNetIncomeAfterTax = st.NetProfitLossAfterTaxes
	bs.CurrentPeriodsDistributions = st.DistributionsToShareholders
	bs.PeriodEndingDate = st.PeriodEndingDate
	return nil
}

// rechainLineage перестраивает всю цепочку балансов линии отчетности
// в порядке дат окончания периодов: начальная нераспределенная прибыль
// каждого баланса равна итоговой нераспределенной прибыли предыдущего.
// Вставка или правка более раннего периода пересчитывает все последующие,
// поэтому порядок ввода отчетов не влияет на корректность цепочки.
func (s *BalanceSheetService) rechainLineage(tx *gorm.DB, globalStatementID uint) error {
	// Блокируем строку линии отчетности: конкурирующие записи одной линии
	// выполняются последовательно, и каждая перестройка видит все ранее
	// зафиксированные балансы. Без блокировки два параллельных сохранения
	// читают линию до фиксации друг друга и оставляют устаревшую цепочку.
	var lineage models.GlobalStatement
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lineage, globalStatementID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New("ошибка при блокировке линии отчетности")
	}

	var sheets []models.BalanceSheet
	if err := tx.
		Preload("UserDefinedFields").
		Where("global_statement_id = ?", globalStatementID).
		Find(&sheets).Error; err != nil {
		return errors.New("ошибка при чтении балансов линии отчетности")
	}

	// Первая фаза для каждого баланса: перенос из связанного отчета
	for i := range sheets {
		if err := s.chainFromIncomeStatement(tx, &sheets[i]); err != nil {
			return err
		}
	}

	// Балансы без даты периода не участвуют в цепочке
	chained := make([]*models.BalanceSheet, 0, len(sheets))
	for i := range sheets {
		if sheets[i].PeriodEndingDate != nil {
			chained = append(chained, &sheets[i])
		} else {
			sheets[i].BeginningRetainedEarnings = decimal.Zero
		}
	}
	sort.Slice(chained, func(i, j int) bool {
		return chained[i].PeriodEndingDate.Before(*chained[j].PeriodEndingDate)
	})

	// Вторая фаза: перенос итоговой нераспределенной прибыли вперед
	prior := decimal.Zero
	for _, bs := range chained {
		bs.BeginningRetainedEarnings = prior
		s.Recompute(bs)
		prior = bs.RetainedEarningsSubtotal
	}

	for i := range sheets {
		if sheets[i].PeriodEndingDate == nil {
			s.Recompute(&sheets[i])
		}
		if err := tx.Omit("UserDefinedFields").Save(&sheets[i]).Error; err != nil {
			return errors.New("ошибка при сохранении баланса в цепочке")
		}
	}

	return nil
}

// validateUserDefinedFields проверяет пользовательские статьи баланса:
// имя обязательно, целевая строка должна быть сырой статьей графа
func (s *BalanceSheetService) validateUserDefinedFields(bs *models.BalanceSheet) error {
	verr := &ValidationError{}
	for _, field := range bs.UserDefinedFields {
		if field.FieldName == "" {
			verr.Add(ValidationMissingRequiredField, "field_name", "имя пользовательской статьи обязательно")
		}
		if !balanceSheetGraph.IsRawInput(field.StatementLine) {
			verr.Add(ValidationInvalidValue, "statement_line",
				"статья "+field.StatementLine+" не является строкой баланса")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// saveUserDefinedFields заменяет сохраненный набор пользовательских статей
// набором из переданного баланса. Nil означает, что статьи не передавались
// и сохраненный набор не трогается.
func (s *BalanceSheetService) saveUserDefinedFields(tx *gorm.DB, bs *models.BalanceSheet) error {
	if bs.UserDefinedFields == nil {
		return nil
	}

	if err := tx.Where("balance_sheet_uuid = ?", bs.UUID).Delete(&models.UserDefinedField{}).Error; err != nil {
		return errors.New("ошибка при обновлении пользовательских статей")
	}
	if len(bs.UserDefinedFields) == 0 {
		return nil
	}

	for i := range bs.UserDefinedFields {
		bs.UserDefinedFields[i].ID = 0
		bs.UserDefinedFields[i].BalanceSheetUUID = bs.UUID
	}
	if err := tx.Create(&bs.UserDefinedFields).Error; err != nil {
		return errors.New("ошибка при сохранении пользовательских статей")
	}
	return nil
}

// Save выполняет двухфазный протокол сохранения баланса: перенос
// цепочечных полей и пересчет всех промежуточных итогов. Чтение связанного
// отчета, поиск предыдущего баланса и запись выполняются в одной транзакции
// под блокировкой строки линии отчетности, что исключает гонку при
// конкурентных сохранениях балансов одной линии.
func (s *BalanceSheetService) Save(bs *models.BalanceSheet) error {
	if err := s.validateUserDefinedFields(bs); err != nil {
		utils.GetMetrics().RecordValidationFailure()
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.New("ошибка при начале транзакции")
	}

	if bs.GlobalStatementID == nil {
		// Вне линии отчетности: цепочка ограничена связанным отчетом,
		// предыдущего баланса нет
		if err := s.chainFromIncomeStatement(tx, bs); err != nil {
			tx.Rollback()
			return err
		}
		bs.BeginningRetainedEarnings = decimal.Zero
		s.Recompute(bs)
		if err := tx.Omit("UserDefinedFields").Save(bs).Error; err != nil {
			tx.Rollback()
			return errors.New("ошибка при сохранении баланса")
		}
		if err := s.saveUserDefinedFields(tx, bs); err != nil {
			tx.Rollback()
			return err
		}
	} else {
		// Сохраняем сырые поля, затем перестраиваем цепочку всей линии
		if err := tx.Omit("UserDefinedFields").Save(bs).Error; err != nil {
			tx.Rollback()
			return errors.New("ошибка при сохранении баланса")
		}
		if err := s.saveUserDefinedFields(tx, bs); err != nil {
			tx.Rollback()
			return err
		}
		if err := s.rechainLineage(tx, *bs.GlobalStatementID); err != nil {
			tx.Rollback()
			return err
		}
		// Перечитываем запись: цепочка могла изменить расчетные поля
		if err := tx.Preload("UserDefinedFields").First(bs, "uuid = ?", bs.UUID).Error; err != nil {
			tx.Rollback()
			return errors.New("ошибка при перечитывании баланса")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return errors.New("ошибка при подтверждении транзакции")
	}

	utils.GetMetrics().RecordRecompute()

	// Ненулевая расбалансировка всегда выводится наружу, а не подавляется
	if !bs.UnbalancedAmount.IsZero() {
		utils.GetMetrics().RecordUnbalanced()
		if s.email != nil {
			if err := s.email.SendUnbalancedStatementNotification(bs.EntityName, bs.UUID.String(), bs.UnbalancedAmount); err != nil {
				utils.LogError("Не удалось отправить уведомление о расбалансировке баланса %s: %v", bs.UUID, err)
			}
		}
	}

	return nil
}

// GetByUUID возвращает баланс по идентификатору
func (s *BalanceSheetService) GetByUUID(id uuid.UUID) (*models.BalanceSheet, error) {
	var bs models.BalanceSheet
	if err := s.db.Preload("UserDefinedFields").First(&bs, "uuid = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("баланс не найден")
		}
		return nil, errors.New("ошибка при поиске баланса")
	}
	return &bs, nil
}

// GetAllByGlobalStatement возвращает балансы линии отчетности,
// упорядоченные по дате окончания периода
func (s *BalanceSheetService) GetAllByGlobalStatement(globalStatementID uint) ([]models.BalanceSheet, error) {
	var sheets []models.BalanceSheet
	if err := s.db.
		Preload("UserDefinedFields").
		Where("global_statement_id = ?", globalStatementID).
		Order("period_ending_date").
		Find(&sheets).Error; err != nil {
		return nil, errors.New("ошибка при поиске балансов линии отчетности")
	}
	return sheets, nil
}

// Delete удаляет баланс и перестраивает цепочку линии отчетности
func (s *BalanceSheetService) Delete(id uuid.UUID) error {
	bs, err := s.GetByUUID(id)
	if err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.New("ошибка при начале транзакции")
	}

	// Пользовательские статьи удаляются явно: каскад на уровне базы
	// может быть недоступен
	if err := tx.Where("balance_sheet_uuid = ?", id).Delete(&models.UserDefinedField{}).Error; err != nil {
		tx.Rollback()
		return errors.New("ошибка при удалении пользовательских статей")
	}
	if err := tx.Delete(&models.BalanceSheet{}, "uuid = ?", id).Error; err != nil {
		tx.Rollback()
		return errors.New("ошибка при удалении баланса")
	}

	if bs.GlobalStatementID != nil {
		if err := s.rechainLineage(tx, *bs.GlobalStatementID); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return errors.New("ошибка при подтверждении транзакции")
	}
	return nil
}
