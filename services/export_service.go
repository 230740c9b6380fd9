package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/beevik/etree"
	"gorm.io/gorm"

	"opnlend/models"
)

// ExportService формирует XML-выгрузку линейки финансовых отчетов
// для кредитного досье
type ExportService struct {
	db               *gorm.DB
	globalStatements *GlobalStatementService
}

// NewExportService создает новый экземпляр ExportService
func NewExportService(db *gorm.DB, globalStatements *GlobalStatementService) *ExportService {
	return &ExportService{db: db, globalStatements: globalStatements}
}

// ExportGlobalStatementXML выгружает линейку отчетов в XML: шапка со сторонами
// сделки и по одному блоку на каждый отчет периода, исходные строки
// вместе с рассчитанными итогами
func (s *ExportService) ExportGlobalStatementXML(globalStatementID uint) ([]byte, error) {
	gs, err := s.globalStatements.GetByID(globalStatementID)
	if err != nil {
		return nil, err
	}

	var business models.Business
	if err := s.db.Where("uuid = ?", gs.BusinessUUID).First(&business).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения предприятия для выгрузки: %v", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("global_statement")
	root.CreateAttr("id", fmt.Sprintf("%d", gs.ID))
	root.CreateAttr("exported_at", time.Now().Format(time.RFC3339))

	entity := root.CreateElement("entity")
	entity.CreateElement("entity_name").SetText(business.EntityName)
	entity.CreateElement("business_type").SetText(string(business.BusinessType))
	entity.CreateElement("business_uuid").SetText(gs.BusinessUUID.String())

	incomeStatements := root.CreateElement("income_statements")
	for i := range gs.IncomeStatements {
		st := &gs.IncomeStatements[i]
		el := incomeStatements.CreateElement("income_statement")
		el.CreateAttr("id", fmt.Sprintf("%d", st.ID))
		el.CreateAttr("financial_statement_quality", string(st.FinancialStatementQuality))
		if st.PeriodEndingDate != nil {
			el.CreateAttr("period_ending_date", st.PeriodEndingDate.Format("2006-01-02"))
		}
		if st.MonthsInPeriod != nil {
			el.CreateAttr("months_in_period", fmt.Sprintf("%d", *st.MonthsInPeriod))
		}
		writeLines(el, incomeStatementGraph.Evaluate(rawIncomeStatementValues(st)))
		if st.EbitdaCoverageRatio.Valid {
			el.CreateElement("ebitda_coverage_ratio").SetText(st.EbitdaCoverageRatio.Decimal.StringFixed(4))
		}
		if st.EbitdarCoverageRatio.Valid {
			el.CreateElement("ebitdar_coverage_ratio").SetText(st.EbitdarCoverageRatio.Decimal.StringFixed(4))
		}
	}

	balanceSheets := root.CreateElement("balance_sheets")
	for i := range gs.BalanceSheets {
		bs := &gs.BalanceSheets[i]
		el := balanceSheets.CreateElement("balance_sheet")
		el.CreateAttr("uuid", bs.UUID.String())
		if bs.PeriodEndingDate != nil {
			el.CreateAttr("period_ending_date", bs.PeriodEndingDate.Format("2006-01-02"))
		}
		writeLines(el, balanceSheetGraph.Evaluate(rawBalanceSheetValues(bs)))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// writeLines пишет строки отчета дочерними элементами в стабильном порядке
func writeLines(parent *etree.Element, lines LineValues) {
	names := make([]string, 0, len(lines))
	for name := range lines {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parent.CreateElement(name).SetText(lines[name].StringFixed(2))
	}
}
