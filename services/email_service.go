package services

import (
	"fmt"
	"time"

	"opnlend/config"
	"opnlend/utils"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	config *config.Config
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		config: cfg,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		utils.GetMetrics().RecordNotification(err)
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	utils.GetMetrics().RecordNotification(nil)
	return nil
}

// SendUnbalancedStatementNotification отправляет уведомление о расбалансированном балансе.
// Письмо уходит на адрес кредитного контроля из конфигурации.
func (s *EmailService) SendUnbalancedStatementNotification(entityName, balanceSheetUUID string, amount decimal.Decimal) error {
	subject := "Баланс не сходится: требуется проверка"
	body := fmt.Sprintf(`
		<h2>Баланс не сходится</h2>
		<p>Заемщик: %s</p>
		<p>Баланс: %s</p>
		<p>Сумма расхождения: %s</p>
		<p>Дата проверки: %s</p>
		<p>Активы не равны сумме обязательств и капитала. Проверьте исходные данные отчетности.</p>
	`, entityName, balanceSheetUUID, amount.StringFixed(2), time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(s.config.SMTP.ReviewRecipient, subject, body)
}

// SendStatementReviewDigest отправляет сводку по балансам, ожидающим проверки
func (s *EmailService) SendStatementReviewDigest(count int, total decimal.Decimal) error {
	if count == 0 {
		return nil
	}

	subject := "Сводка по расбалансированным балансам"
	body := fmt.Sprintf(`
		<h2>Сводка по расбалансированным балансам</h2>
		<p>Количество балансов, требующих проверки: %d</p>
		<p>Суммарное расхождение (по модулю): %s</p>
		<p>Дата: %s</p>
	`, count, total.StringFixed(2), time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(s.config.SMTP.ReviewRecipient, subject, body)
}
