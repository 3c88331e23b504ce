package utils

import (
	"aims/config"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Admissions Office <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		log.Println("Error sending email:", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
			.content h2 { color: #1B3A5C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #d7b56d; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>ADMISSIONS OFFICE</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Admissions Office. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---
// All of these are fire-and-forget: a notification failure is logged and
// never fails the operation that triggered it.

// SendAdmissionApprovedEmail notifies the student once the joining is
// approved and the admission number is allocated.
func SendAdmissionApprovedEmail(email, name string, admissionNumber uint, course string) {
	if email == "" {
		return
	}

	subject := "Admission Confirmed!"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! Your admission has been approved.</p>
		<div class="info-box">
			<p><strong>Admission Number:</strong> %d</p>
			<p><strong>Course:</strong> %s</p>
		</div>
		<p>Please visit the admissions office with your original documents to complete enrollment.</p>
	`, name, admissionNumber, course)

	if err := SendEmail([]string{email}, subject, getEmailTemplate("Admission Confirmed", body)); err != nil {
		log.Printf("[NOTIFY] failed to send approval email to %s: %v", email, err)
	}
}

// SendPaymentSettledEmail notifies the student when a pending online payment
// is confirmed or rejected by the gateway.
func SendPaymentSettledEmail(email, name string, amount float64, receiptNo string, success bool) {
	if email == "" {
		return
	}

	var subject, headline, detail string
	if success {
		subject = "Payment Received"
		headline = "Payment Confirmed"
		detail = "Your online payment has been confirmed by the payment gateway."
	} else {
		subject = "Payment Failed"
		headline = "Payment Not Completed"
		detail = "Your online payment could not be completed. Please try again or pay at the admissions office."
	}

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>%s</p>
		<div class="info-box">
			<p><strong>Amount:</strong> INR %.2f</p>
			<p><strong>Receipt No:</strong> %s</p>
		</div>
	`, name, detail, amount, receiptNo)

	if err := SendEmail([]string{email}, subject, getEmailTemplate(headline, body)); err != nil {
		log.Printf("[NOTIFY] failed to send payment email to %s: %v", email, err)
	}
}
