package utils

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer delivers HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client     *sendgrid.Client
	senderName string
	sender     string
}

func NewSendGridMailer(apiKey, sender, senderName string) *SendGridMailer {
	return &SendGridMailer{
		client:     sendgrid.NewSendClient(apiKey),
		sender:     sender,
		senderName: senderName,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	from := mail.NewEmail(m.senderName, m.sender)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return errors.Wrap(err, "sendgrid send")
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// ConsoleMailer logs emails instead of sending them. Used when no API key is configured.
type ConsoleMailer struct {
	Log *zap.Logger
}

func (m ConsoleMailer) Send(_ context.Context, toEmail, toName, subject, _ string) error {
	m.Log.Info("email not sent, console mailer in use",
		zap.String("to", toEmail),
		zap.String("name", toName),
		zap.String("subject", subject),
	)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
		<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
			<h2 style="color: #333333; text-align: center;">%s</h2>
			%s
			<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 20px;">The LMS Team</p>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// EnrollmentEmail renders the subject and body sent after a user enrolls in a course
func EnrollmentEmail(userName, courseName string) (string, string) {
	body := fmt.Sprintf(`
		<p style="font-size: 16px; color: #555555;">Dear %s,</p>
		<p style="font-size: 16px; color: #555555;">Congratulations! You have successfully enrolled in:</p>
		<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
		<p style="font-size: 14px; color: #666666;">You can now access all the course content and start learning. Complete all modules and quizzes to earn your certificate.</p>
	`, userName, courseName)

	return "Course Enrollment Confirmation", getEmailTemplate("Enrollment Successful!", body)
}

// CertificateEmail renders the subject and body sent when a certificate is issued
func CertificateEmail(userName, courseName, certificateNumber string) (string, string) {
	body := fmt.Sprintf(`
		<p style="font-size: 16px; color: #555555;">Dear %s,</p>
		<p style="font-size: 16px; color: #555555;">Congratulations on completing the course:</p>
		<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
		<div style="background-color: #f8f9fa; border-radius: 8px; padding: 20px; margin: 20px 0; text-align: center;">
			<p style="font-size: 14px; color: #666666; margin-bottom: 10px;">Your Certificate Number:</p>
			<h2 style="color: #2196F3; margin: 0;">%s</h2>
		</div>
		<p style="font-size: 14px; color: #666666;">You can use this certificate number for verification purposes.</p>
	`, userName, courseName, certificateNumber)

	return "Course Completion Certificate", getEmailTemplate("Certificate of Completion", body)
}
