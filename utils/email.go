package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"sync"
)

// ======================
// SMTP Configuration
// ======================
var (
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	smtpUsername  = os.Getenv("SMTP_USERNAME")
	smtpPassword  = os.Getenv("SMTP_PASSWORD")
	smtpFromName  = os.Getenv("SMTP_FROM_NAME")
	smtpFromEmail = os.Getenv("SMTP_FROM_EMAIL")
)

// sendEmail dials the SMTP server, upgrades to TLS, authenticates and
// sends a single plain-text message. SMTP left unconfigured is not an
// error: the gateway keeps working, delivery is just skipped.
func sendEmail(to, subject, body string) error {
	if smtpHost == "" || smtpUsername == "" || smtpPassword == "" {
		fmt.Println("⚠️ SMTP not configured. Email not sent.")
		return nil
	}

	if smtpFromEmail == "" {
		smtpFromEmail = smtpUsername
	}

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	// Dial plain first, then StartTLS on the same connection
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         smtpHost,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(smtpFromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	from := smtpFromName
	if from == "" {
		from = smtpFromEmail
	} else {
		from = fmt.Sprintf("%s <%s>", smtpFromName, smtpFromEmail)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", from, to, subject, body))

	if _, err = w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		fmt.Printf("⚠️ QUIT command error (non-critical): %v\n", err)
	}

	fmt.Printf("✅ Email sent to %s\n", to)
	return nil
}

// ======================
// Async bulk email sender
// ======================
func SendBulkEmailsAsync(recipients []string, subject, body string) {
	go func() {
		var wg sync.WaitGroup
		for _, email := range recipients {
			wg.Add(1)
			go func(to string) {
				defer wg.Done()
				if err := sendEmail(to, subject, body); err != nil {
					fmt.Printf("❌ Failed to send email to %s: %v\n", to, err)
				}
			}(email)
		}
		wg.Wait()
	}()
}

// ======================
// Consolidation Emails
// ======================

// SendConsolidationAssignmentEmail notifies a leader that a person who
// made a decision at an event has been assigned to them for follow-up.
func SendConsolidationAssignmentEmail(toEmail, leaderName, personName, decision, eventName string) error {
	subject := fmt.Sprintf("Follow-up assigned: %s", personName)
	body := fmt.Sprintf(
		"Hello %s,\n\n%s made a \"%s\" decision at %s and has been assigned to you for follow-up.\n\nPlease reach out within the next few days.",
		leaderName, personName, decision, eventName,
	)
	return sendEmail(toEmail, subject, body)
}

// ======================
// Event Emails
// ======================

// SendEventClosedEmail sends the closing summary for a service to the
// person who closed it.
func SendEventClosedEmail(toEmail, closedBy, eventName string, attendance, newPeople, consolidated int) error {
	subject := fmt.Sprintf("Service closed: %s", eventName)
	body := fmt.Sprintf(
		"Hello %s,\n\n%s has been closed.\n\nAttendance: %d\nNew people: %d\nConsolidated: %d",
		closedBy, eventName, attendance, newPeople, consolidated,
	)
	return sendEmail(toEmail, subject, body)
}
