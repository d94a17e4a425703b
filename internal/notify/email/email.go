package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// NotificationService sends community emails over SMTP.
type NotificationService struct {
	config    *config.EmailConfig
	serverURL string
	send      func(to, subject, body string) error
}

// EntryConfirmation is sent after an email entered the giveaway counter.
type EntryConfirmation struct {
	Name      string
	Email     string
	EnteredAt string
	SiteURL   string
}

// WinnerNotification is sent when a registered user is added to the leaderboard.
type WinnerNotification struct {
	Username string
	Email    string
	Giveaway string
	Prize    string
	SiteURL  string
}

// New creates a new email notification service. serverURL is linked from every email.
func New(cfg *config.EmailConfig, serverURL string) *NotificationService {
	n := &NotificationService{
		config:    cfg,
		serverURL: serverURL,
	}
	n.send = n.sendEmail
	return n
}

// Enabled reports whether emails are sent at all.
func (n *NotificationService) Enabled() bool {
	return n != nil && n.config != nil && n.config.Enabled
}

// SendEntryConfirmation confirms a giveaway counter entry.
func (n *NotificationService) SendEntryConfirmation(c EntryConfirmation) error {
	if !n.Enabled() {
		log.Debug("Email notifications are disabled, skipping entry confirmation")
		return nil
	}
	if c.Email == "" {
		log.Warn("Entry has no email, skipping confirmation", "name", c.Name)
		return nil
	}
	c.SiteURL = n.serverURL

	body, err := render("entry.html", c)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}
	return n.send(c.Email, "You're in! Giveaway entry confirmed", body)
}

// SendWinnerNotification tells a user they won.
func (n *NotificationService) SendWinnerNotification(w WinnerNotification) error {
	if !n.Enabled() {
		log.Debug("Email notifications are disabled, skipping winner notification")
		return nil
	}
	if w.Email == "" {
		log.Warn("Winner has no email, skipping notification", "user", w.Username)
		return nil
	}
	w.SiteURL = n.serverURL

	body, err := render("winner.html", w)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}
	return n.send(w.Email, fmt.Sprintf("Congratulations, you won %s!", w.Prize), body)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sendEmail sends an email using go-simple-mail library.
func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	switch {
	case n.config.UseSSL:
		server.Encryption = mail.EncryptionSSLTLS
	case n.config.UseTLS:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "Pubzy Giveaways"
	}

	email := mail.NewMSG()
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email sent", "to", to, "subject", subject)
	return nil
}
