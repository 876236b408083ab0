package utils

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"
)

// SMTPConfig comes from SMTP_* variables. An incomplete config means mails
// are only logged.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func SMTPConfigFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     EnvOrDefault("SMTP_HOST", ""),
		Port:     EnvOrDefault("SMTP_PORT", ""),
		Username: EnvOrDefault("SMTP_USERNAME", ""),
		Password: EnvOrDefault("SMTP_PASSWORD", ""),
		FromName: EnvOrDefault("SMTP_FROM_NAME", "Taarifa Suites"),
	}
}

func (c SMTPConfig) Complete() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

// BookingEmail is the content of a booking confirmation mail.
type BookingEmail struct {
	To        string
	GuestName string
	TxRef     string
	RoomName  string
	CheckIn   string
	CheckOut  string
	Adults    int
	Children  int
	Total     string
	Extras    []string
	Pending   bool
}

const bookingEmailBoundary = "----=_BOOKING_EMAIL_BOUNDARY"

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}

func (m BookingEmail) subject() string {
	if m.Pending {
		return fmt.Sprintf("Booking received: %s", headerSafe(m.TxRef))
	}
	return fmt.Sprintf("Booking confirmed: %s", headerSafe(m.TxRef))
}

func (m BookingEmail) plainBody(fromName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", m.GuestName)
	if m.Pending {
		sb.WriteString("We have received your payment. Our team is finalising your reservation and will contact you shortly.\n\n")
	} else {
		sb.WriteString("Thank you for booking with us! Here are your booking details:\n\n")
	}
	fmt.Fprintf(&sb, "Booking Reference: %s\n", m.TxRef)
	fmt.Fprintf(&sb, "Room: %s\n", m.RoomName)
	fmt.Fprintf(&sb, "Check-In: %s\n", m.CheckIn)
	fmt.Fprintf(&sb, "Check-Out: %s\n", m.CheckOut)
	fmt.Fprintf(&sb, "Guests: %d adult(s), %d child(ren)\n", m.Adults, m.Children)
	for _, e := range m.Extras {
		fmt.Fprintf(&sb, "Extra: %s\n", e)
	}
	fmt.Fprintf(&sb, "Total paid: %s\n\n", m.Total)
	sb.WriteString("If you have any questions, feel free to contact us.\n\n")
	fmt.Fprintf(&sb, "Best regards,\n%s", fromName)
	return sb.String()
}

func (m BookingEmail) htmlBody(fromName string) string {
	esc := html.EscapeString
	var extras strings.Builder
	for _, e := range m.Extras {
		fmt.Fprintf(&extras, "<li>%s</li>", esc(e))
	}
	intro := "Thank you for choosing us. Below are your booking details:"
	if m.Pending {
		intro = "We have received your payment. Our team is finalising your reservation and will contact you shortly."
	}
	return fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:700px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.label { font-weight:700; width:160px; display:inline-block; vertical-align:top; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <p>Dear %s,</p>
    <p>%s</p>
    <p><span class="label">Booking Reference:</span> %s</p>
    <p><span class="label">Room:</span> %s</p>
    <p><span class="label">Check-In:</span> %s</p>
    <p><span class="label">Check-Out:</span> %s</p>
    <p><span class="label">Guests:</span> %d adult(s), %d child(ren)</p>
    <ul>%s</ul>
    <p><span class="label">Total paid:</span> %s</p>
    <p>Best regards,<br>%s</p>
  </div>
</div>
</body>
</html>`,
		esc(m.subject()), esc(m.GuestName), intro, esc(m.TxRef), esc(m.RoomName),
		esc(m.CheckIn), esc(m.CheckOut), m.Adults, m.Children, extras.String(), esc(m.Total), esc(fromName))
}

// BuildBookingEmail renders the multipart/alternative message.
func BuildBookingEmail(cfg SMTPConfig, m BookingEmail) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s <%s>\r\n", headerSafe(cfg.FromName), headerSafe(cfg.Username))
	fmt.Fprintf(&sb, "To: %s\r\n", headerSafe(m.To))
	fmt.Fprintf(&sb, "Subject: %s\r\n", m.subject())
	sb.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&sb, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", bookingEmailBoundary)

	fmt.Fprintf(&sb, "--%s\r\n", bookingEmailBoundary)
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(m.plainBody(cfg.FromName) + "\r\n")

	fmt.Fprintf(&sb, "--%s\r\n", bookingEmailBoundary)
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(m.htmlBody(cfg.FromName) + "\r\n")

	fmt.Fprintf(&sb, "--%s--\r\n", bookingEmailBoundary)
	return []byte(sb.String())
}

// SendBookingEmail mails the guest. Without SMTP settings the mail is logged.
func SendBookingEmail(cfg SMTPConfig, m BookingEmail) error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("booking email %s: no recipient", m.TxRef)
	}
	if !cfg.Complete() {
		log.Printf("[MOCK EMAIL] to:%s booking:%s room:%s %s→%s", m.To, m.TxRef, m.RoomName, m.CheckIn, m.CheckOut)
		return nil
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	if err := smtp.SendMail(addr, auth, cfg.Username, []string{headerSafe(m.To)}, BuildBookingEmail(cfg, m)); err != nil {
		log.Printf("❌ Failed to send email to %s: %v", m.To, err)
		return err
	}
	log.Printf("📨 Email sent to %s (booking %s)", m.To, m.TxRef)
	return nil
}
