package smtp

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/voyagevault/auth-api/internal/config"
)

// Mailer dispatches verification codes by email. Dispatch is best-effort:
// failures surface to the caller, they are never retried here.
type Mailer interface {
	SendVerificationCode(to, code string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendVerificationCode(to, code string) error {
	subject := "VoyageVault Verification Code"
	body := verificationBody(code)

	headers := []string{
		fmt.Sprintf("From: \"VoyageVault\" <%s>", m.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

func verificationBody(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<body style="margin:0;padding:0;background-color:#F0E9D5;font-family:Arial,Helvetica,sans-serif;color:#3a260e;">
  <table width="100%%" border="0" cellspacing="0" cellpadding="0" style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:10px;">
    <tr>
      <td align="center" style="background-color:#668F82;padding:20px;">
        <h1 style="color:#F0E9D5;font-size:24px;margin:0;">VoyageVault</h1>
      </td>
    </tr>
    <tr>
      <td style="padding:30px;">
        <h2 style="font-size:20px;margin-top:0;">Verify Your Account</h2>
        <p style="font-size:16px;color:#5E5E5E;line-height:1.5;">
          To complete authentication, please use the verification code below:
        </p>
        <div style="text-align:center;margin:20px 0;">
          <span style="display:inline-block;background-color:#668F82;letter-spacing:0.5em;color:#F0E9D5;font-size:28px;font-weight:bold;padding:15px 25px;border-radius:8px;">%s</span>
        </div>
        <p style="font-size:16px;color:#5E5E5E;line-height:1.5;">
          This code will expire in 10 minutes. If you didn't request this, you can ignore this email.
        </p>
      </td>
    </tr>
  </table>
</body>
</html>`, code)
}
