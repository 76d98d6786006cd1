package smtp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #2A416F;">Your {{.Site}} OTP</h2>
  <p style="color: #7182B8;">Use the code below to {{.Purpose}}. This OTP expires in {{.Minutes}} minutes.</p>
  <div style="background-color: #F1F0FB; padding: 15px; text-align: center; border-radius: 10px;">
    <h3 style="color: #9B87F5; font-size: 24px; margin: 0;">{{.Code}}</h3>
  </div>
  <p style="color: #7182B8; margin-top: 20px;">If you didn't request this, please ignore this email.</p>
  <p style="color: #7182B8; font-size: 12px; margin-top: 30px;">&copy; {{.Year}} {{.Site}}. All rights reserved.</p>
</div>
`))

type otpData struct {
	Site    string
	Purpose string
	Code    string
	Minutes int
	Year    int
}

// OTPSender delivers login codes by email.
type OTPSender struct {
	mailer Mailer
	site   string
	ttl    time.Duration
	now    func() time.Time
}

func NewOTPSender(m Mailer, site string, ttl time.Duration) *OTPSender {
	return &OTPSender{mailer: m, site: site, ttl: ttl, now: time.Now}
}

func (s *OTPSender) SendOTP(ctx context.Context, email, code string) error {
	body, err := s.render(code)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(ctx, email, "Your OTP for "+s.site, body)
}

func (s *OTPSender) render(code string) (string, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, otpData{
		Site:    s.site,
		Purpose: "verify your email",
		Code:    code,
		Minutes: int(s.ttl / time.Minute),
		Year:    s.now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("render otp email: %w", err)
	}
	return buf.String(), nil
}
