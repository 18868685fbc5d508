// Package jobs defines the queued background jobs: all transactional email
// leaves the request path through here.
package jobs

import (
	"fmt"
	"strings"

	"github.com/fusionfit/storefront/config"
	"github.com/fusionfit/storefront/pkg/mail"
	"github.com/fusionfit/storefront/pkg/metrics"
	"github.com/fusionfit/storefront/pkg/queue"
)

// RegisterAll registers every job type with the queue. Call once at boot,
// before workers start.
func RegisterAll() {
	queue.Register("*jobs.VerificationEmailJob", func() queue.Job { return &VerificationEmailJob{} })
	queue.Register("*jobs.PasswordResetEmailJob", func() queue.Job { return &PasswordResetEmailJob{} })
	queue.Register("*jobs.OrderConfirmationEmailJob", func() queue.Job { return &OrderConfirmationEmailJob{} })
}

func clientURL(path string) string {
	return strings.TrimRight(config.ClientURL(), "/") + path
}

func track(kind string, err error) error {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	metrics.EmailsSent.WithLabelValues(kind, status).Inc()
	return err
}

// VerificationEmailJob mails the email-verification link.
type VerificationEmailJob struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"` // plain token; only its hash is stored
}

func (j *VerificationEmailJob) Handle() error {
	err := mail.To(j.Email).
		Subject("Verify Your Email Address").
		Action("Email Verification",
			"Hi "+j.Name+",",
			"Click the button below to verify your email address.",
			clientURL("/verify-email/"+j.Token),
			"Verify Email").
		Send()
	return track("verification", err)
}

// PasswordResetEmailJob mails the password-reset link.
type PasswordResetEmailJob struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

func (j *PasswordResetEmailJob) Handle() error {
	err := mail.To(j.Email).
		Subject("Reset Your Password").
		Action("Password Reset Request",
			"Hi "+j.Name+",",
			"Click the button below to reset your password.",
			clientURL("/reset-password/"+j.Token),
			"Reset Password").
		Send()
	return track("password_reset", err)
}

// OrderConfirmationEmailJob mails a confirmation after checkout commits.
type OrderConfirmationEmailJob struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	OrderID string  `json:"orderId"`
	Total   float64 `json:"total"`
}

func (j *OrderConfirmationEmailJob) Handle() error {
	err := mail.To(j.Email).
		Subject("Your Fusion Fit Order").
		Action("Order Confirmed",
			"Hi "+j.Name+",",
			fmt.Sprintf("We received your order %s (total %.2f). We'll let you know when it ships.", j.OrderID, j.Total),
			clientURL("/orders/"+j.OrderID),
			"View Order").
		Send()
	return track("order_confirmation", err)
}
