package infrastructure

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"hiring-pipeline/domain"
)

// SMTPMailer sends decision notifications over SMTP. Without credentials
// the mailer is disabled and Notify reports SKIPPED, so environments
// without mail configured still run the full pipeline.
type SMTPMailer struct {
	host             string
	port             int
	username         string
	password         string
	defaultRecipient string
	log              *zap.Logger
}

func NewSMTPMailer(host string, port int, username, password, defaultRecipient string, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:             host,
		port:             port,
		username:         username,
		password:         password,
		defaultRecipient: defaultRecipient,
		log:              log,
	}
}

func (m *SMTPMailer) enabled() bool {
	return m.username != "" && m.password != ""
}

// Notify emails the candidate about the decision on their application. The
// result carries what was (or would have been) sent so the caller can
// record it.
func (m *SMTPMailer) Notify(ctx context.Context, c *domain.Candidate) domain.NotificationResult {
	recipient := c.CandidateEmail
	if recipient == "" {
		recipient = m.defaultRecipient
	}

	subject, body := decisionEmail(c)
	res := domain.NotificationResult{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}

	if !m.enabled() {
		res.Status = domain.EmailSkipped
		res.Error = "smtp credentials not configured"
		return res
	}
	if recipient == "" {
		res.Status = domain.EmailFailed
		res.Error = "no recipient address"
		return res
	}

	if err := m.send(ctx, recipient, subject, body); err != nil {
		res.Status = domain.EmailFailed
		res.Error = err.Error()
		return res
	}

	res.Status = domain.EmailSent
	return res
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.username); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// decisionEmail builds the subject and body announcing the decision stored
// on the candidate.
func decisionEmail(c *domain.Candidate) (string, string) {
	name := c.CandidateName
	if name == "" {
		name = "Candidate"
	}

	var decision domain.Decision
	if c.FinalDecision != nil {
		decision = *c.FinalDecision
	}

	switch decision {
	case domain.DecisionShortlist:
		return "Interview Invitation - Next Steps",
			fmt.Sprintf("Dear %s,\n\nCongratulations! After reviewing your application we are pleased to invite you to the next stage of our hiring process. Our team will contact you shortly to schedule an interview.\n\nBest regards,\nThe Hiring Team", name)
	case domain.DecisionReject:
		return "Application Status Update",
			fmt.Sprintf("Dear %s,\n\nThank you for your interest in the role. After careful review we will not be moving forward with your application at this time. We encourage you to apply for future openings.\n\nBest regards,\nThe Hiring Team", name)
	default:
		return "Application Received - Under Review",
			fmt.Sprintf("Dear %s,\n\nYour application is currently under review by our team. We will notify you once a decision has been made.\n\nBest regards,\nThe Hiring Team", name)
	}
}
