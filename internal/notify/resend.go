package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ResendSender delivers email through a Resend-compatible HTTP API.
type ResendSender struct {
	client *resty.Client
	from   string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func NewResendSender(baseURL, apiKey, from string) *ResendSender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &ResendSender{client: client, from: from}
}

func (s *ResendSender) send(ctx context.Context, to, subject, html string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:    s.from,
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		}).
		Post("/emails")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("email api returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *ResendSender) SendRecoveryRequestEmail(ctx context.Context, ownerEmail, ownerName, delegateName string, gracePeriodDays int, reason string) error {
	subject := "Legacy Locker: access request from your delegate"
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>%s has requested access to your Legacy Locker.</p>
<p>Reason given: %s</p>
<p>You have %d days to approve or reject this request. If you do nothing,
access will be granted to your delegate when the grace period ends.</p>`,
		ownerName, delegateName, reason, gracePeriodDays)
	return s.send(ctx, ownerEmail, subject, html)
}

func (s *ResendSender) SendRecoveryApprovedEmail(ctx context.Context, delegateEmail, delegateName, ownerName string) error {
	subject := "Legacy Locker: access approved"
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>%s has approved your access request. Sign in and confirm receipt to
complete the handoff.</p>`,
		delegateName, ownerName)
	return s.send(ctx, delegateEmail, subject, html)
}

func (s *ResendSender) SendRecoveryRejectedEmail(ctx context.Context, delegateEmail, delegateName, ownerName string) error {
	subject := "Legacy Locker: access request declined"
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>%s has declined your access request.</p>`,
		delegateName, ownerName)
	return s.send(ctx, delegateEmail, subject, html)
}

func (s *ResendSender) SendDelegateAccessEmail(ctx context.Context, delegateEmail, delegateName, ownerName string) error {
	subject := "Legacy Locker: access available"
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>The grace period on %s's Legacy Locker has ended without a response.
Sign in and confirm receipt to complete the handoff.</p>`,
		delegateName, ownerName)
	return s.send(ctx, delegateEmail, subject, html)
}
