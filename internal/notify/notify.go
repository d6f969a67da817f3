package notify

import "context"

// Notifier sends the recovery protocol's outbound emails. All sends are
// best-effort: callers log failures and never roll back state on them.
type Notifier interface {
	SendRecoveryRequestEmail(ctx context.Context, ownerEmail, ownerName, delegateName string, gracePeriodDays int, reason string) error
	SendRecoveryApprovedEmail(ctx context.Context, delegateEmail, delegateName, ownerName string) error
	SendRecoveryRejectedEmail(ctx context.Context, delegateEmail, delegateName, ownerName string) error
	SendDelegateAccessEmail(ctx context.Context, delegateEmail, delegateName, ownerName string) error
}

// Noop is used when no email API key is configured.
type Noop struct{}

func (Noop) SendRecoveryRequestEmail(context.Context, string, string, string, int, string) error {
	return nil
}
func (Noop) SendRecoveryApprovedEmail(context.Context, string, string, string) error { return nil }
func (Noop) SendRecoveryRejectedEmail(context.Context, string, string, string) error { return nil }
func (Noop) SendDelegateAccessEmail(context.Context, string, string, string) error   { return nil }
