package models

// PaymentStatus defines the lifecycle of a payment record. Transitions are
// monotonic: pending -> overdue -> paid. Paid is terminal.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentPaid    PaymentStatus = "paid"
)

// IsSettled reports whether the status is terminal. Legacy rows that carried
// "success" are rewritten to "paid" by the migrations, so only one terminal
// value exists at runtime.
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentPaid
}

// TransactionStatus defines the lifecycle of a ledger entry. The only
// transition is initiated -> success, and it happens at most once.
type TransactionStatus string

const (
	TransactionInitiated TransactionStatus = "initiated"
	TransactionSuccess   TransactionStatus = "success"
)

// Gateway identifies the external payment processor.
type Gateway string

const (
	GatewayRazorpay Gateway = "razorpay"
	GatewayStripe   Gateway = "stripe"
)

// LeaseStatus defines the possible status values for a lease.
type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "active"
	LeaseTerminated LeaseStatus = "terminated"
	LeaseExpired    LeaseStatus = "expired"
)

// MessageType categorizes in-app notification messages.
type MessageType string

const (
	MessageOverdue       MessageType = "overdue"
	MessageReceipt       MessageType = "receipt"
	MessageReminder      MessageType = "reminder"
	MessageMonthlyStatus MessageType = "monthly-status"
)

// MessageSeverity defines the display severity of a message.
type MessageSeverity string

const (
	SeverityInfo     MessageSeverity = "info"
	SeverityWarn     MessageSeverity = "warn"
	SeverityCritical MessageSeverity = "critical"
)

// MessageChannel identifies the delivery channel a message was sent on.
type MessageChannel string

const (
	ChannelInApp    MessageChannel = "inapp"
	ChannelWhatsApp MessageChannel = "whatsapp"
)

// UserRole defines the possible roles for an account.
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleTenant UserRole = "tenant"
)
