package document

// DocumentType distinguishes quotes from invoices. Lifecycle guards
// differ per type.
type DocumentType string

const (
	TypeQuote   DocumentType = "QUOTE"
	TypeInvoice DocumentType = "INVOICE"
)

// IsValid checks if the type is a valid DocumentType
func (t DocumentType) IsValid() bool {
	return t == TypeQuote || t == TypeInvoice
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// DocumentStatus represents the lifecycle status of a financial document
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusSent      DocumentStatus = "SENT"
	StatusPending   DocumentStatus = "PENDING"   // Sent quote awaiting a response
	StatusAccepted  DocumentStatus = "ACCEPTED"  // Quote accepted by the client
	StatusRejected  DocumentStatus = "REJECTED"  // Quote rejected by the client
	StatusConverted DocumentStatus = "CONVERTED" // Quote turned into an invoice
	StatusPartial   DocumentStatus = "PARTIAL"   // Invoice partially paid
	StatusPaid      DocumentStatus = "PAID"      // Invoice fully paid
	StatusOverdue   DocumentStatus = "OVERDUE"   // Invoice past its due date
	StatusCancelled DocumentStatus = "CANCELLED"
	StatusDeleted   DocumentStatus = "DELETED" // Soft-deleted draft
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPending, StatusAccepted, StatusRejected,
		StatusConverted, StatusPartial, StatusPaid, StatusOverdue,
		StatusCancelled, StatusDeleted:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions leave this status
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case StatusConverted, StatusPaid, StatusCancelled, StatusDeleted, StatusRejected:
		return true
	}
	return false
}

// IsEditable returns true if lines and discounts may still be modified
func (s DocumentStatus) IsEditable() bool {
	return s == StatusDraft
}

// CanTransitionTo checks if the status can transition to the target status
// for the given document type. This is the single transition table; every
// lifecycle operation goes through it.
func (s DocumentStatus) CanTransitionTo(docType DocumentType, target DocumentStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusSent || target == StatusCancelled || target == StatusDeleted
	case StatusSent:
		if docType == TypeQuote {
			return target == StatusPending || target == StatusAccepted ||
				target == StatusRejected || target == StatusCancelled
		}
		return target == StatusPartial || target == StatusPaid ||
			target == StatusOverdue || target == StatusCancelled
	case StatusPending:
		return docType == TypeQuote && (target == StatusAccepted ||
			target == StatusRejected || target == StatusCancelled)
	case StatusAccepted:
		return docType == TypeQuote && (target == StatusConverted || target == StatusCancelled)
	case StatusPartial:
		return docType == TypeInvoice && (target == StatusPartial || target == StatusPaid ||
			target == StatusOverdue || target == StatusCancelled)
	case StatusOverdue:
		return docType == TypeInvoice && (target == StatusPartial ||
			target == StatusPaid || target == StatusCancelled)
	case StatusRejected, StatusConverted, StatusPaid, StatusCancelled, StatusDeleted:
		return false
	}
	return false
}

// PaymentStatus tracks how much of an invoice has been settled
type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = "NONE"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusNone || s == PaymentStatusPartial || s == PaymentStatusPaid
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}
