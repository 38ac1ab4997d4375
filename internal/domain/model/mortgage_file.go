package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

// Document is a stored file reference. The service never reads the content.
type Document struct {
	URL                string
	Filename           string
	RegistrationNumber string
}

// Present reports whether the document has been provided.
func (d Document) Present() bool { return strings.TrimSpace(d.URL) != "" }

// BankDocuments are supplied by the bank at submission.
type BankDocuments struct {
	TitleDeed          Document
	CreditNotification Document
}

// NotaryDocuments are produced by the notary during formalization.
type NotaryDocuments struct {
	CreditConvention Document
	MortgageDeed     Document
}

// Comment is a free-text note attached to a transition.
type Comment struct {
	Action   valueobject.MortgageAction
	AuthorID string
	Text     string
	At       time.Time
}

// MortgageSubmission is what a bank provides to open a file.
type MortgageSubmission struct {
	TenantID     string
	BankID       string
	NotaryID     string
	BorrowerName string
	CreditAmount decimal.Decimal
	Currency     money.Currency
	Documents    BankDocuments
}

// TransitionInput carries the action and every body field an action may use.
// ExpectedStatus, when set, is the status the caller last observed.
type TransitionInput struct {
	Action         valueobject.MortgageAction
	ExpectedStatus valueobject.MortgageFileStatus
	Motif          string
	Convention     Document
	Deed           Document
	DeedNumber     string
	Comment        string
	ActorID        string
}

// ---------------------------------------------------------------------------
// Transition table
// ---------------------------------------------------------------------------

type transitionKey struct {
	from   string
	action valueobject.MortgageAction
}

type transition struct {
	to    valueobject.MortgageFileStatus
	check func(in TransitionInput) error
	apply func(f *MortgageFile, in TransitionInput)
}

func requireMotif(in TransitionInput) error {
	if strings.TrimSpace(in.Motif) == "" {
		return NewValidationError("motif", "is required to reject a file")
	}
	return nil
}

func setMotif(f *MortgageFile, in TransitionInput) {
	f.rejectionReason = strings.TrimSpace(in.Motif)
}

var transitions = map[transitionKey]transition{
	{valueobject.MortgageStatusSubmitted.String(), valueobject.MortgageActionAccept}: {
		to: valueobject.MortgageStatusNotaryProcessing,
	},
	{valueobject.MortgageStatusSubmitted.String(), valueobject.MortgageActionReject}: {
		to: valueobject.MortgageStatusRejected, check: requireMotif, apply: setMotif,
	},
	{valueobject.MortgageStatusSubmitted.String(), valueobject.MortgageActionCancel}: {
		to: valueobject.MortgageStatusCancelled,
	},
	{valueobject.MortgageStatusNotaryProcessing.String(), valueobject.MortgageActionFormalize}: {
		to:    valueobject.MortgageStatusConventionSigned,
		check: func(in TransitionInput) error {
			if !in.Convention.Present() {
				return NewValidationError("conventionOuvertureCredit.url", "is required to formalize")
			}
			return nil
		},
		apply: func(f *MortgageFile, in TransitionInput) {
			f.notaryDocs.CreditConvention = in.Convention
		},
	},
	{valueobject.MortgageStatusNotaryProcessing.String(), valueobject.MortgageActionReject}: {
		to: valueobject.MortgageStatusRejected, check: requireMotif, apply: setMotif,
	},
	{valueobject.MortgageStatusNotaryProcessing.String(), valueobject.MortgageActionCancel}: {
		to: valueobject.MortgageStatusCancelled,
	},
	{valueobject.MortgageStatusConventionSigned.String(), valueobject.MortgageActionRegisterInscription}: {
		to: valueobject.MortgageStatusRegistrationActive,
	},
	{valueobject.MortgageStatusRegistrationActive.String(), valueobject.MortgageActionFinalize}: {
		to:    valueobject.MortgageStatusRegistrationDone,
		check: func(in TransitionInput) error {
			if strings.TrimSpace(in.DeedNumber) == "" {
				return NewValidationError("numeroActe", "is required to finalize")
			}
			return nil
		},
		apply: func(f *MortgageFile, in TransitionInput) {
			f.deedNumber = strings.TrimSpace(in.DeedNumber)
			if in.Deed.Present() {
				f.notaryDocs.MortgageDeed = in.Deed
				if f.notaryDocs.MortgageDeed.RegistrationNumber == "" {
					f.notaryDocs.MortgageDeed.RegistrationNumber = f.deedNumber
				}
			}
		},
	},
}

// latestSource is, per action, the furthest stage the action may start from.
var latestSource = func() map[valueobject.MortgageAction]valueobject.MortgageFileStatus {
	out := make(map[valueobject.MortgageAction]valueobject.MortgageFileStatus)
	for k := range transitions {
		from, _ := valueobject.NewMortgageFileStatus(k.from)
		if cur, ok := out[k.action]; !ok || from.After(cur) {
			out[k.action] = from
		}
	}
	return out
}()

// ---------------------------------------------------------------------------
// MortgageFile aggregate root
// ---------------------------------------------------------------------------

// MortgageFile is a mortgage credit file moving through notarial
// formalization. Immutable; Apply returns a new copy.
type MortgageFile struct {
	id              string
	tenantID        string
	bankID          string
	notaryID        string
	borrowerName    string
	creditAmount    decimal.Decimal
	currency        money.Currency
	status          valueobject.MortgageFileStatus
	bankDocs        BankDocuments
	notaryDocs      NotaryDocuments
	rejectionReason string
	deedNumber      string
	comments        []Comment
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// NewMortgageFile opens a file in soumis_par_banque.
func NewMortgageFile(sub MortgageSubmission, now time.Time) (MortgageFile, error) {
	switch {
	case sub.TenantID == "":
		return MortgageFile{}, NewValidationError("tenantId", "is required")
	case sub.BankID == "":
		return MortgageFile{}, NewValidationError("bankId", "is required")
	case sub.NotaryID == "":
		return MortgageFile{}, NewValidationError("notaryId", "is required")
	case strings.TrimSpace(sub.BorrowerName) == "":
		return MortgageFile{}, NewValidationError("borrowerName", "is required")
	case !sub.CreditAmount.IsPositive():
		return MortgageFile{}, NewValidationError("creditAmount", "must be greater than zero")
	case !sub.Documents.TitleDeed.Present():
		return MortgageFile{}, NewValidationError("documentsBanque.titrePropriete.url", "is required")
	case !sub.Documents.CreditNotification.Present():
		return MortgageFile{}, NewValidationError("documentsBanque.notificationCredit.url", "is required")
	}
	currency := sub.Currency
	if currency.Code() == "" {
		currency = money.DefaultCurrency
	}

	f := MortgageFile{
		id:           uuid.New().String(),
		tenantID:     sub.TenantID,
		bankID:       sub.BankID,
		notaryID:     sub.NotaryID,
		borrowerName: strings.TrimSpace(sub.BorrowerName),
		creditAmount: sub.CreditAmount,
		currency:     currency,
		status:       valueobject.MortgageStatusSubmitted,
		bankDocs:     sub.Documents,
		createdAt:    now,
		updatedAt:    now,
	}
	f.domainEvents = append(f.domainEvents, event.NewMortgageFileSubmitted(
		f.id, f.tenantID, f.bankID, f.notaryID, f.borrowerName, f.creditAmount, currency.Code(), now,
	))
	return f, nil
}

// MortgageFileState bundles the persisted fields of a MortgageFile.
type MortgageFileState struct {
	ID              string
	TenantID        string
	BankID          string
	NotaryID        string
	BorrowerName    string
	CreditAmount    decimal.Decimal
	Currency        money.Currency
	Status          valueobject.MortgageFileStatus
	BankDocuments   BankDocuments
	NotaryDocuments NotaryDocuments
	RejectionReason string
	DeedNumber      string
	Comments        []Comment
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructMortgageFile rebuilds a MortgageFile from persistence.
func ReconstructMortgageFile(st MortgageFileState) MortgageFile {
	return MortgageFile{
		id:              st.ID,
		tenantID:        st.TenantID,
		bankID:          st.BankID,
		notaryID:        st.NotaryID,
		borrowerName:    st.BorrowerName,
		creditAmount:    st.CreditAmount,
		currency:        st.Currency,
		status:          st.Status,
		bankDocs:        st.BankDocuments,
		notaryDocs:      st.NotaryDocuments,
		rejectionReason: st.RejectionReason,
		deedNumber:      st.DeedNumber,
		comments:        st.Comments,
		version:         st.Version,
		createdAt:       st.CreatedAt,
		updatedAt:       st.UpdatedAt,
	}
}

// Apply runs one workflow action. Unknown (state, action) pairs fail with
// a TransitionError; an action whose source stage the file has already
// left, or a mismatching ExpectedStatus, fails with a StaleStateError.
func (f MortgageFile) Apply(in TransitionInput, now time.Time) (MortgageFile, error) {
	if !in.ExpectedStatus.IsZero() && !in.ExpectedStatus.Equal(f.status) {
		return f, &StaleStateError{Current: f.status, Action: in.Action}
	}

	t, ok := transitions[transitionKey{from: f.status.String(), action: in.Action}]
	if !ok {
		if f.leftSourceOf(in.Action) {
			return f, &StaleStateError{Current: f.status, Action: in.Action}
		}
		return f, &TransitionError{From: f.status, Action: in.Action}
	}
	if t.check != nil {
		if err := t.check(in); err != nil {
			return f, err
		}
	}

	next := f
	next.comments = f.Comments()
	next.domainEvents = copyEvents(f.domainEvents)
	next.status = t.to
	next.updatedAt = now
	if t.apply != nil {
		t.apply(&next, in)
	}
	comment := strings.TrimSpace(in.Comment)
	if comment != "" {
		next.comments = append(next.comments, Comment{
			Action:   in.Action,
			AuthorID: in.ActorID,
			Text:     comment,
			At:       now,
		})
	}

	next.domainEvents = append(next.domainEvents, event.NewMortgageFileTransitioned(
		f.id, f.tenantID, in.Action.String(), f.status.String(), t.to.String(),
		in.ActorID, next.rejectionReason, comment, now,
	))
	return next, nil
}

// CanApply reports whether action has a transition from the current state.
func (f MortgageFile) CanApply(action valueobject.MortgageAction) bool {
	_, ok := transitions[transitionKey{from: f.status.String(), action: action}]
	return ok
}

func (f MortgageFile) leftSourceOf(action valueobject.MortgageAction) bool {
	if f.status.IsTerminal() {
		return true
	}
	src, ok := latestSource[action]
	return ok && f.status.After(src)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (f MortgageFile) ID() string { return f.id }
func (f MortgageFile) TenantID() string { return f.tenantID }
func (f MortgageFile) BankID() string { return f.bankID }
func (f MortgageFile) NotaryID() string { return f.notaryID }
func (f MortgageFile) BorrowerName() string { return f.borrowerName }
func (f MortgageFile) CreditAmount() decimal.Decimal { return f.creditAmount }
func (f MortgageFile) Currency() money.Currency { return f.currency }
func (f MortgageFile) Status() valueobject.MortgageFileStatus { return f.status }
func (f MortgageFile) BankDocuments() BankDocuments { return f.bankDocs }
func (f MortgageFile) NotaryDocuments() NotaryDocuments { return f.notaryDocs }
func (f MortgageFile) RejectionReason() string { return f.rejectionReason }
func (f MortgageFile) DeedNumber() string { return f.deedNumber }
func (f MortgageFile) Version() int { return f.version }
func (f MortgageFile) CreatedAt() time.Time { return f.createdAt }
func (f MortgageFile) UpdatedAt() time.Time { return f.updatedAt }
func (f MortgageFile) DomainEvents() []event.DomainEvent { return f.domainEvents }

// Comments returns a copy of the notary comments in order.
func (f MortgageFile) Comments() []Comment {
	if f.comments == nil {
		return nil
	}
	out := make([]Comment, len(f.comments))
	copy(out, f.comments)
	return out
}

// ClearEvents returns a copy with an empty event list.
func (f MortgageFile) ClearEvents() MortgageFile {
	next := f
	next.domainEvents = nil
	return next
}
