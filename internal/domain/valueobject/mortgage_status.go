package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// MortgageFileStatus – stage of a mortgage credit file
// ---------------------------------------------------------------------------

// MortgageFileStatus is a workflow stage. Forward stages carry an increasing
// rank; rejete and annule sit outside the forward order.
type MortgageFileStatus struct {
	value string
	rank  int
}

const terminalRank = 100

var (
	MortgageStatusSubmitted          = MortgageFileStatus{value: "soumis_par_banque", rank: 0}
	MortgageStatusNotaryProcessing   = MortgageFileStatus{value: "en_traitement_notaire", rank: 1}
	MortgageStatusConventionSigned   = MortgageFileStatus{value: "convention_formalisee", rank: 2}
	MortgageStatusRegistrationActive = MortgageFileStatus{value: "inscription_hypothecaire_en_cours", rank: 3}
	MortgageStatusRegistrationDone   = MortgageFileStatus{value: "inscription_hypothecaire_terminee", rank: 4}
	MortgageStatusRejected           = MortgageFileStatus{value: "rejete", rank: terminalRank}
	MortgageStatusCancelled          = MortgageFileStatus{value: "annule", rank: terminalRank}
)

var validMortgageStatuses = map[string]MortgageFileStatus{
	MortgageStatusSubmitted.value:          MortgageStatusSubmitted,
	MortgageStatusNotaryProcessing.value:   MortgageStatusNotaryProcessing,
	MortgageStatusConventionSigned.value:   MortgageStatusConventionSigned,
	MortgageStatusRegistrationActive.value: MortgageStatusRegistrationActive,
	MortgageStatusRegistrationDone.value:   MortgageStatusRegistrationDone,
	MortgageStatusRejected.value:           MortgageStatusRejected,
	MortgageStatusCancelled.value:          MortgageStatusCancelled,
}

// NewMortgageFileStatus creates a MortgageFileStatus from a raw string.
func NewMortgageFileStatus(s string) (MortgageFileStatus, error) {
	v, ok := validMortgageStatuses[s]
	if !ok {
		return MortgageFileStatus{}, fmt.Errorf("invalid mortgage file status: %q", s)
	}
	return v, nil
}

func (s MortgageFileStatus) String() string { return s.value }
func (s MortgageFileStatus) IsZero() bool { return s.value == "" }
func (s MortgageFileStatus) Equal(other MortgageFileStatus) bool { return s.value == other.value }

// IsTerminal reports whether no action may leave this stage.
func (s MortgageFileStatus) IsTerminal() bool {
	return s.rank == terminalRank || s.Equal(MortgageStatusRegistrationDone)
}

// After reports whether s lies strictly beyond other in the workflow.
// Rejected and cancelled files are beyond every forward stage.
func (s MortgageFileStatus) After(other MortgageFileStatus) bool {
	return s.rank > other.rank
}

// ---------------------------------------------------------------------------
// MortgageAction
// ---------------------------------------------------------------------------

// MortgageAction names a workflow command.
type MortgageAction string

const (
	MortgageActionAccept              MortgageAction = "accept"
	MortgageActionReject              MortgageAction = "reject"
	MortgageActionCancel              MortgageAction = "cancel"
	MortgageActionFormalize           MortgageAction = "formalize"
	MortgageActionRegisterInscription MortgageAction = "register_inscription"
	MortgageActionFinalize            MortgageAction = "finalize"
)

var validMortgageActions = map[MortgageAction]struct{}{
	MortgageActionAccept:              {},
	MortgageActionReject:              {},
	MortgageActionCancel:              {},
	MortgageActionFormalize:           {},
	MortgageActionRegisterInscription: {},
	MortgageActionFinalize:            {},
}

// NewMortgageAction validates a raw action name.
func NewMortgageAction(s string) (MortgageAction, error) {
	a := MortgageAction(s)
	if _, ok := validMortgageActions[a]; !ok {
		return "", fmt.Errorf("invalid mortgage action: %q", s)
	}
	return a, nil
}

func (a MortgageAction) String() string { return string(a) }
