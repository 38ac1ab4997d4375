package model_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

var fileNow = time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)

func submitted(t *testing.T) model.MortgageFile {
	t.Helper()
	f, err := model.NewMortgageFile(model.MortgageSubmission{
		TenantID:     "tenant-1",
		BankID:       "bank-1",
		NotaryID:     "notary-1",
		BorrowerName: "A. Diallo",
		CreditAmount: dec("45000000"),
		Currency:     money.XOF,
		Documents: model.BankDocuments{
			TitleDeed:          model.Document{URL: "https://files.example/tf.pdf", Filename: "tf.pdf"},
			CreditNotification: model.Document{URL: "https://files.example/nc.pdf", Filename: "nc.pdf"},
		},
	}, fileNow)
	require.NoError(t, err)
	return f
}

// advance drives a fresh file to the given status along the happy path.
func advance(t *testing.T, to valueobject.MortgageFileStatus) model.MortgageFile {
	t.Helper()
	f := submitted(t)
	steps := []model.TransitionInput{
		{Action: valueobject.MortgageActionAccept},
		{Action: valueobject.MortgageActionFormalize, Convention: model.Document{URL: "https://files.example/coc.pdf"}},
		{Action: valueobject.MortgageActionRegisterInscription},
		{Action: valueobject.MortgageActionFinalize, DeedNumber: "AH-2024-118"},
	}
	switch to {
	case valueobject.MortgageStatusRejected:
		next, err := f.Apply(model.TransitionInput{Action: valueobject.MortgageActionReject, Motif: "incomplete"}, fileNow)
		require.NoError(t, err)
		return next
	case valueobject.MortgageStatusCancelled:
		next, err := f.Apply(model.TransitionInput{Action: valueobject.MortgageActionCancel}, fileNow)
		require.NoError(t, err)
		return next
	}
	for _, step := range steps {
		if f.Status().Equal(to) {
			break
		}
		var err error
		f, err = f.Apply(step, fileNow)
		require.NoError(t, err)
	}
	require.True(t, f.Status().Equal(to), "reached %s", f.Status())
	return f
}

func TestNewMortgageFile_RequiresBankDocuments(t *testing.T) {
	_, err := model.NewMortgageFile(model.MortgageSubmission{
		TenantID:     "tenant-1",
		BankID:       "bank-1",
		NotaryID:     "notary-1",
		BorrowerName: "A. Diallo",
		CreditAmount: dec("1000"),
		Documents: model.BankDocuments{
			TitleDeed: model.Document{URL: "https://files.example/tf.pdf"},
		},
	}, fileNow)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "documentsBanque.notificationCredit.url", verr.Field)
}

func TestMortgageFile_HappyPath(t *testing.T) {
	f := submitted(t)
	assert.True(t, f.Status().Equal(valueobject.MortgageStatusSubmitted))
	assert.Equal(t, "XOF", f.Currency().Code())

	f, err := f.Apply(model.TransitionInput{Action: valueobject.MortgageActionAccept, Comment: "dossier complet", ActorID: "notary-1"}, fileNow)
	require.NoError(t, err)
	assert.True(t, f.Status().Equal(valueobject.MortgageStatusNotaryProcessing))
	assert.False(t, f.NotaryDocuments().CreditConvention.Present())

	f, err = f.Apply(model.TransitionInput{
		Action:     valueobject.MortgageActionFormalize,
		Convention: model.Document{URL: "https://files.example/coc.pdf", Filename: "coc.pdf", RegistrationNumber: "COC-1"},
	}, fileNow)
	require.NoError(t, err)
	assert.Equal(t, "COC-1", f.NotaryDocuments().CreditConvention.RegistrationNumber)
	assert.False(t, f.NotaryDocuments().MortgageDeed.Present())

	f, err = f.Apply(model.TransitionInput{Action: valueobject.MortgageActionRegisterInscription, ExpectedStatus: valueobject.MortgageStatusConventionSigned}, fileNow)
	require.NoError(t, err)

	f, err = f.Apply(model.TransitionInput{
		Action:     valueobject.MortgageActionFinalize,
		DeedNumber: "AH-2024-118",
		Deed:       model.Document{URL: "https://files.example/ah.pdf", Filename: "ah.pdf"},
	}, fileNow)
	require.NoError(t, err)
	assert.True(t, f.Status().Equal(valueobject.MortgageStatusRegistrationDone))
	assert.Equal(t, "AH-2024-118", f.DeedNumber())
	assert.Equal(t, "AH-2024-118", f.NotaryDocuments().MortgageDeed.RegistrationNumber)

	require.Len(t, f.Comments(), 1)
	assert.Equal(t, "dossier complet", f.Comments()[0].Text)
	assert.Equal(t, valueobject.MortgageActionAccept, f.Comments()[0].Action)
	assert.Len(t, f.DomainEvents(), 5)
}

func TestMortgageFile_Preconditions(t *testing.T) {
	t.Run("reject needs a motif", func(t *testing.T) {
		_, err := submitted(t).Apply(model.TransitionInput{Action: valueobject.MortgageActionReject, Motif: "  "}, fileNow)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("formalize needs the convention", func(t *testing.T) {
		_, err := advance(t, valueobject.MortgageStatusNotaryProcessing).
			Apply(model.TransitionInput{Action: valueobject.MortgageActionFormalize}, fileNow)
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.Contains(t, err.Error(), "conventionOuvertureCredit")
	})

	t.Run("finalize needs numeroActe", func(t *testing.T) {
		_, err := advance(t, valueobject.MortgageStatusRegistrationActive).
			Apply(model.TransitionInput{Action: valueobject.MortgageActionFinalize}, fileNow)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("reject records the motif", func(t *testing.T) {
		f, err := advance(t, valueobject.MortgageStatusNotaryProcessing).
			Apply(model.TransitionInput{Action: valueobject.MortgageActionReject, Motif: "titre foncier illisible"}, fileNow)
		require.NoError(t, err)
		assert.True(t, f.Status().Equal(valueobject.MortgageStatusRejected))
		assert.Equal(t, "titre foncier illisible", f.RejectionReason())
	})
}

func TestMortgageFile_RegisterBeforeFormalize(t *testing.T) {
	f := advance(t, valueobject.MortgageStatusNotaryProcessing)

	_, err := f.Apply(model.TransitionInput{Action: valueobject.MortgageActionRegisterInscription}, fileNow)

	require.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.NotErrorIs(t, err, model.ErrStaleState)
	var terr *model.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.From.Equal(valueobject.MortgageStatusNotaryProcessing))
}

func TestMortgageFile_ConcurrentRegisterIsStale(t *testing.T) {
	snapshot := advance(t, valueobject.MortgageStatusConventionSigned)

	first, err := snapshot.Apply(model.TransitionInput{Action: valueobject.MortgageActionRegisterInscription}, fileNow)
	require.NoError(t, err)

	// The second actor acts on what is now persisted.
	_, err = first.Apply(model.TransitionInput{
		Action:         valueobject.MortgageActionRegisterInscription,
		ExpectedStatus: valueobject.MortgageStatusConventionSigned,
	}, fileNow)
	require.ErrorIs(t, err, model.ErrStaleState)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = first.Apply(model.TransitionInput{Action: valueobject.MortgageActionRegisterInscription}, fileNow)
	var stale *model.StaleStateError
	require.True(t, errors.As(err, &stale))
	assert.True(t, stale.Current.Equal(valueobject.MortgageStatusRegistrationActive))
}

func TestMortgageFile_TransitionTable(t *testing.T) {
	allowed := map[valueobject.MortgageFileStatus][]valueobject.MortgageAction{
		valueobject.MortgageStatusSubmitted: {
			valueobject.MortgageActionAccept, valueobject.MortgageActionReject, valueobject.MortgageActionCancel,
		},
		valueobject.MortgageStatusNotaryProcessing: {
			valueobject.MortgageActionFormalize, valueobject.MortgageActionReject, valueobject.MortgageActionCancel,
		},
		valueobject.MortgageStatusConventionSigned:   {valueobject.MortgageActionRegisterInscription},
		valueobject.MortgageStatusRegistrationActive: {valueobject.MortgageActionFinalize},
		valueobject.MortgageStatusRegistrationDone:   nil,
		valueobject.MortgageStatusRejected:           nil,
		valueobject.MortgageStatusCancelled:          nil,
	}
	actions := []valueobject.MortgageAction{
		valueobject.MortgageActionAccept,
		valueobject.MortgageActionReject,
		valueobject.MortgageActionCancel,
		valueobject.MortgageActionFormalize,
		valueobject.MortgageActionRegisterInscription,
		valueobject.MortgageActionFinalize,
	}
	full := model.TransitionInput{
		Motif:      "motif",
		Convention: model.Document{URL: "https://files.example/coc.pdf"},
		DeedNumber: "AH-1",
	}

	for status, ok := range allowed {
		for _, action := range actions {
			t.Run(status.String()+"/"+action.String(), func(t *testing.T) {
				f := advance(t, status)
				in := full
				in.Action = action

				_, err := f.Apply(in, fileNow)
				if slices.Contains(ok, action) {
					assert.NoError(t, err)
					assert.True(t, f.CanApply(action))
					return
				}
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				assert.False(t, f.CanApply(action))
			})
		}
	}
}

func TestMortgageFile_TerminalStatesAreStale(t *testing.T) {
	for _, status := range []valueobject.MortgageFileStatus{
		valueobject.MortgageStatusRejected,
		valueobject.MortgageStatusCancelled,
		valueobject.MortgageStatusRegistrationDone,
	} {
		f := advance(t, status)
		assert.True(t, f.Status().IsTerminal())
		_, err := f.Apply(model.TransitionInput{Action: valueobject.MortgageActionAccept}, fileNow)
		assert.ErrorIs(t, err, model.ErrStaleState, status.String())
	}
}
