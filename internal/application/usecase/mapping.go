package usecase

import (
	"time"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// Clock returns the current time. Use cases take one so tests can pin "now".
type Clock func() time.Time

// SystemClock reports the current UTC time.
func SystemClock() time.Time { return time.Now().UTC() }

func toDrafts(in []dto.InstallmentInput) []model.InstallmentDraft {
	out := make([]model.InstallmentDraft, len(in))
	for i, inst := range in {
		out[i] = model.InstallmentDraft{
			ID:      inst.ID,
			DueDate: inst.DueDate,
			Amount:  inst.Amount,
			Notes:   inst.Notes,
		}
	}
	return out
}

func toScheduleResponse(s model.Schedule, now time.Time) dto.ScheduleResponse {
	insts := s.Installments()
	out := make([]dto.InstallmentResponse, len(insts))
	for i, inst := range insts {
		r := dto.InstallmentResponse{
			ID:       inst.ID,
			Position: inst.Position,
			DueDate:  inst.DueDate,
			Amount:   inst.Amount,
			Status:   model.DeriveInstallmentStatus(inst, now).String(),
			Notes:    inst.Notes,
		}
		if inst.Paid && !inst.ActualPaymentDate.IsZero() {
			paidAt := inst.ActualPaymentDate
			r.ActualPaymentDate = &paidAt
		}
		out[i] = r
	}
	return dto.ScheduleResponse{
		ID:              s.ID(),
		PaymentID:       s.PaymentID(),
		Mode:            s.Mode().String(),
		TotalAmount:     s.TotalAmount(),
		PaidAmount:      s.PaidAmount(),
		RemainingAmount: s.RemainingAmount(),
		Status:          s.Status().String(),
		Installments:    out,
		Version:         s.Version(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}

func toSalePaymentResponse(p model.SalePayment) dto.SalePaymentResponse {
	b := p.Balance()
	return dto.SalePaymentResponse{
		ID:              p.ID(),
		SaleID:          p.SaleID(),
		Currency:        p.Currency().Code(),
		TotalAmount:     b.Total(),
		PaidAmount:      b.Paid(),
		RemainingAmount: b.Remaining(),
		Status:          p.Status().String(),
		Version:         p.Version(),
	}
}

func toPartialPaymentResponse(pp model.PartialPayment) dto.PartialPaymentResponse {
	return dto.PartialPaymentResponse{
		ID:              pp.ID,
		Amount:          pp.Amount,
		ReceiptURL:      pp.ReceiptURL,
		ReceiptFilename: pp.ReceiptFilename,
		InstallmentID:   pp.InstallmentID,
		RecordedBy:      pp.RecordedBy,
		PaidAt:          pp.PaidAt,
	}
}

func toDocument(d dto.DocumentDTO) model.Document {
	return model.Document{URL: d.URL, Filename: d.Filename, RegistrationNumber: d.RegistrationNumber}
}

func fromDocument(d model.Document) dto.DocumentDTO {
	return dto.DocumentDTO{URL: d.URL, Filename: d.Filename, RegistrationNumber: d.RegistrationNumber}
}

var allMortgageActions = []valueobject.MortgageAction{
	valueobject.MortgageActionAccept,
	valueobject.MortgageActionReject,
	valueobject.MortgageActionCancel,
	valueobject.MortgageActionFormalize,
	valueobject.MortgageActionRegisterInscription,
	valueobject.MortgageActionFinalize,
}

func toMortgageFileResponse(f model.MortgageFile) dto.MortgageFileResponse {
	bank := f.BankDocuments()
	notary := f.NotaryDocuments()

	resp := dto.MortgageFileResponse{
		ID:                 f.ID(),
		BankID:             f.BankID(),
		NotaryID:           f.NotaryID(),
		BorrowerName:       f.BorrowerName(),
		CreditAmount:       f.CreditAmount(),
		Currency:           f.Currency().Code(),
		Status:             f.Status().String(),
		TitleDeed:          fromDocument(bank.TitleDeed),
		CreditNotification: fromDocument(bank.CreditNotification),
		RejectionReason:    f.RejectionReason(),
		DeedNumber:         f.DeedNumber(),
		Comments:           []dto.CommentResponse{},
		AllowedActions:     []string{},
		Version:            f.Version(),
		CreatedAt:          f.CreatedAt(),
		UpdatedAt:          f.UpdatedAt(),
	}
	if notary.CreditConvention.Present() {
		doc := fromDocument(notary.CreditConvention)
		resp.Convention = &doc
	}
	if notary.MortgageDeed.Present() {
		doc := fromDocument(notary.MortgageDeed)
		resp.Deed = &doc
	}
	for _, c := range f.Comments() {
		resp.Comments = append(resp.Comments, dto.CommentResponse{
			Action:   c.Action.String(),
			AuthorID: c.AuthorID,
			Text:     c.Text,
			At:       c.At,
		})
	}
	for _, a := range allMortgageActions {
		if f.CanApply(a) {
			resp.AllowedActions = append(resp.AllowedActions, a.String())
		}
	}
	return resp
}
