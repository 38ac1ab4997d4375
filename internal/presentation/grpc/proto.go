package grpc

// proto.go defines the gRPC server interface for settlement.v1.SettlementService.
// Messages travel as JSON through jsonCodec, so the descriptor is written by
// hand instead of generated from a .proto file.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dillanci/settlement/internal/application/dto"
)

const serviceName = "settlement.v1.SettlementService"

// ---------------------------------------------------------------------------
// Request messages
// ---------------------------------------------------------------------------

// Amounts are decimal strings and dates are YYYY-MM-DD (RFC 3339 is accepted
// too) so that no precision is lost on the wire.

type InstallmentMessage struct {
	ID      string  `json:"id,omitempty"`
	DueDate string  `json:"due_date"`
	Amount  string  `json:"amount"`
	Notes   *string `json:"notes,omitempty"`
}

type GetScheduleRequest struct {
	PaymentID string `json:"payment_id"`
}

type PreviewScheduleRequest struct {
	PaymentID            string `json:"payment_id"`
	Count                int32  `json:"count"`
	Frequency            string `json:"frequency"`
	FirstDueDate         string `json:"first_due_date"`
	AmountPerInstallment string `json:"amount_per_installment"`
}

type CreateScheduleRequest struct {
	PaymentID    string               `json:"payment_id"`
	Mode         string               `json:"mode"`
	Installments []InstallmentMessage `json:"installments"`
}

type ReplaceScheduleRequest struct {
	ScheduleID   string               `json:"schedule_id"`
	Installments []InstallmentMessage `json:"installments"`
}

type MarkInstallmentPaidRequest struct {
	ScheduleID      string `json:"schedule_id"`
	InstallmentID   string `json:"installment_id"`
	ReceiptURL      string `json:"receipt_url,omitempty"`
	ReceiptFilename string `json:"receipt_filename,omitempty"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`
}

type OpenSalePaymentRequest struct {
	SaleID      string `json:"sale_id,omitempty"`
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
}

type GetSalePaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

type RecordPartialPaymentRequest struct {
	PaymentID       string `json:"payment_id"`
	Amount          string `json:"amount"`
	ReceiptURL      string `json:"receipt_url,omitempty"`
	ReceiptFilename string `json:"receipt_filename,omitempty"`
	InstallmentID   string `json:"installment_id,omitempty"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`
}

type ListPartialPaymentsRequest struct {
	PaymentID string `json:"payment_id"`
}

type GetTransferEligibilityRequest struct {
	PaymentID string `json:"payment_id"`
}

type TransferToNotaryRequest struct {
	PaymentID string `json:"payment_id"`
	NotaryID  string `json:"notary_id"`
}

type SubmitMortgageFileRequest struct {
	BankID             string          `json:"bank_id"`
	NotaryID           string          `json:"notary_id"`
	BorrowerName       string          `json:"borrower_name"`
	CreditAmount       string          `json:"credit_amount"`
	Currency           string          `json:"currency"`
	TitleDeed          dto.DocumentDTO `json:"titre_propriete"`
	CreditNotification dto.DocumentDTO `json:"notification_credit"`
}

type GetMortgageFileRequest struct {
	FileID string `json:"file_id"`
}

type ListMortgageFilesRequest struct {
	BankID   string `json:"bank_id,omitempty"`
	NotaryID string `json:"notary_id,omitempty"`
	Status   string `json:"statut,omitempty"`
}

type TransitionMortgageFileRequest struct {
	FileID         string          `json:"file_id"`
	Action         string          `json:"action"`
	ExpectedStatus string          `json:"expected_status,omitempty"`
	Motif          string          `json:"motif,omitempty"`
	Convention     dto.DocumentDTO `json:"convention_ouverture_credit"`
	Deed           dto.DocumentDTO `json:"acte_hypothecaire"`
	DeedNumber     string          `json:"numero_acte,omitempty"`
	Comment        string          `json:"comment,omitempty"`
}

// Response messages are the application DTOs; their JSON form is the wire form.
type (
	GetScheduleResponse          = dto.GetScheduleResponse
	PreviewScheduleResponse      = dto.PreviewScheduleResponse
	ScheduleResponse             = dto.ScheduleResponse
	SalePaymentResponse          = dto.SalePaymentResponse
	RecordPartialPaymentResponse = dto.RecordPartialPaymentResponse
	ListPartialPaymentsResponse  = dto.ListPartialPaymentsResponse
	TransferEligibilityResponse  = dto.TransferEligibilityResponse
	TransferResponse             = dto.TransferResponse
	MortgageFileResponse         = dto.MortgageFileResponse
	ListMortgageFilesResponse    = dto.ListMortgageFilesResponse
)

// ---------------------------------------------------------------------------
// Server interface
// ---------------------------------------------------------------------------

// SettlementServiceServer is the server API for SettlementService.
type SettlementServiceServer interface {
	GetSchedule(context.Context, *GetScheduleRequest) (*GetScheduleResponse, error)
	PreviewSchedule(context.Context, *PreviewScheduleRequest) (*PreviewScheduleResponse, error)
	CreateSchedule(context.Context, *CreateScheduleRequest) (*ScheduleResponse, error)
	ReplaceSchedule(context.Context, *ReplaceScheduleRequest) (*ScheduleResponse, error)
	MarkInstallmentPaid(context.Context, *MarkInstallmentPaidRequest) (*ScheduleResponse, error)
	OpenSalePayment(context.Context, *OpenSalePaymentRequest) (*SalePaymentResponse, error)
	GetSalePayment(context.Context, *GetSalePaymentRequest) (*SalePaymentResponse, error)
	RecordPartialPayment(context.Context, *RecordPartialPaymentRequest) (*RecordPartialPaymentResponse, error)
	ListPartialPayments(context.Context, *ListPartialPaymentsRequest) (*ListPartialPaymentsResponse, error)
	GetTransferEligibility(context.Context, *GetTransferEligibilityRequest) (*TransferEligibilityResponse, error)
	TransferToNotary(context.Context, *TransferToNotaryRequest) (*TransferResponse, error)
	SubmitMortgageFile(context.Context, *SubmitMortgageFileRequest) (*MortgageFileResponse, error)
	GetMortgageFile(context.Context, *GetMortgageFileRequest) (*MortgageFileResponse, error)
	ListMortgageFiles(context.Context, *ListMortgageFilesRequest) (*ListMortgageFilesResponse, error)
	TransitionMortgageFile(context.Context, *TransitionMortgageFileRequest) (*MortgageFileResponse, error)
	mustEmbedUnimplementedSettlementServiceServer()
}

// UnimplementedSettlementServiceServer provides forward-compatible default implementations.
type UnimplementedSettlementServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedSettlementServiceServer) GetSchedule(context.Context, *GetScheduleRequest) (*GetScheduleResponse, error) {
	return nil, unimplemented("GetSchedule")
}
func (UnimplementedSettlementServiceServer) PreviewSchedule(context.Context, *PreviewScheduleRequest) (*PreviewScheduleResponse, error) {
	return nil, unimplemented("PreviewSchedule")
}
func (UnimplementedSettlementServiceServer) CreateSchedule(context.Context, *CreateScheduleRequest) (*ScheduleResponse, error) {
	return nil, unimplemented("CreateSchedule")
}
func (UnimplementedSettlementServiceServer) ReplaceSchedule(context.Context, *ReplaceScheduleRequest) (*ScheduleResponse, error) {
	return nil, unimplemented("ReplaceSchedule")
}
func (UnimplementedSettlementServiceServer) MarkInstallmentPaid(context.Context, *MarkInstallmentPaidRequest) (*ScheduleResponse, error) {
	return nil, unimplemented("MarkInstallmentPaid")
}
func (UnimplementedSettlementServiceServer) OpenSalePayment(context.Context, *OpenSalePaymentRequest) (*SalePaymentResponse, error) {
	return nil, unimplemented("OpenSalePayment")
}
func (UnimplementedSettlementServiceServer) GetSalePayment(context.Context, *GetSalePaymentRequest) (*SalePaymentResponse, error) {
	return nil, unimplemented("GetSalePayment")
}
func (UnimplementedSettlementServiceServer) RecordPartialPayment(context.Context, *RecordPartialPaymentRequest) (*RecordPartialPaymentResponse, error) {
	return nil, unimplemented("RecordPartialPayment")
}
func (UnimplementedSettlementServiceServer) ListPartialPayments(context.Context, *ListPartialPaymentsRequest) (*ListPartialPaymentsResponse, error) {
	return nil, unimplemented("ListPartialPayments")
}
func (UnimplementedSettlementServiceServer) GetTransferEligibility(context.Context, *GetTransferEligibilityRequest) (*TransferEligibilityResponse, error) {
	return nil, unimplemented("GetTransferEligibility")
}
func (UnimplementedSettlementServiceServer) TransferToNotary(context.Context, *TransferToNotaryRequest) (*TransferResponse, error) {
	return nil, unimplemented("TransferToNotary")
}
func (UnimplementedSettlementServiceServer) SubmitMortgageFile(context.Context, *SubmitMortgageFileRequest) (*MortgageFileResponse, error) {
	return nil, unimplemented("SubmitMortgageFile")
}
func (UnimplementedSettlementServiceServer) GetMortgageFile(context.Context, *GetMortgageFileRequest) (*MortgageFileResponse, error) {
	return nil, unimplemented("GetMortgageFile")
}
func (UnimplementedSettlementServiceServer) ListMortgageFiles(context.Context, *ListMortgageFilesRequest) (*ListMortgageFilesResponse, error) {
	return nil, unimplemented("ListMortgageFiles")
}
func (UnimplementedSettlementServiceServer) TransitionMortgageFile(context.Context, *TransitionMortgageFileRequest) (*MortgageFileResponse, error) {
	return nil, unimplemented("TransitionMortgageFile")
}
func (UnimplementedSettlementServiceServer) mustEmbedUnimplementedSettlementServiceServer() {}

// RegisterSettlementServiceServer registers srv with the gRPC server.
func RegisterSettlementServiceServer(s grpclib.ServiceRegistrar, srv SettlementServiceServer) {
	s.RegisterService(&settlementServiceDesc, srv)
}

var settlementServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SettlementServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		method("GetSchedule", SettlementServiceServer.GetSchedule),
		method("PreviewSchedule", SettlementServiceServer.PreviewSchedule),
		method("CreateSchedule", SettlementServiceServer.CreateSchedule),
		method("ReplaceSchedule", SettlementServiceServer.ReplaceSchedule),
		method("MarkInstallmentPaid", SettlementServiceServer.MarkInstallmentPaid),
		method("OpenSalePayment", SettlementServiceServer.OpenSalePayment),
		method("GetSalePayment", SettlementServiceServer.GetSalePayment),
		method("RecordPartialPayment", SettlementServiceServer.RecordPartialPayment),
		method("ListPartialPayments", SettlementServiceServer.ListPartialPayments),
		method("GetTransferEligibility", SettlementServiceServer.GetTransferEligibility),
		method("TransferToNotary", SettlementServiceServer.TransferToNotary),
		method("SubmitMortgageFile", SettlementServiceServer.SubmitMortgageFile),
		method("GetMortgageFile", SettlementServiceServer.GetMortgageFile),
		method("ListMortgageFiles", SettlementServiceServer.ListMortgageFiles),
		method("TransitionMortgageFile", SettlementServiceServer.TransitionMortgageFile),
	},
	Streams: []grpclib.StreamDesc{},
}

// method builds the unary descriptor entry for one RPC, decoding into Req and
// routing through the interceptor chain like generated code does.
func method[Req, Resp any](
	name string,
	call func(SettlementServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SettlementServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(SettlementServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
