package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

func payment(total, paid int64) model.SalePayment {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return model.ReconstructSalePayment("pay-1", "tenant-1", "sale-1", money.XOF,
		decimal.NewFromInt(total), decimal.NewFromInt(paid), 1, now, now)
}

func TestCanTransferToNotary(t *testing.T) {
	complete := &model.Sale{ID: "sale-1", Status: valueobject.SaleStatusPaymentComplete}

	tests := []struct {
		name    string
		payment model.SalePayment
		sale    *model.Sale
		want    bool
	}{
		{"paid and complete", payment(100, 100), complete, true},
		{"still owing", payment(100, 99), complete, false},
		{"no sale", payment(100, 100), nil, false},
		{"sale not complete", payment(100, 100), &model.Sale{Status: "en_cours"}, false},
		{"already transferred", payment(100, 100), &model.Sale{Status: valueobject.SaleStatusTransferred}, false},
		{"with notary", payment(100, 100), &model.Sale{Status: valueobject.SaleStatusWithNotary}, false},
		{"deed signed", payment(100, 100), &model.Sale{Status: valueobject.SaleStatusDeedSigned}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.CanTransferToNotary(tt.payment, tt.sale))
			d := service.EvaluateTransfer(tt.payment, tt.sale)
			assert.Equal(t, tt.want, d.Eligible)
			if !tt.want {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestPolicy(t *testing.T) {
	p := service.NewPolicy()

	assert.True(t, p.Allows([]string{"agence"}, valueobject.CapScheduleEditDue))
	assert.True(t, p.Allows([]string{"admin"}, valueobject.CapScheduleEditDue))
	assert.False(t, p.Allows([]string{"client"}, valueobject.CapScheduleEditDue))
	assert.False(t, p.Allows([]string{"notaire"}, valueobject.CapScheduleEditDue))
	assert.True(t, p.Allows([]string{"client", "agence"}, valueobject.CapPaymentRecord))
	assert.False(t, p.Allows(nil, valueobject.CapRead))

	assert.True(t, p.Allows([]string{"banque"}, valueobject.CapMortgageSubmit))
	assert.False(t, p.Allows([]string{"banque"}, valueobject.CapMortgageProcess))
	assert.True(t, p.Allows([]string{"notaire"}, valueobject.CapMortgageProcess))
	assert.False(t, p.Allows([]string{"notaire"}, valueobject.CapMortgageCancel))

	err := p.Authorize([]string{"client"}, valueobject.CapScheduleCreate)
	require.ErrorIs(t, err, model.ErrForbidden)
	var ferr *model.ForbiddenError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, valueobject.CapScheduleCreate, ferr.Capability)
}

func TestMortgageCapability(t *testing.T) {
	assert.Equal(t, valueobject.CapMortgageCancel, service.MortgageCapability(valueobject.MortgageActionCancel))
	assert.Equal(t, valueobject.CapMortgageProcess, service.MortgageCapability(valueobject.MortgageActionFinalize))
}
