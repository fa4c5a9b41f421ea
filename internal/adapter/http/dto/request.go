package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
)

// CreatePartyRequest represents a request to create an account, client,
// supplier or agent.
type CreatePartyRequest struct {
	ProjectID      string `json:"projectId"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Currency       string `json:"currency"`
	OpeningBalance int64  `json:"openingBalance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePartyRequest) ToUseCaseInput(kind domain.PartyKind) (usecase.CreatePartyInput, error) {
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return usecase.CreatePartyInput{}, err
	}
	return usecase.CreatePartyInput{
		Kind:           kind,
		ProjectID:      r.ProjectID,
		Name:           r.Name,
		PhoneNumber:    r.PhoneNumber,
		Currency:       currency,
		OpeningBalance: r.OpeningBalance,
	}, nil
}

// UpdatePartyRequest represents a partial party update. Absent fields are
// left unchanged.
type UpdatePartyRequest struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdatePartyRequest) ToUseCaseInput() (usecase.UpdatePartyInput, error) {
	in := usecase.UpdatePartyInput{Name: r.Name, PhoneNumber: r.PhoneNumber}
	if r.Currency != nil {
		c, err := domain.ParseCurrency(*r.Currency)
		if err != nil {
			return usecase.UpdatePartyInput{}, err
		}
		in.Currency = &c
	}
	return in, nil
}

// money holds the fields every event carries.
type money struct {
	ProjectID string          `json:"projectId"`
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	Date      string          `json:"date"`
}

func (m money) parse() (domain.Currency, domain.Date, error) {
	currency, err := domain.ParseCurrency(m.Currency)
	if err != nil {
		return "", domain.Date{}, err
	}
	if strings.TrimSpace(m.Date) == "" {
		return "", domain.Date{}, fmt.Errorf("%w: date", domain.ErrMissingField)
	}
	date, err := domain.ParseDate(m.Date)
	if err != nil {
		return "", domain.Date{}, err
	}
	return currency, date, nil
}

// rateOrOne defaults a missing KES rate to 1.
func rateOrOne(rate decimal.Decimal, currency domain.Currency) decimal.Decimal {
	if rate.IsZero() && currency == domain.BaseCurrency {
		return decimal.NewFromInt(1)
	}
	return rate
}

// TransactionRequest represents a request to create or update a transaction.
type TransactionRequest struct {
	money
	From        string `json:"from"`
	FromName    string `json:"fromName,omitempty"`
	To          string `json:"to"`
	ToName      string `json:"toName,omitempty"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
	TransType   string `json:"transType"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransactionRequest) ToUseCaseInput() (usecase.CreateTransactionInput, error) {
	currency, date, err := r.parse()
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}
	source, err := domain.ParsePartyKind(r.Source)
	if err != nil {
		return usecase.CreateTransactionInput{}, fmt.Errorf("source: %w", err)
	}
	destination, err := domain.ParsePartyKind(r.Destination)
	if err != nil {
		return usecase.CreateTransactionInput{}, fmt.Errorf("destination: %w", err)
	}
	transType, err := domain.ParseTransType(r.TransType)
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}
	return usecase.CreateTransactionInput{
		ProjectID:   r.ProjectID,
		From:        r.From,
		FromName:    r.FromName,
		To:          r.To,
		ToName:      r.ToName,
		Source:      source,
		Destination: destination,
		Amount:      r.Amount,
		Currency:    currency,
		Rate:        rateOrOne(r.Rate, currency),
		TransType:   transType,
		Date:        date,
		Description: r.Description,
	}, nil
}

// SaleRequest represents a request to create or update a sale.
type SaleRequest struct {
	money
	ClientID   string `json:"clientId"`
	AgentID    string `json:"agentId,omitempty"`
	HouseNo    string `json:"houseNo"`
	Price      int64  `json:"price"`
	Commission int64  `json:"commission"`
}

// ToUseCaseInput converts to use case input.
func (r *SaleRequest) ToUseCaseInput() (usecase.CreateSaleInput, error) {
	currency, date, err := r.parse()
	if err != nil {
		return usecase.CreateSaleInput{}, err
	}
	return usecase.CreateSaleInput{
		ProjectID:  r.ProjectID,
		ClientID:   r.ClientID,
		AgentID:    r.AgentID,
		HouseNo:    r.HouseNo,
		Price:      r.Price,
		Commission: r.Commission,
		Currency:   currency,
		Rate:       rateOrOne(r.Rate, currency),
		Date:       date,
	}, nil
}

// InvoiceRequest represents a request to create or update an invoice.
type InvoiceRequest struct {
	money
	SupplierID  string `json:"supplierId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *InvoiceRequest) ToUseCaseInput() (usecase.CreateInvoiceInput, error) {
	currency, date, err := r.parse()
	if err != nil {
		return usecase.CreateInvoiceInput{}, err
	}
	return usecase.CreateInvoiceInput{
		ProjectID:   r.ProjectID,
		SupplierID:  r.SupplierID,
		Amount:      r.Amount,
		Currency:    currency,
		Rate:        rateOrOne(r.Rate, currency),
		Date:        date,
		Description: r.Description,
	}, nil
}

// ExpenseRequest represents a request to create or update an expense.
type ExpenseRequest struct {
	money
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName,omitempty"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ExpenseRequest) ToUseCaseInput() (usecase.CreateExpenseInput, error) {
	currency, date, err := r.parse()
	if err != nil {
		return usecase.CreateExpenseInput{}, err
	}
	return usecase.CreateExpenseInput{
		ProjectID:   r.ProjectID,
		AccountID:   r.AccountID,
		AccountName: r.AccountName,
		Amount:      r.Amount,
		Currency:    currency,
		Rate:        rateOrOne(r.Rate, currency),
		Date:        date,
		Description: r.Description,
	}, nil
}
