package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// CreateClientRequest creates a client company record. When
// ProvisionLogin is set, a login-capable user is created alongside.
type CreateClientRequest struct {
	RazaoSocial    string           `json:"razaoSocial" binding:"required"`
	NomeFantasia   string           `json:"nomeFantasia"`
	CNPJ           string           `json:"cnpj" binding:"omitempty,cnpj"`
	Setor          domain.Setor     `json:"setor" binding:"required"`
	Email          string           `json:"email" binding:"omitempty,email"`
	Telefone       string           `json:"telefone"`
	Endereco       string           `json:"endereco"`
	Cidade         string           `json:"cidade"`
	Estado         string           `json:"estado"`
	CEP            string           `json:"cep"`
	ResponsibleID  *string          `json:"responsibleID"`
	MonthlyFee     *decimal.Decimal `json:"monthlyFee"`
	ProvisionLogin *ProvisionUserRequest `json:"provisionLogin"`
}

// UpdateClientRequest mutates a client; pointers distinguish omitted
// fields from zero values.
type UpdateClientRequest struct {
	RazaoSocial   *string          `json:"razaoSocial"`
	NomeFantasia  *string          `json:"nomeFantasia"`
	CNPJ          *string          `json:"cnpj"`
	Setor         *domain.Setor    `json:"setor"`
	Email         *string          `json:"email"`
	Telefone      *string          `json:"telefone"`
	Endereco      *string          `json:"endereco"`
	Cidade        *string          `json:"cidade"`
	Estado        *string          `json:"estado"`
	CEP           *string          `json:"cep"`
	ResponsibleID *string          `json:"responsibleID"`
	MonthlyFee    *decimal.Decimal `json:"monthlyFee"`
}

// ListClientsParams narrows the client listing.
type ListClientsParams struct {
	Setor  string `form:"setor"`
	Query  string `form:"q"`
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset,default=0"`
}

// ClientResponse is the API shape of a client.
type ClientResponse struct {
	ClientID      string          `json:"clientID"`
	RazaoSocial   string          `json:"razaoSocial"`
	NomeFantasia  string          `json:"nomeFantasia,omitempty"`
	CNPJ          string          `json:"cnpj,omitempty"`
	Setor         domain.Setor    `json:"setor"`
	Email         string          `json:"email,omitempty"`
	Telefone      string          `json:"telefone,omitempty"`
	Endereco      string          `json:"endereco,omitempty"`
	Cidade        string          `json:"cidade,omitempty"`
	Estado        string          `json:"estado,omitempty"`
	CEP           string          `json:"cep,omitempty"`
	ResponsibleID *string         `json:"responsibleID,omitempty"`
	MonthlyFee    decimal.Decimal `json:"monthlyFee"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToClientResponse converts a domain client to its API shape. The CNPJ
// is returned formatted for display.
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:      c.ClientID,
		RazaoSocial:   c.RazaoSocial,
		NomeFantasia:  c.NomeFantasia,
		CNPJ:          c.CNPJ,
		Setor:         c.Setor,
		Email:         c.Email,
		Telefone:      c.Telefone,
		Endereco:      c.Endereco,
		Cidade:        c.Cidade,
		Estado:        c.Estado,
		CEP:           c.CEP,
		ResponsibleID: c.ResponsibleID,
		MonthlyFee:    c.MonthlyFee,
		CreatedAt:     c.CreatedAt,
	}
}

// ToListClientsResponse converts a slice of clients.
func ToListClientsResponse(clients []domain.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out
}
