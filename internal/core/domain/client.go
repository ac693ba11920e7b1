package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setor is the business department tag restricting which records an
// admin may act on. TODOS and COORDENACAO grant cross-sector access.
type Setor string

const (
	SetorPessoal      Setor = "PESSOAL"
	SetorFiscal       Setor = "FISCAL"
	SetorContabil     Setor = "CONTABIL"
	SetorPlanejamento Setor = "PLANEJAMENTO"
	SetorTodos        Setor = "TODOS"
	SetorCadastro     Setor = "CADASTRO"
	SetorCoordenacao  Setor = "COORDENACAO"
)

// ValidSetor reports whether s is a member of the closed setor enumeration.
func ValidSetor(s Setor) bool {
	switch s {
	case SetorPessoal, SetorFiscal, SetorContabil, SetorPlanejamento,
		SetorTodos, SetorCadastro, SetorCoordenacao:
		return true
	}
	return false
}

// Client represents a company serviced by the firm.
type Client struct {
	ClientID      string          `json:"clientID"` // Primary Key (UUID)
	RazaoSocial   string          `json:"razaoSocial"`
	NomeFantasia  string          `json:"nomeFantasia,omitempty"`
	CNPJ          string          `json:"cnpj,omitempty"`
	Setor         Setor           `json:"setor"`
	Email         string          `json:"email,omitempty"`
	Telefone      string          `json:"telefone,omitempty"`
	Endereco      string          `json:"endereco,omitempty"`
	Cidade        string          `json:"cidade,omitempty"`
	Estado        string          `json:"estado,omitempty"`
	CEP           string          `json:"cep,omitempty"`
	ResponsibleID *string         `json:"responsibleID,omitempty"` // FK -> users.user_id
	MonthlyFee    decimal.Decimal `json:"monthlyFee"`              // honorários
	UserID        *string         `json:"userID,omitempty"`        // login identity provisioned for the client, if any
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
