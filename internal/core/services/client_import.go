package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/utils"
)

// importChunkSize is the fixed insert batch size; a failed chunk loses
// only its own rows.
const importChunkSize = 10

// normalizeHeader lowercases a spreadsheet header and strips accents so
// "Razão Social" and "razao social" map to the same key.
func normalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, h)
	if err != nil {
		out = h
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// importRow is one parsed spreadsheet row with its 1-based sheet index.
type importRow struct {
	sheetRow int
	client   domain.Client
}

// ImportClients parses an .xlsx upload and inserts valid rows in fixed
// 10-row chunks. Rows missing a name are skipped as errors; a failed
// chunk records its rows as failed and later chunks still run.
func (s *clientService) ImportClients(ctx context.Context, actor *domain.DerivedUser, xlsx []byte) (*dto.ImportResult, error) {
	caps := s.authz.CapabilitiesFor(actor)
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	f, err := excelize.OpenReader(bytes.NewReader(xlsx))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", apperrors.ErrValidation)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets: %w", apperrors.ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return &dto.ImportResult{}, nil
	}

	colIndex := map[string]int{}
	for i, h := range rows[0] {
		colIndex[normalizeHeader(h)] = i
	}
	cell := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := colIndex[n]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	result := &dto.ImportResult{}
	now := time.Now()
	valid := []importRow{}

	for i, row := range rows[1:] {
		sheetRow := i + 2 // 1-based, after the header
		result.TotalRows++

		razao := cell(row, "razao social")
		nome := cell(row, "nome fantasia", "nome")
		if razao == "" && nome == "" {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: sheetRow, Reason: "missing razao social and nome"})
			continue
		}
		if razao == "" {
			razao = nome
		}

		client := domain.Client{
			ClientID:     uuid.NewString(),
			RazaoSocial:  razao,
			NomeFantasia: nome,
			Endereco:     cell(row, "endereco"),
			Cidade:       cell(row, "cidade"),
			Estado:       cell(row, "estado"),
			CEP:          cell(row, "cep"),
			MonthlyFee:   decimal.Zero,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actor.UserID,
			},
		}

		if cnpj := cell(row, "cnpj"); cnpj != "" {
			if !utils.ValidCNPJ(cnpj) {
				result.Errors = append(result.Errors, dto.ImportRowError{Row: sheetRow, Reason: fmt.Sprintf("invalid CNPJ %q", cnpj)})
				continue
			}
			client.CNPJ = utils.FormatCNPJ(cnpj)
		}

		// Contato is a single free-form column: phone-shaped values go
		// to telefone, anything with an @ goes to email.
		if contato := cell(row, "contato"); contato != "" {
			if digits := utils.OnlyDigits(contato); len(digits) >= 10 {
				client.Telefone = contato
			} else if strings.Contains(contato, "@") {
				client.Email = contato
			}
		}
		if email := cell(row, "email"); email != "" {
			client.Email = email
		}
		if tel := cell(row, "telefone"); tel != "" {
			client.Telefone = tel
		}

		setor := domain.SetorCadastro
		if raw := cell(row, "setor"); raw != "" {
			candidate := domain.Setor(normalizeHeader(raw))
			candidate = domain.Setor(strings.ToUpper(string(candidate)))
			if !domain.ValidSetor(candidate) {
				result.Errors = append(result.Errors, dto.ImportRowError{Row: sheetRow, Reason: fmt.Sprintf("invalid setor %q", raw)})
				continue
			}
			setor = candidate
		}
		if !caps.CanAccessSetor(setor) {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: sheetRow, Reason: fmt.Sprintf("setor %s not permitted", setor)})
			continue
		}
		client.Setor = setor

		if fee := cell(row, "honorarios", "honorario", "mensalidade"); fee != "" {
			parsed, err := decimal.NewFromString(strings.ReplaceAll(strings.ReplaceAll(fee, ".", ""), ",", "."))
			if err == nil && !parsed.IsNegative() {
				client.MonthlyFee = parsed
			}
		}

		valid = append(valid, importRow{sheetRow: sheetRow, client: client})
	}

	for start := 0; start < len(valid); start += importChunkSize {
		end := start + importChunkSize
		if end > len(valid) {
			end = len(valid)
		}
		chunk := valid[start:end]

		clients := make([]domain.Client, len(chunk))
		for i, r := range chunk {
			clients[i] = r.client
		}
		if err := s.clientRepo.SaveClients(ctx, clients); err != nil {
			slog.WarnContext(ctx, "import chunk failed",
				slog.Int("first_row", chunk[0].sheetRow),
				slog.Int("rows", len(chunk)),
				slog.String("error", err.Error()))
			for _, r := range chunk {
				result.Errors = append(result.Errors, dto.ImportRowError{Row: r.sheetRow, Reason: "insert batch failed"})
			}
			continue
		}
		result.Imported += len(chunk)
	}

	return result, nil
}
