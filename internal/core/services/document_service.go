package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/platform/storage"
)

const downloadURLExpiry = 15 * time.Minute

// documentService implements DocumentSvcFacade. File bytes live in
// object storage; the repository holds only metadata and the object key.
type documentService struct {
	documentRepo ports.DocumentRepository
	store        storage.ObjectStore
	authz        ports.AuthzSvcFacade
}

func NewDocumentService(documentRepo ports.DocumentRepository, store storage.ObjectStore, authz ports.AuthzSvcFacade) ports.DocumentSvcFacade {
	return &documentService{documentRepo: documentRepo, store: store, authz: authz}
}

// Upload stores the file under a sanitized collision-resistant key and
// records the metadata. The document is scoped to the uploader's
// sector; cross-sector admins upload under CADASTRO.
func (s *documentService) Upload(ctx context.Context, actor *domain.DerivedUser, clientID *string, filename, category, reference string, urgent bool, data []byte) (*domain.Document, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file: %w", apperrors.ErrValidation)
	}
	if s.store == nil {
		return nil, fmt.Errorf("object storage not configured: %w", apperrors.ErrConfiguration)
	}

	setor := domain.SetorCadastro
	if actor.Setor != nil {
		setor = *actor.Setor
	}

	key, err := s.store.Upload(ctx, string(setor), filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	now := time.Now()
	doc := domain.Document{
		DocumentID:  uuid.NewString(),
		ClientID:    clientID,
		Setor:       setor,
		Name:        storage.SanitizeFilename(filename),
		SizeBytes:   int64(len(data)),
		Category:    category,
		Reference:   reference,
		Status:      domain.DocumentPending,
		StoragePath: key,
		Urgent:      urgent,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.documentRepo.SaveDocument(ctx, doc); err != nil {
		// Orphaned object; remove it so storage does not accumulate.
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}
	return &doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, actor *domain.DerivedUser, documentID string) (*domain.Document, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CapabilitiesFor(actor).CanAccessSetor(doc.Setor) {
		return nil, apperrors.ErrForbidden
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, actor *domain.DerivedUser, params dto.ListDocumentsParams) ([]domain.Document, error) {
	caps := s.authz.CapabilitiesFor(actor)
	var setores []domain.Setor
	if !caps.CanViewAllSectors {
		if len(caps.VisibleSetores) == 0 {
			return []domain.Document{}, nil
		}
		setores = caps.VisibleSetores
	}
	var clientID *string
	if params.ClientID != "" {
		clientID = &params.ClientID
	}
	return s.documentRepo.FindDocuments(ctx, setores, clientID, params.Limit, params.Offset)
}

func (s *documentService) UpdateDocument(ctx context.Context, actor *domain.DerivedUser, documentID string, req dto.UpdateDocumentRequest) (*domain.Document, error) {
	doc, err := s.GetDocument(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}
	if req.Category != nil {
		doc.Category = *req.Category
	}
	if req.Reference != nil {
		doc.Reference = *req.Reference
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.DocumentPending, domain.DocumentReviewed, domain.DocumentArchived:
		default:
			return nil, fmt.Errorf("invalid document status %q: %w", *req.Status, apperrors.ErrValidation)
		}
		doc.Status = *req.Status
	}
	if req.Urgent != nil {
		doc.Urgent = *req.Urgent
	}
	doc.LastUpdatedAt = time.Now()
	doc.LastUpdatedBy = actor.UserID
	if err := s.documentRepo.UpdateDocument(ctx, *doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, actor *domain.DerivedUser, documentID string) error {
	doc, err := s.GetDocument(ctx, actor, documentID)
	if err != nil {
		return err
	}
	if err := s.documentRepo.MarkDocumentDeleted(ctx, documentID, time.Now(), actor.UserID); err != nil {
		return err
	}
	if s.store != nil {
		_ = s.store.Delete(ctx, doc.StoragePath)
	}
	return nil
}

func (s *documentService) DownloadURL(ctx context.Context, actor *domain.DerivedUser, documentID string) (string, time.Time, error) {
	doc, err := s.GetDocument(ctx, actor, documentID)
	if err != nil {
		return "", time.Time{}, err
	}
	if s.store == nil {
		return "", time.Time{}, fmt.Errorf("object storage not configured: %w", apperrors.ErrConfiguration)
	}
	url, err := s.store.PresignDownload(ctx, doc.StoragePath, downloadURLExpiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return url, time.Now().Add(downloadURLExpiry), nil
}
