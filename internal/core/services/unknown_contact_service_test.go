package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/services"
)

// pendingContacts builds a repo holding n contacts whose listing pages
// like the real one: at most 50 newest rows per call.
func pendingContacts(n int) *mockUnknownContactRepository {
	all := make([]domain.UnknownContact, n)
	for i := range all {
		all[i] = domain.UnknownContact{
			ContactID:     fmt.Sprintf("c%d", n-i),
			PhoneNumber:   fmt.Sprintf("55319%08d", n-i),
			LastMessageAt: time.Now().Add(-time.Duration(i) * time.Minute),
		}
	}
	return &mockUnknownContactRepository{
		FindContactsFn: func(ctx context.Context, limit, offset int) ([]domain.UnknownContact, error) {
			if limit <= 0 || limit > 50 {
				limit = 50
			}
			if offset >= len(all) {
				return []domain.UnknownContact{}, nil
			}
			end := offset + limit
			if end > len(all) {
				end = len(all)
			}
			return all[offset:end], nil
		},
		FindContactByIDFn: func(ctx context.Context, contactID string) (*domain.UnknownContact, error) {
			for i := range all {
				if all[i].ContactID == contactID {
					c := all[i]
					return &c, nil
				}
			}
			return nil, apperrors.ErrNotFound
		},
	}
}

func TestResolveContactBeyondFirstPage(t *testing.T) {
	unknown := pendingContacts(51)
	deleted := ""
	unknown.DeleteContactFn = func(ctx context.Context, contactID string) error {
		deleted = contactID
		return nil
	}

	var updated domain.Client
	clients := &mockClientRepository{
		FindClientByIDFn: func(ctx context.Context, clientID string) (*domain.Client, error) {
			return &domain.Client{ClientID: clientID, Setor: domain.SetorContabil}, nil
		},
		UpdateClientFn: func(ctx context.Context, client domain.Client) error {
			updated = client
			return nil
		},
	}
	svc := services.NewUnknownContactService(unknown, clients, services.NewAuthzService())

	// c1 is the oldest of 51 pending contacts, outside the 50-row page
	err := svc.ResolveContact(context.Background(), adminWithSetor(domain.SetorContabil), "c1", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "5531900000001", updated.Telefone)
	assert.Equal(t, "c1", deleted)
}

func TestResolveContactUnknownID(t *testing.T) {
	svc := services.NewUnknownContactService(pendingContacts(3), &mockClientRepository{}, services.NewAuthzService())

	err := svc.ResolveContact(context.Background(), adminWithSetor(domain.SetorContabil), "missing", "client-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveContactOutsideActorSector(t *testing.T) {
	clients := &mockClientRepository{
		FindClientByIDFn: func(ctx context.Context, clientID string) (*domain.Client, error) {
			return &domain.Client{ClientID: clientID, Setor: domain.SetorContabil}, nil
		},
	}
	svc := services.NewUnknownContactService(pendingContacts(3), clients, services.NewAuthzService())

	err := svc.ResolveContact(context.Background(), adminWithSetor(domain.SetorFiscal), "c1", "client-1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
