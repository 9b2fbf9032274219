package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/repository"
)

// Store vocabulary for installment status.
const (
	statusOpen = "ABERTA"
	statusPaid = "PAGA"
)

type installmentBody struct {
	ID         domain.ID   `json:"id"`
	ContractID domain.ID   `json:"aluguel_id"`
	PropertyID domain.ID   `json:"imovelId"`
	Sequence   int         `json:"numeroParcela,omitempty"`
	DueDate    *string     `json:"dataVencimento"`
	Amount     json.Number `json:"valor"`
	Status     string      `json:"situacao"`
	PaidAt     *string     `json:"dataPagamento"`
}

type installmentRepository struct {
	client *Client
}

// NewInstallmentRepository returns the store-backed InstallmentRepository.
func NewInstallmentRepository(client *Client) repository.InstallmentRepository {
	return &installmentRepository{client: client}
}

func (r *installmentRepository) List(ctx context.Context) ([]domain.Installment, error) {
	return r.list(ctx, resourceInstallments)
}

func (r *installmentRepository) ListDue(ctx context.Context) ([]domain.Installment, error) {
	return r.list(ctx, resourceInstallments+"/vencimento")
}

func (r *installmentRepository) list(ctx context.Context, path string) ([]domain.Installment, error) {
	var body []json.RawMessage
	if err := r.client.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return decodeList(body, decodeInstallment)
}

func (r *installmentRepository) Save(ctx context.Context, i domain.Installment) (domain.Installment, error) {
	var rec record
	if err := r.client.post(ctx, resourceInstallments, encodeInstallment(i), &rec); err != nil {
		return domain.Installment{}, err
	}
	if len(rec) == 0 {
		return i, nil
	}
	return decodeInstallment(rec)
}

func (r *installmentRepository) Delete(ctx context.Context, id domain.ID) error {
	if !id.IsSet() {
		return domain.ErrInvalidPayload
	}
	err := r.client.delete(ctx, itemPath(resourceInstallments, id))
	if isNotFound(err) {
		return domain.ErrInstallmentNotFound
	}
	return err
}

func encodeInstallment(i domain.Installment) installmentBody {
	body := installmentBody{
		ID:         i.ID,
		ContractID: i.ContractID,
		PropertyID: i.PropertyID,
		Sequence:   i.Sequence,
		DueDate:    wireDate(i.DueDate),
		Amount:     wireAmount(i.Amount),
		Status:     statusOpen,
	}
	if i.Status == domain.InstallmentPaid {
		body.Status = statusPaid
	}
	if i.PaidAt != nil {
		s := i.PaidAt.UTC().Format(time.RFC3339)
		body.PaidAt = &s
	}
	return body
}

func decodeInstallment(r record) (domain.Installment, error) {
	var (
		i   domain.Installment
		err error
	)
	if i.ID, err = r.id("id"); err != nil {
		return domain.Installment{}, err
	}
	if i.ContractID, err = r.id("aluguel_id", "aluguelId"); err != nil {
		return domain.Installment{}, err
	}
	if i.PropertyID, err = r.id("imovelId", "imovel_id"); err != nil {
		return domain.Installment{}, err
	}
	if i.Sequence, err = r.integer("numeroParcela"); err != nil {
		return domain.Installment{}, err
	}
	if i.DueDate, err = r.date("dataVencimento", "vencimento"); err != nil {
		return domain.Installment{}, err
	}
	if i.Amount, err = r.amount("valor", "valorParcela"); err != nil {
		return domain.Installment{}, err
	}
	if i.Status, err = decodeInstallmentStatus(r); err != nil {
		return domain.Installment{}, err
	}
	if s, ok := r.str("dataPagamento"); ok {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			if t, err = domain.ParseDate(s); err != nil {
				return domain.Installment{}, fmt.Errorf("field dataPagamento: %w", err)
			}
		}
		i.PaidAt = &t
	}
	return i, nil
}

func decodeInstallmentStatus(r record) (domain.InstallmentStatus, error) {
	s, ok := r.str("situacao", "status")
	if !ok {
		return domain.InstallmentOpen, nil
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ABERTA", "ABERTO", "OPEN":
		return domain.InstallmentOpen, nil
	case "PAGA", "PAGO", "PAID":
		return domain.InstallmentPaid, nil
	default:
		return "", fmt.Errorf("unknown installment status %q", s)
	}
}
