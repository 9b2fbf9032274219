package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/repository"
)

type contractBody struct {
	ID             domain.ID   `json:"id"`
	PropertyID     domain.ID   `json:"imovelId"`
	TenantID       domain.ID   `json:"inquilinoId"`
	TenantName     string      `json:"locatario,omitempty"`
	OwnerID        domain.ID   `json:"proprietarioId"`
	StartDate      *string     `json:"dataInicio"`
	EndDate        *string     `json:"fim"`
	BillingDay     int         `json:"diaCobranca"`
	DurationMonths int         `json:"mesesDuracao"`
	MonthlyAmount  json.Number `json:"valorMensal"`
	Status         string      `json:"status"`
	Active         bool        `json:"ativo"`
}

type contractRepository struct {
	client *Client
}

// NewContractRepository returns the store-backed ContractRepository.
func NewContractRepository(client *Client) repository.ContractRepository {
	return &contractRepository{client: client}
}

func (r *contractRepository) List(ctx context.Context) ([]domain.Contract, error) {
	var body []json.RawMessage
	if err := r.client.get(ctx, resourceContracts, &body); err != nil {
		return nil, err
	}
	return decodeList(body, decodeContract)
}

func (r *contractRepository) Save(ctx context.Context, c domain.Contract) (domain.Contract, error) {
	var rec record
	if err := r.client.post(ctx, resourceContracts, encodeContract(c), &rec); err != nil {
		return domain.Contract{}, err
	}
	if len(rec) == 0 {
		return c, nil
	}
	return decodeContract(rec)
}

func (r *contractRepository) Delete(ctx context.Context, id domain.ID) error {
	if !id.IsSet() {
		return domain.ErrInvalidPayload
	}
	err := r.client.delete(ctx, itemPath(resourceContracts, id))
	if isNotFound(err) {
		return domain.ErrContractNotFound
	}
	return err
}

func encodeContract(c domain.Contract) contractBody {
	status := c.Status
	if status == "" {
		status = domain.ContractPending
	}
	return contractBody{
		ID:             c.ID,
		PropertyID:     c.PropertyID,
		TenantID:       c.TenantID,
		TenantName:     c.TenantName,
		OwnerID:        c.OwnerID,
		StartDate:      wireDate(c.StartDate),
		EndDate:        wireDate(c.EndDate),
		BillingDay:     c.BillingDay,
		DurationMonths: c.DurationMonths,
		MonthlyAmount:  wireAmount(c.MonthlyAmount),
		Status:         string(status),
		Active:         status == domain.ContractActive,
	}
}

func decodeContract(r record) (domain.Contract, error) {
	var (
		c   domain.Contract
		err error
	)
	if c.ID, err = r.id("id"); err != nil {
		return domain.Contract{}, err
	}
	if c.PropertyID, err = r.id("imovelId", "imovel_id"); err != nil {
		return domain.Contract{}, err
	}
	if c.TenantID, err = r.id("inquilinoId", "inquilino_id"); err != nil {
		return domain.Contract{}, err
	}
	if c.OwnerID, err = r.id("proprietarioId", "proprietario_id"); err != nil {
		return domain.Contract{}, err
	}
	c.TenantName, _ = r.str("locatario", "inquilinoNome")
	if c.StartDate, err = r.date("dataInicio", "inicio"); err != nil {
		return domain.Contract{}, err
	}
	if c.EndDate, err = r.date("fim", "dataFim"); err != nil {
		return domain.Contract{}, err
	}
	if c.BillingDay, err = r.integer("diaCobranca"); err != nil {
		return domain.Contract{}, err
	}
	if c.DurationMonths, err = r.integer("mesesDuracao"); err != nil {
		return domain.Contract{}, err
	}
	if c.MonthlyAmount, err = r.amount("valorMensal", "valor"); err != nil {
		return domain.Contract{}, err
	}
	if c.Status, err = decodeContractStatus(r); err != nil {
		return domain.Contract{}, err
	}
	return c, nil
}

func decodeContractStatus(r record) (domain.ContractStatus, error) {
	if s, ok := r.str("status", "situacao"); ok {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "PENDING", "PENDENTE":
			return domain.ContractPending, nil
		case "ACTIVE", "ATIVO":
			return domain.ContractActive, nil
		case "ENDED", "ENCERRADO", "FINALIZADO":
			return domain.ContractEnded, nil
		default:
			return "", fmt.Errorf("unknown contract status %q", s)
		}
	}
	// older records only carry the active flag
	active, _, err := r.boolean("ativo")
	if err != nil {
		return "", err
	}
	if active {
		return domain.ContractActive, nil
	}
	return domain.ContractPending, nil
}
