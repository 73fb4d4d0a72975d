package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voicedesk/internal/domain"
)

// ErrQuotaExhausted is returned when a conditional quota increment finds the
// tenant already at its ceiling. Losing a concurrent increment race surfaces
// the same way.
var ErrQuotaExhausted = errors.New("ticket quota exhausted")

// CompanyFilter captures listing parameters.
type CompanyFilter struct {
	Status     *domain.CompanyStatus
	Industry   *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// CompanyRepository encapsulates tenant persistence.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetByDomain(ctx context.Context, domainName string) (*domain.Company, error)
	GetByEmail(ctx context.Context, email string) (*domain.Company, error)
	ListWithFilter(ctx context.Context, filter CompanyFilter) ([]domain.Company, error)
	UpdateJiraConfig(ctx context.Context, id string, cfg domain.JiraConfig) error
	// IncrementTicketUsage bumps tickets_used by one iff the tenant is below
	// its ceiling, returning the updated subscription. The condition and the
	// increment execute in a single statement, so concurrent commits for the
	// same tenant cannot both pass the ceiling.
	IncrementTicketUsage(ctx context.Context, id string) (*domain.Subscription, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository instantiates the repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

const companyColumns = `id, name, domain, industry, size, contact_email, phone_number, status,
       jira_config, service_desk_config, plan, subscription_start, max_tickets, tickets_used,
       created_at, updated_at`

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	jiraCfg, deskCfg, err := marshalConfigs(company)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO companies (name, domain, industry, size, contact_email, phone_number, status,
            jira_config, service_desk_config, plan, subscription_start, max_tickets, tickets_used)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		company.Name,
		company.Domain,
		company.Industry,
		company.Size,
		company.ContactEmail,
		company.PhoneNumber,
		company.Status,
		jiraCfg,
		deskCfg,
		company.Subscription.Plan,
		company.Subscription.StartDate,
		company.Subscription.MaxTickets,
		company.Subscription.TicketsUsed,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
}

func (r *companyRepository) Update(ctx context.Context, company *domain.Company) error {
	jiraCfg, deskCfg, err := marshalConfigs(company)
	if err != nil {
		return err
	}
	const query = `
        UPDATE companies SET name=$1, domain=$2, industry=$3, size=$4, contact_email=$5,
            phone_number=$6, status=$7, jira_config=$8, service_desk_config=$9, plan=$10,
            max_tickets=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		company.Name,
		company.Domain,
		company.Industry,
		company.Size,
		company.ContactEmail,
		company.PhoneNumber,
		company.Status,
		jiraCfg,
		deskCfg,
		company.Subscription.Plan,
		company.Subscription.MaxTickets,
		company.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	return r.fetchSingle(ctx, fmt.Sprintf(`SELECT %s FROM companies WHERE id=$1`, companyColumns), id)
}

func (r *companyRepository) GetByDomain(ctx context.Context, domainName string) (*domain.Company, error) {
	return r.fetchSingle(ctx, fmt.Sprintf(`SELECT %s FROM companies WHERE domain=$1`, companyColumns), domainName)
}

func (r *companyRepository) GetByEmail(ctx context.Context, email string) (*domain.Company, error) {
	return r.fetchSingle(ctx, fmt.Sprintf(`SELECT %s FROM companies WHERE contact_email=$1`, companyColumns), email)
}

func (r *companyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Company, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	return scanCompany(row)
}

func (r *companyRepository) ListWithFilter(ctx context.Context, filter CompanyFilter) ([]domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies`, companyColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Industry != nil {
		args = append(args, *filter.Industry)
		clauses = append(clauses, fmt.Sprintf("industry=$%d", len(args)))
	}
	if filter.SearchTerm != nil {
		args = append(args, "%"+*filter.SearchTerm+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR domain ILIKE $%d)", len(args), len(args)))
	}

	query += " WHERE " + joinClauses(clauses) + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *company)
	}
	return companies, rows.Err()
}

func (r *companyRepository) UpdateJiraConfig(ctx context.Context, id string, cfg domain.JiraConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx,
		`UPDATE companies SET jira_config=$1, updated_at=NOW() WHERE id=$2`, payload, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) IncrementTicketUsage(ctx context.Context, id string) (*domain.Subscription, error) {
	const query = `
        UPDATE companies SET tickets_used = tickets_used + 1, updated_at=NOW()
        WHERE id=$1 AND tickets_used < max_tickets
        RETURNING plan, subscription_start, max_tickets, tickets_used`
	var sub domain.Subscription
	err := r.pool.QueryRow(ctx, query, id).Scan(&sub.Plan, &sub.StartDate, &sub.MaxTickets, &sub.TicketsUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the tenant does not exist or it is at the ceiling; the
		// caller has already loaded the tenant, so treat this as exhaustion.
		return nil, ErrQuotaExhausted
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*domain.Company, error) {
	var (
		company domain.Company
		jiraCfg []byte
		deskCfg []byte
	)
	if err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Domain,
		&company.Industry,
		&company.Size,
		&company.ContactEmail,
		&company.PhoneNumber,
		&company.Status,
		&jiraCfg,
		&deskCfg,
		&company.Subscription.Plan,
		&company.Subscription.StartDate,
		&company.Subscription.MaxTickets,
		&company.Subscription.TicketsUsed,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(jiraCfg) > 0 {
		if err := json.Unmarshal(jiraCfg, &company.JiraConfig); err != nil {
			return nil, fmt.Errorf("decode jira_config: %w", err)
		}
	}
	if len(deskCfg) > 0 {
		if err := json.Unmarshal(deskCfg, &company.ServiceDeskConfig); err != nil {
			return nil, fmt.Errorf("decode service_desk_config: %w", err)
		}
	}
	return &company, nil
}

func marshalConfigs(company *domain.Company) ([]byte, []byte, error) {
	jiraCfg, err := json.Marshal(company.JiraConfig)
	if err != nil {
		return nil, nil, err
	}
	deskCfg, err := json.Marshal(company.ServiceDeskConfig)
	if err != nil {
		return nil, nil, err
	}
	return jiraCfg, deskCfg, nil
}

func joinClauses(clauses []string) string {
	out := clauses[0]
	for _, clause := range clauses[1:] {
		out += " AND " + clause
	}
	return out
}
