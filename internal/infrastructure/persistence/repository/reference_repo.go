package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ReferenceDataRepository implements port.ReferenceDataRepository
type ReferenceDataRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReferenceDataRepository creates a new reference data repository
func NewReferenceDataRepository(db *sql.DB, logger *zap.Logger) port.ReferenceDataRepository {
	return &ReferenceDataRepository{
		db:     db,
		logger: logger,
	}
}

// Load reads the full reference data set
func (r *ReferenceDataRepository) Load(ctx context.Context) (*entity.ReferenceData, error) {
	categories, err := r.loadScopedNames(ctx, "policy_categories")
	if err != nil {
		return nil, err
	}

	tags, err := r.loadScopedNames(ctx, "policy_tags")
	if err != nil {
		return nil, err
	}

	currencies, err := r.loadCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	details, err := r.loadPersonalDetails(ctx)
	if err != nil {
		return nil, err
	}

	cards, err := r.loadCards(ctx)
	if err != nil {
		return nil, err
	}

	reports, err := r.loadReports(ctx)
	if err != nil {
		return nil, err
	}

	taxRates, err := r.loadTaxRates(ctx)
	if err != nil {
		return nil, err
	}

	return &entity.ReferenceData{
		PolicyCategories: categories,
		PolicyTags:       tags,
		Currencies:       currencies,
		PersonalDetails:  details,
		Cards:            cards,
		Reports:          reports,
		TaxRates:         taxRates,
	}, nil
}

// UpsertPersonalDetails merges account identities into the personal
// details directory
func (r *ReferenceDataRepository) UpsertPersonalDetails(ctx context.Context, details map[string]entity.PersonalDetails) error {
	query := `
		INSERT INTO personal_details (account_id, display_name, login)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			display_name = excluded.display_name,
			login = excluded.login
	`

	ex := r.getExecutor(ctx)
	for accountID, d := range details {
		if _, err := ex.ExecContext(ctx, query, accountID, d.DisplayName, d.Login); err != nil {
			r.logger.Error("Failed to upsert personal details", zap.String("account_id", accountID), zap.Error(err))
			return fmt.Errorf("failed to upsert personal details: %w", err)
		}
	}

	return nil
}

// loadScopedNames reads a (policy_id, name) table into a per-policy map.
// Only called with fixed table names.
func (r *ReferenceDataRepository) loadScopedNames(ctx context.Context, table string) (map[string][]string, error) {
	query := fmt.Sprintf("SELECT policy_id, name FROM %s ORDER BY policy_id, name", table)

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load reference table", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer rows.Close()

	scoped := make(map[string][]string)
	for rows.Next() {
		var policyID, name string
		if err := rows.Scan(&policyID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		scoped[policyID] = append(scoped[policyID], name)
	}

	return scoped, rows.Err()
}

func (r *ReferenceDataRepository) loadCurrencies(ctx context.Context) ([]string, error) {
	query := `SELECT code FROM currencies ORDER BY code`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load currencies", zap.Error(err))
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	defer rows.Close()

	var currencies []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, code)
	}

	return currencies, rows.Err()
}

func (r *ReferenceDataRepository) loadPersonalDetails(ctx context.Context) (map[string]entity.PersonalDetails, error) {
	query := `SELECT account_id, display_name, login FROM personal_details`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load personal details", zap.Error(err))
		return nil, fmt.Errorf("failed to load personal details: %w", err)
	}
	defer rows.Close()

	details := make(map[string]entity.PersonalDetails)
	for rows.Next() {
		var d entity.PersonalDetails
		if err := rows.Scan(&d.AccountID, &d.DisplayName, &d.Login); err != nil {
			return nil, fmt.Errorf("failed to scan personal details: %w", err)
		}
		details[d.AccountID] = d
	}

	return details, rows.Err()
}

func (r *ReferenceDataRepository) loadCards(ctx context.Context) (map[string]entity.Card, error) {
	query := `SELECT card_id, bank, name FROM cards`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load cards", zap.Error(err))
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	defer rows.Close()

	cards := make(map[string]entity.Card)
	for rows.Next() {
		var card entity.Card
		if err := rows.Scan(&card.CardID, &card.Bank, &card.Name); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards[card.CardID] = card
	}

	return cards, rows.Err()
}

func (r *ReferenceDataRepository) loadReports(ctx context.Context) (map[string]entity.Report, error) {
	query := `SELECT report_id, type, report_name FROM reference_reports`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load reports", zap.Error(err))
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	defer rows.Close()

	reports := make(map[string]entity.Report)
	for rows.Next() {
		var report entity.Report
		if err := rows.Scan(&report.ReportID, &report.Type, &report.ReportName); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports[report.ReportID] = report
	}

	return reports, rows.Err()
}

func (r *ReferenceDataRepository) loadTaxRates(ctx context.Context) (map[string][]string, error) {
	query := `SELECT group_name, rate_id FROM tax_rates ORDER BY group_name, rate_id`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load tax rates", zap.Error(err))
		return nil, fmt.Errorf("failed to load tax rates: %w", err)
	}
	defer rows.Close()

	taxRates := make(map[string][]string)
	for rows.Next() {
		var group, rateID string
		if err := rows.Scan(&group, &rateID); err != nil {
			return nil, fmt.Errorf("failed to scan tax rate: %w", err)
		}
		taxRates[group] = append(taxRates[group], rateID)
	}

	return taxRates, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *ReferenceDataRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ReferenceDataRepository = (*ReferenceDataRepository)(nil)
