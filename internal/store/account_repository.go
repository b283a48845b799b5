/**
 * @description
 * This file implements the data access layer for account records. It provides
 * a clean interface for the application logic to interact with the `accounts`
 * table in the database.
 *
 * Key features:
 * - Idempotent upsert keyed by the WABA ID: a single
 *   `INSERT ... ON CONFLICT DO UPDATE` statement so concurrent onboarding runs
 *   for the same WABA resolve to one atomic conditional write.
 * - Partial merge semantics: unsupplied fields are passed as NULL and COALESCEd
 *   against the stored value, so a rerun never blanks out earlier data.
 * - The business token column is written but never selected on read paths.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: The PostgreSQL driver.
 * - github.com/google/uuid: Generates account IDs on first insert.
 * - The service's internal domain package for the Account model.
 */
package store

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waconnect/onboarding-service/internal/domain"
)

// PostgresAccountRepository is the PostgreSQL implementation of the AccountRepository.
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new instance of PostgresAccountRepository.
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// accountColumns is the read projection. The business_token column is
// deliberately absent: the credential is written during upsert and never read
// back through this repository.
const accountColumns = `
        id, business_name, email, waba_id, phone_number_id, phone_number,
        portfolio_id, onboarding_status, payment_method_added, created_at, updated_at
`

// UpsertAccount creates the account record for a WABA or merges the supplied
// fields into the existing one. Safe to call repeatedly with identical input.
func (r *PostgresAccountRepository) UpsertAccount(ctx context.Context, params UpsertAccountParams) (*domain.Account, error) {
	query := `
        INSERT INTO accounts (
            id, waba_id, phone_number_id, phone_number, business_token,
            portfolio_id, business_name, email, onboarding_status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (waba_id) DO UPDATE SET
            phone_number_id      = COALESCE(NULLIF(EXCLUDED.phone_number_id, ''), accounts.phone_number_id),
            phone_number         = COALESCE(NULLIF(EXCLUDED.phone_number, ''), accounts.phone_number),
            business_token       = COALESCE(NULLIF(EXCLUDED.business_token, ''), accounts.business_token),
            portfolio_id         = COALESCE(NULLIF(EXCLUDED.portfolio_id, ''), accounts.portfolio_id),
            business_name        = COALESCE(NULLIF(EXCLUDED.business_name, ''), accounts.business_name),
            email                = COALESCE(NULLIF(EXCLUDED.email, ''), accounts.email),
            onboarding_status    = CASE
                WHEN accounts.onboarding_status = 'completed' THEN accounts.onboarding_status
                ELSE EXCLUDED.onboarding_status
            END,
            updated_at           = NOW()
        RETURNING ` + accountColumns

	status := params.OnboardingStatus
	if status == "" {
		status = domain.OnboardingPending
	}

	row := r.db.QueryRow(ctx, query,
		uuid.New().String(),
		params.WABAID,
		params.PhoneNumberID,
		params.PhoneNumber,
		params.BusinessToken,
		params.PortfolioID,
		params.BusinessName,
		params.Email,
		status,
	)

	account, err := scanAccount(row)
	if err != nil {
		log.Printf("ERROR: Failed to upsert account for WABA %s: %v", params.WABAID, err)
		return nil, err
	}
	return account, nil
}

// FindAccountByID retrieves an account by its internal ID.
func (r *PostgresAccountRepository) FindAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		log.Printf("ERROR: Failed to find account by id %s: %v", id, err)
		return nil, err
	}
	return account, nil
}

// FindAccountByWABAID retrieves an account by its WhatsApp Business Account ID.
func (r *PostgresAccountRepository) FindAccountByWABAID(ctx context.Context, wabaID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE waba_id = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, wabaID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		log.Printf("ERROR: Failed to find account by waba_id %s: %v", wabaID, err)
		return nil, err
	}
	return account, nil
}

// MarkOnboardingCompleted transitions the account's status to completed. The
// transition is monotonic: a record that already reached completed never
// regresses, whichever channel (API saga or webhook) reports first.
func (r *PostgresAccountRepository) MarkOnboardingCompleted(ctx context.Context, wabaID string) error {
	query := `
        UPDATE accounts
        SET onboarding_status = 'completed', updated_at = NOW()
        WHERE waba_id = $1 AND onboarding_status <> 'completed'
    `
	if _, err := r.db.Exec(ctx, query, wabaID); err != nil {
		log.Printf("ERROR: Failed to mark onboarding completed for WABA %s: %v", wabaID, err)
		return err
	}
	return nil
}

// MarkOnboardingFailed records a terminal failure reported by the provider.
// Completed accounts are left untouched.
func (r *PostgresAccountRepository) MarkOnboardingFailed(ctx context.Context, wabaID string) error {
	query := `
        UPDATE accounts
        SET onboarding_status = 'failed', updated_at = NOW()
        WHERE waba_id = $1 AND onboarding_status <> 'completed'
    `
	if _, err := r.db.Exec(ctx, query, wabaID); err != nil {
		log.Printf("ERROR: Failed to mark onboarding failed for WABA %s: %v", wabaID, err)
		return err
	}
	return nil
}

// MarkPaymentMethodAdded flips the payment flag once the provider reports a
// payment method on the account.
func (r *PostgresAccountRepository) MarkPaymentMethodAdded(ctx context.Context, wabaID string) error {
	query := `
        UPDATE accounts
        SET payment_method_added = TRUE, updated_at = NOW()
        WHERE waba_id = $1
    `
	if _, err := r.db.Exec(ctx, query, wabaID); err != nil {
		log.Printf("ERROR: Failed to mark payment method added for WABA %s: %v", wabaID, err)
		return err
	}
	return nil
}

// scanAccount maps a row using the accountColumns projection onto the domain model.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account      domain.Account
		businessName *string
		email        *string
		phoneNumber  *string
		portfolioID  *string
	)
	err := row.Scan(
		&account.ID,
		&businessName,
		&email,
		&account.WABAID,
		&account.PhoneNumberID,
		&phoneNumber,
		&portfolioID,
		&account.OnboardingStatus,
		&account.PaymentMethodAdded,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.BusinessName = derefString(businessName)
	account.Email = derefString(email)
	account.PhoneNumber = derefString(phoneNumber)
	account.PortfolioID = derefString(portfolioID)
	return &account, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
