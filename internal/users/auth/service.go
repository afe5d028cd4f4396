// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/constants"
	"github.com/taibuivan/centra/internal/platform/ratelimit"
	"github.com/taibuivan/centra/internal/platform/sec"
	"github.com/taibuivan/centra/internal/platform/validate"
)

// CaptchaVerifier defines the contract for one-time captcha verification.
//
// # Why an interface?
//
// Registration only needs a yes/no answer; depending on the captcha package
// directly would invert the dependency direction and complicate testing.
type CaptchaVerifier interface {
	// Verify consumes the challenge on a correct answer.
	//
	// Returns false (not an error) for wrong, expired, or unknown answers.
	// The error return is reserved for store outages.
	Verify(ctx context.Context, captchaID, answer string) (bool, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokens         *TokenStore
	captcha        CaptchaVerifier
	lockout        *ratelimit.Lockout
	logger         *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	tokens *TokenStore,
	captcha CaptchaVerifier,
	lockout *ratelimit.Lockout,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokens:         tokens,
		captcha:        captcha,
		lockout:        lockout,
		logger:         logger,
	}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Account         string `json:"account"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Gender          int16  `json:"gender"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	CaptchaID       string `json:"captcha_id"`
	CaptchaAnswer   string `json:"captcha_answer"`
}

// Register validates, captcha-gates, hashes, and persists a new user account.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - input: The user-provided registration details.
//
// # Returns
//   - A pointer to the newly created [*User].
//   - Returns [apperr.Conflict] if the account name is held by a live user.
//
// # Business Rules
//   - Every registration consumes a captcha challenge, correct or not.
//   - Account names are normalized before any lookup.
//   - A soft-deleted row with the same account is reclaimed in place.
//   - Default role is always 'user'.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// ── 1. Validation ─────────────────────────────────────────────────────

	account := sec.NormalizeAccount(input.Account)

	v := &validate.Validator{}
	v.Required("account", account).
		MinLen("account", account, 3).
		MaxLen("account", account, 32).
		Account("account", account).
		Required("username", input.Username).
		MaxLen("username", input.Username, 64).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		MaxLen("password", input.Password, 72). // bcrypt input limit
		Custom("confirm_password", input.Password != input.ConfirmPassword, "Passwords do not match").
		Range("gender", int(input.Gender), 0, 2).
		Required("captcha_id", input.CaptchaID).
		Required("captcha_answer", input.CaptchaAnswer)
	if input.Email != "" {
		v.Email("email", input.Email)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	// ── 2. Captcha Gate ───────────────────────────────────────────────────

	ok, err := service.captcha.Verify(ctx, input.CaptchaID, input.CaptchaAnswer)
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}
	if !ok {
		return nil, validate.RequiredError("captcha_answer", "Captcha is incorrect or expired")
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 4. Entity Construction ────────────────────────────────────────────

	user := &User{
		Account:      account,
		Username:     input.Username,
		PasswordHash: hashedPassword,
		Gender:       input.Gender,
		Phone:        input.Phone,
		Email:        input.Email,
		Role:         sec.RoleUser, // Rule: Default role is always User
	}

	// ── 5. Persistence ────────────────────────────────────────────────────

	existing, err := service.userRepository.FindByAccountAny(ctx, account)
	switch {
	case err == nil && !existing.IsDeleted:
		return nil, apperr.Conflict("Account is already registered")

	case err == nil && existing.IsDeleted:
		// Reclaim the soft-deleted row under its original ID.
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		if err := service.userRepository.Restore(ctx, user); err != nil {
			return nil, err
		}
		service.logger.InfoContext(ctx, "account_restored",
			slog.Int64("user_id", user.ID),
			slog.String("account", account),
		)

	case apperr.IsNotFound(err):
		if err := service.userRepository.Create(ctx, user); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	return user, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// LoginResult represents a successfully established user session.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login validates user credentials and issues an opaque session token.
//
// # Parameters
//   - ctx: Context for the database and token-store operations.
//   - input: Contains the account name and plain-text password.
//
// # Returns
//   - A pointer to [LoginResult] containing the session token.
//   - Returns [apperr.Unauthorized] if credentials do not match.
//   - Returns [apperr.LoginLocked] once the account hit the failure threshold.
//
// # Flow
//  1. Check the lockout gate (read-only; checking never consumes budget).
//  2. Look up the live account.
//  3. Verify the password hash using Bcrypt.
//  4. Record the failure or clear the counter, then issue the token.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	account := sec.NormalizeAccount(input.Account)

	v := &validate.Validator{}
	if err := v.Required("account", account).Required("password", input.Password).Err(); err != nil {
		return nil, err
	}

	// ── 1. Lockout Gate ───────────────────────────────────────────────────

	allowed, err := service.lockout.IsAllowed(ctx, account)
	if err != nil {
		// The gate exists to slow attackers, not to lock everyone out when
		// Redis is down. Proceed, but leave a trace.
		service.logger.WarnContext(ctx, "login_lockout_check_failed",
			slog.String("account", account),
			slog.Any("error", err),
		)
		allowed = true
	}
	if !allowed {
		return nil, apperr.LoginLocked(service.lockout.RetryAfter(ctx, account))
	}

	// ── 2. Fetch User Profile ─────────────────────────────────────────────

	user, err := service.userRepository.FindByAccount(ctx, account)
	if err != nil {
		// Unknown accounts consume lockout budget too, so the counter cannot
		// be used to probe which accounts exist.
		service.recordLoginFailure(ctx, account)
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 3. Security Verification ──────────────────────────────────────────

	// Prevent timing attacks by always using constant-time comparison in bcrypt.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.recordLoginFailure(ctx, account)
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 4. Token Issuance ─────────────────────────────────────────────────

	if err := service.lockout.ClearFailures(ctx, account); err != nil {
		service.logger.WarnContext(ctx, "login_lockout_clear_failed",
			slog.String("account", account),
			slog.Any("error", err),
		)
	}

	token, err := service.tokens.Issue(ctx, user.Principal())
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	service.logger.InfoContext(ctx, "login_succeeded",
		slog.Int64("user_id", user.ID),
		slog.String("account", account),
	)

	return &LoginResult{Token: token, User: user}, nil
}

// recordLoginFailure counts a failed attempt, tolerating store outages.
func (service *Service) recordLoginFailure(ctx context.Context, account string) {
	count, err := service.lockout.RecordFailure(ctx, account)
	if err != nil {
		service.logger.WarnContext(ctx, "login_failure_record_failed",
			slog.String("account", account),
			slog.Any("error", err),
		)
		return
	}
	if count >= int64(constants.LoginFailureThreshold) {
		service.logger.WarnContext(ctx, "login_lockout_engaged",
			slog.String("account", account),
			slog.Int64("failures", count),
		)
	}
}

// Resolve looks up a session token and refreshes its sliding expiration.
//
// It satisfies [middleware.TokenResolver].
func (service *Service) Resolve(ctx context.Context, token string) (*sec.Principal, error) {
	return service.tokens.Resolve(ctx, token)
}

// Logout revokes the presented session token.
//
// Revoking an already-dead token is considered a successful logout
// (idempotent operation).
func (service *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := service.tokens.Revoke(ctx, token); err != nil {
		return apperr.StoreUnavailable(err)
	}
	return nil
}

// LogoutAll revokes every session of the target user.
//
// # Authorization
//
// Users may flush their own sessions; admins may flush anyone's.
func (service *Service) LogoutAll(ctx context.Context, actor *sec.Principal, targetUserID int64) (int, error) {
	if !actor.CanActOn(targetUserID) {
		return 0, apperr.Forbidden("You may only log out your own sessions")
	}

	revoked, err := service.tokens.RevokeAll(ctx, targetUserID)
	if err != nil {
		return 0, apperr.StoreUnavailable(err)
	}

	service.logger.InfoContext(ctx, "sessions_revoked",
		slog.Int64("target_user_id", targetUserID),
		slog.Int64("actor_id", actor.ID),
		slog.Int("revoked", revoked),
	)

	return revoked, nil
}
