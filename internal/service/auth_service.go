package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/auth"
	"github.com/dragomirurdov/AtrijumApi/internal/config"
	"github.com/dragomirurdov/AtrijumApi/internal/device"
	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/mail"
	"github.com/dragomirurdov/AtrijumApi/internal/metrics"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
	"github.com/google/uuid"
)

// EventPublisher receives session lifecycle events. Publishing never fails
// the operation that triggered it.
type EventPublisher interface {
	PublishSessionEvent(ev domain.SessionEvent)
}

type nopPublisher struct{}

func (nopPublisher) PublishSessionEvent(domain.SessionEvent) {}

type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.SessionTokenRepository
	codec     *auth.TokenCodec
	issuer    *auth.Issuer
	mailer    mail.Mailer
	cfg       *config.Config
	logger    *slog.Logger
	metrics   metrics.Recorder
	events    EventPublisher
	now       func() time.Time
}

type Option func(*AuthService)

func WithLogger(l *slog.Logger) Option {
	return func(s *AuthService) { s.logger = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *AuthService) { s.metrics = r }
}

func WithEvents(p EventPublisher) Option {
	return func(s *AuthService) { s.events = p }
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.SessionTokenRepository, codec *auth.TokenCodec, mailer mail.Mailer, cfg *config.Config, opts ...Option) *AuthService {
	s := &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		codec:     codec,
		issuer:    auth.NewIssuer(codec, tokenRepo),
		mailer:    mailer,
		cfg:       cfg,
		logger:    slog.Default(),
		metrics:   metrics.Nop{},
		events:    nopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SignupInput struct {
	Email     string
	Password  string
	UserAgent string
	Language  string
}

type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

// AuthResult is a user together with the token stored for their device.
// Claims is only set when the result came from a bearer token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
	Claims    *auth.Claims
}

// Signup creates an unactivated user, issues a token for the signing-up
// device and mails the confirmation link. If issuing or mailing fails the
// user and its tokens are deleted again.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (_ *AuthResult, err error) {
	defer s.observe(metrics.OpSignup, s.now(), &err)

	email := normalizeEmail(input.Email)

	_, err = s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrRecordNotFound):
		return nil, domain.Internal(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	secret := uuid.NewString()
	user := &domain.User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     hash,
		ActivationSecret: &secret,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.Internal(err)
	}

	fp := device.Fingerprint(input.UserAgent)
	issued, err := s.issuer.Issue(ctx, user, fp, s.issueOptions(input.UserAgent, true))
	if err != nil {
		s.rollbackSignup(ctx, user, err)
		return nil, domain.Internal(err)
	}

	if err := s.mailer.SendUserConfirmation(ctx, user, input.Language); err != nil {
		s.rollbackSignup(ctx, user, err)
		return nil, domain.Internal(err)
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID, "device", fp.String())
	s.publish(domain.SessionCreated, user.ID, fp, 0)

	return s.result(user, issued.Session.Token), nil
}

// rollbackSignup undoes a signup whose later steps failed. It keeps going
// after the caller's context is cancelled.
func (s *AuthService) rollbackSignup(ctx context.Context, user *domain.User, cause error) {
	ctx = context.WithoutCancel(ctx)

	_, tokenErr := s.tokenRepo.DeleteAllForUser(ctx, user.ID)
	userErr := s.userRepo.Delete(ctx, user.ID)
	if err := errors.Join(tokenErr, userErr); err != nil {
		s.metrics.RecordSignupRollback(false)
		s.logger.ErrorContext(ctx, "signup rollback failed, user left unconfirmed",
			"user_id", user.ID,
			"email", user.Email,
			"cause", cause,
			"error", err,
		)
		return
	}

	s.metrics.RecordSignupRollback(true)
	s.logger.WarnContext(ctx, "signup rolled back", "user_id", user.ID, "cause", cause)
}

// Login signs in from the device input.UserAgent identifies.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	return s.login(ctx, input, device.Fingerprint(input.UserAgent))
}

// login issues the token under fp; input.UserAgent only fills the stored
// device details.
func (s *AuthService) login(ctx context.Context, input LoginInput, fp domain.DeviceFingerprint) (_ *AuthResult, err error) {
	defer s.observe(metrics.OpLogin, s.now(), &err)

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err)
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	issued, err := s.issuer.Issue(ctx, user, fp, s.issueOptions(input.UserAgent, true))
	if err != nil {
		return nil, err
	}

	if issued.Created {
		s.publish(domain.SessionCreated, user.ID, fp, 0)
	} else {
		s.publish(domain.SessionRefreshed, user.ID, fp, 0)
	}

	return s.result(user, issued.Session.Token), nil
}

// ValidateToken accepts raw when it is the stored token of any of the
// user's devices. fp is not compared; only Refresh is bound to the device.
func (s *AuthService) ValidateToken(ctx context.Context, raw string, claims *auth.Claims, fp domain.DeviceFingerprint) (_ *domain.User, err error) {
	defer s.observe(metrics.OpValidate, s.now(), &err)

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.tokenRepo.FindAllForUser(ctx, user.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	for _, session := range sessions {
		if subtle.ConstantTimeCompare([]byte(session.Token), []byte(raw)) == 1 {
			return user, nil
		}
	}

	s.logger.DebugContext(ctx, "token not in store", "user_id", user.ID, "device", fp.String())
	return nil, domain.ErrSessionRevoked
}

// Refresh replaces the token of a device the user already signed in from.
// It never registers a new device.
func (s *AuthService) Refresh(ctx context.Context, user *domain.User, fp domain.DeviceFingerprint) (_ *AuthResult, err error) {
	defer s.observe(metrics.OpRefresh, s.now(), &err)

	issued, err := s.issuer.Issue(ctx, user, fp, auth.IssueOptions{AllowCreate: false})
	if err != nil {
		return nil, err
	}

	s.publish(domain.SessionRefreshed, user.ID, fp, 0)
	return s.result(user, issued.Session.Token), nil
}

// Logout deletes the session of one device. Logging out a device without a
// session succeeds with a zero count.
func (s *AuthService) Logout(ctx context.Context, user *domain.User, fp domain.DeviceFingerprint) (_ int64, err error) {
	defer s.observe(metrics.OpLogout, s.now(), &err)

	count, err := s.tokenRepo.DeleteByUserAndFingerprint(ctx, user.ID, fp)
	if err != nil {
		return 0, domain.Internal(err)
	}

	s.metrics.RecordSessionsRevoked(count)
	if count > 0 {
		s.publish(domain.SessionRevoked, user.ID, fp, count)
	}
	return count, nil
}

// LogoutAll deletes the sessions of every device of user.
func (s *AuthService) LogoutAll(ctx context.Context, user *domain.User) (_ int64, err error) {
	defer s.observe(metrics.OpLogoutAll, s.now(), &err)

	count, err := s.tokenRepo.DeleteAllForUser(ctx, user.ID)
	if err != nil {
		return 0, domain.Internal(err)
	}

	s.metrics.RecordSessionsRevoked(count)
	if count > 0 {
		s.publish(domain.SessionRevoked, user.ID, domain.DeviceFingerprint{}, count)
	}
	return count, nil
}

// Activate confirms the account holding secret.
func (s *AuthService) Activate(ctx context.Context, secret string) (err error) {
	defer s.observe(metrics.OpActivate, s.now(), &err)

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return domain.ErrInvalidActivationSecret
	}

	user, err := s.userRepo.GetByActivationSecret(ctx, secret)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrInvalidActivationSecret
		}
		return domain.Internal(err)
	}

	user.ActivationSecret = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return domain.Internal(err)
	}

	s.logger.InfoContext(ctx, "user activated", "user_id", user.ID)
	return nil
}

// Sessions lists the user's device sessions, oldest first.
func (s *AuthService) Sessions(ctx context.Context, user *domain.User) ([]*domain.SessionToken, error) {
	sessions, err := s.tokenRepo.FindAllForUser(ctx, user.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return sessions, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err)
	}
	return user, nil
}

// Decode verifies a bearer token's signature and expiry.
func (s *AuthService) Decode(raw string) (*auth.Claims, error) {
	return s.codec.Decode(raw)
}

func (s *AuthService) issueOptions(userAgent string, allowCreate bool) auth.IssueOptions {
	return auth.IssueOptions{
		AllowCreate: allowCreate,
		UserAgent:   device.TruncateUserAgent(userAgent),
		Client:      device.Describe(userAgent),
	}
}

func (s *AuthService) result(user *domain.User, token string) *AuthResult {
	res := &AuthResult{User: user, Token: token}
	if exp, err := s.issuer.ExpiresAt(token); err == nil {
		res.ExpiresAt = exp
	}
	return res
}

func (s *AuthService) publish(t domain.SessionEventType, userID uuid.UUID, fp domain.DeviceFingerprint, count int64) {
	s.events.PublishSessionEvent(domain.SessionEvent{
		Type:   t,
		UserID: userID,
		Device: fp,
		Count:  count,
		At:     s.now(),
	})
}

func (s *AuthService) observe(op string, start time.Time, err *error) {
	s.metrics.RecordOperation(op, *err, s.now().Sub(start))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
