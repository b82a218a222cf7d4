package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moviecatalog/proj/internal/domain/models"
	libvalidator "moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/storage"

	govalidator "github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type AdminsStorage interface {
	Insert(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func()) bool
}

type Options struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	// Mailer is optional, without it no welcome email is sent.
	Mailer       MailProvider
	TaskExecutor TaskExecutor
	// Now overrides the clock.
	Now func() time.Time
}

type AuthService struct {
	log          *slog.Logger
	storage      AdminsStorage
	validator    *govalidator.Validate
	tokens       *tokenManager
	bcryptCost   int
	mailer       MailProvider
	taskExecutor TaskExecutor
	now          func() time.Time
}

func New(log *slog.Logger, storage AdminsStorage, validator *govalidator.Validate, opts Options) *AuthService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		log:          log,
		storage:      storage,
		validator:    validator,
		tokens:       &tokenManager{secret: []byte(opts.Secret), ttl: opts.TokenTTL, now: now},
		bcryptCost:   cost,
		mailer:       opts.Mailer,
		taskExecutor: opts.TaskExecutor,
		now:          now,
	}
}

// maxPasswordBytes is the bcrypt input limit. validator's max counts runes.
const maxPasswordBytes = 72

type registerInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

func (a *AuthService) Register(ctx context.Context, username, password, email string) (*models.AdminPublic, error) {
	const op = "auth.AuthService.Register"
	log := a.log.With("op", op, "username", username)

	input := registerInput{Username: username, Password: password, Email: email}
	errs := libvalidator.ValidateStruct(a.validator, input)
	if len(password) > maxPasswordBytes {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs["password"] = fmt.Sprintf("Password must not exceed %d bytes", maxPasswordBytes)
	}
	if errs != nil {
		log.Info("invalid registration data", "errors", errs)
		return nil, &ValidationError{Fields: errs}
	}
	exists, err := a.storage.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		log.Error("Error checking admin existence", "errMsg", err.Error())
		return nil, err
	}
	if exists {
		log.Info("admin already exists")
		return nil, ErrAdminAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, &ValidationError{Fields: map[string]string{"password": err.Error()}}
	}
	if err != nil {
		log.Error("Error hashing password", "errMsg", err.Error())
		return nil, err
	}
	admin, err := a.storage.Insert(ctx, &models.Admin{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Role:         models.AdminRoleDefault,
		CreatedAt:    a.now(),
	})
	if err != nil {
		// lost the race against a concurrent registration
		if errors.Is(err, storage.ErrConflict) {
			log.Info("admin already exists")
			return nil, ErrAdminAlreadyExists
		}
		log.Error("Error inserting admin", "errMsg", err.Error())
		return nil, err
	}
	log.Info("admin registered", "id", admin.ID)
	a.sendWelcomeEmail(admin)
	public := admin.Public()
	return &public, nil
}

func (a *AuthService) sendWelcomeEmail(admin *models.Admin) {
	if a.mailer == nil || a.taskExecutor == nil {
		return
	}
	log := a.log.With("op", "auth.AuthService.sendWelcomeEmail", "id", admin.ID)
	email, data := admin.Email, map[string]any{
		"username": admin.Username,
		"adminID":  admin.ID,
	}
	a.taskExecutor.Add(func() {
		log.Info("sending welcome email")
		if err := a.mailer.Send(email, "admin_welcome.html", data); err != nil {
			log.Error("Error sending welcome email", "errMsg", err.Error())
		}
	})
}

type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Admin     models.AdminPublic `json:"admin"`
}

// Login does not tell an unknown username apart from a wrong password, both
// fail with ErrInvalidCredentials.
func (a *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "username", username)

	admin, err := a.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("admin not found")
			return nil, ErrInvalidCredentials
		}
		log.Error("Error getting admin", "errMsg", err.Error())
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Info("wrong password")
			return nil, ErrInvalidCredentials
		}
		log.Error("Error comparing password hash", "errMsg", err.Error())
		return nil, err
	}
	if err := a.storage.UpdateLastLogin(ctx, admin.ID, a.now()); err != nil {
		log.Error("Error updating last login", "errMsg", err.Error())
		return nil, err
	}
	token, expiresAt, err := a.tokens.issue(admin.ID)
	if err != nil {
		log.Error("Error signing token", "errMsg", err.Error())
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin.Public()}, nil
}

// Authenticate resolves a bearer token to the admin it was issued for.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.Admin, error) {
	const op = "auth.AuthService.Authenticate"
	log := a.log.With("op", op)

	adminID, err := a.tokens.verify(token)
	if err != nil {
		log.Info("token rejected", "reason", err.Error())
		return nil, ErrInvalidToken
	}
	admin, err := a.storage.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("token for an admin that no longer exists", "id", adminID)
			return nil, ErrInvalidToken
		}
		log.Error("Error getting admin", "errMsg", err.Error())
		return nil, err
	}
	return admin, nil
}
