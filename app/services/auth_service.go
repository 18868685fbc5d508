// Package services holds the business logic between controllers and
// repositories.
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/app/jobs"
	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/app/repositories"
	"github.com/fusionfit/storefront/pkg/apperr"
	"github.com/fusionfit/storefront/pkg/auth"
	"github.com/fusionfit/storefront/pkg/event"
	"github.com/fusionfit/storefront/pkg/logger"
	"github.com/fusionfit/storefront/pkg/queue"
)

// Token lifetimes. Signup hands out a 24h verification window; a re-sent
// verification link and reset links are short-lived on purpose.
const (
	SignupVerificationTTL = 24 * time.Hour
	ResendVerificationTTL = 15 * time.Minute
	PasswordResetTTL      = 15 * time.Minute
)

// UnverifiedWarning is attached to login responses for unverified accounts.
const UnverifiedWarning = "Your account is not verified. Please verify your email to access all features."

// AuthService implements signup, login, the token lifecycle, and favorites.
type AuthService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
}

func NewAuthService(users repositories.UserRepository, products repositories.ProductRepository) *AuthService {
	return &AuthService{users: users, products: products}
}

// SignupInput is the validated signup payload.
type SignupInput struct {
	Name                 string `json:"name" validate:"required,max=50"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"confirmPassword" validate:"required"`
}

// Signup registers a new customer and queues the verification email.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if in.Password != in.PasswordConfirmation {
		return nil, apperr.BadRequest("Passwords do not match")
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperr.BadRequest("Email is already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	plainToken, hashedToken, err := auth.NewSingleUseToken()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:                    in.Name,
		Email:                   in.Email,
		Password:                hashed,
		ProfileImage:            models.DefaultProfileImage,
		Role:                    models.RoleCustomer,
		VerificationToken:       hashedToken,
		VerificationTokenExpire: time.Now().Add(SignupVerificationTTL),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := queue.Dispatch(&jobs.VerificationEmailJob{
		Email: user.Email, Name: user.Name, Token: plainToken,
	}); err != nil {
		logger.WithCtx(ctx).Warn("signup: queue verification email", "error", err)
	}
	event.FireAsync("user.registered", user)

	return user, nil
}

// LoginResult carries everything the login response needs.
type LoginResult struct {
	Token   string
	User    *models.User
	Warning string // set for unverified accounts
}

// Login checks credentials and issues a JWT. Unknown email and wrong
// password fail with the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	token, err := auth.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}

	res := &LoginResult{Token: token, User: user}
	if !user.IsVerified {
		res.Warning = UnverifiedWarning
	}
	return res, nil
}

// SendVerificationEmail re-issues a short-lived verification token.
func (s *AuthService) SendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("User not found.")
	}
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperr.BadRequest("Email is already verified.")
	}

	plainToken, hashedToken, err := auth.NewSingleUseToken()
	if err != nil {
		return err
	}
	expire := time.Now().Add(ResendVerificationTTL)
	if err := s.users.SetVerificationToken(ctx, user.ID, hashedToken, expire); err != nil {
		return err
	}

	return queue.Dispatch(&jobs.VerificationEmailJob{
		Email: user.Email, Name: user.Name, Token: plainToken,
	})
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.users.FindByVerificationToken(ctx, auth.HashToken(token))
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.BadRequest("Invalid or expired token")
	}
	if err != nil {
		return err
	}
	return s.users.MarkVerified(ctx, user.ID)
}

// ForgotPassword issues a reset token and queues the reset email. If the
// email cannot be queued the token fields are cleared again.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("User not found with this email")
	}
	if err != nil {
		return err
	}

	plainToken, hashedToken, err := auth.NewSingleUseToken()
	if err != nil {
		return err
	}
	expire := time.Now().Add(PasswordResetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hashedToken, expire); err != nil {
		return err
	}

	if err := queue.Dispatch(&jobs.PasswordResetEmailJob{
		Email: user.Email, Name: user.Name, Token: plainToken,
	}); err != nil {
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			logger.WithCtx(ctx).Error("forgot-password: clear reset token", "error", clearErr)
		}
		return apperr.New(500, "Email could not be sent")
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if len(password) < 8 {
		return apperr.BadRequest("Password must be at least 8 characters long")
	}
	if password != confirm {
		return apperr.BadRequest("Passwords do not match")
	}

	user, err := s.users.FindByResetToken(ctx, auth.HashToken(token))
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.BadRequest("Invalid or expired token")
	}
	if err != nil {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hashed)
}

// ─── Favorites ───────────────────────────────────────────────────────────────

// Favorites returns the user's favorite products.
func (s *AuthService) Favorites(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("User not found.")
	}
	if err != nil {
		return nil, err
	}
	if len(user.Favorites) == 0 {
		return []models.Product{}, nil
	}
	return s.products.FindByIDs(ctx, user.Favorites)
}

// ToggleFavorite adds the product to the user's favorites, or removes it if
// already present. Returns true when the product ended up favorited.
func (s *AuthService) ToggleFavorite(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, apperr.NotFound("Product not found")
		}
		return false, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, apperr.NotFound("User not found.")
	}
	if err != nil {
		return false, err
	}

	for _, fav := range user.Favorites {
		if fav == productID {
			return false, s.users.RemoveFavorite(ctx, userID, productID)
		}
	}
	return true, s.users.AddFavorite(ctx, userID, productID)
}
