package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/pkg/apperr"
	"github.com/fusionfit/storefront/pkg/auth"
	"github.com/fusionfit/storefront/pkg/event"
)

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeProductRepo) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	return NewAuthService(users, products), users, products
}

func signupInput(email string) SignupInput {
	return SignupInput{
		Name:                 "Asha",
		Email:                email,
		Password:             "correct-horse",
		PasswordConfirmation: "correct-horse",
	}
}

func TestSignup(t *testing.T) {
	defer event.Flush()
	svc, users, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.False(t, user.IsVerified)
	assert.NotEmpty(t, user.VerificationToken)
	assert.True(t, user.VerificationTokenExpire.After(time.Now().Add(23*time.Hour)))

	// password stored hashed, never plain
	saved, err := users.FindByEmail(context.Background(), "asha@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct-horse", saved.Password)
	assert.True(t, auth.CheckPassword(saved.Password, "correct-horse"))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	defer event.Flush()
	svc, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	assert.NoError(t, err)

	_, err = svc.Signup(context.Background(), signupInput("asha@example.com"))
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Email is already registered", apperr.Message(err))
}

func TestSignupRejectsPasswordMismatch(t *testing.T) {
	svc, _, _ := newAuthFixture()

	in := signupInput("asha@example.com")
	in.PasswordConfirmation = "something-else"
	_, err := svc.Signup(context.Background(), in)
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Passwords do not match", apperr.Message(err))
}

func TestLogin(t *testing.T) {
	defer event.Flush()
	svc, users, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	res, err := svc.Login(context.Background(), "asha@example.com", "correct-horse")
	assert.NoError(t, err)
	assert.Equal(t, UnverifiedWarning, res.Warning)

	claims, err := auth.ValidateToken(res.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	// warning disappears once the account is verified
	_ = users.MarkVerified(context.Background(), user.ID)
	res, err = svc.Login(context.Background(), "asha@example.com", "correct-horse")
	assert.NoError(t, err)
	assert.Empty(t, res.Warning)
}

func TestLoginUniformError(t *testing.T) {
	defer event.Flush()
	svc, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	assert.NoError(t, err)

	// unknown email and wrong password are indistinguishable
	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "correct-horse")
	_, wrongErr := svc.Login(context.Background(), "asha@example.com", "wrong-password")

	assert.Equal(t, 401, apperr.Status(unknownErr))
	assert.Equal(t, 401, apperr.Status(wrongErr))
	assert.Equal(t, apperr.Message(unknownErr), apperr.Message(wrongErr))
	assert.Equal(t, "Invalid email or password", apperr.Message(wrongErr))
}

func TestVerifyEmail(t *testing.T) {
	defer event.Flush()
	svc, users, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// the stored token is a digest; forge the plain token to exercise the
	// hash-and-compare path
	plain, hashed, err := auth.NewSingleUseToken()
	assert.NoError(t, err)
	_ = users.SetVerificationToken(context.Background(), user.ID, hashed, time.Now().Add(time.Hour))

	assert.NoError(t, svc.VerifyEmail(context.Background(), plain))

	saved, _ := users.FindByID(context.Background(), user.ID)
	assert.True(t, saved.IsVerified)
	assert.Empty(t, saved.VerificationToken)

	// single use: a second attempt fails
	err = svc.VerifyEmail(context.Background(), plain)
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Invalid or expired token", apperr.Message(err))
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	defer event.Flush()
	svc, users, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	plain, hashed, _ := auth.NewSingleUseToken()
	_ = users.SetVerificationToken(context.Background(), user.ID, hashed, time.Now().Add(-time.Minute))

	err = svc.VerifyEmail(context.Background(), plain)
	assert.Equal(t, 400, apperr.Status(err))
}

func TestSendVerificationEmailAlreadyVerified(t *testing.T) {
	defer event.Flush()
	svc, users, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	_ = users.MarkVerified(context.Background(), user.ID)

	err = svc.SendVerificationEmail(context.Background(), "asha@example.com")
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Email is already verified.", apperr.Message(err))
}

func TestPasswordResetFlow(t *testing.T) {
	defer event.Flush()
	svc, users, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	assert.NoError(t, svc.ForgotPassword(context.Background(), "asha@example.com"))

	saved, _ := users.FindByID(context.Background(), user.ID)
	assert.NotEmpty(t, saved.ResetPasswordToken)

	plain, hashed, _ := auth.NewSingleUseToken()
	_ = users.SetResetToken(context.Background(), user.ID, hashed, time.Now().Add(time.Minute))

	err = svc.ResetPassword(context.Background(), plain, "new-password-1", "new-password-1")
	assert.NoError(t, err)

	// old password dead, new one works, token consumed
	_, err = svc.Login(context.Background(), "asha@example.com", "correct-horse")
	assert.Equal(t, 401, apperr.Status(err))
	_, err = svc.Login(context.Background(), "asha@example.com", "new-password-1")
	assert.NoError(t, err)

	err = svc.ResetPassword(context.Background(), plain, "another-pass-2", "another-pass-2")
	assert.Equal(t, 400, apperr.Status(err))
}

func TestResetPasswordValidation(t *testing.T) {
	svc, _, _ := newAuthFixture()

	err := svc.ResetPassword(context.Background(), "tok", "short", "short")
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Password must be at least 8 characters long", apperr.Message(err))

	err = svc.ResetPassword(context.Background(), "tok", "long-enough-1", "long-enough-2")
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Passwords do not match", apperr.Message(err))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.Equal(t, 404, apperr.Status(err))
	assert.Equal(t, "User not found with this email", apperr.Message(err))
}

func TestToggleFavorite(t *testing.T) {
	defer event.Flush()
	svc, users, products := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	pid := seedProduct(t, products, "Wrap Dress", 500, 10)

	favorited, err := svc.ToggleFavorite(context.Background(), user.ID, pid)
	assert.NoError(t, err)
	assert.True(t, favorited)

	favs, err := svc.Favorites(context.Background(), user.ID)
	assert.NoError(t, err)
	if assert.Len(t, favs, 1) {
		assert.Equal(t, pid, favs[0].ID)
	}

	// toggling again removes it
	favorited, err = svc.ToggleFavorite(context.Background(), user.ID, pid)
	assert.NoError(t, err)
	assert.False(t, favorited)

	favs, err = svc.Favorites(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Empty(t, favs)

	saved, _ := users.FindByID(context.Background(), user.ID)
	assert.Empty(t, saved.Favorites)
}

func TestToggleFavoriteUnknownProduct(t *testing.T) {
	defer event.Flush()
	svc, _, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), signupInput("asha@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err = svc.ToggleFavorite(context.Background(), user.ID, primitive.NewObjectID())
	assert.Equal(t, 404, apperr.Status(err))
	assert.Equal(t, "Product not found", apperr.Message(err))
}

func TestPurgeExpiredTokens(t *testing.T) {
	defer event.Flush()
	svc, users, _ := newAuthFixture()

	fresh, err := svc.Signup(context.Background(), signupInput("fresh@example.com"))
	assert.NoError(t, err)
	stale, err := svc.Signup(context.Background(), signupInput("stale@example.com"))
	assert.NoError(t, err)

	_, hashed, _ := auth.NewSingleUseToken()
	_ = users.SetVerificationToken(context.Background(), stale.ID, hashed, time.Now().Add(-time.Hour))

	n, err := users.PurgeExpiredTokens(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	kept, _ := users.FindByID(context.Background(), fresh.ID)
	assert.NotEmpty(t, kept.VerificationToken)
	purged, _ := users.FindByID(context.Background(), stale.ID)
	assert.Empty(t, purged.VerificationToken)
}
