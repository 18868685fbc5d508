package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/app/resources"
	"github.com/fusionfit/storefront/app/services"
	"github.com/fusionfit/storefront/pkg/bind"
	"github.com/fusionfit/storefront/pkg/response"
)

// AuthController exposes signup, login, the token flows, and favorites.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.auth.Signup(r.Context(), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, response.M{
		"message": "User registered successfully. Please verify your email.",
		"user": response.M{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	res, err := c.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	body := response.M{
		"message": "Login successful",
		"token":   res.Token,
		"user":    resources.User(res.User),
	}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	response.OK(w, body)
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (c *AuthController) SendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.auth.SendVerificationEmail(r.Context(), in.Email); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"message": "Verification email sent successfully."})
}

func (c *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := c.auth.VerifyEmail(r.Context(), token); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"message": "Email successfully verified!"})
}

func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.auth.ForgotPassword(r.Context(), in.Email); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"message": "Password reset email sent successfully"})
}

type resetPasswordRequest struct {
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"confirmPassword" validate:"required"`
}

func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetPasswordRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token := chi.URLParam(r, "token")
	if err := c.auth.ResetPassword(r.Context(), token, in.Password, in.PasswordConfirmation); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"message": "Password reset successfully! You can now log in."})
}

// ─── Favorites ───────────────────────────────────────────────────────────────

func (c *AuthController) Favorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	products, err := c.auth.Favorites(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"favorites": products})
}

func (c *AuthController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	favorited, err := c.auth.ToggleFavorite(r.Context(), userID, productID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	message := "Product removed from favorites"
	if favorited {
		message = "Product added to favorites"
	}
	response.OK(w, response.M{"message": message, "favorited": favorited})
}
