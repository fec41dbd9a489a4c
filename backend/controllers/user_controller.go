package controllers

import (
	"strings"

	"academy/backend/certificate"
	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/stats"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Stats        *stats.Recorder
	Certificates *certificate.Issuer
}

func NewUserController(db *gorm.DB, cfg *config.Config, st *stats.Recorder, certs *certificate.Issuer) *UserController {
	return &UserController{DB: db, Cfg: cfg, Stats: st, Certificates: certs}
}

type UpdateUserRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	OldPassword string  `json:"old_password"`
	NewPassword string  `json:"new_password" validate:"omitempty,min=8,max=72"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile and learning stats
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := uc.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	st, err := uc.Stats.Get(c.UserContext(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load stats")
	}

	var lastLogin models.LoginHistory
	if err := uc.DB.Where("user_id = ?", userID).Order("login_time DESC").Limit(1).Find(&lastLogin).Error; err != nil {
		return utils.InternalServerError(c, "Could not load login history")
	}

	profile := fiber.Map{
		"user":  user,
		"stats": st,
	}
	if !lastLogin.LoginTime.IsZero() {
		profile["last_login"] = lastLogin.LoginTime
	}
	return utils.Success(c, fiber.StatusOK, profile)
}

// UpdateProfile changes names, avatar or password. A password change needs the old password.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req UpdateUserRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	var user models.User
	if err := uc.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			return utils.BadRequest(c, "Old password is incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return utils.BadRequest(c, "Nothing to update")
	}

	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}
	if err := uc.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.InternalServerError(c, "Could not reload profile")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

func (uc *UserController) GetCertificates(c *fiber.Ctx) error {
	certs, err := uc.Certificates.ListByLearner(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not load certificates")
	}
	return utils.Success(c, fiber.StatusOK, certs)
}
