package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/voicecanvas/voicecanvas/app/repository"
	"github.com/voicecanvas/voicecanvas/internal/pkg/usercontext"
)

// UserPlanController answers the authenticated plan/quota read. First read
// for a fresh account creates the trial defaults.
type UserPlanController struct {
	plans repository.PlanRepository
}

func NewUserPlanController(plans repository.PlanRepository) *UserPlanController {
	return &UserPlanController{plans: plans}
}

// HandleGetPlan handles GET /api/user/plan.
func (pc *UserPlanController) HandleGetPlan(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	now := time.Now()
	sub, quota, err := pc.plans.GetOrCreatePlan(userCtx.UserID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		log.Errorf("[Plan] Loading plan for user %d failed: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load plan"})
	}

	return c.JSON(fiber.Map{
		"subscription": fiber.Map{
			"planType":  sub.PlanType,
			"startDate": sub.StartDate,
			"endDate":   sub.EndDate,
			"status":    sub.Status,
			"isActive":  sub.IsActive(now),
		},
		"quota": fiber.Map{
			"permanentQuota": quota.PermanentQuota,
			"temporaryQuota": quota.TemporaryQuota,
			"usedCharacters": quota.UsedCharacters,
			"quotaExpiry":    quota.QuotaExpiry,
			"remaining":      quota.Remaining(now),
		},
	})
}
