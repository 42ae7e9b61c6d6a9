package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/voicecanvas/voicecanvas/app/repository"
	"github.com/voicecanvas/voicecanvas/internal/pkg/gate"
	"github.com/voicecanvas/voicecanvas/internal/pkg/speech"
	"github.com/voicecanvas/voicecanvas/internal/pkg/usercontext"
)

type synthesizer interface {
	Synthesize(ctx context.Context, req speech.Request) ([]byte, error)
}

type slotGate interface {
	Acquire(ctx context.Context, identity gate.Identity) error
	Release(identity gate.Identity)
}

// SpeechController serves the synthesis endpoint behind the per-identity
// concurrency gate.
type SpeechController struct {
	speech synthesizer
	gate   slotGate
	plans  repository.PlanRepository
}

// NewSpeechController wires the controller from its collaborators.
func NewSpeechController(speechSvc synthesizer, slots slotGate, plans repository.PlanRepository) *SpeechController {
	return &SpeechController{speech: speechSvc, gate: slots, plans: plans}
}

type speechRequest struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	VoiceID  string  `json:"voiceId"`
	IsFemale bool    `json:"isFemale"`
	Speed    float64 `json:"speed"`
	Service  string  `json:"service"`
}

// HandleSynthesize handles POST /api/speech.
func (sc *SpeechController) HandleSynthesize(c *fiber.Ctx) error {
	var body speechRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	userCtx := usercontext.GetUserContext(c)
	identity := gate.AnonymousIdentity()
	if userCtx.IsLoggedIn {
		identity = gate.UserIdentity(userCtx.Email)
	}

	if err := sc.gate.Acquire(c.Context(), identity); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "synthesis slot unavailable"})
	}
	defer sc.gate.Release(identity)

	characters := int64(len([]rune(body.Text)))
	if userCtx.IsLoggedIn {
		_, quota, err := sc.plans.GetOrCreatePlan(userCtx.UserID, time.Now())
		if err != nil {
			log.Errorf("[Speech] Quota lookup for user %d failed: %v", userCtx.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "quota lookup failed"})
		}
		if quota.Remaining(time.Now()) < characters {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "character quota exceeded"})
		}
	}

	audio, err := sc.speech.Synthesize(c.Context(), speech.Request{
		Text:     body.Text,
		Language: body.Language,
		VoiceID:  body.VoiceID,
		Female:   body.IsFemale,
		Speed:    body.Speed,
		Provider: speech.Provider(body.Service),
	})
	if err != nil {
		return speechError(c, err)
	}

	if userCtx.IsLoggedIn {
		if err := sc.plans.ConsumeCharacters(userCtx.UserID, characters); err != nil {
			// The audio is already rendered; losing the debit is better
			// than failing the request.
			log.Errorf("[Speech] Quota debit for user %d failed: %v", userCtx.UserID, err)
		}
	}

	c.Set(fiber.HeaderContentType, "audio/mp3")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(audio)
}

func speechError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, speech.ErrEmptyText), errors.Is(err, speech.ErrUnsupportedLanguage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, speech.ErrProviderTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "speech provider timed out"})
	default:
		log.Errorf("[Speech] Synthesis failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "speech synthesis failed"})
	}
}
