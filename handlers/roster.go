package handlers

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"league-night-system/models"
	"league-night-system/services"
)

type playerRequest struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Skill  int    `json:"skill"`
}

type presenceRequest struct {
	Present *bool `json:"present"`
}

// RosterHandler serves the commissioner's player pool routes. Every change
// is mirrored into the in-process session roster.
type RosterHandler struct {
	league *services.LeagueService
	holder *services.SessionHolder
}

func NewRosterHandler(league *services.LeagueService, holder *services.SessionHolder) *RosterHandler {
	return &RosterHandler{league: league, holder: holder}
}

func SetupRosterRoutes(router fiber.Router, h *RosterHandler) {
	router.Get("/players", h.ListPlayers)
	router.Post("/players", h.CreatePlayer)
	router.Post("/players/import", h.ImportPlayers)
	router.Get("/players/export", h.ExportPlayers)
	router.Post("/players/presence/reset", h.ResetPresence)
	router.Put("/players/:id", h.UpdatePlayer)
	router.Delete("/players/:id", h.DeletePlayer)
	router.Patch("/players/:id/presence", h.SetPresence)
}

// ListPlayers supports ?q= (accent-insensitive name search) and ?present=true.
func (h *RosterHandler) ListPlayers(c *fiber.Ctx) error {
	presentOnly, _ := strconv.ParseBool(c.Query("present"))
	players, err := h.league.Roster.List(c.UserContext(), c.Query("q"), presentOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(players)
}

func (h *RosterHandler) CreatePlayer(c *fiber.Ctx) error {
	var req playerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	gender, err := models.ParseGender(req.Gender)
	if err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.league.Roster.Add(c.UserContext(), req.Name, gender, req.Skill)
	if err != nil {
		return respondError(c, err)
	}
	h.reloadRoster(c.UserContext())
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *RosterHandler) UpdatePlayer(c *fiber.Ctx) error {
	var req struct {
		playerRequest
		Present bool `json:"present"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	gender, err := models.ParseGender(req.Gender)
	if err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.league.Roster.Update(c.UserContext(), models.Player{
		ID:      c.Params("id"),
		Name:    req.Name,
		Gender:  gender,
		Skill:   req.Skill,
		Present: req.Present,
	})
	if err != nil {
		return respondError(c, err)
	}
	h.reloadRoster(c.UserContext())
	return c.JSON(p)
}

func (h *RosterHandler) DeletePlayer(c *fiber.Ctx) error {
	if err := h.league.Roster.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	h.reloadRoster(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPresence toggles check-in through the session so a store failure
// rolls back the local roster.
func (h *RosterHandler) SetPresence(c *fiber.Ctx) error {
	var req presenceRequest
	if err := c.BodyParser(&req); err != nil || req.Present == nil {
		return badRequest(c, "present is required")
	}
	id := c.Params("id")

	var player *models.Player
	err := h.holder.With(func(s *services.Session) error {
		if err := h.league.SetPresence(c.UserContext(), s, id, *req.Present); err != nil {
			return err
		}
		for i := range s.Roster {
			if s.Roster[i].ID == id {
				p := s.Roster[i]
				player = &p
			}
		}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	if player == nil {
		h.reloadRoster(c.UserContext())
		return c.JSON(fiber.Map{"id": id, "present": *req.Present})
	}
	return c.JSON(player)
}

func (h *RosterHandler) ResetPresence(c *fiber.Ctx) error {
	err := h.holder.With(func(s *services.Session) error {
		return h.league.ResetPresence(c.UserContext(), s)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ImportPlayers takes a raw name,gender,skill CSV body.
func (h *RosterHandler) ImportPlayers(c *fiber.Ctx) error {
	records, rejected, err := services.ParseRosterCSV(bytes.NewReader(c.Body()))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":    err.Error(),
				"rejected": rejected,
			})
		}
		return respondError(c, err)
	}

	result, err := h.league.Roster.Import(c.UserContext(), records, rejected)
	if err != nil {
		return respondError(c, err)
	}
	h.reloadRoster(c.UserContext())
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *RosterHandler) ExportPlayers(c *fiber.Ctx) error {
	players, err := h.league.Roster.List(c.UserContext(), "", false)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := services.WriteRosterCSV(&buf, players); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="roster.csv"`)
	return c.Send(buf.Bytes())
}

// reloadRoster keeps the session copy in step with the store. A failure
// here only leaves the session stale until the next reload.
func (h *RosterHandler) reloadRoster(ctx context.Context) {
	err := h.holder.With(func(s *services.Session) error {
		return h.league.LoadRoster(ctx, s)
	})
	if err != nil {
		log.Warn().Err(err).Str("component", "roster").Msg("session roster reload failed")
	}
}
