package handlers

import (
	"github.com/gofiber/fiber/v2"

	"league-night-system/models"
	"league-night-system/services"
)

// SessionHandler serves the commissioner's league-night workflow.
type SessionHandler struct {
	league *services.LeagueService
	holder *services.SessionHolder
}

func NewSessionHandler(league *services.LeagueService, holder *services.SessionHolder) *SessionHandler {
	return &SessionHandler{league: league, holder: holder}
}

func SetupSessionRoutes(router fiber.Router, h *SessionHandler) {
	router.Get("/session", h.GetSession)
	router.Put("/session/settings", h.UpdateSettings)
	router.Post("/session/teams/generate", h.GenerateTeams)
	router.Post("/session/teams/swap", h.SwapPlayers)
	router.Post("/session/teams/move", h.MovePlayer)
	router.Post("/session/schedule/generate", h.GenerateSchedule)
	router.Patch("/session/matches/:id/result", h.SetResult)
	router.Post("/session/results/save", h.SaveResults)
	router.Post("/session/rule/suggest", h.SuggestRule)
	router.Post("/session/publish", h.Publish)
}

type sessionView struct {
	*services.Session
	Strategy services.BalanceStrategy `json:"strategy"`
	Schedule []models.Match           `json:"schedule"`
	Summary  services.LedgerSummary   `json:"summary"`
	Tallies  []teamTally              `json:"tallies"`
}

// teamTally is what the commissioner checks before tweaking teams by hand.
type teamTally struct {
	Team       string `json:"team"`
	SkillTotal int    `json:"skill_total"`
	Guys       int    `json:"guys"`
	Gals       int    `json:"gals"`
}

func (h *SessionHandler) view(s *services.Session) sessionView {
	clone := s.Clone()
	tallies := make([]teamTally, len(clone.Teams))
	for i, t := range clone.Teams {
		guys, gals := t.GenderCounts()
		tallies[i] = teamTally{Team: t.Name, SkillTotal: t.SkillTotal(), Guys: guys, Gals: gals}
	}
	return sessionView{
		Session:  clone,
		Strategy: h.league.StrategyFor(s.Mode.Format),
		Schedule: s.Ledger().Matches(),
		Summary:  s.Ledger().Save(),
		Tallies:  tallies,
	}
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	var out sessionView
	h.holder.With(func(s *services.Session) error {
		out = h.view(s)
		return nil
	})
	return c.JSON(out)
}

type settingsRequest struct {
	Format      *string `json:"format"`
	Variant     *string `json:"variant"`
	TeamSize    *int    `json:"team_size"`
	PointsToWin *int    `json:"points_to_win"`
}

// UpdateSettings changes the mode, team size or points to win. Omitted
// fields are left alone. Switching away from KOTC resets the variant.
func (h *SessionHandler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	var out sessionView
	err := h.holder.With(func(s *services.Session) error {
		mode := s.Mode
		if req.Format != nil {
			f, err := models.ParseFormat(*req.Format)
			if err != nil {
				return validationErr(err)
			}
			mode.Format = f
		}
		if req.Variant != nil {
			v, err := models.ParseVariant(*req.Variant)
			if err != nil {
				return validationErr(err)
			}
			mode.Variant = v
		}
		if mode.Format != models.FormatKingOfTheCourt {
			mode.Variant = models.VariantStandard
		}
		if req.TeamSize != nil && *req.TeamSize < 1 {
			return validationMsg("team_size must be at least 1")
		}
		if req.PointsToWin != nil && *req.PointsToWin < 1 {
			return validationMsg("points_to_win must be at least 1")
		}

		if mode != s.Mode {
			s.ActiveRule = nil
		}
		s.Mode = mode
		if req.TeamSize != nil {
			s.TeamSize = *req.TeamSize
		}
		if req.PointsToWin != nil {
			s.PointsToWin = *req.PointsToWin
		}
		out = h.view(s)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GenerateTeams accepts an optional {"strategy": "..."} override.
func (h *SessionHandler) GenerateTeams(c *fiber.Ctx) error {
	var req struct {
		Strategy string `json:"strategy"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	var strategy services.BalanceStrategy
	if req.Strategy != "" {
		parsed, err := services.ParseBalanceStrategy(req.Strategy)
		if err != nil {
			return respondError(c, err)
		}
		strategy = parsed
	}

	var teams []models.Team
	err := h.holder.With(func(s *services.Session) error {
		if err := h.league.LoadRoster(c.UserContext(), s); err != nil {
			return err
		}
		generated, err := h.league.GenerateTeams(s, strategy)
		teams = services.CloneTeams(generated)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"teams": teams})
}

type swapRequest struct {
	TeamA   int    `json:"team_a"`
	PlayerA string `json:"player_a"`
	TeamB   int    `json:"team_b"`
	PlayerB string `json:"player_b"`
}

func (h *SessionHandler) SwapPlayers(c *fiber.Ctx) error {
	var req swapRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.editTeams(c, func(s *services.Session) error {
		return s.SwapPlayers(req.TeamA, req.PlayerA, req.TeamB, req.PlayerB)
	})
}

type moveRequest struct {
	PlayerID string `json:"player_id"`
	ToTeam   int    `json:"to_team"`
}

func (h *SessionHandler) MovePlayer(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.editTeams(c, func(s *services.Session) error {
		return s.MovePlayer(req.PlayerID, req.ToTeam)
	})
}

func (h *SessionHandler) editTeams(c *fiber.Ctx, edit func(*services.Session) error) error {
	var teams []models.Team
	err := h.holder.With(func(s *services.Session) error {
		if err := edit(s); err != nil {
			return err
		}
		teams = services.CloneTeams(s.Teams)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"teams": teams})
}

func (h *SessionHandler) GenerateSchedule(c *fiber.Ctx) error {
	var result *services.ScheduleResult
	err := h.holder.With(func(s *services.Session) error {
		r, err := h.league.GenerateSchedule(s)
		result = r
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	if result.Excluded == nil {
		result.Excluded = []models.Player{}
	}
	return c.JSON(result)
}

type resultRequest struct {
	Side  string `json:"side"`
	Value *int   `json:"value"`
}

// SetResult enters or clears (null value) one side's result.
func (h *SessionHandler) SetResult(c *fiber.Ctx) error {
	var req resultRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	var match models.Match
	err := h.holder.With(func(s *services.Session) error {
		m, err := s.Ledger().SetResult(c.Params("id"), models.Side(req.Side), req.Value)
		match = m
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(match)
}

func (h *SessionHandler) SaveResults(c *fiber.Ctx) error {
	var summary services.LedgerSummary
	h.holder.With(func(s *services.Session) error {
		summary = s.Ledger().Save()
		return nil
	})
	return c.JSON(summary)
}

func (h *SessionHandler) SuggestRule(c *fiber.Ctx) error {
	var req struct {
		Hint string `json:"hint"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	var rule *models.RuleText
	err := h.holder.With(func(s *services.Session) error {
		r, err := h.league.SuggestRule(c.UserContext(), s, req.Hint)
		rule = r
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rule)
}

func (h *SessionHandler) Publish(c *fiber.Ctx) error {
	var ack *services.PublishAck
	err := h.holder.With(func(s *services.Session) error {
		a, err := h.league.Publish(c.UserContext(), s)
		ack = a
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ack)
}
