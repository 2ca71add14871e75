// ABOUTME: MCP tool implementations for the dojo journal.
// ABOUTME: Exposes level, hydration, supplements, programs, and day history to assistants.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/progression"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_level",
		Description: "Get the current level, XP progress, and today's XP breakdown",
	}, s.handleGetLevel)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_water",
		Description: "Add (or with a negative amount, remove) water intake in ml",
	}, s.handleLogWater)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "toggle_supplement",
		Description: "Mark a supplement as taken, or untaken if it already was",
	}, s.handleToggleSupplement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_supplements",
		Description: "List supplements with today's intake status",
	}, s.handleListSupplements)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_supplement",
		Description: "Add a supplement to the daily checklist",
	}, s.handleAddSupplement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_supplement",
		Description: "Delete a supplement and its intake history",
	}, s.handleDeleteSupplement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_programs",
		Description: "List workout programs",
	}, s.handleListPrograms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_program",
		Description: "Get a workout program with its exercises",
	}, s.handleGetProgram)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_program",
		Description: "Create a workout program; omitted fields take defaults",
	}, s.handleCreateProgram)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_program",
		Description: "Delete a workout program; logged sessions are kept",
	}, s.handleDeleteProgram)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_days",
		Description: "List logged days, newest first",
	}, s.handleListDays)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_day",
		Description: "Get one day's sessions, hydration, and supplements",
	}, s.handleGetDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_stats",
		Description: "Get per-day totals for the seven days ending on a date",
	}, s.handleWeeklyStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_exercises",
		Description: "List the exercise catalog programs can reference",
	}, s.handleListExercises)
}

// Tool input/output types

type emptyInput struct{}

type dateInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type levelOutput struct {
	Level          int     `json:"level"`
	TotalXP        int     `json:"total_xp"`
	CurrentLevelXP int     `json:"current_level_xp"`
	XPForNextLevel int     `json:"xp_for_next_level"`
	ProgressPct    float64 `json:"progress_pct"`
	TodayXP        int     `json:"today_xp"`
	TodaySessionXP int     `json:"today_session_xp"`
	HydrationXP    int     `json:"today_hydration_xp"`
	SupplementXP   int     `json:"today_supplement_xp"`
}

type logWaterInput struct {
	AmountML int    `json:"amount_ml" jsonschema:"Water in ml; negative removes"`
	Date     string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type waterOutput struct {
	Date        string `json:"date"`
	HydrationML int    `json:"hydration_ml"`
	GoalML      int    `json:"goal_ml"`
	Message     string `json:"message"`
}

type toggleSupplementInput struct {
	Supplement string `json:"supplement" jsonschema:"Supplement ID, ID prefix, or name"`
	Date       string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type toggleOutput struct {
	Date    string `json:"date"`
	Name    string `json:"name"`
	Taken   bool   `json:"taken"`
	Message string `json:"message"`
}

type addSupplementInput struct {
	Name   string `json:"name" jsonschema:"Supplement name"`
	Dosage string `json:"dosage" jsonschema:"Dosage, for example 5g or 1 capsule"`
	Time   string `json:"time,omitempty" jsonschema:"When to take it, for example Morning"`
	Notes  string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type refInput struct {
	ID string `json:"id" jsonschema:"ID, ID prefix, or name"`
}

type simpleOutput struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

type exerciseInput struct {
	ExerciseID string `json:"exercise_id" jsonschema:"Catalog exercise ID, see list_exercises"`
	Reps       int    `json:"reps,omitempty" jsonschema:"Target reps"`
	TimeSec    int    `json:"time_sec,omitempty" jsonschema:"Target duration in seconds; wins over reps"`
	Sets       int    `json:"sets,omitempty" jsonschema:"Sets in series mode, defaults to 1"`
	RestSec    *int   `json:"rest_sec,omitempty" jsonschema:"Rest after the exercise in seconds; 0 means none"`
}

type createProgramInput struct {
	Name                 string          `json:"name" jsonschema:"Program name"`
	Mode                 string          `json:"mode,omitempty" jsonschema:"series or sets, defaults to series"`
	Rounds               int             `json:"rounds,omitempty" jsonschema:"Rounds in sets mode, defaults to 1"`
	RestBetweenRoundsSec *int            `json:"rest_between_rounds_sec,omitempty" jsonschema:"Rest between rounds in seconds"`
	Category             []string        `json:"category,omitempty" jsonschema:"Categories; Running records distance"`
	Equipment            []string        `json:"equipment,omitempty" jsonschema:"Equipment needed"`
	EstDurationMin       int             `json:"est_duration_min,omitempty" jsonschema:"Estimated duration in minutes"`
	Intensity            int             `json:"intensity,omitempty" jsonschema:"Intensity from 1 to 5"`
	Exercises            []exerciseInput `json:"exercises" jsonschema:"Ordered exercises"`
}

type listDaysInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max days (default 14)"`
}

// Tool handlers

func (s *Server) resolveDate(date string) (string, error) {
	if date == "" {
		return s.journal.Today(), nil
	}
	if _, err := models.ParseDateKey(date); err != nil {
		return "", err
	}
	return date, nil
}

func (s *Server) handleGetLevel(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, levelOutput, error) {
	info, err := s.journal.Level()
	if err != nil {
		return nil, levelOutput{}, fmt.Errorf("failed to compute level: %w", err)
	}
	today, err := s.journal.Breakdown(s.journal.Today())
	if err != nil {
		return nil, levelOutput{}, fmt.Errorf("failed to compute today's XP: %w", err)
	}
	return nil, newLevelOutput(info, today), nil
}

func newLevelOutput(info progression.LevelInfo, today progression.DayBreakdown) levelOutput {
	return levelOutput{
		Level:          info.Level,
		TotalXP:        info.TotalXP,
		CurrentLevelXP: info.CurrentLevelXP,
		XPForNextLevel: info.XPForNextLevel,
		ProgressPct:    info.Progress(),
		TodayXP:        today.Total(),
		TodaySessionXP: today.SessionXP,
		HydrationXP:    today.HydrationXP,
		SupplementXP:   today.SupplementXP,
	}
}

func (s *Server) handleLogWater(ctx context.Context, req *mcp.CallToolRequest, input logWaterInput) (*mcp.CallToolResult, waterOutput, error) {
	if input.AmountML == 0 {
		return nil, waterOutput{}, fmt.Errorf("amount_ml must not be zero")
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, waterOutput{}, err
	}

	day, err := s.journal.AdjustHydration(date, input.AmountML)
	if err != nil {
		return nil, waterOutput{}, fmt.Errorf("failed to log water: %w", err)
	}

	goal := s.journal.Rules().HydrationGoalML
	return nil, waterOutput{
		Date:        date,
		HydrationML: day.Hydration,
		GoalML:      goal,
		Message:     fmt.Sprintf("Hydration on %s: %d / %d ml", date, day.Hydration, goal),
	}, nil
}

func (s *Server) handleToggleSupplement(ctx context.Context, req *mcp.CallToolRequest, input toggleSupplementInput) (*mcp.CallToolResult, toggleOutput, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, toggleOutput{}, err
	}
	sup, err := s.journal.Supplement(input.Supplement)
	if err != nil {
		return nil, toggleOutput{}, fmt.Errorf("supplement not found: %s", input.Supplement)
	}

	day, err := s.journal.ToggleSupplement(date, sup.ID.String())
	if err != nil {
		return nil, toggleOutput{}, fmt.Errorf("failed to toggle supplement: %w", err)
	}

	taken := day.SupplementLog[sup.Key()]
	state := "not taken"
	if taken {
		state = "taken"
	}
	return nil, toggleOutput{
		Date:    date,
		Name:    sup.Name,
		Taken:   taken,
		Message: fmt.Sprintf("%s marked %s on %s", sup.Name, state, date),
	}, nil
}

func (s *Server) handleListSupplements(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, nil, err
	}
	sups, err := s.journal.Supplements()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list supplements: %w", err)
	}
	if len(sups) == 0 {
		return nil, map[string]any{"message": "No supplements found."}, nil
	}
	day, err := s.journal.Day(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load day: %w", err)
	}

	items := make([]map[string]any, 0, len(sups))
	for _, sup := range sups {
		items = append(items, map[string]any{
			"id":     sup.ID.String(),
			"name":   sup.Name,
			"dosage": sup.Dosage,
			"time":   sup.Time,
			"notes":  sup.Notes,
			"taken":  day.SupplementLog[sup.Key()],
		})
	}
	return nil, map[string]any{"date": date, "supplements": items}, nil
}

func (s *Server) handleAddSupplement(ctx context.Context, req *mcp.CallToolRequest, input addSupplementInput) (*mcp.CallToolResult, simpleOutput, error) {
	sup := models.NewSupplement(input.Name, input.Dosage, input.Time)
	if input.Notes != "" {
		sup.WithNotes(input.Notes)
	}
	if err := s.journal.AddSupplement(sup); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add supplement: %w", err)
	}
	return nil, simpleOutput{
		ID:      sup.ID.String()[:8],
		Message: fmt.Sprintf("Added supplement %s (%s)", sup.Name, sup.Dosage),
	}, nil
}

func (s *Server) handleDeleteSupplement(ctx context.Context, req *mcp.CallToolRequest, input refInput) (*mcp.CallToolResult, simpleOutput, error) {
	sup, touched, err := s.journal.DeleteSupplement(input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete supplement: %w", err)
	}
	return nil, simpleOutput{
		ID:      sup.ID.String()[:8],
		Message: fmt.Sprintf("Deleted supplement %s (removed from %d days)", sup.Name, touched),
	}, nil
}

func (s *Server) handleListPrograms(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	programs, err := s.journal.Programs()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list programs: %w", err)
	}
	if len(programs) == 0 {
		return nil, map[string]any{"message": "No programs found."}, nil
	}

	items := make([]map[string]any, 0, len(programs))
	for _, p := range programs {
		items = append(items, map[string]any{
			"id":               p.ID.String(),
			"name":             p.Name,
			"mode":             p.Mode,
			"exercises":        len(p.Exercises),
			"category":         p.Category,
			"est_duration_min": p.EstDurationMin,
			"intensity":        p.Intensity,
		})
	}
	return nil, map[string]any{"programs": items}, nil
}

func (s *Server) handleGetProgram(ctx context.Context, req *mcp.CallToolRequest, input refInput) (*mcp.CallToolResult, any, error) {
	p, err := s.journal.Program(input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("program not found: %s", input.ID)
	}

	exercises := make([]map[string]any, 0, len(p.Exercises))
	for _, e := range p.Exercises {
		exercises = append(exercises, map[string]any{
			"exercise_id": e.ExerciseID,
			"name":        s.catalog.Name(e.ExerciseID),
			"reps":        e.Target.Reps,
			"time_sec":    e.Target.TimeSec,
			"sets":        e.SetCount(),
			"rest_sec":    e.Rest(s.journal.Rules().DefaultExerciseRestSec),
		})
	}
	out := map[string]any{
		"id":               p.ID.String(),
		"name":             p.Name,
		"mode":             p.Mode,
		"category":         p.Category,
		"equipment":        p.Equipment,
		"est_duration_min": p.EstDurationMin,
		"intensity":        p.Intensity,
		"exercises":        exercises,
	}
	if p.Mode == models.ModeSets {
		out["rounds"] = p.RoundCount()
		out["rest_between_rounds_sec"] = p.RoundRest(s.journal.Rules().DefaultRoundRestSec)
	}
	return nil, out, nil
}

func (s *Server) handleCreateProgram(ctx context.Context, req *mcp.CallToolRequest, input createProgramInput) (*mcp.CallToolResult, simpleOutput, error) {
	mode := models.Mode(strings.ToLower(strings.TrimSpace(input.Mode)))
	if mode == "" {
		mode = models.ModeSeries
	}

	exercises := make([]models.ProgramExercise, 0, len(input.Exercises))
	for _, e := range input.Exercises {
		exercises = append(exercises, models.ProgramExercise{
			ExerciseID: e.ExerciseID,
			Target:     models.Target{Reps: e.Reps, TimeSec: e.TimeSec},
			Sets:       e.Sets,
			RestSec:    e.RestSec,
		})
	}

	p := models.NewProgram(strings.TrimSpace(input.Name), mode, exercises...)
	p.Rounds = input.Rounds
	p.RestBetweenRoundsSec = input.RestBetweenRoundsSec
	p.Category = input.Category
	p.Equipment = input.Equipment
	p.EstDurationMin = input.EstDurationMin
	p.Intensity = input.Intensity

	if err := s.journal.AddProgram(p, s.catalog); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to create program: %w", err)
	}
	return nil, simpleOutput{
		ID:      p.ID.String()[:8],
		Message: fmt.Sprintf("Created %s program %q with %d exercises", p.Mode, p.Name, len(p.Exercises)),
	}, nil
}

func (s *Server) handleDeleteProgram(ctx context.Context, req *mcp.CallToolRequest, input refInput) (*mcp.CallToolResult, simpleOutput, error) {
	p, err := s.journal.DeleteProgram(input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete program: %w", err)
	}
	return nil, simpleOutput{
		ID:      p.ID.String()[:8],
		Message: fmt.Sprintf("Deleted program %s", p.Name),
	}, nil
}

func (s *Server) handleListDays(ctx context.Context, req *mcp.CallToolRequest, input listDaysInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 14
	}
	days, err := s.journal.Days()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list days: %w", err)
	}
	if len(days) == 0 {
		return nil, map[string]any{"message": "No days logged."}, nil
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	if len(days) > input.Limit {
		days = days[:input.Limit]
	}

	items := make([]map[string]any, 0, len(days))
	for _, d := range days {
		b, err := s.journal.Breakdown(d.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to compute XP for %s: %w", d.Date, err)
		}
		items = append(items, map[string]any{
			"date":         d.Date,
			"sessions":     len(d.Sessions),
			"hydration_ml": d.Hydration,
			"volume_kg":    d.TotalVolume(),
			"distance_km":  d.TotalDistance(),
			"xp":           b.Total(),
		})
	}
	return nil, map[string]any{"days": items}, nil
}

func (s *Server) handleGetDay(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, nil, err
	}
	day, err := s.journal.Day(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load day: %w", err)
	}
	b, err := s.journal.Breakdown(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute XP: %w", err)
	}
	return nil, map[string]any{
		"date":         day.Date,
		"sessions":     day.Sessions,
		"hydration_ml": day.Hydration,
		"supplements":  day.SupplementLog,
		"xp":           b,
	}, nil
}

func (s *Server) handleWeeklyStats(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	end := s.journal.Now()
	if input.Date != "" {
		t, err := models.ParseDateKey(input.Date)
		if err != nil {
			return nil, nil, err
		}
		end = t
	}
	week, err := s.journal.Week(end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute weekly stats: %w", err)
	}
	return nil, map[string]any{"days": week}, nil
}

func (s *Server) handleListExercises(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	return nil, map[string]any{"exercises": s.catalog.Sorted()}, nil
}
