package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deepworkai/deepwork/internal/config"
	"github.com/deepworkai/deepwork/internal/database"
	"github.com/deepworkai/deepwork/internal/focus"
	"github.com/deepworkai/deepwork/internal/models"
	"github.com/deepworkai/deepwork/internal/reporter"
	"github.com/deepworkai/deepwork/pkg/utils"

	"gorm.io/gorm"
)

// Store is the read side of the repository plus goal creation.
type Store interface {
	CreateProject(project *models.Project) error
	ListProjects(owner string) ([]models.Project, error)
	ListSessions(projectID uint) ([]models.StudySession, error)
	GetSession(id uint) (*models.StudySession, error)
	ListSessionsBetween(since, until time.Time) ([]models.StudySession, error)
}

// LiveController exposes the session currently being tracked, if any.
type LiveController interface {
	Current() *focus.Session
}

type Handler struct {
	config   *config.Config
	repo     Store
	live     LiveController
	reporter *reporter.Reporter
}

func NewHandler(cfg *config.Config, repo Store, live LiveController) *Handler {
	return &Handler{
		config:   cfg,
		repo:     repo,
		live:     live,
		reporter: reporter.New(cfg, repo),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/projects", h.handleProjects)
	mux.HandleFunc("/api/sessions", h.handleSessions)
	mux.HandleFunc("/api/sessions/", h.handleSession)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/live", h.handleLive)
	mux.HandleFunc("/api/live/", h.handleLiveAction)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

type createProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		projects, err := h.repo.ListProjects(h.config.User.Name)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to list goals: %v", err), http.StatusInternalServerError)
			return
		}
		respondJSON(w, projects)
	case http.MethodPost:
		var req createProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}
		project := &models.Project{
			Name:        req.Name,
			Description: req.Description,
			Deadline:    req.Deadline,
			CreatedBy:   h.config.User.Name,
		}
		if err := h.repo.CreateProject(project); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, database.ErrProjectExists) {
				status = http.StatusConflict
			} else if strings.TrimSpace(req.Name) == "" {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		respondJSONStatus(w, http.StatusCreated, project)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var projectID uint
	if s := r.URL.Query().Get("project"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "Invalid project id", http.StatusBadRequest)
			return
		}
		projectID = uint(id)
	}

	sessions, err := h.repo.ListSessions(projectID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list sessions: %v", err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, sessions)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	session, err := h.repo.GetSession(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch session: %v", err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, session)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		if strings.HasPrefix(err.Error(), "invalid period") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		respondReportHTML(w, report)
		return
	}
	respondJSON(w, report)
}

func respondReportHTML(w http.ResponseWriter, report *models.Report) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(report.Goals) == 0 {
		w.Write([]byte(`<div class="loading">No sessions yet</div>`))
		return
	}

	var b strings.Builder
	b.WriteString(`<div class="listing">`)
	for _, g := range report.Goals {
		fmt.Fprintf(&b, `
		<div class="goal-item" style="--bar-width: %.1f%%">
			<span class="goal-name">%s</span>
			<div>
				<span class="goal-time">%s</span>
				<span class="goal-percentage">%.0f%% focused</span>
			</div>
		</div>`, g.Percentage, html.EscapeString(g.ProjectName),
			utils.FormatRoundedUnit(g.FocusSeconds), g.MeanFocusPercentage)
	}
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div class="total">Focus: %s &middot; Distracted: %s</div>`,
		utils.FormatRoundedUnit(report.FocusSeconds),
		utils.FormatRoundedUnit(report.DistractedSeconds))

	w.Write([]byte(b.String()))
}

func (h *Handler) current() *focus.Session {
	if h.live == nil {
		return nil
	}
	return h.live.Current()
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := h.current()
	if r.Header.Get("HX-Request") == "true" {
		respondLiveHTML(w, session)
		return
	}
	if session == nil {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}
	respondJSON(w, session.Status())
}

func respondLiveHTML(w http.ResponseWriter, session *focus.Session) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if session == nil {
		w.Write([]byte(`<div class="loading">No active session</div>`))
		return
	}

	st := session.Status()
	phase := "Studying"
	if st.Timer.IsBreakTime {
		phase = "On break"
	}
	if st.Timer.Ended {
		phase = "Ended"
	} else if st.Timer.IsPaused {
		phase += " (paused)"
	}
	pauseAction, pauseLabel := "pause", "Pause"
	if st.Timer.IsPaused {
		pauseAction, pauseLabel = "resume", "Resume"
	}
	nudgeAction, nudgeLabel := "nudges/disable", "Mute nudges"
	if !st.NudgesEnabled {
		nudgeAction, nudgeLabel = "nudges/enable", "Unmute nudges"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="live">
		<div class="goal-name">%s &middot; session #%d</div>
		<div class="timer">%s</div>
		<div class="phase">%s &middot; segment %d of %d</div>
		<div class="message">%s</div>`,
		html.EscapeString(st.ProjectName), st.SessionNo,
		utils.Clock(st.Timer.TimeRemaining),
		phase, st.Timer.CurrentStudySegment, st.StudyPeriods,
		html.EscapeString(st.Message))
	if st.OverrideMessage != "" {
		fmt.Fprintf(&b, `<div class="override">%s</div>`, html.EscapeString(st.OverrideMessage))
	}
	if st.LastNudge != nil {
		fmt.Fprintf(&b, `<div class="nudge">%s</div>`, html.EscapeString(st.LastNudge.Message))
	}
	fmt.Fprintf(&b, `
		<div class="total">Focus: %s &middot; Distracted: %s</div>
		<div class="controls">
			<button hx-post="/api/live/%s" hx-target="#live" class="header-btn">%s</button>
			<button hx-post="/api/live/dismiss" hx-target="#live" class="header-btn">Dismiss</button>
			<button hx-post="/api/live/%s" hx-target="#live" class="header-btn">%s</button>
			<button hx-post="/api/live/stop" hx-target="#live" class="header-btn">Stop</button>
		</div>
	</div>`,
		utils.Clock(st.FocusSeconds), utils.Clock(st.DistractedSeconds),
		pauseAction, pauseLabel, nudgeAction, nudgeLabel)

	w.Write([]byte(b.String()))
}

func (h *Handler) handleLiveAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := h.current()
	if session == nil {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	var err error
	switch action := strings.TrimPrefix(r.URL.Path, "/api/live/"); action {
	case "pause":
		err = session.Pause()
	case "resume":
		err = session.Resume()
	case "stop":
		_, err = session.Stop()
	case "dismiss":
		err = session.DismissNudge()
	case "nudges/enable":
		err = session.EnableNudges()
	case "nudges/disable":
		err = session.DisableNudges()
	default:
		http.Error(w, fmt.Sprintf("Unknown action: %s", action), http.StatusNotFound)
		return
	}
	if errors.Is(err, focus.ErrSessionEnded) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		respondLiveHTML(w, session)
		return
	}
	respondJSON(w, session.Status())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status": "healthy",
		"live":   h.current() != nil,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardHTML))
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	respondJSONStatus(w, http.StatusOK, data)
}

func respondJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}
