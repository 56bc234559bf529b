package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/deepworkai/deepwork/internal/focus"
	"github.com/deepworkai/deepwork/internal/models"

	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func createGoal(t *testing.T, repo *Repository, name string) *models.Project {
	t.Helper()
	p := &models.Project{Name: name, CreatedBy: "ada"}
	if err := repo.CreateProject(p); err != nil {
		t.Fatalf("CreateProject(%s) error: %v", name, err)
	}
	return p
}

func testSummary(projectID uint, sessionNo int, start time.Time) focus.Summary {
	return focus.Summary{
		SessionID:         fmt.Sprintf("run-%d-%d-%d", projectID, sessionNo, start.Unix()),
		ProjectID:         projectID,
		ProjectName:       "Thesis",
		SessionNo:         sessionNo,
		StartTime:         start,
		EndTime:           start.Add(45 * time.Second),
		FocusSeconds:      30,
		DistractedSeconds: 15,
		FocusPercentage:   67,
		AverageFocusLevel: 7,
		Breakdown:         focus.Breakdown{Absent: 15},
		FocusTrend:        []int{100, 0, 100},
		EndKind:           focus.EndManualStop,
		TerminationReason: focus.ReasonManualStop,
		Verdicts: []focus.WindowVerdict{
			{Index: 1, Timestamp: start.Add(15 * time.Second), State: focus.StateFocused, Level: 10},
			{Index: 2, Timestamp: start.Add(30 * time.Second), State: focus.StateDistracted, Reason: focus.VerdictAbsent},
			{Index: 3, Timestamp: start.Add(45 * time.Second), State: focus.StateFocused, Level: 10},
		},
		Interactions: []focus.Interaction{
			{Type: focus.InteractionDisabled, Timestamp: start.Add(20 * time.Second)},
		},
	}
}

func TestCreateProjectRejectsDuplicates(t *testing.T) {
	repo := newTestRepository(t)
	createGoal(t, repo, "Linear Algebra")

	err := repo.CreateProject(&models.Project{Name: "  linear algebra ", CreatedBy: "ada"})
	if !errors.Is(err, ErrProjectExists) {
		t.Errorf("CreateProject() duplicate error = %v, want ErrProjectExists", err)
	}

	// Another owner may use the same name
	if err := repo.CreateProject(&models.Project{Name: "Linear Algebra", CreatedBy: "grace"}); err != nil {
		t.Errorf("CreateProject() for another owner error: %v", err)
	}
	if err := repo.CreateProject(&models.Project{Name: "   ", CreatedBy: "ada"}); err == nil {
		t.Error("CreateProject() with a blank name should fail")
	}

	projects, err := repo.ListProjects("ada")
	if err != nil {
		t.Fatalf("ListProjects() error: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("ListProjects(ada) returned %d goals, want 1", len(projects))
	}
	all, _ := repo.ListProjects("")
	if len(all) != 2 {
		t.Errorf("ListProjects(\"\") returned %d goals, want 2", len(all))
	}
}

func TestGetProjectNotFound(t *testing.T) {
	repo := newTestRepository(t)
	if _, err := repo.GetProject(42); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetProject(42) error = %v, want ErrRecordNotFound", err)
	}
}

func TestNextSessionNo(t *testing.T) {
	repo := newTestRepository(t)
	goal := createGoal(t, repo, "Thesis")
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	next, err := repo.NextSessionNo(goal.ID)
	if err != nil || next != 1 {
		t.Fatalf("NextSessionNo() = %d, %v; want 1", next, err)
	}

	for _, no := range []int{1, 2, 5} {
		if _, err := repo.SaveSummary(testSummary(goal.ID, no, start.Add(time.Duration(no)*time.Hour)), "", false); err != nil {
			t.Fatalf("SaveSummary(%d) error: %v", no, err)
		}
	}

	next, err = repo.NextSessionNo(goal.ID)
	if err != nil || next != 6 {
		t.Errorf("NextSessionNo() = %d, %v; want 6", next, err)
	}
}

func TestSaveSummaryConflict(t *testing.T) {
	repo := newTestRepository(t)
	goal := createGoal(t, repo, "Thesis")
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	first, err := repo.SaveSummary(testSummary(goal.ID, 1, start), "first", false)
	if err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}

	retry := testSummary(goal.ID, 1, start.Add(time.Hour))
	retry.FocusSeconds = 45
	retry.DistractedSeconds = 0
	retry.Verdicts = retry.Verdicts[:1]

	if _, err := repo.SaveSummary(retry, "second", false); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("SaveSummary() without overwrite error = %v, want ErrSessionExists", err)
	}

	stored, err := repo.GetSession(first.ID)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if stored.Notes != "first" || len(stored.FocusLog) != 3 {
		t.Errorf("conflict modified the stored session: %+v", stored)
	}

	replaced, err := repo.SaveSummary(retry, "second", true)
	if err != nil {
		t.Fatalf("SaveSummary() with overwrite error: %v", err)
	}

	got, err := repo.GetSession(replaced.ID)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got.Notes != "second" || got.FocusTime != 45 || len(got.FocusLog) != 1 {
		t.Errorf("overwrite stored %+v", got)
	}

	if _, err := repo.GetSession(first.ID); first.ID != replaced.ID && !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("old session still present: %v", err)
	}

	var orphans int64
	repo.db.Model(&models.FocusLogEntry{}).Where("study_session_id = ?", first.ID).Count(&orphans)
	if first.ID != replaced.ID && orphans != 0 {
		t.Errorf("%d focus log rows left behind by overwrite", orphans)
	}

	sessions, _ := repo.ListSessions(goal.ID)
	if len(sessions) != 1 {
		t.Errorf("ListSessions() returned %d sessions, want 1", len(sessions))
	}
}

func TestGetSessionRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	goal := createGoal(t, repo, "Thesis")
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	saved, err := repo.SaveSummary(testSummary(goal.ID, 1, start), "", false)
	if err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}

	got, err := repo.GetSession(saved.ID)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got.DistractionBreakdown.Absent != 15 {
		t.Errorf("DistractionBreakdown = %+v", got.DistractionBreakdown)
	}
	if len(got.FocusTrend) != 3 || got.FocusTrend[1] != 0 {
		t.Errorf("FocusTrend = %v", got.FocusTrend)
	}
	for i, e := range got.FocusLog {
		if e.WindowIndex != i+1 {
			t.Errorf("FocusLog[%d].WindowIndex = %d", i, e.WindowIndex)
		}
	}
	if len(got.Interactions) != 1 || got.Interactions[0].Type != focus.InteractionDisabled {
		t.Errorf("Interactions = %+v", got.Interactions)
	}
}

func TestListSessionsBetweenAndDelete(t *testing.T) {
	repo := newTestRepository(t)
	goal := createGoal(t, repo, "Thesis")
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var ids []uint
	for i, offset := range []time.Duration{-2 * time.Hour, 9 * time.Hour, 20 * time.Hour, 30 * time.Hour} {
		s, err := repo.SaveSummary(testSummary(goal.ID, i+1, day.Add(offset)), "", false)
		if err != nil {
			t.Fatalf("SaveSummary() error: %v", err)
		}
		ids = append(ids, s.ID)
	}

	sessions, err := repo.ListSessionsBetween(day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListSessionsBetween() error: %v", err)
	}
	if len(sessions) != 2 || sessions[0].SessionNo != 2 || sessions[1].SessionNo != 3 {
		t.Errorf("ListSessionsBetween() = %d sessions", len(sessions))
	}

	if err := repo.DeleteSession(ids[1]); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if err := repo.DeleteSession(ids[1]); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second DeleteSession() error = %v, want ErrRecordNotFound", err)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	all, _ := repo.ListSessions(0)
	if len(all) != 0 {
		t.Errorf("ListSessions() after Clear() = %d sessions", len(all))
	}
	if projects, _ := repo.ListProjects(""); len(projects) != 1 {
		t.Error("Clear() should keep goals")
	}
}

func TestErrorLogs(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	for i, msg := range []string{"capture failed", "classifier timeout", "save failed"} {
		err := repo.CreateErrorLog(&models.ErrorLog{
			Timestamp: now.Add(time.Duration(i) * time.Second),
			Source:    "tracker",
			ErrorMsg:  msg,
		})
		if err != nil {
			t.Fatalf("CreateErrorLog() error: %v", err)
		}
	}

	logs, err := repo.RecentErrors(2)
	if err != nil {
		t.Fatalf("RecentErrors() error: %v", err)
	}
	if len(logs) != 2 || logs[0].ErrorMsg != "save failed" {
		t.Errorf("RecentErrors(2) = %+v", logs)
	}
}
