package database

import (
	"strings"
	"time"

	"github.com/deepworkai/deepwork/internal/focus"
	"github.com/deepworkai/deepwork/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

var (
	// ErrSessionExists is returned by SaveSummary when the goal already has a
	// session with the same number and overwrite was not requested
	ErrSessionExists = errors.New("study session already exists")

	// ErrProjectExists is returned when a goal with the same name exists
	ErrProjectExists = errors.New("goal already exists")
)

// Repository handles all database operations for goals and study sessions
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateProject inserts a new goal. Names are unique per owner, ignoring case
func (r *Repository) CreateProject(project *models.Project) error {
	project.Name = strings.TrimSpace(project.Name)
	if project.Name == "" {
		return errors.New("goal name cannot be empty")
	}

	var count int64
	result := r.db.Model(&models.Project{}).
		Where("LOWER(name) = LOWER(?) AND created_by = ?", project.Name, project.CreatedBy).
		Count(&count)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to check for duplicate goal")
	}
	if count > 0 {
		return errors.Wrapf(ErrProjectExists, "%q", project.Name)
	}

	if err := r.db.Create(project).Error; err != nil {
		return errors.Wrap(err, "failed to insert goal")
	}
	return nil
}

// ListProjects returns the goals of owner, or all goals when owner is empty
func (r *Repository) ListProjects(owner string) ([]models.Project, error) {
	var projects []models.Project
	query := r.db.Order("created_at DESC, id DESC")
	if owner != "" {
		query = query.Where("created_by = ?", owner)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query goals")
	}
	return projects, nil
}

// GetProject retrieves a goal by its ID
func (r *Repository) GetProject(id uint) (*models.Project, error) {
	var project models.Project
	result := r.db.First(&project, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get goal")
	}
	return &project, nil
}

// NextSessionNo returns the number the next session of a goal will carry
func (r *Repository) NextSessionNo(projectID uint) (int, error) {
	var highest int
	row := r.db.Model(&models.StudySession{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(session_no), 0)").
		Row()
	if err := row.Scan(&highest); err != nil {
		return 0, errors.Wrap(err, "failed to query session numbers")
	}
	return highest + 1, nil
}

// SaveSummary stores a finished session with its focus log and nudge
// interactions. When the (goal, session number) key is taken it returns
// ErrSessionExists unless overwrite is set, in which case the old record and
// its children are replaced in the same transaction
func (r *Repository) SaveSummary(sum focus.Summary, notes string, overwrite bool) (*models.StudySession, error) {
	record := models.NewStudySession(sum, notes)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StudySession
		err := tx.Where("project_id = ? AND session_no = ?", sum.ProjectID, sum.SessionNo).First(&existing).Error
		switch {
		case err == nil:
			if !overwrite {
				return ErrSessionExists
			}
			if err := deleteSession(tx, existing.ID); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return errors.Wrap(err, "failed to look up study session")
		}

		if err := tx.Create(record).Error; err != nil {
			return errors.Wrap(err, "failed to insert study session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetSession retrieves a stored session with its focus log and interactions
func (r *Repository) GetSession(id uint) (*models.StudySession, error) {
	var session models.StudySession
	result := r.db.
		Preload("FocusLog", func(db *gorm.DB) *gorm.DB { return db.Order("window_index ASC") }).
		Preload("Interactions", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp ASC, id ASC") }).
		First(&session, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get study session")
	}
	return &session, nil
}

// ListSessions returns the sessions of a goal, newest first. A zero
// projectID lists every session
func (r *Repository) ListSessions(projectID uint) ([]models.StudySession, error) {
	var sessions []models.StudySession
	query := r.db.Order("start_time DESC")
	if projectID != 0 {
		query = query.Where("project_id = ?", projectID)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query study sessions")
	}
	return sessions, nil
}

// ListSessionsBetween returns the sessions started in [since, until).
// Simple query that returns raw rows, the reporter does the aggregation
func (r *Repository) ListSessionsBetween(since, until time.Time) ([]models.StudySession, error) {
	var sessions []models.StudySession
	result := r.db.
		Where("start_time >= ? AND start_time < ?", since, until).
		Order("start_time ASC").
		Find(&sessions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query study sessions")
	}
	return sessions, nil
}

// DeleteSession removes a stored session and its children
func (r *Repository) DeleteSession(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return deleteSession(tx, id)
	})
}

func deleteSession(tx *gorm.DB, id uint) error {
	if err := tx.Where("study_session_id = ?", id).Delete(&models.FocusLogEntry{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete focus log")
	}
	if err := tx.Where("study_session_id = ?", id).Delete(&models.NudgeInteraction{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete nudge interactions")
	}
	result := tx.Delete(&models.StudySession{}, id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete study session")
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecentErrors returns the latest error logs, newest first
func (r *Repository) RecentErrors(limit int) ([]models.ErrorLog, error) {
	var logs []models.ErrorLog
	if err := r.db.Order("timestamp DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query error logs")
	}
	return logs, nil
}

// Clear removes all stored sessions from the database. Goals are kept
func (r *Repository) Clear() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"focus_log_entries", "nudge_interactions", "study_sessions"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return errors.Wrapf(err, "failed to clear %s", table)
			}
		}
		return nil
	})
}
