package gradebook

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/load"
	"github.com/shulehub/shule/core/person"
)

var (
	ErrActivityNotFound = core.NewNotFoundError("activity")
	ErrGradeNotFound    = core.NewNotFoundError("student grade")
)

type (
	Repository interface {
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		GetActivity(ctx context.Context, id string) (Activity, error)
		QueryActivitiesByLoad(ctx context.Context, loadID string) ([]Activity, error) // ordered by name
		UpdateActivity(ctx context.Context, act Activity) (Activity, error)
		// DeleteActivityWithGrades removes an activity and every grade
		// recorded against it in a single transaction.
		DeleteActivityWithGrades(ctx context.Context, activityID string) error

		CreateStudentGrade(ctx context.Context, sg StudentGrade) (StudentGrade, error)
		GetStudentGradeByStudentActivity(ctx context.Context, studentUID, activityID string) (StudentGrade, error)
		QueryGradesByLoad(ctx context.Context, loadID string) ([]StudentGrade, error)
		UpdateStudentGrade(ctx context.Context, sg StudentGrade) (StudentGrade, error)
	}

	Service struct {
		repo    Repository
		loads   load.Repository
		persons person.Repository
	}
)

func NewService(repo Repository, loads load.Repository, persons person.Repository) *Service {
	return &Service{repo: repo, loads: loads, persons: persons}
}

// guardLoad resolves a load and checks that the caller may touch its
// gradebook: same organization, and - unless teacherUID is empty (an
// admin caller) - the load must be the caller's own.
func (svc *Service) guardLoad(ctx context.Context, orgID, teacherUID, loadID string) (load.Load, error) {
	ld, err := svc.loads.GetLoad(ctx, loadID)
	if err != nil {
		return load.Load{}, err
	}
	if ld.OrgID != orgID {
		return load.Load{}, core.NewPermissionError()
	}
	if teacherUID != "" && ld.TeacherUID != teacherUID {
		return load.Load{}, core.NewPermissionError("load belongs to another teacher")
	}
	return ld, nil
}

// UpsertActivity creates or updates a graded activity on a load the
// caller owns. Nothing is written when validation fails.
func (svc *Service) UpsertActivity(ctx context.Context, orgID, teacherUID string, ua UpsertActivity) (Activity, error) {
	if _, err := svc.guardLoad(ctx, orgID, teacherUID, ua.LoadID); err != nil {
		return Activity{}, err
	}
	if err := checkPercentage(ua.Percentage); err != nil {
		return Activity{}, err
	}

	now := time.Now().UTC()

	if ua.ActivityID == "" {
		act := Activity{
			ID:         uuid.New().String(),
			LoadID:     ua.LoadID,
			Name:       ua.Name,
			Percentage: ua.Percentage,
			CreatedBy:  teacherUID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return svc.repo.CreateActivity(ctx, act)
	}

	act, err := svc.repo.GetActivity(ctx, ua.ActivityID)
	if err != nil {
		return Activity{}, err
	}
	if act.LoadID != ua.LoadID {
		// an activity id from another load reveals nothing
		return Activity{}, ErrActivityNotFound
	}
	act.Name = ua.Name
	act.Percentage = ua.Percentage
	act.UpdatedAt = now
	return svc.repo.UpdateActivity(ctx, act)
}

// UpsertStudentGrade records a score, replacing any existing score for the
// same (student, activity) pair rather than accumulating rows.
func (svc *Service) UpsertStudentGrade(ctx context.Context, orgID, teacherUID string, ug UpsertStudentGrade) (StudentGrade, error) {
	ld, err := svc.guardLoad(ctx, orgID, teacherUID, ug.LoadID)
	if err != nil {
		return StudentGrade{}, err
	}
	if err = checkScore(ug.Score); err != nil {
		return StudentGrade{}, err
	}

	act, err := svc.repo.GetActivity(ctx, ug.ActivityID)
	if err != nil {
		return StudentGrade{}, err
	}
	if act.LoadID != ld.ID {
		return StudentGrade{}, ErrActivityNotFound
	}

	now := time.Now().UTC()

	sg, err := svc.repo.GetStudentGradeByStudentActivity(ctx, ug.StudentUID, ug.ActivityID)
	switch {
	case err == nil:
		sg.Score = ug.Score
		sg.UpdatedBy = teacherUID
		sg.UpdatedAt = now
		return svc.repo.UpdateStudentGrade(ctx, sg)
	case core.IsNotFound(err):
		sg = StudentGrade{
			ID:         uuid.New().String(),
			LoadID:     ld.ID,
			ActivityID: ug.ActivityID,
			StudentUID: ug.StudentUID,
			Score:      ug.Score,
			CreatedBy:  teacherUID,
			UpdatedBy:  teacherUID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return svc.repo.CreateStudentGrade(ctx, sg)
	default:
		return StudentGrade{}, errors.Wrap(err, "looking up student grade")
	}
}

// DeleteActivity removes an activity and all of its recorded grades
// atomically: either everything goes or nothing does.
func (svc *Service) DeleteActivity(ctx context.Context, orgID, teacherUID, loadID, activityID string) error {
	if _, err := svc.guardLoad(ctx, orgID, teacherUID, loadID); err != nil {
		return err
	}
	act, err := svc.repo.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if act.LoadID != loadID {
		return ErrActivityNotFound
	}
	return svc.repo.DeleteActivityWithGrades(ctx, activityID)
}

// Gradebook assembles the full gradebook view for a load. The roster, the
// activities and the grades are independent reads, so they are fetched
// concurrently.
func (svc *Service) Gradebook(ctx context.Context, orgID, teacherUID, loadID string) (View, error) {
	ld, err := svc.guardLoad(ctx, orgID, teacherUID, loadID)
	if err != nil {
		return View{}, err
	}

	var (
		studentsCh = make(chan result)
		actsCh     = make(chan result)
		gradesCh   = make(chan result)
	)
	go func() {
		students, err := svc.persons.FilterStudentsByGrade(ctx, ld.OrgID, ld.GradeID)
		studentsCh <- result{students, err}
	}()
	go func() {
		acts, err := svc.repo.QueryActivitiesByLoad(ctx, ld.ID)
		actsCh <- result{acts, err}
	}()
	go func() {
		grades, err := svc.repo.QueryGradesByLoad(ctx, ld.ID)
		gradesCh <- result{grades, err}
	}()

	students := <-studentsCh
	acts := <-actsCh
	grades := <-gradesCh
	for _, res := range []result{students, acts, grades} {
		if res.err != nil {
			return View{}, errors.Wrap(res.err, "assembling gradebook")
		}
	}

	return View{
		Students:   students.val.([]person.Student),
		Activities: acts.val.([]Activity),
		Grades:     grades.val.([]StudentGrade),
	}, nil
}

type result struct {
	val interface{}
	err error
}

// FinalGrade computes a student's weighted total over the given
// activities. Each graded activity contributes score * percentage / 100;
// ungraded activities contribute nothing, and the total is NOT scaled up
// to compensate. gradedWeight reports how much of the 100% weight has a
// score behind it, so callers can tell a low grade from an incomplete one.
func FinalGrade(activities []Activity, grades []StudentGrade, studentUID string) (total, gradedWeight float64) {
	byActivity := make(map[string]StudentGrade, len(grades))
	for _, sg := range grades {
		if sg.StudentUID == studentUID {
			byActivity[sg.ActivityID] = sg
		}
	}
	for _, act := range activities {
		sg, ok := byActivity[act.ID]
		if !ok {
			continue
		}
		total += sg.Score * act.Percentage / 100
		gradedWeight += act.Percentage
	}
	return total, gradedWeight
}

func checkPercentage(pct float64) error {
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 || pct > 100 {
		return core.NewValidationError(errors.New("invalid percentage"),
			core.FieldError{Field: "percentage", Error: "must be between 0 and 100"})
	}
	return nil
}

func checkScore(score float64) error {
	// the grading scale upper bound is a tenant concern (grading systems);
	// the backend only rejects negatives and non-numbers
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return core.NewValidationError(errors.New("invalid score"),
			core.FieldError{Field: "score", Error: "must be a non-negative number"})
	}
	return nil
}
