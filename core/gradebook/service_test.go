package gradebook_test

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/gradebook"
	"github.com/shulehub/shule/core/load"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/storage/database/inmem"
	"github.com/shulehub/shule/tests"
)

type fixture struct {
	db      *inmemdb.DB
	svc     *gradebook.Service
	orgID   string
	teacher person.Teacher
	load    load.Load
	student person.Student
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := inmemdb.NewDB()
	orgRepo := inmemdb.NewOrgRepository(db)
	personRepo := inmemdb.NewPersonRepository(db)
	refRepo := inmemdb.NewRefDataRepository(db)
	loadRepo := inmemdb.NewLoadRepository(db)
	gbRepo := inmemdb.NewGradebookRepository(db)

	o := testutil.CreateOrg(t, orgRepo, "Kivu High", 0)
	teacher := testutil.CreateTeacher(t, personRepo, o.ID, "Alice Kalume")
	subject := testutil.CreateRecord(t, refRepo, o.ID, "subject", "Mathematics")
	grade := testutil.CreateRecord(t, refRepo, o.ID, "grade", "Grade 8")
	period := testutil.CreateRecord(t, refRepo, o.ID, "academicPeriod", "Term 1")
	ld := testutil.CreateLoad(t, loadRepo, o.ID, teacher.UID, subject.ID, grade.ID, period.ID)
	student := testutil.CreateStudent(t, personRepo, o.ID, grade.ID, "Benny Ilunga")

	return fixture{
		db:      db,
		svc:     gradebook.NewService(gbRepo, loadRepo, personRepo),
		orgID:   o.ID,
		teacher: teacher,
		load:    ld,
		student: student,
	}
}

func (f fixture) upsertActivity(t *testing.T, name string, pct float64) gradebook.Activity {
	t.Helper()
	act, err := f.svc.UpsertActivity(context.Background(), f.orgID, f.teacher.UID, gradebook.UpsertActivity{
		LoadID:     f.load.ID,
		Name:       name,
		Percentage: pct,
	})
	if err != nil {
		t.Fatalf("UpsertActivity() failed: %v", err)
	}
	return act
}

func (f fixture) upsertGrade(t *testing.T, activityID string, score float64) gradebook.StudentGrade {
	t.Helper()
	sg, err := f.svc.UpsertStudentGrade(context.Background(), f.orgID, f.teacher.UID, gradebook.UpsertStudentGrade{
		LoadID:     f.load.ID,
		ActivityID: activityID,
		StudentUID: f.student.UID,
		Score:      score,
	})
	if err != nil {
		t.Fatalf("UpsertStudentGrade() failed: %v", err)
	}
	return sg
}

func Test_Service_UpsertActivity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	act := f.upsertActivity(t, "Midterm Exam", 40)
	if act.ID == "" || act.CreatedBy != f.teacher.UID {
		t.Errorf("unexpected activity: %+v", act)
	}

	// update in place
	updated, err := f.svc.UpsertActivity(ctx, f.orgID, f.teacher.UID, gradebook.UpsertActivity{
		LoadID:     f.load.ID,
		ActivityID: act.ID,
		Name:       "Final Exam",
		Percentage: 60,
	})
	if err != nil {
		t.Fatalf("UpsertActivity(update) failed: %v", err)
	}
	if updated.ID != act.ID || updated.Name != "Final Exam" || updated.Percentage != 60 {
		t.Errorf("unexpected updated activity: %+v", updated)
	}

	view, err := f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}
	if len(view.Activities) != 1 {
		t.Errorf("len(view.Activities) = %d; want 1", len(view.Activities))
	}

	// updating a non-existent activity must not create one
	_, err = f.svc.UpsertActivity(ctx, f.orgID, f.teacher.UID, gradebook.UpsertActivity{
		LoadID:     f.load.ID,
		ActivityID: "nope",
		Name:       "Ghost",
		Percentage: 10,
	})
	if !core.IsNotFound(err) {
		t.Errorf("err = %v; want NotFound", err)
	}
}

func Test_Service_UpsertActivity_percentageBounds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, pct := range []float64{-5, 150, math.NaN(), math.Inf(1)} {
		_, err := f.svc.UpsertActivity(ctx, f.orgID, f.teacher.UID, gradebook.UpsertActivity{
			LoadID:     f.load.ID,
			Name:       "Quiz",
			Percentage: pct,
		})
		if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
			t.Errorf("UpsertActivity(pct=%v) err = %v; want ValidationError", pct, err)
		}
	}

	view, err := f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}
	if len(view.Activities) != 0 {
		t.Errorf("rejected upserts wrote %d activities; want 0", len(view.Activities))
	}
}

func Test_Service_UpsertStudentGrade_replacesExisting(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	act := f.upsertActivity(t, "Homework 1", 20)

	first := f.upsertGrade(t, act.ID, 55)
	second := f.upsertGrade(t, act.ID, 80)

	if second.ID != first.ID {
		t.Errorf("second upsert forked a new row: %s != %s", second.ID, first.ID)
	}
	if second.Score != 80 || second.UpdatedBy != f.teacher.UID {
		t.Errorf("unexpected grade after upsert: %+v", second)
	}

	view, err := f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}
	if len(view.Grades) != 1 {
		t.Errorf("len(view.Grades) = %d; want 1", len(view.Grades))
	}
	if view.Grades[0].Score != 80 {
		t.Errorf("view.Grades[0].Score = %v; want 80", view.Grades[0].Score)
	}
}

func Test_Service_UpsertStudentGrade_scoreBounds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	act := f.upsertActivity(t, "Homework 1", 20)

	for _, score := range []float64{-1, -5, math.NaN(), math.Inf(1)} {
		_, err := f.svc.UpsertStudentGrade(ctx, f.orgID, f.teacher.UID, gradebook.UpsertStudentGrade{
			LoadID:     f.load.ID,
			ActivityID: act.ID,
			StudentUID: f.student.UID,
			Score:      score,
		})
		if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
			t.Errorf("UpsertStudentGrade(score=%v) err = %v; want ValidationError", score, err)
		}
	}

	view, err := f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}
	if len(view.Grades) != 0 {
		t.Errorf("rejected upserts wrote %d grades; want 0", len(view.Grades))
	}
}

func Test_Service_UpsertStudentGrade_activityMustBelongToLoad(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpsertStudentGrade(ctx, f.orgID, f.teacher.UID, gradebook.UpsertStudentGrade{
		LoadID:     f.load.ID,
		ActivityID: "nope",
		StudentUID: f.student.UID,
		Score:      50,
	})
	if !core.IsNotFound(err) {
		t.Errorf("err = %v; want NotFound", err)
	}
}

func Test_Service_DeleteActivity_atomic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	act := f.upsertActivity(t, "Midterm Exam", 40)
	f.upsertGrade(t, act.ID, 75)

	// grade the whole class, not just one student
	personRepo := inmemdb.NewPersonRepository(f.db)
	for _, name := range []string{"Chris Mwamba", "Divine Kanza"} {
		s := testutil.CreateStudent(t, personRepo, f.orgID, f.load.GradeID, name)
		_, err := f.svc.UpsertStudentGrade(ctx, f.orgID, f.teacher.UID, gradebook.UpsertStudentGrade{
			LoadID:     f.load.ID,
			ActivityID: act.ID,
			StudentUID: s.UID,
			Score:      60,
		})
		if err != nil {
			t.Fatalf("UpsertStudentGrade(%s) failed: %v", name, err)
		}
	}

	f.db.FailNextBatch = errors.New("connection reset")
	err := f.svc.DeleteActivity(ctx, f.orgID, f.teacher.UID, f.load.ID, act.ID)
	if err == nil {
		t.Fatal("DeleteActivity() succeeded; want failure")
	}

	// nothing may be gone after the failed cascade
	view, err := f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}
	if len(view.Activities) != 1 || len(view.Grades) != 3 {
		t.Errorf("partial cascade: %d activities, %d grades; want 1, 3", len(view.Activities), len(view.Grades))
	}

	// and a retry removes both
	if err = f.svc.DeleteActivity(ctx, f.orgID, f.teacher.UID, f.load.ID, act.ID); err != nil {
		t.Fatalf("DeleteActivity(retry) failed: %v", err)
	}
	view, err = f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}
	if len(view.Activities) != 0 || len(view.Grades) != 0 {
		t.Errorf("cascade left %d activities, %d grades; want 0, 0", len(view.Activities), len(view.Grades))
	}
}

func Test_Service_guardsLoadOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpsertActivity(ctx, f.orgID, "intruder", gradebook.UpsertActivity{
		LoadID:     f.load.ID,
		Name:       "Quiz",
		Percentage: 10,
	})
	if !core.IsPermissionDenied(err) {
		t.Errorf("other teacher: err = %v; want PermissionDenied", err)
	}

	_, err = f.svc.Gradebook(ctx, "other-org", f.teacher.UID, f.load.ID)
	if !core.IsPermissionDenied(err) {
		t.Errorf("other org: err = %v; want PermissionDenied", err)
	}

	_, err = f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, "nope")
	if !core.IsNotFound(err) {
		t.Errorf("unknown load: err = %v; want NotFound", err)
	}
}

func Test_Service_Gradebook_adminReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	act := f.upsertActivity(t, "Exam A", 40)
	f.upsertGrade(t, act.ID, 70)

	// an empty caller uid is an org admin: any load of the org may be read
	view, err := f.svc.Gradebook(ctx, f.orgID, "", f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}
	if len(view.Activities) != 1 || len(view.Grades) != 1 {
		t.Errorf("unexpected view: %d activities, %d grades; want 1, 1", len(view.Activities), len(view.Grades))
	}

	// the tenant boundary still holds for admins
	if _, err = f.svc.Gradebook(ctx, "other-org", "", f.load.ID); !core.IsPermissionDenied(err) {
		t.Errorf("other org: err = %v; want PermissionDenied", err)
	}
}

func Test_Service_Gradebook(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// a student of another grade stays off this roster
	personRepo := inmemdb.NewPersonRepository(f.db)
	testutil.CreateStudent(t, personRepo, f.orgID, "other-grade", "Chris Mwamba")

	examB := f.upsertActivity(t, "Exam B", 60)
	examA := f.upsertActivity(t, "Exam A", 40)
	f.upsertGrade(t, examA.ID, 80)

	view, err := f.svc.Gradebook(ctx, f.orgID, f.teacher.UID, f.load.ID)
	if err != nil {
		t.Fatalf("Gradebook() failed: %v", err)
	}

	if len(view.Students) != 1 || view.Students[0].UID != f.student.UID {
		t.Errorf("unexpected roster: %+v", view.Students)
	}
	if len(view.Activities) != 2 || view.Activities[0].ID != examA.ID || view.Activities[1].ID != examB.ID {
		t.Errorf("activities not ordered by name: %+v", view.Activities)
	}
	if len(view.Grades) != 1 {
		t.Errorf("len(view.Grades) = %d; want 1", len(view.Grades))
	}
}

func Test_FinalGrade(t *testing.T) {
	acts := []gradebook.Activity{
		{ID: "a1", Percentage: 40},
		{ID: "a2", Percentage: 60},
	}

	// only a1 graded: 4.0 * 40% = 1.6, not scaled up to the graded weight
	grades := []gradebook.StudentGrade{{ActivityID: "a1", StudentUID: "s1", Score: 4}}
	total, gradedWeight := gradebook.FinalGrade(acts, grades, "s1")
	if math.Abs(total-1.6) > 1e-9 {
		t.Errorf("total = %v; want 1.6", total)
	}
	if gradedWeight != 40 {
		t.Errorf("gradedWeight = %v; want 40", gradedWeight)
	}

	// both graded
	grades = append(grades, gradebook.StudentGrade{ActivityID: "a2", StudentUID: "s1", Score: 90})
	total, gradedWeight = gradebook.FinalGrade(acts, grades, "s1")
	if math.Abs(total-55.6) > 1e-9 { // 4*0.4 + 90*0.6
		t.Errorf("total = %v; want 55.6", total)
	}
	if gradedWeight != 100 {
		t.Errorf("gradedWeight = %v; want 100", gradedWeight)
	}

	// someone else's grades never leak in
	total, gradedWeight = gradebook.FinalGrade(acts, grades, "s2")
	if total != 0 || gradedWeight != 0 {
		t.Errorf("stranger: total = %v, gradedWeight = %v; want 0, 0", total, gradedWeight)
	}
}
