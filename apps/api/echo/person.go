package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/person"
)

type personApi struct {
	svc      *person.Service
	validate *validator.Validate
}

func registerPersonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *person.Service, validate *validator.Validate) {
	api := personApi{svc: svc, validate: validate}

	tg := g.Group("/teachers", jwt, adminMiddleware())
	tg.POST("", api.createTeacher)
	tg.GET("", api.queryTeachers)
	tg.GET("/:uid", api.retrieveTeacher)

	sg := g.Group("/students", jwt, adminMiddleware())
	sg.POST("", api.createStudent)
	sg.GET("", api.queryStudents)
	sg.GET("/:uid", api.retrieveStudent)
}

type (
	createTeacherResponse struct {
		Success   bool   `json:"success"`
		TeacherID string `json:"teacher_id"`
	}
	createStudentResponse struct {
		Success   bool   `json:"success"`
		StudentID string `json:"student_id"`
	}
)

func (api *personApi) createTeacher(ctx echo.Context) error {
	var data person.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	t, err := api.svc.CreateTeacher(ctx.Request().Context(), claims.OrgID, data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, createTeacherResponse{Success: true, TeacherID: t.UID})
}

func (api *personApi) queryTeachers(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	teachers, err := api.svc.QueryTeachers(ctx.Request().Context(), claims.OrgID)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *personApi) retrieveTeacher(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	t, err := api.svc.GetTeacher(ctx.Request().Context(), ctx.Param("uid"))
	if err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	if t.OrgID != claims.OrgID {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *personApi) createStudent(ctx echo.Context) error {
	var data person.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	s, err := api.svc.CreateStudent(ctx.Request().Context(), claims.OrgID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, createStudentResponse{Success: true, StudentID: s.UID})
}

func (api *personApi) queryStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	students, err := api.svc.QueryStudents(ctx.Request().Context(), claims.OrgID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *personApi) retrieveStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	s, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("uid"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	if s.OrgID != claims.OrgID {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, s)
}
