package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/gradebook"
)

type gradebookApi struct {
	svc      *gradebook.Service
	validate *validator.Validate
}

func registerGradebookAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *gradebook.Service, validate *validator.Validate) {
	api := gradebookApi{svc: svc, validate: validate}

	gg := g.Group("/gradebook", jwt)
	gg.PUT("/activities", api.upsertActivity, teacherMiddleware())
	gg.PUT("/grades", api.upsertStudentGrade, teacherMiddleware())
	gg.DELETE("/loads/:loadId/activities/:activityId", api.destroyActivity, teacherMiddleware())
	gg.GET("/loads/:loadId", api.retrieve, teacherOrAdminMiddleware())
}

func (api *gradebookApi) upsertActivity(ctx echo.Context) error {
	var data gradebook.UpsertActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	act, err := api.svc.UpsertActivity(ctx.Request().Context(), claims.OrgID, claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "upserting activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *gradebookApi) upsertStudentGrade(ctx echo.Context) error {
	var data gradebook.UpsertStudentGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertStudentGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sg, err := api.svc.UpsertStudentGrade(ctx.Request().Context(), claims.OrgID, claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "upserting student grade")
	}
	return ctx.JSON(http.StatusOK, sg)
}

func (api *gradebookApi) destroyActivity(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	err = api.svc.DeleteActivity(
		ctx.Request().Context(), claims.OrgID, claims.Subject,
		ctx.Param("loadId"), ctx.Param("activityId"),
	)
	if err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradebookApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	teacherUID := claims.Subject
	if !claims.IsTeacher { // an admin reviews any gradebook in their org
		teacherUID = ""
	}

	view, err := api.svc.Gradebook(ctx.Request().Context(), claims.OrgID, teacherUID, ctx.Param("loadId"))
	if err != nil {
		return errors.Wrap(err, "assembling gradebook")
	}
	return ctx.JSON(http.StatusOK, view)
}
