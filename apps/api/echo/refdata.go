package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/refdata"
)

// refDataRoutes maps each reference-data collection to its URL prefix.
// All five share the same handlers; only the kind differs.
var refDataRoutes = []struct {
	prefix string
	kind   refdata.Kind
}{
	{"/periods", refdata.KindAcademicPeriod},
	{"/grading-systems", refdata.KindGradingSystem},
	{"/grades", refdata.KindGrade},
	{"/subjects", refdata.KindSubject},
	{"/performance-indicators", refdata.KindPerformanceIndicator},
}

type refDataApi struct {
	svc      *refdata.Service
	validate *validator.Validate
	kind     refdata.Kind
}

func registerRefDataAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *refdata.Service, validate *validator.Validate) {
	for _, route := range refDataRoutes {
		api := refDataApi{svc: svc, validate: validate, kind: route.kind}

		rg := g.Group(route.prefix, jwt, adminMiddleware())
		rg.POST("", api.create)
		rg.GET("", api.query)
		rg.GET("/:id", api.retrieve)
		rg.PUT("/:id", api.update)
		rg.DELETE("/:id", api.destroy)
	}
}

func (api refDataApi) create(ctx echo.Context) error {
	var data refdata.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Create(ctx.Request().Context(), claims.OrgID, api.kind, data)
	if err != nil {
		return errors.Wrap(err, "creating record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api refDataApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	recs, err := api.svc.Query(ctx.Request().Context(), claims.OrgID, api.kind)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api refDataApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Get(ctx.Request().Context(), claims.OrgID, api.kind, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api refDataApi) update(ctx echo.Context) error {
	var data refdata.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Update(ctx.Request().Context(), claims.OrgID, api.kind, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api refDataApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.OrgID, api.kind, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.NoContent(http.StatusNoContent)
}
