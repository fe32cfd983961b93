package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/load"
)

type loadApi struct {
	svc      *load.Service
	validate *validator.Validate
}

func registerLoadAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *load.Service, validate *validator.Validate) {
	api := loadApi{svc: svc, validate: validate}

	lg := g.Group("/loads", jwt)
	lg.POST("", api.create, adminMiddleware())
	lg.GET("", api.query, adminMiddleware())
	// teachers only ever see their own assignments
	lg.GET("/mine", api.queryOwn, teacherMiddleware())
	lg.GET("/:id", api.retrieve, adminMiddleware())
	lg.DELETE("/:id", api.destroy, adminMiddleware())
}

type createLoadResponse struct {
	Success bool   `json:"success"`
	LoadID  string `json:"load_id"`
}

func (api *loadApi) create(ctx echo.Context) error {
	var data load.NewLoad
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLoad")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ld, err := api.svc.Create(ctx.Request().Context(), claims.OrgID, data)
	if err != nil {
		return errors.Wrap(err, "creating academic load")
	}
	return ctx.JSON(http.StatusCreated, createLoadResponse{Success: true, LoadID: ld.ID})
}

func (api *loadApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	loads, err := api.svc.QueryByOrg(ctx.Request().Context(), claims.OrgID)
	if err != nil {
		return errors.Wrap(err, "querying academic loads")
	}
	return ctx.JSON(http.StatusOK, loads)
}

func (api *loadApi) queryOwn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	loads, err := api.svc.QueryOwn(ctx.Request().Context(), claims.OrgID, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying own academic loads")
	}
	return ctx.JSON(http.StatusOK, loads)
}

func (api *loadApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ld, err := api.svc.Get(ctx.Request().Context(), claims.OrgID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting academic load")
	}
	return ctx.JSON(http.StatusOK, ld)
}

func (api *loadApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.OrgID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting academic load")
	}
	return ctx.NoContent(http.StatusNoContent)
}
