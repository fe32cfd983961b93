package echoapi

import (
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/org"
)

type orgApi struct {
	svc      *org.Service
	validate *validator.Validate
}

// registerOrgAPI mounts the platform console endpoints. Everything here
// is cross-tenant, hence superadmin only.
func registerOrgAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *org.Service, validate *validator.Validate) {
	api := orgApi{svc: svc, validate: validate}

	og := g.Group("/orgs", jwt, superAdminMiddleware())
	og.POST("", api.create)
	og.GET("", api.query)
	og.GET("/:id", api.retrieve)
	og.PATCH("/:id/status", api.setStatus)
}

type createOrgResponse struct {
	Success  bool   `json:"success"`
	OrgID    string `json:"org_id"`
	AdminUID string `json:"admin_uid"`
}

// create provisions a tenant from a multipart form: text fields plus
// optional "logo" and "admin_photo" file parts.
func (api *orgApi) create(ctx echo.Context) error {
	data := org.NewOrganization{
		Name:          ctx.FormValue("name"),
		Email:         ctx.FormValue("email"),
		Phone:         ctx.FormValue("phone"),
		Address:       ctx.FormValue("address"),
		AdminName:     ctx.FormValue("admin_name"),
		AdminEmail:    ctx.FormValue("admin_email"),
		AdminPassword: ctx.FormValue("admin_password"),
		AdminPhone:    ctx.FormValue("admin_phone"),
	}
	if v := ctx.FormValue("user_limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "parsing user_limit")
		}
		data.UserLimit = limit
	}

	var err error
	if data.Logo, err = formFileBytes(ctx, "logo"); err != nil {
		return err
	}
	if data.AdminPhoto, err = formFileBytes(ctx, "admin_photo"); err != nil {
		return err
	}

	if err = data.Validate(api.validate); err != nil {
		return err
	}

	o, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating organization")
	}
	return ctx.JSON(http.StatusCreated, createOrgResponse{Success: true, OrgID: o.ID, AdminUID: o.AdminUID})
}

func (api *orgApi) query(ctx echo.Context) error {
	orgs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying organizations")
	}
	return ctx.JSON(http.StatusOK, orgs)
}

func (api *orgApi) retrieve(ctx echo.Context) error {
	o, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting organization")
	}
	return ctx.JSON(http.StatusOK, o)
}

func (api *orgApi) setStatus(ctx echo.Context) error {
	var data org.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data.Status); err != nil {
		return errors.Wrap(err, "setting organization status")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

// formFileBytes reads an optional multipart file part into memory.
func formFileBytes(ctx echo.Context, name string) ([]byte, error) {
	fh, err := ctx.FormFile(name)
	if err != nil {
		return nil, nil // part absent
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s part", name)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s part", name)
	}
	return data, nil
}
