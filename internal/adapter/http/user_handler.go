package http

import (
	"net/http"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/usecase/user"

	"github.com/labstack/echo/v4"
)

type UserHandler struct{ uc *user.Usecase }

func NewUserHandler(uc *user.Usecase) *UserHandler { return &UserHandler{uc: uc} }

type registerUserReq struct {
	Email   string `json:"email"   validate:"required,email,max=254"`
	Name    string `json:"name"    validate:"required,max=200"`
	Company string `json:"company" validate:"max=200"`
	Role    string `json:"role"    validate:"required,role"`
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required,user_status"`
}

// Register is open: it is how a caller obtains a user id.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerUserReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	u, err := h.uc.Register(c.Request().Context(), user.RegisterInput{
		Email:   req.Email,
		Name:    req.Name,
		Company: req.Company,
		Role:    loan.Role(req.Role),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// ListUsers: ?role=&status=
func (h *UserHandler) ListUsers(c echo.Context) error {
	var role, status string
	err := echo.QueryParamsBinder(c).
		String("role", &role).
		String("status", &status).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query param")
	}
	out, err := h.uc.List(c.Request().Context(), loan.UserFilter{
		Role:   loan.Role(role),
		Status: loan.UserStatus(status),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) UpdateStatus(c echo.Context) error {
	adminID, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateStatusReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	u, err := h.uc.UpdateStatus(c.Request().Context(), user.UpdateStatusInput{
		ActorID: adminID,
		UserID:  id,
		Status:  loan.UserStatus(req.Status),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	adminID, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Request().Context(), user.DeleteInput{ActorID: adminID, UserID: id}); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
