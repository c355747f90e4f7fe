package http

import (
	"net/http"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/usecase/offer"

	"github.com/labstack/echo/v4"
)

type OfferHandler struct{ uc *offer.Usecase }

func NewOfferHandler(uc *offer.Usecase) *OfferHandler { return &OfferHandler{uc: uc} }

type createOfferReq struct {
	Title        string  `json:"title"        validate:"required,max=200"`
	Description  string  `json:"description"  validate:"max=2000"`
	MinAmount    float64 `json:"minAmount"    validate:"gt=0,dec2"`
	MaxAmount    float64 `json:"maxAmount"    validate:"gt=0,dec2,gtefield=MinAmount"`
	InterestRate float64 `json:"interestRate" validate:"gte=0,lte=100"`
	Term         int     `json:"term"         validate:"gt=0,lte=600"`
}

func (h *OfferHandler) CreateOffer(c echo.Context) error {
	lenderID, err := actor(c)
	if err != nil {
		return err
	}
	var req createOfferReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	o, err := h.uc.Create(c.Request().Context(), offer.CreateOfferInput{
		LenderID:     lenderID,
		Title:        req.Title,
		Description:  req.Description,
		MinAmount:    req.MinAmount,
		MaxAmount:    req.MaxAmount,
		InterestRate: req.InterestRate,
		Term:         req.Term,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// ListOffers: ?lenderId=&status=
func (h *OfferHandler) ListOffers(c echo.Context) error {
	var (
		f      loan.OfferFilter
		status string
	)
	err := echo.QueryParamsBinder(c).
		Int64("lenderId", &f.LenderID).
		String("status", &status).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query param")
	}
	f.Status = loan.OfferStatus(status)
	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) GetOffer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	o, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}
