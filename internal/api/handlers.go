package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ByeongIn-K/goat-server/internal/app"
	"github.com/ByeongIn-K/goat-server/internal/capacity"
	"github.com/ByeongIn-K/goat-server/internal/classify"
	"github.com/ByeongIn-K/goat-server/internal/metrics"
	"github.com/ByeongIn-K/goat-server/internal/models"
	"github.com/ByeongIn-K/goat-server/internal/report"
	"github.com/ByeongIn-K/goat-server/internal/slots"
	"github.com/ByeongIn-K/goat-server/internal/store"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// storeErr maps store failures onto HTTP responses. Absent records are a
// 404, everything else from the backing store is a 502. The state container
// already counts store errors, so no counter here.
func storeErr(c echo.Context, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorBody{Error: "not_found"})
	}
	return c.JSON(http.StatusBadGateway, errorBody{Error: "store_unavailable", Message: err.Error()})
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_request", Message: err.Error()})
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type restaurantView struct {
	models.Restaurant
	Date      string `json:"date"`
	Available int    `json:"available"`
	NextSlot  string `json:"next_slot,omitempty"`
}

// listRestaurants is the discovery view: availability counts confirmed
// bookings only.
func (s *Server) listRestaurants(c echo.Context) error {
	metrics.IncHTTP("list_restaurants")

	now := time.Now()
	date := c.QueryParam("date")
	if date == "" {
		date = now.Format(models.DateLayout)
	} else if !models.ValidDate(date) {
		return badRequest(c, errors.New("date must be YYYY-MM-DD"))
	}

	nextSlot := slots.NextAvailable(now.Format(models.TimeLayout), slots.Default())
	views := make([]restaurantView, 0)
	for _, r := range s.app.Restaurants() {
		views = append(views, restaurantView{
			Restaurant: r,
			Date:       date,
			Available:  s.app.AvailableCapacity(r.ID, date, capacity.Options{ConfirmedOnly: true}),
			NextSlot:   nextSlot,
		})
	}
	return c.JSON(http.StatusOK, views)
}

type createRestaurantRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
	OwnerID  string `json:"owner_id"`
	Image    string `json:"image"`
}

func (s *Server) createRestaurant(c echo.Context) error {
	metrics.IncHTTP("create_restaurant")

	var req createRestaurantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Name == "" {
		return badRequest(c, errors.New("name required"))
	}
	if req.Capacity <= 0 {
		req.Capacity = app.DefaultCapacity
	}

	created, err := s.app.AddRestaurant(c.Request().Context(), models.Restaurant{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
		OwnerID:  req.OwnerID,
		Image:    req.Image,
	})
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateRestaurant(c echo.Context) error {
	metrics.IncHTTP("update_restaurant")

	id, err := paramInt64(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var req store.RestaurantUpdate
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return badRequest(c, errors.New("capacity must be positive"))
	}

	updated, err := s.app.UpdateRestaurant(c.Request().Context(), id, req)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

type dashboardView struct {
	Restaurant models.Restaurant  `json:"restaurant"`
	Date       string             `json:"date"`
	Capacity   capacity.Snapshot  `json:"capacity"`
	Partition  classify.Partition `json:"bookings"`
}

// dashboard is the owner view: capacity counts pending and confirmed
// bookings so tentative demand is visible.
func (s *Server) dashboard(c echo.Context) error {
	metrics.IncHTTP("dashboard")

	id, err := paramInt64(c, "restaurantID")
	if err != nil {
		return badRequest(c, err)
	}
	r, ok := s.app.GetRestaurant(id)
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody{Error: "not_found"})
	}

	now := time.Now()
	date := c.QueryParam("date")
	if date == "" {
		date = now.Format(models.DateLayout)
	} else if !models.ValidDate(date) {
		return badRequest(c, errors.New("date must be YYYY-MM-DD"))
	}

	bookings := s.app.GetBookingsByRestaurant(id)
	return c.JSON(http.StatusOK, dashboardView{
		Restaurant: r,
		Date:       date,
		Capacity:   s.app.CapacitySnapshot(id, date, capacity.Options{}),
		Partition:  classify.Classify(bookings, now),
	})
}

type createBookingRequest struct {
	RestaurantID int64  `json:"restaurant_id"`
	GuestName    string `json:"guest_name"`
	GuestPhone   string `json:"guest_phone"`
	UserID       string `json:"user_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
	Mode         string `json:"mode"`
}

func (s *Server) createBooking(c echo.Context) error {
	metrics.IncHTTP("create_booking")

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	b := models.Booking{
		RestaurantID: req.RestaurantID,
		GuestName:    req.GuestName,
		GuestPhone:   req.GuestPhone,
		UserID:       req.UserID,
		Date:         req.Date,
		Time:         req.Time,
		PartySize:    req.PartySize,
		Status:       models.InitialStatus(req.Mode),
	}
	if err := b.Validate(); err != nil {
		return badRequest(c, err)
	}
	if avail := s.app.AvailableCapacity(b.RestaurantID, b.Date, capacity.Options{}); b.PartySize > avail {
		return c.JSON(http.StatusConflict, errorBody{
			Error:   "insufficient_capacity",
			Message: "party does not fit the remaining capacity",
		})
	}

	created, err := s.app.AddBooking(c.Request().Context(), b)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) deleteBooking(c echo.Context) error {
	metrics.IncHTTP("delete_booking")

	if err := s.app.DeleteBooking(c.Request().Context(), c.Param("id")); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) confirmBooking(c echo.Context) error {
	metrics.IncHTTP("confirm_booking")

	if err := s.app.ConfirmBooking(c.Request().Context(), c.Param("id")); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) rejectBooking(c echo.Context) error {
	metrics.IncHTTP("reject_booking")

	if err := s.app.RejectBooking(c.Request().Context(), c.Param("id")); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) exportBookings(c echo.Context) error {
	metrics.IncHTTP("export_bookings")

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return report.Export(s.app.Bookings(), c.Response())
}
