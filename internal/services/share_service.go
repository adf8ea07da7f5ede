package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/logger"
	"carpool/internal/utils"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// EventRecorder receives ride lifecycle events. metrics.Metrics implements it.
type EventRecorder interface {
	ShareCreated()
	RideRequested()
	RequestTransitioned(status domain.RequestStatus)
	SpotsExhausted()
}

type nopRecorder struct{}

func (nopRecorder) ShareCreated()                            {}
func (nopRecorder) RideRequested()                           {}
func (nopRecorder) RequestTransitioned(domain.RequestStatus) {}
func (nopRecorder) SpotsExhausted()                          {}

// ShareService owns ride offers and the requests raised against them.
type ShareService struct {
	Shares   ShareStore
	Requests RequestStore
	Location *time.Location
	Events   EventRecorder
	Log      *zap.Logger
}

// ShareInput is the create-trip form. Spots and Price accept JSON numbers or
// numeric strings.
type ShareInput struct {
	From          string
	To            string
	DepartureDate string
	DepartureTime string
	Spots         any
	Price         any
	Message       *string
}

func (s ShareService) log() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Nop()
}

func (s ShareService) events() EventRecorder {
	if s.Events != nil {
		return s.Events
	}
	return nopRecorder{}
}

func (s ShareService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s ShareService) CreateShare(ctx context.Context, driver domain.Identity, in ShareInput) (models.Share, error) {
	in.From = utils.NormalizeSpace(in.From)
	in.To = utils.NormalizeSpace(in.To)
	in.DepartureDate = strings.TrimSpace(in.DepartureDate)
	in.DepartureTime = strings.TrimSpace(in.DepartureTime)

	required := map[string]bool{
		"from":          in.From == "",
		"to":            in.To == "",
		"departureDate": in.DepartureDate == "",
		"departureTime": in.DepartureTime == "",
		"spots":         isBlank(in.Spots),
	}
	for _, absent := range required {
		if absent {
			return models.Share{}, domain.ValidationError{Msg: "Missing required fields", Details: required}
		}
	}

	spots, err := parseSpots(in.Spots)
	if err != nil {
		return models.Share{}, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return models.Share{}, err
	}
	departure, err := utils.CombineDateClock(in.DepartureDate, in.DepartureTime, s.location())
	if err != nil {
		return models.Share{}, domain.ValidationError{Field: "departureTime", Msg: "Invalid date or time format", Err: err}
	}

	share := models.Share{
		DriverID:      driver.UserID,
		Origin:        in.From,
		Destination:   in.To,
		DepartureTime: departure.UTC(),
		Spots:         spots,
		Price:         price,
		Message:       trimmedOrNil(in.Message),
	}
	if err := s.Shares.Create(ctx, &share); err != nil {
		return models.Share{}, err
	}
	s.events().ShareCreated()
	s.log().Info("share created",
		logger.Int64("share_id", share.ID),
		logger.Int64("driver_id", driver.UserID),
		logger.Int("spots", spots),
	)
	return share, nil
}

// SearchShares finds bookable rides departing within 24 hours of date.
func (s ShareService) SearchShares(ctx context.Context, origin, destination, date string) ([]models.ShareWithDriver, error) {
	if strings.TrimSpace(date) == "" {
		return nil, domain.ValidationError{Field: "date", Msg: "date is required"}
	}
	day, err := utils.ParseDate(date, s.location())
	if err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "Invalid date format", Err: err}
	}
	from, to := utils.DayWindow(day)
	return s.Shares.Search(ctx, models.ShareQuery{
		Origin:      strings.TrimSpace(origin),
		Destination: strings.TrimSpace(destination),
		From:        from,
		To:          to,
	})
}

// RequestRide raises a PENDING request for a seat on shareID.
func (s ShareService) RequestRide(ctx context.Context, rider domain.Identity, shareID any, message *string) (models.Request, error) {
	id, err := parseID(shareID)
	if err != nil {
		return models.Request{}, domain.ValidationError{Field: "shareId", Msg: "shareId must be a positive integer", Err: err}
	}
	share, err := s.Shares.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Request{}, domain.NotAvailableError{}
		}
		return models.Request{}, err
	}
	if share.Spots <= 0 {
		return models.Request{}, domain.NotAvailableError{}
	}

	req := models.Request{
		ShareID: share.ID,
		UserID:  rider.UserID,
		Message: trimmedOrNil(message),
		Status:  domain.StatusPending,
	}
	if err := s.Requests.Create(ctx, &req); err != nil {
		return models.Request{}, err
	}
	s.events().RideRequested()
	s.log().Info("ride requested",
		logger.Int64("request_id", req.ID),
		logger.Int64("share_id", share.ID),
		logger.Int64("user_id", rider.UserID),
	)
	return req, nil
}

// ListDrivingTrips returns the caller's shares with the requests raised on each.
func (s ShareService) ListDrivingTrips(ctx context.Context, driver domain.Identity) ([]models.DrivingTrip, error) {
	shares, err := s.Shares.ListByDriver(ctx, driver.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.ID)
	}
	reqs, err := s.Requests.ListForShares(ctx, ids)
	if err != nil {
		return nil, err
	}
	byShare := groupRequests(reqs, false)

	out := make([]models.DrivingTrip, 0, len(shares))
	for _, sh := range shares {
		reqs := byShare[sh.ID]
		if reqs == nil {
			reqs = []models.RequestWithUser{}
		}
		out = append(out, models.DrivingTrip{Share: sh, Requests: reqs})
	}
	return out, nil
}

func (s ShareService) ListRidingTrips(ctx context.Context, rider domain.Identity) ([]models.RidingTrip, error) {
	return s.Requests.ListByUser(ctx, rider.UserID)
}

// UpdateRequestStatus lets the driver of a request's share approve or decline
// it. Approval takes one spot from the share.
func (s ShareService) UpdateRequestStatus(ctx context.Context, actor domain.Identity, requestID int64, status string) (models.Request, error) {
	next, ok := domain.ParseRequestStatus(status)
	if !ok || !next.Terminal() {
		return models.Request{}, domain.ValidationError{Field: "status", Msg: "status must be APPROVED or DECLINED"}
	}
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Request{}, domain.NotFoundError{Resource: "Request", Err: err}
		}
		return models.Request{}, err
	}
	share, err := s.Shares.GetByID(ctx, req.ShareID)
	if err != nil {
		return models.Request{}, err
	}
	if share.DriverID != actor.UserID {
		return models.Request{}, domain.ForbiddenError{Msg: "Not authorized to update this request"}
	}
	if !req.Status.CanTransition(next) {
		return models.Request{}, domain.ConflictError{Msg: fmt.Sprintf("Request is already %s", req.Status)}
	}

	updated, err := s.Requests.Transition(ctx, req.ID, share.ID, next)
	if err != nil {
		if domain.IsNotAvailable(err) {
			s.events().SpotsExhausted()
		}
		return models.Request{}, err
	}
	s.events().RequestTransitioned(next)
	s.log().Info("request status updated",
		logger.Int64("request_id", updated.ID),
		logger.Int64("share_id", share.ID),
		logger.String("status", string(next)),
	)
	return updated, nil
}

func groupRequests(reqs []models.RequestWithUser, withEmail bool) map[int64][]models.RequestWithUser {
	out := map[int64][]models.RequestWithUser{}
	for _, r := range reqs {
		if !withEmail {
			r.User = models.Person{FirstName: r.User.FirstName, LastName: r.User.LastName}
		}
		out[r.ShareID] = append(out[r.ShareID], r)
	}
	return out
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str) == ""
	}
	return false
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// numeric accepts JSON numbers and base-10 numeric strings and rejects
// everything else, including booleans that cast would otherwise coerce and
// prefixed strings such as "0x10" that cast would read in another base.
func numeric(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		x = strings.TrimSpace(x)
		if !decimalPattern.MatchString(x) {
			return nil, false
		}
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	case json.Number:
		return numeric(string(x))
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case int, int64, int32:
		return x, true
	}
	return nil, false
}

func isIntegral(v any) bool {
	f, ok := v.(float64)
	return !ok || f == math.Trunc(f)
}

// maxExactFloat is the largest float64 below which every integer is exact.
const maxExactFloat = 1 << 53

// positiveInt reads v as an integer in [1, limit].
func positiveInt(v any, limit int64) (int64, bool) {
	v, ok := numeric(v)
	if !ok || !isIntegral(v) {
		return 0, false
	}
	if f, isFloat := v.(float64); isFloat && math.Abs(f) > maxExactFloat {
		return 0, false
	}
	n, err := cast.ToInt64E(v)
	if err != nil || n <= 0 || n > limit {
		return 0, false
	}
	return n, true
}

func parseSpots(v any) (int, error) {
	n, ok := positiveInt(v, math.MaxInt32)
	if !ok {
		return 0, domain.ValidationError{Field: "spots", Msg: "Spots must be a positive number"}
	}
	return int(n), nil
}

func parsePrice(v any) (float64, error) {
	if isBlank(v) {
		return 0, nil
	}
	invalid := domain.ValidationError{Field: "price", Msg: "Price must be a non-negative number"}
	v, ok := numeric(v)
	if !ok {
		return 0, invalid
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid
	}
	return f, nil
}

func parseID(v any) (int64, error) {
	id, ok := positiveInt(v, math.MaxInt64)
	if !ok {
		return 0, fmt.Errorf("not a positive integer: %v", v)
	}
	return id, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
