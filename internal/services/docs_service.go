package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/logger"
	"carpool/internal/utils"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// DocsService renders PDF ride tickets for approved requests.
type DocsService struct {
	Users    UserStore
	Shares   ShareStore
	Requests RequestStore
	Location *time.Location
	Log      *zap.Logger
	Loader   func(ctx context.Context, requestID int64) (ticketData, error)
}

type ticketData struct {
	RequestID  int64
	Status     domain.RequestStatus
	Rider      models.User
	Driver     models.User
	Share      models.Share
	Message    *string
	ApprovedAt time.Time
}

// RideTicket returns the ticket PDF and its file name. Only the rider and the
// driver may download it, and only once the request is APPROVED.
func (s DocsService) RideTicket(ctx context.Context, actor domain.Identity, requestID int64) ([]byte, string, error) {
	data, err := s.load(ctx, requestID)
	if err != nil {
		return nil, "", err
	}
	if actor.UserID != data.Rider.ID && actor.UserID != data.Driver.ID {
		return nil, "", domain.ForbiddenError{Msg: "Not authorized to view this ticket"}
	}
	if data.Status != domain.StatusApproved {
		return nil, "", domain.ConflictError{Msg: fmt.Sprintf("Request is %s, tickets are issued for approved requests only", data.Status)}
	}

	pdf, name, err := buildTicketPDF(data, s.location())
	if err != nil {
		return nil, "", domain.InternalError{Msg: "render ticket", Err: err}
	}
	s.log().Info("ticket generated", logger.Int64("request_id", requestID), logger.Int64("user_id", actor.UserID))
	return pdf, name, nil
}

func (s DocsService) load(ctx context.Context, requestID int64) (ticketData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, requestID)
	}
	var out ticketData
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if domain.IsNotFound(err) {
			return out, domain.NotFoundError{Resource: "Request", Err: err}
		}
		return out, err
	}
	share, err := s.Shares.GetByID(ctx, req.ShareID)
	if err != nil {
		return out, err
	}
	rider, err := s.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return out, err
	}
	driver, err := s.Users.GetByID(ctx, share.DriverID)
	if err != nil {
		return out, err
	}
	out.RequestID = req.ID
	out.Status = req.Status
	out.Rider = rider
	out.Driver = driver
	out.Share = share
	out.Message = req.Message
	out.ApprovedAt = req.UpdatedAt
	return out, nil
}

func (s DocsService) log() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Nop()
}

func (s DocsService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func buildTicketPDF(d ticketData, loc *time.Location) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ride Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RIDE TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Ticket      : TCK-%d-%d", d.Share.ID, d.RequestID),
		fmt.Sprintf("Rider       : %s", utils.Fallback(d.Rider.Person().DisplayName(), "-")),
		fmt.Sprintf("Driver      : %s", utils.Fallback(d.Driver.Person().DisplayName(), "-")),
		fmt.Sprintf("Route       : %s -> %s", utils.Fallback(d.Share.Origin, "-"), utils.Fallback(d.Share.Destination, "-")),
		fmt.Sprintf("Departure   : %s", utils.FormatDateTime(d.Share.DepartureTime, loc)),
		fmt.Sprintf("Fare        : %s", utils.FormatPrice(d.Share.Price)),
		fmt.Sprintf("Approved at : %s", utils.FormatDateTime(d.ApprovedAt, loc)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	if d.Message != nil {
		pdf.Ln(2)
		pdf.MultiCell(0, 6, "Note: "+*d.Message, "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This ticket is valid for one seat. Show it to the driver at pickup.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TICKET_%d_%s.pdf", d.RequestID, utils.SafeFilenamePart(d.Share.Origin+"_"+d.Share.Destination))
	return buf.Bytes(), filename, nil
}
