package handlers

import (
	"net/http"

	"lostwatch/internal/apperr"
	"lostwatch/internal/models"
	"lostwatch/internal/registry"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is where the request logger stores the request id.
const RequestIDKey = "request_id"

type SubmitResponse struct {
	Matched       bool   `json:"matched"`
	Message       string `json:"message"`
	FinderContact string `json:"finder_contact,omitempty"`
	LoserContact  string `json:"loser_contact,omitempty"`
}

type LookupRequest struct {
	SerialNumber string `json:"serial_number"`
}

type LookupResponse struct {
	Match  bool             `json:"match"`
	Report *models.MapPoint `json:"report,omitempty"`
}

// @Summary Submit a report
// @Description File a lost or found report. If a report with the same serial number and the opposite status exists, both are marked reunited.
// @Tags reports
// @Accept json
// @Produce json
// @Param body body registry.Submission true "report"
// @Success 200 {object} SubmitResponse "matched"
// @Success 201 {object} SubmitResponse "stored, no match yet"
// @Failure 400 {object} apperr.Wire
// @Failure 401 {object} apperr.Wire
// @Failure 500 {object} apperr.Wire
// @Router /reports [post]
func SubmitReportHandler(c *gin.Context, svc *registry.Service) {
	var sub registry.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		respondError(c, apperr.Validation("", "malformed JSON body"))
		return
	}
	submit(c, svc, sub)
}

// @Summary Submit a found watch
// @Description Legacy path: same as POST /reports with status forced to found.
// @Tags legacy
// @Accept json
// @Produce json
// @Param body body registry.Submission true "report"
// @Success 200 {object} SubmitResponse
// @Success 201 {object} SubmitResponse
// @Failure 400 {object} apperr.Wire
// @Router /api/found [post]
func SubmitFoundHandler(c *gin.Context, svc *registry.Service) {
	var sub registry.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		respondError(c, apperr.Validation("", "malformed JSON body"))
		return
	}
	sub.Status = string(models.StatusFound)
	submit(c, svc, sub)
}

func submit(c *gin.Context, svc *registry.Service, sub registry.Submission) {
	out, err := svc.Submit(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err)
		return
	}
	if !out.Matched {
		c.JSON(http.StatusCreated, SubmitResponse{Matched: false, Message: "report submitted"})
		return
	}
	c.JSON(http.StatusOK, SubmitResponse{
		Matched:       true,
		Message:       out.CounterpartContact() + " notified",
		FinderContact: out.FinderContact(),
		LoserContact:  out.LoserContact(),
	})
}

// @Summary List active reports
// @Description Map points for lost and found reports. Serial numbers and contacts are never included.
// @Tags reports
// @Produce json
// @Param status query string false "lost or found"
// @Success 200 {array} models.MapPoint
// @Failure 400 {object} apperr.Wire
// @Failure 500 {object} apperr.Wire
// @Router /reports [get]
func ListReportsHandler(c *gin.Context, svc *registry.Service) {
	points, err := svc.ListActive(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// @Summary Registry counts
// @Description Lost and found counts plus the number of reunited pairs, read in one snapshot.
// @Tags stats
// @Produce json
// @Success 200 {object} models.Stats
// @Failure 500 {object} apperr.Wire
// @Router /stats [get]
func StatsHandler(c *gin.Context, svc *registry.Service) {
	st, err := svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary Look up a found watch
// @Description Checks whether a found report exists for a serial number without filing a report.
// @Tags reports
// @Produce json
// @Param serial_number query string true "serial number"
// @Success 200 {object} LookupResponse
// @Failure 400 {object} apperr.Wire
// @Failure 401 {object} apperr.Wire
// @Router /reports/lookup [get]
func LookupHandler(c *gin.Context, svc *registry.Service) {
	lookup(c, svc, c.Query("serial_number"))
}

// @Summary Look up a found watch
// @Description Legacy path taking the serial number in a JSON body.
// @Tags legacy
// @Accept json
// @Produce json
// @Param body body LookupRequest true "serial number"
// @Success 200 {object} LookupResponse
// @Failure 400 {object} apperr.Wire
// @Router /api/lost [post]
func LegacyLookupHandler(c *gin.Context, svc *registry.Service) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("", "malformed JSON body"))
		return
	}
	lookup(c, svc, req.SerialNumber)
}

func lookup(c *gin.Context, svc *registry.Service, serial string) {
	p, err := svc.Lookup(c.Request.Context(), serial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LookupResponse{Match: p != nil, Report: p})
}

// respondError is the one place errors become responses. Store and config
// detail is logged, never sent.
func respondError(c *gin.Context, err error) {
	e := apperr.As(err)
	status := apperr.HTTPStatus(e.Kind)
	if status >= http.StatusInternalServerError {
		log.WithError(err).
			WithField("request_id", c.GetString(RequestIDKey)).
			WithField("path", c.FullPath()).
			Error("request failed")
	}
	c.JSON(status, apperr.ToWire(e))
}
