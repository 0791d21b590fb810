package certificate

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/middleware"
	"github.com/edumart/edumart-server-go/pkg/response"
)

// Handler processes certificate HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a certificate handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// Verify is a public endpoint that confirms whether a certificate number is
// genuine. It never reveals who the certificate belongs to.
func (h *Handler) Verify(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "number query parameter is required", nil)
		return
	}

	cert, err := GetByNumber(h.db.WithContext(c.Request.Context()), number)
	if err != nil {
		if errors.Is(err, ErrCertificateNotFound) {
			response.Success(c, http.StatusOK, gin.H{
				"valid":   false,
				"message": "certificate not found",
			}, "", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to verify certificate", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"valid": true,
		"certificate": gin.H{
			"number":   cert.Number,
			"issuedAt": cert.IssuedAt,
		},
	}, "", nil)
}

// Mine returns the authenticated user's certificates.
func (h *Handler) Mine(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	enrollments, err := enrollment.ListByUser(db, usr.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrollments", err)
		return
	}

	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, enr := range enrollments {
		ids = append(ids, enr.ID)
	}

	certs, err := ListByEnrollments(db, ids)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list certificates", err)
		return
	}

	response.Success(c, http.StatusOK, certs, "", nil)
}
