package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"auditdesk/pkg/apperr"
)

func TestSuccess(t *testing.T) {
	res := Success(http.StatusCreated, map[string]string{"id": "abc"})
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Empty(t, res.Error)
}

func TestFromError_AppError(t *testing.T) {
	status, res := FromError(apperr.Conflict("tcwg_pack_not_approved"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "tcwg_pack_not_approved", res.Error)
	assert.Nil(t, res.Data)
}

func TestFromError_UnknownError(t *testing.T) {
	status, res := FromError(errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", res.Error, "store internals never leak to clients")
}
