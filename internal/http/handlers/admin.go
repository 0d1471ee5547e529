package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workpadhq/workpad/internal/sweep"
)

type Purger interface {
	Purge(ctx context.Context) (sweep.Result, error)
}

// AdminHandler exposes maintenance operations behind the admin role. The
// sweeper runs these on a schedule anyway, the endpoint exists for
// on-demand cleanup.
type AdminHandler struct {
	purger Purger
}

func NewAdminHandler(purger Purger) *AdminHandler {
	return &AdminHandler{purger: purger}
}

func (h *AdminHandler) Purge(ctx *gin.Context) {
	res, err := h.purger.Purge(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Purge failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"purged": res})
}
