package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/crestapp/crest/backend/internal/errors"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/realtime"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// ToggleLike flips the caller's like on a post or comment
// POST /api/v1/likes/toggle
func (h *Handlers) ToggleLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		TargetID   string `json:"target_id" binding:"required"`
		TargetKind string `json:"target_kind" binding:"required,oneof=post comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	kind := models.TargetKind(req.TargetKind)
	result, err := h.engagement.ToggleLike(c.Request.Context(), userID, req.TargetID, kind)
	if err != nil {
		var apiErr *apperrors.APIError
		if errors.As(err, &apiErr) {
			util.RespondWithAPIError(c, apiErr)
			return
		}
		util.RespondInternalError(c, "Failed to toggle like")
		return
	}

	h.notifier.Dispatch(notify.Event{
		Type:         notify.EventLikeToggled,
		ActorID:      userID,
		TargetUserID: result.AuthorID,
		PostID:       postIDForLike(req.TargetID, kind),
		CommentID:    commentIDForLike(req.TargetID, kind),
		TargetKind:   kind,
		IsLiked:      result.IsLiked,
	})

	if h.wsHandler != nil {
		h.wsHandler.BroadcastCountUpdate(
			realtime.MessageTypeLikeCountUpdate,
			req.TargetID, req.TargetKind, result.LikesCount,
		)
	}

	c.JSON(http.StatusOK, result)
}

func postIDForLike(targetID string, kind models.TargetKind) string {
	if kind == models.TargetPost {
		return targetID
	}
	return ""
}

func commentIDForLike(targetID string, kind models.TargetKind) string {
	if kind == models.TargetComment {
		return targetID
	}
	return ""
}
