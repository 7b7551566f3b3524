package handlers

import (
	"errors"
	"net/http"

	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/saleorapp"
	"CourseBridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CourseHandler exposes the catalog sync to operators.
type CourseHandler struct {
	sync *saleorapp.CourseSync
	log  *logger.Logger
}

func NewCourseHandler(sync *saleorapp.CourseSync, l *logger.Logger) CourseHandler {
	return CourseHandler{sync: sync, log: l}
}

// Sync publishes one course to the Saleor catalog.
func (h *CourseHandler) Sync(c *gin.Context) {
	key, err := course.ParseKey(c.Param("course_key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid course key."})
		return
	}

	if err := h.sync.SyncCourse(c.Request.Context(), key); err != nil {
		if errors.Is(err, course.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
			return
		}
		h.log.ErrorCtx(c.Request.Context(), "Course sync failed for %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course synced successfully."})
}
