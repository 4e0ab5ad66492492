package controllers

import (
	"context"
	"net/http"

	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
)

// ReviewSubmitter posts customer reviews to the content store.
type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, review models.Review) *services.ServiceError
}

type ReviewController struct {
	reviews ReviewSubmitter
}

func NewReviewController(reviews ReviewSubmitter) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// SubmitReview handles POST /api/reviews. The route is auth-protected so
// only logged-in customers can post.
func (rc *ReviewController) SubmitReview(c *gin.Context) {
	var review models.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields."})
		return
	}

	if serviceErr := rc.reviews.SubmitReview(c.Request.Context(), review); serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted successfully."})
}
