package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReviewSubmitter struct {
	reviews []models.Review
	err     *services.ServiceError
}

func (s *stubReviewSubmitter) SubmitReview(ctx context.Context, review models.Review) *services.ServiceError {
	if s.err != nil {
		return s.err
	}
	s.reviews = append(s.reviews, review)
	return nil
}

func newReviewRouter(submitter *stubReviewSubmitter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rc := NewReviewController(submitter)
	r.POST("/api/reviews", rc.SubmitReview)
	return r
}

func TestSubmitReview_Created(t *testing.T) {
	submitter := &stubReviewSubmitter{}
	r := newReviewRouter(submitter)

	w := postJSON(r, "/api/reviews", `{"productId": "prod-wallet", "authorName": "Jo", "rating": 5, "reviewText": "Lovely leather."}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, submitter.reviews, 1)
	assert.Equal(t, "prod-wallet", submitter.reviews[0].ProductID)
}

func TestSubmitReview_RatingOutOfRange(t *testing.T) {
	submitter := &stubReviewSubmitter{}
	r := newReviewRouter(submitter)

	w := postJSON(r, "/api/reviews", `{"productId": "prod-wallet", "authorName": "Jo", "rating": 6, "reviewText": "x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required fields.")
	assert.Empty(t, submitter.reviews)
}

func TestSubmitReview_MissingFields(t *testing.T) {
	submitter := &stubReviewSubmitter{}
	r := newReviewRouter(submitter)

	w := postJSON(r, "/api/reviews", `{"productId": "prod-wallet"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, submitter.reviews)
}

func TestSubmitReview_ContentStoreFailure(t *testing.T) {
	submitter := &stubReviewSubmitter{
		err: &services.ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to submit review."},
	}
	r := newReviewRouter(submitter)

	w := postJSON(r, "/api/reviews", `{"productId": "prod-wallet", "authorName": "Jo", "rating": 4, "reviewText": "Solid."}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to submit review.")
}
