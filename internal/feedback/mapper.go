package feedback

import (
	"fitfuzz-storefront/internal/backend"

	"github.com/shopspring/decimal"
)

func mapReviews(productID, viewerID int64, fb *backend.ProductFeedback) Reviews {
	out := Reviews{ProductID: productID, Reviews: []Review{}}
	if fb == nil {
		out.AverageRatingDisplay = out.AverageRating.StringFixed(1)
		return out
	}

	sum := 0
	for _, f := range fb.Feedbacks {
		images := f.Images
		if images == nil {
			images = []string{}
		}
		out.Reviews = append(out.Reviews, Review{
			ID:        f.ID.Value,
			UserID:    f.UserID.Value,
			UserName:  f.UserName,
			Rating:    f.Rating,
			Comment:   f.Comment,
			Images:    images,
			CreatedAt: f.CreatedAt,
			Own:       viewerID > 0 && f.UserID.Valid && f.UserID.Value == viewerID,
		})
		sum += f.Rating
	}

	// Older backends leave the aggregates out.
	out.ReviewCount = fb.ReviewCount
	if out.ReviewCount == 0 {
		out.ReviewCount = len(out.Reviews)
	}
	out.AverageRating = fb.AverageRating.Decimal()
	if out.AverageRating.IsZero() && len(out.Reviews) > 0 {
		out.AverageRating = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(out.Reviews))))
	}
	out.AverageRatingDisplay = out.AverageRating.StringFixed(1)
	return out
}
