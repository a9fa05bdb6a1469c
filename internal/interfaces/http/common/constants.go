package common

const (
	// MaxReviewRequestBody limits form and JSON request bodies for review endpoints.
	MaxReviewRequestBody = 1 << 20
	// FeedPreviewWidth is the number of display columns shown in a collapsed feed entry.
	FeedPreviewWidth = 40
	// DisplayTimeLayout formats timestamps on both dashboards.
	DisplayTimeLayout = "2006-01-02 15:04:05"
)
