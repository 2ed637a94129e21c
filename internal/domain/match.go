package domain

// ProductMatch is a single candidate product with a similarity score in [0,1]
type ProductMatch struct {
	Name            string  `json:"name"`
	ImageURL        string  `json:"image_url"`
	SimilarityScore float64 `json:"similarity_score"`
}

// ObjectMatchGroup is one detected object and its ranked candidate matches.
// Matches keep the order returned by the analysis service.
type ObjectMatchGroup struct {
	Object       string         `json:"object"`
	Confidence   float64        `json:"confidence"`
	CroppedImage string         `json:"cropped_image,omitempty"` // base64 JPEG, optional
	Matches      []ProductMatch `json:"matches"`
}

// AnalysisRequest is the body sent to the analysis service
type AnalysisRequest struct {
	URL string `json:"url" binding:"required"`
}
