package dto

// SourceEventRequest is the normalized webhook payload posted by the source
// forge (or a thin translation proxy in front of it).
type SourceEventRequest struct {
	Kind       string `json:"kind" binding:"required"`
	Repository string `json:"repository" binding:"required"`
	Ref        string `json:"ref"`
	CommitSHA  string `json:"commit_sha" binding:"required"`
	ReleaseTag string `json:"release_tag"`
	Actor      string `json:"actor"`
}
