package model

// Link is one candidate alternative source: a playable URL and its similarity
// to the target metadata. Similarity is not clamped below; a wildly wrong
// duration can push it negative.
type Link struct {
	Link       string  `json:"link"`
	Similarity float64 `json:"similarity"`
}

// Links groups candidate links by secondary catalog. Only the YouTube catalog
// is populated today; SoundCloud search is declared but not implemented.
type Links struct {
	Youtube    []Link `json:"youtube"`
	Soundcloud []Link `json:"soundcloud"`
}
