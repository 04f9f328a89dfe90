package model

// Action tells the caller what a URL identifies: a catalog entry that still
// needs an alternative-source selection, a directly downloadable asset, or
// nothing we support.
type Action string

const (
	ActionSelectSource Action = "SELECT_SOURCE"
	ActionDownload     Action = "DOWNLOAD"
	ActionUnknownURL   Action = "UNKNOWN_URL"
)
