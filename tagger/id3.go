// Package tagger writes ID3 tags onto downloaded audio files.
package tagger

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/adampisula/musicdl-server/model"
)

// WriteTags sets the artist and title frames on the file at path from the
// track metadata.
func WriteTags(path string, metadata model.TrackMetadata) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for tagging: %w", path, err)
	}
	defer tag.Close()

	tag.SetArtist(strings.Join(metadata.Artists, ", "))
	tag.SetTitle(metadata.Title)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags to %s: %w", path, err)
	}
	return nil
}
