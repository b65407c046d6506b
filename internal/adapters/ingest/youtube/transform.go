package youtube

import (
	"time"

	"tubewatch/internal/platform/logger"
	"tubewatch/internal/services/videos/domain"
)

// Transform maps raw search items to video records. Non-video results are
// skipped, as are items without a video id. A malformed publish timestamp does
// not drop the record; it is kept with a nil PublishedAt
func Transform(items []Item) []domain.VideoRecord {
	out := make([]domain.VideoRecord, 0, len(items))
	for _, it := range items {
		if it.ID.Kind != "youtube#video" || it.ID.VideoID == "" {
			continue
		}
		rec := domain.VideoRecord{
			VideoID:      it.ID.VideoID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			PublishedAt:  parsePublishedAt(it.ID.VideoID, it.Snippet.PublishedAt),
			Thumbnails:   transformThumbnails(it.Snippet.Thumbnails),
			ChannelID:    it.Snippet.ChannelID,
			ChannelTitle: it.Snippet.ChannelTitle,
			Raw:          it.Raw,
		}
		out = append(out, rec)
	}
	return out
}

func parsePublishedAt(videoID, s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		logger.Named("youtube").Warn().Str("video_id", videoID).Str("published_at", s).Msg("unparseable publish timestamp keeping record")
		return nil
	}
	ts = ts.UTC()
	return &ts
}

func transformThumbnails(in map[string]Thumbnail) map[string]domain.Thumbnail {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]domain.Thumbnail, len(in))
	for name, th := range in {
		out[name] = domain.Thumbnail{URL: th.URL, Width: th.Width, Height: th.Height}
	}
	return out
}
