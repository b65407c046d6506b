package youtube

import "encoding/json"

// Item is one search result as returned by the YouTube Data v3 search endpoint.
// Raw keeps the undecoded item for forward-compatibility and debugging
type Item struct {
	ID      ItemID      `json:"id"`
	Snippet ItemSnippet `json:"snippet"`

	Raw json.RawMessage `json:"-"`
}

// ItemID carries the resource kind and, for videos, the video id
type ItemID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

// ItemSnippet is the nested metadata block of a search result
type ItemSnippet struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	PublishedAt  string               `json:"publishedAt"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails"`
	ChannelID    string               `json:"channelId"`
	ChannelTitle string               `json:"channelTitle"`
}

// Thumbnail is one entry of the size-name -> image map
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// searchResponse is the wire shape of a search call; items are kept raw so
// each decoded Item can retain its original payload
type searchResponse struct {
	Items []json.RawMessage `json:"items"`
	Error *apiError         `json:"error"`
}

// apiError is the structured error body Google APIs return on failures
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Reason string `json:"reason"`
	} `json:"errors"`
}

// decodeItems unmarshals raw items, keeping the raw payload on each
func decodeItems(raw []json.RawMessage) ([]Item, error) {
	out := make([]Item, 0, len(raw))
	for _, rm := range raw {
		var it Item
		if err := json.Unmarshal(rm, &it); err != nil {
			return nil, err
		}
		it.Raw = rm
		out = append(out, it)
	}
	return out, nil
}
