package upstream

import (
	"context"
	"fmt"
	"net/http"

	"nimbus/internal/types"
)

const (
	// Frame window: the trailing observed frames plus the leading nowcast
	// frames served to the animation loop.
	radarPastFrames    = 12
	radarNowcastFrames = 3

	// RadarTileTemplate is the tile URL template clients expand per frame:
	// {path} from the frame, then standard z/x/y slippy-map coordinates.
	RadarTileTemplate = "https://tilecache.rainviewer.com{path}/256/{z}/{x}/{y}/2/1_1.png"
)

// RadarFrame is one radar mosaic snapshot. Path is the tile-path fragment
// substituted into RadarTileTemplate; Nowcast marks predicted frames.
type RadarFrame struct {
	Time    int64  `json:"time"`
	Path    string `json:"path"`
	Nowcast bool   `json:"nowcast"`
}

// RadarClient fetches the radar frame index. Frames are global (not
// per-location); tile requests themselves go straight from the browser to
// the tile CDN.
type RadarClient struct {
	base    *BaseClient
	baseURL string
}

// NewRadarClient creates a RadarClient against baseURL.
func NewRadarClient(httpClient *http.Client, baseURL, userAgent string, retry RetryPolicy, opts ...BaseClientOption) *RadarClient {
	return &RadarClient{
		base:    NewBaseClient(httpClient, "radar", retry, userAgent, opts...),
		baseURL: baseURL,
	}
}

type radarIndexResponse struct {
	Radar struct {
		Past []struct {
			Time int64  `json:"time"`
			Path string `json:"path"`
		} `json:"past"`
		Nowcast []struct {
			Time int64  `json:"time"`
			Path string `json:"path"`
		} `json:"nowcast"`
	} `json:"radar"`
}

// FetchFrames retrieves the current frame set: the last 12 observed frames
// followed by the first 3 nowcast frames, oldest first. The index endpoint
// is aggressively cached upstream, so a cache-busting query parameter keyed
// on the current minute defeats stale intermediaries.
func (c *RadarClient) FetchFrames(ctx context.Context, now int64) ([]RadarFrame, error) {
	u := fmt.Sprintf("%s?_=%d", c.baseURL, now)
	var resp radarIndexResponse
	if err := c.base.getJSON(ctx, u, &resp, types.ErrCodeUpstreamRadar); err != nil {
		return nil, err
	}

	past := resp.Radar.Past
	if len(past) > radarPastFrames {
		past = past[len(past)-radarPastFrames:]
	}
	nowcast := resp.Radar.Nowcast
	if len(nowcast) > radarNowcastFrames {
		nowcast = nowcast[:radarNowcastFrames]
	}

	frames := make([]RadarFrame, 0, len(past)+len(nowcast))
	for _, f := range past {
		frames = append(frames, RadarFrame{Time: f.Time, Path: f.Path})
	}
	for _, f := range nowcast {
		frames = append(frames, RadarFrame{Time: f.Time, Path: f.Path, Nowcast: true})
	}
	return frames, nil
}
