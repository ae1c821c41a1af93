package applemusic

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ResolveVideoURL crawls the HLS manifest graph rooted at playlistURL and
// returns the first playable .mp4 it finds.
//
// The crawl is breadth-first, so the shallowest .mp4 wins when several
// branches lead to one. Each distinct manifest URL is fetched at most once,
// which guarantees termination on cyclic graphs. The queue and visited set
// live only for the duration of the call.
//
// Returns:
//   - (url, true, nil) when a media file is found
//   - ("", false, nil) when the graph is exhausted or the fetch budget
//     (Options.MaxManifestFetches) runs out
//   - ("", false, err) as soon as any manifest fetch fails; the crawl is
//     aborted rather than skipping the branch
func (r *Resolver) ResolveVideoURL(ctx context.Context, playlistURL string) (string, bool, error) {
	queue := []string{playlistURL}
	visited := make(map[string]struct{})
	fetches := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, seen := visited[current]; seen {
			continue
		}
		if r.maxFetches > 0 && fetches >= r.maxFetches {
			r.log.WithFields(logrus.Fields{
				"playlist": playlistURL,
				"fetches":  fetches,
				"pending":  len(queue) + 1,
			}).Warn("manifest fetch budget exhausted, treating video as not found")
			return "", false, nil
		}
		visited[current] = struct{}{}
		fetches++

		manifest, err := r.client.GetString(ctx, current)
		if err != nil {
			return "", false, err
		}

		info := DescribeManifest(manifest)
		r.log.WithFields(logrus.Fields{
			"url":      current,
			"kind":     info.Kind,
			"variants": info.Variants,
			"segments": info.Segments,
		}).Debug("fetched manifest")

		if mediaURL, ok := ExtractMediaURL(manifest, current); ok {
			r.log.WithFields(logrus.Fields{"url": mediaURL, "fetches": fetches}).Debug("found motion artwork")
			return mediaURL, true, nil
		}

		for _, candidate := range ExtractPlaylistURLs(manifest, current) {
			if _, seen := visited[candidate]; !seen {
				queue = append(queue, candidate)
			}
		}
	}

	r.log.WithFields(logrus.Fields{"playlist": playlistURL, "fetches": fetches}).Debug("manifest graph exhausted without a media file")
	return "", false, nil
}
