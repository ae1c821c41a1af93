// Package applemusic resolves a public album page into direct artwork asset
// URLs and album metadata.
//
// Resolution runs in three stages:
//
//  1. The album page is fetched and the JSON payload embedded in its
//     serialized-server-data element is extracted (FetchServerData)
//  2. ServerData answers four independent queries over that payload: cover
//     image URL, motion artwork playlist URL, artist name and album name
//  3. If a playlist URL was advertised, the HLS manifest graph behind it is
//     crawled breadth-first until a playable .mp4 is found
//     (ResolveVideoURL)
//
// # Basic Usage
//
//	art, err := applemusic.Resolve(ctx, "https://music.apple.com/us/album/x/123", 10*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(art.ImageURL, art.VideoURL)
//
// For more control, build a Resolver around your own client:
//
//	client := http.NewClient(http.DefaultConfig())
//	defer client.Close()
//
//	resolver := applemusic.NewResolver(client, applemusic.DefaultOptions())
//	art, err := resolver.Resolve(ctx, pageURL)
//
// # Payload Shape
//
// The embedded payload is an undocumented, versioned format. Its fields
// move around between albums, singles and video-only releases, so every
// ServerData query treats a missing or wrong-typed field as "not found"
// and moves on to the next candidate. Only transport failures and a
// missing or undecodable payload are errors.
package applemusic
