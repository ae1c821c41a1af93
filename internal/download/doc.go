// Package download turns an album page URL into saved artwork files.
//
// # Manager
//
// The Manager coordinates the whole run:
//
//  1. Validate and normalise the input URL
//  2. Resolve the page with applemusic.Resolver
//  3. Report the image and video URLs
//  4. Download both assets concurrently into the output directory
//  5. Optionally open each saved file
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	defer manager.Close()
//
//	result, err := manager.Run(ctx, "https://music.apple.com/us/album/the-border/1234")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Asset URLs are reported at LevelInfo as "image_url: <url>" and
// "video_url: <url>", saved files at LevelSuccess as "Downloaded: <path>".
// A failed asset download is reported at LevelWarning and never aborts
// the run.
//
// # File Names
//
// Saved files are named by model.FileName from the resolved artist and
// album, e.g. "Willie Nelson - The Border.jpg" and
// "Willie Nelson - The Border_video.mp4".
package download
