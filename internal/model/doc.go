// Package model defines the core data structures shared by the resolver,
// the download manager and the front ends.
//
// # Artwork
//
// Artwork is the result of resolving one album page. Each field is
// independently present or absent; an Artwork with every field empty is a
// valid result meaning "no assets discovered":
//
//	art := &model.Artwork{
//	    ImageURL:   "https://is1-ssl.mzstatic.com/.../3000x3000bb.jpg",
//	    ArtistName: "Willie Nelson",
//	    AlbumName:  "The Border",
//	}
//	art.HasImage() // true
//	art.HasVideo() // false
//
// # File Naming
//
// FileName computes the local file name for a downloaded asset:
//
//	model.FileName("Willie Nelson", "The Border", model.AssetImage, "jpg")
//	// "Willie Nelson - The Border.jpg"
//	model.FileName("Willie Nelson", "The Border", model.AssetVideo, "mp4")
//	// "Willie Nelson - The Border_video.mp4"
package model
