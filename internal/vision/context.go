package vision

import "image"

// Context is a coarse description of the scene, derived purely from image
// geometry. It is a heuristic hint for the assessor, independent of the
// label vocabulary.
type Context struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	RoomType    string  `json:"room_type"`
}

// AnalyzeContext derives the room-type hint from the image's aspect ratio.
func AnalyzeContext(img image.Image) Context {
	if img == nil {
		return Context{RoomType: "unknown"}
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return Context{Width: width, Height: height, RoomType: "unknown"}
	}

	ratio := float64(width) / float64(height)
	roomType := "standard room"
	switch {
	case ratio > 1.5:
		roomType = "hallway or corridor"
	case ratio < 0.7:
		roomType = "tall room or stairwell"
	}
	return Context{Width: width, Height: height, AspectRatio: ratio, RoomType: roomType}
}
