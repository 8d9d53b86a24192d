package questions

import "math/rand/v2"

var interviewCovers = []string{
	"/adobe.png",
	"/amazon.png",
	"/facebook.png",
	"/hostinger.png",
	"/pinterest.png",
	"/quora.png",
	"/reddit.png",
	"/skype.png",
	"/spotify.png",
	"/telegram.png",
	"/tiktok.png",
	"/yahoo.png",
}

// CoverPicker returns a cover image path for a new interview
type CoverPicker func() string

// RandomCover picks uniformly from the bundled covers
func RandomCover() string {
	return CoverAt(rand.IntN(len(interviewCovers)))
}

// CoverAt wraps around so any index is valid
func CoverAt(i int) string {
	n := len(interviewCovers)
	return "/covers" + interviewCovers[((i%n)+n)%n]
}
