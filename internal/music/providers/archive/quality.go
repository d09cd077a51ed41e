package archive

import (
	"sort"
	"strings"
	"time"
)

// minFileSize filters out clips and samples; a full song encoded as MP3 is
// rarely under a megabyte.
const minFileSize = 1_000_000

var badKeywords = []string{
	"ringtone", "sample", "preview", "loop", "beat", "instrumental",
	"remix", "karaoke", "playback", "iphone", "marimba", "versi",
	"notification", "alert", "sound effect",
}

func isQualityAudio(it item) bool {
	title := strings.ToLower(it.title)
	description := strings.ToLower(it.description)

	for _, kw := range badKeywords {
		if strings.Contains(title, kw) || strings.Contains(description, kw) {
			return false
		}
	}
	return it.fileSize >= minFileSize
}

// qualityScore ranks an item: larger files, known creators, official-looking
// titles and normal song length all add points. Deterministic by design.
func qualityScore(it item) int {
	score := 0

	switch {
	case it.fileSize > 3_000_000:
		score += 100
	case it.fileSize > 2_000_000:
		score += 80
	case it.fileSize > 1_000_000:
		score += 60
	}

	if creator := strings.ToLower(it.creator); creator != "" && creator != "unknown artist" {
		score += 50
	}

	title := strings.ToLower(it.title)
	if strings.Contains(title, "official") {
		score += 30
	}
	if strings.Contains(title, "studio") {
		score += 20
	}
	if strings.Contains(title, "album") {
		score += 20
	}

	switch {
	case it.duration >= 2*time.Minute && it.duration <= 10*time.Minute:
		score += 40
	case it.duration >= time.Minute && it.duration < 2*time.Minute:
		score += 20
	}

	return score
}

func sortByQuality(items []item) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := qualityScore(items[i]), qualityScore(items[j])
		if si != sj {
			return si > sj
		}
		return items[i].id < items[j].id
	})
}
