package youtube

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
)

// FormatInfo is one downloadable quality/container combination exposed
// by the info endpoint.
type FormatInfo struct {
	Resolution string `json:"resolution"`
	Ext        string `json:"ext"`
	FormatID   string `json:"formatId"`
	Filesize   int64  `json:"filesize"`

	height int
}

// maxInfoFormats caps the format list returned by Inspect.
const maxInfoFormats = 15

// extFromMimeType returns the container extension for a MIME type like
// "video/mp4; codecs=...".
func extFromMimeType(mimeType string) string {
	base := mimeType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	if i := strings.Index(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSpace(base)
}

// isMuxed reports whether the format carries both a video and an audio
// track.
func isMuxed(f *ytdl.Format) bool {
	return strings.HasPrefix(f.MimeType, "video/") && f.AudioChannels > 0
}

func resolutionLabel(f *ytdl.Format) string {
	if f.QualityLabel != "" {
		return f.QualityLabel
	}
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

// muxedFormats builds the deduplicated, resolution-sorted format list
// for the info endpoint: muxed formats only, one entry per
// resolution/extension pair, highest resolution first, capped.
func muxedFormats(formats []ytdl.Format) []FormatInfo {
	seen := make(map[string]bool)
	var out []FormatInfo
	for i := range formats {
		f := &formats[i]
		if !isMuxed(f) {
			continue
		}
		resolution := resolutionLabel(f)
		ext := extFromMimeType(f.MimeType)
		key := resolution + "_" + ext
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, FormatInfo{
			Resolution: resolution,
			Ext:        ext,
			FormatID:   strconv.Itoa(f.ItagNo),
			Filesize:   f.ContentLength,
			height:     f.Height,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].height > out[j].height
	})
	if len(out) > maxInfoFormats {
		out = out[:maxInfoFormats]
	}
	return out
}

// pickVideoFormat selects the best muxed format whose height does not
// exceed quality. quality is a pixel height like "720", or "best" for
// no restriction. Falls back to the best available muxed format when
// nothing fits the cap.
func pickVideoFormat(formats []ytdl.Format, quality string) (*ytdl.Format, error) {
	maxHeight := 0
	if quality != "" && quality != "best" {
		h, err := strconv.Atoi(quality)
		if err != nil {
			return nil, fmt.Errorf("invalid quality %q", quality)
		}
		maxHeight = h
	}

	var best, bestCapped *ytdl.Format
	for i := range formats {
		f := &formats[i]
		if !isMuxed(f) {
			continue
		}
		if best == nil || f.Height > best.Height {
			best = f
		}
		if maxHeight > 0 && f.Height <= maxHeight {
			if bestCapped == nil || f.Height > bestCapped.Height {
				bestCapped = f
			}
		}
	}

	if maxHeight > 0 && bestCapped != nil {
		return bestCapped, nil
	}
	if best == nil {
		return nil, fmt.Errorf("no downloadable video format available")
	}
	return best, nil
}

// pickAudioFormat selects the highest-bitrate audio-only format,
// preferring the container family closest to the requested target so
// that conversion work stays minimal.
func pickAudioFormat(formats []ytdl.Format, target string) (*ytdl.Format, error) {
	preferred := "mp4"
	if target == "webm" || target == "opus" {
		preferred = "webm"
	}

	var bestPreferred, bestAny *ytdl.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if bestAny == nil || f.Bitrate > bestAny.Bitrate {
			bestAny = f
		}
		if strings.Contains(f.MimeType, preferred) {
			if bestPreferred == nil || f.Bitrate > bestPreferred.Bitrate {
				bestPreferred = f
			}
		}
	}

	if bestPreferred != nil {
		return bestPreferred, nil
	}
	if bestAny == nil {
		return nil, fmt.Errorf("no audio formats available")
	}
	return bestAny, nil
}

// audioExtension maps an audio MIME type to its native file extension.
func audioExtension(mimeType string) string {
	if strings.Contains(mimeType, "mp4") {
		return ".m4a"
	}
	if strings.Contains(mimeType, "webm") {
		return ".webm"
	}
	return ".audio"
}

// sanitizeFilename replaces characters that are unsafe in filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
