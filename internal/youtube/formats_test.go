package youtube

import (
	"fmt"
	"testing"

	ytdl "github.com/kkdai/youtube/v2"
)

func muxed(itag, height int, ext string) ytdl.Format {
	return ytdl.Format{
		ItagNo:        itag,
		MimeType:      fmt.Sprintf("video/%s; codecs=\"avc1.64001F, mp4a.40.2\"", ext),
		QualityLabel:  fmt.Sprintf("%dp", height),
		Height:        height,
		AudioChannels: 2,
		ContentLength: int64(height) * 1000,
	}
}

func videoOnly(itag, height int) ytdl.Format {
	return ytdl.Format{
		ItagNo:       itag,
		MimeType:     "video/mp4; codecs=\"avc1.640028\"",
		QualityLabel: fmt.Sprintf("%dp", height),
		Height:       height,
	}
}

func audioOnly(itag, bitrate int, container string) ytdl.Format {
	return ytdl.Format{
		ItagNo:        itag,
		MimeType:      fmt.Sprintf("audio/%s; codecs=\"mp4a.40.2\"", container),
		Bitrate:       bitrate,
		AudioChannels: 2,
	}
}

func TestMuxedFormatsFilterDedupeSort(t *testing.T) {
	formats := []ytdl.Format{
		muxed(18, 360, "mp4"),
		videoOnly(137, 1080), // no audio track, must be excluded
		muxed(22, 720, "mp4"),
		muxed(59, 480, "mp4"),
		muxed(100, 720, "mp4"), // duplicate 720p/mp4, must be deduped
		audioOnly(140, 128000, "mp4"),
		muxed(43, 360, "webm"), // same resolution, different container: kept
	}

	got := muxedFormats(formats)
	if len(got) != 4 {
		t.Fatalf("expected 4 formats, got %d: %+v", len(got), got)
	}

	wantOrder := []string{"720p", "480p", "360p", "360p"}
	for i, want := range wantOrder {
		if got[i].Resolution != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].Resolution)
		}
	}
	if got[0].FormatID != "22" {
		t.Errorf("dedupe kept the wrong entry: %s", got[0].FormatID)
	}
}

func TestMuxedFormatsCap(t *testing.T) {
	var formats []ytdl.Format
	for i := 0; i < 25; i++ {
		formats = append(formats, muxed(100+i, 100+i, "mp4"))
	}

	got := muxedFormats(formats)
	if len(got) != maxInfoFormats {
		t.Fatalf("expected cap at %d, got %d", maxInfoFormats, len(got))
	}
}

func TestPickVideoFormat(t *testing.T) {
	formats := []ytdl.Format{
		muxed(18, 360, "mp4"),
		muxed(22, 720, "mp4"),
		muxed(37, 1080, "mp4"),
		videoOnly(137, 2160),
	}

	tests := []struct {
		quality  string
		wantItag int
	}{
		{"best", 37},
		{"", 37},
		{"720", 22},
		{"480", 18},
		{"100", 37}, // nothing fits the cap, fall back to best muxed
	}

	for _, tt := range tests {
		got, err := pickVideoFormat(formats, tt.quality)
		if err != nil {
			t.Fatalf("quality %q: %v", tt.quality, err)
		}
		if got.ItagNo != tt.wantItag {
			t.Errorf("quality %q: expected itag %d, got %d", tt.quality, tt.wantItag, got.ItagNo)
		}
	}
}

func TestPickVideoFormatErrors(t *testing.T) {
	if _, err := pickVideoFormat([]ytdl.Format{videoOnly(137, 1080)}, "best"); err == nil {
		t.Error("expected error when no muxed format exists")
	}
	if _, err := pickVideoFormat([]ytdl.Format{muxed(18, 360, "mp4")}, "tall"); err == nil {
		t.Error("expected error for a non-numeric quality")
	}
}

func TestPickAudioFormat(t *testing.T) {
	formats := []ytdl.Format{
		audioOnly(140, 128000, "mp4"),
		audioOnly(251, 160000, "webm"),
		muxed(22, 720, "mp4"),
	}

	// mp3 target prefers the mp4 family even at lower bitrate.
	got, err := pickAudioFormat(formats, "mp3")
	if err != nil {
		t.Fatal(err)
	}
	if got.ItagNo != 140 {
		t.Errorf("mp3 target: expected itag 140, got %d", got.ItagNo)
	}

	got, err = pickAudioFormat(formats, "opus")
	if err != nil {
		t.Fatal(err)
	}
	if got.ItagNo != 251 {
		t.Errorf("opus target: expected itag 251, got %d", got.ItagNo)
	}

	if _, err := pickAudioFormat([]ytdl.Format{muxed(22, 720, "mp4")}, "mp3"); err == nil {
		t.Error("expected error when no audio-only format exists")
	}
}

func TestExtFromMimeType(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"video/mp4; codecs=\"avc1\"", "mp4"},
		{"video/webm", "webm"},
		{"audio/mp4; codecs=\"mp4a.40.2\"", "mp4"},
	}
	for _, tt := range tests {
		if got := extFromMimeType(tt.mime); got != tt.want {
			t.Errorf("extFromMimeType(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := sanitizeFilename(`a/b\c:d*e?f"g<h>i|j`)
	want := "a_b_c_d_e_f_g_h_i_j"
	if got != want {
		t.Errorf("sanitizeFilename = %q, want %q", got, want)
	}
}

func TestEtaString(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{45, "00:45"},
		{125, "02:05"},
		{3725, "01:02:05"},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := etaString(tt.seconds); got != tt.want {
			t.Errorf("etaString(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
