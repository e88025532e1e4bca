package youtube

import (
	"context"
	"fmt"
	"os/exec"
)

// convertAudio converts an audio file to the target container with
// ffmpeg. The output path must carry the target extension.
func convertAudio(ctx context.Context, inputPath, outputPath, target string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found: please install ffmpeg to convert audio files")
	}

	bitrate := "256k"
	if target == "mp3" {
		bitrate = "192k"
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-vn",
		"-b:a", bitrate,
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}
