package youtube

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	ytdl "github.com/kkdai/youtube/v2"

	"vget/internal/models"
)

// progressInterval throttles how often download progress is reported.
const progressInterval = 500 * time.Millisecond

// Fetch downloads the requested media into the client's directory and
// reports progress snapshots through onProgress. The artifact filename
// embeds the job ID so the retention sweep and the artifact endpoint
// can associate files with jobs.
func (c *Client) Fetch(ctx context.Context, jobID string, req models.Request, onProgress func(models.Progress)) (*models.Result, error) {
	video, err := c.client.GetVideoContext(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if req.Type == models.TypeAudio {
		return c.fetchAudio(ctx, jobID, video, req, onProgress)
	}
	return c.fetchVideo(ctx, jobID, video, req, onProgress)
}

func (c *Client) fetchVideo(ctx context.Context, jobID string, video *ytdl.Video, req models.Request, onProgress func(models.Progress)) (*models.Result, error) {
	format, err := pickVideoFormat(video.Formats, req.Quality)
	if err != nil {
		return nil, err
	}

	filename := jobID + "_" + sanitizeFilename(video.Title) + "." + extFromMimeType(format.MimeType)
	outputPath := filepath.Join(c.dir, filename)

	if err := c.downloadStream(ctx, video, format, outputPath, onProgress); err != nil {
		return nil, err
	}

	return c.resultFor(video.Title, outputPath)
}

func (c *Client) fetchAudio(ctx context.Context, jobID string, video *ytdl.Video, req models.Request, onProgress func(models.Progress)) (*models.Result, error) {
	target := req.AudioFormat
	if target == "" {
		target = "mp3"
	}

	format, err := pickAudioFormat(video.Formats, target)
	if err != nil {
		return nil, err
	}

	base := jobID + "_" + sanitizeFilename(video.Title)
	rawPath := filepath.Join(c.dir, base+audioExtension(format.MimeType))

	if err := c.downloadStream(ctx, video, format, rawPath, onProgress); err != nil {
		return nil, err
	}

	// Already in the requested container, no conversion pass needed.
	if filepath.Ext(rawPath) == "."+target {
		return c.resultFor(video.Title, rawPath)
	}

	onProgress(models.Progress{Status: models.StatusProcessing, Percent: 100})

	outputPath := filepath.Join(c.dir, base+"."+target)
	if err := convertAudio(ctx, rawPath, outputPath, target); err != nil {
		os.Remove(rawPath)
		return nil, err
	}
	os.Remove(rawPath)

	return c.resultFor(video.Title, outputPath)
}

func (c *Client) downloadStream(ctx context.Context, video *ytdl.Video, format *ytdl.Format, outputPath string, onProgress func(models.Progress)) error {
	stream, size, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	start := time.Now()
	var lastReport time.Time
	report := func(written, total int64) {
		now := time.Now()
		if now.Sub(lastReport) < progressInterval && written != total {
			return
		}
		lastReport = now
		onProgress(snapshot(written, total, now.Sub(start)))
	}

	if err := copyWithProgress(ctx, file, stream, size, report); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to download: %w", err)
	}
	return nil
}

func (c *Client) resultFor(title, path string) (*models.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("downloaded file missing: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	return &models.Result{
		Title:    title,
		Filename: filepath.Base(path),
		Filepath: absPath,
		Filesize: info.Size(),
	}, nil
}

// snapshot builds one downloading progress event from byte counters.
func snapshot(written, total int64, elapsed time.Duration) models.Progress {
	p := models.Progress{
		Status:     models.StatusDownloading,
		Downloaded: humanize.Bytes(uint64(written)),
	}
	if total > 0 {
		p.Percent = float64(written) / float64(total) * 100
		p.Total = humanize.Bytes(uint64(total))
	}
	if elapsed.Seconds() > 0 {
		bps := float64(written) / elapsed.Seconds()
		p.Speed = humanize.Bytes(uint64(bps)) + "/s"
		if total > 0 && bps > 0 {
			p.ETA = etaString(int(float64(total-written) / bps))
		}
	}
	return p
}

// etaString formats seconds as mm:ss, or hh:mm:ss above an hour.
func etaString(seconds int) string {
	if seconds < 0 {
		return ""
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// copyWithProgress copies src to dst, invoking report after each chunk.
func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, report func(written, total int64)) error {
	buf := make([]byte, 32*1024)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		nr, err := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw > 0 {
				written += int64(nw)
				report(written, total)
			}
			if ew != nil {
				return ew
			}
			if nr != nw {
				return io.ErrShortWrite
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
