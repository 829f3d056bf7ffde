// Package transcript models the response of the YouTube transcript provider and derives
// summaries and identifiers from it.
package transcript

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SuccessCode is the provider's success response code.
const SuccessCode = 100000

// ThumbnailQuality is the thumbnail variant used in summaries.
const ThumbnailQuality = "hqdefault"

// PreviewLength is the number of characters of transcript text kept in a summary preview.
const PreviewLength = 200

var ErrInvalidTimestamp = errors.New("invalid transcript timestamp")

// Entry is a single timed line of a transcript.
type Entry struct {
	Start string `json:"start"` // HH:MM:SS
	End   string `json:"end"`   // HH:MM:SS
	Text  string `json:"text"`
}

// DurationSeconds returns End minus Start.
func (e Entry) DurationSeconds() (int, error) {
	start, err := parseClock(e.Start)
	if err != nil {
		return 0, err
	}
	end, err := parseClock(e.End)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// LanguageCode names one available transcript language.
type LanguageCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// VideoInfo is the provider's video metadata.
type VideoInfo struct {
	Name         string            `json:"name"`
	ThumbnailURL map[string]string `json:"thumbnailUrl"`
	EmbedURL     string            `json:"embedUrl"`
	Duration     string            `json:"duration"` // seconds, as a string
	Description  string            `json:"description"`
	UploadDate   string            `json:"upload_date"`
	Genre        string            `json:"genre"`
	Author       string            `json:"author"`
	ChannelID    string            `json:"channel_id"`
}

// Thumbnail returns the thumbnail URL for quality, or "" when absent.
func (v VideoInfo) Thumbnail(quality string) string {
	return v.ThumbnailURL[quality]
}

// Data holds the entries of one transcript language.
type Data struct {
	Custom []Entry `json:"custom"`
}

// FullText joins every entry's text with a single space.
func (d Data) FullText() string {
	texts := make([]string, 0, len(d.Custom))
	for _, e := range d.Custom {
		texts = append(texts, e.Text)
	}
	return strings.Join(texts, " ")
}

// TotalDuration sums the entry durations in seconds.
func (d Data) TotalDuration() (float64, error) {
	var total int
	for i, e := range d.Custom {
		secs, err := e.DurationSeconds()
		if err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		total += secs
	}
	return float64(total), nil
}

// Transcripts is keyed by language; only the auto-generated English track is provided.
type Transcripts struct {
	EnAuto Data `json:"en_auto"`
}

// VideoData is the payload of a provider response.
type VideoData struct {
	VideoID      string         `json:"videoId"`
	VideoInfo    VideoInfo      `json:"videoInfo"`
	LanguageCode []LanguageCode `json:"language_code"`
	Transcripts  Transcripts    `json:"transcripts"`
}

// VideoURL returns the watch URL of the video.
func (v VideoData) VideoURL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

// DurationSeconds parses VideoInfo.Duration.
func (v VideoData) DurationSeconds() (int, error) {
	secs, err := strconv.Atoi(strings.TrimSpace(v.VideoInfo.Duration))
	if err != nil {
		return 0, fmt.Errorf("video duration %q: %w", v.VideoInfo.Duration, err)
	}
	return secs, nil
}

// Response is the provider's top-level envelope.
type Response struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    VideoData `json:"data"`
}

// IsSuccess reports whether the provider returned SuccessCode.
func (r *Response) IsSuccess() bool {
	return r.Code == SuccessCode
}

// Summary is a compact view of a transcript response.
type Summary struct {
	VideoID            string  `json:"video_id"`
	Title              string  `json:"title"`
	Author             string  `json:"author"`
	DurationSeconds    int     `json:"duration_seconds"`
	DurationFormatted  string  `json:"duration_formatted"`
	ThumbnailURL       string  `json:"thumbnail_url,omitempty"`
	VideoURL           string  `json:"video_url"`
	TranscriptEntries  int     `json:"transcript_entries"`
	TranscriptDuration float64 `json:"transcript_duration"`
	TranscriptPreview  string  `json:"transcript_preview"`
}

// Summary builds the summary of r. The success code is not checked.
func (r *Response) Summary() (*Summary, error) {
	video := r.Data
	duration, err := video.DurationSeconds()
	if err != nil {
		return nil, err
	}
	total, err := video.Transcripts.EnAuto.TotalDuration()
	if err != nil {
		return nil, err
	}

	return &Summary{
		VideoID:            video.VideoID,
		Title:              video.VideoInfo.Name,
		Author:             video.VideoInfo.Author,
		DurationSeconds:    duration,
		DurationFormatted:  FormatDuration(duration),
		ThumbnailURL:       video.VideoInfo.Thumbnail(ThumbnailQuality),
		VideoURL:           video.VideoURL(),
		TranscriptEntries:  len(video.Transcripts.EnAuto.Custom),
		TranscriptDuration: total,
		TranscriptPreview:  preview(video.Transcripts.EnAuto.FullText(), PreviewLength),
	}, nil
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// preview keeps the first n characters and always appends an ellipsis.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}

func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		total = total*60 + n
	}
	return total, nil
}
