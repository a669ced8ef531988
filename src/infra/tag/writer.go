package tag

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/nfnt/resize"

	_ "image/gif"

	_ "golang.org/x/image/webp"

	"ytdlsync/src/features/config"
	"ytdlsync/src/features/tagging"
	"ytdlsync/src/music"
)

// TagWriter implements writing tags into files for MP3 and FLAC formats.
type TagWriter struct {
	config *config.Manager
}

// NewTagWriter creates a new TagWriter.
func NewTagWriter(cfg *config.Manager) tagging.TagWriter {
	return &TagWriter{config: cfg}
}

// WriteFileTags writes metadata to the file.
func (t *TagWriter) WriteFileTags(ctx context.Context, filePath string, track *music.Track) error {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".mp3":
		return t.tagMP3(ctx, filePath, track)
	case ".flac":
		return t.tagFLAC(ctx, filePath, track)
	default:
		return fmt.Errorf("unsupported format: %s", ext)
	}
}

// tagMP3 handles MP3 tagging using id3v2.
func (t *TagWriter) tagMP3(ctx context.Context, filePath string, track *music.Track) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer tag.Close()

	tag.SetTitle(track.Title)
	if track.Artist != "" {
		tag.SetArtist(track.Artist)
		tag.AddTextFrame(tag.CommonID("Album Artist"), id3v2.EncodingUTF8, track.Artist)
	}
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}
	if track.Year > 0 {
		tag.SetYear(strconv.Itoa(track.Year))
	}
	if track.Genre != "" {
		tag.SetGenre(track.Genre)
	}
	if track.TrackNumber > 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, strconv.Itoa(track.TrackNumber))
	}

	if len(track.ArtworkData) > 0 {
		imgData := t.prepareArtwork(track.ArtworkData, filePath)
		pic := id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "",
			Picture:     imgData,
		}
		tag.AddAttachedPicture(pic)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}

	slog.Info("Tagged MP3 file", "filePath", filePath, "title", track.Title)
	return nil
}

// tagFLAC handles FLAC tagging via Vorbis comments.
func (t *TagWriter) tagFLAC(ctx context.Context, filePath string, track *music.Track) error {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	var vorbisComment *flacvorbis.MetaDataBlockVorbisComment
	commentIndex := -1
	for idx, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment {
			vorbisComment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			commentIndex = idx
			break
		}
	}
	if vorbisComment == nil {
		vorbisComment = flacvorbis.New()
	}

	vorbisComment.Add(flacvorbis.FIELD_TITLE, track.Title)
	if track.Artist != "" {
		vorbisComment.Add(flacvorbis.FIELD_ARTIST, track.Artist)
		vorbisComment.Add("ALBUMARTIST", track.Artist)
	}
	if track.Album != "" {
		vorbisComment.Add(flacvorbis.FIELD_ALBUM, track.Album)
	}
	if track.Year > 0 {
		vorbisComment.Add(flacvorbis.FIELD_DATE, strconv.Itoa(track.Year))
	}
	if track.Genre != "" {
		vorbisComment.Add(flacvorbis.FIELD_GENRE, track.Genre)
	}
	if track.TrackNumber > 0 {
		vorbisComment.Add(flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(track.TrackNumber))
	}

	commentMeta := vorbisComment.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	if len(track.ArtworkData) > 0 {
		imgData := t.prepareArtwork(track.ArtworkData, filePath)
		picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Cover", imgData, "image/jpeg")
		if err != nil {
			slog.Warn("Failed to build FLAC picture block", "filePath", filePath, "error", err)
		} else {
			pictureMeta := picture.Marshal()
			replaced := false
			for idx, meta := range f.Meta {
				if meta.Type == goflac.Picture {
					f.Meta[idx] = &pictureMeta
					replaced = true
					break
				}
			}
			if !replaced {
				f.Meta = append(f.Meta, &pictureMeta)
			}
		}
	}

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC tags: %w", err)
	}

	slog.Info("Tagged FLAC file", "filePath", filePath, "title", track.Title)
	return nil
}

// prepareArtwork resizes and re-encodes cover art to JPEG per the embedded
// artwork configuration. Falls back to the original bytes on any failure.
func (t *TagWriter) prepareArtwork(imgData []byte, filePath string) []byte {
	cfg := t.config.Get().Tag.Artwork.Embedded
	resized, err := t.resizeImage(imgData, cfg.Size)
	if err != nil {
		slog.Warn("Failed to resize artwork", "filePath", filePath, "error", err)
		return imgData
	}
	return resized
}

// resizeImage resizes image data to fit within maxSize pixels, maintaining aspect ratio.
func (t *TagWriter) resizeImage(imgData []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		return imgData, nil
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return imgData, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return imgData, nil
	}

	if width > height {
		height = (height * maxSize) / width
		width = maxSize
	} else {
		width = (width * maxSize) / height
		height = maxSize
	}

	resizedImg := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	quality := t.config.Get().Tag.Artwork.Embedded.Quality
	if quality <= 0 {
		quality = 85
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(&buf, resizedImg)
	default:
		err = jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return imgData, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}
