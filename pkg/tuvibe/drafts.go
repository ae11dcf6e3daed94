package tuvibe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
)

// Attachment is a freshly selected file staged for upload.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data"`
}

// MarketDraft is the editable copy of a marketplace item.
type MarketDraft struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Price          float64      `json:"price"`
	WhatsAppNumber string       `json:"whatsapp_number"`
	IsFeatured     bool         `json:"is_featured"`
	Tag            string       `json:"tag,omitempty"`
	RetainedImages []string     `json:"images,omitempty"`
	NewImages      []Attachment `json:"-"`
}

// DraftFromItem populates an edit draft from an existing record; every
// current image starts out retained.
func DraftFromItem(item MarketItem) MarketDraft {
	return MarketDraft{
		Title:          item.Title,
		Description:    item.Description,
		Price:          item.Price,
		WhatsAppNumber: item.WhatsAppNumber,
		IsFeatured:     item.IsFeatured,
		Tag:            item.Tag,
		RetainedImages: append([]string(nil), item.Images...),
	}
}

// MusicDraft is the editable copy of a music track.
type MusicDraft struct {
	Title         string      `json:"title"`
	Artist        string      `json:"artist"`
	AudioURL      string      `json:"audio_url,omitempty"`
	CoverImageURL string      `json:"cover_image_url,omitempty"`
	Duration      int         `json:"duration,omitempty"`
	Order         int         `json:"order,omitempty"`
	IsActive      bool        `json:"is_active"`
	AudioFile     *Attachment `json:"-"`
	CoverImage    *Attachment `json:"-"`
}

// HasAudio reports whether the draft names an audio source.
func (d MusicDraft) HasAudio() bool {
	return d.AudioFile != nil || strings.TrimSpace(d.AudioURL) != ""
}

// MusicDraftFromTrack populates an edit draft from an existing track.
func MusicDraftFromTrack(track MusicTrack) MusicDraft {
	return MusicDraft{
		Title:         track.Title,
		Artist:        track.Artist,
		AudioURL:      track.AudioURL,
		CoverImageURL: track.CoverImageURL,
		Duration:      track.Duration,
		Order:         track.Order,
		IsActive:      track.IsActive,
	}
}

type formFile struct {
	field string
	att   Attachment
}

type multipartForm struct {
	fields [][2]string
	files  []formFile
}

func (f *multipartForm) set(key, value string) {
	f.fields = append(f.fields, [2]string{key, value})
}

func (f *multipartForm) attach(field string, att Attachment) {
	f.files = append(f.files, formFile{field: field, att: att})
}

func (f *multipartForm) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("tuvibe: write form field %s: %w", kv[0], err)
		}
	}
	for _, file := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.att.Filename))
		contentType := file.att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("tuvibe: create form file %s: %w", file.field, err)
		}
		if _, err := part.Write(file.att.Data); err != nil {
			return nil, "", fmt.Errorf("tuvibe: write form file %s: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("tuvibe: close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func marketForm(draft MarketDraft, update bool) (*multipartForm, error) {
	form := &multipartForm{}
	form.set("title", draft.Title)
	form.set("description", draft.Description)
	form.set("price", strconv.FormatFloat(draft.Price, 'f', -1, 64))
	form.set("whatsapp_number", draft.WhatsAppNumber)
	form.set("is_featured", strconv.FormatBool(draft.IsFeatured))
	form.set("tag", draft.Tag)
	if update {
		retained := draft.RetainedImages
		if retained == nil {
			retained = []string{}
		}
		data, err := json.Marshal(retained)
		if err != nil {
			return nil, fmt.Errorf("tuvibe: encode retained images: %w", err)
		}
		form.set("images", string(data))
	}
	for _, img := range draft.NewImages {
		form.attach("market_images", img)
	}
	return form, nil
}

func musicForm(draft MusicDraft) *multipartForm {
	form := &multipartForm{}
	form.set("title", draft.Title)
	form.set("artist", draft.Artist)
	if draft.AudioFile != nil {
		form.attach("audio_file", *draft.AudioFile)
	} else if draft.AudioURL != "" {
		form.set("audio_url", draft.AudioURL)
	}
	if draft.CoverImage != nil {
		form.attach("cover_image", *draft.CoverImage)
	} else if draft.CoverImageURL != "" {
		form.set("cover_image_url", draft.CoverImageURL)
	}
	if draft.Duration > 0 {
		form.set("duration", strconv.Itoa(draft.Duration))
	}
	if draft.Order > 0 {
		form.set("order", strconv.Itoa(draft.Order))
	}
	form.set("is_active", strconv.FormatBool(draft.IsActive))
	return form
}
