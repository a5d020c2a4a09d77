package upstream

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
)

type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingForm
	EncodingMultipart
)

// Field — одно значение формы. Порядок полей сохраняется при кодировании,
// поэтому одна и та же форма всегда даёт байт-в-байт одинаковое тело.
type Field struct {
	Name  string
	Value string
}

// File — файл multipart-формы (изображение товара).
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

type Payload struct {
	Encoding Encoding
	Fields   []Field
	Files    []File
}

// Form — тело application/x-www-form-urlencoded.
func Form(fields ...Field) Payload {
	return Payload{Encoding: EncodingForm, Fields: fields}
}

// Multipart — тело multipart/form-data.
func Multipart(fields []Field, files ...File) Payload {
	return Payload{Encoding: EncodingMultipart, Fields: fields, Files: files}
}

// Get возвращает все значения поля name в порядке следования.
func (p Payload) Get(name string) []string {
	var out []string
	for _, f := range p.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}

	return out
}

// encode отдаёт тело и Content-Type. boundary фиксируется снаружи только в тестах.
func (p Payload) encode(boundary string) (io.Reader, string, error) {
	switch p.Encoding {
	case EncodingNone:
		return nil, "", nil

	case EncodingForm:
		var sb strings.Builder
		for i, f := range p.Fields {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(f.Name))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(f.Value))
		}
		return strings.NewReader(sb.String()), "application/x-www-form-urlencoded", nil

	case EncodingMultipart:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if boundary != "" {
			if err := mw.SetBoundary(boundary); err != nil {
				return nil, "", err
			}
		}

		for _, f := range p.Fields {
			if err := mw.WriteField(f.Name, f.Value); err != nil {
				return nil, "", err
			}
		}

		for _, f := range p.Files {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
			ct := f.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			h.Set("Content-Type", ct)

			part, err := mw.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(f.Data); err != nil {
				return nil, "", err
			}
		}

		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return &buf, mw.FormDataContentType(), nil

	default:
		return nil, "", fmt.Errorf("unknown payload encoding %d", p.Encoding)
	}
}
