// Package exifmeta extracts the photo metadata the scan stage records:
// original capture time, camera model, and GPS coordinates.
package exifmeta

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata is the EXIF subset carried into the record store. Every field is
// already in store form; empty means the photo does not carry the tag.
type Metadata struct {
	DateTimeOriginal string // EXIF layout, e.g. "2024:08:16 09:00:00"
	DeviceModel      string
	Lat              string // decimal degrees
	Lon              string
}

// Extract reads the metadata subset from the photo at path. A photo without
// EXIF data (or with an unreadable block) yields empty metadata, not an
// error; only a failure to open the file itself is reported.
func Extract(path string) (Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("open photo: %w", err)
	}
	defer file.Close()

	decoded, err := exif.Decode(file)
	if err != nil {
		return Metadata{}, nil
	}

	var meta Metadata
	meta.DateTimeOriginal = tagString(decoded, exif.DateTimeOriginal)
	if meta.DateTimeOriginal == "" {
		meta.DateTimeOriginal = tagString(decoded, exif.DateTime)
	}
	meta.DeviceModel = composeDevice(tagString(decoded, exif.Make), tagString(decoded, exif.Model))
	if lat, lon, err := decoded.LatLong(); err == nil {
		meta.Lat = strconv.FormatFloat(lat, 'f', 6, 64)
		meta.Lon = strconv.FormatFloat(lon, 'f', 6, 64)
	}
	return meta, nil
}

func tagString(decoded *exif.Exif, name exif.FieldName) string {
	tag, err := decoded.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

// composeDevice joins make and model, skipping the make when the model
// already repeats it the way most camera vendors do.
func composeDevice(maker, model string) string {
	if model == "" {
		return maker
	}
	if maker == "" || strings.HasPrefix(strings.ToLower(model), strings.ToLower(maker)) {
		return model
	}
	return maker + " " + model
}
