// Package service exposes the files on disk the dashboard can load.
package service

import "time"

// SourceFile is a GeoJSON file in the data directory.
type SourceFile struct {
	Name     string    `json:"name" doc:"File name" example:"stadtquartiere.geojson"`
	Path     string    `json:"path" doc:"Path to pass as the dashboard's file path" example:"data/sources/stadtquartiere.geojson"`
	Size     string    `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	Bytes    int64     `json:"bytes" doc:"File size in bytes"`
	Modified time.Time `json:"modified" doc:"Last modification time"`
}
