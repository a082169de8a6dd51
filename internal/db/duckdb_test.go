package db

import (
	"context"
	"slices"
	"testing"

	"github.com/joeblew999/zurich-quartiere/internal/geodata"
)

const sample = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"quartier":"Enge","kreis":2,"geometry":"x","flaeche":1234567.891},
  "geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}},
 {"type":"Feature","properties":{"quartier":"Wollishofen"},"geometry":null}
]}`

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{})
	if err != nil {
		t.Skipf("duckdb unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterAndQuery(t *testing.T) {
	s := open(t)
	fc, err := geodata.Parse("sample.geojson", []byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	table, err := s.Register(ctx, fc)
	if err != nil {
		t.Fatal(err)
	}
	if table != TableName(fc) || len(table) != len("ds_")+12 {
		t.Fatalf("table=%q", table)
	}

	tables, err := s.Tables(ctx)
	if err != nil || !slices.Contains(tables, table) {
		t.Fatalf("tables=%v err=%v", tables, err)
	}

	res, err := s.Query(ctx, `SELECT quartier, kreis, geometry_attr, centroid_lon FROM `+table+` ORDER BY quartier`)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 || res.Rows[0]["quartier"] != "Enge" || res.Rows[0]["kreis"] != "2" {
		t.Fatalf("rows=%v", res.Rows)
	}
	if res.Rows[0]["centroid_lon"] != 1.0 || res.Rows[1]["centroid_lon"] != nil {
		t.Fatalf("centroids=%v / %v", res.Rows[0]["centroid_lon"], res.Rows[1]["centroid_lon"])
	}
	if res.Rows[0]["geometry_attr"] != "x" {
		t.Fatalf("renamed attribute lost: %v", res.Rows[0])
	}

	res, err = s.Query(ctx, `SELECT flaeche, CAST(flaeche AS DOUBLE) AS area FROM `+table+` WHERE quartier = 'Enge'`)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows[0]["flaeche"] != "1234567.891" || res.Rows[0]["area"] != 1234567.891 {
		t.Fatalf("numeric attribute not stored verbatim: %v", res.Rows[0])
	}
}

func TestRegisterTwiceReplaces(t *testing.T) {
	s := open(t)
	fc, _ := geodata.Parse("sample.geojson", []byte(sample))
	ctx := context.Background()
	for range 2 {
		if _, err := s.Register(ctx, fc); err != nil {
			t.Fatal(err)
		}
	}
	res, err := s.Query(ctx, "SELECT count(*) AS n FROM "+TableName(fc))
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows[0]["n"] != int64(2) {
		t.Fatalf("n=%v", res.Rows[0]["n"])
	}
}

func TestQueryError(t *testing.T) {
	s := open(t)
	if _, err := s.Query(context.Background(), "SELEKT 1"); err == nil {
		t.Fatal("expected a syntax error")
	}
}
